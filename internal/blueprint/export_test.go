package blueprint

import "context"

// Sequences returns the stored seq values of a blueprint in order, followed
// by the point_count recorded on its header.
func (s *SQLiteStore) Sequences(ctx context.Context, author, name string) ([]int, int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT seq FROM points WHERE author = ? AND blueprint_name = ? ORDER BY seq ASC",
		author, name,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var seqs []int
	for rows.Next() {
		var seq int
		if err := rows.Scan(&seq); err != nil {
			return nil, 0, err
		}
		seqs = append(seqs, seq)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var count int
	err = s.db.QueryRowContext(ctx,
		"SELECT point_count FROM blueprints WHERE author = ? AND name = ?", author, name,
	).Scan(&count)
	return seqs, count, err
}
