package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/arsw/blueprints/internal/blueprint"
)

// Outcome label values for StoreOps.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// instrumentedStore records count, outcome and latency of every Store call.
type instrumentedStore struct {
	next blueprint.Store
	m    *Metrics
}

// InstrumentStore wraps next so that each operation is observed in m.
func InstrumentStore(next blueprint.Store, m *Metrics) blueprint.Store {
	return &instrumentedStore{next: next, m: m}
}

func (s *instrumentedStore) observe(op string, start time.Time, err error) {
	s.m.StoreDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	s.m.StoreOps.WithLabelValues(op, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, blueprint.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, blueprint.ErrConflict):
		return OutcomeConflict
	default:
		return OutcomeError
	}
}

func (s *instrumentedStore) Create(ctx context.Context, bp blueprint.Blueprint) (blueprint.Blueprint, error) {
	start := time.Now()
	created, err := s.next.Create(ctx, bp)
	s.observe("create", start, err)
	if err == nil {
		s.m.PointsWritten.Add(float64(len(created.Points)))
	}
	return created, err
}

func (s *instrumentedStore) Get(ctx context.Context, author, name string) (blueprint.Blueprint, error) {
	start := time.Now()
	bp, err := s.next.Get(ctx, author, name)
	s.observe("get", start, err)
	return bp, err
}

func (s *instrumentedStore) GetByAuthor(ctx context.Context, author string) ([]blueprint.Blueprint, error) {
	start := time.Now()
	bps, err := s.next.GetByAuthor(ctx, author)
	s.observe("get_by_author", start, err)
	return bps, err
}

func (s *instrumentedStore) GetAll(ctx context.Context) ([]blueprint.Blueprint, error) {
	start := time.Now()
	bps, err := s.next.GetAll(ctx)
	s.observe("get_all", start, err)
	return bps, err
}

func (s *instrumentedStore) AppendPoint(ctx context.Context, author, name string, p blueprint.Point) error {
	start := time.Now()
	err := s.next.AppendPoint(ctx, author, name, p)
	s.observe("append_point", start, err)
	if err == nil {
		s.m.PointsWritten.Inc()
	}
	return err
}

// Ping is passed through without being observed.
func (s *instrumentedStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}
