package blueprint

import "slices"

// Point is a single 2D coordinate in a blueprint's drawing order.
type Point struct {
	X int
	Y int
}

// Key identifies a blueprint within the store.
type Key struct {
	Author string
	Name   string
}

// Blueprint is an author-owned, uniquely named, ordered sequence of points.
type Blueprint struct {
	Author string
	Name   string
	Points []Point
}

// Key returns the (author, name) pair identifying the blueprint.
func (bp Blueprint) Key() Key {
	return Key{Author: bp.Author, Name: bp.Name}
}

// Equal reports whether both blueprints share a key and the same point sequence.
// A nil and an empty point slice compare equal.
func (bp Blueprint) Equal(other Blueprint) bool {
	return bp.Key() == other.Key() && slices.Equal(bp.Points, other.Points)
}

// Clone returns a copy whose point slice does not alias the receiver's.
func (bp Blueprint) Clone() Blueprint {
	bp.Points = slices.Clone(bp.Points)
	return bp
}

// less orders keys by author, then name.
func (k Key) less(other Key) bool {
	if k.Author != other.Author {
		return k.Author < other.Author
	}
	return k.Name < other.Name
}
