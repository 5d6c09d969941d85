package types

import "errors"

// Sentinel errors shared by the mesh packages. Callers match them with errors.Is,
// the returned errors wrap them with the offending indices.
var (
	// ErrDegenerateIndex is returned when a cell or edge repeats a vertex.
	ErrDegenerateIndex = errors.New("degenerate index: vertices must be distinct")

	// ErrDuplicateEdge is returned by a direct edge insert on an edge that already exists.
	ErrDuplicateEdge = errors.New("duplicate edge")

	// ErrMissingVertex is returned when an operation references an absent vertex index.
	ErrMissingVertex = errors.New("missing vertex")

	// ErrInvalidSpring is returned for a non-positive spring constant or a negative rest length.
	ErrInvalidSpring = errors.New("invalid spring parameters")

	// ErrIndexCollision is returned when appending a mesh would overwrite or overflow vertex indices.
	ErrIndexCollision = errors.New("vertex index collision")

	// ErrInvalidShape is returned for grid dimensions the generator cannot index.
	ErrInvalidShape = errors.New("invalid grid shape")
)
