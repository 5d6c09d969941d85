package types

import (
	"fmt"
)

/*
EdgeIndex is the canonical key of an undirected edge between two vertices.
An edge between vertices [4] and [0] will always be stored as [0,4], in the ascending order of the index values,
so the two directions of an edge compare equal and hash to the same map slot.
*/
type EdgeIndex struct {
	verts [2]uint16
}

func NewEdgeIndex(a, b uint16) (ei EdgeIndex, err error) {
	if a == b {
		err = fmt.Errorf("edge [%d,%d]: %w", a, b, ErrDegenerateIndex)
		return
	}
	if a < b {
		ei.verts = [2]uint16{a, b}
	} else {
		ei.verts = [2]uint16{b, a}
	}
	return
}

// MustEdgeIndex panics on a degenerate pair, for use with literal indices.
func MustEdgeIndex(a, b uint16) EdgeIndex {
	ei, err := NewEdgeIndex(a, b)
	if err != nil {
		panic(err)
	}
	return ei
}

func (ei EdgeIndex) Vertices() [2]uint16 {
	return ei.verts
}

// Other returns the vertex across the edge from v, ok is false when v is not an endpoint
func (ei EdgeIndex) Other(v uint16) (other uint16, ok bool) {
	switch v {
	case ei.verts[0]:
		return ei.verts[1], true
	case ei.verts[1]:
		return ei.verts[0], true
	}
	return
}

// Less orders edges by first then second vertex
func (ei EdgeIndex) Less(o EdgeIndex) bool {
	if ei.verts[0] != o.verts[0] {
		return ei.verts[0] < o.verts[0]
	}
	return ei.verts[1] < o.verts[1]
}

func (ei EdgeIndex) String() string {
	return fmt.Sprintf("[%d,%d]", ei.verts[0], ei.verts[1])
}

/*
CellIndex is the canonical key of a triangle.
The minimum vertex index always sits in slot 0, the other two follow in the original cyclic order.
Canonicalization rotates the triple instead of sorting it, so the winding survives:
[5,1,3] and [1,3,5] are the same cell, while [1,5,3] is the same triangle seen from the other side.
*/
type CellIndex struct {
	verts [3]uint16
}

func NewCellIndex(a, b, c uint16) (ci CellIndex, err error) {
	if a == b || b == c || a == c {
		err = fmt.Errorf("cell [%d,%d,%d]: %w", a, b, c, ErrDegenerateIndex)
		return
	}
	v := [3]uint16{a, b, c}
	// Each pass is a cyclic rotation done as two swaps, at most two passes are needed
	for v[0] > v[1] || v[0] > v[2] {
		v[0], v[1] = v[1], v[0]
		v[1], v[2] = v[2], v[1]
	}
	ci.verts = v
	return
}

// MustCellIndex panics on a degenerate triple, for use with literal indices.
func MustCellIndex(a, b, c uint16) CellIndex {
	ci, err := NewCellIndex(a, b, c)
	if err != nil {
		panic(err)
	}
	return ci
}

// Flip reverses the winding, slot 0 stays put
func (ci CellIndex) Flip() CellIndex {
	ci.verts[1], ci.verts[2] = ci.verts[2], ci.verts[1]
	return ci
}

/*
Get addresses the vertices relative to a position, modulo 3:

	Get(p)   = vertex
	Get(p+1) = next vertex in winding order
	Get(p-1) = previous vertex
*/
func (ci CellIndex) Get(position int) uint16 {
	p := position % 3
	if p < 0 {
		p += 3
	}
	return ci.verts[p]
}

func (ci CellIndex) Vertices() [3]uint16 {
	return ci.verts
}

// Edges returns the three sides in winding order starting at slot 0
func (ci CellIndex) Edges() (edges [3]EdgeIndex) {
	for i := 0; i < 3; i++ {
		// The constructor guarantees distinct vertices
		edges[i] = MustEdgeIndex(ci.Get(i), ci.Get(i+1))
	}
	return
}

func (ci CellIndex) Less(o CellIndex) bool {
	for i := 0; i < 3; i++ {
		if ci.verts[i] != o.verts[i] {
			return ci.verts[i] < o.verts[i]
		}
	}
	return false
}

func (ci CellIndex) String() string {
	return fmt.Sprintf("[%d,%d,%d]", ci.verts[0], ci.verts[1], ci.verts[2])
}
