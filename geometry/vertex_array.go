package geometry

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/trimesh/interval"
	"github.com/notargets/trimesh/types"
)

// VertexArray owns vertex positions keyed by index. Indices may have gaps, nothing is compacted.
type VertexArray struct {
	Prefix   string
	interval interval.IndexInterval
	points   map[uint16]*r3.Vec
}

func NewVertexArray(prefix string, iv interval.IndexInterval) (va *VertexArray) {
	va = &VertexArray{
		Prefix:   prefix,
		interval: iv,
		points:   make(map[uint16]*r3.Vec),
	}
	return
}

// Name identifies the chunk of vertices, <prefix>-<interval hash>
func (va *VertexArray) Name() string {
	return fmt.Sprintf("%s-%s", va.Prefix, va.interval.Hash)
}

func (va *VertexArray) Interval() interval.IndexInterval {
	return va.interval
}

// InsertPoint adds or overwrites the point at index
func (va *VertexArray) InsertPoint(index uint16, point r3.Vec) {
	if p, ok := va.points[index]; ok {
		*p = point
		return
	}
	pt := point
	va.points[index] = &pt
}

func (va *VertexArray) Get(index uint16) (point r3.Vec, ok bool) {
	var p *r3.Vec
	if p, ok = va.points[index]; ok {
		point = *p
	}
	return
}

// GetMut returns a pointer to the stored point, writes through it move the vertex
func (va *VertexArray) GetMut(index uint16) (point *r3.Vec, ok bool) {
	point, ok = va.points[index]
	return
}

func (va *VertexArray) ContainsKey(index uint16) bool {
	_, ok := va.points[index]
	return ok
}

func (va *VertexArray) Len() int {
	return len(va.points)
}

// Indices returns the occupied indices in ascending order
func (va *VertexArray) Indices() (indices []uint16) {
	indices = make([]uint16, 0, len(va.points))
	for i := range va.points {
		indices = append(indices, i)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	return
}

// Vector returns points[b] - points[a]
func (va *VertexArray) Vector(a, b uint16) (v r3.Vec, err error) {
	pa, okA := va.points[a]
	pb, okB := va.points[b]
	switch {
	case !okA:
		err = fmt.Errorf("vector [%d->%d], vertex %d: %w", a, b, a, types.ErrMissingVertex)
	case !okB:
		err = fmt.Errorf("vector [%d->%d], vertex %d: %w", a, b, b, types.ErrMissingVertex)
	default:
		v = r3.Sub(*pb, *pa)
	}
	return
}

func (va *VertexArray) Scale(sx, sy, sz float64) *VertexArray {
	for _, p := range va.points {
		p.X *= sx
		p.Y *= sy
		p.Z *= sz
	}
	return va
}

func (va *VertexArray) Shift(dx, dy, dz float64) *VertexArray {
	d := r3.Vec{X: dx, Y: dy, Z: dz}
	for _, p := range va.points {
		*p = r3.Add(*p, d)
	}
	return va
}

// Apply replaces every point with f(point)
func (va *VertexArray) Apply(f func(index uint16, p r3.Vec) r3.Vec) *VertexArray {
	for i, p := range va.points {
		*p = f(i, *p)
	}
	return va
}

// BoundingBox returns the componentwise min and max over all points, ok is false for an empty array
func (va *VertexArray) BoundingBox() (bb r3.Box, ok bool) {
	for _, p := range va.points {
		if !ok {
			bb.Min, bb.Max = *p, *p
			ok = true
			continue
		}
		bb.Min = r3.Vec{X: min(bb.Min.X, p.X), Y: min(bb.Min.Y, p.Y), Z: min(bb.Min.Z, p.Z)}
		bb.Max = r3.Vec{X: max(bb.Max.X, p.X), Y: max(bb.Max.Y, p.Y), Z: max(bb.Max.Z, p.Z)}
	}
	return
}

/*
Split partitions the occupied indices into chunks of consecutive intervals of the given length,
starting at the array's own Start. Intervals holding no points are skipped, each chunk keeps the prefix.
*/
func (va *VertexArray) Split(length uint32) (chunks []*VertexArray, err error) {
	if length == 0 {
		err = fmt.Errorf("split into zero length chunks: %w", interval.ErrMalformedInterval)
		return
	}
	var (
		iv      interval.IndexInterval
		indices = va.Indices()
	)
	if uint64(va.interval.Start)+uint64(length) > math.MaxUint32 {
		err = fmt.Errorf("chunk of %d after %d leaves uint32: %w", length, va.interval.Start, interval.ErrMalformedInterval)
		return
	}
	if iv, err = interval.New(va.interval.Start, va.interval.Start+length, va.interval.Radix); err != nil {
		return
	}
	for len(indices) != 0 {
		var chunk *VertexArray
		for len(indices) != 0 && iv.Contains(uint32(indices[0])) {
			if chunk == nil {
				chunk = NewVertexArray(va.Prefix, iv)
			}
			chunk.InsertPoint(indices[0], *va.points[indices[0]])
			indices = indices[1:]
		}
		if chunk != nil {
			chunks = append(chunks, chunk)
		}
		if len(indices) != 0 && uint32(indices[0]) < iv.Start {
			err = fmt.Errorf("vertex %d precedes %s: %w", indices[0], va.interval, interval.ErrMalformedInterval)
			return
		}
		if len(indices) != 0 {
			if iv, err = iv.Next(); err != nil {
				return
			}
		}
	}
	return
}
