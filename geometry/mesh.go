package geometry

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/trimesh/interval"
	"github.com/notargets/trimesh/types"
)

const DefaultPrefix = "mesh"

// TriangularMesh composes vertex positions with their connectivity
type TriangularMesh struct {
	Vertices *VertexArray
	Topology *Topology
}

// NewTriangularMesh returns an empty mesh whose vertex array covers the whole uint16 index space
func NewTriangularMesh() (tm *TriangularMesh) {
	iv, err := interval.New(0, math.MaxUint16+1, interval.DefaultRadix)
	if err != nil {
		panic(err)
	}
	tm = &TriangularMesh{
		Vertices: NewVertexArray(DefaultPrefix, iv),
		Topology: NewTopology(),
	}
	return
}

func (tm *TriangularMesh) InsertPoint(index uint16, point r3.Vec) {
	tm.Vertices.InsertPoint(index, point)
}

func (tm *TriangularMesh) InsertCell(verts [3]uint16) (types.CellIndex, error) {
	return tm.Topology.InsertCell(verts)
}

func (tm *TriangularMesh) InsertEdge(verts [2]uint16, restLength, springConstant float64) error {
	return tm.Topology.InsertEdge(verts, restLength, springConstant)
}

func (tm *TriangularMesh) NumVertices() int { return tm.Vertices.Len() }
func (tm *TriangularMesh) NumCells() int    { return tm.Topology.NumCells() }
func (tm *TriangularMesh) NumEdges() int    { return tm.Topology.NumEdges() }

func (tm *TriangularMesh) Scale(sx, sy, sz float64) *TriangularMesh {
	tm.Vertices.Scale(sx, sy, sz)
	return tm
}

func (tm *TriangularMesh) Shift(dx, dy, dz float64) *TriangularMesh {
	tm.Vertices.Shift(dx, dy, dz)
	return tm
}

/*
Rotate turns every vertex by angle (radians) about axis through the origin.
The rotation is the quaternion sandwich p' = q p q*, with q = cos(angle/2) + sin(angle/2)*axis/|axis|.
A zero axis leaves the mesh unchanged. Topology is unaffected.
*/
func (tm *TriangularMesh) Rotate(angle float64, axis r3.Vec) *TriangularMesh {
	norm := r3.Norm(axis)
	if norm == 0 {
		return tm
	}
	var (
		u    = r3.Scale(1/norm, axis)
		s, c = math.Sincos(angle / 2)
		q    = quat.Number{Real: c, Imag: s * u.X, Jmag: s * u.Y, Kmag: s * u.Z}
		qc   = quat.Conj(q)
	)
	tm.Vertices.Apply(func(_ uint16, p r3.Vec) r3.Vec {
		r := quat.Mul(quat.Mul(q, quat.Number{Imag: p.X, Jmag: p.Y, Kmag: p.Z}), qc)
		return r3.Vec{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
	})
	return tm
}

/*
Reflect mirrors the mesh across the plane normal to dimension dim (0=X, 1=Y, 2=Z).
Every cell is flipped along with the coordinates, a mirror without the flip would turn the normals inside out.
*/
func (tm *TriangularMesh) Reflect(dim int) *TriangularMesh {
	var negate func(p r3.Vec) r3.Vec
	switch dim {
	case 0:
		negate = func(p r3.Vec) r3.Vec { p.X = -p.X; return p }
	case 1:
		negate = func(p r3.Vec) r3.Vec { p.Y = -p.Y; return p }
	case 2:
		negate = func(p r3.Vec) r3.Vec { p.Z = -p.Z; return p }
	default:
		panic(fmt.Errorf("unable to reflect dimension %d, must be 0, 1 or 2", dim))
	}
	tm.Vertices.Apply(func(_ uint16, p r3.Vec) r3.Vec { return negate(p) })
	tm.Topology.Flip()
	return tm
}

/*
Append merges other into the receiver, shifting other's indices up by the receiver's vertex count.
The offset scheme assumes the receiver's indices are contiguous from zero. When they are not, or when the
shifted indices leave the uint16 range, nothing is merged and ErrIndexCollision is returned.
Edges keep the parameters they had in other, unless the receiver already holds the same edge.
*/
func (tm *TriangularMesh) Append(other *TriangularMesh) (err error) {
	var (
		offset  = tm.NumVertices()
		indices = other.Vertices.Indices()
		shift   = func(i uint16) uint16 { return uint16(int(i) + offset) }
	)
	for _, i := range indices {
		j := int(i) + offset
		if j > math.MaxUint16 {
			return fmt.Errorf("vertex %d shifted by %d overflows: %w", i, offset, types.ErrIndexCollision)
		}
		if tm.Vertices.ContainsKey(uint16(j)) {
			return fmt.Errorf("vertex %d shifted by %d lands on an existing vertex: %w", i, offset,
				types.ErrIndexCollision)
		}
	}
	// Cells and edges may reference indices other has no point for, check those too
	for _, ei := range other.Topology.Edges() {
		v := ei.Vertices()
		if int(v[1])+offset > math.MaxUint16 {
			return fmt.Errorf("edge %s shifted by %d overflows: %w", ei, offset, types.ErrIndexCollision)
		}
	}
	for _, i := range indices {
		p, _ := other.Vertices.Get(i)
		tm.Vertices.InsertPoint(shift(i), p)
	}
	for _, ei := range other.Topology.Edges() {
		v := ei.Vertices()
		e, _ := other.Topology.Edge(ei)
		tm.Topology.insertEdgeIfAbsent(types.MustEdgeIndex(shift(v[0]), shift(v[1])), e)
	}
	for _, ci := range other.Topology.Cells() {
		v := ci.Vertices()
		// Shifting by a constant keeps the minimum in slot 0
		tm.Topology.insertCellIndex(types.MustCellIndex(shift(v[0]), shift(v[1]), shift(v[2])))
	}
	return
}

// Neighbors maps each vertex to its adjacent vertices in ascending order.
// One pass over the edge set, then each vertex's short list is sorted.
func (tm *TriangularMesh) Neighbors() (nbrs map[uint16][]uint16) {
	nbrs = make(map[uint16][]uint16)
	for ei := range tm.Topology.edges {
		v := ei.Vertices()
		nbrs[v[0]] = append(nbrs[v[0]], v[1])
		nbrs[v[1]] = append(nbrs[v[1]], v[0])
	}
	for _, adj := range nbrs {
		sort.Slice(adj, func(i, j int) bool { return adj[i] < adj[j] })
	}
	return
}

// BoundaryVertices returns, in ascending order, the endpoints of every edge used by exactly one cell
func (tm *TriangularMesh) BoundaryVertices() (boundary []uint16) {
	uses := make(map[types.EdgeIndex]int)
	for _, ci := range tm.Topology.Cells() {
		for _, ei := range ci.Edges() {
			uses[ei]++
		}
	}
	onBoundary := make(map[uint16]bool)
	for ei, n := range uses {
		if n == 1 {
			v := ei.Vertices()
			onBoundary[v[0]], onBoundary[v[1]] = true, true
		}
	}
	for _, i := range tm.Vertices.Indices() {
		if onBoundary[i] {
			boundary = append(boundary, i)
		}
	}
	return
}

// Length is the current geometric length of an edge
func (tm *TriangularMesh) Length(ei types.EdgeIndex) (length float64, err error) {
	var (
		v = ei.Vertices()
		d r3.Vec
	)
	if d, err = tm.Vertices.Vector(v[0], v[1]); err != nil {
		return
	}
	length = r3.Norm(d)
	return
}

// ResetRestLengths sets every edge's rest length to its current length, keeping the spring constants.
// Nothing changes when any edge cannot be measured.
func (tm *TriangularMesh) ResetRestLengths() (err error) {
	var (
		edges = tm.Topology.Edges()
		reset = make([]Edge, len(edges))
	)
	for n, ei := range edges {
		var (
			length float64
			e, _   = tm.Topology.Edge(ei)
		)
		if length, err = tm.Length(ei); err != nil {
			return
		}
		if reset[n], err = NewEdge(length, e.SpringConstant); err != nil {
			return
		}
	}
	for n, ei := range edges {
		tm.Topology.setEdge(ei, reset[n])
	}
	return
}

// SetSpringConstant overwrites the spring constant of every edge
func (tm *TriangularMesh) SetSpringConstant(k float64) (err error) {
	for _, ei := range tm.Topology.Edges() {
		e, _ := tm.Topology.Edge(ei)
		if e, err = NewEdge(e.RestLength, k); err != nil {
			return
		}
		tm.Topology.setEdge(ei, e)
	}
	return
}

// SetRestLength overwrites the rest length of every edge
func (tm *TriangularMesh) SetRestLength(restLength float64) (err error) {
	for _, ei := range tm.Topology.Edges() {
		e, _ := tm.Topology.Edge(ei)
		if e, err = NewEdge(restLength, e.SpringConstant); err != nil {
			return
		}
		tm.Topology.setEdge(ei, e)
	}
	return
}
