package geometry

import (
	"fmt"
	"math"
	"sort"

	"github.com/notargets/trimesh/types"
)

const (
	DefaultSpringConstant = 1.0
	DefaultRestLength     = 0.0
)

// Edge holds the spring parameters of one mesh edge, mass is normalized to 1
type Edge struct {
	SpringConstant float64
	RestLength     float64
}

func NewEdge(restLength, springConstant float64) (e Edge, err error) {
	if !(springConstant > 0) || math.IsInf(springConstant, 0) {
		err = fmt.Errorf("spring constant %g: %w", springConstant, types.ErrInvalidSpring)
		return
	}
	if !(restLength >= 0) || math.IsInf(restLength, 0) {
		err = fmt.Errorf("rest length %g: %w", restLength, types.ErrInvalidSpring)
		return
	}
	e = Edge{
		SpringConstant: springConstant,
		RestLength:     restLength,
	}
	return
}

/*
Force is the signed magnitude of a damped spring with a hard core collision offset:

	F = 2 sqrt(k) * velocityDifferential + k * (extension - restLength - 2*collisionRadius)

Positive F pulls the endpoints together. The velocity term has the critical damping magnitude for unit mass
and always opposes the relative motion: it raises F while the endpoints separate and lowers it while they close.
*/
func (e Edge) Force(extension, velocityDifferential, collisionRadius float64) float64 {
	k := e.SpringConstant
	return 2*math.Sqrt(k)*velocityDifferential + k*(extension-e.RestLength-2*collisionRadius)
}

// Energy is the potential stored in the spring at the given extension
func (e Edge) Energy(extension float64) float64 {
	dx := extension - e.RestLength
	return 0.5 * e.SpringConstant * dx * dx
}

/*
Topology is the connectivity of a mesh, independent of vertex positions.
Edges are memoized: the first insertion of an edge, through a cell or directly, fixes its parameters.
*/
type Topology struct {
	DefaultEdge Edge
	cells       map[types.CellIndex]struct{}
	edges       map[types.EdgeIndex]Edge
}

func NewTopology() (tp *Topology) {
	tp = &Topology{
		DefaultEdge: Edge{
			SpringConstant: DefaultSpringConstant,
			RestLength:     DefaultRestLength,
		},
		cells: make(map[types.CellIndex]struct{}),
		edges: make(map[types.EdgeIndex]Edge),
	}
	return
}

// InsertCell adds a triangle and any of its sides not yet present, re-inserting a cell is a no-op
func (tp *Topology) InsertCell(verts [3]uint16) (ci types.CellIndex, err error) {
	if ci, err = types.NewCellIndex(verts[0], verts[1], verts[2]); err != nil {
		return
	}
	tp.insertCellIndex(ci)
	return
}

func (tp *Topology) insertCellIndex(ci types.CellIndex) {
	tp.cells[ci] = struct{}{}
	for _, ei := range ci.Edges() {
		tp.insertEdgeIfAbsent(ei, tp.DefaultEdge)
	}
}

func (tp *Topology) insertEdgeIfAbsent(ei types.EdgeIndex, e Edge) {
	if _, present := tp.edges[ei]; !present {
		tp.edges[ei] = e
	}
}

/*
InsertEdge adds a spring that is not the side of any cell, as in a particle swarm.
Inserting an edge that already exists is a caller logic error and returns ErrDuplicateEdge.
*/
func (tp *Topology) InsertEdge(verts [2]uint16, restLength, springConstant float64) (err error) {
	var (
		ei types.EdgeIndex
		e  Edge
	)
	if ei, err = types.NewEdgeIndex(verts[0], verts[1]); err != nil {
		return
	}
	if _, present := tp.edges[ei]; present {
		err = fmt.Errorf("edge %s: %w", ei, types.ErrDuplicateEdge)
		return
	}
	if e, err = NewEdge(restLength, springConstant); err != nil {
		return
	}
	tp.edges[ei] = e
	return
}

// setEdge overwrites the parameters of an existing edge
func (tp *Topology) setEdge(ei types.EdgeIndex, e Edge) {
	tp.edges[ei] = e
}

func (tp *Topology) ContainsCell(ci types.CellIndex) bool {
	_, ok := tp.cells[ci]
	return ok
}

func (tp *Topology) Edge(ei types.EdgeIndex) (e Edge, ok bool) {
	e, ok = tp.edges[ei]
	return
}

func (tp *Topology) NumCells() int { return len(tp.cells) }
func (tp *Topology) NumEdges() int { return len(tp.edges) }

// Cells returns the cells in ascending order
func (tp *Topology) Cells() (cells []types.CellIndex) {
	cells = make([]types.CellIndex, 0, len(tp.cells))
	for ci := range tp.cells {
		cells = append(cells, ci)
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].Less(cells[j]) })
	return
}

// Edges returns the edge keys in ascending order
func (tp *Topology) Edges() (edges []types.EdgeIndex) {
	edges = make([]types.EdgeIndex, 0, len(tp.edges))
	for ei := range tp.edges {
		edges = append(edges, ei)
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].Less(edges[j]) })
	return
}

// Flip reverses the winding of every cell
func (tp *Topology) Flip() *Topology {
	flipped := make(map[types.CellIndex]struct{}, len(tp.cells))
	for ci := range tp.cells {
		flipped[ci.Flip()] = struct{}{}
	}
	tp.cells = flipped
	return tp
}
