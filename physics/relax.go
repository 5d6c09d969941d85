package physics

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/trimesh/geometry"
	"github.com/notargets/trimesh/types"
)

type RelaxResult struct {
	Energy     float64 // Spring potential at the minimizer
	Iterations int
	Status     optimize.Status
}

/*
Relax moves the free vertices of m to a minimum of the total spring potential

	E = sum over edges of 1/2 k (|p_j - p_i| - restLength)^2

by gradient descent with the analytic gradient. Vertices listed in fixed keep their positions.
No vertex moves further than a quarter of the shortest spring in one step, so a free end
cannot jump through its neighbor into the mirrored minimum on the other side.
The minimizer is written back into the mesh.
*/
func Relax(m *geometry.TriangularMesh, fixed []uint16, maxIterations int) (res RelaxResult, err error) {
	var (
		pinned = make(map[uint16]bool, len(fixed))
		free   []uint16
		slot   = make(map[uint16]int)
		edges  = m.Topology.Edges()
		reach  = math.Inf(1)
	)
	for _, v := range fixed {
		pinned[v] = true
	}
	for _, i := range m.Vertices.Indices() {
		if !pinned[i] {
			slot[i] = len(free)
			free = append(free, i)
		}
	}
	for _, ei := range edges {
		v := ei.Vertices()
		if !m.Vertices.ContainsKey(v[0]) || !m.Vertices.ContainsKey(v[1]) {
			err = fmt.Errorf("spring %s: %w", ei, types.ErrMissingVertex)
			return
		}
		p0, _ := m.Vertices.Get(v[0])
		p1, _ := m.Vertices.Get(v[1])
		if l := r3.Norm(r3.Sub(p1, p0)); l > 0 {
			reach = math.Min(reach, l/4)
		}
	}
	if math.IsInf(reach, 1) {
		reach = 1
	}
	// position reads a vertex from the optimizer's state when free, from the mesh when pinned
	position := func(x []float64, i uint16) r3.Vec {
		if s, ok := slot[i]; ok {
			return r3.Vec{X: x[3*s], Y: x[3*s+1], Z: x[3*s+2]}
		}
		p, _ := m.Vertices.Get(i)
		return p
	}
	energy := func(x []float64) (E float64) {
		for _, ei := range edges {
			var (
				v    = ei.Vertices()
				e, _ = m.Topology.Edge(ei)
			)
			E += e.Energy(r3.Norm(r3.Sub(position(x, v[1]), position(x, v[0]))))
		}
		return
	}
	if len(free) == 0 {
		res.Energy = energy(nil)
		return
	}
	gradient := func(grad, x []float64) {
		for i := range grad {
			grad[i] = 0
		}
		addTo := func(i uint16, g r3.Vec) {
			if s, ok := slot[i]; ok {
				grad[3*s] += g.X
				grad[3*s+1] += g.Y
				grad[3*s+2] += g.Z
			}
		}
		for _, ei := range edges {
			var (
				v      = ei.Vertices()
				e, _   = m.Topology.Edge(ei)
				d      = r3.Sub(position(x, v[1]), position(x, v[0]))
				length = r3.Norm(d)
			)
			if length == 0 {
				continue
			}
			g := r3.Scale(e.SpringConstant*(length-e.RestLength)/length, d)
			addTo(v[0], r3.Scale(-1, g))
			addTo(v[1], g)
		}
	}
	x0 := make([]float64, 3*len(free))
	for s, i := range free {
		p, _ := m.Vertices.Get(i)
		x0[3*s], x0[3*s+1], x0[3*s+2] = p.X, p.Y, p.Z
	}
	problem := optimize.Problem{
		Func: energy,
		Grad: gradient,
	}
	settings := &optimize.Settings{
		MajorIterations:   maxIterations,
		GradientThreshold: 1e-10,
	}
	method := &optimize.GradientDescent{
		Linesearcher: &optimize.Backtracking{},
		StepSizer:    &boundedStep{reach: reach},
	}
	var result *optimize.Result
	result, err = optimize.Minimize(problem, x0, settings, method)
	switch {
	case result != nil && (errors.Is(err, optimize.ErrNoProgress) || errors.Is(err, optimize.ErrLinesearcherFailure)):
		// Stalled at round-off, the best location found still stands
		err = nil
	case err != nil:
		err = fmt.Errorf("relaxing %d free vertices: %w", len(free), err)
		return
	}
	for s, i := range free {
		m.InsertPoint(i, r3.Vec{X: result.X[3*s], Y: result.X[3*s+1], Z: result.X[3*s+2]})
	}
	res = RelaxResult{
		Energy:     result.F,
		Iterations: result.Stats.MajorIterations,
		Status:     result.Status,
	}
	return
}

// boundedStep is a first order step size limited so no coordinate moves further than reach
type boundedStep struct {
	optimize.FirstOrderStepSize
	reach float64
}

func (bs *boundedStep) Init(loc *optimize.Location, dir []float64) float64 {
	return bs.limit(bs.FirstOrderStepSize.Init(loc, dir), dir)
}

func (bs *boundedStep) StepSize(loc *optimize.Location, dir []float64) float64 {
	return bs.limit(bs.FirstOrderStepSize.StepSize(loc, dir), dir)
}

func (bs *boundedStep) limit(step float64, dir []float64) float64 {
	if d := floats.Norm(dir, math.Inf(1)); d > 0 {
		step = math.Min(step, bs.reach/d)
	}
	return step
}
