/*
Package physics advances a mesh as a mass-spring system, one externally driven tick at a time.

Each tick has two strictly ordered phases. Forces for every edge are computed from one snapshot of
positions and velocities, then every vertex is integrated. No position moves until all forces are known.
*/
package physics

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/trimesh/geometry"
	"github.com/notargets/trimesh/types"
	"github.com/notargets/trimesh/utils"
)

var ErrInvalidParameter = errors.New("invalid tick parameter")

type Simulation struct {
	Mesh           *geometry.TriangularMesh
	ParallelDegree int
	velocities     map[uint16]*r3.Vec
	tick           int
}

func NewSimulation(m *geometry.TriangularMesh, parallelDegree int) (sim *Simulation) {
	if parallelDegree < 1 {
		parallelDegree = 1
	}
	sim = &Simulation{
		Mesh:           m,
		ParallelDegree: parallelDegree,
		velocities:     make(map[uint16]*r3.Vec, m.NumVertices()),
	}
	sim.syncVelocities()
	return
}

// syncVelocities gives any vertex inserted since the last tick a zero velocity
func (sim *Simulation) syncVelocities() {
	for _, i := range sim.Mesh.Vertices.Indices() {
		if _, ok := sim.velocities[i]; !ok {
			sim.velocities[i] = &r3.Vec{}
		}
	}
}

func (sim *Simulation) Velocity(index uint16) (v r3.Vec, ok bool) {
	var p *r3.Vec
	if p, ok = sim.velocities[index]; ok {
		v = *p
	}
	return
}

func (sim *Simulation) SetVelocity(index uint16, v r3.Vec) (err error) {
	if !sim.Mesh.Vertices.ContainsKey(index) {
		return fmt.Errorf("velocity of vertex %d: %w", index, types.ErrMissingVertex)
	}
	if p, ok := sim.velocities[index]; ok {
		*p = v
		return
	}
	vel := v
	sim.velocities[index] = &vel
	return
}

// Tick is the number of completed updates
func (sim *Simulation) Tick() int { return sim.tick }

// KineticEnergy is the sum of |v|^2/2 over all vertices, mass is normalized to 1
func (sim *Simulation) KineticEnergy() (ke float64) {
	for _, v := range sim.velocities {
		ke += 0.5 * r3.Norm2(*v)
	}
	return
}

// PotentialEnergy is the energy stored in all springs at the current positions
func (sim *Simulation) PotentialEnergy() (pe float64, err error) {
	for _, ei := range sim.Mesh.Topology.Edges() {
		var (
			e, _   = sim.Mesh.Topology.Edge(ei)
			length float64
		)
		if length, err = sim.Mesh.Length(ei); err != nil {
			return
		}
		pe += e.Energy(length)
	}
	return
}

/*
AccumulateForces is the first phase of a tick. For every edge (i,j):

	extension            = |p_j - p_i|
	predicted            = |(p_j + v_j dt) - (p_i + v_i dt)|
	velocityDifferential = (predicted - extension) / dt
	F                    = Edge.Force(extension, velocityDifferential, collisionRadius)

Vertex i receives +F along the unit vector from i to j and vertex j receives -F, so a stretched spring
pulls both ends together. Edges are split over ParallelDegree partitions that accumulate privately,
the partials are summed in partition order, which keeps the result independent of scheduling.
*/
func (sim *Simulation) AccumulateForces(dt, collisionRadius float64) (forces map[uint16]r3.Vec, err error) {
	sim.syncVelocities()
	var (
		edges = sim.Mesh.Topology.Edges()
		pm    = utils.NewPartitionMap(min(sim.ParallelDegree, max(len(edges), 1)), len(edges))
		NP    = pm.ParallelDegree
		parts = make([]map[uint16]r3.Vec, NP)
		errs  = make([]error, NP)
	)
	pm.Run(func(np, kMin, kMax int) {
		parts[np], errs[np] = sim.edgeForces(edges[kMin:kMax], dt, collisionRadius)
	})
	forces = make(map[uint16]r3.Vec, sim.Mesh.NumVertices())
	for np := 0; np < NP; np++ {
		if errs[np] != nil {
			return nil, errs[np]
		}
		for i, f := range parts[np] {
			forces[i] = r3.Add(forces[i], f)
		}
	}
	return
}

func (sim *Simulation) edgeForces(edges []types.EdgeIndex, dt, collisionRadius float64) (acc map[uint16]r3.Vec, err error) {
	acc = make(map[uint16]r3.Vec)
	for _, ei := range edges {
		var (
			v      = ei.Vertices()
			e, _   = sim.Mesh.Topology.Edge(ei)
			pi, ok = sim.Mesh.Vertices.Get(v[0])
			pj     r3.Vec
		)
		if ok {
			pj, ok = sim.Mesh.Vertices.Get(v[1])
		}
		if !ok {
			err = fmt.Errorf("spring %s: %w", ei, types.ErrMissingVertex)
			return
		}
		var (
			vi, vj    = *sim.velocities[v[0]], *sim.velocities[v[1]]
			d         = r3.Sub(pj, pi)
			extension = r3.Norm(d)
			predicted = r3.Norm(r3.Sub(r3.Add(pj, r3.Scale(dt, vj)), r3.Add(pi, r3.Scale(dt, vi))))
		)
		if extension == 0 {
			// No direction to push along
			continue
		}
		var (
			F = e.Force(extension, (predicted-extension)/dt, collisionRadius)
			f = r3.Scale(F/extension, d)
		)
		acc[v[0]] = r3.Add(acc[v[0]], f)
		acc[v[1]] = r3.Sub(acc[v[1]], f)
	}
	return
}

/*
NextState is the second phase of a tick, applied to every vertex:

	v' = v (1 - drag)
	p' = p + v' dt

A coordinate leaving [0,1] is reflected back inside and that velocity component is reversed and
scaled by bounce. An overshoot larger than the box is clamped to the wall.
*/
func (sim *Simulation) NextState(drag, bounce, dt float64) {
	sim.syncVelocities()
	var (
		indices = sim.Mesh.Vertices.Indices()
		pm      = utils.NewPartitionMap(min(sim.ParallelDegree, max(len(indices), 1)), len(indices))
	)
	pm.Run(func(_, kMin, kMax int) {
		for _, i := range indices[kMin:kMax] {
			p, _ := sim.Mesh.Vertices.GetMut(i)
			v := sim.velocities[i]
			*v = r3.Scale(1-drag, *v)
			*p = r3.Add(*p, r3.Scale(dt, *v))
			p.X, v.X = wallBounce(p.X, v.X, bounce)
			p.Y, v.Y = wallBounce(p.Y, v.Y, bounce)
			p.Z, v.Z = wallBounce(p.Z, v.Z, bounce)
		}
	})
}

func wallBounce(x, v, bounce float64) (float64, float64) {
	switch {
	case x > 1:
		return math.Max(2-x, 0), -v * bounce
	case x < 0:
		return math.Min(-x, 1), -v * bounce
	}
	return x, v
}

func checkTick(drag, bounce, dt, collisionRadius float64) error {
	switch {
	case !(dt > 0) || math.IsInf(dt, 0):
		return fmt.Errorf("dt = %g: %w", dt, ErrInvalidParameter)
	case !(drag >= 0 && drag <= 1):
		return fmt.Errorf("drag = %g, must be in [0,1]: %w", drag, ErrInvalidParameter)
	case !(bounce >= 0) || math.IsInf(bounce, 0):
		return fmt.Errorf("bounce = %g: %w", bounce, ErrInvalidParameter)
	case !(collisionRadius >= 0) || math.IsInf(collisionRadius, 0):
		return fmt.Errorf("collision radius = %g: %w", collisionRadius, ErrInvalidParameter)
	}
	return nil
}

// Update advances the simulation one tick: forces from the current snapshot, v += F dt, then NextState
func (sim *Simulation) Update(drag, bounce, dt, collisionRadius float64) (err error) {
	var forces map[uint16]r3.Vec
	if err = checkTick(drag, bounce, dt, collisionRadius); err != nil {
		return
	}
	if forces, err = sim.AccumulateForces(dt, collisionRadius); err != nil {
		return
	}
	for i, f := range forces {
		v := sim.velocities[i]
		*v = r3.Add(*v, r3.Scale(dt, f))
	}
	sim.NextState(drag, bounce, dt)
	sim.tick++
	return
}
