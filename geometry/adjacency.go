package geometry

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/trimesh/types"
)

/*
AdjacencyMatrix assembles the symmetric vertex to vertex adjacency of the edge set in CSR form.
Rows and columns follow the returned vertex order (ascending index), so row r belongs to vertex order[r].
*/
func (tm *TriangularMesh) AdjacencyMatrix() (A *sparse.CSR, order []uint16, err error) {
	order = tm.Vertices.Indices()
	var (
		N   = len(order)
		row = make(map[uint16]int, N)
	)
	for r, v := range order {
		row[v] = r
	}
	if N == 0 {
		return
	}
	SpA := sparse.NewDOK(N, N)
	for _, ei := range tm.Topology.Edges() {
		v := ei.Vertices()
		r0, ok0 := row[v[0]]
		r1, ok1 := row[v[1]]
		if !ok0 || !ok1 {
			err = fmt.Errorf("edge %s: %w", ei, types.ErrMissingVertex)
			return
		}
		SpA.Set(r0, r1, 1)
		SpA.Set(r1, r0, 1)
	}
	A = SpA.ToCSR()
	return
}

/*
Smooth applies umbrella Laplacian smoothing, each pass moving every free vertex a fraction lambda
toward the average of its neighbors:

	p += lambda * (sum(neighbors)/degree - p)

Fixed vertices and vertices without edges stay in place.
*/
func (tm *TriangularMesh) Smooth(lambda float64, iterations int, fixed ...uint16) (err error) {
	var (
		A     *sparse.CSR
		order []uint16
	)
	if A, order, err = tm.AdjacencyMatrix(); err != nil || A == nil {
		return
	}
	var (
		N       = len(order)
		pinned  = make(map[uint16]bool, len(fixed))
		ones    = mat.NewVecDense(N, nil)
		degree  = mat.NewVecDense(N, nil)
		coords  [3]*mat.VecDense
		summed  [3]*mat.VecDense
		getComp = [3]func(p r3.Vec) float64{
			func(p r3.Vec) float64 { return p.X },
			func(p r3.Vec) float64 { return p.Y },
			func(p r3.Vec) float64 { return p.Z },
		}
	)
	for _, v := range fixed {
		pinned[v] = true
	}
	for r := 0; r < N; r++ {
		ones.SetVec(r, 1)
	}
	degree.MulVec(A, ones)
	for n := 0; n < 3; n++ {
		coords[n] = mat.NewVecDense(N, nil)
		summed[n] = mat.NewVecDense(N, nil)
	}
	for iter := 0; iter < iterations; iter++ {
		for r, v := range order {
			p, _ := tm.Vertices.Get(v)
			for n := 0; n < 3; n++ {
				coords[n].SetVec(r, getComp[n](p))
			}
		}
		for n := 0; n < 3; n++ {
			summed[n].MulVec(A, coords[n])
		}
		for r, v := range order {
			d := degree.AtVec(r)
			if pinned[v] || d == 0 {
				continue
			}
			p, _ := tm.Vertices.GetMut(v)
			avg := r3.Vec{X: summed[0].AtVec(r) / d, Y: summed[1].AtVec(r) / d, Z: summed[2].AtVec(r) / d}
			*p = r3.Add(*p, r3.Scale(lambda, r3.Sub(avg, *p)))
		}
	}
	return
}
