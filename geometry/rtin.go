package geometry

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/trimesh/types"
)

/*
FromRectilinearShape triangulates the unit square with nx by ny squares, each split along one diagonal,
alternating like a checkerboard:

	d-----c   d-----c
	|   / |   | \   |
	| /   |   |   \ |
	a-----b   a-----b
	(i+j) even  (i+j) odd

Vertex (i,j) has index j*(nx+1)+i and sits at (i/nx, j/ny, z). All triangles wind counter clockwise seen from +Z.
The z coordinate is drawn uniformly from [0,1) using rng, or the global source when rng is nil.
The topology depends only on nx and ny.
*/
func FromRectilinearShape(nx, ny int, rng *rand.Rand) (tm *TriangularMesh, err error) {
	if nx < 1 || ny < 1 || (nx+1)*(ny+1) > math.MaxUint16+1 {
		err = fmt.Errorf("%d x %d squares: %w", nx, ny, types.ErrInvalidShape)
		return
	}
	var (
		rowLen = nx + 1
		index  = func(i, j int) uint16 { return uint16(j*rowLen + i) }
		randZ  = rand.Float64
	)
	if rng != nil {
		randZ = rng.Float64
	}
	tm = NewTriangularMesh()
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			tm.InsertPoint(index(i, j), r3.Vec{
				X: float64(i) / float64(nx),
				Y: float64(j) / float64(ny),
				Z: randZ(),
			})
		}
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			var (
				a, b = index(i, j), index(i+1, j)
				c, d = index(i+1, j+1), index(i, j+1)
				tris [2][3]uint16
			)
			if (i+j)%2 == 0 {
				tris = [2][3]uint16{{a, b, c}, {a, c, d}}
			} else {
				tris = [2][3]uint16{{a, b, d}, {b, c, d}}
			}
			for _, tri := range tris {
				if _, err = tm.InsertCell(tri); err != nil {
					return
				}
			}
		}
	}
	return
}
