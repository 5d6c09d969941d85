/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/trimesh/geometry"
	"github.com/notargets/trimesh/readfiles"
)

type MeshGen struct {
	NX, NY      int
	Seed        uint64
	Angle       float64 // Degrees
	Axis        r3.Vec
	Reflect     []int
	OutputFile  string
	ChunkDir    string
	ChunkLength uint32
}

// GenerateCmd represents the generate command
var GenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Build a rectilinear triangulated height field",
	Long: `
Builds an (NX+1) x (NY+1) grid of vertices on the unit square with random heights,
split into triangles along alternating diagonals, then rotates and reflects it.

trimesh generate -x 8 -y 8 --rotate 30 --axis 0,0,1 --reflect 2 -o mesh.yaml --chunks chunks/`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		mg := &MeshGen{}
		mg.NX, _ = cmd.Flags().GetInt("nx")
		mg.NY, _ = cmd.Flags().GetInt("ny")
		mg.Seed, _ = cmd.Flags().GetUint64("seed")
		mg.Angle, _ = cmd.Flags().GetFloat64("rotate")
		axis, _ := cmd.Flags().GetString("axis")
		if mg.Axis, err = parseAxis(axis); err != nil {
			return
		}
		mg.Reflect, _ = cmd.Flags().GetIntSlice("reflect")
		mg.OutputFile, _ = cmd.Flags().GetString("output")
		mg.ChunkDir, _ = cmd.Flags().GetString("chunks")
		cl, _ := cmd.Flags().GetUint32("chunkLength")
		mg.ChunkLength = cl
		return RunGenerate(cmd, mg)
	},
}

func init() {
	rootCmd.AddCommand(GenerateCmd)
	GenerateCmd.Flags().IntP("nx", "x", 4, "number of grid squares along X")
	GenerateCmd.Flags().IntP("ny", "y", 4, "number of grid squares along Y")
	GenerateCmd.Flags().Uint64("seed", 1, "seed for the vertex heights")
	GenerateCmd.Flags().Float64("rotate", 0, "rotation angle in degrees")
	GenerateCmd.Flags().String("axis", "0,0,1", "rotation axis as x,y,z")
	GenerateCmd.Flags().IntSlice("reflect", nil, "dimensions to reflect through, 0=X, 1=Y, 2=Z")
	GenerateCmd.Flags().StringP("output", "o", "", "YAML file for the mesh, standard output if empty")
	GenerateCmd.Flags().String("chunks", "", "directory for vertex chunk files named by index interval")
	GenerateCmd.Flags().Uint32("chunkLength", 256, "number of vertex indices in each chunk")
}

func parseAxis(s string) (axis r3.Vec, err error) {
	fields := strings.Split(s, ",")
	if len(fields) != 3 {
		err = fmt.Errorf("axis %q: need three comma separated components", s)
		return
	}
	var c [3]float64
	for i, f := range fields {
		if c[i], err = strconv.ParseFloat(strings.TrimSpace(f), 64); err != nil {
			err = fmt.Errorf("axis %q: %w", s, err)
			return
		}
	}
	axis = r3.Vec{X: c[0], Y: c[1], Z: c[2]}
	return
}

// BuildMesh generates the grid and applies the rotation, then each reflection in order
func BuildMesh(nx, ny int, seed uint64, angle float64, axis r3.Vec, reflect []int) (tm *geometry.TriangularMesh, err error) {
	if tm, err = geometry.FromRectilinearShape(nx, ny, rand.New(rand.NewPCG(seed, seed))); err != nil {
		return
	}
	if angle != 0 {
		tm.Rotate(angle*math.Pi/180, axis)
	}
	for _, d := range reflect {
		if d < 0 || d > 2 {
			return nil, fmt.Errorf("reflect dimension %d: must be 0, 1 or 2", d)
		}
		tm.Reflect(d)
	}
	return
}

func RunGenerate(cmd *cobra.Command, mg *MeshGen) (err error) {
	var (
		tm  *geometry.TriangularMesh
		out = cmd.OutOrStdout()
	)
	if tm, err = BuildMesh(mg.NX, mg.NY, mg.Seed, mg.Angle, mg.Axis, mg.Reflect); err != nil {
		return
	}
	if len(mg.OutputFile) != 0 {
		var f *os.File
		if f, err = os.Create(mg.OutputFile); err != nil {
			return
		}
		if err = readfiles.WriteMesh(f, tm); err != nil {
			f.Close()
			return
		}
		if err = f.Close(); err != nil {
			return
		}
		fmt.Fprintf(out, "Mesh: %d vertices, %d cells, %d edges written to %s\n",
			tm.NumVertices(), tm.NumCells(), tm.NumEdges(), mg.OutputFile)
	} else if err = readfiles.WriteMesh(out, tm); err != nil {
		return
	}
	if len(mg.ChunkDir) != 0 {
		var chunks []*geometry.VertexArray
		if err = os.MkdirAll(mg.ChunkDir, 0755); err != nil {
			return
		}
		if chunks, err = tm.Vertices.Split(mg.ChunkLength); err != nil {
			return
		}
		for _, c := range chunks {
			var path string
			if path, err = readfiles.WriteChunk(mg.ChunkDir, c); err != nil {
				return
			}
			fmt.Fprintf(out, "Chunk %s: %d vertices in %s\n", path, c.Len(), c.Interval())
		}
	}
	return
}
