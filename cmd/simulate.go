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
	"os"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/trimesh/InputParameters"
	"github.com/notargets/trimesh/geometry"
	"github.com/notargets/trimesh/physics"
	"github.com/notargets/trimesh/readfiles"
	"github.com/notargets/trimesh/utils"
)

type Simulate struct {
	ICFile     string
	MeshFile   string
	OutputFile string
	ProfileDir string
	Relax      bool
}

// SimulateCmd represents the simulate command
var SimulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the mass-spring simulation of a mesh inside the unit cube",
	Long: `
Advances every vertex of a mesh under the forces of the springs along its edges,
bouncing off the walls of the unit cube. The mesh is read from a file (-F) or
generated from the grid parameters of the input file.

trimesh simulate -I input.yaml -F mesh.yaml -o final.yaml`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		sm := &Simulate{}
		sm.ICFile, _ = cmd.Flags().GetString("inputConditionsFile")
		sm.MeshFile, _ = cmd.Flags().GetString("meshFile")
		sm.OutputFile, _ = cmd.Flags().GetString("output")
		sm.ProfileDir, _ = cmd.Flags().GetString("profile")
		sm.Relax, _ = cmd.Flags().GetBool("relax")
		var ip *InputParameters.SimulationParameters
		if ip, err = processInput(cmd, sm); err != nil {
			return
		}
		if len(sm.ProfileDir) != 0 {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(sm.ProfileDir), profile.Quiet).Stop()
		}
		return RunSimulation(cmd, sm, ip)
	},
}

func init() {
	rootCmd.AddCommand(SimulateCmd)
	SimulateCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- DT\n\t- Drag\n\t- Bounce")
	SimulateCmd.Flags().StringP("meshFile", "F", "", "mesh file written by generate, generated from the input parameters if empty")
	SimulateCmd.Flags().StringP("output", "o", "", "YAML file for the final mesh")
	SimulateCmd.Flags().String("profile", "", "directory for a CPU profile of the run")
	SimulateCmd.Flags().Bool("relax", false, "minimize the spring energy of the interior before the run")
}

func processInput(cmd *cobra.Command, sm *Simulate) (ip *InputParameters.SimulationParameters, err error) {
	if len(sm.ICFile) == 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Example File:%s\n", InputParameters.ExampleFile)
		err = fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile) in YAML format")
		return
	}
	var data []byte
	if data, err = os.ReadFile(sm.ICFile); err != nil {
		return
	}
	ip = InputParameters.NewSimulationParameters()
	if err = ip.Parse(data); err != nil {
		err = fmt.Errorf("%s: %w", sm.ICFile, err)
	}
	return
}

// loadMesh reads the mesh file, or builds one from the grid parameters when there is none
func loadMesh(sm *Simulate, ip *InputParameters.SimulationParameters) (tm *geometry.TriangularMesh, err error) {
	if len(sm.MeshFile) != 0 {
		var f *os.File
		if f, err = os.Open(sm.MeshFile); err != nil {
			return
		}
		defer f.Close()
		if tm, err = readfiles.ReadMesh(f); err != nil {
			err = fmt.Errorf("%s: %w", sm.MeshFile, err)
		}
		return
	}
	var (
		angle float64
		axis  r3.Vec
	)
	if ip.Rotate != nil {
		angle = ip.Rotate.Angle
		axis = r3.Vec{X: ip.Rotate.Axis[0], Y: ip.Rotate.Axis[1], Z: ip.Rotate.Axis[2]}
	}
	if tm, err = BuildMesh(ip.NX, ip.NY, ip.Seed, angle, axis, ip.Reflect); err != nil {
		return
	}
	if err = tm.SetSpringConstant(ip.SpringConstant); err != nil {
		return
	}
	err = tm.SetRestLength(ip.RestLength)
	return
}

func RunSimulation(cmd *cobra.Command, sm *Simulate, ip *InputParameters.SimulationParameters) (err error) {
	var (
		out   = cmd.OutOrStdout()
		tm    *geometry.TriangularMesh
		sim   *physics.Simulation
		steps = ip.Steps()
		pe    float64
	)
	ip.Print(out)
	if tm, err = loadMesh(sm, ip); err != nil {
		return
	}
	if ip.ResetRestLengths {
		if err = tm.ResetRestLengths(); err != nil {
			return
		}
	}
	fmt.Fprintf(out, "Mesh: %d vertices, %d cells, %d edges\n", tm.NumVertices(), tm.NumCells(), tm.NumEdges())
	if sm.Relax {
		var res physics.RelaxResult
		if res, err = physics.Relax(tm, tm.BoundaryVertices(), 1000); err != nil {
			return
		}
		fmt.Fprintf(out, "Relax: Energy: %8.5e, Iterations: %d, Status: %s\n", res.Energy, res.Iterations, res.Status)
	}
	sim = physics.NewSimulation(tm, parallelDegree())
	start := time.Now()
	for n := 1; n <= steps; n++ {
		if err = sim.Update(ip.Drag, ip.Bounce, ip.DT, ip.CollisionRadius); err != nil {
			return
		}
		if n%max(ip.PlotSteps, 1) == 0 || n == steps {
			if pe, err = sim.PotentialEnergy(); err != nil {
				return
			}
			ke := sim.KineticEnergy()
			if utils.IsNan(ke) || utils.IsNan(pe) {
				return fmt.Errorf("step %d: energy is NaN, reduce DT", n)
			}
			fmt.Fprintf(out, "Step: %6d, Time: %8.5f, KE: %8.5e, PE: %8.5e\n", n, float64(n)*ip.DT, ke, pe)
		}
	}
	fmt.Fprintf(out, "Elapsed: %v, Partitions: %d, %s\n", time.Since(start), sim.ParallelDegree, utils.GetMemUsage())
	if len(sm.OutputFile) != 0 {
		var f *os.File
		if f, err = os.Create(sm.OutputFile); err != nil {
			return
		}
		if err = readfiles.WriteMesh(f, tm); err != nil {
			f.Close()
			return
		}
		err = f.Close()
	}
	return
}
