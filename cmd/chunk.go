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

	"github.com/spf13/cobra"

	"github.com/notargets/trimesh/geometry"
	"github.com/notargets/trimesh/interval"
	"github.com/notargets/trimesh/readfiles"
)

// ChunkCmd represents the chunk command
var ChunkCmd = &cobra.Command{
	Use:   "chunk [chunk files]",
	Short: "Decode interval hashes and inspect vertex chunk files",
	Long: `
Prints the index interval named by a hash, and for each chunk file the interval
recovered from its name, its vertex count and bounding box.

trimesh chunk --hash c87 --radix 16
trimesh chunk chunks/*.yaml`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			out      = cmd.OutOrStdout()
			hash, _  = cmd.Flags().GetString("hash")
			radix, _ = cmd.Flags().GetInt("radix")
		)
		if len(hash) == 0 && len(args) == 0 {
			return fmt.Errorf("nothing to decode, supply --hash or chunk files")
		}
		if len(hash) != 0 {
			var iv interval.IndexInterval
			if iv, err = interval.FromHash(hash, radix); err != nil {
				return
			}
			fmt.Fprintf(out, "%s = [%d,%d), %d indices\n", hash, iv.Start, iv.End, iv.Len())
		}
		for _, path := range args {
			var va *geometry.VertexArray
			if va, err = readfiles.ReadChunk(path, radix); err != nil {
				return
			}
			fmt.Fprintf(out, "%s: %s, %d vertices", va.Name(), va.Interval(), va.Len())
			if bb, ok := va.BoundingBox(); ok {
				fmt.Fprintf(out, ", min %v, max %v", bb.Min, bb.Max)
			}
			fmt.Fprintln(out)
		}
		return
	},
}

func init() {
	rootCmd.AddCommand(ChunkCmd)
	ChunkCmd.Flags().String("hash", "", "interval hash to decode")
	ChunkCmd.Flags().Int("radix", interval.DefaultRadix, "radix the hash is written in")
}
