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
	"runtime"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "trimesh",
	Short: "Triangular mesh generation and mass-spring simulation",
	Long: `
Builds triangulated height-field meshes, stores them as YAML with vertex chunks
named by their index interval, and relaxes them as a mass-spring system inside
the unit cube.

trimesh generate -x 8 -y 8 -o mesh.yaml
trimesh simulate -I input.yaml -F mesh.yaml`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.trimesh.yaml)")
	rootCmd.PersistentFlags().IntP("parallel", "p", runtime.NumCPU(), "number of partitions used by each simulation phase")
	if err := viper.BindPFlag("parallel", rootCmd.PersistentFlags().Lookup("parallel")); err != nil {
		panic(err)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		// Search config in home directory with name ".trimesh" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".trimesh")
	}
	viper.SetEnvPrefix("trimesh")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Using config file:", viper.ConfigFileUsed())
	}
}

// parallelDegree is the --parallel flag, a config file or TRIMESH_PARALLEL, never less than one
func parallelDegree() int {
	return max(viper.GetInt("parallel"), 1)
}
