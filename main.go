package main

import "github.com/notargets/trimesh/cmd"

func main() {
	cmd.Execute()
}
