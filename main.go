package main

import "github.com/machovotrish/luma/cmd"

func main() {
	cmd.Execute()
}
