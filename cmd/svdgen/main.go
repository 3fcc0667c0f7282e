// Command svdgen is the CLI front end for the svdgen translation engine
// (spec §6). It is a thin wrapper: all argument parsing and subcommand
// wiring lives in pkg/cmd, the same split the teacher uses between
// cmd/*/main.go and pkg/cmd.
package main

import "github.com/svdgen/svdgen/pkg/cmd"

func main() {
	cmd.Execute()
}
