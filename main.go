// main.go
//
// Entry point for the Homophone Hunt server. Configuration, logging and the
// subcommands live in internal/cli; with no subcommand the HTTP server starts.

package main

import "github.com/robalobadob/homophones/internal/cli"

var version = "dev"

func main() {
	cli.Execute(version)
}
