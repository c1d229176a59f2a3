// Command wsidx is the entry point for the wsidx CLI application. It
// initializes all subcommands and executes the root command.
package main

import (
	"github.com/wsidx/wsidx/internal/cmd"
	_ "github.com/wsidx/wsidx/internal/cmd/diffcmd"
	_ "github.com/wsidx/wsidx/internal/cmd/synccmd"
	_ "github.com/wsidx/wsidx/internal/cmd/tagscmd"
	_ "github.com/wsidx/wsidx/internal/cmd/treecmd"
)

// main is the entry point of the application. It executes the root
// command which handles all CLI interactions.
func main() {
	cmd.Execute()
}
