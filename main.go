package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

// main registers the batch-compiler subcommands and dispatches to
// whichever one the command line names, matching the teacher's own
// subcommands.Register usage pattern (the teacher's cmd_*.go files never
// actually wired this up; this is the first real registration in this
// module's history).
func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&compileCmd{}, "")
	subcommands.Register(&preprocessCmd{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
