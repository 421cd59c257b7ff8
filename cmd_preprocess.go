package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// preprocessCmd is `compile -E` under its own name, mirroring the way the
// teacher splits "run interpreted" (cmd_run.go) from "emit an intermediate
// representation" (cmd_emit_bytecode.go) into separate subcommands instead
// of one command with a mode flag.
type preprocessCmd struct {
	output       string
	includePaths repeatedFlag
	defines      repeatedFlag
	undefines    repeatedFlag
}

func (*preprocessCmd) Name() string     { return "preprocess" }
func (*preprocessCmd) Synopsis() string { return "run only the preprocessor and print cooked tokens" }
func (*preprocessCmd) Usage() string {
	return `preprocess [-o out] [-I dir]... [-D NAME[=val]]... [-U NAME]... file.c:
  Equivalent to "compile -E file.c".
`
}

func (c *preprocessCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "write output to this path instead of stdout")
	f.Var(&c.includePaths, "I", "add a directory to the #include search path (repeatable)")
	f.Var(&c.defines, "D", "define NAME or NAME=value before preprocessing (repeatable)")
	f.Var(&c.undefines, "U", "undefine NAME before preprocessing (repeatable)")
}

func (c *preprocessCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "preprocess: exactly one source file is required\n")
		return subcommands.ExitUsageError
	}
	return runCompile(compileRequest{
		path:           args[0],
		output:         c.output,
		includePaths:   c.includePaths,
		defines:        c.defines,
		undefines:      c.undefines,
		preprocessOnly: true,
	})
}
