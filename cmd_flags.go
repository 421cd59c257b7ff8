package main

import "strings"

// repeatedFlag implements flag.Value for a command-line flag that may be
// given more than once (-I, -D, -U), accumulating every occurrence into an
// ordered slice. The teacher's own SetFlags methods (cmd_run.go, cmd_emit_
// bytecode.go) only ever bind single-valued flags via f.StringVar/f.BoolVar;
// this generalizes that pattern to the repeatable flags spec.md §6 and
// SPEC_FULL.md §3 require.
type repeatedFlag []string

func (r *repeatedFlag) String() string {
	if r == nil {
		return ""
	}
	return strings.Join(*r, ",")
}

func (r *repeatedFlag) Set(v string) error {
	*r = append(*r, v)
	return nil
}
