// declarations.go contains the top-level declaration records: variables
// (locals, globals, and the function header itself) and the program's
// translation unit, per spec.md §3 ("Variable").
package ast

import "nilan/types"

// StorageClass classifies a Var, per spec.md §3.
type StorageClass int

const (
	Local StorageClass = iota
	Global
	Function
)

// Var is a variable record shared by locals, globals and (with StorageClass
// == Function) the function header that owns a body.
type Var struct {
	Name    string
	Type    *types.Type
	Storage StorageClass

	// Local: frame offset, assigned by the parser/codegen frame layout
	// pass. Negative, relative to %rbp (spec.md §4.5 "Address mode").
	Offset int

	// Global: either an initializer image or a flag marking it
	// uninitialized (bss), per spec.md §3.
	InitData []byte
	IsBSS    bool
	IsStatic bool

	// IsExtern marks a declaration with no definition of its own (spec.md
	// §4.4's declaration grammar admits these; they are carried through so
	// a later translation unit's definition can be referenced, but this
	// module never links multiple translation units together).
	IsExtern bool

	// IsTLS records a `_Thread_local` storage-class specifier. Per
	// SPEC_FULL.md §7(a), this is parsed and carried through but codegen
	// emits the variable as an ordinary global: this is a single-threaded
	// batch compiler, so there is no `.tbss`/fs-relative addressing to
	// generate.
	IsTLS bool

	// Function (StorageClass == Function): parameter list, locals,
	// entry statement, and computed frame size. IsDefinition distinguishes
	// a full definition from a bare prototype declaration.
	Params       []*Var
	Locals       []*Var
	Body         Stmt
	StackSize    int
	IsDefinition bool
	IsVariadic   bool
}

// Program is a whole translation unit: every top-level function and global
// variable, in declaration order (spec.md §4.4 grammar's `program` rule).
type Program struct {
	Funcs   []*Var
	Globals []*Var
}
