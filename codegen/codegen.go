// Package codegen walks a typed ast.Program and emits AT&T-syntax x86-64
// assembly for a System V AMD64 target (spec.md §4.5). It is grounded on
// original_source/codegen.c (rui314/chibicc): the same depth-tracked
// virtual stack, the same gen_addr/load/store split, the same
// .L.else.N/.L.end.N/.L.begin.N/.L.return.FN label scheme, generalized
// from that snapshot's ND_NUM/ND_VAR/ND_ADD/... node set to the fuller one
// parser/ and ast/ build (switch/case, goto/label, member access,
// compound assignment, increment/decrement, the conditional and comma
// operators, statement-expressions), per SPEC_FULL.md §2.
package codegen

import (
	"fmt"
	"io"

	"nilan/ast"
	"nilan/source"
	"nilan/types"
)

// Generator holds everything threaded through one translation unit's worth
// of code generation: the output stream, the live-push counter that must
// return to zero at every statement boundary, the label-minting counter,
// and the function currently being emitted (so `return` can jump to its
// epilogue label; break/continue/case jump to labels the parser stored on
// the AST nodes).
type Generator struct {
	out      io.Writer
	reporter source.Reporter

	depth   int
	counter int

	// currentFn is the function whose body is currently being walked, so
	// `return` knows which epilogue label to jump to.
	currentFn *ast.Var
}

// New creates a Generator writing assembly to w and reporting internal
// errors through rep (nil is fine; a CLI invocation always supplies one).
func New(w io.Writer, rep source.Reporter) *Generator {
	return &Generator{out: w, reporter: rep}
}

// Generate lays out local-variable frame offsets, then emits the data and
// text segments for prog, matching chibicc's top-level codegen() (assign_
// lvar_offsets, emit_data, emit_text). It recovers from the first internal
// error exactly like parser.Parse recovers from the first syntax error,
// so callers get an ordinary error return instead of a panicking pipeline.
func (g *Generator) Generate(prog *ast.Program) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if b, ok := r.(bailout); ok {
				err = b.err
				return
			}
			panic(r)
		}
	}()

	g.assignLocalOffsets(prog)
	g.emitData(prog)
	g.emitText(prog)
	return nil
}

func (g *Generator) emitf(format string, args ...interface{}) {
	fmt.Fprintf(g.out, format, args...)
}

// push spills %rax onto the virtual stack, matching chibicc's push().
func (g *Generator) push() {
	g.emitf("  push %%rax\n")
	g.depth++
}

// pop restores the top of the virtual stack into arg, matching chibicc's
// pop(char *arg).
func (g *Generator) pop(arg string) {
	g.emitf("  pop %s\n", arg)
	g.depth--
}

// count mints a fresh label-disambiguating integer, matching chibicc's
// static count(). Unlike the break/continue/case labels the parser mints
// during parsing, the if/else labels and the loop-top labels are minted
// here, because ast.If carries no label fields and the loop nodes carry
// only their break/continue labels — there is exactly one generator
// walking the tree, so a single counter threaded through it is sufficient.
func (g *Generator) count() int {
	g.counter++
	return g.counter
}

func (g *Generator) newLabel(purpose string) string {
	return fmt.Sprintf(".L.%s.%d", purpose, g.count())
}

// assignLocalOffsets computes each function's frame layout: every local
// (including parameters, which share the same Locals slice) gets a
// negative %rbp-relative offset, and the function's StackSize is rounded
// up to a 16-byte boundary per spec.md §4.5 and the testable property in
// spec.md §8 ("stack_size % 16 == 0"). This generalizes chibicc's
// assign_lvar_offsets, which packs locals byte-for-byte with no regard for
// alignment; that's safe for chibicc's scalar-only early locals, but this
// front end's locals can be structs/arrays/bit-field-bearing structs, so
// each variable's own offset is aligned to its type's alignment before
// being carved out of the frame (otherwise a taked-address struct member
// could end up at a misaligned address).
func (g *Generator) assignLocalOffsets(prog *ast.Program) {
	for _, fn := range prog.Funcs {
		if !fn.IsDefinition {
			continue
		}
		offset := 0
		for _, v := range fn.Locals {
			offset += v.Type.Size
			offset = types.AlignTo(offset, v.Type.Align)
			v.Offset = -offset
		}
		fn.StackSize = types.AlignTo(offset, 16)
	}
}

func (g *Generator) emitData(prog *ast.Program) {
	for _, v := range prog.Globals {
		if v.Storage == ast.Function {
			continue
		}

		g.emitf("  .data\n")
		if !v.IsStatic {
			g.emitf("  .globl %s\n", v.Name)
		}
		g.emitf("%s:\n", v.Name)

		if !v.IsBSS {
			for _, b := range v.InitData {
				g.emitf("  .byte %d\n", b)
			}
		} else {
			g.emitf("  .zero %d\n", v.Type.Size)
		}
	}
}

// argReg8/argReg64 are the System V AMD64 integer-argument registers, byte
// and 64-bit width, matching chibicc's argreg8/argreg64 tables (spec.md
// §4.5's calling-convention paragraph).
var argReg8 = [6]string{"%dil", "%sil", "%dl", "%cl", "%r8b", "%r9b"}
var argReg16 = [6]string{"%di", "%si", "%dx", "%cx", "%r8w", "%r9w"}
var argReg32 = [6]string{"%edi", "%esi", "%edx", "%ecx", "%r8d", "%r9d"}
var argReg64 = [6]string{"%rdi", "%rsi", "%rdx", "%rcx", "%r8", "%r9"}

func argRegFor(size int, i int) string {
	switch size {
	case 1:
		return argReg8[i]
	case 2:
		return argReg16[i]
	case 4:
		return argReg32[i]
	default:
		return argReg64[i]
	}
}

func (g *Generator) emitText(prog *ast.Program) {
	for _, fn := range prog.Funcs {
		if !fn.IsDefinition {
			continue
		}

		if !fn.IsStatic {
			g.emitf("  .globl %s\n", fn.Name)
		}
		g.emitf("  .text\n")
		g.emitf("%s:\n", fn.Name)
		g.currentFn = fn

		// Prologue.
		g.emitf("  push %%rbp\n")
		g.emitf("  mov %%rsp, %%rbp\n")
		g.emitf("  sub $%d, %%rsp\n", fn.StackSize)

		// Save passed-by-register arguments to their frame slots, widest
		// move that matches each parameter's declared width (spec.md
		// §4.5: "moves register arguments to their frame slots using the
		// proper width"). Parameters beyond the six integer-argument
		// registers were already spilled to the stack by the caller per
		// the System V convention, so nothing is copied for them here;
		// original_source/codegen.c never has more than 6 params to
		// begin with.
		for i, param := range fn.Params {
			if i >= len(argReg64) {
				break
			}
			reg := argRegFor(param.Type.Size, i)
			g.emitf("  mov %s, %d(%%rbp)\n", reg, param.Offset)
		}

		g.genStmt(fn.Body)
		if g.depth != 0 {
			g.errorf(fn.Body.Tok(), "internal error: unbalanced push/pop, depth=%d", g.depth)
		}

		// Epilogue.
		g.emitf(".L.return.%s:\n", fn.Name)
		g.emitf("  mov %%rbp, %%rsp\n")
		g.emitf("  pop %%rbp\n")
		g.emitf("  ret\n")
	}
}

func (g *Generator) genStmt(s ast.Stmt) {
	s.Accept(g)
}

func (g *Generator) genExpr(e ast.Expr) {
	e.Accept(g)
}
