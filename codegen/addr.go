package codegen

import (
	"nilan/ast"
	"nilan/types"
)

// genAddr computes the absolute address of an lvalue into %rax, matching
// chibicc's gen_addr. It is an error if e does not reside in memory
// (spec.md §4.5: "`&e` emits an address computation").
func (g *Generator) genAddr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.VarRef:
		g.genVarAddr(n.Var)
		return
	case *ast.Deref:
		g.genExpr(n.X)
		return
	case *ast.Member:
		g.genAddr(n.X)
		if n.Arrow {
			g.emitf("  mov (%%rax), %%rax\n")
		}
		if n.Member.Offset != 0 {
			g.emitf("  add $%d, %%rax\n", n.Member.Offset)
		}
		return
	case *ast.Comma:
		g.genExpr(n.X)
		g.genAddr(n.Y)
		return
	}

	g.errorf(e.Tok(), "not an lvalue")
}

func (g *Generator) genVarAddr(v *ast.Var) {
	switch v.Storage {
	case ast.Local:
		g.emitf("  lea %d(%%rbp), %%rax\n", v.Offset)
	default:
		// Globals and string literals are addressed RIP-relative; _Thread_
		// local variables are emitted as ordinary globals per SPEC_FULL.md
		// §7(a) (this is a single-threaded batch compiler), so IsTLS needs
		// no special addressing here.
		g.emitf("  lea %s(%%rip), %%rax\n", v.Name)
	}
}

// load reads the value at the address in %rax into %rax itself, widened or
// narrowed per ty, matching chibicc's load(Type *ty). Arrays, structs and
// unions are never loaded into a register: their "value" is the address
// already in %rax (spec.md §4.5's address-mode paragraph; this is where C's
// array-to-pointer decay and pass-by-reference aggregates fall out).
func (g *Generator) load(ty *types.Type) {
	switch ty.Kind {
	case types.Array, types.Struct, types.Union:
		return
	}

	switch ty.Size {
	case 1:
		if ty.Unsigned {
			g.emitf("  movzbq (%%rax), %%rax\n")
		} else {
			g.emitf("  movsbq (%%rax), %%rax\n")
		}
	case 2:
		if ty.Unsigned {
			g.emitf("  movzwq (%%rax), %%rax\n")
		} else {
			g.emitf("  movswq (%%rax), %%rax\n")
		}
	case 4:
		if ty.Unsigned {
			g.emitf("  mov (%%rax), %%eax\n")
		} else {
			g.emitf("  movslq (%%rax), %%rax\n")
		}
	default:
		g.emitf("  mov (%%rax), %%rax\n")
	}
}

// store writes %rax to the address on top of the virtual stack, matching
// chibicc's store(Type *ty). Struct/union values are copied byte-for-byte
// rather than moved through a register, since they never sit in one.
func (g *Generator) store(ty *types.Type) {
	g.pop("%rdi")

	switch ty.Kind {
	case types.Struct, types.Union:
		g.copyStruct(ty.Size)
		return
	}

	switch ty.Size {
	case 1:
		g.emitf("  mov %%al, (%%rdi)\n")
	case 2:
		g.emitf("  mov %%ax, (%%rdi)\n")
	case 4:
		g.emitf("  mov %%eax, (%%rdi)\n")
	default:
		g.emitf("  mov %%rax, (%%rdi)\n")
	}
}

// copyStruct copies size bytes from the address in %rax to the address in
// %rdi, 8 bytes at a time with a trailing byte remainder, used for whole-
// struct/union assignment (`a = b;` where both are aggregates). Neither
// register is preserved afterward; callers that still need the destination
// address reload it.
func (g *Generator) copyStruct(size int) {
	off := 0
	for size-off >= 8 {
		g.emitf("  mov %d(%%rax), %%rcx\n", off)
		g.emitf("  mov %%rcx, %d(%%rdi)\n", off)
		off += 8
	}
	for size-off >= 4 {
		g.emitf("  mov %d(%%rax), %%ecx\n", off)
		g.emitf("  mov %%ecx, %d(%%rdi)\n", off)
		off += 4
	}
	for off < size {
		g.emitf("  movb %d(%%rax), %%cl\n", off)
		g.emitf("  movb %%cl, %d(%%rdi)\n", off)
		off++
	}
}
