// Package types builds and compares type descriptors: size/alignment
// computation, usual arithmetic conversions, decay, and struct/union/
// bit-field layout (spec.md §3 "Type descriptor", §4.3).
package types

// Kind tags a Type, mirroring chibicc's TypeKind enum (original_source/
// chibi.h) but rendered as the teacher's discriminated-tag-on-struct idiom
// rather than a C union, since every Type here is a plain struct and the
// Kind only selects which optional fields are populated.
type Kind int

const (
	Void Kind = iota
	Bool
	Char
	Short
	Int
	Long
	Enum
	Pointer
	Array
	Struct
	Union
	Function
)

func (k Kind) String() string {
	switch k {
	case Void:
		return "void"
	case Bool:
		return "_Bool"
	case Char:
		return "char"
	case Short:
		return "short"
	case Int:
		return "int"
	case Long:
		return "long"
	case Enum:
		return "enum"
	case Pointer:
		return "pointer"
	case Array:
		return "array"
	case Struct:
		return "struct"
	case Union:
		return "union"
	case Function:
		return "function"
	default:
		return "unknown"
	}
}

// Member is one field of a struct/union type, carrying bit-field placement
// when applicable (spec.md §3, §4.3).
type Member struct {
	Name   string
	Type   *Type
	Offset int // byte offset within the enclosing struct/union

	IsBitfield bool
	BitOffset  int // bit offset within the storage unit at Offset
	BitWidth   int
}

// Type is a type descriptor. Only the fields relevant to Kind are
// populated; callers select behavior with a type switch on Kind exactly as
// spec.md §3 specifies ("Tagged by kind").
type Type struct {
	Kind      Kind
	Size      int
	Align     int
	Unsigned  bool
	IsTypedef bool
	IsStatic  bool
	Incomplete bool

	Base       *Type // Pointer, Array
	ArrayLen   int   // Array: element count
	Members    []*Member
	ReturnType *Type   // Function
	Params     []*Type // Function
	IsVariadic bool    // Function

	// Name, for diagnostics only; not part of type identity.
	Name string
}

func newType(kind Kind, size, align int) *Type {
	return &Type{Kind: kind, Size: size, Align: align}
}

// Primitive constructors (each call returns a fresh descriptor), grounded on original_source/type.c's
// void_type/bool_type/char_type/.../long_type/enum_type.
func NewVoid() *Type { return newType(Void, 1, 1) }
func NewBool() *Type { return newType(Bool, 1, 1) }
func NewChar() *Type { return newType(Char, 1, 1) }
func NewShort() *Type { return newType(Short, 2, 2) }
func NewInt() *Type  { return newType(Int, 4, 4) }
func NewLong() *Type { return newType(Long, 8, 8) }
func NewEnum() *Type { return newType(Enum, 4, 4) }

// NewUnsignedLong returns the type used for __SIZE_TYPE__ / size_t.
func NewUnsignedLong() *Type {
	t := NewLong()
	t.Unsigned = true
	return t
}

// PointerTo returns a pointer-to-base type. Pointers are always 8 bytes
// with 8-byte alignment (spec.md §4.2).
func PointerTo(base *Type) *Type {
	t := newType(Pointer, 8, 8)
	t.Base = base
	return t
}

// ArrayOf returns an array-of-base type with the given element count.
// Arrays inherit their element's alignment; size is element_size*len.
func ArrayOf(base *Type, length int) *Type {
	t := newType(Array, base.Size*length, base.Align)
	t.Base = base
	t.ArrayLen = length
	return t
}

// FuncType returns a function type with the given return type. Function
// descriptors carry size 1/align 1 as placeholders; they are never
// instantiated as values.
func FuncType(ret *Type) *Type {
	t := newType(Function, 1, 1)
	t.ReturnType = ret
	return t
}

// AlignTo rounds n up to the next multiple of align, per
// original_source/type.c: align_to.
func AlignTo(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

// IsInteger reports whether t is one of the integer kinds (including Bool
// and Enum, which behave as integers in arithmetic).
func (t *Type) IsInteger() bool {
	switch t.Kind {
	case Bool, Char, Short, Int, Long, Enum:
		return true
	}
	return false
}

// IsScalar reports whether t is an integer or pointer type.
func (t *Type) IsScalar() bool {
	return t.IsInteger() || t.Kind == Pointer
}

// HasBase reports whether t decays to or already is a pointer/array type,
// i.e. a type that scales arithmetic by its pointee's size.
func (t *Type) HasBase() bool {
	return t.Kind == Pointer || t.Kind == Array
}

// FindMember looks up a named member of a struct/union type, grounded on
// original_source/type.c: find_member.
func (t *Type) FindMember(name string) *Member {
	for _, m := range t.Members {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// OffsetOf returns the byte offset of a named member, for the `offsetof`
// builtin restored from original_source/test/offsetof.c (SPEC_FULL.md §6).
func (t *Type) OffsetOf(name string) (int, bool) {
	m := t.FindMember(name)
	if m == nil {
		return 0, false
	}
	return m.Offset, true
}

// Decay applies array-to-pointer and function-to-function-pointer decay,
// per spec.md §3's invariant list ("array-to-pointer decay").
func (t *Type) Decay() *Type {
	switch t.Kind {
	case Array:
		return PointerTo(t.Base)
	case Function:
		return PointerTo(t)
	default:
		return t
	}
}

// UsualArithmeticConvert implements integer promotion plus the
// wider-type-wins rule from spec.md §4.2 ("Usual arithmetic conversions").
// Pointer operands are returned unchanged; callers are expected to have
// already rejected pointer/pointer arithmetic that isn't subtraction.
func UsualArithmeticConvert(a, b *Type) *Type {
	if a.HasBase() {
		return a
	}
	if b.HasBase() {
		return b
	}
	a = promote(a)
	b = promote(b)
	if a.Size != b.Size {
		if a.Size < b.Size {
			return b
		}
		return a
	}
	if b.Unsigned {
		return b
	}
	return a
}

// promote widens any integer type smaller than int up to int, matching
// chibicc's implicit behavior in add_type's arithmetic-node cases (the
// original returns int_type() for every comparison/bitwise node; this
// function isolates the "smaller than int becomes int" half of that rule
// so binary arithmetic nodes can still prefer the operand's own width when
// it is int-or-wider).
func promote(t *Type) *Type {
	if t.Kind == Bool || t.Kind == Char || t.Kind == Short || t.Kind == Enum {
		return NewInt()
	}
	return t
}

// SizeOf returns sizeof(t), per original_source/type.c: size_of. Struct
// size is already computed by LayoutStruct/LayoutUnion at construction
// time, so this is just an accessor; it returns t.Size as is, which is 1
// for void.
func SizeOf(t *Type) int {
	return t.Size
}

// LayoutStruct computes member byte offsets greedily with per-member
// alignment, rounds the total size up to the struct's own alignment (the
// max of member alignments), and packs consecutive bit-fields into shared
// storage units, per spec.md §4.3. It mutates each member's Offset (and
// BitOffset for bit-fields) in place and returns the resulting struct Type.
func LayoutStruct(name string, members []*Member) *Type {
	t := &Type{Kind: Struct, Name: name, Members: members}

	offset := 0
	maxAlign := 1
	var bitOffset int
	haveOpenUnit := false
	unitAlign := 1

	for _, m := range members {
		if m.IsBitfield {
			if m.BitWidth == 0 {
				// A zero-width bit-field forces alignment to the next
				// storage unit (spec.md §4.3).
				if haveOpenUnit {
					offset += (bitOffset + 7) / 8
					offset = AlignTo(offset, m.Type.Align)
					haveOpenUnit = false
				}
				continue
			}
			unitSize := m.Type.Size
			if !haveOpenUnit {
				offset = AlignTo(offset, m.Type.Align)
				bitOffset = 0
				haveOpenUnit = true
				unitAlign = m.Type.Align
			} else if bitOffset+m.BitWidth > unitSize*8 {
				offset += unitSize
				offset = AlignTo(offset, m.Type.Align)
				bitOffset = 0
			}
			m.Offset = offset
			m.BitOffset = bitOffset
			bitOffset += m.BitWidth
			if m.Type.Align > maxAlign {
				maxAlign = m.Type.Align
			}
			if unitAlign > maxAlign {
				maxAlign = unitAlign
			}
			continue
		}

		if haveOpenUnit {
			offset += (bitOffset + 7) / 8
			haveOpenUnit = false
		}
		offset = AlignTo(offset, m.Type.Align)
		m.Offset = offset
		offset += m.Type.Size
		if m.Type.Align > maxAlign {
			maxAlign = m.Type.Align
		}
	}
	if haveOpenUnit {
		offset += (bitOffset + 7) / 8
	}

	t.Align = maxAlign
	t.Size = AlignTo(offset, maxAlign)
	if t.Size == 0 {
		t.Size = maxAlign
	}
	return t
}

// LayoutUnion takes the maximum member size and alignment, per spec.md
// §4.3 ("Unions take the maximum member size and alignment").
func LayoutUnion(name string, members []*Member) *Type {
	t := &Type{Kind: Union, Name: name, Members: members}
	maxSize, maxAlign := 0, 1
	for _, m := range members {
		m.Offset = 0
		if m.Type.Size > maxSize {
			maxSize = m.Type.Size
		}
		if m.Type.Align > maxAlign {
			maxAlign = m.Type.Align
		}
	}
	t.Align = maxAlign
	t.Size = AlignTo(maxSize, maxAlign)
	return t
}

// PointerArithScale returns the scale factor for `p + n` / `p - n` on a
// pointer-or-array type, per spec.md §4.2 ("scale n by sizeof(*p)").
func PointerArithScale(ptrOrArray *Type) int {
	return ptrOrArray.Base.Size
}
