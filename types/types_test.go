package types

import "testing"

func TestPrimitiveSizesAndAlignment(t *testing.T) {
	cases := []struct {
		ty    *Type
		size  int
		align int
	}{
		{NewVoid(), 1, 1},
		{NewBool(), 1, 1},
		{NewChar(), 1, 1},
		{NewShort(), 2, 2},
		{NewInt(), 4, 4},
		{NewLong(), 8, 8},
		{NewEnum(), 4, 4},
	}
	for _, c := range cases {
		if c.ty.Size != c.size || c.ty.Align != c.align {
			t.Errorf("%s: got size=%d align=%d, want size=%d align=%d",
				c.ty.Kind, c.ty.Size, c.ty.Align, c.size, c.align)
		}
	}
}

func TestPointerIsAlwaysEightBytes(t *testing.T) {
	p := PointerTo(NewChar())
	if p.Size != 8 || p.Align != 8 {
		t.Fatalf("expected pointer size/align 8/8, got %d/%d", p.Size, p.Align)
	}
}

func TestArrayOfInheritsElementAlignment(t *testing.T) {
	a := ArrayOf(NewInt(), 10)
	if a.Size != 40 {
		t.Fatalf("expected array size 40, got %d", a.Size)
	}
	if a.Align != 4 {
		t.Fatalf("expected array align 4, got %d", a.Align)
	}
}

func TestArrayDecaysToPointer(t *testing.T) {
	a := ArrayOf(NewInt(), 10)
	p := a.Decay()
	if p.Kind != Pointer || p.Base != a.Base {
		t.Fatalf("expected array to decay to pointer-to-int, got %+v", p)
	}
}

func TestLayoutStructGreedyOffsets(t *testing.T) {
	members := []*Member{
		{Name: "a", Type: NewChar()},
		{Name: "b", Type: NewInt()},
		{Name: "c", Type: NewChar()},
	}
	st := LayoutStruct("s", members)
	if members[0].Offset != 0 {
		t.Fatalf("expected a at offset 0, got %d", members[0].Offset)
	}
	if members[1].Offset != 4 {
		t.Fatalf("expected b at offset 4 (aligned), got %d", members[1].Offset)
	}
	if members[2].Offset != 8 {
		t.Fatalf("expected c at offset 8, got %d", members[2].Offset)
	}
	if st.Size != 12 {
		t.Fatalf("expected struct size rounded to alignment 4 -> 12, got %d", st.Size)
	}
}

func TestLayoutUnionTakesMax(t *testing.T) {
	members := []*Member{
		{Name: "a", Type: NewChar()},
		{Name: "b", Type: NewLong()},
	}
	un := LayoutUnion("u", members)
	if un.Size != 8 || un.Align != 8 {
		t.Fatalf("expected union size/align 8/8, got %d/%d", un.Size, un.Align)
	}
	if members[0].Offset != 0 || members[1].Offset != 0 {
		t.Fatalf("expected both union members at offset 0")
	}
}

// TestBitfieldStructSizeIsEight exercises spec.md §8 scenario 6:
// struct {int a:3; int:0; int c:5;} has sizeof == 8.
func TestBitfieldStructSizeIsEight(t *testing.T) {
	intTy := NewInt()
	members := []*Member{
		{Name: "a", Type: intTy, IsBitfield: true, BitWidth: 3},
		{Name: "", Type: intTy, IsBitfield: true, BitWidth: 0},
		{Name: "c", Type: intTy, IsBitfield: true, BitWidth: 5},
	}
	st := LayoutStruct("bf", members)
	if st.Size != 8 {
		t.Fatalf("expected sizeof == 8, got %d", st.Size)
	}
	if members[0].Offset != 0 || members[0].BitOffset != 0 {
		t.Fatalf("expected a at storage unit 0 bit 0, got offset=%d bitOffset=%d",
			members[0].Offset, members[0].BitOffset)
	}
	if members[2].Offset != 4 {
		t.Fatalf("expected c to start a new storage unit at offset 4 after the zero-width field, got %d", members[2].Offset)
	}
}

func TestOffsetOfLooksUpMember(t *testing.T) {
	members := []*Member{
		{Name: "x", Type: NewInt()},
		{Name: "y", Type: NewInt()},
	}
	st := LayoutStruct("point", members)
	off, ok := st.OffsetOf("y")
	if !ok || off != 4 {
		t.Fatalf("expected offsetof(y) == 4, got off=%d ok=%v", off, ok)
	}
	if _, ok := st.OffsetOf("z"); ok {
		t.Fatalf("expected offsetof(z) to fail for a nonexistent member")
	}
}

func TestUsualArithmeticConvertPromotesSmallerThanInt(t *testing.T) {
	result := UsualArithmeticConvert(NewChar(), NewChar())
	if result.Kind != Int {
		t.Fatalf("expected char+char to promote to int, got %s", result.Kind)
	}
}

func TestUsualArithmeticConvertWiderWins(t *testing.T) {
	result := UsualArithmeticConvert(NewInt(), NewLong())
	if result.Kind != Long {
		t.Fatalf("expected int+long to convert to long, got %s", result.Kind)
	}
}

func TestUsualArithmeticConvertPointerWins(t *testing.T) {
	p := PointerTo(NewInt())
	result := UsualArithmeticConvert(p, NewInt())
	if result != p {
		t.Fatalf("expected pointer operand to win over int")
	}
}

func TestPointerArithScaleUsesPointeeSize(t *testing.T) {
	p := PointerTo(NewLong())
	if s := PointerArithScale(p); s != 8 {
		t.Fatalf("expected scale 8 for pointer-to-long, got %d", s)
	}
}

func TestAlignTo(t *testing.T) {
	cases := []struct{ n, align, want int }{
		{0, 8, 0},
		{1, 8, 8},
		{8, 8, 8},
		{9, 8, 16},
		{13, 4, 16},
	}
	for _, c := range cases {
		if got := AlignTo(c.n, c.align); got != c.want {
			t.Errorf("AlignTo(%d,%d) = %d, want %d", c.n, c.align, got, c.want)
		}
	}
}
