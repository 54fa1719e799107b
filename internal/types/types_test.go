package types

import "testing"

func TestPrimitiveEquals(t *testing.T) {
	a := NewPrimitive(I32)
	b := NewPrimitive(I32)
	c := NewPrimitive(U32)

	if !a.Equals(b) {
		t.Fatalf("expected %s to equal %s", a, b)
	}
	if a.Equals(c) {
		t.Fatalf("did not expect %s to equal %s", a, c)
	}
}

func TestVectorEquals(t *testing.T) {
	v1 := &Vector{Count: 3, Elem: F32}
	v2 := &Vector{Count: 3, Elem: F32}
	v3 := &Vector{Count: 4, Elem: F32}

	if !v1.Equals(v2) {
		t.Fatalf("expected %s to equal %s", v1, v2)
	}
	if v1.Equals(v3) {
		t.Fatalf("did not expect %s to equal %s", v1, v3)
	}
}

func TestResolveAliasPeelsChain(t *testing.T) {
	f32 := NewPrimitive(F32)
	inner := &Alias{Name: "Scalar", Target: f32}
	outer := &Alias{Name: "MyScalar", Target: inner}

	resolved := ResolveAlias(outer)
	if resolved != Type(f32) {
		t.Fatalf("expected ResolveAlias to peel to f32, got %s", resolved.String())
	}

	// An alias is never Equals to its resolved target.
	if outer.Equals(f32) {
		t.Fatalf("alias must not equal its target")
	}
}

func TestAliasEqualsRequiresSameNameAndTarget(t *testing.T) {
	a := &Alias{Name: "X", Target: NewPrimitive(F32)}
	b := &Alias{Name: "X", Target: NewPrimitive(F32)}
	c := &Alias{Name: "Y", Target: NewPrimitive(F32)}

	if !a.Equals(b) {
		t.Fatalf("expected equal aliases to compare equal")
	}
	if a.Equals(c) {
		t.Fatalf("expected differently named aliases to differ")
	}
}

func TestScalarKind(t *testing.T) {
	if k, ok := ScalarKind(NewPrimitive(F32)); !ok || k != F32 {
		t.Fatalf("expected F32, got %v ok=%v", k, ok)
	}
	if k, ok := ScalarKind(&Vector{Count: 2, Elem: Bool}); !ok || k != Bool {
		t.Fatalf("expected Bool, got %v ok=%v", k, ok)
	}
	if _, ok := ScalarKind(&Array{Inner: NewPrimitive(I32), Length: 4}); ok {
		t.Fatalf("expected array to have no scalar kind")
	}
}

func TestCanConvertToUntypedIntLiteral(t *testing.T) {
	lit := NewPrimitive(IntLiteral)
	if !CanConvertTo(lit, NewPrimitive(I32)) {
		t.Fatalf("expected an int literal to convert to i32")
	}
	if !CanConvertTo(lit, NewPrimitive(U32)) {
		t.Fatalf("expected an int literal to convert to u32")
	}
	if CanConvertTo(lit, NewPrimitive(F32)) {
		t.Fatalf("did not expect an int literal to convert to f32")
	}
}

func TestCanConvertToRejectsConcreteMismatch(t *testing.T) {
	if CanConvertTo(NewPrimitive(I32), NewPrimitive(F32)) {
		t.Fatalf("did not expect i32 to convert to f32 implicitly")
	}
}

func TestCanConvertToVectorOfLiteral(t *testing.T) {
	litVec := &Vector{Count: 3, Elem: FloatLiteral}
	f32Vec := &Vector{Count: 3, Elem: F32}
	if !CanConvertTo(litVec, f32Vec) {
		t.Fatalf("expected a vec3<{float}> to convert to vec3<f32>")
	}
	f32Vec4 := &Vector{Count: 4, Elem: F32}
	if CanConvertTo(litVec, f32Vec4) {
		t.Fatalf("did not expect component counts to mismatch and still convert")
	}
}

func TestCommonTypePrefersConcrete(t *testing.T) {
	lit := NewPrimitive(IntLiteral)
	i32 := NewPrimitive(I32)
	if got := CommonType(lit, i32); !got.Equals(i32) {
		t.Fatalf("expected CommonType(literal, i32) to be i32, got %s", got)
	}
	if got := CommonType(i32, lit); !got.Equals(i32) {
		t.Fatalf("expected CommonType(i32, literal) to be i32, got %s", got)
	}
}

func TestCommonTypeIncompatibleReturnsNil(t *testing.T) {
	if got := CommonType(NewPrimitive(I32), NewPrimitive(F32)); got != nil {
		t.Fatalf("expected no common type between i32 and f32, got %s", got)
	}
}
