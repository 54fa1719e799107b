package builtins

import (
	"testing"

	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/types"
)

func TestLookupAndByKindAgree(t *testing.T) {
	b := Lookup("dot")
	if b == nil {
		t.Fatalf("expected dot to be registered")
	}
	if b.Kind != ast.IntrinsicDotProduct {
		t.Fatalf("expected dot to map to IntrinsicDotProduct, got %v", b.Kind)
	}
	if ByKind(ast.IntrinsicDotProduct) != b {
		t.Fatalf("expected ByKind to return the same entry as Lookup")
	}
}

func TestIsBuiltinUnknownName(t *testing.T) {
	if IsBuiltin("notARealIntrinsic") {
		t.Fatalf("expected an unregistered name to report false")
	}
}

func TestResolveOverloadDot(t *testing.T) {
	vec3f32 := &types.Vector{Count: 3, Elem: types.F32}
	ret, ok := ResolveOverload(Lookup("dot"), []types.Type{vec3f32, vec3f32})
	if !ok {
		t.Fatalf("expected dot(vec3<f32>, vec3<f32>) to resolve")
	}
	if !ret.Equals(types.NewPrimitive(types.F32)) {
		t.Fatalf("expected dot to return f32, got %s", ret)
	}
}

func TestResolveOverloadCrossRejectsVec4(t *testing.T) {
	vec4f32 := &types.Vector{Count: 4, Elem: types.F32}
	_, ok := ResolveOverload(Lookup("cross"), []types.Type{vec4f32, vec4f32})
	if ok {
		t.Fatalf("expected cross to reject vec4 operands")
	}
}

func TestResolveOverloadClampMismatchedTypes(t *testing.T) {
	f32 := types.NewPrimitive(types.F32)
	i32 := types.NewPrimitive(types.I32)
	_, ok := ResolveOverload(Lookup("clamp"), []types.Type{f32, f32, i32})
	if ok {
		t.Fatalf("expected clamp to reject a mismatched third operand")
	}
}

func TestResolveOverloadLerpScalarFactor(t *testing.T) {
	vec3f32 := &types.Vector{Count: 3, Elem: types.F32}
	f32 := types.NewPrimitive(types.F32)
	ret, ok := ResolveOverload(Lookup("lerp"), []types.Type{vec3f32, vec3f32, f32})
	if !ok {
		t.Fatalf("expected lerp(vec3, vec3, f32) to resolve")
	}
	if !ret.Equals(vec3f32) {
		t.Fatalf("expected lerp to return vec3, got %s", ret)
	}
}

func TestReservedNamesIncludeVectorAndMatrixConstructors(t *testing.T) {
	names := ReservedTypeNames()
	want := map[string]bool{"vec2": false, "vec3": false, "vec4": false, "mat4x4": false, "array": false}
	for _, n := range names {
		if _, ok := want[n]; ok {
			want[n] = true
		}
	}
	for n, found := range want {
		if !found {
			t.Fatalf("expected %q among reserved type names", n)
		}
	}
}

func TestReservedConstantNamesIncludeAccessPolicies(t *testing.T) {
	names := ReservedConstantNames()
	found := map[string]bool{}
	for _, n := range names {
		found[n] = true
	}
	for _, want := range []string{"readonly", "readwrite", "writeonly"} {
		if !found[want] {
			t.Fatalf("expected %q among reserved constant names", want)
		}
	}
}
