package constant

import "testing"

func TestScalarRoundTrip(t *testing.T) {
	v := I32(42)
	if v.IsNoValue() {
		t.Fatalf("expected a value")
	}
	if got := v.I32Value(); got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
	if got := Describe(v); got != "42" {
		t.Fatalf("got %q, want %q", got, "42")
	}
}

func TestVecConstruction(t *testing.T) {
	v, err := Vec([]Value{F32(1), F32(2), F32(3)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsVector() {
		t.Fatalf("expected vector")
	}
	if got := GetType(v).String(); got != "vec3[f32]" {
		t.Fatalf("got %q", got)
	}
	if got := Describe(v); got != "(1, 2, 3)" {
		t.Fatalf("got %q", got)
	}
}

func TestVecRejectsMismatchedArity(t *testing.T) {
	if _, err := Vec([]Value{F32(1)}); err == nil {
		t.Fatalf("expected error for 1-element vector")
	}
	if _, err := Vec([]Value{F32(1), F32(2), F32(3), F32(4), F32(5)}); err == nil {
		t.Fatalf("expected error for 5-element vector")
	}
}

func TestArrayGetType(t *testing.T) {
	arr := Array([]Value{I32(1), I32(2), I32(3)})
	ty := GetType(arr)
	if got := ty.String(); got != "array[i32, 3]" {
		t.Fatalf("got %q", got)
	}
}

func TestGetTypeNoValue(t *testing.T) {
	if GetType(NoValue).String() != "<no type>" {
		t.Fatalf("expected NoType for NoValue")
	}
}
