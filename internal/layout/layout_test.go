package layout

import (
	"testing"

	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/ref"
	"github.com/nzsl-go/nzsl/internal/types"
)

func TestPrimitiveLayout(t *testing.T) {
	c := NewComputer(ast.LayoutStd140, nil)
	l := c.ComputeType(types.NewPrimitive(types.F32))
	if l.Size != 4 || l.Alignment != 4 {
		t.Fatalf("expected f32 to be size 4 align 4, got %+v", l)
	}
	l64 := c.ComputeType(types.NewPrimitive(types.F64))
	if l64.Size != 8 || l64.Alignment != 8 {
		t.Fatalf("expected f64 to be size 8 align 8, got %+v", l64)
	}
}

func TestVec3Std140AlignsTo16(t *testing.T) {
	c := NewComputer(ast.LayoutStd140, nil)
	l := c.ComputeType(&types.Vector{Count: 3, Elem: types.F32})
	if l.Size != 12 || l.Alignment != 16 {
		t.Fatalf("expected vec3<f32> std140 layout {12,16}, got %+v", l)
	}
}

func TestVec3PackedDoesNotRoundAlignment(t *testing.T) {
	c := NewComputer(ast.LayoutPacked, nil)
	l := c.ComputeType(&types.Vector{Count: 3, Elem: types.F32})
	if l.Alignment != 4 {
		t.Fatalf("expected packed vec3<f32> to align to 4, got %+v", l)
	}
}

func TestMat4x4Std140(t *testing.T) {
	c := NewComputer(ast.LayoutStd140, nil)
	l := c.ComputeType(&types.Matrix{Cols: 4, Rows: 4, Elem: types.F32})
	if l.Size != 64 || l.Alignment != 16 {
		t.Fatalf("expected mat4x4<f32> std140 layout {64,16}, got %+v", l)
	}
}

func TestArrayStd140StrideRoundsTo16(t *testing.T) {
	c := NewComputer(ast.LayoutStd140, nil)
	l := c.arrayLayout(TypeLayout{Size: 4, Alignment: 4}, 10)
	if l.Stride != 16 || l.Size != 160 {
		t.Fatalf("expected std140 array<f32,10> stride 16 size 160, got %+v", l)
	}
}

func TestArrayStd430StrideMatchesElementAlignment(t *testing.T) {
	c := NewComputer(ast.LayoutStd430, nil)
	l := c.arrayLayout(TypeLayout{Size: 4, Alignment: 4}, 10)
	if l.Stride != 4 || l.Size != 40 {
		t.Fatalf("expected std430 array<f32,10> stride 4 size 40, got %+v", l)
	}
}

func TestStructLayoutOfWithLookup(t *testing.T) {
	sref := ref.Struct(1)
	resolvedF32 := ast.ResolvedValue[types.Type](types.NewPrimitive(types.F32))
	resolvedVec3 := ast.ResolvedValue[types.Type](&types.Vector{Count: 3, Elem: types.F32})
	desc := &ast.StructDescription{
		Name: "Light",
		Members: []ast.StructMember{
			{Name: "intensity", Type: resolvedF32},
			{Name: "position", Type: resolvedVec3},
		},
	}
	lookup := func(s ref.Struct) *ast.StructDescription {
		if s == sref {
			return desc
		}
		return nil
	}

	c := NewComputer(ast.LayoutStd140, lookup)
	sl := c.StructLayoutOf(sref)
	if sl == nil {
		t.Fatalf("expected a struct layout")
	}
	if sl.Fields[0].Offset != 0 {
		t.Fatalf("expected first field at offset 0, got %d", sl.Fields[0].Offset)
	}
	if sl.Fields[1].Offset != 16 {
		t.Fatalf("expected vec3 field to start at the 16-byte boundary, got %d", sl.Fields[1].Offset)
	}
	if sl.Size != 32 {
		t.Fatalf("expected struct size rounded to 32, got %d", sl.Size)
	}

	// cached
	if c.StructLayoutOf(sref) != sl {
		t.Fatalf("expected struct layout to be cached by reference")
	}
}

func TestComputeStd430LayoutHelper(t *testing.T) {
	sref := ref.Struct(2)
	desc := &ast.StructDescription{
		Members: []ast.StructMember{
			{Name: "a", Type: ast.ResolvedValue[types.Type](types.NewPrimitive(types.F32))},
		},
	}
	lookup := func(s ref.Struct) *ast.StructDescription {
		if s == sref {
			return desc
		}
		return nil
	}
	sl := ComputeStd430Layout(sref, lookup)
	if sl.Size != 4 || sl.Alignment != 4 {
		t.Fatalf("expected a single f32 member struct to be {4,4}, got %+v", sl)
	}
}
