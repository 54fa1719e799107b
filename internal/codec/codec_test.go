package codec

import (
	"testing"

	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/constant"
	"github.com/nzsl-go/nzsl/internal/ref"
	"github.com/nzsl-go/nzsl/internal/types"
)

func TestVarintRoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 127, 128, -128, 1 << 40, -(1 << 40)} {
		buf := appendVarint(nil, v)
		got, n, err := readVarint(buf, 0)
		if err != nil {
			t.Fatalf("readVarint(%d): %v", v, err)
		}
		if n != len(buf) || got != v {
			t.Fatalf("round trip of %d: got %d (consumed %d, wanted %d)", v, got, n, len(buf))
		}
	}
}

func TestStringInterningReusesBackReferences(t *testing.T) {
	e := newEncoder()
	e.WriteString("hello")
	e.WriteString("world")
	e.WriteString("hello")
	firstLen := len(e.buf)

	d := newDecoder(e.buf)
	a, err := d.ReadString()
	if err != nil || a != "hello" {
		t.Fatalf("first string: %q, %v", a, err)
	}
	b, err := d.ReadString()
	if err != nil || b != "world" {
		t.Fatalf("second string: %q, %v", b, err)
	}
	c, err := d.ReadString()
	if err != nil || c != "hello" {
		t.Fatalf("third string: %q, %v", c, err)
	}
	if d.pos != firstLen {
		t.Fatalf("expected the decoder to consume exactly what was written, got %d of %d", d.pos, firstLen)
	}
}

func TestTypeRoundTrip(t *testing.T) {
	cases := []types.Type{
		types.NoType{},
		types.NewPrimitive(types.F32),
		&types.Vector{Count: 3, Elem: types.F32},
		&types.Matrix{Cols: 4, Rows: 4, Elem: types.F32},
		&types.Array{Inner: types.NewPrimitive(types.I32), Length: 8},
		&types.DynArray{Inner: types.NewPrimitive(types.U32)},
		&types.Alias{Name: "MyFloat", Target: types.NewPrimitive(types.F32)},
		&types.Struct{StructRef: ref.Struct(3), Name: "Block"},
		&types.Uniform{StructRef: ref.Struct(3)},
		&types.Storage{StructRef: ref.Struct(3), Access: types.AccessReadWrite},
		&types.Sampler{Dim: types.Dim2D, Sampled: types.F32, Depth: false},
	}
	for _, want := range cases {
		e := newEncoder()
		e.WriteType(want)
		d := newDecoder(e.buf)
		got, err := d.ReadType()
		if err != nil {
			t.Fatalf("ReadType(%v): %v", want, err)
		}
		if !got.Equals(want) {
			t.Fatalf("type round trip: got %v, want %v", got, want)
		}
	}
}

func TestConstantRoundTrip(t *testing.T) {
	vec, err := constant.Vec([]constant.Value{constant.F32(1), constant.F32(2), constant.F32(3)})
	if err != nil {
		t.Fatal(err)
	}
	cases := []constant.Value{
		constant.NoValue,
		constant.Bool(true),
		constant.I32(-7),
		constant.U32(7),
		constant.F32(1.5),
		constant.String("hi"),
		vec,
		constant.Array([]constant.Value{constant.I32(1), constant.I32(2)}),
	}
	for _, want := range cases {
		e := newEncoder()
		e.WriteConstant(want)
		d := newDecoder(e.buf)
		got, err := d.ReadConstant()
		if err != nil {
			t.Fatalf("ReadConstant: %v", err)
		}
		if !constant.Equal(got, want) {
			t.Fatalf("constant round trip: got %v, want %v", constant.Describe(got), constant.Describe(want))
		}
	}
}

func TestModuleRoundTrip(t *testing.T) {
	f32 := types.NewPrimitive(types.F32)
	vref := ref.Variable(1)
	decl := &ast.DeclareVariableStmt{
		VariableRef:       vref,
		Name:              "x",
		InitialExpression: &ast.ConstantValueExpr{Value: constant.F32(1)},
		Type:              ast.ResolvedValue[types.Type](f32),
	}
	fn := &ast.DeclareFunctionStmt{
		FuncRef:    ref.Function(1),
		Name:       "main",
		Statements: []ast.Statement{decl, &ast.ReturnStmt{}},
		IsExported: ast.ResolvedValue(true),
		EntryStage: ast.ResolvedValue(ast.StageFragment),
	}
	mod := ast.NewModule(ast.Metadata{ModuleName: "Test", ShaderLangVersion: ast.Version{Major: 1, Minor: 0}})
	mod.RootStatement.Statements = []ast.Statement{fn}

	data, err := Encode(mod)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}

	if got.Metadata.ModuleName != "Test" {
		t.Fatalf("expected module name Test, got %q", got.Metadata.ModuleName)
	}
	if len(got.RootStatement.Statements) != 1 {
		t.Fatalf("expected 1 top-level statement, got %d", len(got.RootStatement.Statements))
	}
	gotFn, ok := got.RootStatement.Statements[0].(*ast.DeclareFunctionStmt)
	if !ok {
		t.Fatalf("expected a DeclareFunctionStmt, got %T", got.RootStatement.Statements[0])
	}
	if gotFn.Name != "main" || len(gotFn.Statements) != 2 {
		t.Fatalf("unexpected function round trip: %#v", gotFn)
	}
	if !gotFn.IsExported.IsResolved() || !gotFn.IsExported.GetResultingValue() {
		t.Fatalf("expected IsExported to round trip resolved true, got %#v", gotFn.IsExported)
	}
	gotDecl, ok := gotFn.Statements[0].(*ast.DeclareVariableStmt)
	if !ok {
		t.Fatalf("expected a DeclareVariableStmt, got %T", gotFn.Statements[0])
	}
	if gotDecl.Name != "x" || !gotDecl.Type.IsResolved() || !gotDecl.Type.GetResultingValue().Equals(f32) {
		t.Fatalf("unexpected declaration round trip: %#v", gotDecl)
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	if _, err := Decode([]byte("not an nzsl module")); err == nil {
		t.Fatal("expected an error decoding garbage input")
	}
}
