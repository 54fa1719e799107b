package lowering

import (
	"testing"

	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/transform"
	"github.com/nzsl-go/nzsl/internal/types"
)

func TestPadStd140InsertsGapBeforeVec3Member(t *testing.T) {
	ctx := transform.NewContext()
	desc := &ast.StructDescription{
		Name:   "Block",
		Layout: ast.ResolvedValue(ast.LayoutStd140),
		Members: []ast.StructMember{
			{Name: "a", Type: ast.ResolvedValue[types.Type](types.NewPrimitive(types.F32))},
			{Name: "b", Type: ast.ResolvedValue[types.Type](&types.Vector{Count: 3, Elem: types.F32})},
		},
	}
	structRef, err := ctx.RegisterStruct("Block", transform.StructData{Description: desc})
	if err != nil {
		t.Fatal(err)
	}
	decl := &ast.DeclareStructStmt{StructRef: structRef, IsExported: ast.ResolvedValue(false), Description: *desc}
	mod := moduleOf(decl)

	PadStd140(mod, ctx)

	got := mod.RootStatement.Statements[0].(*ast.DeclareStructStmt)
	if len(got.Description.Members) != 4 {
		t.Fatalf("expected a padding member before b and a trailing one rounding the size to 32, got %d members: %#v", len(got.Description.Members), got.Description.Members)
	}
	if got.Description.Members[0].Name != "a" || got.Description.Members[2].Name != "b" || got.Description.Members[3].Name != "_pad" {
		t.Fatalf("expected a, _pad, b, _pad in order, got %v, %v, %v, %v",
			got.Description.Members[0].Name, got.Description.Members[1].Name, got.Description.Members[2].Name, got.Description.Members[3].Name)
	}
	padType, ok := got.Description.Members[1].Type.GetResultingValue().(*types.Array)
	if !ok || padType.Length != 3 {
		t.Fatalf("expected a 3-float padding array (12 bytes), got %#v", got.Description.Members[1].Type.GetResultingValue())
	}
}

func TestPadStd140WrapsMisalignedArrayAndFixesUpAccess(t *testing.T) {
	ctx := transform.NewContext()
	arrType := &types.Array{Inner: types.NewPrimitive(types.F32), Length: 4}
	desc := &ast.StructDescription{
		Name:    "Block",
		Layout:  ast.ResolvedValue(ast.LayoutStd140),
		Members: []ast.StructMember{{Name: "values", Type: ast.ResolvedValue[types.Type](arrType)}},
	}
	structRef, err := ctx.RegisterStruct("Block", transform.StructData{Description: desc})
	if err != nil {
		t.Fatal(err)
	}
	structDecl := &ast.DeclareStructStmt{StructRef: structRef, IsExported: ast.ResolvedValue(false), Description: *desc}

	blockType := &types.Uniform{StructRef: structRef}
	vref, _ := ctx.RegisterVariable("blk", transform.VariableData{Name: "blk", Type: blockType})
	base := variableRef(vref, blockType)
	field := &ast.AccessFieldExpr{FieldIndex: 0, Expr: base}
	field.SetCachedType(arrType)
	index := &ast.AccessIndexExpr{Expr: field, Indices: []ast.Expression{constOf(types.U32, uint32(0))}}
	index.SetCachedType(types.NewPrimitive(types.F32))

	mod := moduleOf(structDecl, &ast.ExpressionStmt{Expression: index})

	PadStd140(mod, ctx)

	// The wrapper struct's declaration is spliced in ahead of Block's.
	gotDecl := mod.RootStatement.Statements[1].(*ast.DeclareStructStmt)
	wrappedArr, ok := gotDecl.Description.Members[0].Type.GetResultingValue().(*types.Array)
	if !ok {
		t.Fatalf("expected the member to stay an array, got %#v", gotDecl.Description.Members[0].Type.GetResultingValue())
	}
	if _, ok := wrappedArr.Inner.(*types.Struct); !ok {
		t.Fatalf("expected the array's element to be wrapped in a synthesized struct, got %#v", wrappedArr.Inner)
	}

	exprStmt := mod.RootStatement.Statements[len(mod.RootStatement.Statements)-1].(*ast.ExpressionStmt)
	outer, ok := exprStmt.Expression.(*ast.AccessFieldExpr)
	if !ok {
		t.Fatalf("expected the index expression to gain a trailing .value field access, got %T", exprStmt.Expression)
	}
	if p, ok := outer.CachedType().(*types.Primitive); !ok || p.Kind != types.F32 {
		t.Fatalf("expected the fixed-up access to resolve back to f32, got %#v", outer.CachedType())
	}
	if _, ok := outer.Expr.(*ast.AccessIndexExpr); !ok {
		t.Fatalf("expected the .value access to wrap the original index expression, got %T", outer.Expr)
	}
}
