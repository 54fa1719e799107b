package lowering

import (
	"testing"

	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/transform"
	"github.com/nzsl-go/nzsl/internal/types"
)

func TestSplitStructAssignmentsRewritesLayoutMismatch(t *testing.T) {
	ctx := transform.NewContext()
	desc := &ast.StructDescription{
		Name: "Block",
		Members: []ast.StructMember{
			{Name: "x", Type: ast.ResolvedValue[types.Type](types.NewPrimitive(types.F32))},
			{Name: "y", Type: ast.ResolvedValue[types.Type](types.NewPrimitive(types.F32))},
		},
	}
	structRef, err := ctx.RegisterStruct("Block", transform.StructData{Description: desc})
	if err != nil {
		t.Fatal(err)
	}

	destType := &types.Uniform{StructRef: structRef}
	srcType := &types.Storage{StructRef: structRef}

	srcVarRef, _ := ctx.RegisterVariable("foo", transform.VariableData{Name: "foo", Type: srcType})
	srcExpr := variableRef(srcVarRef, srcType)

	destVarRef, _ := ctx.RegisterVariable("f", transform.VariableData{Name: "f", Type: destType})
	decl := &ast.DeclareVariableStmt{
		VariableRef:       destVarRef,
		Name:              "f",
		InitialExpression: srcExpr,
		Type:              ast.ResolvedValue[types.Type](destType),
	}
	mod := moduleOf(decl)

	SplitStructAssignments(mod, ctx)

	multi, ok := mod.RootStatement.Statements[0].(*ast.MultiStmt)
	if !ok {
		t.Fatalf("expected a MultiStmt replacement, got %T", mod.RootStatement.Statements[0])
	}
	if len(multi.Statements) != 3 {
		t.Fatalf("expected a bare declaration plus 2 field assignments, got %d", len(multi.Statements))
	}
	bareDecl, ok := multi.Statements[0].(*ast.DeclareVariableStmt)
	if !ok || bareDecl.InitialExpression != nil {
		t.Fatalf("expected the first statement to be an uninitialized declaration")
	}
	for i, idx := range []int{1, 2} {
		exprStmt, ok := multi.Statements[idx].(*ast.ExpressionStmt)
		if !ok {
			t.Fatalf("field %d: expected ExpressionStmt, got %T", i, multi.Statements[idx])
		}
		assign, ok := exprStmt.Expression.(*ast.AssignExpr)
		if !ok {
			t.Fatalf("field %d: expected AssignExpr, got %T", i, exprStmt.Expression)
		}
		dstField, ok := assign.Left.(*ast.AccessFieldExpr)
		if !ok || dstField.FieldIndex != uint32(i) {
			t.Fatalf("field %d: expected destination field access at index %d, got %#v", i, i, assign.Left)
		}
		srcField, ok := assign.Right.(*ast.AccessFieldExpr)
		if !ok || srcField.FieldIndex != uint32(i) {
			t.Fatalf("field %d: expected source field access at index %d, got %#v", i, i, assign.Right)
		}
	}
}

func TestSplitStructAssignmentsLeavesMatchingLayoutAlone(t *testing.T) {
	ctx := transform.NewContext()
	desc := &ast.StructDescription{
		Name:    "Block",
		Members: []ast.StructMember{{Name: "x", Type: ast.ResolvedValue[types.Type](types.NewPrimitive(types.F32))}},
	}
	structRef, _ := ctx.RegisterStruct("Block", transform.StructData{Description: desc})
	blockType := &types.Struct{StructRef: structRef, Name: "Block"}

	srcVarRef, _ := ctx.RegisterVariable("foo", transform.VariableData{Name: "foo", Type: blockType})
	srcExpr := variableRef(srcVarRef, blockType)
	destVarRef, _ := ctx.RegisterVariable("f", transform.VariableData{Name: "f", Type: blockType})
	decl := &ast.DeclareVariableStmt{
		VariableRef:       destVarRef,
		Name:              "f",
		InitialExpression: srcExpr,
		Type:              ast.ResolvedValue[types.Type](blockType),
	}
	mod := moduleOf(decl)

	SplitStructAssignments(mod, ctx)

	if _, ok := mod.RootStatement.Statements[0].(*ast.DeclareVariableStmt); !ok {
		t.Fatalf("expected the declaration to survive untouched, got %T", mod.RootStatement.Statements[0])
	}
}
