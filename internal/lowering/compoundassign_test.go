package lowering

import (
	"testing"

	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/transform"
	"github.com/nzsl-go/nzsl/internal/types"
)

func TestExpandCompoundAssignmentsRewritesAddAssign(t *testing.T) {
	ctx := transform.NewContext()
	vref, _ := ctx.RegisterVariable("x", transform.VariableData{Name: "x", Type: types.NewPrimitive(types.I32)})
	left := variableRef(vref, types.NewPrimitive(types.I32))
	assign := &ast.AssignExpr{Op: ast.AssignCompoundAdd, Left: left, Right: intLit(1)}
	assign.SetCachedType(types.NewPrimitive(types.I32))
	mod := moduleOf(&ast.ExpressionStmt{Expression: assign})

	ExpandCompoundAssignments(mod, ctx)

	stmt := mod.RootStatement.Statements[0].(*ast.ExpressionStmt)
	rewritten, ok := stmt.Expression.(*ast.AssignExpr)
	if !ok {
		t.Fatalf("expected AssignExpr, got %T", stmt.Expression)
	}
	if rewritten.Op != ast.AssignSimple {
		t.Fatalf("expected a simple assignment, got op %v", rewritten.Op)
	}
	bin, ok := rewritten.Right.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected BinaryExpr on the right, got %T", rewritten.Right)
	}
	if bin.Op != ast.BinaryAdd {
		t.Fatalf("expected BinaryAdd, got %v", bin.Op)
	}
	if _, ok := bin.Left.(*ast.VariableValueExpr); !ok {
		t.Fatalf("expected the original lvalue reused as the binary's left operand, got %T", bin.Left)
	}
	if rewritten.Left == bin.Left {
		t.Fatalf("expected the assignment target and the binary operand to be distinct node instances")
	}
}

func TestExpandCompoundAssignmentsLeavesSimpleAssignAlone(t *testing.T) {
	ctx := transform.NewContext()
	vref, _ := ctx.RegisterVariable("x", transform.VariableData{Name: "x", Type: types.NewPrimitive(types.I32)})
	assign := &ast.AssignExpr{Op: ast.AssignSimple, Left: variableRef(vref, types.NewPrimitive(types.I32)), Right: intLit(1)}
	mod := moduleOf(&ast.ExpressionStmt{Expression: assign})

	ExpandCompoundAssignments(mod, ctx)

	stmt := mod.RootStatement.Statements[0].(*ast.ExpressionStmt)
	rewritten := stmt.Expression.(*ast.AssignExpr)
	if rewritten.Op != ast.AssignSimple {
		t.Fatalf("expected simple assignment untouched, got op %v", rewritten.Op)
	}
	if _, ok := rewritten.Right.(*ast.BinaryExpr); ok {
		t.Fatalf("expected the right-hand side to remain a literal, not a BinaryExpr")
	}
}
