package lowering

import (
	"testing"

	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/transform"
	"github.com/nzsl-go/nzsl/internal/types"
)

func TestLowerMatricesRewritesAddColumnwise(t *testing.T) {
	ctx := transform.NewContext()
	mat := &types.Matrix{Cols: 3, Rows: 3, Elem: types.F32}
	aRef, _ := ctx.RegisterVariable("a", transform.VariableData{Name: "a", Type: mat})
	bRef, _ := ctx.RegisterVariable("b", transform.VariableData{Name: "b", Type: mat})
	a := variableRef(aRef, mat)
	b := variableRef(bRef, mat)
	bin := &ast.BinaryExpr{Op: ast.BinaryAdd, Left: a, Right: b}
	bin.SetCachedType(mat)
	mod := moduleOf(&ast.ExpressionStmt{Expression: bin})

	LowerMatrices(mod, ctx)

	if len(mod.RootStatement.Statements) != 1+3+1 {
		t.Fatalf("expected a temp declaration, 3 column assignments and the original statement, got %d statements", len(mod.RootStatement.Statements))
	}
	if _, ok := mod.RootStatement.Statements[0].(*ast.DeclareVariableStmt); !ok {
		t.Fatalf("expected temp matrix declaration first, got %T", mod.RootStatement.Statements[0])
	}
	for c := 1; c <= 3; c++ {
		exprStmt, ok := mod.RootStatement.Statements[c].(*ast.ExpressionStmt)
		if !ok {
			t.Fatalf("column %d: expected ExpressionStmt, got %T", c, mod.RootStatement.Statements[c])
		}
		assign, ok := exprStmt.Expression.(*ast.AssignExpr)
		if !ok {
			t.Fatalf("column %d: expected AssignExpr, got %T", c, exprStmt.Expression)
		}
		if _, ok := assign.Right.(*ast.BinaryExpr); !ok {
			t.Fatalf("column %d: expected a BinaryExpr combining both columns, got %T", c, assign.Right)
		}
	}
}

func TestLowerMatricesPadsDestinationCastWithIdentity(t *testing.T) {
	ctx := transform.NewContext()
	src := &types.Matrix{Cols: 3, Rows: 3, Elem: types.F32}
	dest := &types.Matrix{Cols: 4, Rows: 4, Elem: types.F32}
	vref, _ := ctx.RegisterVariable("m", transform.VariableData{Name: "m", Type: src})
	srcExpr := variableRef(vref, src)
	cast := &ast.CastExpr{TargetType: ast.ResolvedValue[types.Type](dest), Exprs: []ast.Expression{srcExpr}}
	cast.SetCachedType(dest)
	mod := moduleOf(&ast.ExpressionStmt{Expression: cast})

	LowerMatrices(mod, ctx)

	if len(mod.RootStatement.Statements) != 1+4+1 {
		t.Fatalf("expected a temp declaration, 4 column assignments and the original statement, got %d statements", len(mod.RootStatement.Statements))
	}
	lastCol := mod.RootStatement.Statements[4].(*ast.ExpressionStmt).Expression.(*ast.AssignExpr)
	colCast, ok := lastCol.Right.(*ast.CastExpr)
	if !ok {
		t.Fatalf("expected the padded column to be a construction cast, got %T", lastCol.Right)
	}
	if len(colCast.Exprs) != 4 {
		t.Fatalf("expected 4 components in the padded column, got %d", len(colCast.Exprs))
	}
	// Column 3 (0-indexed) of the identity has a 1 at row 3.
	cv, ok := colCast.Exprs[3].(*ast.ConstantValueExpr)
	if !ok {
		t.Fatalf("expected the diagonal component to be a constant, got %T", colCast.Exprs[3])
	}
	if cv.Value.F32Value() != 1 {
		t.Fatalf("expected the diagonal component to be 1, got %v", cv.Value.F32Value())
	}
}
