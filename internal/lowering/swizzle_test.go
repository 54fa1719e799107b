package lowering

import (
	"testing"

	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/transform"
	"github.com/nzsl-go/nzsl/internal/types"
)

func TestLowerSwizzlesBroadcastsScalar(t *testing.T) {
	ctx := transform.NewContext()
	vref, _ := ctx.RegisterVariable("f", transform.VariableData{Name: "f", Type: types.NewPrimitive(types.F32)})
	base := variableRef(vref, types.NewPrimitive(types.F32))
	sw := &ast.SwizzleExpr{Expr: base, Components: [4]uint32{0, 0, 0, 0}, ComponentCount: 4}
	mod := moduleOf(&ast.ExpressionStmt{Expression: sw})

	LowerSwizzles(mod, ctx)

	stmt := mod.RootStatement.Statements[0].(*ast.ExpressionStmt)
	cast, ok := stmt.Expression.(*ast.CastExpr)
	if !ok {
		t.Fatalf("expected CastExpr, got %T", stmt.Expression)
	}
	if len(cast.Exprs) != 4 {
		t.Fatalf("expected 4 broadcast operands, got %d", len(cast.Exprs))
	}
	vecType, ok := cast.CachedType().(*types.Vector)
	if !ok || vecType.Count != 4 || vecType.Elem != types.F32 {
		t.Fatalf("expected a vec4[f32] cached type, got %#v", cast.CachedType())
	}
}

func TestLowerSwizzlesCollapsesScalarSingleComponent(t *testing.T) {
	ctx := transform.NewContext()
	vref, _ := ctx.RegisterVariable("f", transform.VariableData{Name: "f", Type: types.NewPrimitive(types.F32)})
	base := variableRef(vref, types.NewPrimitive(types.F32))
	sw := &ast.SwizzleExpr{Expr: base, Components: [4]uint32{0}, ComponentCount: 1}
	mod := moduleOf(&ast.ExpressionStmt{Expression: sw})

	LowerSwizzles(mod, ctx)

	stmt := mod.RootStatement.Statements[0].(*ast.ExpressionStmt)
	if _, ok := stmt.Expression.(*ast.VariableValueExpr); !ok {
		t.Fatalf("expected the swizzle to collapse to the base variable, got %T", stmt.Expression)
	}
}

func TestLowerSwizzlesHoistsNonLvalueBase(t *testing.T) {
	ctx := transform.NewContext()
	vecType := &types.Vector{Count: 4, Elem: types.F32}
	fref, err := ctx.RegisterFunction("make_vec", transform.FunctionData{Name: "make_vec", Signature: transform.FunctionSignature{ReturnType: vecType}})
	if err != nil {
		t.Fatal(err)
	}
	target := &ast.FunctionExpr{FuncRef: fref}
	call := &ast.CallFunctionExpr{TargetFunction: target}
	call.SetCachedType(vecType)
	sw := &ast.SwizzleExpr{Expr: call, Components: [4]uint32{0, 1}, ComponentCount: 2}
	mod := moduleOf(&ast.ExpressionStmt{Expression: sw})

	LowerSwizzles(mod, ctx)

	if len(mod.RootStatement.Statements) != 2 {
		t.Fatalf("expected the call to be hoisted into its own declaration, got %d statements", len(mod.RootStatement.Statements))
	}
	decl, ok := mod.RootStatement.Statements[0].(*ast.DeclareVariableStmt)
	if !ok {
		t.Fatalf("expected a hoisted declaration first, got %T", mod.RootStatement.Statements[0])
	}
	if _, ok := decl.InitialExpression.(*ast.CallFunctionExpr); !ok {
		t.Fatalf("expected the hoisted declaration to hold the original call, got %T", decl.InitialExpression)
	}
	stmt := mod.RootStatement.Statements[1].(*ast.ExpressionStmt)
	stillSwizzle, ok := stmt.Expression.(*ast.SwizzleExpr)
	if !ok {
		t.Fatalf("expected the swizzle itself to survive over a vector base, got %T", stmt.Expression)
	}
	if _, ok := stillSwizzle.Expr.(*ast.VariableValueExpr); !ok {
		t.Fatalf("expected the swizzle's base to now reference the hoisted temporary, got %T", stillSwizzle.Expr)
	}
}
