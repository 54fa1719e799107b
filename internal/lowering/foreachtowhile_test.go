package lowering

import (
	"testing"

	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/transform"
	"github.com/nzsl-go/nzsl/internal/types"
)

func TestLowerForEachLoopsRewritesToIndexedWhile(t *testing.T) {
	ctx := transform.NewContext()
	arrType := &types.Array{Inner: types.NewPrimitive(types.F32), Length: 4}
	containerRef, _ := ctx.RegisterVariable("values", transform.VariableData{Name: "values", Type: arrType})
	container := &ast.VariableValueExpr{VariableRef: containerRef}
	container.SetCachedType(arrType)

	elemRef, _ := ctx.RegisterVariable("v", transform.VariableData{Name: "v", Type: types.NewPrimitive(types.F32)})
	forEach := &ast.ForEachStmt{
		VariableRef: elemRef,
		VarName:     "v",
		Expression:  container,
		Statement:   &ast.NoOpStmt{},
	}
	mod := moduleOf(forEach)

	if err := LowerForEachLoops(mod, ctx); err != nil {
		t.Fatalf("LowerForEachLoops failed: %v", err)
	}

	multi, ok := mod.RootStatement.Statements[0].(*ast.MultiStmt)
	if !ok || len(multi.Statements) != 3 {
		t.Fatalf("expected array/index declarations plus the while loop, got %#v", mod.RootStatement.Statements[0])
	}
	while, ok := multi.Statements[2].(*ast.WhileStmt)
	if !ok {
		t.Fatalf("expected last statement to be the while loop, got %T", multi.Statements[2])
	}
	body, ok := while.Body.(*ast.MultiStmt)
	if !ok || len(body.Statements) != 3 {
		t.Fatalf("expected element decl, original body, increment in the while body")
	}
	if _, ok := body.Statements[0].(*ast.DeclareVariableStmt); !ok {
		t.Fatalf("expected element declaration first in the while body, got %T", body.Statements[0])
	}
}

func TestLowerForEachLoopsRejectsNonArrayContainer(t *testing.T) {
	ctx := transform.NewContext()
	containerRef, _ := ctx.RegisterVariable("n", transform.VariableData{Name: "n", Type: types.NewPrimitive(types.I32)})
	container := &ast.VariableValueExpr{VariableRef: containerRef}
	container.SetCachedType(types.NewPrimitive(types.I32))

	elemRef, _ := ctx.RegisterVariable("v", transform.VariableData{Name: "v", Type: types.NewPrimitive(types.I32)})
	forEach := &ast.ForEachStmt{
		VariableRef: elemRef,
		VarName:     "v",
		Expression:  container,
		Statement:   &ast.NoOpStmt{},
	}
	mod := moduleOf(forEach)

	if err := LowerForEachLoops(mod, ctx); err == nil {
		t.Fatalf("expected an error for a non-array for-each container")
	}
}
