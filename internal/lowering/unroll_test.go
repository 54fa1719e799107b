package lowering

import (
	"testing"

	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/ref"
	"github.com/nzsl-go/nzsl/internal/transform"
	"github.com/nzsl-go/nzsl/internal/types"
)

func unrollAlwaysFor(ctx *transform.Context, from, to int32) *ast.ForStmt {
	vref, _ := ctx.RegisterVariable("i", transform.VariableData{Name: "i", Type: types.NewPrimitive(types.I32)})
	return &ast.ForStmt{
		VariableRef: vref,
		VarName:     "i",
		FromExpr:    intLit(from),
		ToExpr:      intLit(to),
		Unroll:      ast.ResolvedValue(ast.UnrollAlways),
		Statement:   &ast.ExpressionStmt{Expression: &ast.IdentifierExpr{Identifier: "i"}},
	}
}

func TestUnrollExpandsConstantBoundsLoop(t *testing.T) {
	ctx := transform.NewContext()
	mod := moduleOf(unrollAlwaysFor(ctx, 0, 3))

	if err := Unroll(mod, ctx); err != nil {
		t.Fatalf("Unroll failed: %v", err)
	}

	multi, ok := mod.RootStatement.Statements[0].(*ast.MultiStmt)
	if !ok {
		t.Fatalf("expected MultiStmt replacement, got %T", mod.RootStatement.Statements[0])
	}
	if len(multi.Statements) != 3 {
		t.Fatalf("expected 3 unrolled copies, got %d", len(multi.Statements))
	}

	seen := make(map[ref.Variable]bool)
	for i, copyStmt := range multi.Statements {
		inner, ok := copyStmt.(*ast.MultiStmt)
		if !ok {
			t.Fatalf("copy %d: expected MultiStmt, got %T", i, copyStmt)
		}
		decl, ok := inner.Statements[0].(*ast.DeclareVariableStmt)
		if !ok {
			t.Fatalf("copy %d: expected counter declaration first, got %T", i, inner.Statements[0])
		}
		cv := decl.InitialExpression.(*ast.ConstantValueExpr)
		if cv.Value.I32Value() != int32(i) {
			t.Fatalf("copy %d: expected counter value %d, got %d", i, i, cv.Value.I32Value())
		}
		if seen[decl.VariableRef] {
			t.Fatalf("copy %d: counter variable ref reused across unrolled copies", i)
		}
		seen[decl.VariableRef] = true
	}
}

func TestUnrollRejectsBreakInsideBody(t *testing.T) {
	ctx := transform.NewContext()
	loop := unrollAlwaysFor(ctx, 0, 2)
	loop.Statement = &ast.MultiStmt{Statements: []ast.Statement{&ast.BreakStmt{}}}
	mod := moduleOf(loop)

	if err := Unroll(mod, ctx); err == nil {
		t.Fatalf("expected an error for break inside an always-unrolled loop")
	}
}

func TestUnrollIgnoresNonAlwaysLoops(t *testing.T) {
	ctx := transform.NewContext()
	loop := unrollAlwaysFor(ctx, 0, 2)
	loop.Unroll = ast.ResolvedValue(ast.UnrollHint)
	mod := moduleOf(loop)

	if err := Unroll(mod, ctx); err != nil {
		t.Fatalf("Unroll failed: %v", err)
	}
	if _, ok := mod.RootStatement.Statements[0].(*ast.ForStmt); !ok {
		t.Fatalf("expected the hinted loop to survive unchanged, got %T", mod.RootStatement.Statements[0])
	}
}
