package lowering

import (
	"testing"

	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/transform"
	"github.com/nzsl-go/nzsl/internal/types"
)

func TestRemoveAliasesDropsDeclareAliasStmt(t *testing.T) {
	ctx := transform.NewContext()
	decl := &ast.DeclareAliasStmt{Name: "MyFloat", Expression: &ast.IdentifierExpr{Identifier: "f32"}}
	mod := moduleOf(decl)

	RemoveAliases(mod, ctx)

	if _, ok := mod.RootStatement.Statements[0].(*ast.NoOpStmt); !ok {
		t.Fatalf("expected the alias declaration to become a no-op, got %T", mod.RootStatement.Statements[0])
	}
}

func TestRemoveAliasesResolvesDeclaredVariableType(t *testing.T) {
	ctx := transform.NewContext()
	target := types.NewPrimitive(types.F32)
	alias := &types.Alias{Name: "MyFloat", Target: target}
	vref, _ := ctx.RegisterVariable("x", transform.VariableData{Name: "x", Type: alias})

	decl := &ast.DeclareVariableStmt{VariableRef: vref, Name: "x", Type: ast.ResolvedValue[types.Type](alias)}
	mod := moduleOf(decl)

	RemoveAliases(mod, ctx)

	got := mod.RootStatement.Statements[0].(*ast.DeclareVariableStmt)
	if got.Type.GetResultingValue() != target {
		t.Fatalf("expected the variable's declared type to be dealiased to %#v, got %#v", target, got.Type.GetResultingValue())
	}
}

func TestRemoveAliasesResolvesStructMemberType(t *testing.T) {
	ctx := transform.NewContext()
	target := types.NewPrimitive(types.F32)
	alias := &types.Alias{Name: "MyFloat", Target: target}

	desc := ast.StructDescription{
		Name:    "Block",
		Members: []ast.StructMember{{Name: "a", Type: ast.ResolvedValue[types.Type](alias)}},
	}
	structRef, _ := ctx.RegisterStruct("Block", transform.StructData{Description: &desc})
	decl := &ast.DeclareStructStmt{StructRef: structRef, IsExported: ast.ResolvedValue(false), Description: desc}
	mod := moduleOf(decl)

	RemoveAliases(mod, ctx)

	got := mod.RootStatement.Statements[0].(*ast.DeclareStructStmt)
	if got.Description.Members[0].Type.GetResultingValue() != target {
		t.Fatalf("expected the member's type to be dealiased to %#v, got %#v", target, got.Description.Members[0].Type.GetResultingValue())
	}
}

func TestRemoveAliasesDealiasesExpressionCachedType(t *testing.T) {
	ctx := transform.NewContext()
	target := types.NewPrimitive(types.F32)
	alias := &types.Alias{Name: "MyFloat", Target: target}

	vref, _ := ctx.RegisterVariable("x", transform.VariableData{Name: "x", Type: target})
	ref := variableRef(vref, alias)
	mod := moduleOf(&ast.ExpressionStmt{Expression: ref})

	RemoveAliases(mod, ctx)

	got := mod.RootStatement.Statements[0].(*ast.ExpressionStmt).Expression
	if got.CachedType() != target {
		t.Fatalf("expected the expression's cached type to be dealiased to %#v, got %#v", target, got.CachedType())
	}
}
