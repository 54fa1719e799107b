package lowering

import (
	"errors"
	"testing"

	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/transform"
)

type fakeModuleResolver struct {
	modules map[string]*ast.Module
}

func (f *fakeModuleResolver) ResolveImport(name string) (*ast.Module, error) {
	mod, ok := f.modules[name]
	if !ok {
		return nil, errors.New("no such module")
	}
	return mod, nil
}

func TestInlineImportsRegistersModuleInlinedFromContext(t *testing.T) {
	ctx := transform.NewContext()
	sub := ast.NewModule(ast.Metadata{ModuleName: "Common"})
	ctx.RegisterModule("Common", transform.ModuleData{Name: "Common", Node: sub})

	imp := &ast.ImportStmt{ModuleName: "Common"}
	mod := moduleOf(imp)

	if err := InlineImports(mod, ctx, nil); err != nil {
		t.Fatal(err)
	}

	if _, ok := mod.RootStatement.Statements[0].(*ast.NoOpStmt); !ok {
		t.Fatalf("expected the ImportStmt to be replaced with a no-op, got %T", mod.RootStatement.Statements[0])
	}
	if len(mod.ImportedModules) != 1 || mod.ImportedModules[0].Identifier != "Common" || mod.ImportedModules[0].Module != sub {
		t.Fatalf("expected Common inlined exactly once, got %#v", mod.ImportedModules)
	}
}

func TestInlineImportsFallsBackToResolverForNamedImports(t *testing.T) {
	ctx := transform.NewContext()
	sub := ast.NewModule(ast.Metadata{ModuleName: "Common"})
	resolver := &fakeModuleResolver{modules: map[string]*ast.Module{"Common": sub}}

	imp := &ast.ImportStmt{ModuleName: "Common", Identifiers: []ast.ImportIdentifier{{Identifier: "foo"}}}
	mod := moduleOf(imp)

	if err := InlineImports(mod, ctx, resolver); err != nil {
		t.Fatal(err)
	}

	if len(mod.ImportedModules) != 1 || mod.ImportedModules[0].Module != sub {
		t.Fatalf("expected the resolver's module inlined, got %#v", mod.ImportedModules)
	}
}

func TestInlineImportsDeduplicatesRepeatedImportsOfTheSameModule(t *testing.T) {
	ctx := transform.NewContext()
	sub := ast.NewModule(ast.Metadata{ModuleName: "Common"})
	ctx.RegisterModule("Common", transform.ModuleData{Name: "Common", Node: sub})

	mod := moduleOf(&ast.ImportStmt{ModuleName: "Common"}, &ast.ImportStmt{ModuleName: "Common"})

	if err := InlineImports(mod, ctx, nil); err != nil {
		t.Fatal(err)
	}
	if len(mod.ImportedModules) != 1 {
		t.Fatalf("expected Common inlined exactly once despite two imports, got %d entries", len(mod.ImportedModules))
	}
}
