package lowering

import (
	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/diagnostic"
	"github.com/nzsl-go/nzsl/internal/ref"
	"github.com/nzsl-go/nzsl/internal/transform"
)

// ModuleResolver fetches the (unresolved) AST of a module by name, the way
// resolve.ImportResolver does. A lowering-stage inliner needs its own copy
// of this interface rather than importing the resolve package for it: the
// pipeline runs lowering after resolution, and the two packages otherwise
// have no reason to depend on each other.
type ModuleResolver interface {
	ResolveImport(moduleName string) (*ast.Module, error)
}

// ImportInliner finishes what the resolver starts when a ModuleResolver is
// configured: the resolver already splices every imported symbol into the
// importing module's own context (so type-checking and qualified `M.foo`
// access already work), but leaves the `ImportStmt` node itself in the
// tree and never touches `Module.ImportedModules`. This pass drops the
// now-inert `ImportStmt` (replacing it with a no-op) and records the
// imported module once per distinct name, so a consumer that walks the
// tree directly (the binary codec, dependency analysis) sees the import
// tree without having to understand the resolver's own import protocol.
type ImportInliner struct {
	transform.BaseTransformer
	walker   *transform.Walker
	ctx      *transform.Context
	mod      *ast.Module
	resolver ModuleResolver
	seen     map[string]bool
	err      *diagnostic.Error
}

// InlineImports rewrites every ImportStmt in mod. Returns the first error
// encountered inlining an import the resolver's own context doesn't
// already have a cached node for.
func InlineImports(mod *ast.Module, ctx *transform.Context, resolver ModuleResolver) *diagnostic.Error {
	p := &ImportInliner{ctx: ctx, mod: mod, resolver: resolver, seen: map[string]bool{}}
	w := transform.NewWalker(p, ctx)
	p.walker = w
	w.WalkModule(mod)
	return p.err
}

func (p *ImportInliner) fail(err *diagnostic.Error) {
	if p.err == nil {
		p.err = err
	}
}

// submoduleOf returns the AST for a module name: ctx already holds it for a
// qualified `import M;` (the resolver registered it as a CategoryModule
// symbol pointing at exactly the node its ModuleResolver returned); a
// name-only `import a, b from M;` never gets a ctx.Module entry of its own
// (its members were spliced individually), so that case falls back to
// asking the resolver directly.
func (p *ImportInliner) submoduleOf(name string) (*ast.Module, *diagnostic.Error) {
	if sym, ok := p.ctx.Lookup(name); ok && sym.Category == transform.CategoryModule {
		if data, ok := p.ctx.Module(ref.Module(sym.Index)); ok {
			return data.Node, nil
		}
	}
	if p.resolver == nil {
		return nil, nil
	}
	mod, err := p.resolver.ResolveImport(name)
	if err != nil {
		return nil, diagnostic.NewError(diagnostic.ModuleCompilationFailed, diagnostic.Range{},
			"inlining import %q: %v", name, err)
	}
	return mod, nil
}

func (p *ImportInliner) VisitImport(n *ast.ImportStmt) transform.StmtResult {
	if !p.seen[n.ModuleName] {
		p.seen[n.ModuleName] = true
		sub, derr := p.submoduleOf(n.ModuleName)
		if derr != nil {
			p.fail(derr)
			return transform.DontVisitChildrenStmt()
		}
		if sub != nil {
			p.mod.ImportedModules = append(p.mod.ImportedModules, ast.ImportedModule{Identifier: n.ModuleName, Module: sub})
		}
	}
	return transform.ReplaceStmt(&ast.NoOpStmt{})
}
