package resolve

import (
	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/diagnostic"
	"github.com/nzsl-go/nzsl/internal/ref"
	"github.com/nzsl-go/nzsl/internal/transform"
)

// moduleExports is what registerImport computes once per imported module:
// its own fully-resolved context plus a name -> declaring statement index
// for every top-level declaration it exports, so a qualified `M.foo` access
// or a named `import foo from M` can splice that one declaration into the
// importing module's own symbol tables on demand.
type moduleExports struct {
	ctx   *transform.Context
	decls map[string]ast.Statement
}

func exportedName(s ast.Statement) (string, bool) {
	switch st := s.(type) {
	case *ast.DeclareFunctionStmt:
		return st.Name, st.IsExported.IsResolved() && st.IsExported.GetResultingValue()
	case *ast.DeclareConstStmt:
		return st.Name, st.IsExported.IsResolved() && st.IsExported.GetResultingValue()
	case *ast.DeclareStructStmt:
		return st.Description.Name, st.IsExported.IsResolved() && st.IsExported.GetResultingValue()
	case *ast.DeclareAliasStmt:
		return st.Name, true
	}
	return "", false
}

// resolveSubmodule fully resolves an imported module in its own context,
// isolated from the importer's scope, and indexes its exported
// declarations by name.
func (r *Resolver) resolveSubmodule(name string, mod *ast.Module, loc ast.Loc) (*moduleExports, *diagnostic.Error) {
	if r.importing == nil {
		r.importing = map[string]bool{}
	}
	if r.importing[name] {
		return nil, r.errAt(loc, diagnostic.CircularImport, "module %q imports itself, directly or indirectly", name)
	}
	r.importing[name] = true
	defer delete(r.importing, name)

	subCtx := transform.NewContext()
	sub := &Resolver{ctx: subCtx, imports: r.imports, importing: r.importing, entryStages: map[ast.ShaderStage]ref.Function{}}
	if err := bootstrap(subCtx); err != nil {
		return nil, err
	}
	if err := sub.resolveModule(mod); err != nil {
		return nil, r.errAt(loc, diagnostic.ModuleCompilationFailed, "importing %q: %v", name, err)
	}

	exports := &moduleExports{ctx: subCtx, decls: map[string]ast.Statement{}}
	for _, s := range mod.RootStatement.Statements {
		if name, ok := exportedName(s); ok {
			exports.decls[name] = s
		}
	}
	return exports, nil
}

// spliceDecl copies one already-resolved top-level declaration from a
// submodule's context into the importer's own, registering it under
// localName, and returns the symbol now visible in the current scope.
func (r *Resolver) spliceDecl(exports *moduleExports, localName string, s ast.Statement, modIdx ref.Module, loc ast.Loc) (transform.Symbol, *diagnostic.Error) {
	switch st := s.(type) {
	case *ast.DeclareFunctionStmt:
		data, ok := exports.ctx.Function(st.FuncRef)
		if !ok {
			return transform.Symbol{}, r.internalErr(loc, "dangling export %q", localName)
		}
		idx, err := r.ctx.RegisterFunction(localName, data)
		if err != nil {
			return transform.Symbol{}, r.errAt(loc, diagnostic.ImportIdentifierAlreadyPresent, "%v", err)
		}
		return transform.Symbol{Category: transform.CategoryFunction, Index: uint64(idx)}, nil
	case *ast.DeclareConstStmt:
		data, ok := exports.ctx.Constant(st.ConstantRef)
		if !ok {
			return transform.Symbol{}, r.internalErr(loc, "dangling export %q", localName)
		}
		data.ModuleIndex = modIdx
		idx, err := r.ctx.RegisterConstant(localName, data)
		if err != nil {
			return transform.Symbol{}, r.errAt(loc, diagnostic.ImportIdentifierAlreadyPresent, "%v", err)
		}
		return transform.Symbol{Category: transform.CategoryConstant, Index: uint64(idx)}, nil
	case *ast.DeclareStructStmt:
		data, ok := exports.ctx.Struct(st.StructRef)
		if !ok {
			return transform.Symbol{}, r.internalErr(loc, "dangling export %q", localName)
		}
		data.ModuleIndex = modIdx
		idx, err := r.ctx.RegisterStruct(localName, data)
		if err != nil {
			return transform.Symbol{}, r.errAt(loc, diagnostic.ImportIdentifierAlreadyPresent, "%v", err)
		}
		return transform.Symbol{Category: transform.CategoryStruct, Index: uint64(idx)}, nil
	case *ast.DeclareAliasStmt:
		data, ok := exports.ctx.Alias(st.AliasRef)
		if !ok {
			return transform.Symbol{}, r.internalErr(loc, "dangling export %q", localName)
		}
		idx, err := r.ctx.RegisterAlias(localName, data)
		if err != nil {
			return transform.Symbol{}, r.errAt(loc, diagnostic.ImportIdentifierAlreadyPresent, "%v", err)
		}
		return transform.Symbol{Category: transform.CategoryAlias, Index: uint64(idx)}, nil
	default:
		return transform.Symbol{}, r.internalErr(loc, "%q does not name an importable declaration", localName)
	}
}
