package resolve

import (
	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/builtins"
	"github.com/nzsl-go/nzsl/internal/constant"
	"github.com/nzsl-go/nzsl/internal/diagnostic"
	"github.com/nzsl-go/nzsl/internal/ref"
	"github.com/nzsl-go/nzsl/internal/transform"
	"github.com/nzsl-go/nzsl/internal/types"
)

// ImportResolver supplies the already-parsed module a name refers to. An
// import statement is only replaced by its inlined declarations when one is
// given to Resolve; without one, the module is left partially resolved
// (Resolver.Partial reports this to the caller) rather than failing.
type ImportResolver interface {
	ResolveImport(moduleName string) (*ast.Module, error)
}

// Options configures a single Resolve call.
type Options struct {
	ImportResolver ImportResolver
	// AllowUnknownIdentifiers and PartialCompilation mirror the same-named
	// transform.Context flags; Resolve copies them onto the context it is
	// given before the walk starts.
	AllowUnknownIdentifiers bool
	PartialCompilation      bool
}

// Resolver carries the per-module state the recursive-descent functions in
// expr.go and stmt.go close over: the symbol table, how deep inside
// function/loop nesting the current statement sits, and the entry-point
// stage the current function body, if any, was declared for.
type Resolver struct {
	ctx     *transform.Context
	imports ImportResolver

	// Partial is set once an import statement could not be resolved; it
	// mirrors ctx.PartialCompilation for the caller's convenience.
	Partial bool

	funcDepth          int
	loopDepth          int
	returnType         types.Type
	stage              ast.ShaderStage
	earlyFragmentTests bool

	entryStages map[ast.ShaderStage]ref.Function

	// importing guards against a module importing itself, directly or
	// through a cycle; shared with submodule resolvers so the cycle check
	// sees the whole import chain, not just the current module.
	importing map[string]bool
	// moduleExportsByRef lets a qualified `M.foo` access splice a
	// submodule's declaration lazily, memoized by the ref.Module the
	// corresponding bare `import M;` registered.
	moduleExportsByRef map[ref.Module]*moduleExports
	// spliced memoizes which (module, member) pairs resolveModuleAccess has
	// already spliced into scope, so a second `M.foo` access elsewhere in
	// the same module reuses the existing symbol instead of re-splicing it
	// under a name RegisterX would then reject as already present.
	spliced map[splicedKey]transform.Symbol
}

// splicedKey identifies one already-spliced qualified module member.
type splicedKey struct {
	mod  ref.Module
	name string
}

// Resolve runs the resolver pass over mod in place, threading ctx as the
// symbol table. ctx should be freshly created (NewContext); Resolve
// bootstraps the built-in names into it before looking at mod's own
// declarations.
func Resolve(mod *ast.Module, ctx *transform.Context, opts Options) *diagnostic.Error {
	ctx.PartialCompilation = opts.PartialCompilation
	ctx.AllowUnknownIdentifiers = opts.AllowUnknownIdentifiers

	if err := bootstrap(ctx); err != nil {
		return err
	}

	r := &Resolver{
		ctx:                ctx,
		imports:            opts.ImportResolver,
		Partial:            opts.PartialCompilation,
		entryStages:        make(map[ast.ShaderStage]ref.Function),
		importing:          make(map[string]bool),
		moduleExportsByRef: make(map[ref.Module]*moduleExports),
	}
	return r.resolveModule(mod)
}

// bootstrap pre-registers every reserved type/constant/intrinsic name
// so user declarations can never shadow them and so forward
// references to e.g. `vec3` just work like any other symbol lookup.
func bootstrap(ctx *transform.Context) *diagnostic.Error {
	for _, name := range builtins.ReservedTypeNames() {
		data, ok := reservedTypeData(name)
		if !ok {
			return diagnostic.NewError(diagnostic.Internal, diagnostic.Range{}, "unrecognized reserved type name %q", name)
		}
		if _, err := ctx.RegisterType(name, data); err != nil {
			return diagnostic.NewError(diagnostic.Internal, diagnostic.Range{}, "bootstrap: %v", err)
		}
	}
	for _, name := range builtins.ReservedConstantNames() {
		v := constant.String(name)
		data := transform.ConstantData{Name: name, Value: &v, Type: types.NewPrimitive(types.String)}
		if _, err := ctx.RegisterConstant(name, data); err != nil {
			return diagnostic.NewError(diagnostic.Internal, diagnostic.Range{}, "bootstrap: %v", err)
		}
	}
	for _, b := range builtins.Table {
		ctx.RegisterIntrinsic(b.Name, transform.IntrinsicData{Kind: b.Kind})
	}
	return nil
}

// resolveModule walks the module's top-level statements twice: once to
// register every declaration's signature (so mutually-recursive functions
// and out-of-order const references just work), then again to resolve
// function bodies and any attribute left unresolved by the first pass.
func (r *Resolver) resolveModule(mod *ast.Module) *diagnostic.Error {
	stmts := mod.RootStatement.Statements
	for i, s := range stmts {
		ns, err := r.registerTopLevel(s)
		if err != nil {
			return err
		}
		stmts[i] = ns
	}
	for i := range stmts {
		ns, err := r.finishTopLevel(stmts[i])
		if err != nil {
			return err
		}
		stmts[i] = ns
	}
	return nil
}

func (r *Resolver) registerTopLevel(s ast.Statement) (ast.Statement, *diagnostic.Error) {
	switch st := s.(type) {
	case *ast.DeclareStructStmt:
		return r.registerStruct(st)
	case *ast.DeclareAliasStmt:
		return r.registerAlias(st)
	case *ast.DeclareConstStmt:
		return r.registerConst(st)
	case *ast.DeclareOptionStmt:
		return r.registerOption(st)
	case *ast.DeclareExternalStmt:
		return r.registerExternal(st)
	case *ast.DeclareFunctionStmt:
		return r.registerFunctionSignature(st)
	case *ast.ImportStmt:
		return r.registerImport(st)
	case *ast.DeclareVariableStmt:
		return nil, r.errAt(s.Location(), diagnostic.VarDeclarationOutsideOfFunction, "variable %q declared outside of a function", st.Name)
	case *ast.NoOpStmt:
		return s, nil
	default:
		return nil, r.internalErr(s.Location(), "unexpected statement kind %T at module scope", s)
	}
}

func (r *Resolver) finishTopLevel(s ast.Statement) (ast.Statement, *diagnostic.Error) {
	if fn, ok := s.(*ast.DeclareFunctionStmt); ok {
		return r.resolveFunctionBody(fn)
	}
	return s, nil
}

// ----------------------------------------------------------------------------
// Struct
// ----------------------------------------------------------------------------

func (r *Resolver) registerStruct(st *ast.DeclareStructStmt) (ast.Statement, *diagnostic.Error) {
	desc := &st.Description

	if desc.Layout.IsUnset() {
		desc.Layout = ast.ResolvedValue(ast.LayoutPacked)
	} else if desc.Layout.IsUnresolved() {
		v, err := resolveEnumAttr(r, desc.Layout.GetExpression(), memoryLayoutByName, "layout")
		if err != nil {
			return nil, err
		}
		desc.Layout.Resolve(v)
	}

	activeNames := map[string]bool{}
	for i := range desc.Members {
		m := &desc.Members[i]
		if m.Type.IsUnresolved() {
			t, err := r.resolveTypeValue(m.Type.GetExpression())
			if err != nil {
				return nil, err
			}
			m.Type.Resolve(t)
		}
		if m.Builtin.IsUnresolved() {
			v, err := resolveEnumAttr(r, m.Builtin.GetExpression(), builtinEntryByName, "builtin")
			if err != nil {
				return nil, err
			}
			m.Builtin.Resolve(v)
		}
		if m.Location.IsUnresolved() {
			v, err := r.evalConstUint32Expr(m.Location.GetExpression())
			if err != nil {
				return nil, err
			}
			m.Location.Resolve(v)
		}
		if m.Cond.IsUnresolved() {
			v, err := r.evalConstBoolExpr(m.Cond.GetExpression())
			if err != nil {
				return nil, err
			}
			m.Cond.Resolve(v)
		}
		if m.Builtin.IsResolved() && m.Location.IsResolved() {
			return nil, r.errAt(m.Loc, diagnostic.StructFieldBuiltinLocation,
				"struct member %q cannot carry both a builtin and a location attribute", m.Name)
		}
		active := !(m.Cond.IsResolved() && !m.Cond.GetResultingValue())
		if active {
			if activeNames[m.Name] {
				return nil, r.errAt(m.Loc, diagnostic.StructFieldMultiple,
					"struct %q has more than one active member named %q", desc.Name, m.Name)
			}
			activeNames[m.Name] = true
		}
	}

	if st.IsExported.IsUnset() {
		st.IsExported = ast.ResolvedValue(false)
	} else if st.IsExported.IsUnresolved() {
		v, err := r.evalConstBoolExpr(st.IsExported.GetExpression())
		if err != nil {
			return nil, err
		}
		st.IsExported.Resolve(v)
	}

	idx, regErr := r.ctx.RegisterStruct(desc.Name, transform.StructData{Description: desc})
	if regErr != nil {
		return nil, r.errAt(st.Location(), diagnostic.IdentifierAlreadyUsed, "%v", regErr)
	}
	st.StructRef = idx

	return st, nil
}

// ----------------------------------------------------------------------------
// Alias
// ----------------------------------------------------------------------------

func (r *Resolver) registerAlias(st *ast.DeclareAliasStmt) (ast.Statement, *diagnostic.Error) {
	resolved, err := r.resolveExpr(st.Expression)
	if err != nil {
		return nil, err
	}
	st.Expression = resolved
	target, err := r.typeFromValueExpr(resolved)
	if err != nil {
		return nil, err
	}
	idx, regErr := r.ctx.RegisterAlias(st.Name, transform.AliasData{Name: st.Name, TargetType: target})
	if regErr != nil {
		return nil, r.errAt(st.Location(), diagnostic.IdentifierAlreadyUsed, "%v", regErr)
	}
	st.AliasRef = idx
	return st, nil
}

// ----------------------------------------------------------------------------
// Const / Option
// ----------------------------------------------------------------------------

func (r *Resolver) registerConst(st *ast.DeclareConstStmt) (ast.Statement, *diagnostic.Error) {
	var declared types.Type
	if st.Type.IsUnresolved() {
		t, err := r.resolveTypeValue(st.Type.GetExpression())
		if err != nil {
			return nil, err
		}
		st.Type.Resolve(t)
		declared = t
	} else if st.Type.IsResolved() {
		declared = st.Type.GetResultingValue()
	}

	resolvedExpr, err := r.resolveExpr(st.Expression)
	if err != nil {
		return nil, err
	}
	st.Expression = resolvedExpr

	exprType := resolvedExpr.CachedType()
	if declared == nil {
		declared = exprType
		st.Type = ast.ResolvedValue(declared)
	} else if !declared.Equals(exprType) && !types.CanConvertTo(exprType, declared) {
		return nil, r.errAt(st.Location(), diagnostic.UnmatchingTypes,
			"const %q declared as %s but initialized with %s", st.Name, declared, exprType)
	}

	if st.IsExported.IsUnset() {
		st.IsExported = ast.ResolvedValue(false)
	} else if st.IsExported.IsUnresolved() {
		v, err := r.evalConstBoolExpr(st.IsExported.GetExpression())
		if err != nil {
			return nil, err
		}
		st.IsExported.Resolve(v)
	}

	idx, regErr := r.ctx.RegisterConstant(st.Name, transform.ConstantData{Name: st.Name, Type: declared})
	if regErr != nil {
		return nil, r.errAt(st.Location(), diagnostic.IdentifierAlreadyUsed, "%v", regErr)
	}
	st.ConstantRef = idx
	if cv, ok := resolvedExpr.(*ast.ConstantValueExpr); ok {
		r.ctx.SetConstantValue(idx, cv.Value)
	}
	return st, nil
}

func (r *Resolver) registerOption(st *ast.DeclareOptionStmt) (ast.Statement, *diagnostic.Error) {
	var declared types.Type
	if st.Type.IsUnresolved() {
		t, err := r.resolveTypeValue(st.Type.GetExpression())
		if err != nil {
			return nil, err
		}
		st.Type.Resolve(t)
		declared = t
	} else if st.Type.IsResolved() {
		declared = st.Type.GetResultingValue()
	}

	if st.DefaultValue != nil {
		resolved, err := r.resolveExpr(st.DefaultValue)
		if err != nil {
			return nil, err
		}
		st.DefaultValue = resolved
		if declared == nil {
			declared = resolved.CachedType()
			st.Type = ast.ResolvedValue(declared)
		} else if !declared.Equals(resolved.CachedType()) && !types.CanConvertTo(resolved.CachedType(), declared) {
			return nil, r.errAt(st.Location(), diagnostic.UnmatchingTypes,
				"option %q declared as %s but defaulted with %s", st.Name, declared, resolved.CachedType())
		}
	}
	if declared == nil {
		return nil, r.errAt(st.Location(), diagnostic.ConstMissingExpression, "option %q needs a type or a default value", st.Name)
	}

	idx, regErr := r.ctx.RegisterConstant(st.Name, transform.ConstantData{Name: st.Name, Type: declared})
	if regErr != nil {
		return nil, r.errAt(st.Location(), diagnostic.IdentifierAlreadyUsed, "%v", regErr)
	}
	st.ConstantRef = idx
	if st.DefaultValue != nil {
		if cv, ok := st.DefaultValue.(*ast.ConstantValueExpr); ok {
			r.ctx.SetConstantValue(idx, cv.Value)
		}
	}
	return st, nil
}

// ----------------------------------------------------------------------------
// External blocks
// ----------------------------------------------------------------------------

func (r *Resolver) registerExternal(st *ast.DeclareExternalStmt) (ast.Statement, *diagnostic.Error) {
	var blockSet uint32
	hasBlockSet := false
	if st.Set.IsUnresolved() {
		v, err := r.evalConstUint32Expr(st.Set.GetExpression())
		if err != nil {
			return nil, err
		}
		st.Set.Resolve(v)
	}
	if st.Set.IsResolved() {
		blockSet = st.Set.GetResultingValue()
		hasBlockSet = true
	}

	autoBinding := false
	if st.AutoBinding.IsUnresolved() {
		v, err := r.evalConstBoolExpr(st.AutoBinding.GetExpression())
		if err != nil {
			return nil, err
		}
		st.AutoBinding.Resolve(v)
	}
	if st.AutoBinding.IsResolved() {
		autoBinding = st.AutoBinding.GetResultingValue()
	}

	members := make(map[string]ref.Variable, len(st.ExternalVars))
	usedBindings := map[uint64]bool{}
	nextAuto := uint32(0)

	for i := range st.ExternalVars {
		ev := &st.ExternalVars[i]
		if ev.Type.IsUnresolved() {
			t, err := r.resolveTypeValue(ev.Type.GetExpression())
			if err != nil {
				return nil, err
			}
			ev.Type.Resolve(t)
		}
		set := blockSet
		if ev.Set.IsUnresolved() {
			v, err := r.evalConstUint32Expr(ev.Set.GetExpression())
			if err != nil {
				return nil, err
			}
			ev.Set.Resolve(v)
		}
		if ev.Set.IsResolved() {
			set = ev.Set.GetResultingValue()
		} else if !hasBlockSet {
			return nil, r.errAt(ev.Loc, diagnostic.ExtMissingBindingIndex, "external %q has no descriptor set", ev.Name)
		}

		var binding uint32
		if ev.Binding.IsUnresolved() {
			v, err := r.evalConstUint32Expr(ev.Binding.GetExpression())
			if err != nil {
				return nil, err
			}
			ev.Binding.Resolve(v)
		}
		if ev.Binding.IsResolved() {
			binding = ev.Binding.GetResultingValue()
		} else if autoBinding {
			for usedBindings[uint64(set)<<32|uint64(nextAuto)] {
				nextAuto++
			}
			binding = nextAuto
			ev.Binding.Resolve(binding)
		} else {
			return nil, r.errAt(ev.Loc, diagnostic.ExtMissingBindingIndex, "external %q needs a binding index", ev.Name)
		}
		key := uint64(set)<<32 | uint64(binding)
		if usedBindings[key] {
			return nil, r.errAt(ev.Loc, diagnostic.ExtBindingAlreadyUsed, "binding %d of set %d is already used", binding, set)
		}
		usedBindings[key] = true
		if binding >= nextAuto {
			nextAuto = binding + 1
		}

		varIdx, regErr := r.ctx.RegisterVariable(ev.Name, transform.VariableData{Name: ev.Name, Type: ev.Type.GetResultingValue(), IsConst: false})
		if regErr != nil {
			return nil, r.errAt(ev.Loc, diagnostic.ExtAlreadyDeclared, "%v", regErr)
		}
		ev.VariableRef = varIdx
		members[ev.Name] = varIdx
	}

	r.ctx.RegisterExternalBlock(st.Tag, transform.ExternalBlockData{Tag: st.Tag, Members: members})
	return st, nil
}

// ----------------------------------------------------------------------------
// Functions
// ----------------------------------------------------------------------------

func (r *Resolver) registerFunctionSignature(st *ast.DeclareFunctionStmt) (ast.Statement, *diagnostic.Error) {
	paramTypes := make([]types.Type, len(st.Parameters))
	for i := range st.Parameters {
		p := &st.Parameters[i]
		if p.Type.IsUnresolved() {
			t, err := r.resolveTypeValue(p.Type.GetExpression())
			if err != nil {
				return nil, err
			}
			p.Type.Resolve(t)
		}
		paramTypes[i] = p.Type.GetResultingValue()
	}

	var retType types.Type = types.NoType{}
	if st.ReturnType.IsUnresolved() {
		t, err := r.resolveTypeValue(st.ReturnType.GetExpression())
		if err != nil {
			return nil, err
		}
		st.ReturnType.Resolve(t)
		retType = t
	} else if st.ReturnType.IsResolved() {
		retType = st.ReturnType.GetResultingValue()
	} else {
		st.ReturnType = ast.ResolvedValue[types.Type](types.NoType{})
	}

	if st.EntryStage.IsUnresolved() {
		v, err := resolveEnumAttr(r, st.EntryStage.GetExpression(), shaderStageByName, "entry stage")
		if err != nil {
			return nil, err
		}
		st.EntryStage.Resolve(v)
	} else if st.EntryStage.IsUnset() {
		st.EntryStage = ast.ResolvedValue(ast.StageNone)
	}

	if st.DepthWrite.IsUnresolved() {
		v, err := resolveEnumAttr(r, st.DepthWrite.GetExpression(), depthWriteByName, "depth write mode")
		if err != nil {
			return nil, err
		}
		st.DepthWrite.Resolve(v)
	}
	if st.EarlyFragmentTests.IsUnresolved() {
		v, err := r.evalConstBoolExpr(st.EarlyFragmentTests.GetExpression())
		if err != nil {
			return nil, err
		}
		st.EarlyFragmentTests.Resolve(v)
	}
	if st.WorkgroupSize.IsUnresolved() {
		v, err := r.evalConstUvec3(st.WorkgroupSize.GetExpression())
		if err != nil {
			return nil, err
		}
		st.WorkgroupSize.Resolve(v)
	}
	if st.IsExported.IsUnset() {
		st.IsExported = ast.ResolvedValue(false)
	} else if st.IsExported.IsUnresolved() {
		v, err := r.evalConstBoolExpr(st.IsExported.GetExpression())
		if err != nil {
			return nil, err
		}
		st.IsExported.Resolve(v)
	}

	stage := st.EntryStage.GetResultingValue()
	if st.DepthWrite.IsResolved() && stage != ast.StageFragment {
		return nil, r.errAt(st.Location(), diagnostic.DepthWriteAttribute, "depth_write only applies to a fragment entry point")
	}
	if st.EarlyFragmentTests.IsResolved() && stage != ast.StageFragment {
		return nil, r.errAt(st.Location(), diagnostic.EarlyFragmentTestsAttribute, "early_fragment_tests only applies to a fragment entry point")
	}
	if st.WorkgroupSize.IsResolved() && stage != ast.StageCompute {
		return nil, r.errAt(st.Location(), diagnostic.AttributeUnexpectedType, "workgroup size only applies to a compute entry point")
	}
	if stage != ast.StageNone {
		if prev, ok := r.entryStages[stage]; ok {
			_ = prev
			return nil, r.errAt(st.Location(), diagnostic.EntryPointAlreadyDefined, "entry point for stage %s is already defined", stage)
		}
	}

	idx, regErr := r.ctx.RegisterFunction(st.Name, transform.FunctionData{
		Name:      st.Name,
		Signature: transform.FunctionSignature{ParameterTypes: paramTypes, ReturnType: retType},
		Flags:     transform.FunctionFlags{IsExported: st.IsExported.GetResultingValue()},
		Node:      st,
	})
	if regErr != nil {
		return nil, r.errAt(st.Location(), diagnostic.IdentifierAlreadyUsed, "%v", regErr)
	}
	st.FuncRef = idx
	if stage != ast.StageNone {
		r.entryStages[stage] = idx
	}
	return st, nil
}

func (r *Resolver) resolveFunctionBody(st *ast.DeclareFunctionStmt) (ast.Statement, *diagnostic.Error) {
	r.ctx.PushScope()
	defer r.ctx.PopScope()

	for i := range st.Parameters {
		p := &st.Parameters[i]
		idx, err := r.ctx.RegisterVariable(p.Name, transform.VariableData{Name: p.Name, Type: p.Type.GetResultingValue(), IsConst: true})
		if err != nil {
			return nil, r.errAt(p.Loc, diagnostic.IdentifierAlreadyUsed, "%v", err)
		}
		p.VariableRef = idx
	}

	prevDepth, prevReturn, prevStage, prevEFT := r.funcDepth, r.returnType, r.stage, r.earlyFragmentTests
	r.funcDepth++
	r.returnType = st.ReturnType.GetResultingValue()
	r.stage = st.EntryStage.GetResultingValue()
	r.earlyFragmentTests = st.EarlyFragmentTests.IsResolved() && st.EarlyFragmentTests.GetResultingValue()
	defer func() {
		r.funcDepth, r.returnType, r.stage, r.earlyFragmentTests = prevDepth, prevReturn, prevStage, prevEFT
	}()

	for i, s := range st.Statements {
		ns, err := r.resolveStmt(s)
		if err != nil {
			return nil, err
		}
		st.Statements[i] = ns
	}
	return st, nil
}

// ----------------------------------------------------------------------------
// Import
// ----------------------------------------------------------------------------

// registerImport implements the two import forms: a bare
// `import M;` registers M as a qualified namespace, whose members are
// spliced into the current scope lazily, on first `M.member` access (see
// resolveModuleAccess). `import a, b from M;` / `import * from M;` splice
// the requested exported declarations in eagerly, by name, so they behave
// exactly like any other locally declared symbol from then on.
func (r *Resolver) registerImport(st *ast.ImportStmt) (ast.Statement, *diagnostic.Error) {
	if r.imports == nil {
		r.Partial = true
		r.ctx.PartialCompilation = true
		if r.ctx.AllowUnknownIdentifiers {
			return st, nil
		}
		return nil, r.errAt(st.Location(), diagnostic.NoModuleResolver, "no module resolver configured to import %q", st.ModuleName)
	}
	mod, err := r.imports.ResolveImport(st.ModuleName)
	if err != nil {
		return nil, r.errAt(st.Location(), diagnostic.ModuleCompilationFailed, "importing %q: %v", st.ModuleName, err)
	}
	exports, derr := r.resolveSubmodule(st.ModuleName, mod, st.Location())
	if derr != nil {
		return nil, derr
	}

	if len(st.Identifiers) == 0 {
		modIdx := r.ctx.RegisterModule(st.ModuleName, transform.ModuleData{Name: st.ModuleName, Node: mod})
		r.moduleExportsByRef[modIdx] = exports
		return st, nil
	}

	if st.Wildcard() {
		for name, decl := range exports.decls {
			if _, err := r.spliceDecl(exports, name, decl, ref.InvalidModule, st.Location()); err != nil {
				return nil, err
			}
		}
		return st, nil
	}

	for _, id := range st.Identifiers {
		decl, ok := exports.decls[id.Identifier]
		if !ok {
			return nil, r.errAt(id.IdentifierLoc, diagnostic.UnknownIdentifier, "%q does not export %q", st.ModuleName, id.Identifier)
		}
		localName := id.Identifier
		if id.RenamedIdentifier != "" {
			localName = id.RenamedIdentifier
		}
		if _, err := r.spliceDecl(exports, localName, decl, ref.InvalidModule, id.IdentifierLoc); err != nil {
			return nil, err
		}
	}
	return st, nil
}
