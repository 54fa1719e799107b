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

// resolveExpr is the single dispatch point every expression in a function
// body or attribute passes through. It both type-checks the node and
// rewrites bare names into the indexed reference kinds (VariableValueExpr,
// ConstantExpr, FunctionExpr, ...) the rest of the pipeline expects.
func (r *Resolver) resolveExpr(e ast.Expression) (ast.Expression, *diagnostic.Error) {
	switch ex := e.(type) {
	case *ast.ConstantValueExpr:
		if ex.CachedType() == nil {
			ex.SetCachedType(constant.GetType(ex.Value))
		}
		return ex, nil
	case *ast.ConstantArrayValueExpr:
		if ex.CachedType() == nil {
			ex.SetCachedType(constant.GetType(ex.Value))
		}
		return ex, nil
	case *ast.IdentifierExpr:
		return r.resolveIdentifier(ex)
	case *ast.AccessIdentifierExpr:
		return r.resolveAccessIdentifier(ex)
	case *ast.AccessIndexExpr:
		return r.resolveAccessIndex(ex)
	case *ast.BinaryExpr:
		return r.resolveBinary(ex)
	case *ast.UnaryExpr:
		return r.resolveUnary(ex)
	case *ast.AssignExpr:
		return r.resolveAssign(ex)
	case *ast.ConditionalExpr:
		return r.resolveConditional(ex)
	case *ast.CastExpr:
		return r.resolveCast(ex)
	case *ast.CallFunctionExpr:
		return r.resolveCallFunction(ex)
	case *ast.CallMethodExpr:
		return r.resolveCallMethod(ex)

	// Already-resolved node kinds: a freshly-parsed module never contains
	// these, but a pass re-entering an already-resolved tree (e.g. a
	// spliced import, or re-resolving a lowered clone) should treat them
	// as fixed points.
	case *ast.VariableValueExpr, *ast.ConstantExpr, *ast.FunctionExpr,
		*ast.AliasValueExpr, *ast.TypeExpr, *ast.StructTypeExpr,
		*ast.IntrinsicExpr, *ast.IntrinsicFunctionExpr, *ast.AccessFieldExpr,
		*ast.SwizzleExpr:
		return e, nil

	default:
		return nil, r.internalErr(e.Location(), "unresolved expression kind %T", e)
	}
}

func (r *Resolver) resolveIdentifier(ex *ast.IdentifierExpr) (ast.Expression, *diagnostic.Error) {
	sym, ok := r.ctx.Lookup(ex.Identifier)
	if !ok {
		if r.ctx.AllowUnknownIdentifiers {
			ex.SetCachedType(types.NoType{})
			return ex, nil
		}
		return nil, r.unknownIdentifier(ex.Location(), ex.Identifier)
	}
	return r.expressionForSymbol(sym, ex.Identifier, ex.Location())
}

// expressionForSymbol builds the indexed-reference node a resolved symbol
// names, used both for a bare identifier and as the last step of a
// qualified module access.
func (r *Resolver) expressionForSymbol(sym transform.Symbol, name string, loc ast.Loc) (ast.Expression, *diagnostic.Error) {
	base := ast.Loc(loc)
	switch sym.Category {
	case transform.CategoryVariable:
		idx := ref.Variable(sym.Index)
		data, _ := r.ctx.Variable(idx)
		n := &ast.VariableValueExpr{VariableRef: idx}
		n.Loc, n.Type = base, data.Type
		return n, nil
	case transform.CategoryConstant:
		idx := ref.Constant(sym.Index)
		data, _ := r.ctx.Constant(idx)
		n := &ast.ConstantExpr{ConstantRef: idx}
		n.Loc, n.Type = base, data.Type
		return n, nil
	case transform.CategoryFunction:
		idx := ref.Function(sym.Index)
		n := &ast.FunctionExpr{FuncRef: idx}
		n.Loc, n.Type = base, &types.Function{FuncRef: idx}
		return n, nil
	case transform.CategoryIntrinsic:
		idx := ref.Intrinsic(sym.Index)
		n := &ast.IntrinsicFunctionExpr{IntrinsicRef: idx}
		n.Loc, n.Type = base, &types.Intrinsic{IntrinsicRef: idx}
		return n, nil
	case transform.CategoryType:
		idx := ref.Type(sym.Index)
		data, _ := r.ctx.Type(idx)
		n := &ast.TypeExpr{TypeRef: idx}
		n.Loc, n.Type = base, &types.NamedType{TypeRef: idx, Name: data.Name}
		return n, nil
	case transform.CategoryAlias:
		idx := ref.Alias(sym.Index)
		data, _ := r.ctx.Alias(idx)
		n := &ast.AliasValueExpr{AliasRef: idx}
		n.Loc, n.Type = base, &types.NamedType{Name: data.Name}
		return n, nil
	case transform.CategoryStruct:
		idx := ref.Struct(sym.Index)
		data, _ := r.ctx.Struct(idx)
		n := &ast.StructTypeExpr{StructRef: idx}
		n.Loc, n.Type = base, &types.NamedType{Name: data.Description.Name}
		return n, nil
	case transform.CategoryModule, transform.CategoryExternalBlock:
		return nil, r.errAt(loc, diagnostic.UnexpectedAccessedType, "%q names a module or external block, not a value", name)
	default:
		return nil, r.internalErr(loc, "unrecognized symbol category for %q", name)
	}
}

// resolveAccessIdentifier resolves `base.a.b.c`: either a qualified
// module/external access (detected when base is a bare identifier naming
// one), or a chain of struct-field/swizzle accesses on an ordinary value.
func (r *Resolver) resolveAccessIdentifier(ex *ast.AccessIdentifierExpr) (ast.Expression, *diagnostic.Error) {
	if base, ok := ex.Expr.(*ast.IdentifierExpr); ok {
		if sym, ok := r.ctx.Lookup(base.Identifier); ok && sym.Category == transform.CategoryModule {
			return r.resolveModuleAccess(ref.Module(sym.Index), base.Identifier, ex)
		}
	}

	cur, err := r.resolveExpr(ex.Expr)
	if err != nil {
		return nil, err
	}
	for _, name := range ex.Identifiers {
		cur, err = r.resolveAccess(cur, name)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

func (r *Resolver) resolveModuleAccess(modIdx ref.Module, moduleName string, ex *ast.AccessIdentifierExpr) (ast.Expression, *diagnostic.Error) {
	exports, ok := r.moduleExportsByRef[modIdx]
	if !ok {
		return nil, r.internalErr(ex.Location(), "dangling module reference %q", moduleName)
	}
	if len(ex.Identifiers) != 1 {
		return nil, r.errAt(ex.Location(), diagnostic.UnexpectedAccessedType, "nested access into module %q is not supported", moduleName)
	}
	member := ex.Identifiers[0]
	if sym, ok := r.spliced[splicedKey{modIdx, member.Name}]; ok {
		return r.expressionForSymbol(sym, member.Name, ex.Location())
	}
	decl, ok := exports.decls[member.Name]
	if !ok {
		return nil, r.errAt(member.Loc, diagnostic.UnknownIdentifier, "%q does not export %q", moduleName, member.Name)
	}
	sym, err := r.spliceDecl(exports, member.Name, decl, modIdx, member.Loc)
	if err != nil {
		return nil, err
	}
	if r.spliced == nil {
		r.spliced = map[splicedKey]transform.Symbol{}
	}
	r.spliced[splicedKey{modIdx, member.Name}] = sym
	return r.expressionForSymbol(sym, member.Name, ex.Location())
}

// resolveAccess resolves one `.name` link given the already-resolved
// receiver: a struct field, or (when the receiver is a vector) a swizzle.
func (r *Resolver) resolveAccess(recv ast.Expression, name ast.AccessIdentifierName) (ast.Expression, *diagnostic.Error) {
	t := types.ResolveAlias(recv.CachedType())
	switch tt := t.(type) {
	case *types.Struct:
		data, ok := r.ctx.Struct(tt.StructRef)
		if !ok {
			return nil, r.internalErr(name.Loc, "dangling struct reference")
		}
		for i, m := range data.Description.Members {
			if m.Name == name.Name {
				n := &ast.AccessFieldExpr{FieldIndex: uint32(i), Expr: recv}
				n.Loc, n.Type = name.Loc, m.Type.GetResultingValue()
				return n, nil
			}
		}
		return nil, r.errAt(name.Loc, diagnostic.UnknownField, "struct %s has no field %q", tt, name.Name)
	case *types.Vector:
		comps, ok := swizzleComponents(name.Name)
		if !ok {
			return nil, r.errAt(name.Loc, diagnostic.InvalidSwizzle, "%q is not a valid swizzle mask", name.Name)
		}
		for _, c := range comps {
			if int(c) >= int(tt.Count) {
				return nil, r.errAt(name.Loc, diagnostic.InvalidSwizzle, "swizzle %q references component %d of a %d-component vector", name.Name, c, tt.Count)
			}
		}
		n := &ast.SwizzleExpr{Expr: recv, ComponentCount: uint8(len(comps))}
		copy(n.Components[:], comps)
		var resultType types.Type = types.NewPrimitive(tt.Elem)
		if len(comps) > 1 {
			resultType = &types.Vector{Count: uint8(len(comps)), Elem: tt.Elem}
		}
		n.Loc, n.Type = name.Loc, resultType
		return n, nil
	default:
		return nil, r.errAt(name.Loc, diagnostic.SwizzleUnexpectedType, "cannot access field %q on %s", name.Name, t)
	}
}

// swizzleComponents parses a 1..4 letter xyzw/rgba swizzle mask.
func swizzleComponents(mask string) ([]uint32, bool) {
	if len(mask) == 0 || len(mask) > 4 {
		return nil, false
	}
	out := make([]uint32, len(mask))
	for i, c := range mask {
		var idx uint32
		switch c {
		case 'x', 'r':
			idx = 0
		case 'y', 'g':
			idx = 1
		case 'z', 'b':
			idx = 2
		case 'w', 'a':
			idx = 3
		default:
			return nil, false
		}
		out[i] = idx
	}
	return out, true
}

func (r *Resolver) resolveAccessIndex(ex *ast.AccessIndexExpr) (ast.Expression, *diagnostic.Error) {
	base, err := r.resolveExpr(ex.Expr)
	if err != nil {
		return nil, err
	}

	// A partial type constructor applied to brackets (`vec3[f32]`,
	// `array[f32, 4]`, `storage[S, readonly]`) is syntactically identical
	// to indexing, so it is disambiguated here rather than by the parser.
	if nt, ok := base.CachedType().(*types.NamedType); ok {
		if data, ok2 := r.ctx.Type(nt.TypeRef); ok2 && data.Partial != nil {
			return r.resolvePartialInstantiation(ex, data.Partial, base)
		}
	}

	indices := make([]ast.Expression, len(ex.Indices))
	for i, idxExpr := range ex.Indices {
		ri, err := r.resolveExpr(idxExpr)
		if err != nil {
			return nil, err
		}
		k, ok := types.ScalarKind(ri.CachedType())
		if !ok || !k.IsInteger() {
			return nil, r.errAt(idxExpr.Location(), diagnostic.IndexRequiresIntegerIndices, "index must be an integer, got %s", ri.CachedType())
		}
		indices[i] = ri
	}

	cur := base
	for _, idx := range indices {
		elemType, err := indexedElementType(cur.CachedType())
		if err != nil {
			return nil, r.errAt(idx.Location(), diagnostic.IndexUnexpectedType, "%v", err)
		}
		n := &ast.AccessIndexExpr{Expr: cur, Indices: []ast.Expression{idx}}
		n.Loc, n.Type = ex.Location(), elemType
		cur = n
	}
	return cur, nil
}

func (r *Resolver) resolvePartialInstantiation(ex *ast.AccessIndexExpr, pt *transform.PartialType, base ast.Expression) (ast.Expression, *diagnostic.Error) {
	if len(ex.Indices) < pt.MinArgs || len(ex.Indices) > pt.MaxArgs {
		if len(ex.Indices) < pt.MinArgs {
			return nil, r.errAt(ex.Location(), diagnostic.PartialTypeTooFewParameters, "%q expects at least %d argument(s)", pt.Name, pt.MinArgs)
		}
		return nil, r.errAt(ex.Location(), diagnostic.PartialTypeTooManyParameters, "%q expects at most %d argument(s)", pt.Name, pt.MaxArgs)
	}
	args := make([]ast.Expression, len(ex.Indices))
	for i, a := range ex.Indices {
		ra, err := r.resolveExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = ra
	}
	concrete, err := r.materializePartial(pt, args, ex.Location())
	if err != nil {
		return nil, err
	}
	n := &ast.AccessIndexExpr{Expr: base, Indices: args}
	n.Loc, n.Type = ex.Location(), concrete
	return n, nil
}

func indexedElementType(t types.Type) (types.Type, error) {
	switch tt := types.ResolveAlias(t).(type) {
	case *types.Array:
		return tt.Inner, nil
	case *types.DynArray:
		return tt.Inner, nil
	case *types.Vector:
		return types.NewPrimitive(tt.Elem), nil
	case *types.Matrix:
		return &types.Vector{Count: tt.Rows, Elem: tt.Elem}, nil
	default:
		return nil, indexTypeError{t}
	}
}

type indexTypeError struct{ t types.Type }

func (e indexTypeError) Error() string { return "cannot index " + e.t.String() }

func (r *Resolver) resolveBinary(ex *ast.BinaryExpr) (ast.Expression, *diagnostic.Error) {
	left, err := r.resolveExpr(ex.Left)
	if err != nil {
		return nil, err
	}
	right, err := r.resolveExpr(ex.Right)
	if err != nil {
		return nil, err
	}
	ex.Left, ex.Right = left, right

	if ex.Op.IsComparison() {
		common := types.CommonType(left.CachedType(), right.CachedType())
		if common == nil {
			return nil, r.errAt(ex.Location(), diagnostic.BinaryIncompatibleTypes, "cannot compare %s with %s", left.CachedType(), right.CachedType())
		}
		k, ok := types.ScalarKind(common)
		if !ok {
			return nil, r.errAt(ex.Location(), diagnostic.BinaryUnsupported, "operator %s does not support %s", ex.Op, common)
		}
		if v, isVec := types.ResolveAlias(common).(*types.Vector); isVec {
			ex.SetCachedType(&types.Vector{Count: v.Count, Elem: types.Bool})
		} else {
			_ = k
			ex.SetCachedType(types.NewPrimitive(types.Bool))
		}
		return ex, nil
	}

	common := types.CommonType(left.CachedType(), right.CachedType())
	if common == nil {
		return nil, r.errAt(ex.Location(), diagnostic.BinaryIncompatibleTypes, "cannot apply %s to %s and %s", ex.Op, left.CachedType(), right.CachedType())
	}
	k, ok := types.ScalarKind(common)
	if !ok {
		return nil, r.errAt(ex.Location(), diagnostic.BinaryUnsupported, "operator %s does not support %s", ex.Op, common)
	}
	switch ex.Op {
	case ast.BinaryLogicalAnd, ast.BinaryLogicalOr:
		if k != types.Bool {
			return nil, r.errAt(ex.Location(), diagnostic.BinaryUnsupported, "operator %s requires bool operands", ex.Op)
		}
	case ast.BinaryBitwiseAnd, ast.BinaryBitwiseOr, ast.BinaryBitwiseXor, ast.BinaryShiftLeft, ast.BinaryShiftRight:
		if !k.IsInteger() {
			return nil, r.errAt(ex.Location(), diagnostic.BinaryUnsupported, "operator %s requires integer operands", ex.Op)
		}
	}
	ex.SetCachedType(common)
	return ex, nil
}

func (r *Resolver) resolveUnary(ex *ast.UnaryExpr) (ast.Expression, *diagnostic.Error) {
	inner, err := r.resolveExpr(ex.Expr)
	if err != nil {
		return nil, err
	}
	ex.Expr = inner
	k, ok := types.ScalarKind(inner.CachedType())
	if !ok {
		return nil, r.errAt(ex.Location(), diagnostic.UnaryUnsupported, "operator %s does not support %s", ex.Op, inner.CachedType())
	}
	switch ex.Op {
	case ast.UnaryLogicalNot:
		if k != types.Bool {
			return nil, r.errAt(ex.Location(), diagnostic.UnaryUnsupported, "! requires a bool operand")
		}
	case ast.UnaryBitwiseNot:
		if !k.IsInteger() {
			return nil, r.errAt(ex.Location(), diagnostic.UnaryUnsupported, "~ requires an integer operand")
		}
	case ast.UnaryMinus, ast.UnaryPlus:
		if k == types.Bool {
			return nil, r.errAt(ex.Location(), diagnostic.UnaryUnsupported, "%s does not support bool", ex.Op)
		}
	}
	ex.SetCachedType(inner.CachedType())
	return ex, nil
}

func (r *Resolver) resolveAssign(ex *ast.AssignExpr) (ast.Expression, *diagnostic.Error) {
	left, err := r.resolveExpr(ex.Left)
	if err != nil {
		return nil, err
	}
	if !isAssignable(left) {
		return nil, r.errAt(ex.Location(), diagnostic.AssignTemporary, "cannot assign to a temporary expression")
	}
	right, err := r.resolveExpr(ex.Right)
	if err != nil {
		return nil, err
	}
	if !types.CanConvertTo(right.CachedType(), left.CachedType()) && !left.CachedType().Equals(right.CachedType()) {
		return nil, r.errAt(ex.Location(), diagnostic.UnmatchingTypes, "cannot assign %s to %s", right.CachedType(), left.CachedType())
	}
	ex.Left, ex.Right = left, right
	ex.SetCachedType(left.CachedType())
	return ex, nil
}

func isAssignable(e ast.Expression) bool {
	switch e.(type) {
	case *ast.VariableValueExpr, *ast.AccessFieldExpr, *ast.AccessIndexExpr, *ast.SwizzleExpr:
		return true
	default:
		return false
	}
}

func (r *Resolver) resolveConditional(ex *ast.ConditionalExpr) (ast.Expression, *diagnostic.Error) {
	cond, err := r.resolveExpr(ex.Cond)
	if err != nil {
		return nil, err
	}
	if k, ok := types.ScalarKind(cond.CachedType()); !ok || k != types.Bool {
		return nil, r.errAt(ex.Cond.Location(), diagnostic.ConditionExpectedBool, "condition must be a bool")
	}
	truePath, err := r.resolveExpr(ex.TruePath)
	if err != nil {
		return nil, err
	}
	falsePath, err := r.resolveExpr(ex.FalsePath)
	if err != nil {
		return nil, err
	}
	common := types.CommonType(truePath.CachedType(), falsePath.CachedType())
	if common == nil {
		return nil, r.errAt(ex.Location(), diagnostic.UnmatchingTypes, "branches of ?: have incompatible types %s and %s", truePath.CachedType(), falsePath.CachedType())
	}
	ex.Cond, ex.TruePath, ex.FalsePath = cond, truePath, falsePath
	ex.SetCachedType(common)
	return ex, nil
}

func (r *Resolver) resolveCast(ex *ast.CastExpr) (ast.Expression, *diagnostic.Error) {
	target, err := r.resolveTypeValue(ex.TargetType.GetExpression())
	if err != nil {
		return nil, err
	}
	ex.TargetType.Resolve(target)

	exprs := make([]ast.Expression, len(ex.Exprs))
	for i, src := range ex.Exprs {
		re, err := r.resolveExpr(src)
		if err != nil {
			return nil, err
		}
		exprs[i] = re
	}
	ex.Exprs = exprs

	if len(exprs) == 1 {
		srcType := exprs[0].CachedType()
		if !types.CanConvertTo(srcType, target) {
			if !compatibleCastBases(srcType, target) {
				return nil, r.errAt(ex.Location(), diagnostic.CastIncompatibleTypes, "cannot cast %s to %s", srcType, target)
			}
		}
	} else if vt, ok := types.ResolveAlias(target).(*types.Vector); ok {
		if int(vt.Count) != len(exprs) {
			return nil, r.errAt(ex.Location(), diagnostic.CastComponentMismatch, "%s needs %d components, got %d", target, vt.Count, len(exprs))
		}
	}
	ex.SetCachedType(target)
	return ex, nil
}

// compatibleCastBases allows an explicit numeric scalar/vector cast
// (i32(f) or vec3[i32](someF32Vec3)) even when CanConvertTo would refuse
// the implicit conversion.
func compatibleCastBases(from, to types.Type) bool {
	fk, fok := types.ScalarKind(from)
	tk, tok := types.ScalarKind(to)
	if !fok || !tok {
		return false
	}
	_, fromVec := types.ResolveAlias(from).(*types.Vector)
	_, toVec := types.ResolveAlias(to).(*types.Vector)
	return fromVec == toVec && fk != types.Bool && tk != types.Bool
}

func (r *Resolver) resolveCallFunction(ex *ast.CallFunctionExpr) (ast.Expression, *diagnostic.Error) {
	callee, err := r.resolveExpr(ex.TargetFunction)
	if err != nil {
		return nil, err
	}
	ex.TargetFunction = callee

	params := make([]ast.Expression, len(ex.Params))
	for i, p := range ex.Params {
		rp, err := r.resolveExpr(p)
		if err != nil {
			return nil, err
		}
		params[i] = rp
	}
	ex.Params = params

	switch ct := callee.CachedType().(type) {
	case *types.Function:
		data, ok := r.ctx.Function(ct.FuncRef)
		if !ok {
			return nil, r.internalErr(ex.Location(), "dangling function reference")
		}
		if data.Node != nil && data.Node.IsEntryPoint() {
			return nil, r.errAt(ex.Location(), diagnostic.FunctionCallUnexpectedEntryFunction, "%q is an entry point and cannot be called directly", data.Name)
		}
		if len(params) != len(data.Signature.ParameterTypes) {
			return nil, r.errAt(ex.Location(), diagnostic.FunctionCallUnmatchingParameterCount, "%q expects %d argument(s), got %d", data.Name, len(data.Signature.ParameterTypes), len(params))
		}
		for i, pt := range data.Signature.ParameterTypes {
			if !params[i].CachedType().Equals(pt) && !types.CanConvertTo(params[i].CachedType(), pt) {
				return nil, r.errAt(params[i].Location(), diagnostic.FunctionCallUnmatchingParameterType, "%q parameter %d expects %s, got %s", data.Name, i+1, pt, params[i].CachedType())
			}
		}
		ex.SetCachedType(data.Signature.ReturnType)
		return ex, nil

	case *types.Intrinsic:
		return r.resolveIntrinsicCall(ex, ct, params)

	case *types.NamedType:
		return r.resolveConstructorCall(ex, callee, params)

	default:
		return nil, r.errAt(ex.Location(), diagnostic.FunctionCallExpectedFunction, "cannot call an expression of type %s", callee.CachedType())
	}
}

func (r *Resolver) resolveIntrinsicCall(ex *ast.CallFunctionExpr, it *types.Intrinsic, params []ast.Expression) (ast.Expression, *diagnostic.Error) {
	data, ok := r.ctx.Intrinsic(it.IntrinsicRef)
	if !ok {
		return nil, r.internalErr(ex.Location(), "dangling intrinsic reference")
	}
	argTypes := make([]types.Type, len(params))
	for i, p := range params {
		argTypes[i] = p.CachedType()
	}
	b := builtins.ByKind(data.Kind)
	if b == nil {
		return nil, r.internalErr(ex.Location(), "no builtin table entry for intrinsic kind %v", data.Kind)
	}
	ret, ok := builtins.ResolveOverload(b, argTypes)
	if !ok {
		return nil, r.errAt(ex.Location(), diagnostic.IntrinsicUnmatchingParameterType, "no overload of %q matches argument types %s", b.Name, types.Describe(argTypes))
	}
	n := &ast.IntrinsicExpr{Intrinsic: data.Kind, Params: params}
	n.Loc, n.Type = ex.Location(), ret
	return n, nil
}

func (r *Resolver) resolveConstructorCall(ex *ast.CallFunctionExpr, callee ast.Expression, params []ast.Expression) (ast.Expression, *diagnostic.Error) {
	target, err := r.typeFromValueExpr(callee)
	if err != nil {
		return nil, err
	}
	cast := &ast.CastExpr{TargetType: ast.ResolvedValue(target), Exprs: params}
	cast.Loc = ex.Location()
	if len(params) == 1 {
		srcType := params[0].CachedType()
		if !types.CanConvertTo(srcType, target) && !compatibleCastBases(srcType, target) {
			return nil, r.errAt(ex.Location(), diagnostic.CastIncompatibleTypes, "cannot construct %s from %s", target, srcType)
		}
	} else if vt, ok := types.ResolveAlias(target).(*types.Vector); ok && int(vt.Count) != len(params) {
		return nil, r.errAt(ex.Location(), diagnostic.CastComponentMismatch, "%s needs %d components, got %d", target, vt.Count, len(params))
	}
	cast.SetCachedType(target)
	return cast, nil
}

func (r *Resolver) resolveCallMethod(ex *ast.CallMethodExpr) (ast.Expression, *diagnostic.Error) {
	obj, err := r.resolveExpr(ex.Object)
	if err != nil {
		return nil, err
	}
	ex.Object = obj
	params := make([]ast.Expression, len(ex.Params))
	for i, p := range ex.Params {
		rp, err := r.resolveExpr(p)
		if err != nil {
			return nil, err
		}
		params[i] = rp
	}
	ex.Params = params

	argTypes := make([]types.Type, len(params)+1)
	argTypes[0] = obj.CachedType()
	copy(argTypes[1:], typeList(params))

	b, ok := methodBuiltin(ex.MethodName)
	if !ok {
		return nil, r.errAt(ex.Location(), diagnostic.UnknownMethod, "%s has no method %q", obj.CachedType(), ex.MethodName)
	}
	ret, ok := builtins.ResolveOverload(b, argTypes)
	if !ok {
		return nil, r.errAt(ex.Location(), diagnostic.IntrinsicUnmatchingParameterType, "no overload of %q matches these arguments", ex.MethodName)
	}
	ex.SetCachedType(ret)
	return ex, nil
}

func typeList(es []ast.Expression) []types.Type {
	out := make([]types.Type, len(es))
	for i, e := range es {
		out[i] = e.CachedType()
	}
	return out
}

// methodNameToIntrinsic maps the small set of value methods SL exposes
// (`v.Normalize()`, `arr.Size()`, ...) onto the same builtin table the
// equivalent free-function call resolves to, with the receiver standing in
// for the first parameter.
var methodNameToIntrinsic = map[string]string{
	"Size":      "arraySize",
	"Normalize": "normalize",
	"Length":    "length",
	"Dot":       "dot",
	"Cross":     "cross",
	"Distance":  "distance",
	"Reflect":   "reflect",
}

func methodBuiltin(methodName string) (*builtins.Builtin, bool) {
	name, ok := methodNameToIntrinsic[methodName]
	if !ok {
		return nil, false
	}
	b := builtins.Lookup(name)
	return b, b != nil
}
