package resolve

import (
	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/constant"
	"github.com/nzsl-go/nzsl/internal/diagnostic"
	"github.com/nzsl-go/nzsl/internal/types"
)

// These keyword tables back every attribute argument spelled as a bare
// identifier rather than an expression (`[entry(frag)]`, `[layout(std140)]`
// and so on). The full constant-propagation pass runs after the
// resolver, so attribute values are folded here with a narrower, explicitly
// scoped evaluator that only accepts an already-literal expression or an
// already-folded const reference, rather than duplicating constprop.

var shaderStageByName = map[string]ast.ShaderStage{
	"vert": ast.StageVertex,
	"frag": ast.StageFragment,
	"comp": ast.StageCompute,
}

var depthWriteByName = map[string]ast.DepthWriteMode{
	"greater":   ast.DepthWriteGreater,
	"less":      ast.DepthWriteLess,
	"replace":   ast.DepthWriteReplace,
	"unchanged": ast.DepthWriteUnchanged,
}

var loopUnrollByName = map[string]ast.LoopUnroll{
	"hint":   ast.UnrollHint,
	"always": ast.UnrollAlways,
	"never":  ast.UnrollNever,
}

var memoryLayoutByName = map[string]ast.MemoryLayout{
	"packed": ast.LayoutPacked,
	"std140": ast.LayoutStd140,
	"std430": ast.LayoutStd430,
}

var builtinEntryByName = map[string]ast.BuiltinEntry{
	"vertex_position":          ast.BuiltinVertexPosition,
	"frag_coord":               ast.BuiltinFragCoord,
	"frag_depth":               ast.BuiltinFragDepth,
	"base_instance":            ast.BuiltinBaseInstance,
	"base_vertex":              ast.BuiltinBaseVertex,
	"draw_index":               ast.BuiltinDrawIndex,
	"instance_index":           ast.BuiltinInstanceIndex,
	"vertex_index":             ast.BuiltinVertexIndex,
	"workgroup_count":          ast.BuiltinWorkgroupCount,
	"workgroup_indices":        ast.BuiltinWorkgroupIndices,
	"local_invocation_indices": ast.BuiltinLocalInvocationIndices,
	"local_invocation_index":   ast.BuiltinLocalInvocationIndex,
	"global_invocation_indices": ast.BuiltinGlobalInvocationIndices,
}

var accessModeByName = map[string]types.AccessMode{
	"readonly":  types.AccessReadOnly,
	"readwrite": types.AccessReadWrite,
	"writeonly": types.AccessWriteOnly,
}

// attrIdentName extracts the bare name out of an attribute argument written
// as an identifier, without running it through symbol resolution: these
// keywords (`frag`, `std140`, `greater`, ...) are not declared symbols.
func attrIdentName(e ast.Expression) (string, *diagnostic.Error) {
	id, ok := e.(*ast.IdentifierExpr)
	if !ok {
		return "", diagnostic.NewError(diagnostic.AttributeInvalidParameter, diagnostic.Range{}, "expected an identifier attribute argument")
	}
	return id.Identifier, nil
}

// resolveEnumAttr matches an identifier-valued attribute argument against a
// keyword table.
func resolveEnumAttr[T any](r *Resolver, e ast.Expression, table map[string]T, label string) (T, *diagnostic.Error) {
	var zero T
	name, err := attrIdentName(e)
	if err != nil {
		return zero, r.errAt(e.Location(), diagnostic.AttributeInvalidParameter, "%s expects a keyword argument", label)
	}
	v, ok := table[name]
	if !ok {
		return zero, r.errAt(e.Location(), diagnostic.AttributeInvalidParameter, "unrecognized %s %q", label, name)
	}
	return v, nil
}

// constValueOf resolves e and requires the result to already carry a
// constant value: either a literal, or a reference to a const/option whose
// value has been eagerly folded by registerConst.
func (r *Resolver) constValueOf(e ast.Expression) (constant.Value, *diagnostic.Error) {
	resolved, err := r.resolveExpr(e)
	if err != nil {
		return constant.Value{}, err
	}
	switch ex := resolved.(type) {
	case *ast.ConstantValueExpr:
		return ex.Value, nil
	case *ast.ConstantArrayValueExpr:
		return ex.Value, nil
	case *ast.ConstantExpr:
		data, ok := r.ctx.Constant(ex.ConstantRef)
		if !ok || data.Value == nil {
			return constant.Value{}, r.errAt(e.Location(), diagnostic.ConstantExpressionRequired, "expression must be a constant known at compile time")
		}
		return *data.Value, nil
	default:
		return constant.Value{}, r.errAt(e.Location(), diagnostic.ConstantExpressionRequired, "expression must be a constant known at compile time")
	}
}

func (r *Resolver) evalConstUint32Expr(e ast.Expression) (uint32, *diagnostic.Error) {
	v, err := r.constValueOf(e)
	if err != nil {
		return 0, err
	}
	k, ok := types.ScalarKind(constant.GetType(v))
	if !ok || !k.IsInteger() {
		return 0, r.errAt(e.Location(), diagnostic.AttributeUnexpectedType, "expected an integer constant")
	}
	if k == types.U32 {
		return v.U32Value(), nil
	}
	if k == types.I32 {
		return uint32(v.I32Value()), nil
	}
	return uint32(v.IntLiteralValue()), nil
}

func (r *Resolver) evalConstBoolExpr(e ast.Expression) (bool, *diagnostic.Error) {
	v, err := r.constValueOf(e)
	if err != nil {
		return false, err
	}
	k, ok := types.ScalarKind(constant.GetType(v))
	if !ok || k != types.Bool {
		return false, r.errAt(e.Location(), diagnostic.AttributeUnexpectedType, "expected a bool constant")
	}
	return v.BoolValue(), nil
}

func (r *Resolver) evalConstAccessMode(e ast.Expression) (types.AccessMode, *diagnostic.Error) {
	name, err := attrIdentName(e)
	if err != nil {
		return types.AccessNone, r.errAt(e.Location(), diagnostic.AttributeInvalidParameter, "expected an access mode keyword")
	}
	mode, ok := accessModeByName[name]
	if !ok {
		return types.AccessNone, r.errAt(e.Location(), diagnostic.AttributeInvalidParameter, "unrecognized access mode %q", name)
	}
	return mode, nil
}

func (r *Resolver) evalConstFormatName(e ast.Expression) (string, *diagnostic.Error) {
	name, err := attrIdentName(e)
	if err != nil {
		return "", r.errAt(e.Location(), diagnostic.AttributeInvalidParameter, "expected an image format keyword")
	}
	return name, nil
}

func (r *Resolver) evalConstUvec3(e ast.Expression) ([3]uint32, *diagnostic.Error) {
	v, err := r.constValueOf(e)
	if err != nil {
		return [3]uint32{}, err
	}
	if !v.IsVector() || len(v.Elements()) != 3 {
		return [3]uint32{}, r.errAt(e.Location(), diagnostic.AttributeUnexpectedType, "expected a 3-component integer constant")
	}
	var out [3]uint32
	for i, el := range v.Elements() {
		k, ok := types.ScalarKind(constant.GetType(el))
		if !ok || !k.IsInteger() {
			return [3]uint32{}, r.errAt(e.Location(), diagnostic.AttributeUnexpectedType, "expected a 3-component integer constant")
		}
		switch k {
		case types.U32:
			out[i] = el.U32Value()
		case types.I32:
			out[i] = uint32(el.I32Value())
		default:
			out[i] = uint32(el.IntLiteralValue())
		}
	}
	return out, nil
}
