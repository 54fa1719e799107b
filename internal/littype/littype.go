// Package littype implements the literal-typing pass: after
// constant propagation, every IntLiteral/FloatLiteral constant still
// floating around a module gets concretized to a real primitive kind,
// the same way WGSL settles its abstract-int/abstract-float inference
// before codegen. Context drives the choice
// where one is available (a call argument takes its parameter's type, an
// assignment's rhs takes its lhs's type, and so on); anything left with
// no surrounding context defaults to i32 (integers) or f32 (floats).
package littype

import (
	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/constant"
	"github.com/nzsl-go/nzsl/internal/diagnostic"
	"github.com/nzsl-go/nzsl/internal/transform"
	"github.com/nzsl-go/nzsl/internal/types"
)

// Typer drives the pass. Like constprop.Propagator it self-recurses by
// holding a reference back to the Walker driving it, but for the opposite
// reason: typing context flows top-down (a call's signature is known
// before its arguments are looked at), so most hooks push a hint to a
// specific child *before* the generic walk would otherwise reach it, optionally
// bypassing that later walk for the children already handled explicitly.
type Typer struct {
	transform.BaseTransformer
	walker  *transform.Walker
	ctx     *transform.Context
	err     *diagnostic.Error
	fnStack []types.Type // enclosing function's return type, for VisitReturn
}

// AssignLiteralTypes concretizes every untyped literal constant in mod.
func AssignLiteralTypes(mod *ast.Module, ctx *transform.Context) *diagnostic.Error {
	t := &Typer{ctx: ctx}
	w := transform.NewWalker(t, ctx)
	t.walker = w
	w.WalkModule(mod)
	return t.err
}

func (t *Typer) fail(err *diagnostic.Error) {
	if t.err == nil {
		t.err = err
	}
}

func rangeFromLoc(l ast.Loc) diagnostic.Range {
	return diagnostic.Range{
		Start: diagnostic.Position{Line: l.StartLine, Column: l.StartCol},
		End:   diagnostic.Position{Line: l.EndLine, Column: l.EndCol},
	}
}

func errAt(l ast.Loc, kind diagnostic.Kind, format string, args ...any) *diagnostic.Error {
	return diagnostic.NewError(kind, rangeFromLoc(l), format, args...)
}

// defaultKind is what an untyped literal concretizes to absent any other
// context: i32 for IntLiteral, f32 for FloatLiteral.
func defaultKind(k types.PrimitiveKind) types.PrimitiveKind {
	if k == types.FloatLiteral {
		return types.F32
	}
	return types.I32
}

// concretizeLiteral rewrites *slot in place to target, if *slot is a bare
// ConstantValueExpr carrying an untyped literal scalar or vector.
// Anything else (already-concrete constant, non-constant expression) is
// left untouched: this only ever narrows an already-folded literal, never
// guesses at a non-literal operand's type.
func (t *Typer) concretizeLiteral(slot *ast.Expression, target types.Type) bool {
	cv, ok := (*slot).(*ast.ConstantValueExpr)
	if !ok {
		return false
	}
	tk, ok := types.ScalarKind(target)
	if !ok || !canHostLiteral(cv.Value, tk) {
		return false
	}
	nv, ok := concretizeValue(cv.Value, tk)
	if !ok {
		return false
	}
	cv.Value = nv
	cv.SetCachedType(constant.GetType(nv))
	return true
}

// canHostLiteral reports whether cv's element kind is untyped and whether
// target is numerically compatible with it (same int/float family). It
// returns false for any value whose element kind is not untyped, bool
// included.
func canHostLiteral(v constant.Value, target types.PrimitiveKind) bool {
	k, ok := elemKind(v)
	if !ok || !k.IsUntyped() {
		return false
	}
	if k.IsInteger() {
		return target.IsInteger()
	}
	return target.IsFloat()
}

func elemKind(v constant.Value) (types.PrimitiveKind, bool) {
	if v.IsVector() {
		elems := v.Elements()
		if len(elems) == 0 {
			return 0, false
		}
		return types.ScalarKind(constant.GetType(elems[0]))
	}
	return types.ScalarKind(constant.GetType(v))
}

func concretizeValue(v constant.Value, target types.PrimitiveKind) (constant.Value, bool) {
	if !v.IsVector() {
		return concretizeScalar(v, target)
	}
	elems := v.Elements()
	out := make([]constant.Value, len(elems))
	for i, e := range elems {
		cv, ok := concretizeScalar(e, target)
		if !ok {
			return constant.Value{}, false
		}
		out[i] = cv
	}
	vv, err := constant.Vec(out)
	if err != nil {
		return constant.Value{}, false
	}
	return vv, true
}

func concretizeScalar(v constant.Value, target types.PrimitiveKind) (constant.Value, bool) {
	k, ok := types.ScalarKind(constant.GetType(v))
	if !ok {
		return constant.Value{}, false
	}
	if k == target {
		return v, true
	}
	switch target {
	case types.I32:
		return constant.I32(int32(intPayload(v))), true
	case types.U32:
		return constant.U32(uint32(intPayload(v))), true
	case types.F32:
		return constant.F32(float32(floatPayload(v))), true
	case types.F64:
		return constant.F64(floatPayload(v)), true
	default:
		return constant.Value{}, false
	}
}

func intPayload(v constant.Value) int64 {
	k, _ := types.ScalarKind(constant.GetType(v))
	switch k {
	case types.IntLiteral:
		return v.IntLiteralValue()
	case types.I32:
		return int64(v.I32Value())
	case types.U32:
		return int64(v.U32Value())
	default:
		return 0
	}
}

func floatPayload(v constant.Value) float64 {
	k, _ := types.ScalarKind(constant.GetType(v))
	switch k {
	case types.FloatLiteral:
		return v.FloatLiteralValue()
	case types.F32:
		return float64(v.F32Value())
	case types.F64:
		return v.F64Value()
	case types.IntLiteral:
		return float64(v.IntLiteralValue())
	default:
		return 0
	}
}

// funcSignature looks up the FunctionData behind a resolved call target.
func (t *Typer) funcSignature(target ast.Expression) (transform.FunctionSignature, bool) {
	fe, ok := target.(*ast.FunctionExpr)
	if !ok {
		return transform.FunctionSignature{}, false
	}
	fd, ok := t.ctx.Function(fe.FuncRef)
	if !ok {
		return transform.FunctionSignature{}, false
	}
	return fd.Signature, true
}

