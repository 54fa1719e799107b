package constprop

import (
	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/constant"
	"github.com/nzsl-go/nzsl/internal/diagnostic"
	"github.com/nzsl-go/nzsl/internal/types"
)

// foldCast folds a CastExpr whose operand(s) are all already constant,
// grounded on resolve/expr.go's resolveCast: a single-expr cast converts
// one scalar/vector value's element kind (the i32(f)/vec3[i32](v) form),
// an N-expr cast constructs a vector from N already-resolved component
// values (the vec3(x, y, z) form). Both only ever move numeric/bool
// scalar payloads around, never arrays.
func foldCast(target types.Type, exprs []constant.Value, loc ast.Loc) (constant.Value, bool, *diagnostic.Error) {
	if len(exprs) == 1 {
		return foldSingleCast(target, exprs[0], loc)
	}
	return foldVectorConstruct(target, exprs, loc)
}

func foldSingleCast(target types.Type, v constant.Value, _ ast.Loc) (constant.Value, bool, *diagnostic.Error) {
	tk, ok := types.ScalarKind(target)
	if !ok {
		return constant.Value{}, false, nil
	}
	if vt, isVec := types.ResolveAlias(target).(*types.Vector); isVec {
		if !v.IsVector() || len(v.Elements()) != int(vt.Count) {
			return constant.Value{}, false, nil
		}
		elems := v.Elements()
		out := make([]constant.Value, len(elems))
		for i, e := range elems {
			cv, ok := castScalar(e, tk)
			if !ok {
				return constant.Value{}, false, nil
			}
			out[i] = cv
		}
		vv, err := constant.Vec(out)
		if err != nil {
			return constant.Value{}, false, nil
		}
		return vv, true, nil
	}
	if v.IsVector() {
		return constant.Value{}, false, nil
	}
	cv, ok := castScalar(v, tk)
	if !ok {
		return constant.Value{}, false, nil
	}
	return cv, true, nil
}

func foldVectorConstruct(target types.Type, exprs []constant.Value, _ ast.Loc) (constant.Value, bool, *diagnostic.Error) {
	vt, ok := types.ResolveAlias(target).(*types.Vector)
	if !ok || int(vt.Count) != len(exprs) {
		return constant.Value{}, false, nil
	}
	out := make([]constant.Value, len(exprs))
	for i, e := range exprs {
		if e.IsVector() {
			return constant.Value{}, false, nil
		}
		cv, ok := castScalar(e, vt.Elem)
		if !ok {
			return constant.Value{}, false, nil
		}
		out[i] = cv
	}
	vv, err := constant.Vec(out)
	if err != nil {
		return constant.Value{}, false, nil
	}
	return vv, true, nil
}

// castScalar converts one scalar constant to a target primitive kind. bool
// never converts to or from a numeric kind here: the resolver already
// rejects that cast shape before constprop ever sees it.
func castScalar(v constant.Value, target types.PrimitiveKind) (constant.Value, bool) {
	srcKind, ok := elemKind(v)
	if !ok {
		return constant.Value{}, false
	}
	if srcKind == target {
		return v, true
	}
	if srcKind == types.Bool || target == types.Bool {
		return constant.Value{}, false
	}
	if target.IsFloat() {
		f := rawFloat(v)
		switch target {
		case types.F32:
			return constant.F32(float32(f)), true
		case types.F64:
			return constant.F64(f), true
		case types.FloatLiteral:
			return constant.FloatLiteral(f), true
		}
	}
	if target.IsInteger() {
		i := rawInt(v)
		if srcKind.IsFloat() {
			i = int64(rawFloat(v))
		}
		switch target {
		case types.I32:
			return constant.I32(int32(i)), true
		case types.U32:
			return constant.U32(uint32(i)), true
		case types.IntLiteral:
			return constant.IntLiteral(i), true
		}
	}
	return constant.Value{}, false
}
