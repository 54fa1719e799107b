package constprop

import (
	"github.com/nzsl-go/nzsl/internal/constant"
	"github.com/nzsl-go/nzsl/internal/types"
)

// argTag is the dispatch tag used to key the binary op tables: the
// concrete scalar kind shared by both operands once literal widening has
// run. Bool, i32, u32, f32, f64 and the two untyped literal kinds are the
// only tags a well-typed operand can carry.
type argTag uint8

const (
	tagBool argTag = iota
	tagI32
	tagU32
	tagF32
	tagF64
	tagIntLiteral
	tagFloatLiteral
)

func tagOf(k types.PrimitiveKind) (argTag, bool) {
	switch k {
	case types.Bool:
		return tagBool, true
	case types.I32:
		return tagI32, true
	case types.U32:
		return tagU32, true
	case types.F32:
		return tagF32, true
	case types.F64:
		return tagF64, true
	case types.IntLiteral:
		return tagIntLiteral, true
	case types.FloatLiteral:
		return tagFloatLiteral, true
	default:
		return 0, false
	}
}

// elemKind returns the scalar primitive kind an operand carries, looking
// through a vector to its element kind.
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

func sameNumericFamily(a, b types.PrimitiveKind) bool {
	if a.IsInteger() && b.IsInteger() {
		return true
	}
	if a.IsFloat() && b.IsFloat() {
		return true
	}
	return false
}

// concretizeScalar rewrites a bare IntLiteral/FloatLiteral scalar value to
// a target concrete kind, carrying the raw numeric payload across.
func concretizeScalar(v constant.Value, target types.PrimitiveKind) constant.Value {
	k, ok := types.ScalarKind(constant.GetType(v))
	if !ok || k == target {
		return v
	}
	switch target {
	case types.I32:
		return constant.I32(int32(rawInt(v)))
	case types.U32:
		return constant.U32(uint32(rawInt(v)))
	case types.F32:
		return constant.F32(float32(rawFloat(v)))
	case types.F64:
		return constant.F64(rawFloat(v))
	default:
		return v
	}
}

// concretize applies concretizeScalar elementwise to a vector, or directly
// to a scalar value.
func concretize(v constant.Value, target types.PrimitiveKind) constant.Value {
	if !v.IsVector() {
		return concretizeScalar(v, target)
	}
	elems := v.Elements()
	out := make([]constant.Value, len(elems))
	for i, e := range elems {
		out[i] = concretizeScalar(e, target)
	}
	vv, err := constant.Vec(out)
	if err != nil {
		return v
	}
	return vv
}

func rawInt(v constant.Value) int64 {
	k, _ := types.ScalarKind(constant.GetType(v))
	switch k {
	case types.I32:
		return int64(v.I32Value())
	case types.U32:
		return int64(v.U32Value())
	case types.IntLiteral:
		return v.IntLiteralValue()
	default:
		return 0
	}
}

func rawFloat(v constant.Value) float64 {
	k, _ := types.ScalarKind(constant.GetType(v))
	switch k {
	case types.F32:
		return float64(v.F32Value())
	case types.F64:
		return v.F64Value()
	case types.FloatLiteral:
		return v.FloatLiteralValue()
	case types.IntLiteral:
		return float64(v.IntLiteralValue())
	case types.I32:
		return float64(v.I32Value())
	case types.U32:
		return float64(v.U32Value())
	default:
		return 0
	}
}

// widenOperands brings two operands sharing a numeric family but differing
// kind (one untyped literal, the other concrete) to the same concrete
// kind, the way the resolver's literal-typing pass eventually would for
// the whole expression; constprop runs first, so it has to do this much
// itself to fold mixed literal/concrete arithmetic. Returns ok=false when
// the kinds are incompatible (already rejected earlier by the resolver, so
// this is just a defensive refusal to fold rather than an error).
func widenOperands(a, b constant.Value) (ra, rb constant.Value, ok bool) {
	ak, aok := elemKind(a)
	bk, bok := elemKind(b)
	if !aok || !bok {
		return a, b, false
	}
	if ak == bk {
		return a, b, true
	}
	switch {
	case ak.IsUntyped() && !bk.IsUntyped() && sameNumericFamily(ak, bk):
		return concretize(a, bk), b, true
	case bk.IsUntyped() && !ak.IsUntyped() && sameNumericFamily(bk, ak):
		return a, concretize(b, ak), true
	default:
		return a, b, false
	}
}
