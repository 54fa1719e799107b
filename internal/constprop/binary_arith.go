package constprop

import (
	"math"

	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/constant"
	"github.com/nzsl-go/nzsl/internal/diagnostic"
	"github.com/nzsl-go/nzsl/internal/types"
)

// scalarArithFn folds two already-widened scalar operands of the same tag.
type scalarArithFn func(a, b constant.Value, loc ast.Loc) (constant.Value, *diagnostic.Error)

type arithKey struct {
	op  ast.BinaryOp
	tag argTag
}

// arithTable and arithAllowSingleOperand are built once at init time,
// mirroring builtins.Table's own init()-time construction: arithTable maps
// a (BinaryOp, operand tag) pair straight to the function that folds it,
// the Go counterpart of the original compiler's per-(op, type) template
// specialization table (EnableOptimisation in
// ConstantPropagationTransformer_BinaryArithmetics.cpp). A missing entry
// means that op/tag combination is never constant-foldable (e.g. BitwiseAnd
// on floats), not an error: the node is simply left unfolded.
var arithTable = map[arithKey]scalarArithFn{}

// arithAllowSingleOperand marks which ops may broadcast a scalar against a
// vector operand, following AllowSingleOperand in the same source file:
// only *, / and % allow it. + and - require matching vector shapes on
// both sides, same as bitwise/shift/logical ops.
var arithAllowSingleOperand = map[ast.BinaryOp]bool{
	ast.BinaryMultiply: true,
	ast.BinaryDivide:   true,
	ast.BinaryModulo:   true,
}

func registerArith(op ast.BinaryOp, tag argTag, fn scalarArithFn) {
	arithTable[arithKey{op, tag}] = fn
}

func init() {
	for _, tag := range []argTag{tagI32, tagU32, tagF32, tagF64, tagIntLiteral, tagFloatLiteral} {
		registerArith(ast.BinaryAdd, tag, arithAdd)
		registerArith(ast.BinarySubtract, tag, arithSub)
		registerArith(ast.BinaryMultiply, tag, arithMul)
		registerArith(ast.BinaryDivide, tag, arithDiv)
		registerArith(ast.BinaryModulo, tag, arithMod)
	}
	for _, tag := range []argTag{tagI32, tagU32, tagIntLiteral} {
		registerArith(ast.BinaryBitwiseAnd, tag, arithBitAnd)
		registerArith(ast.BinaryBitwiseOr, tag, arithBitOr)
		registerArith(ast.BinaryBitwiseXor, tag, arithBitXor)
		registerArith(ast.BinaryShiftLeft, tag, arithShl)
		registerArith(ast.BinaryShiftRight, tag, arithShr)
	}
	registerArith(ast.BinaryLogicalAnd, tagBool, arithLogicalAnd)
	registerArith(ast.BinaryLogicalOr, tagBool, arithLogicalOr)
}

// foldBinaryArith folds a BinaryExpr whose operands are already constant
// values, returning ok=false (no error) when this op/operand shape is not
// one constprop knows how to fold, so the caller leaves the node as-is.
func foldBinaryArith(op ast.BinaryOp, lhs, rhs constant.Value, loc ast.Loc) (constant.Value, bool, *diagnostic.Error) {
	ra, rb, ok := widenOperands(lhs, rhs)
	if !ok {
		return constant.Value{}, false, nil
	}

	lvec, rvec := ra.IsVector(), rb.IsVector()
	switch {
	case !lvec && !rvec:
		return foldArithScalarPair(op, ra, rb, loc)

	case lvec && rvec:
		ae, be := ra.Elements(), rb.Elements()
		if len(ae) != len(be) {
			return constant.Value{}, false, nil
		}
		out := make([]constant.Value, len(ae))
		for i := range ae {
			v, ok, err := foldArithScalarPair(op, ae[i], be[i], loc)
			if err != nil {
				return constant.Value{}, true, err
			}
			if !ok {
				return constant.Value{}, false, nil
			}
			out[i] = v
		}
		vv, verr := constant.Vec(out)
		if verr != nil {
			return constant.Value{}, false, nil
		}
		return vv, true, nil

	default:
		if !arithAllowSingleOperand[op] {
			return constant.Value{}, false, nil
		}
		vecVal, scalarVal, vecIsLeft := ra, rb, true
		if !lvec {
			vecVal, scalarVal, vecIsLeft = rb, ra, false
		}
		elems := vecVal.Elements()
		out := make([]constant.Value, len(elems))
		for i, e := range elems {
			var v constant.Value
			var ok bool
			var err *diagnostic.Error
			if vecIsLeft {
				v, ok, err = foldArithScalarPair(op, e, scalarVal, loc)
			} else {
				v, ok, err = foldArithScalarPair(op, scalarVal, e, loc)
			}
			if err != nil {
				return constant.Value{}, true, err
			}
			if !ok {
				return constant.Value{}, false, nil
			}
			out[i] = v
		}
		vv, verr := constant.Vec(out)
		if verr != nil {
			return constant.Value{}, false, nil
		}
		return vv, true, nil
	}
}

func foldArithScalarPair(op ast.BinaryOp, a, b constant.Value, loc ast.Loc) (constant.Value, bool, *diagnostic.Error) {
	k, ok := elemKind(a)
	if !ok {
		return constant.Value{}, false, nil
	}
	tag, ok := tagOf(k)
	if !ok {
		return constant.Value{}, false, nil
	}
	fn, ok := arithTable[arithKey{op, tag}]
	if !ok {
		return constant.Value{}, false, nil
	}
	v, err := fn(a, b, loc)
	if err != nil {
		return constant.Value{}, true, err
	}
	return v, true, nil
}

func arithAdd(a, b constant.Value, _ ast.Loc) (constant.Value, *diagnostic.Error) {
	return dispatchNumeric(a, b,
		func(x, y int32) int32 { return x + y },
		func(x, y uint32) uint32 { return x + y },
		func(x, y float32) float32 { return x + y },
		func(x, y float64) float64 { return x + y },
		func(x, y int64) int64 { return x + y },
		func(x, y float64) float64 { return x + y },
	), nil
}

func arithSub(a, b constant.Value, _ ast.Loc) (constant.Value, *diagnostic.Error) {
	return dispatchNumeric(a, b,
		func(x, y int32) int32 { return x - y },
		func(x, y uint32) uint32 { return x - y },
		func(x, y float32) float32 { return x - y },
		func(x, y float64) float64 { return x - y },
		func(x, y int64) int64 { return x - y },
		func(x, y float64) float64 { return x - y },
	), nil
}

func arithMul(a, b constant.Value, _ ast.Loc) (constant.Value, *diagnostic.Error) {
	return dispatchNumeric(a, b,
		func(x, y int32) int32 { return x * y },
		func(x, y uint32) uint32 { return x * y },
		func(x, y float32) float32 { return x * y },
		func(x, y float64) float64 { return x * y },
		func(x, y int64) int64 { return x * y },
		func(x, y float64) float64 { return x * y },
	), nil
}

func arithDiv(a, b constant.Value, loc ast.Loc) (constant.Value, *diagnostic.Error) {
	k, _ := elemKind(a)
	if k.IsInteger() && rawInt(b) == 0 {
		return constant.Value{}, errAt(loc, diagnostic.IntegralDivisionByZero,
			"division by zero: %s / %s", constant.Describe(a), constant.Describe(b))
	}
	return dispatchNumeric(a, b,
		func(x, y int32) int32 { return x / y },
		func(x, y uint32) uint32 { return x / y },
		func(x, y float32) float32 { return x / y },
		func(x, y float64) float64 { return x / y },
		func(x, y int64) int64 { return x / y },
		func(x, y float64) float64 { return x / y },
	), nil
}

func arithMod(a, b constant.Value, loc ast.Loc) (constant.Value, *diagnostic.Error) {
	k, _ := elemKind(a)
	if k.IsInteger() && rawInt(b) == 0 {
		return constant.Value{}, errAt(loc, diagnostic.IntegralModuloByZero,
			"modulo by zero: %s %% %s", constant.Describe(a), constant.Describe(b))
	}
	// Floating modulo truncates like C's fmod, not Euclidean remainder.
	return dispatchNumeric(a, b,
		func(x, y int32) int32 { return x % y },
		func(x, y uint32) uint32 { return x % y },
		func(x, y float32) float32 { return float32(math.Mod(float64(x), float64(y))) },
		func(x, y float64) float64 { return math.Mod(x, y) },
		func(x, y int64) int64 { return x % y },
		func(x, y float64) float64 { return math.Mod(x, y) },
	), nil
}

func arithBitAnd(a, b constant.Value, _ ast.Loc) (constant.Value, *diagnostic.Error) {
	return dispatchInteger(a, b,
		func(x, y int32) int32 { return x & y },
		func(x, y uint32) uint32 { return x & y },
		func(x, y int64) int64 { return x & y },
	), nil
}

func arithBitOr(a, b constant.Value, _ ast.Loc) (constant.Value, *diagnostic.Error) {
	return dispatchInteger(a, b,
		func(x, y int32) int32 { return x | y },
		func(x, y uint32) uint32 { return x | y },
		func(x, y int64) int64 { return x | y },
	), nil
}

func arithBitXor(a, b constant.Value, _ ast.Loc) (constant.Value, *diagnostic.Error) {
	return dispatchInteger(a, b,
		func(x, y int32) int32 { return x ^ y },
		func(x, y uint32) uint32 { return x ^ y },
		func(x, y int64) int64 { return x ^ y },
	), nil
}

// bitWidth of the concrete integer kinds a shift can validate against;
// IntLiteral has no fixed width in SL source (it concretizes to i32/u32
// later), so shift-range checks on a literal operand use i32's 32 bits,
// matching the original compiler's IntLiteral being backed by a 64-bit
// host integer but reported as the eventual 32-bit target width.
const shiftBitWidth = 32

func arithShl(a, b constant.Value, loc ast.Loc) (constant.Value, *diagnostic.Error) {
	shift := rawInt(b)
	if shift < 0 {
		return constant.Value{}, errAt(loc, diagnostic.BinaryNegativeShift,
			"shift amount %s is negative", constant.Describe(b))
	}
	if shift >= shiftBitWidth {
		return constant.Value{}, errAt(loc, diagnostic.BinaryTooLargeShift,
			"shift amount %s is too large for a %d-bit integer", constant.Describe(b), shiftBitWidth)
	}
	return dispatchInteger(a, b,
		func(x, y int32) int32 { return x << uint(y) },
		func(x, y uint32) uint32 { return x << uint(y) },
		func(x, y int64) int64 { return x << uint(y) },
	), nil
}

func arithShr(a, b constant.Value, loc ast.Loc) (constant.Value, *diagnostic.Error) {
	shift := rawInt(b)
	if shift < 0 {
		return constant.Value{}, errAt(loc, diagnostic.BinaryNegativeShift,
			"shift amount %s is negative", constant.Describe(b))
	}
	if shift >= shiftBitWidth {
		return constant.Value{}, errAt(loc, diagnostic.BinaryTooLargeShift,
			"shift amount %s is too large for a %d-bit integer", constant.Describe(b), shiftBitWidth)
	}
	return dispatchInteger(a, b,
		func(x, y int32) int32 { return x >> uint(y) },
		func(x, y uint32) uint32 { return x >> uint(y) },
		func(x, y int64) int64 { return x >> uint(y) },
	), nil
}

func arithLogicalAnd(a, b constant.Value, _ ast.Loc) (constant.Value, *diagnostic.Error) {
	return constant.Bool(a.BoolValue() && b.BoolValue()), nil
}

func arithLogicalOr(a, b constant.Value, _ ast.Loc) (constant.Value, *diagnostic.Error) {
	return constant.Bool(a.BoolValue() || b.BoolValue()), nil
}

// dispatchNumeric applies the op matching a and b's shared concrete kind
// (both operands have already been widened to the same kind by the time
// any of these run) and rebuilds a Value of that same kind.
func dispatchNumeric(a, b constant.Value,
	i32f func(x, y int32) int32,
	u32f func(x, y uint32) uint32,
	f32f func(x, y float32) float32,
	f64f func(x, y float64) float64,
	intLitF func(x, y int64) int64,
	floatLitF func(x, y float64) float64,
) constant.Value {
	k, _ := elemKind(a)
	switch k {
	case types.I32:
		return constant.I32(i32f(a.I32Value(), b.I32Value()))
	case types.U32:
		return constant.U32(u32f(a.U32Value(), b.U32Value()))
	case types.F32:
		return constant.F32(f32f(a.F32Value(), b.F32Value()))
	case types.F64:
		return constant.F64(f64f(a.F64Value(), b.F64Value()))
	case types.IntLiteral:
		return constant.IntLiteral(intLitF(a.IntLiteralValue(), b.IntLiteralValue()))
	case types.FloatLiteral:
		return constant.FloatLiteral(floatLitF(a.FloatLiteralValue(), b.FloatLiteralValue()))
	default:
		return constant.NoValue
	}
}

func dispatchInteger(a, b constant.Value,
	i32f func(x, y int32) int32,
	u32f func(x, y uint32) uint32,
	intLitF func(x, y int64) int64,
) constant.Value {
	k, _ := elemKind(a)
	switch k {
	case types.I32:
		return constant.I32(i32f(a.I32Value(), b.I32Value()))
	case types.U32:
		return constant.U32(u32f(a.U32Value(), b.U32Value()))
	case types.IntLiteral:
		return constant.IntLiteral(intLitF(a.IntLiteralValue(), b.IntLiteralValue()))
	default:
		return constant.NoValue
	}
}
