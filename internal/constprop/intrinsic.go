package constprop

import (
	"math"

	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/builtins"
	"github.com/nzsl-go/nzsl/internal/constant"
	"github.com/nzsl-go/nzsl/internal/diagnostic"
	"github.com/nzsl-go/nzsl/internal/types"
)

// unaryMathTable covers every intrinsic builtins.go registers with
// matchFloatUnary, all flagged ConstEval there. Driven generically off a
// single float64 function per kind rather than one hand-written case per
// name, since every one of these has the same scalar-in/scalar-out shape
// and only the underlying math differs.
var unaryMathTable = map[ast.IntrinsicKind]func(float64) float64{
	ast.IntrinsicSin: math.Sin, ast.IntrinsicSinh: math.Sinh,
	ast.IntrinsicCos: math.Cos, ast.IntrinsicCosh: math.Cosh,
	ast.IntrinsicTan: math.Tan, ast.IntrinsicTanh: math.Tanh,
	ast.IntrinsicArcSin: math.Asin, ast.IntrinsicArcSinh: math.Asinh,
	ast.IntrinsicArcCos: math.Acos, ast.IntrinsicArcCosh: math.Acosh,
	ast.IntrinsicArcTan: math.Atan, ast.IntrinsicArcTanh: math.Atanh,
	ast.IntrinsicSqrt: math.Sqrt, ast.IntrinsicInverseSqrt: func(x float64) float64 { return 1 / math.Sqrt(x) },
	ast.IntrinsicRound: math.Round, ast.IntrinsicRoundEven: math.RoundToEven,
	ast.IntrinsicTrunc: math.Trunc, ast.IntrinsicFloor: math.Floor,
	ast.IntrinsicCeil: math.Ceil, ast.IntrinsicFract: func(x float64) float64 { return x - math.Floor(x) },
	ast.IntrinsicRadToDeg: func(x float64) float64 { return x * 180 / math.Pi },
	ast.IntrinsicDegToRad: func(x float64) float64 { return x * math.Pi / 180 },
	ast.IntrinsicLog:      math.Log, ast.IntrinsicLog2: math.Log2,
	ast.IntrinsicExp: math.Exp, ast.IntrinsicExp2: math.Exp2,
}

var binaryMathTable = map[ast.IntrinsicKind]func(a, b float64) float64{
	ast.IntrinsicArcTan2: math.Atan2,
	ast.IntrinsicPow:     math.Pow,
}

// foldIntrinsic folds an IntrinsicExpr whose params are all already
// constant, using builtins.ByKind's ConstEval flag to decide whether this
// kind is meant to be foldable at all; normalize/reflect/inverse are
// never ConstEval and fall straight through to ok=false here.
func foldIntrinsic(n *ast.IntrinsicExpr, args []constant.Value, loc ast.Loc) (constant.Value, bool, *diagnostic.Error) {
	b := builtins.ByKind(n.Intrinsic)
	if b == nil || !anyConstEval(b) {
		return constant.Value{}, false, nil
	}

	if fn, ok := unaryMathTable[n.Intrinsic]; ok && len(args) == 1 {
		return foldFloatUnary(args[0], fn), true, nil
	}
	if fn, ok := binaryMathTable[n.Intrinsic]; ok && len(args) == 2 {
		return foldFloatBinary(args[0], args[1], fn), true, nil
	}

	switch n.Intrinsic {
	case ast.IntrinsicAbs:
		return foldNumericUnary(args[0], math.Abs, func(x int64) int64 {
			if x < 0 {
				return -x
			}
			return x
		}), true, nil
	case ast.IntrinsicSign:
		return foldNumericUnary(args[0], sign, func(x int64) int64 {
			switch {
			case x > 0:
				return 1
			case x < 0:
				return -1
			default:
				return 0
			}
		}), true, nil
	case ast.IntrinsicMax:
		return foldNumericBinary(args[0], args[1], math.Max, func(a, b int64) int64 {
			if a > b {
				return a
			}
			return b
		}), true, nil
	case ast.IntrinsicMin:
		return foldNumericBinary(args[0], args[1], math.Min, func(a, b int64) int64 {
			if a < b {
				return a
			}
			return b
		}), true, nil
	case ast.IntrinsicClamp:
		if len(args) != 3 {
			return constant.Value{}, false, nil
		}
		lo := foldNumericBinary(args[0], args[1], math.Max, func(a, b int64) int64 {
			if a > b {
				return a
			}
			return b
		})
		return foldNumericBinary(lo, args[2], math.Min, func(a, b int64) int64 {
			if a < b {
				return a
			}
			return b
		}), true, nil
	case ast.IntrinsicLerp:
		if len(args) != 3 {
			return constant.Value{}, false, nil
		}
		return foldLerp(args[0], args[1], args[2]), true, nil
	case ast.IntrinsicDotProduct:
		return foldDot(args[0], args[1])
	case ast.IntrinsicCrossProduct:
		return foldCross(args[0], args[1])
	case ast.IntrinsicLength:
		return foldLength(args[0])
	case ast.IntrinsicDistance:
		return foldDistance(args[0], args[1])
	case ast.IntrinsicArraySize:
		return foldArraySize(args[0])
	case ast.IntrinsicSelect:
		return foldSelect(args[0], args[1], args[2])
	default:
		// transpose and any future ConstEval intrinsic this file hasn't
		// grown a case for yet: left unfolded rather than guessed at.
		return constant.Value{}, false, nil
	}
}

func anyConstEval(b *builtins.Builtin) bool {
	for _, ov := range b.Overloads {
		if ov.ConstEval {
			return true
		}
	}
	return false
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

func foldFloatUnary(v constant.Value, fn func(float64) float64) constant.Value {
	return mapElementwise(v, func(e constant.Value) constant.Value {
		return rebuildFloat(e, fn(rawFloat(e)))
	})
}

func foldFloatBinary(a, b constant.Value, fn func(x, y float64) float64) constant.Value {
	ra, rb, ok := widenOperands(a, b)
	if !ok {
		return constant.NoValue
	}
	return mapElementwisePair(ra, rb, func(x, y constant.Value) constant.Value {
		return rebuildFloat(x, fn(rawFloat(x), rawFloat(y)))
	})
}

func foldNumericUnary(v constant.Value, ffn func(float64) float64, ifn func(int64) int64) constant.Value {
	return mapElementwise(v, func(e constant.Value) constant.Value {
		k, _ := elemKind(e)
		if k.IsFloat() {
			return rebuildFloat(e, ffn(rawFloat(e)))
		}
		return rebuildInt(e, ifn(rawInt(e)))
	})
}

func foldNumericBinary(a, b constant.Value, ffn func(x, y float64) float64, ifn func(x, y int64) int64) constant.Value {
	ra, rb, ok := widenOperands(a, b)
	if !ok {
		return constant.NoValue
	}
	return mapElementwisePair(ra, rb, func(x, y constant.Value) constant.Value {
		k, _ := elemKind(x)
		if k.IsFloat() {
			return rebuildFloat(x, ffn(rawFloat(x), rawFloat(y)))
		}
		return rebuildInt(x, ifn(rawInt(x), rawInt(y)))
	})
}

func foldLerp(a, b, t constant.Value) constant.Value {
	ra, rb, ok := widenOperands(a, b)
	if !ok {
		return constant.NoValue
	}
	tf := rawFloat(t)
	return mapElementwisePair(ra, rb, func(x, y constant.Value) constant.Value {
		return rebuildFloat(x, rawFloat(x)*(1-tf)+rawFloat(y)*tf)
	})
}

func rebuildFloat(like constant.Value, f float64) constant.Value {
	k, _ := elemKind(like)
	switch k {
	case types.F64:
		return constant.F64(f)
	case types.FloatLiteral:
		return constant.FloatLiteral(f)
	default:
		return constant.F32(float32(f))
	}
}

func rebuildInt(like constant.Value, i int64) constant.Value {
	k, _ := elemKind(like)
	switch k {
	case types.U32:
		return constant.U32(uint32(i))
	case types.IntLiteral:
		return constant.IntLiteral(i)
	default:
		return constant.I32(int32(i))
	}
}

func mapElementwise(v constant.Value, fn func(constant.Value) constant.Value) constant.Value {
	if !v.IsVector() {
		return fn(v)
	}
	elems := v.Elements()
	out := make([]constant.Value, len(elems))
	for i, e := range elems {
		out[i] = fn(e)
	}
	vv, err := constant.Vec(out)
	if err != nil {
		return constant.NoValue
	}
	return vv
}

func mapElementwisePair(a, b constant.Value, fn func(x, y constant.Value) constant.Value) constant.Value {
	if !a.IsVector() && !b.IsVector() {
		return fn(a, b)
	}
	if a.IsVector() && b.IsVector() {
		ae, be := a.Elements(), b.Elements()
		if len(ae) != len(be) {
			return constant.NoValue
		}
		out := make([]constant.Value, len(ae))
		for i := range ae {
			out[i] = fn(ae[i], be[i])
		}
		vv, err := constant.Vec(out)
		if err != nil {
			return constant.NoValue
		}
		return vv
	}
	vecVal, scalarVal, vecIsA := a, b, true
	if !a.IsVector() {
		vecVal, scalarVal, vecIsA = b, a, false
	}
	elems := vecVal.Elements()
	out := make([]constant.Value, len(elems))
	for i, e := range elems {
		if vecIsA {
			out[i] = fn(e, scalarVal)
		} else {
			out[i] = fn(scalarVal, e)
		}
	}
	vv, err := constant.Vec(out)
	if err != nil {
		return constant.NoValue
	}
	return vv
}

func foldDot(a, b constant.Value) (constant.Value, bool, *diagnostic.Error) {
	if !a.IsVector() || !b.IsVector() {
		return constant.Value{}, false, nil
	}
	ae, be := a.Elements(), b.Elements()
	if len(ae) != len(be) {
		return constant.Value{}, false, nil
	}
	sum := 0.0
	for i := range ae {
		sum += rawFloat(ae[i]) * rawFloat(be[i])
	}
	return rebuildFloat(ae[0], sum), true, nil
}

func foldCross(a, b constant.Value) (constant.Value, bool, *diagnostic.Error) {
	if !a.IsVector() || !b.IsVector() {
		return constant.Value{}, false, nil
	}
	ae, be := a.Elements(), b.Elements()
	if len(ae) != 3 || len(be) != 3 {
		return constant.Value{}, false, nil
	}
	ax, ay, az := rawFloat(ae[0]), rawFloat(ae[1]), rawFloat(ae[2])
	bx, by, bz := rawFloat(be[0]), rawFloat(be[1]), rawFloat(be[2])
	out := []constant.Value{
		rebuildFloat(ae[0], ay*bz-az*by),
		rebuildFloat(ae[0], az*bx-ax*bz),
		rebuildFloat(ae[0], ax*by-ay*bx),
	}
	vv, err := constant.Vec(out)
	if err != nil {
		return constant.Value{}, false, nil
	}
	return vv, true, nil
}

func foldLength(a constant.Value) (constant.Value, bool, *diagnostic.Error) {
	if !a.IsVector() {
		return constant.Value{}, false, nil
	}
	elems := a.Elements()
	sum := 0.0
	for _, e := range elems {
		f := rawFloat(e)
		sum += f * f
	}
	return rebuildFloat(elems[0], math.Sqrt(sum)), true, nil
}

func foldDistance(a, b constant.Value) (constant.Value, bool, *diagnostic.Error) {
	if !a.IsVector() || !b.IsVector() {
		return constant.Value{}, false, nil
	}
	ae, be := a.Elements(), b.Elements()
	if len(ae) != len(be) {
		return constant.Value{}, false, nil
	}
	sum := 0.0
	for i := range ae {
		d := rawFloat(ae[i]) - rawFloat(be[i])
		sum += d * d
	}
	return rebuildFloat(ae[0], math.Sqrt(sum)), true, nil
}

func foldArraySize(a constant.Value) (constant.Value, bool, *diagnostic.Error) {
	if !a.IsArray() {
		return constant.Value{}, false, nil
	}
	return constant.U32(uint32(len(a.Elements()))), true, nil
}

func foldSelect(a, b, cond constant.Value) (constant.Value, bool, *diagnostic.Error) {
	k, ok := elemKind(cond)
	if !ok || k != types.Bool {
		return constant.Value{}, false, nil
	}
	if !cond.IsVector() {
		if cond.BoolValue() {
			return a, true, nil
		}
		return b, true, nil
	}
	if !a.IsVector() || !b.IsVector() {
		return constant.Value{}, false, nil
	}
	ae, be, ce := a.Elements(), b.Elements(), cond.Elements()
	if len(ae) != len(be) || len(ae) != len(ce) {
		return constant.Value{}, false, nil
	}
	out := make([]constant.Value, len(ae))
	for i := range ae {
		if ce[i].BoolValue() {
			out[i] = ae[i]
		} else {
			out[i] = be[i]
		}
	}
	vv, err := constant.Vec(out)
	if err != nil {
		return constant.Value{}, false, nil
	}
	return vv, true, nil
}
