package constprop

import (
	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/constant"
	"github.com/nzsl-go/nzsl/internal/diagnostic"
	"github.com/nzsl-go/nzsl/internal/types"
)

// No dedicated unary constant-folding source exists in the original
// compiler (only the binary arithmetic/comparison transformers are split
// out into their own files there); this folds Minus/Plus/BitwiseNot/
// LogicalNot by analogy to binary_arith.go's own per-kind dispatch style.
type unaryFn func(v constant.Value) constant.Value

type unaryKey struct {
	op  ast.UnaryOp
	tag argTag
}

var unaryTable = map[unaryKey]unaryFn{}

func registerUnary(op ast.UnaryOp, tag argTag, fn unaryFn) {
	unaryTable[unaryKey{op, tag}] = fn
}

func init() {
	for _, tag := range []argTag{tagI32, tagF32, tagF64, tagIntLiteral, tagFloatLiteral} {
		registerUnary(ast.UnaryMinus, tag, unaryMinus)
		registerUnary(ast.UnaryPlus, tag, unaryPlus)
	}
	for _, tag := range []argTag{tagI32, tagU32, tagIntLiteral} {
		registerUnary(ast.UnaryBitwiseNot, tag, unaryBitwiseNot)
	}
	registerUnary(ast.UnaryLogicalNot, tagBool, unaryLogicalNot)
}

func unaryMinus(v constant.Value) constant.Value {
	k, _ := elemKind(v)
	switch k {
	case types.I32:
		return constant.I32(-v.I32Value())
	case types.F32:
		return constant.F32(-v.F32Value())
	case types.F64:
		return constant.F64(-v.F64Value())
	case types.IntLiteral:
		return constant.IntLiteral(-v.IntLiteralValue())
	case types.FloatLiteral:
		return constant.FloatLiteral(-v.FloatLiteralValue())
	default:
		return constant.NoValue
	}
}

func unaryPlus(v constant.Value) constant.Value { return v }

func unaryBitwiseNot(v constant.Value) constant.Value {
	k, _ := elemKind(v)
	switch k {
	case types.I32:
		return constant.I32(^v.I32Value())
	case types.U32:
		return constant.U32(^v.U32Value())
	case types.IntLiteral:
		return constant.IntLiteral(^v.IntLiteralValue())
	default:
		return constant.NoValue
	}
}

func unaryLogicalNot(v constant.Value) constant.Value {
	return constant.Bool(!v.BoolValue())
}

// foldUnary folds a UnaryExpr whose operand is already constant. Vector
// operands fold component-wise; ok=false (no error) means this op/kind
// combination isn't foldable and the node should be left as-is. Unary
// folding never itself raises a diagnostic (no div-by-zero or shift-range
// analogue exists for these four ops), so the error return is always nil.
func foldUnary(op ast.UnaryOp, operand constant.Value, _ ast.Loc) (constant.Value, bool, *diagnostic.Error) {
	k, ok := elemKind(operand)
	if !ok {
		return constant.Value{}, false, nil
	}
	tag, ok := tagOf(k)
	if !ok {
		return constant.Value{}, false, nil
	}
	fn, ok := unaryTable[unaryKey{op, tag}]
	if !ok {
		return constant.Value{}, false, nil
	}

	if !operand.IsVector() {
		return fn(operand), true, nil
	}
	elems := operand.Elements()
	out := make([]constant.Value, len(elems))
	for i, e := range elems {
		out[i] = fn(e)
	}
	vv, err := constant.Vec(out)
	if err != nil {
		return constant.Value{}, false, nil
	}
	return vv, true, nil
}
