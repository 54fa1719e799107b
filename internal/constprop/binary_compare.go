package constprop

import (
	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/constant"
	"github.com/nzsl-go/nzsl/internal/diagnostic"
	"github.com/nzsl-go/nzsl/internal/types"
)

// Comparisons get their own table, kept separate from binary_arith.go's
// arithTable rather than merged into it, following
// ConstantPropagationVisitor_BinaryComparison.cpp's own split: a comparison
// always produces a bool (or a bool vector, per-component), never a value
// of the operand kind, so the two tables have genuinely different result
// shapes and don't share dispatch logic. This also settles Open Question 1
// (CompLt on a vector-of-bool goes through this table, not arithTable's).
type compareFn func(a, b constant.Value) bool

var compareTable = map[ast.BinaryOp]compareFn{}

func registerCompare(op ast.BinaryOp, fn compareFn) { compareTable[op] = fn }

func init() {
	registerCompare(ast.BinaryCompEq, constant.Equal)
	registerCompare(ast.BinaryCompNe, func(a, b constant.Value) bool { return !constant.Equal(a, b) })
	registerCompare(ast.BinaryCompLt, func(a, b constant.Value) bool { return compareOrdered(a, b) < 0 })
	registerCompare(ast.BinaryCompLe, func(a, b constant.Value) bool { return compareOrdered(a, b) <= 0 })
	registerCompare(ast.BinaryCompGt, func(a, b constant.Value) bool { return compareOrdered(a, b) > 0 })
	registerCompare(ast.BinaryCompGe, func(a, b constant.Value) bool { return compareOrdered(a, b) >= 0 })
}

// compareOrdered returns -1/0/1 for two already-widened scalar operands of
// the same numeric kind. bool operands have no ordering in SL (only ==/!=
// are legal on them, which the resolver enforces upstream), so this is
// only ever called with numeric kinds.
func compareOrdered(a, b constant.Value) int {
	k, _ := elemKind(a)
	if k.IsFloat() {
		af, bf := rawFloat(a), rawFloat(b)
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	if k == types.U32 {
		au, bu := a.U32Value(), b.U32Value()
		switch {
		case au < bu:
			return -1
		case au > bu:
			return 1
		default:
			return 0
		}
	}
	ai, bi := rawInt(a), rawInt(b)
	switch {
	case ai < bi:
		return -1
	case ai > bi:
		return 1
	default:
		return 0
	}
}

// foldBinaryCompare folds a comparison BinaryExpr. Vector operands compare
// component-wise into a bool vector, matching Vector::ComponentEq/Lt/...
// in the original; scalar operands compare directly into a bool.
func foldBinaryCompare(op ast.BinaryOp, lhs, rhs constant.Value, _ ast.Loc) (constant.Value, bool, *diagnostic.Error) {
	fn, ok := compareTable[op]
	if !ok {
		return constant.Value{}, false, nil
	}
	ra, rb, ok := widenOperands(lhs, rhs)
	if !ok {
		return constant.Value{}, false, nil
	}

	lvec, rvec := ra.IsVector(), rb.IsVector()
	if !lvec && !rvec {
		return constant.Bool(fn(ra, rb)), true, nil
	}
	if lvec != rvec {
		// Comparisons never broadcast a scalar against a vector in SL.
		return constant.Value{}, false, nil
	}
	ae, be := ra.Elements(), rb.Elements()
	if len(ae) != len(be) {
		return constant.Value{}, false, nil
	}
	out := make([]constant.Value, len(ae))
	for i := range ae {
		out[i] = constant.Bool(fn(ae[i], be[i]))
	}
	vv, err := constant.Vec(out)
	if err != nil {
		return constant.Value{}, false, nil
	}
	return vv, true, nil
}
