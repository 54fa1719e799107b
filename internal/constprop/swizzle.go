package constprop

import (
	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/constant"
)

// foldSwizzle folds a SwizzleExpr whose underlying vector is already
// constant, selecting Components[:ComponentCount] into a new scalar
// (single component) or vector (2..4 components) constant.
func foldSwizzle(n *ast.SwizzleExpr, src constant.Value) (constant.Value, bool) {
	if !src.IsVector() {
		return constant.Value{}, false
	}
	elems := src.Elements()
	count := int(n.ComponentCount)
	if count == 0 || count > len(n.Components) {
		return constant.Value{}, false
	}
	picked := make([]constant.Value, count)
	for i := 0; i < count; i++ {
		idx := int(n.Components[i])
		if idx >= len(elems) {
			return constant.Value{}, false
		}
		picked[i] = elems[idx]
	}
	if count == 1 {
		return picked[0], true
	}
	vv, err := constant.Vec(picked)
	if err != nil {
		return constant.Value{}, false
	}
	return vv, true
}
