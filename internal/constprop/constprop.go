// Package constprop implements the constant-propagation pass: a
// bottom-up fold over Binary/Unary/Cast/Conditional/Swizzle/Intrinsic nodes
// whose operands are already ConstantValue, replacing them with their
// folded result in place.
//
// Unlike internal/resolve, this pass runs entirely through
// transform.Walker/Transformer: folding a node only ever needs its already-
// folded children, never the other way around, so the pre-order
// dispatch-then-recurse shape transform.Walker drives is exactly what this
// pass wants, as long as each hook walks its own children before attempting
// to fold. Hooks do this by holding a reference back to the Walker that
// drives them, the same self-reference transform's own tests use.
package constprop

import (
	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/constant"
	"github.com/nzsl-go/nzsl/internal/diagnostic"
	"github.com/nzsl-go/nzsl/internal/transform"
)

// Propagator is the Transformer driving the fold. Every hook walks its own
// children first (via walker), then tries to replace the node with its
// folded constant value; folding failures that are genuine compile errors
// (division by zero, an out-of-range shift) are recorded in err and abort
// further folding at that node, without aborting the rest of the walk.
type Propagator struct {
	transform.BaseTransformer
	walker *transform.Walker
	err    *diagnostic.Error
}

// Propagate folds every foldable expression in mod in place.
func Propagate(mod *ast.Module, ctx *transform.Context) *diagnostic.Error {
	p := &Propagator{}
	w := transform.NewWalker(p, ctx)
	p.walker = w
	w.WalkModule(mod)
	return p.err
}

// asConstant extracts the constant.Value a ConstantValueExpr carries, or
// reports ok=false for anything else (ConstantArrayValueExpr included:
// arrays never participate in scalar/vector folding).
func asConstant(e ast.Expression) (constant.Value, bool) {
	cv, ok := e.(*ast.ConstantValueExpr)
	if !ok {
		return constant.Value{}, false
	}
	return cv.Value, true
}

func constExpr(loc ast.Loc, v constant.Value) *ast.ConstantValueExpr {
	n := &ast.ConstantValueExpr{Value: v}
	n.SetCachedType(constant.GetType(v))
	return n
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

// fail records the first folding error seen and signals the caller to stop
// trying to fold the current node. Later nodes are still visited normally;
// the caller of Propagate surfaces the recorded error once the walk ends.
func (p *Propagator) fail(err *diagnostic.Error) {
	if p.err == nil {
		p.err = err
	}
}
