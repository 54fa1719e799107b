package constprop

import (
	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/constant"
	"github.com/nzsl-go/nzsl/internal/transform"
)

// Every hook below walks its own children first (so its operands are
// already folded by the time it looks at them), then tries to fold
// itself. Either way the children have already been visited, so the hook
// always returns DontVisitChildren/Replace, never VisitChildren: asking
// the walker to visit children a second time would redo work harmlessly
// but pointlessly.

func (p *Propagator) VisitBinary(n *ast.BinaryExpr) transform.ExprResult {
	p.walker.WalkExpression(&n.Left)
	p.walker.WalkExpression(&n.Right)

	lhs, lok := asConstant(n.Left)
	rhs, rok := asConstant(n.Right)
	if !lok || !rok {
		return transform.DontVisitChildrenExpr()
	}

	if n.Op.IsComparison() {
		folded, ok, err := foldBinaryCompare(n.Op, lhs, rhs, n.Location())
		if err != nil {
			p.fail(err)
			return transform.DontVisitChildrenExpr()
		}
		if ok {
			return transform.ReplaceExpr(constExpr(n.Location(), folded))
		}
		return transform.DontVisitChildrenExpr()
	}

	folded, ok, err := foldBinaryArith(n.Op, lhs, rhs, n.Location())
	if err != nil {
		p.fail(err)
		return transform.DontVisitChildrenExpr()
	}
	if ok {
		return transform.ReplaceExpr(constExpr(n.Location(), folded))
	}
	return transform.DontVisitChildrenExpr()
}

func (p *Propagator) VisitUnary(n *ast.UnaryExpr) transform.ExprResult {
	p.walker.WalkExpression(&n.Expr)

	operand, ok := asConstant(n.Expr)
	if !ok {
		return transform.DontVisitChildrenExpr()
	}
	folded, ok, err := foldUnary(n.Op, operand, n.Location())
	if err != nil {
		p.fail(err)
		return transform.DontVisitChildrenExpr()
	}
	if !ok {
		return transform.DontVisitChildrenExpr()
	}
	return transform.ReplaceExpr(constExpr(n.Location(), folded))
}

func (p *Propagator) VisitCast(n *ast.CastExpr) transform.ExprResult {
	for i := range n.Exprs {
		p.walker.WalkExpression(&n.Exprs[i])
	}

	if !n.TargetType.IsResolved() {
		return transform.DontVisitChildrenExpr()
	}
	vals := make([]constant.Value, len(n.Exprs))
	for i, e := range n.Exprs {
		v, ok := asConstant(e)
		if !ok {
			return transform.DontVisitChildrenExpr()
		}
		vals[i] = v
	}
	folded, ok, err := foldCast(n.TargetType.GetResultingValue(), vals, n.Location())
	if err != nil {
		p.fail(err)
		return transform.DontVisitChildrenExpr()
	}
	if !ok {
		return transform.DontVisitChildrenExpr()
	}
	return transform.ReplaceExpr(constExpr(n.Location(), folded))
}

func (p *Propagator) VisitConditionalExpr(n *ast.ConditionalExpr) transform.ExprResult {
	p.walker.WalkExpression(&n.Cond)

	cond, ok := asConstant(n.Cond)
	if !ok {
		p.walker.WalkExpression(&n.TruePath)
		p.walker.WalkExpression(&n.FalsePath)
		return transform.DontVisitChildrenExpr()
	}
	replacement, ok := foldConditional(n, cond)
	if !ok {
		p.walker.WalkExpression(&n.TruePath)
		p.walker.WalkExpression(&n.FalsePath)
		return transform.DontVisitChildrenExpr()
	}
	p.walker.WalkExpression(&replacement)
	return transform.ReplaceExpr(replacement)
}

func (p *Propagator) VisitSwizzle(n *ast.SwizzleExpr) transform.ExprResult {
	p.walker.WalkExpression(&n.Expr)

	src, ok := asConstant(n.Expr)
	if !ok {
		return transform.DontVisitChildrenExpr()
	}
	folded, ok := foldSwizzle(n, src)
	if !ok {
		return transform.DontVisitChildrenExpr()
	}
	return transform.ReplaceExpr(constExpr(n.Location(), folded))
}

func (p *Propagator) VisitIntrinsic(n *ast.IntrinsicExpr) transform.ExprResult {
	for i := range n.Params {
		p.walker.WalkExpression(&n.Params[i])
	}

	vals := make([]constant.Value, len(n.Params))
	for i, e := range n.Params {
		v, ok := asConstant(e)
		if !ok {
			return transform.DontVisitChildrenExpr()
		}
		vals[i] = v
	}
	folded, ok, err := foldIntrinsic(n, vals, n.Location())
	if err != nil {
		p.fail(err)
		return transform.DontVisitChildrenExpr()
	}
	if !ok {
		return transform.DontVisitChildrenExpr()
	}
	return transform.ReplaceExpr(constExpr(n.Location(), folded))
}
