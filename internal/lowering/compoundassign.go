package lowering

import (
	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/transform"
)

// CompoundAssignExpander rewrites `a OP= b` into `a = a OP b`, so a back-end
// that only models simple assignment doesn't need one code path per
// compound operator.
type CompoundAssignExpander struct {
	transform.BaseTransformer
	walker *transform.Walker
}

// ExpandCompoundAssignments rewrites every compound AssignExpr in mod whose
// target is a pure l-value into a simple assignment of a binary expression.
// A compound assignment to any other target is left unchanged.
func ExpandCompoundAssignments(mod *ast.Module, ctx *transform.Context) {
	c := &CompoundAssignExpander{}
	w := transform.NewWalker(c, ctx)
	c.walker = w
	w.WalkModule(mod)
}

func (c *CompoundAssignExpander) VisitAssign(n *ast.AssignExpr) transform.ExprResult {
	c.walker.WalkExpression(&n.Left)
	c.walker.WalkExpression(&n.Right)

	op, ok := binaryOpFor(n.Op)
	if !ok {
		return transform.DontVisitChildrenExpr()
	}

	left := n.Left
	if !isPureLValue(left) {
		return transform.DontVisitChildrenExpr()
	}

	bin := &ast.BinaryExpr{Op: op, Left: left, Right: n.Right}
	bin.SetCachedType(n.CachedType())

	return transform.ReplaceExpr(&ast.AssignExpr{Op: ast.AssignSimple, Left: copyExpr(left), Right: bin})
}
