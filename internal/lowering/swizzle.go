package lowering

import (
	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/transform"
	"github.com/nzsl-go/nzsl/internal/types"
)

// SwizzleLowerer normalizes every swizzle in a module to one a back-end can
// emit without special-casing the scalar case: a swizzle of a non-lvalue is
// hoisted into a temporary first, a scalar broadcast like `value.xxxx`
// becomes a vector construction cast, and a single-component scalar
// "swizzle" like `value.x` is just `value`.
type SwizzleLowerer struct {
	transform.BaseTransformer
	walker *transform.Walker
	ctx    *transform.Context
	names  freshNames
}

// LowerSwizzles normalizes every SwizzleExpr in mod.
func LowerSwizzles(mod *ast.Module, ctx *transform.Context) {
	s := &SwizzleLowerer{ctx: ctx}
	w := transform.NewWalker(s, ctx)
	s.walker = w
	w.WalkModule(mod)
}

func (s *SwizzleLowerer) VisitSwizzle(n *ast.SwizzleExpr) transform.ExprResult {
	s.walker.WalkExpression(&n.Expr)

	baseType := n.Expr.CachedType()
	if !isPureLValue(n.Expr) {
		decl, ref := declareLocal(s.ctx, s.names.next("_swz"), baseType, n.Expr)
		s.walker.InsertBefore(decl)
		n.Expr = ref
	}

	prim, scalar := types.ResolveAlias(baseType).(*types.Primitive)
	if !scalar {
		return transform.DontVisitChildrenExpr()
	}

	if n.ComponentCount == 1 {
		return transform.ReplaceExpr(n.Expr)
	}

	exprs := make([]ast.Expression, n.ComponentCount)
	for i := range exprs {
		exprs[i] = copyExpr(n.Expr)
	}
	vecType := &types.Vector{Count: n.ComponentCount, Elem: prim.Kind}
	cast := &ast.CastExpr{TargetType: ast.ResolvedValue[types.Type](vecType), Exprs: exprs}
	cast.SetCachedType(vecType)
	return transform.ReplaceExpr(cast)
}
