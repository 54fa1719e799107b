package littype

import (
	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/constant"
	"github.com/nzsl-go/nzsl/internal/transform"
	"github.com/nzsl-go/nzsl/internal/types"
)

// VisitConstantValue is the fallback: any untyped literal that reaches
// this hook without having already been concretized by a parent's
// contextual hint (an orphan expression statement, a bare literal nested
// somewhere no other hook claims) defaults to i32/f32.
func (t *Typer) VisitConstantValue(n *ast.ConstantValueExpr) transform.ExprResult {
	k, ok := elemKind(n.Value)
	if ok && k.IsUntyped() {
		target := defaultKind(k)
		if nv, ok := concretizeValue(n.Value, target); ok {
			n.Value = nv
			n.SetCachedType(constant.GetType(nv))
		}
	}
	return transform.DontVisitChildrenExpr()
}

func (t *Typer) VisitCallFunction(n *ast.CallFunctionExpr) transform.ExprResult {
	t.walker.WalkExpression(&n.TargetFunction)

	sig, ok := t.funcSignature(n.TargetFunction)
	for i := range n.Params {
		if ok && i < len(sig.ParameterTypes) {
			t.concretizeLiteral(&n.Params[i], sig.ParameterTypes[i])
		}
		t.walker.WalkExpression(&n.Params[i])
	}
	return transform.DontVisitChildrenExpr()
}

func (t *Typer) VisitIntrinsic(n *ast.IntrinsicExpr) transform.ExprResult {
	// builtins.go's Matcher-based overloads don't carry a fixed per-
	// parameter type list the way a user function's signature does, so an
	// untyped literal intrinsic argument just falls through to
	// VisitConstantValue's default below.
	for i := range n.Params {
		t.walker.WalkExpression(&n.Params[i])
	}
	return transform.DontVisitChildrenExpr()
}

func (t *Typer) VisitAssign(n *ast.AssignExpr) transform.ExprResult {
	t.walker.WalkExpression(&n.Left)
	if lt := n.Left.CachedType(); lt != nil {
		t.concretizeLiteral(&n.Right, lt)
	}
	t.walker.WalkExpression(&n.Right)
	return transform.DontVisitChildrenExpr()
}

func (t *Typer) VisitDeclareVariable(n *ast.DeclareVariableStmt) transform.StmtResult {
	if n.Type.IsResolved() {
		t.concretizeLiteral(&n.InitialExpression, n.Type.GetResultingValue())
	}
	t.walker.WalkExpression(&n.InitialExpression)

	// A `let`/`var` with no declared type took its type from the
	// initializer at resolve time; if that initializer was itself an
	// untyped literal, the variable's own recorded type needs to follow
	// the same default concretization its initializer just got.
	if !n.Type.IsResolved() && n.InitialExpression != nil {
		if ct := n.InitialExpression.CachedType(); ct != nil {
			n.Type = ast.ResolvedValue(ct)
			t.ctx.SetVariableType(n.VariableRef, ct)
		}
	}
	return transform.DontVisitChildrenStmt()
}

func (t *Typer) VisitDeclareConst(n *ast.DeclareConstStmt) transform.StmtResult {
	if n.Type.IsResolved() {
		t.concretizeLiteral(&n.Expression, n.Type.GetResultingValue())
	}
	t.walker.WalkExpression(&n.Expression)

	if !n.Type.IsResolved() && n.Expression != nil {
		if ct := n.Expression.CachedType(); ct != nil {
			n.Type = ast.ResolvedValue(ct)
			t.ctx.SetConstantType(n.ConstantRef, ct)
		}
	}
	return transform.DontVisitChildrenStmt()
}

func (t *Typer) VisitDeclareFunction(n *ast.DeclareFunctionStmt) transform.StmtResult {
	var ret types.Type
	if n.ReturnType.IsResolved() {
		ret = n.ReturnType.GetResultingValue()
	}
	t.fnStack = append(t.fnStack, ret)

	t.ctx.PushScope()
	for i := range n.Statements {
		t.walker.WalkStatement(&n.Statements[i])
	}
	t.ctx.PopScope()

	t.fnStack = t.fnStack[:len(t.fnStack)-1]
	return transform.DontVisitChildrenStmt()
}

func (t *Typer) VisitReturn(n *ast.ReturnStmt) transform.StmtResult {
	if n.ReturnExpr != nil && len(t.fnStack) > 0 {
		if ret := t.fnStack[len(t.fnStack)-1]; ret != nil {
			t.concretizeLiteral(&n.ReturnExpr, ret)
		}
	}
	t.walker.WalkExpression(&n.ReturnExpr)
	return transform.DontVisitChildrenStmt()
}

func (t *Typer) VisitAccessIndex(n *ast.AccessIndexExpr) transform.ExprResult {
	t.walker.WalkExpression(&n.Expr)
	i32 := types.NewPrimitive(types.I32)
	for i := range n.Indices {
		t.concretizeLiteral(&n.Indices[i], i32)
		t.walker.WalkExpression(&n.Indices[i])
	}
	return transform.DontVisitChildrenExpr()
}

func (t *Typer) VisitBinary(n *ast.BinaryExpr) transform.ExprResult {
	// If constprop already folded both sides, there's nothing left for
	// this pass to do at this node; if only one side survived folding
	// (e.g. `someVar + 2`), the literal side concretizes to the other
	// side's already-resolved type before either is walked further.
	if lt := n.Left.CachedType(); lt != nil {
		if _, isLit := n.Right.(*ast.ConstantValueExpr); isLit {
			t.concretizeLiteral(&n.Right, lt)
		}
	}
	if rt := n.Right.CachedType(); rt != nil {
		if _, isLit := n.Left.(*ast.ConstantValueExpr); isLit {
			t.concretizeLiteral(&n.Left, rt)
		}
	}
	t.walker.WalkExpression(&n.Left)
	t.walker.WalkExpression(&n.Right)
	return transform.DontVisitChildrenExpr()
}

