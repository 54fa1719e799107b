package lowering

import (
	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/diagnostic"
	"github.com/nzsl-go/nzsl/internal/transform"
	"github.com/nzsl-go/nzsl/internal/types"
)

// ForToWhile rewrites `for v in from -> to [: step] { body }` into
//
//	{ let v = from; let _to = to; let _step = step; while (v < _to) { body; v += _step; } }
//
// with the implicit step of 1 made explicit at the counter's own type, so
// every loop a later pass needs to deal with is a plain WhileStmt.
type ForToWhile struct {
	transform.BaseTransformer
	walker *transform.Walker
	ctx    *transform.Context
	names  freshNames
	err    *diagnostic.Error
}

// LowerForLoops rewrites every ForStmt in mod into a WhileStmt.
func LowerForLoops(mod *ast.Module, ctx *transform.Context) *diagnostic.Error {
	f := &ForToWhile{ctx: ctx}
	w := transform.NewWalker(f, ctx)
	f.walker = w
	w.WalkModule(mod)
	return f.err
}

func (f *ForToWhile) fail(err *diagnostic.Error) {
	if f.err == nil {
		f.err = err
	}
}

func (f *ForToWhile) VisitFor(n *ast.ForStmt) transform.StmtResult {
	f.walker.WalkExpression(&n.FromExpr)
	f.walker.WalkExpression(&n.ToExpr)
	if n.StepExpr != nil {
		f.walker.WalkExpression(&n.StepExpr)
	}
	f.walker.WalkStatement(&n.Statement)

	counterType := n.FromExpr.CachedType()
	if counterType == nil {
		return transform.DontVisitChildrenStmt()
	}
	if k, ok := types.ScalarKind(counterType); !ok || !k.IsInteger() {
		f.fail(diagnostic.NewError(diagnostic.ForFromTypeExpectIntegerType, rangeOf(n.FromExpr.Location()),
			"for-loop counter %q must be an integer primitive", n.VarName))
		return transform.DontVisitChildrenStmt()
	}
	if n.ToExpr.CachedType() != nil && !counterType.Equals(n.ToExpr.CachedType()) {
		f.fail(diagnostic.NewError(diagnostic.ForToUnmatchingType, rangeOf(n.ToExpr.Location()),
			"for-loop bound must match the counter's type %s", counterType))
		return transform.DontVisitChildrenStmt()
	}
	if n.StepExpr != nil && n.StepExpr.CachedType() != nil && !counterType.Equals(n.StepExpr.CachedType()) {
		f.fail(diagnostic.NewError(diagnostic.ForStepUnmatchingType, rangeOf(n.StepExpr.Location()),
			"for-loop step must match the counter's type %s", counterType))
		return transform.DontVisitChildrenStmt()
	}

	counterDecl := &ast.DeclareVariableStmt{
		VariableRef:       n.VariableRef,
		Name:              n.VarName,
		InitialExpression: n.FromExpr,
		Type:              ast.ResolvedValue(counterType),
	}
	toDecl, toRef := declareLocal(f.ctx, f.names.next("_to"), counterType, n.ToExpr)

	step := n.StepExpr
	if step == nil {
		step = oneOf(counterType)
	}
	stepDecl, stepRef := declareLocal(f.ctx, f.names.next("_step"), counterType, step)

	cond := &ast.BinaryExpr{Op: ast.BinaryCompLt, Left: variableRef(n.VariableRef, counterType), Right: toRef}
	cond.SetCachedType(types.NewPrimitive(types.Bool))

	increment := &ast.AssignExpr{Op: ast.AssignCompoundAdd, Left: variableRef(n.VariableRef, counterType), Right: stepRef}
	body := multi(n.Statement, &ast.ExpressionStmt{Expression: increment})

	while := &ast.WhileStmt{Condition: cond, Body: body}

	return transform.ReplaceStmt(multi(counterDecl, toDecl, stepDecl, while))
}

// oneOf builds the constant 1 in t's primitive kind, for an implicit step.
func oneOf(t types.Type) ast.Expression {
	k, ok := types.ScalarKind(t)
	if !ok {
		k = types.I32
	}
	var v ast.Expression
	switch k {
	case types.U32:
		v = constOf(types.U32, uint32(1))
	default:
		v = constOf(types.I32, int32(1))
	}
	return v
}
