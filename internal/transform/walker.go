package transform

import "github.com/nzsl-go/nzsl/internal/ast"

// Walker performs the actual scoped tree traversal: it
// dispatches each node to the Transformer's matching hook, honors
// Replace/DontVisitChildren/VisitChildren, brackets PushScope/PopScope
// around every lexical scope, and offers the statement-list splicing used
// to hoist temporaries before the statement currently being visited.
type Walker struct {
	T       Transformer
	Ctx     *Context
	pending []ast.Statement
}

// NewWalker creates a walker that drives t over module trees, threading ctx
// for scope bracketing.
func NewWalker(t Transformer, ctx *Context) *Walker {
	return &Walker{T: t, Ctx: ctx}
}

// WalkModule walks a module's root statement list in place.
func (w *Walker) WalkModule(m *ast.Module) {
	w.WalkStatementList(&m.RootStatement.Statements)
}

// InsertBefore queues a statement to be spliced immediately before the
// statement currently being visited, in the list it belongs to. Used to
// hoist synthesized temporaries (e.g. a matrix-lowering helper variable).
func (w *Walker) InsertBefore(s ast.Statement) {
	w.pending = append(w.pending, s)
}

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

// WalkExpression visits the expression held in slot, rewriting slot in
// place on ActionReplace.
func (w *Walker) WalkExpression(slot *ast.Expression) {
	if slot == nil || *slot == nil {
		return
	}
	result := w.dispatchExpr(*slot)
	switch result.Action {
	case ActionReplace:
		*slot = result.Replacement
	case ActionDontVisitChildren:
		return
	case ActionVisitChildren:
		w.visitExprChildren(*slot)
	}
}

func (w *Walker) dispatchExpr(e ast.Expression) ExprResult {
	switch n := e.(type) {
	case *ast.AccessIdentifierExpr:
		return w.T.VisitAccessIdentifier(n)
	case *ast.AccessFieldExpr:
		return w.T.VisitAccessField(n)
	case *ast.AccessIndexExpr:
		return w.T.VisitAccessIndex(n)
	case *ast.AliasValueExpr:
		return w.T.VisitAliasValue(n)
	case *ast.AssignExpr:
		return w.T.VisitAssign(n)
	case *ast.BinaryExpr:
		return w.T.VisitBinary(n)
	case *ast.CallFunctionExpr:
		return w.T.VisitCallFunction(n)
	case *ast.CallMethodExpr:
		return w.T.VisitCallMethod(n)
	case *ast.CastExpr:
		return w.T.VisitCast(n)
	case *ast.ConditionalExpr:
		return w.T.VisitConditionalExpr(n)
	case *ast.ConstantExpr:
		return w.T.VisitConstant(n)
	case *ast.ConstantArrayValueExpr:
		return w.T.VisitConstantArrayValue(n)
	case *ast.ConstantValueExpr:
		return w.T.VisitConstantValue(n)
	case *ast.FunctionExpr:
		return w.T.VisitFunction(n)
	case *ast.IdentifierExpr:
		return w.T.VisitIdentifier(n)
	case *ast.IntrinsicExpr:
		return w.T.VisitIntrinsic(n)
	case *ast.IntrinsicFunctionExpr:
		return w.T.VisitIntrinsicFunction(n)
	case *ast.StructTypeExpr:
		return w.T.VisitStructType(n)
	case *ast.SwizzleExpr:
		return w.T.VisitSwizzle(n)
	case *ast.TypeExpr:
		return w.T.VisitTypeExpr(n)
	case *ast.VariableValueExpr:
		return w.T.VisitVariableValue(n)
	case *ast.UnaryExpr:
		return w.T.VisitUnary(n)
	default:
		return VisitChildrenExpr()
	}
}

// visitExprChildren recurses into an expression's operand slots. Operands
// wrapped in an ExpressionValue[T] attribute (e.g. CastExpr.TargetType) are
// not walked here: attribute expressions are resolved directly by the
// resolver pass, not through generic operand traversal.
func (w *Walker) visitExprChildren(e ast.Expression) {
	switch n := e.(type) {
	case *ast.AccessIdentifierExpr:
		w.WalkExpression(&n.Expr)
	case *ast.AccessFieldExpr:
		w.WalkExpression(&n.Expr)
	case *ast.AccessIndexExpr:
		w.WalkExpression(&n.Expr)
		for i := range n.Indices {
			w.WalkExpression(&n.Indices[i])
		}
	case *ast.AssignExpr:
		w.WalkExpression(&n.Left)
		w.WalkExpression(&n.Right)
	case *ast.BinaryExpr:
		w.WalkExpression(&n.Left)
		w.WalkExpression(&n.Right)
	case *ast.CallFunctionExpr:
		w.WalkExpression(&n.TargetFunction)
		for i := range n.Params {
			w.WalkExpression(&n.Params[i])
		}
	case *ast.CallMethodExpr:
		w.WalkExpression(&n.Object)
		for i := range n.Params {
			w.WalkExpression(&n.Params[i])
		}
	case *ast.CastExpr:
		for i := range n.Exprs {
			w.WalkExpression(&n.Exprs[i])
		}
	case *ast.ConditionalExpr:
		w.WalkExpression(&n.Cond)
		w.WalkExpression(&n.TruePath)
		w.WalkExpression(&n.FalsePath)
	case *ast.IntrinsicExpr:
		for i := range n.Params {
			w.WalkExpression(&n.Params[i])
		}
	case *ast.SwizzleExpr:
		w.WalkExpression(&n.Expr)
	case *ast.UnaryExpr:
		w.WalkExpression(&n.Expr)
	default:
		// AliasValue, Constant, ConstantArrayValue, ConstantValue, Function,
		// Identifier, IntrinsicFunction, StructType, TypeExpr and
		// VariableValue are leaves.
	}
}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

// WalkStatement visits the statement held in slot, rewriting slot in place
// on ActionReplace.
func (w *Walker) WalkStatement(slot *ast.Statement) {
	if slot == nil || *slot == nil {
		return
	}
	result := w.dispatchStmt(*slot)
	switch result.Action {
	case ActionReplace:
		*slot = result.Replacement
	case ActionDontVisitChildren:
		return
	case ActionVisitChildren:
		w.visitStmtChildren(*slot)
	}
}

// WalkStatementList visits every statement in *stmts in order, splicing in
// any statements a hook queued via InsertBefore immediately ahead of the
// statement that queued them.
func (w *Walker) WalkStatementList(stmts *[]ast.Statement) {
	out := make([]ast.Statement, 0, len(*stmts))
	savedPending := w.pending
	for _, s := range *stmts {
		w.pending = nil
		slot := s
		w.WalkStatement(&slot)
		out = append(out, w.pending...)
		if slot != nil {
			out = append(out, slot)
		}
	}
	w.pending = savedPending
	*stmts = out
}

func (w *Walker) dispatchStmt(s ast.Statement) StmtResult {
	switch n := s.(type) {
	case *ast.BranchStmt:
		return w.T.VisitBranch(n)
	case *ast.BreakStmt:
		return w.T.VisitBreak(n)
	case *ast.ConditionalStmt:
		return w.T.VisitConditionalStmt(n)
	case *ast.ContinueStmt:
		return w.T.VisitContinue(n)
	case *ast.DeclareAliasStmt:
		return w.T.VisitDeclareAlias(n)
	case *ast.DeclareConstStmt:
		return w.T.VisitDeclareConst(n)
	case *ast.DeclareExternalStmt:
		return w.T.VisitDeclareExternal(n)
	case *ast.DeclareFunctionStmt:
		return w.T.VisitDeclareFunction(n)
	case *ast.DeclareOptionStmt:
		return w.T.VisitDeclareOption(n)
	case *ast.DeclareStructStmt:
		return w.T.VisitDeclareStruct(n)
	case *ast.DeclareVariableStmt:
		return w.T.VisitDeclareVariable(n)
	case *ast.DiscardStmt:
		return w.T.VisitDiscard(n)
	case *ast.ExpressionStmt:
		return w.T.VisitExpressionStmt(n)
	case *ast.ForStmt:
		return w.T.VisitFor(n)
	case *ast.ForEachStmt:
		return w.T.VisitForEach(n)
	case *ast.ImportStmt:
		return w.T.VisitImport(n)
	case *ast.MultiStmt:
		return w.T.VisitMulti(n)
	case *ast.NoOpStmt:
		return w.T.VisitNoOp(n)
	case *ast.ReturnStmt:
		return w.T.VisitReturn(n)
	case *ast.ScopedStmt:
		return w.T.VisitScoped(n)
	case *ast.WhileStmt:
		return w.T.VisitWhile(n)
	default:
		return VisitChildrenStmt()
	}
}

func (w *Walker) enterScope() {
	w.Ctx.PushScope()
	w.T.EnterScope()
}

func (w *Walker) exitScope() {
	w.T.ExitScope()
	w.Ctx.PopScope()
}

func (w *Walker) visitStmtChildren(s ast.Statement) {
	switch n := s.(type) {
	case *ast.BranchStmt:
		for i := range n.CondStatements {
			w.WalkExpression(&n.CondStatements[i].Condition)
			w.WalkStatement(&n.CondStatements[i].Statement)
		}
		if n.ElseStatement != nil {
			w.WalkStatement(&n.ElseStatement)
		}
	case *ast.ConditionalStmt:
		w.WalkExpression(&n.Cond)
		w.WalkStatement(&n.Statement)
	case *ast.DeclareAliasStmt:
		w.WalkExpression(&n.Expression)
	case *ast.DeclareConstStmt:
		w.WalkExpression(&n.Expression)
	case *ast.DeclareFunctionStmt:
		w.enterScope()
		w.WalkStatementList(&n.Statements)
		w.exitScope()
	case *ast.DeclareOptionStmt:
		w.WalkExpression(&n.DefaultValue)
	case *ast.DeclareVariableStmt:
		w.WalkExpression(&n.InitialExpression)
	case *ast.ExpressionStmt:
		w.WalkExpression(&n.Expression)
	case *ast.ForStmt:
		w.WalkExpression(&n.FromExpr)
		w.WalkExpression(&n.ToExpr)
		w.WalkExpression(&n.StepExpr)
		w.enterScope()
		w.WalkStatement(&n.Statement)
		w.exitScope()
	case *ast.ForEachStmt:
		w.WalkExpression(&n.Expression)
		w.enterScope()
		w.WalkStatement(&n.Statement)
		w.exitScope()
	case *ast.MultiStmt:
		w.WalkStatementList(&n.Statements)
	case *ast.ReturnStmt:
		w.WalkExpression(&n.ReturnExpr)
	case *ast.ScopedStmt:
		w.enterScope()
		w.WalkStatement(&n.Statement)
		w.exitScope()
	case *ast.WhileStmt:
		w.WalkExpression(&n.Condition)
		w.enterScope()
		w.WalkStatement(&n.Body)
		w.exitScope()
	default:
		// Break, Continue, DeclareExternal, DeclareStruct, Discard, Import,
		// NoOp carry no nested Expression/Statement operands to walk: their
		// payload is symbol metadata handled by the resolver directly.
	}
}
