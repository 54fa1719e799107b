package transform

import "github.com/nzsl-go/nzsl/internal/ast"

// Action is the command a Transformer hook returns for the node it was just
// handed.
type Action uint8

const (
	// ActionVisitChildren recurses into the node's operands.
	ActionVisitChildren Action = iota
	// ActionDontVisitChildren stops the walk at this node without replacing it.
	ActionDontVisitChildren
	// ActionReplace substitutes the node with Replacement; the replacement's
	// own children are not automatically visited.
	ActionReplace
)

// ExprResult is what an expression hook returns.
type ExprResult struct {
	Action      Action
	Replacement ast.Expression
}

// VisitChildrenExpr recurses into the expression's operands.
func VisitChildrenExpr() ExprResult { return ExprResult{Action: ActionVisitChildren} }

// DontVisitChildrenExpr stops the walk at this expression.
func DontVisitChildrenExpr() ExprResult { return ExprResult{Action: ActionDontVisitChildren} }

// ReplaceExpr substitutes the current expression with e.
func ReplaceExpr(e ast.Expression) ExprResult { return ExprResult{Action: ActionReplace, Replacement: e} }

// StmtResult is what a statement hook returns.
type StmtResult struct {
	Action      Action
	Replacement ast.Statement
}

// VisitChildrenStmt recurses into the statement's operands.
func VisitChildrenStmt() StmtResult { return StmtResult{Action: ActionVisitChildren} }

// DontVisitChildrenStmt stops the walk at this statement.
func DontVisitChildrenStmt() StmtResult { return StmtResult{Action: ActionDontVisitChildren} }

// ReplaceStmt substitutes the current statement with s.
func ReplaceStmt(s ast.Statement) StmtResult { return StmtResult{Action: ActionReplace, Replacement: s} }

// Transformer is the in-place mutating visitor contract: one hook per
// expression/statement variant, plus scope brackets. A concrete pass embeds
// *BaseTransformer and overrides only the hooks it cares about.
type Transformer interface {
	VisitAccessIdentifier(*ast.AccessIdentifierExpr) ExprResult
	VisitAccessField(*ast.AccessFieldExpr) ExprResult
	VisitAccessIndex(*ast.AccessIndexExpr) ExprResult
	VisitAliasValue(*ast.AliasValueExpr) ExprResult
	VisitAssign(*ast.AssignExpr) ExprResult
	VisitBinary(*ast.BinaryExpr) ExprResult
	VisitCallFunction(*ast.CallFunctionExpr) ExprResult
	VisitCallMethod(*ast.CallMethodExpr) ExprResult
	VisitCast(*ast.CastExpr) ExprResult
	VisitConditionalExpr(*ast.ConditionalExpr) ExprResult
	VisitConstant(*ast.ConstantExpr) ExprResult
	VisitConstantArrayValue(*ast.ConstantArrayValueExpr) ExprResult
	VisitConstantValue(*ast.ConstantValueExpr) ExprResult
	VisitFunction(*ast.FunctionExpr) ExprResult
	VisitIdentifier(*ast.IdentifierExpr) ExprResult
	VisitIntrinsic(*ast.IntrinsicExpr) ExprResult
	VisitIntrinsicFunction(*ast.IntrinsicFunctionExpr) ExprResult
	VisitStructType(*ast.StructTypeExpr) ExprResult
	VisitSwizzle(*ast.SwizzleExpr) ExprResult
	VisitTypeExpr(*ast.TypeExpr) ExprResult
	VisitVariableValue(*ast.VariableValueExpr) ExprResult
	VisitUnary(*ast.UnaryExpr) ExprResult

	VisitBranch(*ast.BranchStmt) StmtResult
	VisitBreak(*ast.BreakStmt) StmtResult
	VisitConditionalStmt(*ast.ConditionalStmt) StmtResult
	VisitContinue(*ast.ContinueStmt) StmtResult
	VisitDeclareAlias(*ast.DeclareAliasStmt) StmtResult
	VisitDeclareConst(*ast.DeclareConstStmt) StmtResult
	VisitDeclareExternal(*ast.DeclareExternalStmt) StmtResult
	VisitDeclareFunction(*ast.DeclareFunctionStmt) StmtResult
	VisitDeclareOption(*ast.DeclareOptionStmt) StmtResult
	VisitDeclareStruct(*ast.DeclareStructStmt) StmtResult
	VisitDeclareVariable(*ast.DeclareVariableStmt) StmtResult
	VisitDiscard(*ast.DiscardStmt) StmtResult
	VisitExpressionStmt(*ast.ExpressionStmt) StmtResult
	VisitFor(*ast.ForStmt) StmtResult
	VisitForEach(*ast.ForEachStmt) StmtResult
	VisitImport(*ast.ImportStmt) StmtResult
	VisitMulti(*ast.MultiStmt) StmtResult
	VisitNoOp(*ast.NoOpStmt) StmtResult
	VisitReturn(*ast.ReturnStmt) StmtResult
	VisitScoped(*ast.ScopedStmt) StmtResult
	VisitWhile(*ast.WhileStmt) StmtResult

	// EnterScope/ExitScope bracket every lexical scope: function body,
	// block (Scoped), loop body, matching PushScope/PopScope on the Context
	// the pass is threaded with.
	EnterScope()
	ExitScope()
}

// BaseTransformer implements Transformer with VisitChildren for every hook
// and no-op scope brackets; embed it and override only what a pass needs.
type BaseTransformer struct{}

func (*BaseTransformer) VisitAccessIdentifier(*ast.AccessIdentifierExpr) ExprResult { return VisitChildrenExpr() }
func (*BaseTransformer) VisitAccessField(*ast.AccessFieldExpr) ExprResult           { return VisitChildrenExpr() }
func (*BaseTransformer) VisitAccessIndex(*ast.AccessIndexExpr) ExprResult           { return VisitChildrenExpr() }
func (*BaseTransformer) VisitAliasValue(*ast.AliasValueExpr) ExprResult             { return VisitChildrenExpr() }
func (*BaseTransformer) VisitAssign(*ast.AssignExpr) ExprResult                     { return VisitChildrenExpr() }
func (*BaseTransformer) VisitBinary(*ast.BinaryExpr) ExprResult                     { return VisitChildrenExpr() }
func (*BaseTransformer) VisitCallFunction(*ast.CallFunctionExpr) ExprResult         { return VisitChildrenExpr() }
func (*BaseTransformer) VisitCallMethod(*ast.CallMethodExpr) ExprResult             { return VisitChildrenExpr() }
func (*BaseTransformer) VisitCast(*ast.CastExpr) ExprResult                         { return VisitChildrenExpr() }
func (*BaseTransformer) VisitConditionalExpr(*ast.ConditionalExpr) ExprResult       { return VisitChildrenExpr() }
func (*BaseTransformer) VisitConstant(*ast.ConstantExpr) ExprResult                 { return VisitChildrenExpr() }
func (*BaseTransformer) VisitConstantArrayValue(*ast.ConstantArrayValueExpr) ExprResult {
	return VisitChildrenExpr()
}
func (*BaseTransformer) VisitConstantValue(*ast.ConstantValueExpr) ExprResult { return VisitChildrenExpr() }
func (*BaseTransformer) VisitFunction(*ast.FunctionExpr) ExprResult           { return VisitChildrenExpr() }
func (*BaseTransformer) VisitIdentifier(*ast.IdentifierExpr) ExprResult       { return VisitChildrenExpr() }
func (*BaseTransformer) VisitIntrinsic(*ast.IntrinsicExpr) ExprResult         { return VisitChildrenExpr() }
func (*BaseTransformer) VisitIntrinsicFunction(*ast.IntrinsicFunctionExpr) ExprResult {
	return VisitChildrenExpr()
}
func (*BaseTransformer) VisitStructType(*ast.StructTypeExpr) ExprResult       { return VisitChildrenExpr() }
func (*BaseTransformer) VisitSwizzle(*ast.SwizzleExpr) ExprResult             { return VisitChildrenExpr() }
func (*BaseTransformer) VisitTypeExpr(*ast.TypeExpr) ExprResult               { return VisitChildrenExpr() }
func (*BaseTransformer) VisitVariableValue(*ast.VariableValueExpr) ExprResult { return VisitChildrenExpr() }
func (*BaseTransformer) VisitUnary(*ast.UnaryExpr) ExprResult                 { return VisitChildrenExpr() }

func (*BaseTransformer) VisitBranch(*ast.BranchStmt) StmtResult             { return VisitChildrenStmt() }
func (*BaseTransformer) VisitBreak(*ast.BreakStmt) StmtResult               { return VisitChildrenStmt() }
func (*BaseTransformer) VisitConditionalStmt(*ast.ConditionalStmt) StmtResult { return VisitChildrenStmt() }
func (*BaseTransformer) VisitContinue(*ast.ContinueStmt) StmtResult         { return VisitChildrenStmt() }
func (*BaseTransformer) VisitDeclareAlias(*ast.DeclareAliasStmt) StmtResult { return VisitChildrenStmt() }
func (*BaseTransformer) VisitDeclareConst(*ast.DeclareConstStmt) StmtResult { return VisitChildrenStmt() }
func (*BaseTransformer) VisitDeclareExternal(*ast.DeclareExternalStmt) StmtResult {
	return VisitChildrenStmt()
}
func (*BaseTransformer) VisitDeclareFunction(*ast.DeclareFunctionStmt) StmtResult {
	return VisitChildrenStmt()
}
func (*BaseTransformer) VisitDeclareOption(*ast.DeclareOptionStmt) StmtResult { return VisitChildrenStmt() }
func (*BaseTransformer) VisitDeclareStruct(*ast.DeclareStructStmt) StmtResult { return VisitChildrenStmt() }
func (*BaseTransformer) VisitDeclareVariable(*ast.DeclareVariableStmt) StmtResult {
	return VisitChildrenStmt()
}
func (*BaseTransformer) VisitDiscard(*ast.DiscardStmt) StmtResult             { return VisitChildrenStmt() }
func (*BaseTransformer) VisitExpressionStmt(*ast.ExpressionStmt) StmtResult   { return VisitChildrenStmt() }
func (*BaseTransformer) VisitFor(*ast.ForStmt) StmtResult                     { return VisitChildrenStmt() }
func (*BaseTransformer) VisitForEach(*ast.ForEachStmt) StmtResult             { return VisitChildrenStmt() }
func (*BaseTransformer) VisitImport(*ast.ImportStmt) StmtResult               { return VisitChildrenStmt() }
func (*BaseTransformer) VisitMulti(*ast.MultiStmt) StmtResult                 { return VisitChildrenStmt() }
func (*BaseTransformer) VisitNoOp(*ast.NoOpStmt) StmtResult                   { return VisitChildrenStmt() }
func (*BaseTransformer) VisitReturn(*ast.ReturnStmt) StmtResult               { return VisitChildrenStmt() }
func (*BaseTransformer) VisitScoped(*ast.ScopedStmt) StmtResult               { return VisitChildrenStmt() }
func (*BaseTransformer) VisitWhile(*ast.WhileStmt) StmtResult                 { return VisitChildrenStmt() }

func (*BaseTransformer) EnterScope() {}
func (*BaseTransformer) ExitScope()  {}
