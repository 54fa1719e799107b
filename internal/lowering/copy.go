package lowering

import "github.com/nzsl-go/nzsl/internal/ast"

// copyExpr deep-copies an expression subtree. Used by the loop unroller to
// give each unrolled copy of a loop body its own, unshared nodes before
// index-remapping rewrites the copy's declarations.
func copyExpr(e ast.Expression) ast.Expression {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *ast.AccessIdentifierExpr:
		c := *n
		c.Identifiers = append([]ast.AccessIdentifierName(nil), n.Identifiers...)
		c.Expr = copyExpr(n.Expr)
		return &c
	case *ast.AccessFieldExpr:
		c := *n
		c.Expr = copyExpr(n.Expr)
		return &c
	case *ast.AccessIndexExpr:
		c := *n
		c.Expr = copyExpr(n.Expr)
		c.Indices = copyExprList(n.Indices)
		return &c
	case *ast.AliasValueExpr:
		c := *n
		return &c
	case *ast.AssignExpr:
		c := *n
		c.Left = copyExpr(n.Left)
		c.Right = copyExpr(n.Right)
		return &c
	case *ast.BinaryExpr:
		c := *n
		c.Left = copyExpr(n.Left)
		c.Right = copyExpr(n.Right)
		return &c
	case *ast.CallFunctionExpr:
		c := *n
		c.TargetFunction = copyExpr(n.TargetFunction)
		c.Params = copyExprList(n.Params)
		return &c
	case *ast.CallMethodExpr:
		c := *n
		c.Object = copyExpr(n.Object)
		c.Params = copyExprList(n.Params)
		return &c
	case *ast.CastExpr:
		c := *n
		c.Exprs = copyExprList(n.Exprs)
		return &c
	case *ast.ConditionalExpr:
		c := *n
		c.Cond = copyExpr(n.Cond)
		c.TruePath = copyExpr(n.TruePath)
		c.FalsePath = copyExpr(n.FalsePath)
		return &c
	case *ast.ConstantExpr:
		c := *n
		return &c
	case *ast.ConstantArrayValueExpr:
		c := *n
		return &c
	case *ast.ConstantValueExpr:
		c := *n
		return &c
	case *ast.FunctionExpr:
		c := *n
		return &c
	case *ast.IdentifierExpr:
		c := *n
		return &c
	case *ast.IntrinsicExpr:
		c := *n
		c.Params = copyExprList(n.Params)
		return &c
	case *ast.IntrinsicFunctionExpr:
		c := *n
		return &c
	case *ast.StructTypeExpr:
		c := *n
		return &c
	case *ast.SwizzleExpr:
		c := *n
		c.Expr = copyExpr(n.Expr)
		return &c
	case *ast.TypeExpr:
		c := *n
		return &c
	case *ast.VariableValueExpr:
		c := *n
		return &c
	case *ast.UnaryExpr:
		c := *n
		c.Expr = copyExpr(n.Expr)
		return &c
	default:
		return e
	}
}

func copyExprList(exprs []ast.Expression) []ast.Expression {
	if exprs == nil {
		return nil
	}
	out := make([]ast.Expression, len(exprs))
	for i, e := range exprs {
		out[i] = copyExpr(e)
	}
	return out
}

// copyStmt deep-copies a statement subtree, including every expression it
// holds. Declarations keep their original ref.* index: the caller is
// expected to run the copy through the index remapper afterward so the
// copy's own declarations get fresh indices.
func copyStmt(s ast.Statement) ast.Statement {
	if s == nil {
		return nil
	}
	switch n := s.(type) {
	case *ast.BranchStmt:
		c := *n
		c.CondStatements = make([]ast.ConditionalBranch, len(n.CondStatements))
		for i, cb := range n.CondStatements {
			c.CondStatements[i] = ast.ConditionalBranch{
				Condition: copyExpr(cb.Condition),
				Statement: copyStmt(cb.Statement),
			}
		}
		c.ElseStatement = copyStmt(n.ElseStatement)
		return &c
	case *ast.BreakStmt:
		c := *n
		return &c
	case *ast.ConditionalStmt:
		c := *n
		c.Cond = copyExpr(n.Cond)
		c.Statement = copyStmt(n.Statement)
		return &c
	case *ast.ContinueStmt:
		c := *n
		return &c
	case *ast.DeclareAliasStmt:
		c := *n
		c.Expression = copyExpr(n.Expression)
		return &c
	case *ast.DeclareConstStmt:
		c := *n
		c.Expression = copyExpr(n.Expression)
		return &c
	case *ast.DeclareExternalStmt:
		c := *n
		c.ExternalVars = append([]ast.ExternalVar(nil), n.ExternalVars...)
		return &c
	case *ast.DeclareFunctionStmt:
		c := *n
		c.Parameters = append([]ast.FunctionParam(nil), n.Parameters...)
		c.Statements = copyStmtList(n.Statements)
		return &c
	case *ast.DeclareOptionStmt:
		c := *n
		c.DefaultValue = copyExpr(n.DefaultValue)
		return &c
	case *ast.DeclareStructStmt:
		c := *n
		c.Description.Members = append([]ast.StructMember(nil), n.Description.Members...)
		return &c
	case *ast.DeclareVariableStmt:
		c := *n
		c.InitialExpression = copyExpr(n.InitialExpression)
		return &c
	case *ast.DiscardStmt:
		c := *n
		return &c
	case *ast.ExpressionStmt:
		c := *n
		c.Expression = copyExpr(n.Expression)
		return &c
	case *ast.ForStmt:
		c := *n
		c.FromExpr = copyExpr(n.FromExpr)
		c.ToExpr = copyExpr(n.ToExpr)
		c.StepExpr = copyExpr(n.StepExpr)
		c.Statement = copyStmt(n.Statement)
		return &c
	case *ast.ForEachStmt:
		c := *n
		c.Expression = copyExpr(n.Expression)
		c.Statement = copyStmt(n.Statement)
		return &c
	case *ast.ImportStmt:
		c := *n
		c.Identifiers = append([]ast.ImportIdentifier(nil), n.Identifiers...)
		return &c
	case *ast.MultiStmt:
		c := *n
		c.Statements = copyStmtList(n.Statements)
		return &c
	case *ast.NoOpStmt:
		c := *n
		return &c
	case *ast.ReturnStmt:
		c := *n
		c.ReturnExpr = copyExpr(n.ReturnExpr)
		return &c
	case *ast.ScopedStmt:
		c := *n
		c.Statement = copyStmt(n.Statement)
		return &c
	case *ast.WhileStmt:
		c := *n
		c.Condition = copyExpr(n.Condition)
		c.Body = copyStmt(n.Body)
		return &c
	default:
		return s
	}
}

func copyStmtList(stmts []ast.Statement) []ast.Statement {
	if stmts == nil {
		return nil
	}
	out := make([]ast.Statement, len(stmts))
	for i, s := range stmts {
		out[i] = copyStmt(s)
	}
	return out
}
