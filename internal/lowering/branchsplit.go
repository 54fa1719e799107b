package lowering

import (
	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/transform"
)

// BranchSplitter rewrites a flat `if A {} else if B {} else {}` chain
// (BranchStmt.CondStatements holding more than one arm) into nested
// `if A {} else { if B {} else {} }`, so a back-end that only models a
// single condition/else pair per node doesn't need else-if of its own.
type BranchSplitter struct {
	transform.BaseTransformer
	walker *transform.Walker
}

// SplitBranches runs the branch splitter over mod.
func SplitBranches(mod *ast.Module, ctx *transform.Context) {
	b := &BranchSplitter{}
	w := transform.NewWalker(b, ctx)
	b.walker = w
	w.WalkModule(mod)
}

func (b *BranchSplitter) VisitBranch(n *ast.BranchStmt) transform.StmtResult {
	b.walker.WalkStatement(&n.ElseStatement)
	for i := range n.CondStatements {
		b.walker.WalkExpression(&n.CondStatements[i].Condition)
		b.walker.WalkStatement(&n.CondStatements[i].Statement)
	}

	if len(n.CondStatements) <= 1 {
		return transform.DontVisitChildrenStmt()
	}
	return transform.ReplaceStmt(splitChain(n.CondStatements, n.ElseStatement, n.IsConst))
}

// splitChain nests every arm after the first into its own single-armed
// BranchStmt, recursively, so a three-or-more-arm chain ends up fully
// nested rather than split just one level deep.
func splitChain(arms []ast.ConditionalBranch, elseStmt ast.Statement, isConst bool) *ast.BranchStmt {
	if len(arms) <= 1 {
		return &ast.BranchStmt{CondStatements: arms, ElseStatement: elseStmt, IsConst: isConst}
	}
	return &ast.BranchStmt{
		CondStatements: arms[:1],
		ElseStatement:  splitChain(arms[1:], elseStmt, isConst),
		IsConst:        isConst,
	}
}
