package transform

import (
	"testing"

	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/constant"
)

// renameToZero replaces every IdentifierExpr named "pi" with the constant 0.
type renameToZero struct {
	BaseTransformer
	replaced int
}

func (r *renameToZero) VisitIdentifier(e *ast.IdentifierExpr) ExprResult {
	if e.Identifier != "pi" {
		return VisitChildrenExpr()
	}
	r.replaced++
	return ReplaceExpr(&ast.ConstantValueExpr{Value: constant.F32(0)})
}

func TestWalkExpressionReplace(t *testing.T) {
	var e ast.Expression = &ast.BinaryExpr{
		Op:    ast.BinaryAdd,
		Left:  &ast.IdentifierExpr{Identifier: "pi"},
		Right: &ast.ConstantValueExpr{Value: constant.F32(1)},
	}
	tr := &renameToZero{}
	w := NewWalker(tr, NewContext())
	w.WalkExpression(&e)

	bin := e.(*ast.BinaryExpr)
	left, ok := bin.Left.(*ast.ConstantValueExpr)
	if !ok {
		t.Fatalf("expected Left to be replaced with a constant, got %T", bin.Left)
	}
	if !constant.Equal(left.Value, constant.F32(0)) {
		t.Fatalf("expected replaced constant to be 0")
	}
	if tr.replaced != 1 {
		t.Fatalf("expected exactly one replacement, got %d", tr.replaced)
	}
}

// scopeCounter tracks EnterScope/ExitScope calls to verify bracketing.
type scopeCounter struct {
	BaseTransformer
	depth    int
	maxDepth int
}

func (s *scopeCounter) EnterScope() {
	s.depth++
	if s.depth > s.maxDepth {
		s.maxDepth = s.depth
	}
}
func (s *scopeCounter) ExitScope() { s.depth-- }

func TestWalkStatementBracketsScopedStmt(t *testing.T) {
	var stmt ast.Statement = &ast.ScopedStmt{
		Statement: &ast.ScopedStmt{Statement: &ast.NoOpStmt{}},
	}
	tr := &scopeCounter{}
	w := NewWalker(tr, NewContext())
	w.WalkStatement(&stmt)

	if tr.maxDepth != 2 {
		t.Fatalf("expected nested Scoped statements to reach depth 2, got %d", tr.maxDepth)
	}
	if tr.depth != 0 {
		t.Fatalf("expected scope depth to return to 0 after the walk, got %d", tr.depth)
	}
}

// hoistBeforeBreak inserts a NoOp before every Break statement it visits.
type hoistBeforeBreak struct {
	BaseTransformer
	walker *Walker
}

func (h *hoistBeforeBreak) VisitBreak(b *ast.BreakStmt) StmtResult {
	h.walker.InsertBefore(&ast.NoOpStmt{})
	return VisitChildrenStmt()
}

func TestStatementListSplicing(t *testing.T) {
	stmts := []ast.Statement{&ast.BreakStmt{}, &ast.ContinueStmt{}}
	tr := &hoistBeforeBreak{}
	w := NewWalker(tr, NewContext())
	tr.walker = w

	w.WalkStatementList(&stmts)

	if len(stmts) != 3 {
		t.Fatalf("expected the hoisted NoOp to grow the list to 3 statements, got %d", len(stmts))
	}
	if _, ok := stmts[0].(*ast.NoOpStmt); !ok {
		t.Fatalf("expected the hoisted statement to land before the Break, got %T", stmts[0])
	}
	if _, ok := stmts[1].(*ast.BreakStmt); !ok {
		t.Fatalf("expected the Break to follow its hoisted statement, got %T", stmts[1])
	}
}

func TestDontVisitChildrenStopsRecursion(t *testing.T) {
	// A transformer that refuses to descend into Binary should leave a
	// nested Identifier untouched even if another hook would have replaced it.
	tr := &stopAtBinary{}
	var e ast.Expression = &ast.BinaryExpr{
		Op:   ast.BinaryAdd,
		Left: &ast.IdentifierExpr{Identifier: "pi"},
	}
	w := NewWalker(tr, NewContext())
	w.WalkExpression(&e)

	bin := e.(*ast.BinaryExpr)
	if _, ok := bin.Left.(*ast.IdentifierExpr); !ok {
		t.Fatalf("expected Left to remain unvisited, got %T", bin.Left)
	}
}

type stopAtBinary struct{ BaseTransformer }

func (s *stopAtBinary) VisitBinary(*ast.BinaryExpr) ExprResult { return DontVisitChildrenExpr() }
func (s *stopAtBinary) VisitIdentifier(*ast.IdentifierExpr) ExprResult {
	return ReplaceExpr(&ast.ConstantValueExpr{Value: constant.I32(0)})
}
