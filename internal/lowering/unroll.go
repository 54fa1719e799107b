package lowering

import (
	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/constant"
	"github.com/nzsl-go/nzsl/internal/diagnostic"
	"github.com/nzsl-go/nzsl/internal/transform"
	"github.com/nzsl-go/nzsl/internal/types"
)

// Unroller expands a `[unroll(always)]` for-loop with constant bounds into
// one copy of the body per iteration, index-remapping each copy's own
// declarations so the copies can't alias each other's locals. It must run
// after constant propagation (the bounds need to already be literal) and
// before ForToWhile (it only has a meaningful shape to unroll while the
// loop is still a ForStmt).
//
// break/continue inside an always-unrolled loop have no well-defined static
// meaning once the loop disappears, so finding one is an error rather than
// something a later pass could plausibly make sense of.
type Unroller struct {
	transform.BaseTransformer
	walker *transform.Walker
	ctx    *transform.Context
	names  freshNames
	err    *diagnostic.Error
}

// Unroll expands every always-unroll for-loop in mod with constant bounds.
func Unroll(mod *ast.Module, ctx *transform.Context) *diagnostic.Error {
	u := &Unroller{ctx: ctx}
	w := transform.NewWalker(u, ctx)
	u.walker = w
	w.WalkModule(mod)
	return u.err
}

func (u *Unroller) fail(err *diagnostic.Error) {
	if u.err == nil {
		u.err = err
	}
}

func (u *Unroller) VisitFor(n *ast.ForStmt) transform.StmtResult {
	if !n.Unroll.IsResolved() || n.Unroll.GetResultingValue() != ast.UnrollAlways {
		u.walker.WalkExpression(&n.FromExpr)
		u.walker.WalkExpression(&n.ToExpr)
		if n.StepExpr != nil {
			u.walker.WalkExpression(&n.StepExpr)
		}
		u.walker.WalkStatement(&n.Statement)
		return transform.DontVisitChildrenStmt()
	}

	from, fromOK := asIntConstant(n.FromExpr)
	to, toOK := asIntConstant(n.ToExpr)
	step := int64(1)
	if n.StepExpr != nil {
		s, ok := asIntConstant(n.StepExpr)
		if !ok {
			return transform.DontVisitChildrenStmt()
		}
		step = s
	}
	if !fromOK || !toOK || step == 0 {
		return transform.DontVisitChildrenStmt()
	}

	if containsLoopControl(n.Statement, false) {
		u.fail(diagnostic.NewError(diagnostic.LoopControlOutsideOfLoop, rangeOf(n.Location()),
			"break/continue has no meaning inside an always-unrolled loop"))
		return transform.DontVisitChildrenStmt()
	}

	counterType := n.FromExpr.CachedType()
	var bodies []ast.Statement
	for i := from; (step > 0 && i < to) || (step < 0 && i > to); i += step {
		counterDecl := &ast.DeclareVariableStmt{
			VariableRef:       n.VariableRef,
			Name:              n.VarName,
			InitialExpression: constFromInt(counterType, i),
			Type:              ast.ResolvedValue(counterType),
		}
		body := copyStmt(n.Statement)
		copyStmtBody := multi(counterDecl, body)
		remapped := RemapIndices(copyStmtBody, u.ctx, u.names.next("_u"))
		bodies = append(bodies, remapped)
	}

	return transform.ReplaceStmt(multi(bodies...))
}

// asIntConstant extracts an integer value from an already-folded constant
// expression.
func asIntConstant(e ast.Expression) (int64, bool) {
	cv, ok := e.(*ast.ConstantValueExpr)
	if !ok {
		return 0, false
	}
	return rawIntOf(cv.Value)
}

// rawIntOf extracts an int64 out of a scalar integer constant, widening
// unsigned values the same way the rest of the compiler treats u32 bounds:
// as non-negative counts that fit comfortably in 64 bits.
func rawIntOf(v constant.Value) (int64, bool) {
	switch k, ok := types.ScalarKind(constant.GetType(v)); {
	case !ok:
		return 0, false
	case k == types.I32:
		return int64(v.I32Value()), true
	case k == types.U32:
		return int64(v.U32Value()), true
	case k == types.IntLiteral:
		return v.IntLiteralValue(), true
	default:
		return 0, false
	}
}

// constFromInt builds a concrete constant of t's primitive kind holding v.
func constFromInt(t types.Type, v int64) ast.Expression {
	k, ok := types.ScalarKind(t)
	if !ok {
		k = types.I32
	}
	switch k {
	case types.U32:
		return constOf(types.U32, uint32(v))
	default:
		return constOf(types.I32, int32(v))
	}
}

// containsLoopControl reports whether s holds a break/continue that would
// target the loop being unrolled. insideNestedLoop tracks whether the walk
// has already descended into a loop of its own, whose break/continue are
// none of the unroller's business.
func containsLoopControl(s ast.Statement, insideNestedLoop bool) bool {
	switch n := s.(type) {
	case nil:
		return false
	case *ast.BreakStmt, *ast.ContinueStmt:
		return !insideNestedLoop
	case *ast.BranchStmt:
		for _, cb := range n.CondStatements {
			if containsLoopControl(cb.Statement, insideNestedLoop) {
				return true
			}
		}
		return containsLoopControl(n.ElseStatement, insideNestedLoop)
	case *ast.ConditionalStmt:
		return containsLoopControl(n.Statement, insideNestedLoop)
	case *ast.MultiStmt:
		for _, sub := range n.Statements {
			if containsLoopControl(sub, insideNestedLoop) {
				return true
			}
		}
		return false
	case *ast.ScopedStmt:
		return containsLoopControl(n.Statement, insideNestedLoop)
	case *ast.ForStmt:
		return containsLoopControl(n.Statement, true)
	case *ast.ForEachStmt:
		return containsLoopControl(n.Statement, true)
	case *ast.WhileStmt:
		return containsLoopControl(n.Body, true)
	default:
		return false
	}
}
