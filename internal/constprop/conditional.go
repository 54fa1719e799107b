package constprop

import (
	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/constant"
	"github.com/nzsl-go/nzsl/internal/types"
)

// foldConditional prunes a ConditionalExpr whose condition is already a
// constant bool down to whichever branch the condition selects, the
// expression-level counterpart of the resolver's BranchStmt/const-if
// pruning: the surviving branch replaces the whole node even when that
// branch itself isn't a constant.
func foldConditional(n *ast.ConditionalExpr, cond constant.Value) (ast.Expression, bool) {
	k, ok := elemKind(cond)
	if !ok || k != types.Bool {
		return nil, false
	}
	if cond.BoolValue() {
		return n.TruePath, true
	}
	return n.FalsePath, true
}
