package lowering

import (
	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/diagnostic"
	"github.com/nzsl-go/nzsl/internal/transform"
	"github.com/nzsl-go/nzsl/internal/types"
)

// ForEachToWhile rewrites `for v in container { body }` over a
// fixed-length array into
//
//	{ let _arr = container; let _i = 0u; while (_i < N) { let v = _arr[_i]; body; _i += 1u; } }
//
// The counter is always u32 and the bound is the array's static length.
type ForEachToWhile struct {
	transform.BaseTransformer
	walker *transform.Walker
	ctx    *transform.Context
	names  freshNames
	err    *diagnostic.Error
}

// LowerForEachLoops rewrites every ForEachStmt in mod into a WhileStmt.
func LowerForEachLoops(mod *ast.Module, ctx *transform.Context) *diagnostic.Error {
	f := &ForEachToWhile{ctx: ctx}
	w := transform.NewWalker(f, ctx)
	f.walker = w
	w.WalkModule(mod)
	return f.err
}

func (f *ForEachToWhile) fail(err *diagnostic.Error) {
	if f.err == nil {
		f.err = err
	}
}

func (f *ForEachToWhile) VisitForEach(n *ast.ForEachStmt) transform.StmtResult {
	f.walker.WalkExpression(&n.Expression)
	f.walker.WalkStatement(&n.Statement)

	containerType := n.Expression.CachedType()
	arr, ok := types.ResolveAlias(containerType).(*types.Array)
	if !ok {
		f.fail(diagnostic.NewError(diagnostic.ForEachUnsupportedType, rangeOf(n.Expression.Location()),
			"for-each container must be a fixed-length array"))
		return transform.DontVisitChildrenStmt()
	}

	u32 := types.NewPrimitive(types.U32)
	arrDecl, arrRef := declareLocal(f.ctx, f.names.next("_arr"), containerType, n.Expression)
	iDecl, iRef := declareLocal(f.ctx, f.names.next("_i"), u32, constOf(types.U32, uint32(0)))

	bound := constOf(types.U32, arr.Length)
	cond := &ast.BinaryExpr{Op: ast.BinaryCompLt, Left: iRef, Right: bound}
	cond.SetCachedType(types.NewPrimitive(types.Bool))

	elemAccess := &ast.AccessIndexExpr{
		Expr:    arrRef,
		Indices: []ast.Expression{variableRef(iDecl.VariableRef, u32)},
	}
	elemAccess.SetCachedType(arr.Inner)
	elemDecl := &ast.DeclareVariableStmt{
		VariableRef:       n.VariableRef,
		Name:              n.VarName,
		InitialExpression: elemAccess,
		Type:              ast.ResolvedValue(arr.Inner),
	}

	increment := &ast.AssignExpr{
		Op:    ast.AssignCompoundAdd,
		Left:  variableRef(iDecl.VariableRef, u32),
		Right: constOf(types.U32, uint32(1)),
	}
	body := multi(elemDecl, n.Statement, &ast.ExpressionStmt{Expression: increment})

	while := &ast.WhileStmt{Condition: cond, Body: body}
	return transform.ReplaceStmt(multi(arrDecl, iDecl, while))
}
