package lowering

import (
	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/transform"
	"github.com/nzsl-go/nzsl/internal/types"
)

// AliasRemover erases every DeclareAliasStmt and replaces every appearance
// of the *types.Alias it introduced with the alias's target type. Aliasing
// in this language is purely a type-level rename (an alias declaration
// always resolves to a type, never a value, per how the resolver registers
// one), so there is nothing else for a later pass or a back-end to see: by
// the time this pass is done, types.Alias no longer appears anywhere in
// the tree.
type AliasRemover struct {
	transform.BaseTransformer
}

// RemoveAliases rewrites mod in place.
func RemoveAliases(mod *ast.Module, ctx *transform.Context) {
	p := &AliasRemover{}
	transform.NewWalker(p, ctx).WalkModule(mod)
}

func dealiasAttr(v *ast.ExpressionValue[types.Type]) {
	if v.IsResolved() {
		v.Resolve(types.ResolveAlias(v.GetResultingValue()))
	}
}

func (p *AliasRemover) VisitDeclareAlias(n *ast.DeclareAliasStmt) transform.StmtResult {
	return transform.ReplaceStmt(&ast.NoOpStmt{})
}

func (p *AliasRemover) VisitDeclareVariable(n *ast.DeclareVariableStmt) transform.StmtResult {
	dealiasAttr(&n.Type)
	return transform.VisitChildrenStmt()
}

func (p *AliasRemover) VisitDeclareConst(n *ast.DeclareConstStmt) transform.StmtResult {
	dealiasAttr(&n.Type)
	return transform.VisitChildrenStmt()
}

func (p *AliasRemover) VisitDeclareStruct(n *ast.DeclareStructStmt) transform.StmtResult {
	for i := range n.Description.Members {
		dealiasAttr(&n.Description.Members[i].Type)
	}
	return transform.VisitChildrenStmt()
}

func (p *AliasRemover) VisitDeclareExternal(n *ast.DeclareExternalStmt) transform.StmtResult {
	for i := range n.ExternalVars {
		dealiasAttr(&n.ExternalVars[i].Type)
	}
	return transform.VisitChildrenStmt()
}

func (p *AliasRemover) VisitDeclareFunction(n *ast.DeclareFunctionStmt) transform.StmtResult {
	dealiasAttr(&n.ReturnType)
	for i := range n.Parameters {
		dealiasAttr(&n.Parameters[i].Type)
	}
	return transform.VisitChildrenStmt()
}

func (p *AliasRemover) VisitCast(n *ast.CastExpr) transform.ExprResult {
	dealiasAttr(&n.TargetType)
	return transform.VisitChildrenExpr()
}

func (p *AliasRemover) VisitVariableValue(n *ast.VariableValueExpr) transform.ExprResult {
	n.SetCachedType(types.ResolveAlias(n.CachedType()))
	return transform.VisitChildrenExpr()
}

func (p *AliasRemover) VisitAccessField(n *ast.AccessFieldExpr) transform.ExprResult {
	n.SetCachedType(types.ResolveAlias(n.CachedType()))
	return transform.VisitChildrenExpr()
}

func (p *AliasRemover) VisitAccessIndex(n *ast.AccessIndexExpr) transform.ExprResult {
	n.SetCachedType(types.ResolveAlias(n.CachedType()))
	return transform.VisitChildrenExpr()
}

func (p *AliasRemover) VisitIdentifier(n *ast.IdentifierExpr) transform.ExprResult {
	n.SetCachedType(types.ResolveAlias(n.CachedType()))
	return transform.VisitChildrenExpr()
}

func (p *AliasRemover) VisitFunction(n *ast.FunctionExpr) transform.ExprResult {
	n.SetCachedType(types.ResolveAlias(n.CachedType()))
	return transform.VisitChildrenExpr()
}

func (p *AliasRemover) VisitCallFunction(n *ast.CallFunctionExpr) transform.ExprResult {
	n.SetCachedType(types.ResolveAlias(n.CachedType()))
	return transform.VisitChildrenExpr()
}

func (p *AliasRemover) VisitCallMethod(n *ast.CallMethodExpr) transform.ExprResult {
	n.SetCachedType(types.ResolveAlias(n.CachedType()))
	return transform.VisitChildrenExpr()
}

func (p *AliasRemover) VisitBinary(n *ast.BinaryExpr) transform.ExprResult {
	n.SetCachedType(types.ResolveAlias(n.CachedType()))
	return transform.VisitChildrenExpr()
}

func (p *AliasRemover) VisitUnary(n *ast.UnaryExpr) transform.ExprResult {
	n.SetCachedType(types.ResolveAlias(n.CachedType()))
	return transform.VisitChildrenExpr()
}

func (p *AliasRemover) VisitSwizzle(n *ast.SwizzleExpr) transform.ExprResult {
	n.SetCachedType(types.ResolveAlias(n.CachedType()))
	return transform.VisitChildrenExpr()
}

func (p *AliasRemover) VisitConditionalExpr(n *ast.ConditionalExpr) transform.ExprResult {
	n.SetCachedType(types.ResolveAlias(n.CachedType()))
	return transform.VisitChildrenExpr()
}
