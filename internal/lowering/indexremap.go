package lowering

import (
	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/ref"
	"github.com/nzsl-go/nzsl/internal/transform"
)

// IndexRemapper rewrites every variable, constant and alias declared within
// a statement subtree to a freshly registered index, and every reference to
// match, so the subtree can be spliced into a scope that already holds
// another copy of it (its own, unremapped) without the two colliding. The
// loop unroller is the only caller today: each unrolled iteration's body is
// index-remapped before being spliced alongside the others.
type IndexRemapper struct {
	transform.BaseTransformer
	walker  *transform.Walker
	ctx     *transform.Context
	suffix  string
	vars    map[ref.Variable]ref.Variable
	consts  map[ref.Constant]ref.Constant
	aliases map[ref.Alias]ref.Alias
}

// RemapIndices remaps every declaration inside stmt, appending suffix to
// each declaration's name to keep the symbol table's names readable and
// distinct (e.g. "i" inside the third unrolled copy becomes "i_u2").
func RemapIndices(stmt ast.Statement, ctx *transform.Context, suffix string) ast.Statement {
	r := &IndexRemapper{
		ctx:     ctx,
		suffix:  suffix,
		vars:    make(map[ref.Variable]ref.Variable),
		consts:  make(map[ref.Constant]ref.Constant),
		aliases: make(map[ref.Alias]ref.Alias),
	}
	w := transform.NewWalker(r, ctx)
	r.walker = w
	slot := stmt
	w.WalkStatement(&slot)
	return slot
}

func (r *IndexRemapper) VisitDeclareVariable(n *ast.DeclareVariableStmt) transform.StmtResult {
	r.walker.WalkExpression(&n.InitialExpression)

	data, _ := r.ctx.Variable(n.VariableRef)
	name := n.Name + r.suffix
	newRef, err := r.ctx.RegisterVariable(name, transform.VariableData{Name: name, Type: data.Type, IsConst: data.IsConst})
	if err != nil {
		// Suffixes are unique per unrolled copy; a collision means the
		// caller reused one, a bug in the calling pass.
		panic(err)
	}
	r.vars[n.VariableRef] = newRef
	n.VariableRef = newRef
	n.Name = name
	return transform.DontVisitChildrenStmt()
}

func (r *IndexRemapper) VisitVariableValue(n *ast.VariableValueExpr) transform.ExprResult {
	if nv, ok := r.vars[n.VariableRef]; ok {
		n.VariableRef = nv
	}
	return transform.DontVisitChildrenExpr()
}

func (r *IndexRemapper) VisitDeclareConst(n *ast.DeclareConstStmt) transform.StmtResult {
	r.walker.WalkExpression(&n.Expression)

	data, _ := r.ctx.Constant(n.ConstantRef)
	name := n.Name + r.suffix
	newRef, err := r.ctx.RegisterConstant(name, transform.ConstantData{Name: name, Value: data.Value, Type: data.Type, ModuleIndex: data.ModuleIndex})
	if err != nil {
		panic(err)
	}
	r.consts[n.ConstantRef] = newRef
	n.ConstantRef = newRef
	n.Name = name
	return transform.DontVisitChildrenStmt()
}

func (r *IndexRemapper) VisitConstant(n *ast.ConstantExpr) transform.ExprResult {
	if nc, ok := r.consts[n.ConstantRef]; ok {
		n.ConstantRef = nc
	}
	return transform.DontVisitChildrenExpr()
}

func (r *IndexRemapper) VisitDeclareAlias(n *ast.DeclareAliasStmt) transform.StmtResult {
	r.walker.WalkExpression(&n.Expression)

	data, _ := r.ctx.Alias(n.AliasRef)
	name := n.Name + r.suffix
	newRef, err := r.ctx.RegisterAlias(name, data)
	if err != nil {
		panic(err)
	}
	r.aliases[n.AliasRef] = newRef
	n.AliasRef = newRef
	n.Name = name
	return transform.DontVisitChildrenStmt()
}

func (r *IndexRemapper) VisitAliasValue(n *ast.AliasValueExpr) transform.ExprResult {
	if na, ok := r.aliases[n.AliasRef]; ok {
		n.AliasRef = na
	}
	return transform.DontVisitChildrenExpr()
}
