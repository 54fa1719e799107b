package lowering

import (
	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/transform"
	"github.com/nzsl-go/nzsl/internal/types"
)

// MatrixLowerer rewrites the two matrix operations a back-end would
// otherwise need native support for:
//
//   - mat_a + mat_b / mat_a - mat_b, column by column, into a temporary;
//   - a matrix-to-matrix cast, by constructing the destination one column
//     at a time from the source's columns, padding whatever the source
//     doesn't cover with the identity matrix's values (1 on the diagonal,
//     0 elsewhere).
type MatrixLowerer struct {
	transform.BaseTransformer
	walker *transform.Walker
	ctx    *transform.Context
	names  freshNames
}

// LowerMatrices rewrites every matrix add/sub and matrix-to-matrix cast in
// mod.
func LowerMatrices(mod *ast.Module, ctx *transform.Context) {
	m := &MatrixLowerer{ctx: ctx}
	w := transform.NewWalker(m, ctx)
	m.walker = w
	w.WalkModule(mod)
}

func asMatrix(t types.Type) (*types.Matrix, bool) {
	m, ok := types.ResolveAlias(t).(*types.Matrix)
	return m, ok
}

// hoistIfImpure caches e in a temporary when it isn't already cheap to
// re-evaluate, so a matrix expression read once per column isn't
// re-evaluated (and any side effect re-triggered) once per column.
func (m *MatrixLowerer) hoistIfImpure(e ast.Expression) ast.Expression {
	if isPureLValue(e) {
		return e
	}
	decl, ref := declareLocal(m.ctx, m.names.next("_mat"), e.CachedType(), e)
	m.walker.InsertBefore(decl)
	return ref
}

// column builds `mat[c]`, the c-th column vector of mat.
func column(mat ast.Expression, c int, colType types.Type) ast.Expression {
	e := &ast.AccessIndexExpr{Expr: mat, Indices: []ast.Expression{constOf(types.U32, uint32(c))}}
	e.SetCachedType(colType)
	return e
}

func (m *MatrixLowerer) VisitBinary(n *ast.BinaryExpr) transform.ExprResult {
	m.walker.WalkExpression(&n.Left)
	m.walker.WalkExpression(&n.Right)

	if n.Op != ast.BinaryAdd && n.Op != ast.BinarySubtract {
		return transform.DontVisitChildrenExpr()
	}
	leftMat, leftOK := asMatrix(n.Left.CachedType())
	_, rightOK := asMatrix(n.Right.CachedType())
	if !leftOK || !rightOK {
		return transform.DontVisitChildrenExpr()
	}

	left := m.hoistIfImpure(n.Left)
	right := m.hoistIfImpure(n.Right)

	resultType := leftMat
	colType := &types.Vector{Count: leftMat.Rows, Elem: leftMat.Elem}

	tempDecl, tempRef := declareLocal(m.ctx, m.names.next("_mat"), resultType, nil)
	m.walker.InsertBefore(tempDecl)

	for c := 0; c < int(resultType.Cols); c++ {
		col := &ast.BinaryExpr{Op: n.Op, Left: column(copyExpr(left), c, colType), Right: column(copyExpr(right), c, colType)}
		col.SetCachedType(colType)
		assign := &ast.AssignExpr{Op: ast.AssignSimple, Left: column(copyExpr(tempRef), c, colType), Right: col}
		assign.SetCachedType(colType)
		m.walker.InsertBefore(&ast.ExpressionStmt{Expression: assign})
	}

	return transform.ReplaceExpr(tempRef)
}

func (m *MatrixLowerer) VisitCast(n *ast.CastExpr) transform.ExprResult {
	for i := range n.Exprs {
		m.walker.WalkExpression(&n.Exprs[i])
	}

	if !n.TargetType.IsResolved() || len(n.Exprs) != 1 {
		return transform.DontVisitChildrenExpr()
	}
	destMat, destOK := asMatrix(n.TargetType.GetResultingValue())
	if !destOK {
		return transform.DontVisitChildrenExpr()
	}
	srcMat, srcOK := asMatrix(n.Exprs[0].CachedType())
	if !srcOK {
		return transform.DontVisitChildrenExpr()
	}

	src := m.hoistIfImpure(n.Exprs[0])
	srcColType := &types.Vector{Count: srcMat.Rows, Elem: srcMat.Elem}
	destColType := &types.Vector{Count: destMat.Rows, Elem: destMat.Elem}

	tempDecl, tempRef := declareLocal(m.ctx, m.names.next("_mat"), destMat, nil)
	m.walker.InsertBefore(tempDecl)

	for c := 0; c < int(destMat.Cols); c++ {
		var colExpr ast.Expression
		if c < int(srcMat.Cols) {
			colExpr = castComponent(column(copyExpr(src), c, srcColType), destColType, destMat.Elem, srcMat, c)
		} else {
			colExpr = identityColumn(destMat, c)
		}
		assign := &ast.AssignExpr{Op: ast.AssignSimple, Left: column(copyExpr(tempRef), c, destColType), Right: colExpr}
		assign.SetCachedType(destColType)
		m.walker.InsertBefore(&ast.ExpressionStmt{Expression: assign})
	}

	return transform.ReplaceExpr(tempRef)
}

// castComponent builds destColType's column from srcCol, truncating or
// padding rows as needed and casting each component's scalar kind when the
// source and destination element kinds differ.
func castComponent(srcCol ast.Expression, destColType *types.Vector, destElem types.PrimitiveKind, srcMat *types.Matrix, col int) ast.Expression {
	exprs := make([]ast.Expression, destColType.Count)
	for r := 0; r < int(destColType.Count); r++ {
		if r < int(srcMat.Rows) {
			comp := componentOf(copyExpr(srcCol), r, srcMat.Elem)
			exprs[r] = castScalar(comp, srcMat.Elem, destElem)
		} else {
			exprs[r] = identityScalar(destElem, r, col)
		}
	}
	cast := &ast.CastExpr{TargetType: ast.ResolvedValue[types.Type](destColType), Exprs: exprs}
	cast.SetCachedType(destColType)
	return cast
}

// componentOf extracts row r of a vector expression via a single-component
// swizzle.
func componentOf(vec ast.Expression, r int, elem types.PrimitiveKind) ast.Expression {
	sw := &ast.SwizzleExpr{Expr: vec, Components: [4]uint32{uint32(r)}, ComponentCount: 1}
	sw.SetCachedType(types.NewPrimitive(elem))
	return sw
}

func castScalar(e ast.Expression, from, to types.PrimitiveKind) ast.Expression {
	if from == to {
		return e
	}
	cast := &ast.CastExpr{TargetType: ast.ResolvedValue[types.Type](types.NewPrimitive(to)), Exprs: []ast.Expression{e}}
	cast.SetCachedType(types.NewPrimitive(to))
	return cast
}

// identityColumn builds the identity matrix's c-th column: 1 at row c, 0
// elsewhere.
func identityColumn(mat *types.Matrix, c int) ast.Expression {
	colType := &types.Vector{Count: mat.Rows, Elem: mat.Elem}
	exprs := make([]ast.Expression, mat.Rows)
	for r := range exprs {
		exprs[r] = identityScalar(mat.Elem, r, c)
	}
	cast := &ast.CastExpr{TargetType: ast.ResolvedValue[types.Type](colType), Exprs: exprs}
	cast.SetCachedType(colType)
	return cast
}

func identityScalar(elem types.PrimitiveKind, row, col int) ast.Expression {
	one := row == col
	switch elem {
	case types.F64:
		if one {
			return constOf(types.F64, float64(1))
		}
		return constOf(types.F64, float64(0))
	default:
		if one {
			return constOf(types.F32, float32(1))
		}
		return constOf(types.F32, float32(0))
	}
}
