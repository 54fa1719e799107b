package lowering

import (
	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/ref"
	"github.com/nzsl-go/nzsl/internal/transform"
	"github.com/nzsl-go/nzsl/internal/types"
)

// StructAssignSplitter rewrites `let f = foo;` into field-by-field
// assignments, recursively descending into nested structs and fixed-length
// arrays, whenever the destination and source struct values don't share the
// same memory layout (e.g. one is read out of a std140 uniform block, the
// other a std430 storage block) and so can't be copied as a single opaque
// value.
type StructAssignSplitter struct {
	transform.BaseTransformer
	walker *transform.Walker
	ctx    *transform.Context
}

// SplitStructAssignments rewrites every layout-incompatible whole-struct
// variable initializer in mod into per-field assignments.
func SplitStructAssignments(mod *ast.Module, ctx *transform.Context) {
	s := &StructAssignSplitter{ctx: ctx}
	w := transform.NewWalker(s, ctx)
	s.walker = w
	w.WalkModule(mod)
}

// structRefOf peels Alias/Uniform/Storage/PushConstant wrappers down to the
// struct they wrap.
func structRefOf(t types.Type) (ref.Struct, bool) {
	switch n := types.ResolveAlias(t).(type) {
	case *types.Struct:
		return n.StructRef, true
	case *types.Uniform:
		return n.StructRef, true
	case *types.Storage:
		return n.StructRef, true
	case *types.PushConstant:
		return n.StructRef, true
	default:
		return ref.InvalidStruct, false
	}
}

// effectiveLayout reports the memory layout a value of type t is actually
// stored under: Uniform blocks are std140, Storage/PushConstant blocks are
// std430, and a bare struct value falls back to its own declared layout
// attribute (Packed if it never declared one).
func effectiveLayout(t types.Type, ctx *transform.Context) ast.MemoryLayout {
	switch n := types.ResolveAlias(t).(type) {
	case *types.Uniform:
		return ast.LayoutStd140
	case *types.Storage:
		return ast.LayoutStd430
	case *types.PushConstant:
		return ast.LayoutStd430
	case *types.Struct:
		desc := ctx.StructDescription(n.StructRef)
		if desc != nil && desc.Layout.IsResolved() {
			return desc.Layout.GetResultingValue()
		}
	}
	return ast.LayoutPacked
}

func (s *StructAssignSplitter) VisitDeclareVariable(n *ast.DeclareVariableStmt) transform.StmtResult {
	s.walker.WalkExpression(&n.InitialExpression)

	if n.InitialExpression == nil || !n.Type.IsResolved() {
		return transform.DontVisitChildrenStmt()
	}
	destStruct, destOK := structRefOf(n.Type.GetResultingValue())
	srcStruct, srcOK := structRefOf(n.InitialExpression.CachedType())
	if !destOK || !srcOK || destStruct != srcStruct {
		return transform.DontVisitChildrenStmt()
	}
	if effectiveLayout(n.Type.GetResultingValue(), s.ctx) == effectiveLayout(n.InitialExpression.CachedType(), s.ctx) {
		return transform.DontVisitChildrenStmt()
	}

	destType := n.Type.GetResultingValue()
	destRef := variableRef(n.VariableRef, destType)
	srcExpr := n.InitialExpression

	bareDecl := &ast.DeclareVariableStmt{VariableRef: n.VariableRef, Name: n.Name, Type: n.Type}
	stmts := append([]ast.Statement{bareDecl}, s.splitValue(destRef, srcExpr, destType)...)

	return transform.ReplaceStmt(multi(stmts...))
}

// splitValue builds the statements copying src into dst field by field
// (recursing into nested structs and fixed arrays), or a single assignment
// when t is a leaf type.
func (s *StructAssignSplitter) splitValue(dst, src ast.Expression, t types.Type) []ast.Statement {
	switch n := types.ResolveAlias(t).(type) {
	case *types.Struct, *types.Uniform, *types.Storage, *types.PushConstant:
		structRef, _ := structRefOf(n)
		desc := s.ctx.StructDescription(structRef)
		if desc == nil {
			return []ast.Statement{assignStmt(dst, src, t)}
		}
		var stmts []ast.Statement
		for i, m := range desc.Members {
			if m.Cond.IsResolved() && !m.Cond.GetResultingValue() {
				continue
			}
			fieldType := m.Type.GetResultingValue()
			dstField := &ast.AccessFieldExpr{FieldIndex: uint32(i), Expr: copyExpr(dst)}
			dstField.SetCachedType(fieldType)
			srcField := &ast.AccessFieldExpr{FieldIndex: uint32(i), Expr: copyExpr(src)}
			srcField.SetCachedType(fieldType)
			stmts = append(stmts, s.splitValue(dstField, srcField, fieldType)...)
		}
		return stmts
	case *types.Array:
		var stmts []ast.Statement
		for i := uint32(0); i < n.Length; i++ {
			dstElem := &ast.AccessIndexExpr{Expr: copyExpr(dst), Indices: []ast.Expression{constOf(types.U32, i)}}
			dstElem.SetCachedType(n.Inner)
			srcElem := &ast.AccessIndexExpr{Expr: copyExpr(src), Indices: []ast.Expression{constOf(types.U32, i)}}
			srcElem.SetCachedType(n.Inner)
			stmts = append(stmts, s.splitValue(dstElem, srcElem, n.Inner)...)
		}
		return stmts
	default:
		return []ast.Statement{assignStmt(dst, src, t)}
	}
}

func assignStmt(dst, src ast.Expression, t types.Type) ast.Statement {
	assign := &ast.AssignExpr{Op: ast.AssignSimple, Left: dst, Right: src}
	assign.SetCachedType(t)
	return &ast.ExpressionStmt{Expression: assign}
}
