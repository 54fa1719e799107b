package lowering

import (
	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/layout"
	"github.com/nzsl-go/nzsl/internal/ref"
	"github.com/nzsl-go/nzsl/internal/transform"
	"github.com/nzsl-go/nzsl/internal/types"
)

// fieldFixup records what happened to one struct member's original
// position: its new index (member insertion ahead of it shifts it) and,
// if its type changed too (an array wrapped for 16-byte alignment), the
// new field type.
type fieldFixup struct {
	newIndex uint32
	newType  types.Type
}

// Std140Padder makes the padding std140 needs explicit in the tree instead
// of leaving it implicit in a back-end's own layout arithmetic:
//
//   - an array whose element isn't naturally 16-byte aligned (e.g. f32) gets
//     its element type wrapped in a synthesized one-member struct padded out
//     to 16 bytes, and every access into such an array grows a trailing
//     `.value` field access to compensate;
//   - a struct gets an explicit padding member (an array of f32) inserted
//     wherever std140's alignment rules would otherwise leave an implicit
//     gap before the next member, or after the last member to round the
//     struct up to 16 bytes.
//
// Both rewrites change a struct's member list after everything upstream
// already resolved field accesses against the original one, so this pass
// also walks every AccessFieldExpr/AccessIndexExpr in the module fixing up
// the stale index and cached type left behind.
type Std140Padder struct {
	transform.BaseTransformer
	walker  *transform.Walker
	ctx     *transform.Context
	names   freshNames
	wrapped map[*types.Struct]types.Type         // synthesized element wrapper -> original element type
	fixups  map[ref.Struct]map[uint32]fieldFixup // struct -> original field index -> what changed
}

// PadStd140 rewrites every std140-layout struct declaration in mod and
// fixes up every access affected by the rewrite.
func PadStd140(mod *ast.Module, ctx *transform.Context) {
	p := &Std140Padder{
		ctx:     ctx,
		wrapped: map[*types.Struct]types.Type{},
		fixups:  map[ref.Struct]map[uint32]fieldFixup{},
	}
	w := transform.NewWalker(p, ctx)
	p.walker = w
	w.WalkModule(mod)
}

func (p *Std140Padder) VisitDeclareStruct(n *ast.DeclareStructStmt) transform.StmtResult {
	if n.Description.Layout.IsResolved() && n.Description.Layout.GetResultingValue() == ast.LayoutStd140 {
		typeChanges := p.wrapMisalignedArrays(&n.Description)
		p.insertPaddingMembers(n.StructRef, &n.Description, typeChanges)
	}
	return transform.DontVisitChildrenStmt()
}

// wrapMisalignedArrays replaces every array-typed member whose element isn't
// naturally 16-byte aligned with an array of a synthesized wrapper struct,
// declaring the wrapper just ahead of the struct that uses it. Returns the
// original-index -> new-type map for members it touched, for
// insertPaddingMembers to fold into the member's final fixup entry.
func (p *Std140Padder) wrapMisalignedArrays(desc *ast.StructDescription) map[uint32]types.Type {
	c := layout.NewComputer(ast.LayoutStd140, p.ctx.StructDescription)
	changed := map[uint32]types.Type{}
	for i := range desc.Members {
		m := &desc.Members[i]
		if !m.Type.IsResolved() {
			continue
		}
		arr, ok := types.ResolveAlias(m.Type.GetResultingValue()).(*types.Array)
		if !ok {
			continue
		}
		elemLayout := c.ComputeType(arr.Inner)
		if elemLayout.Alignment >= 16 {
			continue
		}

		wrapper := p.declareElementWrapper(arr.Inner, elemLayout.Size)
		p.wrapped[wrapper] = arr.Inner
		newType := &types.Array{Inner: wrapper, Length: arr.Length}
		m.Type = ast.ResolvedValue[types.Type](newType)
		changed[uint32(i)] = newType
	}
	return changed
}

// declareElementWrapper synthesizes `struct { value: T; _pad: [f32; N] }`
// padded out to 16 bytes and splices its declaration just before the
// current statement, returning the new struct's type.
func (p *Std140Padder) declareElementWrapper(elem types.Type, elemSize uint32) *types.Struct {
	name := p.names.next("Std140Pad")
	members := []ast.StructMember{{Name: "value", Type: ast.ResolvedValue[types.Type](elem)}}
	if gap := 16 - elemSize%16; gap < 16 {
		members = append(members, ast.StructMember{
			Name: "_pad",
			Type: ast.ResolvedValue[types.Type](&types.Array{Inner: types.NewPrimitive(types.F32), Length: gap / 4}),
		})
	}
	desc := ast.StructDescription{Name: name, Layout: ast.ResolvedValue(ast.LayoutStd140), Members: members}
	structRef, err := p.ctx.RegisterStruct(name, transform.StructData{Description: &desc})
	if err != nil {
		structRef = ref.InvalidStruct
	}
	decl := &ast.DeclareStructStmt{StructRef: structRef, IsExported: ast.ResolvedValue(false), Description: desc}
	p.walker.InsertBefore(decl)
	return &types.Struct{StructRef: structRef, Name: name}
}

// insertPaddingMembers adds an explicit `_pad` array-of-f32 member ahead of
// any member std140's authoritative layout would otherwise leave an
// implicit gap in front of, and a trailing one if the struct's size still
// needs rounding up to 16 after its last member. Every surviving original
// member's final index and (if wrapMisalignedArrays touched it) type is
// recorded in p.fixups so later accesses against the old shape can be
// repaired.
func (p *Std140Padder) insertPaddingMembers(self ref.Struct, desc *ast.StructDescription, typeChanges map[uint32]types.Type) {
	sl := layout.ComputeStd140Layout(self, p.ctx.StructDescription)
	if sl == nil || len(sl.Fields) != len(desc.Members) {
		return
	}

	fixups := map[uint32]fieldFixup{}
	var out []ast.StructMember
	var cursor uint32
	for i, m := range desc.Members {
		if gap := sl.Fields[i].Offset - cursor; gap > 0 {
			out = append(out, paddingMember(gap))
		}
		fixups[uint32(i)] = fieldFixup{newIndex: uint32(len(out)), newType: typeChanges[uint32(i)]}
		out = append(out, m)
		cursor = sl.Fields[i].Offset + sl.Fields[i].Size
	}
	if gap := roundUp16(sl.Size) - cursor; gap > 0 {
		out = append(out, paddingMember(gap))
	}
	desc.Members = out
	if self.IsValid() {
		p.fixups[self] = fixups
	}
}

func paddingMember(bytes uint32) ast.StructMember {
	return ast.StructMember{
		Name: "_pad",
		Type: ast.ResolvedValue[types.Type](&types.Array{Inner: types.NewPrimitive(types.F32), Length: bytes / 4}),
	}
}

func roundUp16(n uint32) uint32 {
	if n%16 == 0 {
		return n
	}
	return n + (16 - n%16)
}

// VisitAccessField repairs a field access against a struct this pass
// reshaped: the index moves if padding was inserted ahead of it, and the
// cached type changes if the field's own type was wrapped.
func (p *Std140Padder) VisitAccessField(n *ast.AccessFieldExpr) transform.ExprResult {
	p.walker.WalkExpression(&n.Expr)

	structRef, ok := structRefOf(n.Expr.CachedType())
	if !ok {
		return transform.DontVisitChildrenExpr()
	}
	fix, ok := p.fixups[structRef][n.FieldIndex]
	if !ok {
		return transform.DontVisitChildrenExpr()
	}
	n.FieldIndex = fix.newIndex
	if fix.newType != nil {
		n.SetCachedType(fix.newType)
	}
	return transform.DontVisitChildrenExpr()
}

// VisitAccessIndex fixes up an index into an array this pass wrapped: once
// the element type is a synthesized wrapper, reading element i now needs a
// trailing `.value` to get back to the original element's type.
func (p *Std140Padder) VisitAccessIndex(n *ast.AccessIndexExpr) transform.ExprResult {
	p.walker.WalkExpression(&n.Expr)
	for i := range n.Indices {
		p.walker.WalkExpression(&n.Indices[i])
	}

	arr, ok := types.ResolveAlias(n.Expr.CachedType()).(*types.Array)
	if !ok {
		return transform.DontVisitChildrenExpr()
	}
	wrapperStruct, ok := arr.Inner.(*types.Struct)
	if !ok {
		return transform.DontVisitChildrenExpr()
	}
	original, ok := p.wrapped[wrapperStruct]
	if !ok {
		return transform.DontVisitChildrenExpr()
	}

	n.SetCachedType(wrapperStruct)
	field := &ast.AccessFieldExpr{FieldIndex: 0, Expr: n}
	field.SetCachedType(original)
	return transform.ReplaceExpr(field)
}
