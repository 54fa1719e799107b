// Package layout implements the FieldOffsets arithmetic: for each
// struct member, its byte offset given a memory layout (Packed, Std140,
// Std430). A StructLookup callback supplies struct field lists, since the
// ast package carries no symbol table of its own.
package layout

import (
	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/ref"
	"github.com/nzsl-go/nzsl/internal/types"
)

// TypeLayout holds size/alignment/stride information for a resolved type.
type TypeLayout struct {
	Size      uint32
	Alignment uint32
	Stride    uint32 // non-zero only for Array/DynArray
}

// Field is one member's resolved offset inside its enclosing struct.
type Field struct {
	Name   string
	Offset uint32
	TypeLayout
}

// StructLayout is the computed layout of a whole struct under one memory
// layout mode.
type StructLayout struct {
	Size      uint32
	Alignment uint32
	Fields    []Field
}

// StructLookup resolves a struct reference to its member declarations,
// supplied by whatever symbol table currently owns struct descriptions
// (the resolver's transform.Context in the full pipeline).
type StructLookup func(ref.Struct) *ast.StructDescription

// Computer computes layouts for a fixed memory layout mode, caching struct
// layouts by struct reference since a struct's layout does not depend on
// where it is used.
type Computer struct {
	mode    ast.MemoryLayout
	structs StructLookup
	cache   map[ref.Struct]*StructLayout
}

// NewComputer creates a layout computer for one memory layout mode.
func NewComputer(mode ast.MemoryLayout, structs StructLookup) *Computer {
	return &Computer{mode: mode, structs: structs, cache: make(map[ref.Struct]*StructLayout)}
}

// ComputePackedLayout computes a struct's layout with no layout-induced
// padding: every field sits at its natural alignment only.
func ComputePackedLayout(s ref.Struct, structs StructLookup) *StructLayout {
	return NewComputer(ast.LayoutPacked, structs).StructLayoutOf(s)
}

// ComputeStd140Layout computes a struct's layout under std140 rules: vec3
// aligns to 16, arrays stride to a 16-byte-aligned element, nested structs
// round their size up to 16.
func ComputeStd140Layout(s ref.Struct, structs StructLookup) *StructLayout {
	return NewComputer(ast.LayoutStd140, structs).StructLayoutOf(s)
}

// ComputeStd430Layout computes a struct's layout under std430 rules: like
// std140 but arrays and nested structs do not force 16-byte rounding.
func ComputeStd430Layout(s ref.Struct, structs StructLookup) *StructLayout {
	return NewComputer(ast.LayoutStd430, structs).StructLayoutOf(s)
}

// ComputeType computes the size/alignment/stride of any resolved type under
// the computer's layout mode.
func (c *Computer) ComputeType(t types.Type) TypeLayout {
	if t == nil {
		return TypeLayout{}
	}
	switch typ := t.(type) {
	case *types.Primitive:
		return primitiveLayout(typ.Kind)
	case *types.Vector:
		return c.vectorLayout(typ)
	case *types.Matrix:
		return c.matrixLayout(typ)
	case *types.Array:
		return c.arrayLayout(c.ComputeType(typ.Inner), typ.Length)
	case *types.DynArray:
		elem := c.ComputeType(typ.Inner)
		return TypeLayout{Alignment: elem.Alignment, Stride: roundUp(elem.Size, elem.Alignment)}
	case *types.Alias:
		return c.ComputeType(typ.Target)
	case *types.Struct:
		if sl := c.StructLayoutOf(typ.StructRef); sl != nil {
			return TypeLayout{Size: sl.Size, Alignment: sl.Alignment}
		}
		return TypeLayout{}
	case *types.Uniform:
		if sl := c.StructLayoutOf(typ.StructRef); sl != nil {
			return TypeLayout{Size: sl.Size, Alignment: sl.Alignment}
		}
		return TypeLayout{}
	case *types.Storage:
		if sl := c.StructLayoutOf(typ.StructRef); sl != nil {
			return TypeLayout{Size: sl.Size, Alignment: sl.Alignment}
		}
		return TypeLayout{}
	case *types.PushConstant:
		if sl := c.StructLayoutOf(typ.StructRef); sl != nil {
			return TypeLayout{Size: sl.Size, Alignment: sl.Alignment}
		}
		return TypeLayout{}
	default:
		// Sampler, Texture, Function, Method, Intrinsic, NamedType and NoType
		// have no host-addressable layout.
		return TypeLayout{}
	}
}

func primitiveLayout(kind types.PrimitiveKind) TypeLayout {
	switch kind {
	case types.Bool, types.I32, types.U32, types.F32:
		return TypeLayout{Size: 4, Alignment: 4}
	case types.F64:
		return TypeLayout{Size: 8, Alignment: 8}
	default:
		// Untyped literals never reach layout computation: littype concretizes
		// them before a struct member's type can carry one.
		return TypeLayout{}
	}
}

// vectorLayout follows the uniform rule shared by std140/std430/SPIR-V:
// vec2 aligns to 2 elements, vec3/vec4 align to 4 elements. Packed layout
// aligns every vector, whatever its count, to its element's alignment.
func (c *Computer) vectorLayout(v *types.Vector) TypeLayout {
	elem := primitiveLayout(v.Elem)
	size := elem.Size * uint32(v.Count)
	align := elem.Size * uint32(v.Count)
	switch v.Count {
	case 3:
		if c.mode == ast.LayoutPacked {
			align = elem.Size
		} else {
			align = elem.Size * 4
		}
	case 2, 4:
		// already correct
	default:
		align = elem.Size
	}
	if c.mode == ast.LayoutPacked {
		align = elem.Alignment
	}
	return TypeLayout{Size: size, Alignment: align}
}

// matrixLayout stores a matrix as Cols column vectors of Rows elements;
// AlignOf(matrix) = AlignOf(column vector), SizeOf = Cols * roundUp(size,
// align) of the column vector.
func (c *Computer) matrixLayout(m *types.Matrix) TypeLayout {
	col := c.vectorLayout(&types.Vector{Count: m.Rows, Elem: m.Elem})
	stride := roundUp(col.Size, col.Alignment)
	return TypeLayout{Size: uint32(m.Cols) * stride, Alignment: col.Alignment, Stride: stride}
}

// arrayLayout applies the std140-specific "array stride rounds to 16" rule;
// std430 and Packed only round the stride to the element's own alignment.
func (c *Computer) arrayLayout(elem TypeLayout, length uint32) TypeLayout {
	align := elem.Alignment
	if c.mode == ast.LayoutStd140 && align < 16 {
		align = 16
	}
	stride := roundUp(elem.Size, align)
	return TypeLayout{Size: stride * length, Alignment: align, Stride: stride}
}

// StructLayoutOf computes (and caches) the layout of a struct by reference.
func (c *Computer) StructLayoutOf(s ref.Struct) *StructLayout {
	if !s.IsValid() || c.structs == nil {
		return nil
	}
	if cached, ok := c.cache[s]; ok {
		return cached
	}
	desc := c.structs(s)
	if desc == nil {
		return nil
	}

	layout := &StructLayout{Fields: make([]Field, 0, len(desc.Members))}
	c.cache[s] = layout // placeholder, guards against recursive struct refs

	var offset uint32
	var maxAlign uint32 = 1
	for _, member := range desc.Members {
		if !member.Type.IsResolved() {
			continue
		}
		ml := c.ComputeType(member.Type.GetResultingValue())
		if ml.Alignment == 0 {
			ml.Alignment = 1
		}
		if c.mode == ast.LayoutStd140 {
			if _, isStruct := member.Type.GetResultingValue().(*types.Struct); isStruct {
				if ml.Alignment < 16 {
					ml.Alignment = 16
				}
				ml.Size = roundUp(ml.Size, 16)
			}
		}
		offset = roundUp(offset, ml.Alignment)
		layout.Fields = append(layout.Fields, Field{Name: member.Name, Offset: offset, TypeLayout: ml})
		offset += ml.Size
		if ml.Alignment > maxAlign {
			maxAlign = ml.Alignment
		}
	}

	layout.Alignment = maxAlign
	layout.Size = roundUp(offset, maxAlign)
	return layout
}

// roundUp rounds x up to the nearest multiple of align.
func roundUp(x, align uint32) uint32 {
	if align == 0 {
		return x
	}
	return ((x + align - 1) / align) * align
}
