// Package types provides the SL type system used by the resolver, the
// constant-propagation pass, and the structural lowering passes.
package types

import (
	"fmt"
	"strings"

	"github.com/nzsl-go/nzsl/internal/ref"
)

// Type is the sum of every representable SL type. Two types are equal iff
// their tag and all carried attributes are equal; Alias is never equal to
// its target except under ResolveAlias.
type Type interface {
	String() string
	Equals(Type) bool
	isType()
}

// ----------------------------------------------------------------------------
// NoType
// ----------------------------------------------------------------------------

// NoType stands for "no type yet" (e.g. an unresolved expression).
type NoType struct{}

func (NoType) String() string     { return "<no type>" }
func (NoType) Equals(o Type) bool { _, ok := o.(NoType); return ok }
func (NoType) isType()            {}

// ----------------------------------------------------------------------------
// Primitive
// ----------------------------------------------------------------------------

// PrimitiveKind enumerates the scalar primitives, including the two untyped
// literal kinds.
type PrimitiveKind uint8

const (
	Bool PrimitiveKind = iota
	I32
	U32
	F32
	F64
	String
	IntLiteral
	FloatLiteral
)

func (k PrimitiveKind) String() string {
	switch k {
	case Bool:
		return "bool"
	case I32:
		return "i32"
	case U32:
		return "u32"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case String:
		return "string"
	case IntLiteral:
		return "{integer}"
	case FloatLiteral:
		return "{float}"
	default:
		return "<unknown primitive>"
	}
}

// IsUntyped reports whether this is one of the two literal kinds.
func (k PrimitiveKind) IsUntyped() bool { return k == IntLiteral || k == FloatLiteral }

// IsInteger reports whether the kind is i32, u32 or IntLiteral.
func (k PrimitiveKind) IsInteger() bool { return k == I32 || k == U32 || k == IntLiteral }

// IsFloat reports whether the kind is f32, f64 or FloatLiteral.
func (k PrimitiveKind) IsFloat() bool { return k == F32 || k == F64 || k == FloatLiteral }

// IsSigned reports whether negative values are representable.
func (k PrimitiveKind) IsSigned() bool { return k == I32 || k == IntLiteral || k.IsFloat() }

// Primitive is a scalar type.
type Primitive struct {
	Kind PrimitiveKind
}

func (p *Primitive) String() string { return p.Kind.String() }
func (p *Primitive) isType()        {}
func (p *Primitive) Equals(o Type) bool {
	op, ok := o.(*Primitive)
	return ok && op.Kind == p.Kind
}

// NewPrimitive is a constructor shorthand used throughout the resolver.
func NewPrimitive(k PrimitiveKind) *Primitive { return &Primitive{Kind: k} }

// ----------------------------------------------------------------------------
// Vector / Matrix
// ----------------------------------------------------------------------------

// Vector is a fixed-size (2, 3 or 4) component vector of a primitive kind.
type Vector struct {
	Count uint8
	Elem  PrimitiveKind
}

func (v *Vector) String() string {
	return fmt.Sprintf("vec%d[%s]", v.Count, v.Elem.String())
}
func (v *Vector) isType() {}
func (v *Vector) Equals(o Type) bool {
	ov, ok := o.(*Vector)
	return ok && ov.Count == v.Count && ov.Elem == v.Elem
}

// Matrix is a Cols x Rows matrix of column vectors of Elem, column-major.
type Matrix struct {
	Cols, Rows uint8
	Elem       PrimitiveKind
}

func (m *Matrix) String() string {
	return fmt.Sprintf("mat%dx%d[%s]", m.Cols, m.Rows, m.Elem.String())
}
func (m *Matrix) isType() {}
func (m *Matrix) Equals(o Type) bool {
	om, ok := o.(*Matrix)
	return ok && om.Cols == m.Cols && om.Rows == m.Rows && om.Elem == m.Elem
}

// ----------------------------------------------------------------------------
// Array / DynArray
// ----------------------------------------------------------------------------

// Array is a fixed-length array of Inner. Length is the element count.
type Array struct {
	Inner  Type
	Length uint32
}

func (a *Array) String() string {
	return fmt.Sprintf("array[%s, %d]", a.Inner.String(), a.Length)
}
func (a *Array) isType() {}
func (a *Array) Equals(o Type) bool {
	oa, ok := o.(*Array)
	return ok && oa.Length == a.Length && oa.Inner.Equals(a.Inner)
}

// DynArray is a runtime-sized array, only valid as the last member of a
// storage-qualified struct.
type DynArray struct {
	Inner Type
}

func (a *DynArray) String() string { return fmt.Sprintf("dyn_array[%s]", a.Inner.String()) }
func (a *DynArray) isType()        {}
func (a *DynArray) Equals(o Type) bool {
	oa, ok := o.(*DynArray)
	return ok && oa.Inner.Equals(a.Inner)
}

// ----------------------------------------------------------------------------
// Alias
// ----------------------------------------------------------------------------

// Alias wraps a target type under an alternate name. Alias(target=T) is
// never Equals to T; use ResolveAlias to peel it.
type Alias struct {
	Name   string
	Target Type
}

func (a *Alias) String() string { return a.Name }
func (a *Alias) isType()        {}
func (a *Alias) Equals(o Type) bool {
	oa, ok := o.(*Alias)
	return ok && oa.Name == a.Name && oa.Target.Equals(a.Target)
}

// ResolveAlias peels one or more Alias wrappers, returning the first
// non-alias type reached.
func ResolveAlias(t Type) Type {
	for {
		a, ok := t.(*Alias)
		if !ok {
			return t
		}
		t = a.Target
	}
}

// ----------------------------------------------------------------------------
// Struct and its qualified wrappers
// ----------------------------------------------------------------------------

// Struct refers to a struct declaration by stable index.
type Struct struct {
	StructRef ref.Struct
	Name      string // kept for diagnostics; not part of equality
}

func (s *Struct) String() string { return s.Name }
func (s *Struct) isType()        {}
func (s *Struct) Equals(o Type) bool {
	os, ok := o.(*Struct)
	return ok && os.StructRef == s.StructRef
}

// AccessMode qualifies a Storage external's read/write policy.
type AccessMode uint8

const (
	AccessNone AccessMode = iota
	AccessReadOnly
	AccessWriteOnly
	AccessReadWrite
)

func (a AccessMode) String() string {
	switch a {
	case AccessReadOnly:
		return "readonly"
	case AccessWriteOnly:
		return "writeonly"
	case AccessReadWrite:
		return "readwrite"
	default:
		return ""
	}
}

// Uniform is a uniform-buffer-qualified struct.
type Uniform struct {
	StructRef ref.Struct
}

func (u *Uniform) String() string { return fmt.Sprintf("uniform[struct#%d]", u.StructRef) }
func (u *Uniform) isType()        {}
func (u *Uniform) Equals(o Type) bool {
	ou, ok := o.(*Uniform)
	return ok && ou.StructRef == u.StructRef
}

// Storage is a storage-buffer-qualified struct with an access policy.
type Storage struct {
	StructRef ref.Struct
	Access    AccessMode
}

func (s *Storage) String() string {
	return fmt.Sprintf("storage[struct#%d, %s]", s.StructRef, s.Access)
}
func (s *Storage) isType() {}
func (s *Storage) Equals(o Type) bool {
	os, ok := o.(*Storage)
	return ok && os.StructRef == s.StructRef && os.Access == s.Access
}

// PushConstant is a push_constant-qualified struct.
type PushConstant struct {
	StructRef ref.Struct
}

func (p *PushConstant) String() string { return fmt.Sprintf("push_constant[struct#%d]", p.StructRef) }
func (p *PushConstant) isType()        {}
func (p *PushConstant) Equals(o Type) bool {
	op, ok := o.(*PushConstant)
	return ok && op.StructRef == p.StructRef
}

// ----------------------------------------------------------------------------
// Sampler / Texture
// ----------------------------------------------------------------------------

// Dimension is the sampler/texture dimensionality.
type Dimension uint8

const (
	Dim1D Dimension = iota
	Dim2D
	Dim2DArray
	Dim3D
	DimCube
	DimCubeArray
)

func (d Dimension) String() string {
	switch d {
	case Dim1D:
		return "1D"
	case Dim2D:
		return "2D"
	case Dim2DArray:
		return "2DArray"
	case Dim3D:
		return "3D"
	case DimCube:
		return "Cube"
	case DimCubeArray:
		return "CubeArray"
	default:
		return "?"
	}
}

// Sampler is a combined image+sampler type.
type Sampler struct {
	Dim     Dimension
	Sampled PrimitiveKind
	Depth   bool
}

func (s *Sampler) String() string {
	name := "sampler"
	if s.Depth {
		name = "depth_sampler"
	}
	return fmt.Sprintf("%s%s[%s]", name, s.Dim, s.Sampled)
}
func (s *Sampler) isType() {}
func (s *Sampler) Equals(o Type) bool {
	os, ok := o.(*Sampler)
	return ok && os.Dim == s.Dim && os.Sampled == s.Sampled && os.Depth == s.Depth
}

// Texture is a storage/sampled texture type bound directly (no sampler).
type Texture struct {
	Dim     Dimension
	Sampled PrimitiveKind
	Format  string // image format name, e.g. "rgba8"; empty for sampled textures
	Access  AccessMode
}

func (t *Texture) String() string {
	if t.Format != "" {
		return fmt.Sprintf("texture_storage%s[%s, %s]", t.Dim, t.Format, t.Access)
	}
	return fmt.Sprintf("texture%s[%s]", t.Dim, t.Sampled)
}
func (t *Texture) isType() {}
func (t *Texture) Equals(o Type) bool {
	ot, ok := o.(*Texture)
	return ok && ot.Dim == t.Dim && ot.Sampled == t.Sampled && ot.Format == t.Format && ot.Access == t.Access
}

// ----------------------------------------------------------------------------
// Function / Method / Intrinsic / named Type reference
// ----------------------------------------------------------------------------

// Function is the type of a function value referred to by index.
type Function struct {
	FuncRef ref.Function
}

func (f *Function) String() string { return fmt.Sprintf("fn#%d", f.FuncRef) }
func (f *Function) isType()        {}
func (f *Function) Equals(o Type) bool {
	of, ok := o.(*Function)
	return ok && of.FuncRef == f.FuncRef
}

// Method is the type of obj.name(...) where obj has ObjectType and name
// resolves to a built-in method, identified by an intrinsic index.
type Method struct {
	ObjectType Type
	MethodRef  ref.Intrinsic
}

func (m *Method) String() string {
	return fmt.Sprintf("%s.method#%d", m.ObjectType.String(), m.MethodRef)
}
func (m *Method) isType() {}
func (m *Method) Equals(o Type) bool {
	om, ok := o.(*Method)
	return ok && om.MethodRef == m.MethodRef && om.ObjectType.Equals(m.ObjectType)
}

// Intrinsic is the type of a bare intrinsic-function reference (e.g. before
// it is called).
type Intrinsic struct {
	IntrinsicRef ref.Intrinsic
}

func (i *Intrinsic) String() string { return fmt.Sprintf("intrinsic#%d", i.IntrinsicRef) }
func (i *Intrinsic) isType()        {}
func (i *Intrinsic) Equals(o Type) bool {
	oi, ok := o.(*Intrinsic)
	return ok && oi.IntrinsicRef == i.IntrinsicRef
}

// NamedType is the "Type(typeId)" variant: the type of a type-as-value
// expression (e.g. the callee of a cast or constructor call), referring to
// the type category's own table (partial types like vec3/array/mat4x4, or
// resolved aliases).
type NamedType struct {
	TypeRef ref.Type
	Name    string
}

func (t *NamedType) String() string { return t.Name }
func (t *NamedType) isType()        {}
func (t *NamedType) Equals(o Type) bool {
	ot, ok := o.(*NamedType)
	return ok && ot.TypeRef == t.TypeRef
}

// ----------------------------------------------------------------------------
// Helpers shared by the resolver, constant-propagation and literal-typing
// passes.
// ----------------------------------------------------------------------------

// IsScalarOrVectorOf reports whether t is a Primitive of kind k, or a Vector
// of kind k.
func IsScalarOrVectorOf(t Type, k PrimitiveKind) bool {
	switch tt := ResolveAlias(t).(type) {
	case *Primitive:
		return tt.Kind == k
	case *Vector:
		return tt.Elem == k
	default:
		return false
	}
}

// ScalarKind returns the element primitive kind of t if t is a Primitive or
// Vector, and ok=true; otherwise ok=false.
func ScalarKind(t Type) (k PrimitiveKind, ok bool) {
	switch tt := ResolveAlias(t).(type) {
	case *Primitive:
		return tt.Kind, true
	case *Vector:
		return tt.Elem, true
	default:
		return 0, false
	}
}

// CanConvertTo reports whether a value of type from may stand in for a
// value of type to without an explicit cast: identical types always do,
// and an untyped int/float literal (scalar or vector) converts to any
// concrete type in the same numeric family.
func CanConvertTo(from, to Type) bool {
	if from.Equals(to) {
		return true
	}
	fromK, fromOK := ScalarKind(from)
	toK, toOK := ScalarKind(to)
	if !fromOK || !toOK || !fromK.IsUntyped() {
		return false
	}
	fv, fromIsVec := ResolveAlias(from).(*Vector)
	tv, toIsVec := ResolveAlias(to).(*Vector)
	if fromIsVec != toIsVec {
		return false
	}
	if fromIsVec && fv.Count != tv.Count {
		return false
	}
	if fromK.IsInteger() {
		return toK.IsInteger()
	}
	return toK.IsFloat()
}

// CommonType returns a type both a and b can convert to, preferring the
// more concrete of the two, or nil if none exists.
func CommonType(a, b Type) Type {
	if a.Equals(b) {
		return a
	}
	if CanConvertTo(a, b) {
		return b
	}
	if CanConvertTo(b, a) {
		return a
	}
	return nil
}

// Describe renders a type list for diagnostic messages, e.g. "(i32, f32)".
func Describe(ts []Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		if t == nil {
			parts[i] = "<nil>"
			continue
		}
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
