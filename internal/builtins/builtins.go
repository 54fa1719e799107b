// Package builtins defines the fixed table of intrinsic functions and the
// reserved type-constructor names the resolver bootstraps every module
// with.
package builtins

import (
	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/types"
)

// Overload is a single callable shape for an intrinsic. Either Params/Return
// are set for a fixed signature, or Matcher handles parametric shapes
// (e.g. "N-component vector of float, any N").
type Overload struct {
	Params    []types.Type
	Return    types.Type
	Matcher   func(args []types.Type) (types.Type, bool)
	ConstEval bool
}

// Builtin is one entry in the intrinsic table.
type Builtin struct {
	Name      string
	Kind      ast.IntrinsicKind
	Overloads []Overload
}

// Table maps intrinsic names (as they appear pre-resolution, in an
// IntrinsicFunctionExpr) to their definitions.
var Table = make(map[string]*Builtin)

// byKind indexes the same entries by IntrinsicKind, for the post-resolution
// IntrinsicExpr form.
var byKind = make(map[ast.IntrinsicKind]*Builtin)

func init() {
	registerVectorOps()
	registerMath()
	registerTexture()
	registerMisc()
}

// Lookup returns the intrinsic with the given pre-resolution name, or nil.
func Lookup(name string) *Builtin { return Table[name] }

// ByKind returns the intrinsic definition for an already-resolved kind, or nil.
func ByKind(k ast.IntrinsicKind) *Builtin { return byKind[k] }

// IsBuiltin reports whether name names an intrinsic function.
func IsBuiltin(name string) bool { return Table[name] != nil }

// ResolveOverload finds the overload matching args, returning its result
// type. Direct parameter lists use exact Equals; nil entries in Params
// match any type.
func ResolveOverload(b *Builtin, args []types.Type) (types.Type, bool) {
	for _, ov := range b.Overloads {
		if ov.Matcher != nil {
			if ret, ok := ov.Matcher(args); ok {
				return ret, true
			}
			continue
		}
		if len(args) != len(ov.Params) {
			continue
		}
		match := true
		for i, p := range ov.Params {
			if p == nil {
				continue
			}
			if !args[i].Equals(p) {
				match = false
				break
			}
		}
		if match {
			return ov.Return, true
		}
	}
	return nil, false
}

func register(b *Builtin) {
	Table[b.Name] = b
	byKind[b.Kind] = b
}

// ----------------------------------------------------------------------------
// Matchers
// ----------------------------------------------------------------------------

// matchFloatUnary accepts a float scalar or vector and returns the same type.
func matchFloatUnary(args []types.Type) (types.Type, bool) {
	if len(args) != 1 {
		return nil, false
	}
	if k, ok := types.ScalarKind(args[0]); ok && k.IsFloat() {
		return args[0], true
	}
	return nil, false
}

// matchFloatBinary accepts two operands of the same float scalar/vector type.
func matchFloatBinary(args []types.Type) (types.Type, bool) {
	if len(args) != 2 {
		return nil, false
	}
	k0, ok0 := types.ScalarKind(args[0])
	if !ok0 || !k0.IsFloat() || !args[0].Equals(args[1]) {
		return nil, false
	}
	return args[0], true
}

// matchNumericUnary accepts any numeric scalar/vector and returns it unchanged.
func matchNumericUnary(args []types.Type) (types.Type, bool) {
	if len(args) != 1 {
		return nil, false
	}
	if _, ok := types.ScalarKind(args[0]); ok {
		return args[0], true
	}
	return nil, false
}

// matchNumericBinary accepts two identically-typed numeric operands.
func matchNumericBinary(args []types.Type) (types.Type, bool) {
	if len(args) != 2 {
		return nil, false
	}
	if _, ok := types.ScalarKind(args[0]); !ok || !args[0].Equals(args[1]) {
		return nil, false
	}
	return args[0], true
}

// matchDot accepts two vectors of the same float kind and returns the scalar.
func matchDot(args []types.Type) (types.Type, bool) {
	if len(args) != 2 || !args[0].Equals(args[1]) {
		return nil, false
	}
	v, ok := types.ResolveAlias(args[0]).(*types.Vector)
	if !ok || !v.Elem.IsFloat() {
		return nil, false
	}
	return types.NewPrimitive(v.Elem), true
}

// matchCross accepts two vec3 of the same float kind, returns the same vec3.
func matchCross(args []types.Type) (types.Type, bool) {
	if len(args) != 2 || !args[0].Equals(args[1]) {
		return nil, false
	}
	v, ok := types.ResolveAlias(args[0]).(*types.Vector)
	if !ok || v.Count != 3 || !v.Elem.IsFloat() {
		return nil, false
	}
	return args[0], true
}

// matchLength accepts a float vector, returns the element scalar.
func matchLength(args []types.Type) (types.Type, bool) {
	if len(args) != 1 {
		return nil, false
	}
	v, ok := types.ResolveAlias(args[0]).(*types.Vector)
	if !ok || !v.Elem.IsFloat() {
		return nil, false
	}
	return types.NewPrimitive(v.Elem), true
}

// matchDistance accepts two identically-typed float vectors, returns the
// element scalar.
func matchDistance(args []types.Type) (types.Type, bool) {
	if len(args) != 2 || !args[0].Equals(args[1]) {
		return nil, false
	}
	v, ok := types.ResolveAlias(args[0]).(*types.Vector)
	if !ok || !v.Elem.IsFloat() {
		return nil, false
	}
	return types.NewPrimitive(v.Elem), true
}

// matchNormalizeReflect accepts a float vector (normalize, one operand) or
// two identically-typed float vectors (reflect), returns the operand type.
func matchNormalizeReflect(args []types.Type) (types.Type, bool) {
	if len(args) != 1 && len(args) != 2 {
		return nil, false
	}
	if len(args) == 2 && !args[0].Equals(args[1]) {
		return nil, false
	}
	v, ok := types.ResolveAlias(args[0]).(*types.Vector)
	if !ok || !v.Elem.IsFloat() {
		return nil, false
	}
	return args[0], true
}

// matchClamp accepts three identically-typed numeric operands.
func matchClamp(args []types.Type) (types.Type, bool) {
	if len(args) != 3 {
		return nil, false
	}
	if _, ok := types.ScalarKind(args[0]); !ok {
		return nil, false
	}
	if !args[0].Equals(args[1]) || !args[0].Equals(args[2]) {
		return nil, false
	}
	return args[0], true
}

// matchLerp accepts two identically-typed float operands plus a third that
// is either the same type or a bare float scalar factor.
func matchLerp(args []types.Type) (types.Type, bool) {
	if len(args) != 3 {
		return nil, false
	}
	k0, ok0 := types.ScalarKind(args[0])
	if !ok0 || !k0.IsFloat() || !args[0].Equals(args[1]) {
		return nil, false
	}
	if args[2].Equals(args[0]) {
		return args[0], true
	}
	if _, isScalar := types.ResolveAlias(args[2]).(*types.Primitive); isScalar {
		if k2, ok := types.ScalarKind(args[2]); ok && k2.IsFloat() {
			return args[0], true
		}
	}
	return nil, false
}

// matchArraySize accepts any array or dyn-array and returns u32.
func matchArraySize(args []types.Type) (types.Type, bool) {
	if len(args) != 1 {
		return nil, false
	}
	switch types.ResolveAlias(args[0]).(type) {
	case *types.Array, *types.DynArray:
		return types.NewPrimitive(types.U32), true
	default:
		return nil, false
	}
}

// matchMatrixTranspose accepts any matrix, returns its transpose shape.
func matchMatrixTranspose(args []types.Type) (types.Type, bool) {
	if len(args) != 1 {
		return nil, false
	}
	m, ok := types.ResolveAlias(args[0]).(*types.Matrix)
	if !ok {
		return nil, false
	}
	return &types.Matrix{Cols: m.Rows, Rows: m.Cols, Elem: m.Elem}, true
}

// matchMatrixInverse accepts a square matrix, returns it unchanged.
func matchMatrixInverse(args []types.Type) (types.Type, bool) {
	if len(args) != 1 {
		return nil, false
	}
	m, ok := types.ResolveAlias(args[0]).(*types.Matrix)
	if !ok || m.Cols != m.Rows {
		return nil, false
	}
	return args[0], true
}

// matchSelect accepts two identically-typed operands plus a bool condition
// (scalar or matching-width vector), returns the operand type.
func matchSelect(args []types.Type) (types.Type, bool) {
	if len(args) != 3 || !args[0].Equals(args[1]) {
		return nil, false
	}
	switch c := types.ResolveAlias(args[2]).(type) {
	case *types.Primitive:
		if c.Kind != types.Bool {
			return nil, false
		}
	case *types.Vector:
		if c.Elem != types.Bool {
			return nil, false
		}
	default:
		return nil, false
	}
	return args[0], true
}

func registerVectorOps() {
	register(&Builtin{
		Name: "dot", Kind: ast.IntrinsicDotProduct,
		Overloads: []Overload{{Matcher: matchDot, ConstEval: true}},
	})
	register(&Builtin{
		Name: "cross", Kind: ast.IntrinsicCrossProduct,
		Overloads: []Overload{{Matcher: matchCross, ConstEval: true}},
	})
	register(&Builtin{
		Name: "length", Kind: ast.IntrinsicLength,
		Overloads: []Overload{{Matcher: matchLength, ConstEval: true}},
	})
	register(&Builtin{
		Name: "distance", Kind: ast.IntrinsicDistance,
		Overloads: []Overload{{Matcher: matchDistance, ConstEval: true}},
	})
	register(&Builtin{
		Name: "normalize", Kind: ast.IntrinsicNormalize,
		Overloads: []Overload{{Matcher: matchNormalizeReflect}},
	})
	register(&Builtin{
		Name: "reflect", Kind: ast.IntrinsicReflect,
		Overloads: []Overload{{Matcher: matchNormalizeReflect}},
	})
	register(&Builtin{
		Name: "inverse", Kind: ast.IntrinsicMatrixInverse,
		Overloads: []Overload{{Matcher: matchMatrixInverse}},
	})
	register(&Builtin{
		Name: "transpose", Kind: ast.IntrinsicMatrixTranspose,
		Overloads: []Overload{{Matcher: matchMatrixTranspose, ConstEval: true}},
	})
}

func registerMath() {
	unary := []struct {
		name string
		kind ast.IntrinsicKind
	}{
		{"sin", ast.IntrinsicSin}, {"sinh", ast.IntrinsicSinh},
		{"cos", ast.IntrinsicCos}, {"cosh", ast.IntrinsicCosh},
		{"tan", ast.IntrinsicTan}, {"tanh", ast.IntrinsicTanh},
		{"asin", ast.IntrinsicArcSin}, {"asinh", ast.IntrinsicArcSinh},
		{"acos", ast.IntrinsicArcCos}, {"acosh", ast.IntrinsicArcCosh},
		{"atan", ast.IntrinsicArcTan}, {"atanh", ast.IntrinsicArcTanh},
		{"sqrt", ast.IntrinsicSqrt}, {"inverseSqrt", ast.IntrinsicInverseSqrt},
		{"round", ast.IntrinsicRound}, {"roundEven", ast.IntrinsicRoundEven},
		{"trunc", ast.IntrinsicTrunc}, {"floor", ast.IntrinsicFloor},
		{"ceil", ast.IntrinsicCeil}, {"fract", ast.IntrinsicFract},
		{"radToDeg", ast.IntrinsicRadToDeg}, {"degToRad", ast.IntrinsicDegToRad},
		{"log", ast.IntrinsicLog}, {"log2", ast.IntrinsicLog2},
		{"exp", ast.IntrinsicExp}, {"exp2", ast.IntrinsicExp2},
	}
	for _, u := range unary {
		register(&Builtin{
			Name: u.name, Kind: u.kind,
			Overloads: []Overload{{Matcher: matchFloatUnary, ConstEval: true}},
		})
	}
	register(&Builtin{
		Name: "atan2", Kind: ast.IntrinsicArcTan2,
		Overloads: []Overload{{Matcher: matchFloatBinary, ConstEval: true}},
	})
	register(&Builtin{
		Name: "pow", Kind: ast.IntrinsicPow,
		Overloads: []Overload{{Matcher: matchFloatBinary, ConstEval: true}},
	})
	register(&Builtin{
		Name: "abs", Kind: ast.IntrinsicAbs,
		Overloads: []Overload{{Matcher: matchNumericUnary, ConstEval: true}},
	})
	register(&Builtin{
		Name: "sign", Kind: ast.IntrinsicSign,
		Overloads: []Overload{{Matcher: matchNumericUnary, ConstEval: true}},
	})
	register(&Builtin{
		Name: "max", Kind: ast.IntrinsicMax,
		Overloads: []Overload{{Matcher: matchNumericBinary, ConstEval: true}},
	})
	register(&Builtin{
		Name: "min", Kind: ast.IntrinsicMin,
		Overloads: []Overload{{Matcher: matchNumericBinary, ConstEval: true}},
	})
	register(&Builtin{
		Name: "clamp", Kind: ast.IntrinsicClamp,
		Overloads: []Overload{{Matcher: matchClamp, ConstEval: true}},
	})
	register(&Builtin{
		Name: "lerp", Kind: ast.IntrinsicLerp,
		Overloads: []Overload{{Matcher: matchLerp, ConstEval: true}},
	})
}

func registerTexture() {
	register(&Builtin{
		Name: "textureSample", Kind: ast.IntrinsicTextureSampleImplicitLod,
		Overloads: []Overload{{Matcher: func(args []types.Type) (types.Type, bool) {
			if len(args) < 2 {
				return nil, false
			}
			s, ok := types.ResolveAlias(args[0]).(*types.Sampler)
			if !ok || s.Depth {
				return nil, false
			}
			return &types.Vector{Count: 4, Elem: s.Sampled}, true
		}}},
	})
	register(&Builtin{
		Name: "textureSampleDepthComp", Kind: ast.IntrinsicTextureSampleImplicitLodDepthComp,
		Overloads: []Overload{{Matcher: func(args []types.Type) (types.Type, bool) {
			if len(args) < 3 {
				return nil, false
			}
			s, ok := types.ResolveAlias(args[0]).(*types.Sampler)
			if !ok || !s.Depth {
				return nil, false
			}
			return types.NewPrimitive(types.F32), true
		}}},
	})
	register(&Builtin{
		Name: "textureRead", Kind: ast.IntrinsicTextureRead,
		Overloads: []Overload{{Matcher: func(args []types.Type) (types.Type, bool) {
			if len(args) < 2 {
				return nil, false
			}
			tex, ok := types.ResolveAlias(args[0]).(*types.Texture)
			if !ok {
				return nil, false
			}
			return &types.Vector{Count: 4, Elem: tex.Sampled}, true
		}}},
	})
	register(&Builtin{
		Name: "textureWrite", Kind: ast.IntrinsicTextureWrite,
		Overloads: []Overload{{Matcher: func(args []types.Type) (types.Type, bool) {
			if len(args) != 3 {
				return nil, false
			}
			tex, ok := types.ResolveAlias(args[0]).(*types.Texture)
			if !ok || tex.Access == types.AccessReadOnly {
				return nil, false
			}
			return types.NoType{}, true
		}}},
	})
}

func registerMisc() {
	register(&Builtin{
		Name: "arraySize", Kind: ast.IntrinsicArraySize,
		Overloads: []Overload{{Matcher: matchArraySize, ConstEval: true}},
	})
	register(&Builtin{
		Name: "select", Kind: ast.IntrinsicSelect,
		Overloads: []Overload{{Matcher: matchSelect, ConstEval: true}},
	})
}

// ----------------------------------------------------------------------------
// Reserved names
// ----------------------------------------------------------------------------

// ReservedTypeNames lists the primitive and partial-type-constructor
// identifiers the resolver reserves before it ever looks at user code:
// these occupy their own index space and cannot be redeclared.
func ReservedTypeNames() []string {
	names := []string{
		"bool", "i32", "u32", "f32", "f64", "string",
		"array", "dyn_array",
		"storage", "uniform", "push_constant",
	}
	for n := uint8(2); n <= 4; n++ {
		names = append(names, "vec"+digit(n))
	}
	for c := uint8(2); c <= 4; c++ {
		for r := uint8(2); r <= 4; r++ {
			names = append(names, "mat"+digit(c)+"x"+digit(r))
		}
	}
	for _, dim := range []string{"1D", "2D", "3D", "Cube"} {
		names = append(names, "sampler"+dim, "depth_sampler"+dim)
		names = append(names, "texture"+dim, "texture_storage"+dim)
	}
	return names
}

// ReservedConstantNames lists the access-policy and image-format constants
// reserved alongside the type names.
func ReservedConstantNames() []string {
	return []string{
		"readonly", "readwrite", "writeonly",
		"rgba8", "rgba16f", "rgba32f", "r8", "r32f", "rg8", "rg16f", "rg32f",
	}
}

func digit(n uint8) string { return string(rune('0' + n)) }
