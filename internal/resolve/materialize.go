package resolve

import (
	"strconv"
	"strings"

	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/diagnostic"
	"github.com/nzsl-go/nzsl/internal/transform"
	"github.com/nzsl-go/nzsl/internal/types"
)

// reservedTypeData builds the TypeData bootstrap registers for one of
// builtins.ReservedTypeNames(): either a concrete primitive, or a partial
// type constructor awaiting arguments via an AccessIndexExpr (`vec3[f32]`).
func reservedTypeData(name string) (transform.TypeData, bool) {
	switch name {
	case "bool":
		return transform.TypeData{Name: name, Concrete: types.NewPrimitive(types.Bool)}, true
	case "i32":
		return transform.TypeData{Name: name, Concrete: types.NewPrimitive(types.I32)}, true
	case "u32":
		return transform.TypeData{Name: name, Concrete: types.NewPrimitive(types.U32)}, true
	case "f32":
		return transform.TypeData{Name: name, Concrete: types.NewPrimitive(types.F32)}, true
	case "f64":
		return transform.TypeData{Name: name, Concrete: types.NewPrimitive(types.F64)}, true
	case "string":
		return transform.TypeData{Name: name, Concrete: types.NewPrimitive(types.String)}, true
	case "array":
		return partialType(name, 2, 2, true), true
	case "dyn_array":
		return partialType(name, 1, 1, true), true
	case "uniform", "push_constant":
		return partialType(name, 1, 1, true), true
	case "storage":
		return partialType(name, 2, 2, true), true
	}
	if strings.HasPrefix(name, "vec") {
		return partialType(name, 1, 1, true), true
	}
	if strings.HasPrefix(name, "mat") {
		return partialType(name, 1, 1, true), true
	}
	if strings.HasPrefix(name, "depth_sampler") {
		return partialType(name, 1, 1, true), true
	}
	if strings.HasPrefix(name, "sampler") {
		return partialType(name, 1, 1, true), true
	}
	if strings.HasPrefix(name, "texture_storage") {
		return partialType(name, 2, 2, true), true
	}
	if strings.HasPrefix(name, "texture") {
		return partialType(name, 1, 1, true), true
	}
	return transform.TypeData{}, false
}

func partialType(name string, min, max int, required bool) transform.TypeData {
	return transform.TypeData{
		Name:    name,
		Partial: &transform.PartialType{Name: name, MinArgs: min, MaxArgs: max, ArgsRequired: required},
	}
}

var dimensionByName = map[string]types.Dimension{
	"1D":   types.Dim1D,
	"2D":   types.Dim2D,
	"3D":   types.Dim3D,
	"Cube": types.DimCube,
}

func dimensionSuffix(name, prefix string) (types.Dimension, bool) {
	suffix := strings.TrimPrefix(name, prefix)
	d, ok := dimensionByName[suffix]
	return d, ok
}

// resolveTypeValue resolves an ExpressionValue[types.Type]'s raw wrapped
// expression through the ordinary value-expression path, then extracts the
// concrete type it names.
func (r *Resolver) resolveTypeValue(e ast.Expression) (types.Type, *diagnostic.Error) {
	resolved, err := r.resolveExpr(e)
	if err != nil {
		return nil, err
	}
	return r.typeFromValueExpr(resolved)
}

// typeFromValueExpr extracts the concrete types.Type a resolved expression
// names. TypeExpr/StructTypeExpr/AliasValueExpr name a single symbol;
// AccessIndexExpr is how a compound/instantiated type (`vec3[f32]`,
// `array[f32, 4]`, `storage[S, readonly]`) reaches here, already
// materialized into a concrete type by resolveAccessIndex and cached
// directly on the node rather than registered as a fresh ref.Type, since
// types.Type compares structurally and an index-table identity buys
// nothing for an anonymous instantiation.
func (r *Resolver) typeFromValueExpr(e ast.Expression) (types.Type, *diagnostic.Error) {
	switch ex := e.(type) {
	case *ast.TypeExpr:
		data, ok := r.ctx.Type(ex.TypeRef)
		if !ok {
			return nil, r.internalErr(ex.Location(), "dangling type reference")
		}
		if data.Concrete == nil {
			return nil, r.errAt(ex.Location(), diagnostic.PartialTypeExpect, "%q needs type arguments", data.Name)
		}
		return data.Concrete, nil
	case *ast.StructTypeExpr:
		sd, ok := r.ctx.Struct(ex.StructRef)
		if !ok {
			return nil, r.internalErr(ex.Location(), "dangling struct reference")
		}
		return &types.Struct{StructRef: ex.StructRef, Name: sd.Description.Name}, nil
	case *ast.AliasValueExpr:
		ad, ok := r.ctx.Alias(ex.AliasRef)
		if !ok {
			return nil, r.internalErr(ex.Location(), "dangling alias reference")
		}
		return &types.Alias{Name: ad.Name, Target: ad.TargetType}, nil
	case *ast.AccessIndexExpr:
		if ex.CachedType() == nil {
			return nil, r.internalErr(ex.Location(), "compound type instantiation left uncached")
		}
		return ex.CachedType(), nil
	default:
		return nil, r.errAt(e.Location(), diagnostic.ExpectedPartialType, "expression does not name a type")
	}
}

// materializePartial builds the concrete type a partial type constructor
// instantiates to, given its already-resolved argument expressions.
func (r *Resolver) materializePartial(pt *transform.PartialType, args []ast.Expression, loc ast.Loc) (types.Type, *diagnostic.Error) {
	name := pt.Name
	switch {
	case strings.HasPrefix(name, "vec"):
		count, _ := strconv.Atoi(strings.TrimPrefix(name, "vec"))
		elem, err := r.scalarTypeArg(args[0])
		if err != nil {
			return nil, err
		}
		return &types.Vector{Count: uint8(count), Elem: elem}, nil

	case strings.HasPrefix(name, "mat"):
		dims := strings.SplitN(strings.TrimPrefix(name, "mat"), "x", 2)
		cols, _ := strconv.Atoi(dims[0])
		rows, _ := strconv.Atoi(dims[1])
		elem, err := r.scalarTypeArg(args[0])
		if err != nil {
			return nil, err
		}
		if elem != types.F32 && elem != types.F64 {
			return nil, r.errAt(loc, diagnostic.PartialTypeExpect, "matrix element type must be f32 or f64")
		}
		return &types.Matrix{Cols: uint8(cols), Rows: uint8(rows), Elem: elem}, nil

	case name == "array":
		inner, err := r.typeFromValueExpr(args[0])
		if err != nil {
			return nil, err
		}
		length, err := r.evalConstUint32Expr(args[1])
		if err != nil {
			return nil, err
		}
		return &types.Array{Inner: inner, Length: length}, nil

	case name == "dyn_array":
		inner, err := r.typeFromValueExpr(args[0])
		if err != nil {
			return nil, err
		}
		return &types.DynArray{Inner: inner}, nil

	case name == "uniform":
		s, err := r.structTypeArg(args[0])
		if err != nil {
			return nil, err
		}
		return &types.Uniform{StructRef: s.StructRef}, nil

	case name == "push_constant":
		s, err := r.structTypeArg(args[0])
		if err != nil {
			return nil, err
		}
		return &types.PushConstant{StructRef: s.StructRef}, nil

	case name == "storage":
		s, err := r.structTypeArg(args[0])
		if err != nil {
			return nil, err
		}
		access, err := r.evalConstAccessMode(args[1])
		if err != nil {
			return nil, err
		}
		return &types.Storage{StructRef: s.StructRef, Access: access}, nil

	case strings.HasPrefix(name, "depth_sampler"):
		dim, ok := dimensionSuffix(name, "depth_sampler")
		if !ok {
			return nil, r.internalErr(loc, "unrecognized depth sampler dimension in %q", name)
		}
		elem, err := r.scalarTypeArg(args[0])
		if err != nil {
			return nil, err
		}
		return &types.Sampler{Dim: dim, Sampled: elem, Depth: true}, nil

	case strings.HasPrefix(name, "sampler"):
		dim, ok := dimensionSuffix(name, "sampler")
		if !ok {
			return nil, r.internalErr(loc, "unrecognized sampler dimension in %q", name)
		}
		elem, err := r.scalarTypeArg(args[0])
		if err != nil {
			return nil, err
		}
		return &types.Sampler{Dim: dim, Sampled: elem}, nil

	case strings.HasPrefix(name, "texture_storage"):
		dim, ok := dimensionSuffix(name, "texture_storage")
		if !ok {
			return nil, r.internalErr(loc, "unrecognized texture dimension in %q", name)
		}
		format, err := r.evalConstFormatName(args[0])
		if err != nil {
			return nil, err
		}
		access, err := r.evalConstAccessMode(args[1])
		if err != nil {
			return nil, err
		}
		return &types.Texture{Dim: dim, Format: format, Access: access}, nil

	case strings.HasPrefix(name, "texture"):
		dim, ok := dimensionSuffix(name, "texture")
		if !ok {
			return nil, r.internalErr(loc, "unrecognized texture dimension in %q", name)
		}
		elem, err := r.scalarTypeArg(args[0])
		if err != nil {
			return nil, err
		}
		return &types.Texture{Dim: dim, Sampled: elem}, nil
	}
	return nil, r.internalErr(loc, "unrecognized partial type %q", name)
}

func (r *Resolver) scalarTypeArg(e ast.Expression) (types.PrimitiveKind, *diagnostic.Error) {
	t, err := r.typeFromValueExpr(e)
	if err != nil {
		return 0, err
	}
	k, ok := types.ScalarKind(t)
	if !ok {
		return 0, r.errAt(e.Location(), diagnostic.PartialTypeExpect, "expected a scalar type, got %s", t)
	}
	return k, nil
}

func (r *Resolver) structTypeArg(e ast.Expression) (*types.Struct, *diagnostic.Error) {
	t, err := r.typeFromValueExpr(e)
	if err != nil {
		return nil, err
	}
	s, ok := types.ResolveAlias(t).(*types.Struct)
	if !ok {
		return nil, r.errAt(e.Location(), diagnostic.StructExpected, "expected a struct type, got %s", t)
	}
	return s, nil
}
