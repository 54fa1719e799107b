package codec

import (
	"fmt"

	"github.com/nzsl-go/nzsl/internal/ref"
	"github.com/nzsl-go/nzsl/internal/types"
)

// Type tags. These are codec-local and never appear in the AST itself, so
// renumbering them only breaks compatibility with data written by an older
// build, not anything in-process.
const (
	typeNoType byte = iota
	typePrimitive
	typeVector
	typeMatrix
	typeArray
	typeDynArray
	typeAlias
	typeStruct
	typeUniform
	typeStorage
	typePushConstant
	typeSampler
	typeTexture
	typeFunction
	typeMethod
	typeIntrinsic
	typeNamedType
)

func (e *Encoder) WriteType(t types.Type) {
	switch v := t.(type) {
	case nil:
		e.WriteByte(typeNoType)
	case types.NoType:
		e.WriteByte(typeNoType)
	case *types.Primitive:
		e.WriteByte(typePrimitive)
		e.WriteByte(byte(v.Kind))
	case *types.Vector:
		e.WriteByte(typeVector)
		e.WriteByte(v.Count)
		e.WriteByte(byte(v.Elem))
	case *types.Matrix:
		e.WriteByte(typeMatrix)
		e.WriteByte(v.Cols)
		e.WriteByte(v.Rows)
		e.WriteByte(byte(v.Elem))
	case *types.Array:
		e.WriteByte(typeArray)
		e.WriteType(v.Inner)
		e.WriteUint32(v.Length)
	case *types.DynArray:
		e.WriteByte(typeDynArray)
		e.WriteType(v.Inner)
	case *types.Alias:
		e.WriteByte(typeAlias)
		e.WriteString(v.Name)
		e.WriteType(v.Target)
	case *types.Struct:
		e.WriteByte(typeStruct)
		e.WriteUint64(uint64(v.StructRef))
		e.WriteString(v.Name)
	case *types.Uniform:
		e.WriteByte(typeUniform)
		e.WriteUint64(uint64(v.StructRef))
	case *types.Storage:
		e.WriteByte(typeStorage)
		e.WriteUint64(uint64(v.StructRef))
		e.WriteByte(byte(v.Access))
	case *types.PushConstant:
		e.WriteByte(typePushConstant)
		e.WriteUint64(uint64(v.StructRef))
	case *types.Sampler:
		e.WriteByte(typeSampler)
		e.WriteByte(byte(v.Dim))
		e.WriteByte(byte(v.Sampled))
		e.WriteBool(v.Depth)
	case *types.Texture:
		e.WriteByte(typeTexture)
		e.WriteByte(byte(v.Dim))
		e.WriteByte(byte(v.Sampled))
		e.WriteString(v.Format)
		e.WriteByte(byte(v.Access))
	case *types.Function:
		e.WriteByte(typeFunction)
		e.WriteUint64(uint64(v.FuncRef))
	case *types.Method:
		e.WriteByte(typeMethod)
		e.WriteType(v.ObjectType)
		e.WriteUint64(uint64(v.MethodRef))
	case *types.Intrinsic:
		e.WriteByte(typeIntrinsic)
		e.WriteUint64(uint64(v.IntrinsicRef))
	case *types.NamedType:
		e.WriteByte(typeNamedType)
		e.WriteUint64(uint64(v.TypeRef))
		e.WriteString(v.Name)
	default:
		panic(fmt.Sprintf("codec: unhandled type %T", t))
	}
}

func (d *Decoder) ReadType() (types.Type, error) {
	tag, err := d.ReadByte()
	if err != nil {
		return nil, d.err("type tag", err)
	}
	switch tag {
	case typeNoType:
		return types.NoType{}, nil
	case typePrimitive:
		k, err := d.ReadByte()
		if err != nil {
			return nil, d.err("primitive kind", err)
		}
		return &types.Primitive{Kind: types.PrimitiveKind(k)}, nil
	case typeVector:
		count, err := d.ReadByte()
		if err != nil {
			return nil, d.err("vector count", err)
		}
		elem, err := d.ReadByte()
		if err != nil {
			return nil, d.err("vector elem", err)
		}
		return &types.Vector{Count: count, Elem: types.PrimitiveKind(elem)}, nil
	case typeMatrix:
		cols, err := d.ReadByte()
		if err != nil {
			return nil, d.err("matrix cols", err)
		}
		rows, err := d.ReadByte()
		if err != nil {
			return nil, d.err("matrix rows", err)
		}
		elem, err := d.ReadByte()
		if err != nil {
			return nil, d.err("matrix elem", err)
		}
		return &types.Matrix{Cols: cols, Rows: rows, Elem: types.PrimitiveKind(elem)}, nil
	case typeArray:
		inner, err := d.ReadType()
		if err != nil {
			return nil, err
		}
		length, err := d.ReadUint32()
		if err != nil {
			return nil, d.err("array length", err)
		}
		return &types.Array{Inner: inner, Length: length}, nil
	case typeDynArray:
		inner, err := d.ReadType()
		if err != nil {
			return nil, err
		}
		return &types.DynArray{Inner: inner}, nil
	case typeAlias:
		name, err := d.ReadString()
		if err != nil {
			return nil, d.err("alias name", err)
		}
		target, err := d.ReadType()
		if err != nil {
			return nil, err
		}
		return &types.Alias{Name: name, Target: target}, nil
	case typeStruct:
		idx, err := d.ReadUint64()
		if err != nil {
			return nil, d.err("struct ref", err)
		}
		name, err := d.ReadString()
		if err != nil {
			return nil, d.err("struct name", err)
		}
		return &types.Struct{StructRef: ref.Struct(idx), Name: name}, nil
	case typeUniform:
		idx, err := d.ReadUint64()
		if err != nil {
			return nil, d.err("uniform struct ref", err)
		}
		return &types.Uniform{StructRef: ref.Struct(idx)}, nil
	case typeStorage:
		idx, err := d.ReadUint64()
		if err != nil {
			return nil, d.err("storage struct ref", err)
		}
		access, err := d.ReadByte()
		if err != nil {
			return nil, d.err("storage access", err)
		}
		return &types.Storage{StructRef: ref.Struct(idx), Access: types.AccessMode(access)}, nil
	case typePushConstant:
		idx, err := d.ReadUint64()
		if err != nil {
			return nil, d.err("push_constant struct ref", err)
		}
		return &types.PushConstant{StructRef: ref.Struct(idx)}, nil
	case typeSampler:
		dim, err := d.ReadByte()
		if err != nil {
			return nil, d.err("sampler dim", err)
		}
		sampled, err := d.ReadByte()
		if err != nil {
			return nil, d.err("sampler sampled kind", err)
		}
		depth, err := d.ReadBool()
		if err != nil {
			return nil, d.err("sampler depth", err)
		}
		return &types.Sampler{Dim: types.Dimension(dim), Sampled: types.PrimitiveKind(sampled), Depth: depth}, nil
	case typeTexture:
		dim, err := d.ReadByte()
		if err != nil {
			return nil, d.err("texture dim", err)
		}
		sampled, err := d.ReadByte()
		if err != nil {
			return nil, d.err("texture sampled kind", err)
		}
		format, err := d.ReadString()
		if err != nil {
			return nil, d.err("texture format", err)
		}
		access, err := d.ReadByte()
		if err != nil {
			return nil, d.err("texture access", err)
		}
		return &types.Texture{Dim: types.Dimension(dim), Sampled: types.PrimitiveKind(sampled), Format: format, Access: types.AccessMode(access)}, nil
	case typeFunction:
		idx, err := d.ReadUint64()
		if err != nil {
			return nil, d.err("function type ref", err)
		}
		return &types.Function{FuncRef: ref.Function(idx)}, nil
	case typeMethod:
		obj, err := d.ReadType()
		if err != nil {
			return nil, err
		}
		idx, err := d.ReadUint64()
		if err != nil {
			return nil, d.err("method ref", err)
		}
		return &types.Method{ObjectType: obj, MethodRef: ref.Intrinsic(idx)}, nil
	case typeIntrinsic:
		idx, err := d.ReadUint64()
		if err != nil {
			return nil, d.err("intrinsic type ref", err)
		}
		return &types.Intrinsic{IntrinsicRef: ref.Intrinsic(idx)}, nil
	case typeNamedType:
		idx, err := d.ReadUint64()
		if err != nil {
			return nil, d.err("named type ref", err)
		}
		name, err := d.ReadString()
		if err != nil {
			return nil, d.err("named type name", err)
		}
		return &types.NamedType{TypeRef: ref.Type(idx), Name: name}, nil
	default:
		return nil, fmt.Errorf("codec: unknown type tag %d", tag)
	}
}
