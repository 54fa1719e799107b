package codec

import (
	"fmt"

	"github.com/nzsl-go/nzsl/internal/constant"
	"github.com/nzsl-go/nzsl/internal/types"
)

const (
	constNoValue byte = iota
	constBool
	constI32
	constU32
	constF32
	constF64
	constIntLiteral
	constFloatLiteral
	constString
	constVecBool
	constVecI32
	constVecU32
	constVecF32
	constVecF64
	constVecIntLiteral
	constVecFloatLiteral
	constArray
)

func scalarKindTag(k types.PrimitiveKind) byte {
	switch k {
	case types.Bool:
		return constBool
	case types.I32:
		return constI32
	case types.U32:
		return constU32
	case types.F32:
		return constF32
	case types.F64:
		return constF64
	case types.IntLiteral:
		return constIntLiteral
	case types.FloatLiteral:
		return constFloatLiteral
	case types.String:
		return constString
	default:
		panic(fmt.Sprintf("codec: unhandled scalar primitive kind %v", k))
	}
}

func (e *Encoder) writeScalarPayload(tag byte, v constant.Value) {
	switch tag {
	case constBool:
		e.WriteBool(v.BoolValue())
	case constI32:
		e.WriteInt32(v.I32Value())
	case constU32:
		e.WriteUint32(v.U32Value())
	case constF32:
		e.WriteFloat32(v.F32Value())
	case constF64:
		e.WriteFloat64(v.F64Value())
	case constIntLiteral:
		e.WriteInt64(v.IntLiteralValue())
	case constFloatLiteral:
		e.WriteFloat64(v.FloatLiteralValue())
	case constString:
		e.WriteString(v.StringValue())
	default:
		panic(fmt.Sprintf("codec: unhandled scalar tag %d", tag))
	}
}

// WriteConstant encodes a folded constant value. Arrays recurse
// element by element rather than assuming homogeneity, matching Elements'
// own contract.
func (e *Encoder) WriteConstant(v constant.Value) {
	switch {
	case v.IsNoValue():
		e.WriteByte(constNoValue)
	case v.IsArray():
		e.WriteByte(constArray)
		elems := v.Elements()
		e.WriteUvarint(uint64(len(elems)))
		for _, el := range elems {
			e.WriteConstant(el)
		}
	case v.IsVector():
		vecType := constant.GetType(v).(*types.Vector)
		tag := vecScalarTag(vecType.Elem)
		e.WriteByte(tag)
		elems := v.Elements()
		e.WriteByte(byte(len(elems)))
		scalarTag := scalarKindTag(vecType.Elem)
		for _, el := range elems {
			e.writeScalarPayload(scalarTag, el)
		}
	case v.IsScalar():
		prim := constant.GetType(v).(*types.Primitive)
		tag := scalarKindTag(prim.Kind)
		e.WriteByte(tag)
		e.writeScalarPayload(tag, v)
	default:
		panic("codec: constant value is neither no-value, array, vector nor scalar")
	}
}

func vecScalarTag(k types.PrimitiveKind) byte {
	switch k {
	case types.Bool:
		return constVecBool
	case types.I32:
		return constVecI32
	case types.U32:
		return constVecU32
	case types.F32:
		return constVecF32
	case types.F64:
		return constVecF64
	case types.IntLiteral:
		return constVecIntLiteral
	case types.FloatLiteral:
		return constVecFloatLiteral
	default:
		panic(fmt.Sprintf("codec: unhandled vector element kind %v", k))
	}
}

func vecTagScalarKind(tag byte) types.PrimitiveKind {
	switch tag {
	case constVecBool:
		return types.Bool
	case constVecI32:
		return types.I32
	case constVecU32:
		return types.U32
	case constVecF32:
		return types.F32
	case constVecF64:
		return types.F64
	case constVecIntLiteral:
		return types.IntLiteral
	case constVecFloatLiteral:
		return types.FloatLiteral
	default:
		panic(fmt.Sprintf("codec: unhandled vector tag %d", tag))
	}
}

func (d *Decoder) readScalarPayload(tag byte) (constant.Value, error) {
	switch tag {
	case constBool:
		v, err := d.ReadBool()
		return constant.Bool(v), err
	case constI32:
		v, err := d.ReadInt32()
		return constant.I32(v), err
	case constU32:
		v, err := d.ReadUint32()
		return constant.U32(v), err
	case constF32:
		v, err := d.ReadFloat32()
		return constant.F32(v), err
	case constF64:
		v, err := d.ReadFloat64()
		return constant.F64(v), err
	case constIntLiteral:
		v, err := d.ReadInt64()
		return constant.IntLiteral(v), err
	case constFloatLiteral:
		v, err := d.ReadFloat64()
		return constant.FloatLiteral(v), err
	case constString:
		v, err := d.ReadString()
		return constant.String(v), err
	default:
		return constant.NoValue, fmt.Errorf("codec: unhandled scalar tag %d", tag)
	}
}

func (d *Decoder) ReadConstant() (constant.Value, error) {
	tag, err := d.ReadByte()
	if err != nil {
		return constant.NoValue, d.err("constant tag", err)
	}
	switch tag {
	case constNoValue:
		return constant.NoValue, nil
	case constArray:
		n, err := d.ReadUvarint()
		if err != nil {
			return constant.NoValue, d.err("array length", err)
		}
		elems := make([]constant.Value, n)
		for i := range elems {
			elems[i], err = d.ReadConstant()
			if err != nil {
				return constant.NoValue, err
			}
		}
		return constant.Array(elems), nil
	case constVecBool, constVecI32, constVecU32, constVecF32, constVecF64, constVecIntLiteral, constVecFloatLiteral:
		count, err := d.ReadByte()
		if err != nil {
			return constant.NoValue, d.err("vector count", err)
		}
		scalarTag := scalarKindTag(vecTagScalarKind(tag))
		elems := make([]constant.Value, count)
		for i := range elems {
			elems[i], err = d.readScalarPayload(scalarTag)
			if err != nil {
				return constant.NoValue, d.err("vector element", err)
			}
		}
		return constant.Vec(elems)
	default:
		v, err := d.readScalarPayload(tag)
		if err != nil {
			return constant.NoValue, d.err("scalar constant", err)
		}
		return v, nil
	}
}
