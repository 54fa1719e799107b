// Package constant implements the constant-value model: the representation
// folded expressions carry once the constant-propagation pass has replaced
// them with a literal value.
package constant

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nzsl-go/nzsl/internal/types"
)

// Value is a single constant payload. The zero Value is NoValue.
type Value struct {
	kind kind
	b    bool
	i    int64
	u    uint64
	f32  float32
	f64  float64
	s    string
	vec  []Value // 2..4 scalar Values sharing kind's element
	arr  []Value // ConstantArrayValue elements
}

type kind uint8

const (
	kNoValue kind = iota
	kBool
	kI32
	kU32
	kF32
	kF64
	kIntLiteral
	kFloatLiteral
	kString
	kVecBool
	kVecI32
	kVecU32
	kVecF32
	kVecF64
	kVecIntLiteral
	kVecFloatLiteral
	kArray
)

// NoValue is the absence of a constant value.
var NoValue = Value{kind: kNoValue}

func Bool(v bool) Value          { return Value{kind: kBool, b: v} }
func I32(v int32) Value          { return Value{kind: kI32, i: int64(v)} }
func U32(v uint32) Value         { return Value{kind: kU32, u: uint64(v)} }
func F32(v float32) Value        { return Value{kind: kF32, f32: v} }
func F64(v float64) Value        { return Value{kind: kF64, f64: v} }
func IntLiteral(v int64) Value   { return Value{kind: kIntLiteral, i: v} }
func FloatLiteral(v float64) Value { return Value{kind: kFloatLiteral, f64: v} }
func String(v string) Value      { return Value{kind: kString, s: v} }

// Vec builds a fixed-size vector constant (2..4 elements) of homogeneous
// scalar kind elems.
func Vec(elems []Value) (Value, error) {
	if len(elems) < 2 || len(elems) > 4 {
		return Value{}, fmt.Errorf("constant: vector must have 2..4 components, got %d", len(elems))
	}
	var vk kind
	switch elems[0].kind {
	case kBool:
		vk = kVecBool
	case kI32:
		vk = kVecI32
	case kU32:
		vk = kVecU32
	case kF32:
		vk = kVecF32
	case kF64:
		vk = kVecF64
	case kIntLiteral:
		vk = kVecIntLiteral
	case kFloatLiteral:
		vk = kVecFloatLiteral
	default:
		return Value{}, fmt.Errorf("constant: %v is not a valid vector element", elems[0])
	}
	return Value{kind: vk, vec: append([]Value(nil), elems...)}, nil
}

// Array builds a ConstantArrayValue of length len(elems); elements must all
// be scalar or vector Values of the same kind.
func Array(elems []Value) Value {
	return Value{kind: kArray, arr: append([]Value(nil), elems...)}
}

// Equal reports whether a and b carry the same kind and payload.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case kNoValue:
		return true
	case kBool:
		return a.b == b.b
	case kI32, kIntLiteral:
		return a.i == b.i
	case kU32:
		return a.u == b.u
	case kF32:
		return a.f32 == b.f32
	case kF64, kFloatLiteral:
		return a.f64 == b.f64
	case kString:
		return a.s == b.s
	case kVecBool, kVecI32, kVecU32, kVecF32, kVecF64, kVecIntLiteral, kVecFloatLiteral:
		if len(a.vec) != len(b.vec) {
			return false
		}
		for i := range a.vec {
			if !Equal(a.vec[i], b.vec[i]) {
				return false
			}
		}
		return true
	case kArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// IsNoValue reports whether v carries no value.
func (v Value) IsNoValue() bool { return v.kind == kNoValue }

// IsArray reports whether v is a ConstantArrayValue.
func (v Value) IsArray() bool { return v.kind == kArray }

// Elements returns the elements of an array or vector value.
func (v Value) Elements() []Value {
	switch v.kind {
	case kArray:
		return v.arr
	case kVecBool, kVecI32, kVecU32, kVecF32, kVecF64, kVecIntLiteral, kVecFloatLiteral:
		return v.vec
	default:
		return nil
	}
}

// BoolValue, I32Value, ... accessors do not check the kind: each returns its
// raw payload field, which is the zero value when v holds another kind.
func (v Value) BoolValue() bool    { return v.b }
func (v Value) I32Value() int32    { return int32(v.i) }
func (v Value) U32Value() uint32   { return uint32(v.u) }
func (v Value) F32Value() float32  { return v.f32 }
func (v Value) F64Value() float64 { return v.f64 }
func (v Value) IntLiteralValue() int64     { return v.i }
func (v Value) FloatLiteralValue() float64 { return v.f64 }
func (v Value) StringValue() string        { return v.s }

// IsVector reports whether v is one of the Vec<T,2..4> variants.
func (v Value) IsVector() bool {
	switch v.kind {
	case kVecBool, kVecI32, kVecU32, kVecF32, kVecF64, kVecIntLiteral, kVecFloatLiteral:
		return true
	default:
		return false
	}
}

// IsScalar reports whether v is a single scalar value (not NoValue, not a
// vector, not an array).
func (v Value) IsScalar() bool {
	switch v.kind {
	case kBool, kI32, kU32, kF32, kF64, kIntLiteral, kFloatLiteral, kString:
		return true
	default:
		return false
	}
}

// GetType returns the expression type of a constant value.
func GetType(v Value) types.Type {
	switch v.kind {
	case kNoValue:
		return types.NoType{}
	case kBool:
		return types.NewPrimitive(types.Bool)
	case kI32:
		return types.NewPrimitive(types.I32)
	case kU32:
		return types.NewPrimitive(types.U32)
	case kF32:
		return types.NewPrimitive(types.F32)
	case kF64:
		return types.NewPrimitive(types.F64)
	case kIntLiteral:
		return types.NewPrimitive(types.IntLiteral)
	case kFloatLiteral:
		return types.NewPrimitive(types.FloatLiteral)
	case kString:
		return types.NewPrimitive(types.String)
	case kVecBool:
		return &types.Vector{Count: uint8(len(v.vec)), Elem: types.Bool}
	case kVecI32:
		return &types.Vector{Count: uint8(len(v.vec)), Elem: types.I32}
	case kVecU32:
		return &types.Vector{Count: uint8(len(v.vec)), Elem: types.U32}
	case kVecF32:
		return &types.Vector{Count: uint8(len(v.vec)), Elem: types.F32}
	case kVecF64:
		return &types.Vector{Count: uint8(len(v.vec)), Elem: types.F64}
	case kVecIntLiteral:
		return &types.Vector{Count: uint8(len(v.vec)), Elem: types.IntLiteral}
	case kVecFloatLiteral:
		return &types.Vector{Count: uint8(len(v.vec)), Elem: types.FloatLiteral}
	case kArray:
		var inner types.Type = types.NoType{}
		if len(v.arr) > 0 {
			inner = GetType(v.arr[0])
		}
		return &types.Array{Inner: inner, Length: uint32(len(v.arr))}
	default:
		return types.NoType{}
	}
}

// Describe produces the canonical printable form used in diagnostics.
func Describe(v Value) string {
	switch v.kind {
	case kNoValue:
		return "<no value>"
	case kBool:
		return strconv.FormatBool(v.b)
	case kI32:
		return strconv.FormatInt(v.i, 10)
	case kU32:
		return strconv.FormatUint(v.u, 10)
	case kF32:
		return strconv.FormatFloat(float64(v.f32), 'g', -1, 32)
	case kF64:
		return strconv.FormatFloat(v.f64, 'g', -1, 64)
	case kIntLiteral:
		return strconv.FormatInt(v.i, 10)
	case kFloatLiteral:
		return strconv.FormatFloat(v.f64, 'g', -1, 64)
	case kString:
		return strconv.Quote(v.s)
	case kVecBool, kVecI32, kVecU32, kVecF32, kVecF64, kVecIntLiteral, kVecFloatLiteral:
		parts := make([]string, len(v.vec))
		for i, e := range v.vec {
			parts[i] = Describe(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case kArray:
		parts := make([]string, len(v.arr))
		for i, e := range v.arr {
			parts[i] = Describe(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return "<unknown>"
	}
}
