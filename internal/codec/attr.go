package codec

import "github.com/nzsl-go/nzsl/internal/ast"

// Small writeT/readT helpers for the byte-sized enum attributes a node can
// carry, so writeAttr/readAttr's generic instantiation has something to
// call for T = ast.MemoryLayout, ast.DepthWriteMode, etc.

func writeMemoryLayout(e *Encoder, v ast.MemoryLayout) { e.WriteByte(byte(v)) }
func readMemoryLayout(d *Decoder) (ast.MemoryLayout, error) {
	b, err := d.ReadByte()
	return ast.MemoryLayout(b), err
}

func writeDepthWriteMode(e *Encoder, v ast.DepthWriteMode) { e.WriteByte(byte(v)) }
func readDepthWriteMode(d *Decoder) (ast.DepthWriteMode, error) {
	b, err := d.ReadByte()
	return ast.DepthWriteMode(b), err
}

func writeShaderStage(e *Encoder, v ast.ShaderStage) { e.WriteByte(byte(v)) }
func readShaderStage(d *Decoder) (ast.ShaderStage, error) {
	b, err := d.ReadByte()
	return ast.ShaderStage(b), err
}

func writeLoopUnroll(e *Encoder, v ast.LoopUnroll) { e.WriteByte(byte(v)) }
func readLoopUnroll(d *Decoder) (ast.LoopUnroll, error) {
	b, err := d.ReadByte()
	return ast.LoopUnroll(b), err
}

func writeBuiltinEntry(e *Encoder, v ast.BuiltinEntry) { e.WriteByte(byte(v)) }
func readBuiltinEntry(d *Decoder) (ast.BuiltinEntry, error) {
	b, err := d.ReadByte()
	return ast.BuiltinEntry(b), err
}

func writeWorkgroupSize(e *Encoder, v [3]uint32) {
	e.WriteUint32(v[0])
	e.WriteUint32(v[1])
	e.WriteUint32(v[2])
}

func readWorkgroupSize(d *Decoder) ([3]uint32, error) {
	var v [3]uint32
	for i := range v {
		x, err := d.ReadUint32()
		if err != nil {
			return v, err
		}
		v[i] = x
	}
	return v, nil
}

// Attribute states, mirroring ast.ExpressionValue's three-state union.
const (
	attrUnset byte = iota
	attrUnresolved
	attrResolved
)

// writeAttr encodes an ExpressionValue[T] of any instantiation: unset and
// unresolved need no help from the caller, resolved defers to writeT for
// the payload. Passing a function like writeDepthWriteMode (or a method
// expression like (*Encoder).WriteType) as writeT lets one generic function
// serve every T a pass attaches to a node without a type switch per attribute.
func writeAttr[T any](e *Encoder, v ast.ExpressionValue[T], writeT func(*Encoder, T)) {
	switch {
	case v.IsUnset():
		e.WriteByte(attrUnset)
	case v.IsUnresolved():
		e.WriteByte(attrUnresolved)
		e.WriteExpr(v.GetExpression())
	default:
		e.WriteByte(attrResolved)
		writeT(e, v.GetResultingValue())
	}
}

func readAttr[T any](d *Decoder, readT func(*Decoder) (T, error)) (ast.ExpressionValue[T], error) {
	var zero ast.ExpressionValue[T]
	tag, err := d.ReadByte()
	if err != nil {
		return zero, d.err("attribute state", err)
	}
	switch tag {
	case attrUnset:
		return ast.UnsetValue[T](), nil
	case attrUnresolved:
		expr, err := d.ReadExpr()
		if err != nil {
			return zero, err
		}
		return ast.UnresolvedValue[T](expr), nil
	case attrResolved:
		v, err := readT(d)
		if err != nil {
			return zero, err
		}
		return ast.ResolvedValue(v), nil
	default:
		return zero, d.err("attribute state", errTruncated)
	}
}
