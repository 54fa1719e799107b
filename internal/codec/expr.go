package codec

import (
	"fmt"

	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/ref"
)

// Expression tags, one per concrete ast.Expression kind plus a sentinel for
// a nil slot (a ReturnStmt's value, a ForStmt's step, ...).
const (
	exprNil byte = iota
	exprAccessIdentifier
	exprAccessField
	exprAccessIndex
	exprAliasValue
	exprAssign
	exprBinary
	exprCallFunction
	exprCallMethod
	exprCast
	exprConditional
	exprConstant
	exprConstantArrayValue
	exprConstantValue
	exprFunction
	exprIdentifier
	exprIntrinsic
	exprIntrinsicFunction
	exprStructType
	exprSwizzle
	exprTypeExpr
	exprVariableValue
	exprUnary
)

// WriteExpr encodes e, which may be nil (an optional slot left empty).
func (e *Encoder) WriteExpr(expr ast.Expression) {
	if expr == nil {
		e.WriteByte(exprNil)
		return
	}
	switch v := expr.(type) {
	case *ast.AccessIdentifierExpr:
		e.WriteByte(exprAccessIdentifier)
		e.WriteUvarint(uint64(len(v.Identifiers)))
		for _, id := range v.Identifiers {
			e.WriteString(id.Name)
		}
		e.WriteExpr(v.Expr)
	case *ast.AccessFieldExpr:
		e.WriteByte(exprAccessField)
		e.WriteUint32(v.FieldIndex)
		e.WriteExpr(v.Expr)
		e.WriteType(v.CachedType())
	case *ast.AccessIndexExpr:
		e.WriteByte(exprAccessIndex)
		e.WriteExpr(v.Expr)
		e.WriteUvarint(uint64(len(v.Indices)))
		for _, idx := range v.Indices {
			e.WriteExpr(idx)
		}
		e.WriteType(v.CachedType())
	case *ast.AliasValueExpr:
		e.WriteByte(exprAliasValue)
		e.WriteUint64(uint64(v.AliasRef))
	case *ast.AssignExpr:
		e.WriteByte(exprAssign)
		e.WriteByte(byte(v.Op))
		e.WriteExpr(v.Left)
		e.WriteExpr(v.Right)
	case *ast.BinaryExpr:
		e.WriteByte(exprBinary)
		e.WriteByte(byte(v.Op))
		e.WriteExpr(v.Left)
		e.WriteExpr(v.Right)
		e.WriteType(v.CachedType())
	case *ast.CallFunctionExpr:
		e.WriteByte(exprCallFunction)
		e.WriteExpr(v.TargetFunction)
		e.WriteUvarint(uint64(len(v.Params)))
		for _, p := range v.Params {
			e.WriteExpr(p)
		}
		e.WriteType(v.CachedType())
	case *ast.CallMethodExpr:
		e.WriteByte(exprCallMethod)
		e.WriteExpr(v.Object)
		e.WriteString(v.MethodName)
		e.WriteUvarint(uint64(len(v.Params)))
		for _, p := range v.Params {
			e.WriteExpr(p)
		}
		e.WriteType(v.CachedType())
	case *ast.CastExpr:
		e.WriteByte(exprCast)
		writeAttr(e, v.TargetType, (*Encoder).WriteType)
		e.WriteUvarint(uint64(len(v.Exprs)))
		for _, x := range v.Exprs {
			e.WriteExpr(x)
		}
		e.WriteType(v.CachedType())
	case *ast.ConditionalExpr:
		e.WriteByte(exprConditional)
		e.WriteExpr(v.Cond)
		e.WriteExpr(v.TruePath)
		e.WriteExpr(v.FalsePath)
		e.WriteType(v.CachedType())
	case *ast.ConstantExpr:
		e.WriteByte(exprConstant)
		e.WriteUint64(uint64(v.ConstantRef))
	case *ast.ConstantArrayValueExpr:
		e.WriteByte(exprConstantArrayValue)
		e.WriteConstant(v.Value)
	case *ast.ConstantValueExpr:
		e.WriteByte(exprConstantValue)
		e.WriteConstant(v.Value)
	case *ast.FunctionExpr:
		e.WriteByte(exprFunction)
		e.WriteUint64(uint64(v.FuncRef))
	case *ast.IdentifierExpr:
		e.WriteByte(exprIdentifier)
		e.WriteString(v.Identifier)
	case *ast.IntrinsicExpr:
		e.WriteByte(exprIntrinsic)
		e.WriteByte(byte(v.Intrinsic))
		e.WriteUvarint(uint64(len(v.Params)))
		for _, p := range v.Params {
			e.WriteExpr(p)
		}
		e.WriteType(v.CachedType())
	case *ast.IntrinsicFunctionExpr:
		e.WriteByte(exprIntrinsicFunction)
		e.WriteUint64(uint64(v.IntrinsicRef))
	case *ast.StructTypeExpr:
		e.WriteByte(exprStructType)
		e.WriteUint64(uint64(v.StructRef))
	case *ast.SwizzleExpr:
		e.WriteByte(exprSwizzle)
		e.WriteExpr(v.Expr)
		e.WriteByte(v.ComponentCount)
		for i := byte(0); i < v.ComponentCount; i++ {
			e.WriteUint32(v.Components[i])
		}
		e.WriteType(v.CachedType())
	case *ast.TypeExpr:
		e.WriteByte(exprTypeExpr)
		e.WriteUint64(uint64(v.TypeRef))
	case *ast.VariableValueExpr:
		e.WriteByte(exprVariableValue)
		e.WriteUint64(uint64(v.VariableRef))
		e.WriteType(v.CachedType())
	case *ast.UnaryExpr:
		e.WriteByte(exprUnary)
		e.WriteByte(byte(v.Op))
		e.WriteExpr(v.Expr)
		e.WriteType(v.CachedType())
	default:
		panic(fmt.Sprintf("codec: unhandled expression %T", expr))
	}
}

// ReadExpr decodes an expression, or returns (nil, nil) for an empty slot.
func (d *Decoder) ReadExpr() (ast.Expression, error) {
	tag, err := d.ReadByte()
	if err != nil {
		return nil, d.err("expression tag", err)
	}
	switch tag {
	case exprNil:
		return nil, nil
	case exprAccessIdentifier:
		n, err := d.ReadUvarint()
		if err != nil {
			return nil, err
		}
		ids := make([]ast.AccessIdentifierName, n)
		for i := range ids {
			name, err := d.ReadString()
			if err != nil {
				return nil, err
			}
			ids[i] = ast.AccessIdentifierName{Name: name}
		}
		expr, err := d.ReadExpr()
		if err != nil {
			return nil, err
		}
		return &ast.AccessIdentifierExpr{Identifiers: ids, Expr: expr}, nil
	case exprAccessField:
		idx, err := d.ReadUint32()
		if err != nil {
			return nil, err
		}
		inner, err := d.ReadExpr()
		if err != nil {
			return nil, err
		}
		t, err := d.ReadType()
		if err != nil {
			return nil, err
		}
		n := &ast.AccessFieldExpr{FieldIndex: idx, Expr: inner}
		n.SetCachedType(t)
		return n, nil
	case exprAccessIndex:
		inner, err := d.ReadExpr()
		if err != nil {
			return nil, err
		}
		count, err := d.ReadUvarint()
		if err != nil {
			return nil, err
		}
		indices := make([]ast.Expression, count)
		for i := range indices {
			indices[i], err = d.ReadExpr()
			if err != nil {
				return nil, err
			}
		}
		t, err := d.ReadType()
		if err != nil {
			return nil, err
		}
		n := &ast.AccessIndexExpr{Expr: inner, Indices: indices}
		n.SetCachedType(t)
		return n, nil
	case exprAliasValue:
		idx, err := d.ReadUint64()
		if err != nil {
			return nil, err
		}
		return &ast.AliasValueExpr{AliasRef: ref.Alias(idx)}, nil
	case exprAssign:
		op, err := d.ReadByte()
		if err != nil {
			return nil, err
		}
		left, err := d.ReadExpr()
		if err != nil {
			return nil, err
		}
		right, err := d.ReadExpr()
		if err != nil {
			return nil, err
		}
		return &ast.AssignExpr{Op: ast.AssignOp(op), Left: left, Right: right}, nil
	case exprBinary:
		op, err := d.ReadByte()
		if err != nil {
			return nil, err
		}
		left, err := d.ReadExpr()
		if err != nil {
			return nil, err
		}
		right, err := d.ReadExpr()
		if err != nil {
			return nil, err
		}
		t, err := d.ReadType()
		if err != nil {
			return nil, err
		}
		n := &ast.BinaryExpr{Op: ast.BinaryOp(op), Left: left, Right: right}
		n.SetCachedType(t)
		return n, nil
	case exprCallFunction:
		target, err := d.ReadExpr()
		if err != nil {
			return nil, err
		}
		count, err := d.ReadUvarint()
		if err != nil {
			return nil, err
		}
		params := make([]ast.Expression, count)
		for i := range params {
			params[i], err = d.ReadExpr()
			if err != nil {
				return nil, err
			}
		}
		t, err := d.ReadType()
		if err != nil {
			return nil, err
		}
		n := &ast.CallFunctionExpr{TargetFunction: target, Params: params}
		n.SetCachedType(t)
		return n, nil
	case exprCallMethod:
		obj, err := d.ReadExpr()
		if err != nil {
			return nil, err
		}
		name, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		count, err := d.ReadUvarint()
		if err != nil {
			return nil, err
		}
		params := make([]ast.Expression, count)
		for i := range params {
			params[i], err = d.ReadExpr()
			if err != nil {
				return nil, err
			}
		}
		t, err := d.ReadType()
		if err != nil {
			return nil, err
		}
		n := &ast.CallMethodExpr{Object: obj, MethodName: name, Params: params}
		n.SetCachedType(t)
		return n, nil
	case exprCast:
		target, err := readAttr(d, (*Decoder).ReadType)
		if err != nil {
			return nil, err
		}
		count, err := d.ReadUvarint()
		if err != nil {
			return nil, err
		}
		exprs := make([]ast.Expression, count)
		for i := range exprs {
			exprs[i], err = d.ReadExpr()
			if err != nil {
				return nil, err
			}
		}
		t, err := d.ReadType()
		if err != nil {
			return nil, err
		}
		n := &ast.CastExpr{TargetType: target, Exprs: exprs}
		n.SetCachedType(t)
		return n, nil
	case exprConditional:
		cond, err := d.ReadExpr()
		if err != nil {
			return nil, err
		}
		truePath, err := d.ReadExpr()
		if err != nil {
			return nil, err
		}
		falsePath, err := d.ReadExpr()
		if err != nil {
			return nil, err
		}
		t, err := d.ReadType()
		if err != nil {
			return nil, err
		}
		n := &ast.ConditionalExpr{Cond: cond, TruePath: truePath, FalsePath: falsePath}
		n.SetCachedType(t)
		return n, nil
	case exprConstant:
		idx, err := d.ReadUint64()
		if err != nil {
			return nil, err
		}
		return &ast.ConstantExpr{ConstantRef: ref.Constant(idx)}, nil
	case exprConstantArrayValue:
		v, err := d.ReadConstant()
		if err != nil {
			return nil, err
		}
		return &ast.ConstantArrayValueExpr{Value: v}, nil
	case exprConstantValue:
		v, err := d.ReadConstant()
		if err != nil {
			return nil, err
		}
		return &ast.ConstantValueExpr{Value: v}, nil
	case exprFunction:
		idx, err := d.ReadUint64()
		if err != nil {
			return nil, err
		}
		return &ast.FunctionExpr{FuncRef: ref.Function(idx)}, nil
	case exprIdentifier:
		name, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		return &ast.IdentifierExpr{Identifier: name}, nil
	case exprIntrinsic:
		k, err := d.ReadByte()
		if err != nil {
			return nil, err
		}
		count, err := d.ReadUvarint()
		if err != nil {
			return nil, err
		}
		params := make([]ast.Expression, count)
		for i := range params {
			params[i], err = d.ReadExpr()
			if err != nil {
				return nil, err
			}
		}
		t, err := d.ReadType()
		if err != nil {
			return nil, err
		}
		n := &ast.IntrinsicExpr{Intrinsic: ast.IntrinsicKind(k), Params: params}
		n.SetCachedType(t)
		return n, nil
	case exprIntrinsicFunction:
		idx, err := d.ReadUint64()
		if err != nil {
			return nil, err
		}
		return &ast.IntrinsicFunctionExpr{IntrinsicRef: ref.Intrinsic(idx)}, nil
	case exprStructType:
		idx, err := d.ReadUint64()
		if err != nil {
			return nil, err
		}
		return &ast.StructTypeExpr{StructRef: ref.Struct(idx)}, nil
	case exprSwizzle:
		inner, err := d.ReadExpr()
		if err != nil {
			return nil, err
		}
		count, err := d.ReadByte()
		if err != nil {
			return nil, err
		}
		var components [4]uint32
		for i := byte(0); i < count; i++ {
			c, err := d.ReadUint32()
			if err != nil {
				return nil, err
			}
			components[i] = c
		}
		t, err := d.ReadType()
		if err != nil {
			return nil, err
		}
		n := &ast.SwizzleExpr{Expr: inner, Components: components, ComponentCount: count}
		n.SetCachedType(t)
		return n, nil
	case exprTypeExpr:
		idx, err := d.ReadUint64()
		if err != nil {
			return nil, err
		}
		return &ast.TypeExpr{TypeRef: ref.Type(idx)}, nil
	case exprVariableValue:
		idx, err := d.ReadUint64()
		if err != nil {
			return nil, err
		}
		t, err := d.ReadType()
		if err != nil {
			return nil, err
		}
		n := &ast.VariableValueExpr{VariableRef: ref.Variable(idx)}
		n.SetCachedType(t)
		return n, nil
	case exprUnary:
		op, err := d.ReadByte()
		if err != nil {
			return nil, err
		}
		inner, err := d.ReadExpr()
		if err != nil {
			return nil, err
		}
		t, err := d.ReadType()
		if err != nil {
			return nil, err
		}
		n := &ast.UnaryExpr{Op: ast.UnaryOp(op), Expr: inner}
		n.SetCachedType(t)
		return n, nil
	default:
		return nil, fmt.Errorf("codec: unknown expression tag %d", tag)
	}
}
