package ast

import (
	"github.com/nzsl-go/nzsl/internal/constant"
	"github.com/nzsl-go/nzsl/internal/ref"
	"github.com/nzsl-go/nzsl/internal/types"
)

// AccessIdentifierExpr is a chain of named accesses on expr, not yet
// resolved to field indices or alias/variable references.
type AccessIdentifierExpr struct {
	exprBase
	Identifiers []AccessIdentifierName
	Expr        Expression
}

// AccessIdentifierName is one link of an AccessIdentifierExpr's chain.
type AccessIdentifierName struct {
	Name string
	Loc  Loc
}

func (*AccessIdentifierExpr) isExpression() {}

// AccessFieldExpr is a resolved numeric field access into a struct value.
type AccessFieldExpr struct {
	exprBase
	FieldIndex uint32
	Expr       Expression
}

func (*AccessFieldExpr) isExpression() {}

// AccessIndexExpr indexes expr by one or more index expressions (the
// resolved counterpart of a chain of `[i]` subscripts).
type AccessIndexExpr struct {
	exprBase
	Indices []Expression
	Expr    Expression
}

func (*AccessIndexExpr) isExpression() {}

// AliasValueExpr refers to an already-resolved alias by stable index.
type AliasValueExpr struct {
	exprBase
	AliasRef ref.Alias
}

func (*AliasValueExpr) isExpression() {}

// AssignExpr is an assignment expression `lhs op rhs`.
type AssignExpr struct {
	exprBase
	Op    AssignOp
	Left  Expression
	Right Expression
}

func (*AssignExpr) isExpression() {}

// BinaryExpr is a binary operator expression.
type BinaryExpr struct {
	exprBase
	Op    BinaryOp
	Left  Expression
	Right Expression
}

func (*BinaryExpr) isExpression() {}

// CallFunctionExpr calls TargetFunction with Params, in source order.
type CallFunctionExpr struct {
	exprBase
	TargetFunction Expression
	Params         []Expression
}

func (*CallFunctionExpr) isExpression() {}

// CallMethodExpr calls a built-in method Name on Object.
type CallMethodExpr struct {
	exprBase
	Object     Expression
	MethodName string
	Params     []Expression
}

func (*CallMethodExpr) isExpression() {}

// CastExpr casts one or more source expressions to TargetType, e.g.
// `vec4[f32](a, b, c, d)` or `i32(f)`.
type CastExpr struct {
	exprBase
	TargetType ExpressionValue[types.Type]
	Exprs      []Expression
}

func (*CastExpr) isExpression() {}

// ConditionalExpr is a runtime ternary `cond ? truePath : falsePath`.
type ConditionalExpr struct {
	exprBase
	Cond      Expression
	TruePath  Expression
	FalsePath Expression
}

func (*ConditionalExpr) isExpression() {}

// ConstantExpr refers to a resolved const/option declaration by index.
type ConstantExpr struct {
	exprBase
	ConstantRef ref.Constant
}

func (*ConstantExpr) isExpression() {}

// ConstantArrayValueExpr is a folded constant array literal.
type ConstantArrayValueExpr struct {
	exprBase
	Value constant.Value
}

func (*ConstantArrayValueExpr) isExpression() {}

// ConstantValueExpr is a folded constant scalar/vector literal.
type ConstantValueExpr struct {
	exprBase
	Value constant.Value
}

func (*ConstantValueExpr) isExpression() {}

// FunctionExpr refers to a resolved function declaration by index.
type FunctionExpr struct {
	exprBase
	FuncRef ref.Function
}

func (*FunctionExpr) isExpression() {}

// IdentifierExpr is a bare, not-yet-resolved name.
type IdentifierExpr struct {
	exprBase
	Identifier string
}

func (*IdentifierExpr) isExpression() {}

// IntrinsicExpr calls a built-in intrinsic directly by kind (post-
// resolution form of an IntrinsicFunctionExpr call).
type IntrinsicExpr struct {
	exprBase
	Intrinsic IntrinsicKind
	Params    []Expression
}

func (*IntrinsicExpr) isExpression() {}

// IntrinsicFunctionExpr refers to an intrinsic function value by index
// (before it is called).
type IntrinsicFunctionExpr struct {
	exprBase
	IntrinsicRef ref.Intrinsic
}

func (*IntrinsicFunctionExpr) isExpression() {}

// StructTypeExpr refers to a struct's type (as opposed to a struct value)
// by index, used where a struct name is used as a type argument.
type StructTypeExpr struct {
	exprBase
	StructRef ref.Struct
}

func (*StructTypeExpr) isExpression() {}

// SwizzleExpr selects 1..4 components of a vector expression.
type SwizzleExpr struct {
	exprBase
	Expr           Expression
	Components     [4]uint32
	ComponentCount uint8
}

func (*SwizzleExpr) isExpression() {}

// TypeExpr refers to a resolved named/partial type by index.
type TypeExpr struct {
	exprBase
	TypeRef ref.Type
}

func (*TypeExpr) isExpression() {}

// VariableValueExpr refers to a resolved local/parameter/external variable
// by index.
type VariableValueExpr struct {
	exprBase
	VariableRef ref.Variable
}

func (*VariableValueExpr) isExpression() {}

// UnaryExpr is a unary prefix operator expression.
type UnaryExpr struct {
	exprBase
	Op   UnaryOp
	Expr Expression
}

func (*UnaryExpr) isExpression() {}
