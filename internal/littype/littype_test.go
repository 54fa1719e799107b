package littype

import (
	"testing"

	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/constant"
	"github.com/nzsl-go/nzsl/internal/transform"
	"github.com/nzsl-go/nzsl/internal/types"
)

func assignTypes(t *testing.T, mod *ast.Module, ctx *transform.Context) {
	t.Helper()
	if ctx == nil {
		ctx = transform.NewContext()
	}
	if err := AssignLiteralTypes(mod, ctx); err != nil {
		t.Fatalf("AssignLiteralTypes failed: %v", err)
	}
}

func moduleOf(stmts ...ast.Statement) *ast.Module {
	return &ast.Module{RootStatement: &ast.MultiStmt{Statements: stmts}}
}

func literalKind(t *testing.T, e ast.Expression) types.PrimitiveKind {
	t.Helper()
	cv, ok := e.(*ast.ConstantValueExpr)
	if !ok {
		t.Fatalf("expected a ConstantValueExpr, got %T", e)
	}
	k, ok := types.ScalarKind(constant.GetType(cv.Value))
	if !ok {
		t.Fatalf("could not determine scalar kind of %v", cv.Value)
	}
	return k
}

func TestAssignLiteralTypesDefaultsOrphanLiterals(t *testing.T) {
	intLit := &ast.ConstantValueExpr{Value: constant.IntLiteral(3)}
	floatLit := &ast.ConstantValueExpr{Value: constant.FloatLiteral(1.5)}
	mod := moduleOf(
		&ast.ExpressionStmt{Expression: intLit},
		&ast.ExpressionStmt{Expression: floatLit},
	)
	assignTypes(t, mod, nil)

	if k := literalKind(t, intLit); k != types.I32 {
		t.Fatalf("expected orphan int literal to default to i32, got %v", k)
	}
	if k := literalKind(t, floatLit); k != types.F32 {
		t.Fatalf("expected orphan float literal to default to f32, got %v", k)
	}
}

func TestAssignLiteralTypesConcretizesCallArgument(t *testing.T) {
	ctx := transform.NewContext()
	fref, err := ctx.RegisterFunction("scale", transform.FunctionData{
		Name: "scale",
		Signature: transform.FunctionSignature{
			ParameterTypes: []types.Type{types.NewPrimitive(types.F64)},
		},
	})
	if err != nil {
		t.Fatalf("RegisterFunction failed: %v", err)
	}

	arg := &ast.ConstantValueExpr{Value: constant.FloatLiteral(2)}
	call := &ast.CallFunctionExpr{
		TargetFunction: &ast.FunctionExpr{FuncRef: fref},
		Params:         []ast.Expression{arg},
	}
	mod := moduleOf(&ast.ExpressionStmt{Expression: call})
	assignTypes(t, mod, ctx)

	if k := literalKind(t, call.Params[0]); k != types.F64 {
		t.Fatalf("expected call argument to concretize to f64, got %v", k)
	}
}

func TestAssignLiteralTypesConcretizesAssignmentRHS(t *testing.T) {
	lhs := &ast.VariableValueExpr{}
	lhs.SetCachedType(types.NewPrimitive(types.F32))
	rhs := &ast.ConstantValueExpr{Value: constant.FloatLiteral(4)}
	assign := &ast.AssignExpr{Op: ast.AssignSimple, Left: lhs, Right: rhs}
	mod := moduleOf(&ast.ExpressionStmt{Expression: assign})
	assignTypes(t, mod, nil)

	if k := literalKind(t, assign.Right); k != types.F32 {
		t.Fatalf("expected assignment rhs to concretize to f32, got %v", k)
	}
}

func TestAssignLiteralTypesBackfillsUndeclaredVariableType(t *testing.T) {
	ctx := transform.NewContext()
	vref, err := ctx.RegisterVariable("count", transform.VariableData{Name: "count"})
	if err != nil {
		t.Fatalf("RegisterVariable failed: %v", err)
	}

	decl := &ast.DeclareVariableStmt{
		VariableRef:       vref,
		Name:              "count",
		InitialExpression: &ast.ConstantValueExpr{Value: constant.IntLiteral(7)},
	}
	mod := moduleOf(decl)
	assignTypes(t, mod, ctx)

	if k := literalKind(t, decl.InitialExpression); k != types.I32 {
		t.Fatalf("expected initializer to default-concretize to i32, got %v", k)
	}
	if !decl.Type.IsResolved() {
		t.Fatalf("expected variable type to be back-filled")
	}
	if kind, ok := types.ScalarKind(decl.Type.GetResultingValue()); !ok || kind != types.I32 {
		t.Fatalf("expected backfilled variable type i32, got %v", decl.Type.GetResultingValue())
	}
	data, ok := ctx.Variable(vref)
	if !ok {
		t.Fatalf("expected variable to still be registered")
	}
	if kind, ok := types.ScalarKind(data.Type); !ok || kind != types.I32 {
		t.Fatalf("expected context variable type backfilled to i32, got %v", data.Type)
	}
}

func TestAssignLiteralTypesConcretizesDeclaredVariableInitializer(t *testing.T) {
	decl := &ast.DeclareVariableStmt{
		Name:              "speed",
		InitialExpression: &ast.ConstantValueExpr{Value: constant.FloatLiteral(9)},
		Type:              ast.ResolvedValue[types.Type](types.NewPrimitive(types.F64)),
	}
	mod := moduleOf(decl)
	assignTypes(t, mod, nil)

	if k := literalKind(t, decl.InitialExpression); k != types.F64 {
		t.Fatalf("expected declared-type initializer to concretize to f64, got %v", k)
	}
}

func TestAssignLiteralTypesConcretizesConstInitializer(t *testing.T) {
	ctx := transform.NewContext()
	cref, err := ctx.RegisterConstant("limit", transform.ConstantData{Name: "limit"})
	if err != nil {
		t.Fatalf("RegisterConstant failed: %v", err)
	}
	decl := &ast.DeclareConstStmt{
		ConstantRef: cref,
		Name:        "limit",
		Expression:  &ast.ConstantValueExpr{Value: constant.IntLiteral(42)},
	}
	mod := moduleOf(decl)
	assignTypes(t, mod, ctx)

	if k := literalKind(t, decl.Expression); k != types.I32 {
		t.Fatalf("expected const initializer to default-concretize to i32, got %v", k)
	}
	if !decl.Type.IsResolved() {
		t.Fatalf("expected constant type to be back-filled")
	}
}

func TestAssignLiteralTypesConcretizesReturnExpr(t *testing.T) {
	ret := &ast.ReturnStmt{ReturnExpr: &ast.ConstantValueExpr{Value: constant.FloatLiteral(1)}}
	fn := &ast.DeclareFunctionStmt{
		Name:       "unit",
		ReturnType: ast.ResolvedValue[types.Type](types.NewPrimitive(types.F64)),
		Statements: []ast.Statement{ret},
	}
	mod := moduleOf(fn)
	assignTypes(t, mod, nil)

	if k := literalKind(t, ret.ReturnExpr); k != types.F64 {
		t.Fatalf("expected return expr to concretize to the function's return type f64, got %v", k)
	}
}

func TestAssignLiteralTypesConcretizesAccessIndex(t *testing.T) {
	access := &ast.AccessIndexExpr{
		Expr:    &ast.VariableValueExpr{},
		Indices: []ast.Expression{&ast.ConstantValueExpr{Value: constant.IntLiteral(0)}},
	}
	mod := moduleOf(&ast.ExpressionStmt{Expression: access})
	assignTypes(t, mod, nil)

	if k := literalKind(t, access.Indices[0]); k != types.I32 {
		t.Fatalf("expected index literal to concretize to i32, got %v", k)
	}
}

func TestAssignLiteralTypesConcretizesResidualBinaryOperand(t *testing.T) {
	concrete := &ast.ConstantValueExpr{Value: constant.F32(2)}
	concrete.SetCachedType(types.NewPrimitive(types.F32))
	literal := &ast.ConstantValueExpr{Value: constant.FloatLiteral(3)}
	bin := &ast.BinaryExpr{Op: ast.BinaryAdd, Left: concrete, Right: literal}
	mod := moduleOf(&ast.ExpressionStmt{Expression: bin})
	assignTypes(t, mod, nil)

	if k := literalKind(t, bin.Right); k != types.F32 {
		t.Fatalf("expected residual literal operand to concretize to f32, got %v", k)
	}
}
