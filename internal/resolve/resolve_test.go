package resolve

import (
	"testing"

	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/constant"
	"github.com/nzsl-go/nzsl/internal/transform"
	"github.com/nzsl-go/nzsl/internal/types"
)

func mustResolve(t *testing.T, mod *ast.Module) *transform.Context {
	t.Helper()
	ctx := transform.NewContext()
	if err := Resolve(mod, ctx, Options{}); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	return ctx
}

func moduleOf(stmts ...ast.Statement) *ast.Module {
	return &ast.Module{RootStatement: &ast.MultiStmt{Statements: stmts}}
}

func TestResolveConstInfersTypeFromInitializer(t *testing.T) {
	st := &ast.DeclareConstStmt{
		Name:       "X",
		Expression: &ast.ConstantValueExpr{Value: constant.I32(7)},
	}
	ctx := mustResolve(t, moduleOf(st))

	if !st.ConstantRef.IsValid() {
		t.Fatalf("ConstantRef not registered")
	}
	if !st.Type.IsResolved() {
		t.Fatalf("const type not resolved")
	}
	data, ok := ctx.Constant(st.ConstantRef)
	if !ok || data.Type == nil || !data.Type.Equals(types.NewPrimitive(types.I32)) {
		t.Fatalf("unexpected const type: %+v", data)
	}
}

func TestResolveFunctionBodyVariableAndReturn(t *testing.T) {
	fn := &ast.DeclareFunctionStmt{
		Name: "identity",
		Parameters: []ast.FunctionParam{
			{Name: "x", Type: ast.ResolvedValue[types.Type](types.NewPrimitive(types.F32))},
		},
		ReturnType: ast.ResolvedValue[types.Type](types.NewPrimitive(types.F32)),
		Statements: []ast.Statement{
			&ast.DeclareVariableStmt{
				Name:              "y",
				InitialExpression: &ast.IdentifierExpr{Identifier: "x"},
			},
			&ast.ReturnStmt{ReturnExpr: &ast.IdentifierExpr{Identifier: "y"}},
		},
	}
	mustResolve(t, moduleOf(fn))

	decl := fn.Statements[0].(*ast.DeclareVariableStmt)
	if !decl.VariableRef.IsValid() {
		t.Fatalf("variable not registered")
	}
	if !decl.Type.IsResolved() || !decl.Type.GetResultingValue().Equals(types.NewPrimitive(types.F32)) {
		t.Fatalf("inferred variable type wrong: %+v", decl.Type)
	}
	ret := fn.Statements[1].(*ast.ReturnStmt)
	if _, ok := ret.ReturnExpr.(*ast.VariableValueExpr); !ok {
		t.Fatalf("return expression not resolved to a variable value, got %T", ret.ReturnExpr)
	}
}

func TestResolveReturnTypeMismatch(t *testing.T) {
	fn := &ast.DeclareFunctionStmt{
		Name:       "bad",
		ReturnType: ast.ResolvedValue[types.Type](types.NewPrimitive(types.F32)),
		Statements: []ast.Statement{
			&ast.ReturnStmt{ReturnExpr: &ast.ConstantValueExpr{Value: constant.Bool(true)}},
		},
	}
	ctx := transform.NewContext()
	if err := Resolve(moduleOf(fn), ctx, Options{}); err == nil {
		t.Fatalf("expected a type mismatch error, got none")
	}
}

func TestResolveBinaryIncompatibleTypes(t *testing.T) {
	fn := &ast.DeclareFunctionStmt{
		Name: "f",
		Statements: []ast.Statement{
			&ast.ExpressionStmt{Expression: &ast.BinaryExpr{
				Op:    ast.BinaryAdd,
				Left:  &ast.ConstantValueExpr{Value: constant.Bool(true)},
				Right: &ast.ConstantValueExpr{Value: constant.I32(1)},
			}},
		},
	}
	ctx := transform.NewContext()
	if err := Resolve(moduleOf(fn), ctx, Options{}); err == nil {
		t.Fatalf("expected an incompatible-types error, got none")
	}
}

func TestResolveStructFieldAccess(t *testing.T) {
	structStmt := &ast.DeclareStructStmt{
		Description: ast.StructDescription{
			Name: "Point",
			Members: []ast.StructMember{
				{Name: "x", Type: ast.ResolvedValue[types.Type](types.NewPrimitive(types.F32))},
				{Name: "y", Type: ast.ResolvedValue[types.Type](types.NewPrimitive(types.F32))},
			},
		},
	}
	fn := &ast.DeclareFunctionStmt{
		Name: "useField",
		Parameters: []ast.FunctionParam{
			{Name: "p", Type: ast.UnresolvedValue[types.Type](&ast.IdentifierExpr{Identifier: "Point"})},
		},
		Statements: []ast.Statement{
			&ast.ExpressionStmt{Expression: &ast.AccessIdentifierExpr{
				Expr:        &ast.IdentifierExpr{Identifier: "p"},
				Identifiers: []ast.AccessIdentifierName{{Name: "x"}},
			}},
		},
	}
	mustResolve(t, moduleOf(structStmt, fn))

	expr := fn.Statements[0].(*ast.ExpressionStmt).Expression
	field, ok := expr.(*ast.AccessFieldExpr)
	if !ok {
		t.Fatalf("expected an AccessFieldExpr, got %T", expr)
	}
	if field.FieldIndex != 0 {
		t.Fatalf("expected field index 0, got %d", field.FieldIndex)
	}
	if !field.CachedType().Equals(types.NewPrimitive(types.F32)) {
		t.Fatalf("unexpected field type: %s", field.CachedType())
	}
}

func TestResolveSwizzle(t *testing.T) {
	fn := &ast.DeclareFunctionStmt{
		Name: "swiz",
		Parameters: []ast.FunctionParam{
			{Name: "v", Type: ast.UnresolvedValue[types.Type](&ast.AccessIndexExpr{
				Expr:    &ast.IdentifierExpr{Identifier: "vec3"},
				Indices: []ast.Expression{&ast.IdentifierExpr{Identifier: "f32"}},
			})},
		},
		Statements: []ast.Statement{
			&ast.ExpressionStmt{Expression: &ast.AccessIdentifierExpr{
				Expr:        &ast.IdentifierExpr{Identifier: "v"},
				Identifiers: []ast.AccessIdentifierName{{Name: "xy"}},
			}},
		},
	}
	mustResolve(t, moduleOf(fn))

	expr := fn.Statements[0].(*ast.ExpressionStmt).Expression
	sw, ok := expr.(*ast.SwizzleExpr)
	if !ok {
		t.Fatalf("expected a SwizzleExpr, got %T", expr)
	}
	if sw.ComponentCount != 2 {
		t.Fatalf("expected 2 components, got %d", sw.ComponentCount)
	}
	vt, ok := sw.CachedType().(*types.Vector)
	if !ok || vt.Count != 2 {
		t.Fatalf("expected a 2-component vector result, got %s", sw.CachedType())
	}
}

func TestBreakOutsideLoopErrors(t *testing.T) {
	fn := &ast.DeclareFunctionStmt{
		Name:       "f",
		Statements: []ast.Statement{&ast.BreakStmt{}},
	}
	ctx := transform.NewContext()
	if err := Resolve(moduleOf(fn), ctx, Options{}); err == nil {
		t.Fatalf("expected a loop-control-outside-of-loop error, got none")
	}
}

func TestBreakInsideForLoopResolves(t *testing.T) {
	fn := &ast.DeclareFunctionStmt{
		Name: "f",
		Statements: []ast.Statement{
			&ast.ForStmt{
				VarName:   "i",
				FromExpr:  &ast.ConstantValueExpr{Value: constant.I32(0)},
				ToExpr:    &ast.ConstantValueExpr{Value: constant.I32(10)},
				Statement: &ast.BreakStmt{},
			},
		},
	}
	mustResolve(t, moduleOf(fn))
}

func TestConstIfPrunesUntakenBranch(t *testing.T) {
	fn := &ast.DeclareFunctionStmt{
		Name: "f",
		Statements: []ast.Statement{
			&ast.BranchStmt{
				IsConst: true,
				CondStatements: []ast.ConditionalBranch{
					{
						Condition: &ast.ConstantValueExpr{Value: constant.Bool(false)},
						Statement: &ast.BreakStmt{}, // would fail to resolve (outside a loop) if reached
					},
				},
				ElseStatement: &ast.ReturnStmt{},
			},
		},
	}
	mustResolve(t, moduleOf(fn))

	resolved := fn.Statements[0]
	if _, ok := resolved.(*ast.ReturnStmt); !ok {
		t.Fatalf("expected the branch to be pruned down to its else arm, got %T", resolved)
	}
}

func TestModuleQualifiedAccessMemoizesRepeatedMember(t *testing.T) {
	subMod := moduleOf(&ast.DeclareConstStmt{
		Name:       "Answer",
		Expression: &ast.ConstantValueExpr{Value: constant.I32(42)},
		IsExported: ast.ResolvedValue(true),
	})

	fn := &ast.DeclareFunctionStmt{
		Name: "f",
		Statements: []ast.Statement{
			&ast.ExpressionStmt{Expression: &ast.AccessIdentifierExpr{
				Expr:        &ast.IdentifierExpr{Identifier: "M"},
				Identifiers: []ast.AccessIdentifierName{{Name: "Answer"}},
			}},
			&ast.ExpressionStmt{Expression: &ast.AccessIdentifierExpr{
				Expr:        &ast.IdentifierExpr{Identifier: "M"},
				Identifiers: []ast.AccessIdentifierName{{Name: "Answer"}},
			}},
		},
	}
	importStmt := &ast.ImportStmt{ModuleName: "M"}

	ctx := transform.NewContext()
	err := Resolve(moduleOf(importStmt, fn), ctx, Options{ImportResolver: stubImportResolver{mod: subMod}})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	for i, s := range fn.Statements {
		expr := s.(*ast.ExpressionStmt).Expression
		if _, ok := expr.(*ast.ConstantExpr); !ok {
			t.Fatalf("statement %d: expected a ConstantExpr, got %T", i, expr)
		}
	}
}

type stubImportResolver struct{ mod *ast.Module }

func (s stubImportResolver) ResolveImport(name string) (*ast.Module, error) {
	return s.mod, nil
}
