package sltext

import (
	"strings"
	"testing"

	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/constant"
	"github.com/nzsl-go/nzsl/internal/ref"
	"github.com/nzsl-go/nzsl/internal/transform"
	"github.com/nzsl-go/nzsl/internal/types"
)

func newTestModule(statements ...ast.Statement) *ast.Module {
	mod := ast.NewModule(ast.Metadata{
		ModuleName:        "Test",
		ShaderLangVersion: ast.Version{Major: 1, Minor: 0},
	})
	mod.RootStatement.Statements = statements
	return mod
}

func printModule(t *testing.T, mod *ast.Module, ctx *transform.Context) string {
	t.Helper()
	p := New(Options{}, ctx)
	return p.Print(mod)
}

func TestPrintModuleHeader(t *testing.T) {
	mod := newTestModule()
	out := printModule(t, mod, transform.NewContext())
	if !strings.Contains(out, `nzsl_version("1.0")`) {
		t.Fatalf("expected a version directive, got %q", out)
	}
}

func TestPrintModuleHeaderDirectives(t *testing.T) {
	mod := ast.NewModule(ast.Metadata{
		ModuleName:        "Test",
		ShaderLangVersion: ast.Version{Major: 1, Minor: 0},
		Author:            "nzsl",
		Description:       "a test module",
		License:           "MIT",
		EnabledFeatures:   []ast.ModuleFeature{ast.FeatureFloat64},
	})
	out := printModule(t, mod, transform.NewContext())
	for _, want := range []string{
		`[author("nzsl")]`,
		`[desc("a test module")]`,
		`[license("MIT")]`,
		`[feature(float64)]`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got %q", want, out)
		}
	}
}

func TestPrintConstDecl(t *testing.T) {
	f32 := types.NewPrimitive(types.F32)
	decl := &ast.DeclareConstStmt{
		ConstantRef: ref.Constant(0),
		Name:        "Pi",
		Type:        ast.ResolvedValue[types.Type](f32),
		Expression:  &ast.ConstantValueExpr{Value: constant.F32(3.14)},
	}
	out := printModule(t, newTestModule(decl), transform.NewContext())
	if !strings.Contains(out, "const Pi: f32 = 3.14f;") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestPrintExportedConst(t *testing.T) {
	decl := &ast.DeclareConstStmt{
		Name:       "MaxLights",
		IsExported: ast.ResolvedValue(true),
		Expression: &ast.ConstantValueExpr{Value: constant.IntLiteral(4)},
	}
	out := printModule(t, newTestModule(decl), transform.NewContext())
	if !strings.Contains(out, "[export]") {
		t.Fatalf("expected an [export] attribute, got %q", out)
	}
	if !strings.Contains(out, "const MaxLights = 4;") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestPrintStructDecl(t *testing.T) {
	f32 := types.NewPrimitive(types.F32)
	decl := &ast.DeclareStructStmt{
		StructRef: ref.Struct(0),
		Description: ast.StructDescription{
			Name:   "Light",
			Layout: ast.ResolvedValue(ast.LayoutStd140),
			Members: []ast.StructMember{
				{Name: "position", Type: ast.ResolvedValue[types.Type](&types.Vector{Count: 3, Elem: types.F32})},
				{Name: "intensity", Type: ast.ResolvedValue[types.Type](f32)},
			},
		},
	}
	out := printModule(t, newTestModule(decl), transform.NewContext())
	for _, want := range []string{
		"[layout(std140)]",
		"struct Light {",
		"position: vec3[f32]",
		"intensity: f32",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got %q", want, out)
		}
	}
}

func TestPrintExternalDecl(t *testing.T) {
	decl := &ast.DeclareExternalStmt{
		Tag: "Scene",
		ExternalVars: []ast.ExternalVar{
			{
				Name:    "params",
				Binding: ast.ResolvedValue[uint32](0),
				Set:     ast.ResolvedValue[uint32](1),
				Type:    ast.ResolvedValue[types.Type](&types.Uniform{StructRef: ref.Struct(0)}),
			},
		},
	}
	out := printModule(t, newTestModule(decl), transform.NewContext())
	for _, want := range []string{
		`[tag("Scene")]`,
		"[set(1)]",
		"[binding(0)]",
		"external {",
		"params:",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got %q", want, out)
		}
	}
}

func TestPrintFunctionDecl(t *testing.T) {
	f32 := types.NewPrimitive(types.F32)
	fn := &ast.DeclareFunctionStmt{
		FuncRef:    ref.Function(0),
		Name:       "main",
		EntryStage: ast.ResolvedValue(ast.StageFragment),
		ReturnType: ast.ResolvedValue[types.Type](f32),
		Parameters: []ast.FunctionParam{
			{Name: "x", Type: ast.ResolvedValue[types.Type](f32)},
		},
		Statements: []ast.Statement{
			&ast.ReturnStmt{ReturnExpr: &ast.IdentifierExpr{Identifier: "x"}},
		},
	}
	out := printModule(t, newTestModule(fn), transform.NewContext())
	for _, want := range []string{
		"[entry(frag)]",
		"fn main(x: f32) -> f32 {",
		"return x;",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got %q", want, out)
		}
	}
}

func TestPrintVariableDeclAndAssignment(t *testing.T) {
	decl := &ast.DeclareVariableStmt{
		Name:              "total",
		InitialExpression: &ast.ConstantValueExpr{Value: constant.IntLiteral(0)},
	}
	assign := &ast.ExpressionStmt{
		Expression: &ast.AssignExpr{
			Op:    ast.AssignCompoundAdd,
			Left:  &ast.IdentifierExpr{Identifier: "total"},
			Right: &ast.ConstantValueExpr{Value: constant.IntLiteral(1)},
		},
	}
	out := printModule(t, newTestModule(decl, assign), transform.NewContext())
	if !strings.Contains(out, "let total = 0;") {
		t.Fatalf("unexpected output: %q", out)
	}
	if !strings.Contains(out, "total += 1;") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestPrintIfElseChain(t *testing.T) {
	branch := &ast.BranchStmt{
		CondStatements: []ast.ConditionalBranch{
			{
				Condition: &ast.IdentifierExpr{Identifier: "cond"},
				Statement: &ast.MultiStmt{Statements: []ast.Statement{
					&ast.ReturnStmt{ReturnExpr: &ast.ConstantValueExpr{Value: constant.IntLiteral(1)}},
				}},
			},
		},
		ElseStatement: &ast.MultiStmt{Statements: []ast.Statement{
			&ast.ReturnStmt{ReturnExpr: &ast.ConstantValueExpr{Value: constant.IntLiteral(0)}},
		}},
	}
	out := printModule(t, newTestModule(branch), transform.NewContext())
	if !strings.Contains(out, "if cond {") || !strings.Contains(out, "} else {") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestPrintForRange(t *testing.T) {
	loop := &ast.ForStmt{
		VarName:  "i",
		FromExpr: &ast.ConstantValueExpr{Value: constant.IntLiteral(0)},
		ToExpr:   &ast.ConstantValueExpr{Value: constant.IntLiteral(10)},
		Statement: &ast.MultiStmt{Statements: []ast.Statement{
			&ast.ContinueStmt{},
		}},
	}
	out := printModule(t, newTestModule(loop), transform.NewContext())
	if !strings.Contains(out, "for i in 0 -> 10 {") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestPrintSwizzle(t *testing.T) {
	expr := &ast.ExpressionStmt{
		Expression: &ast.SwizzleExpr{
			Expr:           &ast.IdentifierExpr{Identifier: "v"},
			Components:     [4]uint32{0, 1, 2},
			ComponentCount: 3,
		},
	}
	out := printModule(t, newTestModule(expr), transform.NewContext())
	if !strings.Contains(out, "v.xyz;") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestPrintNameLookupsUseContextRegistrations(t *testing.T) {
	ctx := transform.NewContext()
	fnRef, err := ctx.RegisterFunction("helper", transform.FunctionData{Name: "helper"})
	if err != nil {
		t.Fatalf("RegisterFunction: %v", err)
	}
	call := &ast.ExpressionStmt{
		Expression: &ast.CallFunctionExpr{
			TargetFunction: &ast.FunctionExpr{FuncRef: fnRef},
		},
	}
	out := printModule(t, newTestModule(call), ctx)
	if !strings.Contains(out, "helper();") {
		t.Fatalf("expected a call to the registered function name, got %q", out)
	}
}

func TestPrintVectorConstantLiteral(t *testing.T) {
	v, err := constant.Vec([]constant.Value{constant.F32(1), constant.F32(2), constant.F32(3)})
	if err != nil {
		t.Fatalf("Vec: %v", err)
	}
	stmt := &ast.ExpressionStmt{Expression: &ast.ConstantValueExpr{Value: v}}
	out := printModule(t, newTestModule(stmt), transform.NewContext())
	if !strings.Contains(out, "vec3[f32](1f, 2f, 3f);") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestPrintMinifyWhitespaceDropsIndentation(t *testing.T) {
	decl := &ast.DeclareConstStmt{
		Name:       "X",
		Expression: &ast.ConstantValueExpr{Value: constant.IntLiteral(1)},
	}
	p := New(Options{MinifyWhitespace: true}, transform.NewContext())
	out := p.Print(newTestModule(decl))
	if strings.Contains(out, "\n") {
		t.Fatalf("expected no newlines in minified output, got %q", out)
	}
}
