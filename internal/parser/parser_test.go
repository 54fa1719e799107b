package parser

import (
	"testing"

	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/ref"
)

func parseModule(t *testing.T, source string) *ast.Module {
	t.Helper()
	mod, diags := New(source).Parse("test.sl")
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics parsing %q: %v", source, diags.Diagnostics())
	}
	return mod
}

func TestParseModuleHeader(t *testing.T) {
	mod := parseModule(t, `nzsl_version("1.0");`)
	if mod.Metadata.ShaderLangVersion != (ast.Version{Major: 1, Minor: 0}) {
		t.Fatalf("unexpected version: %+v", mod.Metadata.ShaderLangVersion)
	}
}

func TestParseModuleHeaderDirectives(t *testing.T) {
	mod := parseModule(t, `
		nzsl_version("1.0");
		author("jane doe");
		desc("a test module");
		license("MIT");
		feature(float64);
	`)
	if mod.Metadata.Author != "jane doe" {
		t.Fatalf("unexpected author: %q", mod.Metadata.Author)
	}
	if mod.Metadata.Description != "a test module" {
		t.Fatalf("unexpected description: %q", mod.Metadata.Description)
	}
	if mod.Metadata.License != "MIT" {
		t.Fatalf("unexpected license: %q", mod.Metadata.License)
	}
	if !mod.Metadata.HasFeature(ast.FeatureFloat64) {
		t.Fatal("expected float64 feature to be enabled")
	}
}

func TestParseInvalidVersionReportsDiagnostic(t *testing.T) {
	_, diags := New(`nzsl_version("garbage");`).Parse("test.sl")
	if !diags.HasErrors() {
		t.Fatal("expected a diagnostic for a malformed version string")
	}
}

func TestParseDuplicateFeatureReportsDiagnostic(t *testing.T) {
	_, diags := New(`
		nzsl_version("1.0");
		feature(float64);
		feature(float64);
	`).Parse("test.sl")
	if !diags.HasErrors() {
		t.Fatal("expected a diagnostic for a feature enabled twice")
	}
}

func TestParseConstDecl(t *testing.T) {
	mod := parseModule(t, `
		nzsl_version("1.0");
		const pi: f32 = 3.14;
	`)
	if len(mod.RootStatement.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(mod.RootStatement.Statements))
	}
	decl, ok := mod.RootStatement.Statements[0].(*ast.DeclareConstStmt)
	if !ok {
		t.Fatalf("expected *ast.DeclareConstStmt, got %T", mod.RootStatement.Statements[0])
	}
	if decl.Name != "pi" {
		t.Fatalf("unexpected name: %q", decl.Name)
	}
	if decl.ConstantRef.IsValid() {
		t.Fatal("expected an un-resolved const to carry ref.InvalidConstant")
	}
	if !decl.Type.IsUnresolved() {
		t.Fatal("expected the type annotation to be unresolved")
	}
	if decl.Expression == nil {
		t.Fatal("expected a const expression")
	}
}

func TestParseExportedConst(t *testing.T) {
	mod := parseModule(t, `
		nzsl_version("1.0");
		[export] const flag = true;
	`)
	decl := mod.RootStatement.Statements[0].(*ast.DeclareConstStmt)
	if !decl.IsExported.IsResolved() || !decl.IsExported.GetResultingValue() {
		t.Fatal("expected a bare [export] attribute to resolve to true")
	}
}

func TestParseOptionDecl(t *testing.T) {
	mod := parseModule(t, `
		nzsl_version("1.0");
		option UseFancyLighting: bool = false;
	`)
	decl, ok := mod.RootStatement.Statements[0].(*ast.DeclareOptionStmt)
	if !ok {
		t.Fatalf("expected *ast.DeclareOptionStmt, got %T", mod.RootStatement.Statements[0])
	}
	if decl.Name != "UseFancyLighting" {
		t.Fatalf("unexpected name: %q", decl.Name)
	}
	if decl.ConstantRef.IsValid() {
		t.Fatal("expected ref.InvalidConstant before resolution")
	}
}

func TestParseAliasDecl(t *testing.T) {
	mod := parseModule(t, `
		nzsl_version("1.0");
		alias Scalar = f32;
	`)
	decl, ok := mod.RootStatement.Statements[0].(*ast.DeclareAliasStmt)
	if !ok {
		t.Fatalf("expected *ast.DeclareAliasStmt, got %T", mod.RootStatement.Statements[0])
	}
	if decl.Name != "Scalar" {
		t.Fatalf("unexpected name: %q", decl.Name)
	}
	if _, ok := decl.Expression.(*ast.IdentifierExpr); !ok {
		t.Fatalf("expected a bare identifier expression, got %T", decl.Expression)
	}
}

func TestParseStructDecl(t *testing.T) {
	mod := parseModule(t, `
		nzsl_version("1.0");
		[layout(std140)]
		struct Params {
			[location(0)] scale: f32,
			offset: vec3[f32]
		}
	`)
	decl, ok := mod.RootStatement.Statements[0].(*ast.DeclareStructStmt)
	if !ok {
		t.Fatalf("expected *ast.DeclareStructStmt, got %T", mod.RootStatement.Statements[0])
	}
	if decl.Description.Name != "Params" {
		t.Fatalf("unexpected name: %q", decl.Description.Name)
	}
	if !decl.Description.Layout.IsUnresolved() {
		t.Fatal("expected the layout attribute to be unresolved")
	}
	if len(decl.Description.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(decl.Description.Members))
	}
	scale := decl.Description.Members[0]
	if scale.Name != "scale" || !scale.Location.IsUnresolved() {
		t.Fatalf("unexpected first member: %+v", scale)
	}
	offset := decl.Description.Members[1]
	idx, ok := offset.Type.GetExpression().(*ast.AccessIndexExpr)
	if !ok {
		t.Fatalf("expected a templated type for offset, got %T", offset.Type.GetExpression())
	}
	if len(idx.Indices) != 1 {
		t.Fatalf("expected 1 type argument, got %d", len(idx.Indices))
	}
}

func TestParseExternalDecl(t *testing.T) {
	mod := parseModule(t, `
		nzsl_version("1.0");
		[tag("Data")]
		external {
			[binding(0), set(0)] data: uniform[Params]
		}
	`)
	decl, ok := mod.RootStatement.Statements[0].(*ast.DeclareExternalStmt)
	if !ok {
		t.Fatalf("expected *ast.DeclareExternalStmt, got %T", mod.RootStatement.Statements[0])
	}
	if decl.Tag != "Data" {
		t.Fatalf("unexpected tag: %q", decl.Tag)
	}
	if len(decl.ExternalVars) != 1 {
		t.Fatalf("expected 1 external var, got %d", len(decl.ExternalVars))
	}
	ev := decl.ExternalVars[0]
	if ev.Name != "data" || !ev.Binding.IsUnresolved() || !ev.Set.IsUnresolved() {
		t.Fatalf("unexpected external var: %+v", ev)
	}
	if ev.VariableRef.IsValid() {
		t.Fatal("expected ref.InvalidVariable before resolution")
	}
}

func TestParseFunctionDecl(t *testing.T) {
	mod := parseModule(t, `
		nzsl_version("1.0");
		[entry(frag)]
		fn main(color: vec4[f32]) -> vec4[f32]
		{
			return color;
		}
	`)
	decl, ok := mod.RootStatement.Statements[0].(*ast.DeclareFunctionStmt)
	if !ok {
		t.Fatalf("expected *ast.DeclareFunctionStmt, got %T", mod.RootStatement.Statements[0])
	}
	if decl.Name != "main" {
		t.Fatalf("unexpected name: %q", decl.Name)
	}
	if !decl.EntryStage.IsUnresolved() {
		t.Fatal("expected the entry attribute to be unresolved")
	}
	if len(decl.Parameters) != 1 || decl.Parameters[0].Name != "color" {
		t.Fatalf("unexpected parameters: %+v", decl.Parameters)
	}
	if len(decl.Statements) != 1 {
		t.Fatalf("expected 1 statement in the body, got %d", len(decl.Statements))
	}
	if _, ok := decl.Statements[0].(*ast.ReturnStmt); !ok {
		t.Fatalf("expected a return statement, got %T", decl.Statements[0])
	}
}

func TestParseFunctionParamsCarryInvalidVariableRef(t *testing.T) {
	mod := parseModule(t, `
		nzsl_version("1.0");
		fn helper(x: f32) {
		}
	`)
	fn := mod.RootStatement.Statements[0].(*ast.DeclareFunctionStmt)
	if fn.FuncRef.IsValid() {
		t.Fatal("expected ref.InvalidFunction before resolution")
	}
	if fn.Parameters[0].VariableRef != ref.InvalidVariable {
		t.Fatalf("expected ref.InvalidVariable, got %v", fn.Parameters[0].VariableRef)
	}
}

func TestParseImportDecl(t *testing.T) {
	mod := parseModule(t, `
		nzsl_version("1.0");
		import foo as bar, baz from Utils;
	`)
	decl, ok := mod.RootStatement.Statements[0].(*ast.ImportStmt)
	if !ok {
		t.Fatalf("expected *ast.ImportStmt, got %T", mod.RootStatement.Statements[0])
	}
	if decl.ModuleName != "Utils" {
		t.Fatalf("unexpected module name: %q", decl.ModuleName)
	}
	if len(decl.Identifiers) != 2 {
		t.Fatalf("expected 2 imported identifiers, got %d", len(decl.Identifiers))
	}
	if decl.Identifiers[0].Identifier != "foo" || decl.Identifiers[0].RenamedIdentifier != "bar" {
		t.Fatalf("unexpected first identifier: %+v", decl.Identifiers[0])
	}
	if decl.Identifiers[1].Identifier != "baz" || decl.Identifiers[1].RenamedIdentifier != "" {
		t.Fatalf("unexpected second identifier: %+v", decl.Identifiers[1])
	}
}

func TestParseWildcardImport(t *testing.T) {
	mod := parseModule(t, `
		nzsl_version("1.0");
		import * from Utils;
	`)
	decl := mod.RootStatement.Statements[0].(*ast.ImportStmt)
	if !decl.Wildcard() {
		t.Fatal("expected a wildcard import")
	}
}

func TestParseBareModuleImport(t *testing.T) {
	mod := parseModule(t, `
		nzsl_version("1.0");
		import Utils;
	`)
	decl := mod.RootStatement.Statements[0].(*ast.ImportStmt)
	if decl.ModuleName != "Utils" {
		t.Fatalf("unexpected module name: %q", decl.ModuleName)
	}
	if len(decl.Identifiers) != 0 {
		t.Fatalf("expected no imported identifiers, got %d", len(decl.Identifiers))
	}
}

// parseFunctionBody parses a single entry function wrapping body and returns
// its statement list, failing the test on any diagnostic.
func parseFunctionBody(t *testing.T, body string) []ast.Statement {
	t.Helper()
	source := "nzsl_version(\"1.0\");\nfn test() {\n" + body + "\n}"
	mod, diags := New(source).Parse("test.sl")
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics parsing %q: %v", source, diags.Diagnostics())
	}
	fn := mod.RootStatement.Statements[0].(*ast.DeclareFunctionStmt)
	return fn.Statements
}

func TestParseIfElseChain(t *testing.T) {
	fn := parseFunctionBody(t, `
		if x > 0.0 {
			return 1.0;
		} else if x < 0.0 {
			return -1.0;
		} else {
			return 0.0;
		}
	`)
	branch, ok := fn[0].(*ast.BranchStmt)
	if !ok {
		t.Fatalf("expected *ast.BranchStmt, got %T", fn[0])
	}
	if branch.IsConst {
		t.Fatal("did not expect IsConst on a plain if")
	}
	if len(branch.CondStatements) != 2 {
		t.Fatalf("expected 2 conditional arms, got %d", len(branch.CondStatements))
	}
	if branch.ElseStatement == nil {
		t.Fatal("expected an else arm")
	}
	if _, ok := branch.CondStatements[0].Statement.(*ast.MultiStmt); !ok {
		t.Fatalf("expected a bare MultiStmt body, got %T", branch.CondStatements[0].Statement)
	}
}

func TestParseConstIf(t *testing.T) {
	fn := parseFunctionBody(t, `
		const if UseFancyLighting {
			return 1.0;
		}
	`)
	branch, ok := fn[0].(*ast.BranchStmt)
	if !ok {
		t.Fatalf("expected *ast.BranchStmt, got %T", fn[0])
	}
	if !branch.IsConst {
		t.Fatal("expected IsConst on a const if")
	}
}

func TestParseStandaloneBlockGetsItsOwnScope(t *testing.T) {
	fn := parseFunctionBody(t, `
		{
			let x = 1;
		}
	`)
	scoped, ok := fn[0].(*ast.ScopedStmt)
	if !ok {
		t.Fatalf("expected *ast.ScopedStmt for a standalone block, got %T", fn[0])
	}
	if _, ok := scoped.Statement.(*ast.MultiStmt); !ok {
		t.Fatalf("expected the scoped block to wrap a MultiStmt, got %T", scoped.Statement)
	}
}

func TestParseForRange(t *testing.T) {
	fn := parseFunctionBody(t, `
		for i in 0 -> 10 : 2 {
			discard;
		}
	`)
	loop, ok := fn[0].(*ast.ForStmt)
	if !ok {
		t.Fatalf("expected *ast.ForStmt, got %T", fn[0])
	}
	if loop.VarName != "i" {
		t.Fatalf("unexpected loop variable: %q", loop.VarName)
	}
	if loop.StepExpr == nil {
		t.Fatal("expected a step expression")
	}
	if loop.VariableRef.IsValid() {
		t.Fatal("expected ref.InvalidVariable before resolution")
	}
}

func TestParseForEach(t *testing.T) {
	fn := parseFunctionBody(t, `
		for v in lights {
			discard;
		}
	`)
	loop, ok := fn[0].(*ast.ForEachStmt)
	if !ok {
		t.Fatalf("expected *ast.ForEachStmt, got %T", fn[0])
	}
	if loop.VarName != "v" {
		t.Fatalf("unexpected loop variable: %q", loop.VarName)
	}
}

func TestParseWhileWithUnroll(t *testing.T) {
	fn := parseFunctionBody(t, `
		[unroll(always)]
		while running {
			break;
		}
	`)
	loop, ok := fn[0].(*ast.WhileStmt)
	if !ok {
		t.Fatalf("expected *ast.WhileStmt, got %T", fn[0])
	}
	if !loop.Unroll.IsUnresolved() {
		t.Fatal("expected the unroll attribute to be unresolved")
	}
}

func TestParseVariableDeclAndAssignment(t *testing.T) {
	fn := parseFunctionBody(t, `
		let total: f32 = 0.0;
		total += 1.0;
	`)
	if len(fn) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(fn))
	}
	decl, ok := fn[0].(*ast.DeclareVariableStmt)
	if !ok {
		t.Fatalf("expected *ast.DeclareVariableStmt, got %T", fn[0])
	}
	if decl.Name != "total" {
		t.Fatalf("unexpected name: %q", decl.Name)
	}
	exprStmt, ok := fn[1].(*ast.ExpressionStmt)
	if !ok {
		t.Fatalf("expected *ast.ExpressionStmt, got %T", fn[1])
	}
	assign, ok := exprStmt.Expression.(*ast.AssignExpr)
	if !ok {
		t.Fatalf("expected *ast.AssignExpr, got %T", exprStmt.Expression)
	}
	if assign.Op != ast.AssignCompoundAdd {
		t.Fatalf("unexpected assign op: %v", assign.Op)
	}
}

func TestParseLogicalCompoundAssignment(t *testing.T) {
	fn := parseFunctionBody(t, `
		ok &&= other;
	`)
	exprStmt := fn[0].(*ast.ExpressionStmt)
	assign, ok := exprStmt.Expression.(*ast.AssignExpr)
	if !ok {
		t.Fatalf("expected *ast.AssignExpr, got %T", exprStmt.Expression)
	}
	if assign.Op != ast.AssignCompoundLogicalAnd {
		t.Fatalf("unexpected assign op: %v", assign.Op)
	}
}

func TestParseFieldAccessChain(t *testing.T) {
	fn := parseFunctionBody(t, `
		return light.position.x;
	`)
	ret := fn[0].(*ast.ReturnStmt)
	acc, ok := ret.ReturnExpr.(*ast.AccessIdentifierExpr)
	if !ok {
		t.Fatalf("expected *ast.AccessIdentifierExpr, got %T", ret.ReturnExpr)
	}
	if len(acc.Identifiers) != 2 {
		t.Fatalf("expected a collapsed chain of 2 identifiers, got %d", len(acc.Identifiers))
	}
	if acc.Identifiers[0].Name != "position" || acc.Identifiers[1].Name != "x" {
		t.Fatalf("unexpected chain: %+v", acc.Identifiers)
	}
}

func TestParseMethodCall(t *testing.T) {
	fn := parseFunctionBody(t, `
		return v.normalize();
	`)
	ret := fn[0].(*ast.ReturnStmt)
	call, ok := ret.ReturnExpr.(*ast.CallMethodExpr)
	if !ok {
		t.Fatalf("expected *ast.CallMethodExpr, got %T", ret.ReturnExpr)
	}
	if call.MethodName != "normalize" {
		t.Fatalf("unexpected method name: %q", call.MethodName)
	}
}

func TestParseConstructorCallIsAlwaysCallFunctionExpr(t *testing.T) {
	fn := parseFunctionBody(t, `
		return vec4[f32](1.0, 0.0, 0.0, 1.0);
	`)
	ret := fn[0].(*ast.ReturnStmt)
	call, ok := ret.ReturnExpr.(*ast.CallFunctionExpr)
	if !ok {
		t.Fatalf("expected *ast.CallFunctionExpr (never CastExpr), got %T", ret.ReturnExpr)
	}
	if len(call.Params) != 4 {
		t.Fatalf("expected 4 constructor arguments, got %d", len(call.Params))
	}
	idx, ok := call.TargetFunction.(*ast.AccessIndexExpr)
	if !ok {
		t.Fatalf("expected the callee to be a templated type access, got %T", call.TargetFunction)
	}
	if len(idx.Indices) != 1 {
		t.Fatalf("expected 1 template argument, got %d", len(idx.Indices))
	}
}

func TestParseOperatorPrecedence(t *testing.T) {
	fn := parseFunctionBody(t, `
		return 1.0 + 2.0 * 3.0;
	`)
	ret := fn[0].(*ast.ReturnStmt)
	add, ok := ret.ReturnExpr.(*ast.BinaryExpr)
	if !ok || add.Op != ast.BinaryAdd {
		t.Fatalf("expected a top-level addition, got %#v", ret.ReturnExpr)
	}
	if _, ok := add.Left.(*ast.ConstantValueExpr); !ok {
		t.Fatalf("expected a literal on the left, got %T", add.Left)
	}
	mul, ok := add.Right.(*ast.BinaryExpr)
	if !ok || mul.Op != ast.BinaryMultiply {
		t.Fatalf("expected multiplication to bind tighter than addition, got %#v", add.Right)
	}
}

func TestParseParenthesesOverridePrecedence(t *testing.T) {
	fn := parseFunctionBody(t, `
		return (1.0 + 2.0) * 3.0;
	`)
	ret := fn[0].(*ast.ReturnStmt)
	mul, ok := ret.ReturnExpr.(*ast.BinaryExpr)
	if !ok || mul.Op != ast.BinaryMultiply {
		t.Fatalf("expected a top-level multiplication, got %#v", ret.ReturnExpr)
	}
	if _, ok := mul.Left.(*ast.BinaryExpr); !ok {
		t.Fatalf("expected the parenthesized addition on the left, got %T", mul.Left)
	}
}

func TestParseTernary(t *testing.T) {
	fn := parseFunctionBody(t, `
		return cond ? 1.0 : 2.0;
	`)
	ret := fn[0].(*ast.ReturnStmt)
	if _, ok := ret.ReturnExpr.(*ast.ConditionalExpr); !ok {
		t.Fatalf("expected *ast.ConditionalExpr, got %T", ret.ReturnExpr)
	}
}

func TestParseIntegerSuffixes(t *testing.T) {
	fn := parseFunctionBody(t, `
		return 7u;
	`)
	ret := fn[0].(*ast.ReturnStmt)
	lit, ok := ret.ReturnExpr.(*ast.ConstantValueExpr)
	if !ok {
		t.Fatalf("expected *ast.ConstantValueExpr, got %T", ret.ReturnExpr)
	}
	if lit.Value.U32Value() != 7 {
		t.Fatalf("expected a u32 literal of 7, got %+v", lit.Value)
	}
}

func TestParseUnsuffixedIntLiteralIsUntyped(t *testing.T) {
	fn := parseFunctionBody(t, `
		return 7;
	`)
	ret := fn[0].(*ast.ReturnStmt)
	lit := ret.ReturnExpr.(*ast.ConstantValueExpr)
	if lit.Value.IntLiteralValue() != 7 {
		t.Fatalf("expected an untyped int literal of 7, got %+v", lit.Value)
	}
}

func TestParseUnsuffixedFloatLiteralIsUntyped(t *testing.T) {
	fn := parseFunctionBody(t, `
		return 1.5;
	`)
	ret := fn[0].(*ast.ReturnStmt)
	lit := ret.ReturnExpr.(*ast.ConstantValueExpr)
	if lit.Value.FloatLiteralValue() != 1.5 {
		t.Fatalf("expected an untyped float literal of 1.5, got %+v", lit.Value)
	}
}

func TestParseUnaryOperators(t *testing.T) {
	fn := parseFunctionBody(t, `
		return -x;
	`)
	ret := fn[0].(*ast.ReturnStmt)
	u, ok := ret.ReturnExpr.(*ast.UnaryExpr)
	if !ok || u.Op != ast.UnaryMinus {
		t.Fatalf("expected a unary minus, got %#v", ret.ReturnExpr)
	}
}

func TestParseIndexAccess(t *testing.T) {
	fn := parseFunctionBody(t, `
		return colors[2];
	`)
	ret := fn[0].(*ast.ReturnStmt)
	idx, ok := ret.ReturnExpr.(*ast.AccessIndexExpr)
	if !ok {
		t.Fatalf("expected *ast.AccessIndexExpr, got %T", ret.ReturnExpr)
	}
	if len(idx.Indices) != 1 {
		t.Fatalf("expected 1 index, got %d", len(idx.Indices))
	}
}

func TestParseMissingSemicolonReportsDiagnostic(t *testing.T) {
	_, diags := New(`
		nzsl_version("1.0")
		const pi: f32 = 3.14;
	`).Parse("test.sl")
	if !diags.HasErrors() {
		t.Fatal("expected a diagnostic for the missing semicolon after nzsl_version(...)")
	}
}

func TestParseUnknownAttributeReportsDiagnostic(t *testing.T) {
	_, diags := New(`
		nzsl_version("1.0");
		[bogus]
		fn main() {
		}
	`).Parse("test.sl")
	if !diags.HasErrors() {
		t.Fatal("expected a diagnostic for an unrecognized attribute")
	}
}

func TestParseUnfinishedStringReportsDiagnostic(t *testing.T) {
	_, diags := New(`nzsl_version("1.0`).Parse("test.sl")
	if !diags.HasErrors() {
		t.Fatal("expected a diagnostic for an unfinished string")
	}
}
