package api

import (
	"bytes"
	"testing"

	"github.com/nzsl-go/nzsl/internal/ast"
)

const sampleSource = `
nzsl_version("1.0");

const Pi = 3.0;

struct Light
{
	color: vec3[f32]
}

external
{
	[binding(0), set(0)] data: sampler2D[f32]
}

[entry(frag)]
fn main() -> f32
{
	let x = 1.0;
	for i in 0 -> 4
	{
		x += Pi;
	}
	return x;
}
`

func compile(t *testing.T) (*Module, *Context) {
	t.Helper()
	mod, diags := ParseModule(sampleSource, "test.sl")
	if diags.HasErrors() {
		t.Fatalf("unexpected parse diagnostics: %s", diags.Format())
	}

	ctx := NewContext()
	if err := Resolve(mod, ctx, ResolveOptions{}); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if err := PropagateConstants(mod, ctx); err != nil {
		t.Fatalf("PropagateConstants failed: %v", err)
	}
	if err := AssignLiteralTypes(mod, ctx); err != nil {
		t.Fatalf("AssignLiteralTypes failed: %v", err)
	}
	return mod, ctx
}

func TestParseModuleReportsParseErrors(t *testing.T) {
	_, diags := ParseModule(`nzsl_version("garbage");`, "test.sl")
	if !diags.HasErrors() {
		t.Fatal("expected parse diagnostics for a malformed version string")
	}
}

func TestResolveAndPropagateAndAssignLiteralTypesSucceed(t *testing.T) {
	mod, _ := compile(t)
	if len(mod.RootStatement.Statements) == 0 {
		t.Fatal("expected a resolved module with top-level statements")
	}
}

func TestLoweringPassesRunInOrderWithoutError(t *testing.T) {
	mod, ctx := compile(t)

	RemoveAliases(mod, ctx)
	SplitBranches(mod, ctx)
	ExpandCompoundAssignments(mod, ctx)
	if err := LowerForEachLoops(mod, ctx); err != nil {
		t.Fatalf("LowerForEachLoops failed: %v", err)
	}
	if err := LowerForLoops(mod, ctx); err != nil {
		t.Fatalf("LowerForLoops failed: %v", err)
	}
	if err := Unroll(mod, ctx); err != nil {
		t.Fatalf("Unroll failed: %v", err)
	}
	LowerMatrices(mod, ctx)
	PadStd140(mod, ctx)
	SplitStructAssignments(mod, ctx)
	LowerSwizzles(mod, ctx)

	if len(mod.RootStatement.Statements) == 0 {
		t.Fatal("expected statements to survive the full lowering chain")
	}
}

func TestSerializeDeserializeRoundTrips(t *testing.T) {
	mod, _ := compile(t)

	var buf bytes.Buffer
	if err := Serialize(mod, &buf); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	roundTripped, err := Deserialize(&buf)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if len(roundTripped.RootStatement.Statements) != len(mod.RootStatement.Statements) {
		t.Fatalf("round trip changed statement count: got %d, want %d",
			len(roundTripped.RootStatement.Statements), len(mod.RootStatement.Statements))
	}
}

func TestDependencyCheckMarksConstUsedByEntryAsLive(t *testing.T) {
	mod, _ := compile(t)

	usage := DependencyCheck(mod, []ShaderStage{StageFragment})

	found := false
	for _, s := range mod.RootStatement.Statements {
		c, ok := s.(*ast.DeclareConstStmt)
		if !ok {
			continue
		}
		found = true
		if !usage.ConstantUsed(c.ConstantRef) {
			t.Fatalf("expected constant %q used inside main() to be reachable", c.Name)
		}
	}
	if !found {
		t.Fatal("expected a DeclareConstStmt in the compiled module")
	}
}

func TestDependencyCheckWithNoUsedStagesTreatsEveryEntryAsRoot(t *testing.T) {
	mod, _ := compile(t)

	usage := DependencyCheck(mod, nil)

	found := false
	for _, s := range mod.RootStatement.Statements {
		fn, ok := s.(*ast.DeclareFunctionStmt)
		if !ok {
			continue
		}
		found = true
		if !usage.FunctionUsed(fn.FuncRef) {
			t.Fatalf("expected entry function %q to count as a root with no used-stages filter", fn.Name)
		}
	}
	if !found {
		t.Fatal("expected a DeclareFunctionStmt in the compiled module")
	}
}
