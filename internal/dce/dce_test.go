package dce

import (
	"testing"

	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/constant"
	"github.com/nzsl-go/nzsl/internal/ref"
	"github.com/nzsl-go/nzsl/internal/types"
)

func newTestModule(statements ...ast.Statement) *ast.Module {
	mod := ast.NewModule(ast.Metadata{ModuleName: "Test"})
	mod.RootStatement.Statements = statements
	return mod
}

func TestCheckNilModule(t *testing.T) {
	usage := Check(nil, nil)
	if len(usage.Functions) != 0 || len(usage.Constants) != 0 {
		t.Fatalf("expected an empty result for a nil module, got %#v", usage)
	}
}

// A fragment entry point that reads an external uniform and calls a helper
// function; a second, unrelated function and struct are never referenced.
func TestCheckMarksTransitiveClosureFromEntryPoint(t *testing.T) {
	f32 := types.NewPrimitive(types.F32)

	usedStruct := &ast.DeclareStructStmt{
		StructRef: ref.Struct(1),
		Description: ast.StructDescription{
			Name: "Params",
			Members: []ast.StructMember{
				{Name: "scale", Type: ast.ResolvedValue[types.Type](f32)},
			},
		},
	}
	usedExternal := &ast.DeclareExternalStmt{
		ExternalVars: []ast.ExternalVar{
			{
				VariableRef: ref.Variable(1),
				Name:        "params",
				Type:        ast.ResolvedValue[types.Type](&types.Uniform{StructRef: ref.Struct(1)}),
			},
		},
	}
	helper := &ast.DeclareFunctionStmt{
		FuncRef:    ref.Function(1),
		Name:       "helper",
		ReturnType: ast.ResolvedValue[types.Type](f32),
		Statements: []ast.Statement{
			&ast.ReturnStmt{ReturnExpr: &ast.VariableValueExpr{VariableRef: ref.Variable(1)}},
		},
	}
	entry := &ast.DeclareFunctionStmt{
		FuncRef:    ref.Function(2),
		Name:       "main",
		EntryStage: ast.ResolvedValue(ast.StageFragment),
		Statements: []ast.Statement{
			&ast.ExpressionStmt{Expression: &ast.CallFunctionExpr{
				TargetFunction: &ast.FunctionExpr{FuncRef: ref.Function(1)},
			}},
		},
	}
	unusedFn := &ast.DeclareFunctionStmt{
		FuncRef: ref.Function(3),
		Name:    "unused",
	}
	unusedStruct := &ast.DeclareStructStmt{
		StructRef: ref.Struct(2),
		Description: ast.StructDescription{
			Name: "Unused",
		},
	}

	mod := newTestModule(usedStruct, usedExternal, helper, entry, unusedFn, unusedStruct)

	usage := Check(mod, []ast.ShaderStage{ast.StageFragment})

	if !usage.FunctionUsed(ref.Function(2)) {
		t.Fatal("expected the entry point itself to be marked used")
	}
	if !usage.FunctionUsed(ref.Function(1)) {
		t.Fatal("expected helper, called from the entry point, to be marked used")
	}
	if !usage.VariableUsed(ref.Variable(1)) {
		t.Fatal("expected the external variable read by helper to be marked used")
	}
	if !usage.StructUsed(ref.Struct(1)) {
		t.Fatal("expected the struct backing the used external to be marked used")
	}
	if usage.FunctionUsed(ref.Function(3)) {
		t.Fatal("did not expect the unreferenced function to be marked used")
	}
	if usage.StructUsed(ref.Struct(2)) {
		t.Fatal("did not expect the unreferenced struct to be marked used")
	}
}

// An entry point for a stage not in usedStages contributes nothing.
func TestCheckIgnoresEntryPointsOutsideUsedStages(t *testing.T) {
	vertexEntry := &ast.DeclareFunctionStmt{
		FuncRef:    ref.Function(1),
		Name:       "vs_main",
		EntryStage: ast.ResolvedValue(ast.StageVertex),
	}
	mod := newTestModule(vertexEntry)

	usage := Check(mod, []ast.ShaderStage{ast.StageFragment})

	if usage.FunctionUsed(ref.Function(1)) {
		t.Fatal("did not expect a vertex entry point to be marked used when only fragment is requested")
	}
}

// With no usedStages filter at all, every entry point counts as live.
func TestCheckWithNoStageFilterUsesEveryEntryPoint(t *testing.T) {
	vertexEntry := &ast.DeclareFunctionStmt{
		FuncRef:    ref.Function(1),
		Name:       "vs_main",
		EntryStage: ast.ResolvedValue(ast.StageVertex),
	}
	computeEntry := &ast.DeclareFunctionStmt{
		FuncRef:    ref.Function(2),
		Name:       "cs_main",
		EntryStage: ast.ResolvedValue(ast.StageCompute),
	}
	mod := newTestModule(vertexEntry, computeEntry)

	usage := Check(mod, nil)

	if !usage.FunctionUsed(ref.Function(1)) || !usage.FunctionUsed(ref.Function(2)) {
		t.Fatal("expected every entry point to be marked used when usedStages is empty")
	}
}

// A constant referenced only through another constant's initializer is
// still reachable transitively.
func TestCheckFollowsConstantToConstantDependency(t *testing.T) {
	base := &ast.DeclareConstStmt{
		ConstantRef: ref.Constant(1),
		Name:        "base",
		Expression:  &ast.ConstantValueExpr{Value: constant.I32(2)},
	}
	derived := &ast.DeclareConstStmt{
		ConstantRef: ref.Constant(2),
		Name:        "derived",
		Expression:  &ast.ConstantExpr{ConstantRef: ref.Constant(1)},
	}
	unusedConst := &ast.DeclareConstStmt{
		ConstantRef: ref.Constant(3),
		Name:        "unused",
		Expression:  &ast.ConstantValueExpr{Value: constant.I32(9)},
	}
	entry := &ast.DeclareFunctionStmt{
		FuncRef:    ref.Function(1),
		EntryStage: ast.ResolvedValue(ast.StageCompute),
		Statements: []ast.Statement{
			&ast.ExpressionStmt{Expression: &ast.ConstantExpr{ConstantRef: ref.Constant(2)}},
		},
	}
	mod := newTestModule(base, derived, unusedConst, entry)

	usage := Check(mod, []ast.ShaderStage{ast.StageCompute})

	if !usage.ConstantUsed(ref.Constant(2)) {
		t.Fatal("expected the directly referenced constant to be used")
	}
	if !usage.ConstantUsed(ref.Constant(1)) {
		t.Fatal("expected the transitively referenced constant to be used")
	}
	if usage.ConstantUsed(ref.Constant(3)) {
		t.Fatal("did not expect the unreferenced constant to be used")
	}
}

// A struct reachable only through a local variable's declared type inside a
// live function's body is still picked up, since collectStmtRefs folds
// local declarations into the enclosing function's own reference list.
func TestCheckFollowsLocalVariableTypeIntoStruct(t *testing.T) {
	localStructRef := ref.Struct(5)
	s := &ast.DeclareStructStmt{
		StructRef: localStructRef,
		Description: ast.StructDescription{
			Name: "Local",
		},
	}
	structType := &types.Struct{StructRef: localStructRef, Name: "Local"}
	entry := &ast.DeclareFunctionStmt{
		FuncRef:    ref.Function(1),
		EntryStage: ast.ResolvedValue(ast.StageVertex),
		Statements: []ast.Statement{
			&ast.DeclareVariableStmt{
				VariableRef: ref.Variable(9),
				Name:        "v",
				Type:        ast.ResolvedValue[types.Type](structType),
			},
		},
	}
	mod := newTestModule(s, entry)

	usage := Check(mod, []ast.ShaderStage{ast.StageVertex})

	if !usage.StructUsed(localStructRef) {
		t.Fatal("expected the struct naming a local variable's type to be used")
	}
	// The local variable itself never gets its own dependency-graph node; it
	// is not part of the reported bitsets at all, unlike a top-level external.
	if usage.VariableUsed(ref.Variable(9)) {
		t.Fatal("did not expect a purely local variable to appear in the variable bitset")
	}
}
