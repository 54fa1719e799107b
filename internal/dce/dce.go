// Package dce implements dependency analysis for SL modules: given the set
// of shader stages a caller actually uses, it finds every alias, constant,
// function, struct and variable reachable from that stage's entry points, so
// a later dead-code eliminator can drop the rest.
package dce

import (
	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/ref"
	"github.com/nzsl-go/nzsl/internal/types"
)

// category distinguishes the five reference tables a declaration can belong
// to. It is only used internally to key the dependency graph; aliases are
// folded into it too even though UsageBitsets drops them, because this
// package has to remain correct whether or not AliasRemover has already run
// over the module.
type category uint8

const (
	categoryAlias category = iota
	categoryConstant
	categoryFunction
	categoryStruct
	categoryVariable
)

// node identifies one declaration across all five tables.
type node struct {
	cat category
	idx ref.Index
}

// UsageBitsets is the transitive closure of declarations reachable from a
// set of entry points, one set per category. Alias is not one of them: by
// the time dependency analysis normally runs, AliasRemover has already
// erased every alias from the tree, so there is nothing left to report.
type UsageBitsets struct {
	Constants map[ref.Constant]bool
	Functions map[ref.Function]bool
	Structs   map[ref.Struct]bool
	Variables map[ref.Variable]bool
}

func newUsageBitsets() UsageBitsets {
	return UsageBitsets{
		Constants: make(map[ref.Constant]bool),
		Functions: make(map[ref.Function]bool),
		Structs:   make(map[ref.Struct]bool),
		Variables: make(map[ref.Variable]bool),
	}
}

// ConstantUsed reports whether r is reachable from an analyzed entry point.
func (u UsageBitsets) ConstantUsed(r ref.Constant) bool { return u.Constants[r] }

// FunctionUsed reports whether r is reachable from an analyzed entry point.
func (u UsageBitsets) FunctionUsed(r ref.Function) bool { return u.Functions[r] }

// StructUsed reports whether r is reachable from an analyzed entry point.
func (u UsageBitsets) StructUsed(r ref.Struct) bool { return u.Structs[r] }

// VariableUsed reports whether r is reachable from an analyzed entry point.
func (u UsageBitsets) VariableUsed(r ref.Variable) bool { return u.Variables[r] }

// Check computes the transitive closure of declarations used by the entry
// points whose stage appears in usedStages. If usedStages is empty, every
// entry point is considered used; declarations no entry point reaches are
// still left unmarked.
func Check(module *ast.Module, usedStages []ast.ShaderStage) UsageBitsets {
	result := newUsageBitsets()
	if module == nil {
		return result
	}

	deps := buildDependencyGraph(module)
	entryPoints := findEntryPoints(module, usedStages)

	visited := make(map[node]bool)
	for _, ep := range entryPoints {
		markLive(ep, deps, visited)
	}

	for n := range visited {
		switch n.cat {
		case categoryConstant:
			result.Constants[ref.Constant(n.idx)] = true
		case categoryFunction:
			result.Functions[ref.Function(n.idx)] = true
		case categoryStruct:
			result.Structs[ref.Struct(n.idx)] = true
		case categoryVariable:
			result.Variables[ref.Variable(n.idx)] = true
		}
	}
	return result
}

// buildDependencyGraph maps each top-level declaration to the declarations
// its own initializer, type signature and (for a function) body reference.
func buildDependencyGraph(module *ast.Module) map[node][]node {
	deps := make(map[node][]node)
	collectDeclDeps(module.RootStatement, deps)
	for _, im := range module.ImportedModules {
		if im.Module != nil {
			collectDeclDeps(im.Module.RootStatement, deps)
		}
	}
	return deps
}

func collectDeclDeps(stmt ast.Statement, deps map[node][]node) {
	switch s := stmt.(type) {
	case *ast.MultiStmt:
		for _, inner := range s.Statements {
			collectDeclDeps(inner, deps)
		}

	case *ast.ScopedStmt:
		collectDeclDeps(s.Statement, deps)

	case *ast.DeclareConstStmt:
		if s.ConstantRef.IsValid() {
			refs := collectExprRefs(s.Expression)
			refs = append(refs, collectTypeAttrRefs(s.Type)...)
			deps[node{categoryConstant, ref.Index(s.ConstantRef)}] = refs
		}

	case *ast.DeclareOptionStmt:
		// Options collapse into the constant category once resolved.
		if s.ConstantRef.IsValid() {
			refs := collectExprRefs(s.DefaultValue)
			refs = append(refs, collectTypeAttrRefs(s.Type)...)
			deps[node{categoryConstant, ref.Index(s.ConstantRef)}] = refs
		}

	case *ast.DeclareExternalStmt:
		for _, ev := range s.ExternalVars {
			if ev.VariableRef.IsValid() {
				refs := collectTypeAttrRefs(ev.Type)
				deps[node{categoryVariable, ref.Index(ev.VariableRef)}] = refs
			}
		}

	case *ast.DeclareStructStmt:
		if s.StructRef.IsValid() {
			var refs []node
			for _, m := range s.Description.Members {
				refs = append(refs, collectTypeAttrRefs(m.Type)...)
			}
			deps[node{categoryStruct, ref.Index(s.StructRef)}] = refs
		}

	case *ast.DeclareAliasStmt:
		if s.AliasRef.IsValid() {
			deps[node{categoryAlias, ref.Index(s.AliasRef)}] = collectExprRefs(s.Expression)
		}

	case *ast.DeclareFunctionStmt:
		if s.FuncRef.IsValid() {
			var refs []node
			for _, p := range s.Parameters {
				refs = append(refs, collectTypeAttrRefs(p.Type)...)
			}
			refs = append(refs, collectTypeAttrRefs(s.ReturnType)...)
			for _, inner := range s.Statements {
				refs = append(refs, collectStmtRefs(inner)...)
			}
			deps[node{categoryFunction, ref.Index(s.FuncRef)}] = refs
		}
	}
}

// collectExprRefs collects declaration references from an expression.
func collectExprRefs(expr ast.Expression) []node {
	if expr == nil {
		return nil
	}

	var refs []node

	switch e := expr.(type) {
	case *ast.AccessIdentifierExpr:
		refs = append(refs, collectExprRefs(e.Expr)...)

	case *ast.AccessFieldExpr:
		refs = append(refs, collectExprRefs(e.Expr)...)

	case *ast.AccessIndexExpr:
		refs = append(refs, collectExprRefs(e.Expr)...)
		for _, idx := range e.Indices {
			refs = append(refs, collectExprRefs(idx)...)
		}

	case *ast.AliasValueExpr:
		if e.AliasRef.IsValid() {
			refs = append(refs, node{categoryAlias, ref.Index(e.AliasRef)})
		}

	case *ast.AssignExpr:
		refs = append(refs, collectExprRefs(e.Left)...)
		refs = append(refs, collectExprRefs(e.Right)...)

	case *ast.BinaryExpr:
		refs = append(refs, collectExprRefs(e.Left)...)
		refs = append(refs, collectExprRefs(e.Right)...)

	case *ast.CallFunctionExpr:
		refs = append(refs, collectExprRefs(e.TargetFunction)...)
		for _, p := range e.Params {
			refs = append(refs, collectExprRefs(p)...)
		}

	case *ast.CallMethodExpr:
		refs = append(refs, collectExprRefs(e.Object)...)
		for _, p := range e.Params {
			refs = append(refs, collectExprRefs(p)...)
		}

	case *ast.CastExpr:
		refs = append(refs, collectTypeAttrRefs(e.TargetType)...)
		for _, x := range e.Exprs {
			refs = append(refs, collectExprRefs(x)...)
		}

	case *ast.ConditionalExpr:
		refs = append(refs, collectExprRefs(e.Cond)...)
		refs = append(refs, collectExprRefs(e.TruePath)...)
		refs = append(refs, collectExprRefs(e.FalsePath)...)

	case *ast.ConstantExpr:
		if e.ConstantRef.IsValid() {
			refs = append(refs, node{categoryConstant, ref.Index(e.ConstantRef)})
		}

	case *ast.FunctionExpr:
		if e.FuncRef.IsValid() {
			refs = append(refs, node{categoryFunction, ref.Index(e.FuncRef)})
		}

	case *ast.IntrinsicExpr:
		for _, p := range e.Params {
			refs = append(refs, collectExprRefs(p)...)
		}

	case *ast.StructTypeExpr:
		if e.StructRef.IsValid() {
			refs = append(refs, node{categoryStruct, ref.Index(e.StructRef)})
		}

	case *ast.SwizzleExpr:
		refs = append(refs, collectExprRefs(e.Expr)...)

	case *ast.VariableValueExpr:
		if e.VariableRef.IsValid() {
			refs = append(refs, node{categoryVariable, ref.Index(e.VariableRef)})
		}

	case *ast.UnaryExpr:
		refs = append(refs, collectExprRefs(e.Expr)...)
	}

	return refs
}

// collectTypeAttrRefs collects declaration references out of an
// ExpressionValue[types.Type] attribute, the shape every Type-carrying
// field on a declaration uses.
func collectTypeAttrRefs(attr ast.ExpressionValue[types.Type]) []node {
	if !attr.IsResolved() {
		return nil
	}
	return collectTypeRefs(attr.GetResultingValue())
}

// collectTypeRefs collects declaration references from a resolved type.
func collectTypeRefs(t types.Type) []node {
	if t == nil {
		return nil
	}

	var refs []node

	switch tt := t.(type) {
	case *types.Array:
		refs = append(refs, collectTypeRefs(tt.Inner)...)

	case *types.DynArray:
		refs = append(refs, collectTypeRefs(tt.Inner)...)

	case *types.Alias:
		refs = append(refs, collectTypeRefs(tt.Target)...)

	case *types.Struct:
		if tt.StructRef.IsValid() {
			refs = append(refs, node{categoryStruct, ref.Index(tt.StructRef)})
		}

	case *types.Uniform:
		if tt.StructRef.IsValid() {
			refs = append(refs, node{categoryStruct, ref.Index(tt.StructRef)})
		}

	case *types.Storage:
		if tt.StructRef.IsValid() {
			refs = append(refs, node{categoryStruct, ref.Index(tt.StructRef)})
		}

	case *types.PushConstant:
		if tt.StructRef.IsValid() {
			refs = append(refs, node{categoryStruct, ref.Index(tt.StructRef)})
		}

	case *types.Function:
		if tt.FuncRef.IsValid() {
			refs = append(refs, node{categoryFunction, ref.Index(tt.FuncRef)})
		}

	case *types.Method:
		refs = append(refs, collectTypeRefs(tt.ObjectType)...)
	}

	return refs
}

// collectStmtRefs collects declaration references from a statement, inlining
// the references of any local declaration it introduces into its own
// result rather than giving the local declaration a dependency-graph node of
// its own: a local variable lives and dies with its enclosing function.
func collectStmtRefs(stmt ast.Statement) []node {
	if stmt == nil {
		return nil
	}

	var refs []node

	switch s := stmt.(type) {
	case *ast.MultiStmt:
		for _, inner := range s.Statements {
			refs = append(refs, collectStmtRefs(inner)...)
		}

	case *ast.ScopedStmt:
		refs = append(refs, collectStmtRefs(s.Statement)...)

	case *ast.BranchStmt:
		for _, cond := range s.CondStatements {
			refs = append(refs, collectExprRefs(cond.Condition)...)
			refs = append(refs, collectStmtRefs(cond.Statement)...)
		}
		refs = append(refs, collectStmtRefs(s.ElseStatement)...)

	case *ast.ConditionalStmt:
		refs = append(refs, collectExprRefs(s.Cond)...)
		refs = append(refs, collectStmtRefs(s.Statement)...)

	case *ast.ForStmt:
		refs = append(refs, collectExprRefs(s.FromExpr)...)
		refs = append(refs, collectExprRefs(s.ToExpr)...)
		refs = append(refs, collectExprRefs(s.StepExpr)...)
		refs = append(refs, collectStmtRefs(s.Statement)...)

	case *ast.ForEachStmt:
		refs = append(refs, collectExprRefs(s.Expression)...)
		refs = append(refs, collectStmtRefs(s.Statement)...)

	case *ast.WhileStmt:
		refs = append(refs, collectExprRefs(s.Condition)...)
		refs = append(refs, collectStmtRefs(s.Body)...)

	case *ast.ReturnStmt:
		refs = append(refs, collectExprRefs(s.ReturnExpr)...)

	case *ast.ExpressionStmt:
		refs = append(refs, collectExprRefs(s.Expression)...)

	case *ast.DeclareVariableStmt:
		refs = append(refs, collectExprRefs(s.InitialExpression)...)
		refs = append(refs, collectTypeAttrRefs(s.Type)...)

	case *ast.DeclareConstStmt:
		refs = append(refs, collectExprRefs(s.Expression)...)
		refs = append(refs, collectTypeAttrRefs(s.Type)...)

	case *ast.DeclareStructStmt:
		for _, m := range s.Description.Members {
			refs = append(refs, collectTypeAttrRefs(m.Type)...)
		}

	case *ast.DeclareFunctionStmt:
		// A function declared inside another function (rejected elsewhere
		// by the resolver, but harmless to walk defensively here).
		for _, inner := range s.Statements {
			refs = append(refs, collectStmtRefs(inner)...)
		}
	}

	return refs
}

// findEntryPoints returns the graph node for every top-level function whose
// entry stage is set and, when usedStages is non-empty, appears in it.
func findEntryPoints(module *ast.Module, usedStages []ast.ShaderStage) []node {
	wanted := make(map[ast.ShaderStage]bool, len(usedStages))
	for _, s := range usedStages {
		wanted[s] = true
	}

	var entryPoints []node
	var scan func(stmt ast.Statement)
	scan = func(stmt ast.Statement) {
		switch s := stmt.(type) {
		case *ast.MultiStmt:
			for _, inner := range s.Statements {
				scan(inner)
			}
		case *ast.ScopedStmt:
			scan(s.Statement)
		case *ast.DeclareFunctionStmt:
			if !s.IsEntryPoint() {
				return
			}
			stage := s.EntryStage.GetResultingValue()
			if len(wanted) > 0 && !wanted[stage] {
				return
			}
			entryPoints = append(entryPoints, node{categoryFunction, ref.Index(s.FuncRef)})
		}
	}
	scan(module.RootStatement)
	return entryPoints
}

// markLive marks n and everything it transitively depends on as visited.
func markLive(n node, deps map[node][]node, visited map[node]bool) {
	if visited[n] {
		return
	}
	visited[n] = true
	for _, dep := range deps[n] {
		markLive(dep, deps, visited)
	}
}
