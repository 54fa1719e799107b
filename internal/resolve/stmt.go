package resolve

import (
	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/diagnostic"
	"github.com/nzsl-go/nzsl/internal/transform"
	"github.com/nzsl-go/nzsl/internal/types"
)

// resolveStmt resolves one statement inside a function body. Unlike
// resolveExpr, several cases here mutate control flow itself: a `const if`
// branch is pruned down to whichever arm its condition picked, replacing the
// BranchStmt entirely rather than just annotating it.
func (r *Resolver) resolveStmt(s ast.Statement) (ast.Statement, *diagnostic.Error) {
	switch st := s.(type) {
	case *ast.DeclareVariableStmt:
		return r.resolveDeclareVariable(st)
	case *ast.ExpressionStmt:
		return r.resolveExpressionStmt(st)
	case *ast.ReturnStmt:
		return r.resolveReturn(st)
	case *ast.BranchStmt:
		return r.resolveBranch(st)
	case *ast.ConditionalStmt:
		return r.resolveConditionalStmt(st)
	case *ast.ForStmt:
		return r.resolveFor(st)
	case *ast.ForEachStmt:
		return r.resolveForEach(st)
	case *ast.WhileStmt:
		return r.resolveWhile(st)
	case *ast.BreakStmt:
		if r.loopDepth == 0 {
			return nil, r.errAt(st.Location(), diagnostic.LoopControlOutsideOfLoop, "break used outside of a loop")
		}
		return st, nil
	case *ast.ContinueStmt:
		if r.loopDepth == 0 {
			return nil, r.errAt(st.Location(), diagnostic.LoopControlOutsideOfLoop, "continue used outside of a loop")
		}
		return st, nil
	case *ast.DiscardStmt:
		return r.resolveDiscard(st)
	case *ast.ScopedStmt:
		return r.resolveScoped(st)
	case *ast.MultiStmt:
		for i, inner := range st.Statements {
			ni, err := r.resolveStmt(inner)
			if err != nil {
				return nil, err
			}
			st.Statements[i] = ni
		}
		return st, nil
	case *ast.NoOpStmt:
		return st, nil
	case *ast.DeclareConstStmt:
		return r.registerConst(st)
	case *ast.DeclareAliasStmt:
		return r.registerAlias(st)
	case *ast.DeclareFunctionStmt:
		return nil, r.errAt(st.Location(), diagnostic.FunctionDeclarationInsideFunction,
			"function %q cannot be declared inside a function body", st.Name)
	case *ast.DeclareStructStmt:
		return nil, r.errAt(st.Location(), diagnostic.StructDeclarationInsideFunction,
			"struct %q cannot be declared inside a function body", st.Description.Name)
	case *ast.DeclareOptionStmt:
		return nil, r.errAt(st.Location(), diagnostic.OptionDeclarationInsideFunction,
			"option %q cannot be declared inside a function body", st.Name)
	case *ast.DeclareExternalStmt:
		return nil, r.internalErr(st.Location(), "external blocks cannot be declared inside a function body")
	default:
		return nil, r.internalErr(s.Location(), "unexpected statement kind %T in function body", s)
	}
}

func (r *Resolver) resolveDeclareVariable(st *ast.DeclareVariableStmt) (ast.Statement, *diagnostic.Error) {
	var declared types.Type
	if st.Type.IsUnresolved() {
		t, err := r.resolveTypeValue(st.Type.GetExpression())
		if err != nil {
			return nil, err
		}
		st.Type.Resolve(t)
		declared = t
	} else if st.Type.IsResolved() {
		declared = st.Type.GetResultingValue()
	}

	if st.InitialExpression == nil {
		if declared == nil {
			return nil, r.errAt(st.Location(), diagnostic.VarDeclarationMissingTypeAndValue,
				"variable %q needs a type or an initial value", st.Name)
		}
	} else {
		resolved, err := r.resolveExpr(st.InitialExpression)
		if err != nil {
			return nil, err
		}
		st.InitialExpression = resolved
		if declared == nil {
			declared = resolved.CachedType()
			st.Type = ast.ResolvedValue(declared)
		} else if !declared.Equals(resolved.CachedType()) && !types.CanConvertTo(resolved.CachedType(), declared) {
			return nil, r.errAt(st.Location(), diagnostic.VarDeclarationTypeUnmatching,
				"variable %q declared as %s but initialized with %s", st.Name, declared, resolved.CachedType())
		}
	}

	idx, regErr := r.ctx.RegisterVariable(st.Name, transform.VariableData{Name: st.Name, Type: declared})
	if regErr != nil {
		return nil, r.errAt(st.Location(), diagnostic.IdentifierAlreadyUsed, "%v", regErr)
	}
	st.VariableRef = idx
	return st, nil
}

func (r *Resolver) resolveExpressionStmt(st *ast.ExpressionStmt) (ast.Statement, *diagnostic.Error) {
	resolved, err := r.resolveExpr(st.Expression)
	if err != nil {
		return nil, err
	}
	st.Expression = resolved
	return st, nil
}

func (r *Resolver) resolveReturn(st *ast.ReturnStmt) (ast.Statement, *diagnostic.Error) {
	if r.funcDepth == 0 {
		return nil, r.internalErr(st.Location(), "return statement outside of a function")
	}
	_, wantsVoid := r.returnType.(types.NoType)

	if st.ReturnExpr == nil {
		if !wantsVoid {
			return nil, r.errAt(st.Location(), diagnostic.UnmatchingTypes,
				"function must return a value of type %s", r.returnType)
		}
		return st, nil
	}

	resolved, err := r.resolveExpr(st.ReturnExpr)
	if err != nil {
		return nil, err
	}
	st.ReturnExpr = resolved
	if wantsVoid {
		return nil, r.errAt(st.Location(), diagnostic.UnmatchingTypes, "function does not return a value")
	}
	if !r.returnType.Equals(resolved.CachedType()) && !types.CanConvertTo(resolved.CachedType(), r.returnType) {
		return nil, r.errAt(st.Location(), diagnostic.UnmatchingTypes,
			"function returns %s but this statement returns %s", r.returnType, resolved.CachedType())
	}
	return st, nil
}

// resolveScoped pushes a fresh scope around one nested statement: the body
// of an if/else arm, a loop, or a bare `{ ... }` block.
func (r *Resolver) resolveScoped(st *ast.ScopedStmt) (ast.Statement, *diagnostic.Error) {
	r.ctx.PushScope()
	defer r.ctx.PopScope()
	resolved, err := r.resolveStmt(st.Statement)
	if err != nil {
		return nil, err
	}
	st.Statement = resolved
	return st, nil
}

func (r *Resolver) resolveScopedBranch(s ast.Statement) (ast.Statement, *diagnostic.Error) {
	r.ctx.PushScope()
	defer r.ctx.PopScope()
	return r.resolveStmt(s)
}

func (r *Resolver) resolveBranch(st *ast.BranchStmt) (ast.Statement, *diagnostic.Error) {
	if st.IsConst {
		for _, cb := range st.CondStatements {
			v, err := r.evalConstBoolExpr(cb.Condition)
			if err != nil {
				return nil, err
			}
			if v {
				return r.resolveScopedBranch(cb.Statement)
			}
		}
		if st.ElseStatement != nil {
			return r.resolveScopedBranch(st.ElseStatement)
		}
		return &ast.NoOpStmt{}, nil
	}

	for i := range st.CondStatements {
		cb := &st.CondStatements[i]
		cond, err := r.resolveExpr(cb.Condition)
		if err != nil {
			return nil, err
		}
		cb.Condition = cond
		if k, ok := types.ScalarKind(cond.CachedType()); !ok || k != types.Bool {
			return nil, r.errAt(cond.Location(), diagnostic.ConditionExpectedBool, "branch condition must be bool")
		}
		resolved, err := r.resolveScopedBranch(cb.Statement)
		if err != nil {
			return nil, err
		}
		cb.Statement = resolved
	}
	if st.ElseStatement != nil {
		resolved, err := r.resolveScopedBranch(st.ElseStatement)
		if err != nil {
			return nil, err
		}
		st.ElseStatement = resolved
	}
	return st, nil
}

// resolveConditionalStmt is `const if cond { stmt }` with no else arm: the
// whole statement is replaced by its body when cond holds, or by a NoOpStmt
// otherwise.
func (r *Resolver) resolveConditionalStmt(st *ast.ConditionalStmt) (ast.Statement, *diagnostic.Error) {
	v, err := r.evalConstBoolExpr(st.Cond)
	if err != nil {
		return nil, err
	}
	if !v {
		return &ast.NoOpStmt{}, nil
	}
	return r.resolveScopedBranch(st.Statement)
}

func (r *Resolver) resolveFor(st *ast.ForStmt) (ast.Statement, *diagnostic.Error) {
	from, err := r.resolveExpr(st.FromExpr)
	if err != nil {
		return nil, err
	}
	st.FromExpr = from
	k, ok := types.ScalarKind(from.CachedType())
	if !ok || !k.IsInteger() {
		return nil, r.errAt(from.Location(), diagnostic.ForFromTypeExpectIntegerType, "for loop bound must be an integer")
	}

	to, err := r.resolveExpr(st.ToExpr)
	if err != nil {
		return nil, err
	}
	st.ToExpr = to
	if !from.CachedType().Equals(to.CachedType()) && !types.CanConvertTo(to.CachedType(), from.CachedType()) {
		return nil, r.errAt(to.Location(), diagnostic.ForToUnmatchingType,
			"for loop upper bound has type %s, expected %s", to.CachedType(), from.CachedType())
	}

	if st.StepExpr != nil {
		step, err := r.resolveExpr(st.StepExpr)
		if err != nil {
			return nil, err
		}
		st.StepExpr = step
		if !from.CachedType().Equals(step.CachedType()) && !types.CanConvertTo(step.CachedType(), from.CachedType()) {
			return nil, r.errAt(step.Location(), diagnostic.ForStepUnmatchingType,
				"for loop step has type %s, expected %s", step.CachedType(), from.CachedType())
		}
	}

	if st.Unroll.IsUnresolved() {
		v, err := resolveEnumAttr(r, st.Unroll.GetExpression(), loopUnrollByName, "unroll")
		if err != nil {
			return nil, err
		}
		st.Unroll.Resolve(v)
	}

	r.ctx.PushScope()
	defer r.ctx.PopScope()
	idx, regErr := r.ctx.RegisterVariable(st.VarName, transform.VariableData{Name: st.VarName, Type: from.CachedType(), IsConst: true})
	if regErr != nil {
		return nil, r.errAt(st.Location(), diagnostic.IdentifierAlreadyUsed, "%v", regErr)
	}
	st.VariableRef = idx

	r.loopDepth++
	defer func() { r.loopDepth-- }()
	body, err := r.resolveStmt(st.Statement)
	if err != nil {
		return nil, err
	}
	st.Statement = body
	return st, nil
}

func (r *Resolver) resolveForEach(st *ast.ForEachStmt) (ast.Statement, *diagnostic.Error) {
	resolved, err := r.resolveExpr(st.Expression)
	if err != nil {
		return nil, err
	}
	st.Expression = resolved

	var elem types.Type
	switch t := types.ResolveAlias(resolved.CachedType()).(type) {
	case *types.Array:
		elem = t.Inner
	case *types.DynArray:
		elem = t.Inner
	default:
		return nil, r.errAt(resolved.Location(), diagnostic.ForEachUnsupportedType,
			"cannot iterate over %s", resolved.CachedType())
	}

	if st.Unroll.IsUnresolved() {
		v, err := resolveEnumAttr(r, st.Unroll.GetExpression(), loopUnrollByName, "unroll")
		if err != nil {
			return nil, err
		}
		st.Unroll.Resolve(v)
	}

	r.ctx.PushScope()
	defer r.ctx.PopScope()
	idx, regErr := r.ctx.RegisterVariable(st.VarName, transform.VariableData{Name: st.VarName, Type: elem, IsConst: true})
	if regErr != nil {
		return nil, r.errAt(st.Location(), diagnostic.IdentifierAlreadyUsed, "%v", regErr)
	}
	st.VariableRef = idx

	r.loopDepth++
	defer func() { r.loopDepth-- }()
	body, err := r.resolveStmt(st.Statement)
	if err != nil {
		return nil, err
	}
	st.Statement = body
	return st, nil
}

func (r *Resolver) resolveWhile(st *ast.WhileStmt) (ast.Statement, *diagnostic.Error) {
	cond, err := r.resolveExpr(st.Condition)
	if err != nil {
		return nil, err
	}
	st.Condition = cond
	if k, ok := types.ScalarKind(cond.CachedType()); !ok || k != types.Bool {
		return nil, r.errAt(cond.Location(), diagnostic.ConditionExpectedBool, "while condition must be bool")
	}

	if !st.Unroll.IsUnset() {
		return nil, r.errAt(st.Location(), diagnostic.WhileUnrollNotSupported,
			"unroll is not supported on a while loop, since its bound is not known at compile time")
	}

	r.loopDepth++
	defer func() { r.loopDepth-- }()
	body, err := r.resolveStmt(st.Body)
	if err != nil {
		return nil, err
	}
	st.Body = body
	return st, nil
}

func (r *Resolver) resolveDiscard(st *ast.DiscardStmt) (ast.Statement, *diagnostic.Error) {
	if r.funcDepth == 0 || r.stage != ast.StageFragment {
		return nil, r.errAt(st.Location(), diagnostic.DiscardOutsideOfFunction, "discard is only valid inside a fragment entry point")
	}
	if r.earlyFragmentTests {
		return nil, r.errAt(st.Location(), diagnostic.DiscardEarlyFragmentTests,
			"discard cannot be used in a fragment entry point attributed with early_fragment_tests")
	}
	return st, nil
}
