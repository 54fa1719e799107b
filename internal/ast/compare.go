package ast

import (
	"github.com/nzsl-go/nzsl/internal/constant"
	"github.com/nzsl-go/nzsl/internal/types"
)

// CompareParams tunes the structural-equality check below. The default
// value (all false) ignores source locations and treats a pruned-away
// branch (NoOpStmt) as equal only to another NoOpStmt — matching how the
// binary and textual round-trip properties are checked: a module must
// compare equal to itself after a serialize/deserialize or print/parse
// round trip even though every node gets freshly allocated storage.
type CompareParams struct {
	CompareSourceLoc bool
	CompareModuleName bool
	IgnoreNoOp        bool
}

// Equal reports whether two modules are structurally equal under params.
func Equal(a, b *Module, params CompareParams) bool {
	if a == nil || b == nil {
		return a == b
	}
	if params.CompareModuleName && a.Metadata.ModuleName != b.Metadata.ModuleName {
		return false
	}
	if a.Metadata.ShaderLangVersion != b.Metadata.ShaderLangVersion {
		return false
	}
	if len(a.Metadata.EnabledFeatures) != len(b.Metadata.EnabledFeatures) {
		return false
	}
	for i := range a.Metadata.EnabledFeatures {
		if a.Metadata.EnabledFeatures[i] != b.Metadata.EnabledFeatures[i] {
			return false
		}
	}
	if len(a.ImportedModules) != len(b.ImportedModules) {
		return false
	}
	for i := range a.ImportedModules {
		if a.ImportedModules[i].Identifier != b.ImportedModules[i].Identifier {
			return false
		}
		if !Equal(a.ImportedModules[i].Module, b.ImportedModules[i].Module, params) {
			return false
		}
	}
	return EqualStatement(a.RootStatement, b.RootStatement, params)
}

func locEqual(a, b Loc, params CompareParams) bool {
	if !params.CompareSourceLoc {
		return true
	}
	return a == b
}

// EqualExpression reports whether two expression trees are structurally
// equal under params.
func EqualExpression(a, b Expression, params CompareParams) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if !locEqual(a.Location(), b.Location(), params) {
		return false
	}

	switch av := a.(type) {
	case *AccessIdentifierExpr:
		bv, ok := b.(*AccessIdentifierExpr)
		if !ok || len(av.Identifiers) != len(bv.Identifiers) {
			return false
		}
		for i := range av.Identifiers {
			if av.Identifiers[i].Name != bv.Identifiers[i].Name {
				return false
			}
		}
		return EqualExpression(av.Expr, bv.Expr, params)

	case *AccessFieldExpr:
		bv, ok := b.(*AccessFieldExpr)
		return ok && av.FieldIndex == bv.FieldIndex && EqualExpression(av.Expr, bv.Expr, params)

	case *AccessIndexExpr:
		bv, ok := b.(*AccessIndexExpr)
		if !ok || len(av.Indices) != len(bv.Indices) {
			return false
		}
		for i := range av.Indices {
			if !EqualExpression(av.Indices[i], bv.Indices[i], params) {
				return false
			}
		}
		return EqualExpression(av.Expr, bv.Expr, params)

	case *AliasValueExpr:
		bv, ok := b.(*AliasValueExpr)
		return ok && av.AliasRef == bv.AliasRef

	case *AssignExpr:
		bv, ok := b.(*AssignExpr)
		return ok && av.Op == bv.Op && EqualExpression(av.Left, bv.Left, params) && EqualExpression(av.Right, bv.Right, params)

	case *BinaryExpr:
		bv, ok := b.(*BinaryExpr)
		return ok && av.Op == bv.Op && EqualExpression(av.Left, bv.Left, params) && EqualExpression(av.Right, bv.Right, params)

	case *CallFunctionExpr:
		bv, ok := b.(*CallFunctionExpr)
		if !ok || len(av.Params) != len(bv.Params) {
			return false
		}
		for i := range av.Params {
			if !EqualExpression(av.Params[i], bv.Params[i], params) {
				return false
			}
		}
		return EqualExpression(av.TargetFunction, bv.TargetFunction, params)

	case *CallMethodExpr:
		bv, ok := b.(*CallMethodExpr)
		if !ok || av.MethodName != bv.MethodName || len(av.Params) != len(bv.Params) {
			return false
		}
		for i := range av.Params {
			if !EqualExpression(av.Params[i], bv.Params[i], params) {
				return false
			}
		}
		return EqualExpression(av.Object, bv.Object, params)

	case *CastExpr:
		bv, ok := b.(*CastExpr)
		if !ok || len(av.Exprs) != len(bv.Exprs) {
			return false
		}
		for i := range av.Exprs {
			if !EqualExpression(av.Exprs[i], bv.Exprs[i], params) {
				return false
			}
		}
		return equalTypeValue(av.TargetType, bv.TargetType, params)

	case *ConditionalExpr:
		bv, ok := b.(*ConditionalExpr)
		return ok && EqualExpression(av.Cond, bv.Cond, params) &&
			EqualExpression(av.TruePath, bv.TruePath, params) &&
			EqualExpression(av.FalsePath, bv.FalsePath, params)

	case *ConstantExpr:
		bv, ok := b.(*ConstantExpr)
		return ok && av.ConstantRef == bv.ConstantRef

	case *ConstantArrayValueExpr:
		bv, ok := b.(*ConstantArrayValueExpr)
		return ok && constantValueEqual(av.Value, bv.Value)

	case *ConstantValueExpr:
		bv, ok := b.(*ConstantValueExpr)
		return ok && constantValueEqual(av.Value, bv.Value)

	case *FunctionExpr:
		bv, ok := b.(*FunctionExpr)
		return ok && av.FuncRef == bv.FuncRef

	case *IdentifierExpr:
		bv, ok := b.(*IdentifierExpr)
		return ok && av.Identifier == bv.Identifier

	case *IntrinsicExpr:
		bv, ok := b.(*IntrinsicExpr)
		if !ok || av.Intrinsic != bv.Intrinsic || len(av.Params) != len(bv.Params) {
			return false
		}
		for i := range av.Params {
			if !EqualExpression(av.Params[i], bv.Params[i], params) {
				return false
			}
		}
		return true

	case *IntrinsicFunctionExpr:
		bv, ok := b.(*IntrinsicFunctionExpr)
		return ok && av.IntrinsicRef == bv.IntrinsicRef

	case *StructTypeExpr:
		bv, ok := b.(*StructTypeExpr)
		return ok && av.StructRef == bv.StructRef

	case *SwizzleExpr:
		bv, ok := b.(*SwizzleExpr)
		return ok && av.ComponentCount == bv.ComponentCount &&
			av.Components == bv.Components && EqualExpression(av.Expr, bv.Expr, params)

	case *TypeExpr:
		bv, ok := b.(*TypeExpr)
		return ok && av.TypeRef == bv.TypeRef

	case *VariableValueExpr:
		bv, ok := b.(*VariableValueExpr)
		return ok && av.VariableRef == bv.VariableRef

	case *UnaryExpr:
		bv, ok := b.(*UnaryExpr)
		return ok && av.Op == bv.Op && EqualExpression(av.Expr, bv.Expr, params)

	default:
		return false
	}
}

// EqualStatement reports whether two statement trees are structurally
// equal under params.
func EqualStatement(a, b Statement, params CompareParams) bool {
	if params.IgnoreNoOp {
		a = skipNoOp(a)
		b = skipNoOp(b)
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if !locEqual(a.Location(), b.Location(), params) {
		return false
	}

	switch av := a.(type) {
	case *BranchStmt:
		bv, ok := b.(*BranchStmt)
		if !ok || av.IsConst != bv.IsConst || len(av.CondStatements) != len(bv.CondStatements) {
			return false
		}
		for i := range av.CondStatements {
			if !EqualExpression(av.CondStatements[i].Condition, bv.CondStatements[i].Condition, params) {
				return false
			}
			if !EqualStatement(av.CondStatements[i].Statement, bv.CondStatements[i].Statement, params) {
				return false
			}
		}
		return EqualStatement(av.ElseStatement, bv.ElseStatement, params)

	case *BreakStmt:
		_, ok := b.(*BreakStmt)
		return ok

	case *ConditionalStmt:
		bv, ok := b.(*ConditionalStmt)
		return ok && EqualExpression(av.Cond, bv.Cond, params) && EqualStatement(av.Statement, bv.Statement, params)

	case *ContinueStmt:
		_, ok := b.(*ContinueStmt)
		return ok

	case *DeclareAliasStmt:
		bv, ok := b.(*DeclareAliasStmt)
		return ok && av.Name == bv.Name && EqualExpression(av.Expression, bv.Expression, params)

	case *DeclareConstStmt:
		bv, ok := b.(*DeclareConstStmt)
		return ok && av.Name == bv.Name && EqualExpression(av.Expression, bv.Expression, params) &&
			equalTypeValue(av.Type, bv.Type, params)

	case *DeclareExternalStmt:
		bv, ok := b.(*DeclareExternalStmt)
		if !ok || av.Tag != bv.Tag || len(av.ExternalVars) != len(bv.ExternalVars) {
			return false
		}
		for i := range av.ExternalVars {
			if av.ExternalVars[i].Name != bv.ExternalVars[i].Name {
				return false
			}
		}
		return true

	case *DeclareFunctionStmt:
		bv, ok := b.(*DeclareFunctionStmt)
		if !ok || av.Name != bv.Name || len(av.Parameters) != len(bv.Parameters) || len(av.Statements) != len(bv.Statements) {
			return false
		}
		for i := range av.Statements {
			if !EqualStatement(av.Statements[i], bv.Statements[i], params) {
				return false
			}
		}
		return true

	case *DeclareOptionStmt:
		bv, ok := b.(*DeclareOptionStmt)
		return ok && av.Name == bv.Name && EqualExpression(av.DefaultValue, bv.DefaultValue, params)

	case *DeclareStructStmt:
		bv, ok := b.(*DeclareStructStmt)
		return ok && av.Description.Name == bv.Description.Name &&
			len(av.Description.Members) == len(bv.Description.Members)

	case *DeclareVariableStmt:
		bv, ok := b.(*DeclareVariableStmt)
		return ok && av.Name == bv.Name && EqualExpression(av.InitialExpression, bv.InitialExpression, params)

	case *DiscardStmt:
		_, ok := b.(*DiscardStmt)
		return ok

	case *ExpressionStmt:
		bv, ok := b.(*ExpressionStmt)
		return ok && EqualExpression(av.Expression, bv.Expression, params)

	case *ForStmt:
		bv, ok := b.(*ForStmt)
		return ok && av.VarName == bv.VarName &&
			EqualExpression(av.FromExpr, bv.FromExpr, params) &&
			EqualExpression(av.ToExpr, bv.ToExpr, params) &&
			EqualExpression(av.StepExpr, bv.StepExpr, params) &&
			EqualStatement(av.Statement, bv.Statement, params)

	case *ForEachStmt:
		bv, ok := b.(*ForEachStmt)
		return ok && av.VarName == bv.VarName &&
			EqualExpression(av.Expression, bv.Expression, params) &&
			EqualStatement(av.Statement, bv.Statement, params)

	case *ImportStmt:
		bv, ok := b.(*ImportStmt)
		if !ok || av.ModuleName != bv.ModuleName || len(av.Identifiers) != len(bv.Identifiers) {
			return false
		}
		for i := range av.Identifiers {
			if av.Identifiers[i].Identifier != bv.Identifiers[i].Identifier {
				return false
			}
		}
		return true

	case *MultiStmt:
		bv, ok := b.(*MultiStmt)
		if !ok {
			return false
		}
		as, bs := av.Statements, bv.Statements
		if params.IgnoreNoOp {
			as = filterNoOp(as)
			bs = filterNoOp(bs)
		}
		if len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !EqualStatement(as[i], bs[i], params) {
				return false
			}
		}
		return true

	case *NoOpStmt:
		_, ok := b.(*NoOpStmt)
		return ok

	case *ReturnStmt:
		bv, ok := b.(*ReturnStmt)
		return ok && EqualExpression(av.ReturnExpr, bv.ReturnExpr, params)

	case *ScopedStmt:
		bv, ok := b.(*ScopedStmt)
		return ok && EqualStatement(av.Statement, bv.Statement, params)

	case *WhileStmt:
		bv, ok := b.(*WhileStmt)
		return ok && EqualExpression(av.Condition, bv.Condition, params) && EqualStatement(av.Body, bv.Body, params)

	default:
		return false
	}
}

func skipNoOp(s Statement) Statement {
	if _, ok := s.(*NoOpStmt); ok {
		return nil
	}
	return s
}

func filterNoOp(stmts []Statement) []Statement {
	out := make([]Statement, 0, len(stmts))
	for _, s := range stmts {
		if _, ok := s.(*NoOpStmt); ok {
			continue
		}
		out = append(out, s)
	}
	return out
}

func equalTypeValue(a, b ExpressionValue[types.Type], params CompareParams) bool {
	if a.IsUnset() != b.IsUnset() || a.IsUnresolved() != b.IsUnresolved() || a.IsResolved() != b.IsResolved() {
		return false
	}
	if a.IsUnresolved() {
		return EqualExpression(a.GetExpression(), b.GetExpression(), params)
	}
	if a.IsResolved() {
		at, bt := a.GetResultingValue(), b.GetResultingValue()
		if at == nil || bt == nil {
			return at == nil && bt == nil
		}
		return at.Equals(bt)
	}
	return true
}

func constantValueEqual(a, b constant.Value) bool { return constant.Equal(a, b) }
