// Package lowering implements the structural lowering passes: a
// family of small, independently enableable transformers that each rewrite
// one surface-level construct into a simpler one a back-end doesn't have to
// model directly (else-if chains, numeric/foreach loops, matrix arithmetic,
// compound assignment, swizzles of non-lvalues, layout-incompatible struct
// assignment, std140 padding, module imports, aliases and stale indices).
//
// Every pass lives in its own file and its own Go type, mirroring the
// teacher's one-transformer-per-concern layout; each embeds
// transform.BaseTransformer and overrides only the hooks it needs.
package lowering

import (
	"fmt"

	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/constant"
	"github.com/nzsl-go/nzsl/internal/diagnostic"
	"github.com/nzsl-go/nzsl/internal/ref"
	"github.com/nzsl-go/nzsl/internal/transform"
	"github.com/nzsl-go/nzsl/internal/types"
)

// rangeOf converts an ast.Loc into the Range shape diagnostic.NewError
// expects.
func rangeOf(l ast.Loc) diagnostic.Range {
	return diagnostic.Range{
		Start: diagnostic.Position{Line: l.StartLine, Column: l.StartCol},
		End:   diagnostic.Position{Line: l.EndLine, Column: l.EndCol},
	}
}

// constOf builds a concrete scalar ConstantValueExpr of primitive kind k.
func constOf(k types.PrimitiveKind, v any) ast.Expression {
	var cv constant.Value
	switch k {
	case types.I32:
		cv = constant.I32(v.(int32))
	case types.U32:
		cv = constant.U32(v.(uint32))
	case types.F32:
		cv = constant.F32(v.(float32))
	case types.F64:
		cv = constant.F64(v.(float64))
	case types.Bool:
		cv = constant.Bool(v.(bool))
	default:
		cv = constant.I32(0)
	}
	e := &ast.ConstantValueExpr{Value: cv}
	e.SetCachedType(constant.GetType(cv))
	return e
}

// freshNames hands out unique synthetic identifiers for a single pass run
// (`_to0`, `_to1`, ...), avoiding collisions between multiple lowerings of
// the same construct in one module.
type freshNames struct {
	n int
}

func (f *freshNames) next(prefix string) string {
	name := fmt.Sprintf("%s%d", prefix, f.n)
	f.n++
	return name
}

// declareLocal builds a `let`/`var`-shaped DeclareVariableStmt for a
// synthesized temporary, registers it in ctx, and returns both the
// statement and a VariableValueExpr referring to it.
func declareLocal(ctx *transform.Context, name string, t types.Type, init ast.Expression) (*ast.DeclareVariableStmt, *ast.VariableValueExpr) {
	vref, err := ctx.RegisterVariable(name, transform.VariableData{Name: name, Type: t})
	if err != nil {
		// Synthesized names are unique per pass run; a collision here means
		// the caller reused a prefix already live in scope, a bug in the
		// calling pass rather than a condition users can trigger.
		panic(err)
	}
	decl := &ast.DeclareVariableStmt{
		VariableRef:       vref,
		Name:              name,
		InitialExpression: init,
		Type:              ast.ResolvedValue(t),
	}
	return decl, variableRef(vref, t)
}

// variableRef builds a fresh VariableValueExpr for vref: every use site of
// a synthesized local gets its own node rather than sharing one pointer
// across multiple places in the tree.
func variableRef(vref ref.Variable, t types.Type) *ast.VariableValueExpr {
	e := &ast.VariableValueExpr{VariableRef: vref}
	e.SetCachedType(t)
	return e
}

// isPureLValue reports whether e can be evaluated twice with no observable
// difference: a bare variable or a chain of field/index accesses rooted at
// one. Anything else (a call, a swizzle of a temporary, ...) needs to be
// cached before being read more than once.
func isPureLValue(e ast.Expression) bool {
	switch n := e.(type) {
	case *ast.VariableValueExpr:
		return true
	case *ast.AccessFieldExpr:
		return isPureLValue(n.Expr)
	case *ast.AccessIndexExpr:
		if !isPureLValue(n.Expr) {
			return false
		}
		for _, idx := range n.Indices {
			if !isPureLValue(idx) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// binaryOpFor maps a compound AssignOp to the BinaryOp it expands into.
func binaryOpFor(op ast.AssignOp) (ast.BinaryOp, bool) {
	switch op {
	case ast.AssignCompoundAdd:
		return ast.BinaryAdd, true
	case ast.AssignCompoundSubtract:
		return ast.BinarySubtract, true
	case ast.AssignCompoundMultiply:
		return ast.BinaryMultiply, true
	case ast.AssignCompoundDivide:
		return ast.BinaryDivide, true
	case ast.AssignCompoundModulo:
		return ast.BinaryModulo, true
	case ast.AssignCompoundLogicalAnd:
		return ast.BinaryLogicalAnd, true
	case ast.AssignCompoundLogicalOr:
		return ast.BinaryLogicalOr, true
	case ast.AssignCompoundBitwiseAnd:
		return ast.BinaryBitwiseAnd, true
	case ast.AssignCompoundBitwiseOr:
		return ast.BinaryBitwiseOr, true
	case ast.AssignCompoundBitwiseXor:
		return ast.BinaryBitwiseXor, true
	case ast.AssignCompoundShiftLeft:
		return ast.BinaryShiftLeft, true
	case ast.AssignCompoundShiftRight:
		return ast.BinaryShiftRight, true
	default:
		return 0, false
	}
}

func multi(stmts ...ast.Statement) *ast.MultiStmt {
	return &ast.MultiStmt{Statements: stmts}
}
