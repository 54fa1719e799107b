package ast

import "github.com/nzsl-go/nzsl/internal/types"

// Expression is the sum type of every expression kind. Expressions
// additionally carry an optional cached result type, filled in by the
// resolver and kept consistent by constant-propagation and literal-typing.
type Expression interface {
	Location() Loc
	CachedType() types.Type
	SetCachedType(types.Type)
	isExpression()
}

// Statement is the sum type of every statement kind.
type Statement interface {
	Location() Loc
	isStatement()
}

// exprBase is embedded by every concrete Expression.
type exprBase struct {
	Loc  Loc
	Type types.Type
}

func (e *exprBase) Location() Loc              { return e.Loc }
func (e *exprBase) CachedType() types.Type     { return e.Type }
func (e *exprBase) SetCachedType(t types.Type) { e.Type = t }

// stmtBase is embedded by every concrete Statement.
type stmtBase struct {
	Loc Loc
}

func (s *stmtBase) Location() Loc { return s.Loc }

