// Package resolve implements the resolver pass: the bottom-up tree
// walk that turns a freshly parsed ast.Module into one where every
// identifier is a typed reference, every attribute is a concrete value and
// every expression carries its result type.
//
// Unlike the structural lowering passes in internal/lowering, this pass is
// not threaded through transform.Walker: a resolver must see a node's
// children's types before it can check the node itself, which is the
// opposite order transform.Walker dispatches in. It drives its own
// recursive-descent functions instead, pushing/popping transform.Context
// scopes directly.
package resolve

import (
	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/diagnostic"
)

// rangeFromLoc builds a diagnostic.Range directly from a Loc's line/column
// pair. ast.Loc carries no byte offset (only the lexer/parser track source
// text), so DiagnosticList.MakeRange is not usable here.
func rangeFromLoc(l ast.Loc) diagnostic.Range {
	return diagnostic.Range{
		Start: diagnostic.Position{Line: l.StartLine, Column: l.StartCol},
		End:   diagnostic.Position{Line: l.EndLine, Column: l.EndCol},
	}
}

func (r *Resolver) errAt(l ast.Loc, kind diagnostic.Kind, format string, args ...any) *diagnostic.Error {
	return diagnostic.NewError(kind, rangeFromLoc(l), format, args...)
}

func (r *Resolver) unknownIdentifier(l ast.Loc, name string) *diagnostic.Error {
	return r.errAt(l, diagnostic.UnknownIdentifier, "unknown identifier %q", name)
}

func (r *Resolver) internalErr(l ast.Loc, format string, args ...any) *diagnostic.Error {
	return r.errAt(l, diagnostic.Internal, format, args...)
}
