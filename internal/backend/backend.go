// Package backend defines the contract a fully resolved and lowered module
// is handed to for final code generation. Only one concrete emitter ships in
// this tree (internal/backend/sltext, which regenerates SL source); a GLSL,
// SPIR-V or MSL emitter would implement the same interface from the same
// lowered *ast.Module, consuming the symbol data transform.Context carries
// rather than re-deriving it.
package backend

import (
	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/transform"
)

// Emitter turns a module into target output. Implementations may assume the
// module has already been through resolve.Resolve, constprop.Propagate and
// littype.AssignLiteralTypes at minimum; which lowering passes are also
// expected is up to the emitter (sltext, for instance, wants none, since it
// re-emits SL itself).
type Emitter interface {
	// Emit writes out mod and returns the encoded form. ctx must be the same
	// context the module was resolved against, since node fields only carry
	// stable indices and ctx is where the names and signatures they index
	// into actually live.
	Emit(mod *ast.Module, ctx *transform.Context) ([]byte, error)
}
