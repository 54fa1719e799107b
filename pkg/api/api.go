// Package api is the single entry point code outside this module is meant
// to import. Everything else lives under internal/ and is invisible past
// the module boundary, so every type a caller needs to hold onto (a parsed
// Module, its Context, a diagnostic Error) is re-exported here as an alias
// rather than copied, the way api.go wrapped minifier.Minifier behind a
// couple of package-level functions and two option structs.
package api

import (
	"io"

	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/codec"
	"github.com/nzsl-go/nzsl/internal/constprop"
	"github.com/nzsl-go/nzsl/internal/dce"
	"github.com/nzsl-go/nzsl/internal/diagnostic"
	"github.com/nzsl-go/nzsl/internal/littype"
	"github.com/nzsl-go/nzsl/internal/lowering"
	"github.com/nzsl-go/nzsl/internal/parser"
	"github.com/nzsl-go/nzsl/internal/resolve"
	"github.com/nzsl-go/nzsl/internal/transform"
)

// Module, Context, DiagnosticList, Error, ShaderStage and UsageBitsets are
// the same types every internal pass already works with; a caller never
// needs the internal package to hold one.
type (
	Module         = ast.Module
	Context        = transform.Context
	DiagnosticList = diagnostic.DiagnosticList
	Error          = diagnostic.Error
	ShaderStage    = ast.ShaderStage
	UsageBitsets   = dce.UsageBitsets
)

// Entry-point stages, re-exported for DependencyCheck and ResolveOptions callers.
const (
	StageVertex   = ast.StageVertex
	StageFragment = ast.StageFragment
	StageCompute  = ast.StageCompute
)

// NewContext allocates the symbol/index registry a compile run threads
// through every later call in this package.
func NewContext() *Context {
	return transform.NewContext()
}

// ParseModule lexes and parses sourceText into a Module. path is used only
// to label diagnostic source locations; pass "" for in-memory sources.
func ParseModule(sourceText, path string) (*Module, *DiagnosticList) {
	p := parser.New(sourceText)
	return p.Parse(path)
}

// ImportResolver supplies the parsed AST of a module by name, for both
// Resolve's import splicing and InlineImports' ImportStmt cleanup. A caller
// implementing it needs nothing from internal/resolve or internal/lowering:
// the two packages' own resolver interfaces share this exact method set.
type ImportResolver interface {
	ResolveImport(moduleName string) (*Module, error)
}

// ResolveOptions controls identifier resolution, one flag per behavior a
// caller can ask for.
type ResolveOptions struct {
	// Resolver supplies submodules named in import statements. Left nil,
	// imports are left unresolved rather than inlined.
	Resolver ImportResolver
	// AllowUnknownIdentifiers downgrades UnknownIdentifier to a warning so a
	// module can be partially resolved with imports unavailable.
	AllowUnknownIdentifiers bool
	// PartialCompilation tolerates an Import statement with no resolver at
	// all, for editor-style incremental compilation of a module still being
	// typed.
	PartialCompilation bool
}

// Resolve binds every identifier in mod to a stable index in ctx, splicing
// in any import the resolver can supply.
func Resolve(mod *Module, ctx *Context, opts ResolveOptions) *Error {
	var importer resolve.ImportResolver
	if opts.Resolver != nil {
		importer = opts.Resolver
	}
	return resolve.Resolve(mod, ctx, resolve.Options{
		ImportResolver:          importer,
		AllowUnknownIdentifiers: opts.AllowUnknownIdentifiers,
		PartialCompilation:      opts.PartialCompilation,
	})
}

// PropagateConstants folds every constant-foldable expression in mod down
// to a single ConstantValue node, reporting things like division by zero
// along the way.
func PropagateConstants(mod *Module, ctx *Context) *Error {
	return constprop.Propagate(mod, ctx)
}

// AssignLiteralTypes concretizes IntLiteral/FloatLiteral expressions to the
// type demanded by their assignment or argument position.
func AssignLiteralTypes(mod *Module, ctx *Context) *Error {
	return littype.AssignLiteralTypes(mod, ctx)
}

// InlineImports drops the now-inert ImportStmt nodes a resolver with an
// ImportResolver has already spliced into ctx, recording each imported
// module once on mod.ImportedModules.
func InlineImports(mod *Module, ctx *Context, resolver ImportResolver) *Error {
	return lowering.InlineImports(mod, ctx, resolver)
}

// RemoveAliases replaces every use of a `DeclareAliasStmt` name with the
// type or identifier it stands for and drops the alias declaration itself.
func RemoveAliases(mod *Module, ctx *Context) {
	lowering.RemoveAliases(mod, ctx)
}

// SplitBranches rewrites an `if / else if / else if / else` chain into
// nested two-arm `if` statements.
func SplitBranches(mod *Module, ctx *Context) {
	lowering.SplitBranches(mod, ctx)
}

// ExpandCompoundAssignments rewrites `x += y` and its siblings into the
// equivalent `x = x + y` form.
func ExpandCompoundAssignments(mod *Module, ctx *Context) {
	lowering.ExpandCompoundAssignments(mod, ctx)
}

// LowerForEachLoops rewrites `for v in container` into an indexed `while`
// loop over the container's length.
func LowerForEachLoops(mod *Module, ctx *Context) *Error {
	return lowering.LowerForEachLoops(mod, ctx)
}

// LowerForLoops rewrites `for i in a -> b [: step]` into the equivalent
// `while` loop, defaulting an implicit step to one.
func LowerForLoops(mod *Module, ctx *Context) *Error {
	return lowering.LowerForLoops(mod, ctx)
}

// Unroll expands a `[unroll(always)]` loop with constant bounds into its
// repeated body, rejecting a `break` inside it.
func Unroll(mod *Module, ctx *Context) *Error {
	return lowering.Unroll(mod, ctx)
}

// LowerMatrices rewrites matrix arithmetic into its column-wise vector
// form and pads matrix-constructor casts with the identity's remaining
// columns.
func LowerMatrices(mod *Module, ctx *Context) {
	lowering.LowerMatrices(mod, ctx)
}

// PadStd140 inserts the padding members and array stride std140 layout
// requires, fixing up every access into a padded struct or array.
func PadStd140(mod *Module, ctx *Context) {
	lowering.PadStd140(mod, ctx)
}

// SplitStructAssignments rewrites a whole-struct assignment between
// mismatched layouts into a per-member copy.
func SplitStructAssignments(mod *Module, ctx *Context) {
	lowering.SplitStructAssignments(mod, ctx)
}

// LowerSwizzles hoists a swizzle's non-lvalue base into a temporary, turns
// a scalar broadcast into a vector construction cast and collapses a
// single-component scalar swizzle to the scalar itself. A swizzle of a
// vector base stays a swizzle.
func LowerSwizzles(mod *Module, ctx *Context) {
	lowering.LowerSwizzles(mod, ctx)
}

// Serialize writes mod's binary encoding to w.
func Serialize(mod *Module, w io.Writer) error {
	data, err := codec.Encode(mod)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Deserialize reads a Module back from its binary encoding.
func Deserialize(r io.Reader) (*Module, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return codec.Decode(data)
}

// DependencyCheck computes which constants, functions, structs and external
// variables are reachable from the entry points in usedStages. An empty
// usedStages treats every entry point as a root; declarations no entry
// point reaches are still reported unused.
func DependencyCheck(mod *Module, usedStages []ShaderStage) UsageBitsets {
	return dce.Check(mod, usedStages)
}
