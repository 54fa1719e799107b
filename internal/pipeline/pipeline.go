// Package pipeline wires the individual passes (parse, resolve,
// constant-propagation, literal-typing, lowering, dependency analysis,
// back-end emission) into the single ordered run a caller actually wants,
// the way minifier.Minifier coordinated lexing, parsing, renaming and
// printing behind one call.
package pipeline

import (
	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/backend"
	"github.com/nzsl-go/nzsl/internal/constprop"
	"github.com/nzsl-go/nzsl/internal/dce"
	"github.com/nzsl-go/nzsl/internal/diagnostic"
	"github.com/nzsl-go/nzsl/internal/littype"
	"github.com/nzsl-go/nzsl/internal/lowering"
	"github.com/nzsl-go/nzsl/internal/parser"
	"github.com/nzsl-go/nzsl/internal/resolve"
	"github.com/nzsl-go/nzsl/internal/transform"
)

// ModuleResolver supplies the parsed AST of a module by name, for both the
// resolver's import splicing and the lowering stage's ImportStmt cleanup.
// resolve.ImportResolver and lowering.ModuleResolver share this exact method
// set, so one implementation satisfies both.
type ModuleResolver interface {
	ResolveImport(moduleName string) (*ast.Module, error)
}

// Options controls a full compile run from source text to a resolved,
// lowered module ready for a backend.Emitter.
type Options struct {
	// Resolver supplies submodules for import statements. Left nil, imports
	// are not inlined and the module stays partially resolved.
	Resolver ModuleResolver

	// AllowUnknownIdentifiers and PartialCompilation mirror the same-named
	// transform.Context/resolve.Options flags, for editor-style incremental
	// compilation of a module still being typed.
	AllowUnknownIdentifiers bool
	PartialCompilation      bool

	// TreeShaking drops constants, functions, structs and external
	// variables that UsedStages can't reach from any entry point.
	TreeShaking bool
	// UsedStages selects which entry-point stages count as roots for tree
	// shaking. Empty means every entry point is a root, matching
	// dce.Check's own default; declarations no entry point reaches are
	// still eliminated.
	UsedStages []ast.ShaderStage
	// KeepNames exempts declarations from tree shaking by name even if
	// nothing reaches them, the same KeepNames idea a minifier's renamer
	// uses but applied to liveness rather than identifier mangling.
	KeepNames []string
}

// DefaultOptions returns options for a conservative full compile: no tree
// shaking, no import resolution, strict identifier resolution.
func DefaultOptions() Options {
	return Options{}
}

// Result is everything a backend.Emitter or a caller inspecting the
// compiled module needs.
type Result struct {
	Module *ast.Module
	Ctx    *transform.Context
}

// Pipeline runs the fixed pass order for one set of Options. It holds no
// per-compile state, so the same Pipeline can Compile many modules.
type Pipeline struct {
	options Options
}

// New creates a Pipeline that will run every Compile call with options.
func New(options Options) *Pipeline {
	return &Pipeline{options: options}
}

// Compile parses source (path is used only for diagnostic locations),
// resolves, propagates constants, assigns literal types, runs every
// structural lowering pass in its fixed dependency order, and optionally
// tree-shakes the result. The returned *diagnostic.Error, if non-nil, is
// the first fatal diagnostic encountered; parseErrs carries any
// lexer/parser diagnostics regardless of whether parsing ultimately
// succeeded.
func (p *Pipeline) Compile(source, path string) (*Result, *diagnostic.DiagnosticList, *diagnostic.Error) {
	pr := parser.New(source)
	mod, parseErrs := pr.Parse(path)
	if parseErrs.HasErrors() {
		return nil, parseErrs, nil
	}

	ctx := transform.NewContext()
	var resolveImports resolve.ImportResolver
	if p.options.Resolver != nil {
		resolveImports = p.options.Resolver
	}
	if err := resolve.Resolve(mod, ctx, resolve.Options{
		ImportResolver:          resolveImports,
		AllowUnknownIdentifiers: p.options.AllowUnknownIdentifiers,
		PartialCompilation:      p.options.PartialCompilation,
	}); err != nil {
		parseErrs.AddFromErr(err)
		return nil, parseErrs, err
	}

	if err := constprop.Propagate(mod, ctx); err != nil {
		parseErrs.AddFromErr(err)
		return nil, parseErrs, err
	}
	if err := littype.AssignLiteralTypes(mod, ctx); err != nil {
		parseErrs.AddFromErr(err)
		return nil, parseErrs, err
	}

	if p.options.Resolver != nil {
		if err := lowering.InlineImports(mod, ctx, p.options.Resolver); err != nil {
			parseErrs.AddFromErr(err)
			return nil, parseErrs, err
		}
	}
	lowering.RemoveAliases(mod, ctx)
	lowering.SplitBranches(mod, ctx)
	lowering.ExpandCompoundAssignments(mod, ctx)
	if err := lowering.LowerForEachLoops(mod, ctx); err != nil {
		parseErrs.AddFromErr(err)
		return nil, parseErrs, err
	}
	if err := lowering.LowerForLoops(mod, ctx); err != nil {
		parseErrs.AddFromErr(err)
		return nil, parseErrs, err
	}
	if err := lowering.Unroll(mod, ctx); err != nil {
		parseErrs.AddFromErr(err)
		return nil, parseErrs, err
	}
	lowering.LowerMatrices(mod, ctx)
	lowering.PadStd140(mod, ctx)
	lowering.SplitStructAssignments(mod, ctx)
	lowering.LowerSwizzles(mod, ctx)

	if p.options.TreeShaking {
		usage := dce.Check(mod, p.options.UsedStages)
		pruneDead(mod, usage, p.options.KeepNames)
	}

	return &Result{Module: mod, Ctx: ctx}, parseErrs, nil
}

// Emit hands a compiled Result to emitter. Separated from Compile so a
// caller can run multiple back ends (or codec.Encode) off one compile.
func (p *Pipeline) Emit(r *Result, emitter backend.Emitter) ([]byte, error) {
	return emitter.Emit(r.Module, r.Ctx)
}

// pruneDead drops top-level declarations usage doesn't mark reachable,
// keeping anything named in keepNames regardless. There is no filter
// helper in internal/dce itself (Check only computes reachability); this
// is the one caller-side place that turns that bitset into an actual
// edit of the module tree.
func pruneDead(mod *ast.Module, usage dce.UsageBitsets, keepNames []string) {
	keep := make(map[string]bool, len(keepNames))
	for _, name := range keepNames {
		keep[name] = true
	}

	kept := make([]ast.Statement, 0, len(mod.RootStatement.Statements))
	for _, s := range mod.RootStatement.Statements {
		switch st := s.(type) {
		case *ast.DeclareConstStmt:
			if keep[st.Name] || usage.ConstantUsed(st.ConstantRef) {
				kept = append(kept, s)
			}
		case *ast.DeclareFunctionStmt:
			if keep[st.Name] || usage.FunctionUsed(st.FuncRef) {
				kept = append(kept, s)
			}
		case *ast.DeclareStructStmt:
			if keep[st.Description.Name] || usage.StructUsed(st.StructRef) {
				kept = append(kept, s)
			}
		case *ast.DeclareExternalStmt:
			live := make([]ast.ExternalVar, 0, len(st.ExternalVars))
			for _, ev := range st.ExternalVars {
				if keep[ev.Name] || usage.VariableUsed(ev.VariableRef) {
					live = append(live, ev)
				}
			}
			if len(live) > 0 {
				st.ExternalVars = live
				kept = append(kept, st)
			}
		default:
			kept = append(kept, s)
		}
	}
	mod.RootStatement.Statements = kept
}
