// Package sltext implements the only Emitter shipped in this tree: it walks
// a resolved module back out to SL source text. Minification decisions
// (whitespace only; identifiers are never renamed) are made while printing rather than as a separate
// AST pass, the same way the WGSL minifier this compiler descends from made
// them.
package sltext

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/constant"
	"github.com/nzsl-go/nzsl/internal/ref"
	"github.com/nzsl-go/nzsl/internal/transform"
	"github.com/nzsl-go/nzsl/internal/types"
)

// Options controls sltext output.
type Options struct {
	// MinifyWhitespace removes indentation and collapses blank lines.
	MinifyWhitespace bool
}

// Printer emits SL source for a resolved module.
type Printer struct {
	options Options
	ctx     *transform.Context

	buf    strings.Builder
	indent int

	needsSpace bool
}

// New creates a Printer bound to ctx, the symbol context the module was
// resolved and lowered against.
func New(options Options, ctx *transform.Context) *Printer {
	return &Printer{options: options, ctx: ctx}
}

// Emit implements backend.Emitter.
func (p *Printer) Emit(mod *ast.Module, ctx *transform.Context) ([]byte, error) {
	pr := New(p.options, ctx)
	return []byte(pr.Print(mod)), nil
}

// Print renders mod as SL source text.
func (p *Printer) Print(mod *ast.Module) string {
	p.buf.Reset()
	p.printModule(mod)
	return p.buf.String()
}

// ----------------------------------------------------------------------------
// Output helpers
// ----------------------------------------------------------------------------

func (p *Printer) print(s string) {
	p.buf.WriteString(s)
	p.needsSpace = false
}

func (p *Printer) printSpace() {
	if !p.options.MinifyWhitespace || p.needsSpace {
		p.buf.WriteByte(' ')
	}
	p.needsSpace = false
}

func (p *Printer) printNewline() {
	if p.options.MinifyWhitespace {
		p.needsSpace = false
		return
	}
	p.buf.WriteByte('\n')
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("    ")
	}
	p.needsSpace = false
}

func (p *Printer) printSemicolon() {
	p.print(";")
	p.printNewline()
}

// ----------------------------------------------------------------------------
// Module
// ----------------------------------------------------------------------------

func (p *Printer) printModule(m *ast.Module) {
	p.print("nzsl_version(")
	p.print(strconv.Quote(fmt.Sprintf("%d.%d", m.Metadata.ShaderLangVersion.Major, m.Metadata.ShaderLangVersion.Minor)))
	p.print(")")
	p.printSemicolon()

	if m.Metadata.Author != "" {
		p.print("[author(")
		p.print(strconv.Quote(m.Metadata.Author))
		p.print(")]")
		p.printSemicolon()
	}
	if m.Metadata.Description != "" {
		p.print("[desc(")
		p.print(strconv.Quote(m.Metadata.Description))
		p.print(")]")
		p.printSemicolon()
	}
	if m.Metadata.License != "" {
		p.print("[license(")
		p.print(strconv.Quote(m.Metadata.License))
		p.print(")]")
		p.printSemicolon()
	}
	for _, f := range m.Metadata.EnabledFeatures {
		p.print("[feature(")
		p.print(f.String())
		p.print(")]")
		p.printSemicolon()
	}

	if m.RootStatement == nil {
		return
	}
	for i, stmt := range m.RootStatement.Statements {
		if i > 0 {
			p.printNewline()
		}
		p.printStatement(stmt)
	}
}

// ----------------------------------------------------------------------------
// Attributes
// ----------------------------------------------------------------------------

// printFlag prints a bare-or-valued boolean attribute, e.g. [export] /
// [export(false)] / [cond(SomeOption)].
func (p *Printer) printFlag(name string, ev ast.ExpressionValue[bool]) {
	if ev.IsUnset() {
		return
	}
	p.print("[")
	p.print(name)
	switch {
	case ev.IsResolved() && ev.GetResultingValue():
		// bare form
	case ev.IsResolved():
		p.print("(false)")
	default:
		p.print("(")
		p.printExpr(ev.GetExpression())
		p.print(")")
	}
	p.print("]")
	p.needsSpace = true
	p.printSpace()
}

func printValueAttr[T any](p *Printer, name string, ev ast.ExpressionValue[T], format func(T) string) {
	if ev.IsUnset() {
		return
	}
	p.print("[")
	p.print(name)
	p.print("(")
	if ev.IsResolved() {
		p.print(format(ev.GetResultingValue()))
	} else {
		p.printExpr(ev.GetExpression())
	}
	p.print(")]")
	p.needsSpace = true
	p.printSpace()
}

func uintFormat(v uint32) string { return strconv.FormatUint(uint64(v), 10) }

// ----------------------------------------------------------------------------
// Statements (top-level declarations and function bodies share one dispatch)
// ----------------------------------------------------------------------------

func (p *Printer) printStatement(s ast.Statement) {
	switch st := s.(type) {
	case *ast.MultiStmt:
		for _, sub := range st.Statements {
			p.printStatement(sub)
		}

	case *ast.NoOpStmt:
		// nothing: a pruned const-if arm still occupies a slot, it prints nothing

	case *ast.ImportStmt:
		p.printImport(st)

	case *ast.DeclareOptionStmt:
		p.print("option ")
		p.print(st.Name)
		if st.Type.IsResolved() {
			p.print(":")
			p.printSpace()
			p.print(st.Type.GetResultingValue().String())
		} else if st.Type.IsUnresolved() {
			p.print(":")
			p.printSpace()
			p.printExpr(st.Type.GetExpression())
		}
		p.printSpace()
		p.print("=")
		p.printSpace()
		p.printExpr(st.DefaultValue)
		p.printSemicolon()

	case *ast.DeclareConstStmt:
		p.printFlag("export", st.IsExported)
		p.print("const ")
		p.print(st.Name)
		p.printTypeAnnotation(st.Type)
		p.printSpace()
		p.print("=")
		p.printSpace()
		p.printExpr(st.Expression)
		p.printSemicolon()

	case *ast.DeclareAliasStmt:
		p.print("alias ")
		p.print(st.Name)
		p.printSpace()
		p.print("=")
		p.printSpace()
		p.printExpr(st.Expression)
		p.printSemicolon()

	case *ast.DeclareStructStmt:
		p.printFlag("export", st.IsExported)
		p.printValueAttrMemoryLayout(st.Description.Layout)
		p.print("struct ")
		p.print(st.Description.Name)
		p.printSpace()
		p.print("{")
		p.indent++
		for i, mem := range st.Description.Members {
			p.printNewline()
			printValueAttr(p, "cond", mem.Cond, strconv.FormatBool)
			printValueAttr(p, "builtin", mem.Builtin, func(b ast.BuiltinEntry) string { return b.String() })
			printValueAttr(p, "location", mem.Location, uintFormat)
			p.print(mem.Name)
			p.print(":")
			p.printSpace()
			p.printTypeValue(mem.Type)
			if i < len(st.Description.Members)-1 {
				p.print(",")
			}
		}
		p.indent--
		p.printNewline()
		p.print("}")
		p.printNewline()

	case *ast.DeclareExternalStmt:
		if st.Tag != "" {
			p.print("[tag(")
			p.print(strconv.Quote(st.Tag))
			p.print(")]")
			p.needsSpace = true
			p.printSpace()
		}
		printValueAttr(p, "set", st.Set, uintFormat)
		p.printFlag("auto_binding", st.AutoBinding)
		p.print("external")
		p.printSpace()
		p.print("{")
		p.indent++
		for i, v := range st.ExternalVars {
			p.printNewline()
			printValueAttr(p, "set", v.Set, uintFormat)
			printValueAttr(p, "binding", v.Binding, uintFormat)
			if v.Tag != "" {
				p.print("[tag(")
				p.print(strconv.Quote(v.Tag))
				p.print(")]")
				p.needsSpace = true
				p.printSpace()
			}
			p.print(v.Name)
			p.print(":")
			p.printSpace()
			p.printTypeValue(v.Type)
			if i < len(st.ExternalVars)-1 {
				p.print(",")
			}
		}
		p.indent--
		p.printNewline()
		p.print("}")
		p.printNewline()

	case *ast.DeclareFunctionStmt:
		p.printFlag("export", st.IsExported)
		printValueAttr(p, "entry", st.EntryStage, func(s ast.ShaderStage) string { return s.String() })
		printValueAttr(p, "depth_write", st.DepthWrite, func(d ast.DepthWriteMode) string { return d.String() })
		p.printFlag("early_fragments_tests", st.EarlyFragmentTests)
		printValueAttr(p, "workgroup", st.WorkgroupSize, formatWorkgroup)
		p.print("fn ")
		p.print(st.Name)
		p.print("(")
		for i, param := range st.Parameters {
			if i > 0 {
				p.print(",")
				p.printSpace()
			}
			p.print(param.Name)
			p.print(":")
			p.printSpace()
			p.printTypeValue(param.Type)
		}
		p.print(")")
		if !st.ReturnType.IsUnset() {
			p.printSpace()
			p.print("->")
			p.printSpace()
			p.printTypeValue(st.ReturnType)
		}
		p.printSpace()
		p.print("{")
		p.indent++
		for _, sub := range st.Statements {
			p.printNewline()
			p.printStatement(sub)
		}
		p.indent--
		p.printNewline()
		p.print("}")
		p.printNewline()

	case *ast.DeclareVariableStmt:
		p.print("let ")
		p.print(st.Name)
		p.printTypeAnnotation(st.Type)
		p.printSpace()
		p.print("=")
		p.printSpace()
		p.printExpr(st.InitialExpression)
		p.print(";")

	case *ast.ExpressionStmt:
		p.printExpr(st.Expression)
		p.print(";")

	case *ast.ReturnStmt:
		p.print("return")
		if st.ReturnExpr != nil {
			p.print(" ")
			p.printExpr(st.ReturnExpr)
		}
		p.print(";")

	case *ast.BreakStmt:
		p.print("break;")

	case *ast.ContinueStmt:
		p.print("continue;")

	case *ast.DiscardStmt:
		p.print("discard;")

	case *ast.ScopedStmt:
		p.print("{")
		p.indent++
		p.printNewline()
		p.printStatement(st.Statement)
		p.indent--
		p.printNewline()
		p.print("}")

	case *ast.BranchStmt:
		p.printBranch(st)

	case *ast.ConditionalStmt:
		p.print("const if ")
		p.printExpr(st.Cond)
		p.printSpace()
		p.printBracedStatement(st.Statement)

	case *ast.ForStmt:
		p.print("for ")
		p.print(st.VarName)
		p.print(" in ")
		p.printExpr(st.FromExpr)
		p.print(" -> ")
		p.printExpr(st.ToExpr)
		if st.StepExpr != nil {
			p.print(" : ")
			p.printExpr(st.StepExpr)
		}
		p.printSpace()
		p.printBracedStatement(st.Statement)

	case *ast.ForEachStmt:
		p.print("for ")
		p.print(st.VarName)
		p.print(" in ")
		p.printExpr(st.Expression)
		p.printSpace()
		p.printBracedStatement(st.Statement)

	case *ast.WhileStmt:
		p.print("while ")
		p.printExpr(st.Condition)
		p.printSpace()
		p.printBracedStatement(st.Body)

	default:
		panic(fmt.Sprintf("sltext: unhandled statement %T", s))
	}
}

func (p *Printer) printBranch(st *ast.BranchStmt) {
	keyword := "if "
	if st.IsConst {
		keyword = "const if "
	}
	for i, arm := range st.CondStatements {
		if i == 0 {
			p.print(keyword)
		} else {
			p.print(" else ")
			p.print(keyword)
		}
		p.printExpr(arm.Condition)
		p.printSpace()
		p.printBracedStatement(arm.Statement)
	}
	if st.ElseStatement != nil {
		p.print(" else ")
		p.printBracedStatement(st.ElseStatement)
	}
}

// printBracedStatement wraps a control-flow body in { } unless it is already
// a MultiStmt/ScopedStmt, which prints its own braces.
func (p *Printer) printBracedStatement(s ast.Statement) {
	if multi, ok := s.(*ast.MultiStmt); ok {
		p.print("{")
		p.indent++
		for _, sub := range multi.Statements {
			p.printNewline()
			p.printStatement(sub)
		}
		p.indent--
		p.printNewline()
		p.print("}")
		return
	}
	p.print("{")
	p.indent++
	p.printNewline()
	p.printStatement(s)
	p.indent--
	p.printNewline()
	p.print("}")
}

func (p *Printer) printImport(st *ast.ImportStmt) {
	p.print("import ")
	switch {
	case st.Wildcard():
		p.print("* from ")
		p.print(st.ModuleName)
	case len(st.Identifiers) == 0:
		p.print(st.ModuleName)
	default:
		for i, id := range st.Identifiers {
			if i > 0 {
				p.print(",")
				p.printSpace()
			}
			p.print(id.Identifier)
			if id.RenamedIdentifier != "" {
				p.print(" as ")
				p.print(id.RenamedIdentifier)
			}
		}
		p.print(" from ")
		p.print(st.ModuleName)
	}
	p.printSemicolon()
}

// ----------------------------------------------------------------------------
// Types
// ----------------------------------------------------------------------------

func (p *Printer) printTypeAnnotation(ev ast.ExpressionValue[types.Type]) {
	if ev.IsUnset() {
		return
	}
	p.print(":")
	p.printSpace()
	p.printTypeValue(ev)
}

func (p *Printer) printTypeValue(ev ast.ExpressionValue[types.Type]) {
	if ev.IsResolved() {
		p.print(ev.GetResultingValue().String())
		return
	}
	if ev.IsUnresolved() {
		p.printExpr(ev.GetExpression())
	}
}

func (p *Printer) printValueAttrMemoryLayout(ev ast.ExpressionValue[ast.MemoryLayout]) {
	printValueAttr(p, "layout", ev, func(l ast.MemoryLayout) string { return l.String() })
}

func formatWorkgroup(v [3]uint32) string {
	return fmt.Sprintf("%d, %d, %d", v[0], v[1], v[2])
}

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

func (p *Printer) printExpr(e ast.Expression) {
	switch ex := e.(type) {
	case *ast.IdentifierExpr:
		p.print(ex.Identifier)

	case *ast.AccessIdentifierExpr:
		p.printExpr(ex.Expr)
		for _, id := range ex.Identifiers {
			p.print(".")
			p.print(id.Name)
		}

	case *ast.AccessFieldExpr:
		p.printExpr(ex.Expr)
		p.print(".")
		p.print("field")
		p.print(strconv.FormatUint(uint64(ex.FieldIndex), 10))

	case *ast.AccessIndexExpr:
		p.printExpr(ex.Expr)
		for _, idx := range ex.Indices {
			p.print("[")
			p.printExpr(idx)
			p.print("]")
		}

	case *ast.AliasValueExpr:
		p.print(p.aliasName(ex.AliasRef))

	case *ast.AssignExpr:
		p.printExpr(ex.Left)
		p.printSpace()
		p.print(ex.Op.String())
		p.printSpace()
		p.printExpr(ex.Right)

	case *ast.BinaryExpr:
		p.printExpr(ex.Left)
		p.printSpace()
		p.print(ex.Op.String())
		p.printSpace()
		p.printExpr(ex.Right)

	case *ast.UnaryExpr:
		p.print(ex.Op.String())
		p.printExpr(ex.Expr)

	case *ast.CallFunctionExpr:
		p.printExpr(ex.TargetFunction)
		p.printArgs(ex.Params)

	case *ast.CallMethodExpr:
		p.printExpr(ex.Object)
		p.print(".")
		p.print(ex.MethodName)
		p.printArgs(ex.Params)

	case *ast.CastExpr:
		p.printTypeValue(ex.TargetType)
		p.printArgs(ex.Exprs)

	case *ast.ConditionalExpr:
		p.printExpr(ex.Cond)
		p.print(" ? ")
		p.printExpr(ex.TruePath)
		p.print(" : ")
		p.printExpr(ex.FalsePath)

	case *ast.ConstantExpr:
		p.print(p.constantName(ex.ConstantRef))

	case *ast.ConstantValueExpr:
		p.printLiteral(ex.Value)

	case *ast.ConstantArrayValueExpr:
		p.printLiteral(ex.Value)

	case *ast.FunctionExpr:
		p.print(p.functionName(ex.FuncRef))

	case *ast.IntrinsicExpr:
		p.print(ex.Intrinsic.String())
		p.printArgs(ex.Params)

	case *ast.IntrinsicFunctionExpr:
		if data, ok := p.ctx.Intrinsic(ex.IntrinsicRef); ok {
			p.print(data.Kind.String())
		}

	case *ast.StructTypeExpr:
		p.print(p.structName(ex.StructRef))

	case *ast.SwizzleExpr:
		p.printExpr(ex.Expr)
		p.print(".")
		comps := "xyzw"
		for i := 0; i < int(ex.ComponentCount); i++ {
			p.buf.WriteByte(comps[ex.Components[i]])
		}

	case *ast.TypeExpr:
		p.print(p.typeName(ex.TypeRef))

	case *ast.VariableValueExpr:
		p.print(p.variableName(ex.VariableRef))

	default:
		panic(fmt.Sprintf("sltext: unhandled expression %T", e))
	}
}

func (p *Printer) printArgs(args []ast.Expression) {
	p.print("(")
	for i, a := range args {
		if i > 0 {
			p.print(",")
			p.printSpace()
		}
		p.printExpr(a)
	}
	p.print(")")
}

func (p *Printer) printLiteral(v constant.Value) {
	p.print(literalText(v))
}

// literalText renders a folded constant value in SL source syntax. Scalars
// round-trip through the same suffix convention the lexer/parser uses
// (u32 -> "u", i32 -> "i", f32 -> "f", untyped int/float -> bare); vectors
// and arrays print as type(args...) constructor calls.
func literalText(v constant.Value) string {
	t := constant.GetType(v)
	switch tt := t.(type) {
	case *types.Primitive:
		switch tt.Kind {
		case types.Bool:
			return strconv.FormatBool(v.BoolValue())
		case types.I32:
			return strconv.FormatInt(int64(v.I32Value()), 10) + "i"
		case types.U32:
			return strconv.FormatUint(uint64(v.U32Value()), 10) + "u"
		case types.F32:
			return strconv.FormatFloat(float64(v.F32Value()), 'g', -1, 32) + "f"
		case types.F64:
			return strconv.FormatFloat(v.F64Value(), 'g', -1, 64)
		case types.IntLiteral:
			return strconv.FormatInt(v.IntLiteralValue(), 10)
		case types.FloatLiteral:
			return strconv.FormatFloat(v.FloatLiteralValue(), 'g', -1, 64)
		case types.String:
			return strconv.Quote(v.StringValue())
		}
	case *types.Vector:
		parts := make([]string, 0, len(v.Elements()))
		for _, e := range v.Elements() {
			parts = append(parts, literalText(e))
		}
		return fmt.Sprintf("vec%d[%s](%s)", tt.Count, tt.Elem.String(), strings.Join(parts, ", "))
	case *types.Array:
		parts := make([]string, 0, len(v.Elements()))
		for _, e := range v.Elements() {
			parts = append(parts, literalText(e))
		}
		return fmt.Sprintf("array[%s, %d](%s)", tt.Inner.String(), tt.Length, strings.Join(parts, ", "))
	}
	return constant.Describe(v)
}

// ----------------------------------------------------------------------------
// Name lookups
// ----------------------------------------------------------------------------

func (p *Printer) aliasName(r ref.Alias) string {
	if p.ctx != nil {
		if d, ok := p.ctx.Alias(r); ok {
			return d.Name
		}
	}
	return fmt.Sprintf("alias#%d", r)
}

func (p *Printer) constantName(r ref.Constant) string {
	if p.ctx != nil {
		if d, ok := p.ctx.Constant(r); ok {
			return d.Name
		}
	}
	return fmt.Sprintf("const#%d", r)
}

func (p *Printer) functionName(r ref.Function) string {
	if p.ctx != nil {
		if d, ok := p.ctx.Function(r); ok {
			return d.Name
		}
	}
	return fmt.Sprintf("fn#%d", r)
}

func (p *Printer) structName(r ref.Struct) string {
	if p.ctx != nil {
		if d, ok := p.ctx.Struct(r); ok {
			return d.Description.Name
		}
	}
	return fmt.Sprintf("struct#%d", r)
}

func (p *Printer) typeName(r ref.Type) string {
	if p.ctx != nil {
		if d, ok := p.ctx.Type(r); ok {
			return d.Name
		}
	}
	return fmt.Sprintf("type#%d", r)
}

func (p *Printer) variableName(r ref.Variable) string {
	if p.ctx != nil {
		if d, ok := p.ctx.Variable(r); ok {
			return d.Name
		}
	}
	return fmt.Sprintf("var#%d", r)
}
