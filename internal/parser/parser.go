// Package parser turns SL source text into a raw ast.Module: every
// declaration and expression node is built, but every ref.X field is left
// invalid and every name is left as a bare identifier. Binding, ref
// allocation and type materialization are the resolver's job, not this
// package's; the parser only has to get the shape of the tree right.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/constant"
	"github.com/nzsl-go/nzsl/internal/diagnostic"
	"github.com/nzsl-go/nzsl/internal/lexer"
	"github.com/nzsl-go/nzsl/internal/ref"
	"github.com/nzsl-go/nzsl/internal/types"
)

// Parser is a single-pass recursive-descent parser. It carries no symbol
// table: every identifier it emits is a bare *ast.IdentifierExpr, left for
// internal/resolve to bind.
type Parser struct {
	source    string
	file      *ast.File
	lineIndex *diagnostic.LineIndex
	tokens    []lexer.Token
	pos       int
	diags     *diagnostic.DiagnosticList
}

// New tokenizes source and prepares a Parser over it. A lexer error token
// (an unfinished string, an unrecognized character) is translated into a
// diagnostic immediately and replaced with EOF so the recursive descent
// never has to special-case it.
func New(source string) *Parser {
	tokens := lexer.New(source).Tokenize()
	diags := diagnostic.NewDiagnosticList(source)

	if n := len(tokens); n > 0 && tokens[n-1].Kind == lexer.TokError {
		errTok := tokens[n-1]
		kind := diagnostic.UnrecognizedChar
		if errTok.Value == "unfinished string" {
			kind = diagnostic.UnfinishedString
		}
		diags.AddErrorRange(errTok.Start, errTok.End, kind, errTok.Value)
		tokens[n-1] = lexer.Token{Kind: lexer.TokEOF, Start: errTok.End, End: errTok.End}
	}

	return &Parser{
		source:    source,
		tokens:    tokens,
		lineIndex: diagnostic.NewLineIndex(source),
		diags:     diags,
	}
}

// Parse builds a full module from the parser's token stream. path is used
// only to label the ast.Loc values attached to every node; it need not
// refer to a real file.
func (p *Parser) Parse(path string) (*ast.Module, *diagnostic.DiagnosticList) {
	p.file = &ast.File{Path: path}

	meta := p.parseHeader()
	mod := ast.NewModule(meta)

	for !p.atEnd() {
		mod.RootStatement.Statements = append(mod.RootStatement.Statements, p.parseTopLevelStatement())
	}

	return mod, p.diags
}

// ----------------------------------------------------------------------------
// Token helpers
// ----------------------------------------------------------------------------

func (p *Parser) cur() lexer.Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return lexer.Token{Kind: lexer.TokEOF}
}

func (p *Parser) peekAt(n int) lexer.Token {
	if p.pos+n < len(p.tokens) {
		return p.tokens[p.pos+n]
	}
	return lexer.Token{Kind: lexer.TokEOF}
}

func (p *Parser) previous() lexer.Token {
	if p.pos == 0 {
		return p.cur()
	}
	return p.tokens[p.pos-1]
}

func (p *Parser) advance() lexer.Token {
	tok := p.cur()
	if tok.Kind != lexer.TokEOF {
		p.pos++
	}
	return tok
}

func (p *Parser) check(k lexer.TokenKind) bool { return p.cur().Kind == k }

func (p *Parser) match(k lexer.TokenKind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) atEnd() bool { return p.cur().Kind == lexer.TokEOF }

// expect consumes the current token unconditionally, reporting a diagnostic
// if its kind doesn't match what. Consuming even on mismatch guarantees the
// recursive descent always makes progress, at the cost of the rest of the
// current statement being misparsed after a syntax error; recovery past
// that point happens at the next top-level declaration or statement.
func (p *Parser) expect(k lexer.TokenKind, what string) lexer.Token {
	tok := p.cur()
	if tok.Kind != k {
		p.diags.AddErrorRange(tok.Start, tok.End, diagnostic.ExpectedToken,
			fmt.Sprintf("expected %s, got %q", what, tok.Text(p.source)))
	}
	return p.advance()
}

func (p *Parser) errorAt(tok lexer.Token, kind diagnostic.Kind, format string, args ...any) {
	p.diags.AddErrorRange(tok.Start, tok.End, kind, fmt.Sprintf(format, args...))
}

// ----------------------------------------------------------------------------
// Locations
// ----------------------------------------------------------------------------

func (p *Parser) locTok(tok lexer.Token) ast.Loc {
	return p.locRange(tok, tok)
}

func (p *Parser) locRange(start, end lexer.Token) ast.Loc {
	sl, sc := p.lineIndex.ByteOffsetToLineColumn(start.Start)
	el, ec := p.lineIndex.ByteOffsetToLineColumn(end.End)
	return ast.Loc{File: p.file, StartLine: sl + 1, StartCol: sc + 1, EndLine: el + 1, EndCol: ec + 1}
}

// ----------------------------------------------------------------------------
// Module header
// ----------------------------------------------------------------------------

var featureByName = map[string]ast.ModuleFeature{
	"primitive_externals": ast.FeaturePrimitiveExternals,
	"float64":             ast.FeatureFloat64,
	"texture1D":           ast.FeatureTexture1D,
}

func parseVersion(s string) (ast.Version, bool) {
	major, minor, ok := strings.Cut(s, ".")
	if !ok {
		return ast.Version{}, false
	}
	maj, err1 := strconv.ParseUint(major, 10, 32)
	min, err2 := strconv.ParseUint(minor, 10, 32)
	if err1 != nil || err2 != nil {
		return ast.Version{}, false
	}
	return ast.Version{Major: uint32(maj), Minor: uint32(min)}, true
}

// parseHeader consumes the mandatory nzsl_version(...) directive followed
// by any number of author/desc/license/feature directives, in any order.
func (p *Parser) parseHeader() ast.Metadata {
	var meta ast.Metadata

	p.expect(lexer.TokNzslVersion, "nzsl_version")
	p.expect(lexer.TokLParen, "(")
	verTok := p.expect(lexer.TokStringLiteral, "a version string")
	if v, ok := parseVersion(verTok.Value); ok {
		meta.ShaderLangVersion = v
	} else {
		p.errorAt(verTok, diagnostic.InvalidVersion, "invalid module version %q, expected \"major.minor\"", verTok.Value)
	}
	p.expect(lexer.TokRParen, ")")
	p.expect(lexer.TokSemicolon, ";")

	var haveAuthor, haveDesc, haveLicense bool
	seenFeatures := map[ast.ModuleFeature]bool{}

	for {
		switch p.cur().Kind {
		case lexer.TokAuthor:
			p.advance()
			p.expect(lexer.TokLParen, "(")
			s := p.expect(lexer.TokStringLiteral, "a string")
			p.expect(lexer.TokRParen, ")")
			p.expect(lexer.TokSemicolon, ";")
			if haveAuthor {
				p.errorAt(s, diagnostic.AttributeMultipleUnique, "author declared more than once")
			}
			meta.Author, haveAuthor = s.Value, true
		case lexer.TokDesc:
			p.advance()
			p.expect(lexer.TokLParen, "(")
			s := p.expect(lexer.TokStringLiteral, "a string")
			p.expect(lexer.TokRParen, ")")
			p.expect(lexer.TokSemicolon, ";")
			if haveDesc {
				p.errorAt(s, diagnostic.AttributeMultipleUnique, "desc declared more than once")
			}
			meta.Description, haveDesc = s.Value, true
		case lexer.TokLicense:
			p.advance()
			p.expect(lexer.TokLParen, "(")
			s := p.expect(lexer.TokStringLiteral, "a string")
			p.expect(lexer.TokRParen, ")")
			p.expect(lexer.TokSemicolon, ";")
			if haveLicense {
				p.errorAt(s, diagnostic.AttributeMultipleUnique, "license declared more than once")
			}
			meta.License, haveLicense = s.Value, true
		case lexer.TokFeature:
			p.advance()
			p.expect(lexer.TokLParen, "(")
			nameTok := p.expect(lexer.TokIdent, "a feature name")
			p.expect(lexer.TokRParen, ")")
			p.expect(lexer.TokSemicolon, ";")
			f, ok := featureByName[nameTok.Value]
			if !ok {
				p.errorAt(nameTok, diagnostic.AttributeInvalidParameter, "unrecognized feature %q", nameTok.Value)
				continue
			}
			if seenFeatures[f] {
				p.errorAt(nameTok, diagnostic.ModuleFeatureMultipleUnique, "feature %q enabled more than once", nameTok.Value)
				continue
			}
			seenFeatures[f] = true
			meta.EnabledFeatures = append(meta.EnabledFeatures, f)
		default:
			return meta
		}
	}
}

// ----------------------------------------------------------------------------
// Attributes
// ----------------------------------------------------------------------------

// rawAttr is one parsed `name(args, ...)` or bare `name` attribute, before
// it is dispatched onto whichever declaration field it names.
type rawAttr struct {
	Name       string
	Args       []ast.Expression
	StringArg  string
	HasArgs    bool
	Start, End int
}

func (p *Parser) parseAttributeList() []rawAttr {
	var attrs []rawAttr
	for p.check(lexer.TokLBracket) {
		p.advance()
		for {
			attrs = append(attrs, p.parseAttribute())
			if p.match(lexer.TokComma) {
				continue
			}
			break
		}
		p.expect(lexer.TokRBracket, "]")
	}
	return attrs
}

func (p *Parser) parseAttribute() rawAttr {
	nameTok := p.expect(lexer.TokIdent, "an attribute name")
	a := rawAttr{Name: nameTok.Value, Start: nameTok.Start, End: nameTok.End}
	if p.match(lexer.TokLParen) {
		a.HasArgs = true
		if !p.check(lexer.TokRParen) {
			for {
				if p.check(lexer.TokStringLiteral) {
					tok := p.advance()
					a.StringArg = tok.Value
					a.Args = append(a.Args, p.stringExpr(tok))
				} else {
					a.Args = append(a.Args, p.parseExpression())
				}
				if p.match(lexer.TokComma) {
					continue
				}
				break
			}
		}
		closeTok := p.expect(lexer.TokRParen, ")")
		a.End = closeTok.End
	}
	return a
}

func (p *Parser) firstArg(a rawAttr) ast.Expression {
	if len(a.Args) == 0 {
		p.diags.AddErrorRange(a.Start, a.End, diagnostic.AttributeMissingParameter,
			fmt.Sprintf("attribute %q needs a parameter", a.Name))
		missing := &ast.IdentifierExpr{Identifier: ""}
		missing.Loc = ast.Loc{File: p.file, StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 1}
		return missing
	}
	return a.Args[0]
}

func (p *Parser) flagOrExpr(a rawAttr) ast.ExpressionValue[bool] {
	if !a.HasArgs || len(a.Args) == 0 {
		return ast.ResolvedValue(true)
	}
	return ast.UnresolvedValue[bool](a.Args[0])
}

func (p *Parser) stringArg(a rawAttr) string {
	if a.StringArg == "" && len(a.Args) > 0 {
		p.diags.AddErrorRange(a.Start, a.End, diagnostic.AttributeExpectString,
			fmt.Sprintf("attribute %q expects a string parameter", a.Name))
	}
	return a.StringArg
}

func (p *Parser) unknownAttribute(a rawAttr, context string) {
	p.diags.AddErrorRange(a.Start, a.End, diagnostic.UnexpectedAttribute,
		fmt.Sprintf("attribute %q is not valid on %s", a.Name, context))
}

func (p *Parser) applyFunctionAttrs(fn *ast.DeclareFunctionStmt, attrs []rawAttr) {
	for _, a := range attrs {
		switch a.Name {
		case "entry":
			fn.EntryStage = ast.UnresolvedValue[ast.ShaderStage](p.firstArg(a))
		case "depth_write":
			fn.DepthWrite = ast.UnresolvedValue[ast.DepthWriteMode](p.firstArg(a))
		case "early_fragments_tests":
			fn.EarlyFragmentTests = p.flagOrExpr(a)
		case "workgroup":
			fn.WorkgroupSize = ast.UnresolvedValue[[3]uint32](p.firstArg(a))
		case "export":
			fn.IsExported = p.flagOrExpr(a)
		default:
			p.unknownAttribute(a, "a function declaration")
		}
	}
}

func (p *Parser) applyStructAttrs(st *ast.DeclareStructStmt, attrs []rawAttr) {
	for _, a := range attrs {
		switch a.Name {
		case "layout":
			st.Description.Layout = ast.UnresolvedValue[ast.MemoryLayout](p.firstArg(a))
		case "export":
			st.IsExported = p.flagOrExpr(a)
		default:
			p.unknownAttribute(a, "a struct declaration")
		}
	}
}

func (p *Parser) applyStructMemberAttrs(m *ast.StructMember, attrs []rawAttr) {
	for _, a := range attrs {
		switch a.Name {
		case "builtin":
			m.Builtin = ast.UnresolvedValue[ast.BuiltinEntry](p.firstArg(a))
		case "location":
			m.Location = ast.UnresolvedValue[uint32](p.firstArg(a))
		case "cond":
			m.Cond = p.flagOrExpr(a)
		default:
			p.unknownAttribute(a, "a struct member")
		}
	}
}

func (p *Parser) applyExternalBlockAttrs(st *ast.DeclareExternalStmt, attrs []rawAttr) {
	for _, a := range attrs {
		switch a.Name {
		case "tag":
			st.Tag = p.stringArg(a)
		case "set":
			st.Set = ast.UnresolvedValue[uint32](p.firstArg(a))
		case "auto_binding":
			st.AutoBinding = p.flagOrExpr(a)
		default:
			p.unknownAttribute(a, "an external block")
		}
	}
}

func (p *Parser) applyExternalVarAttrs(ev *ast.ExternalVar, attrs []rawAttr) {
	for _, a := range attrs {
		switch a.Name {
		case "binding":
			ev.Binding = ast.UnresolvedValue[uint32](p.firstArg(a))
		case "set":
			ev.Set = ast.UnresolvedValue[uint32](p.firstArg(a))
		case "tag":
			ev.Tag = p.stringArg(a)
		default:
			p.unknownAttribute(a, "an external variable")
		}
	}
}

func (p *Parser) applyConstAttrs(st *ast.DeclareConstStmt, attrs []rawAttr) {
	for _, a := range attrs {
		switch a.Name {
		case "export":
			st.IsExported = p.flagOrExpr(a)
		default:
			p.unknownAttribute(a, "a const declaration")
		}
	}
}

func (p *Parser) applyLoopAttrs(attrs []rawAttr) ast.ExpressionValue[ast.LoopUnroll] {
	for _, a := range attrs {
		switch a.Name {
		case "unroll":
			return ast.UnresolvedValue[ast.LoopUnroll](p.firstArg(a))
		default:
			p.unknownAttribute(a, "a loop statement")
		}
	}
	return ast.UnsetValue[ast.LoopUnroll]()
}

// ----------------------------------------------------------------------------
// Top-level declarations
// ----------------------------------------------------------------------------

func (p *Parser) parseTopLevelStatement() ast.Statement {
	attrs := p.parseAttributeList()
	switch p.cur().Kind {
	case lexer.TokOption:
		return p.parseOptionDecl(attrs)
	case lexer.TokConst:
		return p.parseConstDecl(attrs)
	case lexer.TokStruct:
		return p.parseStructDecl(attrs)
	case lexer.TokExternal:
		return p.parseExternalDecl(attrs)
	case lexer.TokFn:
		return p.parseFunctionDecl(attrs)
	case lexer.TokAlias:
		return p.parseAliasDecl(attrs)
	case lexer.TokImport:
		return p.parseImportDecl()
	default:
		tok := p.cur()
		p.errorAt(tok, diagnostic.UnexpectedToken, "expected a top-level declaration, got %q", tok.Text(p.source))
		p.advance()
		n := &ast.NoOpStmt{}
		n.Loc = p.locTok(tok)
		return n
	}
}

func (p *Parser) parseOptionDecl(attrs []rawAttr) ast.Statement {
	startTok := p.advance() // option
	nameTok := p.expect(lexer.TokIdent, "an option name")
	typ := ast.UnsetValue[types.Type]()
	if p.match(lexer.TokColon) {
		typ = ast.UnresolvedValue[types.Type](p.parseTypeAnnotation())
	}
	var def ast.Expression
	if p.match(lexer.TokEq) {
		def = p.parseExpression()
	}
	p.expect(lexer.TokSemicolon, ";")
	_ = attrs // options carry no attributes in this grammar
	n := &ast.DeclareOptionStmt{ConstantRef: ref.InvalidConstant, Name: nameTok.Value, DefaultValue: def, Type: typ}
	n.Loc = p.locRange(startTok, p.previous())
	return n
}

func (p *Parser) parseConstDecl(attrs []rawAttr) ast.Statement {
	startTok := p.advance() // const
	nameTok := p.expect(lexer.TokIdent, "a constant name")
	typ := ast.UnsetValue[types.Type]()
	if p.match(lexer.TokColon) {
		typ = ast.UnresolvedValue[types.Type](p.parseTypeAnnotation())
	}
	p.expect(lexer.TokEq, "=")
	expr := p.parseExpression()
	p.expect(lexer.TokSemicolon, ";")
	n := &ast.DeclareConstStmt{
		ConstantRef: ref.InvalidConstant,
		Name:        nameTok.Value,
		Expression:  expr,
		Type:        typ,
		IsExported:  ast.UnsetValue[bool](),
	}
	p.applyConstAttrs(n, attrs)
	n.Loc = p.locRange(startTok, p.previous())
	return n
}

func (p *Parser) parseAliasDecl(attrs []rawAttr) ast.Statement {
	startTok := p.advance() // alias
	nameTok := p.expect(lexer.TokIdent, "an alias name")
	p.expect(lexer.TokEq, "=")
	expr := p.parseExpression()
	p.expect(lexer.TokSemicolon, ";")
	_ = attrs // aliases carry no attributes in this grammar
	n := &ast.DeclareAliasStmt{AliasRef: ref.InvalidAlias, Name: nameTok.Value, Expression: expr}
	n.Loc = p.locRange(startTok, p.previous())
	return n
}

func (p *Parser) parseStructDecl(attrs []rawAttr) ast.Statement {
	startTok := p.advance() // struct
	nameTok := p.expect(lexer.TokIdent, "a struct name")
	desc := ast.StructDescription{Name: nameTok.Value, Layout: ast.UnsetValue[ast.MemoryLayout]()}

	p.expect(lexer.TokLBrace, "{")
	for !p.check(lexer.TokRBrace) && !p.atEnd() {
		memberAttrs := p.parseAttributeList()
		mTok := p.expect(lexer.TokIdent, "a member name")
		p.expect(lexer.TokColon, ":")
		typeExpr := p.parseTypeAnnotation()
		m := ast.StructMember{
			Name:     mTok.Value,
			Type:     ast.UnresolvedValue[types.Type](typeExpr),
			Builtin:  ast.UnsetValue[ast.BuiltinEntry](),
			Location: ast.UnsetValue[uint32](),
			Cond:     ast.UnsetValue[bool](),
		}
		m.Loc = p.locRange(mTok, p.previous())
		p.applyStructMemberAttrs(&m, memberAttrs)
		desc.Members = append(desc.Members, m)
		if !p.match(lexer.TokComma) {
			break
		}
	}
	p.expect(lexer.TokRBrace, "}")

	n := &ast.DeclareStructStmt{StructRef: ref.InvalidStruct, IsExported: ast.UnsetValue[bool](), Description: desc}
	p.applyStructAttrs(n, attrs)
	n.Loc = p.locRange(startTok, p.previous())
	return n
}

func (p *Parser) parseExternalDecl(attrs []rawAttr) ast.Statement {
	startTok := p.advance() // external
	n := &ast.DeclareExternalStmt{Set: ast.UnsetValue[uint32](), AutoBinding: ast.UnsetValue[bool]()}
	p.applyExternalBlockAttrs(n, attrs)

	p.expect(lexer.TokLBrace, "{")
	for !p.check(lexer.TokRBrace) && !p.atEnd() {
		varAttrs := p.parseAttributeList()
		nameTok := p.expect(lexer.TokIdent, "an external name")
		p.expect(lexer.TokColon, ":")
		typeExpr := p.parseTypeAnnotation()
		ev := ast.ExternalVar{
			VariableRef: ref.InvalidVariable,
			Name:        nameTok.Value,
			Type:        ast.UnresolvedValue[types.Type](typeExpr),
			Binding:     ast.UnsetValue[uint32](),
			Set:         ast.UnsetValue[uint32](),
		}
		ev.Loc = p.locRange(nameTok, p.previous())
		p.applyExternalVarAttrs(&ev, varAttrs)
		n.ExternalVars = append(n.ExternalVars, ev)
		if !p.match(lexer.TokComma) {
			break
		}
	}
	p.expect(lexer.TokRBrace, "}")
	n.Loc = p.locRange(startTok, p.previous())
	return n
}

func (p *Parser) parseFunctionDecl(attrs []rawAttr) ast.Statement {
	startTok := p.advance() // fn
	nameTok := p.expect(lexer.TokIdent, "a function name")

	p.expect(lexer.TokLParen, "(")
	var params []ast.FunctionParam
	if !p.check(lexer.TokRParen) {
		for {
			pTok := p.expect(lexer.TokIdent, "a parameter name")
			p.expect(lexer.TokColon, ":")
			typeExpr := p.parseTypeAnnotation()
			param := ast.FunctionParam{VariableRef: ref.InvalidVariable, Name: pTok.Value, Type: ast.UnresolvedValue[types.Type](typeExpr)}
			param.Loc = p.locRange(pTok, p.previous())
			params = append(params, param)
			if !p.match(lexer.TokComma) {
				break
			}
		}
	}
	p.expect(lexer.TokRParen, ")")

	retType := ast.UnsetValue[types.Type]()
	if p.match(lexer.TokArrow) {
		retType = ast.UnresolvedValue[types.Type](p.parseTypeAnnotation())
	}

	stmts := p.parseBlockStatements()

	n := &ast.DeclareFunctionStmt{
		FuncRef:            ref.InvalidFunction,
		Name:               nameTok.Value,
		Parameters:         params,
		Statements:         stmts,
		ReturnType:         retType,
		DepthWrite:         ast.UnsetValue[ast.DepthWriteMode](),
		EntryStage:         ast.UnsetValue[ast.ShaderStage](),
		WorkgroupSize:      ast.UnsetValue[[3]uint32](),
		EarlyFragmentTests: ast.UnsetValue[bool](),
		IsExported:         ast.UnsetValue[bool](),
	}
	p.applyFunctionAttrs(n, attrs)
	n.Loc = p.locRange(startTok, p.previous())
	return n
}

func (p *Parser) parseImportIdentifierTail(nameTok lexer.Token) ast.ImportIdentifier {
	id := ast.ImportIdentifier{Identifier: nameTok.Value, IdentifierLoc: p.locTok(nameTok)}
	if p.match(lexer.TokAs) {
		rt := p.expect(lexer.TokIdent, "a renamed identifier")
		id.RenamedIdentifier = rt.Value
		id.RenamedIdentifierLoc = p.locTok(rt)
	}
	return id
}

func (p *Parser) parseImportDecl() ast.Statement {
	startTok := p.advance() // import

	if p.check(lexer.TokStar) {
		starTok := p.advance()
		p.expect(lexer.TokFrom, "from")
		modTok := p.expect(lexer.TokIdent, "a module name")
		p.expect(lexer.TokSemicolon, ";")
		n := &ast.ImportStmt{
			ModuleName:  modTok.Value,
			Identifiers: []ast.ImportIdentifier{{Identifier: "*", IdentifierLoc: p.locTok(starTok)}},
		}
		n.Loc = p.locRange(startTok, p.previous())
		return n
	}

	firstTok := p.expect(lexer.TokIdent, "a module or identifier name")
	if p.check(lexer.TokSemicolon) {
		p.advance()
		n := &ast.ImportStmt{ModuleName: firstTok.Value}
		n.Loc = p.locRange(startTok, p.previous())
		return n
	}

	idents := []ast.ImportIdentifier{p.parseImportIdentifierTail(firstTok)}
	for p.match(lexer.TokComma) {
		nt := p.expect(lexer.TokIdent, "an imported identifier")
		idents = append(idents, p.parseImportIdentifierTail(nt))
	}
	p.expect(lexer.TokFrom, "from")
	modTok := p.expect(lexer.TokIdent, "a module name")
	p.expect(lexer.TokSemicolon, ";")

	n := &ast.ImportStmt{ModuleName: modTok.Value, Identifiers: idents}
	n.Loc = p.locRange(startTok, p.previous())
	return n
}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

func (p *Parser) parseBlockStatements() []ast.Statement {
	p.expect(lexer.TokLBrace, "{")
	var stmts []ast.Statement
	for !p.check(lexer.TokRBrace) && !p.atEnd() {
		stmts = append(stmts, p.parseStatement())
	}
	p.expect(lexer.TokRBrace, "}")
	return stmts
}

// parseBody parses a brace-delimited statement list used as the body of an
// if/while/for/foreach arm. It returns a bare MultiStmt rather than a
// ScopedStmt: the enclosing construct (resolveBranch, resolveFor, ...)
// already pushes its own scope around the body.
func (p *Parser) parseBody() ast.Statement {
	startTok := p.cur()
	stmts := p.parseBlockStatements()
	n := &ast.MultiStmt{Statements: stmts}
	n.Loc = p.locRange(startTok, p.previous())
	return n
}

func (p *Parser) parseStatement() ast.Statement {
	attrs := p.parseAttributeList()

	switch p.cur().Kind {
	case lexer.TokLBrace:
		startTok := p.cur()
		stmts := p.parseBlockStatements()
		inner := &ast.MultiStmt{Statements: stmts}
		inner.Loc = p.locRange(startTok, p.previous())
		n := &ast.ScopedStmt{Statement: inner}
		n.Loc = inner.Loc
		return n
	case lexer.TokLet, lexer.TokVar:
		return p.parseVarDecl()
	case lexer.TokIf:
		return p.parseIf(p.cur(), false)
	case lexer.TokConst:
		if p.peekAt(1).Kind == lexer.TokIf {
			constTok := p.advance()
			return p.parseIf(constTok, true)
		}
		return p.parseConstDecl(attrs)
	case lexer.TokFor:
		return p.parseFor(attrs)
	case lexer.TokWhile:
		return p.parseWhile(attrs)
	case lexer.TokReturn:
		return p.parseReturn()
	case lexer.TokBreak:
		tok := p.advance()
		p.expect(lexer.TokSemicolon, ";")
		n := &ast.BreakStmt{}
		n.Loc = p.locTok(tok)
		return n
	case lexer.TokContinue:
		tok := p.advance()
		p.expect(lexer.TokSemicolon, ";")
		n := &ast.ContinueStmt{}
		n.Loc = p.locTok(tok)
		return n
	case lexer.TokDiscard:
		tok := p.advance()
		p.expect(lexer.TokSemicolon, ";")
		n := &ast.DiscardStmt{}
		n.Loc = p.locTok(tok)
		return n
	case lexer.TokAlias:
		return p.parseAliasDecl(attrs)
	default:
		return p.parseExprOrAssignStmt()
	}
}

func (p *Parser) parseVarDecl() ast.Statement {
	startTok := p.advance() // let or var
	nameTok := p.expect(lexer.TokIdent, "a variable name")
	typ := ast.UnsetValue[types.Type]()
	if p.match(lexer.TokColon) {
		typ = ast.UnresolvedValue[types.Type](p.parseTypeAnnotation())
	}
	var init ast.Expression
	if p.match(lexer.TokEq) {
		init = p.parseExpression()
	}
	p.expect(lexer.TokSemicolon, ";")
	n := &ast.DeclareVariableStmt{VariableRef: ref.InvalidVariable, Name: nameTok.Value, InitialExpression: init, Type: typ}
	n.Loc = p.locRange(startTok, p.previous())
	return n
}

func (p *Parser) parseIf(startTok lexer.Token, isConst bool) ast.Statement {
	p.expect(lexer.TokIf, "if")
	cond := p.parseExpression()
	body := p.parseBody()
	branches := []ast.ConditionalBranch{{Condition: cond, Statement: body}}

	var elseStmt ast.Statement
	for p.check(lexer.TokElse) {
		p.advance()
		if p.check(lexer.TokIf) {
			p.advance()
			c := p.parseExpression()
			b := p.parseBody()
			branches = append(branches, ast.ConditionalBranch{Condition: c, Statement: b})
			continue
		}
		elseStmt = p.parseBody()
		break
	}

	n := &ast.BranchStmt{CondStatements: branches, ElseStatement: elseStmt, IsConst: isConst}
	n.Loc = p.locRange(startTok, p.previous())
	return n
}

func (p *Parser) parseFor(attrs []rawAttr) ast.Statement {
	startTok := p.advance() // for
	nameTok := p.expect(lexer.TokIdent, "a loop variable name")
	p.expect(lexer.TokIn, "in")
	first := p.parseExpression()
	unroll := p.applyLoopAttrs(attrs)

	if p.match(lexer.TokArrow) {
		to := p.parseExpression()
		var step ast.Expression
		if p.match(lexer.TokColon) {
			step = p.parseExpression()
		}
		body := p.parseBody()
		n := &ast.ForStmt{
			VariableRef: ref.InvalidVariable,
			VarName:     nameTok.Value,
			FromExpr:    first,
			ToExpr:      to,
			StepExpr:    step,
			Unroll:      unroll,
			Statement:   body,
		}
		n.Loc = p.locRange(startTok, p.previous())
		return n
	}

	body := p.parseBody()
	n := &ast.ForEachStmt{
		VariableRef: ref.InvalidVariable,
		VarName:     nameTok.Value,
		Expression:  first,
		Unroll:      unroll,
		Statement:   body,
	}
	n.Loc = p.locRange(startTok, p.previous())
	return n
}

func (p *Parser) parseWhile(attrs []rawAttr) ast.Statement {
	startTok := p.advance() // while
	cond := p.parseExpression()
	unroll := p.applyLoopAttrs(attrs)
	body := p.parseBody()
	n := &ast.WhileStmt{Condition: cond, Unroll: unroll, Body: body}
	n.Loc = p.locRange(startTok, p.previous())
	return n
}

func (p *Parser) parseReturn() ast.Statement {
	startTok := p.advance() // return
	var expr ast.Expression
	if !p.check(lexer.TokSemicolon) {
		expr = p.parseExpression()
	}
	p.expect(lexer.TokSemicolon, ";")
	n := &ast.ReturnStmt{ReturnExpr: expr}
	n.Loc = p.locRange(startTok, p.previous())
	return n
}

func assignOpFor(k lexer.TokenKind) (ast.AssignOp, bool) {
	switch k {
	case lexer.TokEq:
		return ast.AssignSimple, true
	case lexer.TokPlusEq:
		return ast.AssignCompoundAdd, true
	case lexer.TokMinusEq:
		return ast.AssignCompoundSubtract, true
	case lexer.TokStarEq:
		return ast.AssignCompoundMultiply, true
	case lexer.TokSlashEq:
		return ast.AssignCompoundDivide, true
	case lexer.TokPercentEq:
		return ast.AssignCompoundModulo, true
	case lexer.TokAmpAmpEq:
		return ast.AssignCompoundLogicalAnd, true
	case lexer.TokPipePipeEq:
		return ast.AssignCompoundLogicalOr, true
	case lexer.TokAmpEq:
		return ast.AssignCompoundBitwiseAnd, true
	case lexer.TokPipeEq:
		return ast.AssignCompoundBitwiseOr, true
	case lexer.TokCaretEq:
		return ast.AssignCompoundBitwiseXor, true
	case lexer.TokLtLtEq:
		return ast.AssignCompoundShiftLeft, true
	case lexer.TokGtGtEq:
		return ast.AssignCompoundShiftRight, true
	default:
		return ast.AssignSimple, false
	}
}

func (p *Parser) parseExprOrAssignStmt() ast.Statement {
	startTok := p.cur()
	lhs := p.parseExpression()

	if op, ok := assignOpFor(p.cur().Kind); ok {
		p.advance()
		rhs := p.parseExpression()
		a := &ast.AssignExpr{Op: op, Left: lhs, Right: rhs}
		a.Loc = p.locRange(startTok, p.previous())
		p.expect(lexer.TokSemicolon, ";")
		n := &ast.ExpressionStmt{Expression: a}
		n.Loc = p.locRange(startTok, p.previous())
		return n
	}

	p.expect(lexer.TokSemicolon, ";")
	n := &ast.ExpressionStmt{Expression: lhs}
	n.Loc = p.locRange(startTok, p.previous())
	return n
}

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

// parseTypeAnnotation parses a type written where SL reuses expression
// syntax: a bare name (`f32`), or a name applied to one or more `[...]`
// index arguments (`vec3[f32]`, `array[f32, 10]`). It never descends into
// the binary-operator ladder; resolve.materializePartial is the only place
// that interprets the result as a type.
func (p *Parser) parseTypeAnnotation() ast.Expression {
	return p.parsePostfix()
}

func (p *Parser) parseExpression() ast.Expression {
	return p.parseTernary()
}

func (p *Parser) parseTernary() ast.Expression {
	startTok := p.cur()
	cond := p.parseLogicalOr()
	if p.match(lexer.TokQuestion) {
		truePath := p.parseExpression()
		p.expect(lexer.TokColon, ":")
		falsePath := p.parseTernary()
		n := &ast.ConditionalExpr{Cond: cond, TruePath: truePath, FalsePath: falsePath}
		n.Loc = p.locRange(startTok, p.previous())
		return n
	}
	return cond
}

func (p *Parser) parseLogicalOr() ast.Expression {
	startTok := p.cur()
	left := p.parseLogicalAnd()
	for p.check(lexer.TokPipePipe) {
		p.advance()
		right := p.parseLogicalAnd()
		n := &ast.BinaryExpr{Op: ast.BinaryLogicalOr, Left: left, Right: right}
		n.Loc = p.locRange(startTok, p.previous())
		left = n
	}
	return left
}

func (p *Parser) parseLogicalAnd() ast.Expression {
	startTok := p.cur()
	left := p.parseBitwiseOr()
	for p.check(lexer.TokAmpAmp) {
		p.advance()
		right := p.parseBitwiseOr()
		n := &ast.BinaryExpr{Op: ast.BinaryLogicalAnd, Left: left, Right: right}
		n.Loc = p.locRange(startTok, p.previous())
		left = n
	}
	return left
}

func (p *Parser) parseBitwiseOr() ast.Expression {
	startTok := p.cur()
	left := p.parseBitwiseXor()
	for p.check(lexer.TokPipe) {
		p.advance()
		right := p.parseBitwiseXor()
		n := &ast.BinaryExpr{Op: ast.BinaryBitwiseOr, Left: left, Right: right}
		n.Loc = p.locRange(startTok, p.previous())
		left = n
	}
	return left
}

func (p *Parser) parseBitwiseXor() ast.Expression {
	startTok := p.cur()
	left := p.parseBitwiseAnd()
	for p.check(lexer.TokCaret) {
		p.advance()
		right := p.parseBitwiseAnd()
		n := &ast.BinaryExpr{Op: ast.BinaryBitwiseXor, Left: left, Right: right}
		n.Loc = p.locRange(startTok, p.previous())
		left = n
	}
	return left
}

func (p *Parser) parseBitwiseAnd() ast.Expression {
	startTok := p.cur()
	left := p.parseEquality()
	for p.check(lexer.TokAmp) {
		p.advance()
		right := p.parseEquality()
		n := &ast.BinaryExpr{Op: ast.BinaryBitwiseAnd, Left: left, Right: right}
		n.Loc = p.locRange(startTok, p.previous())
		left = n
	}
	return left
}

func (p *Parser) parseEquality() ast.Expression {
	startTok := p.cur()
	left := p.parseRelational()
	for {
		var op ast.BinaryOp
		switch p.cur().Kind {
		case lexer.TokEqEq:
			op = ast.BinaryCompEq
		case lexer.TokBangEq:
			op = ast.BinaryCompNe
		default:
			return left
		}
		p.advance()
		right := p.parseRelational()
		n := &ast.BinaryExpr{Op: op, Left: left, Right: right}
		n.Loc = p.locRange(startTok, p.previous())
		left = n
	}
}

func (p *Parser) parseRelational() ast.Expression {
	startTok := p.cur()
	left := p.parseShift()
	for {
		var op ast.BinaryOp
		switch p.cur().Kind {
		case lexer.TokLt:
			op = ast.BinaryCompLt
		case lexer.TokLtEq:
			op = ast.BinaryCompLe
		case lexer.TokGt:
			op = ast.BinaryCompGt
		case lexer.TokGtEq:
			op = ast.BinaryCompGe
		default:
			return left
		}
		p.advance()
		right := p.parseShift()
		n := &ast.BinaryExpr{Op: op, Left: left, Right: right}
		n.Loc = p.locRange(startTok, p.previous())
		left = n
	}
}

func (p *Parser) parseShift() ast.Expression {
	startTok := p.cur()
	left := p.parseAdditive()
	for {
		var op ast.BinaryOp
		switch p.cur().Kind {
		case lexer.TokLtLt:
			op = ast.BinaryShiftLeft
		case lexer.TokGtGt:
			op = ast.BinaryShiftRight
		default:
			return left
		}
		p.advance()
		right := p.parseAdditive()
		n := &ast.BinaryExpr{Op: op, Left: left, Right: right}
		n.Loc = p.locRange(startTok, p.previous())
		left = n
	}
}

func (p *Parser) parseAdditive() ast.Expression {
	startTok := p.cur()
	left := p.parseMultiplicative()
	for {
		var op ast.BinaryOp
		switch p.cur().Kind {
		case lexer.TokPlus:
			op = ast.BinaryAdd
		case lexer.TokMinus:
			op = ast.BinarySubtract
		default:
			return left
		}
		p.advance()
		right := p.parseMultiplicative()
		n := &ast.BinaryExpr{Op: op, Left: left, Right: right}
		n.Loc = p.locRange(startTok, p.previous())
		left = n
	}
}

func (p *Parser) parseMultiplicative() ast.Expression {
	startTok := p.cur()
	left := p.parseUnary()
	for {
		var op ast.BinaryOp
		switch p.cur().Kind {
		case lexer.TokStar:
			op = ast.BinaryMultiply
		case lexer.TokSlash:
			op = ast.BinaryDivide
		case lexer.TokPercent:
			op = ast.BinaryModulo
		default:
			return left
		}
		p.advance()
		right := p.parseUnary()
		n := &ast.BinaryExpr{Op: op, Left: left, Right: right}
		n.Loc = p.locRange(startTok, p.previous())
		left = n
	}
}

func unaryOpFor(k lexer.TokenKind) ast.UnaryOp {
	switch k {
	case lexer.TokBang:
		return ast.UnaryLogicalNot
	case lexer.TokMinus:
		return ast.UnaryMinus
	case lexer.TokPlus:
		return ast.UnaryPlus
	default:
		return ast.UnaryBitwiseNot
	}
}

func (p *Parser) parseUnary() ast.Expression {
	startTok := p.cur()
	switch startTok.Kind {
	case lexer.TokBang, lexer.TokMinus, lexer.TokPlus, lexer.TokTilde:
		p.advance()
		operand := p.parseUnary()
		n := &ast.UnaryExpr{Op: unaryOpFor(startTok.Kind), Expr: operand}
		n.Loc = p.locRange(startTok, p.previous())
		return n
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parseExprList(closeKind lexer.TokenKind) []ast.Expression {
	if p.check(closeKind) {
		return nil
	}
	var list []ast.Expression
	for {
		list = append(list, p.parseExpression())
		if p.match(lexer.TokComma) {
			continue
		}
		break
	}
	return list
}

func (p *Parser) parsePostfix() ast.Expression {
	startTok := p.cur()
	e := p.parsePrimary()

	for {
		switch {
		case p.check(lexer.TokDot):
			p.advance()
			nameTok := p.expect(lexer.TokIdent, "a member name")
			if p.check(lexer.TokLParen) {
				p.advance()
				args := p.parseExprList(lexer.TokRParen)
				p.expect(lexer.TokRParen, ")")
				call := &ast.CallMethodExpr{Object: e, MethodName: nameTok.Value, Params: args}
				call.Loc = p.locRange(startTok, p.previous())
				e = call
				continue
			}
			if acc, ok := e.(*ast.AccessIdentifierExpr); ok {
				acc.Identifiers = append(acc.Identifiers, ast.AccessIdentifierName{Name: nameTok.Value, Loc: p.locTok(nameTok)})
				acc.Loc = p.locRange(startTok, p.previous())
			} else {
				n := &ast.AccessIdentifierExpr{Expr: e, Identifiers: []ast.AccessIdentifierName{{Name: nameTok.Value, Loc: p.locTok(nameTok)}}}
				n.Loc = p.locRange(startTok, p.previous())
				e = n
			}
		case p.check(lexer.TokLBracket):
			p.advance()
			indices := p.parseExprList(lexer.TokRBracket)
			p.expect(lexer.TokRBracket, "]")
			n := &ast.AccessIndexExpr{Expr: e, Indices: indices}
			n.Loc = p.locRange(startTok, p.previous())
			e = n
		case p.check(lexer.TokLParen):
			p.advance()
			args := p.parseExprList(lexer.TokRParen)
			p.expect(lexer.TokRParen, ")")
			n := &ast.CallFunctionExpr{TargetFunction: e, Params: args}
			n.Loc = p.locRange(startTok, p.previous())
			e = n
		default:
			return e
		}
	}
}

func (p *Parser) intExpr(tok lexer.Token) ast.Expression {
	text := tok.Value
	var suffix byte
	if n := len(text); n > 0 {
		switch text[n-1] {
		case 'u', 'i':
			suffix = text[n-1]
			text = text[:n-1]
		}
	}
	base := 10
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		base = 16
		text = text[2:]
	}
	n, err := strconv.ParseUint(text, base, 64)
	if err != nil {
		p.errorAt(tok, diagnostic.BadNumber, "invalid integer literal %q", tok.Value)
	}
	var v constant.Value
	switch suffix {
	case 'u':
		v = constant.U32(uint32(n))
	case 'i':
		v = constant.I32(int32(n))
	default:
		v = constant.IntLiteral(int64(n))
	}
	e := &ast.ConstantValueExpr{Value: v}
	e.Loc = p.locTok(tok)
	return e
}

func (p *Parser) floatExpr(tok lexer.Token) ast.Expression {
	text := tok.Value
	var suffix byte
	if n := len(text); n > 0 && text[n-1] == 'f' {
		suffix = 'f'
		text = text[:n-1]
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		p.errorAt(tok, diagnostic.BadNumber, "invalid float literal %q", tok.Value)
	}
	var v constant.Value
	if suffix == 'f' {
		v = constant.F32(float32(f))
	} else {
		v = constant.FloatLiteral(f)
	}
	e := &ast.ConstantValueExpr{Value: v}
	e.Loc = p.locTok(tok)
	return e
}

func (p *Parser) boolExpr(tok lexer.Token, v bool) ast.Expression {
	e := &ast.ConstantValueExpr{Value: constant.Bool(v)}
	e.Loc = p.locTok(tok)
	return e
}

func (p *Parser) stringExpr(tok lexer.Token) ast.Expression {
	e := &ast.ConstantValueExpr{Value: constant.String(tok.Value)}
	e.Loc = p.locTok(tok)
	return e
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.cur()
	switch tok.Kind {
	case lexer.TokIntLiteral:
		p.advance()
		return p.intExpr(tok)
	case lexer.TokFloatLiteral:
		p.advance()
		return p.floatExpr(tok)
	case lexer.TokStringLiteral:
		p.advance()
		return p.stringExpr(tok)
	case lexer.TokTrue:
		p.advance()
		return p.boolExpr(tok, true)
	case lexer.TokFalse:
		p.advance()
		return p.boolExpr(tok, false)
	case lexer.TokIdent:
		p.advance()
		id := &ast.IdentifierExpr{Identifier: tok.Value}
		id.Loc = p.locTok(tok)
		return id
	case lexer.TokLParen:
		p.advance()
		e := p.parseExpression()
		p.expect(lexer.TokRParen, ")")
		return e
	default:
		p.errorAt(tok, diagnostic.UnexpectedToken, "expected an expression, got %q", tok.Text(p.source))
		if !p.atEnd() {
			p.advance()
		}
		id := &ast.IdentifierExpr{Identifier: ""}
		id.Loc = p.locTok(tok)
		return id
	}
}
