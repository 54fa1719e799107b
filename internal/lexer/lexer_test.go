package lexer

import "testing"

func kinds(tokens []Token) []TokenKind {
	out := make([]TokenKind, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, tok.Kind)
	}
	return out
}

func assertKinds(t *testing.T, source string, want ...TokenKind) {
	t.Helper()
	want = append(want, TokEOF)
	got := kinds(New(source).Tokenize())
	if len(got) != len(want) {
		t.Fatalf("Tokenize(%q) = %v, want %v", source, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Tokenize(%q)[%d] = %v, want %v", source, i, got[i], want[i])
		}
	}
}

func TestTokenizeModuleHeader(t *testing.T) {
	assertKinds(t, `nzsl_version("1.0")`,
		TokNzslVersion, TokLParen, TokStringLiteral, TokRParen)
}

func TestTokenizeKeywords(t *testing.T) {
	for word, kind := range Keywords {
		assertKinds(t, word, kind)
	}
}

func TestTokenizeIdentifier(t *testing.T) {
	assertKinds(t, "_foo123", TokIdent)
}

func TestTokenizeIntLiteral(t *testing.T) {
	assertKinds(t, "42", TokIntLiteral)
	assertKinds(t, "0x1F", TokIntLiteral)
	assertKinds(t, "7u", TokIntLiteral)
}

func TestTokenizeFloatLiteral(t *testing.T) {
	assertKinds(t, "3.14", TokFloatLiteral)
	assertKinds(t, "3.0", TokFloatLiteral)
	assertKinds(t, "1e10", TokFloatLiteral)
	assertKinds(t, "1.5f", TokFloatLiteral)
}

func TestTokenizeFieldAccessVsFloatAmbiguity(t *testing.T) {
	// "foo.bar" is an identifier, a dot, and an identifier, not a float.
	assertKinds(t, "foo.bar", TokIdent, TokDot, TokIdent)
}

func TestTokenizeStringLiteral(t *testing.T) {
	tokens := New(`"hello world"`).Tokenize()
	if tokens[0].Kind != TokStringLiteral {
		t.Fatalf("expected a string literal, got %v", tokens[0].Kind)
	}
	if tokens[0].Value != "hello world" {
		t.Fatalf("expected value %q, got %q", "hello world", tokens[0].Value)
	}
}

func TestTokenizeUnfinishedString(t *testing.T) {
	tokens := New(`"hello`).Tokenize()
	if tokens[0].Kind != TokError {
		t.Fatalf("expected an error token for an unfinished string, got %v", tokens[0].Kind)
	}
}

func TestTokenizeLineComment(t *testing.T) {
	assertKinds(t, "let x // this is dropped\n= 1;", TokLet, TokIdent, TokEq, TokIntLiteral, TokSemicolon)
}

func TestTokenizeNestedBlockComment(t *testing.T) {
	assertKinds(t, "let /* outer /* inner */ still outer */ x = 1;",
		TokLet, TokIdent, TokEq, TokIntLiteral, TokSemicolon)
}

func TestTokenizeOperators(t *testing.T) {
	assertKinds(t, "+ - * / % & | ^ ~ ! < > = . @ ?",
		TokPlus, TokMinus, TokStar, TokSlash, TokPercent, TokAmp, TokPipe,
		TokCaret, TokTilde, TokBang, TokLt, TokGt, TokEq, TokDot, TokAt, TokQuestion)
}

func TestTokenizeCompoundOperators(t *testing.T) {
	assertKinds(t, "&& || << >> <= >= == != ->",
		TokAmpAmp, TokPipePipe, TokLtLt, TokGtGt, TokLtEq, TokGtEq, TokEqEq, TokBangEq, TokArrow)
}

func TestTokenizeCompoundAssignOperators(t *testing.T) {
	assertKinds(t, "+= -= *= /= %= &= |= ^= <<= >>=",
		TokPlusEq, TokMinusEq, TokStarEq, TokSlashEq, TokPercentEq,
		TokAmpEq, TokPipeEq, TokCaretEq, TokLtLtEq, TokGtGtEq)
}

func TestTokenizeLogicalCompoundAssignOperators(t *testing.T) {
	assertKinds(t, "&&= ||=", TokAmpAmpEq, TokPipePipeEq)
}

func TestTokenizeShiftVsLessThanAmbiguity(t *testing.T) {
	// Without generics, "<<" always lexes as a single shift token.
	assertKinds(t, "a << b", TokIdent, TokLtLt, TokIdent)
}

func TestTokenizeDelimiters(t *testing.T) {
	assertKinds(t, "( ) { } [ ] ; : ,",
		TokLParen, TokRParen, TokLBrace, TokRBrace, TokLBracket, TokRBracket,
		TokSemicolon, TokColon, TokComma)
}

func TestTokenizeAttribute(t *testing.T) {
	assertKinds(t, `[layout(std140)]`,
		TokLBracket, TokIdent, TokLParen, TokIdent, TokRParen, TokRBracket)
}

func TestTokenizeForRange(t *testing.T) {
	assertKinds(t, "for i in 0 -> 10 : 2 {}",
		TokFor, TokIdent, TokIn, TokIntLiteral, TokArrow, TokIntLiteral,
		TokColon, TokIntLiteral, TokLBrace, TokRBrace)
}

func TestTokenizeFunctionDeclaration(t *testing.T) {
	assertKinds(t, "fn main() -> f32 { return 1.0; }",
		TokFn, TokIdent, TokLParen, TokRParen, TokArrow, TokIdent,
		TokLBrace, TokReturn, TokFloatLiteral, TokSemicolon, TokRBrace)
}

func TestTokenPositions(t *testing.T) {
	tokens := New("let x").Tokenize()
	if tokens[0].Start != 0 || tokens[0].End != 3 {
		t.Fatalf("unexpected span for %q: [%d,%d)", "let", tokens[0].Start, tokens[0].End)
	}
	if tokens[1].Start != 4 || tokens[1].End != 5 {
		t.Fatalf("unexpected span for %q: [%d,%d)", "x", tokens[1].Start, tokens[1].End)
	}
}
