// Package diagnostic provides the error catalogue, source-location
// formatting and severity/filter machinery shared by every pass.
package diagnostic

import (
	"fmt"
	"strings"
)

// Severity represents the severity level of a diagnostic.
type Severity uint8

const (
	SeverityError Severity = iota
	Warning
	Info
	Note
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	case Note:
		return "note"
	default:
		return "unknown"
	}
}

// Category is the single-letter error-family tag: lexer, parser,
// compiler (middle-end) or ast-integrity.
type Category byte

const (
	CategoryLexer    Category = 'L'
	CategoryParser   Category = 'P'
	CategoryCompiler Category = 'C'
	CategoryAST      Category = 'A'
)

func (c Category) String() string { return string(rune(c)) }

// Kind enumerates every diagnostic kind in the catalogue below, in
// declaration order; its numeric value is purely an internal dispatch key,
// not a stable wire format (the binary codec does not persist diagnostics).
type Kind uint16

// Lexer kinds.
const (
	BadNumber Kind = iota + 1
	NumberOutOfRange
	UnfinishedString
	UnfinishedComment
	UnrecognizedChar
	UnrecognizedToken
)

// Parser kinds.
const (
	ExpectedToken Kind = iota + 100
	DuplicateIdentifier
	DuplicateModule
	InvalidVersion
	MissingAttribute
	ModuleFeatureMultipleUnique
	ReservedKeyword
	UnknownAttribute
	UnknownType
	UnexpectedAttribute
	UnexpectedEndOfFile
	UnexpectedToken
	AttributeExpectString
	AttributeInvalidParameter
	AttributeMissingParameter
	AttributeMultipleUnique
	AttributeParameterIdentifier
)

// Compiler (middle-end) kinds.
const (
	ArrayLength Kind = iota + 200
	ArrayLengthRequired
	AliasUnexpectedType
	AssignTemporary
	AttributeUnexpectedExpression
	AttributeUnexpectedType
	BinaryIncompatibleTypes
	BinaryUnsupported
	BranchOutsideOfFunction
	BuiltinUnexpectedType
	BuiltinUnsupportedStage
	CastComponentMismatch
	CastIncompatibleBaseTypes
	CastIncompatibleTypes
	CastMatrixExpectedVectorOrScalar
	CastMatrixVectorComponentMismatch
	CircularImport
	ConditionExpectedBool
	ConstMissingExpression
	ConstantExpectedValue
	ConstantExpressionRequired
	DepthWriteAttribute
	DiscardEarlyFragmentTests
	DiscardOutsideOfFunction
	EarlyFragmentTestsAttribute
	EntryFunctionParameter
	EntryPointAlreadyDefined
	ExpectedFunction
	ExpectedIntrinsicFunction
	ExpectedPartialType
	ExtAlreadyDeclared
	ExtBindingAlreadyUsed
	ExtMissingBindingIndex
	ExtTypeNotAllowed
	ForEachUnsupportedType
	ForFromTypeExpectIntegerType
	ForStepUnmatchingType
	ForToUnmatchingType
	FunctionCallExpectedFunction
	FunctionCallOutsideOfFunction
	FunctionCallUnexpectedEntryFunction
	FunctionCallUnmatchingParameterCount
	FunctionCallUnmatchingParameterType
	FunctionDeclarationInsideFunction
	IdentifierAlreadyUsed
	ImportIdentifierAlreadyPresent
	ImportMultipleWildcard
	ImportWildcardRename
	IndexRequiresIntegerIndices
	IndexStructRequiresInt32Indices
	IndexUnexpectedType
	IntegralDivisionByZero
	IntegralModuloByZero
	IntrinsicExpectedFloat
	IntrinsicExpectedParameterCount
	IntrinsicExpectedType
	IntrinsicUnexpectedBoolean
	IntrinsicUnmatchingParameterType
	InvalidCast
	InvalidStageDependency
	InvalidSwizzle
	LoopControlOutsideOfLoop
	ModuleCompilationFailed
	ModuleFeatureMismatch
	ModuleNotFound
	NoModuleResolver
	OptionDeclarationInsideFunction
	PartialTypeExpect
	PartialTypeTooFewParameters
	PartialTypeTooManyParameters
	SamplerUnexpectedType
	StructDeclarationInsideFunction
	StructExpected
	StructFieldBuiltinLocation
	StructFieldMultiple
	StructLayoutInnerMismatch
	StructLayoutTypeNotAllowed
	SwizzleUnexpectedType
	UnaryUnsupported
	UnexpectedAccessedType
	UnknownField
	UnknownIdentifier
	UnknownMethod
	UnmatchingTypes
	VarDeclarationMissingTypeAndValue
	VarDeclarationOutsideOfFunction
	VarDeclarationTypeUnmatching
	WhileUnrollNotSupported
	BinaryNegativeShift
	BinaryTooLargeShift
	LiteralOutOfRange
)

// AST-integrity kinds: these should never escape to an end user; seeing one
// means a pass violated its own invariants.
const (
	AlreadyUsedIndex Kind = iota + 900
	EmptyIdentifier
	Internal
	InvalidConstantIndex
	InvalidIndex
	InvalidMethodIndex
	MissingExpression
	MissingStatement
	NoIdentifier
	NoIndex
	UnexpectedIdentifier
)

// CategoryOf returns the error-family a kind belongs to.
func (k Kind) CategoryOf() Category {
	switch {
	case k < 100:
		return CategoryLexer
	case k < 200:
		return CategoryParser
	case k < 900:
		return CategoryCompiler
	default:
		return CategoryAST
	}
}

// kindNames gives every Kind its catalogue name, used both for %s-style
// formatting and for the diagnostic(off, rule) directive's rule name.
var kindNames = map[Kind]string{
	BadNumber: "bad-number", NumberOutOfRange: "number-out-of-range",
	UnfinishedString: "unfinished-string", UnfinishedComment: "unfinished-comment",
	UnrecognizedChar: "unrecognized-char", UnrecognizedToken: "unrecognized-token",

	ExpectedToken: "expected-token", DuplicateIdentifier: "duplicate-identifier",
	DuplicateModule: "duplicate-module", InvalidVersion: "invalid-version",
	MissingAttribute: "missing-attribute", ModuleFeatureMultipleUnique: "module-feature-multiple-unique",
	ReservedKeyword: "reserved-keyword", UnknownAttribute: "unknown-attribute",
	UnknownType: "unknown-type", UnexpectedAttribute: "unexpected-attribute",
	UnexpectedEndOfFile: "unexpected-end-of-file", UnexpectedToken: "unexpected-token",
	AttributeExpectString: "attribute-expect-string", AttributeInvalidParameter: "attribute-invalid-parameter",
	AttributeMissingParameter: "attribute-missing-parameter", AttributeMultipleUnique: "attribute-multiple-unique",
	AttributeParameterIdentifier: "attribute-parameter-identifier",

	ArrayLength: "array-length", ArrayLengthRequired: "array-length-required",
	AliasUnexpectedType: "alias-unexpected-type", AssignTemporary: "assign-temporary",
	AttributeUnexpectedExpression: "attribute-unexpected-expression", AttributeUnexpectedType: "attribute-unexpected-type",
	BinaryIncompatibleTypes: "binary-incompatible-types", BinaryUnsupported: "binary-unsupported",
	BranchOutsideOfFunction: "branch-outside-of-function", BuiltinUnexpectedType: "builtin-unexpected-type",
	BuiltinUnsupportedStage: "builtin-unsupported-stage", CastComponentMismatch: "cast-component-mismatch",
	CastIncompatibleBaseTypes: "cast-incompatible-base-types", CastIncompatibleTypes: "cast-incompatible-types",
	CastMatrixExpectedVectorOrScalar: "cast-matrix-expected-vector-or-scalar",
	CastMatrixVectorComponentMismatch: "cast-matrix-vector-component-mismatch",
	CircularImport: "circular-import", ConditionExpectedBool: "condition-expected-bool",
	ConstMissingExpression: "const-missing-expression", ConstantExpectedValue: "constant-expected-value",
	ConstantExpressionRequired: "constant-expression-required", DepthWriteAttribute: "depth-write-attribute",
	DiscardEarlyFragmentTests: "discard-early-fragment-tests", DiscardOutsideOfFunction: "discard-outside-of-function",
	EarlyFragmentTestsAttribute: "early-fragment-tests-attribute", EntryFunctionParameter: "entry-function-parameter",
	EntryPointAlreadyDefined: "entry-point-already-defined", ExpectedFunction: "expected-function",
	ExpectedIntrinsicFunction: "expected-intrinsic-function", ExpectedPartialType: "expected-partial-type",
	ExtAlreadyDeclared: "ext-already-declared", ExtBindingAlreadyUsed: "ext-binding-already-used",
	ExtMissingBindingIndex: "ext-missing-binding-index", ExtTypeNotAllowed: "ext-type-not-allowed",
	ForEachUnsupportedType: "for-each-unsupported-type", ForFromTypeExpectIntegerType: "for-from-type-expect-integer-type",
	ForStepUnmatchingType: "for-step-unmatching-type", ForToUnmatchingType: "for-to-unmatching-type",
	FunctionCallExpectedFunction: "function-call-expected-function",
	FunctionCallOutsideOfFunction: "function-call-outside-of-function",
	FunctionCallUnexpectedEntryFunction: "function-call-unexpected-entry-function",
	FunctionCallUnmatchingParameterCount: "function-call-unmatching-parameter-count",
	FunctionCallUnmatchingParameterType: "function-call-unmatching-parameter-type",
	FunctionDeclarationInsideFunction: "function-declaration-inside-function",
	IdentifierAlreadyUsed: "identifier-already-used",
	ImportIdentifierAlreadyPresent: "import-identifier-already-present",
	ImportMultipleWildcard: "import-multiple-wildcard", ImportWildcardRename: "import-wildcard-rename",
	IndexRequiresIntegerIndices: "index-requires-integer-indices",
	IndexStructRequiresInt32Indices: "index-struct-requires-int32-indices",
	IndexUnexpectedType: "index-unexpected-type", IntegralDivisionByZero: "integral-division-by-zero",
	IntegralModuloByZero: "integral-modulo-by-zero", IntrinsicExpectedFloat: "intrinsic-expected-float",
	IntrinsicExpectedParameterCount: "intrinsic-expected-parameter-count",
	IntrinsicExpectedType: "intrinsic-expected-type", IntrinsicUnexpectedBoolean: "intrinsic-unexpected-boolean",
	IntrinsicUnmatchingParameterType: "intrinsic-unmatching-parameter-type", InvalidCast: "invalid-cast",
	InvalidStageDependency: "invalid-stage-dependency", InvalidSwizzle: "invalid-swizzle",
	LoopControlOutsideOfLoop: "loop-control-outside-of-loop", ModuleCompilationFailed: "module-compilation-failed",
	ModuleFeatureMismatch: "module-feature-mismatch", ModuleNotFound: "module-not-found",
	NoModuleResolver: "no-module-resolver", OptionDeclarationInsideFunction: "option-declaration-inside-function",
	PartialTypeExpect: "partial-type-expect", PartialTypeTooFewParameters: "partial-type-too-few-parameters",
	PartialTypeTooManyParameters: "partial-type-too-many-parameters", SamplerUnexpectedType: "sampler-unexpected-type",
	StructDeclarationInsideFunction: "struct-declaration-inside-function", StructExpected: "struct-expected",
	StructFieldBuiltinLocation: "struct-field-builtin-location", StructFieldMultiple: "struct-field-multiple",
	StructLayoutInnerMismatch: "struct-layout-inner-mismatch", StructLayoutTypeNotAllowed: "struct-layout-type-not-allowed",
	SwizzleUnexpectedType: "swizzle-unexpected-type", UnaryUnsupported: "unary-unsupported",
	UnexpectedAccessedType: "unexpected-accessed-type", UnknownField: "unknown-field",
	UnknownIdentifier: "unknown-identifier", UnknownMethod: "unknown-method", UnmatchingTypes: "unmatching-types",
	VarDeclarationMissingTypeAndValue: "var-declaration-missing-type-and-value",
	VarDeclarationOutsideOfFunction: "var-declaration-outside-of-function",
	VarDeclarationTypeUnmatching: "var-declaration-type-unmatching",
	WhileUnrollNotSupported: "while-unroll-not-supported", BinaryNegativeShift: "binary-negative-shift",
	BinaryTooLargeShift: "binary-too-large-shift", LiteralOutOfRange: "literal-out-of-range",

	AlreadyUsedIndex: "already-used-index", EmptyIdentifier: "empty-identifier", Internal: "internal",
	InvalidConstantIndex: "invalid-constant-index", InvalidIndex: "invalid-index",
	InvalidMethodIndex: "invalid-method-index", MissingExpression: "missing-expression",
	MissingStatement: "missing-statement", NoIdentifier: "no-identifier", NoIndex: "no-index",
	UnexpectedIdentifier: "unexpected-identifier",
}

// Name returns the catalogue rule name for k, e.g. "binary-incompatible-types".
func (k Kind) Name() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// Code renders the category+numeric code shown to callers, e.g. "C0207".
func (k Kind) Code() string {
	return fmt.Sprintf("%c%04d", byte(k.CategoryOf()), int(k)%1000)
}

// IsASTIntegrity reports whether k indicates a programmer bug in the
// compiler itself rather than a user-facing compile error.
func (k Kind) IsASTIntegrity() bool { return k.CategoryOf() == CategoryAST }

// ----------------------------------------------------------------------------
// Position / Range / Diagnostic
// ----------------------------------------------------------------------------

// Position is a 1-based line/column with the originating 0-based byte offset.
type Position struct {
	Offset int
	Line   int
	Column int
}

// Range is a half-open source range.
type Range struct {
	Start Position
	End   Position
}

// RelatedInfo attaches a secondary location to a diagnostic, e.g. "previous
// declaration here".
type RelatedInfo struct {
	Range   Range
	Message string
}

// Diagnostic is a single reported message.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Message  string
	Range    Range
	Related  []RelatedInfo
}

// Error renders a compact single-line form, used by Error's Error() method.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%d:%d: %s[%s]: %s", d.Range.Start.Line, d.Range.Start.Column, d.Severity, d.Kind.Code(), d.Message)
}

// Error is the sentinel error type returned up the call stack to abort a
// pass: a returned error rather than a panic. Exactly one Diagnostic is
// carried; its Kind.IsASTIntegrity() distinguishes a fatal internal bug
// from a user-facing compile error.
type Error struct {
	Diagnostic
}

func (e *Error) Error() string { return e.Diagnostic.Error() }

// NewError constructs a sentinel compile error at a Range.
func NewError(kind Kind, rng Range, format string, args ...any) *Error {
	return &Error{Diagnostic{Severity: SeverityError, Kind: kind, Message: fmt.Sprintf(format, args...), Range: rng}}
}

// ----------------------------------------------------------------------------
// DiagnosticList
// ----------------------------------------------------------------------------

// DiagnosticList collects diagnostics produced while processing one source
// file, translating byte offsets to line/column via a LineIndex.
type DiagnosticList struct {
	diagnostics []Diagnostic
	lineIndex   *LineIndex
	source      string
	hasErrors   bool
}

// NewDiagnosticList creates a new diagnostic list for the given source.
func NewDiagnosticList(source string) *DiagnosticList {
	return &DiagnosticList{
		diagnostics: make([]Diagnostic, 0),
		lineIndex:   NewLineIndex(source),
		source:      source,
	}
}

// Add appends a diagnostic.
func (dl *DiagnosticList) Add(d Diagnostic) {
	dl.diagnostics = append(dl.diagnostics, d)
	if d.Severity == SeverityError {
		dl.hasErrors = true
	}
}

// AddError adds an error diagnostic at the given byte offset.
func (dl *DiagnosticList) AddError(offset int, kind Kind, message string) {
	dl.AddErrorRange(offset, offset+1, kind, message)
}

// AddErrorRange adds an error diagnostic for a byte range.
func (dl *DiagnosticList) AddErrorRange(start, end int, kind Kind, message string) {
	dl.Add(Diagnostic{Severity: SeverityError, Kind: kind, Message: message, Range: dl.MakeRange(start, end)})
}

// AddFromErr appends the Diagnostic carried by a sentinel *Error.
func (dl *DiagnosticList) AddFromErr(err *Error) {
	dl.Add(err.Diagnostic)
}

// MakePosition converts a byte offset to a Position.
func (dl *DiagnosticList) MakePosition(offset int) Position {
	line, col := dl.lineIndex.ByteOffsetToLineColumn(offset)
	return Position{Offset: offset, Line: line + 1, Column: col + 1}
}

// MakeRange converts byte offsets to a Range.
func (dl *DiagnosticList) MakeRange(start, end int) Range {
	return Range{Start: dl.MakePosition(start), End: dl.MakePosition(end)}
}

// HasErrors reports whether any error-level diagnostic was recorded.
func (dl *DiagnosticList) HasErrors() bool { return dl.hasErrors }

// Diagnostics returns all collected diagnostics.
func (dl *DiagnosticList) Diagnostics() []Diagnostic { return dl.diagnostics }

// Count returns the total number of diagnostics.
func (dl *DiagnosticList) Count() int { return len(dl.diagnostics) }

// Format formats all diagnostics as a human-readable string.
func (dl *DiagnosticList) Format() string {
	if len(dl.diagnostics) == 0 {
		return ""
	}
	var sb strings.Builder
	for i := range dl.diagnostics {
		sb.WriteString(dl.FormatDiagnostic(&dl.diagnostics[i]))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatDiagnostic formats a single diagnostic with source context.
func (dl *DiagnosticList) FormatDiagnostic(d *Diagnostic) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d:%d: %s[%s]: %s\n", d.Range.Start.Line, d.Range.Start.Column, d.Severity, d.Kind.Code(), d.Message))

	if sourceLine := dl.getSourceLine(d.Range.Start.Line); sourceLine != "" {
		sb.WriteString(fmt.Sprintf("    %s\n", sourceLine))
		caret := strings.Repeat(" ", d.Range.Start.Column-1+4) + "^"
		if d.Range.End.Line == d.Range.Start.Line && d.Range.End.Column > d.Range.Start.Column {
			caret += strings.Repeat("~", d.Range.End.Column-d.Range.Start.Column-1)
		}
		sb.WriteString(caret)
		sb.WriteByte('\n')
	}

	for _, rel := range d.Related {
		sb.WriteString(fmt.Sprintf("  %d:%d: note: %s\n", rel.Range.Start.Line, rel.Range.Start.Column, rel.Message))
	}
	return sb.String()
}

func (dl *DiagnosticList) getSourceLine(line int) string {
	if line < 1 {
		return ""
	}
	lines := strings.Split(dl.source, "\n")
	if line > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[line-1], "\r")
}

// Clear removes all diagnostics.
func (dl *DiagnosticList) Clear() {
	dl.diagnostics = dl.diagnostics[:0]
	dl.hasErrors = false
}

// ----------------------------------------------------------------------------
// Filter — the "diagnostic(off, rule)" directive support
// ----------------------------------------------------------------------------

const severityDisabled Severity = 255

// Filter controls which diagnostic rules are reported, overridden per rule
// name by a `diagnostic(off, rule)` directive in source.
type Filter struct {
	Rules map[string]Severity
}

// NewFilter creates a filter with no overrides.
func NewFilter() *Filter { return &Filter{Rules: make(map[string]Severity)} }

// SetRule overrides the severity for a rule by name.
func (f *Filter) SetRule(rule string, severity Severity) { f.Rules[rule] = severity }

// DisableRule silences a rule entirely.
func (f *Filter) DisableRule(rule string) { f.Rules[rule] = severityDisabled }

// IsDisabled reports whether rule has been silenced.
func (f *Filter) IsDisabled(rule string) bool {
	sev, ok := f.Rules[rule]
	return ok && sev == severityDisabled
}

// GetSeverity returns the effective severity for rule, falling back to
// defaultSev if unset.
func (f *Filter) GetSeverity(rule string, defaultSev Severity) Severity {
	if sev, ok := f.Rules[rule]; ok && sev != severityDisabled {
		return sev
	}
	return defaultSev
}
