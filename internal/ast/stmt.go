package ast

import (
	"github.com/nzsl-go/nzsl/internal/ref"
	"github.com/nzsl-go/nzsl/internal/types"
)

// BranchStmt is an if/else-if/.../else chain, or a `const if` chain when
// IsConst is set: a const branch is resolved and pruned at compile
// time, not merely marked dead.
type BranchStmt struct {
	stmtBase
	CondStatements []ConditionalBranch
	ElseStatement  Statement
	IsConst        bool
}

// ConditionalBranch is one `cond { stmt }` arm of a BranchStmt.
type ConditionalBranch struct {
	Condition Expression
	Statement Statement
}

func (*BranchStmt) isStatement() {}

// BreakStmt is a loop `break`.
type BreakStmt struct{ stmtBase }

func (*BreakStmt) isStatement() {}

// ConditionalStmt is a `const if cond { stmt }` single-armed compile-time
// conditional (distinct from BranchStmt's multi-arm form).
type ConditionalStmt struct {
	stmtBase
	Cond      Expression
	Statement Statement
}

func (*ConditionalStmt) isStatement() {}

// ContinueStmt is a loop `continue`.
type ContinueStmt struct{ stmtBase }

func (*ContinueStmt) isStatement() {}

// DeclareAliasStmt declares a name as an alias of Expression (resolved to a
// function/struct/alias/type reference by the resolver).
type DeclareAliasStmt struct {
	stmtBase
	AliasRef   ref.Alias // Invalid until registered
	Name       string
	Expression Expression
}

func (*DeclareAliasStmt) isStatement() {}

// DeclareConstStmt declares a named constant (or, pre-resolution, is also
// used for module-level options collapsed into the constant category).
type DeclareConstStmt struct {
	stmtBase
	ConstantRef ref.Constant
	Name        string
	Expression  Expression
	Type        ExpressionValue[types.Type]
	IsExported  ExpressionValue[bool]
}

func (*DeclareConstStmt) isStatement() {}

// ExternalVar is one member of a DeclareExternalStmt block.
type ExternalVar struct {
	VariableRef ref.Variable
	Name        string
	Tag         string
	Binding     ExpressionValue[uint32]
	Set         ExpressionValue[uint32]
	Type        ExpressionValue[types.Type]
	Loc         Loc
}

// DeclareExternalStmt declares a block of binding-visible externals
// (uniform/storage/push_constant/sampler/texture/primitive).
type DeclareExternalStmt struct {
	stmtBase
	Tag          string
	ExternalVars []ExternalVar
	Set          ExpressionValue[uint32]
	AutoBinding  ExpressionValue[bool]
}

func (*DeclareExternalStmt) isStatement() {}

// FunctionParam is one parameter of a DeclareFunctionStmt.
type FunctionParam struct {
	VariableRef ref.Variable
	Name        string
	Type        ExpressionValue[types.Type]
	Loc         Loc
}

// DeclareFunctionStmt declares a function, optionally an entry point.
type DeclareFunctionStmt struct {
	stmtBase
	FuncRef            ref.Function
	Name               string
	Parameters         []FunctionParam
	Statements         []Statement
	DepthWrite         ExpressionValue[DepthWriteMode]
	ReturnType         ExpressionValue[types.Type]
	EntryStage         ExpressionValue[ShaderStage]
	WorkgroupSize      ExpressionValue[[3]uint32]
	EarlyFragmentTests ExpressionValue[bool]
	IsExported         ExpressionValue[bool]
}

func (*DeclareFunctionStmt) isStatement() {}

// IsEntryPoint reports whether this function is attributed as a pipeline
// entry point.
func (d *DeclareFunctionStmt) IsEntryPoint() bool {
	return d.EntryStage.IsResolved() && d.EntryStage.GetResultingValue() != StageNone
}

// DeclareOptionStmt declares a module compile-time option.
type DeclareOptionStmt struct {
	stmtBase
	ConstantRef  ref.Constant
	Name         string
	DefaultValue Expression
	Type         ExpressionValue[types.Type]
}

func (*DeclareOptionStmt) isStatement() {}

// StructMember is one field of a StructDescription.
type StructMember struct {
	Name     string
	Type     ExpressionValue[types.Type]
	Builtin  ExpressionValue[BuiltinEntry]
	Location ExpressionValue[uint32]
	Cond     ExpressionValue[bool]
	Loc      Loc
}

// StructDescription is a struct's full shape: name, layout and members.
type StructDescription struct {
	Name    string
	Layout  ExpressionValue[MemoryLayout]
	Members []StructMember
}

// DeclareStructStmt declares a struct type.
type DeclareStructStmt struct {
	stmtBase
	StructRef   ref.Struct
	IsExported  ExpressionValue[bool]
	Description StructDescription
}

func (*DeclareStructStmt) isStatement() {}

// DeclareVariableStmt declares a local `let`/`var` binding.
type DeclareVariableStmt struct {
	stmtBase
	VariableRef       ref.Variable
	Name              string
	InitialExpression Expression
	Type              ExpressionValue[types.Type]
}

func (*DeclareVariableStmt) isStatement() {}

// DiscardStmt aborts the current fragment invocation.
type DiscardStmt struct{ stmtBase }

func (*DiscardStmt) isStatement() {}

// ExpressionStmt evaluates Expression for its side effects.
type ExpressionStmt struct {
	stmtBase
	Expression Expression
}

func (*ExpressionStmt) isStatement() {}

// ForStmt is a `for v in from -> to [: step] { body }` numeric loop.
type ForStmt struct {
	stmtBase
	VariableRef ref.Variable
	VarName     string
	FromExpr    Expression
	ToExpr      Expression
	StepExpr    Expression // nil if the implicit step (1) is used
	Unroll      ExpressionValue[LoopUnroll]
	Statement   Statement
}

func (*ForStmt) isStatement() {}

// ForEachStmt is a `for v in container { body }` loop.
type ForEachStmt struct {
	stmtBase
	VariableRef ref.Variable
	VarName     string
	Expression  Expression
	Unroll      ExpressionValue[LoopUnroll]
	Statement   Statement
}

func (*ForEachStmt) isStatement() {}

// ImportIdentifier is one `name [as renamed]` entry of an ImportStmt.
type ImportIdentifier struct {
	Identifier        string
	RenamedIdentifier string
	IdentifierLoc     Loc
	RenamedIdentifierLoc Loc
}

// ImportStmt is `import M;`, `import X, Y from M;` or `import * from M;`
// (the wildcard case is represented by a single Identifier{Identifier:"*"}).
type ImportStmt struct {
	stmtBase
	ModuleName  string
	Identifiers []ImportIdentifier
}

func (*ImportStmt) isStatement() {}

// Wildcard reports whether this import pulls in every exported identifier.
func (i *ImportStmt) Wildcard() bool {
	for _, id := range i.Identifiers {
		if id.Identifier == "*" {
			return true
		}
	}
	return false
}

// MultiStmt is a sequence of statements, e.g. a function or block body.
type MultiStmt struct {
	stmtBase
	Statements []Statement
}

func (*MultiStmt) isStatement() {}

// NoOpStmt is a statement that does nothing; the pruned remainder of a
// removed branch becomes one of these rather than disappearing, so source
// positions remain stable for diagnostics that reference "the statement at
// this location".
type NoOpStmt struct{ stmtBase }

func (*NoOpStmt) isStatement() {}

// ReturnStmt returns from the enclosing function, optionally with a value.
type ReturnStmt struct {
	stmtBase
	ReturnExpr Expression // nil for a bare `return;`
}

func (*ReturnStmt) isStatement() {}

// ScopedStmt introduces a new lexical scope around Statement without being
// a loop or conditional, e.g. a bare `{ ... }` block.
type ScopedStmt struct {
	stmtBase
	Statement Statement
}

func (*ScopedStmt) isStatement() {}

// WhileStmt is a `while (condition) { body }` loop.
type WhileStmt struct {
	stmtBase
	Condition Expression
	Unroll    ExpressionValue[LoopUnroll]
	Body      Statement
}

func (*WhileStmt) isStatement() {}
