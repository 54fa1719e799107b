// Package transform implements the shared scoped-walker framework
// and the symbol-table context threaded through every pass
// that rewrites an ast.Module.
package transform

import (
	"fmt"

	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/constant"
	"github.com/nzsl-go/nzsl/internal/ref"
	"github.com/nzsl-go/nzsl/internal/types"
)

// Category tags which sub-table a Symbol was registered in.
type Category uint8

const (
	CategoryAlias Category = iota
	CategoryConstant
	CategoryExternalBlock
	CategoryFunction
	CategoryIntrinsic
	CategoryModule
	CategoryStruct
	CategoryType
	CategoryVariable
)

func (c Category) String() string {
	switch c {
	case CategoryAlias:
		return "alias"
	case CategoryConstant:
		return "constant"
	case CategoryExternalBlock:
		return "external block"
	case CategoryFunction:
		return "function"
	case CategoryIntrinsic:
		return "intrinsic"
	case CategoryModule:
		return "module"
	case CategoryStruct:
		return "struct"
	case CategoryType:
		return "type"
	case CategoryVariable:
		return "variable"
	default:
		return "unknown"
	}
}

// Symbol is what a name resolves to in a Scope: which sub-table, and the
// stable index within it.
type Symbol struct {
	Category Category
	Index    uint64
}

// ----------------------------------------------------------------------------
// Payloads
// ----------------------------------------------------------------------------

// AliasData is what `alias Name = Target;` registers.
type AliasData struct {
	Name       string
	TargetType types.Type
}

// ConstantData is what a `const`/`option` declaration registers. Value is
// nil until the constant-propagation pass fills it in.
type ConstantData struct {
	Name        string
	Value       *constant.Value
	Type        types.Type
	ModuleIndex ref.Module
}

// FunctionFlags records boolean properties of a function relevant to later
// passes (entry-point-ness is derived from the AST node itself, not stored
// here, since DeclareFunctionStmt.IsEntryPoint() is authoritative).
type FunctionFlags struct {
	IsExported bool
}

// FunctionData is what `fn Name(...) { ... }` registers.
type FunctionData struct {
	Name      string
	Signature FunctionSignature
	Flags     FunctionFlags
	Node      *ast.DeclareFunctionStmt
}

// FunctionSignature is a function's checked parameter/return shape.
type FunctionSignature struct {
	ParameterTypes []types.Type
	ReturnType     types.Type
}

// StructData is what `struct Name { ... }` registers.
type StructData struct {
	Description *ast.StructDescription
	ModuleIndex ref.Module
}

// VariableData is what a local `let`/`var`, function parameter, or `for`
// loop counter registers.
type VariableData struct {
	Name    string
	Type    types.Type
	IsConst bool
}

// ExternalBlockData is what `external { ... }` registers: the block's named
// members, each itself a variable in the variable sub-table.
type ExternalBlockData struct {
	Tag     string
	Members map[string]ref.Variable
}

// PartialType describes an intrinsic type constructor awaiting its type
// parameters (e.g. `vec3`, `array`, `mat4x4`, `sampler2D`) before it names a
// concrete type.
type PartialType struct {
	Name         string
	MinArgs      int
	MaxArgs      int
	ArgsRequired bool
}

// TypeData is what a `Type(typeId)` reference names: either a concrete type
// alias registration, or (mutually exclusive) a partial type constructor.
type TypeData struct {
	Name    string
	Concrete types.Type
	Partial *PartialType
}

// IntrinsicData is what one overload of an intrinsic function registers.
type IntrinsicData struct {
	Kind ast.IntrinsicKind
}

// ModuleData tracks an imported submodule.
type ModuleData struct {
	Name string
	Node *ast.Module
}

// ----------------------------------------------------------------------------
// Scope
// ----------------------------------------------------------------------------

// Scope is one lexical region sharing a symbol namespace: function body,
// block, loop body, or Scoped statement. Scopes nest via Parent; name
// resolution walks outward, but duplicate-declaration checks only ever look
// at the current scope's own symbols, since a nested scope may shadow an
// outer declaration.
type Scope struct {
	Parent   *Scope
	symbols  map[string]Symbol
	reserved map[string]bool
}

func newScope(parent *Scope) *Scope {
	return &Scope{Parent: parent, symbols: make(map[string]Symbol)}
}

// Lookup resolves name in this scope or any ancestor.
func (s *Scope) Lookup(name string) (Symbol, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		if sym, ok := sc.symbols[name]; ok {
			return sym, true
		}
	}
	return Symbol{}, false
}

// declare binds name to sym in this scope, failing if name is already bound
// here (not in an ancestor) and is not reserved.
func (s *Scope) declare(name string, sym Symbol, reserved bool) error {
	if _, exists := s.symbols[name]; exists && !s.reserved[name] {
		return fmt.Errorf("identifier %q already used in this scope", name)
	}
	s.symbols[name] = sym
	if reserved {
		if s.reserved == nil {
			s.reserved = make(map[string]bool)
		}
		s.reserved[name] = true
	}
	return nil
}

// ----------------------------------------------------------------------------
// Context
// ----------------------------------------------------------------------------

// Context is the single object threaded through every pass invoked on a
// module: the symbol sub-tables, the current scope chain, and the
// cross-pass configuration flags.
type Context struct {
	scope *Scope

	aliases        map[ref.Alias]AliasData
	constants      map[ref.Constant]ConstantData
	externalBlocks map[ref.ExternalBlock]ExternalBlockData
	functions      map[ref.Function]FunctionData
	intrinsics     map[ref.Intrinsic]IntrinsicData
	modules        map[ref.Module]ModuleData
	structs        map[ref.Struct]StructData
	types          map[ref.Type]TypeData
	variables      map[ref.Variable]VariableData

	nextAlias        ref.Alias
	nextConstant     ref.Constant
	nextExternal     ref.ExternalBlock
	nextFunction     ref.Function
	nextIntrinsic    ref.Intrinsic
	nextModule       ref.Module
	nextStruct       ref.Struct
	nextType         ref.Type
	nextVariable     ref.Variable

	// PartialCompilation allows a module fragment (e.g. one under test) to
	// resolve without every import being present.
	PartialCompilation bool
	// AllowUnknownIdentifiers downgrades an unresolved identifier from a
	// hard error to a deferred placeholder, used by tooling that only needs
	// a best-effort partial resolution (e.g. editor completion).
	AllowUnknownIdentifiers bool
	// PendingFunctions lists functions whose bodies must be revisited after
	// every global declaration has been registered, since a function may
	// reference a sibling declared later in the module.
	PendingFunctions []ref.Function
}

// NewContext creates an empty context with one (root) scope pushed.
func NewContext() *Context {
	c := &Context{
		aliases:        make(map[ref.Alias]AliasData),
		constants:      make(map[ref.Constant]ConstantData),
		externalBlocks: make(map[ref.ExternalBlock]ExternalBlockData),
		functions:      make(map[ref.Function]FunctionData),
		intrinsics:     make(map[ref.Intrinsic]IntrinsicData),
		modules:        make(map[ref.Module]ModuleData),
		structs:        make(map[ref.Struct]StructData),
		types:          make(map[ref.Type]TypeData),
		variables:      make(map[ref.Variable]VariableData),
	}
	c.scope = newScope(nil)
	return c
}

// PushScope opens a new nested scope (function body, block, loop body,
// Scoped statement).
func (c *Context) PushScope() { c.scope = newScope(c.scope) }

// PopScope closes the current scope, returning to its parent. Popping the
// root scope is a programmer error.
func (c *Context) PopScope() {
	if c.scope.Parent == nil {
		panic("transform: PopScope called with no scope pushed")
	}
	c.scope = c.scope.Parent
}

// CurrentScope exposes the live scope, e.g. so a pass can snapshot it.
func (c *Context) CurrentScope() *Scope { return c.scope }

// Lookup resolves name against the current scope chain.
func (c *Context) Lookup(name string) (Symbol, bool) { return c.scope.Lookup(name) }

// declareReserved marks name as exempt from the duplicate-declaration check
// in the current scope — used when registering built-ins, which may
// legitimately share a name with an overload in the same category.
func (c *Context) declareReserved(name string, sym Symbol) error {
	return c.scope.declare(name, sym, true)
}

// ----------------------------------------------------------------------------
// Per-category registration. Each Register* either allocates the next
// index in its counter, or (the *At variant) uses a caller-supplied index
// so that rewriting a module whose indices must survive a transform can
// preregister them before the pass runs.
// ----------------------------------------------------------------------------

func (c *Context) RegisterAlias(name string, data AliasData) (ref.Alias, error) {
	idx := c.nextAlias
	c.nextAlias++
	return idx, c.bindAlias(name, idx, data)
}

func (c *Context) RegisterAliasAt(idx ref.Alias, name string, data AliasData) error {
	if idx >= c.nextAlias {
		c.nextAlias = idx + 1
	}
	return c.bindAlias(name, idx, data)
}

func (c *Context) bindAlias(name string, idx ref.Alias, data AliasData) error {
	if err := c.scope.declare(name, Symbol{Category: CategoryAlias, Index: uint64(idx)}, false); err != nil {
		return err
	}
	c.aliases[idx] = data
	return nil
}

func (c *Context) Alias(idx ref.Alias) (AliasData, bool) {
	d, ok := c.aliases[idx]
	return d, ok
}

func (c *Context) RegisterConstant(name string, data ConstantData) (ref.Constant, error) {
	idx := c.nextConstant
	c.nextConstant++
	return idx, c.bindConstant(name, idx, data)
}

func (c *Context) RegisterConstantAt(idx ref.Constant, name string, data ConstantData) error {
	if idx >= c.nextConstant {
		c.nextConstant = idx + 1
	}
	return c.bindConstant(name, idx, data)
}

func (c *Context) bindConstant(name string, idx ref.Constant, data ConstantData) error {
	if err := c.scope.declare(name, Symbol{Category: CategoryConstant, Index: uint64(idx)}, false); err != nil {
		return err
	}
	c.constants[idx] = data
	return nil
}

func (c *Context) Constant(idx ref.Constant) (ConstantData, bool) {
	d, ok := c.constants[idx]
	return d, ok
}

// SetConstantValue fills in a constant's folded value, e.g. once the
// constant-propagation pass has evaluated its initializer.
func (c *Context) SetConstantValue(idx ref.Constant, v constant.Value) {
	d := c.constants[idx]
	d.Value = &v
	c.constants[idx] = d
}

// SetConstantType overwrites a constant's recorded type, e.g. once the
// literal-typing pass has concretized an initializer that carried no
// explicit type annotation.
func (c *Context) SetConstantType(idx ref.Constant, t types.Type) {
	d := c.constants[idx]
	d.Type = t
	c.constants[idx] = d
}

func (c *Context) RegisterExternalBlock(tag string, data ExternalBlockData) ref.ExternalBlock {
	idx := c.nextExternal
	c.nextExternal++
	c.externalBlocks[idx] = data
	return idx
}

func (c *Context) ExternalBlock(idx ref.ExternalBlock) (ExternalBlockData, bool) {
	d, ok := c.externalBlocks[idx]
	return d, ok
}

func (c *Context) RegisterFunction(name string, data FunctionData) (ref.Function, error) {
	idx := c.nextFunction
	c.nextFunction++
	return idx, c.bindFunction(name, idx, data)
}

func (c *Context) RegisterFunctionAt(idx ref.Function, name string, data FunctionData) error {
	if idx >= c.nextFunction {
		c.nextFunction = idx + 1
	}
	return c.bindFunction(name, idx, data)
}

func (c *Context) bindFunction(name string, idx ref.Function, data FunctionData) error {
	if err := c.scope.declare(name, Symbol{Category: CategoryFunction, Index: uint64(idx)}, false); err != nil {
		return err
	}
	c.functions[idx] = data
	return nil
}

func (c *Context) Function(idx ref.Function) (FunctionData, bool) {
	d, ok := c.functions[idx]
	return d, ok
}

// RegisterIntrinsic registers one overload under name; unlike the other
// categories, intrinsics are reserved by default since several overloads
// legitimately share a name (e.g. `min(f32,f32)` and `min(i32,i32)`).
func (c *Context) RegisterIntrinsic(name string, data IntrinsicData) ref.Intrinsic {
	idx := c.nextIntrinsic
	c.nextIntrinsic++
	c.intrinsics[idx] = data
	_ = c.declareReserved(name, Symbol{Category: CategoryIntrinsic, Index: uint64(idx)})
	return idx
}

func (c *Context) Intrinsic(idx ref.Intrinsic) (IntrinsicData, bool) {
	d, ok := c.intrinsics[idx]
	return d, ok
}

func (c *Context) RegisterModule(name string, data ModuleData) ref.Module {
	idx := c.nextModule
	c.nextModule++
	c.modules[idx] = data
	_ = c.scope.declare(name, Symbol{Category: CategoryModule, Index: uint64(idx)}, false)
	return idx
}

func (c *Context) Module(idx ref.Module) (ModuleData, bool) {
	d, ok := c.modules[idx]
	return d, ok
}

func (c *Context) RegisterStruct(name string, data StructData) (ref.Struct, error) {
	idx := c.nextStruct
	c.nextStruct++
	return idx, c.bindStruct(name, idx, data)
}

func (c *Context) RegisterStructAt(idx ref.Struct, name string, data StructData) error {
	if idx >= c.nextStruct {
		c.nextStruct = idx + 1
	}
	return c.bindStruct(name, idx, data)
}

func (c *Context) bindStruct(name string, idx ref.Struct, data StructData) error {
	if err := c.scope.declare(name, Symbol{Category: CategoryStruct, Index: uint64(idx)}, false); err != nil {
		return err
	}
	c.structs[idx] = data
	return nil
}

func (c *Context) Struct(idx ref.Struct) (StructData, bool) {
	d, ok := c.structs[idx]
	return d, ok
}

// StructDescription adapts Struct for use as a internal/layout.StructLookup.
func (c *Context) StructDescription(idx ref.Struct) *ast.StructDescription {
	d, ok := c.structs[idx]
	if !ok {
		return nil
	}
	return d.Description
}

func (c *Context) RegisterType(name string, data TypeData) (ref.Type, error) {
	idx := c.nextType
	c.nextType++
	return idx, c.bindType(name, idx, data)
}

func (c *Context) RegisterTypeAt(idx ref.Type, name string, data TypeData) error {
	if idx >= c.nextType {
		c.nextType = idx + 1
	}
	return c.bindType(name, idx, data)
}

func (c *Context) bindType(name string, idx ref.Type, data TypeData) error {
	if err := c.scope.declare(name, Symbol{Category: CategoryType, Index: uint64(idx)}, false); err != nil {
		return err
	}
	c.types[idx] = data
	return nil
}

func (c *Context) Type(idx ref.Type) (TypeData, bool) {
	d, ok := c.types[idx]
	return d, ok
}

func (c *Context) RegisterVariable(name string, data VariableData) (ref.Variable, error) {
	idx := c.nextVariable
	c.nextVariable++
	return idx, c.bindVariable(name, idx, data)
}

func (c *Context) RegisterVariableAt(idx ref.Variable, name string, data VariableData) error {
	if idx >= c.nextVariable {
		c.nextVariable = idx + 1
	}
	return c.bindVariable(name, idx, data)
}

func (c *Context) bindVariable(name string, idx ref.Variable, data VariableData) error {
	if err := c.scope.declare(name, Symbol{Category: CategoryVariable, Index: uint64(idx)}, false); err != nil {
		return err
	}
	c.variables[idx] = data
	return nil
}

func (c *Context) Variable(idx ref.Variable) (VariableData, bool) {
	d, ok := c.variables[idx]
	return d, ok
}

// SetVariableType overwrites a variable's recorded type, e.g. once the
// literal-typing pass has concretized an initializer that carried no
// explicit type annotation.
func (c *Context) SetVariableType(idx ref.Variable, t types.Type) {
	d := c.variables[idx]
	d.Type = t
	c.variables[idx] = d
}
