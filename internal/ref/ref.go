// Package ref defines the stable index types used as cross-references
// throughout the compiler. Every identifier category (alias, constant,
// external block, function, intrinsic, module, struct, type, variable) gets
// its own index type so a reference can never be confused with one from a
// different table, while still being a plain integer underneath — no
// pointers, no shared ownership, safe to copy and to persist across a
// serialize/deserialize round trip.
package ref

// Index is the common underlying representation for every category below.
type Index uint64

// Invalid marks an index that has not been assigned.
const Invalid Index = ^Index(0)

// Alias indexes the alias table.
type Alias Index

// InvalidAlias marks an unset alias reference. It is not the zero value:
// index 0 is a valid reference.
const InvalidAlias Alias = Alias(Invalid)

func (a Alias) IsValid() bool { return a != InvalidAlias }

// Constant indexes the constant (and option) table.
type Constant Index

const InvalidConstant Constant = Constant(Invalid)

func (c Constant) IsValid() bool { return c != InvalidConstant }

// ExternalBlock indexes the external-block table.
type ExternalBlock Index

const InvalidExternalBlock ExternalBlock = ExternalBlock(Invalid)

func (e ExternalBlock) IsValid() bool { return e != InvalidExternalBlock }

// Function indexes the function table.
type Function Index

const InvalidFunction Function = Function(Invalid)

func (f Function) IsValid() bool { return f != InvalidFunction }

// Intrinsic indexes the intrinsic-function table.
type Intrinsic Index

const InvalidIntrinsic Intrinsic = Intrinsic(Invalid)

func (i Intrinsic) IsValid() bool { return i != InvalidIntrinsic }

// Module indexes the imported-module table.
type Module Index

const InvalidModule Module = Module(Invalid)

func (m Module) IsValid() bool { return m != InvalidModule }

// Struct indexes the struct table.
type Struct Index

const InvalidStruct Struct = Struct(Invalid)

func (s Struct) IsValid() bool { return s != InvalidStruct }

// Type indexes the named-type (alias/partial-type) table.
type Type Index

const InvalidType Type = Type(Invalid)

func (t Type) IsValid() bool { return t != InvalidType }

// Variable indexes the variable table.
type Variable Index

const InvalidVariable Variable = Variable(Invalid)

func (v Variable) IsValid() bool { return v != InvalidVariable }
