package ast

// AssignOp enumerates the compound-assignment operators of an Assign
// expression.
type AssignOp uint8

const (
	AssignSimple AssignOp = iota
	AssignCompoundAdd
	AssignCompoundSubtract
	AssignCompoundMultiply
	AssignCompoundDivide
	AssignCompoundModulo
	AssignCompoundLogicalAnd
	AssignCompoundLogicalOr
	AssignCompoundBitwiseAnd
	AssignCompoundBitwiseOr
	AssignCompoundBitwiseXor
	AssignCompoundShiftLeft
	AssignCompoundShiftRight
)

func (a AssignOp) String() string {
	switch a {
	case AssignSimple:
		return "="
	case AssignCompoundAdd:
		return "+="
	case AssignCompoundSubtract:
		return "-="
	case AssignCompoundMultiply:
		return "*="
	case AssignCompoundDivide:
		return "/="
	case AssignCompoundModulo:
		return "%="
	case AssignCompoundLogicalAnd:
		return "&&="
	case AssignCompoundLogicalOr:
		return "||="
	case AssignCompoundBitwiseAnd:
		return "&="
	case AssignCompoundBitwiseOr:
		return "|="
	case AssignCompoundBitwiseXor:
		return "^="
	case AssignCompoundShiftLeft:
		return "<<="
	case AssignCompoundShiftRight:
		return ">>="
	default:
		return "?="
	}
}

// IsCompound reports whether this is anything but plain "=".
func (a AssignOp) IsCompound() bool { return a != AssignSimple }

// BinaryOp enumerates the binary operators, covering arithmetic, comparison,
// bitwise, logical and shift operations.
type BinaryOp uint8

const (
	BinaryAdd BinaryOp = iota
	BinarySubtract
	BinaryMultiply
	BinaryDivide
	BinaryModulo
	BinaryCompEq
	BinaryCompNe
	BinaryCompLt
	BinaryCompLe
	BinaryCompGt
	BinaryCompGe
	BinaryLogicalAnd
	BinaryLogicalOr
	BinaryBitwiseAnd
	BinaryBitwiseOr
	BinaryBitwiseXor
	BinaryShiftLeft
	BinaryShiftRight
)

func (b BinaryOp) String() string {
	switch b {
	case BinaryAdd:
		return "+"
	case BinarySubtract:
		return "-"
	case BinaryMultiply:
		return "*"
	case BinaryDivide:
		return "/"
	case BinaryModulo:
		return "%"
	case BinaryCompEq:
		return "=="
	case BinaryCompNe:
		return "!="
	case BinaryCompLt:
		return "<"
	case BinaryCompLe:
		return "<="
	case BinaryCompGt:
		return ">"
	case BinaryCompGe:
		return ">="
	case BinaryLogicalAnd:
		return "&&"
	case BinaryLogicalOr:
		return "||"
	case BinaryBitwiseAnd:
		return "&"
	case BinaryBitwiseOr:
		return "|"
	case BinaryBitwiseXor:
		return "^"
	case BinaryShiftLeft:
		return "<<"
	case BinaryShiftRight:
		return ">>"
	default:
		return "?"
	}
}

// IsComparison reports whether b yields a bool (or vector-of-bool) result.
// Kept as a distinct predicate rather than folded into the arithmetic table:
// comparison dispatch lives in its own table in internal/constprop.
func (b BinaryOp) IsComparison() bool {
	switch b {
	case BinaryCompEq, BinaryCompNe, BinaryCompLt, BinaryCompLe, BinaryCompGt, BinaryCompGe:
		return true
	default:
		return false
	}
}

// UnaryOp enumerates the unary prefix operators.
type UnaryOp uint8

const (
	UnaryLogicalNot UnaryOp = iota
	UnaryMinus
	UnaryPlus
	UnaryBitwiseNot
)

func (u UnaryOp) String() string {
	switch u {
	case UnaryLogicalNot:
		return "!"
	case UnaryMinus:
		return "-"
	case UnaryPlus:
		return "+"
	case UnaryBitwiseNot:
		return "~"
	default:
		return "?"
	}
}

// AttributeType enumerates the attribute kinds a declaration may carry,
// numbered to match the stable tag a codec writer emits.
type AttributeType uint8

const (
	AttributeBinding AttributeType = iota
	AttributeBuiltin
	AttributeCond
	AttributeDepthWrite
	AttributeEarlyFragmentTests
	AttributeEntry
	AttributeExport
	AttributeLayout
	AttributeLocation
	AttributeLangVersion
	AttributeSet
	AttributeUnroll
	AttributeAuthor
	AttributeDescription
	AttributeLicense
	AttributeFeature
	AttributeTag
	AttributeAutoBinding
	AttributeWorkgroup
)

func (a AttributeType) String() string {
	switch a {
	case AttributeBinding:
		return "binding"
	case AttributeBuiltin:
		return "builtin"
	case AttributeCond:
		return "cond"
	case AttributeDepthWrite:
		return "depth_write"
	case AttributeEarlyFragmentTests:
		return "early_fragments_tests"
	case AttributeEntry:
		return "entry"
	case AttributeExport:
		return "export"
	case AttributeLayout:
		return "layout"
	case AttributeLocation:
		return "location"
	case AttributeLangVersion:
		return "nzsl_version"
	case AttributeSet:
		return "set"
	case AttributeUnroll:
		return "unroll"
	case AttributeAuthor:
		return "author"
	case AttributeDescription:
		return "desc"
	case AttributeLicense:
		return "license"
	case AttributeFeature:
		return "feature"
	case AttributeTag:
		return "tag"
	case AttributeAutoBinding:
		return "auto_binding"
	case AttributeWorkgroup:
		return "workgroup"
	default:
		return "<unknown attribute>"
	}
}

// ShaderStage identifies an entry-point pipeline stage.
type ShaderStage uint8

const (
	StageNone ShaderStage = iota
	StageVertex
	StageFragment
	StageCompute
)

func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "vert"
	case StageFragment:
		return "frag"
	case StageCompute:
		return "comp"
	default:
		return "none"
	}
}

// DepthWriteMode is the argument of a [depth_write(mode)] attribute.
type DepthWriteMode uint8

const (
	DepthWriteGreater DepthWriteMode = iota
	DepthWriteLess
	DepthWriteReplace
	DepthWriteUnchanged
)

func (d DepthWriteMode) String() string {
	switch d {
	case DepthWriteGreater:
		return "greater"
	case DepthWriteLess:
		return "less"
	case DepthWriteReplace:
		return "replace"
	case DepthWriteUnchanged:
		return "unchanged"
	default:
		return "unchanged"
	}
}

// LoopUnroll is the argument of an [unroll(mode)] attribute.
type LoopUnroll uint8

const (
	UnrollHint LoopUnroll = iota
	UnrollAlways
	UnrollNever
)

func (u LoopUnroll) String() string {
	switch u {
	case UnrollAlways:
		return "always"
	case UnrollNever:
		return "never"
	default:
		return "hint"
	}
}

// ModuleFeature is an opt-in language feature gated by a module-level
// [feature(name)] attribute.
type ModuleFeature uint8

const (
	FeaturePrimitiveExternals ModuleFeature = iota
	FeatureFloat64
	FeatureTexture1D
)

func (f ModuleFeature) String() string {
	switch f {
	case FeaturePrimitiveExternals:
		return "primitive_externals"
	case FeatureFloat64:
		return "float64"
	case FeatureTexture1D:
		return "texture1D"
	default:
		return "<unknown feature>"
	}
}

// MemoryLayout names a struct's intended host layout convention.
type MemoryLayout uint8

const (
	LayoutPacked MemoryLayout = iota
	LayoutStd140
	LayoutStd430
)

func (l MemoryLayout) String() string {
	switch l {
	case LayoutStd140:
		return "std140"
	case LayoutStd430:
		return "std430"
	default:
		return "packed"
	}
}

// ExpressionCategory distinguishes l-values (assignable storage) from
// r-values.
type ExpressionCategory uint8

const (
	RValue ExpressionCategory = iota
	LValue
)

// IntrinsicKind enumerates the built-in intrinsic functions.
type IntrinsicKind uint8

const (
	IntrinsicCrossProduct IntrinsicKind = iota
	IntrinsicDotProduct
	IntrinsicTextureRead
	IntrinsicLength
	IntrinsicMax
	IntrinsicMin
	IntrinsicPow
	IntrinsicExp
	IntrinsicReflect
	IntrinsicNormalize
	IntrinsicArraySize
	IntrinsicMatrixInverse
	IntrinsicMatrixTranspose
	IntrinsicSin
	IntrinsicSinh
	IntrinsicCos
	IntrinsicCosh
	IntrinsicTan
	IntrinsicTanh
	IntrinsicArcSin
	IntrinsicArcSinh
	IntrinsicArcCos
	IntrinsicArcCosh
	IntrinsicArcTan
	IntrinsicArcTanh
	IntrinsicArcTan2
	IntrinsicInverseSqrt
	IntrinsicSqrt
	IntrinsicRound
	IntrinsicRoundEven
	IntrinsicTrunc
	IntrinsicAbs
	IntrinsicSign
	IntrinsicFloor
	IntrinsicCeil
	IntrinsicFract
	IntrinsicRadToDeg
	IntrinsicDegToRad
	IntrinsicLog
	IntrinsicLog2
	IntrinsicExp2
	IntrinsicClamp
	IntrinsicLerp
	IntrinsicTextureSampleImplicitLodDepthComp
	IntrinsicTextureSampleImplicitLod
	IntrinsicTextureWrite
	IntrinsicDistance
	IntrinsicSelect
)

// BuiltinEntry names a GLSL/SPIR-V shader built-in a struct member maps to
// via [builtin(name)].
type BuiltinEntry uint8

const (
	BuiltinVertexPosition BuiltinEntry = iota
	BuiltinFragCoord
	BuiltinFragDepth
	BuiltinBaseInstance
	BuiltinBaseVertex
	BuiltinDrawIndex
	BuiltinInstanceIndex
	BuiltinVertexIndex
	BuiltinWorkgroupCount
	BuiltinWorkgroupIndices
	BuiltinLocalInvocationIndices
	BuiltinLocalInvocationIndex
	BuiltinGlobalInvocationIndices
)

func (b BuiltinEntry) String() string {
	names := [...]string{
		"vertex_position", "frag_coord", "frag_depth", "base_instance",
		"base_vertex", "draw_index", "instance_index", "vertex_index",
		"workgroup_count", "workgroup_indices", "local_invocation_indices",
		"local_invocation_index", "global_invocation_indices",
	}
	if int(b) < len(names) {
		return names[b]
	}
	return "<unknown builtin>"
}

func (k IntrinsicKind) String() string {
	names := [...]string{
		"cross", "dot", "textureRead", "length", "max", "min", "pow", "exp",
		"reflect", "normalize", "arraySize", "inverse", "transpose",
		"sin", "sinh", "cos", "cosh", "tan", "tanh",
		"asin", "asinh", "acos", "acosh", "atan", "atanh", "atan2",
		"inverseSqrt", "sqrt", "round", "roundEven", "trunc", "abs", "sign",
		"floor", "ceil", "fract", "radToDeg", "degToRad", "log", "log2",
		"exp2", "clamp", "lerp", "textureSampleDepthComp", "textureSample",
		"textureWrite", "distance", "select",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "<unknown intrinsic>"
}
