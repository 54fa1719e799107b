package ast

// Version is a "major.minor" language version pair, e.g. from
// nzsl_version("1.0").
type Version struct {
	Major, Minor uint32
}

// Metadata is a module's header information.
type Metadata struct {
	ModuleName      string
	ShaderLangVersion Version
	EnabledFeatures []ModuleFeature
	Author          string
	Description     string
	License         string
}

// HasFeature reports whether f is enabled in this module's header.
func (m *Metadata) HasFeature(f ModuleFeature) bool {
	for _, g := range m.EnabledFeatures {
		if g == f {
			return true
		}
	}
	return false
}

// ImportedModule is a fully-resolved submodule inlined into a parent
// module's import table: imports compose trees, not a flat graph.
type ImportedModule struct {
	Identifier string
	Module     *Module
}

// Module is a full compilation unit: metadata, a root Multi statement and
// zero or more already-resolved imported submodules.
type Module struct {
	Metadata        Metadata
	RootStatement   *MultiStmt
	ImportedModules []ImportedModule
}

// NewModule builds an empty module with the given metadata and an empty
// root Multi statement.
func NewModule(meta Metadata) *Module {
	return &Module{
		Metadata:      meta,
		RootStatement: &MultiStmt{Statements: nil},
	}
}
