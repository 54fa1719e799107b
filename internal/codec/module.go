package codec

import (
	"fmt"

	"github.com/nzsl-go/nzsl/internal/ast"
)

// Encode serializes mod (and every module reachable through its
// ImportedModules) into a self-contained byte stream. The format is
// version-prefixed so a future Decoder can special-case an older producer.
func Encode(mod *ast.Module) ([]byte, error) {
	e := newEncoder()
	e.buf = append(e.buf, magic[:]...)
	e.WriteUint32(e.version.Major)
	e.WriteUint32(e.version.Minor)
	e.writeModule(mod)
	return e.buf, nil
}

func (e *Encoder) writeModule(mod *ast.Module) {
	e.writeMetadata(mod.Metadata)
	e.WriteStmt(mod.RootStatement)
	e.WriteUvarint(uint64(len(mod.ImportedModules)))
	for _, im := range mod.ImportedModules {
		e.WriteString(im.Identifier)
		e.writeModule(im.Module)
	}
}

func (e *Encoder) writeMetadata(m ast.Metadata) {
	e.WriteString(m.ModuleName)
	e.WriteUint32(m.ShaderLangVersion.Major)
	e.WriteUint32(m.ShaderLangVersion.Minor)
	e.WriteUvarint(uint64(len(m.EnabledFeatures)))
	for _, f := range m.EnabledFeatures {
		e.WriteByte(byte(f))
	}
	e.WriteString(m.Author)
	e.WriteString(m.Description)
	e.WriteString(m.License)
}

// Decode reads back a byte stream produced by Encode.
func Decode(data []byte) (*ast.Module, error) {
	d := newDecoder(data)
	if len(data) < 4 || data[0] != magic[0] || data[1] != magic[1] || data[2] != magic[2] || data[3] != magic[3] {
		return nil, fmt.Errorf("codec: not an nzsl module (bad magic)")
	}
	d.pos = 4
	major, err := d.ReadUint32()
	if err != nil {
		return nil, d.err("version major", err)
	}
	minor, err := d.ReadUint32()
	if err != nil {
		return nil, d.err("version minor", err)
	}
	d.version = Version{Major: major, Minor: minor}
	if d.version.Major > CurrentVersion.Major {
		return nil, fmt.Errorf("codec: module format v%d.%d is newer than this build understands (v%d.%d)",
			d.version.Major, d.version.Minor, CurrentVersion.Major, CurrentVersion.Minor)
	}
	return d.readModule()
}

func (d *Decoder) readModule() (*ast.Module, error) {
	meta, err := d.readMetadata()
	if err != nil {
		return nil, err
	}
	root, err := d.ReadStmt()
	if err != nil {
		return nil, err
	}
	multiRoot, ok := root.(*ast.MultiStmt)
	if !ok {
		return nil, fmt.Errorf("codec: module root statement was %T, expected *ast.MultiStmt", root)
	}
	mod := &ast.Module{Metadata: meta, RootStatement: multiRoot}

	n, err := d.ReadUvarint()
	if err != nil {
		return nil, d.err("imported module count", err)
	}
	mod.ImportedModules = make([]ast.ImportedModule, n)
	for i := range mod.ImportedModules {
		identifier, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		sub, err := d.readModule()
		if err != nil {
			return nil, err
		}
		mod.ImportedModules[i] = ast.ImportedModule{Identifier: identifier, Module: sub}
	}
	return mod, nil
}

func (d *Decoder) readMetadata() (ast.Metadata, error) {
	name, err := d.ReadString()
	if err != nil {
		return ast.Metadata{}, d.err("module name", err)
	}
	major, err := d.ReadUint32()
	if err != nil {
		return ast.Metadata{}, d.err("shader lang version major", err)
	}
	minor, err := d.ReadUint32()
	if err != nil {
		return ast.Metadata{}, d.err("shader lang version minor", err)
	}
	n, err := d.ReadUvarint()
	if err != nil {
		return ast.Metadata{}, d.err("enabled feature count", err)
	}
	features := make([]ast.ModuleFeature, n)
	for i := range features {
		b, err := d.ReadByte()
		if err != nil {
			return ast.Metadata{}, d.err("enabled feature", err)
		}
		features[i] = ast.ModuleFeature(b)
	}
	author, err := d.ReadString()
	if err != nil {
		return ast.Metadata{}, d.err("author", err)
	}
	description, err := d.ReadString()
	if err != nil {
		return ast.Metadata{}, d.err("description", err)
	}
	license, err := d.ReadString()
	if err != nil {
		return ast.Metadata{}, d.err("license", err)
	}
	return ast.Metadata{
		ModuleName:        name,
		ShaderLangVersion: ast.Version{Major: major, Minor: minor},
		EnabledFeatures:   features,
		Author:            author,
		Description:       description,
		License:           license,
	}, nil
}
