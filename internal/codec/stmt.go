package codec

import (
	"fmt"

	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/ref"
)

const (
	stmtBranch byte = iota
	stmtBreak
	stmtConditionalStmt
	stmtContinue
	stmtDeclareAlias
	stmtDeclareConst
	stmtDeclareExternal
	stmtDeclareFunction
	stmtDeclareOption
	stmtDeclareStruct
	stmtDeclareVariable
	stmtDiscard
	stmtExpressionStmt
	stmtFor
	stmtForEach
	stmtImport
	stmtMulti
	stmtNoOp
	stmtReturn
	stmtScoped
	stmtWhile
)

func writeBoolAttr(e *Encoder, v ast.ExpressionValue[bool]) { writeAttr(e, v, (*Encoder).WriteBool) }
func readBoolAttr(d *Decoder) (ast.ExpressionValue[bool], error) {
	return readAttr(d, (*Decoder).ReadBool)
}

func writeUint32Attr(e *Encoder, v ast.ExpressionValue[uint32]) { writeAttr(e, v, (*Encoder).WriteUint32) }
func readUint32Attr(d *Decoder) (ast.ExpressionValue[uint32], error) {
	return readAttr(d, (*Decoder).ReadUint32)
}

func (e *Encoder) WriteStmt(s ast.Statement) {
	switch v := s.(type) {
	case *ast.BranchStmt:
		e.WriteByte(stmtBranch)
		e.WriteBool(v.IsConst)
		e.WriteUvarint(uint64(len(v.CondStatements)))
		for _, br := range v.CondStatements {
			e.WriteExpr(br.Condition)
			e.WriteStmt(br.Statement)
		}
		writeOptStmt(e, v.ElseStatement)
	case *ast.BreakStmt:
		e.WriteByte(stmtBreak)
	case *ast.ConditionalStmt:
		e.WriteByte(stmtConditionalStmt)
		e.WriteExpr(v.Cond)
		e.WriteStmt(v.Statement)
	case *ast.ContinueStmt:
		e.WriteByte(stmtContinue)
	case *ast.DeclareAliasStmt:
		e.WriteByte(stmtDeclareAlias)
		e.WriteUint64(uint64(v.AliasRef))
		e.WriteString(v.Name)
		e.WriteExpr(v.Expression)
	case *ast.DeclareConstStmt:
		e.WriteByte(stmtDeclareConst)
		e.WriteUint64(uint64(v.ConstantRef))
		e.WriteString(v.Name)
		e.WriteExpr(v.Expression)
		writeAttr(e, v.Type, (*Encoder).WriteType)
		writeBoolAttr(e, v.IsExported)
	case *ast.DeclareExternalStmt:
		e.WriteByte(stmtDeclareExternal)
		e.WriteString(v.Tag)
		e.WriteUvarint(uint64(len(v.ExternalVars)))
		for _, ev := range v.ExternalVars {
			e.WriteUint64(uint64(ev.VariableRef))
			e.WriteString(ev.Name)
			e.WriteString(ev.Tag)
			writeUint32Attr(e, ev.Binding)
			writeUint32Attr(e, ev.Set)
			writeAttr(e, ev.Type, (*Encoder).WriteType)
		}
		writeUint32Attr(e, v.Set)
		writeBoolAttr(e, v.AutoBinding)
	case *ast.DeclareFunctionStmt:
		e.WriteByte(stmtDeclareFunction)
		e.WriteUint64(uint64(v.FuncRef))
		e.WriteString(v.Name)
		e.WriteUvarint(uint64(len(v.Parameters)))
		for _, p := range v.Parameters {
			e.WriteUint64(uint64(p.VariableRef))
			e.WriteString(p.Name)
			writeAttr(e, p.Type, (*Encoder).WriteType)
		}
		e.WriteUvarint(uint64(len(v.Statements)))
		for _, st := range v.Statements {
			e.WriteStmt(st)
		}
		writeAttr(e, v.DepthWrite, writeDepthWriteMode)
		writeAttr(e, v.ReturnType, (*Encoder).WriteType)
		writeAttr(e, v.EntryStage, writeShaderStage)
		writeAttr(e, v.WorkgroupSize, writeWorkgroupSize)
		writeBoolAttr(e, v.EarlyFragmentTests)
		writeBoolAttr(e, v.IsExported)
	case *ast.DeclareOptionStmt:
		e.WriteByte(stmtDeclareOption)
		e.WriteUint64(uint64(v.ConstantRef))
		e.WriteString(v.Name)
		e.WriteExpr(v.DefaultValue)
		writeAttr(e, v.Type, (*Encoder).WriteType)
	case *ast.DeclareStructStmt:
		e.WriteByte(stmtDeclareStruct)
		e.WriteUint64(uint64(v.StructRef))
		writeBoolAttr(e, v.IsExported)
		e.writeStructDescription(v.Description)
	case *ast.DeclareVariableStmt:
		e.WriteByte(stmtDeclareVariable)
		e.WriteUint64(uint64(v.VariableRef))
		e.WriteString(v.Name)
		e.WriteExpr(v.InitialExpression)
		writeAttr(e, v.Type, (*Encoder).WriteType)
	case *ast.DiscardStmt:
		e.WriteByte(stmtDiscard)
	case *ast.ExpressionStmt:
		e.WriteByte(stmtExpressionStmt)
		e.WriteExpr(v.Expression)
	case *ast.ForStmt:
		e.WriteByte(stmtFor)
		e.WriteUint64(uint64(v.VariableRef))
		e.WriteString(v.VarName)
		e.WriteExpr(v.FromExpr)
		e.WriteExpr(v.ToExpr)
		e.WriteExpr(v.StepExpr)
		writeAttr(e, v.Unroll, writeLoopUnroll)
		e.WriteStmt(v.Statement)
	case *ast.ForEachStmt:
		e.WriteByte(stmtForEach)
		e.WriteUint64(uint64(v.VariableRef))
		e.WriteString(v.VarName)
		e.WriteExpr(v.Expression)
		writeAttr(e, v.Unroll, writeLoopUnroll)
		e.WriteStmt(v.Statement)
	case *ast.ImportStmt:
		e.WriteByte(stmtImport)
		e.WriteString(v.ModuleName)
		e.WriteUvarint(uint64(len(v.Identifiers)))
		for _, id := range v.Identifiers {
			e.WriteString(id.Identifier)
			e.WriteString(id.RenamedIdentifier)
		}
	case *ast.MultiStmt:
		e.WriteByte(stmtMulti)
		e.WriteUvarint(uint64(len(v.Statements)))
		for _, st := range v.Statements {
			e.WriteStmt(st)
		}
	case *ast.NoOpStmt:
		e.WriteByte(stmtNoOp)
	case *ast.ReturnStmt:
		e.WriteByte(stmtReturn)
		e.WriteExpr(v.ReturnExpr)
	case *ast.ScopedStmt:
		e.WriteByte(stmtScoped)
		e.WriteStmt(v.Statement)
	case *ast.WhileStmt:
		e.WriteByte(stmtWhile)
		e.WriteExpr(v.Condition)
		writeAttr(e, v.Unroll, writeLoopUnroll)
		e.WriteStmt(v.Body)
	default:
		panic(fmt.Sprintf("codec: unhandled statement %T", s))
	}
}

// writeOptStmt writes a possibly-nil Statement slot (BranchStmt's else arm).
func writeOptStmt(e *Encoder, s ast.Statement) {
	if s == nil {
		e.WriteByte(0)
		return
	}
	e.WriteByte(1)
	e.WriteStmt(s)
}

func readOptStmt(d *Decoder) (ast.Statement, error) {
	tag, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	if tag == 0 {
		return nil, nil
	}
	return d.ReadStmt()
}

func (e *Encoder) writeStructDescription(desc ast.StructDescription) {
	e.WriteString(desc.Name)
	writeAttr(e, desc.Layout, writeMemoryLayout)
	e.WriteUvarint(uint64(len(desc.Members)))
	for _, m := range desc.Members {
		e.WriteString(m.Name)
		writeAttr(e, m.Type, (*Encoder).WriteType)
		writeAttr(e, m.Builtin, writeBuiltinEntry)
		writeUint32Attr(e, m.Location)
		writeBoolAttr(e, m.Cond)
	}
}

func (d *Decoder) readStructDescription() (ast.StructDescription, error) {
	name, err := d.ReadString()
	if err != nil {
		return ast.StructDescription{}, err
	}
	layout, err := readAttr(d, readMemoryLayout)
	if err != nil {
		return ast.StructDescription{}, err
	}
	n, err := d.ReadUvarint()
	if err != nil {
		return ast.StructDescription{}, err
	}
	members := make([]ast.StructMember, n)
	for i := range members {
		mName, err := d.ReadString()
		if err != nil {
			return ast.StructDescription{}, err
		}
		mType, err := readAttr(d, (*Decoder).ReadType)
		if err != nil {
			return ast.StructDescription{}, err
		}
		builtin, err := readAttr(d, readBuiltinEntry)
		if err != nil {
			return ast.StructDescription{}, err
		}
		location, err := readUint32Attr(d)
		if err != nil {
			return ast.StructDescription{}, err
		}
		cond, err := readBoolAttr(d)
		if err != nil {
			return ast.StructDescription{}, err
		}
		members[i] = ast.StructMember{Name: mName, Type: mType, Builtin: builtin, Location: location, Cond: cond}
	}
	return ast.StructDescription{Name: name, Layout: layout, Members: members}, nil
}

func (d *Decoder) ReadStmt() (ast.Statement, error) {
	tag, err := d.ReadByte()
	if err != nil {
		return nil, d.err("statement tag", err)
	}
	switch tag {
	case stmtBranch:
		isConst, err := d.ReadBool()
		if err != nil {
			return nil, err
		}
		n, err := d.ReadUvarint()
		if err != nil {
			return nil, err
		}
		arms := make([]ast.ConditionalBranch, n)
		for i := range arms {
			cond, err := d.ReadExpr()
			if err != nil {
				return nil, err
			}
			st, err := d.ReadStmt()
			if err != nil {
				return nil, err
			}
			arms[i] = ast.ConditionalBranch{Condition: cond, Statement: st}
		}
		elseStmt, err := readOptStmt(d)
		if err != nil {
			return nil, err
		}
		return &ast.BranchStmt{CondStatements: arms, ElseStatement: elseStmt, IsConst: isConst}, nil
	case stmtBreak:
		return &ast.BreakStmt{}, nil
	case stmtConditionalStmt:
		cond, err := d.ReadExpr()
		if err != nil {
			return nil, err
		}
		st, err := d.ReadStmt()
		if err != nil {
			return nil, err
		}
		return &ast.ConditionalStmt{Cond: cond, Statement: st}, nil
	case stmtContinue:
		return &ast.ContinueStmt{}, nil
	case stmtDeclareAlias:
		idx, err := d.ReadUint64()
		if err != nil {
			return nil, err
		}
		name, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		expr, err := d.ReadExpr()
		if err != nil {
			return nil, err
		}
		return &ast.DeclareAliasStmt{AliasRef: ref.Alias(idx), Name: name, Expression: expr}, nil
	case stmtDeclareConst:
		idx, err := d.ReadUint64()
		if err != nil {
			return nil, err
		}
		name, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		expr, err := d.ReadExpr()
		if err != nil {
			return nil, err
		}
		typ, err := readAttr(d, (*Decoder).ReadType)
		if err != nil {
			return nil, err
		}
		exported, err := readBoolAttr(d)
		if err != nil {
			return nil, err
		}
		return &ast.DeclareConstStmt{ConstantRef: ref.Constant(idx), Name: name, Expression: expr, Type: typ, IsExported: exported}, nil
	case stmtDeclareExternal:
		tagName, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		n, err := d.ReadUvarint()
		if err != nil {
			return nil, err
		}
		vars := make([]ast.ExternalVar, n)
		for i := range vars {
			vidx, err := d.ReadUint64()
			if err != nil {
				return nil, err
			}
			name, err := d.ReadString()
			if err != nil {
				return nil, err
			}
			vtag, err := d.ReadString()
			if err != nil {
				return nil, err
			}
			binding, err := readUint32Attr(d)
			if err != nil {
				return nil, err
			}
			set, err := readUint32Attr(d)
			if err != nil {
				return nil, err
			}
			typ, err := readAttr(d, (*Decoder).ReadType)
			if err != nil {
				return nil, err
			}
			vars[i] = ast.ExternalVar{VariableRef: ref.Variable(vidx), Name: name, Tag: vtag, Binding: binding, Set: set, Type: typ}
		}
		set, err := readUint32Attr(d)
		if err != nil {
			return nil, err
		}
		autoBinding, err := readBoolAttr(d)
		if err != nil {
			return nil, err
		}
		return &ast.DeclareExternalStmt{Tag: tagName, ExternalVars: vars, Set: set, AutoBinding: autoBinding}, nil
	case stmtDeclareFunction:
		idx, err := d.ReadUint64()
		if err != nil {
			return nil, err
		}
		name, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		n, err := d.ReadUvarint()
		if err != nil {
			return nil, err
		}
		params := make([]ast.FunctionParam, n)
		for i := range params {
			pidx, err := d.ReadUint64()
			if err != nil {
				return nil, err
			}
			pname, err := d.ReadString()
			if err != nil {
				return nil, err
			}
			ptype, err := readAttr(d, (*Decoder).ReadType)
			if err != nil {
				return nil, err
			}
			params[i] = ast.FunctionParam{VariableRef: ref.Variable(pidx), Name: pname, Type: ptype}
		}
		sn, err := d.ReadUvarint()
		if err != nil {
			return nil, err
		}
		stmts := make([]ast.Statement, sn)
		for i := range stmts {
			stmts[i], err = d.ReadStmt()
			if err != nil {
				return nil, err
			}
		}
		depthWrite, err := readAttr(d, readDepthWriteMode)
		if err != nil {
			return nil, err
		}
		returnType, err := readAttr(d, (*Decoder).ReadType)
		if err != nil {
			return nil, err
		}
		entryStage, err := readAttr(d, readShaderStage)
		if err != nil {
			return nil, err
		}
		workgroupSize, err := readAttr(d, readWorkgroupSize)
		if err != nil {
			return nil, err
		}
		earlyFragmentTests, err := readBoolAttr(d)
		if err != nil {
			return nil, err
		}
		exported, err := readBoolAttr(d)
		if err != nil {
			return nil, err
		}
		return &ast.DeclareFunctionStmt{
			FuncRef: ref.Function(idx), Name: name, Parameters: params, Statements: stmts,
			DepthWrite: depthWrite, ReturnType: returnType, EntryStage: entryStage,
			WorkgroupSize: workgroupSize, EarlyFragmentTests: earlyFragmentTests, IsExported: exported,
		}, nil
	case stmtDeclareOption:
		idx, err := d.ReadUint64()
		if err != nil {
			return nil, err
		}
		name, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		def, err := d.ReadExpr()
		if err != nil {
			return nil, err
		}
		typ, err := readAttr(d, (*Decoder).ReadType)
		if err != nil {
			return nil, err
		}
		return &ast.DeclareOptionStmt{ConstantRef: ref.Constant(idx), Name: name, DefaultValue: def, Type: typ}, nil
	case stmtDeclareStruct:
		idx, err := d.ReadUint64()
		if err != nil {
			return nil, err
		}
		exported, err := readBoolAttr(d)
		if err != nil {
			return nil, err
		}
		desc, err := d.readStructDescription()
		if err != nil {
			return nil, err
		}
		return &ast.DeclareStructStmt{StructRef: ref.Struct(idx), IsExported: exported, Description: desc}, nil
	case stmtDeclareVariable:
		idx, err := d.ReadUint64()
		if err != nil {
			return nil, err
		}
		name, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		init, err := d.ReadExpr()
		if err != nil {
			return nil, err
		}
		typ, err := readAttr(d, (*Decoder).ReadType)
		if err != nil {
			return nil, err
		}
		return &ast.DeclareVariableStmt{VariableRef: ref.Variable(idx), Name: name, InitialExpression: init, Type: typ}, nil
	case stmtDiscard:
		return &ast.DiscardStmt{}, nil
	case stmtExpressionStmt:
		expr, err := d.ReadExpr()
		if err != nil {
			return nil, err
		}
		return &ast.ExpressionStmt{Expression: expr}, nil
	case stmtFor:
		idx, err := d.ReadUint64()
		if err != nil {
			return nil, err
		}
		name, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		from, err := d.ReadExpr()
		if err != nil {
			return nil, err
		}
		to, err := d.ReadExpr()
		if err != nil {
			return nil, err
		}
		step, err := d.ReadExpr()
		if err != nil {
			return nil, err
		}
		unroll, err := readAttr(d, readLoopUnroll)
		if err != nil {
			return nil, err
		}
		body, err := d.ReadStmt()
		if err != nil {
			return nil, err
		}
		return &ast.ForStmt{VariableRef: ref.Variable(idx), VarName: name, FromExpr: from, ToExpr: to, StepExpr: step, Unroll: unroll, Statement: body}, nil
	case stmtForEach:
		idx, err := d.ReadUint64()
		if err != nil {
			return nil, err
		}
		name, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		container, err := d.ReadExpr()
		if err != nil {
			return nil, err
		}
		unroll, err := readAttr(d, readLoopUnroll)
		if err != nil {
			return nil, err
		}
		body, err := d.ReadStmt()
		if err != nil {
			return nil, err
		}
		return &ast.ForEachStmt{VariableRef: ref.Variable(idx), VarName: name, Expression: container, Unroll: unroll, Statement: body}, nil
	case stmtImport:
		modName, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		n, err := d.ReadUvarint()
		if err != nil {
			return nil, err
		}
		ids := make([]ast.ImportIdentifier, n)
		for i := range ids {
			ident, err := d.ReadString()
			if err != nil {
				return nil, err
			}
			renamed, err := d.ReadString()
			if err != nil {
				return nil, err
			}
			ids[i] = ast.ImportIdentifier{Identifier: ident, RenamedIdentifier: renamed}
		}
		return &ast.ImportStmt{ModuleName: modName, Identifiers: ids}, nil
	case stmtMulti:
		n, err := d.ReadUvarint()
		if err != nil {
			return nil, err
		}
		stmts := make([]ast.Statement, n)
		for i := range stmts {
			stmts[i], err = d.ReadStmt()
			if err != nil {
				return nil, err
			}
		}
		return &ast.MultiStmt{Statements: stmts}, nil
	case stmtNoOp:
		return &ast.NoOpStmt{}, nil
	case stmtReturn:
		expr, err := d.ReadExpr()
		if err != nil {
			return nil, err
		}
		return &ast.ReturnStmt{ReturnExpr: expr}, nil
	case stmtScoped:
		st, err := d.ReadStmt()
		if err != nil {
			return nil, err
		}
		return &ast.ScopedStmt{Statement: st}, nil
	case stmtWhile:
		cond, err := d.ReadExpr()
		if err != nil {
			return nil, err
		}
		unroll, err := readAttr(d, readLoopUnroll)
		if err != nil {
			return nil, err
		}
		body, err := d.ReadStmt()
		if err != nil {
			return nil, err
		}
		return &ast.WhileStmt{Condition: cond, Unroll: unroll, Body: body}, nil
	default:
		return nil, fmt.Errorf("codec: unknown statement tag %d", tag)
	}
}
