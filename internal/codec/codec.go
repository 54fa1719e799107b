// Package codec implements a compact binary serialization of ast.Module,
// for tooling that wants to persist or transmit an already-resolved module
// without re-running the front end. It is version-prefixed so a future
// format revision can add fields a Decoder built against an older Version
// simply never asks for.
package codec

import (
	"fmt"
	"math"
)

// Version is a "major.minor" format revision pair, independent of the
// language version a module's own Metadata carries.
type Version struct {
	Major, Minor uint32
}

// CurrentVersion is written by Encode and is the newest format a Decoder in
// this build understands.
var CurrentVersion = Version{Major: 1, Minor: 0}

var magic = [4]byte{'N', 'Z', 'S', 'L'}

// Encoder accumulates a byte stream for one module and its imported
// submodules. Strings are interned: the first occurrence of a string is
// written inline and given the next table index, every later occurrence
// writes only that index.
type Encoder struct {
	version   Version
	buf       []byte
	strings   map[string]uint32
	nextIndex uint32
}

func newEncoder() *Encoder {
	return &Encoder{version: CurrentVersion, strings: map[string]uint32{}}
}

// IsVersionGreaterOrEqual reports whether the format version this Encoder
// is writing is at least v. Every Encoder call this build produces writes
// CurrentVersion, so this is mostly useful to a caller building a
// version-gated extension of WriteX.
func (e *Encoder) IsVersionGreaterOrEqual(v Version) bool {
	return versionAtLeast(e.version, v)
}

func (e *Encoder) Bytes() []byte { return e.buf }

func (e *Encoder) WriteByte(b byte) { e.buf = append(e.buf, b) }

func (e *Encoder) WriteBool(v bool) {
	if v {
		e.WriteByte(1)
	} else {
		e.WriteByte(0)
	}
}

func (e *Encoder) WriteUvarint(v uint64) { e.buf = appendUvarint(e.buf, v) }
func (e *Encoder) WriteVarint(v int64)   { e.buf = appendVarint(e.buf, v) }
func (e *Encoder) WriteUint32(v uint32)  { e.WriteUvarint(uint64(v)) }
func (e *Encoder) WriteInt32(v int32)    { e.WriteVarint(int64(v)) }
func (e *Encoder) WriteInt64(v int64)    { e.WriteVarint(v) }
func (e *Encoder) WriteUint64(v uint64)  { e.WriteUvarint(v) }

func (e *Encoder) WriteFloat32(v float32) {
	bits := math.Float32bits(v)
	e.buf = append(e.buf, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
}

func (e *Encoder) WriteFloat64(v float64) {
	bits := math.Float64bits(v)
	for i := 0; i < 8; i++ {
		e.buf = append(e.buf, byte(bits>>(8*i)))
	}
}

// WriteString interns v: a string seen before is written as a back-
// reference to its table index, otherwise it is written inline and
// assigned the next index.
func (e *Encoder) WriteString(v string) {
	if idx, ok := e.strings[v]; ok {
		e.WriteUvarint(uint64(idx) + 1)
		return
	}
	e.WriteUvarint(0)
	e.WriteUvarint(uint64(len(v)))
	e.buf = append(e.buf, v...)
	e.strings[v] = e.nextIndex
	e.nextIndex++
}

// WriteRawBytes writes raw, uninterpreted bytes prefixed by their length.
func (e *Encoder) WriteRawBytes(b []byte) {
	e.WriteUvarint(uint64(len(b)))
	e.buf = append(e.buf, b...)
}

// Decoder mirrors Encoder, reading back everything it wrote.
type Decoder struct {
	version Version
	buf     []byte
	pos     int
	strings []string
}

func newDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

func (d *Decoder) IsVersionGreaterOrEqual(v Version) bool { return versionAtLeast(d.version, v) }

func (d *Decoder) err(context string, err error) error {
	return fmt.Errorf("codec: decoding %s at offset %d: %w", context, d.pos, err)
}

func (d *Decoder) ReadByte() (byte, error) {
	if d.pos >= len(d.buf) {
		return 0, errTruncated
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

func (d *Decoder) ReadBool() (bool, error) {
	b, err := d.ReadByte()
	return b != 0, err
}

func (d *Decoder) ReadUvarint() (uint64, error) {
	v, n, err := readUvarint(d.buf, d.pos)
	if err != nil {
		return 0, err
	}
	d.pos += n
	return v, nil
}

func (d *Decoder) ReadVarint() (int64, error) {
	v, n, err := readVarint(d.buf, d.pos)
	if err != nil {
		return 0, err
	}
	d.pos += n
	return v, nil
}

func (d *Decoder) ReadUint32() (uint32, error) {
	v, err := d.ReadUvarint()
	return uint32(v), err
}

func (d *Decoder) ReadInt32() (int32, error) {
	v, err := d.ReadVarint()
	return int32(v), err
}

func (d *Decoder) ReadInt64() (int64, error) { return d.ReadVarint() }
func (d *Decoder) ReadUint64() (uint64, error) { return d.ReadUvarint() }

func (d *Decoder) ReadFloat32() (float32, error) {
	if d.pos+4 > len(d.buf) {
		return 0, errTruncated
	}
	b := d.buf[d.pos : d.pos+4]
	d.pos += 4
	bits := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return math.Float32frombits(bits), nil
}

func (d *Decoder) ReadFloat64() (float64, error) {
	if d.pos+8 > len(d.buf) {
		return 0, errTruncated
	}
	var bits uint64
	for i := 0; i < 8; i++ {
		bits |= uint64(d.buf[d.pos+i]) << (8 * i)
	}
	d.pos += 8
	return math.Float64frombits(bits), nil
}

func (d *Decoder) ReadString() (string, error) {
	tag, err := d.ReadUvarint()
	if err != nil {
		return "", err
	}
	if tag != 0 {
		idx := int(tag - 1)
		if idx < 0 || idx >= len(d.strings) {
			return "", fmt.Errorf("codec: string back-reference %d out of range (%d interned)", idx, len(d.strings))
		}
		return d.strings[idx], nil
	}
	n, err := d.ReadUvarint()
	if err != nil {
		return "", err
	}
	if d.pos+int(n) > len(d.buf) {
		return "", errTruncated
	}
	s := string(d.buf[d.pos : d.pos+int(n)])
	d.pos += int(n)
	d.strings = append(d.strings, s)
	return s, nil
}

func (d *Decoder) ReadRawBytes() ([]byte, error) {
	n, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if d.pos+int(n) > len(d.buf) {
		return nil, errTruncated
	}
	b := d.buf[d.pos : d.pos+int(n)]
	d.pos += int(n)
	return b, nil
}

func versionAtLeast(have, want Version) bool {
	if have.Major != want.Major {
		return have.Major > want.Major
	}
	return have.Minor >= want.Minor
}
