package message

import (
	"errors"
	"fmt"
	"strings"

	"github.com/batchatco/go-thrower"

	binpkg "github.com/robert-malhotra/go-hdf5/internal/binary"
)

var (
	// ErrUnknownClass is returned for datatype classes outside 0..10.
	ErrUnknownClass = errors.New("unknown datatype class")

	// ErrDatatypeVersion is returned for unsupported datatype message versions.
	ErrDatatypeVersion = errors.New("datatype version not supported")

	// ErrMalformed is returned when a datatype message is internally inconsistent.
	ErrMalformed = errors.New("malformed datatype message")
)

const (
	maxDTVersion = 5
	maxNesting   = 32
)

// ParseDatatype decodes a datatype message. Trailing bytes after the
// message are ignored.
func ParseDatatype(data []byte) (dt *Datatype, err error) {
	dt, _, err = ParseDatatypeWithSize(data)
	return dt, err
}

// ParseDatatypeWithSize decodes a datatype message and returns the number
// of bytes consumed.
func ParseDatatypeWithSize(data []byte) (dt *Datatype, n int, err error) {
	defer thrower.RecoverError(&err)
	d := &decoder{r: binpkg.NewReader(data, binpkg.DefaultConfig())}
	dt = d.datatype(0)
	return dt, d.r.Pos(), nil
}

// decoder throws on any read failure; ParseDatatypeWithSize recovers.
type decoder struct {
	r *binpkg.Reader
}

func (d *decoder) u8() uint8 {
	v, err := d.r.ReadUint8()
	thrower.ThrowIfError(err)
	return v
}

func (d *decoder) u16() uint16 {
	v, err := d.r.ReadUint16()
	thrower.ThrowIfError(err)
	return v
}

func (d *decoder) u32() uint32 {
	v, err := d.r.ReadUint32()
	thrower.ThrowIfError(err)
	return v
}

func (d *decoder) uintN(n int) uint64 {
	v, err := d.r.ReadUintN(n)
	thrower.ThrowIfError(err)
	return v
}

func (d *decoder) bytes(n int) []byte {
	v, err := d.r.ReadBytes(n)
	thrower.ThrowIfError(err)
	return append([]byte(nil), v...)
}

func (d *decoder) skip(n int) {
	thrower.ThrowIfError(d.r.Skip(n))
}

// name reads a null-terminated name. Versions 1 and 2 pad names to a
// multiple of eight bytes, counting the terminator.
func (d *decoder) name(version int) string {
	start := d.r.Pos()
	s, err := d.r.ReadCString()
	thrower.ThrowIfError(err)
	if version < 3 {
		thrower.ThrowIfError(d.r.AlignFrom(start, 8))
	}
	return s
}

func (d *decoder) datatype(depth int) *Datatype {
	if depth > maxNesting {
		thrower.Throw(fmt.Errorf("%w: nesting deeper than %d", ErrMalformed, maxNesting))
	}

	classAndVersion := d.u8()
	class := DatatypeClass(classAndVersion & 0x0F)
	version := int(classAndVersion >> 4)
	if version < 1 || version > maxDTVersion {
		thrower.Throw(fmt.Errorf("%w: %d", ErrDatatypeVersion, version))
	}
	classBits := uint32(d.uintN(3))
	size := d.u32()

	dt := &Datatype{
		Class:     class,
		ClassBits: classBits,
		Size:      size,
	}

	switch class {
	case ClassFixedPoint:
		dt.ByteOrder = ByteOrder(classBits & 0x01)
		dt.Signed = classBits&0x08 != 0
		dt.BitOffset = d.u16()
		dt.BitPrecision = d.u16()

	case ClassFloatPoint:
		dt.ByteOrder = floatOrder(classBits)
		if dt.ByteOrder == OrderNone {
			thrower.Throw(fmt.Errorf("%w: reserved floating-point byte order bits 0x%x",
				ErrMalformed, classBits&0x41))
		}
		dt.BitOffset = d.u16()
		dt.BitPrecision = d.u16()
		dt.ExpLocation = d.u8()
		dt.ExpSize = d.u8()
		dt.MantLocation = d.u8()
		dt.MantSize = d.u8()
		dt.ExpBias = d.u32()

	case ClassTime:
		dt.ByteOrder = ByteOrder(classBits & 0x01)
		dt.BitPrecision = d.u16()

	case ClassString:
		dt.StringPadding = StringPadding(classBits & 0x0F)
		dt.CharSet = CharacterSet((classBits >> 4) & 0x0F)

	case ClassBitfield:
		dt.ByteOrder = ByteOrder(classBits & 0x01)
		dt.BitOffset = d.u16()
		dt.BitPrecision = d.u16()

	case ClassOpaque:
		tagLen := int(classBits & 0xFF)
		dt.OpaqueTag = strings.TrimRight(string(d.bytes(tagLen)), "\x00")

	case ClassCompound:
		d.compound(dt, version, depth)

	case ClassReference:
		// Reference type lives in the class bits; no properties.

	case ClassEnum:
		d.enum(dt, version, depth)

	case ClassVarLen:
		dt.IsVarLenString = classBits&0x0F == 1
		dt.StringPadding = StringPadding((classBits >> 4) & 0x0F)
		dt.CharSet = CharacterSet((classBits >> 8) & 0x0F)
		dt.VarLenType = d.datatype(depth + 1)

	case ClassArray:
		d.array(dt, version, depth)

	default:
		thrower.Throw(fmt.Errorf("%w: %d", ErrUnknownClass, class))
	}

	return dt
}

func floatOrder(classBits uint32) ByteOrder {
	switch classBits & (0x01 | 0x40) {
	case 0x00:
		return OrderLE
	case 0x01:
		return OrderBE
	case 0x41:
		return OrderVAX
	}
	return OrderNone // bit 6 without bit 0 is reserved
}

func (d *decoder) compound(dt *Datatype, version, depth int) {
	numMembers := int(dt.ClassBits & 0xFFFF)
	dt.Members = make([]CompoundMember, 0, numMembers)

	for i := 0; i < numMembers; i++ {
		var member CompoundMember
		member.Name = d.name(version)

		if version >= 3 {
			member.ByteOffset = uint32(d.uintN(memberOffsetSize(dt.Size)))
		} else {
			member.ByteOffset = d.u32()
		}

		// Version 1 stores an optional array shape per member.
		var dims []uint32
		if version == 1 {
			ndims := int(d.u8())
			d.skip(3) // reserved
			d.skip(4) // dimension permutation
			d.skip(4) // reserved
			all := make([]uint32, 4)
			for j := range all {
				all[j] = d.u32()
			}
			if ndims > 4 {
				thrower.Throw(fmt.Errorf("%w: member %q has %d dimensions", ErrMalformed, member.Name, ndims))
			}
			dims = all[:ndims]
		}

		member.Type = d.datatype(depth + 1)
		if len(dims) > 0 {
			member.Type = NewArrayDatatype(dims, member.Type)
		}

		if uint64(member.ByteOffset)+uint64(member.Type.Size) > uint64(dt.Size) {
			thrower.Throw(fmt.Errorf("%w: member %q at offset %d overruns compound of size %d",
				ErrMalformed, member.Name, member.ByteOffset, dt.Size))
		}
		dt.Members = append(dt.Members, member)
	}
}

func (d *decoder) enum(dt *Datatype, version, depth int) {
	numMembers := int(dt.ClassBits & 0xFFFF)
	dt.BaseType = d.datatype(depth + 1)
	if !dt.BaseType.IsInteger() {
		thrower.Throw(fmt.Errorf("%w: enum base class %d", ErrMalformed, dt.BaseType.Class))
	}
	dt.ByteOrder = dt.BaseType.ByteOrder

	dt.EnumNames = make([]string, numMembers)
	for i := range dt.EnumNames {
		dt.EnumNames[i] = d.name(version)
	}
	dt.EnumValues = make([][]byte, numMembers)
	for i := range dt.EnumValues {
		dt.EnumValues[i] = d.bytes(int(dt.BaseType.Size))
	}
}

func (d *decoder) array(dt *Datatype, version, depth int) {
	if version < 2 {
		thrower.Throw(fmt.Errorf("%w: array datatype version %d", ErrDatatypeVersion, version))
	}
	ndims := int(d.u8())
	if version == 2 {
		d.skip(3) // reserved
	}
	dt.ArrayDims = make([]uint32, ndims)
	for i := range dt.ArrayDims {
		dt.ArrayDims[i] = d.u32()
	}
	if version == 2 {
		d.skip(4 * ndims) // permutation indices, unused by HDF5
	}
	dt.BaseType = d.datatype(depth + 1)

	if uint64(dt.Size) != dt.NumElements()*uint64(dt.BaseType.Size) {
		thrower.Throw(fmt.Errorf("%w: array size %d does not match %d elements of size %d",
			ErrMalformed, dt.Size, dt.NumElements(), dt.BaseType.Size))
	}
}
