package message

import (
	"github.com/robert-malhotra/go-hdf5/internal/binary"
)

// Version returns the datatype message version Serialize writes. Compound,
// enum and array types use version 3 (unpadded names, compact member
// offsets, no array permutation). VAX floats also require version 3.
func (m *Datatype) Version() uint8 {
	switch m.Class {
	case ClassCompound, ClassEnum, ClassArray:
		return 3
	case ClassFloatPoint:
		if m.ByteOrder == OrderVAX {
			return 3
		}
	}
	return 1
}

// classBits returns the class bit field with member counts derived from the
// current members.
func (m *Datatype) classBits() uint32 {
	switch m.Class {
	case ClassCompound:
		return (m.ClassBits &^ 0xFFFF) | uint32(len(m.Members))
	case ClassEnum:
		return (m.ClassBits &^ 0xFFFF) | uint32(len(m.EnumNames))
	case ClassOpaque:
		return (m.ClassBits &^ 0xFF) | uint32(opaqueTagSize(m.OpaqueTag))
	}
	return m.ClassBits
}

// Serialize writes the Datatype to the writer.
func (m *Datatype) Serialize(w *binary.Writer) error {
	// Datatype message format:
	// Byte 0: Class (lower 4 bits) + Version (upper 4 bits)
	// Bytes 1-3: Class-specific bit fields (24 bits)
	// Bytes 4-7: Size (32 bits)
	// Bytes 8+: Class-specific properties
	classAndVersion := uint8(m.Class) | (m.Version() << 4)
	if err := w.WriteUint8(classAndVersion); err != nil {
		return err
	}
	if err := w.WriteUintN(uint64(m.classBits()), 3); err != nil {
		return err
	}
	if err := w.WriteUint32(m.Size); err != nil {
		return err
	}

	switch m.Class {
	case ClassFixedPoint, ClassBitfield:
		if err := w.WriteUint16(m.BitOffset); err != nil {
			return err
		}
		return w.WriteUint16(m.BitPrecision)

	case ClassFloatPoint:
		return writeFloatProperties(w, m)

	case ClassTime:
		return w.WriteUint16(m.BitPrecision)

	case ClassString, ClassReference:
		// No properties

	case ClassOpaque:
		tag := make([]byte, opaqueTagSize(m.OpaqueTag))
		copy(tag, m.OpaqueTag)
		return w.WriteBytes(tag)

	case ClassCompound:
		for i := range m.Members {
			if err := writeCompoundMember(w, &m.Members[i], m.Size); err != nil {
				return err
			}
		}

	case ClassEnum:
		if err := m.BaseType.Serialize(w); err != nil {
			return err
		}
		for _, name := range m.EnumNames {
			if err := w.WriteCString(name); err != nil {
				return err
			}
		}
		for _, v := range m.EnumValues {
			if err := w.WriteBytes(v); err != nil {
				return err
			}
		}

	case ClassArray:
		if err := w.WriteUint8(uint8(len(m.ArrayDims))); err != nil {
			return err
		}
		for _, dim := range m.ArrayDims {
			if err := w.WriteUint32(dim); err != nil {
				return err
			}
		}
		return m.BaseType.Serialize(w)

	case ClassVarLen:
		return m.VarLenType.Serialize(w)
	}

	return nil
}

// SerializedSize returns the size in bytes when serialized.
func (m *Datatype) SerializedSize() int {
	// Header: 8 bytes (class+version, class bits, size)
	size := 8

	switch m.Class {
	case ClassFixedPoint, ClassBitfield:
		size += 4 // bit offset + bit precision
	case ClassFloatPoint:
		size += 12
	case ClassTime:
		size += 2
	case ClassOpaque:
		size += opaqueTagSize(m.OpaqueTag)
	case ClassCompound:
		for i := range m.Members {
			size += compoundMemberSize(&m.Members[i], m.Size)
		}
	case ClassEnum:
		size += m.BaseType.SerializedSize()
		for i, name := range m.EnumNames {
			size += len(name) + 1 + len(m.EnumValues[i])
		}
	case ClassArray:
		size += 1 + len(m.ArrayDims)*4
		size += m.BaseType.SerializedSize()
	case ClassVarLen:
		size += m.VarLenType.SerializedSize()
	}

	return size
}

// Encode serializes the datatype into a new byte slice.
func (m *Datatype) Encode() ([]byte, error) {
	buf := binary.NewBuffer(m.SerializedSize())
	if err := m.Serialize(binary.NewWriter(buf, binary.DefaultConfig())); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeFloatProperties writes the 12-byte floating-point property block.
// Format: bit_offset(2) + bit_precision(2) + exp_loc(1) + exp_size(1) + mant_loc(1) + mant_size(1) + exp_bias(4)
func writeFloatProperties(w *binary.Writer, m *Datatype) error {
	if err := w.WriteUint16(m.BitOffset); err != nil {
		return err
	}
	if err := w.WriteUint16(m.BitPrecision); err != nil {
		return err
	}
	for _, b := range []uint8{m.ExpLocation, m.ExpSize, m.MantLocation, m.MantSize} {
		if err := w.WriteUint8(b); err != nil {
			return err
		}
	}
	return w.WriteUint32(m.ExpBias)
}

// writeCompoundMember writes a version 3 compound member definition.
func writeCompoundMember(w *binary.Writer, member *CompoundMember, compoundSize uint32) error {
	if err := w.WriteCString(member.Name); err != nil {
		return err
	}
	if err := w.WriteUintN(uint64(member.ByteOffset), memberOffsetSize(compoundSize)); err != nil {
		return err
	}
	return member.Type.Serialize(w)
}

// compoundMemberSize calculates the serialized size of a compound member.
func compoundMemberSize(member *CompoundMember, compoundSize uint32) int {
	size := len(member.Name) + 1 // name + null
	size += memberOffsetSize(compoundSize)
	size += member.Type.SerializedSize()
	return size
}

// memberOffsetSize returns the width of a version 3 member offset: the
// fewest bytes that can hold the compound size.
func memberOffsetSize(compoundSize uint32) int {
	switch {
	case compoundSize < 1<<8:
		return 1
	case compoundSize < 1<<16:
		return 2
	case compoundSize < 1<<24:
		return 3
	}
	return 4
}

// opaqueTagSize is the tag length including a terminator, padded to eight.
func opaqueTagSize(tag string) int {
	if tag == "" {
		return 0
	}
	n := len(tag) + 1
	if rem := n % 8; rem != 0 {
		n += 8 - rem
	}
	return n
}

// NewFixedPointDatatype creates a new fixed-point (integer) datatype.
func NewFixedPointDatatype(size uint32, signed bool, byteOrder ByteOrder) *Datatype {
	classBits := uint32(byteOrder)
	if signed {
		classBits |= 0x08 // Signed flag
	}

	return &Datatype{
		Class:        ClassFixedPoint,
		ClassBits:    classBits,
		Size:         size,
		ByteOrder:    byteOrder,
		BitOffset:    0,
		BitPrecision: uint16(size * 8),
		Signed:       signed,
	}
}

// NewFloatDatatype creates a new IEEE 754 floating-point datatype of 4 or 8
// bytes. Other sizes get a zeroed bit layout.
func NewFloatDatatype(size uint32, byteOrder ByteOrder) *Datatype {
	// ClassBits for floating-point (matches h5py encoding):
	// Byte 0 (bits 0-7):
	//   - Bits 0 and 6: Byte order (00=LE, 01=BE, 11=VAX)
	//   - Bit 5: Mantissa normalization (1=always set MSB)
	// Byte 1 (bits 8-15): Sign location (bit position of sign bit)
	dt := &Datatype{
		Class:        ClassFloatPoint,
		Size:         size,
		BitPrecision: uint16(size * 8),
	}

	var signLocation uint32
	switch size {
	case 4:
		signLocation = 31
		dt.ExpLocation, dt.ExpSize = 23, 8
		dt.MantLocation, dt.MantSize = 0, 23
		dt.ExpBias = 127
	case 8:
		signLocation = 63
		dt.ExpLocation, dt.ExpSize = 52, 11
		dt.MantLocation, dt.MantSize = 0, 52
		dt.ExpBias = 1023
	}

	dt.ClassBits = (1 << 5) | (signLocation << 8)
	if err := dt.SetByteOrder(byteOrder); err != nil {
		// OrderNone is meaningless for a float; fall back to little-endian.
		dt.SetByteOrder(OrderLE)
	}
	return dt
}

// NewTimeDatatype creates a new time datatype with the given bit precision.
func NewTimeDatatype(precision uint16, byteOrder ByteOrder) *Datatype {
	return &Datatype{
		Class:        ClassTime,
		ClassBits:    uint32(byteOrder & 0x01),
		Size:         uint32(precision+7) / 8,
		ByteOrder:    byteOrder & 0x01,
		BitPrecision: precision,
	}
}

// NewBitfieldDatatype creates a new bitfield datatype.
func NewBitfieldDatatype(size uint32, byteOrder ByteOrder) *Datatype {
	return &Datatype{
		Class:        ClassBitfield,
		ClassBits:    uint32(byteOrder & 0x01),
		Size:         size,
		ByteOrder:    byteOrder & 0x01,
		BitPrecision: uint16(size * 8),
	}
}

// NewStringDatatype creates a new fixed-length string datatype.
func NewStringDatatype(size uint32, padding StringPadding, charset CharacterSet) *Datatype {
	classBits := uint32(padding) | (uint32(charset) << 4)

	return &Datatype{
		Class:         ClassString,
		ClassBits:     classBits,
		Size:          size,
		StringPadding: padding,
		CharSet:       charset,
	}
}

// NewVarLenStringDatatype creates a new variable-length string datatype.
func NewVarLenStringDatatype(charset CharacterSet) *Datatype {
	// VarLen string: type=1 (string), padding=nullterm, charset
	classBits := uint32(1) | (uint32(charset) << 8)

	// Base type for var-len string is a 1-byte fixed string
	baseType := NewStringDatatype(1, PadNullTerm, charset)

	return &Datatype{
		Class:          ClassVarLen,
		ClassBits:      classBits,
		Size:           16, // hvl_t structure size (typically 16 bytes)
		CharSet:        charset,
		VarLenType:     baseType,
		IsVarLenString: true,
	}
}

// NewOpaqueDatatype creates a new opaque datatype with an optional tag.
func NewOpaqueDatatype(size uint32, tag string) *Datatype {
	return &Datatype{
		Class:     ClassOpaque,
		Size:      size,
		OpaqueTag: tag,
	}
}

// NewCompoundDatatype creates a new compound datatype.
func NewCompoundDatatype(size uint32, members []CompoundMember) *Datatype {
	return &Datatype{
		Class:     ClassCompound,
		ClassBits: uint32(len(members)),
		Size:      size,
		Members:   members,
	}
}

// NewArrayDatatype creates a new array datatype.
func NewArrayDatatype(dims []uint32, baseType *Datatype) *Datatype {
	dt := &Datatype{
		Class:     ClassArray,
		ArrayDims: dims,
		BaseType:  baseType,
	}
	dt.Size = uint32(dt.NumElements()) * baseType.Size
	return dt
}

// NewEnumDatatype creates a new enumeration over an integer base type. Each
// value must be baseType.Size bytes in the base type's byte order.
func NewEnumDatatype(baseType *Datatype, names []string, values [][]byte) *Datatype {
	return &Datatype{
		Class:      ClassEnum,
		ClassBits:  uint32(len(names)),
		Size:       baseType.Size,
		ByteOrder:  baseType.ByteOrder,
		BaseType:   baseType,
		EnumNames:  names,
		EnumValues: values,
	}
}
