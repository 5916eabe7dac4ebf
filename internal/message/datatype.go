package message

import (
	"errors"
	"fmt"
)

// DatatypeClass represents the class of an HDF5 datatype.
type DatatypeClass uint8

const (
	ClassFixedPoint DatatypeClass = 0  // Integers
	ClassFloatPoint DatatypeClass = 1  // Floating-point
	ClassTime       DatatypeClass = 2  // Time (rarely used)
	ClassString     DatatypeClass = 3  // Strings
	ClassBitfield   DatatypeClass = 4  // Bitfields
	ClassOpaque     DatatypeClass = 5  // Opaque data
	ClassCompound   DatatypeClass = 6  // Compound types (structs)
	ClassReference  DatatypeClass = 7  // References to objects/regions
	ClassEnum       DatatypeClass = 8  // Enumerated types
	ClassVarLen     DatatypeClass = 9  // Variable-length data
	ClassArray      DatatypeClass = 10 // Fixed-size arrays
)

// ByteOrder represents the byte order of numeric types.
type ByteOrder uint8

const (
	OrderLE   ByteOrder = 0 // Little-endian
	OrderBE   ByteOrder = 1 // Big-endian
	OrderVAX  ByteOrder = 2 // VAX mixed-endian, floating-point only
	OrderNone ByteOrder = 3 // Not applicable
)

// StringPadding represents how strings are padded.
type StringPadding uint8

const (
	PadNullTerm StringPadding = 0 // Null-terminated
	PadNullPad  StringPadding = 1 // Null-padded
	PadSpacePad StringPadding = 2 // Space-padded
)

// CharacterSet represents the character encoding.
type CharacterSet uint8

const (
	CharsetASCII CharacterSet = 0
	CharsetUTF8  CharacterSet = 1
)

var (
	// ErrOrderNotApplicable is returned when setting a byte order on a class
	// that has none (strings, compounds, arrays, ...).
	ErrOrderNotApplicable = errors.New("byte order not applicable to datatype class")

	// ErrInvalidOrder is returned for byte orders a class cannot carry.
	ErrInvalidOrder = errors.New("invalid byte order for datatype class")
)

// Datatype represents a datatype message (type 0x0003).
type Datatype struct {
	Class     DatatypeClass
	ClassBits uint32 // Class-specific bit field; member counts are derived from Members
	Size      uint32

	// Fixed-point, floating-point, bitfield and time
	ByteOrder    ByteOrder
	BitOffset    uint16
	BitPrecision uint16
	Signed       bool

	// Floating-point bit layout
	ExpLocation  uint8
	ExpSize      uint8
	MantLocation uint8
	MantSize     uint8
	ExpBias      uint32

	// String specific
	StringPadding StringPadding
	CharSet       CharacterSet

	// Compound specific
	Members []CompoundMember

	// Array specific; BaseType is also the base of an enum
	ArrayDims []uint32
	BaseType  *Datatype

	// Enum specific; each value is BaseType.Size bytes
	EnumNames  []string
	EnumValues [][]byte

	// Opaque specific
	OpaqueTag string

	// VarLen specific
	VarLenType     *Datatype
	IsVarLenString bool
}

// CompoundMember represents a member of a compound datatype.
type CompoundMember struct {
	Name       string
	ByteOffset uint32
	Type       *Datatype
}

// IsInteger returns true if this is an integer type.
func (m *Datatype) IsInteger() bool {
	return m.Class == ClassFixedPoint
}

// IsFloat returns true if this is a floating-point type.
func (m *Datatype) IsFloat() bool {
	return m.Class == ClassFloatPoint
}

// IsString returns true if this is a string type (fixed or variable-length).
func (m *Datatype) IsString() bool {
	return m.Class == ClassString || (m.Class == ClassVarLen && m.IsVarLenString)
}

// IsCompound returns true if this is a compound type.
func (m *Datatype) IsCompound() bool {
	return m.Class == ClassCompound
}

// IsArray returns true if this is an array type.
func (m *Datatype) IsArray() bool {
	return m.Class == ClassArray
}

// IsVarLen returns true if this is a variable-length type.
func (m *Datatype) IsVarLen() bool {
	return m.Class == ClassVarLen
}

// HasOrder reports whether the class carries its own byte order. Enums
// carry the order of their base type.
func (m *Datatype) HasOrder() bool {
	switch m.Class {
	case ClassFixedPoint, ClassFloatPoint, ClassBitfield, ClassTime, ClassEnum:
		return true
	}
	return false
}

// Order returns the byte order of the datatype, or OrderNone for classes
// without one.
func (m *Datatype) Order() ByteOrder {
	if !m.HasOrder() {
		return OrderNone
	}
	if m.Class == ClassEnum {
		if m.BaseType == nil {
			return OrderNone
		}
		return m.BaseType.Order()
	}
	return m.ByteOrder
}

// SetByteOrder changes the byte order, keeping ClassBits in step.
func (m *Datatype) SetByteOrder(order ByteOrder) error {
	switch m.Class {
	case ClassFixedPoint, ClassBitfield, ClassTime:
		if order != OrderLE && order != OrderBE {
			return fmt.Errorf("%w: %d for class %d", ErrInvalidOrder, order, m.Class)
		}
		m.ClassBits = (m.ClassBits &^ 0x01) | uint32(order)
	case ClassFloatPoint:
		// Bits 0 and 6 together: 00 little, 01 big, 11 VAX.
		bits := m.ClassBits &^ (0x01 | 0x40)
		switch order {
		case OrderLE:
		case OrderBE:
			bits |= 0x01
		case OrderVAX:
			bits |= 0x01 | 0x40
		default:
			return fmt.Errorf("%w: %d for class %d", ErrInvalidOrder, order, m.Class)
		}
		m.ClassBits = bits
	case ClassEnum:
		if m.BaseType == nil {
			return fmt.Errorf("%w: enum has no base type", ErrOrderNotApplicable)
		}
		old := m.BaseType.ByteOrder
		if err := m.BaseType.SetByteOrder(order); err != nil {
			return err
		}
		// Member values are stored in the base type's order.
		if old != order {
			for _, v := range m.EnumValues {
				for i, j := 0, len(v)-1; i < j; i, j = i+1, j-1 {
					v[i], v[j] = v[j], v[i]
				}
			}
		}
	default:
		return fmt.Errorf("%w: class %d", ErrOrderNotApplicable, m.Class)
	}
	m.ByteOrder = order
	return nil
}

// Precision returns the number of significant bits for atomic numeric
// classes, or 0 for everything else.
func (m *Datatype) Precision() int {
	switch m.Class {
	case ClassFixedPoint, ClassFloatPoint, ClassBitfield, ClassTime:
		return int(m.BitPrecision)
	case ClassEnum:
		if m.BaseType != nil {
			return m.BaseType.Precision()
		}
	}
	return 0
}

// Member returns the index of the member with the given name, or -1.
func (m *Datatype) Member(name string) int {
	for i, member := range m.Members {
		if member.Name == name {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the datatype.
func (m *Datatype) Clone() *Datatype {
	if m == nil {
		return nil
	}
	c := *m
	if m.Members != nil {
		c.Members = make([]CompoundMember, len(m.Members))
		for i, member := range m.Members {
			c.Members[i] = CompoundMember{
				Name:       member.Name,
				ByteOffset: member.ByteOffset,
				Type:       member.Type.Clone(),
			}
		}
	}
	if m.ArrayDims != nil {
		c.ArrayDims = append([]uint32(nil), m.ArrayDims...)
	}
	if m.EnumNames != nil {
		c.EnumNames = append([]string(nil), m.EnumNames...)
	}
	if m.EnumValues != nil {
		c.EnumValues = make([][]byte, len(m.EnumValues))
		for i, v := range m.EnumValues {
			c.EnumValues[i] = append([]byte(nil), v...)
		}
	}
	c.BaseType = m.BaseType.Clone()
	c.VarLenType = m.VarLenType.Clone()
	return &c
}

// NumElements returns the number of base elements in an array datatype.
func (m *Datatype) NumElements() uint64 {
	n := uint64(1)
	for _, d := range m.ArrayDims {
		n *= uint64(d)
	}
	return n
}
