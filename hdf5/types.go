package hdf5

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/robert-malhotra/go-hdf5/internal/message"
)

// Class identifies the kind of a datatype.
type Class int

const (
	ClassInteger   = Class(message.ClassFixedPoint)
	ClassFloat     = Class(message.ClassFloatPoint)
	ClassTime      = Class(message.ClassTime)
	ClassString    = Class(message.ClassString)
	ClassBitfield  = Class(message.ClassBitfield)
	ClassOpaque    = Class(message.ClassOpaque)
	ClassCompound  = Class(message.ClassCompound)
	ClassReference = Class(message.ClassReference)
	ClassEnum      = Class(message.ClassEnum)
	ClassVarLen    = Class(message.ClassVarLen)
	ClassArray     = Class(message.ClassArray)
)

var classNames = map[Class]string{
	ClassInteger:   "integer",
	ClassFloat:     "float",
	ClassTime:      "time",
	ClassString:    "string",
	ClassBitfield:  "bitfield",
	ClassOpaque:    "opaque",
	ClassCompound:  "compound",
	ClassReference: "reference",
	ClassEnum:      "enum",
	ClassVarLen:    "vlen",
	ClassArray:     "array",
}

func (c Class) String() string {
	if s, ok := classNames[c]; ok {
		return s
	}
	return fmt.Sprintf("class(%d)", int(c))
}

// ByteOrder is the byte order of a datatype.
type ByteOrder int

const (
	OrderLE   = ByteOrder(message.OrderLE)
	OrderBE   = ByteOrder(message.OrderBE)
	OrderVAX  = ByteOrder(message.OrderVAX)
	OrderNone = ByteOrder(message.OrderNone)
)

// String returns "little", "big" or "non-relevant". Every other order,
// VAX included, is "unsupported".
func (o ByteOrder) String() string {
	switch o {
	case OrderLE:
		return "little"
	case OrderBE:
		return "big"
	case OrderNone:
		return "non-relevant"
	}
	return "unsupported"
}

// ParseByteOrder parses "little", "big" or "native", or the shorthands
// "<", ">" and "=".
func ParseByteOrder(s string) (ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "little", "<":
		return OrderLE, nil
	case "big", ">":
		return OrderBE, nil
	case "native", "=":
		return NativeOrder(), nil
	}
	return OrderNone, fmt.Errorf("%w: %q", ErrUnsupportedByteOrder, s)
}

// NativeOrder returns the byte order of the host.
func NativeOrder() ByteOrder {
	var b [2]byte
	binary.NativeEndian.PutUint16(b[:], 1)
	if b[0] == 1 {
		return OrderLE
	}
	return OrderBE
}
