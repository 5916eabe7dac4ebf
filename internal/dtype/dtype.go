// Package dtype maps HDF5 datatypes to Go types and converts complex values
// to and from their stored byte form.
package dtype

import (
	"encoding/binary"
	"errors"
	"fmt"
	"reflect"

	"github.com/robert-malhotra/go-hdf5/internal/message"
)

var (
	// ErrUnsupportedOrder is returned for byte orders the codec cannot handle.
	ErrUnsupportedOrder = errors.New("unsupported byte order")

	// ErrNotComplexRecord is returned when a datatype is not a complex compound.
	ErrNotComplexRecord = errors.New("datatype is not a complex record")
)

// Member names of the complex record layout.
const (
	RealName = "r"
	ImagName = "i"
)

// GoType returns the Go reflect.Type that corresponds to the given HDF5 datatype.
// Complex records map to complex64 or complex128.
func GoType(dt *message.Datatype) (reflect.Type, error) {
	if dt == nil {
		return nil, fmt.Errorf("nil datatype")
	}

	switch dt.Class {
	case message.ClassFixedPoint, message.ClassEnum:
		return goTypeFixedPoint(dt.Size, dt.Signed || (dt.BaseType != nil && dt.BaseType.Signed))
	case message.ClassBitfield:
		return goTypeFixedPoint(dt.Size, false)
	case message.ClassFloatPoint:
		return goTypeFloatPoint(dt)
	case message.ClassString:
		return reflect.TypeOf(""), nil
	case message.ClassOpaque:
		return reflect.TypeOf([]byte{}), nil
	case message.ClassCompound:
		if IsComplexRecord(dt) {
			return goTypeComplex(dt)
		}
		return goTypeCompound(dt)
	case message.ClassArray:
		return goTypeArray(dt)
	case message.ClassVarLen:
		if dt.IsVarLenString {
			return reflect.TypeOf(""), nil
		}
		if dt.VarLenType != nil {
			elemType, err := GoType(dt.VarLenType)
			if err != nil {
				return nil, err
			}
			return reflect.SliceOf(elemType), nil
		}
		return reflect.TypeOf([]byte{}), nil
	default:
		return nil, fmt.Errorf("unsupported datatype class: %d", dt.Class)
	}
}

// IsComplexRecord reports whether dt is a compound of exactly two
// floating-point members named "r" and "i".
func IsComplexRecord(dt *message.Datatype) bool {
	if dt == nil || dt.Class != message.ClassCompound || len(dt.Members) != 2 {
		return false
	}
	return dt.Members[0].Name == RealName && dt.Members[1].Name == ImagName &&
		dt.Members[0].Type.IsFloat() && dt.Members[1].Type.IsFloat()
}

func goTypeFixedPoint(size uint32, signed bool) (reflect.Type, error) {
	switch size {
	case 1:
		if signed {
			return reflect.TypeOf(int8(0)), nil
		}
		return reflect.TypeOf(uint8(0)), nil
	case 2:
		if signed {
			return reflect.TypeOf(int16(0)), nil
		}
		return reflect.TypeOf(uint16(0)), nil
	case 4:
		if signed {
			return reflect.TypeOf(int32(0)), nil
		}
		return reflect.TypeOf(uint32(0)), nil
	case 8:
		if signed {
			return reflect.TypeOf(int64(0)), nil
		}
		return reflect.TypeOf(uint64(0)), nil
	default:
		return nil, fmt.Errorf("unsupported fixed-point size: %d", size)
	}
}

func goTypeFloatPoint(dt *message.Datatype) (reflect.Type, error) {
	switch dt.Size {
	case 4:
		return reflect.TypeOf(float32(0)), nil
	case 8:
		return reflect.TypeOf(float64(0)), nil
	default:
		return nil, fmt.Errorf("unsupported float size: %d", dt.Size)
	}
}

func goTypeComplex(dt *message.Datatype) (reflect.Type, error) {
	switch dt.Members[0].Type.Size {
	case 4:
		return reflect.TypeOf(complex64(0)), nil
	case 8:
		return reflect.TypeOf(complex128(0)), nil
	default:
		return nil, fmt.Errorf("unsupported complex component size: %d", dt.Members[0].Type.Size)
	}
}

func goTypeCompound(dt *message.Datatype) (reflect.Type, error) {
	if len(dt.Members) == 0 {
		return nil, fmt.Errorf("compound type has no members")
	}

	fields := make([]reflect.StructField, len(dt.Members))
	for i, member := range dt.Members {
		memberType, err := GoType(member.Type)
		if err != nil {
			return nil, fmt.Errorf("compound member %q: %w", member.Name, err)
		}
		fields[i] = reflect.StructField{
			Name: exportName(member.Name),
			Type: memberType,
		}
	}

	return reflect.StructOf(fields), nil
}

func goTypeArray(dt *message.Datatype) (reflect.Type, error) {
	if dt.BaseType == nil {
		return nil, fmt.Errorf("array type has no base type")
	}
	if len(dt.ArrayDims) == 0 {
		return nil, fmt.Errorf("array type has no dimensions")
	}

	elemType, err := GoType(dt.BaseType)
	if err != nil {
		return nil, err
	}

	// Innermost dimension last.
	result := elemType
	for i := len(dt.ArrayDims) - 1; i >= 0; i-- {
		result = reflect.ArrayOf(int(dt.ArrayDims[i]), result)
	}

	return result, nil
}

// exportName converts an HDF5 member name to a valid exported Go field name.
func exportName(name string) string {
	if len(name) == 0 {
		return "Field"
	}

	runes := []rune(name)
	if runes[0] >= 'a' && runes[0] <= 'z' {
		runes[0] = runes[0] - 'a' + 'A'
	}
	for i, r := range runes {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '_') {
			runes[i] = '_'
		}
	}

	return string(runes)
}

// ByteOrder returns the binary.ByteOrder for the datatype. Complex records
// use the order of their real member. VAX and non-orderable types are
// ErrUnsupportedOrder.
func ByteOrder(dt *message.Datatype) (binary.ByteOrder, error) {
	if IsComplexRecord(dt) {
		dt = dt.Members[0].Type
	}
	return Order(dt.Order())
}

// Order converts a datatype byte order to a binary.ByteOrder.
func Order(o message.ByteOrder) (binary.ByteOrder, error) {
	switch o {
	case message.OrderLE:
		return binary.LittleEndian, nil
	case message.OrderBE:
		return binary.BigEndian, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnsupportedOrder, o)
}
