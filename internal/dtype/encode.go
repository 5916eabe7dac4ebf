package dtype

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"

	"github.com/robert-malhotra/go-hdf5/internal/message"
)

// EncodeComplex64 lays out values as consecutive [real][imag] float32 pairs.
func EncodeComplex64(values []complex64, order binary.ByteOrder) []byte {
	data := make([]byte, len(values)*8)
	for i, v := range values {
		off := i * 8
		order.PutUint32(data[off:], math.Float32bits(real(v)))
		order.PutUint32(data[off+4:], math.Float32bits(imag(v)))
	}
	return data
}

// EncodeComplex128 lays out values as consecutive [real][imag] float64 pairs.
func EncodeComplex128(values []complex128, order binary.ByteOrder) []byte {
	data := make([]byte, len(values)*16)
	for i, v := range values {
		off := i * 16
		order.PutUint64(data[off:], math.Float64bits(real(v)))
		order.PutUint64(data[off+8:], math.Float64bits(imag(v)))
	}
	return data
}

// Encode converts Go complex values to raw bytes for a complex record
// datatype. src may be a complex64 or complex128 scalar, slice or array;
// precision is converted to the datatype's component width.
func Encode(dt *message.Datatype, src interface{}) ([]byte, error) {
	if !IsComplexRecord(dt) {
		return nil, ErrNotComplexRecord
	}
	order, err := ByteOrder(dt)
	if err != nil {
		return nil, err
	}

	srcVal := reflect.ValueOf(src)
	if srcVal.Kind() == reflect.Ptr {
		srcVal = srcVal.Elem()
	}

	var values []complex128
	switch srcVal.Kind() {
	case reflect.Complex64, reflect.Complex128:
		values = []complex128{srcVal.Complex()}
	case reflect.Slice, reflect.Array:
		values = make([]complex128, srcVal.Len())
		for i := range values {
			elem := srcVal.Index(i)
			switch elem.Kind() {
			case reflect.Complex64, reflect.Complex128:
				values[i] = elem.Complex()
			default:
				return nil, fmt.Errorf("cannot encode %v as complex", elem.Kind())
			}
		}
	default:
		return nil, fmt.Errorf("cannot encode %v as complex", srcVal.Kind())
	}

	switch dt.Members[0].Type.Size {
	case 4:
		narrow := make([]complex64, len(values))
		for i, v := range values {
			narrow[i] = complex64(v)
		}
		return EncodeComplex64(narrow, order), nil
	case 8:
		return EncodeComplex128(values, order), nil
	default:
		return nil, fmt.Errorf("unsupported complex component size: %d", dt.Members[0].Type.Size)
	}
}

// ComplexRecord builds the compound layout of a complex number with float
// components of the given width.
func ComplexRecord(width uint32, order message.ByteOrder) *message.Datatype {
	return message.NewCompoundDatatype(2*width, []message.CompoundMember{
		{Name: RealName, ByteOffset: 0, Type: message.NewFloatDatatype(width, order)},
		{Name: ImagName, ByteOffset: width, Type: message.NewFloatDatatype(width, order)},
	})
}
