package dtype

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/robert-malhotra/go-hdf5/internal/message"
)

// DecodeComplex64 reads consecutive [real][imag] float32 pairs.
func DecodeComplex64(data []byte, order binary.ByteOrder) ([]complex64, error) {
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("complex64 data length %d is not a multiple of 8", len(data))
	}
	values := make([]complex64, len(data)/8)
	for i := range values {
		off := i * 8
		values[i] = complex(
			math.Float32frombits(order.Uint32(data[off:])),
			math.Float32frombits(order.Uint32(data[off+4:])),
		)
	}
	return values, nil
}

// DecodeComplex128 reads consecutive [real][imag] float64 pairs.
func DecodeComplex128(data []byte, order binary.ByteOrder) ([]complex128, error) {
	if len(data)%16 != 0 {
		return nil, fmt.Errorf("complex128 data length %d is not a multiple of 16", len(data))
	}
	values := make([]complex128, len(data)/16)
	for i := range values {
		off := i * 16
		values[i] = complex(
			math.Float64frombits(order.Uint64(data[off:])),
			math.Float64frombits(order.Uint64(data[off+8:])),
		)
	}
	return values, nil
}

// Convert decodes raw bytes of a complex record datatype. Single precision
// components are widened to complex128.
func Convert(dt *message.Datatype, data []byte) ([]complex128, error) {
	if !IsComplexRecord(dt) {
		return nil, ErrNotComplexRecord
	}
	order, err := ByteOrder(dt)
	if err != nil {
		return nil, err
	}

	switch dt.Members[0].Type.Size {
	case 4:
		narrow, err := DecodeComplex64(data, order)
		if err != nil {
			return nil, err
		}
		values := make([]complex128, len(narrow))
		for i, v := range narrow {
			values[i] = complex128(v)
		}
		return values, nil
	case 8:
		return DecodeComplex128(data, order)
	default:
		return nil, fmt.Errorf("unsupported complex component size: %d", dt.Members[0].Type.Size)
	}
}
