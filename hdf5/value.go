package hdf5

import (
	"github.com/robert-malhotra/go-hdf5/internal/dtype"
	"github.com/robert-malhotra/go-hdf5/internal/message"
)

// EncodeComplex lays out values as [real][imag] records matching the
// complex descriptor d. values may be []complex64 or []complex128; parts
// are converted to d's width.
func EncodeComplex(d Descriptor, values any) ([]byte, error) {
	rec, err := complexRecord(d)
	if err != nil {
		return nil, err
	}
	return dtype.Encode(rec, values)
}

// DecodeComplex reads [real][imag] records matching the complex descriptor d.
func DecodeComplex(d Descriptor, data []byte) ([]complex128, error) {
	rec, err := complexRecord(d)
	if err != nil {
		return nil, err
	}
	return dtype.Convert(rec, data)
}

// complexRecord returns the single-record layout of a complex descriptor.
func complexRecord(d Descriptor) (*message.Datatype, error) {
	w, err := ComplexWidth(d)
	if err != nil {
		return nil, err
	}
	o, err := GetOrder(d)
	if err != nil {
		return nil, err
	}
	return dtype.ComplexRecord(uint32(w), message.ByteOrder(o)), nil
}
