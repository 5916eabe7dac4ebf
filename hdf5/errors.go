// Package hdf5 describes HDF5 datatypes through scoped handles and implements
// the complex-number compound convention on top of them.
package hdf5

import "errors"

// Common errors
var (
	ErrUnsupportedByteOrder = errors.New("unsupported byte order")
	ErrComplexOrder         = errors.New("byte order of a complex type is fixed at construction")
	ErrNotComplex           = errors.New("datatype is not complex")
	ErrInvalidWidth         = errors.New("invalid complex width")
	ErrInvalidHandle        = errors.New("invalid or closed datatype handle")
	ErrClosed               = errors.New("table is closed")
	ErrNotCompound          = errors.New("datatype is not a compound")
	ErrNotArray             = errors.New("datatype has no base type")
	ErrMemberIndex          = errors.New("member index out of range")
	ErrDuplicateMember      = errors.New("duplicate member name")
	ErrForeignHandle        = errors.New("handle belongs to another table")
	ErrOverlap              = errors.New("member does not fit in compound")
	ErrUnsupported          = errors.New("unsupported feature")
)
