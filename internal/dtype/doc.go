// Package dtype maps HDF5 datatypes to Go types and converts complex values.
//
// # Type Mapping
//
//	HDF5 Class        | Go Type
//	------------------|------------------
//	Fixed-point (int) | int8/16/32/64 or uint8/16/32/64 based on size and signedness
//	Floating-point    | float32 (4 bytes) or float64 (8 bytes)
//	Complex record    | complex64 (4-byte parts) or complex128 (8-byte parts)
//	String            | string
//	Compound          | struct with exported member names
//	Array             | fixed-size Go array of the element type
//	Enum              | underlying integer type
//	Bitfield          | unsigned integer type
//	Opaque            | []byte
//
// A complex record is a compound of exactly two floating-point members
// named "r" and "i", stored as [real][imag] in the real member's byte order.
//
// # Values
//
// [EncodeComplex64], [EncodeComplex128], [DecodeComplex64] and
// [DecodeComplex128] work on raw bytes for a given byte order. [Encode] and
// [Convert] do the same against a complex record datatype.
package dtype
