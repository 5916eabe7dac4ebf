// Package message encodes and decodes the HDF5 datatype header message.
//
// The datatype message (type 0x0003) describes the shape of a stored value:
// its class, size, byte order, precision and, for composite classes, its
// members or element type. [Datatype] is the in-memory form; [ParseDatatype]
// decodes it and [Datatype.Serialize] writes it back.
//
// # Datatype Classes
//
//   - ClassFixedPoint (0): Integers (signed/unsigned, various sizes)
//   - ClassFloatPoint (1): IEEE floating-point numbers
//   - ClassTime (2): Time values
//   - ClassString (3): Fixed-length strings
//   - ClassBitfield (4): Bit fields
//   - ClassOpaque (5): Opaque byte sequences with an optional tag
//   - ClassCompound (6): Structures with named members
//   - ClassReference (7): Object or region references
//   - ClassEnum (8): Enumerated values over an integer base
//   - ClassVarLen (9): Variable-length data
//   - ClassArray (10): Fixed-size arrays
//
// # Versions
//
// The decoder accepts compound versions 1 to 3 (version 1 carries a legacy
// array shape per member) and array versions 2 and 3. The encoder writes
// version 3 for compound, enum and array types so names are unpadded and
// member offsets use the fewest bytes that hold the compound size.
//
// # Byte Order
//
// Only fixed-point, floating-point, bitfield, time and enum types carry a
// byte order. Floating-point uses class bits 0 and 6 so it can also express
// VAX order. [Datatype.SetByteOrder] keeps ByteOrder and ClassBits
// consistent.
//
// # Errors
//
// Decoding failures are reported as errors wrapping [ErrUnknownClass],
// [ErrDatatypeVersion], [ErrMalformed] or io.ErrUnexpectedEOF. Malformed
// input never panics.
package message
