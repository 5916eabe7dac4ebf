package hdf5

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Complex numbers are stored as a compound of two floating-point members
// named "r" and "i", real part first, both in the same byte order. An array
// whose element type is complex is itself complex. Any other compound that
// happens to use these member names is also treated as complex; there is no
// stronger tag in the stored format.

// Member names of a complex compound.
const (
	RealMember = "r"
	ImagMember = "i"
)

// Width is the byte width of each part of a complex number.
type Width int

const (
	Complex32 Width = 4 // two float32 parts
	Complex64 Width = 8 // two float64 parts
)

func (w Width) String() string {
	switch w {
	case Complex32:
		return "Complex32"
	case Complex64:
		return "Complex64"
	}
	return fmt.Sprintf("Width(%d)", int(w))
}

// Bits returns the precision of one part in bits.
func (w Width) Bits() int {
	return int(w) * 8
}

// ParseWidth accepts a part width in bytes (4 or 8) or a width name.
func ParseWidth(s string) (Width, error) {
	switch s {
	case "4", "Complex32", "complex32":
		return Complex32, nil
	case "8", "Complex64", "complex64":
		return Complex64, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidWidth, s)
}

func (w Width) valid() error {
	if w != Complex32 && w != Complex64 {
		return fmt.Errorf("%w: %d", ErrInvalidWidth, int(w))
	}
	return nil
}

// IsComplex reports whether d follows the complex convention. A descriptor
// that cannot be inspected is not complex.
func IsComplex(d Descriptor) bool {
	ok, err := isComplex(d)
	if err != nil {
		Logger().Debug("datatype not classifiable as complex", zap.Error(err))
		return false
	}
	return ok
}

func isComplex(d Descriptor) (ok bool, err error) {
	class, err := d.Class()
	if err != nil {
		return false, err
	}
	switch class {
	case ClassCompound:
		return isComplexCompound(d)
	case ClassArray:
		var base Descriptor
		if base, err = d.Super(); err != nil {
			return false, err
		}
		defer release(base, &err)
		return isComplex(base)
	}
	return false, nil
}

func isComplexCompound(d Descriptor) (bool, error) {
	n, err := d.NumMembers()
	if err != nil || n != 2 {
		return false, err
	}
	for i, name := range [...]string{RealMember, ImagMember} {
		ok, err := isFloatMember(d, i, name)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func isFloatMember(d Descriptor, i int, want string) (ok bool, err error) {
	name, err := d.MemberName(i)
	if err != nil || name != want {
		return false, err
	}
	m, err := d.MemberType(i)
	if err != nil {
		return false, err
	}
	defer release(m, &err)
	class, err := m.Class()
	return class == ClassFloat, err
}

// realPart returns a new handle on the real member of a complex descriptor,
// looking through array wrappers.
func realPart(d Descriptor) (r Descriptor, err error) {
	class, err := d.Class()
	if err != nil {
		return nil, err
	}
	if class != ClassArray {
		return d.MemberType(0)
	}

	base, err := d.Super()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil && r != nil {
			err = multierr.Append(err, r.Close())
			r = nil
		}
	}()
	defer release(base, &err)
	return realPart(base)
}

// GetOrder returns the byte order of d. A complex descriptor reports the
// order of its real member. Orders other than little, big and non-relevant
// are returned along with ErrUnsupportedByteOrder.
func GetOrder(d Descriptor) (ByteOrder, error) {
	o, err := resolveOrder(d)
	if err != nil {
		return OrderNone, err
	}
	switch o {
	case OrderLE, OrderBE, OrderNone:
		return o, nil
	}
	Logger().Warn("unsupported byte order", zap.Int("order", int(o)))
	return o, fmt.Errorf("%w: %d", ErrUnsupportedByteOrder, int(o))
}

func resolveOrder(d Descriptor) (o ByteOrder, err error) {
	ok, err := isComplex(d)
	if err != nil {
		return OrderNone, err
	}
	if !ok {
		return d.Order()
	}
	r, err := realPart(d)
	if err != nil {
		return OrderNone, err
	}
	defer release(r, &err)
	return r.Order()
}

// SetOrder sets the byte order of a non-complex atomic descriptor to little
// or big endian. The order of a complex type is chosen when it is created,
// so complex descriptors return ErrComplexOrder.
func SetOrder(d Descriptor, o ByteOrder) error {
	ok, err := isComplex(d)
	if err != nil {
		return err
	}
	if ok {
		return ErrComplexOrder
	}
	if o != OrderLE && o != OrderBE {
		return fmt.Errorf("%w: %s (%d)", ErrUnsupportedByteOrder, o, int(o))
	}
	return d.SetOrder(o)
}

// CreateComplex builds a complex compound with parts of width w in byte
// order o. The caller owns the returned handle.
func CreateComplex(t *Table, w Width, o ByteOrder) (c *Type, err error) {
	if err := w.valid(); err != nil {
		return nil, err
	}

	var base *Type
	defer func() {
		if base != nil {
			err = multierr.Append(err, base.Close())
		}
		if err != nil && c != nil {
			err = multierr.Append(err, c.Close())
			c = nil
		}
	}()

	if base, err = t.NativeFloat(int(w)); err != nil {
		return nil, err
	}
	// The part order must be set before the parts are inserted.
	if err = SetOrder(base, o); err != nil {
		return nil, err
	}
	if c, err = t.CreateCompound(2 * int(w)); err != nil {
		return nil, err
	}
	if err = c.Insert(RealMember, 0, base); err != nil {
		return nil, err
	}
	if err = c.Insert(ImagMember, int(w), base); err != nil {
		return nil, err
	}
	return c, nil
}

// ComplexPrecision returns the precision in bits of the real part of a
// complex descriptor, looking through array wrappers. Other descriptors
// return ErrNotComplex.
func ComplexPrecision(d Descriptor) (bits int, err error) {
	ok, err := isComplex(d)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrNotComplex
	}
	r, err := realPart(d)
	if err != nil {
		return 0, err
	}
	defer release(r, &err)
	return r.Precision()
}

// ComplexWidth returns the width variant of a complex descriptor.
func ComplexWidth(d Descriptor) (Width, error) {
	bits, err := ComplexPrecision(d)
	if err != nil {
		return 0, err
	}
	w := Width(bits / 8)
	if err := w.valid(); err != nil {
		return 0, fmt.Errorf("%w: %d-bit parts", ErrInvalidWidth, bits)
	}
	return w, nil
}
