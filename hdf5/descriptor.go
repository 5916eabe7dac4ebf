package hdf5

import "go.uber.org/multierr"

// Descriptor is the set of datatype queries the complex convention relies
// on. Descriptors returned by MemberType and Super are new handles owned by
// the caller, who must Close them.
type Descriptor interface {
	Class() (Class, error)
	Size() (int, error)

	// Compound only.
	NumMembers() (int, error)
	MemberName(i int) (string, error)
	MemberType(i int) (Descriptor, error)

	// Super returns the element type of an array, or the base type of an
	// enum or variable-length type.
	Super() (Descriptor, error)

	// Precision is the number of significant bits of an atomic type.
	Precision() (int, error)
	Order() (ByteOrder, error)
	SetOrder(o ByteOrder) error

	Close() error
}

// release closes d and folds any failure into *errp.
func release(d Descriptor, errp *error) {
	*errp = multierr.Append(*errp, d.Close())
}
