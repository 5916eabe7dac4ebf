package hdf5

import (
	"encoding/binary"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-hdf5/internal/dtype"
	"github.com/robert-malhotra/go-hdf5/internal/message"
)

// Table owns datatype handles. Every handle it hands out stays open until
// closed; Live reports how many are open.
type Table struct {
	mu     sync.Mutex
	next   uint64
	open   map[uint64]*Type
	closed bool
	logger *zap.Logger
}

// NewTable creates an empty handle table.
func NewTable(opts ...TableOption) *Table {
	o := defaultTableOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Table{
		open:   make(map[uint64]*Type),
		logger: o.logger,
	}
}

// Live returns the number of open handles.
func (t *Table) Live() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.open)
}

// Close releases every handle still open. Leaked handles are logged.
func (t *Table) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true

	if len(t.open) > 0 {
		ids := make([]uint64, 0, len(t.open))
		for id, h := range t.open {
			ids = append(ids, id)
			h.dt = nil
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		t.logger.Warn("closing table with open datatype handles",
			zap.Int("count", len(ids)), zap.Uint64s("ids", ids))
		t.open = nil
	}
	return nil
}

func (t *Table) register(dt *message.Datatype) (*Type, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.registerLocked(dt)
}

// registerLocked is register for callers already holding t.mu.
func (t *Table) registerLocked(dt *message.Datatype) (*Type, error) {
	if t.closed {
		return nil, ErrClosed
	}
	t.next++
	h := &Type{table: t, id: t.next, dt: dt}
	t.open[h.id] = h
	t.logger.Debug("open datatype handle", zap.Uint64("id", h.id), zap.Stringer("class", Class(dt.Class)))
	return h, nil
}

func (t *Table) unregister(h *Type) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	if _, ok := t.open[h.id]; !ok {
		return fmt.Errorf("%w: handle %d", ErrInvalidHandle, h.id)
	}
	delete(t.open, h.id)
	h.dt = nil
	t.logger.Debug("close datatype handle", zap.Uint64("id", h.id))
	return nil
}

// ownLocked returns the datatype of d, which must be an open handle of this
// table. t.mu must be held.
func (t *Table) ownLocked(d Descriptor) (*message.Datatype, error) {
	h, ok := d.(*Type)
	if !ok || h == nil {
		return nil, fmt.Errorf("%w: %T", ErrForeignHandle, d)
	}
	if h.table != t {
		return nil, ErrForeignHandle
	}
	return h.datatypeLocked()
}

// derive builds a new type from a copy of base's datatype and registers it.
func (t *Table) derive(base Descriptor, build func(dt *message.Datatype) (*message.Datatype, error)) (*Type, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	dt, err := t.ownLocked(base)
	if err != nil {
		return nil, err
	}
	derived, err := build(dt)
	if err != nil {
		return nil, err
	}
	return t.registerLocked(derived)
}

// validOrder reports whether o is one of the orders a datatype message can
// store. Anything else would be truncated on conversion.
func validOrder(o ByteOrder) bool {
	return o >= OrderLE && o <= OrderNone
}

func checkOrder(o ByteOrder) error {
	if o != OrderLE && o != OrderBE {
		return fmt.Errorf("%w: %s (%d)", ErrUnsupportedByteOrder, o, int(o))
	}
	return nil
}

// Float creates an IEEE floating-point type of 4 or 8 bytes. VAX order is
// accepted for floats only.
func (t *Table) Float(width int, order ByteOrder) (*Type, error) {
	if width != 4 && width != 8 {
		return nil, fmt.Errorf("%w: float width %d", ErrUnsupported, width)
	}
	if order != OrderVAX {
		if err := checkOrder(order); err != nil {
			return nil, err
		}
	}
	dt := message.NewFloatDatatype(uint32(width), message.OrderLE)
	if err := dt.SetByteOrder(message.ByteOrder(order)); err != nil {
		return nil, fmt.Errorf("%w: %s (%d)", ErrUnsupportedByteOrder, order, int(order))
	}
	return t.register(dt)
}

// NativeFloat creates a floating-point type in host byte order.
func (t *Table) NativeFloat(width int) (*Type, error) {
	return t.Float(width, NativeOrder())
}

// Integer creates a fixed-point type of 1, 2, 4 or 8 bytes.
func (t *Table) Integer(size int, signed bool, order ByteOrder) (*Type, error) {
	switch size {
	case 1, 2, 4, 8:
	default:
		return nil, fmt.Errorf("%w: integer size %d", ErrUnsupported, size)
	}
	if err := checkOrder(order); err != nil {
		return nil, err
	}
	return t.register(message.NewFixedPointDatatype(uint32(size), signed, message.ByteOrder(order)))
}

// Time creates a time type with the given bit precision (32 or 64).
func (t *Table) Time(bits int, order ByteOrder) (*Type, error) {
	if bits != 32 && bits != 64 {
		return nil, fmt.Errorf("%w: time precision %d", ErrUnsupported, bits)
	}
	if err := checkOrder(order); err != nil {
		return nil, err
	}
	return t.register(message.NewTimeDatatype(uint16(bits), message.ByteOrder(order)))
}

// Bitfield creates a bitfield type.
func (t *Table) Bitfield(size int, order ByteOrder) (*Type, error) {
	if size < 1 || size > 8 {
		return nil, fmt.Errorf("%w: bitfield size %d", ErrUnsupported, size)
	}
	if err := checkOrder(order); err != nil {
		return nil, err
	}
	return t.register(message.NewBitfieldDatatype(uint32(size), message.ByteOrder(order)))
}

// String creates a null-terminated ASCII string type of fixed size.
func (t *Table) String(size int) (*Type, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: string size %d", ErrUnsupported, size)
	}
	return t.register(message.NewStringDatatype(uint32(size), message.PadNullTerm, message.CharsetASCII))
}

// Opaque creates an opaque type with an optional tag.
func (t *Table) Opaque(size int, tag string) (*Type, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: opaque size %d", ErrUnsupported, size)
	}
	return t.register(message.NewOpaqueDatatype(uint32(size), tag))
}

// CreateCompound creates an empty compound type of the given size. Members
// are added with Insert.
func (t *Table) CreateCompound(size int) (*Type, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: compound size %d", ErrUnsupported, size)
	}
	return t.register(message.NewCompoundDatatype(uint32(size), nil))
}

// ArrayOf creates an array type over a copy of base.
func (t *Table) ArrayOf(base Descriptor, dims ...int) (*Type, error) {
	if len(dims) == 0 {
		return nil, fmt.Errorf("%w: array without dimensions", ErrUnsupported)
	}
	udims := make([]uint32, len(dims))
	for i, d := range dims {
		if d < 1 {
			return nil, fmt.Errorf("%w: array dimension %d", ErrUnsupported, d)
		}
		udims[i] = uint32(d)
	}
	return t.derive(base, func(dt *message.Datatype) (*message.Datatype, error) {
		return message.NewArrayDatatype(udims, dt.Clone()), nil
	})
}

// EnumOf creates an enumeration over a copy of an integer base type of at
// most 8 bytes. values are encoded in the base type's size and byte order.
func (t *Table) EnumOf(base Descriptor, names []string, values []int64) (*Type, error) {
	if len(names) != len(values) {
		return nil, fmt.Errorf("%w: %d names for %d values", ErrUnsupported, len(names), len(values))
	}
	return t.derive(base, func(dt *message.Datatype) (*message.Datatype, error) {
		if !dt.IsInteger() {
			return nil, fmt.Errorf("%w: enum base must be an integer, not %s", ErrUnsupported, Class(dt.Class))
		}
		size := int(dt.Size)
		if size < 1 || size > 8 {
			return nil, fmt.Errorf("%w: enum base size %d", ErrUnsupported, size)
		}
		raw := make([][]byte, len(values))
		for i, v := range values {
			var buf [8]byte
			binary.LittleEndian.PutUint64(buf[:], uint64(v))
			raw[i] = append([]byte(nil), buf[:size]...)
			if dt.Order() == message.OrderBE {
				slices.Reverse(raw[i])
			}
		}
		return message.NewEnumDatatype(dt.Clone(), append([]string(nil), names...), raw), nil
	})
}

// Decode parses a datatype message into a new handle.
func (t *Table) Decode(raw []byte) (*Type, error) {
	dt, err := message.ParseDatatype(raw)
	if err != nil {
		return nil, err
	}
	return t.register(dt)
}

// Type is a handle on a datatype owned by a Table.
type Type struct {
	table *Table
	id    uint64
	dt    *message.Datatype // nil once closed
}

var _ Descriptor = (*Type)(nil)

// ID returns the handle number, unique within its table.
func (h *Type) ID() uint64 {
	return h.id
}

// view runs fn on the handle's datatype with the table locked. fn must not
// call back into the table except through the *Locked helpers.
func (h *Type) view(fn func(dt *message.Datatype) error) error {
	if h == nil || h.table == nil {
		return ErrInvalidHandle
	}
	h.table.mu.Lock()
	defer h.table.mu.Unlock()
	dt, err := h.datatypeLocked()
	if err != nil {
		return err
	}
	return fn(dt)
}

func (h *Type) datatypeLocked() (*message.Datatype, error) {
	if h.table.closed {
		return nil, ErrClosed
	}
	if h.dt == nil {
		return nil, fmt.Errorf("%w: handle %d", ErrInvalidHandle, h.id)
	}
	return h.dt, nil
}

// Close releases the handle. Closing twice is an error.
func (h *Type) Close() error {
	if h == nil || h.table == nil {
		return ErrInvalidHandle
	}
	return h.table.unregister(h)
}

func (h *Type) Class() (c Class, err error) {
	err = h.view(func(dt *message.Datatype) error {
		c = Class(dt.Class)
		return nil
	})
	return c, err
}

func (h *Type) Size() (n int, err error) {
	err = h.view(func(dt *message.Datatype) error {
		n = int(dt.Size)
		return nil
	})
	return n, err
}

func compound(dt *message.Datatype) error {
	if !dt.IsCompound() {
		return fmt.Errorf("%w: %s", ErrNotCompound, Class(dt.Class))
	}
	return nil
}

// viewMember runs fn on member i of a compound with the table locked.
func (h *Type) viewMember(i int, fn func(m *message.CompoundMember) error) error {
	return h.view(func(dt *message.Datatype) error {
		if err := compound(dt); err != nil {
			return err
		}
		if i < 0 || i >= len(dt.Members) {
			return fmt.Errorf("%w: %d of %d", ErrMemberIndex, i, len(dt.Members))
		}
		return fn(&dt.Members[i])
	})
}

func (h *Type) NumMembers() (n int, err error) {
	err = h.view(func(dt *message.Datatype) error {
		if err := compound(dt); err != nil {
			return err
		}
		n = len(dt.Members)
		return nil
	})
	return n, err
}

func (h *Type) MemberName(i int) (name string, err error) {
	err = h.viewMember(i, func(m *message.CompoundMember) error {
		name = m.Name
		return nil
	})
	return name, err
}

// MemberOffset returns the byte offset of member i.
func (h *Type) MemberOffset(i int) (offset int, err error) {
	err = h.viewMember(i, func(m *message.CompoundMember) error {
		offset = int(m.ByteOffset)
		return nil
	})
	return offset, err
}

// MemberType returns a new handle on a copy of member i's type.
func (h *Type) MemberType(i int) (Descriptor, error) {
	var mt *Type
	err := h.viewMember(i, func(m *message.CompoundMember) (err error) {
		mt, err = h.table.registerLocked(m.Type.Clone())
		return err
	})
	if err != nil {
		return nil, err
	}
	return mt, nil
}

// Super returns a new handle on a copy of the base type of an array, enum
// or variable-length type.
func (h *Type) Super() (Descriptor, error) {
	var st *Type
	err := h.view(func(dt *message.Datatype) (err error) {
		base := dt.BaseType
		if dt.IsVarLen() {
			base = dt.VarLenType
		}
		if base == nil {
			return fmt.Errorf("%w: %s", ErrNotArray, Class(dt.Class))
		}
		st, err = h.table.registerLocked(base.Clone())
		return err
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

// Dims returns the dimensions of an array type.
func (h *Type) Dims() (dims []int, err error) {
	err = h.view(func(dt *message.Datatype) error {
		if !dt.IsArray() {
			return fmt.Errorf("%w: %s", ErrNotArray, Class(dt.Class))
		}
		dims = make([]int, len(dt.ArrayDims))
		for i, d := range dt.ArrayDims {
			dims[i] = int(d)
		}
		return nil
	})
	return dims, err
}

func (h *Type) Precision() (bits int, err error) {
	err = h.view(func(dt *message.Datatype) error {
		bits = dt.Precision()
		return nil
	})
	return bits, err
}

// Order returns the type's own byte order; OrderNone for classes without one.
func (h *Type) Order() (o ByteOrder, err error) {
	o = OrderNone
	err = h.view(func(dt *message.Datatype) error {
		o = ByteOrder(dt.Order())
		return nil
	})
	return o, err
}

// SetOrder changes the byte order of an orderable type.
func (h *Type) SetOrder(o ByteOrder) error {
	return h.view(func(dt *message.Datatype) error {
		if !dt.HasOrder() {
			return fmt.Errorf("%w: %s has no byte order", ErrUnsupported, Class(dt.Class))
		}
		if !validOrder(o) {
			return fmt.Errorf("%w: %s (%d) for %s", ErrUnsupportedByteOrder, o, int(o), Class(dt.Class))
		}
		if err := dt.SetByteOrder(message.ByteOrder(o)); err != nil {
			if errors.Is(err, message.ErrOrderNotApplicable) {
				return fmt.Errorf("%w: %s has no byte order", ErrUnsupported, Class(dt.Class))
			}
			return fmt.Errorf("%w: %s (%d) for %s", ErrUnsupportedByteOrder, o, int(o), Class(dt.Class))
		}
		return nil
	})
}

// Insert adds a copy of member to a compound at offset. Later changes to
// member do not affect the compound.
func (h *Type) Insert(name string, offset int, member Descriptor) error {
	return h.view(func(dt *message.Datatype) error {
		if err := compound(dt); err != nil {
			return err
		}
		mdt, err := h.table.ownLocked(member)
		if err != nil {
			return err
		}
		if name == "" {
			return fmt.Errorf("%w: empty member name", ErrUnsupported)
		}
		if dt.Member(name) >= 0 {
			return fmt.Errorf("%w: %q", ErrDuplicateMember, name)
		}

		start := uint64(offset)
		end := start + uint64(mdt.Size)
		if offset < 0 || end > uint64(dt.Size) {
			return fmt.Errorf("%w: %q at %d with size %d in compound of size %d",
				ErrOverlap, name, offset, mdt.Size, dt.Size)
		}
		for _, other := range dt.Members {
			lo := uint64(other.ByteOffset)
			hi := lo + uint64(other.Type.Size)
			if start < hi && lo < end {
				return fmt.Errorf("%w: %q overlaps %q", ErrOverlap, name, other.Name)
			}
		}

		dt.Members = append(dt.Members, message.CompoundMember{
			Name:       name,
			ByteOffset: uint32(offset),
			Type:       mdt.Clone(),
		})
		return nil
	})
}

// Copy returns a new handle on a deep copy of the type.
func (h *Type) Copy() (c *Type, err error) {
	err = h.view(func(dt *message.Datatype) (err error) {
		c, err = h.table.registerLocked(dt.Clone())
		return err
	})
	return c, err
}

// Encode serializes the type as a datatype message.
func (h *Type) Encode() (raw []byte, err error) {
	err = h.view(func(dt *message.Datatype) (err error) {
		raw, err = dt.Encode()
		return err
	})
	return raw, err
}

// GoType returns the Go type values of this datatype decode to.
func (h *Type) GoType() (rt reflect.Type, err error) {
	err = h.view(func(dt *message.Datatype) (err error) {
		rt, err = dtype.GoType(dt)
		return err
	})
	return rt, err
}
