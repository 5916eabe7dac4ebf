package hdf5

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

func newTestTable(t *testing.T) *Table {
	t.Helper()
	tbl := NewTable(WithLogger(zap.NewNop()))
	t.Cleanup(func() { _ = tbl.Close() })
	return tbl
}

// closeAll closes every handle and asserts the table has none left open.
func closeAll(t *testing.T, tbl *Table, handles ...Descriptor) {
	t.Helper()
	for _, h := range handles {
		require.NoError(t, h.Close())
	}
	assert.Zero(t, tbl.Live(), "leaked handles")
}

func TestCreateComplexProperties(t *testing.T) {
	for _, w := range []Width{Complex32, Complex64} {
		for _, o := range []ByteOrder{OrderLE, OrderBE} {
			t.Run(w.String()+"/"+o.String(), func(t *testing.T) {
				tbl := newTestTable(t)

				c, err := CreateComplex(tbl, w, o)
				require.NoError(t, err)
				assert.Equal(t, 1, tbl.Live())

				assert.True(t, IsComplex(c))
				assert.Equal(t, 1, tbl.Live())

				bits, err := ComplexPrecision(c)
				require.NoError(t, err)
				assert.Equal(t, int(w)*8, bits)

				order, err := GetOrder(c)
				require.NoError(t, err)
				assert.Equal(t, o, order)

				width, err := ComplexWidth(c)
				require.NoError(t, err)
				assert.Equal(t, w, width)

				size, err := c.Size()
				require.NoError(t, err)
				assert.Equal(t, 2*int(w), size)

				closeAll(t, tbl, c)
			})
		}
	}
}

func TestCreateComplexShape(t *testing.T) {
	tbl := newTestTable(t)

	c, err := CreateComplex(tbl, Complex64, OrderLE)
	require.NoError(t, err)

	class, err := c.Class()
	require.NoError(t, err)
	assert.Equal(t, ClassCompound, class)

	n, err := c.NumMembers()
	require.NoError(t, err)
	require.Equal(t, 2, n)

	for i, name := range []string{"r", "i"} {
		got, err := c.MemberName(i)
		require.NoError(t, err)
		assert.Equal(t, name, got)

		off, err := c.MemberOffset(i)
		require.NoError(t, err)
		assert.Equal(t, i*8, off)

		m, err := c.MemberType(i)
		require.NoError(t, err)
		mc, err := m.Class()
		require.NoError(t, err)
		assert.Equal(t, ClassFloat, mc)
		p, err := m.Precision()
		require.NoError(t, err)
		assert.Equal(t, 64, p)
		require.NoError(t, m.Close())
	}

	order, err := GetOrder(c)
	require.NoError(t, err)
	assert.Equal(t, "little", order.String())

	closeAll(t, tbl, c)
}

func TestArrayOfComplex(t *testing.T) {
	tbl := newTestTable(t)

	c, err := CreateComplex(tbl, Complex32, OrderBE)
	require.NoError(t, err)
	arr, err := tbl.ArrayOf(c, 2, 3)
	require.NoError(t, err)
	nested, err := tbl.ArrayOf(arr, 4)
	require.NoError(t, err)

	for _, d := range []Descriptor{arr, nested} {
		assert.True(t, IsComplex(d))

		order, err := GetOrder(d)
		require.NoError(t, err)
		assert.Equal(t, OrderBE, order)

		// Arrays are unwrapped for precision too.
		bits, err := ComplexPrecision(d)
		require.NoError(t, err)
		assert.Equal(t, 32, bits)

		assert.Equal(t, 3, tbl.Live())
	}

	closeAll(t, tbl, nested, arr, c)
}

func TestIsComplexRejects(t *testing.T) {
	tbl := newTestTable(t)

	f8, err := tbl.Float(8, OrderLE)
	require.NoError(t, err)
	i8, err := tbl.Integer(8, true, OrderLE)
	require.NoError(t, err)

	compound := func(size int, members ...any) *Type {
		t.Helper()
		c, err := tbl.CreateCompound(size)
		require.NoError(t, err)
		for k := 0; k < len(members); k += 3 {
			require.NoError(t, c.Insert(members[k].(string), members[k+1].(int), members[k+2].(Descriptor)))
		}
		return c
	}

	floatArray, err := tbl.ArrayOf(f8, 2)
	require.NoError(t, err)

	tests := []struct {
		name string
		d    *Type
	}{
		{"float", f8},
		{"array of float", floatArray},
		{"integer imaginary", compound(16, "r", 0, f8, "i", 8, i8)},
		{"integer real", compound(16, "r", 0, i8, "i", 8, f8)},
		{"x and y", compound(16, "x", 0, f8, "y", 8, f8)},
		{"swapped names", compound(16, "i", 0, f8, "r", 8, f8)},
		{"one member", compound(8, "r", 0, f8)},
		{"three members", compound(24, "r", 0, f8, "i", 8, f8, "j", 16, f8)},
	}

	live := tbl.Live()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, IsComplex(tt.d))
			assert.Equal(t, live, tbl.Live())

			_, err := ComplexPrecision(tt.d)
			assert.ErrorIs(t, err, ErrNotComplex)
			assert.Equal(t, live, tbl.Live())
		})
	}
}

func TestIsComplexNameCollision(t *testing.T) {
	// Any two-float record named r and i is complex; widths are not compared.
	tbl := newTestTable(t)

	f4, err := tbl.Float(4, OrderLE)
	require.NoError(t, err)
	f8, err := tbl.Float(8, OrderLE)
	require.NoError(t, err)
	c, err := tbl.CreateCompound(12)
	require.NoError(t, err)
	require.NoError(t, c.Insert("r", 0, f4))
	require.NoError(t, c.Insert("i", 4, f8))

	assert.True(t, IsComplex(c))
	closeAll(t, tbl, c, f8, f4)
}

func TestGetOrderNonComplex(t *testing.T) {
	tbl := newTestTable(t)

	i4, err := tbl.Integer(4, false, OrderBE)
	require.NoError(t, err)
	s, err := tbl.String(8)
	require.NoError(t, err)
	c, err := tbl.CreateCompound(4)
	require.NoError(t, err)
	require.NoError(t, c.Insert("x", 0, i4))

	order, err := GetOrder(i4)
	require.NoError(t, err)
	assert.Equal(t, OrderBE, order)

	for _, d := range []Descriptor{s, c} {
		order, err = GetOrder(d)
		require.NoError(t, err)
		assert.Equal(t, OrderNone, order)
		assert.Equal(t, "non-relevant", order.String())
	}

	closeAll(t, tbl, c, s, i4)
}

func TestGetOrderUnsupported(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	prev := Logger()
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(prev) })

	tbl := newTestTable(t)
	vax, err := tbl.Float(8, OrderVAX)
	require.NoError(t, err)

	order, err := GetOrder(vax)
	assert.ErrorIs(t, err, ErrUnsupportedByteOrder)
	assert.Equal(t, OrderVAX, order)
	assert.Equal(t, "unsupported", order.String())
	assert.Equal(t, 1, logs.FilterMessage("unsupported byte order").Len())

	// A complex record with VAX parts inherits the failure.
	c, err := tbl.CreateCompound(16)
	require.NoError(t, err)
	require.NoError(t, c.Insert("r", 0, vax))
	require.NoError(t, c.Insert("i", 8, vax))
	_, err = GetOrder(c)
	assert.ErrorIs(t, err, ErrUnsupportedByteOrder)

	closeAll(t, tbl, c, vax)
}

func TestSetOrder(t *testing.T) {
	tbl := newTestTable(t)

	f, err := tbl.Float(4, OrderLE)
	require.NoError(t, err)
	require.NoError(t, SetOrder(f, OrderBE))
	order, err := GetOrder(f)
	require.NoError(t, err)
	assert.Equal(t, OrderBE, order)

	for _, o := range []ByteOrder{OrderVAX, OrderNone, ByteOrder(42)} {
		err := SetOrder(f, o)
		assert.ErrorIs(t, err, ErrUnsupportedByteOrder)
		assert.Contains(t, err.Error(), o.String())
	}

	c, err := CreateComplex(tbl, Complex32, OrderLE)
	require.NoError(t, err)
	assert.ErrorIs(t, SetOrder(c, OrderBE), ErrComplexOrder)
	order, err = GetOrder(c)
	require.NoError(t, err)
	assert.Equal(t, OrderLE, order)

	arr, err := tbl.ArrayOf(c, 2)
	require.NoError(t, err)
	assert.ErrorIs(t, SetOrder(arr, OrderBE), ErrComplexOrder)

	s, err := tbl.String(4)
	require.NoError(t, err)
	assert.ErrorIs(t, SetOrder(s, OrderBE), ErrUnsupported)

	closeAll(t, tbl, s, arr, c, f)
}

func TestCreateComplexErrors(t *testing.T) {
	tbl := newTestTable(t)

	for _, w := range []Width{0, 2, 16} {
		_, err := CreateComplex(tbl, w, OrderLE)
		assert.ErrorIs(t, err, ErrInvalidWidth)
	}
	_, err := CreateComplex(tbl, Complex64, OrderVAX)
	assert.ErrorIs(t, err, ErrUnsupportedByteOrder)
	assert.Zero(t, tbl.Live(), "failed construction must release partial handles")

	require.NoError(t, tbl.Close())
	_, err = CreateComplex(tbl, Complex64, OrderLE)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestWidth(t *testing.T) {
	assert.Equal(t, "Complex32", Complex32.String())
	assert.Equal(t, "Complex64", Complex64.String())
	assert.Equal(t, 64, Complex64.Bits())

	w, err := ParseWidth("4")
	require.NoError(t, err)
	assert.Equal(t, Complex32, w)
	w, err = ParseWidth("Complex64")
	require.NoError(t, err)
	assert.Equal(t, Complex64, w)
	_, err = ParseWidth("16")
	assert.ErrorIs(t, err, ErrInvalidWidth)
}

// faultyDescriptor is a complex compound whose queries can be made to fail.
type faultyDescriptor struct {
	class     Class
	failOn    string
	closeErr  error
	open      *int
	member    *faultyDescriptor
	precision int
}

var errFault = errors.New("injected failure")

func (f *faultyDescriptor) fail(op string) error {
	if f.failOn == op {
		return errFault
	}
	return nil
}

func (f *faultyDescriptor) Class() (Class, error)    { return f.class, f.fail("class") }
func (f *faultyDescriptor) Size() (int, error)       { return 16, f.fail("size") }
func (f *faultyDescriptor) NumMembers() (int, error) { return 2, f.fail("members") }

func (f *faultyDescriptor) MemberName(i int) (string, error) {
	return [...]string{"r", "i"}[i], f.fail("name")
}

func (f *faultyDescriptor) MemberType(int) (Descriptor, error) {
	if err := f.fail("member"); err != nil {
		return nil, err
	}
	*f.open++
	m := *f.member
	return &m, nil
}

func (f *faultyDescriptor) Super() (Descriptor, error) { return nil, ErrNotArray }
func (f *faultyDescriptor) Precision() (int, error)    { return f.precision, f.fail("precision") }
func (f *faultyDescriptor) Order() (ByteOrder, error)  { return OrderLE, f.fail("order") }
func (f *faultyDescriptor) SetOrder(ByteOrder) error   { return f.fail("setorder") }


func (f *faultyDescriptor) Close() error {
	if f.open != nil {
		*f.open--
	}
	return f.closeErr
}

func newFaulty(failOn string, memberFailOn string, closeErr error) (*faultyDescriptor, *int) {
	open := new(int)
	member := &faultyDescriptor{class: ClassFloat, failOn: memberFailOn, closeErr: closeErr, open: open, precision: 64}
	return &faultyDescriptor{class: ClassCompound, failOn: failOn, open: open, member: member}, open
}

func TestConventionReleasesOnError(t *testing.T) {
	tests := []struct {
		name         string
		failOn       string
		memberFailOn string
		closeErr     error
		complex      bool
	}{
		{"member class fails", "", "class", nil, false},
		{"member order fails", "", "order", nil, true},
		{"member precision fails", "", "precision", nil, true},
		{"member close fails", "", "", errFault, false},
		{"member type fails", "member", "", nil, false},
		{"name fails", "name", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, open := newFaulty(tt.failOn, tt.memberFailOn, tt.closeErr)

			_, orderErr := GetOrder(d)
			assert.Zero(t, *open, "GetOrder leaked a member handle")
			_, precErr := ComplexPrecision(d)
			assert.Zero(t, *open, "ComplexPrecision leaked a member handle")
			assert.Equal(t, tt.complex, IsComplex(d))
			assert.Zero(t, *open, "IsComplex leaked a member handle")

			if tt.memberFailOn != "order" {
				assert.ErrorIs(t, precErr, errFault)
			}
			if tt.memberFailOn != "precision" {
				assert.ErrorIs(t, orderErr, errFault)
			}
		})
	}
}

func TestConventionOnHealthyFake(t *testing.T) {
	d, open := newFaulty("", "", nil)

	assert.True(t, IsComplex(d))
	bits, err := ComplexPrecision(d)
	require.NoError(t, err)
	assert.Equal(t, 64, bits)
	order, err := GetOrder(d)
	require.NoError(t, err)
	assert.Equal(t, OrderLE, order)
	assert.ErrorIs(t, SetOrder(d, OrderBE), ErrComplexOrder)
	assert.Zero(t, *open)
}
