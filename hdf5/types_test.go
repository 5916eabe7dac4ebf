package hdf5

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteOrderString(t *testing.T) {
	tests := []struct {
		order ByteOrder
		want  string
	}{
		{OrderLE, "little"},
		{OrderBE, "big"},
		{OrderNone, "non-relevant"},
		{OrderVAX, "unsupported"},
		{ByteOrder(-1), "unsupported"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.order.String())
	}
}

func TestParseByteOrder(t *testing.T) {
	tests := []struct {
		in   string
		want ByteOrder
	}{
		{"little", OrderLE},
		{"<", OrderLE},
		{"BIG", OrderBE},
		{">", OrderBE},
		{"native", NativeOrder()},
		{"=", NativeOrder()},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseByteOrder(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseByteOrder("vax")
	assert.ErrorIs(t, err, ErrUnsupportedByteOrder)
}

func TestClassString(t *testing.T) {
	assert.Equal(t, "compound", ClassCompound.String())
	assert.Equal(t, "vlen", ClassVarLen.String())
	assert.Equal(t, "class(12)", Class(12).String())
}

func TestNativeOrder(t *testing.T) {
	o := NativeOrder()
	assert.True(t, o == OrderLE || o == OrderBE)
}
