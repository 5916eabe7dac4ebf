// Package binary provides low-level binary I/O for HDF5 datatype messages.
package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidSize is returned when an unsigned field width is outside 1..8 bytes.
var ErrInvalidSize = errors.New("invalid field size: must be 1 to 8 bytes")

// Config holds reader and writer configuration.
type Config struct {
	// ByteOrder is the order of multi-byte header fields. Datatype
	// messages are always little-endian on disk; the order of the data a
	// datatype describes is a property of the datatype itself.
	ByteOrder binary.ByteOrder
}

// DefaultConfig returns the configuration used for datatype messages.
func DefaultConfig() Config {
	return Config{ByteOrder: binary.LittleEndian}
}

// Reader reads fields sequentially from an in-memory message body.
type Reader struct {
	data  []byte
	order binary.ByteOrder
	pos   int
}

// NewReader creates a reader over data with the given configuration.
func NewReader(data []byte, cfg Config) *Reader {
	order := cfg.ByteOrder
	if order == nil {
		order = binary.LittleEndian
	}
	return &Reader{data: data, order: order}
}

// Pos returns the current read position.
func (r *Reader) Pos() int {
	return r.pos
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	if r.pos >= len(r.data) {
		return 0
	}
	return len(r.data) - r.pos
}

// ReadBytes reads exactly n bytes from the current position. The returned
// slice aliases the underlying data.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative read length %d", n)
	}
	if n == 0 {
		return nil, nil
	}
	if r.Len() < n {
		return nil, fmt.Errorf("reading %d bytes at offset %d: %w", n, r.pos, io.ErrUnexpectedEOF)
	}
	buf := r.data[r.pos : r.pos+n]
	r.pos += n
	return buf, nil
}

// ReadUint8 reads an unsigned 8-bit integer.
func (r *Reader) ReadUint8() (uint8, error) {
	buf, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadUint16 reads an unsigned 16-bit integer.
func (r *Reader) ReadUint16() (uint16, error) {
	buf, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(buf), nil
}

// ReadUint32 reads an unsigned 32-bit integer.
func (r *Reader) ReadUint32() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(buf), nil
}

// ReadUintN reads an unsigned integer of n bytes (1 to 8). Compound member
// offsets in version 3 datatype messages use 3-byte fields, so odd widths
// are decoded byte by byte.
func (r *Reader) ReadUintN(n int) (uint64, error) {
	if n < 1 || n > 8 {
		return 0, ErrInvalidSize
	}
	buf, err := r.ReadBytes(n)
	if err != nil {
		return 0, err
	}
	return r.decodeUint(buf, n), nil
}

// ReadCString reads a null-terminated string and consumes the terminator.
func (r *Reader) ReadCString() (string, error) {
	for i := r.pos; i < len(r.data); i++ {
		if r.data[i] == 0 {
			s := string(r.data[r.pos:i])
			r.pos = i + 1
			return s, nil
		}
	}
	return "", fmt.Errorf("unterminated string at offset %d: %w", r.pos, io.ErrUnexpectedEOF)
}

func (r *Reader) decodeUint(buf []byte, size int) uint64 {
	switch size {
	case 1:
		return uint64(buf[0])
	case 2:
		return uint64(r.order.Uint16(buf))
	case 4:
		return uint64(r.order.Uint32(buf))
	case 8:
		return r.order.Uint64(buf)
	}
	var val uint64
	if r.order == binary.BigEndian {
		for i := 0; i < size; i++ {
			val = (val << 8) | uint64(buf[i])
		}
		return val
	}
	for i := size - 1; i >= 0; i-- {
		val = (val << 8) | uint64(buf[i])
	}
	return val
}

// Skip advances the position by n bytes.
func (r *Reader) Skip(n int) error {
	_, err := r.ReadBytes(n)
	return err
}

// AlignFrom advances the position so that the distance from start is a
// multiple of alignment. Version 1 and 2 compound and enum names are padded
// this way relative to the start of the name.
func (r *Reader) AlignFrom(start, alignment int) error {
	if alignment <= 1 {
		return nil
	}
	if rem := (r.pos - start) % alignment; rem != 0 {
		return r.Skip(alignment - rem)
	}
	return nil
}
