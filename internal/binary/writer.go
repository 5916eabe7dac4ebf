package binary

import (
	"encoding/binary"
	"io"
)

// Writer writes fields sequentially to an io.WriterAt.
type Writer struct {
	w     io.WriterAt
	order binary.ByteOrder
	pos   int64
}

// NewWriter creates a binary writer with the given configuration.
func NewWriter(w io.WriterAt, cfg Config) *Writer {
	order := cfg.ByteOrder
	if order == nil {
		order = binary.LittleEndian
	}
	return &Writer{w: w, order: order}
}

// WriteBytes writes the given bytes at the current position.
func (w *Writer) WriteBytes(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	n, err := w.w.WriteAt(data, w.pos)
	w.pos += int64(n)
	return err
}

// WriteUint8 writes an unsigned 8-bit integer.
func (w *Writer) WriteUint8(v uint8) error {
	return w.WriteBytes([]byte{v})
}

// WriteUint16 writes an unsigned 16-bit integer.
func (w *Writer) WriteUint16(v uint16) error {
	buf := make([]byte, 2)
	w.order.PutUint16(buf, v)
	return w.WriteBytes(buf)
}

// WriteUint32 writes an unsigned 32-bit integer.
func (w *Writer) WriteUint32(v uint32) error {
	buf := make([]byte, 4)
	w.order.PutUint32(buf, v)
	return w.WriteBytes(buf)
}

// WriteUint64 writes an unsigned 64-bit integer.
func (w *Writer) WriteUint64(v uint64) error {
	buf := make([]byte, 8)
	w.order.PutUint64(buf, v)
	return w.WriteBytes(buf)
}

// WriteUintN writes an unsigned integer of n bytes (1 to 8).
func (w *Writer) WriteUintN(v uint64, n int) error {
	if n < 1 || n > 8 {
		return ErrInvalidSize
	}
	buf := make([]byte, n)
	w.encodeUint(buf, v, n)
	return w.WriteBytes(buf)
}

// WriteCString writes s followed by a null terminator.
func (w *Writer) WriteCString(s string) error {
	if err := w.WriteBytes([]byte(s)); err != nil {
		return err
	}
	return w.WriteUint8(0)
}

func (w *Writer) encodeUint(buf []byte, v uint64, size int) {
	switch size {
	case 1:
		buf[0] = uint8(v)
	case 2:
		w.order.PutUint16(buf, uint16(v))
	case 4:
		w.order.PutUint32(buf, uint32(v))
	case 8:
		w.order.PutUint64(buf, v)
	default:
		if w.order == binary.BigEndian {
			for i := 0; i < size; i++ {
				buf[size-1-i] = byte(v >> (8 * i))
			}
			return
		}
		for i := 0; i < size; i++ {
			buf[i] = byte(v >> (8 * i))
		}
	}
}

// Buffer is a growable in-memory io.WriterAt.
type Buffer struct {
	buf []byte
}

// NewBuffer creates a buffer with the given initial capacity.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{buf: make([]byte, 0, capacity)}
}

// WriteAt implements io.WriterAt, growing the buffer as needed.
func (b *Buffer) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, io.ErrUnexpectedEOF
	}
	end := int(off) + len(p)
	if end > len(b.buf) {
		if end > cap(b.buf) {
			grown := make([]byte, end, 2*end)
			copy(grown, b.buf)
			b.buf = grown
		} else {
			b.buf = b.buf[:end]
		}
	}
	copy(b.buf[off:], p)
	return len(p), nil
}

// Bytes returns the written bytes.
func (b *Buffer) Bytes() []byte {
	return b.buf
}
