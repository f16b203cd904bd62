// Package cursor provides a bounds-aware sequential reader over a byte
// source of known length. ARDS records reference absolute offsets, so every
// source must expose its size up front.
package cursor

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrEndOfData is returned by any read that would pass the end of the source.
	ErrEndOfData = errors.New("end of data")

	// ErrSeekOutOfRange is returned by seeks that land outside [0, Len].
	ErrSeekOutOfRange = errors.New("seek out of range")
)

const stringChunk = 64

// Cursor reads little-endian values from an io.ReaderAt with a current
// position. A failed read leaves the position where it was.
type Cursor struct {
	src  io.ReaderAt
	size int64
	pos  int64
}

// New wraps src, which holds exactly size bytes.
func New(src io.ReaderAt, size int64) *Cursor {
	return &Cursor{src: src, size: size}
}

// FromBytes wraps an in-memory buffer.
func FromBytes(b []byte) *Cursor {
	return New(bytes.NewReader(b), int64(len(b)))
}

// Len is the size of the underlying source.
func (c *Cursor) Len() int64 {
	return c.size
}

// Position is the offset of the next read.
func (c *Cursor) Position() int64 {
	return c.pos
}

// Remaining is the number of bytes left before the end of the source.
func (c *Cursor) Remaining() int64 {
	return c.size - c.pos
}

// Window returns a cursor over the same source that starts at the current
// position and cannot read past end. Offsets stay absolute.
func (c *Cursor) Window(end int64) (*Cursor, error) {
	if end < c.pos || end > c.size {
		return nil, fmt.Errorf("%w: window end 0x%x (position 0x%x, size 0x%x)", ErrSeekOutOfRange, end, c.pos, c.size)
	}
	return &Cursor{src: c.src, size: end, pos: c.pos}, nil
}

// SeekAbsolute moves to pos.
func (c *Cursor) SeekAbsolute(pos int64) error {
	if pos < 0 || pos > c.size {
		return fmt.Errorf("%w: 0x%x (size 0x%x)", ErrSeekOutOfRange, pos, c.size)
	}
	c.pos = pos
	return nil
}

// SeekRelative moves delta bytes from the current position.
func (c *Cursor) SeekRelative(delta int64) error {
	return c.SeekAbsolute(c.pos + delta)
}

// ReadFixed reads exactly n bytes.
func (c *Cursor) ReadFixed(n int) ([]byte, error) {
	if n < 0 || int64(n) > c.Remaining() {
		return nil, fmt.Errorf("%w: need %d bytes at 0x%x, %d left", ErrEndOfData, n, c.pos, c.Remaining())
	}

	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}

	if _, err := c.src.ReadAt(buf, c.pos); err != nil && !(errors.Is(err, io.EOF) && c.pos+int64(n) == c.size) {
		return nil, fmt.Errorf("failed to read %d bytes at 0x%x: %w", n, c.pos, err)
	}

	c.pos += int64(n)
	return buf, nil
}

// ReadU8 reads one byte.
func (c *Cursor) ReadU8() (uint8, error) {
	b, err := c.ReadFixed(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16 reads a little-endian 16-bit value.
func (c *Cursor) ReadU16() (uint16, error) {
	b, err := c.ReadFixed(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadU32 reads a little-endian 32-bit value.
func (c *Cursor) ReadU32() (uint32, error) {
	b, err := c.ReadFixed(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadCString reads up to and including a zero byte and returns the bytes
// before it. If the source ends first, ErrEndOfData is returned and the
// position is unchanged.
func (c *Cursor) ReadCString() ([]byte, error) {
	var out []byte
	pos := c.pos
	chunk := make([]byte, stringChunk)

	for pos < c.size {
		n := int64(len(chunk))
		if left := c.size - pos; left < n {
			n = left
		}

		read, err := c.src.ReadAt(chunk[:n], pos)
		if int64(read) < n && err != nil {
			return nil, fmt.Errorf("failed to read string at 0x%x: %w", c.pos, err)
		}

		if i := bytes.IndexByte(chunk[:n], 0); i >= 0 {
			out = append(out, chunk[:i]...)
			c.pos = pos + int64(i) + 1
			return out, nil
		}

		out = append(out, chunk[:n]...)
		pos += n
	}

	return nil, fmt.Errorf("%w: unterminated string at 0x%x", ErrEndOfData, c.pos)
}

// SkipCString moves past the next zero-terminated string without keeping it.
func (c *Cursor) SkipCString() error {
	_, err := c.ReadCString()
	return err
}
