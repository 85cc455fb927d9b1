// Package smf1 reads and writes classic Standard MIDI Files (MThd/MTrk).
// The reader is strict: any structural violation aborts the decode. The
// lenient structural walk lives in the validate package, built on the
// same Cursor.
package smf1

import (
	"encoding/binary"
	"fmt"
)

// Cursor walks a delta-time/event stream inside one track chunk. It
// carries the three pieces of state SMF decoding needs: the byte
// position, the running status byte, and the accumulated absolute tick.
// Both the strict reader and the lenient validator thread a Cursor
// through each step; only their failure policies differ.
type Cursor struct {
	Data    []byte
	Pos     int
	Running byte
	Tick    uint32
}

// NewCursor starts a cursor at the beginning of data with no running
// status and tick zero.
func NewCursor(data []byte) *Cursor {
	return &Cursor{Data: data}
}

// Remaining reports how many bytes are left.
func (c *Cursor) Remaining() int {
	return len(c.Data) - c.Pos
}

// ReadByte consumes and returns the next byte.
func (c *Cursor) ReadByte() (byte, error) {
	if c.Pos >= len(c.Data) {
		return 0, fmt.Errorf("unexpected end of track at offset %d", c.Pos)
	}
	b := c.Data[c.Pos]
	c.Pos++
	return b, nil
}

// PeekByte returns the next byte without consuming it.
func (c *Cursor) PeekByte() (byte, error) {
	if c.Pos >= len(c.Data) {
		return 0, fmt.Errorf("unexpected end of track at offset %d", c.Pos)
	}
	return c.Data[c.Pos], nil
}

// ReadVLQ consumes a big-endian base-128 variable-length quantity of at
// most 4 bytes (continuation bit is the top bit of each byte).
func (c *Cursor) ReadVLQ() (uint32, error) {
	var v uint32
	for i := 0; i < 4; i++ {
		b, err := c.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("truncated variable-length quantity: %w", err)
		}
		v = (v << 7) | uint32(b&0x7f)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, fmt.Errorf("variable-length quantity longer than 4 bytes at offset %d", c.Pos)
}

// ReadBytes consumes exactly n bytes.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 || c.Remaining() < n {
		return nil, fmt.Errorf("need %d bytes at offset %d, have %d", n, c.Pos, c.Remaining())
	}
	b := c.Data[c.Pos : c.Pos+n]
	c.Pos += n
	return b, nil
}

// AppendVLQ encodes v as a variable-length quantity onto dst. Values
// above 0x0fffffff do not fit in four bytes.
func AppendVLQ(dst []byte, v uint32) ([]byte, error) {
	if v > 0x0fffffff {
		return nil, fmt.Errorf("value 0x%08x too large for a variable-length quantity", v)
	}
	var tmp [4]byte
	n := 0
	for {
		tmp[n] = byte(v & 0x7f)
		v >>= 7
		n++
		if v == 0 {
			break
		}
	}
	for i := n - 1; i >= 0; i-- {
		b := tmp[i]
		if i != 0 {
			b |= 0x80
		}
		dst = append(dst, b)
	}
	return dst, nil
}

// SplitChunks cuts a whole SMF buffer into (id, payload) chunks,
// validating that every declared chunk length fits the file.
type Chunk struct {
	ID     string
	Data   []byte
	Offset int64
}

func SplitChunks(data []byte) ([]Chunk, error) {
	var res []Chunk
	var off int64
	for len(data) > 0 {
		if len(data) < 8 {
			return nil, fmt.Errorf("trailing %d bytes at offset %d are not a chunk", len(data), off)
		}
		id := string(data[:4])
		n := binary.BigEndian.Uint32(data[4:])
		data = data[8:]
		off += 8
		if int(n) > len(data) {
			return nil, fmt.Errorf("chunk %q at offset %d declares %d bytes, only %d remain", id, off-8, n, len(data))
		}
		res = append(res, Chunk{ID: id, Data: data[:n], Offset: off - 8})
		data = data[n:]
		off += int64(n)
	}
	return res, nil
}
