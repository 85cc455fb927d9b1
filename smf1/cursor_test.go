package smf1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var vlqPairs = []struct {
	value uint32
	bytes []byte
}{
	{0x00000000, []byte{0x00}},
	{0x00000040, []byte{0x40}},
	{0x0000007f, []byte{0x7f}},
	{0x00000080, []byte{0x81, 0x00}},
	{0x00002000, []byte{0xc0, 0x00}},
	{0x00003fff, []byte{0xff, 0x7f}},
	{0x00004000, []byte{0x81, 0x80, 0x00}},
	{0x001fffff, []byte{0xff, 0xff, 0x7f}},
	{0x00200000, []byte{0x81, 0x80, 0x80, 0x00}},
	{0x0fffffff, []byte{0xff, 0xff, 0xff, 0x7f}},
}

func TestReadVLQ(t *testing.T) {
	for _, p := range vlqPairs {
		c := NewCursor(p.bytes)
		v, err := c.ReadVLQ()
		require.NoError(t, err)
		assert.Equal(t, p.value, v)
		assert.Equal(t, len(p.bytes), c.Pos)
	}
}

func TestAppendVLQ(t *testing.T) {
	for _, p := range vlqPairs {
		out, err := AppendVLQ(nil, p.value)
		require.NoError(t, err)
		assert.Equal(t, p.bytes, out)
	}
}

func TestVLQErrors(t *testing.T) {
	// Five continuation bytes never terminate within the 4-byte limit.
	c := NewCursor([]byte{0x81, 0x81, 0x81, 0x81, 0x01})
	_, err := c.ReadVLQ()
	assert.Error(t, err)

	// Truncated mid-quantity.
	c = NewCursor([]byte{0x81})
	_, err = c.ReadVLQ()
	assert.Error(t, err)

	// One past the largest encodable value.
	_, err = AppendVLQ(nil, 0x10000000)
	assert.Error(t, err)
}

func TestCursorReads(t *testing.T) {
	c := NewCursor([]byte{0x01, 0x02, 0x03})
	b, err := c.PeekByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), b)
	assert.Equal(t, 0, c.Pos)

	got, err := c.ReadBytes(3)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, got)
	assert.Equal(t, 0, c.Remaining())

	_, err = c.ReadByte()
	assert.Error(t, err)
	_, err = c.ReadBytes(1)
	assert.Error(t, err)
}

func TestSplitChunks(t *testing.T) {
	data := []byte{
		'M', 'T', 'h', 'd', 0, 0, 0, 2, 0xaa, 0xbb,
		'M', 'T', 'r', 'k', 0, 0, 0, 1, 0xcc,
	}
	chunks, err := SplitChunks(data)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "MThd", chunks[0].ID)
	assert.Equal(t, []byte{0xaa, 0xbb}, chunks[0].Data)
	assert.Equal(t, int64(0), chunks[0].Offset)
	assert.Equal(t, "MTrk", chunks[1].ID)
	assert.Equal(t, int64(10), chunks[1].Offset)

	// Declared length past end of file.
	_, err = SplitChunks([]byte{'M', 'T', 'r', 'k', 0, 0, 0, 9, 0xcc})
	assert.Error(t, err)

	// Trailing bytes that cannot form a chunk header.
	_, err = SplitChunks(append(data, 0x01, 0x02))
	assert.Error(t, err)
}
