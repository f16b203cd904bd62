package firmware

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ardsutil/checksum"
)

func TestTrim(t *testing.T) {
	assert.Equal(t, []byte{1, 0xFF, 2}, Trim([]byte{1, 0xFF, 2, 0xFF, 0xFF}))
	assert.Empty(t, Trim([]byte{0xFF, 0xFF}))
	assert.Empty(t, Trim(nil))
}

func makeDump(image []byte) []byte {
	dump := bytes.Repeat([]byte{0xFF}, Start+MaxSize+0x100)
	copy(dump[Start:], image)
	return dump
}

func TestExtract(t *testing.T) {
	image := []byte("firmware body\x00\x01")
	got, err := Extract(makeDump(image))
	require.NoError(t, err)
	assert.Equal(t, image, got)
}

func TestExtract_Errors(t *testing.T) {
	_, err := Extract(make([]byte, Start))
	assert.Error(t, err)

	_, err = Extract(makeDump(nil))
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestBuildAndVerify(t *testing.T) {
	image := []byte("123456789")
	file := Build(image, nil)

	require.Len(t, file, HeaderSize+len(image))
	assert.Equal(t, []byte(Magic), file[:4])
	assert.Equal(t, uint32(0x4B37), binary.LittleEndian.Uint32(file[4:8]))

	sum, err := FileChecksum(file, nil)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x4B37), sum)

	stored, computed, err := Verify(file, nil)
	require.NoError(t, err)
	assert.Equal(t, stored, computed)

	file[len(file)-1] ^= 0x01
	_, _, err = Verify(file, nil)
	assert.Error(t, err)
}

func TestFileChecksum_TooShort(t *testing.T) {
	_, err := FileChecksum(make([]byte, HeaderSize), nil)
	assert.Error(t, err)
}

func TestChecksum_CustomCRC(t *testing.T) {
	var seen uint16
	crc := checksum.CRC16Func(func(initial uint16, buffer []byte) uint16 {
		seen = initial
		return uint16(len(buffer))
	})
	assert.Equal(t, uint16(3), Checksum([]byte{1, 2, 3}, crc))
	assert.Equal(t, uint16(checksum.FirmwareSeed), seen)
}

func TestChunks(t *testing.T) {
	_, err := SplitChunks(make([]byte, 10))
	assert.Error(t, err)

	dump := make([]byte, DumpSize)
	chunks, err := SplitChunks(dump)
	require.NoError(t, err)
	require.Len(t, chunks, Chunks)
	assert.Equal(t, 0, LinearCheck(chunks))
	assert.False(t, Differs(SquareCheck(chunks)))

	dump[5*ChunkSize+7] = 1
	assert.NotEqual(t, 0, LinearCheck(chunks))

	table := SquareCheck(chunks)
	assert.True(t, Differs(table))
	assert.Equal(t, -1, table[0][5])
	assert.Equal(t, 1, table[5][0])
	assert.Equal(t, 0, table[0][6])
	assert.Equal(t, 0, table[5][5])
}
