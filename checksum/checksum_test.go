package checksum

import (
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReverse(t *testing.T) {
	assert.Equal(t, uint32(0x80000000), Reverse(1))
	assert.Equal(t, uint32(0x00000001), Reverse(0x80000000))
	assert.Equal(t, uint32(0x0F0F0F0F), Reverse(0xF0F0F0F0))
	assert.Equal(t, uint32(0x12345678), Reverse(Reverse(0x12345678)))
}

func TestCRC32_Empty(t *testing.T) {
	assert.Equal(t, uint32(0), CRC32(nil))
	assert.Equal(t, uint32(0), CRC32([]byte{}))
}

func TestCRC32_KnownVector(t *testing.T) {
	assert.Equal(t, uint32(0xCBF43926), CRC32([]byte("123456789")))
}

func TestCRC32_MatchesIEEE(t *testing.T) {
	inputs := [][]byte{
		{0x00},
		{0xFF},
		{0x80, 0x7F, 0x01},
		[]byte("Action Replay DS"),
	}

	big := make([]byte, 4096)
	for i := range big {
		big[i] = byte(i * 31)
	}
	inputs = append(inputs, big)

	for _, in := range inputs {
		assert.Equal(t, crc32.ChecksumIEEE(in), CRC32(in), "input % x", in)
	}
}

func TestCRC32_Deterministic(t *testing.T) {
	buf := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	first := CRC32(buf)
	assert.Equal(t, first, CRC32(buf))
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, buf)
}

func TestGameIDChecksum(t *testing.T) {
	rom := make([]byte, 0x400)
	for i := range rom {
		rom[i] = byte(i)
	}

	sum, err := GameIDChecksum(rom)
	require.NoError(t, err)
	assert.Equal(t, ^CRC32(rom[:0x200]), sum)

	// bytes past 0x200 do not take part
	rom[0x300] ^= 0xFF
	again, err := GameIDChecksum(rom)
	require.NoError(t, err)
	assert.Equal(t, sum, again)
}

func TestGameIDChecksum_TooShort(t *testing.T) {
	_, err := GameIDChecksum(make([]byte, 0x1FF))
	assert.Error(t, err)
}

func TestNDSGameID(t *testing.T) {
	rom := make([]byte, 0x200)
	copy(rom[0x0C:], "ASME")

	id, err := NDSGameID(rom)
	require.NoError(t, err)

	sum, _ := GameIDChecksum(rom)
	assert.Len(t, id, 13)
	assert.Equal(t, "ASME-", id[:5])
	assert.Equal(t, sum, mustParseHex(t, id[5:]))
}

func TestCRC16_KnownVector(t *testing.T) {
	// CRC-16/MODBUS check value
	assert.Equal(t, uint16(0x4B37), CRC16(FirmwareSeed, []byte("123456789")))
}

func TestCRC16_EmptyReturnsSeed(t *testing.T) {
	assert.Equal(t, uint16(0xFFFF), CRC16(FirmwareSeed, nil))
	assert.Equal(t, uint16(0x1234), CRC16(0x1234, nil))
}

func TestCRC16_Pluggable(t *testing.T) {
	table := MakeTable16(0x8408)
	var f CRC16Func = func(initial uint16, buffer []byte) uint16 {
		return Checksum16(initial, buffer, table)
	}
	// CRC-16/X-25 before its final complement
	assert.Equal(t, uint16(^uint16(0x906E)), f(0xFFFF, []byte("123456789")))
}

func mustParseHex(t *testing.T, s string) uint32 {
	t.Helper()
	var v uint32
	for _, c := range s {
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= uint32(c - '0')
		case c >= 'A' && c <= 'F':
			v |= uint32(c-'A') + 10
		default:
			t.Fatalf("bad hex digit %q in %q", c, s)
		}
	}
	return v
}
