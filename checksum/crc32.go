package checksum

import "fmt"

const (
	crc32Poly = 0x04C11DB7

	// GameIDSpan is how much of an NDS ROM feeds the game ID checksum.
	GameIDSpan = 0x200

	ndsGameCodeOffset = 0x0C
)

// Reverse flips the bit order of a 32-bit integer.
func Reverse(v uint32) uint32 {
	v = ((v >> 1) & 0x55555555) | ((v & 0x55555555) << 1)
	v = ((v >> 2) & 0x33333333) | ((v & 0x33333333) << 2)
	v = ((v >> 4) & 0x0F0F0F0F) | ((v & 0x0F0F0F0F) << 4)
	v = ((v >> 8) & 0x00FF00FF) | ((v & 0x00FF00FF) << 8)
	return (v >> 16) | (v << 16)
}

// CRC32 computes the CRC-32 the ARDS uses for game IDs. Each input byte is
// bit reversed and divided through the unreflected generator one bit at a
// time, so no lookup table is involved.
func CRC32(buffer []byte) uint32 {
	acc := uint32(0xFFFFFFFF)

	for _, b := range buffer {
		in := Reverse(uint32(b))
		for i := 0; i < 8; i++ {
			if (acc^in)&0x80000000 != 0 {
				acc = (acc << 1) ^ crc32Poly
			} else {
				acc <<= 1
			}
			in <<= 1
		}
	}

	return Reverse(^acc)
}

// GameIDChecksum returns the complemented CRC-32 of the first 512 bytes of
// an NDS ROM. This is the value stored in a game header's checksum field.
func GameIDChecksum(rom []byte) (uint32, error) {
	if len(rom) < GameIDSpan {
		return 0, fmt.Errorf("ROM too short to compute game ID checksum (%d bytes)", len(rom))
	}
	return ^CRC32(rom[:GameIDSpan]), nil
}

// NDSGameID builds the "XXXX-XXXXXXXX" game ID of an NDS ROM from the game
// code at 0x0C-0x0F and its game ID checksum.
func NDSGameID(rom []byte) (string, error) {
	sum, err := GameIDChecksum(rom)
	if err != nil {
		return "", err
	}

	code := rom[ndsGameCodeOffset : ndsGameCodeOffset+4]
	for i, c := range code {
		if c == 0 {
			code = code[:i]
			break
		}
	}

	return fmt.Sprintf("%s-%08X", code, sum), nil
}
