// Package firmware pulls the firmware image out of an ARDS dump and
// computes the CRC-16 the device checks it against.
package firmware

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"ardsutil/checksum"
)

const (
	// Start and MaxSize bound the firmware inside a dump.
	Start   = 0x00100000
	MaxSize = 0x00040000

	// Magic opens every firmware file.
	Magic = "FIRM"
	// HeaderSize is the magic plus the 32-bit checksum field.
	HeaderSize = 8

	padByte = 0xFF
)

// ErrEmpty is returned when a firmware region holds nothing but padding.
var ErrEmpty = errors.New("firmware region is empty")

// Trim strips trailing 0xFF padding.
func Trim(image []byte) []byte {
	end := len(image)
	for end > 0 && image[end-1] == padByte {
		end--
	}
	return image[:end]
}

// Extract cuts the firmware out of a full dump and trims its padding.
func Extract(dump []byte) ([]byte, error) {
	if len(dump) < Start+MaxSize {
		return nil, fmt.Errorf("dump must be at least %d bytes (is %d)", Start+MaxSize, len(dump))
	}

	image := Trim(dump[Start : Start+MaxSize])
	if len(image) == 0 {
		return nil, ErrEmpty
	}
	return image, nil
}

// Checksum is the firmware CRC-16 of a trimmed image.
func Checksum(image []byte, crc checksum.CRC16Func) uint16 {
	if crc == nil {
		crc = checksum.CRC16
	}
	return crc(checksum.FirmwareSeed, image)
}

// Build wraps an image in the "FIRM" + checksum header.
func Build(image []byte, crc checksum.CRC16Func) []byte {
	out := make([]byte, HeaderSize, HeaderSize+len(image))
	copy(out, Magic)
	binary.LittleEndian.PutUint32(out[4:], uint32(Checksum(image, crc)))
	return append(out, image...)
}

// FileChecksum computes the checksum of a firmware file, skipping its
// 8-byte header.
func FileChecksum(file []byte, crc checksum.CRC16Func) (uint16, error) {
	if len(file) <= HeaderSize {
		return 0, fmt.Errorf("file must be larger than %d bytes (is %d)", HeaderSize, len(file))
	}
	return Checksum(file[HeaderSize:], crc), nil
}

// Verify compares the stored checksum of a firmware file with the computed
// one.
func Verify(file []byte, crc checksum.CRC16Func) (stored, computed uint16, err error) {
	computed, err = FileChecksum(file, crc)
	if err != nil {
		return 0, 0, err
	}
	if !bytes.Equal(file[:4], []byte(Magic)) {
		return 0, computed, fmt.Errorf("missing %q magic", Magic)
	}

	stored = binary.LittleEndian.Uint16(file[4:6])
	if stored != computed {
		return stored, computed, fmt.Errorf("checksum mismatch: header=%04X computed=%04X", stored, computed)
	}
	return stored, computed, nil
}
