package checksum

// FirmwareSeed is the initial value the firmware tools feed to CRC16.
const FirmwareSeed = 0xFFFF

// CRC16Func is a 16-bit CRC seeded with an explicit initial value. The
// firmware checksum is fixed by the hardware, so the primitive is swappable
// for validation against reference dumps.
type CRC16Func func(initial uint16, buffer []byte) uint16

// Table16 is a lookup table for a reflected 16-bit polynomial.
type Table16 [256]uint16

// MakeTable16 builds the lookup table for the reflected polynomial poly.
func MakeTable16(poly uint16) *Table16 {
	t := new(Table16)
	for i := range t {
		crc := uint16(i)
		for j := 0; j < 8; j++ {
			if crc&1 == 1 {
				crc = (crc >> 1) ^ poly
			} else {
				crc >>= 1
			}
		}
		t[i] = crc
	}
	return t
}

// Checksum16 runs the table driven CRC over buffer starting from initial.
func Checksum16(initial uint16, buffer []byte, t *Table16) uint16 {
	crc := initial
	for _, b := range buffer {
		crc = (crc >> 8) ^ t[byte(crc)^b]
	}
	return crc
}

// NDSPoly is the reflected form of 0x8005, used by the NDS BIOS GetCRC16
// routine and the ARDS firmware.
const NDSPoly = 0xA001

var ndsTable = MakeTable16(NDSPoly)

// CRC16 is the default firmware CRC-16.
var CRC16 CRC16Func = func(initial uint16, buffer []byte) uint16 {
	return Checksum16(initial, buffer, ndsTable)
}
