package models

import (
	"encoding/binary"
	"fmt"
)

const (
	// HeaderMagic is "01 00 1C 00" at the start of every game.
	HeaderMagic uint32 = 0x001C0001
	// HeaderSentinel is "20 00" at offset 6.
	HeaderSentinel uint16 = 0x0020

	HeaderSize = 32
	// RecordSize is one (flag, count) code record header.
	RecordSize = 4
	// LineSize is one (address, value) code line.
	LineSize = 8
)

// GameHeader is the first 32 bytes of a game's code section.
type GameHeader struct {
	Magic      uint32
	NumCodes   uint16
	Sentinel   uint16
	TextOffset uint32 // header start to the last byte of the code section
	AltOffset  uint32
	DosDate    uint16
	DosTime    uint16
	ID         [4]byte
	Reserved   uint32
	Checksum   uint32 // ~crc32 of the first 512 bytes of the cartridge ROM
}

// ParseHeader decodes a header from the first HeaderSize bytes of b.
func ParseHeader(b []byte) (GameHeader, error) {
	if len(b) < HeaderSize {
		return GameHeader{}, fmt.Errorf("game header needs %d bytes, got %d", HeaderSize, len(b))
	}

	le := binary.LittleEndian
	h := GameHeader{
		Magic:      le.Uint32(b[0x00:]),
		NumCodes:   le.Uint16(b[0x04:]),
		Sentinel:   le.Uint16(b[0x06:]),
		TextOffset: le.Uint32(b[0x08:]),
		AltOffset:  le.Uint32(b[0x0C:]),
		DosDate:    le.Uint16(b[0x10:]),
		DosTime:    le.Uint16(b[0x12:]),
		Reserved:   le.Uint32(b[0x18:]),
		Checksum:   le.Uint32(b[0x1C:]),
	}
	copy(h.ID[:], b[0x14:0x18])

	return h, nil
}

// Bytes encodes the header back into its 32-byte layout.
func (h GameHeader) Bytes() []byte {
	b := make([]byte, HeaderSize)
	le := binary.LittleEndian
	le.PutUint32(b[0x00:], h.Magic)
	le.PutUint16(b[0x04:], h.NumCodes)
	le.PutUint16(b[0x06:], h.Sentinel)
	le.PutUint32(b[0x08:], h.TextOffset)
	le.PutUint32(b[0x0C:], h.AltOffset)
	le.PutUint16(b[0x10:], h.DosDate)
	le.PutUint16(b[0x12:], h.DosTime)
	copy(b[0x14:0x18], h.ID[:])
	le.PutUint32(b[0x18:], h.Reserved)
	le.PutUint32(b[0x1C:], h.Checksum)
	return b
}

// Valid reports whether magic and sentinel hold their fixed values.
func (h GameHeader) Valid() bool {
	return h.Magic == HeaderMagic && h.Sentinel == HeaderSentinel
}

// CodeSectionLen is the byte length of the code records that follow the
// header, terminator included. ok is false if the stored text offset cannot
// describe a code section at all.
func (h GameHeader) CodeSectionLen() (n int64, ok bool) {
	n = int64(h.TextOffset) + 1 - HeaderSize
	return n, n >= RecordSize
}

// TextStart is the absolute offset of the name block for a header found at
// start.
func (h GameHeader) TextStart(start int64) int64 {
	return start + int64(h.TextOffset) + 1
}

// CartID is the cartridge ID up to its first NUL.
func (h GameHeader) CartID() string {
	for i, c := range h.ID {
		if c == 0 {
			return string(h.ID[:i])
		}
	}
	return string(h.ID[:])
}

// Identifier is the game ID used to tell games apart across a dump.
func (h GameHeader) Identifier() GameID {
	return GameID(fmt.Sprintf("%.4s-%08X", h.CartID(), h.Checksum))
}

// Timestamp is the unpacked DOS date and time of a header.
type Timestamp struct {
	Year, Month, Day int
	Hour, Minute     int
}

func (t Timestamp) String() string {
	return fmt.Sprintf("%04d/%02d/%02d %02d:%02d", t.Year, t.Month, t.Day, t.Hour, t.Minute)
}

// HasDate is false for headers that leave either DOS field zeroed.
func (h GameHeader) HasDate() bool {
	return h.DosDate != 0 && h.DosTime != 0
}

// Date unpacks the DOS date and time fields.
func (h GameHeader) Date() Timestamp {
	return Timestamp{
		Year:   int(h.DosDate>>9) + 1980,
		Month:  int(h.DosDate>>5) & 0xF,
		Day:    int(h.DosDate) & 0x1F,
		Hour:   int(h.DosTime >> 11),
		Minute: int(h.DosTime>>5) & 0x3F,
	}
}

// GameID is the "IIII-CCCCCCCC" key: cartridge ID and checksum.
type GameID string

// Game is one parsed game record.
type Game struct {
	Offset      int64 // where the header starts in the dump
	Header      GameHeader
	Name        string
	Description string
	Nodes       []*Node
	Warnings    []string
}

// Identifier is shorthand for g.Header.Identifier().
func (g *Game) Identifier() GameID {
	return g.Header.Identifier()
}

// CountCodes returns the number of code nodes in the game, folders flattened.
func (g *Game) CountCodes() int {
	n := 0
	Walk(g.Nodes, func(node *Node, depth int) {
		if node.Kind() == Code {
			n++
		}
	})
	return n
}
