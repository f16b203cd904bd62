// Package fixture assembles ARDS game records in memory for tests. It only
// knows enough of the format to produce inputs for the readers.
package fixture

import (
	"encoding/binary"

	"ardsutil/models"
)

// Record encodes one (flag, count) record header.
func Record(flag, count uint16) []byte {
	b := make([]byte, models.RecordSize)
	binary.LittleEndian.PutUint16(b, flag)
	binary.LittleEndian.PutUint16(b[2:], count)
	return b
}

// Line encodes one code line.
func Line(addr, value uint32) []byte {
	b := make([]byte, models.LineSize)
	binary.LittleEndian.PutUint32(b, addr)
	binary.LittleEndian.PutUint32(b[4:], value)
	return b
}

// Terminator is the record that ends a code list.
func Terminator() []byte {
	return Record(0, 0)
}

// Join concatenates byte slices.
func Join(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Game describes a record to encode.
type Game struct {
	ID          string
	Checksum    uint32
	DosDate     uint16
	DosTime     uint16
	Name        string
	Description string
	Nodes       []*models.Node
}

// CodeSection encodes nodes followed by a terminator.
func CodeSection(nodes []*models.Node) []byte {
	var out []byte
	var emit func(n *models.Node)
	emit = func(n *models.Node) {
		switch n.Kind() {
		case models.Code:
			lines := n.Lines()
			out = append(out, Record(n.Flag.Raw(), uint16(len(lines)))...)
			for _, l := range lines {
				out = append(out, Line(l.Address, l.Value)...)
			}
		case models.Folder:
			children := n.Children()
			out = append(out, Record(n.Flag.Raw(), uint16(len(children)))...)
			for _, c := range children {
				emit(c)
			}
		}
	}
	for _, n := range nodes {
		emit(n)
	}
	return append(out, Terminator()...)
}

// TextBlock encodes the game strings followed by every node's strings.
func TextBlock(name, desc string, nodes []*models.Node) []byte {
	out := cstring(name)
	out = append(out, cstring(desc)...)
	models.Walk(nodes, func(n *models.Node, depth int) {
		out = append(out, cstring(n.Name)...)
		out = append(out, cstring(n.Description)...)
	})
	return out
}

// Header returns the header Encode would write for g.
func (g Game) Header() models.GameHeader {
	codes := CodeSection(g.Nodes)
	h := models.GameHeader{
		Magic:      models.HeaderMagic,
		NumCodes:   uint16((&models.Game{Nodes: g.Nodes}).CountCodes()),
		Sentinel:   models.HeaderSentinel,
		TextOffset: uint32(models.HeaderSize + len(codes) - 1),
		DosDate:    g.DosDate,
		DosTime:    g.DosTime,
		Checksum:   g.Checksum,
	}
	copy(h.ID[:], g.ID)
	return h
}

// Encode produces header, code section and text block.
func (g Game) Encode() []byte {
	return Join(
		g.Header().Bytes(),
		CodeSection(g.Nodes),
		TextBlock(g.Name, g.Description, g.Nodes),
	)
}

// Named sets the strings of a node and returns it.
func Named(n *models.Node, name, desc string) *models.Node {
	n.Name = name
	n.Description = desc
	return n
}

// Sample is a small game with a folder and a master code.
func Sample(id string, checksum uint32, name string) Game {
	return Game{
		ID:          id,
		Checksum:    checksum,
		DosDate:     (27 << 9) | (6 << 5) | 15,
		DosTime:     (13 << 11) | (45 << 5),
		Name:        name,
		Description: "",
		Nodes: []*models.Node{
			Named(models.NewCode(models.Master, []models.Line{{Address: 0x12000000, Value: 0x00000001}}), "(M)", "Must be on"),
			Named(models.NewFolder(models.OnlyOne, []*models.Node{
				Named(models.NewCode(0, []models.Line{{Address: 0x0209F2A8, Value: 0x00000063}}), "99 Lives", ""),
				Named(models.NewCode(0, []models.Line{
					{Address: 0x0209F2A8, Value: 0x00000001},
					{Address: 0x0209F2AC, Value: 0x00000000},
				}), "1 Life", "for the brave"),
			}), "Lives", "pick one"),
			Named(models.NewCode(models.OnByDefault, []models.Line{{Address: 0x0209F49C, Value: 0x0000FFFF}}), "Max Coins", ""),
		},
	}
}

func cstring(s string) []byte {
	return append([]byte(s), 0)
}
