// Package export writes parsed games out as XML code lists or JSON.
package export

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"ardsutil/models"
)

// Creator goes into the top-level <name> of every code list.
const Creator = "Extracted via ardsutil - ards-game-to-xml"

type xmlWriter struct {
	enc *xml.Encoder
}

func (x xmlWriter) start(name string) error {
	return x.enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: name}})
}

func (x xmlWriter) end(name string) error {
	return x.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: name}})
}

func (x xmlWriter) leaf(name, value string) error {
	return x.enc.EncodeElement(value, xml.StartElement{Name: xml.Name{Local: name}})
}

// WriteXML writes games as one <codelist> document.
func WriteXML(w io.Writer, games []*models.Game) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write XML header: %w", err)
	}

	x := xmlWriter{enc: xml.NewEncoder(w)}
	x.enc.Indent("", "\t")

	if err := x.start("codelist"); err != nil {
		return err
	}
	if err := x.leaf("name", Creator); err != nil {
		return err
	}
	for _, g := range games {
		if err := x.game(g); err != nil {
			return fmt.Errorf("failed to write game %s: %w", g.Identifier(), err)
		}
	}
	if err := x.end("codelist"); err != nil {
		return err
	}
	if err := x.enc.Flush(); err != nil {
		return err
	}

	_, err := io.WriteString(w, "\n")
	return err
}

// XMLGameID formats the <gameid> value. The code list format separates the
// two halves with a space rather than the dash of a GameID.
func XMLGameID(h models.GameHeader) string {
	return fmt.Sprintf("%.4s %08X", h.CartID(), h.Checksum)
}

func (x xmlWriter) game(g *models.Game) error {
	if err := x.start("game"); err != nil {
		return err
	}
	if err := x.leaf("name", g.Name); err != nil {
		return err
	}
	if err := x.leaf("gameid", XMLGameID(g.Header)); err != nil {
		return err
	}
	if g.Header.HasDate() {
		if err := x.leaf("date", g.Header.Date().String()); err != nil {
			return err
		}
	}
	if err := x.nodes(g.Nodes); err != nil {
		return err
	}
	return x.end("game")
}

func (x xmlWriter) nodes(nodes []*models.Node) error {
	for _, n := range nodes {
		var err error
		switch n.Kind() {
		case models.Code:
			err = x.cheat(n)
		case models.Folder:
			err = x.folder(n)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (x xmlWriter) named(n *models.Node) error {
	if err := x.leaf("name", n.Name); err != nil {
		return err
	}
	if n.Description != "" {
		return x.leaf("note", n.Description)
	}
	return nil
}

func (x xmlWriter) cheat(n *models.Node) error {
	if err := x.start("cheat"); err != nil {
		return err
	}
	if err := x.named(n); err != nil {
		return err
	}
	if err := x.leaf("codes", FormatLines(n.Lines())); err != nil {
		return err
	}
	return x.end("cheat")
}

func (x xmlWriter) folder(n *models.Node) error {
	if err := x.start("folder"); err != nil {
		return err
	}
	if err := x.named(n); err != nil {
		return err
	}
	if n.Flag.Modifiers.Has(models.OnlyOne) {
		if err := x.leaf("allowedon", "1"); err != nil {
			return err
		}
	}
	if err := x.nodes(n.Children()); err != nil {
		return err
	}
	return x.end("folder")
}

// FormatLines renders code lines as "XXXXXXXX YYYYYYYY ..." the way they
// are typed into the device.
func FormatLines(lines []models.Line) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, fmt.Sprintf("%08X %08X", l.Address, l.Value))
	}
	return strings.Join(parts, " ")
}
