package export

import (
	"encoding/json"
	"fmt"
	"io"

	"ardsutil/models"
)

// GameData is the JSON shape of a game.
type GameData struct {
	Offset      int64      `json:"Offset"`
	ID          string     `json:"Id"`
	CartID      string     `json:"CartId"`
	Checksum    string     `json:"Checksum"`
	Name        string     `json:"Name"`
	Description string     `json:"Description,omitempty"`
	Date        string     `json:"Date,omitempty"`
	NumCodes    int        `json:"NumCodes"`
	Entries     []NodeData `json:"Entries"`
	Warnings    []string   `json:"Warnings,omitempty"`
}

// NodeData is the JSON shape of a code or folder.
type NodeData struct {
	Kind        string     `json:"Kind"`
	Modifiers   []string   `json:"Modifiers,omitempty"`
	Name        string     `json:"Name"`
	Description string     `json:"Description,omitempty"`
	Codes       []string   `json:"Codes,omitempty"`
	Entries     []NodeData `json:"Entries,omitempty"`
}

// ToGameData converts a parsed game.
func ToGameData(g *models.Game) GameData {
	data := GameData{
		Offset:      g.Offset,
		ID:          string(g.Identifier()),
		CartID:      g.Header.CartID(),
		Checksum:    fmt.Sprintf("%08X", g.Header.Checksum),
		Name:        g.Name,
		Description: g.Description,
		NumCodes:    int(g.Header.NumCodes),
		Entries:     toNodeData(g.Nodes),
		Warnings:    g.Warnings,
	}
	if g.Header.HasDate() {
		data.Date = g.Header.Date().String()
	}
	return data
}

func toNodeData(nodes []*models.Node) []NodeData {
	out := make([]NodeData, 0, len(nodes))
	for _, n := range nodes {
		d := NodeData{
			Kind:        n.Kind().String(),
			Name:        n.Name,
			Description: n.Description,
		}
		if n.Flag.Modifiers != 0 {
			d.Modifiers = splitModifiers(n.Flag.Modifiers)
		}
		switch n.Kind() {
		case models.Code:
			for _, l := range n.Lines() {
				d.Codes = append(d.Codes, fmt.Sprintf("%08X %08X", l.Address, l.Value))
			}
		case models.Folder:
			d.Entries = toNodeData(n.Children())
		}
		out = append(out, d)
	}
	return out
}

func splitModifiers(m models.Modifier) []string {
	var out []string
	for _, bit := range []models.Modifier{models.OnlyOne, models.AlwaysOn, models.Master, models.OnByDefault} {
		if m.Has(bit) {
			out = append(out, bit.String())
		}
	}
	return out
}

// WriteJSON writes games as an indented JSON array.
func WriteJSON(w io.Writer, games []*models.Game) error {
	data := make([]GameData, 0, len(games))
	for _, g := range games {
		data = append(data, ToGameData(g))
	}

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode games: %w", err)
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("failed to write games: %w", err)
	}
	return nil
}

// Deduplicate drops games read twice from the same offset.
func Deduplicate(games []*models.Game) []*models.Game {
	seen := make(map[string]bool)
	var unique []*models.Game

	for _, g := range games {
		key := fmt.Sprintf("%s:%d", g.Identifier(), g.Offset)
		if !seen[key] {
			seen[key] = true
			unique = append(unique, g)
		}
	}

	return unique
}
