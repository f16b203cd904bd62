// Package parser materialises ARDS games: the 32-byte header, the code and
// folder tree, and the name block that follows it.
package parser

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/golang/glog"

	"ardsutil/cursor"
	"ardsutil/models"
	"ardsutil/validate"
)

// Parser reads games from a cursor. The zero value reads the canonical flag
// encoding in tolerant mode.
type Parser struct {
	Encoding models.Encoding

	// Strict validates each code section before building its tree and
	// turns an undecodable flag into an error. Tolerant parsing ends the
	// list at such a flag and records a warning instead.
	Strict bool

	// Text converts stored strings to UTF-8.
	Text TextDecoder
}

type record struct {
	at    int64
	raw   uint16
	count uint16
}

// session holds the warnings of one tree read.
type session struct {
	p        *Parser
	c        *cursor.Cursor
	warnings []string
}

func (s *session) warnf(format string, args ...interface{}) {
	w := fmt.Sprintf(format, args...)
	glog.V(2).Info(w)
	s.warnings = append(s.warnings, w)
}

// ReadHeader reads a game header at the cursor and checks its magic.
func (p *Parser) ReadHeader(c *cursor.Cursor) (models.GameHeader, error) {
	at := c.Position()
	b, err := c.ReadFixed(models.HeaderSize)
	if err != nil {
		return models.GameHeader{}, err
	}

	h, err := models.ParseHeader(b)
	if err != nil {
		return h, err
	}
	if !h.Valid() {
		return h, fmt.Errorf("%w at 0x%08x: magic 0x%08x, sentinel 0x%04x", models.ErrBadMagic, at, h.Magic, h.Sentinel)
	}
	return h, nil
}

// ReadTree reads the code and folder records at the cursor up to the
// top-level terminator, leaving the cursor just past it. Folders that end
// up with no entries are dropped. A folder inside a folder ends the list
// (an error in strict mode), so recursion never goes past one level.
func (p *Parser) ReadTree(c *cursor.Cursor) ([]*models.Node, []string, error) {
	s := &session{p: p, c: c}
	nodes, _, err := s.readList(-1, 0)
	return nodes, s.warnings, err
}

// readList reads up to limit records (no limit when negative). A terminator
// met inside a folder belongs to an enclosing list, so it is handed back to
// the caller instead of being re-read.
func (s *session) readList(limit int, depth int) ([]*models.Node, *record, error) {
	var nodes []*models.Node
	var pending *record

	for i := 0; limit < 0 || i < limit; i++ {
		rec := pending
		pending = nil
		if rec == nil {
			r, err := s.readRecord()
			if err != nil {
				return nodes, nil, err
			}
			rec = &r
		}

		flag, ok := models.DecodeFlag(rec.raw, s.p.Encoding)
		if !ok {
			if s.p.Strict {
				return nodes, nil, &models.FormatError{Kind: models.InvalidFlag, Offset: rec.at, Value: rec.raw}
			}
			s.warnf("0x%08x: invalid flag 0x%04x ends the list early", rec.at, rec.raw)
			return nodes, nil, nil
		}

		switch flag.Kind {
		case models.Terminate:
			if depth == 0 {
				return nodes, nil, nil
			}
			s.warnf("0x%08x: folder ended after %d of %d entries", rec.at, i, limit)
			return nodes, rec, nil

		case models.Code:
			lines := make([]models.Line, 0, rec.count)
			for j := 0; j < int(rec.count); j++ {
				l, err := s.readLine()
				if err != nil {
					return nodes, nil, err
				}
				lines = append(lines, l)
			}
			nodes = append(nodes, models.NewCode(flag.Modifiers, lines))

		case models.Folder:
			// folders hold codes only
			if depth > 0 {
				if s.p.Strict {
					return nodes, nil, &models.FormatError{Kind: models.FolderContainsNonCode, Offset: rec.at, Value: rec.raw}
				}
				s.warnf("0x%08x: folder inside a folder ends the list", rec.at)
				return nodes, nil, nil
			}
			if rec.count == 0 {
				continue
			}

			children, stop, err := s.readList(int(rec.count), depth+1)
			if err != nil {
				return nodes, nil, err
			}
			if len(children) > 0 {
				nodes = append(nodes, models.NewFolder(flag.Modifiers, children))
			}

			if stop != nil {
				pending = stop
			}
		}
	}

	return nodes, nil, nil
}

func (s *session) readRecord() (record, error) {
	r := record{at: s.c.Position()}
	var err error
	if r.raw, err = s.c.ReadU16(); err != nil {
		return r, err
	}
	if r.count, err = s.c.ReadU16(); err != nil {
		return r, err
	}
	return r, nil
}

func (s *session) readLine() (models.Line, error) {
	b, err := s.c.ReadFixed(models.LineSize)
	if err != nil {
		return models.Line{}, err
	}
	return models.Line{
		Address: binary.LittleEndian.Uint32(b),
		Value:   binary.LittleEndian.Uint32(b[4:]),
	}, nil
}

// ReadNames reads a name and description for every node in tree order.
// The cursor must be at the node strings of the text block.
func (p *Parser) ReadNames(c *cursor.Cursor, nodes []*models.Node) error {
	for _, n := range nodes {
		var err error
		if n.Name, err = p.readString(c); err != nil {
			return err
		}
		if n.Description, err = p.readString(c); err != nil {
			return err
		}
		if children := n.Children(); children != nil {
			if err := p.ReadNames(c, children); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Parser) readString(c *cursor.Cursor) (string, error) {
	b, err := c.ReadCString()
	if err != nil {
		return "", err
	}
	return p.Text.Decode(b), nil
}

// ReadGame reads the whole game whose header starts at offset. Format
// problems come back as *models.FormatError with absolute offsets.
func (p *Parser) ReadGame(c *cursor.Cursor, offset int64) (*models.Game, error) {
	game, err := p.readGame(c, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to read game at 0x%08x: %w", offset, err)
	}
	return game, nil
}

func (p *Parser) readGame(c *cursor.Cursor, offset int64) (*models.Game, error) {
	if err := c.SeekAbsolute(offset); err != nil {
		return nil, err
	}

	h, err := p.ReadHeader(c)
	if err != nil {
		return nil, err
	}
	glog.V(2).Infof("0x%08x: header %s, %d codes", offset, h.Identifier(), h.NumCodes)

	n, ok := h.CodeSectionLen()
	if !ok {
		return nil, &models.FormatError{Kind: models.BufferOverrun, Offset: offset + 0x08, Value: uint16(h.TextOffset)}
	}
	codeStart := c.Position()
	if n > c.Remaining() {
		return nil, &models.FormatError{Kind: models.BufferOverrun, Offset: codeStart}
	}

	if p.Strict {
		buf, err := c.ReadFixed(int(n))
		if err != nil {
			return nil, err
		}
		if _, err := validate.Segment(buf, h.NumCodes, p.Encoding); err != nil {
			var fe *models.FormatError
			if errors.As(err, &fe) {
				return nil, fe.At(codeStart)
			}
			return nil, err
		}
		if err := c.SeekAbsolute(codeStart); err != nil {
			return nil, err
		}
	}

	// pass 1 may not read into the text block
	section, err := c.Window(codeStart + n)
	if err != nil {
		return nil, err
	}
	nodes, warnings, err := p.ReadTree(section)
	if err != nil {
		if p.Strict || !errors.Is(err, cursor.ErrEndOfData) {
			return nil, err
		}
		warnings = append(warnings, fmt.Sprintf("code section ends at 0x%08x before its terminator", codeStart+n))
	}

	game := &models.Game{
		Offset:   offset,
		Header:   h,
		Nodes:    nodes,
		Warnings: warnings,
	}

	if codes := game.CountCodes(); codes != int(h.NumCodes) {
		game.Warnings = append(game.Warnings, fmt.Sprintf("header declares %d codes, tree holds %d", h.NumCodes, codes))
	}

	text := h.TextStart(offset)
	if end := section.Position(); end != text {
		game.Warnings = append(game.Warnings, fmt.Sprintf("code section ends at 0x%08x, text block starts at 0x%08x", end, text))
	}
	if err := c.SeekAbsolute(text); err != nil {
		return nil, err
	}

	if game.Name, err = p.readString(c); err != nil {
		return nil, err
	}
	if game.Description, err = p.readString(c); err != nil {
		return nil, err
	}
	if err := p.ReadNames(c, nodes); err != nil {
		return nil, err
	}

	return game, nil
}
