// Package rescue finds ARDS games in a raw dump without trusting any game
// list. Every position that carries the header magic is checked with the
// segment validator before it is reported.
package rescue

import (
	"errors"
	"io"

	"github.com/golang/glog"

	"ardsutil/cursor"
	"ardsutil/dedup"
	"ardsutil/models"
	"ardsutil/parser"
	"ardsutil/validate"
)

const (
	// DefaultBase is where the first game sits in an ARDS dump.
	DefaultBase = 0x54000
	// RegionSize is the size of one mirrored region of a dump.
	RegionSize = 0x100000
)

// Policy decides how the scanner moves between candidates.
type Policy int

const (
	// BruteForce tries every byte offset and never trusts record lengths.
	BruteForce Policy = iota
	// Sequential trusts each record's length and stops at the first
	// position that does not hold a game.
	Sequential
)

// Resync moves a scan position before it is tried.
type Resync interface {
	Snap(pos int64) int64
}

// RegionResync moves any position that falls below Base within its Size
// aligned region up to Base. Games only live at 0x54000 and above in each
// megabyte of a dump.
type RegionResync struct {
	Base int64
	Size int64
}

func (r RegionResync) Snap(pos int64) int64 {
	if r.Size <= 0 {
		return pos
	}
	if off := pos % r.Size; off < r.Base {
		return pos - off + r.Base
	}
	return pos
}

// NoResync leaves positions alone.
type NoResync struct{}

func (NoResync) Snap(pos int64) int64 { return pos }

// Options configures a scan.
type Options struct {
	Base   int64
	Policy Policy
	Resync Resync

	// AllowDuplicates reports games whose ID was already found.
	AllowDuplicates bool
	// SkipNames stops after the game name instead of walking past every
	// code name in the text block.
	SkipNames bool

	Encoding models.Encoding
	Text     parser.TextDecoder

	// Rejected is told about magic matches that failed validation.
	Rejected func(offset int64, err error)
	// Duplicate is told about suppressed duplicates.
	Duplicate func(f Finding)
}

// DefaultOptions scans from 0x54000 with region resync, suppressing duplicates.
func DefaultOptions() Options {
	return Options{
		Base:   DefaultBase,
		Policy: BruteForce,
		Resync: RegionResync{Base: DefaultBase, Size: RegionSize},
	}
}

// Finding is a verified game location.
type Finding struct {
	Offset      int64
	Header      models.GameHeader
	ID          models.GameID
	Name        string
	Description string
	Summary     validate.Summary
	Duplicate   bool
	FirstSeen   int64
}

// Scanner walks one dump. It is not safe for concurrent use.
type Scanner struct {
	c    *cursor.Cursor
	opts Options
	p    parser.Parser
	reg  *dedup.Registry
	pos  int64
	done bool
}

func New(c *cursor.Cursor, opts Options) *Scanner {
	if opts.Resync == nil {
		opts.Resync = NoResync{}
	}
	return &Scanner{
		c:    c,
		opts: opts,
		p:    parser.Parser{Encoding: opts.Encoding, Text: opts.Text},
		reg:  dedup.NewRegistry(),
		pos:  opts.Base,
	}
}

// Registry exposes the IDs seen so far.
func (s *Scanner) Registry() *dedup.Registry {
	return s.reg
}

// Next returns the next game, or io.EOF once the dump is exhausted. Any
// other error is an I/O failure of the underlying source.
func (s *Scanner) Next() (Finding, error) {
	for !s.done {
		pos := s.opts.Resync.Snap(s.pos)
		if pos < 0 || pos+models.HeaderSize > s.c.Len() {
			break
		}

		f, next, err := s.probe(pos)
		if err != nil {
			if !candidateError(err) {
				s.done = true
				return Finding{}, err
			}
			if !errors.Is(err, models.ErrBadMagic) {
				glog.V(2).Infof("0x%08x: rejected: %v", pos, err)
				if s.opts.Rejected != nil {
					s.opts.Rejected(pos, err)
				}
			}
			if s.opts.Policy == Sequential {
				break
			}
			s.pos = pos + 1
			continue
		}

		s.pos = next
		if s.opts.Policy == BruteForce && next <= pos {
			s.pos = pos + 1
		}

		if f.Duplicate && !s.opts.AllowDuplicates {
			glog.V(1).Infof("0x%08x: %s already seen at 0x%08x", pos, f.ID, f.FirstSeen)
			if s.opts.Duplicate != nil {
				s.opts.Duplicate(f)
			}
			continue
		}
		return f, nil
	}

	s.done = true
	return Finding{}, io.EOF
}

// All drains the scanner.
func (s *Scanner) All() ([]Finding, error) {
	var out []Finding
	for {
		f, err := s.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, f)
	}
}

// probe checks the candidate at pos and returns where scanning continues.
func (s *Scanner) probe(pos int64) (Finding, int64, error) {
	c := s.c
	if err := c.SeekAbsolute(pos); err != nil {
		return Finding{}, 0, err
	}

	// most positions fail here, so skip building a detailed error
	magic, err := c.ReadU32()
	if err != nil {
		return Finding{}, 0, err
	}
	if magic != models.HeaderMagic {
		return Finding{}, 0, models.ErrBadMagic
	}
	if err := c.SeekAbsolute(pos); err != nil {
		return Finding{}, 0, err
	}

	h, err := s.p.ReadHeader(c)
	if err != nil {
		return Finding{}, 0, err
	}

	n, ok := h.CodeSectionLen()
	if !ok {
		return Finding{}, 0, &models.FormatError{Kind: models.BufferOverrun, Offset: pos + 0x08}
	}
	codeStart := c.Position()
	if n > c.Remaining() {
		return Finding{}, 0, &models.FormatError{Kind: models.BufferOverrun, Offset: codeStart}
	}

	buf, err := c.ReadFixed(int(n))
	if err != nil {
		return Finding{}, 0, err
	}
	sum, err := validate.Segment(buf, h.NumCodes, s.opts.Encoding)
	if err != nil {
		var fe *models.FormatError
		if errors.As(err, &fe) {
			return Finding{}, 0, fe.At(codeStart)
		}
		return Finding{}, 0, err
	}

	f := Finding{
		Offset:  pos,
		Header:  h,
		ID:      h.Identifier(),
		Summary: sum,
	}

	if err := c.SeekAbsolute(h.TextStart(pos)); err != nil {
		return Finding{}, 0, err
	}
	name, err := c.ReadCString()
	if err != nil {
		return Finding{}, 0, err
	}
	desc, err := c.ReadCString()
	if err != nil {
		return Finding{}, 0, err
	}
	f.Name = s.p.Text.Decode(name)
	f.Description = s.p.Text.Decode(desc)

	if !s.opts.SkipNames {
		for i := 0; i < 2*sum.Named(); i++ {
			if err := c.SkipCString(); err != nil {
				return Finding{}, 0, err
			}
		}
	}

	status, first := s.reg.Register(f.ID, pos)
	f.Duplicate = status == dedup.AlreadyPresent
	f.FirstSeen = first

	return f, c.Position(), nil
}

// candidateError reports whether err only means "no game here".
func candidateError(err error) bool {
	var fe *models.FormatError
	return errors.As(err, &fe) ||
		errors.Is(err, models.ErrBadMagic) ||
		errors.Is(err, cursor.ErrEndOfData) ||
		errors.Is(err, cursor.ErrSeekOutOfRange)
}
