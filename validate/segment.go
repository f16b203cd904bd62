// Package validate checks that a byte range is a well-formed ARDS code
// section before anything tries to build a tree from it.
package validate

import (
	"encoding/binary"

	"ardsutil/models"
)

// Summary describes a code section that passed validation.
type Summary struct {
	Codes        int   // code records, folder contents included
	Folders      int   // folders with at least one entry
	EmptyFolders int   // folders declaring zero entries
	Length       int64 // bytes consumed, terminator included
}

// Named is the number of records that own a name and description pair in
// the text block.
func (s Summary) Named() int {
	return s.Codes + s.Folders
}

// Segment walks buf as a flat list of (flag, count) records and proves it
// holds exactly declared codes followed by a terminator. Folders may only
// hold codes; the ARDS has no nested folders. Errors are *models.FormatError
// with offsets relative to buf.
func Segment(buf []byte, declared uint16, enc models.Encoding) (Summary, error) {
	var sum Summary
	size := int64(len(buf))
	pos := int64(0)

	record := func() (raw, count uint16, ok bool) {
		if pos+models.RecordSize > size {
			return 0, 0, false
		}
		raw = binary.LittleEndian.Uint16(buf[pos:])
		count = binary.LittleEndian.Uint16(buf[pos+2:])
		return raw, count, true
	}

	for {
		if pos == size {
			return sum, fail(models.CountMismatch, pos, 0)
		}

		at := pos
		raw, count, ok := record()
		if !ok {
			return sum, fail(models.BufferOverrun, at, 0)
		}

		flag, ok := models.DecodeFlag(raw, enc)
		if !ok {
			return sum, fail(models.InvalidFlag, at, raw)
		}
		pos += models.RecordSize

		switch flag.Kind {
		case models.Terminate:
			if sum.Codes != int(declared) {
				return sum, fail(models.CountMismatch, at, count)
			}
			sum.Length = pos
			return sum, nil

		case models.Code:
			pos += models.LineSize * int64(count)
			if pos > size {
				return sum, fail(models.BufferOverrun, at, count)
			}
			sum.Codes++
			if sum.Codes > int(declared) {
				return sum, fail(models.CountMismatch, at, count)
			}

		case models.Folder:
			if count == 0 {
				sum.EmptyFolders++
				continue
			}
			sum.Folders++

			for j := 0; j < int(count); j++ {
				in := pos
				inRaw, inCount, ok := record()
				if !ok {
					return sum, fail(models.BufferOverrun, in, 0)
				}

				inFlag, ok := models.DecodeFlag(inRaw, enc)
				if !ok {
					return sum, fail(models.InvalidFlag, in, inRaw)
				}
				if inFlag.Kind != models.Code {
					return sum, fail(models.FolderContainsNonCode, in, inRaw)
				}

				pos += models.RecordSize + models.LineSize*int64(inCount)
				if pos > size {
					return sum, fail(models.BufferOverrun, in, inCount)
				}

				sum.Codes++
				if sum.Codes > int(declared) {
					return sum, fail(models.CountMismatch, in, inCount)
				}
			}
		}
	}
}

func fail(kind models.ErrorKind, offset int64, value uint16) error {
	return &models.FormatError{Kind: kind, Offset: offset, Value: value}
}
