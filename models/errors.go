package models

import (
	"errors"
	"fmt"
)

// ErrBadMagic is returned when a header's magic or sentinel is wrong.
var ErrBadMagic = errors.New("magic number mismatch")

// ErrorKind classifies a malformed code section.
type ErrorKind int

const (
	InvalidFlag ErrorKind = iota + 1
	FolderContainsNonCode
	BufferOverrun
	CountMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidFlag:
		return "Invalid flag was found"
	case FolderContainsNonCode:
		return "Flag inside folder was not a code"
	case BufferOverrun:
		return "Exceeded buffer size"
	case CountMismatch:
		return "Code count does not match header"
	}
	return "Undocumented error"
}

// FormatError reports where a code section went wrong. Offset is relative
// to whatever buffer was being examined; callers that know the absolute
// position move it with At.
type FormatError struct {
	Kind   ErrorKind
	Offset int64
	Value  uint16
}

func (e *FormatError) Error() string {
	if e.Kind == InvalidFlag {
		return fmt.Sprintf("0x%08x: %s (%d)", e.Offset, e.Kind, e.Value)
	}
	return fmt.Sprintf("0x%08x: %s", e.Offset, e.Kind)
}

// At returns a copy with Offset shifted by base.
func (e *FormatError) At(base int64) *FormatError {
	c := *e
	c.Offset += base
	return &c
}

// IsFormatError reports whether err is a FormatError of kind k.
func IsFormatError(err error, k ErrorKind) bool {
	var fe *FormatError
	return errors.As(err, &fe) && fe.Kind == k
}
