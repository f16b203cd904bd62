package parser

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
)

// TextDecoder turns stored name bytes into UTF-8. With no charset set,
// valid UTF-8 passes through and anything else is read as Windows-1252.
type TextDecoder struct {
	Charset encoding.Encoding
}

// NewTextDecoder looks a charset up by its WHATWG name ("shift_jis",
// "windows-1252", ...). An empty name gives the default decoder.
func NewTextDecoder(name string) (TextDecoder, error) {
	if name == "" {
		return TextDecoder{}, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return TextDecoder{}, fmt.Errorf("unknown charset %q: %w", name, err)
	}
	return TextDecoder{Charset: enc}, nil
}

// Decode never fails; bytes the charset rejects are kept as they are.
func (d TextDecoder) Decode(b []byte) string {
	if d.Charset == nil {
		if utf8.Valid(b) {
			return string(b)
		}
		out, err := charmap.Windows1252.NewDecoder().Bytes(b)
		if err != nil {
			return string(b)
		}
		return string(out)
	}

	out, err := d.Charset.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}
