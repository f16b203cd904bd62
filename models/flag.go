package models

import (
	"fmt"
	"strings"
)

// Kind is what a code record is. It lives in the low two bits of a flag.
type Kind uint8

const (
	Terminate Kind = iota
	Code
	Folder
)

func (k Kind) String() string {
	switch k {
	case Terminate:
		return "terminate"
	case Code:
		return "code"
	case Folder:
		return "folder"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Modifier bits sit above the kind bits and only apply to codes and folders.
type Modifier uint16

const (
	// OnlyOne marks a radio folder: at most one child may be active.
	OnlyOne  Modifier = 0x04
	AlwaysOn Modifier = 0x08
	// Master codes are applied before every other code.
	Master      Modifier = 0x10
	OnByDefault Modifier = 0x20

	kindMask      = 0x03
	knownModifier = OnlyOne | AlwaysOn | Master | OnByDefault
)

func (m Modifier) Has(o Modifier) bool {
	return m&o == o
}

func (m Modifier) String() string {
	var parts []string
	for _, f := range []struct {
		bit  Modifier
		name string
	}{
		{OnlyOne, "only-one"},
		{AlwaysOn, "always-on"},
		{Master, "master"},
		{OnByDefault, "on-by-default"},
	} {
		if m.Has(f.bit) {
			parts = append(parts, f.name)
		}
	}
	return strings.Join(parts, "|")
}

// Encoding selects how raw flag words are decoded.
type Encoding int

const (
	// Canonical takes the kind from bits 0-1 and modifiers from the bits
	// above. Undefined bits are rejected.
	Canonical Encoding = iota

	// Legacy looks at the low byte only and accepts the raw values 0, 1, 2
	// and 6. It exists for dumps written by older firmware.
	Legacy
)

func (e Encoding) String() string {
	if e == Legacy {
		return "legacy"
	}
	return "canonical"
}

// Flag is a decoded code record flag.
type Flag struct {
	Kind      Kind
	Modifiers Modifier
}

// Raw re-encodes the flag in the canonical layout.
func (f Flag) Raw() uint16 {
	return uint16(f.Kind) | uint16(f.Modifiers)
}

func (f Flag) String() string {
	if f.Modifiers == 0 {
		return f.Kind.String()
	}
	return f.Kind.String() + "{" + f.Modifiers.String() + "}"
}

// DecodeFlag turns a raw flag word into a Flag. ok is false for patterns
// the encoding does not define.
func DecodeFlag(raw uint16, enc Encoding) (Flag, bool) {
	if enc == Legacy {
		switch raw & 0xFF {
		case 0:
			return Flag{Kind: Terminate}, true
		case 1:
			return Flag{Kind: Code}, true
		case 2:
			return Flag{Kind: Folder}, true
		case 6:
			return Flag{Kind: Folder, Modifiers: OnlyOne}, true
		}
		return Flag{}, false
	}

	kind := Kind(raw & kindMask)
	mods := Modifier(raw &^ kindMask)

	switch {
	case kind > Folder:
		return Flag{}, false
	case mods&^knownModifier != 0:
		return Flag{}, false
	case kind == Terminate && mods != 0:
		return Flag{}, false
	}

	return Flag{Kind: kind, Modifiers: mods}, true
}
