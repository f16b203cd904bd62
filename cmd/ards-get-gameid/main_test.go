package main

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ardsutil/checksum"
)

func TestRun(t *testing.T) {
	rom := make([]byte, 0x4000)
	copy(rom[0x0C:], "ASME")
	sum, err := checksum.GameIDChecksum(rom)
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "game.nds", rom, 0o644))

	var out bytes.Buffer
	require.NoError(t, run(fs, "game.nds", &out))
	assert.Equal(t, fmt.Sprintf("ASME-%08X\n", sum), out.String())
}

func TestRun_TooShort(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "game.nds", make([]byte, 0x100), 0o644))
	assert.Error(t, run(fs, "game.nds", &bytes.Buffer{}))
}
