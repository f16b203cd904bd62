package main

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ardsutil/firmware"
)

func TestRun(t *testing.T) {
	image := []byte("\x01\x02\x03firmware")
	dump := bytes.Repeat([]byte{0xFF}, firmware.Start+firmware.MaxSize)
	copy(dump[firmware.Start:], image)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "ards.nds", dump, 0o644))

	var out bytes.Buffer
	require.NoError(t, run(fs, "ards.nds", &out))
	assert.Equal(t, firmware.Build(image, nil), out.Bytes())

	stored, computed, err := firmware.Verify(out.Bytes(), nil)
	require.NoError(t, err)
	assert.Equal(t, stored, computed)
}

func TestRun_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "short.nds", make([]byte, 16), 0o644))
	require.NoError(t, afero.WriteFile(fs, "blank.nds", bytes.Repeat([]byte{0xFF}, firmware.Start+firmware.MaxSize), 0o644))

	assert.Error(t, run(fs, "short.nds", &bytes.Buffer{}))
	assert.ErrorIs(t, run(fs, "blank.nds", &bytes.Buffer{}), firmware.ErrEmpty)
	assert.Error(t, run(fs, "missing.nds", &bytes.Buffer{}))
}
