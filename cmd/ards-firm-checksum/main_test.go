package main

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ardsutil/firmware"
)

func TestRun(t *testing.T) {
	image := []byte("firmware image body")
	file := firmware.Build(image, nil)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "firm.bin", file, 0o644))

	var out bytes.Buffer
	require.NoError(t, run(fs, "firm.bin", false, &out))
	assert.Equal(t, fmt.Sprintf("%04X\n", firmware.Checksum(image, nil)), out.String())

	out.Reset()
	require.NoError(t, run(fs, "firm.bin", true, &out))
	assert.Contains(t, out.String(), "OK")
}

func TestRun_VerifyMismatch(t *testing.T) {
	file := firmware.Build([]byte("firmware image body"), nil)
	file[len(file)-1] ^= 0xFF

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "firm.bin", file, 0o644))

	assert.Error(t, run(fs, "firm.bin", true, &bytes.Buffer{}))
	assert.NoError(t, run(fs, "firm.bin", false, &bytes.Buffer{}))
}

func TestRun_TooShort(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "firm.bin", []byte("FIRM\x00\x00\x00\x00"), 0o644))
	assert.Error(t, run(fs, "firm.bin", false, &bytes.Buffer{}))
}
