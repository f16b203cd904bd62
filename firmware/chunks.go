package firmware

import (
	"bytes"
	"fmt"
)

const (
	// Chunks is how many mirrored regions a full 16 MiB dump holds.
	Chunks    = 16
	ChunkSize = 0x00100000
	DumpSize  = Chunks * ChunkSize
)

// SplitChunks checks the dump size and cuts it into its regions.
func SplitChunks(dump []byte) ([][]byte, error) {
	if len(dump) != DumpSize {
		return nil, fmt.Errorf("file size is not %d bytes (got %d bytes instead)", DumpSize, len(dump))
	}
	out := make([][]byte, Chunks)
	for i := range out {
		out[i] = dump[i*ChunkSize : (i+1)*ChunkSize]
	}
	return out, nil
}

// LinearCheck compares each chunk with the one before it and stops at the
// first difference. It returns the bytes.Compare result of that pair.
func LinearCheck(chunks [][]byte) int {
	for i := 1; i < len(chunks); i++ {
		if c := bytes.Compare(chunks[i-1], chunks[i]); c != 0 {
			return c
		}
	}
	return 0
}

// SquareCheck compares every pair of chunks. table[i][j] is
// bytes.Compare(chunks[i], chunks[j]).
func SquareCheck(chunks [][]byte) [][]int {
	table := make([][]int, len(chunks))
	for i := range table {
		table[i] = make([]int, len(chunks))
	}

	for i := range chunks {
		for j := range chunks {
			switch {
			case i == j:
				table[i][j] = 0
			case i > j:
				table[i][j] = -table[j][i]
			default:
				table[i][j] = bytes.Compare(chunks[i], chunks[j])
			}
		}
	}
	return table
}

// Differs reports whether any pair in a SquareCheck table differs.
func Differs(table [][]int) bool {
	for _, row := range table {
		for _, v := range row {
			if v != 0 {
				return true
			}
		}
	}
	return false
}
