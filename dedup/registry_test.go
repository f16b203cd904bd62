package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ardsutil/models"
)

func TestRegister_Duplicate(t *testing.T) {
	r := NewRegistry()

	status, first := r.Register("ASME-12345678", 0x54000)
	assert.Equal(t, Inserted, status)
	assert.Equal(t, int64(0x54000), first)

	status, first = r.Register("ASME-12345678", 0x154000)
	assert.Equal(t, AlreadyPresent, status)
	assert.Equal(t, int64(0x54000), first)

	assert.Equal(t, 1, r.Len())
}

func TestRegister_Distinct(t *testing.T) {
	r := NewRegistry()
	ids := []models.GameID{"ASME-12345678", "ASME-12345679", "ASMF-12345678", "A-00000000"}

	for i, id := range ids {
		status, _ := r.Register(id, int64(i))
		assert.Equal(t, Inserted, status, "id %s", id)
	}

	assert.Equal(t, len(ids), r.Len())
	assert.Equal(t, ids, r.IDs())

	off, ok := r.FirstSeen("ASMF-12345678")
	assert.True(t, ok)
	assert.Equal(t, int64(2), off)

	_, ok = r.FirstSeen("NONE-00000000")
	assert.False(t, ok)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "inserted", Inserted.String())
	assert.Equal(t, "already present", AlreadyPresent.String())
}
