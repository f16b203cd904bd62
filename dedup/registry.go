// Package dedup remembers which game IDs a scan has already reported.
package dedup

import "ardsutil/models"

// Status is the outcome of Register.
type Status int

const (
	Inserted Status = iota
	AlreadyPresent
)

func (s Status) String() string {
	if s == AlreadyPresent {
		return "already present"
	}
	return "inserted"
}

// Registry maps each game ID to the offset it was first seen at. It lives
// for one scan session.
type Registry struct {
	seen  map[models.GameID]int64
	order []models.GameID
}

func NewRegistry() *Registry {
	return &Registry{seen: make(map[models.GameID]int64)}
}

// Register records id at offset. For a repeat it returns AlreadyPresent and
// the offset of the first sighting; that is not an error.
func (r *Registry) Register(id models.GameID, offset int64) (Status, int64) {
	if first, ok := r.seen[id]; ok {
		return AlreadyPresent, first
	}
	r.seen[id] = offset
	r.order = append(r.order, id)
	return Inserted, offset
}

// FirstSeen returns where id was first registered.
func (r *Registry) FirstSeen(id models.GameID) (int64, bool) {
	off, ok := r.seen[id]
	return off, ok
}

func (r *Registry) Len() int {
	return len(r.seen)
}

// IDs lists registered IDs in the order they were first seen.
func (r *Registry) IDs() []models.GameID {
	return append([]models.GameID(nil), r.order...)
}
