package models

import "time"

// Scan is one run of the catalog tool over one dump.
type Scan struct {
	ID        string
	StartedAt time.Time
	ROM       string
	ROMSHA1   string
}

// CatalogEntry is a game as stored in the catalog database.
type CatalogEntry struct {
	Identifier  GameID
	Offset      int64
	Name        string
	Description string
	CartID      string
	Checksum    uint32
	NumCodes    int
	ScanID      string
	ROMSHA1     string
}
