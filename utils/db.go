package utils

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"ardsutil/models"
)

//go:embed schema.sql
var schema string

var db *sql.DB

// InitDB opens the catalog at databasePath and makes sure its tables exist.
func InitDB(databasePath string) (*sql.DB, error) {
	var err error
	db, err = sql.Open("sqlite3", databasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", databasePath, err)
	}

	if err := InitSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func CloseDB() error {
	if db == nil {
		return nil
	}
	return db.Close()
}

func InitSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// NewScan records the start of a scan over rom and returns it.
func NewScan(db *sql.DB, rom, romSHA1 string) (models.Scan, error) {
	scan := models.Scan{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		ROM:       rom,
		ROMSHA1:   romSHA1,
	}

	_, err := db.Exec(`INSERT INTO scans (id, started_at, rom, rom_sha1) VALUES (?, ?, ?, ?)`,
		scan.ID, scan.StartedAt.Format(time.RFC3339), scan.ROM, scan.ROMSHA1)
	if err != nil {
		return scan, fmt.Errorf("failed to insert scan for %s: %w", rom, err)
	}

	return scan, nil
}

// InsertGames stores entries under scan. A game already catalogued for the
// same dump contents is left alone. It returns how many rows were added.
func InsertGames(db *sql.DB, scan models.Scan, entries []models.CatalogEntry) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO games
			(identifier, rom_offset, name, description, cart_id, checksum, num_codes, scan_id, rom_sha1)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	added := 0
	for _, e := range entries {
		res, err := stmt.Exec(string(e.Identifier), e.Offset, e.Name, e.Description,
			e.CartID, int64(e.Checksum), e.NumCodes, scan.ID, scan.ROMSHA1)
		if err != nil {
			return 0, fmt.Errorf("failed to insert game %s: %w", e.Identifier, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			added += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return added, nil
}

const selectGames = `SELECT identifier, rom_offset, name, description, cart_id, checksum, num_codes, scan_id, rom_sha1 FROM games`

func FindByIdentifier(db *sql.DB, id models.GameID) ([]models.CatalogEntry, error) {
	if db == nil {
		return nil, errors.New("database is not initialized")
	}

	entries, err := queryGames(db, selectGames+` WHERE UPPER(identifier) = UPPER(?) ORDER BY rom_sha1, rom_offset`, string(id))
	if err != nil {
		return nil, fmt.Errorf("failed to query game by identifier: %w", err)
	}
	return entries, nil
}

func FindByName(db *sql.DB, name string) ([]models.CatalogEntry, error) {
	if db == nil {
		return nil, errors.New("database is not initialized")
	}

	entries, err := queryGames(db, selectGames+` WHERE LOWER(name) LIKE '%' || LOWER(?) || '%' ORDER BY name, rom_offset`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query game by name: %w", err)
	}
	return entries, nil
}

func queryGames(db *sql.DB, query string, args ...interface{}) ([]models.CatalogEntry, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CatalogEntry
	for rows.Next() {
		var e models.CatalogEntry
		var id string
		var sum int64
		if err := rows.Scan(&id, &e.Offset, &e.Name, &e.Description, &e.CartID, &sum, &e.NumCodes, &e.ScanID, &e.ROMSHA1); err != nil {
			return nil, err
		}
		e.Identifier = models.GameID(id)
		e.Checksum = uint32(sum)
		out = append(out, e)
	}
	return out, rows.Err()
}
