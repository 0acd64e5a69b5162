// Package journal keeps an offline punch log in a local buntdb file, for
// kiosks and laptops that record punches without reaching the server.
package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/buntdb"

	"ponto/internal/domain/timeclock"
)

const keyPrefix = "punch:"

// keyTimeLayout is fixed width so keys sort chronologically.
const keyTimeLayout = "2006-01-02T15:04:05.000000000Z"

var ErrInvalidEmployee = errors.New("employee id must be non-empty and free of ':', '*' and '?'")

type Journal struct {
	db *buntdb.DB
}

// Open opens or creates the journal at path; ":memory:" keeps it in memory.
func Open(path string) (*Journal, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Append stores p and returns it with an ID assigned when it had none.
func (j *Journal) Append(p timeclock.Punch) (timeclock.Punch, error) {
	if !validEmployee(p.EmployeeID) {
		return timeclock.Punch{}, ErrInvalidEmployee
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	at := p.At.UTC()
	raw, err := json.Marshal(timeclock.Record{ID: p.ID, EmployeeID: p.EmployeeID, Kind: p.Kind.String(), At: &at})
	if err != nil {
		return timeclock.Punch{}, err
	}
	key := keyPrefix + p.EmployeeID + ":" + at.Format(keyTimeLayout) + ":" + p.ID
	err = j.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(key, string(raw), nil)
		return err
	})
	if err != nil {
		return timeclock.Punch{}, err
	}
	return p, nil
}

// Records returns the employee's punches in chronological order.
func (j *Journal) Records(employeeID string) ([]timeclock.Record, error) {
	if !validEmployee(employeeID) {
		return nil, ErrInvalidEmployee
	}
	var out []timeclock.Record
	var decodeErr error
	err := j.db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys(keyPrefix+employeeID+":*", func(key, value string) bool {
			var rec timeclock.Record
			if err := json.Unmarshal([]byte(value), &rec); err != nil {
				decodeErr = fmt.Errorf("decode %s: %w", key, err)
				return false
			}
			out = append(out, rec)
			return true
		})
	})
	if err != nil {
		return nil, err
	}
	return out, decodeErr
}

func validEmployee(id string) bool {
	return id != "" && !strings.ContainsAny(id, ":*?")
}
