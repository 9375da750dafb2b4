package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// Executor is satisfied by both *sql.DB and *sql.Tx so helpers can run
// inside or outside a transaction.
type Executor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// isUniqueConstraintErr returns true when the error indicates a
// unique/constraint violation.
func isUniqueConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unique") || strings.Contains(s, "constraint failed")
}

// Placeholders returns n comma-joined parameter markers for a single
// IN (...) membership test. Multi-valued filters always go through one
// membership test, never stacked OR clauses.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(",?", n)[1:]
}

// Int64Args converts rowids to driver arguments for use with Placeholders.
func Int64Args(vals []int64) []interface{} {
	args := make([]interface{}, len(vals))
	for i, v := range vals {
		args[i] = v
	}
	return args
}

// StringArgs converts strings to driver arguments for use with Placeholders.
func StringArgs(vals []string) []interface{} {
	args := make([]interface{}, len(vals))
	for i, v := range vals {
		args[i] = v
	}
	return args
}

// EncodeMetadata serializes a metadata map to its stored JSON form. Empty
// maps are stored as NULL.
func EncodeMetadata(m map[string]string) (interface{}, error) {
	if len(m) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	return string(b), nil
}

// DecodeMetadata parses the stored JSON form of a metadata map.
func DecodeMetadata(s sql.NullString) (map[string]string, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(s.String), &m); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return m, nil
}

// internRow returns the rowid for value in a (rowid, name) lookup table,
// inserting it if absent. Lookup tables only ever grow.
func internRow(ex Executor, table, column, value string) (int64, error) {
	const maxRetries = 3
	var id int64
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := ex.QueryRow(
			`SELECT rowid FROM `+table+` WHERE `+column+` = ?`, value,
		).Scan(&id)
		if err == nil {
			return id, nil
		}
		if err != sql.ErrNoRows {
			return 0, err
		}
		res, err := ex.Exec(
			`INSERT INTO `+table+` (`+column+`) VALUES (?)`, value,
		)
		if err != nil {
			if isUniqueConstraintErr(err) {
				continue
			}
			return 0, err
		}
		return res.LastInsertId()
	}
	return 0, fmt.Errorf("could not intern %q into %s after %d retries", value, table, maxRetries)
}

// InternRelationType returns the rowid of a relation-type name, creating it
// on first use.
func InternRelationType(ex Executor, name string) (int64, error) {
	return internRow(ex, "relation_types", "type", name)
}

// InternLexfile returns the rowid of a lexicographer-file name, creating it
// on first use.
func InternLexfile(ex Executor, name string) (int64, error) {
	return internRow(ex, "lexfiles", "name", name)
}

// ILIStatusID resolves one of the seeded ILI status names.
func ILIStatusID(ex Executor, status string) (int64, error) {
	var id int64
	err := ex.QueryRow(`SELECT rowid FROM ili_statuses WHERE status = ?`, status).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ili status %q: %w", status, err)
	}
	return id, nil
}

// GetOrCreateILI returns the rowid of an ILI key, inserting it with the
// given status when it is not yet known. An ILI referenced before it is
// formally defined enters as presupposed.
func GetOrCreateILI(ex Executor, id, status string) (int64, error) {
	var rowid int64
	err := ex.QueryRow(`SELECT rowid FROM ilis WHERE id = ?`, id).Scan(&rowid)
	if err == nil {
		return rowid, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}
	statusID, err := ILIStatusID(ex, status)
	if err != nil {
		return 0, err
	}
	res, err := ex.Exec(
		`INSERT INTO ilis (id, status_rowid) VALUES (?, ?)`, id, statusID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert ili %q: %w", id, err)
	}
	return res.LastInsertId()
}
