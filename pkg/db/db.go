// Package db owns the persisted schema, connection lifecycle, and the
// structural compatibility check performed on every open.
package db

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// ErrIncompatibleSchema is returned when an existing database's structure
// does not match any schema revision this code can read.
var ErrIncompatibleSchema = errors.New("incompatible database schema")

// Options configures a connection handle.
type Options struct {
	// AllowConcurrent lifts the one-open-connection cap. SQLite provides no
	// implicit cross-connection synchronization during writes; enabling this
	// delegates safety entirely to SQLite's own locking.
	AllowConcurrent bool
	// Logger receives diagnostics. nil means slog.Default().
	Logger *slog.Logger
}

// DB is one handle on a storage location. A fresh location is initialized
// with the full schema and seed rows; an existing one is fingerprint-checked
// before any query runs against it.
type DB struct {
	conn *sql.DB
	path string
	log  *slog.Logger
}

// Open opens (and if necessary initializes) the database at path.
func Open(path string, opts *Options) (*DB, error) {
	if opts == nil {
		opts = &Options{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	if !opts.AllowConcurrent {
		// One connection keeps :memory: databases coherent and reflects the
		// single-goroutine access model.
		conn.SetMaxOpenConns(1)
	}

	d := &DB{conn: conn, path: path, log: logger}
	if err := d.initialize(); err != nil {
		conn.Close()
		return nil, err
	}
	return d, nil
}

// OpenDB wraps an already-opened connection pool. The caller is responsible
// for the pool's foreign-key and connection-cap configuration; the schema is
// still initialized or fingerprint-checked exactly as in Open.
func OpenDB(conn *sql.DB, opts *Options) (*DB, error) {
	if opts == nil {
		opts = &Options{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	d := &DB{conn: conn, log: logger}
	if err := d.initialize(); err != nil {
		return nil, err
	}
	return d, nil
}

// dsn builds the driver connection string as a file: URI. URI-significant
// characters in the path are percent-escaped so a filename containing '?'
// or '#' survives, and foreign keys are enforced on every connection so
// cascades hold even when the pool reopens connections. ":memory:" keeps
// its usual meaning.
func dsn(path string) string {
	r := strings.NewReplacer("%", "%25", "?", "%3F", "#", "%23")
	return "file:" + r.Replace(path) + "?_foreign_keys=1"
}

// Conn exposes the underlying connection pool.
func (d *DB) Conn() *sql.DB { return d.conn }

// Path returns the storage location this handle was opened on.
func (d *DB) Path() string { return d.path }

// Close releases the connection.
func (d *DB) Close() error { return d.conn.Close() }

func (d *DB) initialize() error {
	var tables int
	err := d.conn.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table'`,
	).Scan(&tables)
	if err != nil {
		return fmt.Errorf("inspect database: %w", err)
	}
	if tables == 0 {
		d.log.Debug("initializing empty database", slog.String("path", d.path))
		return InitDB(d.conn)
	}
	return CheckCompatible(d.conn)
}

// InitDB materializes the schema and seed lookup rows on the given
// connection.
func InitDB(ex Executor) error {
	for _, src := range []string{schemaSQL, seedSQL} {
		for _, s := range strings.Split(src, ";") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			if _, err := ex.Exec(s); err != nil {
				return fmt.Errorf("initialize schema: %w", err)
			}
		}
	}
	return nil
}

// Fingerprint computes the structural fingerprint of the schema behind ex:
// SHA-256 over the sorted, whitespace-normalized CREATE statements in
// sqlite_master. Data rows do not affect it.
func Fingerprint(ex Executor) (string, error) {
	rows, err := ex.Query(
		`SELECT sql FROM sqlite_master
		 WHERE sql IS NOT NULL AND name NOT LIKE 'sqlite_%'`,
	)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var stmts []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return "", err
		}
		stmts = append(stmts, strings.Join(strings.Fields(s), " "))
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	sort.Strings(stmts)

	h := sha256.New()
	for _, s := range stmts {
		h.Write([]byte(s))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

var (
	currentOnce sync.Once
	currentFP   string
	currentErr  error
)

// currentFingerprint builds the schema in a scratch in-memory database and
// fingerprints it, so the expected value always tracks schemaSQL.
func currentFingerprint() (string, error) {
	currentOnce.Do(func() {
		mem, err := sql.Open("sqlite3", ":memory:")
		if err != nil {
			currentErr = err
			return
		}
		defer mem.Close()
		mem.SetMaxOpenConns(1)
		if err := InitDB(mem); err != nil {
			currentErr = err
			return
		}
		currentFP, currentErr = Fingerprint(mem)
	})
	return currentFP, currentErr
}

// CheckCompatible verifies the schema behind ex against the set of
// fingerprints this code can read. A mismatch is fatal: operating silently
// against stale structure corrupts results, so the caller gets a
// remediation hint instead.
func CheckCompatible(ex Executor) error {
	want, err := currentFingerprint()
	if err != nil {
		return fmt.Errorf("compute schema fingerprint: %w", err)
	}
	got, err := Fingerprint(ex)
	if err != nil {
		return fmt.Errorf("read schema fingerprint: %w", err)
	}
	if got == want {
		return nil
	}
	for _, fp := range compatibleFingerprints {
		if got == fp {
			return nil
		}
	}
	return fmt.Errorf(
		"%w: fingerprint %.12s does not match any supported revision; "+
			"rebuild the database from lexicon sources or delete it and reload",
		ErrIncompatibleSchema, got,
	)
}

// LexiconListing is the minimal description of an installed lexicon,
// readable even from incompatible databases.
type LexiconListing struct {
	ID      string
	Version string
	Label   string
}

// ListLexicons returns a best-effort listing of installed lexicons. It never
// fails: if the lexicons table is unreadable (for example because the schema
// check refused the file) it returns nil.
func (d *DB) ListLexicons() []LexiconListing {
	rows, err := d.conn.Query(`SELECT id, version, label FROM lexicons ORDER BY rowid`)
	if err != nil {
		d.log.Debug("lexicon listing unavailable", slog.String("error", err.Error()))
		return nil
	}
	defer rows.Close()
	var out []LexiconListing
	for rows.Next() {
		var l LexiconListing
		var label sql.NullString
		if err := rows.Scan(&l.ID, &l.Version, &label); err != nil {
			return out
		}
		l.Label = label.String
		out = append(out, l)
	}
	return out
}

// RelaxDurability turns off synchronous writes for the duration of a bulk
// load. A crash while relaxed may corrupt the store; callers must restore
// afterwards.
func (d *DB) RelaxDurability() error {
	_, err := d.conn.Exec(`PRAGMA synchronous = OFF`)
	return err
}

// RestoreDurability reinstates the default durability guarantees.
func (d *DB) RestoreDurability() error {
	_, err := d.conn.Exec(`PRAGMA synchronous = FULL`)
	return err
}
