package db

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// Ensure single connection to avoid separate in-memory DBs per connection.
	conn.SetMaxOpenConns(1)
	if err := InitDB(conn); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return conn
}

func TestInitDBSeedsStatuses(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()
	for _, status := range []string{"active", "presupposed", "proposed"} {
		if _, err := ILIStatusID(conn, status); err != nil {
			t.Fatalf("status %s: %v", status, err)
		}
	}
}

func TestCheckCompatible(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()
	if err := CheckCompatible(conn); err != nil {
		t.Fatalf("fresh schema should be compatible: %v", err)
	}
}

func TestCheckCompatibleRejectsForeignSchema(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()
	if _, err := conn.Exec(`CREATE TABLE stray (x INTEGER)`); err != nil {
		t.Fatalf("alter schema: %v", err)
	}
	err := CheckCompatible(conn)
	if !errors.Is(err, ErrIncompatibleSchema) {
		t.Fatalf("expected ErrIncompatibleSchema, got %v", err)
	}
}

func TestFingerprintIgnoresData(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()
	before, err := Fingerprint(conn)
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	if _, err := conn.Exec(
		`INSERT INTO lexicons (id, version, label, language) VALUES ('x', '1', 'X', 'en')`,
	); err != nil {
		t.Fatalf("insert: %v", err)
	}
	after, err := Fingerprint(conn)
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	if before != after {
		t.Fatalf("fingerprint changed after data insert")
	}
}

func TestOpenInitializesEmpty(t *testing.T) {
	d, err := Open(":memory:", nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer d.Close()
	if err := CheckCompatible(d.Conn()); err != nil {
		t.Fatalf("opened database incompatible: %v", err)
	}
}

func TestOpenPathWithQueryCharacter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordnet?v1.db")
	d, err := Open(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database file not at the given path: %v", err)
	}
	d, err = Open(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer d.Close()
	if err := CheckCompatible(d.Conn()); err != nil {
		t.Fatalf("reopened database incompatible: %v", err)
	}
}

func TestOpenDBWrapsExistingPool(t *testing.T) {
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	conn.SetMaxOpenConns(1)
	d, err := OpenDB(conn, nil)
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	defer d.Close()
	if err := CheckCompatible(d.Conn()); err != nil {
		t.Fatalf("wrapped database incompatible: %v", err)
	}
}

func TestInternRelationType(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()
	id1, err := InternRelationType(conn, "hypernym")
	if err != nil {
		t.Fatalf("intern: %v", err)
	}
	id2, err := InternRelationType(conn, "hypernym")
	if err != nil {
		t.Fatalf("intern again: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected same id, got %d and %d", id1, id2)
	}
	id3, err := InternRelationType(conn, "hyponym")
	if err != nil {
		t.Fatalf("intern other: %v", err)
	}
	if id3 == id1 {
		t.Fatalf("distinct types interned to the same id")
	}
}

func TestGetOrCreateILI(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()
	id1, err := GetOrCreateILI(conn, "i12345", "presupposed")
	if err != nil {
		t.Fatalf("create ili: %v", err)
	}
	// Second call must return the existing row even with a different status.
	id2, err := GetOrCreateILI(conn, "i12345", "active")
	if err != nil {
		t.Fatalf("get ili: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected same ili id, got %d and %d", id1, id2)
	}
	var status string
	err = conn.QueryRow(
		`SELECT st.status FROM ilis i JOIN ili_statuses st ON st.rowid = i.status_rowid
		 WHERE i.id = ?`, "i12345",
	).Scan(&status)
	if err != nil {
		t.Fatalf("query status: %v", err)
	}
	if status != "presupposed" {
		t.Fatalf("expected presupposed, got %s", status)
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	enc, err := EncodeMetadata(map[string]string{"source": "test"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	s, ok := enc.(string)
	if !ok {
		t.Fatalf("expected string encoding, got %T", enc)
	}
	m, err := DecodeMetadata(sql.NullString{String: s, Valid: true})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m["source"] != "test" {
		t.Fatalf("lost metadata: %v", m)
	}
	empty, err := EncodeMetadata(nil)
	if err != nil {
		t.Fatalf("encode nil: %v", err)
	}
	if empty != nil {
		t.Fatalf("expected NULL for empty metadata, got %v", empty)
	}
}

func TestBatcher(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()
	b := NewBatcher(conn, "lexfiles", []string{"name"}, 3)
	for _, name := range []string{"noun.animal", "noun.food", "verb.motion", "adj.all"} {
		if err := b.Add(name); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}
	if err := b.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	var count int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM lexfiles`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4 rows, got %d", count)
	}
	if err := b.Add("noun.plant"); !errors.Is(err, ErrBatcherClosed) {
		t.Fatalf("expected ErrBatcherClosed, got %v", err)
	}
}

func TestBatcherClampsWideRows(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()
	b := NewBatcher(conn, "lexfiles", []string{"name"}, 100000)
	if b.size*b.width > maxHostParams {
		t.Fatalf("batch of %d rows x %d cols exceeds parameter limit", b.size, b.width)
	}
}
