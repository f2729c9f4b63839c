// Package store persists session state — identity, transcript, and the
// gallery snapshot — in a local SQLite database so a later invocation
// restores exactly what the previous one left. The schema carries an
// explicit version; newer binaries migrate older databases forward and
// refuse databases written by a newer schema.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"postcraft-cli/internal/gallery"
)

// schemaVersion is bumped whenever the table layout changes; migrate()
// carries old databases forward step by step.
const schemaVersion = 1

const dbFile = "postcraft.db"

// Store is the durable session/transcript/gallery store.
type Store struct {
	db   *sql.DB
	path string
}

// SessionInfo summarizes one persisted session.
type SessionInfo struct {
	SessionID string
	Created   time.Time
	Messages  int
	Items     int
}

// Message is one transcript entry.
type Message struct {
	Role    string
	Content string
}

// Open creates or opens the store under dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	path := filepath.Join(dir, dbFile)

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS meta (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		created    TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS transcript (
		session_id TEXT NOT NULL,
		seq        INTEGER NOT NULL,
		role       TEXT NOT NULL,
		content    TEXT NOT NULL,
		PRIMARY KEY (session_id, seq)
	);

	CREATE TABLE IF NOT EXISTS gallery (
		session_id    TEXT NOT NULL,
		position      INTEGER NOT NULL,
		media_ref     TEXT NOT NULL,
		kind          TEXT NOT NULL,
		caption       TEXT NOT NULL DEFAULT '',
		hashtags_json TEXT NOT NULL DEFAULT '[]',
		created_at    TIMESTAMP NOT NULL,
		PRIMARY KEY (session_id, position)
	);
	CREATE INDEX IF NOT EXISTS idx_transcript_session ON transcript(session_id);
	CREATE INDEX IF NOT EXISTS idx_gallery_session ON gallery(session_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return s.migrate()
}

func (s *Store) migrate() error {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&raw)
	switch {
	case err == sql.ErrNoRows:
		_, err = s.db.Exec(`INSERT INTO meta (key, value) VALUES ('schema_version', ?)`,
			strconv.Itoa(schemaVersion))
		return err
	case err != nil:
		return fmt.Errorf("reading schema version: %w", err)
	}

	version, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("corrupt schema version %q", raw)
	}
	if version > schemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, schemaVersion)
	}
	// Future migrations step version upward here, one version at a time,
	// updating meta.schema_version inside the same transaction.
	return nil
}

// ─── Sessions ───────────────────────────────────────────────────────────────

// CreateSession records a session if it is not already known.
func (s *Store) CreateSession(sessionID string, created time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO sessions (session_id, created) VALUES (?, ?)
		 ON CONFLICT(session_id) DO NOTHING`,
		sessionID, created.UTC())
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	return nil
}

// Sessions lists persisted sessions, most recent first.
func (s *Store) Sessions() ([]SessionInfo, error) {
	rows, err := s.db.Query(`
		SELECT s.session_id, s.created,
		       (SELECT COUNT(*) FROM transcript t WHERE t.session_id = s.session_id),
		       (SELECT COUNT(*) FROM gallery g WHERE g.session_id = s.session_id)
		FROM sessions s
		ORDER BY s.created DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionInfo
	for rows.Next() {
		var info SessionInfo
		if err := rows.Scan(&info.SessionID, &info.Created, &info.Messages, &info.Items); err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// ─── Transcript ─────────────────────────────────────────────────────────────

// AppendMessage appends one transcript entry.
func (s *Store) AppendMessage(sessionID, role, content string) error {
	_, err := s.db.Exec(`
		INSERT INTO transcript (session_id, seq, role, content)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM transcript WHERE session_id = ?), ?, ?)`,
		sessionID, sessionID, role, content)
	if err != nil {
		return fmt.Errorf("appending message: %w", err)
	}
	return nil
}

// Transcript returns the ordered transcript of a session.
func (s *Store) Transcript(sessionID string) ([]Message, error) {
	rows, err := s.db.Query(
		`SELECT role, content FROM transcript WHERE session_id = ? ORDER BY seq`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading transcript: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.Role, &m.Content); err != nil {
			return nil, fmt.Errorf("scanning transcript row: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ─── Gallery ────────────────────────────────────────────────────────────────

// SaveGallery replaces the persisted gallery snapshot for a session.
func (s *Store) SaveGallery(sessionID string, items []gallery.Item) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("saving gallery: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM gallery WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("saving gallery: %w", err)
	}

	for i, it := range items {
		tags, err := json.Marshal(it.Hashtags)
		if err != nil {
			return fmt.Errorf("encoding hashtags for %s: %w", it.MediaRef, err)
		}
		if _, err := tx.Exec(`
			INSERT INTO gallery (session_id, position, media_ref, kind, caption, hashtags_json, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			sessionID, i, it.MediaRef, it.Kind, it.Caption, string(tags), it.CreatedAt.UTC()); err != nil {
			return fmt.Errorf("saving gallery item %s: %w", it.MediaRef, err)
		}
	}
	return tx.Commit()
}

// LoadGallery restores the gallery snapshot in storage order. No
// extraction runs here: items come back exactly as persisted.
func (s *Store) LoadGallery(sessionID string) ([]gallery.Item, error) {
	rows, err := s.db.Query(`
		SELECT media_ref, kind, caption, hashtags_json, created_at
		FROM gallery WHERE session_id = ? ORDER BY position`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading gallery: %w", err)
	}
	defer rows.Close()

	var out []gallery.Item
	for rows.Next() {
		var it gallery.Item
		var tags string
		if err := rows.Scan(&it.MediaRef, &it.Kind, &it.Caption, &tags, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning gallery row: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &it.Hashtags); err != nil {
			return nil, fmt.Errorf("decoding hashtags for %s: %w", it.MediaRef, err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ResetSession atomically wipes the transcript and gallery of a session.
// The session row itself survives so the id can be resumed.
func (s *Store) ResetSession(sessionID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("resetting session: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM transcript WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("resetting transcript: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM gallery WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("resetting gallery: %w", err)
	}
	return tx.Commit()
}
