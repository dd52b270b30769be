// Package store handles SQLite persistence of reading history.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Session is one sitting with one document.
type Session struct {
	ID        int64
	DocHash   string
	Title     string
	StartedAt time.Time
	EndedAt   time.Time

	// Sentences is the document length; StartIndex and EndIndex are the
	// active sentence when the session began and ended.
	Sentences  int
	StartIndex int
	EndIndex   int

	Moves         int // manual and voice navigation steps
	VoiceAdvances int

	// Simplifications are written with the session. ListSessions leaves it
	// nil and fills Simplified instead.
	Simplifications []Simplification
	Simplified      int
}

// Simplification is one word swapped for its simpler synonym.
type Simplification struct {
	Sentence    int
	Word        int
	Original    string
	Replacement string
}

// DocumentSummary aggregates every session of one document.
type DocumentSummary struct {
	DocHash    string
	Title      string
	Sessions   int
	Sentences  int
	Furthest   int
	Simplified int
	LastRead   time.Time
}

// WordCount is how often one word was simplified.
type WordCount struct {
	Original    string
	Replacement string
	Count       int
}

// Store wraps SQLite access for reading history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS reading_sessions (
			id INTEGER PRIMARY KEY,
			doc_hash TEXT NOT NULL,
			title TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			sentences INTEGER NOT NULL,
			start_index INTEGER NOT NULL,
			end_index INTEGER NOT NULL,
			moves INTEGER NOT NULL,
			voice_advances INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS simplifications (
			session_id INTEGER NOT NULL,
			sentence_index INTEGER NOT NULL,
			word_index INTEGER NOT NULL,
			original TEXT NOT NULL,
			replacement TEXT NOT NULL,
			PRIMARY KEY (session_id, sentence_index, word_index)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_reading_sessions_ended_at ON reading_sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_reading_sessions_doc_hash ON reading_sessions(doc_hash);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a finished session and its simplifications.
func (s *Store) InsertSession(ctx context.Context, sess Session) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO reading_sessions (doc_hash, title, started_at, ended_at, sentences, start_index, end_index, moves, voice_advances)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.DocHash,
		sess.Title,
		sess.StartedAt.UTC().Format(time.RFC3339Nano),
		sess.EndedAt.UTC().Format(time.RFC3339Nano),
		sess.Sentences,
		sess.StartIndex,
		sess.EndIndex,
		sess.Moves,
		sess.VoiceAdvances,
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(sess.Simplifications) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT OR IGNORE INTO simplifications (session_id, sentence_index, word_index, original, replacement)
			 VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, sp := range sess.Simplifications {
			if _, err := stmt.ExecContext(ctx, id, sp.Sentence, sp.Word, sp.Original, sp.Replacement); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListSessions returns the most recent sessions, newest first. A limit of
// zero or less returns all of them.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.doc_hash, r.title, r.started_at, r.ended_at, r.sentences, r.start_index, r.end_index,
			r.moves, r.voice_advances, COUNT(sp.session_id)
		FROM reading_sessions r
		LEFT JOIN simplifications sp ON sp.session_id = r.id
		GROUP BY r.id
		ORDER BY r.ended_at DESC, r.id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var startedAt, endedAt string
		if err := rows.Scan(&sess.ID, &sess.DocHash, &sess.Title, &startedAt, &endedAt, &sess.Sentences,
			&sess.StartIndex, &sess.EndIndex, &sess.Moves, &sess.VoiceAdvances, &sess.Simplified); err != nil {
			return nil, err
		}
		if sess.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, err
		}
		if sess.EndedAt, err = parseTime(endedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListDocuments aggregates sessions per document, most recently read first.
func (s *Store) ListDocuments(ctx context.Context) ([]DocumentSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`WITH simplified AS (
			SELECT session_id, COUNT(*) AS n FROM simplifications GROUP BY session_id
		)
		SELECT r.doc_hash,
			(SELECT title FROM reading_sessions t WHERE t.doc_hash = r.doc_hash ORDER BY t.ended_at DESC LIMIT 1),
			COUNT(*), MAX(r.sentences), MAX(r.end_index), COALESCE(SUM(sp.n), 0), MAX(r.ended_at)
		FROM reading_sessions r
		LEFT JOIN simplified sp ON sp.session_id = r.id
		GROUP BY r.doc_hash
		ORDER BY MAX(r.ended_at) DESC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var docs []DocumentSummary
	for rows.Next() {
		var doc DocumentSummary
		var lastRead string
		if err := rows.Scan(&doc.DocHash, &doc.Title, &doc.Sessions, &doc.Sentences, &doc.Furthest, &doc.Simplified, &lastRead); err != nil {
			return nil, err
		}
		if doc.LastRead, err = parseTime(lastRead); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// TopSimplifications returns the most often simplified words.
func (s *Store) TopSimplifications(ctx context.Context, limit int) ([]WordCount, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT LOWER(original), replacement, COUNT(*) AS n
		FROM simplifications
		GROUP BY LOWER(original), replacement
		ORDER BY n DESC, LOWER(original) ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var words []WordCount
	for rows.Next() {
		var wc WordCount
		if err := rows.Scan(&wc.Original, &wc.Replacement, &wc.Count); err != nil {
			return nil, err
		}
		words = append(words, wc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("store: bad timestamp %q: %w", s, err)
	}
	return t, nil
}
