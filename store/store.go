package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bassamadnan/triage/backend"
)

// ErrNotFound is returned when an email id is unknown or deleted.
var ErrNotFound = errors.New("email not found")

// Store wraps the SQLite database holding analysed emails
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (and creates/migrates) the database at the given path.
// ":memory:" opens a private in-memory database.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("empty database path")
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	} else if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL: %w", err)
	}
	_, _ = db.ExecContext(ctx, "PRAGMA busy_timeout=5000;")
	_, _ = db.ExecContext(ctx, "PRAGMA synchronous=NORMAL;")

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

var schemaV1 = []string{
	`CREATE TABLE IF NOT EXISTS emails (
  id             TEXT PRIMARY KEY,
  subject        TEXT,
  date           INTEGER NOT NULL DEFAULT 0,
  sender         TEXT,
  body           TEXT,
  sentiment_pos  REAL,
  sentiment_neg  REAL,
  sentiment_neu  REAL,
  sentiment_comp REAL,
  keywords       TEXT,
  fetched_at     INTEGER NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_emails_date ON emails(date DESC)`,
	`CREATE TABLE IF NOT EXISTS deleted_emails (
  id         TEXT PRIMARY KEY,
  deleted_at INTEGER NOT NULL
)`,
}

func (s *Store) migrate(ctx context.Context) error {
	var ver int
	_ = s.db.QueryRowContext(ctx, "PRAGMA user_version;").Scan(&ver)

	// v1: emails and deletion tombstones
	if ver == 0 {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		for _, stmt := range schemaV1 {
			if _, err = tx.ExecContext(ctx, stmt); err != nil {
				break
			}
		}
		if err == nil {
			_, err = tx.ExecContext(ctx, "PRAGMA user_version=1;")
		}
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migrate v1: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Upsert stores emails, skipping ids that were deleted earlier. It returns the
// number of rows written.
func (s *Store) Upsert(ctx context.Context, emails []backend.Email) (int, error) {
	if len(emails) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO emails (id, subject, date, sender, body, sentiment_pos, sentiment_neg, sentiment_neu, sentiment_comp, keywords, fetched_at)
SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
WHERE NOT EXISTS (SELECT 1 FROM deleted_emails WHERE id = ?)
ON CONFLICT(id) DO UPDATE SET
  subject = excluded.subject,
  date = excluded.date,
  sender = excluded.sender,
  body = excluded.body,
  sentiment_pos = excluded.sentiment_pos,
  sentiment_neg = excluded.sentiment_neg,
  sentiment_neu = excluded.sentiment_neu,
  sentiment_comp = excluded.sentiment_comp,
  keywords = excluded.keywords,
  fetched_at = excluded.fetched_at`)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := s.now().Unix()
	written := 0
	for _, e := range emails {
		if e.ID == "" {
			continue
		}
		keywords, err := json.Marshal(nonNil(e.Keywords))
		if err != nil {
			return 0, err
		}
		res, err := stmt.ExecContext(ctx,
			string(e.ID), e.Subject, unix(e.Date), e.Sender, e.Body,
			nullFloat(e.Sentiment.Pos), nullFloat(e.Sentiment.Neg), nullFloat(e.Sentiment.Neu), nullFloat(e.Sentiment.Compound),
			string(keywords), now, string(e.ID))
		if err != nil {
			return 0, fmt.Errorf("upsert %s: %w", e.ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			written++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return written, nil
}

const selectColumns = `id, subject, date, sender, body, sentiment_pos, sentiment_neg, sentiment_neu, sentiment_comp, keywords`

// List returns up to limit emails, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]backend.Email, error) {
	query := `SELECT ` + selectColumns + ` FROM emails ORDER BY date DESC, fetched_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list emails: %w", err)
	}
	defer rows.Close()

	out := []backend.Email{}
	for rows.Next() {
		e, err := scanEmail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Get returns one email by id.
func (s *Store) Get(ctx context.Context, id backend.ID) (backend.Email, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM emails WHERE id = ?`, string(id))
	e, err := scanEmail(row)
	if errors.Is(err, sql.ErrNoRows) {
		return backend.Email{}, ErrNotFound
	}
	return e, err
}

// Delete removes emails and records tombstones so later syncs do not bring
// them back. Unknown ids are tombstoned too. It returns the number of rows
// removed.
func (s *Store) Delete(ctx context.Context, ids []backend.ID) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now().Unix()
	removed := 0
	for _, id := range ids {
		res, err := tx.ExecContext(ctx, `DELETE FROM emails WHERE id = ?`, string(id))
		if err != nil {
			return 0, fmt.Errorf("delete %s: %w", id, err)
		}
		n, _ := res.RowsAffected()
		removed += int(n)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO deleted_emails (id, deleted_at) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET deleted_at = excluded.deleted_at`,
			string(id), now); err != nil {
			return 0, fmt.Errorf("tombstone %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return removed, nil
}

// Count returns the number of stored emails.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM emails`).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmail(row scanner) (backend.Email, error) {
	var (
		e                       backend.Email
		id                      string
		subject, sender, body   sql.NullString
		date                    int64
		pos, neg, neu, compound sql.NullFloat64
		keywords                sql.NullString
	)
	if err := row.Scan(&id, &subject, &date, &sender, &body, &pos, &neg, &neu, &compound, &keywords); err != nil {
		return e, err
	}
	e.ID = backend.ID(id)
	e.Subject = subject.String
	e.Sender = sender.String
	e.Body = body.String
	if date > 0 {
		e.Date = backend.Timestamp{Time: time.Unix(date, 0).UTC()}
	}
	e.Sentiment = backend.Sentiment{
		Pos:      floatPtr(pos),
		Neg:      floatPtr(neg),
		Neu:      floatPtr(neu),
		Compound: floatPtr(compound),
	}
	e.Keywords = []string{}
	if keywords.Valid && keywords.String != "" {
		if err := json.Unmarshal([]byte(keywords.String), &e.Keywords); err != nil {
			return e, fmt.Errorf("decode keywords for %s: %w", id, err)
		}
	}
	return e, nil
}

func unix(ts backend.Timestamp) int64 {
	if ts.IsZero() {
		return 0
	}
	return ts.Unix()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
