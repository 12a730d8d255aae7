package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteHistory хранит по строке на чат.
type SQLiteHistory struct {
	db *sql.DB
}

func NewSQLiteHistory(dbPath string) (*SQLiteHistory, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// одна запись за раз, без SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	const schema = `
	CREATE TABLE IF NOT EXISTS history (
		chat_id TEXT PRIMARY KEY,
		query TEXT,
		tracks TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteHistory{db: db}, nil
}

func (s *SQLiteHistory) Load(ctx context.Context) (map[string]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT chat_id, query, tracks FROM history`)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	out := make(map[string]Entry)
	for rows.Next() {
		var (
			chat   string
			query  sql.NullString
			tracks string
		)
		if err := rows.Scan(&chat, &query, &tracks); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		var e Entry
		if query.Valid {
			q := query.String
			e.Query = &q
		}
		if err := json.Unmarshal([]byte(tracks), &e.Tracks); err != nil {
			return nil, fmt.Errorf("decode tracks of chat %s: %w", chat, err)
		}
		out[chat] = e
	}
	return out, rows.Err()
}

func (s *SQLiteHistory) Put(ctx context.Context, chatID int64, e Entry) error {
	e = normalize(e)
	tracks, err := json.Marshal(e.Tracks)
	if err != nil {
		return fmt.Errorf("encode tracks: %w", err)
	}
	var query sql.NullString
	if e.Query != nil {
		query = sql.NullString{String: *e.Query, Valid: true}
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO history (chat_id, query, tracks, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET
			query = excluded.query,
			tracks = excluded.tracks,
			updated_at = excluded.updated_at`,
		chatKey(chatID), query, string(tracks), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("upsert history: %w", err)
	}
	return nil
}

func (s *SQLiteHistory) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteHistory) Close() error {
	return s.db.Close()
}
