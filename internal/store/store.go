// Package store is the persistence adapter. It is the only component that
// knows the storage engine; everything else sees typed Subscriber and Alert
// records. Reads (registry) and writes (liveness touch, alert insert) are
// separate methods, never combined.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"SignalSentinel/internal/model"
)

// Store wraps the SQLite database holding users, subscriptions and alerts.
// The mutex serializes writes; SQLite interleaves concurrent readers safely
// in WAL mode.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
	mu  sync.Mutex
}

// Open opens (or creates) the database and runs migrations.
func Open(path string, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so the web layer can read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{db: db, log: log.With().Str("component", "store").Logger()}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s.log.Info().Str("path", path).Msg("sqlite store opened")
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			email           TEXT NOT NULL UNIQUE,
			display_name    TEXT NOT NULL DEFAULT '',
			is_admin        INTEGER NOT NULL DEFAULT 0,
			is_active       INTEGER NOT NULL DEFAULT 1,
			bot_last_active INTEGER,
			push_enabled    INTEGER NOT NULL DEFAULT 0,
			push_endpoint   TEXT NOT NULL DEFAULT '',
			push_p256dh     TEXT NOT NULL DEFAULT '',
			push_auth       TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS subscriptions (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id   INTEGER NOT NULL REFERENCES users(id),
			plan_type TEXT NOT NULL,
			coins     TEXT NOT NULL DEFAULT '',
			status    TEXT NOT NULL DEFAULT 'inactive'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_subscriptions_user ON subscriptions(user_id)`,

		`CREATE TABLE IF NOT EXISTS trading_alerts (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    INTEGER NOT NULL REFERENCES users(id),
			coin_pair  TEXT NOT NULL,
			alert_type TEXT NOT NULL,
			price      REAL NOT NULL,
			confidence INTEGER NOT NULL,
			algorithm  TEXT NOT NULL,
			message    TEXT NOT NULL,
			is_read    INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_user ON trading_alerts(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_created ON trading_alerts(created_at)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %.40q: %w", stmt, err)
		}
	}
	return nil
}

// TouchBotActivity updates the subscriber's liveness timestamp. This is the
// registry's only write path and is deliberately a separate method.
func (s *Store) TouchBotActivity(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET bot_last_active = ? WHERE id = ?`,
		time.Now().UTC().Unix(), userID)
	if err != nil {
		return fmt.Errorf("touch bot activity for user %d: %w", userID, err)
	}
	return nil
}

// InsertAlert persists one alert row. No upsert or dedup: one row per
// (subscriber, symbol, cycle), duplicates across cycles are expected.
func (s *Store) InsertAlert(ctx context.Context, a *model.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO trading_alerts
		 (user_id, coin_pair, alert_type, price, confidence, algorithm, message, is_read, created_at, expires_at)
		 VALUES (?,?,?,?,?,?,?,0,?,?)`,
		a.UserID, a.CoinPair, a.AlertType, a.Price, a.Confidence,
		a.Algorithm, a.Message, a.CreatedAt.Unix(), a.ExpiresAt.Unix())
	if err != nil {
		return fmt.Errorf("insert alert for user %d: %w", a.UserID, err)
	}
	if id, err := res.LastInsertId(); err == nil {
		a.ID = id
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.log.Info().Msg("closing sqlite store")
	return s.db.Close()
}
