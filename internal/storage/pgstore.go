package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/scheduler"
)

// PgStore is a PostgreSQL-backed KV and alarm store.
type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// OpenPostgres connects and makes sure the tables exist.
func OpenPostgres(ctx context.Context, url string) (*PgStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	s := NewPgStore(pool)
	if err := s.EnsureTables(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// EnsureTables creates the kv and alarms tables if they don't exist.
func (s *PgStore) EnsureTables(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("create kv table: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS alarms (
			handle   TEXT PRIMARY KEY,
			task_id  TEXT NOT NULL DEFAULT '',
			kind     TEXT NOT NULL,
			title    TEXT NOT NULL,
			body     TEXT NOT NULL DEFAULT '',
			sound    BOOLEAN NOT NULL DEFAULT FALSE,
			urgent   BOOLEAN NOT NULL DEFAULT FALSE,
			channel  TEXT NOT NULL DEFAULT 'default',
			fire_at  TIMESTAMPTZ NOT NULL,
			armed_at TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("create alarms table: %w", err)
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_alarms_fire_at ON alarms(fire_at)`)
	return err
}

func (s *PgStore) GetItem(ctx context.Context, key string) (string, error) {
	var value string
	err := s.pool.QueryRow(ctx, `SELECT value FROM kv WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (s *PgStore) SetItem(ctx context.Context, key, value string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value)
	return err
}

func (s *PgStore) RemoveItem(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM kv WHERE key = $1`, key)
	return err
}

func (s *PgStore) SaveAlarm(ctx context.Context, a scheduler.Alarm) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO alarms (handle, task_id, kind, title, body, sound, urgent, channel, fire_at, armed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.Handle, a.Payload.TaskID, string(a.Payload.Kind), a.Payload.Title, a.Payload.Body,
		a.Payload.Sound, a.Payload.Urgent, a.Payload.Channel, a.FireAt, a.ArmedAt)
	return err
}

func (s *PgStore) DeleteAlarm(ctx context.Context, handle string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM alarms WHERE handle = $1`, handle)
	return err
}

func (s *PgStore) ListAlarms(ctx context.Context) ([]scheduler.Alarm, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT handle, task_id, kind, title, body, sound, urgent, channel, fire_at, armed_at
		FROM alarms ORDER BY fire_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []scheduler.Alarm
	for rows.Next() {
		var a scheduler.Alarm
		var kind string
		var fireAt, armedAt time.Time
		if err := rows.Scan(&a.Handle, &a.Payload.TaskID, &kind, &a.Payload.Title, &a.Payload.Body,
			&a.Payload.Sound, &a.Payload.Urgent, &a.Payload.Channel, &fireAt, &armedAt); err != nil {
			return nil, err
		}
		a.Payload.Kind = model.TriggerKind(kind)
		a.FireAt = fireAt.Local()
		a.ArmedAt = armedAt
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *PgStore) Close() error {
	s.pool.Close()
	return nil
}
