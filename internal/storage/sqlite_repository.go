package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/scheduler"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// OpenSQLite opens the database file and applies migrations.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) GetItem(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (r *SQLiteRepository) SetItem(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, mustTime(time.Now()),
	)
	return err
}

func (r *SQLiteRepository) RemoveItem(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}

func (r *SQLiteRepository) SaveAlarm(ctx context.Context, a scheduler.Alarm) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO alarms (handle, task_id, kind, title, body, sound, urgent, channel, fire_at, armed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Handle, a.Payload.TaskID, string(a.Payload.Kind), a.Payload.Title, a.Payload.Body,
		boolInt(a.Payload.Sound), boolInt(a.Payload.Urgent), a.Payload.Channel, mustTime(a.FireAt), mustTime(a.ArmedAt),
	)
	return err
}

func (r *SQLiteRepository) DeleteAlarm(ctx context.Context, handle string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM alarms WHERE handle = ?`, handle)
	return err
}

func (r *SQLiteRepository) ListAlarms(ctx context.Context) ([]scheduler.Alarm, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT handle, task_id, kind, title, body, sound, urgent, channel, fire_at, armed_at
		FROM alarms ORDER BY fire_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]scheduler.Alarm, 0)
	for rows.Next() {
		item, scanErr := scanAlarm(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAlarm(s scanner) (scheduler.Alarm, error) {
	var out scheduler.Alarm
	var kind string
	var sound, urgent int
	var fire, armed string
	if err := s.Scan(&out.Handle, &out.Payload.TaskID, &kind, &out.Payload.Title, &out.Payload.Body,
		&sound, &urgent, &out.Payload.Channel, &fire, &armed); err != nil {
		return scheduler.Alarm{}, err
	}
	fireAt, err := parseRequiredTime(fire)
	if err != nil {
		return scheduler.Alarm{}, err
	}
	armedAt, err := parseRequiredTime(armed)
	if err != nil {
		return scheduler.Alarm{}, err
	}
	out.Payload.Kind = model.TriggerKind(kind)
	out.Payload.Sound = sound == 1
	out.Payload.Urgent = urgent == 1
	out.FireAt = fireAt.Local()
	out.ArmedAt = armedAt
	return out, nil
}
