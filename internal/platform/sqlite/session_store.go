package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/crossplay/internal/platform/logger"
	"github.com/phrazzld/crossplay/internal/store"
)

// SQLiteSessionStore implements the store.SessionStore interface
// using a SQLite database as the storage backend.
type SQLiteSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
	now    func() time.Time
}

// NewSQLiteSessionStore creates a new SQLite implementation of the SessionStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewSQLiteSessionStore(db store.DBTX, logger *slog.Logger) *SQLiteSessionStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SQLiteSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_store")),
		now:    time.Now,
	}
}

// Ensure SQLiteSessionStore implements store.SessionStore interface
var _ store.SessionStore = (*SQLiteSessionStore)(nil)

// WithTx returns a store that runs its queries inside tx.
func (s *SQLiteSessionStore) WithTx(tx *sql.Tx) *SQLiteSessionStore {
	return &SQLiteSessionStore{db: tx, logger: s.logger, now: s.now}
}

// Save implements store.SessionStore.Save
func (s *SQLiteSessionStore) Save(
	ctx context.Context,
	id string,
	data []byte,
	lastActivity time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if id == "" {
		return store.NewStoreError("session", "save", "empty session id", store.ErrInvalidEntity)
	}

	query := `
		INSERT INTO game_sessions (id, snapshot, last_activity_ms, created_at_ms, updated_at_ms)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			snapshot = excluded.snapshot,
			last_activity_ms = excluded.last_activity_ms,
			updated_at_ms = excluded.updated_at_ms
	`
	nowMs := s.now().UnixMilli()
	_, err := s.db.ExecContext(ctx, query, id, string(data), lastActivity.UnixMilli(), nowMs, nowMs)
	if err != nil {
		log.Error("failed to save session",
			slog.String("error", err.Error()),
			slog.String("session_id", id))
		return store.NewStoreError("session", "save", "failed to save session", err)
	}

	log.Debug("session saved",
		slog.String("session_id", id),
		slog.Int("bytes", len(data)))
	return nil
}

// Load implements store.SessionStore.Load
// Returns store.ErrSessionNotFound if the session does not exist.
func (s *SQLiteSessionStore) Load(ctx context.Context, id string) ([]byte, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var snapshot string
	err := s.db.QueryRowContext(ctx, `SELECT snapshot FROM game_sessions WHERE id = ?`, id).
		Scan(&snapshot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("session not found", slog.String("session_id", id))
			return nil, store.ErrSessionNotFound
		}
		log.Error("failed to load session",
			slog.String("error", err.Error()),
			slog.String("session_id", id))
		return nil, store.NewStoreError("session", "load", "failed to load session", err)
	}

	return []byte(snapshot), nil
}

// Delete implements store.SessionStore.Delete
// Returns store.ErrSessionNotFound if the session does not exist.
func (s *SQLiteSessionStore) Delete(ctx context.Context, id string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM game_sessions WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete session",
			slog.String("error", err.Error()),
			slog.String("session_id", id))
		return store.NewStoreError("session", "delete", "failed to delete session", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return store.NewStoreError("session", "delete", "failed to get rows affected", err)
	}
	if rows == 0 {
		return store.ErrSessionNotFound
	}

	log.Debug("session deleted", slog.String("session_id", id))
	return nil
}

// DeleteMany implements store.SessionStore.DeleteMany
// The deletes share one transaction when the store owns a *sql.DB.
func (s *SQLiteSessionStore) DeleteMany(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	db, ok := s.db.(*sql.DB)
	if !ok {
		return deleteEach(ctx, s.db, ids)
	}

	var removed int
	err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		n, err := deleteEach(ctx, tx, ids)
		removed = n
		return err
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete sessions",
			slog.String("error", err.Error()),
			slog.Int("count", len(ids)))
		return 0, store.NewStoreError("session", "delete", "failed to delete sessions", err)
	}
	return removed, nil
}

func deleteEach(ctx context.Context, db store.DBTX, ids []string) (int, error) {
	removed := 0
	for _, id := range ids {
		result, err := db.ExecContext(ctx, `DELETE FROM game_sessions WHERE id = ?`, id)
		if err != nil {
			return 0, fmt.Errorf("delete %s: %w", id, err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return 0, err
		}
		removed += int(rows)
	}
	return removed, nil
}

// ListIdle implements store.SessionStore.ListIdle
func (s *SQLiteSessionStore) ListIdle(ctx context.Context, olderThan time.Time) ([]string, error) {
	return s.queryIDs(ctx, "list_idle",
		`SELECT id FROM game_sessions WHERE last_activity_ms < ? ORDER BY id`,
		olderThan.UnixMilli())
}

// ListIDs implements store.SessionStore.ListIDs
func (s *SQLiteSessionStore) ListIDs(ctx context.Context) ([]string, error) {
	return s.queryIDs(ctx, "list", `SELECT id FROM game_sessions ORDER BY id`)
}

func (s *SQLiteSessionStore) queryIDs(ctx context.Context, op, query string, args ...any) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query session ids",
			slog.String("error", err.Error()),
			slog.String("operation", op))
		return nil, store.NewStoreError("session", op, "failed to query sessions", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, store.NewStoreError("session", op, "failed to scan session id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("session", op, "failed to iterate sessions", err)
	}
	return ids, nil
}
