package postgres

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

// PostgresSessionStore implements the store.SessionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSessionStore creates a new PostgreSQL implementation of the SessionStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresSessionStore(db store.DBTX, logger *slog.Logger) *PostgresSessionStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_store")),
	}
}

// Ensure PostgresSessionStore implements store.SessionStore interface
var _ store.SessionStore = (*PostgresSessionStore)(nil)

// WithTx returns a store that runs its queries inside tx.
func (s *PostgresSessionStore) WithTx(tx *sql.Tx) *PostgresSessionStore {
	return &PostgresSessionStore{db: tx, logger: s.logger}
}

// Save implements store.SessionStore.Save
// The snapshot is stored as JSONB; an existing row is replaced.
func (s *PostgresSessionStore) Save(
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
		INSERT INTO game_sessions (id, snapshot, last_activity, created_at, updated_at)
		VALUES ($1, $2::jsonb, $3, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			snapshot = EXCLUDED.snapshot,
			last_activity = EXCLUDED.last_activity,
			updated_at = NOW()
	`
	_, err := s.db.ExecContext(ctx, query, id, string(data), lastActivity.UTC())
	if err != nil {
		log.Error("failed to save session",
			slog.String("error", err.Error()),
			slog.String("session_id", id))
		return store.NewStoreError("session", "save", "failed to save session", MapError(err))
	}

	log.Debug("session saved",
		slog.String("session_id", id),
		slog.Int("bytes", len(data)))
	return nil
}

// Load implements store.SessionStore.Load
// Returns store.ErrSessionNotFound if the session does not exist.
func (s *PostgresSessionStore) Load(ctx context.Context, id string) ([]byte, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var snapshot []byte
	err := s.db.QueryRowContext(ctx, `SELECT snapshot FROM game_sessions WHERE id = $1`, id).
		Scan(&snapshot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("session not found", slog.String("session_id", id))
			return nil, store.ErrSessionNotFound
		}
		log.Error("failed to load session",
			slog.String("error", err.Error()),
			slog.String("session_id", id))
		return nil, store.NewStoreError("session", "load", "failed to load session", MapError(err))
	}

	return snapshot, nil
}

// Delete implements store.SessionStore.Delete
// Returns store.ErrSessionNotFound if the session does not exist.
func (s *PostgresSessionStore) Delete(ctx context.Context, id string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM game_sessions WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete session",
			slog.String("error", err.Error()),
			slog.String("session_id", id))
		return store.NewStoreError("session", "delete", "failed to delete session", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrSessionNotFound); err != nil {
		return err
	}

	log.Debug("session deleted", slog.String("session_id", id))
	return nil
}

// DeleteMany implements store.SessionStore.DeleteMany
// The deletes share one transaction when the store owns a *sql.DB.
func (s *PostgresSessionStore) DeleteMany(ctx context.Context, ids []string) (int, error) {
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
		return 0, store.NewStoreError("session", "delete", "failed to delete sessions", MapError(err))
	}
	return removed, nil
}

func deleteEach(ctx context.Context, db store.DBTX, ids []string) (int, error) {
	removed := 0
	for _, id := range ids {
		result, err := db.ExecContext(ctx, `DELETE FROM game_sessions WHERE id = $1`, id)
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
func (s *PostgresSessionStore) ListIdle(ctx context.Context, olderThan time.Time) ([]string, error) {
	return s.queryIDs(ctx, "list_idle",
		`SELECT id FROM game_sessions WHERE last_activity < $1 ORDER BY id`,
		olderThan.UTC())
}

// ListIDs implements store.SessionStore.ListIDs
func (s *PostgresSessionStore) ListIDs(ctx context.Context) ([]string, error) {
	return s.queryIDs(ctx, "list", `SELECT id FROM game_sessions ORDER BY id`)
}

func (s *PostgresSessionStore) queryIDs(ctx context.Context, op, query string, args ...any) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query session ids",
			slog.String("error", err.Error()),
			slog.String("operation", op))
		return nil, store.NewStoreError("session", op, "failed to query sessions", MapError(err))
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
