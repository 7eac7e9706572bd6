package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/phrazzld/crossplay/internal/platform/logger"
	"github.com/phrazzld/crossplay/internal/platform/postgres"
	"github.com/phrazzld/crossplay/internal/store"
	"github.com/phrazzld/crossplay/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPostgresSessionStore_NilDB(t *testing.T) {
	assert.Panics(t, func() { postgres.NewPostgresSessionStore(nil, nil) })
}

// These tests need a PostgreSQL server and are skipped unless DATABASE_URL
// is set. Each runs inside a rolled-back transaction.
func TestPostgresSessionStore_Integration(t *testing.T) {
	if testdb.ShouldSkipDatabaseTest() {
		t.Skip("DATABASE_URL not set, skipping PostgreSQL integration test")
	}

	db := testdb.GetTestDBWithT(t)
	log, _ := logger.GetTestLogger(t)

	t.Run("save and load", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			ctx := context.Background()
			s := postgres.NewPostgresSessionStore(tx, log)

			require.NoError(t, s.Save(ctx, "PG0001", []byte(`{"version":1,"round":1}`), time.Now()))
			data, err := s.Load(ctx, "PG0001")
			require.NoError(t, err)
			assert.JSONEq(t, `{"version":1,"round":1}`, string(data))

			require.NoError(t, s.Save(ctx, "PG0001", []byte(`{"version":1,"round":2}`), time.Now()))
			data, err = s.Load(ctx, "PG0001")
			require.NoError(t, err)
			assert.JSONEq(t, `{"version":1,"round":2}`, string(data))
		})
	})

	t.Run("missing session", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			ctx := context.Background()
			s := postgres.NewPostgresSessionStore(tx, log)

			_, err := s.Load(ctx, "NOPE00")
			assert.ErrorIs(t, err, store.ErrSessionNotFound)
			assert.ErrorIs(t, s.Delete(ctx, "NOPE00"), store.ErrSessionNotFound)
		})
	})

	t.Run("invalid json", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			s := postgres.NewPostgresSessionStore(tx, log)

			err := s.Save(context.Background(), "BADJSN", []byte(`{not json`), time.Now())
			assert.ErrorIs(t, err, store.ErrInvalidEntity)
		})
	})

	t.Run("idle listing and bulk delete", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			ctx := context.Background()
			s := postgres.NewPostgresSessionStore(tx, log)
			now := time.Now()

			require.NoError(t, s.Save(ctx, "IDLE01", []byte(`{}`), now.Add(-time.Hour)))
			require.NoError(t, s.Save(ctx, "LIVE01", []byte(`{}`), now))

			idle, err := s.ListIdle(ctx, now.Add(-30*time.Minute))
			require.NoError(t, err)
			assert.Contains(t, idle, "IDLE01")
			assert.NotContains(t, idle, "LIVE01")

			removed, err := s.DeleteMany(ctx, []string{"IDLE01", "MISSING"})
			require.NoError(t, err)
			assert.Equal(t, 1, removed)

			ids, err := s.ListIDs(ctx)
			require.NoError(t, err)
			assert.Contains(t, ids, "LIVE01")
			assert.NotContains(t, ids, "IDLE01")
		})
	})

	t.Run("bulk delete in own transaction", func(t *testing.T) {
		ctx := context.Background()
		s := postgres.NewPostgresSessionStore(db, log)
		t.Cleanup(func() { _, _ = s.DeleteMany(ctx, []string{"OWNTX1", "OWNTX2"}) })

		require.NoError(t, s.Save(ctx, "OWNTX1", []byte(`{}`), time.Now()))
		require.NoError(t, s.Save(ctx, "OWNTX2", []byte(`{}`), time.Now()))

		removed, err := s.DeleteMany(ctx, []string{"OWNTX1", "OWNTX2"})
		require.NoError(t, err)
		assert.Equal(t, 2, removed)
	})
}
