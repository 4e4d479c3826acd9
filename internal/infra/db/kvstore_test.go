package db

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Интеграционный тест: нужен живой Postgres в COSTBOOK_TEST_DSN.
func TestKVStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	dsn := os.Getenv("COSTBOOK_TEST_DSN")
	if dsn == "" {
		t.Skip("Skipping integration test: COSTBOOK_TEST_DSN not set")
	}
	ctx := context.Background()

	require.NoError(t, Migrate(dsn, slog.New(slog.NewTextHandler(io.Discard, nil))))
	pool, err := Connect(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	s := NewKVStore(pool, "test:"+uuid.NewString()+":")

	_, ok, err := s.Load(ctx, "sales")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(ctx, "sales", []byte(`[{"id":"s1","quantity":2}]`)))
	require.NoError(t, s.Save(ctx, "sales", []byte(`[{"id":"s2","quantity":3}]`)))

	data, ok, err := s.Load(ctx, "sales")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":"s2","quantity":3}]`, string(data))
}
