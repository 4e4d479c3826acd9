package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// KVStore журналы целиком в таблице kv_store (value JSONB).
type KVStore struct {
	pool      *pgxpool.Pool
	keyPrefix string
}

func NewKVStore(pool *pgxpool.Pool, keyPrefix string) *KVStore {
	return &KVStore{pool: pool, keyPrefix: keyPrefix}
}

func (s *KVStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1`, s.keyPrefix+key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", key, err)
	}
	return raw, true, nil
}

func (s *KVStore) Save(ctx context.Context, key string, data []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
		  value = EXCLUDED.value, updated_at = now()
	`, s.keyPrefix+key, string(data))
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
