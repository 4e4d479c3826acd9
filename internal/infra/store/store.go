package store

import "context"

// Store ключ-значение для целых сериализованных журналов.
// Load: ok == false, если ключа нет (это не ошибка).
type Store interface {
	Load(ctx context.Context, key string) (data []byte, ok bool, err error)
	Save(ctx context.Context, key string, data []byte) error
}
