// pkg/storage/redis.go
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// HistoryKey – хэш Redis, где поле это id чата.
const HistoryKey = "musicfinder:history"

// RedisHistory хранит записи полями одного хэша.
type RedisHistory struct {
	client *redis.Client
	key    string
}

// NewRedisHistory подключается к Redis и проверяет соединение.
func NewRedisHistory(ctx context.Context, addr, password string, db int) (*RedisHistory, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return &RedisHistory{client: client, key: HistoryKey}, nil
}

func (r *RedisHistory) Load(ctx context.Context) (map[string]Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall %s: %w", r.key, err)
	}
	out := make(map[string]Entry, len(fields))
	for chat, raw := range fields {
		var e Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("decode history of chat %s: %w", chat, err)
		}
		out[chat] = e
	}
	return out, nil
}

func (r *RedisHistory) Put(ctx context.Context, chatID int64, e Entry) error {
	data, err := json.Marshal(normalize(e))
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.client.HSet(ctx, r.key, chatKey(chatID), data).Err(); err != nil {
		return fmt.Errorf("redis hset %s: %w", r.key, err)
	}
	return nil
}

func (r *RedisHistory) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisHistory) Close() error {
	return r.client.Close()
}
