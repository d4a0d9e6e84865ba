// Package redisctrl keeps conversation history in Redis so sessions survive
// process restarts.
package redisctrl

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ragchat/src/core/rag"
)

const defaultTTL = 24 * time.Hour

type HistoryStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewHistoryStore(addr, password string, db int) *HistoryStore {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &HistoryStore{client: client, ttl: defaultTTL}
}

func (s *HistoryStore) key(sessionID string) string {
	return "chat:" + sessionID
}

func (s *HistoryStore) Append(ctx context.Context, sessionID string, turn rag.Turn) error {
	payload, err := json.Marshal(turn)
	if err != nil {
		return &rag.StoreError{Op: "append history", Err: err}
	}

	key := s.key(sessionID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return &rag.StoreError{Op: "append history", Err: err}
	}
	return nil
}

func (s *HistoryStore) Recent(ctx context.Context, sessionID string, n int) ([]rag.Turn, error) {
	if n <= 0 {
		return nil, nil
	}

	raw, err := s.client.LRange(ctx, s.key(sessionID), int64(-n), -1).Result()
	if err != nil {
		return nil, &rag.StoreError{Op: "read history", Err: err}
	}

	turns := make([]rag.Turn, 0, len(raw))
	for _, entry := range raw {
		var turn rag.Turn
		if err := json.Unmarshal([]byte(entry), &turn); err != nil {
			return nil, &rag.StoreError{Op: "read history", Err: fmt.Errorf("corrupt history entry: %w", err)}
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func (s *HistoryStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return &rag.StoreError{Op: "clear history", Err: err}
	}
	return nil
}

func (s *HistoryStore) Close() error {
	return s.client.Close()
}
