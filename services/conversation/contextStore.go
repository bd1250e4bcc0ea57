// File: services/conversation/contextStore.go
package conversation

import (
	"context"
	"encoding/json"
	"time"

	"foodbot/models"
	"foodbot/utils"

	"github.com/go-redis/redis/v8"
)

// RedisSessionStore keeps sessions as JSON. The TTL is refreshed on every
// write, so an abandoned dialogue disappears after ttl of silence.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func sessionKey(user, channel string) string {
	return utils.SessionCachePrefix + channel + ":" + user
}

func (s *RedisSessionStore) Get(ctx context.Context, user, channel string) (*models.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(user, channel)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sess models.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *RedisSessionStore) Set(ctx context.Context, sess *models.Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(sess.User, sess.Channel), b, s.ttl).Err()
}

func (s *RedisSessionStore) Clear(ctx context.Context, user, channel string) error {
	return s.client.Del(ctx, sessionKey(user, channel)).Err()
}
