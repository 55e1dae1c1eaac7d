package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Publisher 메시지 발행 인터페이스
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

// RedisClient go-redis 클라이언트 래퍼
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient Redis에 연결하고 Ping으로 확인합니다
func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 연결 실패: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// NewRedisClientWithClient 기존 클라이언트를 감쌉니다
func NewRedisClientWithClient(client *redis.Client) *RedisClient {
	return &RedisClient{client: client}
}

// Client 내부 go-redis 클라이언트 (rate limiter 등과 공유)
func (r *RedisClient) Client() *redis.Client {
	return r.client
}

// Publish 메시지를 JSON으로 직렬화해 발행합니다
func (r *RedisClient) Publish(ctx context.Context, channel string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("메시지 직렬화 실패: %w", err)
	}

	return r.client.Publish(ctx, channel, payload).Err()
}

// Close Redis 클라이언트 종료
func (r *RedisClient) Close() error {
	return r.client.Close()
}
