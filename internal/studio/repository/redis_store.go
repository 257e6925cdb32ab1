package repository

import (
	"context"
	"fmt"
	"log"

	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/domain"
	"github.com/redis/go-redis/v9"
)

const projectEventChannel = "studio:events:projects"

// RedisStore keeps the project list under a single Redis key.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a Redis-backed store. An empty key uses DefaultStateKey.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultStateKey
	}
	return &RedisStore{client: client, key: key}
}

// Load reads and decodes the project list
func (r *RedisStore) Load(ctx context.Context) ([]domain.Project, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err == redis.Nil {
		return nil, ErrNoState
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get projects: %w", err)
	}

	projects, dropped, err := DecodeProjects(data)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		log.Printf("[warn] redis store: dropped %d malformed project records from %s", dropped, r.key)
	}
	return projects, nil
}

// Save replaces the stored list and announces the change on the events channel.
func (r *RedisStore) Save(ctx context.Context, projects []domain.Project) error {
	data, err := EncodeProjects(projects)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key, data, 0)
	pipe.Publish(ctx, projectEventChannel, len(projects))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save projects: %w", err)
	}
	return nil
}

// Ping checks the connection, used by the health handler.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
