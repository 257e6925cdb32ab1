package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/GoSim-25-26J-441/diagram-studio/config"
	httpapi "github.com/GoSim-25-26J-441/diagram-studio/internal/api/http"
	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/repository"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

// Store is the opened project persistence backend.
type Store struct {
	Backend     string
	Persistence repository.Persistence
	Pinger      httpapi.Pinger
	close       func() error
}

func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStore connects the configured persistence backend.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (*Store, error) {
	switch cfg.Backend {
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		rs := repository.NewRedisStore(client, cfg.Key)
		if err := rs.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		log.Printf("project store: redis %s key=%s", cfg.RedisAddr, cfg.Key)
		return &Store{Backend: cfg.Backend, Persistence: rs, Pinger: rs, close: client.Close}, nil

	case config.StorePostgres:
		db, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(2)

		ss := repository.NewSQLStore(db, cfg.Key)
		if err := ss.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Printf("project store: postgres key=%s", cfg.Key)
		return &Store{Backend: cfg.Backend, Persistence: ss, Pinger: ss, close: db.Close}, nil

	case config.StoreMemory:
		log.Printf("project store: memory (projects are lost on restart)")
		return &Store{Backend: cfg.Backend, Persistence: repository.NewMemoryStore()}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
