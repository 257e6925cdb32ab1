package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/domain"
)

const defaultRowKey = "projects"

// SQLStore keeps the project list in one row of the studio_state table.
type SQLStore struct {
	db  *sql.DB
	key string
}

// NewSQLStore creates a Postgres-backed store keyed by key. An empty key uses
// the "projects" row.
func NewSQLStore(db *sql.DB, key string) *SQLStore {
	if key == "" {
		key = defaultRowKey
	}
	return &SQLStore{db: db, key: key}
}

// EnsureSchema creates the state table if needed.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
create table if not exists studio_state (
  key        text primary key,
  value      text not null,
  updated_at timestamptz not null default now()
)`)
	if err != nil {
		return fmt.Errorf("create studio_state: %w", err)
	}
	return nil
}

func (s *SQLStore) Load(ctx context.Context) ([]domain.Project, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
select value
from studio_state
where key = $1
`, s.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoState
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}

	projects, dropped, err := DecodeProjects([]byte(value))
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		log.Printf("[warn] sql store: dropped %d malformed project records", dropped)
	}
	return projects, nil
}

func (s *SQLStore) Save(ctx context.Context, projects []domain.Project) error {
	data, err := EncodeProjects(projects)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
insert into studio_state (key, value, updated_at)
values ($1, $2, now())
on conflict (key) do update
set value = excluded.value,
    updated_at = now()
`, s.key, string(data))
	if err != nil {
		return fmt.Errorf("failed to save projects: %w", err)
	}
	return nil
}

// Ping checks the connection, used by the health handler.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
