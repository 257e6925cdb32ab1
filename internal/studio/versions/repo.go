// Package versions archives project snapshots in Postgres with per-project
// increasing version numbers.
package versions

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("version not found")

const (
	ReasonManual   = "manual"
	ReasonAutosave = "autosave"

	defaultListLimit = 50
)

// DB is the subset of pgxpool.Pool the repo needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Version struct {
	ID            string    `json:"id"`
	ProjectID     string    `json:"project_id"`
	VersionNumber int       `json:"version_number"`
	Name          string    `json:"name"`
	SourceText    string    `json:"source_text"`
	Hash          string    `json:"hash"`
	Reason        string    `json:"reason"`
	CreatedAt     time.Time `json:"created_at"`
}

type SaveInput struct {
	ProjectID  string
	Name       string
	SourceText string
	Reason     string
}

type Repo struct {
	db DB
}

func NewRepo(db DB) *Repo {
	return &Repo{db: db}
}

const schema = `
create table if not exists studio_versions (
  id             text primary key,
  project_id     text not null,
  version_number integer not null,
  name           text not null,
  source_text    text not null,
  hash           text not null,
  reason         text not null,
  created_at     timestamptz not null default now(),
  unique (project_id, version_number)
)`

func (r *Repo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create studio_versions: %w", err)
	}
	return nil
}

// Hash fingerprints source text so unchanged snapshots can be skipped.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Save appends a snapshot as the project's next version.
func (r *Repo) Save(ctx context.Context, in SaveInput) (*Version, error) {
	if strings.TrimSpace(in.ProjectID) == "" {
		return nil, fmt.Errorf("project id required")
	}
	if in.Reason == "" {
		in.Reason = ReasonManual
	}

	ver := Version{
		ID:         uuid.New().String(),
		ProjectID:  in.ProjectID,
		Name:       in.Name,
		SourceText: in.SourceText,
		Hash:       Hash(in.SourceText),
		Reason:     in.Reason,
	}

	err := r.db.QueryRow(ctx, `
insert into studio_versions (id, project_id, version_number, name, source_text, hash, reason)
select $1, $2, coalesce(max(version_number), 0) + 1, $3, $4, $5, $6
from studio_versions
where project_id = $2
returning version_number, created_at
`, ver.ID, ver.ProjectID, ver.Name, ver.SourceText, ver.Hash, ver.Reason).Scan(&ver.VersionNumber, &ver.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert version: %w", err)
	}
	return &ver, nil
}

// Latest returns the highest-numbered version of a project.
func (r *Repo) Latest(ctx context.Context, projectID string) (*Version, error) {
	ver := Version{ProjectID: projectID}
	err := r.db.QueryRow(ctx, `
select id, version_number, name, source_text, hash, reason, created_at
from studio_versions
where project_id = $1
order by version_number desc
limit 1
`, projectID).Scan(&ver.ID, &ver.VersionNumber, &ver.Name, &ver.SourceText, &ver.Hash, &ver.Reason, &ver.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ver, nil
}

// List returns a project's versions, newest first.
func (r *Repo) List(ctx context.Context, projectID string, limit int) ([]Version, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := r.db.Query(ctx, `
select id, version_number, name, source_text, hash, reason, created_at
from studio_versions
where project_id = $1
order by version_number desc
limit $2
`, projectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Version{}
	for rows.Next() {
		v := Version{ProjectID: projectID}
		if err := rows.Scan(&v.ID, &v.VersionNumber, &v.Name, &v.SourceText, &v.Hash, &v.Reason, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
