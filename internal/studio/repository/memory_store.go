package repository

import (
	"context"
	"log"
	"sync"

	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/domain"
)

// MemoryStore keeps the encoded record in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Seed sets the raw stored record, bypassing encoding.
func (m *MemoryStore) Seed(raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), raw...)
}

func (m *MemoryStore) Load(ctx context.Context) ([]domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return nil, ErrNoState
	}
	projects, dropped, err := DecodeProjects(m.data)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		log.Printf("[warn] memory store: dropped %d malformed project records", dropped)
	}
	return projects, nil
}

func (m *MemoryStore) Save(ctx context.Context, projects []domain.Project) error {
	data, err := EncodeProjects(projects)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	m.saves++
	return nil
}

// Saves returns how many times Save succeeded.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
