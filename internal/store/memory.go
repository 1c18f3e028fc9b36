package store

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/iwvelando/revenue-forecast/internal/project"
)

// MemoryStore keeps the collection in process. Mutations are serialized and
// committed only after the optional persist hook succeeds.
type MemoryStore struct {
	mu       sync.RWMutex
	projects []project.Project
	persist  func([]project.Project) error
	logger   *zap.Logger
}

// NewMemoryStore creates a store holding the valid entries of seed.
func NewMemoryStore(seed []project.Project, logger *zap.Logger) *MemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryStore{projects: prepareSeed(seed, logger), logger: logger}
}

// List returns a copy of the current collection.
func (s *MemoryStore) List(_ context.Context) ([]project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.projects), nil
}

// Get returns the project with the given id.
func (s *MemoryStore) Get(_ context.Context, id string) (project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.projects, id); i >= 0 {
		return s.projects[i], nil
	}
	return project.Project{}, ErrNotFound
}

// Add validates p, assigns an id when missing and appends it.
func (s *MemoryStore) Add(_ context.Context, p project.Project) (project.Project, error) {
	ready, err := prepare(p)
	if err != nil {
		return project.Project{}, err
	}
	err = s.mutate("store.Add", func(projects []project.Project) ([]project.Project, error) {
		if indexOf(projects, ready.ID) >= 0 {
			return nil, ErrDuplicateID
		}
		return append(projects, ready), nil
	})
	if err != nil {
		return project.Project{}, err
	}
	return ready, nil
}

// Update applies patch to the project with the given id.
func (s *MemoryStore) Update(_ context.Context, id string, patch project.Patch) (project.Project, error) {
	var updated project.Project
	err := s.mutate("store.Update", func(projects []project.Project) ([]project.Project, error) {
		i := indexOf(projects, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		ready, err := prepare(patch.Apply(projects[i]))
		if err != nil {
			return nil, err
		}
		projects[i] = ready
		updated = ready
		return projects, nil
	})
	if err != nil {
		return project.Project{}, err
	}
	return updated, nil
}

// Delete removes the project with the given id.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	return s.mutate("store.Delete", func(projects []project.Project) ([]project.Project, error) {
		i := indexOf(projects, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		return append(projects[:i], projects[i+1:]...), nil
	})
}

// Reset replaces the whole collection with seed.
func (s *MemoryStore) Reset(_ context.Context, seed []project.Project) error {
	prepared := prepareSeed(seed, s.logger)
	return s.mutate("store.Reset", func([]project.Project) ([]project.Project, error) {
		return prepared, nil
	})
}

func (s *MemoryStore) mutate(op string, fn func([]project.Project) ([]project.Project, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(clone(s.projects))
	if err != nil {
		return err
	}
	if s.persist != nil {
		if err := s.persist(next); err != nil {
			return fmt.Errorf("failed to persist projects: %w", err)
		}
	}
	s.projects = next
	s.logger.Debug("project collection changed",
		zap.String("op", op),
		zap.Int("projects", len(next)),
	)
	return nil
}

func clone(projects []project.Project) []project.Project {
	return append([]project.Project(nil), projects...)
}

func indexOf(projects []project.Project, id string) int {
	for i := range projects {
		if projects[i].ID == id {
			return i
		}
	}
	return -1
}
