// Package store owns the project collection. The forecast engine never
// touches storage; callers take a snapshot with List and pass it in.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iwvelando/revenue-forecast/internal/project"
	"github.com/iwvelando/revenue-forecast/pkg/constants"
)

var (
	// ErrNotFound is returned when no project has the requested id.
	ErrNotFound = errors.New("project not found")

	// ErrDuplicateID is returned when adding a project whose id is taken.
	ErrDuplicateID = errors.New("project id already exists")
)

// Repository is the data-access interface for the project collection.
//
// List returns an internally consistent snapshot: no mutation is ever
// partially visible to a caller.
type Repository interface {
	List(ctx context.Context) ([]project.Project, error)
	Get(ctx context.Context, id string) (project.Project, error)
	Add(ctx context.Context, p project.Project) (project.Project, error)
	Update(ctx context.Context, id string, patch project.Patch) (project.Project, error)
	Delete(ctx context.Context, id string) error
	Reset(ctx context.Context, seed []project.Project) error
}

// Options selects and configures a Repository implementation.
type Options struct {
	Driver      string
	Path        string
	DatabaseURL string
	Seed        []project.Project
}

// Open builds the repository named by opts.Driver. The returned close
// function releases any held resources and is never nil.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (Repository, func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	noop := func() {}

	switch opts.Driver {
	case "", constants.StorageMemory:
		return NewMemoryStore(opts.Seed, logger), noop, nil
	case constants.StorageFile:
		path := opts.Path
		if path == "" {
			path = constants.DefaultStorePath
		}
		s, err := NewFileStore(path, opts.Seed, logger)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	case constants.StoragePostgres:
		s, err := NewPostgresStore(ctx, opts.DatabaseURL, logger)
		if err != nil {
			return nil, noop, err
		}
		if err := s.EnsureSchema(ctx); err != nil {
			s.Close()
			return nil, noop, err
		}
		if err := s.SeedIfEmpty(ctx, opts.Seed); err != nil {
			s.Close()
			return nil, noop, err
		}
		return s, s.Close, nil
	}
	return nil, noop, fmt.Errorf("unsupported storage driver %q", opts.Driver)
}

// prepare assigns an id when missing, fills defaults and validates.
func prepare(p project.Project) (project.Project, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p = project.Normalize(p)
	if err := project.Validate(p); err != nil {
		return p, err
	}
	return p, nil
}

// prepareAll prepares stored projects and fails on the first bad record.
func prepareAll(projects []project.Project) ([]project.Project, error) {
	prepared := make([]project.Project, 0, len(projects))
	seen := make(map[string]struct{}, len(projects))
	for _, p := range projects {
		ready, err := prepare(p)
		if err != nil {
			return nil, fmt.Errorf("project %q: %w", p.Name, err)
		}
		if _, dup := seen[ready.ID]; dup {
			return nil, fmt.Errorf("project %q: %w", ready.ID, ErrDuplicateID)
		}
		seen[ready.ID] = struct{}{}
		prepared = append(prepared, ready)
	}
	return prepared, nil
}

// prepareSeed prepares configured seed projects. Invalid entries and repeated
// ids are skipped with a warning so one bad seed never blocks startup or reset.
func prepareSeed(seed []project.Project, logger *zap.Logger) []project.Project {
	prepared := make([]project.Project, 0, len(seed))
	seen := make(map[string]struct{}, len(seed))
	for _, p := range seed {
		ready, err := prepare(p)
		if err == nil {
			if _, dup := seen[ready.ID]; dup {
				err = ErrDuplicateID
			}
		}
		if err != nil {
			logger.Warn("skipping seed project",
				zap.String("op", "store.prepareSeed"),
				zap.String("id", p.ID),
				zap.String("name", p.Name),
				zap.Error(err),
			)
			continue
		}
		seen[ready.ID] = struct{}{}
		prepared = append(prepared, ready)
	}
	return prepared
}
