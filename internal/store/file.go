package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/iwvelando/revenue-forecast/internal/project"
	"github.com/iwvelando/revenue-forecast/pkg/constants"
)

// document is the on-disk layout of the file store.
type document struct {
	Version  int               `yaml:"version"`
	Projects []project.Project `yaml:"projects"`
}

// FileStore is a MemoryStore that writes the collection to a YAML file after
// every mutation.
type FileStore struct {
	*MemoryStore
	path string
}

// NewFileStore loads the collection from path. A missing file, or one
// holding no projects, starts from seed and is written immediately.
func NewFileStore(path string, seed []project.Project, logger *zap.Logger) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	stored, fromSeed, err := readDocument(path)
	if err != nil {
		return nil, err
	}

	var mem *MemoryStore
	if fromSeed {
		mem = NewMemoryStore(seed, logger)
	} else {
		loaded, err := prepareAll(stored)
		if err != nil {
			return nil, fmt.Errorf("failed to load projects from %s: %w", path, err)
		}
		mem = &MemoryStore{projects: loaded, logger: logger}
	}

	s := &FileStore{MemoryStore: mem, path: path}
	mem.persist = s.write

	if fromSeed {
		if err := s.write(mem.projects); err != nil {
			return nil, err
		}
		logger.Info("initialized project store from seed",
			zap.String("op", "store.NewFileStore"),
			zap.String("path", path),
			zap.Int("projects", len(mem.projects)),
		)
	}
	return s, nil
}

func readDocument(path string) ([]project.Project, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, true, nil
		}
		return nil, false, fmt.Errorf("failed to read project store: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, false, fmt.Errorf("failed to parse project store: %w", err)
	}
	if len(doc.Projects) == 0 {
		return nil, true, nil
	}
	return doc.Projects, false, nil
}

// write replaces the file atomically via a temporary sibling.
func (s *FileStore) write(projects []project.Project) error {
	data, err := yaml.Marshal(document{Version: constants.StoreVersion, Projects: projects})
	if err != nil {
		return fmt.Errorf("failed to encode project store: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create store directory %s: %w", dir, err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write project store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace project store: %w", err)
	}
	return nil
}
