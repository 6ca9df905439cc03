package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"colorplane/model"
)

// ErrNotFound is returned when no agent exists with the requested ID.
var ErrNotFound = errors.New("agent not found")

// Store provides persistent storage for agent style profiles.
type Store struct {
	baseDir string
	mu      sync.Mutex
}

// New creates a new Store instance with the given base directory.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// EnsureDirs creates the necessary directory structure for storing agents.
func (s *Store) EnsureDirs() error {
	return os.MkdirAll(s.agentsDir(), 0o755)
}

func (s *Store) agentsDir() string {
	return filepath.Join(s.baseDir, "agents")
}

func (s *Store) agentPath(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid agent id %q", id)
	}
	return filepath.Join(s.agentsDir(), id+".json"), nil
}

// SaveAgent writes the agent to disk, replacing any previous version.
func (s *Store) SaveAgent(a *model.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a == nil {
		return fmt.Errorf("nil agent")
	}
	path, err := s.agentPath(a.ID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.agentsDir(), 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, path)
}

// GetAgent loads a single agent by ID.
func (s *Store) GetAgent(id string) (*model.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.agentPath(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return readAgent(path)
}

// DeleteAgent removes an agent from disk.
func (s *Store) DeleteAgent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.agentPath(id)
	if err != nil {
		return ErrNotFound
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// ListAgents retrieves all stored agents sorted by slug.
func (s *Store) ListAgents() ([]model.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var agents []model.Agent
	err := filepath.WalkDir(s.agentsDir(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		a, err := readAgent(path)
		if err != nil {
			return err
		}
		agents = append(agents, *a)
		return nil
	})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	sort.Slice(agents, func(i, j int) bool {
		return agents[i].Slug < agents[j].Slug
	})

	return agents, nil
}

func readAgent(path string) (*model.Agent, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer f.Close()

	var a model.Agent
	if err := json.NewDecoder(f).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return &a, nil
}
