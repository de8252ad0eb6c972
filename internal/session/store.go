package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kk-code-lab/katsearch/internal/catalog"
)

// Snapshot is the persisted part of a session.
type Snapshot struct {
	Recent  []catalog.Query `yaml:"recent_searches,omitempty"`
	Columns map[string]bool `yaml:"columns,omitempty"`
}

// Store loads and saves session snapshots.
type Store interface {
	Load() (Snapshot, error)
	Save(Snapshot) error
}

// YAMLStore keeps the snapshot in a YAML file.
type YAMLStore struct {
	Path string
}

// DefaultPath is session.yaml under the user configuration directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "katsearch", "session.yaml"), nil
}

// Load returns an empty snapshot when the file does not exist yet.
func (s YAMLStore) Load() (Snapshot, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("read session: %w", err)
	}
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("parse session %s: %w", s.Path, err)
	}
	return snap, nil
}

// Save writes through a temporary file so a crash never leaves half a file.
func (s YAMLStore) Save(snap Snapshot) error {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*.yaml")
	if err != nil {
		return fmt.Errorf("create session file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("replace session: %w", err)
	}
	return nil
}

// MemoryStore keeps the snapshot in memory.
type MemoryStore struct {
	Snapshot Snapshot
	Saves    int
}

func (m *MemoryStore) Load() (Snapshot, error) {
	return m.Snapshot, nil
}

func (m *MemoryStore) Save(snap Snapshot) error {
	m.Snapshot = snap
	m.Saves++
	return nil
}
