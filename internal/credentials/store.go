package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/almirah-shop/storefront/internal/types"
	"gopkg.in/yaml.v3"
)

// Credentials is what survives a restart: the bearer token, the username, the
// last resolved role and the entry point the user signed in through.
type Credentials struct {
	Token    string     `yaml:"token"`
	Username string     `yaml:"username"`
	Role     types.Role `yaml:"userRole"`
	Portal   types.Role `yaml:"portal,omitempty"`
}

func (c Credentials) Empty() bool {
	return c.Token == ""
}

// Store persists credentials. It is the single source of truth for whether a
// user is logged in across restarts.
type Store interface {
	Load() (Credentials, error)
	Save(Credentials) error
	// Clear removes token, username and role together.
	Clear() error
}

// FileStore keeps credentials in a YAML file readable only by the owner.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load() (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Credentials{}, nil
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to read credentials: %w", err)
	}
	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("failed to parse credentials: %w", err)
	}
	role, err := types.ParseRole(string(creds.Role))
	if err != nil {
		// An unreadable role is re-resolved on the next refresh.
		role = types.RoleCustomer
	}
	creds.Role = role
	if _, err := types.ParseRole(string(creds.Portal)); err != nil {
		creds.Portal = ""
	}
	if creds.Token == "" {
		return Credentials{}, nil
	}
	return creds, nil
}

// Save writes to a temp file and renames it so a crash never leaves a
// half-written token behind.
func (s *FileStore) Save(creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := yaml.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to restrict credentials file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

// MemoryStore is a Store that lives only as long as the process.
type MemoryStore struct {
	mu    sync.Mutex
	creds Credentials
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds, nil
}

func (s *MemoryStore) Save(creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = Credentials{}
	return nil
}
