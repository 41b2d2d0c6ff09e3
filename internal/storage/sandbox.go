package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mkravets/jobvault/internal/common"
)

// Sandbox is the app-private storage location. It is always available and
// requires no permission grant.
type Sandbox struct {
	root string
}

// NewSandbox returns a Sandbox rooted at dir.
func NewSandbox(dir string) *Sandbox {
	return &Sandbox{root: dir}
}

func (s *Sandbox) Root() string { return s.root }

func (s *Sandbox) EnsureDir() error {
	if err := os.MkdirAll(s.root, 0o770); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", common.ErrStorageUnavailable, s.root, err)
	}
	return nil
}

func (s *Sandbox) WriteFile(name string, data []byte) error {
	if err := s.EnsureDir(); err != nil {
		return err
	}
	path := filepath.Join(s.root, name)
	if err := os.WriteFile(path, data, 0o660); err != nil {
		return fmt.Errorf("%w: write %s: %v", common.ErrStorageUnavailable, path, err)
	}
	return nil
}

func (s *Sandbox) ReadFile(name string) ([]byte, error) {
	path := filepath.Join(s.root, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", common.ErrNotFound, name)
		}
		return nil, fmt.Errorf("%w: read %s: %v", common.ErrStorageUnavailable, path, err)
	}
	return data, nil
}

func (s *Sandbox) WriteJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	return s.WriteFile(name, data)
}

func (s *Sandbox) ReadJSON(name string, v any) error {
	data, err := s.ReadFile(name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: parse %s: %v", common.ErrMalformedData, name, err)
	}
	return nil
}

func (s *Sandbox) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", common.ErrNotFound, s.root)
		}
		return nil, fmt.Errorf("%w: list %s: %v", common.ErrStorageUnavailable, s.root, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

func (s *Sandbox) MostRecent(prefix, suffix string) (string, error) {
	names, err := s.List()
	if err != nil {
		return "", err
	}
	return mostRecent(names, prefix, suffix)
}

func (s *Sandbox) Remove(name string) error {
	path := filepath.Join(s.root, name)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", common.ErrNotFound, name)
		}
		return fmt.Errorf("%w: remove %s: %v", common.ErrStorageUnavailable, path, err)
	}
	return nil
}

func (s *Sandbox) Exists(name string) (bool, error) {
	_, err := os.Stat(filepath.Join(s.root, name))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("%w: stat %s: %v", common.ErrStorageUnavailable, name, err)
}

// mostRecent picks the lexicographically-last name matching prefix/suffix.
func mostRecent(names []string, prefix, suffix string) (string, error) {
	matches := make([]string, 0, len(names))
	for _, n := range names {
		if strings.HasPrefix(n, prefix) && strings.HasSuffix(n, suffix) {
			matches = append(matches, n)
		}
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: no file matching %s*%s", common.ErrNotFound, prefix, suffix)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}
