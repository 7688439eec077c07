package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// LocalStore keeps attachment files under one root directory, one folder per supplier.
type LocalStore struct {
	Root string
}

func NewLocalStore(root string) *LocalStore { return &LocalStore{Root: root} }

// Path allocates a unique path for a new file of the supplier and creates its folder.
func (s *LocalStore) Path(supplierID uint, fileName string) (string, error) {
	dir := filepath.Join(s.Root, strconv.FormatUint(uint64(supplierID), 10))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create attachment dir: %w", err)
	}
	return filepath.Join(dir, uuid.NewString()+"_"+sanitize(fileName)), nil
}

// Remove deletes a stored file. A file that is already gone is not an error.
func (s *LocalStore) Remove(path string) error {
	if path == "" {
		return nil
	}
	if !s.owns(path) {
		return fmt.Errorf("refusing to remove %s outside attachment root", path)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove attachment: %w", err)
	}
	return nil
}

func (s *LocalStore) owns(path string) bool {
	root, err := filepath.Abs(s.Root)
	if err != nil {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(root, abs)
	return err == nil && rel != "." && !strings.HasPrefix(rel, "..")
}

func sanitize(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "file"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}
