package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joescharf/clockme/internal/models"
)

// DefaultDirName is the marker directory holding the state file.
const DefaultDirName = ".clockme"

const dataFileName = "data.json"

// FileStore keeps the record as JSON in <root>/<dirName>/data.json.
type FileStore struct {
	dir  string
	path string
}

// NewFileStore returns a store rooted at root. The directory is created on
// first save.
func NewFileStore(root, dirName string) *FileStore {
	if dirName == "" {
		dirName = DefaultDirName
	}
	dir := filepath.Join(root, dirName)
	return &FileStore{dir: dir, path: filepath.Join(dir, dataFileName)}
}

// Path returns the state file location.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Exists(_ context.Context) (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat project data: %w", err)
}

func (s *FileStore) Load(_ context.Context) (*models.Project, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read project data: %w", err)
	}
	p, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return p, nil
}

// Save writes the whole record to a temp file and renames it into place,
// so a failed save leaves the previous record untouched.
func (s *FileStore) Save(_ context.Context, p *models.Project) error {
	data, err := Encode(p)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create %s directory: %w", s.dir, err)
	}

	tmp, err := os.CreateTemp(s.dir, dataFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write project data: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync project data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close project data: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("chmod project data: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace project data: %w", err)
	}
	return nil
}

// Discover walks from start up through its parents looking for a directory
// containing dirName. It returns start itself when none is found.
func Discover(start, dirName string) (string, error) {
	if dirName == "" {
		dirName = DefaultDirName
	}
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", start, err)
	}

	dir := abs
	for {
		info, err := os.Stat(filepath.Join(dir, dirName))
		if err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		dir = parent
	}
}
