package fetchcache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var ErrNotFound = errors.New("cache entry not found")

// Storage persists fetched contents by escaped key.
// Get returns ErrNotFound when nothing is stored under the key.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, contents []byte) error
}

// FilesystemStorage stores one file per key under a root directory.
type FilesystemStorage struct {
	root string
}

func NewFilesystemStorage(root string) (FilesystemStorage, error) {
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return FilesystemStorage{}, err
	}
	return FilesystemStorage{root: abs}, nil
}

// Escape never produces these as whole segments or as a segment suffix.
const (
	emptySegment  = "__EMPTY__"
	dotSegment    = "__DOT__"
	dotDotSegment = "__DOTDOT__"
	pageSuffix    = "__PAGE__"
)

// relativePath maps a key onto a path below the storage root. Segments
// that filepath.Join would clean away are replaced and the last segment
// is suffixed, so two keys never share a file and a page never takes the
// name of a directory.
func relativePath(key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		switch segment {
		case "":
			segments[i] = emptySegment
		case ".":
			segments[i] = dotSegment
		case "..":
			segments[i] = dotDotSegment
		}
	}
	segments[len(segments)-1] += pageSuffix
	return filepath.Join(segments...)
}

func (s FilesystemStorage) path(key string) (string, error) {
	full := filepath.Join(s.root, relativePath(key))
	rel, err := filepath.Rel(s.root, full)
	if err != nil {
		return "", err
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("cache key %q resolves outside of %s", key, s.root)
	}
	return full, nil
}

func (s FilesystemStorage) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return contents, nil
}

func (s FilesystemStorage) Put(ctx context.Context, key string, contents []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	err = os.MkdirAll(filepath.Dir(path), 0777)
	if err != nil {
		return err
	}
	// write then rename so a concurrent reader never sees a partial page
	tmp, err := os.CreateTemp(filepath.Dir(path), ".fetch-*")
	if err != nil {
		return err
	}
	_, err = tmp.Write(contents)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return err
	}
	err = os.Rename(tmp.Name(), path)
	if err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

// MemoryStorage keeps contents in a map, it is mostly useful in tests.
type MemoryStorage struct {
	mutex   sync.RWMutex
	entries map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: map[string][]byte{}}
}

func (s *MemoryStorage) Get(ctx context.Context, key string) ([]byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	contents, ok := s.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), contents...), nil
}

func (s *MemoryStorage) Put(ctx context.Context, key string, contents []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.entries[key] = append([]byte(nil), contents...)
	return nil
}

func (s *MemoryStorage) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.entries)
}
