package fetchcache

import (
	"bytes"
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUStorage keeps the most recently used pages of another storage in
// memory, writes always go through to the inner storage first.
type LRUStorage struct {
	inner Storage
	cache *lru.Cache[string, []byte]
}

func NewLRUStorage(inner Storage, size int) (LRUStorage, error) {
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return LRUStorage{}, err
	}
	return LRUStorage{inner: inner, cache: cache}, nil
}

func (s LRUStorage) Get(ctx context.Context, key string) ([]byte, error) {
	contents, ok := s.cache.Get(key)
	if ok {
		return bytes.Clone(contents), nil
	}
	contents, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, bytes.Clone(contents))
	return contents, nil
}

func (s LRUStorage) Put(ctx context.Context, key string, contents []byte) error {
	err := s.inner.Put(ctx, key, contents)
	if err != nil {
		return err
	}
	s.cache.Add(key, bytes.Clone(contents))
	return nil
}
