package fetchcache

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"tcgmeta/lib/restyutil"

	"github.com/stretchr/testify/require"
)

func testOptions(attempts int) HTTPOptions {
	return HTTPOptions{
		UserAgent:  "tcgmeta-test",
		Timeout:    5 * time.Second,
		Attempts:   attempts,
		RetryDelay: time.Millisecond,
	}
}

func TestCacheIdempotent(t *testing.T) {
	var requests int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		require.Equal(t, "tcgmeta-test", r.Header.Get("User-Agent"))
		w.Write([]byte("<html>roster</html>"))
	}))
	defer server.Close()

	cache := New(NewMemoryStorage(), NewHTTPFetcher(testOptions(3)))
	url := server.URL + "/roster/X?a=1"

	first, err := cache.Fetch(context.Background(), url)
	require.Nil(t, err)
	second, err := cache.Fetch(context.Background(), url)
	require.Nil(t, err)

	require.Equal(t, first, second)
	require.Equal(t, []byte("<html>roster</html>"), second)
	require.Equal(t, int64(1), atomic.LoadInt64(&requests))
}

func TestCacheRetries(t *testing.T) {
	var requests int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&requests, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("finally"))
	}))
	defer server.Close()

	cache := New(NewMemoryStorage(), NewHTTPFetcher(testOptions(5)))
	contents, err := cache.Fetch(context.Background(), server.URL)
	require.Nil(t, err)
	require.Equal(t, []byte("finally"), contents)
	require.Equal(t, int64(3), atomic.LoadInt64(&requests))
}

func TestCacheFetchErrorOnExhaustion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL + "/gone"
	server.Close()

	store := NewMemoryStorage()
	cache := New(store, NewHTTPFetcher(testOptions(3)))
	_, err := cache.Fetch(context.Background(), url)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, url, fetchErr.URL)
	require.NotNil(t, fetchErr.Err)
	require.Equal(t, 0, store.Len())
}

func TestCacheFetchErrorOnStatus(t *testing.T) {
	var requests int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cache := New(NewMemoryStorage(), NewHTTPFetcher(testOptions(2)))
	_, err := cache.Fetch(context.Background(), server.URL)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, http.StatusInternalServerError, fetchErr.StatusCode)
	require.Equal(t, int64(2), atomic.LoadInt64(&requests))
}

func TestCacheNotFoundIsNotRetried(t *testing.T) {
	var requests int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	cache := New(NewMemoryStorage(), NewHTTPFetcher(testOptions(4)))
	_, err := cache.Fetch(context.Background(), server.URL)
	require.NotNil(t, err)
	require.Equal(t, int64(1), atomic.LoadInt64(&requests))
}

type failingStorage struct {
	Storage
}

func (failingStorage) Put(ctx context.Context, key string, contents []byte) error {
	return errors.New("disk full")
}

func TestCachePersistFailureIsFatal(t *testing.T) {
	fetcher := FetcherFunc(func(ctx context.Context, url string) ([]byte, error) {
		return []byte("page"), nil
	})
	cache := New(failingStorage{Storage: NewMemoryStorage()}, fetcher)

	_, err := cache.Fetch(context.Background(), "https://rk9.gg/roster/X")
	require.ErrorContains(t, err, "disk full")
}

func TestHTTPFetcherDump(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("decklist"))
	}))
	defer server.Close()

	output := restyutil.NewMemoryOutput()
	opts := testOptions(1)
	opts.Dump = output

	contents, err := NewHTTPFetcher(opts).Fetch(context.Background(), server.URL+"/decklist/public/X/y")
	require.Nil(t, err)
	require.Equal(t, []byte("decklist"), contents)

	messages := output.Messages()
	require.Len(t, messages, 1)
	require.Contains(t, messages["1"], "/decklist/public/X/y")
}
