package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"tcgmeta/lib/fetchcache"

	"github.com/stretchr/testify/require"
)

func writeFile(t testing.TB, path, contents string) {
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		t.Fatal(err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	config, err := Load(filepath.Join(t.TempDir(), "tcgmeta.json5"))
	require.Nil(t, err)
	require.Equal(t, "Masters", config.Division)
	require.Equal(t, 60, config.DeckSize)
	require.Equal(t, CacheFilesystem, config.Cache.Kind)
	require.Equal(t, "https://rk9.gg", config.HTTP.BaseUrl)
	require.Equal(t, 100, config.HTTP.Attempts)
	require.Equal(t, 1, config.Heatmap.MinMatches)
}

func TestLoadMergesDefaultsAndOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "tcgmeta.json5"), `{
		// worlds and naic
		tournaments: [
			{ id: "WCS01mIMYt8if4wVuaO0", name: "Worlds" },
			{ id: "https://rk9.gg/pairings/NA01wsS5yrQoQIs3mDtB", name: "NAIC" },
		],
		min_round: 8,
		cache: { kind: "sqlite", file: "pages.db" },
	}`)
	writeFile(t, filepath.Join(dir, "tcgmeta.local.json5"), `{
		workers: 4,
		http: { requests_per_second: 2 },
	}`)

	config, err := Load(filepath.Join(dir, "tcgmeta.json5"))
	require.Nil(t, err)
	require.Equal(t, []string{"WCS01mIMYt8if4wVuaO0", "https://rk9.gg/pairings/NA01wsS5yrQoQIs3mDtB"}, config.TournamentIDs())
	require.Equal(t, "NAIC", config.TournamentName("NA01wsS5yrQoQIs3mDtB"))
	require.Equal(t, "SG01meRA8mIYExcTihNU", config.TournamentName("SG01meRA8mIYExcTihNU"))
	require.Equal(t, 8, config.MinRound)
	require.Equal(t, 4, config.Workers)
	require.Equal(t, CacheSqlite, config.Cache.Kind)
	require.Equal(t, "pages.db", config.Cache.File)
	require.Equal(t, 512, config.Cache.MemoryEntries)
	require.Equal(t, 2.0, config.HTTP.RequestsPerSecond)
	require.Equal(t, 5.0, config.HTTP.RetryDelaySeconds)
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tcgmeta.json5")
	writeFile(t, path, `{ tournaments: `)
	_, err := Load(path)
	require.NotNil(t, err)
}

func TestCacheOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	testCases := []struct {
		name  string
		cache Cache
	}{
		{name: "filesystem", cache: Cache{Kind: CacheFilesystem, Dir: dir}},
		{name: "filesystem with memory front", cache: Cache{Kind: CacheFilesystem, Dir: dir, MemoryEntries: 8}},
		{name: "sqlite", cache: Cache{Kind: CacheSqlite, File: filepath.Join(dir, "pages.db")}},
		{name: "memory", cache: Cache{Kind: CacheMemory}},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			store, err := test.cache.Open(ctx)
			require.Nil(t, err)

			err = store.Put(ctx, fetchcache.Escape("https://rk9.gg/roster/TEST01"), []byte("roster"))
			require.Nil(t, err)
			contents, err := store.Get(ctx, fetchcache.Escape("https://rk9.gg/roster/TEST01"))
			require.Nil(t, err)
			require.Equal(t, []byte("roster"), contents)
		})
	}

	_, err := Cache{Kind: "s3"}.Open(ctx)
	require.NotNil(t, err)
	_, err = Cache{Kind: CacheLibsql}.Open(ctx)
	require.NotNil(t, err)
}

func TestHTTPOptions(t *testing.T) {
	opts, err := Default().HTTP.Options()
	require.Nil(t, err)
	require.Nil(t, opts.Dump)
	defaults := fetchcache.DefaultHTTPOptions()
	require.Equal(t, defaults.Timeout, opts.Timeout)
	require.Equal(t, defaults.RetryDelay, opts.RetryDelay)
	require.Equal(t, defaults.Attempts, opts.Attempts)

	dir := filepath.Join(t.TempDir(), "http")
	opts, err = HTTP{DumpDir: dir}.Options()
	require.Nil(t, err)
	require.NotNil(t, opts.Dump)
	_, err = os.Stat(dir)
	require.Nil(t, err)
}

func TestClassifierFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json5")
	writeFile(t, path, `{ version: "custom", rules: [{ tags: ["lugia"], when: { present: "Lugia V" } }] }`)

	classifier, err := Config{Rules: path}.Classifier()
	require.Nil(t, err)
	require.Equal(t, "custom", classifier.Table().Version)

	classifier, err = Config{}.Classifier()
	require.Nil(t, err)
	require.NotEmpty(t, classifier.Table().Rules)
}
