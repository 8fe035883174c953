package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"tcgmeta/lib/archetype"
	"tcgmeta/lib/configutil"
	"tcgmeta/lib/fetchcache"
	"tcgmeta/lib/report"
	"tcgmeta/lib/restyutil"
	"tcgmeta/lib/rk9"
	"tcgmeta/services/analysis"
)

type Tournament struct {
	// either the rk9 tournament id or its pairings url
	ID   string `json:"id"`
	Name string `json:"name"`
}

const (
	CacheFilesystem = "filesystem"
	CacheSqlite     = "sqlite"
	CacheLibsql     = "libsql"
	CacheMemory     = "memory"
)

type Cache struct {
	Kind string `json:"kind"`
	// root of the filesystem cache
	Dir string `json:"dir"`
	// sqlite file
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
	// size of the in-memory front, negative disables it
	MemoryEntries int `json:"memory_entries"`
}

type HTTP struct {
	BaseUrl           string  `json:"base_url"`
	UserAgent         string  `json:"user_agent"`
	TimeoutSeconds    float64 `json:"timeout_seconds"`
	Attempts          int     `json:"attempts"`
	RetryDelaySeconds float64 `json:"retry_delay_seconds"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	// writes a transcript of every http exchange into this directory
	DumpDir string `json:"dump_dir"`
}

type Heatmap struct {
	Output     string `json:"output"`
	MinMatches int    `json:"min_matches"`
}

type Config struct {
	Tournaments []Tournament `json:"tournaments"`
	// tournaments the metagame share is taken from, defaults to Tournaments
	ShareTournaments []string `json:"share_tournaments"`
	MinRound         int      `json:"min_round"`
	Division         string   `json:"division"`
	Pod              int      `json:"pod"`
	DeckSize         int      `json:"deck_size"`
	MaxRounds        int      `json:"max_rounds"`
	// path to a json5 rule table, the embedded table is used when empty
	Rules   string  `json:"rules"`
	Workers int     `json:"workers"`
	Cache   Cache   `json:"cache"`
	HTTP    HTTP    `json:"http"`
	Heatmap Heatmap `json:"heatmap"`
}

func Default() Config {
	httpDefaults := fetchcache.DefaultHTTPOptions()
	return Config{
		Division:  rk9.DefaultDivision,
		Pod:       rk9.DefaultPod,
		DeckSize:  archetype.DefaultDeckSize,
		MaxRounds: rk9.DefaultMaxRounds,
		Workers:   analysis.DefaultWorkers,
		Cache: Cache{
			Kind:          CacheFilesystem,
			Dir:           ".",
			File:          "tcgmeta.db",
			MemoryEntries: 512,
		},
		HTTP: HTTP{
			BaseUrl:           rk9.DefaultBaseURL,
			UserAgent:         httpDefaults.UserAgent,
			TimeoutSeconds:    httpDefaults.Timeout.Seconds(),
			Attempts:          httpDefaults.Attempts,
			RetryDelaySeconds: httpDefaults.RetryDelay.Seconds(),
		},
		Heatmap: Heatmap{
			Output:     "matchups.html",
			MinMatches: report.DefaultMinMatches,
		},
	}
}

// Load reads the config file, a missing file leaves every default in place.
func Load(path string) (Config, error) {
	config, err := configutil.ReadConfig(path, Default())
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("config file not found, using defaults", "path", path)
		return config, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return config, nil
}

func (c Config) TournamentIDs() []string {
	ids := make([]string, len(c.Tournaments))
	for i, t := range c.Tournaments {
		ids[i] = t.ID
	}
	return ids
}

// TournamentName is the configured name of a tournament, or its id.
func (c Config) TournamentName(id string) string {
	for _, t := range c.Tournaments {
		if rk9.TournamentID(t.ID) == rk9.TournamentID(id) && t.Name != "" {
			return t.Name
		}
	}
	return rk9.TournamentID(id)
}

func (c HTTP) Options() (fetchcache.HTTPOptions, error) {
	opts := fetchcache.HTTPOptions{
		UserAgent:         c.UserAgent,
		Timeout:           time.Duration(c.TimeoutSeconds * float64(time.Second)),
		Attempts:          c.Attempts,
		RetryDelay:        time.Duration(c.RetryDelaySeconds * float64(time.Second)),
		RequestsPerSecond: c.RequestsPerSecond,
	}
	if c.DumpDir != "" {
		output, err := restyutil.NewFilesystemOutput(c.DumpDir)
		if err != nil {
			return fetchcache.HTTPOptions{}, err
		}
		opts.Dump = output
	}
	return opts, nil
}

func (c Cache) Open(ctx context.Context) (fetchcache.Storage, error) {
	var store fetchcache.Storage
	switch c.Kind {
	case CacheFilesystem:
		fs, err := fetchcache.NewFilesystemStorage(c.Dir)
		if err != nil {
			return nil, err
		}
		store = fs
	case CacheSqlite, CacheLibsql:
		sqlConfig := fetchcache.SQLConfig{File: c.File}
		if c.Kind == CacheLibsql {
			if c.Url == "" {
				return nil, fmt.Errorf("the libsql cache needs a url")
			}
			sqlConfig = fetchcache.SQLConfig{Url: c.Url, AuthToken: c.AuthToken}
		}
		db, err := sqlConfig.OpenDB()
		if err != nil {
			return nil, err
		}
		sqlStore, err := fetchcache.NewSQLStorage(ctx, db)
		if err != nil {
			db.Close()
			return nil, err
		}
		store = sqlStore
	case CacheMemory:
		return fetchcache.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown cache kind %q", c.Kind)
	}

	if c.MemoryEntries <= 0 {
		return store, nil
	}
	front, err := fetchcache.NewLRUStorage(store, c.MemoryEntries)
	if err != nil {
		return nil, err
	}
	return front, nil
}

func (c Config) Classifier() (archetype.Classifier, error) {
	if c.Rules == "" {
		return archetype.NewClassifier(archetype.DefaultRuleTable()), nil
	}
	table, err := archetype.LoadRuleTable(c.Rules)
	if err != nil {
		return archetype.Classifier{}, err
	}
	return archetype.NewClassifier(table), nil
}

// Service wires the cache, the http fetcher and the classifier described
// by the config.
func (c Config) Service(ctx context.Context) (analysis.Service, error) {
	store, err := c.Cache.Open(ctx)
	if err != nil {
		return analysis.Service{}, fmt.Errorf("open %s cache: %w", c.Cache.Kind, err)
	}
	classifier, err := c.Classifier()
	if err != nil {
		return analysis.Service{}, fmt.Errorf("load rules: %w", err)
	}
	slog.DebugContext(ctx, "loaded rule table", "version", classifier.Table().Version, "rules", len(classifier.Table().Rules))

	httpOptions, err := c.HTTP.Options()
	if err != nil {
		return analysis.Service{}, fmt.Errorf("http options: %w", err)
	}
	cache := fetchcache.New(store, fetchcache.NewHTTPFetcher(httpOptions))
	return analysis.NewService(analysis.Options{
		Cache: cache,
		RK9: rk9.Options{
			BaseURL:   c.HTTP.BaseUrl,
			Division:  c.Division,
			Pod:       c.Pod,
			DeckSize:  c.DeckSize,
			MaxRounds: c.MaxRounds,
		},
		Classifier: classifier,
		Workers:    c.Workers,
		MinRound:   c.MinRound,
	}), nil
}
