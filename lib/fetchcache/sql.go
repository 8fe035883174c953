package fetchcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

const Schema = `
create table if not exists page (
	key text primary key not null,
	contents blob not null,
	fetched_at integer not null
);
`

// SQLStorage keeps pages in a single key/value table.
type SQLStorage struct {
	db *sql.DB
}

// NewSQLStorage creates the page table if it does not exist yet.
func NewSQLStorage(ctx context.Context, db *sql.DB) (SQLStorage, error) {
	_, err := db.ExecContext(ctx, Schema)
	if err != nil {
		return SQLStorage{}, fmt.Errorf("create page table: %w", err)
	}
	return SQLStorage{db: db}, nil
}

func (s SQLStorage) Get(ctx context.Context, key string) ([]byte, error) {
	var contents []byte
	err := s.db.QueryRowContext(ctx, "select contents from page where key = ?", key).Scan(&contents)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return contents, nil
}

func (s SQLStorage) Put(ctx context.Context, key string, contents []byte) error {
	_, err := s.db.ExecContext(
		ctx,
		`insert into page(key, contents, fetched_at) values (?, ?, ?)
		on conflict(key) do update set contents = excluded.contents, fetched_at = excluded.fetched_at`,
		key, contents, time.Now().Unix(),
	)
	return err
}

type SQLConfig struct {
	// local sqlite file, ":memory:" is accepted
	File string `json:"file"`
	// remote libsql database, takes precedence over File
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func (config SQLConfig) OpenDB() (*sql.DB, error) {
	if config.Url != "" {
		dsn := config.Url
		if config.AuthToken != "" {
			dsn = fmt.Sprintf("%s?authToken=%s", config.Url, config.AuthToken)
		}
		return sql.Open("libsql", dsn)
	}

	if config.File == "" {
		return nil, fmt.Errorf("a path was not specified")
	}
	if config.File != ":memory:" {
		_, statErr := os.Stat(config.File)
		if os.IsNotExist(statErr) {
			f, err := os.Create(config.File)
			if err != nil {
				return nil, err
			}
			f.Close()
		}
	}

	db, err := sql.Open("sqlite", config.File)
	if err != nil {
		return nil, err
	}
	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	if config.File != ":memory:" {
		_, err = db.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}
