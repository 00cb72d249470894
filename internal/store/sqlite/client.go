package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"sdnscreen/internal/store"

	_ "modernc.org/sqlite"
)

var _ store.Store = (*Client)(nil)
var _ store.SQLRunner = (*Client)(nil)

type Client struct {
	db *sql.DB
}

func New(ctx context.Context, dsn string) (*Client, error) {
	source, err := driverDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing sqlite DSN: %w", err)
	}
	if dir := databaseDir(source); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", withPragmas(source))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	if source == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite: %w", err)
	}

	return &Client{db: db}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.db.Close()
}
