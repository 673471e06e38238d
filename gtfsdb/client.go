package gtfsdb

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jamespfennell/gtfs"

	"boards.onebusaway.org/internal/logging"
)

// Client is the main entry point for the library
type Client struct {
	config        Config
	DB            *sql.DB
	logger        *slog.Logger
	importRuntime time.Duration
}

// NewClient opens the database and applies the schema.
func NewClient(config Config) (*Client, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "gtfsdb"))

	db, err := createDB(config)
	if err != nil {
		return nil, err
	}
	if config.Verbose {
		logging.LogOperation(logger, "database_ready", slog.String("path", config.DBPath))
	}

	return &Client{
		config: config,
		DB:     db,
		logger: logger,
	}, nil
}

func (c *Client) Close() error {
	return c.DB.Close()
}

// ImportRuntime returns how long the last import took.
func (c *Client) ImportRuntime() time.Duration {
	return c.importRuntime
}

// DownloadAndStore downloads GTFS data from the given URL and stores it in the database
func (c *Client) DownloadAndStore(ctx context.Context, url string) error {
	staticData, err := c.DownloadStatic(ctx, url)
	if err != nil {
		return err
	}
	return c.ImportStatic(ctx, staticData, nil)
}

// ImportFromFile imports GTFS data from a local zip file into the database
func (c *Client) ImportFromFile(ctx context.Context, path string) error {
	staticData, err := c.ReadStatic(path)
	if err != nil {
		return err
	}
	return c.ImportStatic(ctx, staticData, nil)
}

// DownloadStatic downloads and parses a feed without touching the database.
func (c *Client) DownloadStatic(ctx context.Context, url string) (*gtfs.Static, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error building request for %s: %w", url, err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error downloading %s: %w", url, err)
	}
	defer logging.SafeCloseWithLogging(resp.Body, c.logger, "gtfs_download_body")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error downloading %s: unexpected status %s", url, resp.Status)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", url, err)
	}

	return c.parseStatic(b)
}

// ReadStatic parses a local feed without touching the database.
func (c *Client) ReadStatic(path string) (*gtfs.Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return c.parseStatic(data)
}
