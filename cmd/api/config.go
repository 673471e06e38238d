package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"boards.onebusaway.org/internal/appconf"
	"boards.onebusaway.org/internal/gtfs"
	"boards.onebusaway.org/internal/utils"
)

// options are the server settings after flags, environment and the optional
// YAML file have been merged. Explicit flags win over the file, which wins
// over environment variables and the built-in defaults.
type options struct {
	Port           int           `yaml:"port" validate:"min=1,max=65535"`
	Env            string        `yaml:"env" validate:"oneof=development test production prod"`
	ApiKeys        string        `yaml:"api_keys"`
	GtfsURL        string        `yaml:"gtfs_url" validate:"required"`
	DataPath       string        `yaml:"data_path" validate:"required"`
	RateLimit      int           `yaml:"rate_limit" validate:"min=-1"`
	BoardLimit     int           `yaml:"board_limit" validate:"min=0"`
	Timezone       string        `yaml:"timezone" validate:"required"`
	LogLevel       string        `yaml:"log_level" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	Verbose        bool          `yaml:"verbose"`
	UpdateInterval time.Duration `yaml:"update_interval" validate:"min=0"`
}

func envOr(getenv func(string) string, key, fallback string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(getenv func(string) string, key string, fallback int) int {
	if v, err := strconv.Atoi(getenv(key)); err == nil {
		return v
	}
	return fallback
}

// loadOptions parses args. getenv supplies defaults, usually os.Getenv after
// the .env file has been loaded.
func loadOptions(args []string, getenv func(string) string, output io.Writer) (options, error) {
	var opts options
	var configPath string

	fs := flag.NewFlagSet("api", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.IntVar(&opts.Port, "port", envIntOr(getenv, "PORT", 4000), "API server port")
	fs.StringVar(&opts.Env, "env", envOr(getenv, "ENV", "development"), "Environment (development|test|production)")
	fs.StringVar(&opts.ApiKeys, "api-keys", envOr(getenv, "API_KEYS", "test"), "Comma Separated API Keys (test, etc)")
	fs.StringVar(&opts.GtfsURL, "gtfs-url", envOr(getenv, "GTFS_URL", "https://download.gtfs.de/germany/fv_free/latest.zip"), "URL or path of a static GTFS zip file")
	fs.StringVar(&opts.DataPath, "data-path", envOr(getenv, "DATA_PATH", "./gtfs.db"), "Path to the SQLite database")
	fs.IntVar(&opts.RateLimit, "rate-limit", envIntOr(getenv, "RATE_LIMIT", 100), "Requests per second per API key, -1 disables limiting")
	fs.IntVar(&opts.BoardLimit, "board-limit", envIntOr(getenv, "BOARD_LIMIT", 20), "Default number of board entries, 0 for all")
	fs.StringVar(&opts.Timezone, "timezone", envOr(getenv, "TIMEZONE", "Europe/Berlin"), "Timezone boards are computed in")
	fs.StringVar(&opts.LogLevel, "log-level", envOr(getenv, "LOG_LEVEL", "info"), "Log level (debug|info|warn|error)")
	fs.BoolVar(&opts.Verbose, "verbose", false, "Log per-table import statistics")
	fs.DurationVar(&opts.UpdateInterval, "update-interval", 24*time.Hour, "Refresh period for feeds fetched by URL")
	fs.StringVar(&configPath, "config", getenv("CONFIG_FILE"), "Optional YAML config file")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if configPath != "" {
		if err := applyConfigFile(fs, &opts, configPath); err != nil {
			return options{}, err
		}
	}

	if err := validator.New().Struct(opts); err != nil {
		return options{}, fmt.Errorf("invalid configuration: %w", err)
	}
	if opts.BoardLimit > utils.MaxBoardLimit {
		return options{}, fmt.Errorf("invalid configuration: board limit %d exceeds %d", opts.BoardLimit, utils.MaxBoardLimit)
	}
	return opts, nil
}

// applyConfigFile overlays the file's non-zero values on every option not set
// explicitly on the command line.
func applyConfigFile(fs *flag.FlagSet, opts *options, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	var file options
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("error parsing config file %s: %w", path, err)
	}

	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	overlay := func(name string, set bool, apply func()) {
		if set && !explicit[name] {
			apply()
		}
	}
	overlay("port", file.Port != 0, func() { opts.Port = file.Port })
	overlay("env", file.Env != "", func() { opts.Env = file.Env })
	overlay("api-keys", file.ApiKeys != "", func() { opts.ApiKeys = file.ApiKeys })
	overlay("gtfs-url", file.GtfsURL != "", func() { opts.GtfsURL = file.GtfsURL })
	overlay("data-path", file.DataPath != "", func() { opts.DataPath = file.DataPath })
	overlay("rate-limit", file.RateLimit != 0, func() { opts.RateLimit = file.RateLimit })
	overlay("board-limit", file.BoardLimit != 0, func() { opts.BoardLimit = file.BoardLimit })
	overlay("timezone", file.Timezone != "", func() { opts.Timezone = file.Timezone })
	overlay("log-level", file.LogLevel != "", func() { opts.LogLevel = file.LogLevel })
	overlay("verbose", file.Verbose, func() { opts.Verbose = true })
	overlay("update-interval", file.UpdateInterval != 0, func() { opts.UpdateInterval = file.UpdateInterval })
	return nil
}

func splitKeys(value string) []string {
	var keys []string
	for _, key := range strings.Split(value, ",") {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// buildConfigs turns options into the application and GTFS configurations.
func buildConfigs(opts options) (appconf.Config, gtfs.Config, error) {
	loc, err := time.LoadLocation(opts.Timezone)
	if err != nil {
		return appconf.Config{}, gtfs.Config{}, fmt.Errorf("invalid timezone %q: %w", opts.Timezone, err)
	}

	env := appconf.EnvFlagToEnvironment(opts.Env)
	keys := splitKeys(opts.ApiKeys)
	if len(keys) == 0 {
		return appconf.Config{}, gtfs.Config{}, errors.New("at least one API key is required")
	}

	cfg := appconf.Config{
		Port:              opts.Port,
		Env:               env,
		ApiKeys:           keys,
		RateLimit:         opts.RateLimit,
		DefaultBoardLimit: opts.BoardLimit,
		Timezone:          loc,
	}
	gtfsCfg := gtfs.Config{
		GtfsURL:        opts.GtfsURL,
		GTFSDataPath:   opts.DataPath,
		Env:            env,
		Verbose:        opts.Verbose,
		UpdateInterval: opts.UpdateInterval,
	}
	return cfg, gtfsCfg, nil
}
