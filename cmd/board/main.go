// Command board prints the upcoming departures or arrivals at one stop.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"
	_ "time/tzdata"

	"github.com/gocarina/gocsv"

	"boards.onebusaway.org/gtfsdb"
	"boards.onebusaway.org/internal/appconf"
	"boards.onebusaway.org/internal/board"
	"boards.onebusaway.org/internal/gtfs"
	"boards.onebusaway.org/internal/logging"
	"boards.onebusaway.org/internal/utils"
)

const clockLayout = "15:04"

type cliOptions struct {
	dbPath   string
	feedPath string
	stopID   string
	search   string
	board    board.Type
	time     string
	timezone string
	limit    int
	format   string
}

// boardRow is one CSV line.
type boardRow struct {
	TripID    string `csv:"trip_id"`
	Line      string `csv:"line"`
	Headsign  string `csv:"headsign"`
	Arrival   string `csv:"arrival"`
	Departure string `csv:"departure"`
}

type stationRow struct {
	ID   string `csv:"id"`
	Name string `csv:"name"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, time.Now); err != nil {
		fmt.Fprintln(os.Stderr, "board:", err)
		os.Exit(1)
	}
}

func parseArgs(args []string, stderr io.Writer) (cliOptions, error) {
	var opts cliOptions
	var boardType string

	fs := flag.NewFlagSet("board", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.dbPath, "db", "", "SQLite database written by the API server")
	fs.StringVar(&opts.feedPath, "gtfs", "", "Static GTFS zip file, imported into memory")
	fs.StringVar(&opts.stopID, "stop", "", "Stop or station ID")
	fs.StringVar(&opts.search, "search", "", "List stations whose name contains this text instead of printing a board")
	fs.StringVar(&boardType, "type", "departure", "Board type (departure|arrival)")
	fs.StringVar(&opts.time, "time", "", "Reference time, 2006-01-02T15:04 in -timezone; default now")
	fs.StringVar(&opts.timezone, "timezone", "Local", "Timezone of the reference time")
	fs.IntVar(&opts.limit, "limit", 20, "Maximum number of entries, 0 for all")
	fs.StringVar(&opts.format, "format", "table", "Output format (table|csv)")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	var err error
	if opts.board, err = board.ParseType(boardType); err != nil {
		return cliOptions{}, err
	}
	switch {
	case (opts.dbPath == "") == (opts.feedPath == ""):
		return cliOptions{}, errors.New("exactly one of -db or -gtfs is required")
	case opts.stopID == "" && opts.search == "":
		return cliOptions{}, errors.New("-stop or -search is required")
	case opts.format != "table" && opts.format != "csv":
		return cliOptions{}, fmt.Errorf("unknown format %q", opts.format)
	case opts.limit < 0 || opts.limit > utils.MaxBoardLimit:
		return cliOptions{}, fmt.Errorf("limit must be between 0 and %d", utils.MaxBoardLimit)
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, now func() time.Time) error {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}

	loc, err := time.LoadLocation(opts.timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", opts.timezone, err)
	}
	reference, fieldErrors := utils.ParseReferenceTime(opts.time, loc, now())
	if fieldErrors != nil {
		return fmt.Errorf("invalid time %q", opts.time)
	}

	logger := logging.NewStructuredLogger(stderr, slog.LevelWarn)
	manager, err := openManager(ctx, opts, logger)
	if err != nil {
		return err
	}
	defer manager.Shutdown()

	if opts.search != "" {
		stations, err := manager.SearchStations(ctx, opts.search)
		if err != nil {
			return err
		}
		return writeStations(stdout, opts.format, stations)
	}

	entries, err := manager.Board(ctx, gtfs.BoardRequest{
		StopID:    opts.stopID,
		Type:      opts.board,
		Reference: reference,
		Limit:     opts.limit,
	})
	if err != nil {
		return err
	}
	return writeBoard(stdout, opts.format, opts.board, entries)
}

func openManager(ctx context.Context, opts cliOptions, logger *slog.Logger) (*gtfs.Manager, error) {
	if opts.feedPath != "" {
		return gtfs.InitGTFSManager(ctx, gtfs.Config{
			GtfsURL:      opts.feedPath,
			GTFSDataPath: ":memory:",
			Env:          appconf.Development,
		}, logger)
	}

	if _, err := os.Stat(opts.dbPath); err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	client, err := gtfsdb.NewClient(gtfsdb.NewConfig(opts.dbPath, appconf.Development, false))
	if err != nil {
		return nil, err
	}
	manager, err := gtfs.NewManagerFromClient(ctx, client, logger)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return manager, nil
}

func writeBoard(w io.Writer, format string, boardType board.Type, entries []gtfs.BoardEntry) error {
	rows := make([]boardRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, boardRow{
			TripID:    e.TripGtfsID,
			Line:      e.ShortName,
			Headsign:  e.Headsign,
			Arrival:   e.Arrival.Format(clockLayout),
			Departure: e.Departure.Format(clockLayout),
		})
	}

	if format == "csv" {
		return gocsv.Marshal(rows, w)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tLINE\tHEADSIGN\tTRIP")
	for _, r := range rows {
		clock := r.Departure
		if boardType == board.Arrival {
			clock = r.Arrival
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", clock, r.Line, r.Headsign, r.TripID)
	}
	return tw.Flush()
}

func writeStations(w io.Writer, format string, stations []gtfsdb.Station) error {
	rows := make([]stationRow, 0, len(stations))
	for _, s := range stations {
		rows = append(rows, stationRow{ID: s.ID, Name: s.Name})
	}

	if format == "csv" {
		return gocsv.Marshal(rows, w)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r.ID, r.Name)
	}
	return tw.Flush()
}
