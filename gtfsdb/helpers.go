package gtfsdb

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jamespfennell/gtfs"

	"boards.onebusaway.org/internal/appconf"
	"boards.onebusaway.org/internal/calendar"
	"boards.onebusaway.org/internal/logging"
	"boards.onebusaway.org/internal/schedule"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

//go:embed schema.sql
var ddl string

// createDB creates a new SQLite database with tables for static GTFS data
func createDB(config Config) (*sql.DB, error) {
	if config.Env == appconf.Test && config.DBPath != ":memory:" {
		return nil, fmt.Errorf("test database must use in-memory storage, got %q", config.DBPath)
	}

	db, err := sql.Open("sqlite", config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if config.DBPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx := context.Background()
	err = performDatabaseMigration(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error performing database migration: %w", err)
	}

	return db, nil
}

func performDatabaseMigration(ctx context.Context, db *sql.DB) error {
	statements := strings.Split(ddl, "-- migrate") // Split DDL into individual statements
	for _, stmt := range statements {
		trimmedStmt := strings.TrimSpace(stmt)
		if trimmedStmt == "" {
			continue // Skip empty statements
		}
		if _, err := db.ExecContext(ctx, trimmedStmt); err != nil {
			return fmt.Errorf("error executing DDL statement [%s]: %w", trimmedStmt, err)
		}
	}
	return nil
}

func (c *Client) parseStatic(b []byte) (*gtfs.Static, error) {
	staticData, err := gtfs.ParseStatic(b, gtfs.ParseStaticOptions{})
	if err != nil {
		return nil, fmt.Errorf("error parsing GTFS data: %w", err)
	}

	if c.config.Verbose {
		logging.LogOperation(c.logger, "gtfs_parsed",
			slog.Int("warnings", len(staticData.Warnings)))
	}
	return staticData, nil
}

// ImportView reads the rows of an import before it is committed.
type ImportView struct {
	tx     *sql.Tx
	logger *slog.Logger
}

// CalendarRows is Client.CalendarRows over the uncommitted import.
func (v ImportView) CalendarRows(ctx context.Context) ([]CalendarRow, error) {
	return calendarRows(ctx, v.tx, v.logger)
}

// VerifyFunc inspects an import before it is committed. An error rolls the
// import back.
type VerifyFunc func(ctx context.Context, view ImportView) error

// ImportStatic replaces the contents of the database with a parsed feed.
// Services and trips get integer IDs in feed order, starting at 1.
//
// The replacement happens in one transaction: when the import or verify
// fails, the database keeps its previous contents. verify may be nil.
func (c *Client) ImportStatic(ctx context.Context, staticData *gtfs.Static, verify VerifyFunc) error {
	if staticData == nil {
		return errors.New("no static data to import")
	}

	startTime := time.Now()
	err := c.inTx(ctx, "import_static", func(tx *sql.Tx) error {
		if err := c.writeStatic(ctx, tx, staticData); err != nil {
			return err
		}
		if verify == nil {
			return nil
		}
		return verify(ctx, ImportView{tx: tx, logger: c.logger})
	})
	c.importRuntime = time.Since(startTime)
	if err != nil {
		return err
	}

	if c.config.Verbose {
		logging.LogOperation(c.logger, "gtfs_import_finished",
			slog.Duration("duration", c.importRuntime))

		counts, err := c.TableCounts(ctx)
		if err != nil {
			return fmt.Errorf("failed to get table counts: %w", err)
		}
		staticCounts := staticDataCounts(staticData)
		for _, table := range tableNames {
			logging.LogOperation(c.logger, "gtfs_table_count",
				slog.String("table", table),
				slog.Int("rows", counts[table]),
				slog.Bool("static_matches", counts[table] == staticCounts[table]))
		}
	}
	return nil
}

func (c *Client) writeStatic(ctx context.Context, tx *sql.Tx, staticData *gtfs.Static) error {
	if err := clearTables(ctx, tx); err != nil {
		return err
	}

	routes := make([]Route, 0, len(staticData.Routes))
	for _, r := range staticData.Routes {
		routes = append(routes, Route{
			ID:        r.Id,
			ShortName: r.ShortName,
			LongName:  r.LongName,
			Type:      int(r.Type),
		})
	}
	if err := insertRows(ctx, tx, c, "routes", insertRouteQuery, routes, routeArgs); err != nil {
		return err
	}

	stops := make([]Stop, 0, len(staticData.Stops))
	for _, s := range staticData.Stops {
		stop := Stop{
			ID:           s.Id,
			Code:         s.Code,
			Name:         s.Name,
			LocationType: int(s.Type),
		}
		if s.Latitude != nil {
			stop.Lat = *s.Latitude
		}
		if s.Longitude != nil {
			stop.Lon = *s.Longitude
		}
		if s.Parent != nil {
			stop.ParentStation = s.Parent.Id
		}
		stops = append(stops, stop)
	}
	if err := insertRows(ctx, tx, c, "stops", insertStopQuery, stops, stopArgs); err != nil {
		return err
	}

	serviceIDs := make(map[string]int64, len(staticData.Services))
	services := make([]Service, 0, len(staticData.Services))
	var exceptions []ServiceException
	for i, s := range staticData.Services {
		id := int64(i + 1)
		serviceIDs[s.Id] = id
		services = append(services, Service{
			ID:        id,
			GtfsID:    s.Id,
			Monday:    s.Monday,
			Tuesday:   s.Tuesday,
			Wednesday: s.Wednesday,
			Thursday:  s.Thursday,
			Friday:    s.Friday,
			Saturday:  s.Saturday,
			Sunday:    s.Sunday,
			StartDate: s.StartDate.Format(calendar.DateLayout),
			EndDate:   s.EndDate.Format(calendar.DateLayout),
		})
		// The parser splits calendar_dates.txt by type, so a date listed as both
		// ADDED and REMOVED resolves to ADDED.
		for _, date := range s.AddedDates {
			exceptions = append(exceptions, ServiceException{
				ServiceID:     id,
				Date:          date.Format(calendar.DateLayout),
				ExceptionType: int(calendar.Added),
			})
		}
		for _, date := range s.RemovedDates {
			exceptions = append(exceptions, ServiceException{
				ServiceID:     id,
				Date:          date.Format(calendar.DateLayout),
				ExceptionType: int(calendar.Removed),
			})
		}
	}
	if err := insertRows(ctx, tx, c, "services", insertServiceQuery, services, serviceArgs); err != nil {
		return err
	}
	if err := insertRows(ctx, tx, c, "service_exceptions", insertServiceExceptionQuery, exceptions, serviceExceptionArgs); err != nil {
		return err
	}

	trips := make([]Trip, 0, len(staticData.Trips))
	var stopTimes []StopTime
	for i, t := range staticData.Trips {
		if t.Service == nil || t.Route == nil {
			return fmt.Errorf("trip %s has no service or route", t.ID)
		}
		serviceID, ok := serviceIDs[t.Service.Id]
		if !ok {
			return fmt.Errorf("trip %s references unknown service %s", t.ID, t.Service.Id)
		}

		id := int64(i + 1)
		trips = append(trips, Trip{
			ID:        id,
			GtfsID:    t.ID,
			RouteID:   t.Route.Id,
			ServiceID: serviceID,
			Headsign:  t.Headsign,
			ShortName: t.ShortName,
		})

		for _, st := range t.StopTimes {
			if st.Stop == nil {
				continue
			}
			stopTimes = append(stopTimes, StopTime{
				TripID:        id,
				StopID:        st.Stop.Id,
				StopSequence:  st.StopSequence,
				ArrivalTime:   schedule.FormatOffset(st.ArrivalTime),
				DepartureTime: schedule.FormatOffset(st.DepartureTime),
				StopHeadsign:  st.Headsign,
			})
		}
	}
	if err := insertRows(ctx, tx, c, "trips", insertTripQuery, trips, tripArgs); err != nil {
		return err
	}
	return insertRows(ctx, tx, c, "stop_times", insertStopTimeQuery, stopTimes, stopTimeArgs)
}

func clearTables(ctx context.Context, tx *sql.Tx) error {
	for _, table := range tableNames {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("error clearing %s: %w", table, err)
		}
	}
	return nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// toNullString converts a string to sql.NullString
func toNullString(s string) sql.NullString {
	return sql.NullString{
		String: s,
		Valid:  s != "",
	}
}
