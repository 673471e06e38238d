package gtfsdb

import (
	"context"
	"database/sql"
	"fmt"

	"boards.onebusaway.org/internal/logging"
)

// insertBatch runs query once per row inside a single transaction.
func insertBatch[T any](ctx context.Context, c *Client, table, query string, rows []T, args func(T) []any) error {
	if len(rows) == 0 {
		return nil
	}
	return c.inTx(ctx, "insert_"+table, func(tx *sql.Tx) error {
		return insertRows(ctx, tx, c, table, query, rows, args)
	})
}

// insertRows runs query once per row on an open transaction.
func insertRows[T any](ctx context.Context, tx *sql.Tx, c *Client, table, query string, rows []T, args func(T) []any) error {
	if len(rows) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("error preparing statement: %w", err)
	}
	defer logging.SafeCloseWithLogging(stmt, c.logger, "insert_"+table+"_stmt")

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, args(row)...); err != nil {
			return fmt.Errorf("error inserting into %s: %w", table, err)
		}
	}
	return nil
}

// inTx commits only if fn succeeds.
func (c *Client) inTx(ctx context.Context, operation string, fn func(tx *sql.Tx) error) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer logging.SafeRollbackWithLogging(tx, c.logger, operation)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

const (
	insertStopQuery = `
		INSERT OR REPLACE INTO stops (
			id, code, name, lat, lon, location_type, parent_station
		) VALUES (?, ?, ?, ?, ?, ?, ?);
	`
	insertRouteQuery = `
		INSERT OR REPLACE INTO routes (id, short_name, long_name, type) VALUES (?, ?, ?, ?);
	`
	insertServiceQuery = `
		INSERT INTO services (
			id, gtfs_id, monday, tuesday, wednesday, thursday,
			friday, saturday, sunday, start_date, end_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`
	insertServiceExceptionQuery = `
		INSERT INTO service_exceptions (service_id, date, exception_type) VALUES (?, ?, ?);
	`
	insertTripQuery = `
		INSERT INTO trips (id, gtfs_id, route_id, service_id, headsign, short_name) VALUES (?, ?, ?, ?, ?, ?);
	`
	insertStopTimeQuery = `
		INSERT OR REPLACE INTO stop_times (
			trip_id, stop_id, stop_sequence, arrival_time, departure_time, stop_headsign
		) VALUES (?, ?, ?, ?, ?, ?);
	`
)

func stopArgs(s Stop) []any {
	return []any{s.ID, toNullString(s.Code), s.Name, s.Lat, s.Lon, s.LocationType, toNullString(s.ParentStation)}
}

func routeArgs(r Route) []any {
	return []any{r.ID, toNullString(r.ShortName), toNullString(r.LongName), r.Type}
}

func serviceArgs(s Service) []any {
	return []any{
		s.ID, s.GtfsID, boolToInt(s.Monday), boolToInt(s.Tuesday), boolToInt(s.Wednesday), boolToInt(s.Thursday),
		boolToInt(s.Friday), boolToInt(s.Saturday), boolToInt(s.Sunday), s.StartDate, s.EndDate,
	}
}

func serviceExceptionArgs(e ServiceException) []any {
	return []any{e.ServiceID, e.Date, e.ExceptionType}
}

func tripArgs(t Trip) []any {
	return []any{t.ID, t.GtfsID, t.RouteID, t.ServiceID, toNullString(t.Headsign), toNullString(t.ShortName)}
}

func stopTimeArgs(st StopTime) []any {
	return []any{st.TripID, st.StopID, st.StopSequence, st.ArrivalTime, st.DepartureTime, toNullString(st.StopHeadsign)}
}

// InsertStops add new stops to the database
func (c *Client) InsertStops(ctx context.Context, stops []Stop) error {
	return insertBatch(ctx, c, "stops", insertStopQuery, stops, stopArgs)
}

func (c *Client) InsertRoutes(ctx context.Context, routes []Route) error {
	return insertBatch(ctx, c, "routes", insertRouteQuery, routes, routeArgs)
}

func (c *Client) InsertServices(ctx context.Context, services []Service) error {
	return insertBatch(ctx, c, "services", insertServiceQuery, services, serviceArgs)
}

// InsertServiceExceptions appends exception rows. Duplicates are kept, and
// CalendarRows returns them in the order they were inserted.
func (c *Client) InsertServiceExceptions(ctx context.Context, exceptions []ServiceException) error {
	return insertBatch(ctx, c, "service_exceptions", insertServiceExceptionQuery, exceptions, serviceExceptionArgs)
}

func (c *Client) InsertTrips(ctx context.Context, trips []Trip) error {
	return insertBatch(ctx, c, "trips", insertTripQuery, trips, tripArgs)
}

// InsertStopTimes inserts multiple stop times using a transaction for better performance
func (c *Client) InsertStopTimes(ctx context.Context, stopTimes []StopTime) error {
	return insertBatch(ctx, c, "stop_times", insertStopTimeQuery, stopTimes, stopTimeArgs)
}
