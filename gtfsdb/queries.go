package gtfsdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"boards.onebusaway.org/internal/logging"
)

const calendarRowsQuery = `
	SELECT s.id, s.gtfs_id, s.monday, s.tuesday, s.wednesday, s.thursday,
		s.friday, s.saturday, s.sunday, s.start_date, s.end_date,
		e.date, e.exception_type
	FROM services s
	LEFT JOIN service_exceptions e ON e.service_id = s.id
	ORDER BY s.id, e.rowid;
`

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// CalendarRows returns every service with its exceptions in insertion order.
func (c *Client) CalendarRows(ctx context.Context) ([]CalendarRow, error) {
	return calendarRows(ctx, c.DB, c.logger)
}

func calendarRows(ctx context.Context, q queryer, logger *slog.Logger) ([]CalendarRow, error) {
	rows, err := q.QueryContext(ctx, calendarRowsQuery)
	if err != nil {
		return nil, fmt.Errorf("error querying calendar: %w", err)
	}
	defer logging.SafeCloseWithLogging(rows, logger, "calendar_rows")

	var result []CalendarRow
	for rows.Next() {
		var (
			s             Service
			days          [7]int64
			date          sql.NullString
			exceptionType sql.NullInt64
		)
		err := rows.Scan(&s.ID, &s.GtfsID,
			&days[0], &days[1], &days[2], &days[3], &days[4], &days[5], &days[6],
			&s.StartDate, &s.EndDate, &date, &exceptionType)
		if err != nil {
			return nil, fmt.Errorf("error scanning calendar row: %w", err)
		}

		if len(result) == 0 || result[len(result)-1].Service.ID != s.ID {
			s.Monday, s.Tuesday, s.Wednesday, s.Thursday = days[0] != 0, days[1] != 0, days[2] != 0, days[3] != 0
			s.Friday, s.Saturday, s.Sunday = days[4] != 0, days[5] != 0, days[6] != 0
			result = append(result, CalendarRow{Service: s})
		}

		if date.Valid {
			current := &result[len(result)-1]
			current.Exceptions = append(current.Exceptions, ServiceException{
				ServiceID:     s.ID,
				Date:          date.String,
				ExceptionType: int(exceptionType.Int64),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading calendar: %w", err)
	}

	return result, nil
}

// Child platforms of a station are included so a station ID yields the
// whole station's board.
const stopTimeRowsQuery = `
	SELECT t.id, t.gtfs_id, t.service_id, st.arrival_time, st.departure_time,
		COALESCE(NULLIF(r.short_name, ''), NULLIF(t.short_name, ''), '') AS short_name,
		COALESCE(NULLIF(st.stop_headsign, ''), NULLIF(t.headsign, ''), '') AS headsign
	FROM stop_times st
	JOIN trips t ON t.id = st.trip_id
	LEFT JOIN routes r ON r.id = t.route_id
	WHERE st.stop_id = ?1
		OR st.stop_id IN (SELECT id FROM stops WHERE parent_station = ?1)
	ORDER BY t.id, st.stop_sequence;
`

// StopTimeRows returns the stop-times at a stop.
func (c *Client) StopTimeRows(ctx context.Context, stopID string) ([]StopTimeRow, error) {
	rows, err := c.DB.QueryContext(ctx, stopTimeRowsQuery, stopID)
	if err != nil {
		return nil, fmt.Errorf("error querying stop times for %s: %w", stopID, err)
	}
	defer logging.SafeCloseWithLogging(rows, c.logger, "stop_time_rows")

	var result []StopTimeRow
	for rows.Next() {
		var r StopTimeRow
		if err := rows.Scan(&r.TripID, &r.TripGtfsID, &r.ServiceID, &r.ArrivalTime, &r.DepartureTime, &r.ShortName, &r.Headsign); err != nil {
			return nil, fmt.Errorf("error scanning stop time row: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading stop times for %s: %w", stopID, err)
	}

	return result, nil
}

const (
	mainStationsQuery = `
	SELECT MIN(id), name
	FROM stops
	WHERE name LIKE '%Hbf' OR name LIKE '%Hauptbahnhof'
	GROUP BY name
	ORDER BY name;
`
	stationsByNameQuery = `
	SELECT MIN(id), name
	FROM stops
	WHERE name LIKE '%' || ? || '%' ESCAPE '\'
	GROUP BY name
	ORDER BY name;
`
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchStations finds stations by case-insensitive substring of their name.
// An empty query lists the main stations (names ending in Hbf or
// Hauptbahnhof). Stops sharing a name are collapsed to the smallest ID.
func (c *Client) SearchStations(ctx context.Context, query string) ([]Station, error) {
	query = strings.TrimSpace(query)

	var (
		rows *sql.Rows
		err  error
	)
	if query == "" {
		rows, err = c.DB.QueryContext(ctx, mainStationsQuery)
	} else {
		rows, err = c.DB.QueryContext(ctx, stationsByNameQuery, likeEscaper.Replace(query))
	}
	if err != nil {
		return nil, fmt.Errorf("error searching stations: %w", err)
	}
	defer logging.SafeCloseWithLogging(rows, c.logger, "search_stations")

	stations := []Station{}
	for rows.Next() {
		var s Station
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("error scanning station: %w", err)
		}
		stations = append(stations, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading stations: %w", err)
	}

	return stations, nil
}

// GetStop returns sql.ErrNoRows when the stop does not exist.
func (c *Client) GetStop(ctx context.Context, id string) (Stop, error) {
	var (
		s      Stop
		code   sql.NullString
		parent sql.NullString
	)
	err := c.DB.QueryRowContext(ctx, `
		SELECT id, code, name, lat, lon, location_type, parent_station
		FROM stops WHERE id = ?;
	`, id).Scan(&s.ID, &code, &s.Name, &s.Lat, &s.Lon, &s.LocationType, &parent)
	if err != nil {
		return Stop{}, err
	}
	s.Code = code.String
	s.ParentStation = parent.String
	return s, nil
}
