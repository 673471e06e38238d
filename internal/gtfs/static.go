package gtfs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gtfsfeed "github.com/jamespfennell/gtfs"

	"boards.onebusaway.org/gtfsdb"
	"boards.onebusaway.org/internal/calendar"
	"boards.onebusaway.org/internal/logging"
	"boards.onebusaway.org/internal/schedule"
)

func buildGtfsDB(ctx context.Context, config Config, logger *slog.Logger) (*gtfsdb.Client, error) {
	dbConfig := gtfsdb.NewConfig(config.GTFSDataPath, config.Env, config.Verbose)
	dbConfig.Logger = logger
	client, err := gtfsdb.NewClient(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create GTFS database client: %w", err)
	}

	if err := importFeed(ctx, client, config); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func importFeed(ctx context.Context, client *gtfsdb.Client, config Config) error {
	staticData, err := fetchFeed(ctx, client, config)
	if err != nil {
		return err
	}
	if err := client.ImportStatic(ctx, staticData, nil); err != nil {
		return fmt.Errorf("error importing GTFS data from %s: %w", config.GtfsURL, err)
	}
	return nil
}

func fetchFeed(ctx context.Context, client *gtfsdb.Client, config Config) (*gtfsfeed.Static, error) {
	var (
		staticData *gtfsfeed.Static
		err        error
	)
	if config.isLocalFile() {
		staticData, err = client.ReadStatic(config.GtfsURL)
	} else {
		staticData, err = client.DownloadStatic(ctx, config.GtfsURL)
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching GTFS data from %s: %w", config.GtfsURL, err)
	}
	return staticData, nil
}

type calendarSource interface {
	CalendarRows(ctx context.Context) ([]gtfsdb.CalendarRow, error)
}

// loadCalendar reads every service from the database into a Store.
func loadCalendar(ctx context.Context, source calendarSource) (*calendar.Store, error) {
	dbRows, err := source.CalendarRows(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]calendar.Row, 0, len(dbRows))
	for _, r := range dbRows {
		row := calendar.Row{
			ServiceID: calendar.ServiceID(r.Service.ID),
			Weekdays: calendar.Weekdays{
				Monday:    r.Service.Monday,
				Tuesday:   r.Service.Tuesday,
				Wednesday: r.Service.Wednesday,
				Thursday:  r.Service.Thursday,
				Friday:    r.Service.Friday,
				Saturday:  r.Service.Saturday,
				Sunday:    r.Service.Sunday,
			},
			StartDate:  r.Service.StartDate,
			EndDate:    r.Service.EndDate,
			Exceptions: make([]calendar.ExceptionRow, 0, len(r.Exceptions)),
		}
		for _, e := range r.Exceptions {
			row.Exceptions = append(row.Exceptions, calendar.ExceptionRow{Date: e.Date, Type: e.ExceptionType})
		}
		rows = append(rows, row)
	}

	store, err := calendar.Load(rows)
	if err != nil {
		return nil, fmt.Errorf("error loading calendar: %w", err)
	}
	return store, nil
}

func toRawStopTimes(rows []gtfsdb.StopTimeRow) []schedule.RawStopTime {
	raw := make([]schedule.RawStopTime, 0, len(rows))
	for _, r := range rows {
		raw = append(raw, schedule.RawStopTime{
			ArrivalTime:   r.ArrivalTime,
			DepartureTime: r.DepartureTime,
			TripID:        schedule.TripID(r.TripID),
			ServiceID:     calendar.ServiceID(r.ServiceID),
			ShortName:     r.ShortName,
			Headsign:      r.Headsign,
		})
	}
	return raw
}

// updateStaticGTFS refreshes the feed on a regular schedule.
// Only URL sources are refreshed, never local files.
func (manager *Manager) updateStaticGTFS() {
	defer manager.wg.Done()

	if manager.config.isLocalFile() {
		manager.logger.Info("GTFS source is a local file, skipping periodic updates")
		return
	}

	ticker := time.NewTicker(manager.config.updateInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			err := manager.reload(ctx)
			cancel()

			if err != nil {
				// Keep serving the previous snapshot.
				logging.LogError(manager.logger, "error updating GTFS data", err,
					slog.String("source", manager.config.GtfsURL))
				continue
			}
		case <-manager.shutdownChan:
			manager.logger.Info("shutting down static GTFS updates")
			return
		}
	}
}

// reload re-imports the feed and swaps in a fresh calendar. The download
// runs without the lock. The database import and the calendar build share one
// transaction, so a failure at any stage leaves the previous database and
// calendar in place.
func (manager *Manager) reload(ctx context.Context) error {
	staticData, err := fetchFeed(ctx, manager.GtfsDB, manager.config)
	if err != nil {
		return err
	}

	manager.mu.Lock()
	defer manager.mu.Unlock()

	var store *calendar.Store
	err = manager.GtfsDB.ImportStatic(ctx, staticData, func(ctx context.Context, view gtfsdb.ImportView) error {
		var err error
		store, err = loadCalendar(ctx, view)
		return err
	})
	if err != nil {
		return fmt.Errorf("error importing GTFS data from %s: %w", manager.config.GtfsURL, err)
	}
	manager.setCalendar(store)
	return nil
}
