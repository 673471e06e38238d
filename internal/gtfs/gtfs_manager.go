package gtfs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"boards.onebusaway.org/gtfsdb"
	"boards.onebusaway.org/internal/board"
	"boards.onebusaway.org/internal/calendar"
	"boards.onebusaway.org/internal/logging"
	"boards.onebusaway.org/internal/schedule"
)

// ErrStopNotFound is returned for boards and lookups of stops the feed does not contain.
var ErrStopNotFound = errors.New("stop not found")

// Manager owns the static GTFS database and the calendar snapshot built from it.
type Manager struct {
	GtfsDB *gtfsdb.Client
	config Config
	logger *slog.Logger

	mu          sync.RWMutex
	store       *calendar.Store
	builder     *board.Builder
	lastUpdated time.Time

	shutdownChan chan struct{}
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// BoardRequest selects the board for one stop.
type BoardRequest struct {
	StopID    string
	Type      board.Type
	Reference time.Time
	Limit     int // zero or less means no limit
}

// BoardEntry is a board.Entry with the trip ID from the feed.
type BoardEntry struct {
	board.Entry
	TripGtfsID string
}

// InitGTFSManager imports the feed named by config.GtfsURL, which can be
// either a URL or a local file path, and builds the calendar.
// URL sources are refreshed in the background until Shutdown.
func InitGTFSManager(ctx context.Context, config Config, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}

	gtfsDB, err := buildGtfsDB(ctx, config, logger)
	if err != nil {
		return nil, fmt.Errorf("error building GTFS database: %w", err)
	}

	manager, err := newManager(ctx, gtfsDB, config, logger)
	if err != nil {
		_ = gtfsDB.Close()
		return nil, err
	}

	if !config.isLocalFile() {
		manager.wg.Add(1)
		go manager.updateStaticGTFS()
	}

	return manager, nil
}

// NewManagerFromClient builds a Manager over an already populated database.
// It never refreshes the data.
func NewManagerFromClient(ctx context.Context, client *gtfsdb.Client, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return newManager(ctx, client, Config{}, logger)
}

func newManager(ctx context.Context, client *gtfsdb.Client, config Config, logger *slog.Logger) (*Manager, error) {
	manager := &Manager{
		GtfsDB:       client,
		config:       config,
		logger:       logger.With(slog.String("component", "gtfs_manager")),
		shutdownChan: make(chan struct{}),
	}

	store, err := loadCalendar(ctx, client)
	if err != nil {
		return nil, err
	}
	manager.setCalendar(store)

	return manager, nil
}

func (manager *Manager) setCalendar(store *calendar.Store) {
	manager.store = store
	manager.builder = board.NewBuilder(store, manager.logger)
	manager.lastUpdated = time.Now()

	logging.LogOperation(manager.logger, "calendar_loaded",
		slog.Int("services", store.Len()),
		slog.Int("exceptions", store.ExceptionCount()))

	if manager.config.OnCalendarLoaded != nil {
		manager.config.OnCalendarLoaded(store)
	}
}

// Shutdown gracefully shuts down the manager and its background goroutines
func (manager *Manager) Shutdown() {
	manager.shutdownOnce.Do(func() {
		close(manager.shutdownChan)
		manager.wg.Wait()
		if manager.GtfsDB != nil {
			_ = manager.GtfsDB.Close()
		}
	})
}

// CalendarStore returns the current calendar snapshot.
func (manager *Manager) CalendarStore() *calendar.Store {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return manager.store
}

// LastUpdated returns when the calendar snapshot was built.
func (manager *Manager) LastUpdated() time.Time {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return manager.lastUpdated
}

// GetStop returns ErrStopNotFound for unknown IDs.
func (manager *Manager) GetStop(ctx context.Context, id string) (gtfsdb.Stop, error) {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return manager.getStop(ctx, id)
}

func (manager *Manager) getStop(ctx context.Context, id string) (gtfsdb.Stop, error) {
	stop, err := manager.GtfsDB.GetStop(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return gtfsdb.Stop{}, fmt.Errorf("%w: %s", ErrStopNotFound, id)
	}
	return stop, err
}

func (manager *Manager) SearchStations(ctx context.Context, query string) ([]gtfsdb.Station, error) {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return manager.GtfsDB.SearchStations(ctx, query)
}

// Board computes the upcoming arrivals or departures at a stop.
//
// A malformed stop time, an unknown service or a storage failure aborts the
// board. A stop with no upcoming service yields an empty board.
func (manager *Manager) Board(ctx context.Context, req BoardRequest) ([]BoardEntry, error) {
	manager.mu.RLock()
	defer manager.mu.RUnlock()

	if _, err := manager.getStop(ctx, req.StopID); err != nil {
		return nil, err
	}

	rows, err := manager.GtfsDB.StopTimeRows(ctx, req.StopID)
	if err != nil {
		return nil, err
	}

	stopTimes, err := schedule.ParseStopTimes(toRawStopTimes(rows))
	if err != nil {
		return nil, fmt.Errorf("stop %s: %w", req.StopID, err)
	}

	entries, err := manager.builder.Build(stopTimes, req.Type, req.Reference, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("stop %s: %w", req.StopID, err)
	}

	gtfsTripIDs := make(map[schedule.TripID]string, len(rows))
	for _, r := range rows {
		gtfsTripIDs[schedule.TripID(r.TripID)] = r.TripGtfsID
	}

	result := make([]BoardEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, BoardEntry{Entry: e, TripGtfsID: gtfsTripIDs[e.TripID]})
	}
	return result, nil
}

// ErrorKind classifies a Board error for metrics and logs.
func ErrorKind(err error) string {
	var (
		unknownService *calendar.UnknownServiceError
		timeFormat     *schedule.TimeFormatError
		dateFormat     *calendar.DateFormatError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrStopNotFound):
		return "stop_not_found"
	case errors.As(err, &unknownService):
		return "unknown_service"
	case errors.As(err, &timeFormat):
		return "time_format"
	case errors.As(err, &dateFormat):
		return "date_format"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "storage"
	}
}
