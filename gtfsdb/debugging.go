package gtfsdb

import (
	"context"
	"fmt"

	"github.com/jamespfennell/gtfs"
)

// tableNames lists the data tables, children before parents.
var tableNames = []string{"stop_times", "trips", "service_exceptions", "services", "routes", "stops"}

func staticDataCounts(staticData *gtfs.Static) map[string]int {
	counts := map[string]int{
		"routes":   len(staticData.Routes),
		"services": len(staticData.Services),
		"stops":    len(staticData.Stops),
		"trips":    len(staticData.Trips),
	}
	for _, t := range staticData.Trips {
		counts["stop_times"] += len(t.StopTimes)
	}
	for _, s := range staticData.Services {
		counts["service_exceptions"] += len(s.AddedDates) + len(s.RemovedDates)
	}
	return counts
}

// TableCounts returns the number of rows in each data table.
func (c *Client) TableCounts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, len(tableNames))

	for _, table := range tableNames {
		var count int
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
		if err := c.DB.QueryRowContext(ctx, query).Scan(&count); err != nil {
			return nil, fmt.Errorf("error counting %s: %w", table, err)
		}
		counts[table] = count
	}

	return counts, nil
}
