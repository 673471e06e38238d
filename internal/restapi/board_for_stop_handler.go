package restapi

import (
	"errors"
	"maps"
	"net/http"
	"time"

	"boards.onebusaway.org/internal/board"
	"boards.onebusaway.org/internal/gtfs"
	"boards.onebusaway.org/internal/models"
	"boards.onebusaway.org/internal/utils"
)

func (api *RestAPI) boardForStopHandler(w http.ResponseWriter, r *http.Request) {
	stopID := utils.ExtractIDFromParams(r, "id")
	if err := utils.ValidateID(stopID); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"id": {err.Error()}})
		return
	}

	query := r.URL.Query()
	fieldErrors := make(map[string][]string)

	boardType, err := board.ParseType(query.Get("type"))
	if err != nil {
		fieldErrors["type"] = []string{err.Error()}
	}
	loc := api.Config.Location()
	reference, errs := utils.ParseReferenceTime(query.Get("time"), loc, api.Now())
	maps.Copy(fieldErrors, errs)
	limit, errs := utils.ParseLimit(query.Get("limit"), api.Config.DefaultBoardLimit)
	maps.Copy(fieldErrors, errs)

	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	ctx := r.Context()
	start := time.Now()
	entries, err := api.GtfsManager.Board(ctx, gtfs.BoardRequest{
		StopID:    stopID,
		Type:      boardType,
		Reference: reference,
		Limit:     limit,
	})
	api.Metrics.ObserveBoard(boardType.String(), time.Since(start), gtfs.ErrorKind(err))

	if errors.Is(err, gtfs.ErrStopNotFound) {
		api.sendNotFound(w, r)
		return
	}
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	stop, err := api.GtfsManager.GetStop(ctx, stopID)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	references := models.NewEmptyReferences()
	references.Stops = append(references.Stops,
		models.NewStop(stop.ID, stop.Code, stop.Name, stop.ParentStation, stop.Lat, stop.Lon, stop.LocationType))

	boardEntries := make([]models.BoardEntry, 0, len(entries))
	seenTrips := make(map[string]bool, len(entries))
	for _, e := range entries {
		boardEntries = append(boardEntries,
			models.NewBoardEntry(e.TripGtfsID, e.ShortName, e.Headsign, e.Arrival, e.Departure))

		if !seenTrips[e.TripGtfsID] {
			seenTrips[e.TripGtfsID] = true
			references.Trips = append(references.Trips, models.TripReference{
				ID:        e.TripGtfsID,
				ShortName: e.ShortName,
				Headsign:  e.Headsign,
			})
		}
	}

	entry := models.NewBoard(stopID, boardType.String(), reference, boardEntries)
	api.sendResponse(w, r, models.NewEntryResponse(entry, references))
}
