package restapi

import (
	"net/http"

	"boards.onebusaway.org/internal/models"
	"boards.onebusaway.org/internal/utils"
)

// stationsHandler searches station names. An empty query lists main stations.
func (api *RestAPI) stationsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if err := utils.ValidateQuery(query); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"q": {err.Error()}})
		return
	}

	stations, err := api.GtfsManager.SearchStations(r.Context(), utils.SanitizeInput(query))
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	list := make([]models.Station, 0, len(stations))
	for _, s := range stations {
		list = append(list, models.Station{ID: s.ID, Name: s.Name})
	}

	api.sendResponse(w, r, models.NewListResponse(list, models.NewEmptyReferences()))
}
