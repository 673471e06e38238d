package restapi

import (
	"net/http"

	"boards.onebusaway.org/internal/models"
)

func (api *RestAPI) currentTimeHandler(w http.ResponseWriter, r *http.Request) {
	response := models.NewEntryResponse(models.NewCurrentTime(api.Now()), models.NewEmptyReferences())
	api.sendResponse(w, r, response)
}
