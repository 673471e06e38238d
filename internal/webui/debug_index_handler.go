package webui

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/davecgh/go-spew/spew"

	"boards.onebusaway.org/internal/gtfs"
)

//go:embed debug_index.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "debug_index.html"))

// WebUI serves a plain-text dump of the loaded data for debugging.
type WebUI struct {
	GtfsManager *gtfs.Manager
	Logger      *slog.Logger
}

type debugData struct {
	Title string
	Pre   string
}

func writeDebugData(w http.ResponseWriter, title string, data interface{}) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return debugTemplate.Execute(w, debugData{
		Title: title,
		Pre:   spew.Sdump(data),
	})
}

func (webUI *WebUI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var data interface{}
	var title string

	switch r.URL.Query().Get("dataType") {
	case "services":
		data = webUI.GtfsManager.CalendarStore().Services()
		title = "Calendar - Services"
	case "stations":
		stations, err := webUI.GtfsManager.SearchStations(r.Context(), "")
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		data = stations
		title = "Stations"
	default:
		data = map[string]string{
			"error": "Please use one of the following: services, stations.",
		}
		title = "Choose a data type"
	}

	if err := writeDebugData(w, title, data); err != nil && webUI.Logger != nil {
		webUI.Logger.Error("failed to render debug page", "error", err)
	}
}
