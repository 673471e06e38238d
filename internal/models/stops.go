package models

type Stop struct {
	Code         string  `json:"code"`
	ID           string  `json:"id"`
	Lat          float64 `json:"lat"`
	LocationType int     `json:"locationType"`
	Lon          float64 `json:"lon"`
	Name         string  `json:"name"`
	Parent       string  `json:"parent"`
}

func NewStop(id, code, name, parent string, lat, lon float64, locationType int) Stop {
	return Stop{
		Code:         code,
		ID:           id,
		Lat:          lat,
		LocationType: locationType,
		Lon:          lon,
		Name:         name,
		Parent:       parent,
	}
}

// Station is one station search result.
type Station struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
