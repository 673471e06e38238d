package models

// ReferencesModel carries the objects an entry or list refers to by ID.
type ReferencesModel struct {
	Stops []Stop          `json:"stops"`
	Trips []TripReference `json:"trips"`
}

// NewEmptyReferences creates a new empty References model with initialized empty slices
func NewEmptyReferences() ReferencesModel {
	return ReferencesModel{
		Stops: []Stop{},
		Trips: []TripReference{},
	}
}

// TripReference describes a trip appearing on a board.
type TripReference struct {
	ID        string `json:"id"`
	ShortName string `json:"shortName"`
	Headsign  string `json:"headsign"`
}
