package models

import "time"

// CurrentTime is the server clock in the zone boards are computed in.
type CurrentTime struct {
	Time         int64  `json:"time"`
	ReadableTime string `json:"readableTime"`
	Timezone     string `json:"timezone"`
}

func NewCurrentTime(t time.Time) CurrentTime {
	return CurrentTime{
		Time:         t.UnixMilli(),
		ReadableTime: t.Format(time.RFC3339),
		Timezone:     t.Location().String(),
	}
}
