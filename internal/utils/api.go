package utils

import (
	"fmt"
	"strconv"
	"time"
)

// MaxBoardLimit caps the number of entries a client may ask for.
const MaxBoardLimit = 500

var localTimeLayouts = []string{"2006-01-02T15:04", "2006-01-02T15:04:05"}

// ParseReferenceTime reads the board reference instant from a query value.
// It accepts epoch milliseconds, a local "2006-01-02T15:04[:05]" in loc, or
// RFC3339. An empty value means now. The result is expressed in loc.
func ParseReferenceTime(value string, loc *time.Location, now time.Time) (time.Time, map[string][]string) {
	if value == "" {
		return now.In(loc), nil
	}

	if millis, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.UnixMilli(millis).In(loc), nil
	}

	for _, layout := range localTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(loc), nil
	}

	return time.Time{}, invalidField("time")
}

// ParseLimit reads a non-negative entry limit. An empty value yields defaultLimit.
// Zero means unbounded.
func ParseLimit(value string, defaultLimit int) (int, map[string][]string) {
	if value == "" {
		return defaultLimit, nil
	}

	limit, err := strconv.Atoi(value)
	if err != nil || limit < 0 || limit > MaxBoardLimit {
		return 0, invalidField("limit")
	}
	return limit, nil
}

func invalidField(key string) map[string][]string {
	return map[string][]string{
		key: {fmt.Sprintf("Invalid field value for field %q.", key)},
	}
}
