package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

// H[H]:MM:SS, hour unbounded above 23 so trips can run past midnight.
var offsetPattern = regexp.MustCompile(`^(\d{1,2}):([0-5]\d):([0-5]\d)$`)

// TimeFormatError is returned for stop-time offsets that are not H[H]:MM:SS.
type TimeFormatError struct {
	Value string
}

func (e *TimeFormatError) Error() string {
	return fmt.Sprintf("invalid stop time %q: expected H[H]:MM:SS", e.Value)
}

// ParseOffset parses a GTFS stop time into a duration since the start of the service day.
func ParseOffset(text string) (time.Duration, error) {
	caps := offsetPattern.FindStringSubmatch(strings.TrimSpace(text))
	if caps == nil {
		return 0, &TimeFormatError{Value: text}
	}

	// The pattern guarantees digits, so Atoi cannot fail.
	hours, _ := strconv.Atoi(caps[1])
	minutes, _ := strconv.Atoi(caps[2])
	seconds, _ := strconv.Atoi(caps[3])

	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second, nil
}

// FormatOffset renders an offset the way ParseOffset reads it.
func FormatOffset(offset time.Duration) string {
	total := int64(offset / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", total/3600, (total/60)%60, total%60)
}

// Adjust maps an offset onto the calendar date of reference.
//
// dayShift is the number of whole days the offset rolls past the service day;
// wallClock is midnight of the reference date plus the offset remainder,
// expressed as wall-clock time in the reference location. wallClock always
// falls on the reference date: 25:10 at 2024-01-08 yields 2024-01-08 01:10
// with a dayShift of 1.
func Adjust(offset time.Duration, reference time.Time) (wallClock time.Time, dayShift int) {
	dayShift = int(offset / day)
	rem := offset % day
	if rem < 0 {
		// Negative offsets never come out of ParseOffset; floor them anyway.
		dayShift--
		rem += day
	}

	y, m, d := reference.Date()
	hours := int(rem / time.Hour)
	minutes := int(rem % time.Hour / time.Minute)
	seconds := int(rem % time.Minute / time.Second)
	wallClock = time.Date(y, m, d, hours, minutes, seconds, int(rem%time.Second), reference.Location())

	return wallClock, dayShift
}

// ServiceDate returns the calendar date whose service owns a stop-time that
// rolled dayShift days past the reference date.
func ServiceDate(reference time.Time, dayShift int) time.Time {
	y, m, d := reference.Date()
	return time.Date(y, m, d-dayShift, 0, 0, 0, 0, reference.Location())
}
