package cart

import (
	"strings"
	"time"
)

// ISODate is the storage layout for stay dates.
const ISODate = "2006-01-02"

// DisplayDate is the default layout used by FormatDate.
const DisplayDate = "02/01/2006"

// acceptedLayouts is tried in order; the first match wins.
var acceptedLayouts = []string{ISODate, "02/01/2006", "02-01-2006"}

func parseAccepted(value string) (time.Time, bool) {
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeDate converts any accepted layout to ISO. Input that matches no
// layout is returned unchanged: the booking form is permissive and the value
// is still stored, it only prices as a single night.
func NormalizeDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if t, ok := parseAccepted(value); ok {
		return t.Format(ISODate)
	}
	return value
}

// FormatDate renders a stored date with layout (DisplayDate when empty).
// Unparsable values are returned as-is.
func FormatDate(value, layout string) string {
	if value == "" {
		return ""
	}
	if layout == "" {
		layout = DisplayDate
	}
	if t, ok := parseAccepted(value); ok {
		return t.Format(layout)
	}
	return value
}

// Nights returns the number of nights between two ISO dates, floored at 1.
// Same-day, inverted or unparsable ranges all count as one night.
func Nights(checkIn, checkOut string) int {
	in, err := time.Parse(ISODate, checkIn)
	if err != nil {
		return 1
	}
	out, err := time.Parse(ISODate, checkOut)
	if err != nil {
		return 1
	}
	// Unix seconds cover the whole year range of the ISO layout, Duration does not.
	n := int((out.Unix() - in.Unix()) / 86400)
	if n < 1 {
		return 1
	}
	return n
}
