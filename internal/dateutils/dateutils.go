// Package dateutils provides the date parsing used by the transaction
// parser. Bank exports carry dates in a handful of locale formats; parsing
// tries each supported layout in a fixed order and the first one producing a
// valid calendar date wins.
package dateutils

import (
	"fmt"
	"strings"
	"time"
)

// Supported layouts, in resolution order. DD/MM/YYYY is tried before
// MM/DD/YYYY, so an ambiguous date like 01/02/2024 resolves as 1 February.
const (
	DateLayoutEuropean = "02/01/2006"
	DateLayoutISO      = "2006-01-02"
	DateLayoutUS       = "01/02/2006"
)

// RowFormats is the ordered list of layouts tried when parsing a data row.
var RowFormats = []string{
	DateLayoutEuropean,
	DateLayoutISO,
	DateLayoutUS,
}

// ParseDate attempts to parse a date string using the supported layouts.
// Returns the parsed time and the layout that matched.
func ParseDate(dateStr string) (time.Time, string, error) {
	dateStr = strings.TrimSpace(dateStr)

	for _, format := range RowFormats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, format, nil
		}
	}

	return time.Time{}, "", fmt.Errorf("unable to parse date: %s", dateStr)
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD).
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}
