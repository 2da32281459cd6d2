package backend

import (
	"fmt"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	time.RFC1123Z,
	"Mon, 2 Jan 2006 15:04:05 -0700 (MST)",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 -0700",
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 MST",
	time.RFC822Z,
	time.RFC822,
}

// ParseDate parses the date formats found in mail Date headers and JSON
// payloads. A trailing "(TZ)" comment is stripped before the last attempts.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	noTZParen := value
	if openParen := strings.LastIndex(noTZParen, " ("); openParen != -1 {
		if closeParen := strings.LastIndex(noTZParen, ")"); closeParen > openParen {
			noTZParen = noTZParen[:openParen] + noTZParen[closeParen+1:]
		}
	}
	noTZParen = strings.TrimSpace(noTZParen)
	if noTZParen != value {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, noTZParen); err == nil {
				return t, nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", value)
}
