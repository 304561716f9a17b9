package insights

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Recency is clamped to at most one year so a single stale customer cannot
// distort zone averages.
const maxRecencyDays = 365

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format: %s", value)
}

func dateOnly(value time.Time) time.Time {
	if value.IsZero() {
		return value
	}
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, value.Location())
}

// periodKey buckets a date into its calendar month.
func periodKey(value time.Time) string {
	return value.Format("2006-01")
}

// recencyDays counts whole days from the last order to the run reference,
// clamped to [0, maxRecencyDays]. A zero lastOrder means no history and maps
// to 0, as do future-dated orders.
func recencyDays(asOf time.Time, lastOrder time.Time) int {
	if lastOrder.IsZero() {
		return 0
	}
	days := int(dateOnly(asOf).Sub(dateOnly(lastOrder)).Hours() / 24)
	if days < 0 {
		return 0
	}
	if days > maxRecencyDays {
		return maxRecencyDays
	}
	return days
}
