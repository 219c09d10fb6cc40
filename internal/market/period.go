package market

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var periodPattern = regexp.MustCompile(`^(\d{1,4})(d|wk|mo|y)$`)

// earliestHistory stands in for "max"; the chart endpoint rejects a zero start.
var earliestHistory = time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC)

// PeriodStart resolves a lookback period such as "5d", "3mo", "1y", "ytd" or
// "max" to the start of the window ending at now.
func PeriodStart(period string, now time.Time) (time.Time, error) {
	p := strings.ToLower(strings.TrimSpace(period))
	switch p {
	case "ytd":
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), nil
	case "max":
		return earliestHistory, nil
	}

	m := periodPattern.FindStringSubmatch(p)
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}
	n, _ := strconv.Atoi(m[1])
	if n < 1 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}

	switch m[2] {
	case "d":
		return now.AddDate(0, 0, -n), nil
	case "wk":
		return now.AddDate(0, 0, -7*n), nil
	case "mo":
		return now.AddDate(0, -n, 0), nil
	default:
		return now.AddDate(-n, 0, 0), nil
	}
}
