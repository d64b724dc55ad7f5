package http

import (
	"errors"
	"strconv"
	"strings"

	"regbot/internal/entities"
)

var (
	errInvalidBatch = errors.New("batch must be 1 or 2")
	errInvalidLimit = errors.New("limit must be a non-negative integer")
)

// ParseBatch reads the batch query parameter. Empty means no filter.
func ParseBatch(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	b, err := strconv.Atoi(raw)
	if err != nil || !entities.ValidBatch(b) {
		return 0, errInvalidBatch
	}
	return b, nil
}

// ParseLimit reads the limit query parameter. Empty or 0 means no cap.
func ParseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errInvalidLimit
	}
	return n, nil
}

// BroadcastBatch coerces the loosely typed batch field of a broadcast body the
// way a JSON client expects numeric coercion to work: numbers, numeric strings
// ("2", "1.0", "1e0") and true (as 1) are accepted. Anything that does not
// come out as exactly 1 or 2 means everyone.
func BroadcastBatch(v any) int {
	var n float64
	switch b := v.(type) {
	case float64:
		n = b
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(b), 64)
		if err != nil {
			return 0
		}
		n = f
	case bool:
		if b {
			n = 1
		}
	default:
		return 0
	}
	switch n {
	case entities.BatchOne, entities.BatchTwo:
		return int(n)
	}
	return 0
}

// DashboardBatch maps the dashboard selector (all, 1, 2) to a filter value.
func DashboardBatch(raw string) (int, string) {
	if b, err := ParseBatch(raw); err == nil && b != 0 {
		return b, strconv.Itoa(b)
	}
	return 0, "all"
}
