package nookie

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ExpiryError reports an expiry suffix the store doesn't recognize.
type ExpiryError struct {
	Value string
}

func (e *ExpiryError) Error() string {
	return fmt.Sprintf("invalid nookie expiry %q: want a number suffixed with h, m, or d", e.Value)
}

// parseExpiry converts a nookie expiry string into a duration. An empty
// string means no expiry (ok is false). Only h/m/d suffixes are accepted.
func parseExpiry(expiry string) (d time.Duration, ok bool, err error) {
	expiry = strings.TrimSpace(expiry)
	if expiry == "" {
		return 0, false, nil
	}
	unit := expiry[len(expiry)-1:]
	n, convErr := strconv.Atoi(expiry[:len(expiry)-1])
	if convErr != nil {
		return 0, false, &ExpiryError{Value: expiry}
	}
	switch unit {
	case "h":
		return time.Duration(n) * time.Hour, true, nil
	case "m":
		return time.Duration(n) * time.Minute, true, nil
	case "d":
		return time.Duration(n) * 24 * time.Hour, true, nil
	default:
		return 0, false, &ExpiryError{Value: expiry}
	}
}
