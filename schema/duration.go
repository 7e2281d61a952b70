package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Never disables periodic updates. It renders as "never".
const Never = time.Duration(math.MaxInt64)

// unit suffixes Go's time.ParseDuration does not know.
var extraUnits = []struct {
	suffix string
	unit   time.Duration
}{
	{"min", time.Minute},
	{"d", 24 * time.Hour},
}

// ParseDuration coerces a raw time period. Strings need a unit ("16ms",
// "1.5s", "2min", "1h30m") or must be "never"; bare numbers are rejected.
func ParseDuration(raw any) (time.Duration, error) {
	switch v := raw.(type) {
	case time.Duration:
		if v < 0 {
			return 0, fmt.Errorf("negative time period %s not allowed", v)
		}
		return v, nil
	case string:
		return parseDurationString(v)
	case json.Number, int, int64, float64:
		n := fmt.Sprint(v)
		return 0, fmt.Errorf("Don't know what '%s' means as it has no time *unit*! Did you mean '%ss'?", n, n)
	default:
		return 0, fmt.Errorf("expected time period, got %T", raw)
	}
}

func parseDurationString(s string) (time.Duration, error) {
	s = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	if s == "" {
		return 0, fmt.Errorf("time period cannot be empty")
	}
	if s == "never" {
		return Never, nil
	}
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("negative time period %q not allowed", s)
	}

	for _, u := range extraUnits {
		num, ok := strings.CutSuffix(s, u.suffix)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			break
		}
		// NaN fails every comparison, so test for the valid range
		v := f * float64(u.unit)
		if !(v >= 0 && v < float64(math.MaxInt64)) {
			return 0, fmt.Errorf("invalid time period %q", s)
		}
		return time.Duration(v), nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		if f, numErr := strconv.ParseFloat(s, 64); numErr == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return 0, fmt.Errorf("Don't know what '%s' means as it has no time *unit*! Did you mean '%ss'?", s, s)
		}
		return 0, fmt.Errorf("invalid time period %q", s)
	}
	return d, nil
}

// FormatDuration renders d in a form ParseDuration accepts.
func FormatDuration(d time.Duration) string {
	if d == Never {
		return "never"
	}
	if d%time.Millisecond == 0 {
		return strconv.FormatInt(d.Milliseconds(), 10) + "ms"
	}
	return d.String()
}
