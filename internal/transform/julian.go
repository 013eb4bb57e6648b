package transform

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// JulianDate converts a time.Time (UTC) to Julian Date.
// Uses the standard astronomical algorithm valid for dates after March 1, 4801 BC.
func JulianDate(t time.Time) float64 {
	t = t.UTC()
	y := float64(t.Year())
	m := float64(t.Month())
	d := float64(t.Day())
	h := float64(t.Hour())
	min := float64(t.Minute())
	s := float64(t.Second()) + float64(t.Nanosecond())/1e9

	// Jan/Feb count as months 13/14 of the previous year.
	if m <= 2 {
		y -= 1
		m += 12
	}

	A := math.Floor(y / 100)
	B := 2 - A + math.Floor(A/4)

	jd := math.Floor(365.25*(y+4716)) + math.Floor(30.6001*(m+1)) + d + B - 1524.5
	jd += (h + min/60.0 + s/3600.0) / 24.0

	return jd
}

// ParseObservationTime parses one observation time. Plain numbers are
// returned as-is; RFC 3339 timestamps are converted to Julian Date.
func ParseObservationTime(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty observation time")
	}

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("observation time %q is not finite", s)
		}
		return v, nil
	}

	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0, fmt.Errorf("observation time %q is neither a number nor RFC 3339", s)
	}
	return JulianDate(ts), nil
}

// ParseObservationTimes parses a comma-separated list of observation times.
func ParseObservationTimes(list string) ([]float64, error) {
	if strings.TrimSpace(list) == "" {
		return []float64{}, nil
	}

	parts := strings.Split(list, ",")
	times := make([]float64, 0, len(parts))
	for i, p := range parts {
		v, err := ParseObservationTime(p)
		if err != nil {
			return nil, fmt.Errorf("time %d: %w", i, err)
		}
		times = append(times, v)
	}
	return times, nil
}
