package marine

import (
	"errors"
	"math"
	"strconv"
)

var (
	// ErrInvalidCoordinates is returned for a latitude or longitude that is not a
	// number within range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrInvalidStation is returned for a tide station id that is not all digits.
	ErrInvalidStation = errors.New("invalid station")
)

// ParseCoordinates validates lat and lon and returns them rounded to four
// decimals, the precision the NWS points API accepts. Empty values fall back to
// the default location.
func ParseCoordinates(lat, lon string) (string, string, error) {
	if lat == "" {
		lat = DefaultLat
	}
	if lon == "" {
		lon = DefaultLon
	}
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil || math.IsNaN(la) || la < -90 || la > 90 {
		return "", "", ErrInvalidCoordinates
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil || math.IsNaN(lo) || lo < -180 || lo > 180 {
		return "", "", ErrInvalidCoordinates
	}
	return formatDegrees(la), formatDegrees(lo), nil
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e4)/1e4, 'f', -1, 64)
}

// ParseStation validates a NOAA CO-OPS station id. Empty falls back to the
// default station.
func ParseStation(s string) (string, error) {
	if s == "" {
		return DefaultStation, nil
	}
	if len(s) > 10 {
		return "", ErrInvalidStation
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", ErrInvalidStation
		}
	}
	return s, nil
}
