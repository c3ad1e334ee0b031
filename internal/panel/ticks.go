package panel

import (
	"math"
	"strconv"
	"strings"
)

// TickSet returns five evenly spaced values centered on c.
func TickSet(c, r float64) []float64 {
	return []float64{c - r, c - r/2, c, c + r/2, c + r}
}

// TickFormat renders degree tick labels. With DirectionLabels the sign is
// replaced by a hemisphere letter.
type TickFormat struct {
	Decimals               int
	DegreeSymbol           string
	DirectionLabels        bool
	DatelineDirectionLabel bool
}

func DefaultTickFormat() TickFormat {
	return TickFormat{
		Decimals:               1,
		DegreeSymbol:           "",
		DirectionLabels:        false,
		DatelineDirectionLabel: true,
	}
}

func (f TickFormat) FormatLongitude(v float64) string {
	lon := NormalizeLongitude(v)
	if lon == -180 {
		label := strconv.FormatFloat(180, 'f', f.Decimals, 64) + f.DegreeSymbol
		if f.DatelineDirectionLabel {
			label += "W"
		}
		return label
	}
	return f.format(lon, "E", "W")
}

func (f TickFormat) FormatLatitude(v float64) string {
	return f.format(v, "N", "S")
}

func (f TickFormat) format(v float64, positive, negative string) string {
	s := strconv.FormatFloat(v, 'f', f.Decimals, 64)
	neg := strings.HasPrefix(s, "-")
	zero := strings.Trim(s, "-0.") == ""
	if zero {
		return strings.TrimPrefix(s, "-") + f.DegreeSymbol
	}

	if !f.DirectionLabels {
		return s + f.DegreeSymbol
	}

	hemisphere := positive
	if neg {
		hemisphere = negative
	}
	return strings.TrimPrefix(s, "-") + f.DegreeSymbol + hemisphere
}

// NormalizeLongitude wraps v into [-180, 180). Values already in range are
// returned unchanged so they round the same way as latitudes.
func NormalizeLongitude(v float64) float64 {
	if v >= -180 && v < 180 {
		return v
	}
	lon := math.Mod(v+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}
