package panel

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTickSet(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []float64{-1, -0.5, 0, 0.5, 1}, TickSet(0, 1))
	assert.Equal(t, []float64{7, 8.5, 10, 11.5, 13}, TickSet(10, 3))

	ticks := TickSet(portoAlegreLat, 0.005)
	assert.Len(t, ticks, 5)
	assert.Equal(t, portoAlegreLat, ticks[2])
}

func TestFormatSigned(t *testing.T) {
	t.Parallel()

	f := DefaultTickFormat()

	assert.Equal(t, "-51.2", f.FormatLongitude(-51.16407841641491))
	assert.Equal(t, "-30.1", f.FormatLatitude(-30.066356130832947))
	assert.Equal(t, "0.5", f.FormatLatitude(0.5))
	assert.Equal(t, "0.0", f.FormatLatitude(-0.04))
	assert.Equal(t, "0.0", f.FormatLongitude(0))
}

func TestFormatDirectionLabels(t *testing.T) {
	t.Parallel()

	f := DefaultTickFormat()
	f.DirectionLabels = true

	assert.Equal(t, "51.2W", f.FormatLongitude(-51.16407841641491))
	assert.Equal(t, "0.5E", f.FormatLongitude(0.5))
	assert.Equal(t, "30.1S", f.FormatLatitude(-30.066356130832947))
	assert.Equal(t, "12.0N", f.FormatLatitude(12))
	assert.Equal(t, "0.0", f.FormatLatitude(0.01))
	assert.Equal(t, "0.0", f.FormatLongitude(-0.01))
}

func TestFormatAntimeridian(t *testing.T) {
	t.Parallel()

	f := DefaultTickFormat()
	assert.Equal(t, "180.0W", f.FormatLongitude(180))
	assert.Equal(t, "180.0W", f.FormatLongitude(-180))
	assert.Equal(t, "-179.0", f.FormatLongitude(181))
	assert.Equal(t, "179.5", f.FormatLongitude(-180.5))

	f.DatelineDirectionLabel = false
	assert.Equal(t, "180.0", f.FormatLongitude(180))

	f.DirectionLabels = true
	f.DatelineDirectionLabel = true
	assert.Equal(t, "179.0W", f.FormatLongitude(181))
	assert.Equal(t, "180.0W", f.FormatLongitude(180))
}

func TestFormatLongitudeRoundsLikeLatitude(t *testing.T) {
	t.Parallel()

	f := DefaultTickFormat()
	for _, v := range []float64{58.55, -32.95, 0.05, -0.05, 12.25, -179.95, 179.95, 101.45} {
		assert.Equal(t, f.FormatLatitude(v), f.FormatLongitude(v), "%v", v)
		assert.Equal(t, strconv.FormatFloat(v, 'f', 1, 64), f.FormatLongitude(v), "%v", v)
	}
	assert.Equal(t, "58.5", f.FormatLongitude(58.55))
	assert.Equal(t, "-33.0", f.FormatLongitude(-32.95))
}

func TestFormatDegreeSymbol(t *testing.T) {
	t.Parallel()

	f := TickFormat{Decimals: 0, DegreeSymbol: "°"}
	assert.Equal(t, "-51°", f.FormatLongitude(-51.16))
	assert.Equal(t, "0°", f.FormatLatitude(0.2))
}

func TestNormalizeLongitude(t *testing.T) {
	t.Parallel()

	assert.Equal(t, -180.0, NormalizeLongitude(180))
	assert.Equal(t, -180.0, NormalizeLongitude(-180))
	assert.Equal(t, 10.0, NormalizeLongitude(370))
	assert.Equal(t, -10.0, NormalizeLongitude(-370))
	assert.Equal(t, 0.0, NormalizeLongitude(0))
	assert.Equal(t, 58.55, NormalizeLongitude(58.55))
	assert.Equal(t, -32.95, NormalizeLongitude(-32.95))
}
