package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance_ZeroForSamePoint(t *testing.T) {
	assert.InDelta(t, 0, Distance(55.7558, 37.6173, 55.7558, 37.6173), 1e-9)
}

func TestDistance_KnownPair(t *testing.T) {
	// Moscow -> Saint Petersburg, roughly 634 km.
	d := Distance(55.7558, 37.6173, 59.9343, 30.3351)
	assert.InDelta(t, 634, d, 10)
}

func TestDistance_Symmetric(t *testing.T) {
	a := Distance(51.5074, -0.1278, 40.7128, -74.0060)
	b := Distance(40.7128, -74.0060, 51.5074, -0.1278)
	assert.InDelta(t, a, b, 1e-9)
}

func TestDistance_AcrossAntimeridian(t *testing.T) {
	// Two points 2 degrees of longitude apart straddling 180°,
	// roughly 222 km at the equator. The formula must not take the
	// long way around.
	d := Distance(0, 179, 0, -179)
	assert.InDelta(t, 222, d, 3)
}

func TestDistance_NearPoles(t *testing.T) {
	// Longitude is meaningless at the pole itself; any two points at
	// lat 90 coincide.
	d := Distance(90, 0, 90, 120)
	assert.InDelta(t, 0, d, 1e-6)
}

func TestDistance_NaNPropagates(t *testing.T) {
	assert.True(t, math.IsNaN(Distance(math.NaN(), 0, 0, 0)))
}
