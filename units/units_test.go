package units_test

import (
	"math"
	"testing"

	"github.com/gatcore/gat/units"
	"github.com/stretchr/testify/require"
)

func TestDegreesRadiansRoundTrip(t *testing.T) {
	d := units.Degrees(90)
	r := d.ToRadians()
	require.InDelta(t, math.Pi/2, float64(r), 1e-12)
	require.InDelta(t, 90.0, float64(r.ToDegrees()), 1e-9)
}

func TestPerUnitConversion(t *testing.T) {
	p := units.Megawatts(150)
	pu := p.PerUnit(100)
	require.InDelta(t, 1.5, float64(pu), 1e-12)
	require.InDelta(t, 150.0, float64(pu.Megawatts(100)), 1e-9)
}

func TestPerUnitClampAndAbs(t *testing.T) {
	p := units.PerUnit(-1.5)
	require.Equal(t, units.PerUnit(1.5), p.Abs())
	require.Equal(t, units.PerUnit(0.95), p.Clamp(0.95, 1.05))
}
