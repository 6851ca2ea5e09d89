package wavelength

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversions(t *testing.T) {
	t.Parallel()

	wl := FromNanometers(1550)
	assert.InDelta(t, 1550e-9, wl.Meters(), 1e-21)
	assert.InDelta(t, 2*math.Pi/1550e-9, wl.K0(), 1e-3)

	tests := []struct {
		name string
		got  Wavelength
	}{
		{"k0", FromK0(wl.K0())},
		{"omega", FromOmega(wl.Omega())},
		{"frequency", FromFrequency(wl.Frequency())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InEpsilon(t, wl.Meters(), tt.got.Meters(), 1e-12)
		})
	}
}

func TestString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "1550.00 nm", FromNanometers(1550).String())
	assert.Equal(t, "800.00 nm", Wavelength(800e-9).String())
}

func TestImpedance(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 376.730313, Eta0, 1e-5)
	assert.InDelta(t, 1.0, Eta0*Y0, 1e-15)
}

func TestValid(t *testing.T) {
	t.Parallel()
	assert.True(t, Wavelength(1e-6).Valid())
	assert.False(t, Wavelength(0).Valid())
	assert.False(t, Wavelength(-1).Valid())
	assert.False(t, Wavelength(math.Inf(1)).Valid())
	assert.False(t, Wavelength(math.NaN()).Valid())
}
