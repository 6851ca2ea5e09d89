package material

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meenmo/fibermodes/wavelength"
)

func TestFixed(t *testing.T) {
	t.Parallel()
	var m Material = Fixed(1.444)
	assert.Equal(t, 1.444, m.Index(wavelength.FromNanometers(1550)))
	assert.Equal(t, 1.444, m.Index(wavelength.FromNanometers(800)))
	assert.Equal(t, "Fixed(1.444)", Fixed(1.444).String())
}

func TestFunc(t *testing.T) {
	t.Parallel()
	m := Func(func(wl wavelength.Wavelength) float64 { return 1.5 - 1e4*wl.Meters() })
	assert.InDelta(t, 1.4845, m.Index(wavelength.FromNanometers(1550)), 1e-12)
}
