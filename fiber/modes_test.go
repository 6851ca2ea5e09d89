package fiber

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/fibermodes/chareq"
	"github.com/meenmo/fibermodes/material"
	"github.com/meenmo/fibermodes/mode"
	"github.com/meenmo/fibermodes/wavelength"
)

func modeList(ss ...string) []mode.Mode {
	out := make([]mode.Mode, len(ss))
	for i, s := range ss {
		out[i] = mustMode(s)
	}
	return out
}

func TestFindModesSMF(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		wl   wavelength.Wavelength
		lp   []mode.Mode
		vec  []mode.Mode
	}{
		{
			name: "single mode",
			wl:   wl1550,
			lp:   modeList("LP(0,1)"),
			vec:  modeList("HE(1,1)"),
		},
		{
			name: "few mode",
			wl:   wl800,
			lp:   modeList("LP(0,1)", "LP(0,2)", "LP(1,1)", "LP(2,1)"),
			vec: modeList("HE(1,1)", "HE(1,2)", "HE(2,1)", "HE(3,1)",
				"EH(1,1)", "TE(0,1)", "TM(0,1)"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := smf(t)

			lp, err := f.FindLPModes(tt.wl, Unlimited, Unlimited)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.lp, lp); diff != "" {
				t.Errorf("LP modes mismatch (-want +got):\n%s", diff)
			}

			vec, err := f.FindVModes(tt.wl, Unlimited, Unlimited)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.vec, vec); diff != "" {
				t.Errorf("vector modes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFindModesBuresLP(t *testing.T) {
	t.Parallel()

	n1, n2 := 1.462420, 1.457420
	rho := 8.335e-6
	wl := wavelength.FromNanometers(632.8)
	f := mustFiber(t, []float64{rho}, []float64{n1, n2})
	require.InDelta(t, 10, f.V0(wl), 1e-3)

	// u = k0 rho sqrt(n1² - neff²)
	want := map[string]float64{
		"LP(0,1)": 2.1845,
		"LP(0,2)": 4.9966,
		"LP(0,3)": 7.7642,
		"LP(1,1)": 3.4770,
		"LP(1,2)": 6.3310,
		"LP(1,3)": 9.0463,
		"LP(2,1)": 4.6544,
		"LP(2,2)": 7.5667,
		"LP(3,1)": 5.7740,
		"LP(3,2)": 8.7290,
		"LP(4,1)": 6.8560,
		"LP(4,2)": 9.8153,
		"LP(5,1)": 7.9096,
		"LP(6,1)": 8.9390,
		"LP(7,1)": 9.9451,
	}

	modes, err := f.FindLPModes(wl, Unlimited, Unlimited)
	require.NoError(t, err)
	require.Len(t, modes, len(want))
	k0r := wl.K0() * rho
	for _, m := range modes {
		u, ok := want[m.String()]
		require.True(t, ok, "unexpected mode %v", m)
		neff, err := f.Neff(m, wl, 0)
		require.NoError(t, err, m.String())
		assert.InDelta(t, u, k0r*math.Sqrt(n1*n1-neff*neff), 2e-4, m.String())
	}
}

func TestFindModesLimits(t *testing.T) {
	t.Parallel()

	f := mustFiber(t, []float64{8.335e-6}, []float64{1.462420, 1.457420})
	wl := wavelength.FromNanometers(632.8)

	got, err := f.FindLPModes(wl, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, modeList("LP(0,1)", "LP(1,1)", "LP(2,1)"), got)

	got, err = f.FindLPModes(wl, 0, Unlimited)
	require.NoError(t, err)
	assert.Equal(t, modeList("LP(0,1)", "LP(0,2)", "LP(0,3)"), got)

	got, err = f.FindModes([]mode.Family{mode.TE, mode.TM}, wl, Unlimited, 2)
	require.NoError(t, err)
	assert.Equal(t, modeList("TE(0,1)", "TE(0,2)", "TM(0,1)", "TM(0,2)"), got)
}

func TestFindModesBuresVector(t *testing.T) {
	t.Parallel()

	delta := 0.3
	n2 := 1.444
	n1 := math.Sqrt(n2 * n2 / (1 - 2*delta))
	na := math.Sqrt(n1*n1 - n2*n2)
	f := mustFiber(t, []float64{5 / (na * wl1550.K0())}, []float64{n1, n2})

	got, err := f.FindVModes(wl1550, Unlimited, Unlimited)
	require.NoError(t, err)
	want := modeList("HE(1,1)", "HE(1,2)", "HE(2,1)", "HE(3,1)", "EH(1,1)", "TE(0,1)", "TM(0,1)")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("modes mismatch (-want +got):\n%s", diff)
	}
}

func TestFindModesThreeLayer(t *testing.T) {
	t.Parallel()

	r := []float64{4e-6, 10e-6}
	tests := []struct {
		name    string
		indices []float64
		want    []mode.Mode
	}{
		{"annular core", []float64{1.4444, 1.4489, 1.4444},
			modeList("LP(0,1)", "LP(1,1)", "LP(2,1)")},
		{"raised pedestal", []float64{1.4489, 1.4474, 1.4444},
			modeList("LP(0,1)", "LP(0,2)", "LP(1,1)")},
		{"depressed center", []float64{1.4474, 1.4489, 1.4444},
			modeList("LP(0,1)", "LP(0,2)", "LP(1,1)", "LP(2,1)")},
		{"high index cladding", []float64{1.4444, 1.4489, 1.4474},
			modeList("LP(0,1)", "LP(1,1)")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := mustFiber(t, r, tt.indices)
			got, err := f.FindLPModes(wl1550, Unlimited, Unlimited)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindModesFourLayersFallsBackOnNeff(t *testing.T) {
	t.Parallel()

	ring := material.Func(func(wavelength.Wavelength) float64 { return 1.4489 })
	f, err := New([]Layer{
		{4e-6, material.Fixed(1.4444)},
		{7e-6, ring},
		{10e-6, ring},
		{math.Inf(1), material.Fixed(1.4444)},
	}, WithConfig(withNeffDelta(1e-4)))
	require.NoError(t, err)

	got, err := f.FindLPModes(wl1550, Unlimited, Unlimited)
	require.NoError(t, err)
	assert.Equal(t, modeList("LP(0,1)", "LP(1,1)", "LP(2,1)"), got)
}

func TestFindModesFourLayersVector(t *testing.T) {
	t.Parallel()

	f := mustFiber(t, []float64{3e-6, 5e-6, 8e-6}, []float64{1.45, 1.445, 1.452, 1.444})
	got, err := f.FindModes(mode.Families, wl1550, Unlimited, Unlimited)
	require.NoError(t, err)
	want := modeList(
		"LP(0,1)", "LP(0,2)", "LP(1,1)", "LP(2,1)",
		"HE(1,1)", "HE(1,2)", "HE(2,1)", "HE(3,1)",
		"EH(1,1)", "TE(0,1)", "TM(0,1)",
	)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("modes mismatch (-want +got):\n%s", diff)
	}

	vec, err := f.FindVModes(wl1550, Unlimited, Unlimited)
	require.NoError(t, err)
	assert.Equal(t, want[4:], vec)
}

func TestSortByCutoff(t *testing.T) {
	t.Parallel()

	f := mustFiber(t, []float64{10e-6}, []float64{1.474, 1.444})
	modes := modeList("HE(3,1)", "EH(1,1)", "HE(1,2)", "TM(0,1)", "HE(2,1)", "TE(0,1)")
	require.NoError(t, f.SortByCutoff(modes))
	assert.Equal(t, modeList("TE(0,1)", "TM(0,1)", "HE(2,1)", "HE(1,2)", "EH(1,1)", "HE(3,1)"), modes)
}

func TestSortByCutoffFails(t *testing.T) {
	f := mustFiber(t, []float64{4e-6, 6e-6, 8e-6}, []float64{1.47, 1.45, 1.46, 1.44})
	err := f.SortByCutoff(modeList("HE(1,1)", "TE(0,1)"))
	assert.ErrorIs(t, err, chareq.ErrUnimplemented)
}
