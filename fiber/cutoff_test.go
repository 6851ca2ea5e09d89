package fiber

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/fibermodes/chareq"
	"github.com/meenmo/fibermodes/mode"
	"github.com/meenmo/fibermodes/rootfind"
)

func mustMode(s string) mode.Mode {
	m, err := mode.Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

func assertCutoffs(t *testing.T, f *Fiber, want map[string]float64, tol float64) {
	t.Helper()
	for s, v := range want {
		got, err := f.Cutoff(mustMode(s))
		if assert.NoError(t, err, s) {
			assert.InDelta(t, v, got, tol, s)
		}
	}
}

func TestCutoffFundamental(t *testing.T) {
	t.Parallel()

	for _, f := range []*Fiber{
		smf(t),
		mustFiber(t, []float64{4e-6, 6e-6}, []float64{1.47, 1.43, 1.44}),
		mustFiber(t, []float64{4e-6, 6e-6, 8e-6}, []float64{1.47, 1.45, 1.46, 1.44}),
	} {
		for _, s := range []string{"HE(1,1)", "LP(0,1)"} {
			co, err := f.Cutoff(mustMode(s))
			require.NoError(t, err)
			assert.Zero(t, co)
		}
	}
}

func TestCutoffStepIndexVector(t *testing.T) {
	t.Parallel()

	f := mustFiber(t, []float64{10e-6}, []float64{1.474, 1.444})
	assertCutoffs(t, f, map[string]float64{
		"TE(0,1)": 2.4048,
		"HE(2,1)": 2.4221,
		"TM(0,1)": 2.4048,
		"EH(1,1)": 3.8317,
		"HE(3,1)": 3.8533,
		"HE(1,2)": 3.8317,
		"EH(2,1)": 5.1356,
		"HE(4,1)": 5.1597,
		"TE(0,2)": 5.5201,
		"HE(2,2)": 5.5277,
		"TM(0,2)": 5.5201,
	}, 5e-5)
}

func TestCutoffStepIndexLP(t *testing.T) {
	t.Parallel()

	f := mustFiber(t, []float64{1e-5 / 3}, []float64{5, 4})
	assertCutoffs(t, f, map[string]float64{
		"LP(0,1)": 0,
		"LP(0,2)": 3.8317,
		"LP(0,3)": 7.0156,
		"LP(1,1)": 2.4048,
		"LP(1,2)": 5.5201,
		"LP(2,1)": 3.8317,
	}, 5e-5)
}

func TestCutoffStepIndexHighContrast(t *testing.T) {
	t.Parallel()

	// n = (1.6, 1.6, 1.4) collapses to a two-layer fiber of radius 6 µm
	f := mustFiber(t, []float64{5e-6, 6e-6}, []float64{1.6, 1.6, 1.4})
	assertCutoffs(t, f, map[string]float64{
		"TE(0,1)": 2.4048,
		"HE(2,1)": 2.522748641920963,
		"TM(0,1)": 2.4048,
		"EH(1,1)": 3.8317,
		"HE(3,1)": 3.9762622998101453,
		"HE(1,2)": 3.8317,
	}, 1e-4)
}

func TestCutoffBures(t *testing.T) {
	t.Parallel()

	// Δ = 0.3 is far from weak guidance: HE and EH split clearly.
	delta := 0.3
	n2 := 1.444
	n1 := math.Sqrt(n2 * n2 / (1 - 2*delta))
	na := math.Sqrt(n1*n1 - n2*n2)
	r := 5 / (na * wl1550.K0())
	f := mustFiber(t, []float64{r}, []float64{n1, n2})

	assertCutoffs(t, f, map[string]float64{
		"HE(2,1)": 2.8526,
		"EH(2,1)": 5.1356,
		"HE(3,1)": 4.3423,
		"EH(2,2)": 8.4172,
		"TE(0,2)": 5.5201,
		"EH(1,2)": 7.0156,
	}, 1e-4)
}

func TestCutoffThreeLayer(t *testing.T) {
	t.Parallel()

	r := []float64{4e-6, 6e-6}
	tests := []struct {
		name    string
		indices []float64
		want    map[string]float64
	}{
		{
			name:    "depressed ring",
			indices: []float64{1.47, 1.43, 1.44},
			want: map[string]float64{
				"LP(1,1)": 4.034844259728652,
				"LP(2,1)": 6.1486114063146005,
				"LP(0,2)": 6.568180843774973,
				"TE(0,1)": 4.034844259728651,
				"HE(2,1)": 4.071976253449693,
				"TM(0,1)": 4.058192997221014,
				"EH(1,1)": 6.158255614959294,
				"HE(3,1)": 6.189815896708511,
				"HE(1,2)": 6.589429513136826,
				"TE(0,2)": 8.922361377477312,
			},
		},
		{
			name:    "raised ring",
			indices: []float64{1.47, 1.45, 1.44},
			want: map[string]float64{
				"LP(1,1)": 3.1226096356321893,
				"LP(2,1)": 5.096112984974791,
				"LP(0,2)": 4.676313597977374,
				"TM(0,1)": 3.111217543593232,
				"TE(0,1)": 3.122609635632189,
				"HE(2,1)": 3.1400200936070846,
				"EH(1,1)": 4.669304720761619,
				"HE(1,2)": 5.088131872468638,
			},
		},
		{
			name:    "depressed core",
			indices: []float64{1.43, 1.47, 1.44},
			want: map[string]float64{
				"LP(1,1)": 3.010347467577181,
				"TE(0,1)": 3.0103474675771804,
				"TM(0,1)": 3.0732744029480012,
				"HE(2,1)": 3.0406851062929734,
				"EH(1,1)": 4.43599929326006,
			},
		},
		{
			name:    "raised core in ring",
			indices: []float64{1.45, 1.47, 1.44},
			want: map[string]float64{
				"LP(1,1)": 2.702968459636167,
				"LP(0,2)": 5.640393617621346,
				"TE(0,1)": 2.7029684596361676,
				"HE(2,1)": 2.7228694802366005,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := mustFiber(t, r, tt.indices)
			assertCutoffs(t, f, tt.want, 1e-8)
		})
	}
}

func TestCutoffIncreasesWithRadialOrder(t *testing.T) {
	t.Parallel()

	f := mustFiber(t, []float64{4e-6, 6e-6}, []float64{1.47, 1.43, 1.44})
	for _, fam := range mode.Families {
		nu := 1
		if fam == mode.TE || fam == mode.TM {
			nu = 0
		}
		prev := -1.0
		for m := 1; m <= 3; m++ {
			co, err := f.Cutoff(mode.Mode{Family: fam, Nu: nu, M: m})
			require.NoError(t, err)
			assert.Greater(t, co, prev, "%v(%d,%d)", fam, nu, m)
			prev = co
		}
	}
}

func TestCutoffUnimplementedForFourLayers(t *testing.T) {
	f := mustFiber(t, []float64{4e-6, 6e-6, 8e-6}, []float64{1.47, 1.45, 1.46, 1.44})

	_, err := f.Cutoff(mustMode("TE(0,1)"))
	require.Error(t, err)
	assert.ErrorIs(t, err, chareq.ErrUnimplemented)
	assert.False(t, IsUnsupported(err))

	var se *SolveError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "cutoff", se.Op)
	assert.Equal(t, mustMode("TE(0,1)"), se.Mode)
}

func TestCutoffInvalidMode(t *testing.T) {
	f := smf(t)
	_, err := f.Cutoff(mode.Mode{Family: mode.TE, Nu: 1, M: 1})
	assert.ErrorIs(t, err, mode.ErrInvalidMode)
}

func TestCutoffCached(t *testing.T) {
	trace := &rootfind.Trace{}
	f := mustFiber(t, []float64{4e-6, 6e-6}, []float64{1.47, 1.43, 1.44}, WithTrace(trace))

	first, err := f.Cutoff(mustMode("HE(2,1)"))
	require.NoError(t, err)
	n := len(trace.Events)
	require.NotZero(t, n)

	second, err := f.Cutoff(mustMode("HE(2,1)"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, trace.Events, n)

	f.Reset()
	third, err := f.Cutoff(mustMode("HE(2,1)"))
	require.NoError(t, err)
	assert.Equal(t, first, third)
	assert.Greater(t, len(trace.Events), n)
}

func TestCutoffWavelength(t *testing.T) {
	t.Parallel()

	f := smf(t)
	wl, err := f.CutoffWavelength(mustMode("LP(1,1)"))
	require.NoError(t, err)
	assert.InDelta(t, 2.404825557695773, f.V0(wl), 1e-9)
	assert.InDelta(t, 1.3415e-6, wl.Meters(), 1e-9)

	wl, err = f.CutoffWavelength(mode.Fundamental)
	require.NoError(t, err)
	assert.True(t, math.IsInf(wl.Meters(), 1))
}
