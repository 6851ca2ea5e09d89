package fiber

import (
	"errors"
	"sort"

	"github.com/meenmo/fibermodes/chareq"
	"github.com/meenmo/fibermodes/internal/logging"
	"github.com/meenmo/fibermodes/mode"
	"github.com/meenmo/fibermodes/wavelength"
)

// Unlimited lifts the numax or mmax limit of FindModes.
const Unlimited = -1

// FindModes lists the modes of the given families guided at wl, in
// structural order. numax and mmax bound the azimuthal and radial orders;
// pass Unlimited for no bound.
//
// A mode is guided when its cutoff is below V0. When the cutoff cannot be
// computed for this fiber, the mode is kept if its neff can be solved.
func (f *Fiber) FindModes(families []mode.Family, wl wavelength.Wavelength, numax, mmax int) ([]mode.Mode, error) {
	v0 := f.V0(wl)
	var modes []mode.Mode
	for _, fam := range families {
		for nu := 0; numax < 0 || nu <= numax; nu++ {
			if (fam == mode.TE || fam == mode.TM) && nu > 0 {
				break
			}
			if (fam == mode.HE || fam == mode.EH) && nu == 0 {
				continue
			}
			found := 0
			for m := 1; mmax < 0 || m <= mmax; m++ {
				md := mode.Mode{Family: fam, Nu: nu, M: m}
				ok, err := f.guided(md, wl, v0)
				if err != nil {
					return nil, err
				}
				if !ok {
					break
				}
				modes = append(modes, md)
				found++
			}
			if found == 0 {
				break
			}
		}
	}
	sort.Slice(modes, func(i, j int) bool { return mode.Less(modes[i], modes[j]) })
	f.log.V(logging.DEBUG).Info("modes found", "wavelength", wl.String(), "v0", v0, "count", len(modes))
	return modes, nil
}

func (f *Fiber) guided(md mode.Mode, wl wavelength.Wavelength, v0 float64) (bool, error) {
	co, err := f.Cutoff(md)
	switch {
	case err == nil:
		return co <= v0, nil
	case IsUnsupported(err):
		return false, nil
	case !errors.Is(err, chareq.ErrUnimplemented):
		return false, err
	}

	if _, err := f.Neff(md, wl, 0); err != nil {
		if IsUnsupported(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// FindVModes lists the guided vector modes (HE, EH, TE, TM).
func (f *Fiber) FindVModes(wl wavelength.Wavelength, numax, mmax int) ([]mode.Mode, error) {
	return f.FindModes(mode.VectorFamilies, wl, numax, mmax)
}

// FindLPModes lists the guided LP modes.
func (f *Fiber) FindLPModes(wl wavelength.Wavelength, lmax, mmax int) ([]mode.Mode, error) {
	return f.FindModes([]mode.Family{mode.LP}, wl, lmax, mmax)
}

// SortByCutoff sorts modes by increasing cutoff, in place. Equal cutoffs
// keep the structural order.
func (f *Fiber) SortByCutoff(modes []mode.Mode) error {
	co := make(map[mode.Mode]float64, len(modes))
	for _, md := range modes {
		v, err := f.Cutoff(md)
		if err != nil {
			return err
		}
		co[md] = v
	}
	sort.Slice(modes, func(i, j int) bool {
		a, b := modes[i], modes[j]
		if co[a] != co[b] {
			return co[a] < co[b]
		}
		return mode.Less(a, b)
	})
	return nil
}
