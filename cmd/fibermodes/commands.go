package main

import (
	"context"
	"errors"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/meenmo/fibermodes/config"
	"github.com/meenmo/fibermodes/fiber"
	"github.com/meenmo/fibermodes/internal/logging"
	"github.com/meenmo/fibermodes/mode"
	"github.com/meenmo/fibermodes/wavelength"
)

func (a *app) cutoffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cutoff MODE...",
		Short: "Cutoff V0 and wavelength of modes",
		Example: `  fibermodes cutoff -r 4.5 -n 1.448918,1.444418 'LP(1,1)' 'HE(2,1)'
  fibermodes cutoff --fiber ring.yaml 'TE(0,1)' 'TE(0,2)'`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			modes, err := parseModes(args)
			if err != nil {
				return err
			}
			spec, err := a.fiberSpec()
			if err != nil {
				return err
			}
			f, err := a.newFiber(spec)
			if err != nil {
				return err
			}

			out := make([]CutoffOutput, len(modes))
			for i, md := range modes {
				out[i].Mode = md
				v0, err := f.Cutoff(md)
				if err != nil {
					out[i].Error = err.Error()
					continue
				}
				out[i].V0 = a.value(v0)
				wl, err := f.CutoffWavelength(md)
				if err != nil {
					out[i].Error = err.Error()
					continue
				}
				out[i].WavelengthNM = a.value(wl.Meters() * 1e9)
			}
			return writeJSON(a.stdout, out)
		},
	}
}

func (a *app) neffCmd() *cobra.Command {
	var (
		wls        []float64
		dispersion bool
	)
	cmd := &cobra.Command{
		Use:   "neff [MODE...]",
		Short: "Effective index of modes",
		Long: `neff solves the effective index of the given modes at each wavelength.
Without modes, every guided mode is solved.`,
		Example: `  fibermodes neff -r 4.5 -n 1.448918,1.444418 -w 1310,1550 'HE(1,1)'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			modes, err := parseModes(args)
			if err != nil {
				return err
			}
			spec, err := a.fiberSpec()
			if err != nil {
				return err
			}
			f, err := a.newFiber(spec)
			if err != nil {
				return err
			}

			out := make([]WavelengthOutput, 0, len(wls))
			for _, nm := range wls {
				wl, err := nanometers(nm)
				if err != nil {
					return err
				}
				ms := modes
				if len(ms) == 0 {
					if ms, err = f.FindModes(mode.Families, wl, fiber.Unlimited, fiber.Unlimited); err != nil {
						return err
					}
				}
				res := WavelengthOutput{WavelengthNM: nm, V0: f.V0(wl)}
				for _, md := range ms {
					res.Modes = append(res.Modes, a.solve(f, md, wl, dispersion))
				}
				out = append(out, res)
			}
			return writeJSON(a.stdout, out)
		},
	}
	wavelengthFlag(cmd.Flags(), &wls)
	cmd.Flags().BoolVar(&dispersion, "dispersion", false, "also compute group index, dispersion and slope")
	return cmd
}

func (a *app) modesCmd() *cobra.Command {
	var (
		wls      []float64
		families []string
		numax    int
		mmax     int
		order    string
	)
	cmd := &cobra.Command{
		Use:   "modes",
		Short: "List and solve the guided modes",
		Long: `modes finds the guided modes of the fiber at each wavelength and solves
their effective index. Wavelengths are solved concurrently.`,
		Example: `  fibermodes modes -r 4.5 -n 1.448918,1.444418 -w 800,1550 --family LP
  fibermodes modes --fiber ring.yaml --family vector --order neff`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			fams, err := parseFamilies(families)
			if err != nil {
				return err
			}
			switch order {
			case "structural", "cutoff", "neff":
			default:
				return &usageError{errors.New(`--order must be structural, cutoff or neff`)}
			}
			spec, err := a.fiberSpec()
			if err != nil {
				return err
			}
			// fail on a bad strategy before fanning out
			if _, err := a.newFiber(spec); err != nil {
				return err
			}

			out := make([]WavelengthOutput, len(wls))
			g, ctx := errgroup.WithContext(cmd.Context())
			for i, nm := range wls {
				g.Go(func() error {
					res, err := a.modesAt(ctx, spec, nm, fams, numax, mmax, order)
					if err != nil {
						return err
					}
					out[i] = res
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			return writeJSON(a.stdout, out)
		},
	}
	fs := cmd.Flags()
	wavelengthFlag(fs, &wls)
	fs.StringSliceVar(&families, "family", nil, "mode families: LP, HE, EH, TE, TM, vector or all (default all)")
	fs.IntVar(&numax, "numax", fiber.Unlimited, "highest azimuthal order, -1 for no limit")
	fs.IntVar(&mmax, "mmax", fiber.Unlimited, "highest radial order, -1 for no limit")
	fs.StringVar(&order, "order", "structural", "mode order: structural, cutoff or neff")
	return cmd
}

// modesAt solves one wavelength on its own Fiber, so that goroutines share
// no cache.
func (a *app) modesAt(ctx context.Context, spec config.FiberSpec, nm float64,
	fams []mode.Family, numax, mmax int, order string) (WavelengthOutput, error) {
	wl, err := nanometers(nm)
	if err != nil {
		return WavelengthOutput{}, err
	}
	f, err := a.newFiber(spec)
	if err != nil {
		return WavelengthOutput{}, err
	}
	modes, err := f.FindModes(fams, wl, numax, mmax)
	if err != nil {
		return WavelengthOutput{}, err
	}
	if order == "cutoff" {
		if err := f.SortByCutoff(modes); err != nil {
			return WavelengthOutput{}, err
		}
	}

	res := WavelengthOutput{WavelengthNM: nm, V0: f.V0(wl), Modes: make([]NeffOutput, 0, len(modes))}
	for _, md := range modes {
		if err := ctx.Err(); err != nil {
			return WavelengthOutput{}, err
		}
		res.Modes = append(res.Modes, a.solve(f, md, wl, false))
	}
	if order == "neff" {
		res.Modes = sortByNeff(res.Modes, wl)
	}
	a.log.V(logging.DEBUG).Info("wavelength solved", "wavelength", wl.String(), "modes", len(res.Modes))
	return res, nil
}

// solve fills the output of one mode. Failures are reported in the
// output, not returned.
func (a *app) solve(f *fiber.Fiber, md mode.Mode, wl wavelength.Wavelength, dispersion bool) NeffOutput {
	out := NeffOutput{Mode: md}
	if co, err := f.Cutoff(md); err == nil {
		out.Cutoff = a.value(co)
	}
	s, err := f.Solve(md, wl)
	if err != nil {
		out.Error = errorText(err)
		return out
	}
	out.Guided = true
	out.Neff = a.value(s.Neff)
	out.Beta = a.value(s.Beta())
	if b, err := f.B(md, wl); err == nil {
		out.B = a.value(b)
	}
	if !dispersion {
		return out
	}
	for _, d := range []struct {
		dst **float64
		fn  func(mode.Mode, wavelength.Wavelength) (float64, error)
	}{
		{&out.Ng, f.Ng},
		{&out.D, f.D},
		{&out.S, f.S},
	} {
		v, err := d.fn(md, wl)
		if err != nil {
			out.Error = errorText(err)
			break
		}
		*d.dst = a.value(v)
	}
	return out
}

// sortByNeff orders guided modes by decreasing neff and renames them by
// that order; unsolved modes follow in their original order.
func sortByNeff(modes []NeffOutput, wl wavelength.Wavelength) []NeffOutput {
	var (
		solved []mode.Solved
		byMode = map[mode.Mode]NeffOutput{}
		rest   []NeffOutput
	)
	for _, m := range modes {
		if m.Neff == nil {
			rest = append(rest, m)
			continue
		}
		solved = append(solved, mode.Solved{Mode: m.Mode, Neff: *m.Neff, K0: wl.K0()})
		byMode[m.Mode] = m
	}
	orig := make([]mode.Mode, len(solved))
	sort.SliceStable(solved, func(i, j int) bool { return solved[i].Neff > solved[j].Neff })
	for i, s := range solved {
		orig[i] = s.Mode
	}
	mode.SortSolved(solved)

	out := make([]NeffOutput, 0, len(modes))
	for i, s := range solved {
		m := byMode[orig[i]]
		m.Mode = s.Mode
		out = append(out, m)
	}
	return append(out, rest...)
}

func (a *app) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective solver config as YAML",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(*cobra.Command, []string) error {
			return config.Dump(a.stdout, a.cfg)
		},
	}
}

func nanometers(nm float64) (wavelength.Wavelength, error) {
	wl := wavelength.FromNanometers(nm)
	if !wl.Valid() {
		return 0, &usageError{errors.New("wavelength must be a positive number of nm")}
	}
	return wl, nil
}
