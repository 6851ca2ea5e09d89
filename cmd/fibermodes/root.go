package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/meenmo/fibermodes/config"
	"github.com/meenmo/fibermodes/fiber"
	"github.com/meenmo/fibermodes/internal/logging"
	"github.com/meenmo/fibermodes/internal/metrics"
	"github.com/meenmo/fibermodes/mode"
)

// usageError marks command line mistakes, as opposed to solve failures.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// usageArgs reports positional argument mistakes as usage errors.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return &usageError{err}
		}
		return nil
	}
}

// app is the state of one invocation.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	v       *viper.Viper
	bindErr error
	cfg     config.Config
	log     logr.Logger
	rec     *metrics.Recorder

	configFile  string
	fiberFile   string
	radii       []float64
	indices     []float64
	strategy    string
	showMetrics bool
	digits      int
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		v:      viper.New(),
		log:    logr.Discard(),
	}
}

// flagKeys maps the solver flags to their config keys.
var flagKeys = map[string]string{
	"neff-delta":   "neff_delta",
	"cutoff-delta": "cutoff_delta",
	"tolerance":    "tolerance",
	"max-depth":    "max_depth",
	"verbosity":    "verbosity",
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fibermodes",
		Short: "Effective indices and cutoffs of step-index fiber modes",
		Long: `fibermodes solves the guided modes of multi-layer step-index fibers.

The fiber is read from a YAML file (--fiber, "-" for stdin) or built from
--radius and --index. Results are written to stdout as JSON.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		// a stray positional argument is a mistyped subcommand
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if !a.showMetrics {
				return nil
			}
			return a.rec.WriteText(a.stderr)
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "solver config file (YAML)")
	pf.StringVarP(&a.fiberFile, "fiber", "f", "", `fiber description file (YAML), "-" for stdin`)
	pf.Float64SliceVarP(&a.radii, "radius", "r", nil, "outer radii of the inner layers in µm")
	pf.Float64SliceVarP(&a.indices, "index", "n", nil, "layer refractive indices, cladding last")
	pf.StringVar(&a.strategy, "strategy", "auto", "neff equations: auto or transfer-matrix")
	pf.BoolVar(&a.showMetrics, "metrics", false, "print solver metrics to stderr")
	pf.IntVar(&a.digits, "digits", 0, "round results to this many decimals, 0 for full precision")
	pf.IntP("verbosity", "v", logging.INFO, "log verbosity (0 info, 1 debug, 2 trace)")

	d := config.DefaultConfig
	pf.Float64("neff-delta", d.NeffDelta, "neff scan step")
	pf.Float64("cutoff-delta", d.CutoffDelta, "V0 scan step of cutoff searches")
	pf.Float64("tolerance", d.Tolerance, "root refinement tolerance")
	pf.Int("max-depth", d.MaxDepth, "halving levels of two-layer neff searches")
	for name, key := range flagKeys {
		if err := a.v.BindPFlag(key, pf.Lookup(name)); err != nil {
			a.bindErr = errors.Join(a.bindErr, fmt.Errorf("flag %s: %w", name, err))
		}
	}

	root.AddCommand(a.cutoffCmd(), a.neffCmd(), a.modesCmd(), a.configCmd())
	return root
}

// setup resolves the config and builds the logger and metrics. It runs
// before every subcommand.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.bindErr != nil {
		return a.bindErr
	}
	if a.configFile != "" {
		a.v.SetConfigFile(a.configFile)
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	if a.digits < 0 {
		return &usageError{fmt.Errorf("--digits must be >= 0, got %d", a.digits)}
	}

	log, err := logging.NewLogger(a.v.GetInt("verbosity"), false)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	a.log = log.WithName(cmd.Name())

	if a.showMetrics {
		rec, err := metrics.NewRecorder(prometheus.NewRegistry())
		if err != nil {
			return err
		}
		a.rec = rec
	}
	a.log.V(logging.DEBUG).Info("config loaded", "file", a.v.ConfigFileUsed(), "neff_delta", cfg.NeffDelta, "cutoff_delta", cfg.CutoffDelta)
	return nil
}

// fiberSpec reads the fiber from --fiber, or builds it from --radius and
// --index.
func (a *app) fiberSpec() (config.FiberSpec, error) {
	path := strings.TrimSpace(a.fiberFile)
	switch {
	case path != "" && (len(a.radii) > 0 || len(a.indices) > 0):
		return config.FiberSpec{}, &usageError{errors.New("--fiber excludes --radius and --index")}
	case path == "-":
		if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return config.FiberSpec{}, &usageError{errors.New("--fiber -: stdin is a terminal")}
		}
		return config.ReadFiberSpec(a.stdin)
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return config.FiberSpec{}, fmt.Errorf("failed to read fiber: %w", err)
		}
		defer f.Close()
		s, err := config.ReadFiberSpec(f)
		if err != nil {
			return config.FiberSpec{}, fmt.Errorf("%s: %w", path, err)
		}
		return s, nil
	case len(a.indices) == 0:
		return config.FiberSpec{}, &usageError{errors.New("no fiber: use --fiber or --radius and --index")}
	}

	radii := make([]float64, len(a.radii))
	for i, r := range a.radii {
		radii[i] = r * 1e-6
	}
	return config.NewFiberSpec(radii, a.indices)
}

// newFiber builds a Fiber carrying the resolved config, logger and
// recorder. Every call returns an independent solve cache.
func (a *app) newFiber(spec config.FiberSpec) (*fiber.Fiber, error) {
	s, err := fiber.ParseStrategy(a.strategy)
	if err != nil {
		return nil, &usageError{err}
	}
	log := a.log
	if spec.Name != "" {
		log = log.WithValues("fiber", spec.Name)
	}
	return fiber.FromSpec(spec,
		fiber.WithConfig(a.cfg),
		fiber.WithLogger(log),
		fiber.WithRecorder(a.rec),
		fiber.WithStrategy(s),
	)
}

func parseModes(args []string) ([]mode.Mode, error) {
	modes := make([]mode.Mode, 0, len(args))
	for _, s := range args {
		md, err := mode.Parse(s)
		if err != nil {
			return nil, &usageError{err}
		}
		modes = append(modes, md)
	}
	return modes, nil
}

func parseFamilies(names []string) ([]mode.Family, error) {
	if len(names) == 0 {
		return mode.Families, nil
	}
	fams := make([]mode.Family, 0, len(names))
	for _, s := range names {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "vector":
			fams = append(fams, mode.VectorFamilies...)
			continue
		case "all":
			fams = append(fams, mode.Families...)
			continue
		}
		f, err := mode.ParseFamily(s)
		if err != nil {
			return nil, &usageError{err}
		}
		fams = append(fams, f)
	}
	return fams, nil
}

// wavelengthFlag registers the --wavelength list, in nm.
func wavelengthFlag(fs *pflag.FlagSet, p *[]float64) {
	fs.Float64SliceVarP(p, "wavelength", "w", []float64{1550}, "wavelengths in nm")
}
