// Package config holds the solver parameters of the mode solver and
// loads them from flags, environment and YAML files.
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes the environment variables read by Load, e.g.
// FIBERMODES_NEFF_DELTA.
const EnvPrefix = "FIBERMODES"

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("config: invalid")

// Config holds solver and search parameters.
type Config struct {
	// NeffDelta is the default neff scan step.
	NeffDelta float64 `mapstructure:"neff_delta" yaml:"neff_delta"`

	// CutoffDelta is the V0 scan step of cutoff searches.
	CutoffDelta float64 `mapstructure:"cutoff_delta" yaml:"cutoff_delta"`

	// Tolerance is the absolute tolerance of Brent refinement.
	Tolerance float64 `mapstructure:"tolerance" yaml:"tolerance"`

	// NeffMaxIter caps the samples of one neff scan pass.
	NeffMaxIter int `mapstructure:"neff_max_iter" yaml:"neff_max_iter"`

	// CutoffMaxIter caps the samples of one cutoff scan pass.
	// Cutoff scans are unbounded, so this is their only stop.
	CutoffMaxIter int `mapstructure:"cutoff_max_iter" yaml:"cutoff_max_iter"`

	// Shrink divides the step after a failed scan pass.
	Shrink float64 `mapstructure:"shrink" yaml:"shrink"`

	// RetryFloor is the smallest step, as a fraction of the initial
	// step, a failed scan is retried with. Zero disables retries.
	RetryFloor float64 `mapstructure:"retry_floor" yaml:"retry_floor"`

	// MaxDepth caps the halving levels of two-layer neff searches.
	MaxDepth int `mapstructure:"max_depth" yaml:"max_depth"`

	// ToWavelengthMaxIter and ToWavelengthTolerance drive the fixed
	// point that maps V0 back to a wavelength.
	ToWavelengthMaxIter   int     `mapstructure:"to_wavelength_max_iter" yaml:"to_wavelength_max_iter"`
	ToWavelengthTolerance float64 `mapstructure:"to_wavelength_tolerance" yaml:"to_wavelength_tolerance"`

	// DerivativeStep is the wavelength spacing, in meters, of the
	// finite differences behind group index and dispersion.
	DerivativeStep float64 `mapstructure:"derivative_step" yaml:"derivative_step"`
}

// DefaultConfig is the solver setup used when no flag, variable or file
// overrides a field. The neff step resolves modes 1e-6 apart.
var DefaultConfig = Config{
	NeffDelta:             1e-6,
	CutoffDelta:           0.25,
	Tolerance:             2e-12,
	NeffMaxIter:           1000000,
	CutoffMaxIter:         10000,
	Shrink:                10,
	RetryFloor:            0.1,
	MaxDepth:              16,
	ToWavelengthMaxIter:   50,
	ToWavelengthTolerance: 1e-15,
	DerivativeStep:        1e-9,
}

// cfg backs GetConfig; fibers built without WithConfig copy it.
var cfg = DefaultConfig

// SetConfig changes the parameters later fibers start from. Fibers
// already built keep theirs.
func SetConfig(c Config) {
	cfg = c
}

// GetConfig returns the parameters new fibers start from.
func GetConfig() Config {
	return cfg
}

// Validate reports the first unusable field.
func (c Config) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"neff_delta", c.NeffDelta},
		{"cutoff_delta", c.CutoffDelta},
		{"tolerance", c.Tolerance},
		{"to_wavelength_tolerance", c.ToWavelengthTolerance},
		{"derivative_step", c.DerivativeStep},
	}
	for _, p := range positive {
		if !(p.v > 0) || math.IsInf(p.v, 0) {
			return fmt.Errorf("%w: %s must be positive and finite, got %g", ErrInvalidConfig, p.name, p.v)
		}
	}
	if c.NeffMaxIter < 1 || c.CutoffMaxIter < 1 || c.MaxDepth < 1 || c.ToWavelengthMaxIter < 1 {
		return fmt.Errorf("%w: iteration limits must be at least 1", ErrInvalidConfig)
	}
	if !(c.Shrink > 1) {
		return fmt.Errorf("%w: shrink must exceed 1, got %g", ErrInvalidConfig, c.Shrink)
	}
	if c.RetryFloor < 0 || c.RetryFloor >= 1 {
		return fmt.Errorf("%w: retry_floor must be in [0, 1), got %g", ErrInvalidConfig, c.RetryFloor)
	}
	return nil
}

// SetDefaults registers DefaultConfig as viper defaults.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig
	v.SetDefault("neff_delta", d.NeffDelta)
	v.SetDefault("cutoff_delta", d.CutoffDelta)
	v.SetDefault("tolerance", d.Tolerance)
	v.SetDefault("neff_max_iter", d.NeffMaxIter)
	v.SetDefault("cutoff_max_iter", d.CutoffMaxIter)
	v.SetDefault("shrink", d.Shrink)
	v.SetDefault("retry_floor", d.RetryFloor)
	v.SetDefault("max_depth", d.MaxDepth)
	v.SetDefault("to_wavelength_max_iter", d.ToWavelengthMaxIter)
	v.SetDefault("to_wavelength_tolerance", d.ToWavelengthTolerance)
	v.SetDefault("derivative_step", d.DerivativeStep)
}

// Load builds a Config from v. Flags bound to v win over FIBERMODES_*
// environment variables, which win over the config file named by
// v.ConfigFileUsed (when set), which wins over DefaultConfig.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Dump writes c as YAML.
func Dump(w io.Writer, c Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("config: dump: %w", err)
	}
	return enc.Close()
}
