package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/meenmo/fibermodes/fiber"
	"github.com/meenmo/fibermodes/mode"
	"github.com/meenmo/fibermodes/utils"
)

// CutoffOutput is one line of `fibermodes cutoff`. V0 and WavelengthNM
// are omitted when they are not finite, e.g. the fundamental mode has no
// cutoff wavelength.
type CutoffOutput struct {
	Mode         mode.Mode `json:"mode"`
	V0           *float64  `json:"v0,omitempty"`
	WavelengthNM *float64  `json:"wavelength_nm,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// NeffOutput is one solved mode. Beta is in rad/m, D in ps/(nm·km) and S
// in ps/(nm²·km).
type NeffOutput struct {
	Mode   mode.Mode `json:"mode"`
	Guided bool      `json:"guided"`
	Neff   *float64  `json:"neff,omitempty"`
	B      *float64  `json:"b,omitempty"`
	Beta   *float64  `json:"beta,omitempty"`
	Cutoff *float64  `json:"cutoff_v0,omitempty"`
	Ng     *float64  `json:"ng,omitempty"`
	D      *float64  `json:"d,omitempty"`
	S      *float64  `json:"s,omitempty"`
	Error  string    `json:"error,omitempty"`
}

// WavelengthOutput groups the modes solved at one wavelength.
type WavelengthOutput struct {
	WavelengthNM float64      `json:"wavelength_nm"`
	V0           float64      `json:"v0"`
	Modes        []NeffOutput `json:"modes"`
}

// ErrorOutput is written to stdout when a command fails.
type ErrorOutput struct {
	Error string `json:"error"`
}

// value boxes x for JSON, which has no NaN or Inf, rounded to --digits
// decimals when set.
func (a *app) value(x float64) *float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	if a.digits > 0 {
		x = utils.RoundTo(x, uint32(a.digits))
	}
	return &x
}

// errorText reports per-mode failures. Modes that are merely not guided
// carry no error.
func errorText(err error) string {
	if err == nil || errors.Is(err, fiber.ErrNotGuided) {
		return ""
	}
	return err.Error()
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func writeError(stdout io.Writer, msg string) int {
	b, _ := json.Marshal(ErrorOutput{Error: msg})
	fmt.Fprintln(stdout, string(b))
	return 1
}
