// Package mode describes fiber modes: the family, the azimuthal order nu and
// the radial order m, plus solved modes carrying an effective index.
package mode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidMode is returned for malformed or physically meaningless modes.
var ErrInvalidMode = errors.New("mode: invalid mode")

// Family is a mode family.
type Family int

const (
	LP Family = iota + 1
	HE
	EH
	TE
	TM
)

// Families lists every family in declaration order.
var Families = []Family{LP, HE, EH, TE, TM}

// VectorFamilies are the families of the exact vector solution.
var VectorFamilies = []Family{HE, EH, TE, TM}

var familyNames = map[Family]string{
	LP: "LP",
	HE: "HE",
	EH: "EH",
	TE: "TE",
	TM: "TM",
}

func (f Family) String() string {
	if s, ok := familyNames[f]; ok {
		return s
	}
	return fmt.Sprintf("Family(%d)", int(f))
}

// Valid reports whether f is one of the five known families.
func (f Family) Valid() bool {
	_, ok := familyNames[f]
	return ok
}

// ParseFamily parses a family name, case-insensitively.
func ParseFamily(s string) (Family, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for f, name := range familyNames {
		if name == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown family %q", ErrInvalidMode, s)
}

// MarshalText implements encoding.TextMarshaler.
func (f Family) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: unknown family %d", ErrInvalidMode, int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Family) UnmarshalText(b []byte) error {
	v, err := ParseFamily(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Mode identifies a guided mode. It is a comparable value and can be used
// as a map key; keys compare by strict identity.
type Mode struct {
	Family Family
	Nu     int
	M      int
}

// New builds and validates a mode.
func New(f Family, nu, m int) (Mode, error) {
	md := Mode{Family: f, Nu: nu, M: m}
	if err := md.Validate(); err != nil {
		return Mode{}, err
	}
	return md, nil
}

// Fundamental is the HE(1,1) mode.
var Fundamental = Mode{Family: HE, Nu: 1, M: 1}

// Validate checks the family and the order constraints of each family.
func (md Mode) Validate() error {
	switch {
	case !md.Family.Valid():
		return fmt.Errorf("%w: unknown family %d", ErrInvalidMode, int(md.Family))
	case md.M < 1:
		return fmt.Errorf("%w: %v: m must be >= 1", ErrInvalidMode, md)
	case md.Nu < 0:
		return fmt.Errorf("%w: %v: nu must be >= 0", ErrInvalidMode, md)
	case (md.Family == TE || md.Family == TM) && md.Nu != 0:
		return fmt.Errorf("%w: %v: TE and TM modes have nu = 0", ErrInvalidMode, md)
	case (md.Family == HE || md.Family == EH) && md.Nu == 0:
		return fmt.Errorf("%w: %v: hybrid modes have nu >= 1", ErrInvalidMode, md)
	}
	return nil
}

func (md Mode) String() string {
	return fmt.Sprintf("%s(%d,%d)", md.Family, md.Nu, md.M)
}

// Parse reads the String form, e.g. "HE(1,1)".
func Parse(s string) (Mode, error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return Mode{}, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	fam, err := ParseFamily(s[:open])
	if err != nil {
		return Mode{}, err
	}
	parts := strings.Split(s[open+1:len(s)-1], ",")
	if len(parts) != 2 {
		return Mode{}, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	nu, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Mode{}, fmt.Errorf("%w: %q: %v", ErrInvalidMode, s, err)
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Mode{}, fmt.Errorf("%w: %q: %v", ErrInvalidMode, s, err)
	}
	return New(fam, nu, m)
}

// MarshalText implements encoding.TextMarshaler.
func (md Mode) MarshalText() ([]byte, error) { return []byte(md.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (md *Mode) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*md = v
	return nil
}

// IsFundamental reports whether md is HE(1,1) or LP(0,1).
func (md Mode) IsFundamental() bool {
	return md == Fundamental || md == (Mode{Family: LP, Nu: 0, M: 1})
}

// Equivalent is identity, except that HE(1,1) and LP(0,1) are the same
// physical mode.
func (md Mode) Equivalent(o Mode) bool {
	if md == o {
		return true
	}
	return md.IsFundamental() && o.IsFundamental()
}

// Less is a deterministic structural order: family, then nu, then m.
func Less(a, b Mode) bool {
	if a.Family != b.Family {
		return a.Family < b.Family
	}
	if a.Nu != b.Nu {
		return a.Nu < b.Nu
	}
	return a.M < b.M
}
