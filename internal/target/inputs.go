package target

import (
	"errors"
	"fmt"
	"strings"
)

// Environment variable names understood by nativecfg.
const (
	VarPointerWidth = "CARGO_CFG_TARGET_POINTER_WIDTH"
	VarEndian       = "CARGO_CFG_TARGET_ENDIAN"
	VarTarget       = "TARGET"
	VarHost         = "HOST"
	VarExternalSecp = "CARGO_FEATURE_EXTERNAL_SECP"
	VarOutDir       = "OUT_DIR"
)

var (
	// ErrMissingInput marks a required input that is not set.
	ErrMissingInput = errors.New("required input not set")
	// ErrInvalidInput marks an input whose value cannot be interpreted.
	ErrInvalidInput = errors.New("invalid input")
)

// Endian is the byte order of the target.
type Endian uint8

const (
	// Little is the implicit default byte order.
	Little Endian = iota
	// Big marks big-endian targets.
	Big
)

func (e Endian) String() string {
	if e == Big {
		return "big"
	}
	return "little"
}

// Inputs are the required facts about the target, read before anything runs.
type Inputs struct {
	PointerWidth string
	Endian       Endian
	Triple       Triple
	Host         Triple
}

// Cross reports whether the host differs from the target.
func (in Inputs) Cross() bool {
	return in.Host.Raw != "" && in.Host.Raw != in.Triple.Raw
}

// ReadInputs collects the required inputs from env.
func ReadInputs(env Env) (Inputs, error) {
	var in Inputs
	width, ok := env.Lookup(VarPointerWidth)
	if !ok {
		return in, fmt.Errorf("%s: %w", VarPointerWidth, ErrMissingInput)
	}
	in.PointerWidth = strings.TrimSpace(width)

	endian, ok := env.Lookup(VarEndian)
	if !ok {
		return in, fmt.Errorf("%s: %w", VarEndian, ErrMissingInput)
	}
	switch strings.TrimSpace(endian) {
	case "little":
		in.Endian = Little
	case "big":
		in.Endian = Big
	default:
		return in, fmt.Errorf("%s=%q (expected little|big): %w", VarEndian, endian, ErrInvalidInput)
	}

	raw, ok := env.Lookup(VarTarget)
	if !ok {
		return in, fmt.Errorf("%s: %w", VarTarget, ErrMissingInput)
	}
	triple, err := ParseTriple(raw)
	if err != nil {
		return in, fmt.Errorf("%s: %v: %w", VarTarget, err, ErrInvalidInput)
	}
	in.Triple = triple
	in.Host = triple

	if hostRaw, ok := env.Lookup(VarHost); ok && strings.TrimSpace(hostRaw) != "" {
		host, err := ParseTriple(hostRaw)
		if err != nil {
			return in, fmt.Errorf("%s: %v: %w", VarHost, err, ErrInvalidInput)
		}
		in.Host = host
	}
	return in, nil
}

// ParseBool interprets a feature toggle value. Cargo sets feature variables
// to "1"; an empty value counts as set.
func ParseBool(name, value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s=%q is not a boolean: %w", name, value, ErrInvalidInput)
	}
}

// LookupBool reads an optional toggle. Absent means false.
func LookupBool(env Env, name string) (bool, error) {
	value, ok := env.Lookup(name)
	if !ok {
		return false, nil
	}
	return ParseBool(name, value)
}
