// Package probe establishes the facts about the target toolchain that the
// build plan depends on.
package probe

import (
	"context"
	_ "embed"
	"strconv"

	"nativecfg/internal/diag"
	"nativecfg/internal/target"
	"nativecfg/internal/toolchain"
	"nativecfg/internal/trace"
)

//go:embed native/check_uint128_t.c
var int128Source []byte

// Width is the pointer width of the target.
type Width uint8

const (
	// Width32 covers every target whose pointer width is not 64.
	Width32 Width = 32
	// Width64 is a 64-bit target.
	Width64 Width = 64
)

// Result is computed once per build and never modified.
type Result struct {
	PointerWidth Width
	Endian       target.Endian
	Family       toolchain.Family
	// HasInt128 is only ever true for Width64.
	HasInt128 bool
	Triple    target.Triple
}

// Compiler is the part of a toolchain the probe needs.
type Compiler interface {
	Family() toolchain.Family
	TryCompile(ctx context.Context, trial toolchain.Trial) error
}

// Int128Warning is the message attached to the 128-bit fallback.
const Int128Warning = "Compiling in 32-bit mode on a 64-bit architecture due to lack of uint128_t support."

// Probe builds a Result. A failed 128-bit trial is reported as a warning
// and never fails the probe.
func Probe(ctx context.Context, in target.Inputs, cc Compiler) (Result, []diag.Diagnostic) {
	ctx, span := trace.Start(ctx, trace.ScopeStage, "probe")

	res := Result{
		PointerWidth: Width32,
		Endian:       in.Endian,
		Family:       cc.Family(),
		Triple:       in.Triple,
	}
	var diags []diag.Diagnostic
	if in.PointerWidth == "64" {
		res.PointerWidth = Width64
		err := cc.TryCompile(ctx, toolchain.Trial{Name: "check_uint128_t", Source: int128Source})
		res.HasInt128 = err == nil
		if err != nil {
			diags = append(diags, diag.Diagnostic{
				Severity: diag.SevWarning,
				Code:     diag.WarnInt128Fallback,
				Message:  Int128Warning,
				Detail:   err.Error(),
			})
		}
	}

	span.Set("width", res.PointerWidth.String()).
		Set("int128", strconv.FormatBool(res.HasInt128)).
		Set("family", res.Family.String()).
		End("")
	return res, diags
}

// String renders the width as the pointer-width hint spells it.
func (w Width) String() string {
	if w == Width64 {
		return "64"
	}
	return "32"
}
