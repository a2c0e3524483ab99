// Package plan turns probe results into the exact compilation plan for each
// native archive. Everything here is pure: no files are touched and no tools
// are run.
package plan

import (
	"errors"

	"nativecfg/internal/toolchain"
)

// ErrInconsistent marks a plan that breaks its own invariants. It can only
// come from a programming or configuration mistake.
var ErrInconsistent = errors.New("inconsistent build plan")

// Toggles are the externally supplied feature switches.
type Toggles struct {
	// ExternalCurve omits the secp256k1 target; the caller provides it.
	ExternalCurve bool
}

// Representation is the field/scalar arithmetic encoding of the curve
// library.
type Representation uint8

const (
	// RepresentationUnset is used by targets that have no representation.
	RepresentationUnset Representation = iota
	// RepresentationWide uses 64-bit limbs and native 128-bit products.
	RepresentationWide
	// RepresentationNarrow uses 32-bit limbs.
	RepresentationNarrow
)

func (r Representation) String() string {
	switch r {
	case RepresentationWide:
		return "wide"
	case RepresentationNarrow:
		return "narrow"
	default:
		return "unset"
	}
}

// Defines returns the define set that selects r.
func (r Representation) Defines() []Define {
	switch r {
	case RepresentationWide:
		return []Define{
			{Name: "USE_FIELD_5X52", Value: "1"},
			{Name: "USE_SCALAR_4X64", Value: "1"},
			{Name: "HAVE___INT128", Value: "1"},
		}
	case RepresentationNarrow:
		return []Define{
			{Name: "USE_FIELD_10X26", Value: "1"},
			{Name: "USE_SCALAR_8X32", Value: "1"},
		}
	}
	return nil
}

// Flavor is the compiler-specific flag set of the C++ target.
type Flavor uint8

const (
	// FlavorNone applies no compiler-specific flags.
	FlavorNone Flavor = iota
	FlavorMSVC
	FlavorClang
	FlavorGNU
)

func (f Flavor) String() string {
	switch f {
	case FlavorMSVC:
		return "msvc"
	case FlavorClang:
		return "clang"
	case FlavorGNU:
		return "gnu"
	default:
		return "none"
	}
}

// FlavorFor maps a compiler family onto its flavor. Unknown compilers get
// FlavorNone: there is no flag syntax that is safe to guess.
func FlavorFor(family toolchain.Family) Flavor {
	switch family {
	case toolchain.FamilyMSVC:
		return FlavorMSVC
	case toolchain.FamilyClang:
		return FlavorClang
	case toolchain.FamilyGNU:
		return FlavorGNU
	}
	return FlavorNone
}

// Flags returns the language standard and the flag silencing the
// unused-parameter diagnostic, spelled for f.
func (f Flavor) Flags() []string {
	switch f {
	case FlavorMSVC:
		return []string{"/std:c++17", "/wd4100"}
	case FlavorClang, FlavorGNU:
		return []string{"-std=c++17", "-Wno-unused-parameter"}
	}
	return nil
}

// Define is one preprocessor definition. An empty Value defines the name
// without a value.
type Define struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// Defines is an ordered set of definitions with unique names.
type Defines []Define

// Set adds name or replaces its value in place.
func (d *Defines) Set(name, value string) {
	for i := range *d {
		if (*d)[i].Name == name {
			(*d)[i].Value = value
			return
		}
	}
	*d = append(*d, Define{Name: name, Value: value})
}

// Lookup returns the value of name and whether it is defined.
func (d Defines) Lookup(name string) (string, bool) {
	for _, def := range d {
		if def.Name == name {
			return def.Value, true
		}
	}
	return "", false
}

// Has reports whether name is defined.
func (d Defines) Has(name string) bool {
	_, ok := d.Lookup(name)
	return ok
}

// Macros converts the set for the toolchain.
func (d Defines) Macros() []toolchain.Macro {
	out := make([]toolchain.Macro, len(d))
	for i, def := range d {
		out[i] = toolchain.Macro{Name: def.Name, Value: def.Value}
	}
	return out
}

// Flag is one compiler flag. Optional flags are dropped by the invoker when
// the compiler rejects them.
type Flag struct {
	Value    string `json:"value"`
	Optional bool   `json:"optional,omitempty"`
}

// Target describes everything needed to produce one static archive.
// Includes, Sources and Flags are passed to the compiler in order.
type Target struct {
	Name           string         `json:"name"`
	Archive        string         `json:"archive"`
	Cpp            bool           `json:"cpp"`
	Includes       []string       `json:"includes"`
	Defines        Defines        `json:"defines"`
	Sources        []string       `json:"sources"`
	Flags          []Flag         `json:"flags"`
	Representation Representation `json:"-"`
	Flavor         Flavor         `json:"-"`
}

// FlagValues returns every flag, optional or not.
func (t Target) FlagValues() []string {
	out := make([]string, len(t.Flags))
	for i, f := range t.Flags {
		out[i] = f.Value
	}
	return out
}

func (t *Target) include(dirs ...string) {
	for _, dir := range dirs {
		if containsString(t.Includes, dir) {
			// First match wins during header search; a repeat changes nothing.
			continue
		}
		t.Includes = append(t.Includes, dir)
	}
}

func (t *Target) flag(values ...string) {
	for _, v := range values {
		t.Flags = append(t.Flags, Flag{Value: v})
	}
}

func (t *Target) flagIfSupported(values ...string) {
	for _, v := range values {
		t.Flags = append(t.Flags, Flag{Value: v, Optional: true})
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
