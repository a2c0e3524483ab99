package plan

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"nativecfg/internal/probe"
	"nativecfg/internal/target"
	"nativecfg/internal/toolchain"
)

func result(width probe.Width, endian target.Endian, family toolchain.Family, int128 bool, triple string) probe.Result {
	tr, err := target.ParseTriple(triple)
	if err != nil {
		panic(err)
	}
	return probe.Result{PointerWidth: width, Endian: endian, Family: family, HasInt128: int128, Triple: tr}
}

func allResults() []probe.Result {
	var out []probe.Result
	for _, width := range []probe.Width{probe.Width32, probe.Width64} {
		for _, endian := range []target.Endian{target.Little, target.Big} {
			for _, fam := range []toolchain.Family{toolchain.FamilyOther, toolchain.FamilyMSVC, toolchain.FamilyClang, toolchain.FamilyGNU} {
				for _, int128 := range []bool{false, true} {
					if width == probe.Width32 && int128 {
						continue
					}
					out = append(out, result(width, endian, fam, int128, "x86_64-unknown-linux-gnu"))
				}
			}
		}
	}
	return out
}

func findTarget(t *testing.T, targets []Target, name string) Target {
	t.Helper()
	for _, tg := range targets {
		if tg.Name == name {
			return tg
		}
	}
	t.Fatalf("target %q not assembled", name)
	return Target{}
}

func TestAssembleTargetCount(t *testing.T) {
	for _, res := range allResults() {
		if got := len(Assemble(res, Toggles{}, Layout{})); got != 2 {
			t.Fatalf("Assemble(%+v) produced %d targets, want 2", res, got)
		}
		external := Assemble(res, Toggles{ExternalCurve: true}, Layout{})
		if len(external) != 1 || external[0].Name != ConsensusName {
			t.Fatalf("Assemble(%+v, external) = %v, want consensus only", res, external)
		}
	}
}

func TestAssembleAlwaysValid(t *testing.T) {
	for _, res := range allResults() {
		for _, toggles := range []Toggles{{}, {ExternalCurve: true}} {
			if err := Validate(Assemble(res, toggles, Layout{})); err != nil {
				t.Fatalf("Validate(Assemble(%+v, %+v)): %v", res, toggles, err)
			}
		}
	}
}

func TestRepresentationIsExclusiveAndExhaustive(t *testing.T) {
	wide := RepresentationWide.Defines()
	narrow := RepresentationNarrow.Defines()
	for _, res := range allResults() {
		curve := findTarget(t, Assemble(res, Toggles{}, Layout{}), CurveName)
		want := RepresentationNarrow
		if res.HasInt128 {
			want = RepresentationWide
		}
		if curve.Representation != want {
			t.Fatalf("%+v: representation = %v, want %v", res, curve.Representation, want)
		}
		hasAll := func(defs []Define) bool {
			for _, d := range defs {
				if !curve.Defines.Has(d.Name) {
					return false
				}
			}
			return true
		}
		hasAny := func(defs []Define) bool {
			for _, d := range defs {
				if curve.Defines.Has(d.Name) {
					return true
				}
			}
			return false
		}
		if want == RepresentationWide && (!hasAll(wide) || hasAny(narrow)) {
			t.Fatalf("%+v: wide defines wrong: %v", res, curve.Defines)
		}
		if want == RepresentationNarrow && (!hasAll(narrow) || hasAny(wide)) {
			t.Fatalf("%+v: narrow defines wrong: %v", res, curve.Defines)
		}
	}
}

func TestInt128WithoutWidth64StaysNarrow(t *testing.T) {
	res := result(probe.Width32, target.Little, toolchain.FamilyGNU, true, "i686-unknown-linux-gnu")
	curve := findTarget(t, Assemble(res, Toggles{}, Layout{}), CurveName)
	if curve.Representation != RepresentationNarrow || curve.Defines.Has("HAVE___INT128") {
		t.Fatalf("32-bit target selected %v", curve.Representation)
	}
}

func TestBigEndianMarker(t *testing.T) {
	for _, res := range allResults() {
		curve := findTarget(t, Assemble(res, Toggles{}, Layout{}), CurveName)
		got := curve.Defines.Has("WORDS_BIGENDIAN")
		if got != (res.Endian == target.Big) {
			t.Fatalf("%+v: WORDS_BIGENDIAN present = %v", res, got)
		}
	}
}

func TestFlavorSelection(t *testing.T) {
	cases := []struct {
		family toolchain.Family
		flavor Flavor
		flags  []string
	}{
		{toolchain.FamilyMSVC, FlavorMSVC, []string{"/std:c++17", "/wd4100"}},
		{toolchain.FamilyClang, FlavorClang, []string{"-std=c++17", "-Wno-unused-parameter"}},
		{toolchain.FamilyGNU, FlavorGNU, []string{"-std=c++17", "-Wno-unused-parameter"}},
		{toolchain.FamilyOther, FlavorNone, nil},
	}
	for _, tc := range cases {
		res := result(probe.Width64, target.Little, tc.family, true, "x86_64-unknown-linux-gnu")
		consensus := findTarget(t, Assemble(res, Toggles{}, Layout{}), ConsensusName)
		if consensus.Flavor != tc.flavor {
			t.Fatalf("family %v: flavor = %v, want %v", tc.family, consensus.Flavor, tc.flavor)
		}
		var mandatory []string
		for _, f := range consensus.Flags {
			if !f.Optional {
				mandatory = append(mandatory, f.Value)
			}
		}
		if !reflect.DeepEqual(mandatory, tc.flags) {
			t.Fatalf("family %v: flags = %v, want %v", tc.family, mandatory, tc.flags)
		}
		if !consensus.Cpp {
			t.Fatalf("consensus target is not C++")
		}
	}
}

func TestConsensusPlan(t *testing.T) {
	res := result(probe.Width64, target.Little, toolchain.FamilyGNU, true, "x86_64-unknown-linux-gnu")
	consensus := findTarget(t, Assemble(res, Toggles{}, Layout{Root: "src"}), ConsensusName)
	wantIncludes := []string{
		filepath.Join("src", "secp256k1", "include"),
		"src",
		filepath.Join("src", "obj"),
		filepath.Join("src", "consensus"),
		filepath.Join("src", "crypto"),
		filepath.Join("src", "primitives"),
		filepath.Join("src", "script"),
		filepath.Join("src", "config"),
	}
	if !reflect.DeepEqual(consensus.Includes, wantIncludes) {
		t.Fatalf("includes = %v, want %v", consensus.Includes, wantIncludes)
	}
	if v, ok := consensus.Defines.Lookup("HAVE_CONFIG_H"); !ok || v != "1" {
		t.Fatalf("HAVE_CONFIG_H = %q, %v", v, ok)
	}
	if len(consensus.Sources) != 21 {
		t.Fatalf("sources = %d, want 21", len(consensus.Sources))
	}
	if consensus.Sources[0] != filepath.Join("src", "crypto", "aes.cpp") {
		t.Fatalf("first source = %q", consensus.Sources[0])
	}
	if last := consensus.Sources[len(consensus.Sources)-1]; last != filepath.Join("src", "utilstrencodings.cpp") {
		t.Fatalf("last source = %q", last)
	}
	if consensus.Flags[0] != (Flag{Value: "-Wno-implicit-fallthrough", Optional: true}) {
		t.Fatalf("first flag = %+v", consensus.Flags[0])
	}
}

func TestCurvePlan(t *testing.T) {
	res := result(probe.Width64, target.Little, toolchain.FamilyClang, true, "x86_64-unknown-linux-gnu")
	curve := findTarget(t, Assemble(res, Toggles{}, Layout{Root: "src"}), CurveName)
	if curve.Cpp {
		t.Fatalf("curve target must be C")
	}
	wantIncludes := []string{filepath.Join("src", "secp256k1", "include"), filepath.Join("src", "secp256k1", "src")}
	if !reflect.DeepEqual(curve.Includes, wantIncludes) {
		t.Fatalf("includes = %v, want %v", curve.Includes, wantIncludes)
	}
	for _, name := range []string{"ENABLE_MODULE_SCHNORRSIG", "ENABLE_MODULE_EXTRAKEYS", "ENABLE_MODULE_ELLSWIFT", "ENABLE_MODULE_RECOVERY"} {
		if v, _ := curve.Defines.Lookup(name); v != "1" {
			t.Fatalf("%s = %q, want 1", name, v)
		}
	}
	if v, _ := curve.Defines.Lookup("ECMULT_WINDOW_SIZE"); v != "15" {
		t.Fatalf("ECMULT_WINDOW_SIZE = %q", v)
	}
	if v, ok := curve.Defines.Lookup("__STDC_FORMAT_MACROS"); !ok || v != "" {
		t.Fatalf("__STDC_FORMAT_MACROS = %q, %v", v, ok)
	}
	wantSources := []string{
		filepath.Join("src", "secp256k1", "src", "precomputed_ecmult_gen.c"),
		filepath.Join("src", "secp256k1", "src", "precomputed_ecmult.c"),
		filepath.Join("src", "secp256k1", "src", "secp256k1.c"),
	}
	if !reflect.DeepEqual(curve.Sources, wantSources) {
		t.Fatalf("sources = %v, want %v", curve.Sources, wantSources)
	}
	if !reflect.DeepEqual(curve.FlagValues(), []string{"-Wno-implicit-fallthrough", "-Wno-unused-function"}) {
		t.Fatalf("flags = %v", curve.Flags)
	}
}

func TestAssembleIsDeterministic(t *testing.T) {
	res := result(probe.Width64, target.Big, toolchain.FamilyGNU, false, "powerpc64-unknown-linux-gnu")
	first := Assemble(res, Toggles{}, Layout{})
	for i := 0; i < 5; i++ {
		if !reflect.DeepEqual(first, Assemble(res, Toggles{}, Layout{})) {
			t.Fatalf("Assemble is not deterministic")
		}
	}
}

func TestValidateRejects(t *testing.T) {
	good := Assemble(result(probe.Width64, target.Little, toolchain.FamilyGNU, true, "x86_64-unknown-linux-gnu"), Toggles{}, Layout{})
	cases := map[string]func([]Target) []Target{
		"empty plan": func([]Target) []Target { return nil },
		"no sources": func(ts []Target) []Target {
			ts[1].Sources = nil
			return ts
		},
		"duplicate define": func(ts []Target) []Target {
			ts[0].Defines = append(ts[0].Defines, Define{Name: "HAVE___INT128", Value: "1"})
			return ts
		},
		"mixed representation": func(ts []Target) []Target {
			ts[0].Defines.Set("USE_FIELD_10X26", "1")
			return ts
		},
		"duplicate target": func(ts []Target) []Target {
			return append(ts, ts[1])
		},
	}
	for name, mutate := range cases {
		ts := cloneTargets(good)
		if err := Validate(mutate(ts)); !errors.Is(err, ErrInconsistent) {
			t.Fatalf("%s: err = %v, want ErrInconsistent", name, err)
		}
	}
}

func TestDefinesSetKeepsPosition(t *testing.T) {
	var d Defines
	d.Set("A", "1")
	d.Set("B", "")
	d.Set("A", "2")
	want := Defines{{Name: "A", Value: "2"}, {Name: "B"}}
	if !reflect.DeepEqual(d, want) {
		t.Fatalf("defines = %v, want %v", d, want)
	}
	macros := d.Macros()
	if macros[0].String() != "A=2" || macros[1].String() != "B" {
		t.Fatalf("macros = %v", macros)
	}
}

func cloneTargets(ts []Target) []Target {
	out := make([]Target, len(ts))
	for i, t := range ts {
		c := t
		c.Includes = append([]string(nil), t.Includes...)
		c.Defines = append(Defines(nil), t.Defines...)
		c.Sources = append([]string(nil), t.Sources...)
		c.Flags = append([]Flag(nil), t.Flags...)
		out[i] = c
	}
	return out
}
