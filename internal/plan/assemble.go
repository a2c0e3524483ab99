package plan

import (
	"path/filepath"

	"nativecfg/internal/probe"
	"nativecfg/internal/target"
)

// Layout locates the vendored sources.
type Layout struct {
	// Root prefixes every include and source path. Empty means DefaultRoot.
	Root string
}

func (l Layout) path(rel string) string {
	root := l.Root
	if root == "" {
		root = DefaultRoot
	}
	return filepath.Join(root, filepath.FromSlash(rel))
}

func (l Layout) paths(rels []string) []string {
	out := make([]string, len(rels))
	for i, rel := range rels {
		out[i] = l.path(rel)
	}
	return out
}

// Assemble builds the ordered list of targets: the curve library (unless
// the caller supplies it) followed by the consensus library.
func Assemble(res probe.Result, toggles Toggles, layout Layout) []Target {
	targets := make([]Target, 0, 2)
	if !toggles.ExternalCurve {
		targets = append(targets, curveTarget(res, layout))
	}
	return append(targets, consensusTarget(res, layout))
}

// base holds what both targets share.
func base(name string, layout Layout) Target {
	t := Target{Name: name, Archive: name}
	t.include(layout.path("secp256k1/include"))
	t.Defines.Set("__STDC_FORMAT_MACROS", "")
	t.flagIfSupported("-Wno-implicit-fallthrough")
	return t
}

func curveTarget(res probe.Result, layout Layout) Target {
	t := base(CurveName, layout)
	t.include(layout.paths(curveIncludes)...)
	// Some ecmult helpers are defined but unused upstream.
	t.flagIfSupported("-Wno-unused-function")
	for _, def := range curveDefines {
		t.Defines.Set(def.Name, def.Value)
	}
	if res.Endian == target.Big {
		t.Defines.Set("WORDS_BIGENDIAN", "1")
	}

	t.Representation = RepresentationNarrow
	if res.HasInt128 && res.PointerWidth == probe.Width64 {
		t.Representation = RepresentationWide
	}
	for _, def := range t.Representation.Defines() {
		t.Defines.Set(def.Name, def.Value)
	}

	t.Sources = layout.paths(curveSources)
	return t
}

func consensusTarget(res probe.Result, layout Layout) Target {
	t := base(ConsensusName, layout)
	t.Cpp = true
	t.Flavor = FlavorFor(res.Family)
	t.flag(t.Flavor.Flags()...)
	t.Defines.Set("HAVE_CONFIG_H", "1")
	t.include(layout.paths(consensusIncludes)...)
	for _, group := range ConsensusGroups {
		t.Sources = append(t.Sources, layout.paths(group.Files)...)
	}
	return t
}
