package toolchain

import (
	"context"
	_ "embed"
	"os"
	"path/filepath"
	"strings"
)

//go:embed native/detect_family.c
var detectSource []byte

const (
	markerClang = "nativecfg_family_clang"
	markerGNU   = "nativecfg_family_gnu"
	markerMSVC  = "nativecfg_family_msvc"
)

// detectFamily asks the compiler's preprocessor which family it belongs to.
// When that is not possible the executable name decides.
func detectFamily(ctx context.Context, runner Runner, cc Tool) Family {
	if fam, ok := familyFromName(cc.Path); ok && fam == FamilyMSVC {
		return fam
	}
	dir, err := os.MkdirTemp("", "nativecfg-detect-")
	if err == nil {
		defer func() { _ = os.RemoveAll(dir) }()
		src := filepath.Join(dir, "detect_family.c")
		if writeErr := os.WriteFile(src, detectSource, 0o600); writeErr == nil {
			args := append(append([]string{}, cc.Args...), "-E", src)
			out, runErr := runner.Run(ctx, Command{Name: cc.Path, Args: args, Dir: dir})
			if runErr == nil {
				if fam, ok := familyFromPreprocessor(out.Stdout); ok {
					return fam
				}
			}
		}
	}
	fam, _ := familyFromName(cc.Path)
	return fam
}

func familyFromPreprocessor(out string) (Family, bool) {
	for _, line := range strings.Split(out, "\n") {
		switch strings.TrimSpace(line) {
		case markerClang:
			return FamilyClang, true
		case markerGNU:
			return FamilyGNU, true
		case markerMSVC:
			return FamilyMSVC, true
		}
	}
	return FamilyOther, false
}

func familyFromName(path string) (Family, bool) {
	// Windows-style paths reach us on Unix hosts too (wine, cross setups).
	base := path
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	base = strings.ToLower(base)
	base = strings.TrimSuffix(base, ".exe")
	switch {
	case base == "cl" || base == "clang-cl" || strings.HasSuffix(base, "-cl"):
		return FamilyMSVC, true
	case strings.Contains(base, "clang"):
		return FamilyClang, true
	case strings.Contains(base, "gcc") || strings.Contains(base, "g++"):
		return FamilyGNU, true
	}
	return FamilyOther, false
}
