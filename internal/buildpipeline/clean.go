package buildpipeline

import (
	"errors"
	"os"
	"path/filepath"

	"nativecfg/internal/buildrecord"
	"nativecfg/internal/plan"
)

// Clean removes what a build left in outDir: per-target object directories,
// archives in either naming style, and the build record. It returns the
// paths it removed. Unrelated files are left alone.
func Clean(outDir string) ([]string, error) {
	var candidates []string
	for _, name := range []string{plan.CurveName, plan.ConsensusName} {
		candidates = append(candidates,
			filepath.Join(outDir, name),
			filepath.Join(outDir, "lib"+name+".a"),
			filepath.Join(outDir, name+".lib"),
		)
	}
	candidates = append(candidates, buildrecord.Path(outDir))

	var removed []string
	var errs []error
	for _, path := range candidates {
		if _, err := os.Lstat(path); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				errs = append(errs, err)
			}
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			errs = append(errs, err)
			continue
		}
		removed = append(removed, path)
	}
	return removed, errors.Join(errs...)
}
