package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nativecfg/internal/prof"
)

// setupProfiling starts the profilers named by the profiling flags. The
// returned cleanup stops them and reports failures on stderr.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	var opts prof.Options
	for flag, dst := range map[string]*string{
		"cpu-profile":   &opts.CPU,
		"mem-profile":   &opts.Mem,
		"runtime-trace": &opts.Trace,
	} {
		value, err := cmd.Flags().GetString(flag)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s flag: %w", flag, err)
		}
		*dst = value
	}
	if !opts.Enabled() {
		return func() {}, nil
	}
	session, err := prof.Start(opts)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "profiling: %v\n", err)
		}
	}, nil
}
