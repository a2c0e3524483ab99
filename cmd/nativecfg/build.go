package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"nativecfg/internal/buildpipeline"
	"nativecfg/internal/buildrecord"
	"nativecfg/internal/diag"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Probe the toolchain and build the native archives",
	Long: `Probe the target toolchain, assemble the plan and compile each target in
order. With --message-format cargo the link directives are written to stdout
for a cargo build script to relay.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, _ []string) error {
	opts, err := readGlobalOptions(cmd)
	if err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	req := opts.request()
	var res buildpipeline.Result
	if shouldUseTUI(opts.ui, opts.format) {
		res, err = runBuildWithUI(cmd.Context(), "nativecfg build", req)
	} else {
		res, err = buildpipeline.Run(cmd.Context(), req)
	}
	out := cmd.OutOrStdout()
	if printErr := opts.printDiagnostics(out, res.Bag); printErr != nil {
		return printErr
	}
	if err != nil {
		return err
	}

	rec, err := buildpipeline.Record(&res)
	if err != nil {
		return err
	}
	if opts.format == diag.FormatCargo {
		err = printDirectives(out, rec)
	} else {
		err = printBuildSummary(out, rec)
	}
	if err != nil {
		return err
	}
	if opts.timings {
		return printStageTimings(opts.stderr, res.Timings)
	}
	return nil
}

func printDirectives(out io.Writer, rec *buildrecord.Record) error {
	for _, line := range rec.Directives() {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

func printBuildSummary(out io.Writer, rec *buildrecord.Record) error {
	for _, a := range rec.Archives {
		if _, err := fmt.Fprintf(out, "built %s (%d units)\n", filepath.Base(a.File), a.Units); err != nil {
			return err
		}
	}
	if len(rec.Archives) > 0 {
		if _, err := fmt.Fprintf(out, "output: %s\n", rec.LinkSearch); err != nil {
			return err
		}
	}
	return nil
}
