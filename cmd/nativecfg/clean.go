package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nativecfg/internal/buildpipeline"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove archives, objects and the build record",
	Long:  "Remove what nativecfg build wrote into the output directory. Other files are left alone.",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

func runClean(cmd *cobra.Command, _ []string) error {
	opts, err := readGlobalOptions(cmd)
	if err != nil {
		return err
	}
	dir, err := opts.outDir()
	if err != nil {
		return err
	}
	removed, err := buildpipeline.Clean(dir)
	for _, path := range removed {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", path)
	}
	if err != nil {
		return err
	}
	if len(removed) == 0 {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "nothing to clean in %s\n", dir)
	}
	return nil
}
