package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"nativecfg/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "nativecfg",
	Short: "Probe a target toolchain and build the dogecoin native libraries",
	Long: `nativecfg probes the target toolchain (pointer width, 128-bit integer
support, byte order, compiler family), assembles the compilation plan for the
secp256k1 and dogecoinconsensus static libraries and drives the toolchain to
build them. Inputs come from the cargo build-script environment, an optional
nativecfg.toml, and the flags below, in increasing order of precedence.`,
	SilenceUsage: true,
}

// main registers the subcommands and global flags, then executes the root
// command. Any error exits with status 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)

	addGlobalFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addGlobalFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("target", "", "target triple (overrides TARGET)")
	flags.String("pointer-width", "", "target pointer width (overrides CARGO_CFG_TARGET_POINTER_WIDTH)")
	flags.String("endian", "", "target byte order little|big (overrides CARGO_CFG_TARGET_ENDIAN)")
	flags.Bool("external-secp", false, "link against an externally built secp256k1")
	flags.String("out-dir", "", "output directory (overrides OUT_DIR)")
	flags.String("cc-family", "auto", "compiler family (auto|msvc|clang|gnu)")
	flags.String("source-root", "", "vendored source tree (default "+defaultSourceRoot+")")
	flags.Int("jobs", 1, "parallel compiles per target")
	flags.Bool("print-commands", false, "echo every tool invocation to stderr")
	flags.String("message-format", "human", "diagnostic format (human|cargo)")
	flags.String("ui", "auto", "progress UI (auto|on|off)")
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("timings", false, "show stage timings")
	flags.String("trace", "", "trace output file (- for stderr, .ndjson for NDJSON)")
	flags.String("trace-level", "off", "trace level (off|phase|detail|debug)")
	flags.String("cpu-profile", "", "write a CPU profile of the build to this file")
	flags.String("mem-profile", "", "write a heap profile after the build to this file")
	flags.String("runtime-trace", "", "write a Go runtime trace of the build to this file")
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
