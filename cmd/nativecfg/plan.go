package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"nativecfg/internal/buildpipeline"
	"nativecfg/internal/plan"
	"nativecfg/internal/toolchain"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the compilation plan without building",
	Args:  cobra.NoArgs,
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().String("format", "text", "output format (text|json)")
}

type planTarget struct {
	plan.Target
	File           string `json:"file"`
	Representation string `json:"representation,omitempty"`
	Flavor         string `json:"flavor,omitempty"`
}

type planReport struct {
	Probe   probeReport  `json:"probe"`
	Targets []planTarget `json:"targets"`
}

func runPlan(cmd *cobra.Command, _ []string) error {
	format, err := readOutputFormat(cmd)
	if err != nil {
		return err
	}
	opts, err := readGlobalOptions(cmd)
	if err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg, err := buildpipeline.Configure(cmd.Context(), opts.request())
	if printErr := opts.printReportDiagnostics(cmd.OutOrStdout(), format, cfg.Bag); printErr != nil {
		return printErr
	}
	if err != nil {
		return err
	}
	report := newPlanReport(cfg)
	if format == "json" {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	return renderPlanText(cmd.OutOrStdout(), report.Targets)
}

func newPlanReport(cfg buildpipeline.Configuration) planReport {
	report := planReport{Probe: newProbeReport(cfg)}
	for _, t := range cfg.Targets {
		report.Targets = append(report.Targets, describeTarget(t, cfg.Toolchain))
	}
	return report
}

func describeTarget(t plan.Target, tc toolchain.Toolchain) planTarget {
	pt := planTarget{Target: t, File: t.Archive}
	if tc != nil {
		pt.File = tc.ArchiveFile(t.Archive)
	}
	if t.Representation != plan.RepresentationUnset {
		pt.Representation = t.Representation.String()
	}
	if t.Cpp {
		pt.Flavor = t.Flavor.String()
	}
	return pt
}

func renderPlanText(out io.Writer, targets []planTarget) error {
	var b strings.Builder
	for i, t := range targets {
		if i > 0 {
			b.WriteString("\n")
		}
		lang := "C"
		if t.Cpp {
			lang = "C++"
		}
		fmt.Fprintf(&b, "%s -> %s (%s", t.Name, t.File, lang)
		if t.Representation != "" {
			fmt.Fprintf(&b, ", %s representation", t.Representation)
		}
		if t.Flavor != "" {
			fmt.Fprintf(&b, ", %s flavor", t.Flavor)
		}
		b.WriteString(")\n")

		b.WriteString("  includes:\n")
		for _, inc := range t.Includes {
			fmt.Fprintf(&b, "    %s\n", inc)
		}
		b.WriteString("  defines:\n")
		for _, m := range t.Defines.Macros() {
			fmt.Fprintf(&b, "    %s\n", m)
		}
		b.WriteString("  flags:\n")
		for _, f := range t.Flags {
			if f.Optional {
				fmt.Fprintf(&b, "    %s (if supported)\n", f.Value)
			} else {
				fmt.Fprintf(&b, "    %s\n", f.Value)
			}
		}
		fmt.Fprintf(&b, "  sources (%d):\n", len(t.Sources))
		for _, src := range t.Sources {
			fmt.Fprintf(&b, "    %s\n", src)
		}
	}
	_, err := io.WriteString(out, b.String())
	return err
}
