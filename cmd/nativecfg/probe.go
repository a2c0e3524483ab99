package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"nativecfg/internal/buildpipeline"
	"nativecfg/internal/toolchain"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Show what the capability probe finds for the target",
	Args:  cobra.NoArgs,
	RunE:  runProbe,
}

func init() {
	probeCmd.Flags().String("format", "text", "output format (text|json)")
}

type probeReport struct {
	Triple       string            `json:"triple"`
	Host         string            `json:"host"`
	PointerWidth string            `json:"pointer_width"`
	Endian       string            `json:"endian"`
	Family       string            `json:"family"`
	HasInt128    bool              `json:"has_int128"`
	Tools        map[string]string `json:"tools,omitempty"`
}

func runProbe(cmd *cobra.Command, _ []string) error {
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
	report := newProbeReport(cfg)
	if format == "json" {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	return renderProbeText(cmd.OutOrStdout(), report)
}

func newProbeReport(cfg buildpipeline.Configuration) probeReport {
	report := probeReport{
		Triple:       cfg.Inputs.Triple.String(),
		Host:         cfg.Inputs.Host.String(),
		PointerWidth: cfg.Probe.PointerWidth.String(),
		Endian:       cfg.Probe.Endian.String(),
		Family:       cfg.Probe.Family.String(),
		HasInt128:    cfg.Probe.HasInt128,
	}
	if native, ok := cfg.Toolchain.(*toolchain.Native); ok {
		report.Tools = map[string]string{
			"cc":  native.CC.String(),
			"cxx": native.CXX.String(),
			"ar":  native.AR.String(),
		}
	}
	return report
}

func renderProbeText(out io.Writer, r probeReport) error {
	var b strings.Builder
	fmt.Fprintf(&b, "target:        %s\n", r.Triple)
	if r.Host != r.Triple {
		fmt.Fprintf(&b, "host:          %s\n", r.Host)
	}
	fmt.Fprintf(&b, "pointer width: %s\n", r.PointerWidth)
	fmt.Fprintf(&b, "endian:        %s\n", r.Endian)
	fmt.Fprintf(&b, "family:        %s\n", r.Family)
	fmt.Fprintf(&b, "int128:        %t\n", r.HasInt128)
	for _, kind := range []string{"cc", "cxx", "ar"} {
		if tool, ok := r.Tools[kind]; ok {
			fmt.Fprintf(&b, "%-14s %s\n", kind+":", tool)
		}
	}
	_, err := io.WriteString(out, b.String())
	return err
}

func readOutputFormat(cmd *cobra.Command) (string, error) {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return "", fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "text", "json":
		return format, nil
	default:
		return "", fmt.Errorf("unsupported format %q (must be text or json)", format)
	}
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
