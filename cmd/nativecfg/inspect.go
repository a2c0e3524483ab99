package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"nativecfg/internal/buildrecord"
	"nativecfg/internal/diag"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [record]",
	Short: "Show the build record of a finished build",
	Long: `Read the build record written by "nativecfg build". Without an argument
the record in the output directory is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().String("format", "text", "output format (text|json)")
}

func runInspect(cmd *cobra.Command, args []string) error {
	format, err := readOutputFormat(cmd)
	if err != nil {
		return err
	}
	opts, err := readGlobalOptions(cmd)
	if err != nil {
		return err
	}
	path := ""
	if len(args) > 0 && args[0] != "" {
		path = args[0]
	} else {
		dir, err := opts.outDir()
		if err != nil {
			return err
		}
		path = buildrecord.Path(dir)
	}
	rec, err := buildrecord.Read(path)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch {
	case opts.format == diag.FormatCargo:
		return printDirectives(out, rec)
	case format == "json":
		return writeJSON(out, rec)
	default:
		return renderRecordText(out, rec)
	}
}

func renderRecordText(out io.Writer, rec *buildrecord.Record) error {
	var b strings.Builder
	endian := "little"
	if rec.BigEndian {
		endian = "big"
	}
	fmt.Fprintf(&b, "target:         %s\n", rec.Triple)
	fmt.Fprintf(&b, "pointer width:  %d\n", rec.PointerWidth)
	fmt.Fprintf(&b, "endian:         %s\n", endian)
	fmt.Fprintf(&b, "family:         %s\n", rec.Family)
	fmt.Fprintf(&b, "int128:         %t\n", rec.HasInt128)
	if rec.Representation != "" {
		fmt.Fprintf(&b, "representation: %s\n", rec.Representation)
	}
	if rec.ExternalCurve {
		b.WriteString("secp256k1:      external\n")
	}
	fmt.Fprintf(&b, "link search:    %s\n", rec.LinkSearch)
	if rec.CppRuntime != "" && rec.HasCpp() {
		fmt.Fprintf(&b, "c++ runtime:    %s\n", rec.CppRuntime)
	}
	b.WriteString("archives:\n")
	for _, a := range rec.Archives {
		fmt.Fprintf(&b, "  %s  %s (%d units)\n", a.Name, a.File, a.Units)
	}
	if len(rec.Warnings) > 0 {
		b.WriteString("warnings:\n")
		for _, w := range rec.Warnings {
			fmt.Fprintf(&b, "  %s\n", w)
		}
	}
	if rec.Tool != "" {
		fmt.Fprintf(&b, "built by:       nativecfg %s\n", rec.Tool)
	}
	_, err := io.WriteString(out, b.String())
	return err
}
