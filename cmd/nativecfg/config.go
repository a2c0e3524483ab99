package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"nativecfg/internal/buildpipeline"
	"nativecfg/internal/diag"
	"nativecfg/internal/manifest"
	"nativecfg/internal/plan"
	"nativecfg/internal/target"
	"nativecfg/internal/toolchain"
)

const defaultSourceRoot = plan.DefaultRoot

// processEnv is the environment beneath flag overrides.
var processEnv target.Env = target.OSEnv{}

// globalOptions is the merged view of flags, environment and manifest.
type globalOptions struct {
	env           target.Env
	layout        plan.Layout
	family        toolchain.Family
	jobs          int
	printCommands bool
	format        diag.Format
	color         bool
	ui            uiMode
	timings       bool
	manifest      *manifest.Manifest
	stderr        io.Writer
}

// readGlobalOptions resolves every input. Precedence is flag, then process
// environment, then nativecfg.toml.
func readGlobalOptions(cmd *cobra.Command) (*globalOptions, error) {
	flags := cmd.Flags()
	opts := &globalOptions{stderr: cmd.ErrOrStderr()}

	m, _, err := manifest.Load(".")
	if err != nil {
		return nil, err
	}
	opts.manifest = m

	overrides := map[string]string{}
	for flag, name := range map[string]string{
		"target":        target.VarTarget,
		"pointer-width": target.VarPointerWidth,
		"endian":        target.VarEndian,
		"out-dir":       target.VarOutDir,
	} {
		if !flags.Changed(flag) {
			continue
		}
		value, err := flags.GetString(flag)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s flag: %w", flag, err)
		}
		overrides[name] = value
	}
	if flags.Changed("external-secp") {
		external, err := flags.GetBool("external-secp")
		if err != nil {
			return nil, fmt.Errorf("failed to get external-secp flag: %w", err)
		}
		overrides[target.VarExternalSecp] = strconv.FormatBool(external)
	}
	opts.env = target.Overlay{
		Values: overrides,
		Base:   target.Chain{processEnv, manifestDefaults(m)},
	}

	opts.layout.Root = m.SourceRoot()
	if flags.Changed("source-root") {
		root, err := flags.GetString("source-root")
		if err != nil {
			return nil, fmt.Errorf("failed to get source-root flag: %w", err)
		}
		opts.layout.Root = strings.TrimSpace(root)
	}

	familyStr, err := flags.GetString("cc-family")
	if err != nil {
		return nil, fmt.Errorf("failed to get cc-family flag: %w", err)
	}
	if v := strings.TrimSpace(familyStr); v != "" && v != "auto" {
		if opts.family, err = toolchain.ParseFamily(v); err != nil {
			return nil, err
		}
	}

	opts.jobs = 1
	if m != nil && m.Config.Build.Jobs != nil {
		opts.jobs = *m.Config.Build.Jobs
	}
	if flags.Changed("jobs") {
		jobs, err := flags.GetInt("jobs")
		if err != nil {
			return nil, fmt.Errorf("failed to get jobs flag: %w", err)
		}
		if jobs < 1 {
			return nil, fmt.Errorf("invalid --jobs value %d (expected at least 1)", jobs)
		}
		opts.jobs = jobs
	}

	if opts.printCommands, err = flags.GetBool("print-commands"); err != nil {
		return nil, fmt.Errorf("failed to get print-commands flag: %w", err)
	}
	if opts.timings, err = flags.GetBool("timings"); err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}

	formatStr, err := flags.GetString("message-format")
	if err != nil {
		return nil, fmt.Errorf("failed to get message-format flag: %w", err)
	}
	if opts.format, err = diag.ParseFormat(formatStr); err != nil {
		return nil, err
	}

	uiStr, err := flags.GetString("ui")
	if err != nil {
		return nil, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if opts.ui, err = readUIMode(uiStr); err != nil {
		return nil, err
	}

	colorStr, err := flags.GetString("color")
	if err != nil {
		return nil, fmt.Errorf("failed to get color flag: %w", err)
	}
	if opts.color, err = readColorMode(colorStr); err != nil {
		return nil, err
	}
	color.NoColor = !opts.color
	return opts, nil
}

// manifestDefaults exposes the manifest as the lowest-precedence inputs.
func manifestDefaults(m *manifest.Manifest) target.MapEnv {
	env := target.MapEnv{}
	if m == nil {
		return env
	}
	if dir := m.OutDir(); dir != "" {
		env[target.VarOutDir] = dir
	}
	if m.Config.Build.ExternalSecp != nil {
		env[target.VarExternalSecp] = strconv.FormatBool(*m.Config.Build.ExternalSecp)
	}
	return env
}

func readColorMode(value string) (bool, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return isTerminal(os.Stderr) && os.Getenv("NO_COLOR") == "", nil
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}

func (o *globalOptions) request() *buildpipeline.Request {
	runner := &toolchain.ExecRunner{}
	if o.printCommands {
		runner.Echo = o.stderr
	}
	return &buildpipeline.Request{
		Env:    o.env,
		Layout: o.layout,
		Jobs:   o.jobs,
		Runner: runner,
		Family: o.family,
	}
}

// outDir resolves the output directory the same way a build would.
func (o *globalOptions) outDir() (string, error) {
	dir, ok := o.env.Lookup(target.VarOutDir)
	if !ok || strings.TrimSpace(dir) == "" {
		return "", fmt.Errorf("%s is not set; pass --out-dir or set [output].dir in %s", target.VarOutDir, manifest.FileName)
	}
	return dir, nil
}

// printDiagnostics writes diagnostics the way --message-format asks. Cargo
// output goes to stdout where cargo reads it; info notes are only shown to
// humans.
func (o *globalOptions) printDiagnostics(stdout io.Writer, bag *diag.Bag) error {
	if bag == nil {
		return nil
	}
	p := diag.Printer{Out: o.stderr, Format: o.format, Color: o.color}
	if o.format == diag.FormatCargo {
		p.Out = stdout
	}
	for _, d := range bag.Items() {
		if o.format == diag.FormatCargo && d.Severity == diag.SevInfo {
			continue
		}
		if err := p.Print(d); err != nil {
			return err
		}
	}
	return nil
}

// printReportDiagnostics is printDiagnostics for commands that can emit a
// JSON document on stdout. With --format json cargo lines go to stderr so
// stdout stays parseable.
func (o *globalOptions) printReportDiagnostics(stdout io.Writer, outputFormat string, bag *diag.Bag) error {
	if outputFormat == "json" {
		stdout = o.stderr
	}
	return o.printDiagnostics(stdout, bag)
}
