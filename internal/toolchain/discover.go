package toolchain

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"nativecfg/internal/target"
)

// Tool is an executable plus any leading arguments it was configured with
// (CC="ccache gcc" or CC="gcc -m32").
type Tool struct {
	Path string
	Args []string
	// Source names the variable the tool came from, or "default".
	Source string
}

func (t Tool) String() string {
	if len(t.Args) == 0 {
		return t.Path
	}
	return t.Path + " " + strings.Join(t.Args, " ")
}

// Options configures tool discovery.
type Options struct {
	Env    target.Env
	Inputs target.Inputs
	Runner Runner
	// LookPath resolves executables; defaults to exec.LookPath.
	LookPath func(string) (string, error)
	// Family skips detection when set to anything but FamilyOther.
	Family Family
}

// Discover selects the C compiler, C++ compiler and archiver for the target
// (never the host, unless they are the same) and detects the compiler family.
func Discover(ctx context.Context, opts Options) (*Native, error) {
	if opts.Env == nil {
		opts.Env = target.OSEnv{}
	}
	if opts.Runner == nil {
		opts.Runner = &ExecRunner{}
	}
	lookPath := opts.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	in := opts.Inputs
	defCC, defCXX, defAR := defaultTools(in)

	cc, err := selectTool(opts.Env, in, "CC", defCC, lookPath)
	if err != nil {
		return nil, err
	}
	cxx, err := selectTool(opts.Env, in, "CXX", defCXX, lookPath)
	if err != nil {
		return nil, err
	}
	ar, err := selectTool(opts.Env, in, "AR", defAR, lookPath)
	if err != nil {
		return nil, err
	}

	n := &Native{
		CC:       cc,
		CXX:      cxx,
		AR:       ar,
		triple:   in.Triple,
		runner:   opts.Runner,
		cflags:   envFlags(opts.Env, in, "CFLAGS"),
		cxxflags: envFlags(opts.Env, in, "CXXFLAGS"),
	}
	n.family = opts.Family
	if n.family == FamilyOther {
		n.family = detectFamily(ctx, opts.Runner, cc)
	}
	if n.defaults, err = defaultFlags(opts.Env, n.family, in.Triple); err != nil {
		return nil, err
	}
	return n, nil
}

func defaultTools(in target.Inputs) (cc, cxx, ar string) {
	switch {
	case in.Triple.IsMSVC():
		return "cl.exe", "cl.exe", "lib.exe"
	case in.Cross():
		prefix := in.Triple.Prefix()
		return prefix + "-gcc", prefix + "-g++", prefix + "-ar"
	default:
		return "cc", "c++", "ar"
	}
}

// toolVars lists the variables consulted for kind, most specific first.
func toolVars(in target.Inputs, kind string) []string {
	vars := []string{
		kind + "_" + in.Triple.Raw,
		kind + "_" + in.Triple.EnvKey(),
	}
	if in.Cross() {
		vars = append(vars, "TARGET_"+kind)
	} else {
		vars = append(vars, "HOST_"+kind)
	}
	return append(vars, kind)
}

func selectTool(env target.Env, in target.Inputs, kind, fallback string, lookPath func(string) (string, error)) (Tool, error) {
	for _, name := range toolVars(in, kind) {
		value, ok := env.Lookup(name)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		fields := strings.Fields(value)
		path, err := lookPath(fields[0])
		if err != nil {
			return Tool{}, fmt.Errorf("%s=%q: %s not found: %w", name, value, fields[0], err)
		}
		return Tool{Path: path, Args: fields[1:], Source: name}, nil
	}
	path, err := lookPath(fallback)
	if err != nil {
		return Tool{}, fmt.Errorf("%s not found for target %s; set %s to the target's %s: %w", fallback, in.Triple, kind, strings.ToLower(kind), err)
	}
	return Tool{Path: path, Source: "default"}, nil
}

func envFlags(env target.Env, in target.Inputs, kind string) []string {
	var flags []string
	for _, name := range toolVars(in, kind) {
		if value, ok := env.Lookup(name); ok {
			flags = append(flags, strings.Fields(value)...)
			break
		}
	}
	return flags
}

// defaultFlags mirrors the optimisation and debug settings a cargo build
// script receives through OPT_LEVEL and DEBUG.
// A DEBUG value that is not a boolean is an input error.
func defaultFlags(env target.Env, family Family, triple target.Triple) ([]string, error) {
	opt := strings.TrimSpace(target.Get(env, "OPT_LEVEL"))
	debug := false
	if v, ok := env.Lookup("DEBUG"); ok && strings.TrimSpace(v) != "" {
		var err error
		if debug, err = target.ParseBool("DEBUG", v); err != nil {
			return nil, err
		}
	}
	var flags []string
	if family == FamilyMSVC {
		flags = append(flags, "/nologo", "/MD")
		switch opt {
		case "", "0":
		case "s", "z":
			flags = append(flags, "/O1")
		default:
			flags = append(flags, "/O2")
		}
		if debug {
			flags = append(flags, "/Z7")
		}
		return flags, nil
	}
	if opt != "" {
		flags = append(flags, "-O"+opt)
	}
	flags = append(flags, "-ffunction-sections", "-fdata-sections")
	if !triple.IsWindows() {
		flags = append(flags, "-fPIC")
	}
	if debug {
		flags = append(flags, "-g")
	}
	return flags, nil
}
