// Package buildpipeline drives the native build: probe the target, assemble
// the plan, then compile and archive each target in order.
package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nativecfg/internal/buildrecord"
	"nativecfg/internal/diag"
	"nativecfg/internal/plan"
	"nativecfg/internal/probe"
	"nativecfg/internal/target"
	"nativecfg/internal/toolchain"
	"nativecfg/internal/trace"
	"nativecfg/internal/version"
)

// Request configures a pipeline run.
type Request struct {
	// Env supplies every input; defaults to the process environment.
	Env    target.Env
	Layout plan.Layout
	// OutDir overrides OUT_DIR.
	OutDir string
	Jobs   int

	// Toolchain skips discovery when set.
	Toolchain toolchain.Toolchain
	Runner    toolchain.Runner
	LookPath  func(string) (string, error)
	// Family skips compiler family detection when not FamilyOther.
	Family toolchain.Family

	Progress ProgressSink
	// SkipRecord leaves no build record behind.
	SkipRecord bool
}

// Configuration is everything decided before the first compile.
type Configuration struct {
	Inputs    target.Inputs
	Toggles   plan.Toggles
	Toolchain toolchain.Toolchain
	Probe     probe.Result
	Targets   []plan.Target
	Bag       *diag.Bag
	Timings   Timings
}

// Result captures the outcome of Run.
type Result struct {
	Configuration
	OutDir     string
	Artifacts  []Artifact
	CppRuntime string
	RecordPath string
}

// Configure reads the inputs, finds the toolchain, probes it and assembles
// the plan. Nothing is written to disk.
func Configure(ctx context.Context, req *Request) (Configuration, error) {
	var cfg Configuration
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return cfg, fmt.Errorf("missing build request")
	}
	cfg.Bag = diag.NewBag()
	env := req.Env
	if env == nil {
		env = target.OSEnv{}
	}

	probeStart := time.Now()
	emit(req.Progress, "", "", StageProbe, StatusWorking, nil, 0)
	in, err := target.ReadInputs(env)
	if err != nil {
		emit(req.Progress, "", "", StageProbe, StatusError, err, 0)
		return cfg, stepError(StageProbe, "", err)
	}
	cfg.Inputs = in
	external, err := target.LookupBool(env, target.VarExternalSecp)
	if err != nil {
		emit(req.Progress, "", "", StageProbe, StatusError, err, 0)
		return cfg, stepError(StageProbe, "", err)
	}
	cfg.Toggles = plan.Toggles{ExternalCurve: external}

	tc := req.Toolchain
	if tc == nil {
		native, err := toolchain.Discover(ctx, toolchain.Options{
			Env:      env,
			Inputs:   in,
			Runner:   req.Runner,
			LookPath: req.LookPath,
			Family:   req.Family,
		})
		if err != nil {
			emit(req.Progress, "", "", StageProbe, StatusError, err, 0)
			return cfg, stepError(StageProbe, "", err)
		}
		tc = native
	}
	cfg.Toolchain = tc

	res, diags := probe.Probe(ctx, in, tc)
	cfg.Probe = res
	cfg.Bag.Add(diags...)
	cfg.Timings.Set(StageProbe, time.Since(probeStart))
	emit(req.Progress, "", "", StageProbe, StatusDone, nil, cfg.Timings.Duration(StageProbe))

	planStart := time.Now()
	cfg.Targets = plan.Assemble(res, cfg.Toggles, req.Layout)
	if err := plan.Validate(cfg.Targets); err != nil {
		emit(req.Progress, "", "", StagePlan, StatusError, err, 0)
		return cfg, stepError(StagePlan, "", err)
	}
	cfg.Timings.Set(StagePlan, time.Since(planStart))
	return cfg, nil
}

// Run configures the build and invokes every target strictly in order,
// stopping at the first failure. On success the build record is written
// into the output directory.
func Run(ctx context.Context, req *Request) (Result, error) {
	var result Result
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := trace.Start(ctx, trace.ScopeRun, "build")
	defer span.End("")

	cfg, err := Configure(ctx, req)
	result.Configuration = cfg
	if err != nil {
		return result, err
	}
	env := req.Env
	if env == nil {
		env = target.OSEnv{}
	}

	outDir, err := resolveOutDir(env, req.OutDir)
	if err != nil {
		return result, stepError(StageCompile, "", err)
	}
	result.OutDir = outDir

	inv := &Invoker{
		Toolchain: cfg.Toolchain,
		OutDir:    outDir,
		Triple:    cfg.Inputs.Triple,
		Jobs:      req.Jobs,
		Progress:  req.Progress,
		Bag:       result.Bag,
		Timings:   &result.Timings,
	}
	for _, t := range cfg.Targets {
		art, err := inv.Invoke(ctx, t)
		if err != nil {
			return result, err
		}
		result.Artifacts = append(result.Artifacts, art)
	}

	result.CppRuntime = toolchain.CppRuntime(env, cfg.Inputs.Triple)
	if req.SkipRecord {
		return result, nil
	}
	rec, err := Record(&result)
	if err != nil {
		return result, err
	}
	path, err := buildrecord.Write(outDir, rec)
	if err != nil {
		return result, fmt.Errorf("failed to write build record: %w", err)
	}
	result.RecordPath = path
	span.Set("record", path)
	return result, nil
}

// Record converts a finished run into its build record.
func Record(res *Result) (*buildrecord.Record, error) {
	if res == nil {
		return nil, errors.New("missing build result")
	}
	rec := &buildrecord.Record{
		Triple:        res.Inputs.Triple.String(),
		PointerWidth:  uint8(res.Probe.PointerWidth),
		BigEndian:     res.Probe.Endian == target.Big,
		Family:        res.Probe.Family.String(),
		HasInt128:     res.Probe.HasInt128,
		ExternalCurve: res.Toggles.ExternalCurve,
		LinkSearch:    res.OutDir,
		CppRuntime:    res.CppRuntime,
		Tool:          version.Version,
	}
	for _, t := range res.Targets {
		if t.Representation != plan.RepresentationUnset {
			rec.Representation = t.Representation.String()
		}
	}
	for _, art := range res.Artifacts {
		units, err := buildrecord.Units(len(art.Objects))
		if err != nil {
			return nil, err
		}
		rec.Archives = append(rec.Archives, buildrecord.Archive{
			Name:  art.Target,
			File:  art.Archive,
			Units: units,
			Cpp:   art.Cpp,
		})
	}
	if res.Bag != nil {
		for _, d := range res.Bag.Items() {
			if d.Severity == diag.SevWarning {
				rec.Warnings = append(rec.Warnings, d.Message)
			}
		}
	}
	return rec, nil
}

func resolveOutDir(env target.Env, override string) (string, error) {
	if dir := strings.TrimSpace(override); dir != "" {
		return dir, nil
	}
	if dir, ok := env.Lookup(target.VarOutDir); ok && strings.TrimSpace(dir) != "" {
		return dir, nil
	}
	return "", fmt.Errorf("%s: %w", target.VarOutDir, target.ErrMissingInput)
}
