package buildpipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"nativecfg/internal/diag"
	"nativecfg/internal/plan"
	"nativecfg/internal/target"
	"nativecfg/internal/toolchain"
	"nativecfg/internal/trace"
)

// Artifact is a static archive produced by Invoke.
type Artifact struct {
	Target  string
	Archive string
	Objects []string
	Cpp     bool
}

// Invoker compiles and archives one target at a time.
type Invoker struct {
	Toolchain toolchain.Toolchain
	OutDir    string
	Triple    target.Triple
	// Jobs bounds parallel unit compiles inside a target. Values below 1 mean 1.
	Jobs     int
	Progress ProgressSink
	Bag      *diag.Bag
	Timings  *Timings
}

// Invoke compiles every source of t in order and archives the objects.
// Any failure aborts the target; nothing is archived from a partial compile.
func (inv *Invoker) Invoke(ctx context.Context, t plan.Target) (Artifact, error) {
	art := Artifact{Target: t.Name, Cpp: t.Cpp}
	if inv.Toolchain == nil {
		return art, stepError(StageCompile, t.Name, fmt.Errorf("no toolchain"))
	}
	if err := plan.Validate([]plan.Target{t}); err != nil {
		return art, stepError(StagePlan, t.Name, err)
	}

	ctx, span := trace.Start(ctx, trace.ScopeTarget, t.Name)
	defer span.End("")

	defines := append(plan.Defines(nil), t.Defines...)
	if inv.Triple.IsWindows() {
		defines.Set("WIN32", "1")
	}
	flags := inv.resolveFlags(ctx, t)

	objDir := filepath.Join(inv.OutDir, t.Name)
	if err := os.MkdirAll(objDir, 0o750); err != nil {
		return art, stepError(StageCompile, t.Name, fmt.Errorf("failed to create object dir: %w", err))
	}

	units := make([]toolchain.Unit, len(t.Sources))
	art.Objects = make([]string, len(t.Sources))
	for i, src := range t.Sources {
		stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
		obj := filepath.Join(objDir, inv.Toolchain.ObjectFile(strconv.Itoa(i)+"-"+stem))
		units[i] = toolchain.Unit{
			Source:   src,
			Object:   obj,
			Includes: t.Includes,
			Defines:  defines.Macros(),
			Flags:    flags,
			Cpp:      t.Cpp,
		}
		art.Objects[i] = obj
	}

	compileStart := time.Now()
	emitQueued(inv.Progress, t.Name, t.Sources)
	emit(inv.Progress, t.Name, "", StageCompile, StatusWorking, nil, 0)
	if err := inv.compileAll(ctx, t.Name, units); err != nil {
		emit(inv.Progress, t.Name, "", StageCompile, StatusError, err, 0)
		return art, stepError(StageCompile, t.Name, err)
	}
	compileElapsed := time.Since(compileStart)
	inv.Timings.Add(StageCompile, compileElapsed)
	emit(inv.Progress, t.Name, "", StageCompile, StatusDone, nil, compileElapsed)

	archiveStart := time.Now()
	emit(inv.Progress, t.Name, "", StageArchive, StatusWorking, nil, 0)
	art.Archive = filepath.Join(inv.OutDir, inv.Toolchain.ArchiveFile(t.Archive))
	out, err := inv.Toolchain.Archive(ctx, art.Archive, art.Objects)
	if err != nil {
		emit(inv.Progress, t.Name, "", StageArchive, StatusError, err, 0)
		return art, stepError(StageArchive, t.Name, err)
	}
	inv.toolOutput(t.Name, "archiver", out)
	elapsed := time.Since(archiveStart)
	inv.Timings.Add(StageArchive, elapsed)
	emit(inv.Progress, t.Name, "", StageArchive, StatusDone, nil, elapsed)

	span.Set("units", strconv.Itoa(len(units))).Set("archive", art.Archive)
	return art, nil
}

// resolveFlags drops the optional flags the compiler rejects. The order of
// the surviving flags is unchanged.
func (inv *Invoker) resolveFlags(ctx context.Context, t plan.Target) []string {
	flags := make([]string, 0, len(t.Flags))
	for _, f := range t.Flags {
		if f.Optional && !inv.Toolchain.SupportsFlag(ctx, f.Value, t.Cpp) {
			trace.Point(ctx, trace.ScopeTarget, "flag-skipped", f.Value)
			inv.report(diag.Diagnostic{
				Severity: diag.SevInfo,
				Code:     diag.ToolFlagSkipped,
				Target:   t.Name,
				Message:  fmt.Sprintf("compiler does not support %s; skipped", f.Value),
			})
			continue
		}
		flags = append(flags, f.Value)
	}
	return flags
}

func (inv *Invoker) compileAll(ctx context.Context, name string, units []toolchain.Unit) error {
	jobs := inv.Jobs
	if jobs < 1 {
		jobs = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	// Diagnostics are reported in source order regardless of completion order.
	outputs := make([]toolchain.Output, len(units))
	for i := range units {
		unit := units[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, span := trace.Start(gctx, trace.ScopeUnit, filepath.Base(unit.Source))
			emit(inv.Progress, name, unit.Source, StageCompile, StatusWorking, nil, 0)
			start := time.Now()
			out, err := inv.Toolchain.CompileUnit(gctx, unit)
			span.End(unit.Object)
			if err != nil {
				err = fmt.Errorf("%s: %w", unit.Source, err)
				emit(inv.Progress, name, unit.Source, StageCompile, StatusError, err, 0)
				return err
			}
			outputs[i] = out
			emit(inv.Progress, name, unit.Source, StageCompile, StatusDone, nil, time.Since(start))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i, out := range outputs {
		inv.toolOutput(name, units[i].Source, out)
	}
	return nil
}

// toolOutput turns stderr chatter from a successful step into a warning.
func (inv *Invoker) toolOutput(name, what string, out toolchain.Output) {
	text := strings.TrimSpace(out.Diagnostics)
	if text == "" {
		return
	}
	inv.report(diag.Diagnostic{
		Severity: diag.SevWarning,
		Code:     diag.WarnCompilerOutput,
		Target:   name,
		Message:  what + " produced output",
		Detail:   text,
	})
}

func (inv *Invoker) report(d diag.Diagnostic) {
	if inv.Bag != nil {
		inv.Bag.Add(d)
	}
}
