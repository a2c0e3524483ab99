package toolchain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"nativecfg/internal/target"
)

// Macro is a preprocessor definition. An empty Value defines the name
// without a value (-DNAME).
type Macro struct {
	Name  string
	Value string
}

func (m Macro) String() string {
	if m.Value == "" {
		return m.Name
	}
	return m.Name + "=" + m.Value
}

// Unit is one translation unit to compile into an object file.
type Unit struct {
	Source   string
	Object   string
	Includes []string
	Defines  []Macro
	Flags    []string
	Cpp      bool
}

// Trial is a throwaway compile used to test a toolchain capability.
type Trial struct {
	Name   string
	Source []byte
	Cpp    bool
	Flags  []string
}

// Toolchain is everything the build needs from a compiler/archiver pair.
type Toolchain interface {
	Family() Family
	TryCompile(ctx context.Context, trial Trial) error
	SupportsFlag(ctx context.Context, flag string, cpp bool) bool
	CompileUnit(ctx context.Context, unit Unit) (Output, error)
	Archive(ctx context.Context, archive string, objects []string) (Output, error)
	ArchiveFile(name string) string
	ObjectFile(stem string) string
}

// Native drives real executables found by Discover.
type Native struct {
	CC  Tool
	CXX Tool
	AR  Tool

	family   Family
	triple   target.Triple
	runner   Runner
	defaults []string
	cflags   []string
	cxxflags []string
}

var _ Toolchain = (*Native)(nil)

// Family implements Toolchain.
func (n *Native) Family() Family { return n.family }

// Triple returns the target the tools were selected for.
func (n *Native) Triple() target.Triple { return n.triple }

// TryCompile implements Toolchain. The source and object are written to a
// temporary directory removed before returning.
func (n *Native) TryCompile(ctx context.Context, trial Trial) error {
	dir, err := os.MkdirTemp("", "nativecfg-trial-")
	if err != nil {
		return fmt.Errorf("failed to create trial dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	ext := ".c"
	if trial.Cpp {
		ext = ".cpp"
	}
	name := trial.Name
	if name == "" {
		name = "trial"
	}
	src := filepath.Join(dir, name+ext)
	if err := os.WriteFile(src, trial.Source, 0o600); err != nil {
		return fmt.Errorf("failed to write trial source: %w", err)
	}
	_, err = n.CompileUnit(ctx, Unit{
		Source: src,
		Object: filepath.Join(dir, n.ObjectFile(name)),
		Flags:  trial.Flags,
		Cpp:    trial.Cpp,
	})
	return err
}

var flagCheckSource = []byte("int main(void) { return 0; }\n")

// SupportsFlag implements Toolchain by compiling an empty program with the
// flag and warnings promoted to errors.
func (n *Native) SupportsFlag(ctx context.Context, flag string, cpp bool) bool {
	werror := "-Werror"
	if n.family == FamilyMSVC {
		werror = "/WX"
	}
	err := n.TryCompile(ctx, Trial{
		Name:   "flag_check",
		Source: flagCheckSource,
		Cpp:    cpp,
		Flags:  []string{werror, flag},
	})
	return err == nil
}

// CompileUnit implements Toolchain.
func (n *Native) CompileUnit(ctx context.Context, unit Unit) (Output, error) {
	if unit.Source == "" || unit.Object == "" {
		return Output{}, errors.New("compile unit needs a source and an object path")
	}
	tool := n.CC
	if unit.Cpp {
		tool = n.CXX
	}
	args := make([]string, 0, len(tool.Args)+len(n.defaults)+len(unit.Includes)+len(unit.Defines)+len(unit.Flags)+6)
	args = append(args, tool.Args...)
	args = append(args, n.defaults...)
	if unit.Cpp {
		args = append(args, n.cxxflags...)
	} else {
		args = append(args, n.cflags...)
	}
	args = append(args, compileArgs(n.family, unit)...)
	return n.runner.Run(ctx, Command{Name: tool.Path, Args: args})
}

// compileArgs renders includes, defines and flags in the order given,
// followed by the source and object.
func compileArgs(family Family, unit Unit) []string {
	var args []string
	if family.gccLike() {
		for _, inc := range unit.Includes {
			args = append(args, "-I", inc)
		}
		for _, def := range unit.Defines {
			args = append(args, "-D"+def.String())
		}
		args = append(args, unit.Flags...)
		return append(args, "-o", unit.Object, "-c", unit.Source)
	}
	if unit.Cpp {
		args = append(args, "/EHsc")
	}
	for _, inc := range unit.Includes {
		args = append(args, "/I"+inc)
	}
	for _, def := range unit.Defines {
		args = append(args, "/D"+def.String())
	}
	args = append(args, unit.Flags...)
	return append(args, "/Fo"+unit.Object, "/c", unit.Source)
}

// Archive implements Toolchain. An existing archive is replaced, never
// appended to.
func (n *Native) Archive(ctx context.Context, archive string, objects []string) (Output, error) {
	if len(objects) == 0 {
		return Output{}, fmt.Errorf("archive %s: no objects", filepath.Base(archive))
	}
	if err := os.Remove(archive); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Output{}, fmt.Errorf("failed to remove stale archive: %w", err)
	}
	args := append([]string{}, n.AR.Args...)
	if n.family == FamilyMSVC {
		args = append(args, "/nologo", "/OUT:"+archive)
	} else {
		args = append(args, "crs", archive)
	}
	args = append(args, objects...)
	return n.runner.Run(ctx, Command{Name: n.AR.Path, Args: args})
}

// ArchiveFile implements Toolchain.
func (n *Native) ArchiveFile(name string) string {
	if n.family == FamilyMSVC {
		return name + ".lib"
	}
	return "lib" + name + ".a"
}

// ObjectFile implements Toolchain.
func (n *Native) ObjectFile(stem string) string {
	if n.family == FamilyMSVC {
		return stem + ".obj"
	}
	return stem + ".o"
}
