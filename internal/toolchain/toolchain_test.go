package toolchain

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"nativecfg/internal/target"
)

type recordingRunner struct {
	commands []Command
	stdout   string
	fail     func(Command) error
}

func (r *recordingRunner) Run(_ context.Context, c Command) (Output, error) {
	r.commands = append(r.commands, c)
	if r.fail != nil {
		if err := r.fail(c); err != nil {
			return Output{}, err
		}
	}
	return Output{Stdout: r.stdout}, nil
}

func fakeLookPath(known ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, k := range known {
			if k == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", errors.New("executable file not found in $PATH")
	}
}

func mustInputs(t *testing.T, triple, host string) target.Inputs {
	t.Helper()
	env := target.MapEnv{
		target.VarPointerWidth: "64",
		target.VarEndian:       "little",
		target.VarTarget:       triple,
	}
	if host != "" {
		env[target.VarHost] = host
	}
	in, err := target.ReadInputs(env)
	if err != nil {
		t.Fatalf("ReadInputs: %v", err)
	}
	return in
}

func TestDiscoverNativeDefaults(t *testing.T) {
	runner := &recordingRunner{stdout: "# 1 \"detect_family.c\"\nnativecfg_family_gnu\n"}
	n, err := Discover(context.Background(), Options{
		Env:      target.MapEnv{},
		Inputs:   mustInputs(t, "x86_64-unknown-linux-gnu", ""),
		Runner:   runner,
		LookPath: fakeLookPath("cc", "c++", "ar"),
	})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if n.CC.Path != "/usr/bin/cc" || n.CXX.Path != "/usr/bin/c++" || n.AR.Path != "/usr/bin/ar" {
		t.Fatalf("tools = %s / %s / %s", n.CC, n.CXX, n.AR)
	}
	if n.Family() != FamilyGNU {
		t.Fatalf("Family() = %v, want gnu", n.Family())
	}
	if len(runner.commands) != 1 || !contains(runner.commands[0].Args, "-E") {
		t.Fatalf("expected one preprocessor run, got %v", runner.commands)
	}
}

func TestDiscoverCrossUsesTargetPrefix(t *testing.T) {
	runner := &recordingRunner{stdout: "nativecfg_family_gnu\n"}
	n, err := Discover(context.Background(), Options{
		Env:      target.MapEnv{},
		Inputs:   mustInputs(t, "aarch64-unknown-linux-gnu", "x86_64-unknown-linux-gnu"),
		Runner:   runner,
		LookPath: fakeLookPath("aarch64-linux-gnu-gcc", "aarch64-linux-gnu-g++", "aarch64-linux-gnu-ar", "cc"),
	})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if n.CC.Path != "/usr/bin/aarch64-linux-gnu-gcc" {
		t.Fatalf("CC = %s, want the cross compiler", n.CC)
	}
	if n.AR.Path != "/usr/bin/aarch64-linux-gnu-ar" {
		t.Fatalf("AR = %s, want the cross archiver", n.AR)
	}
}

func TestDiscoverVariablePrecedence(t *testing.T) {
	env := target.MapEnv{
		"CC":                           "gcc",
		"TARGET_CC":                    "clang",
		"CC_aarch64_unknown_linux_gnu": "ccache aarch64-linux-gnu-gcc",
		"CXX":                          "g++",
		"AR":                           "llvm-ar",
	}
	n, err := Discover(context.Background(), Options{
		Env:      env,
		Inputs:   mustInputs(t, "aarch64-unknown-linux-gnu", "x86_64-unknown-linux-gnu"),
		Runner:   &recordingRunner{},
		LookPath: fakeLookPath("gcc", "clang", "ccache", "g++", "llvm-ar"),
	})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if n.CC.Path != "/usr/bin/ccache" || !reflect.DeepEqual(n.CC.Args, []string{"aarch64-linux-gnu-gcc"}) {
		t.Fatalf("CC = %s, want ccache wrapper from the per-target variable", n.CC)
	}
	if n.CC.Source != "CC_aarch64_unknown_linux_gnu" {
		t.Fatalf("CC.Source = %q", n.CC.Source)
	}
	if n.CXX.Path != "/usr/bin/g++" || n.AR.Path != "/usr/bin/llvm-ar" {
		t.Fatalf("CXX/AR = %s / %s", n.CXX, n.AR)
	}
	// Preprocessor printed nothing recognisable; the name does not identify it either.
	if n.Family() != FamilyOther {
		t.Fatalf("Family() = %v, want other", n.Family())
	}
}

func TestDiscoverMSVCSkipsPreprocessor(t *testing.T) {
	runner := &recordingRunner{}
	n, err := Discover(context.Background(), Options{
		Env:      target.MapEnv{},
		Inputs:   mustInputs(t, "x86_64-pc-windows-msvc", ""),
		Runner:   runner,
		LookPath: fakeLookPath("cl.exe", "lib.exe"),
	})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if n.Family() != FamilyMSVC {
		t.Fatalf("Family() = %v, want msvc", n.Family())
	}
	if len(runner.commands) != 0 {
		t.Fatalf("unexpected commands: %v", runner.commands)
	}
	if got := n.ArchiveFile("secp256k1"); got != "secp256k1.lib" {
		t.Fatalf("ArchiveFile = %q", got)
	}
}

func TestDiscoverMissingCompiler(t *testing.T) {
	_, err := Discover(context.Background(), Options{
		Env:      target.MapEnv{},
		Inputs:   mustInputs(t, "x86_64-unknown-linux-gnu", ""),
		Runner:   &recordingRunner{},
		LookPath: fakeLookPath(),
	})
	if err == nil || !strings.Contains(err.Error(), "cc not found") {
		t.Fatalf("err = %v, want missing cc", err)
	}
}

func TestCompileArgsOrderGNU(t *testing.T) {
	unit := Unit{
		Source:   "src/a.c",
		Object:   "out/a.o",
		Includes: []string{"inc/one", "inc/two"},
		Defines:  []Macro{{Name: "B", Value: "1"}, {Name: "A"}},
		Flags:    []string{"-std=c++17", "-Wno-unused-parameter"},
	}
	got := compileArgs(FamilyGNU, unit)
	want := []string{"-I", "inc/one", "-I", "inc/two", "-DB=1", "-DA", "-std=c++17", "-Wno-unused-parameter", "-o", "out/a.o", "-c", "src/a.c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("compileArgs = %v, want %v", got, want)
	}
}

func TestCompileArgsOrderMSVC(t *testing.T) {
	unit := Unit{
		Source:   "src/a.cpp",
		Object:   "out/a.obj",
		Includes: []string{"inc"},
		Defines:  []Macro{{Name: "WIN32", Value: "1"}},
		Flags:    []string{"/std:c++17", "/wd4100"},
		Cpp:      true,
	}
	got := compileArgs(FamilyMSVC, unit)
	want := []string{"/EHsc", "/Iinc", "/DWIN32=1", "/std:c++17", "/wd4100", "/Foout/a.obj", "/c", "src/a.cpp"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("compileArgs = %v, want %v", got, want)
	}
}

func TestNativeCompileUsesCXXForCpp(t *testing.T) {
	runner := &recordingRunner{}
	n := &Native{
		CC:     Tool{Path: "gcc"},
		CXX:    Tool{Path: "g++"},
		AR:     Tool{Path: "ar"},
		family: FamilyGNU,
		runner: runner,
	}
	if _, err := n.CompileUnit(context.Background(), Unit{Source: "a.cpp", Object: "a.o", Cpp: true}); err != nil {
		t.Fatalf("CompileUnit: %v", err)
	}
	if _, err := n.CompileUnit(context.Background(), Unit{Source: "b.c", Object: "b.o"}); err != nil {
		t.Fatalf("CompileUnit: %v", err)
	}
	if runner.commands[0].Name != "g++" || runner.commands[1].Name != "gcc" {
		t.Fatalf("commands = %v", runner.commands)
	}
}

func TestNativeArchive(t *testing.T) {
	runner := &recordingRunner{}
	n := &Native{AR: Tool{Path: "ar"}, family: FamilyClang, runner: runner}
	archive := filepath.Join(t.TempDir(), n.ArchiveFile("dogecoinconsensus"))
	if _, err := n.Archive(context.Background(), archive, []string{"a.o", "b.o"}); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	want := []string{"crs", archive, "a.o", "b.o"}
	if !reflect.DeepEqual(runner.commands[0].Args, want) {
		t.Fatalf("archive args = %v, want %v", runner.commands[0].Args, want)
	}
	if _, err := n.Archive(context.Background(), archive, nil); err == nil {
		t.Fatalf("Archive with no objects succeeded")
	}
}

func TestNativeSupportsFlag(t *testing.T) {
	runner := &recordingRunner{fail: func(c Command) error {
		if contains(c.Args, "-Wno-bogus") {
			return errors.New("cc: unknown warning option")
		}
		return nil
	}}
	n := &Native{CC: Tool{Path: "cc"}, CXX: Tool{Path: "c++"}, family: FamilyClang, runner: runner}
	if !n.SupportsFlag(context.Background(), "-Wno-unused-function", false) {
		t.Fatalf("expected -Wno-unused-function to be supported")
	}
	if n.SupportsFlag(context.Background(), "-Wno-bogus", false) {
		t.Fatalf("expected -Wno-bogus to be rejected")
	}
	if !contains(runner.commands[0].Args, "-Werror") {
		t.Fatalf("flag check did not promote warnings: %v", runner.commands[0].Args)
	}
}

func TestFamilyFromName(t *testing.T) {
	cases := []struct {
		path string
		want Family
	}{
		{"/usr/bin/clang", FamilyClang},
		{"/usr/bin/x86_64-linux-gnu-gcc-12", FamilyGNU},
		{`C:\VS\bin\cl.exe`, FamilyMSVC},
		{"/opt/llvm/bin/clang-cl", FamilyMSVC},
		{"/usr/bin/cc", FamilyOther},
	}
	for _, tc := range cases {
		got, _ := familyFromName(tc.path)
		if got != tc.want {
			t.Fatalf("familyFromName(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestParseFamilyRoundTrip(t *testing.T) {
	for _, fam := range []Family{FamilyOther, FamilyMSVC, FamilyClang, FamilyGNU} {
		got, err := ParseFamily(fam.String())
		if err != nil || got != fam {
			t.Fatalf("ParseFamily(%q) = %v, %v", fam.String(), got, err)
		}
	}
	if _, err := ParseFamily("icc"); err == nil {
		t.Fatalf("ParseFamily(icc) succeeded")
	}
}

func TestCppRuntime(t *testing.T) {
	cases := []struct {
		triple string
		want   string
	}{
		{"x86_64-unknown-linux-gnu", "stdc++"},
		{"x86_64-pc-windows-msvc", ""},
		{"aarch64-apple-darwin", "c++"},
		{"x86_64-unknown-freebsd", "c++"},
		{"aarch64-linux-android", "c++_shared"},
	}
	for _, tc := range cases {
		triple, err := target.ParseTriple(tc.triple)
		if err != nil {
			t.Fatalf("ParseTriple(%q): %v", tc.triple, err)
		}
		if got := CppRuntime(target.MapEnv{}, triple); got != tc.want {
			t.Fatalf("CppRuntime(%q) = %q, want %q", tc.triple, got, tc.want)
		}
	}
	triple, _ := target.ParseTriple("x86_64-unknown-linux-gnu")
	if got := CppRuntime(target.MapEnv{"CXXSTDLIB": "c++"}, triple); got != "c++" {
		t.Fatalf("CppRuntime with override = %q", got)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestEmbeddedDetectSource(t *testing.T) {
	for _, marker := range []string{markerClang, markerGNU, markerMSVC} {
		if !strings.Contains(string(detectSource), marker) {
			t.Fatalf("detection source misses %s", marker)
		}
	}
}

func TestDiscoverRejectsMalformedDebug(t *testing.T) {
	_, err := Discover(context.Background(), Options{
		Env:      target.MapEnv{"DEBUG": "sometimes"},
		Inputs:   mustInputs(t, "x86_64-unknown-linux-gnu", ""),
		Runner:   &recordingRunner{},
		LookPath: fakeLookPath("cc", "c++", "ar"),
		Family:   FamilyGNU,
	})
	if !errors.Is(err, target.ErrInvalidInput) || !strings.Contains(err.Error(), "DEBUG") {
		t.Fatalf("err = %v, want invalid DEBUG", err)
	}
}

func TestExecRunnerKeepsExitError(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("no sh on this host")
	}
	_, err = (&ExecRunner{}).Run(context.Background(), Command{
		Name: sh,
		Args: []string{"-c", "echo 'boom: bad flag' >&2; exit 3"},
	})
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 3 {
		t.Fatalf("err = %v, want wrapped exit status 3", err)
	}
	if !strings.Contains(err.Error(), "boom: bad flag") {
		t.Fatalf("err = %q misses the tool's stderr", err)
	}
}
