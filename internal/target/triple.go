package target

import (
	"fmt"
	"strings"
)

// Triple is a parsed target identifier such as x86_64-unknown-linux-gnu.
type Triple struct {
	Raw    string
	Arch   string
	Vendor string
	OS     string
	Env    string
}

// ParseTriple splits a target identifier into its components.
// Three-part triples (aarch64-linux-android) carry no vendor.
func ParseTriple(s string) (Triple, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Triple{}, fmt.Errorf("empty target triple")
	}
	parts := strings.Split(s, "-")
	t := Triple{Raw: s, Arch: parts[0]}
	switch len(parts) {
	case 1:
		return Triple{}, fmt.Errorf("target triple %q has no operating system component", s)
	case 2:
		t.OS = parts[1]
	case 3:
		if knownVendor(parts[1]) {
			t.Vendor, t.OS = parts[1], parts[2]
		} else {
			t.OS, t.Env = parts[1], parts[2]
		}
	default:
		t.Vendor, t.OS = parts[1], parts[2]
		t.Env = strings.Join(parts[3:], "-")
	}
	return t, nil
}

func knownVendor(s string) bool {
	switch s {
	case "unknown", "pc", "apple", "w64", "uwp", "sun", "nvidia", "fortanix", "wrs", "sony", "nintendo", "none":
		return true
	}
	return false
}

func (t Triple) String() string {
	return t.Raw
}

// IsWindows reports a Windows-family target.
func (t Triple) IsWindows() bool {
	return strings.Contains(t.Raw, "windows")
}

// IsMSVC reports a target whose native toolchain is cl.exe/lib.exe.
func (t Triple) IsMSVC() bool {
	return t.IsWindows() && strings.HasPrefix(t.Env, "msvc")
}

// IsApple reports darwin, ios, tvos and similar targets.
func (t Triple) IsApple() bool {
	return t.Vendor == "apple"
}

// IsAndroid reports an android target.
func (t Triple) IsAndroid() bool {
	return strings.HasPrefix(t.Env, "android") || t.OS == "android"
}

// IsBSD reports FreeBSD, OpenBSD and NetBSD targets.
func (t Triple) IsBSD() bool {
	switch t.OS {
	case "freebsd", "openbsd", "netbsd", "dragonfly":
		return true
	}
	return false
}

// Prefix returns the conventional cross tool prefix (x86_64-linux-gnu).
// GNU cross toolchains omit the "unknown" vendor.
func (t Triple) Prefix() string {
	if t.IsWindows() && t.Env == "gnu" {
		return t.Arch + "-w64-mingw32"
	}
	parts := []string{t.Arch}
	if t.Vendor != "" && t.Vendor != "unknown" && t.Vendor != "pc" {
		parts = append(parts, t.Vendor)
	}
	parts = append(parts, t.OS)
	if t.Env != "" {
		parts = append(parts, t.Env)
	}
	return strings.Join(parts, "-")
}

// EnvKey renders the triple the way per-target variables spell it
// (CC_x86_64_unknown_linux_gnu).
func (t Triple) EnvKey() string {
	return strings.ReplaceAll(t.Raw, "-", "_")
}
