// Package toolchain finds and drives the native compiler and archiver for
// the target being built.
package toolchain

import (
	"fmt"
	"strings"
)

// Family is the flag dialect a compiler speaks.
type Family uint8

const (
	// FamilyOther is any compiler not recognised below.
	FamilyOther Family = iota
	// FamilyMSVC is cl.exe and clang-cl.
	FamilyMSVC
	// FamilyClang is clang in its GCC-compatible driver mode.
	FamilyClang
	// FamilyGNU is gcc.
	FamilyGNU
)

func (f Family) String() string {
	switch f {
	case FamilyMSVC:
		return "msvc"
	case FamilyClang:
		return "clang"
	case FamilyGNU:
		return "gnu"
	default:
		return "other"
	}
}

// ParseFamily converts a family name back into a Family.
func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "msvc":
		return FamilyMSVC, nil
	case "clang":
		return FamilyClang, nil
	case "gnu", "gcc":
		return FamilyGNU, nil
	case "other":
		return FamilyOther, nil
	default:
		return FamilyOther, fmt.Errorf("unknown compiler family %q (expected: msvc|clang|gnu|other)", s)
	}
}

// gccLike reports whether the family accepts GCC-style flags.
func (f Family) gccLike() bool {
	return f != FamilyMSVC
}
