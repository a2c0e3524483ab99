package toolchain

import (
	"strings"

	"nativecfg/internal/target"
)

// CppRuntime names the C++ standard library a consumer links against the
// archives built from C++ sources. CXXSTDLIB overrides the guess; an empty
// result means the toolchain links it implicitly.
func CppRuntime(env target.Env, triple target.Triple) string {
	if v, ok := env.Lookup("CXXSTDLIB_" + triple.EnvKey()); ok {
		return strings.TrimSpace(v)
	}
	if v, ok := env.Lookup("CXXSTDLIB"); ok {
		return strings.TrimSpace(v)
	}
	switch {
	case triple.IsMSVC():
		return ""
	case triple.IsAndroid():
		return "c++_shared"
	case triple.IsApple(), triple.IsBSD():
		return "c++"
	default:
		return "stdc++"
	}
}
