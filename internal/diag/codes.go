package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Probe
	ProbeInfo          Code = 1000
	WarnInt128Fallback Code = 1001

	// Configuration
	CfgInfo            Code = 2000
	CfgMissingInput    Code = 2001
	CfgInvalidInput    Code = 2002
	CfgInconsistent    Code = 2003
	CfgManifestInvalid Code = 2004

	// Toolchain
	ToolInfo           Code = 3000
	ToolNotFound       Code = 3001
	WarnCompilerOutput Code = 3002
	ToolFlagSkipped    Code = 3003

	// Build
	BuildInfo      Code = 4000
	BuildCompile   Code = 4001
	BuildArchive   Code = 4002
	BuildOutputDir Code = 4003
)

var codeDescription = map[Code]string{
	UnknownCode:        "Unknown error",
	ProbeInfo:          "Probe information",
	WarnInt128Fallback: "128-bit integer type unavailable, using 32-bit limbs",
	CfgInfo:            "Configuration information",
	CfgMissingInput:    "Required input not set",
	CfgInvalidInput:    "Input value cannot be interpreted",
	CfgInconsistent:    "Build plan is inconsistent",
	CfgManifestInvalid: "Invalid nativecfg.toml",
	ToolInfo:           "Toolchain information",
	ToolNotFound:       "Tool not found",
	WarnCompilerOutput: "Compiler reported diagnostics",
	ToolFlagSkipped:    "Optional flag not supported by the compiler",
	BuildInfo:          "Build information",
	BuildCompile:       "Compilation failed",
	BuildArchive:       "Archiving failed",
	BuildOutputDir:     "Output directory unusable",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("PRB%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("CFG%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("TCH%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("BLD%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
