package ui

import (
	"strings"
	"testing"

	"nativecfg/internal/buildpipeline"
)

func TestApplyEventTracksUnits(t *testing.T) {
	m := NewProgressModel("nativecfg build", nil).(*progressModel)
	events := []buildpipeline.Event{
		{Stage: buildpipeline.StageProbe, Status: buildpipeline.StatusWorking},
		{Target: "secp256k1", File: "src/a.c", Stage: buildpipeline.StageCompile, Status: buildpipeline.StatusQueued},
		{Target: "secp256k1", File: "src/b.c", Stage: buildpipeline.StageCompile, Status: buildpipeline.StatusQueued},
		{Target: "secp256k1", File: "src/a.c", Stage: buildpipeline.StageCompile, Status: buildpipeline.StatusWorking},
		{Target: "secp256k1", File: "src/a.c", Stage: buildpipeline.StageCompile, Status: buildpipeline.StatusDone},
		{Target: "secp256k1", File: "src/b.c", Stage: buildpipeline.StageCompile, Status: buildpipeline.StatusWorking},
	}
	for _, ev := range events {
		m.applyEvent(ev)
	}
	if len(m.items) != 2 {
		t.Fatalf("items = %d, want 2", len(m.items))
	}
	if m.items[0].status != "done" || m.items[1].status != "compiling" {
		t.Fatalf("statuses = %q, %q", m.items[0].status, m.items[1].status)
	}
	if got := m.percent(); got != 0.75 {
		t.Fatalf("percent() = %v, want 0.75", got)
	}
	if m.stageLabel != "probing" {
		t.Fatalf("stage label = %q", m.stageLabel)
	}
	m.applyEvent(buildpipeline.Event{Target: "secp256k1", Stage: buildpipeline.StageArchive, Status: buildpipeline.StatusWorking})
	if m.stageLabel != "secp256k1 archiving" {
		t.Fatalf("stage label = %q", m.stageLabel)
	}
	if !strings.Contains(m.View(), "secp256k1: a.c") {
		t.Fatalf("view misses unit:\n%s", m.View())
	}
}

func TestApplyEventMarksFailure(t *testing.T) {
	m := NewProgressModel("build", nil).(*progressModel)
	m.applyEvent(buildpipeline.Event{Target: "x", File: "x.c", Stage: buildpipeline.StageCompile, Status: buildpipeline.StatusError})
	m.done = true
	if !m.failed || !strings.Contains(m.View(), "failed: build") {
		t.Fatalf("failure not rendered:\n%s", m.View())
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"abcdefghij", 8, "abcde..."},
		{"abcdef", 3, "abc"},
		{"abc", 0, "abc"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.width); got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}
