package engine

import (
	"strings"
	"testing"
)

func TestFormatMetrics(t *testing.T) {
	IncrExtract()
	AddCommentsAccepted(3)

	out := FormatMetrics()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != len(metricKeys) {
		t.Fatalf("got %d lines, want %d", len(lines), len(metricKeys))
	}
	for i, k := range metricKeys {
		if !strings.HasPrefix(lines[i], k+" ") {
			t.Errorf("line %d = %q, want key %q", i, lines[i], k)
		}
	}
	if GetMetrics()["comments_accepted"] < 3 {
		t.Error("comments_accepted not incremented")
	}
}

func TestMetricKeysMatchSnapshot(t *testing.T) {
	m := GetMetrics()
	if len(m) != len(metricKeys) {
		t.Fatalf("snapshot has %d keys, metricKeys has %d", len(m), len(metricKeys))
	}
	for _, k := range metricKeys {
		if _, ok := m[k]; !ok {
			t.Errorf("metric %q missing from snapshot", k)
		}
	}
}
