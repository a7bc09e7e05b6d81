package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestWritePrometheusIsSortedAndLabelled(t *testing.T) {
	m := NewMetrics()
	m.IncStageRun("hooks", "skipped")
	m.IncStageRun("editing_script", "created")
	m.IncStageRun("editing_script", "created")
	m.ObserveAPI("POST", "/api/projects/:id/hooks", "200", 30*time.Millisecond)

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()

	a := strings.Index(out, `sc_stage_runs_total{stage="editing_script",outcome="created"} 2`)
	b := strings.Index(out, `sc_stage_runs_total{stage="hooks",outcome="skipped"} 1`)
	if a < 0 || b < 0 || a > b {
		t.Fatalf("expected sorted stage series, got:\n%s", out)
	}
	if !strings.Contains(out, `sc_api_request_duration_seconds_bucket{method="POST",route="/api/projects/:id/hooks",status="200",le="0.05"} 1`) {
		t.Fatalf("expected latency bucket, got:\n%s", out)
	}
	if got := m.StageRuns("editing_script", "created"); got != 2 {
		t.Fatalf("StageRuns = %v", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.IncStageRun("hooks", "created")
	m.ObserveLLMRequest("hooks", "gpt-4o-mini", "ok", time.Second, 10, 20)
	m.IncQuotaRejection("FREE")
	if m.StageRuns("hooks", "created") != 0 {
		t.Fatal("nil metrics should read zero")
	}
}

func TestLabelStringEscapes(t *testing.T) {
	got := labelString([]string{"a", "b"}, []string{`x"y`})
	if got != `{a="x\"y",b="unknown"}` {
		t.Fatalf("labelString = %s", got)
	}
	if withLe("", "1") != `{le="1"}` {
		t.Fatal("withLe on empty labels")
	}
}

func TestParseHeadersAndRatio(t *testing.T) {
	h := parseHeaders(" api-key = abc , broken, =x ")
	if len(h) != 1 || h["api-key"] != "abc" {
		t.Fatalf("parseHeaders = %v", h)
	}
	if parseHeaders("") != nil {
		t.Fatal("expected nil for empty headers")
	}
	if clampRatio(2) != 1 || clampRatio(-1) != 0 || clampRatio(0.25) != 0.25 {
		t.Fatal("clampRatio")
	}
}
