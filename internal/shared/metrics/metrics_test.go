package metrics

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := newHistogram([]float64{10, 100})
	h.Observe(5)
	h.Observe(50)
	h.Observe(500)

	snap := h.Snapshot()
	if snap.count != 3 || snap.sum != 555 {
		t.Fatalf("unexpected totals: count=%d sum=%v", snap.count, snap.sum)
	}
	if snap.counts[0] != 1 || snap.counts[1] != 1 {
		t.Fatalf("unexpected bucket counts: %v", snap.counts)
	}

	var b bytes.Buffer
	writeHistogram(&b, "x_ms", "x", snap)
	if !strings.Contains(b.String(), `x_ms_bucket{le="100"} 2`) || !strings.Contains(b.String(), `x_ms_bucket{le="+Inf"} 3`) {
		t.Fatalf("unexpected histogram text:\n%s", b.String())
	}
}

func TestRenderLabelsFunctionOutcomes(t *testing.T) {
	start := time.Now()
	ObserveFunction("analyze-resume", start, nil)
	ObserveFunction("chat-assistant", start, errors.New("boom"))

	out := Render()
	for _, want := range []string{
		`function_invocations_total{function="analyze-resume",outcome="ok"}`,
		`function_invocations_total{function="chat-assistant",outcome="error"}`,
		"# TYPE function_duration_ms histogram",
		"# TYPE drafts_saved_total counter",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}
