package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	draftsSavedTotal       atomic.Uint64
	draftSaveFailedTotal   atomic.Uint64
	wizardFinalizedTotal   atomic.Uint64
	finalizeRejectedTotal  atomic.Uint64
	diagramsSavedTotal     atomic.Uint64
	functionFallbacksTotal atomic.Uint64

	functionCalls    = newLabeledCounter()
	functionDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncDraftSaved counts a persisted wizard draft.
func IncDraftSaved() { draftsSavedTotal.Add(1) }

// IncDraftSaveFailed counts a failed draft write.
func IncDraftSaveFailed() { draftSaveFailedTotal.Add(1) }

// IncWizardFinalized counts a finalize that produced an artifact.
func IncWizardFinalized() { wizardFinalizedTotal.Add(1) }

// IncFinalizeRejected counts a finalize aborted for lack of credit.
func IncFinalizeRejected() { finalizeRejectedTotal.Add(1) }

// IncDiagramSaved counts a flowchart row insert.
func IncDiagramSaved() { diagramsSavedTotal.Add(1) }

// IncFunctionFallback counts a function response replaced by its fallback.
func IncFunctionFallback() { functionFallbacksTotal.Add(1) }

// ObserveFunction records one invocation of the named server-side function.
func ObserveFunction(name string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	functionCalls.Inc(name + "|" + outcome)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0
	if elapsed < 0 {
		elapsed = 0
	}
	functionDuration.Observe(elapsed)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "drafts_saved_total", "Wizard drafts persisted", draftsSavedTotal.Load())
	writeCounter(&buf, "draft_save_failed_total", "Wizard draft writes that failed", draftSaveFailedTotal.Load())
	writeCounter(&buf, "wizard_finalized_total", "Resumes finalized", wizardFinalizedTotal.Load())
	writeCounter(&buf, "wizard_finalize_rejected_total", "Finalize attempts rejected for insufficient credit", finalizeRejectedTotal.Load())
	writeCounter(&buf, "diagrams_saved_total", "Flowchart rows inserted", diagramsSavedTotal.Load())
	writeFunctionCounter(&buf, "function_invocations_total", "Server-side function invocations by outcome", functionCalls.Snapshot())
	writeCounter(&buf, "function_fallback_total", "Function responses replaced by fallback", functionFallbacksTotal.Load())
	writeHistogram(&buf, "function_duration_ms", "Server-side function duration in milliseconds", functionDuration.Snapshot())
	return buf.String()
}

type labeledCounter struct {
	mu     sync.Mutex
	counts map[string]uint64
}

func newLabeledCounter() *labeledCounter {
	return &labeledCounter{counts: make(map[string]uint64)}
}

func (l *labeledCounter) Inc(label string) {
	l.mu.Lock()
	l.counts[label]++
	l.mu.Unlock()
}

func (l *labeledCounter) Snapshot() map[string]uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]uint64, len(l.counts))
	for k, v := range l.counts {
		out[k] = v
	}
	return out
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe adds value to the first bucket whose bound holds it.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

// writeFunctionCounter expects keys of the form "name|outcome".
func writeFunctionCounter(buf *bytes.Buffer, name, help string, values map[string]uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fn, outcome, _ := strings.Cut(k, "|")
		fmt.Fprintf(buf, "%s{function=%q,outcome=%q} %d\n", name, fn, outcome, values[k])
	}
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
