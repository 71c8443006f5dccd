package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func gatherValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue next
				}
			}
			switch {
			case m.GetCounter() != nil:
				return m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				return m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				return float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return 0
}

func TestRecordSummary(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSummary("success", 2*time.Second)
	c.RecordSummary("success", time.Second)
	c.RecordSummary("EmptyInput", 0)

	if v := gatherValue(t, reg, "memo_summarize_total", map[string]string{"outcome": "success"}); v != 2 {
		t.Errorf("success = %v, want 2", v)
	}
	if v := gatherValue(t, reg, "memo_summarize_total", map[string]string{"outcome": "EmptyInput"}); v != 1 {
		t.Errorf("EmptyInput = %v, want 1", v)
	}
	if v := gatherValue(t, reg, "memo_summarize_latency_seconds", nil); v != 2 {
		t.Errorf("latency samples = %v, want 2", v)
	}
}

func TestRecordMutation(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordMutation("created", 1)
	c.RecordMutation("created", 2)
	c.RecordMutation("deleted", 1)

	if v := gatherValue(t, reg, "memo_store_mutations_total", map[string]string{"op": "created"}); v != 2 {
		t.Errorf("created = %v, want 2", v)
	}
	if v := gatherValue(t, reg, "memo_notes", nil); v != 1 {
		t.Errorf("notes = %v, want 1", v)
	}
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.SetNotes(3)

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "memo_notes 3") {
		t.Errorf("scrape output missing gauge:\n%s", body)
	}
}
