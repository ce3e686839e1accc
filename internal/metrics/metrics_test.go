// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

// stageSamples returns the duration histogram sample count for stage.
func stageSamples(t *testing.T, stage string) uint64 {
	t.Helper()

	families, err := Registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	var family *dto.MetricFamily
	for _, mf := range families {
		if mf.GetName() == "cultivar_stage_duration_seconds" {
			family = mf
		}
	}
	if family == nil {
		return 0
	}
	for _, m := range family.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == "stage" && lp.GetValue() == stage {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func TestRecordStage(t *testing.T) {
	tests := []struct {
		name         string
		stage        string
		status       string
		wantFailures float64
		wantObserved int
	}{
		{"ok", "test_features", StatusOK, 0, 1},
		{"failed", "test_predict", StatusFailed, 1, 1},
		{"skipped", "test_recommend", StatusSkipped, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordStage(tt.stage, tt.status, 250*time.Millisecond)

			if got := testutil.ToFloat64(StageRuns.WithLabelValues(tt.stage, tt.status)); got != 1 {
				t.Errorf("stage runs = %v, want 1", got)
			}
			if got := testutil.ToFloat64(StageFailures.WithLabelValues(tt.stage)); got != tt.wantFailures {
				t.Errorf("stage failures = %v, want %v", got, tt.wantFailures)
			}
			if got := stageSamples(t, tt.stage); got != uint64(tt.wantObserved) {
				t.Errorf("duration samples = %d, want %d", got, tt.wantObserved)
			}
		})
	}
}

func TestRecordRun(t *testing.T) {
	okBefore := testutil.ToFloat64(RunsTotal.WithLabelValues(StatusOK))
	failedBefore := testutil.ToFloat64(RunsTotal.WithLabelValues(StatusFailed))

	RecordRun(2*time.Second, nil)
	RecordRun(time.Second, errors.New("boom"))

	if got := testutil.ToFloat64(RunsTotal.WithLabelValues(StatusOK)) - okBefore; got != 1 {
		t.Errorf("ok runs delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(RunsTotal.WithLabelValues(StatusFailed)) - failedBefore; got != 1 {
		t.Errorf("failed runs delta = %v, want 1", got)
	}
	if testutil.ToFloat64(RunLastSuccess) == 0 {
		t.Error("last success timestamp not set")
	}
}

func TestGauges(t *testing.T) {
	RecordTableRows("test_rows_table", 42)
	if got := testutil.ToFloat64(TableRows.WithLabelValues("test_rows_table")); got != 42 {
		t.Errorf("table rows = %v, want 42", got)
	}

	RecordModel("test_churn", map[string]float64{"accuracy": 0.9, "auc": 0.95})
	if got := testutil.ToFloat64(ModelQuality.WithLabelValues("test_churn", "auc")); got != 0.95 {
		t.Errorf("auc gauge = %v, want 0.95", got)
	}

	before := testutil.ToFloat64(RecommendationsGenerated)
	RecordRecommendations(15, 4, 2)
	if got := testutil.ToFloat64(RecommendationsGenerated) - before; got != 15 {
		t.Errorf("recommendations delta = %v, want 15", got)
	}
	if testutil.ToFloat64(AssociationRules) != 4 || testutil.ToFloat64(CrossSellOpportunities) != 2 {
		t.Error("rule or cross-sell gauge not set")
	}

	RecordCacheLookup("test_backend", true)
	RecordCacheLookup("test_backend", false)
	RecordCacheLookup("test_backend", false)
	if testutil.ToFloat64(CacheHits.WithLabelValues("test_backend")) != 1 ||
		testutil.ToFloat64(CacheMisses.WithLabelValues("test_backend")) != 2 {
		t.Error("cache lookup counters wrong")
	}

	RecordSinkWrite("test_sink", time.Millisecond, errors.New("disk full"))
	if testutil.ToFloat64(SinkWriteErrors.WithLabelValues("test_sink")) != 1 {
		t.Error("sink error counter not incremented")
	}
}

func TestWriteTextfile(t *testing.T) {
	SetAppInfo("test-version")
	RecordTableRows("textfile_table", 3)

	path := filepath.Join(t.TempDir(), "cultivar.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{
		`cultivar_table_rows{table="textfile_table"} 3`,
		`cultivar_app_info{go_version=`,
		`version="test-version"`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("textfile missing %q", want)
		}
	}
}

func TestWriteTextfile_BadPath(t *testing.T) {
	if err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom")); err == nil {
		t.Error("WriteTextfile() into a missing directory should fail")
	}
}

func TestHandler(t *testing.T) {
	SetAppInfo("handler-test")

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), `version="handler-test"`) {
		t.Errorf("scrape missing app info:\n%s", body)
	}
}
