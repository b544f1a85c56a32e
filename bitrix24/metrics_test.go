package bitrix24

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	m.observeCall("user.get", "", time.Millisecond)
	m.observeFailure("user.get", "access_denied")

	empty := NewMetrics(nil)
	empty.observeCall("user.get", "access_denied", time.Millisecond)
}

func TestMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.observeCall("user.get", "", 10*time.Millisecond)
	m.observeCall("user.get", "rate_limit", 20*time.Millisecond)
	m.observeFailure("crm.contact.get", "")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchHistogramCount(mfs, "bitrix24_call_duration_seconds", map[string]string{"method": "user.get"}); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got != 2 {
		t.Fatalf("expected 2 observations, got %d", got)
	}

	if got, err := fetchCounterValue(mfs, "bitrix24_call_failures_total", map[string]string{"method": "user.get", "code": "rate_limit"}); err != nil {
		t.Fatalf("fetch failures: %v", err)
	} else if got != 1 {
		t.Fatalf("expected user.get failures=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "bitrix24_call_failures_total", map[string]string{"method": "crm.contact.get", "code": "unknown"}); err != nil {
		t.Fatalf("fetch failures: %v", err)
	} else if got != 1 {
		t.Fatalf("expected crm.contact.get failures=1, got %f", got)
	}
}

func TestClient_RecordsMetrics(t *testing.T) {
	client, mux, _, teardown := setup()
	defer teardown()

	reg := prometheus.NewRegistry()
	client.Metrics = NewMetrics(reg)

	mux.HandleFunc("/user.current", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result": {"ID": "1"}}`)
	})
	mux.HandleFunc("/crm.contact.get", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error": "NOT_FOUND", "error_description": "Not found"}`)
	})

	if _, _, err := client.Users.Current(context.Background()); err != nil {
		t.Fatalf("Users.Current returned error: %v", err)
	}
	if _, _, err := client.Contacts.Get(context.Background(), 9); err == nil {
		t.Fatal("Contacts.Get returned nil error")
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	for _, method := range []string{"user.current", "crm.contact.get"} {
		if got, err := fetchHistogramCount(mfs, "bitrix24_call_duration_seconds", map[string]string{"method": method}); err != nil {
			t.Fatalf("fetch duration: %v", err)
		} else if got != 1 {
			t.Errorf("expected 1 %s observation, got %d", method, got)
		}
	}

	if got, err := fetchCounterValue(mfs, "bitrix24_call_failures_total", map[string]string{"method": "crm.contact.get", "code": "not_found"}); err != nil {
		t.Fatalf("fetch failures: %v", err)
	} else if got != 1 {
		t.Fatalf("expected crm.contact.get failures=1, got %f", got)
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	metric, err := findMetric(mfs, name, labels)
	if err != nil {
		return 0, err
	}
	return metric.GetCounter().GetValue(), nil
}

func fetchHistogramCount(mfs []*dto.MetricFamily, name string, labels map[string]string) (uint64, error) {
	metric, err := findMetric(mfs, name, labels)
	if err != nil {
		return 0, err
	}
	return metric.GetHistogram().GetSampleCount(), nil
}

func findMetric(mfs []*dto.MetricFamily, name string, labels map[string]string) (*dto.Metric, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if matchesLabels(metric.GetLabel(), labels) {
				return metric, nil
			}
		}
		return nil, fmt.Errorf("metric %q missing labels %v", name, labels)
	}
	return nil, fmt.Errorf("metric %q not found", name)
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok {
			if v != pair.GetValue() {
				return false
			}
			matched++
		}
	}
	return matched == len(want)
}
