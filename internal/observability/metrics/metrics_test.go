package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestMustRegister_AddsServiceLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	MustRegister(reg, "accounts")

	LoginsTotal.WithLabelValues(ResultSuccess).Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() != "accounts_logins_total" {
			continue
		}
		found = true
		for _, m := range mf.GetMetric() {
			var service string
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "service" {
					service = lp.GetValue()
				}
			}
			if service != "accounts" {
				t.Fatalf("expected service label, got %v", m.GetLabel())
			}
		}
	}
	if !found {
		t.Fatal("accounts_logins_total not gathered")
	}
}

func TestResult(t *testing.T) {
	if Result(nil) != ResultSuccess || Result(errors.New("x")) != ResultFailure {
		t.Fatal("unexpected result labels")
	}
}
