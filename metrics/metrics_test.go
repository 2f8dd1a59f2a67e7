package metrics

import (
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, provider, operation, status string) float64 {
	t.Helper()
	var m dto.Metric
	if err := ProviderOperationsTotal.WithLabelValues(provider, operation, status).Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestObserveOperation(t *testing.T) {
	before := counterValue(t, "fca", "get_vehicle_data", "Success")
	ObserveOperation("fca", "get_vehicle_data", "Success", 15*time.Millisecond)
	after := counterValue(t, "fca", "get_vehicle_data", "Success")
	if after-before != 1 {
		t.Errorf("counter delta = %v, want 1", after-before)
	}
}

func TestRegisterTwice(t *testing.T) {
	Register()
	Register()
}
