package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type mockStatsProvider struct {
	stats Stats
}

func (m *mockStatsProvider) GetStats() Stats {
	return m.stats
}

func TestNewCollector(t *testing.T) {
	provider := &mockStatsProvider{
		stats: Stats{Queued: 3, Processing: 1},
	}

	collector := NewCollector(provider, 5*time.Second)

	if collector == nil {
		t.Fatal("NewCollector returned nil")
	}
	if collector.interval != 5*time.Second {
		t.Errorf("interval = %v, want 5s", collector.interval)
	}
}

func TestCollectorCollect(t *testing.T) {
	provider := &mockStatsProvider{
		stats: Stats{Queued: 4, Processing: 1, Uploading: 0, Completed: 7, Failed: 2},
	}

	collector := NewCollector(provider, time.Minute)
	collector.collect()

	cases := []struct {
		status string
		want   float64
	}{
		{"queued", 4},
		{"processing", 1},
		{"uploading", 0},
		{"completed", 7},
		{"error", 2},
	}
	for _, tc := range cases {
		got := testutil.ToFloat64(JobsByStatus.WithLabelValues(tc.status))
		if got != tc.want {
			t.Errorf("JobsByStatus[%s] = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestCollectorNilProvider(t *testing.T) {
	collector := NewCollector(nil, time.Minute)
	// Must not panic.
	collector.collect()
}

func TestCollectorStartStop(t *testing.T) {
	provider := &mockStatsProvider{stats: Stats{Queued: 1}}
	collector := NewCollector(provider, 10*time.Millisecond)

	collector.Start()
	time.Sleep(30 * time.Millisecond)
	collector.Stop()

	if got := testutil.ToFloat64(JobsByStatus.WithLabelValues("queued")); got != 1 {
		t.Errorf("JobsByStatus[queued] = %v, want 1", got)
	}
}

func TestInitializeMetrics(t *testing.T) {
	// Must not panic and must leave every label combination registered.
	InitializeMetrics()
	for _, status := range []string{"queued", "processing", "uploading", "completed", "error"} {
		JobsByStatus.WithLabelValues(status)
	}
}
