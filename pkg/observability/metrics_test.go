package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestMetrics(t *testing.T) {
	m := NewMetrics()

	t.Run("NewMetrics", func(t *testing.T) {
		if m == nil {
			t.Fatal("NewMetrics returned nil")
		}
		if m.RequestsTotal == nil {
			t.Error("RequestsTotal not initialized")
		}
		if m.RequestDuration == nil {
			t.Error("RequestDuration not initialized")
		}
		if m.QueriesTotal == nil {
			t.Error("QueriesTotal not initialized")
		}
		if m.SamplerDrawsTotal == nil {
			t.Error("SamplerDrawsTotal not initialized")
		}
		if m.CacheHits == nil {
			t.Error("CacheHits not initialized")
		}
	})

	t.Run("RecordRequest", func(t *testing.T) {
		duration := 100 * time.Millisecond
		m.RecordRequest("prob", "success", duration)
		m.RecordRequest("cluster", "error", 50*time.Millisecond)

		methods := []string{"prob", "mode", "cluster", "sample", "bootstrap"}
		statuses := []string{"success", "error", "timeout"}
		for _, method := range methods {
			for _, status := range statuses {
				m.RecordRequest(method, status, duration)
			}
		}
	})

	t.Run("RecordError", func(t *testing.T) {
		m.RecordError("prob", "invalid_shape")
		m.RecordError("cluster", "state_error")
		m.RecordError("mode", "invalid_parameter")
	})

	t.Run("RecordQuery", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			m.RecordQuery("model-a", "prob")
		}
		m.RecordQuery("model-b", "mode")
	})

	t.Run("RecordProb", func(t *testing.T) {
		m.RecordProb(50 * time.Microsecond)
		m.RecordProb(2 * time.Millisecond)
	})

	t.Run("RecordModeIterations", func(t *testing.T) {
		m.RecordModeIterations(5)
		m.RecordModeIterations(42)
	})

	t.Run("RecordManifoldIterations", func(t *testing.T) {
		m.RecordManifoldIterations(8)
	})

	t.Run("RecordClusterModes", func(t *testing.T) {
		m.RecordClusterModes(3)
		m.RecordClusterModes(1)
	})

	t.Run("RecordSamplerDraw", func(t *testing.T) {
		m.RecordSamplerDraw("model-a", "draw")
		m.RecordSamplerDraw("model-a", "bootstrap")
		m.RecordSamplerDraw("model-b", "mult")
	})

	t.Run("RecordCacheHit", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			m.RecordCacheHit()
		}
	})

	t.Run("RecordCacheMiss", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			m.RecordCacheMiss()
		}
	})

	t.Run("UpdateCacheSize", func(t *testing.T) {
		m.UpdateCacheSize(100)
		m.UpdateCacheSize(500)
	})

	t.Run("UpdateModelCount", func(t *testing.T) {
		m.UpdateModelCount(5)
		m.UpdateModelCount(10)
	})

	t.Run("UpdateModelQuota", func(t *testing.T) {
		m.UpdateModelQuota("model-a", "exemplars", 75.5)
		m.UpdateModelQuota("model-a", "dimensions", 60.0)

		resources := []string{"exemplars", "dimensions", "qps"}
		for i, resource := range resources {
			m.UpdateModelQuota("test_model", resource, float64(i*10+5))
		}
	})

	t.Run("UpdateModelExemplars", func(t *testing.T) {
		m.UpdateModelExemplars("model-a", 1000)
		m.UpdateModelExemplars("model-b", 50000)
	})

	t.Run("UpdateSystemMetrics", func(t *testing.T) {
		m.UpdateGoroutineCount(100)
		m.UpdateMemoryUsage(1024 * 1024 * 512)
		m.UpdateCPUUsage(45.5)

		for i := 0; i < 10; i++ {
			m.UpdateGoroutineCount(100 + i*10)
			m.UpdateMemoryUsage(uint64(1024 * 1024 * (500 + i*100)))
			m.UpdateCPUUsage(40.0 + float64(i)*2.5)
		}
	})
}

func TestConcurrentMetricUpdates(t *testing.T) {
	// Unregistered collectors, so this test does not clash with the global
	// registry NewMetrics uses.
	m := &Metrics{
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "kde_test_concurrent_queries_total"},
			[]string{"model", "operation"},
		),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{Name: "kde_test_concurrent_cache_hits_total"}),
	}
	done := make(chan bool, 10)

	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 10; j++ {
				m.RecordQuery("model-a", "prob")
				m.RecordCacheHit()
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}

func BenchmarkRecordRequest(b *testing.B) {
	b.Skip("Skipping benchmark due to global metric registry conflicts")
}

func BenchmarkRecordQuery(b *testing.B) {
	b.Skip("Skipping benchmark due to global metric registry conflicts")
}
