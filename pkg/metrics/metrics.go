package metrics

import (
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// MetricsCollector interface for collecting metrics
type MetricsCollector interface {
	IncrementCounter(name string, labels map[string]string)
	RecordHistogram(name string, value float64, labels map[string]string)
	SetGauge(name string, value float64, labels map[string]string)
	RecordDuration(name string, duration time.Duration, labels map[string]string)
}

// SimpleMetricsCollector is a basic in-memory metrics collector
type SimpleMetricsCollector struct {
	mu         sync.Mutex
	counters   map[string]float64
	histograms map[string][]float64
	gauges     map[string]float64
	logger     *zap.Logger
}

// NewSimpleMetricsCollector creates a new simple metrics collector
func NewSimpleMetricsCollector(logger *zap.Logger) *SimpleMetricsCollector {
	return &SimpleMetricsCollector{
		counters:   make(map[string]float64),
		histograms: make(map[string][]float64),
		gauges:     make(map[string]float64),
		logger:     logger,
	}
}

// IncrementCounter increments a counter metric
func (smc *SimpleMetricsCollector) IncrementCounter(name string, labels map[string]string) {
	key := buildMetricKey(name, labels)
	smc.mu.Lock()
	smc.counters[key]++
	value := smc.counters[key]
	smc.mu.Unlock()

	smc.logger.Debug("Counter incremented",
		zap.String("metric", name),
		zap.Any("labels", labels),
		zap.Float64("value", value))
}

// RecordHistogram records a histogram value
func (smc *SimpleMetricsCollector) RecordHistogram(name string, value float64, labels map[string]string) {
	key := buildMetricKey(name, labels)
	smc.mu.Lock()
	smc.histograms[key] = append(smc.histograms[key], value)
	smc.mu.Unlock()

	smc.logger.Debug("Histogram recorded",
		zap.String("metric", name),
		zap.Any("labels", labels),
		zap.Float64("value", value))
}

// SetGauge sets a gauge metric value
func (smc *SimpleMetricsCollector) SetGauge(name string, value float64, labels map[string]string) {
	key := buildMetricKey(name, labels)
	smc.mu.Lock()
	smc.gauges[key] = value
	smc.mu.Unlock()

	smc.logger.Debug("Gauge set",
		zap.String("metric", name),
		zap.Any("labels", labels),
		zap.Float64("value", value))
}

// RecordDuration records a duration metric
func (smc *SimpleMetricsCollector) RecordDuration(name string, duration time.Duration, labels map[string]string) {
	smc.RecordHistogram(name+"_duration_seconds", duration.Seconds(), labels)
}

// Counter returns the current value of a counter, for tests and health
// snapshots.
func (smc *SimpleMetricsCollector) Counter(name string, labels map[string]string) float64 {
	smc.mu.Lock()
	defer smc.mu.Unlock()
	return smc.counters[buildMetricKey(name, labels)]
}

// buildMetricKey builds a unique key for a metric with labels
func buildMetricKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(name)
	for _, k := range keys {
		b.WriteString("|")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(labels[k])
	}
	return b.String()
}
