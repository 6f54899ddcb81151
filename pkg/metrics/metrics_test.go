package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitMetrics(t *testing.T) {
	InitMetrics()
	InitMetrics() // 重复调用不应panic（重复注册）

	assert.NotNil(t, HTTPRequestsTotal)
	assert.NotNil(t, HTTPRequestDuration)
	assert.NotNil(t, HTTPRequestsInProgress)
	assert.NotNil(t, CheckoutsTotal)
	assert.NotNil(t, CartOperationsTotal)
	assert.NotNil(t, ReviewsTotal)
}

func TestCounterVec(t *testing.T) {
	InitMetrics()

	labels := map[string]string{"result": "success"}
	before := getCounterVecValue(t, CheckoutsTotal, labels)

	IncCounterVec(CheckoutsTotal, labels)
	IncCounterVec(CheckoutsTotal, labels)
	IncCounterVec(CheckoutsTotal, map[string]string{"result": "insufficient_stock"})

	assert.Equal(t, before+2, getCounterVecValue(t, CheckoutsTotal, labels))
}

func TestCartOperations(t *testing.T) {
	InitMetrics()

	add := map[string]string{"op": "add", "result": "success"}
	before := getCounterVecValue(t, CartOperationsTotal, add)
	IncCounterVec(CartOperationsTotal, add)
	assert.Equal(t, before+1, getCounterVecValue(t, CartOperationsTotal, add))
}

func TestGauge(t *testing.T) {
	InitMetrics()
	SetGauge(HTTPRequestsInProgress, 0)

	IncGauge(HTTPRequestsInProgress)
	IncGauge(HTTPRequestsInProgress)
	assert.Equal(t, float64(2), getGaugeValue(t, HTTPRequestsInProgress))

	DecGauge(HTTPRequestsInProgress)
	assert.Equal(t, float64(1), getGaugeValue(t, HTTPRequestsInProgress))

	SetGauge(HTTPRequestsInProgress, 0)
}

func TestGaugeVec(t *testing.T) {
	InitMetrics()

	SetGaugeVec(CircuitBreakerState, map[string]string{"name": "order-events"}, 1)
	SetGaugeVec(CircuitBreakerState, map[string]string{"name": "other"}, 0)

	assert.Equal(t, float64(1), getGaugeVecValue(t, CircuitBreakerState, map[string]string{"name": "order-events"}))
	assert.Equal(t, float64(0), getGaugeVecValue(t, CircuitBreakerState, map[string]string{"name": "other"}))
}

func TestHistogram(t *testing.T) {
	InitMetrics()

	before := getHistogramCount(t, OrderAmount)
	ObserveHistogram(OrderAmount, 34.80)
	ObserveHistogram(OrderAmount, 116.00)

	assert.Equal(t, before+2, getHistogramCount(t, OrderAmount))
}

func TestHistogramVec(t *testing.T) {
	InitMetrics()

	labels := map[string]string{"method": "POST", "path": "/api/v1/checkout"}
	before := getHistogramVecCount(t, HTTPRequestDuration, labels)
	ObserveHistogramVec(HTTPRequestDuration, labels, 0.05)
	ObserveHistogramVec(HTTPRequestDuration, labels, 0.1)

	assert.Equal(t, before+2, getHistogramVecCount(t, HTTPRequestDuration, labels))
}

func TestNilMetricsIgnored(t *testing.T) {
	assert.NotPanics(t, func() {
		IncCounterVec(nil, map[string]string{"result": "x"})
		SetGaugeVec(nil, nil, 1)
		ObserveHistogram(nil, 1)
		ObserveHistogramVec(nil, nil, 1)
	})
}

func getCounterVecValue(t *testing.T, counterVec *prometheus.CounterVec, labels map[string]string) float64 {
	var metric dto.Metric
	require.NoError(t, counterVec.With(labels).Write(&metric))
	return metric.Counter.GetValue()
}

func getGaugeValue(t *testing.T, gauge prometheus.Gauge) float64 {
	var metric dto.Metric
	require.NoError(t, gauge.Write(&metric))
	return metric.Gauge.GetValue()
}

func getGaugeVecValue(t *testing.T, gaugeVec *prometheus.GaugeVec, labels map[string]string) float64 {
	var metric dto.Metric
	require.NoError(t, gaugeVec.With(labels).Write(&metric))
	return metric.Gauge.GetValue()
}

func getHistogramCount(t *testing.T, histogram prometheus.Histogram) uint64 {
	var metric dto.Metric
	require.NoError(t, histogram.Write(&metric))
	return metric.Histogram.GetSampleCount()
}

func getHistogramVecCount(t *testing.T, histogramVec *prometheus.HistogramVec, labels map[string]string) uint64 {
	var metric dto.Metric
	h := histogramVec.With(labels)
	require.NoError(t, h.(prometheus.Histogram).Write(&metric))
	return metric.Histogram.GetSampleCount()
}
