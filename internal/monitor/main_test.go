package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseMetricType(t *testing.T) {
	metricType, err := ParseMetricType("prometheus")
	require.NoError(t, err)
	assert.Equal(t, MetricTypePrometheus, metricType)

	_, err = ParseMetricType("statsd")
	assert.Error(t, err)
}

func Test_MonitorService_Start(t *testing.T) {
	monitorService := MonitorService{}

	err := monitorService.Start(MetricOptions{MetricType: MetricTypePrometheus})
	require.NoError(t, err)

	t.Run("cannot start twice", func(t *testing.T) {
		err := monitorService.Start(MetricOptions{MetricType: MetricTypePrometheus})
		assert.EqualError(t, err, "service already initialized")
	})

	t.Run("metrics handler is available", func(t *testing.T) {
		handler, err := monitorService.GetMetricHttpHandler()
		require.NoError(t, err)
		assert.NotNil(t, handler)
	})

	t.Run("metric type is reported", func(t *testing.T) {
		metricType, err := monitorService.GetMetricType()
		require.NoError(t, err)
		assert.Equal(t, MetricTypePrometheus, metricType)
	})
}
