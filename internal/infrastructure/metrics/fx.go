// Package metrics contains Prometheus metrics infrastructure
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/mycodedstuff/pibot/internal/domain/media/deps"
)

// Module provides metrics for fx DI
var Module = fx.Module("metrics",
	fx.Provide(func() *Metrics {
		return NewMetrics(prometheus.DefaultRegisterer)
	}),
	fx.Provide(func(m *Metrics) deps.Metrics { return m }),
)
