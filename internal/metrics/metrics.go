package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"boards.onebusaway.org/internal/calendar"
)

type Collector struct {
	reg *prometheus.Registry

	BoardRequests *prometheus.CounterVec // type label: arrival|departure
	BoardErrors   *prometheus.CounterVec // kind label, see gtfs.ErrorKind

	BoardBuildDuration prometheus.Histogram

	CalendarServices   prometheus.Gauge
	CalendarExceptions prometheus.Gauge
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		BoardRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "board_requests_total",
			Help: "Total board requests.",
		}, []string{"type"}),
		BoardErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "board_errors_total",
			Help: "Total boards that failed.",
		}, []string{"kind"}),
		BoardBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "board_build_duration_seconds",
			Help:    "Duration of a board computation including storage reads.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
		CalendarServices: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "calendar_services",
			Help: "Number of services in the loaded calendar.",
		}),
		CalendarExceptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "calendar_exceptions",
			Help: "Number of service exceptions in the loaded calendar.",
		}),
	}

	reg.MustRegister(
		c.BoardRequests, c.BoardErrors, c.BoardBuildDuration,
		c.CalendarServices, c.CalendarExceptions,
	)

	return c
}

// ObserveBoard records one board computation. kind is empty on success.
func (c *Collector) ObserveBoard(boardType string, duration time.Duration, kind string) {
	if c == nil {
		return
	}
	c.BoardRequests.WithLabelValues(boardType).Inc()
	c.BoardBuildDuration.Observe(duration.Seconds())
	if kind != "" {
		c.BoardErrors.WithLabelValues(kind).Inc()
	}
}

// SetCalendar updates the calendar gauges.
func (c *Collector) SetCalendar(store *calendar.Store) {
	if c == nil || store == nil {
		return
	}
	c.CalendarServices.Set(float64(store.Len()))
	c.CalendarExceptions.Set(float64(store.ExceptionCount()))
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }
