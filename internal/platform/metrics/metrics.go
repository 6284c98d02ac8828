package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "toto"

var (
	// Registry holds the application collectors exposed on /metrics.
	Registry = prometheus.NewRegistry()

	factory = promauto.With(Registry)

	ticketSubmissions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tickets",
			Name:      "submissions_total",
			Help:      "Ticket submissions by outcome (accepted or the rejection reason).",
		},
		[]string{"outcome"},
	)

	roundsLocked = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rounds",
			Name:      "locked_total",
			Help:      "Rounds moved from active to locked, by trigger.",
		},
		[]string{"trigger"},
	)

	autofillCreated = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "autofill",
			Name:      "tickets_created_total",
			Help:      "Default tickets created for members who missed the deadline.",
		},
	)

	scoreComputations = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "computations_total",
			Help:      "Score computations by outcome.",
		},
		[]string{"outcome"},
	)

	scoreDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "computation_duration_seconds",
			Help:      "Duration of successful score computations.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
	)

	circuitTransitions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dependency",
			Name:      "circuit_transitions_total",
			Help:      "Circuit breaker state changes per outbound dependency.",
		},
		[]string{"dependency", "state"},
	)

	httpRequests = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern and status code.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "code"},
	)

	sweepDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rounds",
			Name:      "lock_sweep_duration_seconds",
			Help:      "Duration of lock sweeps.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func TicketSubmitted(outcome string) {
	ticketSubmissions.WithLabelValues(outcome).Inc()
}

func RoundLocked(trigger string) {
	roundsLocked.WithLabelValues(trigger).Inc()
}

func AutofillCreated(n int) {
	if n <= 0 {
		return
	}
	autofillCreated.Add(float64(n))
}

func ScoresComputed(outcome string, started time.Time) {
	scoreComputations.WithLabelValues(outcome).Inc()
	if outcome == "success" {
		scoreDuration.Observe(time.Since(started).Seconds())
	}
}

func SweepFinished(started time.Time) {
	sweepDuration.Observe(time.Since(started).Seconds())
}

// CircuitTransition matches resilience.CircuitBreakerConfig.OnStateChange.
func CircuitTransition(dependency, state string) {
	circuitTransitions.WithLabelValues(dependency, state).Inc()
}

func HTTPRequest(route string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// RegisterCacheStats exposes a cache's cumulative hit and miss counters. A
// second registration under the same name is ignored.
func RegisterCacheStats(name string, hits, misses func() float64) {
	labels := prometheus.Labels{"cache": name}
	for _, c := range []prometheus.Collector{
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "hits_total",
			Help: "Cache lookups served from memory.", ConstLabels: labels,
		}, hits),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "misses_total",
			Help: "Cache lookups that went to storage.", ConstLabels: labels,
		}, misses),
	} {
		if err := Registry.Register(c); err != nil {
			var dup prometheus.AlreadyRegisteredError
			if !errors.As(err, &dup) {
				panic(err)
			}
		}
	}
}
