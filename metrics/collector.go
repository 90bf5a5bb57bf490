// Package metrics exports parser activity as Prometheus metrics.
//
//	c := metrics.NewCollector(nil)
//	p := parser.New(g, parser.WithObserver(c))
//	http.Handle("/metrics", c.Handler())
package metrics

import (
	"errors"
	"net/http"

	"github.com/dhamidi/pgen/parser"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pgen"

// Result labels of pgen_parses_total.
const (
	ResultOK            = "ok"
	ResultSyntaxError   = "syntax_error"
	ResultInternalError = "internal_error"
	ResultError         = "error"
)

// Collector implements parser.Observer. It is safe for concurrent use by
// several parsers.
type Collector struct {
	registry *prometheus.Registry

	parses          *prometheus.CounterVec
	tokens          *prometheus.HistogramVec
	disambiguations *prometheus.CounterVec
	lookahead       prometheus.Histogram
}

var _ parser.Observer = (*Collector)(nil)

// NewCollector registers the parser metrics with registry. If registry is
// nil, a new one is created.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,
		parses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parses_total",
			Help:      "Parses by start rule and result.",
		}, []string{"rule", "result"}),
		tokens: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parse_tokens",
			Help:      "Tokens consumed per parse.",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 8),
		}, []string{"rule"}),
		disambiguations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disambiguations_total",
			Help:      "Ambiguous transitions resolved by lookahead, by how the winner was chosen.",
		}, []string{"decision"}),
		lookahead: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "disambiguation_lookahead_tokens",
			Help:      "Lookahead tokens examined per disambiguation.",
			Buckets:   []float64{1, 2, 3, 4, 6, 8, 16, 32},
		}),
	}

	registry.MustRegister(c.parses, c.tokens, c.disambiguations, c.lookahead)
	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) ParseFinished(rule string, tokens int, err error) {
	c.parses.WithLabelValues(rule, Classify(err)).Inc()
	c.tokens.WithLabelValues(rule).Observe(float64(tokens))
}

func (c *Collector) Disambiguated(candidates, lookahead int, tieBreak bool) {
	decision := "unique"
	if tieBreak {
		decision = "tie_break"
	}
	c.disambiguations.WithLabelValues(decision).Inc()
	c.lookahead.Observe(float64(lookahead))
}

// Classify maps a parse error to its result label.
func Classify(err error) string {
	var syntaxErr *parser.SyntaxError
	var internalErr *parser.InternalError
	switch {
	case err == nil:
		return ResultOK
	case errors.As(err, &syntaxErr):
		return ResultSyntaxError
	case errors.As(err, &internalErr):
		return ResultInternalError
	}
	return ResultError
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
