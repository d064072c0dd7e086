package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuoteCalcTotal counts quote assembly outcomes by result code.
	QuoteCalcTotal *prometheus.CounterVec
	// PercentCorrectionsTotal counts percentage inputs that required scale correction.
	PercentCorrectionsTotal *prometheus.CounterVec
	// RateLookupsTotal counts exchange-rate resolutions by source.
	RateLookupsTotal *prometheus.CounterVec
	// RateCacheTotal tracks exchange-rate cache hits and misses.
	RateCacheTotal *prometheus.CounterVec
	// RateFallbackTotal counts lookups that degraded to the identity rate.
	RateFallbackTotal prometheus.Counter
	// DisplayFallbackTotal counts price renderings that fell back to the plain format.
	DisplayFallbackTotal prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuoteCalcTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_calculations_total",
			Help:      "Count of quote calculation outcomes by result code.",
		}, []string{"result"})
		PercentCorrectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "percent_corrections_total",
			Help:      "Count of percentage inputs normalised from an ambiguous scale.",
		}, []string{"field"})
		RateLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exchange_rate_lookups_total",
			Help:      "Count of exchange-rate resolutions by source.",
		}, []string{"source"})
		RateCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exchange_rate_cache_total",
			Help:      "Exchange-rate cache hit and miss counts.",
		}, []string{"result"})
		RateFallbackTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exchange_rate_fallback_total",
			Help:      "Number of lookups that degraded to rate=1.",
		})
		DisplayFallbackTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_display_fallback_total",
			Help:      "Number of price renderings served by the deterministic fallback.",
		})

		mustRegisterCollector(reg, QuoteCalcTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuoteCalcTotal = v
			}
		})
		mustRegisterCollector(reg, PercentCorrectionsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PercentCorrectionsTotal = v
			}
		})
		mustRegisterCollector(reg, RateLookupsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				RateLookupsTotal = v
			}
		})
		mustRegisterCollector(reg, RateCacheTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				RateCacheTotal = v
			}
		})
		mustRegisterCollector(reg, RateFallbackTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				RateFallbackTotal = v
			}
		})
		mustRegisterCollector(reg, DisplayFallbackTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				DisplayFallbackTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register metric: %w", err))
	}
}
