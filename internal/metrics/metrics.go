package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Business Metrics
var (
	CoinsEarned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCoinsEarned,
			Help: HelpTextCoinsEarned,
		},
		[]string{LabelSource},
	)

	CoinsSpent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCoinsSpent,
			Help: HelpTextCoinsSpent,
		},
		[]string{LabelSource},
	)

	ItemsSold = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameItemsSold,
			Help: HelpTextItemsSold,
		},
		[]string{LabelItem},
	)

	ItemsUsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameItemsUsed,
			Help: HelpTextItemsUsed,
		},
		[]string{LabelItem},
	)

	FishCaught = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameFishCaught,
			Help: HelpTextFishCaught,
		},
		[]string{LabelRarity},
	)

	MilestonesReached = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameMilestonesReached,
			Help: HelpTextMilestonesReached,
		},
	)

	LegendaryDrops = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameLegendaryDrops,
			Help: HelpTextLegendaryDrops,
		},
		[]string{LabelRarity},
	)

	EffectsActivated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEffectsActivated,
			Help: HelpTextEffectsActivated,
		},
		[]string{LabelType},
	)

	CooldownRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCooldownRejections,
			Help: HelpTextCooldownRejections,
		},
		[]string{LabelAction},
	)
)
