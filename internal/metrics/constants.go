package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Business metric names
const (
	MetricNameCoinsEarned        = "coins_earned_total"
	MetricNameCoinsSpent         = "coins_spent_total"
	MetricNameItemsSold          = "items_sold_total"
	MetricNameItemsUsed          = "items_used_total"
	MetricNameFishCaught         = "fish_caught_total"
	MetricNameMilestonesReached  = "milestones_reached_total"
	MetricNameLegendaryDrops     = "legendary_drops_total"
	MetricNameEffectsActivated   = "effects_activated_total"
	MetricNameCooldownRejections = "cooldown_rejections_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Event metric help text
const (
	HelpTextEventsPublished    = "Total number of events published"
	HelpTextEventHandlerErrors = "Total number of event handler errors"
)

// Business metric help text
const (
	HelpTextCoinsEarned        = "Total coins credited to user balances"
	HelpTextCoinsSpent         = "Total coins debited from user balances"
	HelpTextItemsSold          = "Total number of items sold back to the shop"
	HelpTextItemsUsed          = "Total number of items consumed"
	HelpTextFishCaught         = "Total number of fish caught"
	HelpTextMilestonesReached  = "Total number of lifetime-earnings milestones reached"
	HelpTextLegendaryDrops     = "Total number of legendary or better item acquisitions"
	HelpTextEffectsActivated   = "Total number of timed effects activated"
	HelpTextCooldownRejections = "Total number of actions rejected by an active cooldown"
)

// ============================================================================
// Metric Label Names
// ============================================================================

const (
	LabelMethod = "method"
	LabelPath   = "path"
	LabelStatus = "status"
	LabelType   = "type"
	LabelItem   = "item"
	LabelSource = "source"
	LabelRarity = "rarity"
	LabelAction = "action"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds, ranging from 1ms to 10s.
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// ============================================================================
// Log Messages
// ============================================================================

const (
	LogMsgPayloadDecodeFailed = "Failed to decode event payload for metrics"
	LogMsgMetricsRecorded     = "Metrics recorded for event"
)
