package monitoring

import (
	"sync"
	"time"

	"vltava/models"
)

// Verdict is the discrete health status derived from the recent error rate.
type Verdict string

const (
	VerdictHealthy  Verdict = "healthy"
	VerdictDegraded Verdict = "degraded"
	VerdictCritical Verdict = "critical"
)

// Config holds the monitor's thresholds. Zero fields fall back to defaults.
type Config struct {
	EventCapacity  int           // ring buffer size
	HealthyMaxPct  float64       // error rate at or below which the verdict is healthy
	DegradedMaxPct float64       // error rate at or below which the verdict is degraded
	HealthWindow   time.Duration // trailing window the verdict looks at
}

const (
	defaultEventCapacity  = 1000
	defaultHealthyMaxPct  = 10
	defaultDegradedMaxPct = 25
	defaultHealthWindow   = 5 * time.Minute
)

// Monitor turns raw booking events into an operational signal. It is an
// explicitly constructed instance passed to its consumers; there is no
// package-level monitor. The event log is a fixed-size ring, so a long-lived
// process never grows it without bound. Counters are per-process.
type Monitor struct {
	cfg Config
	now func() time.Time

	mu       sync.Mutex
	events   []models.MonitoringEvent
	next     int // ring write position
	count    int // events currently held, <= cap
	metrics  models.Metrics
	durTotal int64
	durCount int64
}

// New returns a monitor with the given config, filling in defaults.
func New(cfg Config) *Monitor {
	if cfg.EventCapacity <= 0 {
		cfg.EventCapacity = defaultEventCapacity
	}
	if cfg.HealthyMaxPct <= 0 {
		cfg.HealthyMaxPct = defaultHealthyMaxPct
	}
	if cfg.DegradedMaxPct <= 0 {
		cfg.DegradedMaxPct = defaultDegradedMaxPct
	}
	if cfg.HealthWindow <= 0 {
		cfg.HealthWindow = defaultHealthWindow
	}
	return &Monitor{
		cfg:    cfg,
		now:    time.Now,
		events: make([]models.MonitoringEvent, cfg.EventCapacity),
	}
}

func (m *Monitor) append(kind models.EventKind, summary string, durationMs int64) {
	m.events[m.next] = models.MonitoringEvent{
		Kind:           kind,
		Timestamp:      m.now(),
		DurationMs:     durationMs,
		PayloadSummary: summary,
	}
	m.next = (m.next + 1) % len(m.events)
	if m.count < len(m.events) {
		m.count++
	}
	if durationMs > 0 {
		m.durTotal += durationMs
		m.durCount++
		m.metrics.AverageResponseTime = float64(m.durTotal) / float64(m.durCount)
	}
}

// TrackBookingAttempt records that a booking submission was started.
func (m *Monitor) TrackBookingAttempt(summary string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics.BookingAttempts++
	m.append(models.EventBookingAttempt, summary, 0)
}

// TrackBookingSuccess records a confirmed booking and folds its duration
// into the running average.
func (m *Monitor) TrackBookingSuccess(summary string, durationMs int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics.SuccessfulBookings++
	m.append(models.EventBookingSuccess, summary, durationMs)
}

// TrackBookingFailure records a failed booking submission.
func (m *Monitor) TrackBookingFailure(summary string, durationMs int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics.FailedBookings++
	m.append(models.EventBookingFailure, summary, durationMs)
}

// TrackAvailabilityCheck records a provider availability lookup.
func (m *Monitor) TrackAvailabilityCheck(summary string, durationMs int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics.AvailabilityChecks++
	m.append(models.EventAvailabilityCheck, summary, durationMs)
}

// TrackCancellation records an abandoned booking flow.
func (m *Monitor) TrackCancellation(summary string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics.Cancellations++
	m.append(models.EventCancellation, summary, 0)
}

// TrackAPIError records a provider transport or protocol failure.
func (m *Monitor) TrackAPIError(summary string, durationMs int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics.APIErrors++
	m.append(models.EventAPIError, summary, durationMs)
}

// Metrics returns the aggregate counters.
func (m *Monitor) Metrics() models.Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.metrics
}

// ErrorRate returns the percentage of failed outcomes among booking
// submissions and provider calls within the trailing window, or 0 when there
// were none. Provider transport errors count as failures, so a full outage
// moves the rate even though no booking reaches the provider.
func (m *Monitor) ErrorRate(window time.Duration) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errorRateLocked(window)
}

func (m *Monitor) errorRateLocked(window time.Duration) float64 {
	cutoff := m.now().Add(-window)
	var succeeded, failed int
	for i := 0; i < m.count; i++ {
		ev := m.events[(m.next-1-i+len(m.events)*2)%len(m.events)]
		if ev.Timestamp.Before(cutoff) {
			break // ring is in insertion order, older events follow
		}
		switch ev.Kind {
		case models.EventBookingSuccess:
			succeeded++
		case models.EventBookingFailure, models.EventAPIError:
			failed++
		}
	}
	total := succeeded + failed
	if total == 0 {
		return 0
	}
	return float64(failed) / float64(total) * 100
}

// Health derives the verdict from the error rate over the configured window.
func (m *Monitor) Health() Verdict {
	m.mu.Lock()
	defer m.mu.Unlock()
	rate := m.errorRateLocked(m.cfg.HealthWindow)
	switch {
	case rate <= m.cfg.HealthyMaxPct:
		return VerdictHealthy
	case rate <= m.cfg.DegradedMaxPct:
		return VerdictDegraded
	default:
		return VerdictCritical
	}
}

// Reset clears the event log and all counters.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = make([]models.MonitoringEvent, m.cfg.EventCapacity)
	m.next = 0
	m.count = 0
	m.metrics = models.Metrics{}
	m.durTotal = 0
	m.durCount = 0
}
