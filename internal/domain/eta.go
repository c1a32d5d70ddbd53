package domain

import "time"

const etaClock = "15:04"

// ETAPlanner spaces stops along a route: the first arrival window opens after
// BaseDelay plus one PerStop, each later stop PerStop after the one before.
type ETAPlanner struct {
	BaseDelay time.Duration
	PerStop   time.Duration
	Window    time.Duration
}

// DefaultETAPlanner uses a 30 minute lead, 5 minutes per stop and a 2 hour window.
func DefaultETAPlanner() ETAPlanner {
	return ETAPlanner{BaseDelay: 30 * time.Minute, PerStop: 5 * time.Minute, Window: 120 * time.Minute}
}

// ArrivalWindow returns the window bounds for the stop at 1-based route position.
// position is the stop's place in entry order, not its sequence number.
func (p ETAPlanner) ArrivalWindow(position int, now time.Time) (start, end time.Time) {
	start = now.Add(p.BaseDelay + time.Duration(position)*p.PerStop)
	return start, start.Add(p.Window)
}

// Estimate renders ArrivalWindow as "HH:MM-HH:MM".
func (p ETAPlanner) Estimate(position int, now time.Time) string {
	start, end := p.ArrivalWindow(position, now)
	return start.Format(etaClock) + "-" + end.Format(etaClock)
}

// EstimateWindow is Estimate for an ad-hoc planner.
func EstimateWindow(position int, base, perStop, window time.Duration, now time.Time) string {
	return ETAPlanner{BaseDelay: base, PerStop: perStop, Window: window}.Estimate(position, now)
}
