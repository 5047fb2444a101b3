package temporal

import "time"

// Params holds the engine's tunable thresholds.
type Params struct {
	// MinDataPoints gates both trend analysis and per-type habit analysis.
	MinDataPoints int
	// TrendWindow is how many trailing points the regression considers.
	TrendWindow int
	// SlopeEpsilon is the |slope| below which a series counts as stable.
	SlopeEpsilon float64
	// CyclicalMinPoints gates the periodicity tests.
	CyclicalMinPoints int
	// WeeklyVarianceRatio: cyclical when weekday-average spread exceeds
	// this fraction of the weekday-average mean.
	WeeklyVarianceRatio float64
	// DailyContrastRatio: cyclical when |workAvg-offAvg| exceeds this
	// fraction of (workAvg+offAvg).
	DailyContrastRatio float64
	// WorkdayStart/WorkdayEnd bound the "work hours" bucket, inclusive.
	WorkdayStart int
	WorkdayEnd   int

	// SeriesRetention bounds every series timeline.
	SeriesRetention time.Duration
	// ChangeRetention bounds the habit-change collection.
	ChangeRetention time.Duration
	// WindowSize is the nominal width of habit-analysis windows.
	WindowSize time.Duration
	// ShiftThreshold is the minimum ratio decrease that starts a candidate
	// transition; GrowthThreshold the minimum paired ratio increase.
	ShiftThreshold  float64
	GrowthThreshold float64

	// RecentChangeLimit / RecentChangeWindow shape the insight report.
	RecentChangeLimit  int
	RecentChangeWindow time.Duration
}

// DefaultParams returns the standard thresholds.
func DefaultParams() Params {
	return Params{
		MinDataPoints:       5,
		TrendWindow:         30,
		SlopeEpsilon:        0.01,
		CyclicalMinPoints:   14,
		WeeklyVarianceRatio: 0.3,
		DailyContrastRatio:  0.25,
		WorkdayStart:        9,
		WorkdayEnd:          17,
		SeriesRetention:     90 * 24 * time.Hour,
		ChangeRetention:     180 * 24 * time.Hour,
		WindowSize:          14 * 24 * time.Hour,
		ShiftThreshold:      0.3,
		GrowthThreshold:     0.15,
		RecentChangeLimit:   10,
		RecentChangeWindow:  30 * 24 * time.Hour,
	}
}
