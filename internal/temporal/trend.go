package temporal

import "math"

// TrendAnalyzer classifies a series timeline as increasing, decreasing,
// stable, or cyclical. Cyclicality wins over slope.
type TrendAnalyzer struct {
	params Params
}

// NewTrendAnalyzer returns an analyzer with the given thresholds.
func NewTrendAnalyzer(params Params) *TrendAnalyzer {
	return &TrendAnalyzer{params: params}
}

// Classify returns the trend of the series' trailing window. Series with
// fewer than MinDataPoints points are stable by definition.
func (a *TrendAnalyzer) Classify(series *TemporalSeries) Trend {
	pts := series.Timeline
	if len(pts) < a.params.MinDataPoints {
		return TrendStable
	}
	if len(pts) > a.params.TrendWindow {
		pts = pts[len(pts)-a.params.TrendWindow:]
	}

	if a.isCyclical(pts) {
		return TrendCyclical
	}

	slope := olsSlope(pts)
	switch {
	case math.Abs(slope) < a.params.SlopeEpsilon:
		return TrendStable
	case slope > 0:
		return TrendIncreasing
	default:
		return TrendDecreasing
	}
}

// olsSlope fits an ordinary-least-squares line of value against position
// (not wall clock) and returns its slope. A degenerate denominator yields 0.
func olsSlope(pts []DataPoint) float64 {
	n := float64(len(pts))
	var sumX, sumY, sumXY, sumX2 float64
	for i, p := range pts {
		x := float64(i)
		sumX += x
		sumY += p.Value
		sumXY += x * p.Value
		sumX2 += x * x
	}
	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

func (a *TrendAnalyzer) isCyclical(pts []DataPoint) bool {
	if len(pts) < a.params.CyclicalMinPoints {
		return false
	}
	return a.weeklyCycle(pts) || a.dailyCycle(pts)
}

// weeklyCycle flags a series whose weekday averages spread wider than
// WeeklyVarianceRatio of their mean. Weekdays with zero observations
// average to 0 and still participate in the mean.
func (a *TrendAnalyzer) weeklyCycle(pts []DataPoint) bool {
	var sums, counts [7]float64
	for _, p := range pts {
		wd := pointWeekday(p)
		sums[wd] += p.Value
		counts[wd]++
	}

	var avgs [7]float64
	var mean float64
	for i := range sums {
		if counts[i] > 0 {
			avgs[i] = sums[i] / counts[i]
		}
		mean += avgs[i]
	}
	mean /= 7

	minAvg, maxAvg := avgs[0], avgs[0]
	for _, v := range avgs[1:] {
		if v < minAvg {
			minAvg = v
		}
		if v > maxAvg {
			maxAvg = v
		}
	}
	return maxAvg-minAvg > a.params.WeeklyVarianceRatio*mean
}

// dailyCycle contrasts mean hourly averages inside work hours against the
// rest of the day. Same zero-bucket behavior as weeklyCycle.
func (a *TrendAnalyzer) dailyCycle(pts []DataPoint) bool {
	var sums, counts [24]float64
	for _, p := range pts {
		hr := pointHour(p)
		sums[hr] += p.Value
		counts[hr]++
	}

	var workSum, offSum float64
	var workN, offN int
	for h := 0; h < 24; h++ {
		avg := 0.0
		if counts[h] > 0 {
			avg = sums[h] / counts[h]
		}
		if h >= a.params.WorkdayStart && h <= a.params.WorkdayEnd {
			workSum += avg
			workN++
		} else {
			offSum += avg
			offN++
		}
	}
	if workN == 0 || offN == 0 {
		return false
	}
	workAvg := workSum / float64(workN)
	offAvg := offSum / float64(offN)
	return math.Abs(workAvg-offAvg) > a.params.DailyContrastRatio*(workAvg+offAvg)
}

func pointWeekday(p DataPoint) int {
	if p.Context.Weekday != nil && *p.Context.Weekday >= 0 && *p.Context.Weekday < 7 {
		return *p.Context.Weekday
	}
	return int(p.Timestamp.Weekday())
}

func pointHour(p DataPoint) int {
	if p.Context.Hour != nil && *p.Context.Hour >= 0 && *p.Context.Hour < 24 {
		return *p.Context.Hour
	}
	return p.Timestamp.Hour()
}

// confidenceForSamples maps sample counts onto a coarse confidence scale.
// More evidence, more confidence, capped below certainty.
func confidenceForSamples(n int) float64 {
	switch {
	case n >= 30:
		return 0.95
	case n >= 14:
		return 0.8
	case n >= 5:
		return 0.6
	default:
		return 0.5
	}
}
