package temporal

import (
	"math"
	"sort"
)

// patternDistribution counts accepted suggestions per canonical pattern
// label within one window. Rejections carry no usage signal.
func patternDistribution(window []patternEvent) map[string]int {
	dist := make(map[string]int)
	for _, ev := range window {
		if ev.action != ActionAccept {
			continue
		}
		dist[ev.pattern]++
	}
	return dist
}

// patternShift is a candidate transition between two pattern labels.
type patternShift struct {
	From       string
	To         string
	Confidence float64
}

// ratioTolerance absorbs float noise at the thresholds: a share delta must
// clear its threshold by more than this to count. Keeps exact boundary
// cases (e.g. a drop of precisely 0.3) below the line.
const ratioTolerance = 1e-9

// significantShifts compares two adjacent window distributions and returns
// candidate transitions sorted by descending confidence. A label whose
// usage share drops by more than shiftThreshold is paired with every other
// label whose share grows by more than growthThreshold; confidence is the
// smaller of the two deltas. Zero totals on either side mean no signal.
func significantShifts(prev, curr map[string]int, shiftThreshold, growthThreshold float64) []patternShift {
	prevTotal := distTotal(prev)
	currTotal := distTotal(curr)
	if prevTotal == 0 || currTotal == 0 {
		return nil
	}

	var shifts []patternShift
	for _, from := range sortedLabels(prev) {
		prevRatio := float64(prev[from]) / float64(prevTotal)
		currRatio := float64(curr[from]) / float64(currTotal)
		decrease := prevRatio - currRatio
		if decrease-shiftThreshold <= ratioTolerance {
			continue
		}
		for _, to := range sortedLabels(curr) {
			if to == from {
				continue
			}
			increase := float64(curr[to])/float64(currTotal) - float64(prev[to])/float64(prevTotal)
			if increase-growthThreshold <= ratioTolerance {
				continue
			}
			shifts = append(shifts, patternShift{
				From:       from,
				To:         to,
				Confidence: math.Min(decrease, increase),
			})
		}
	}

	sort.SliceStable(shifts, func(i, j int) bool {
		return shifts[i].Confidence > shifts[j].Confidence
	})
	return shifts
}

func distTotal(dist map[string]int) int {
	total := 0
	for _, n := range dist {
		total += n
	}
	return total
}

// sortedLabels keeps shift enumeration deterministic across runs.
func sortedLabels(dist map[string]int) []string {
	labels := make([]string, 0, len(dist))
	for label := range dist {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
