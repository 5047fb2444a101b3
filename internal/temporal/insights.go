package temporal

import (
	"fmt"
	"sort"
)

// TemporalInsights builds the aggregated report for the editor surface. As
// a side effect it recomputes and overwrites every series' cached trend,
// confidence, and analysis timestamp, keeping the store fresh between
// scheduler passes. Given unchanged state the classification is
// deterministic, so repeated calls yield identical trend and cyclical
// listings.
func (e *Engine) TemporalInsights() TemporalInsights {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.insightsLocked()
}

func (e *Engine) insightsLocked() TemporalInsights {
	now := e.now()

	var trending []TrendingPattern
	var cyclical []string
	for _, id := range e.series.PatternIDs() {
		series := e.series.Get(id)
		trend := e.analyzer.Classify(series)
		series.Trend = trend
		series.Confidence = confidenceForSamples(len(series.Timeline))
		series.LastAnalysis = now

		trending = append(trending, TrendingPattern{
			PatternID:  id,
			Trend:      trend,
			Confidence: series.Confidence,
		})
		if trend == TrendCyclical {
			cyclical = append(cyclical, id)
		}
	}
	sort.SliceStable(trending, func(i, j int) bool {
		if trending[i].Confidence != trending[j].Confidence {
			return trending[i].Confidence > trending[j].Confidence
		}
		return trending[i].PatternID < trending[j].PatternID
	})

	return TemporalInsights{
		EvolutionSummary: e.summaryLocked(),
		TrendingPatterns: trending,
		RecentChanges:    e.detector.Recent(e.params.RecentChangeLimit, e.params.RecentChangeWindow),
		CyclicalPatterns: cyclical,
	}
}

// summaryLocked renders the retained change collection as human-readable
// lines: one total line, then one line per language.
func (e *Engine) summaryLocked() []string {
	changes := e.detector.changes
	lines := []string{
		fmt.Sprintf("Detected %d coding habit %s", len(changes), pluralize(len(changes), "change")),
	}

	byLanguage := make(map[string]int)
	for _, ch := range changes {
		byLanguage[ch.Language]++
	}
	languages := make([]string, 0, len(byLanguage))
	for lang := range byLanguage {
		languages = append(languages, lang)
	}
	sort.Strings(languages)
	for _, lang := range languages {
		n := byLanguage[lang]
		lines = append(lines, fmt.Sprintf("%s: %d %s", lang, n, pluralize(n, "change")))
	}
	return lines
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return noun
	}
	return noun + "s"
}
