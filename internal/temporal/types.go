package temporal

import "time"

// Trend classifies the recent behavior of a pattern's time series.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
	TrendCyclical   Trend = "cyclical"
)

// PointContext carries the situational metadata stamped onto a data point.
// Weekday and Hour are filled from the record instant when the caller leaves
// them nil.
type PointContext struct {
	Weekday     *int   `json:"weekday,omitempty"` // 0=Sunday .. 6=Saturday
	Hour        *int   `json:"hour,omitempty"`    // 0..23
	Language    string `json:"language,omitempty"`
	ProjectType string `json:"project_type,omitempty"`
}

// DataPoint is a single observation in a pattern's timeline. Immutable once
// appended.
type DataPoint struct {
	Timestamp time.Time    `json:"timestamp"`
	Value     float64      `json:"value"`
	Context   PointContext `json:"context"`
}

// EvolutionStage is append-only metadata describing a phase in a pattern's
// history. Nothing mutates a stage after construction.
type EvolutionStage struct {
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	PatternType string    `json:"pattern_type"`
	Description string    `json:"description"`
	Confidence  float64   `json:"confidence"`
	Examples    []string  `json:"examples,omitempty"`
}

// TemporalSeries tracks one pattern over time. The timeline holds no point
// older than the series retention window relative to the last prune.
type TemporalSeries struct {
	PatternID       string           `json:"pattern_id"`
	Timeline        []DataPoint      `json:"timeline"`
	Trend           Trend            `json:"trend"`
	Confidence      float64          `json:"confidence"`
	LastAnalysis    time.Time        `json:"last_analysis"`
	EvolutionStages []EvolutionStage `json:"evolution_stages,omitempty"`
}

// FeedbackAction is what the developer did with a suggestion.
type FeedbackAction string

const (
	ActionAccept FeedbackAction = "accept"
	ActionReject FeedbackAction = "reject"
	ActionModify FeedbackAction = "modify"
	ActionIgnore FeedbackAction = "ignore"
)

// FeedbackContext describes the suggestion a feedback event refers to.
type FeedbackContext struct {
	Language       string `json:"language"`
	SuggestionText string `json:"suggestion_text"`
	FilePath       string `json:"file_path,omitempty"`
}

// FeedbackRecord is a raw editor-surface event. Read-only to the engine.
type FeedbackRecord struct {
	Timestamp time.Time       `json:"timestamp"`
	Action    FeedbackAction  `json:"action"`
	Context   FeedbackContext `json:"context"`
}

// ChangeType categorizes a detected habit change.
type ChangeType string

const (
	ChangePreferenceShift ChangeType = "preference_shift"
	ChangeStyleEvolution  ChangeType = "style_evolution"
	ChangeNewAdoption     ChangeType = "new_adoption"
	ChangeAbandonment     ChangeType = "abandonment"
)

// ChangeEvidence quantifies the signal behind a habit change.
type ChangeEvidence struct {
	OldUsageCount        int `json:"old_usage_count"`
	NewUsageCount        int `json:"new_usage_count"`
	TransitionPeriodDays int `json:"transition_period_days"`
	ConfirmationEvents   int `json:"confirmation_events"`
}

// CodingHabitChange is an evidenced shift in which construct a developer
// prefers within a language and pattern type. Immutable once created.
type CodingHabitChange struct {
	ChangeID   string         `json:"change_id"`
	Timestamp  time.Time      `json:"timestamp"`
	ChangeType ChangeType     `json:"change_type"`
	Language   string         `json:"language"`
	OldPattern string         `json:"old_pattern"`
	NewPattern string         `json:"new_pattern"`
	Confidence float64        `json:"confidence"`
	Evidence   ChangeEvidence `json:"evidence"`
}

// TrendingPattern is one entry of the insight report's trend list.
type TrendingPattern struct {
	PatternID  string  `json:"pattern_id"`
	Trend      Trend   `json:"trend"`
	Confidence float64 `json:"confidence"`
}

// TemporalInsights is the aggregated report consumed by the editor surface.
type TemporalInsights struct {
	EvolutionSummary []string            `json:"evolution_summary"`
	TrendingPatterns []TrendingPattern   `json:"trending_patterns"`
	RecentChanges    []CodingHabitChange `json:"recent_changes"`
	CyclicalPatterns []string            `json:"cyclical_patterns"`
}
