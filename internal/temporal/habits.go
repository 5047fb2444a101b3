package temporal

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"codewhisperer/internal/store"
)

const changesStateKey = "habit-changes"

// changeSnapshot is the persisted envelope for the change collection.
type changeSnapshot struct {
	Version int                 `json:"version"`
	Changes []CodingHabitChange `json:"changes"`
}

// HabitDetector finds evidenced shifts in which construct a developer
// prefers, per language and pattern type. It exclusively owns the retained
// change collection. Not safe for concurrent use; the Engine serializes
// access.
type HabitDetector struct {
	kv     store.KV
	log    *zap.Logger
	params Params
	now    func() time.Time

	classifiers map[PatternType]ClassifierFunc
	changes     []CodingHabitChange
	ckpt        *checkpointer
}

// NewHabitDetector returns a detector with the default keyword classifiers.
func NewHabitDetector(kv store.KV, params Params, log *zap.Logger) *HabitDetector {
	return &HabitDetector{
		kv:          kv,
		log:         log,
		params:      params,
		now:         time.Now,
		classifiers: defaultClassifiers(),
		ckpt:        newCheckpointer(kv, changesStateKey, log),
	}
}

// SetClassifier swaps the labeling function for one pattern type.
func (d *HabitDetector) SetClassifier(pt PatternType, fn ClassifierFunc) {
	if fn != nil {
		d.classifiers[pt] = fn
	}
}

// Load restores the checkpointed change collection, falling back to empty
// on any decode trouble.
func (d *HabitDetector) Load(ctx context.Context) {
	data, err := d.kv.Get(ctx, changesStateKey)
	if err != nil {
		d.log.Warn("habit change state unreadable, starting empty", zap.Error(err))
		return
	}
	if len(data) == 0 {
		return
	}

	var snap changeSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		d.log.Warn("habit change state corrupt, starting empty", zap.Error(err))
		return
	}
	if snap.Version != snapshotVersion {
		d.log.Warn("habit change state version unsupported, starting empty",
			zap.Int("version", snap.Version))
		return
	}
	d.changes = snap.Changes
	d.log.Debug("habit change state loaded", zap.Int("changes", len(d.changes)))
}

// AnalyzeEvolution runs windowed distribution comparison over the feedback
// history, appends every detected change to the retained collection, prunes
// the collection to its retention window, checkpoints, and returns the
// newly detected changes.
func (d *HabitDetector) AnalyzeEvolution(history []FeedbackRecord) []CodingHabitChange {
	byLanguage := make(map[string][]FeedbackRecord)
	for _, rec := range history {
		lang := rec.Context.Language
		byLanguage[lang] = append(byLanguage[lang], rec)
	}

	languages := make([]string, 0, len(byLanguage))
	for lang := range byLanguage {
		languages = append(languages, lang)
	}
	sort.Strings(languages)

	var emitted []CodingHabitChange
	for _, lang := range languages {
		for _, pt := range patternTypes {
			emitted = append(emitted, d.analyzePatternType(lang, pt, byLanguage[lang])...)
		}
	}

	if len(emitted) > 0 {
		d.log.Info("habit changes detected", zap.Int("count", len(emitted)))
	}
	d.changes = append(d.changes, emitted...)
	d.prune()
	d.checkpointAsync()
	return emitted
}

// analyzePatternType filters one language's feedback down to the records
// relevant to a pattern type, windows them, and compares adjacent window
// distributions. Only the top candidate per window pair is kept.
func (d *HabitDetector) analyzePatternType(lang string, pt PatternType, records []FeedbackRecord) []CodingHabitChange {
	classify := d.classifiers[pt]

	var events []patternEvent
	for _, rec := range records {
		if !relevantTo(pt, rec.Context.SuggestionText) {
			continue
		}
		events = append(events, patternEvent{
			timestamp:  rec.Timestamp,
			pattern:    classify(rec.Context.SuggestionText),
			action:     rec.Action,
			suggestion: rec.Context.SuggestionText,
		})
	}
	if len(events) < d.params.MinDataPoints {
		return nil
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].timestamp.Before(events[j].timestamp)
	})

	windows := buildWindows(events, d.params.WindowSize)
	var changes []CodingHabitChange
	for i := 1; i < len(windows); i++ {
		prevWin, currWin := windows[i-1], windows[i]
		prevDist := patternDistribution(prevWin)
		currDist := patternDistribution(currWin)
		shifts := significantShifts(prevDist, currDist, d.params.ShiftThreshold, d.params.GrowthThreshold)
		if len(shifts) == 0 {
			continue
		}
		top := shifts[0]
		changes = append(changes, CodingHabitChange{
			ChangeID:   uuid.NewString(),
			Timestamp:  d.now(),
			ChangeType: changeTypeFor(top),
			Language:   lang,
			OldPattern: top.From,
			NewPattern: top.To,
			Confidence: top.Confidence,
			Evidence: ChangeEvidence{
				OldUsageCount:        prevDist[top.From],
				NewUsageCount:        currDist[top.To],
				TransitionPeriodDays: transitionDays(prevWin, currWin),
				ConfirmationEvents:   min(len(prevWin), len(currWin)),
			},
		})
	}
	return changes
}

// changeTypeFor derives the change category from shift strength, with
// adoption/abandonment reserved for transitions involving the unknown
// label.
func changeTypeFor(shift patternShift) ChangeType {
	switch {
	case shift.Confidence > 0.7:
		return ChangePreferenceShift
	case shift.Confidence > 0.5:
		return ChangeStyleEvolution
	case shift.From == labelUnknown:
		return ChangeNewAdoption
	case shift.To == labelUnknown:
		return ChangeAbandonment
	default:
		return ChangePreferenceShift
	}
}

// transitionDays is the whole-day gap between the previous window's last
// event and the current window's first, floored at zero.
func transitionDays(prevWin, currWin []patternEvent) int {
	gap := currWin[0].timestamp.Sub(prevWin[len(prevWin)-1].timestamp)
	days := int(gap.Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func (d *HabitDetector) prune() {
	cutoff := d.now().Add(-d.params.ChangeRetention)
	kept := d.changes[:0]
	for _, ch := range d.changes {
		if ch.Timestamp.After(cutoff) {
			kept = append(kept, ch)
		}
	}
	d.changes = kept
}

// Changes returns a copy of the retained change collection.
func (d *HabitDetector) Changes() []CodingHabitChange {
	out := make([]CodingHabitChange, len(d.changes))
	copy(out, d.changes)
	return out
}

// Recent returns up to limit changes newer than maxAge, newest first.
func (d *HabitDetector) Recent(limit int, maxAge time.Duration) []CodingHabitChange {
	cutoff := d.now().Add(-maxAge)
	var recent []CodingHabitChange
	for _, ch := range d.changes {
		if ch.Timestamp.After(cutoff) {
			recent = append(recent, ch)
		}
	}
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Timestamp.After(recent[j].Timestamp)
	})
	if len(recent) > limit {
		recent = recent[:limit]
	}
	return recent
}

// Flush writes the change collection synchronously.
func (d *HabitDetector) Flush(ctx context.Context) error {
	data, err := d.snapshot()
	if err != nil {
		return fmt.Errorf("encode habit change state: %w", err)
	}
	if err := d.ckpt.flush(ctx, data); err != nil {
		return fmt.Errorf("write habit change state: %w", err)
	}
	return nil
}

func (d *HabitDetector) snapshot() ([]byte, error) {
	return json.Marshal(changeSnapshot{Version: snapshotVersion, Changes: d.changes})
}

func (d *HabitDetector) checkpointAsync() {
	data, err := d.snapshot()
	if err != nil {
		d.log.Warn("habit change checkpoint encode failed", zap.Error(err))
		return
	}
	d.ckpt.submit(data)
}

func (d *HabitDetector) wait() { d.ckpt.wait() }
