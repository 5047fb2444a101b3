package temporal

import "time"

// patternEvent is one classified feedback record inside a
// (language, pattern type) stream.
type patternEvent struct {
	timestamp  time.Time
	pattern    string
	action     FeedbackAction
	suggestion string
}

// buildWindows partitions chronologically sorted events into fixed-width,
// non-overlapping, half-open intervals [t, t+width) starting at the first
// timestamp. Empty windows are dropped, so the result is variable in count
// but fixed in nominal width.
func buildWindows(events []patternEvent, width time.Duration) [][]patternEvent {
	if len(events) == 0 || width <= 0 {
		return nil
	}

	var windows [][]patternEvent
	start := events[0].timestamp
	last := events[len(events)-1].timestamp
	i := 0
	for !start.After(last) {
		end := start.Add(width)
		var win []patternEvent
		for i < len(events) && events[i].timestamp.Before(end) {
			win = append(win, events[i])
			i++
		}
		if len(win) > 0 {
			windows = append(windows, win)
		}
		start = end
	}
	return windows
}
