// Package window classifies a pattern's distance against its betting windows.
//
// A pattern's distance is the number of spins since it last landed. Its
// betting windows are the distance ranges considered favorable for a wager.
// Classify reports where the current distance sits relative to the relevant
// window and how far along the wait is.
//
// Callers supply windows in ascending, non-overlapping order. Nothing is
// validated: negative distances and unordered windows are classified as-is.
package window

import "fmt"

// DefaultLeadWarning is the number of remaining spins at which a waiting
// pattern is reported as warming up.
const DefaultLeadWarning = 10

// Window is an inclusive [Start, End] distance interval.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (w Window) String() string {
	return fmt.Sprintf("[%d-%d]", w.Start, w.End)
}

// Contains reports whether distance falls inside the window, bounds included.
func (w Window) Contains(distance int) bool {
	return w.Start <= distance && distance <= w.End
}

// FromPairs converts [start, end] pairs into windows.
func FromPairs(pairs [][2]int) []Window {
	if len(pairs) == 0 {
		return nil
	}
	out := make([]Window, len(pairs))
	for i, p := range pairs {
		out[i] = Window{Start: p[0], End: p[1]}
	}
	return out
}

// Phase is where a distance sits relative to its active window.
type Phase int

const (
	Waiting Phase = iota
	Warming
	InWindow
	Missed
)

func (p Phase) String() string {
	switch p {
	case Waiting:
		return "waiting"
	case Warming:
		return "warming"
	case InWindow:
		return "in_window"
	case Missed:
		return "missed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// MarshalText encodes the phase by name so JSON output stays readable.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a phase name produced by MarshalText.
func (p *Phase) UnmarshalText(text []byte) error {
	switch string(text) {
	case "waiting":
		*p = Waiting
	case "warming":
		*p = Warming
	case "in_window":
		*p = InWindow
	case "missed":
		*p = Missed
	default:
		return fmt.Errorf("unknown phase %q", string(text))
	}
	return nil
}

// Status is the classification of one distance against a window list.
type Status struct {
	Phase        Phase  `json:"phase"`
	ActiveWindow Window `json:"active_window"`
	// ProgressPercent is 100 once the window has opened.
	ProgressPercent float64 `json:"progress_percent"`
	// SpinsRemaining is only set while Waiting or Warming.
	SpinsRemaining int `json:"spins_remaining"`
}

// Classifier holds the tunables of the classification. The zero value
// never reports Warming.
type Classifier struct {
	LeadWarning int
}

// NewClassifier returns a classifier that flags Warming once at most
// leadWarning spins remain before the window opens.
func NewClassifier(leadWarning int) Classifier {
	return Classifier{LeadWarning: leadWarning}
}

// Classify uses DefaultLeadWarning.
func Classify(distance int, windows []Window) Status {
	return NewClassifier(DefaultLeadWarning).Classify(distance, windows)
}

// Classify maps a distance and its betting windows to a Status.
func (c Classifier) Classify(distance int, windows []Window) Status {
	if len(windows) == 0 {
		return Status{Phase: Missed, ProgressPercent: 100}
	}

	active := Select(distance, windows)
	switch {
	case distance < active.Start:
		remaining := active.Start - distance
		st := Status{
			Phase:           Waiting,
			ActiveWindow:    active,
			ProgressPercent: waitProgress(distance, active.Start),
			SpinsRemaining:  remaining,
		}
		if remaining <= c.LeadWarning {
			st.Phase = Warming
		}
		return st
	case distance <= active.End:
		return Status{Phase: InWindow, ActiveWindow: active, ProgressPercent: 100}
	default:
		return Status{Phase: Missed, ActiveWindow: active, ProgressPercent: 100}
	}
}

// Select returns the first window that has not closed yet at distance, or
// the last window once every window has been passed. An empty list yields
// the zero window.
func Select(distance int, windows []Window) Window {
	if len(windows) == 0 {
		return Window{}
	}
	for _, w := range windows {
		if w.End >= distance {
			return w
		}
	}
	return windows[len(windows)-1]
}

func waitProgress(distance, start int) float64 {
	if start == 0 {
		return 100
	}
	pct := float64(distance) / float64(start) * 100
	if pct > 100 {
		return 100
	}
	return pct
}
