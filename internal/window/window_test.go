package window

import (
	"encoding/json"
	"math"
	"testing"
)

func TestClassify_Examples(t *testing.T) {
	tests := []struct {
		name      string
		distance  int
		windows   []Window
		phase     Phase
		active    Window
		remaining int
		progress  float64
	}{
		{
			name:      "waiting before first window",
			distance:  45,
			windows:   []Window{{60, 90}, {120, 150}},
			phase:     Waiting,
			active:    Window{60, 90},
			remaining: 15,
			progress:  75,
		},
		{
			name:     "missed falls back to last window",
			distance: 95,
			windows:  []Window{{60, 90}},
			phase:    Missed,
			active:   Window{60, 90},
			progress: 100,
		},
		{
			name:      "between windows selects next",
			distance:  95,
			windows:   []Window{{60, 90}, {120, 150}},
			phase:     Waiting,
			active:    Window{120, 150},
			remaining: 25,
			progress:  95.0 / 120.0 * 100,
		},
		{
			name:     "inside second window",
			distance: 130,
			windows:  []Window{{60, 90}, {120, 150}},
			phase:    InWindow,
			active:   Window{120, 150},
			progress: 100,
		},
		{
			name:      "zero distance",
			distance:  0,
			windows:   []Window{{61, 90}},
			phase:     Waiting,
			active:    Window{61, 90},
			remaining: 61,
			progress:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Classify(tt.distance, tt.windows)
			if st.Phase != tt.phase {
				t.Errorf("phase = %v, want %v", st.Phase, tt.phase)
			}
			if st.ActiveWindow != tt.active {
				t.Errorf("active window = %v, want %v", st.ActiveWindow, tt.active)
			}
			if st.SpinsRemaining != tt.remaining {
				t.Errorf("spins remaining = %d, want %d", st.SpinsRemaining, tt.remaining)
			}
			if math.Abs(st.ProgressPercent-tt.progress) > 1e-9 {
				t.Errorf("progress = %f, want %f", st.ProgressPercent, tt.progress)
			}
		})
	}
}

func TestClassify_Boundaries(t *testing.T) {
	windows := []Window{{100, 150}}

	tests := []struct {
		distance int
		phase    Phase
	}{
		{89, Waiting},
		{90, Warming},
		{99, Warming},
		{100, InWindow},
		{150, InWindow},
		{151, Missed},
	}

	for _, tt := range tests {
		st := Classify(tt.distance, windows)
		if st.Phase != tt.phase {
			t.Errorf("Classify(%d) phase = %v, want %v", tt.distance, st.Phase, tt.phase)
		}
	}
}

func TestClassify_WarmingThreshold(t *testing.T) {
	windows := []Window{{100, 150}}

	st := Classify(90, windows)
	if st.Phase != Warming || st.SpinsRemaining != 10 {
		t.Errorf("at 90: got %v with %d remaining, want warming with 10", st.Phase, st.SpinsRemaining)
	}

	st = Classify(89, windows)
	if st.Phase != Waiting || st.SpinsRemaining != 11 {
		t.Errorf("at 89: got %v with %d remaining, want waiting with 11", st.Phase, st.SpinsRemaining)
	}
}

func TestClassifier_CustomLeadWarning(t *testing.T) {
	c := NewClassifier(25)
	st := c.Classify(75, []Window{{100, 150}})
	if st.Phase != Warming {
		t.Errorf("expected warming with lead warning 25, got %v", st.Phase)
	}

	var zero Classifier
	st = zero.Classify(99, []Window{{100, 150}})
	if st.Phase != Waiting {
		t.Errorf("zero classifier should never warm, got %v", st.Phase)
	}
}

func TestClassify_EmptyWindows(t *testing.T) {
	for _, d := range []int{0, 1, 50, 1000} {
		st := Classify(d, nil)
		if st.Phase != Missed {
			t.Errorf("distance %d: phase = %v, want missed", d, st.Phase)
		}
		if st.ActiveWindow != (Window{}) {
			t.Errorf("distance %d: active = %v, want [0-0]", d, st.ActiveWindow)
		}
		if st.ProgressPercent != 100 {
			t.Errorf("distance %d: progress = %f, want 100", d, st.ProgressPercent)
		}
	}
}

func TestClassify_ZeroStartGuard(t *testing.T) {
	st := Classify(-3, []Window{{0, 10}})
	if st.Phase != Warming {
		t.Errorf("phase = %v, want warming", st.Phase)
	}
	if st.ProgressPercent != 100 {
		t.Errorf("progress = %f, want 100 for zero start", st.ProgressPercent)
	}
}

func TestClassify_ActiveWindowIsMember(t *testing.T) {
	windows := []Window{{10, 20}, {40, 55}, {80, 80}, {100, 130}}
	for d := 0; d <= 200; d++ {
		st := Classify(d, windows)
		found := false
		for _, w := range windows {
			if w == st.ActiveWindow {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("distance %d: active window %v not in input", d, st.ActiveWindow)
		}
	}
}

func TestClassify_ProgressMonotonic(t *testing.T) {
	windows := []Window{{120, 150}}
	prev := -1.0
	for d := 0; d <= 200; d++ {
		st := Classify(d, windows)
		if st.ProgressPercent < prev {
			t.Fatalf("progress decreased at %d: %f < %f", d, st.ProgressPercent, prev)
		}
		if st.ProgressPercent < 0 || st.ProgressPercent > 100 {
			t.Fatalf("progress out of range at %d: %f", d, st.ProgressPercent)
		}
		prev = st.ProgressPercent
	}
}

func TestClassify_Idempotent(t *testing.T) {
	windows := []Window{{61, 90}, {121, 150}}
	for _, d := range []int{0, 55, 61, 100, 121, 151, 400} {
		a := Classify(d, windows)
		b := Classify(d, windows)
		if a != b {
			t.Errorf("distance %d: %+v != %+v", d, a, b)
		}
	}
}

func TestClassify_UnorderedInputDoesNotPanic(t *testing.T) {
	windows := []Window{{120, 150}, {60, 90}, {70, 65}}
	for d := -10; d < 200; d += 7 {
		_ = Classify(d, windows)
	}
}

func TestSelect(t *testing.T) {
	windows := []Window{{60, 90}, {120, 150}}
	if got := Select(90, windows); got != (Window{60, 90}) {
		t.Errorf("Select(90) = %v", got)
	}
	if got := Select(91, windows); got != (Window{120, 150}) {
		t.Errorf("Select(91) = %v", got)
	}
	if got := Select(500, windows); got != (Window{120, 150}) {
		t.Errorf("Select(500) = %v", got)
	}
	if got := Select(5, nil); got != (Window{}) {
		t.Errorf("Select on empty = %v", got)
	}
}

func TestFromPairs(t *testing.T) {
	got := FromPairs([][2]int{{61, 90}, {121, 150}})
	if len(got) != 2 || got[0] != (Window{61, 90}) || got[1] != (Window{121, 150}) {
		t.Errorf("unexpected windows: %v", got)
	}
	if FromPairs(nil) != nil {
		t.Error("expected nil for empty input")
	}
}

func TestPhase_JSON(t *testing.T) {
	st := Classify(130, []Window{{120, 150}})
	data, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded struct {
		Phase Phase `json:"phase"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Phase != InWindow {
		t.Errorf("decoded phase = %v", decoded.Phase)
	}

	var p Phase
	if err := p.UnmarshalText([]byte("nope")); err == nil {
		t.Error("expected error for unknown phase")
	}
}
