package app

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"spinwatch/clients/notifier"
	"spinwatch/clients/telemetry"
	"spinwatch/config"
	"spinwatch/internal/view"
	"spinwatch/internal/window"
)

// patternState is what we remember about a pattern between polls.
type patternState struct {
	status   window.Status
	distance int
}

// TransitionTracker turns consecutive pattern cards into window alerts.
// State lives in memory only; a restart starts from scratch.
type TransitionTracker struct {
	logger *zap.Logger

	mu     sync.Mutex
	states map[string]patternState

	now   func() time.Time
	newID func() string
}

func NewTransitionTracker(logger *zap.Logger) *TransitionTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransitionTracker{
		logger: logger,
		states: make(map[string]patternState),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Observe compares cards against the previous poll. The first sighting of
// a pattern only seeds state. Non-vip cards are tracked but never alert.
func (t *TransitionTracker) Observe(cat *config.Catalog, cards []view.PatternCard, spins []telemetry.Spin) []notifier.WindowAlert {
	t.mu.Lock()
	defer t.mu.Unlock()

	var alerts []notifier.WindowAlert
	for _, card := range cards {
		prev, seen := t.states[card.PatternID]
		t.states[card.PatternID] = patternState{status: card.Status, distance: card.Distance}
		if !seen || !card.VIP {
			continue
		}

		switch {
		case card.Distance < prev.distance:
			if prev.status.Phase != window.InWindow {
				continue
			}
			alert := t.alert(notifier.AlertKindHit, card)
			alert.Distance = prev.distance + 1
			alert.Window = prev.status.ActiveWindow
			alert.SpinsRemaining = 0
			alert.Progress = 100
			if sp, ok := landingSpin(cat, card.PatternID, spins); ok {
				alert.SpinID = sp.ID
				alert.Result = sp.Result
				alert.BonusMultiplier = deref(sp.BonusMultiplier)
				alert.TopSlotMultiplier = deref(sp.TopSlotMultiplier)
				alert.TopSlotMatched = sp.TopSlotMatched != nil && *sp.TopSlotMatched
			}
			alerts = append(alerts, alert)

		case card.Status.Phase == prev.status.Phase && card.Status.ActiveWindow == prev.status.ActiveWindow:
			continue

		case card.Status.Phase == window.Warming:
			alerts = append(alerts, t.alert(notifier.AlertKindWarming, card))

		case card.Status.Phase == window.InWindow:
			alerts = append(alerts, t.alert(notifier.AlertKindInWindow, card))
		}
	}

	for _, a := range alerts {
		t.logger.Info("window transition",
			zap.String("id", a.ID),
			zap.String("kind", string(a.Kind)),
			zap.String("pattern", a.PatternID),
			zap.Int("distance", a.Distance),
		)
	}
	return alerts
}

// Phase returns the last phase seen for a pattern.
func (t *TransitionTracker) Phase(patternID string) (window.Phase, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.states[patternID]
	return st.status.Phase, ok
}

func (t *TransitionTracker) Tracked() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.states)
}

func (t *TransitionTracker) alert(kind notifier.AlertKind, card view.PatternCard) notifier.WindowAlert {
	return notifier.WindowAlert{
		ID:             t.newID(),
		Kind:           kind,
		PatternID:      card.PatternID,
		PatternName:    card.Name,
		Distance:       card.Distance,
		Window:         card.Status.ActiveWindow,
		Windows:        card.Windows,
		SpinsRemaining: card.Status.SpinsRemaining,
		Progress:       card.Status.ProgressPercent,
		Timestamp:      t.now(),
	}
}

// AllowAlert applies the notification toggles.
func AllowAlert(kind notifier.AlertKind, n config.NotificationsConfig) bool {
	if !n.Enabled {
		return false
	}
	switch kind {
	case notifier.AlertKindWarming:
		return n.Warming
	case notifier.AlertKindInWindow:
		return n.InWindow
	case notifier.AlertKindHit:
		return n.Hits
	}
	return false
}

// landingSpin finds the newest spin that completed the pattern. Sequences
// complete on their last value.
func landingSpin(cat *config.Catalog, patternID string, spins []telemetry.Spin) (telemetry.Spin, bool) {
	if len(spins) == 0 {
		return telemetry.Spin{}, false
	}
	if cat != nil {
		if p, ok := cat.Get(patternID); ok && len(p.Value) > 0 {
			want := p.Value[len(p.Value)-1]
			for _, sp := range spins {
				if sp.Result == want {
					return sp, true
				}
			}
		}
	}
	return spins[0], true
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
