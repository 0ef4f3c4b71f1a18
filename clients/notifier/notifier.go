package notifier

import (
	"fmt"
	"time"

	"spinwatch/internal/window"
)

// AlertKind indicates which phase transition triggered an alert.
type AlertKind string

const (
	AlertKindWarming  AlertKind = "warming"   // Window opens within the lead warning
	AlertKindInWindow AlertKind = "in_window" // Distance entered a betting window
	AlertKindHit      AlertKind = "hit"       // Pattern landed while its window was open
)

// WindowAlert contains all the data needed for a betting window notification.
type WindowAlert struct {
	ID   string
	Kind AlertKind

	// Pattern info
	PatternID   string
	PatternName string

	// Distance info. For hits Distance is the landing distance.
	Distance       int
	Window         window.Window
	Windows        []window.Window
	SpinsRemaining int
	Progress       float64

	// Landing spin (hits only)
	SpinID            int
	Result            string
	BonusMultiplier   int
	TopSlotMultiplier int
	TopSlotMatched    bool

	Timestamp time.Time
}

// Title is a one-line headline shared by every channel.
func (a WindowAlert) Title() string {
	switch a.Kind {
	case AlertKindWarming:
		return fmt.Sprintf("%s window opens in %d spins", a.PatternName, a.SpinsRemaining)
	case AlertKindInWindow:
		return fmt.Sprintf("%s is in its betting window", a.PatternName)
	case AlertKindHit:
		return fmt.Sprintf("%s landed after %d spins", a.PatternName, a.Distance)
	default:
		return fmt.Sprintf("%s update", a.PatternName)
	}
}

// Notifier is the interface for sending window alerts to various channels.
type Notifier interface {
	// SendWindowAlert sends a window alert notification.
	SendWindowAlert(alert WindowAlert)

	// Close cleans up any resources.
	Close() error
}

// MultiNotifier broadcasts alerts to multiple notifiers.
type MultiNotifier struct {
	notifiers []Notifier
}

// NewMultiNotifier creates a new MultiNotifier with the given notifiers.
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	var active []Notifier
	for _, n := range notifiers {
		if n != nil {
			active = append(active, n)
		}
	}
	return &MultiNotifier{notifiers: active}
}

// SendWindowAlert sends the alert to all registered notifiers.
func (m *MultiNotifier) SendWindowAlert(alert WindowAlert) {
	for _, n := range m.notifiers {
		n.SendWindowAlert(alert)
	}
}

// Close closes all registered notifiers.
func (m *MultiNotifier) Close() error {
	var lastErr error
	for _, n := range m.notifiers {
		if err := n.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Count returns the number of active notifiers.
func (m *MultiNotifier) Count() int {
	return len(m.notifiers)
}
