package notifier

import (
	"errors"
	"testing"
)

// mockNotifier is a test helper that implements Notifier interface
type mockNotifier struct {
	alerts      []WindowAlert
	closeErr    error
	closeCalled bool
}

func (m *mockNotifier) SendWindowAlert(alert WindowAlert) {
	m.alerts = append(m.alerts, alert)
}

func (m *mockNotifier) Close() error {
	m.closeCalled = true
	return m.closeErr
}

func TestNewMultiNotifier_FiltersNil(t *testing.T) {
	mn := NewMultiNotifier(&mockNotifier{}, nil, &mockNotifier{}, nil)
	if mn.Count() != 2 {
		t.Errorf("expected 2 notifiers, got %d", mn.Count())
	}

	if NewMultiNotifier().Count() != 0 {
		t.Error("expected empty multi notifier")
	}
}

func TestMultiNotifier_SendWindowAlert(t *testing.T) {
	mock1 := &mockNotifier{}
	mock2 := &mockNotifier{}
	mn := NewMultiNotifier(mock1, mock2)

	mn.SendWindowAlert(WindowAlert{Kind: AlertKindInWindow, PatternName: "Pachinko", Distance: 65})

	if len(mock1.alerts) != 1 || len(mock2.alerts) != 1 {
		t.Fatalf("expected both notifiers to receive the alert: %d, %d", len(mock1.alerts), len(mock2.alerts))
	}
	if mock1.alerts[0].Distance != 65 {
		t.Errorf("unexpected distance: %d", mock1.alerts[0].Distance)
	}

	// Should not panic
	NewMultiNotifier().SendWindowAlert(WindowAlert{})
}

func TestMultiNotifier_Close(t *testing.T) {
	expectedErr := errors.New("close error")
	mock1 := &mockNotifier{closeErr: expectedErr}
	mock2 := &mockNotifier{}

	err := NewMultiNotifier(mock1, mock2).Close()
	if err != expectedErr {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
	if !mock1.closeCalled || !mock2.closeCalled {
		t.Error("every notifier should be closed")
	}
}

func TestWindowAlert_Title(t *testing.T) {
	tests := []struct {
		alert WindowAlert
		want  string
	}{
		{WindowAlert{Kind: AlertKindWarming, PatternName: "Crazy Time", SpinsRemaining: 8}, "Crazy Time window opens in 8 spins"},
		{WindowAlert{Kind: AlertKindInWindow, PatternName: "Pachinko"}, "Pachinko is in its betting window"},
		{WindowAlert{Kind: AlertKindHit, PatternName: "Pachinko", Distance: 72}, "Pachinko landed after 72 spins"},
		{WindowAlert{PatternName: "X"}, "X update"},
	}

	for _, tt := range tests {
		if got := tt.alert.Title(); got != tt.want {
			t.Errorf("Title() = %q, want %q", got, tt.want)
		}
	}
}
