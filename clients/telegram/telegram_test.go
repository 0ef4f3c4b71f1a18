package telegram

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"spinwatch/clients/notifier"
	"spinwatch/config"
	"spinwatch/internal/window"
)

func TestNewTelegramClient_NoToken(t *testing.T) {
	cfg := &config.Config{
		Telegram: config.TelegramConfig{
			ProdChatID: "prod-chat",
			BetaChatID: "beta-chat",
		},
	}

	client := NewTelegramClient(zap.NewNop(), cfg)

	if client.botToken != "" {
		t.Error("expected empty token")
	}
	if client.chatID != "beta-chat" {
		t.Errorf("expected beta chat, got: %s", client.chatID)
	}
	if client.Enabled() {
		t.Error("client without token should be disabled")
	}
}

func TestNewTelegramClient_ProdChat(t *testing.T) {
	cfg := &config.Config{
		IsProd: true,
		Telegram: config.TelegramConfig{
			BotToken:   "token",
			ProdChatID: "prod-chat",
			BetaChatID: "beta-chat",
		},
	}

	client := NewTelegramClient(nil, cfg)

	if client.chatID != "prod-chat" {
		t.Errorf("expected prod chat, got: %s", client.chatID)
	}
	if !client.Enabled() {
		t.Error("expected client to be enabled")
	}
	if client.apiBase != defaultAPIBase {
		t.Errorf("unexpected api base: %s", client.apiBase)
	}
}

func TestSendWindowAlert_NotConfigured(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	client := &TelegramClient{logger: zap.New(core), botToken: "token"}

	client.SendWindowAlert(notifier.WindowAlert{PatternName: "Pachinko"})

	if logs.FilterMessage("telegram not configured, skipping alert").Len() != 1 {
		t.Errorf("expected skip log, got %v", logs.All())
	}
}

func TestSendWindowAlert_Success(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bottest-token/sendMessage" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	core, logs := observer.New(zap.InfoLevel)
	cfg := &config.Config{Telegram: config.TelegramConfig{BotToken: "test-token", BetaChatID: "chat-1"}}
	client := NewTelegramClient(zap.New(core), cfg).WithAPIBase(server.URL + "/")

	client.SendWindowAlert(notifier.WindowAlert{
		Kind:        notifier.AlertKindInWindow,
		PatternID:   "pachinko",
		PatternName: "Pachinko",
		Distance:    65,
		Window:      window.Window{Start: 61, End: 90},
	})

	if payload["chat_id"] != "chat-1" || payload["parse_mode"] != "Markdown" {
		t.Errorf("unexpected payload: %v", payload)
	}
	if !strings.Contains(payload["text"].(string), "*Distance:* 65 spins") {
		t.Errorf("unexpected text: %v", payload["text"])
	}
	if logs.FilterMessage("sent telegram window alert").Len() != 1 {
		t.Error("expected success log")
	}
}

func TestSendWindowAlert_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer server.Close()

	core, logs := observer.New(zap.InfoLevel)
	cfg := &config.Config{Telegram: config.TelegramConfig{BotToken: "t", BetaChatID: "c"}}
	client := NewTelegramClient(zap.New(core), cfg).WithAPIBase(server.URL)

	client.SendWindowAlert(notifier.WindowAlert{Kind: notifier.AlertKindHit})

	entries := logs.FilterMessage("failed to send telegram message").All()
	if len(entries) != 1 {
		t.Fatalf("expected error log, got %v", logs.All())
	}
	errField := entries[0].ContextMap()["error"]
	if s, _ := errField.(string); !strings.Contains(s, "status=400") || !strings.Contains(s, "chat not found") {
		t.Errorf("error should include status and body: %v", errField)
	}
}

func TestBuildAlertMessage(t *testing.T) {
	ts := time.Date(2026, 1, 5, 21, 4, 5, 0, time.UTC)

	tests := []struct {
		name    string
		alert   notifier.WindowAlert
		want    []string
		notWant []string
	}{
		{
			name: "warming",
			alert: notifier.WindowAlert{
				Kind: notifier.AlertKindWarming, PatternName: "Crazy Time", Distance: 195,
				SpinsRemaining: 6, Window: window.Window{Start: 201, End: 230}, Timestamp: ts,
			},
			want:    []string{"🟡", "*Opens in:* 6 spins", "*Window:* 201-230", "_21:04:05_"},
			notWant: []string{"Payout"},
		},
		{
			name: "hit with top slot",
			alert: notifier.WindowAlert{
				Kind: notifier.AlertKindHit, PatternName: "Pachinko", Distance: 80,
				BonusMultiplier: 20, TopSlotMultiplier: 3, TopSlotMatched: true, Timestamp: ts,
			},
			want: []string{"🎉", "landed after 80 spins", "*Payout:* 20x", "*Top slot:* x3 (60x total)"},
		},
		{
			name: "hit without bonus",
			alert: notifier.WindowAlert{
				Kind: notifier.AlertKindHit, PatternName: "Number 10", Distance: 70, Timestamp: ts,
			},
			notWant: []string{"Payout", "Top slot"},
		},
		{
			name: "escapes name",
			alert: notifier.WindowAlert{
				Kind: notifier.AlertKindInWindow, PatternName: "seq_2_5", Timestamp: ts,
			},
			want: []string{"seq\\_2\\_5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := buildAlertMessage(tt.alert)
			for _, w := range tt.want {
				if !strings.Contains(msg, w) {
					t.Errorf("message missing %q:\n%s", w, msg)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(msg, w) {
					t.Errorf("message should not contain %q:\n%s", w, msg)
				}
			}
		})
	}
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a_b", "a\\_b"},
		{"*bold*", "\\*bold\\*"},
		{"[x]", "\\[x\\]"},
		{"`code`", "\\`code\\`"},
	}
	for _, tt := range tests {
		if got := escapeMarkdown(tt.in); got != tt.want {
			t.Errorf("escapeMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClose(t *testing.T) {
	if err := (&TelegramClient{}).Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
