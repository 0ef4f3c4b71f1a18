package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"spinwatch/clients/notifier"
	"spinwatch/config"
)

const defaultAPIBase = "https://api.telegram.org"

// TelegramClient sends window alerts to Telegram.
// Implements notifier.Notifier interface.
type TelegramClient struct {
	logger   *zap.Logger
	botToken string
	chatID   string
	isProd   bool
	apiBase  string
	client   *http.Client
}

func NewTelegramClient(logger *zap.Logger, cfg *config.Config) *TelegramClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	chatID := cfg.Telegram.BetaChatID
	if cfg.IsProd {
		chatID = cfg.Telegram.ProdChatID
	}

	tc := &TelegramClient{
		logger:  logger,
		chatID:  chatID,
		isProd:  cfg.IsProd,
		apiBase: defaultAPIBase,
		client:  &http.Client{Timeout: 10 * time.Second},
	}

	token := cfg.Telegram.BotToken
	if token == "" {
		logger.Warn("TELEGRAM_BOT_KEY not set, Telegram alerts disabled")
		return tc
	}

	logger.Info("telegram bot initialized",
		zap.Bool("isProd", cfg.IsProd),
		zap.String("chatID", chatID),
	)

	tc.botToken = token
	return tc
}

// WithAPIBase points the client at a different Bot API host.
func (tc *TelegramClient) WithAPIBase(base string) *TelegramClient {
	tc.apiBase = strings.TrimRight(base, "/")
	return tc
}

// Enabled reports whether both token and chat id are set.
func (tc *TelegramClient) Enabled() bool {
	return tc.botToken != "" && tc.chatID != ""
}

// SendWindowAlert sends a window alert notification.
// Implements notifier.Notifier interface.
func (tc *TelegramClient) SendWindowAlert(alert notifier.WindowAlert) {
	if !tc.Enabled() {
		tc.logger.Debug("telegram not configured, skipping alert")
		return
	}

	if err := tc.sendMessage(buildAlertMessage(alert)); err != nil {
		tc.logger.Error("failed to send telegram message", zap.Error(err))
		return
	}

	tc.logger.Info("sent telegram window alert",
		zap.String("pattern", alert.PatternID),
		zap.String("kind", string(alert.Kind)),
		zap.Int("distance", alert.Distance),
	)
}

func buildAlertMessage(alert notifier.WindowAlert) string {
	var sb strings.Builder

	emoji := "🔔"
	switch alert.Kind {
	case notifier.AlertKindWarming:
		emoji = "🟡"
	case notifier.AlertKindInWindow:
		emoji = "🟢"
	case notifier.AlertKindHit:
		emoji = "🎉"
	}
	sb.WriteString(fmt.Sprintf("%s *%s*\n\n", emoji, escapeMarkdown(alert.Title())))

	sb.WriteString(fmt.Sprintf("*Pattern:* %s\n", escapeMarkdown(alert.PatternName)))
	sb.WriteString(fmt.Sprintf("*Distance:* %d spins\n", alert.Distance))
	sb.WriteString(fmt.Sprintf("*Window:* %d-%d\n", alert.Window.Start, alert.Window.End))

	switch alert.Kind {
	case notifier.AlertKindWarming:
		sb.WriteString(fmt.Sprintf("*Opens in:* %d spins\n", alert.SpinsRemaining))
	case notifier.AlertKindHit:
		if alert.BonusMultiplier > 0 {
			sb.WriteString(fmt.Sprintf("*Payout:* %dx\n", alert.BonusMultiplier))
			if alert.TopSlotMatched && alert.TopSlotMultiplier > 1 {
				sb.WriteString(fmt.Sprintf("*Top slot:* x%d (%dx total)\n",
					alert.TopSlotMultiplier, alert.BonusMultiplier*alert.TopSlotMultiplier))
			}
		}
	}

	ts := alert.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	sb.WriteString(fmt.Sprintf("\n_%s_", ts.Format("15:04:05")))

	return sb.String()
}

func (tc *TelegramClient) sendMessage(text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", tc.apiBase, tc.botToken)

	payload := map[string]any{
		"chat_id":    tc.chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	resp, err := tc.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(respBody))
	}

	return nil
}

// Close cleans up resources. Implements notifier.Notifier interface.
func (tc *TelegramClient) Close() error {
	return nil
}

// escapeMarkdown escapes special characters for Telegram Markdown.
func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"]", "\\]",
		"`", "\\`",
	)
	return replacer.Replace(s)
}
