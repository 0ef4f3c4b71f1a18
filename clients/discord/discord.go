package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"spinwatch/clients/notifier"
	"spinwatch/config"
	"spinwatch/internal/window"
)

// Embed colors per alert kind.
const (
	colorWarming  = 0xF1C40F
	colorInWindow = 0x2ECC71
	colorHit      = 0x9B59B6
	colorDefault  = 0x95A5A6
)

// messageSender is the subset of *discordgo.Session used to post alerts.
type messageSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordClient sends window alerts to Discord.
// Implements notifier.Notifier interface.
type DiscordClient struct {
	logger    *zap.Logger
	session   *discordgo.Session
	sender    messageSender
	channelID string
	isProd    bool
}

func NewDiscordClient(logger *zap.Logger, cfg *config.Config) *DiscordClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	channelID := cfg.Discord.BetaChannelID
	if cfg.IsProd {
		channelID = cfg.Discord.ProdChannelID
	}

	dc := &DiscordClient{
		logger:    logger,
		channelID: channelID,
		isProd:    cfg.IsProd,
	}

	token := cfg.Discord.BotToken
	if token == "" {
		logger.Warn("DISCORD_BOT_TOKEN not set, Discord alerts disabled")
		return dc
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		logger.Error("failed to create discord session", zap.Error(err))
		return dc
	}

	logger.Info("discord bot initialized",
		zap.Bool("isProd", cfg.IsProd),
		zap.String("channelID", channelID),
	)

	dc.session = session
	dc.sender = session
	return dc
}

// Enabled reports whether alerts will actually be posted.
func (dc *DiscordClient) Enabled() bool {
	return dc.sender != nil && dc.channelID != ""
}

// SendWindowAlert posts a rich embed for the alert.
// Implements notifier.Notifier interface.
func (dc *DiscordClient) SendWindowAlert(alert notifier.WindowAlert) {
	if !dc.Enabled() {
		dc.logger.Debug("discord not configured, skipping alert")
		return
	}

	embed := buildWindowEmbed(alert)

	if _, err := dc.sender.ChannelMessageSendEmbed(dc.channelID, embed); err != nil {
		dc.logger.Error("failed to send discord embed", zap.Error(err))
		return
	}

	dc.logger.Info("sent discord window alert",
		zap.String("pattern", alert.PatternID),
		zap.String("kind", string(alert.Kind)),
		zap.Int("distance", alert.Distance),
	)
}

func buildWindowEmbed(alert notifier.WindowAlert) *discordgo.MessageEmbed {
	color := colorDefault
	emoji := "🔔"
	switch alert.Kind {
	case notifier.AlertKindWarming:
		color, emoji = colorWarming, "🟡"
	case notifier.AlertKindInWindow:
		color, emoji = colorInWindow, "🟢"
	case notifier.AlertKindHit:
		color, emoji = colorHit, "🎉"
	}

	fields := []*discordgo.MessageEmbedField{
		{
			Name:   "Distance",
			Value:  fmt.Sprintf("%d spins", alert.Distance),
			Inline: true,
		},
		{
			Name:   "Window",
			Value:  fmt.Sprintf("%d-%d", alert.Window.Start, alert.Window.End),
			Inline: true,
		},
	}

	switch alert.Kind {
	case notifier.AlertKindWarming:
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Opens In",
			Value:  fmt.Sprintf("%d spins", alert.SpinsRemaining),
			Inline: true,
		})
	case notifier.AlertKindHit:
		if alert.BonusMultiplier > 0 {
			payout := fmt.Sprintf("%dx", alert.BonusMultiplier)
			if alert.TopSlotMatched && alert.TopSlotMultiplier > 1 {
				payout = fmt.Sprintf("%dx (top slot x%d, %dx total)",
					alert.BonusMultiplier, alert.TopSlotMultiplier, alert.BonusMultiplier*alert.TopSlotMultiplier)
			}
			fields = append(fields, &discordgo.MessageEmbedField{
				Name:   "Payout",
				Value:  payout,
				Inline: true,
			})
		}
	}

	if len(alert.Windows) > 1 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "All Windows",
			Value: formatWindows(alert.Windows),
		})
	}

	ts := alert.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	return &discordgo.MessageEmbed{
		Title:  fmt.Sprintf("%s %s", emoji, alert.Title()),
		Color:  color,
		Fields: fields,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("spinwatch * %s", ts.Format("1/2/2006, 3:04:05PM (MST)")),
		},
		Timestamp: ts.Format(time.RFC3339),
	}
}

func formatWindows(windows []window.Window) string {
	parts := make([]string, len(windows))
	for i, w := range windows {
		parts[i] = fmt.Sprintf("%d-%d", w.Start, w.End)
	}
	return strings.Join(parts, ", ")
}

// Close closes the Discord session.
func (dc *DiscordClient) Close() error {
	if dc.session != nil {
		return dc.session.Close()
	}
	return nil
}
