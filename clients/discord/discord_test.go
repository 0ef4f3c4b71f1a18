package discord

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"spinwatch/clients/notifier"
	"spinwatch/config"
	"spinwatch/internal/window"
)

type mockSender struct {
	channelID string
	embeds    []*discordgo.MessageEmbed
	err       error
}

func (m *mockSender) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.channelID = channelID
	m.embeds = append(m.embeds, embed)
	return &discordgo.Message{}, m.err
}

func TestNewDiscordClient_NoToken(t *testing.T) {
	cfg := &config.Config{
		Discord: config.DiscordConfig{
			ProdChannelID: "prod-channel",
			BetaChannelID: "beta-channel",
		},
	}

	client := NewDiscordClient(zap.NewNop(), cfg)

	if client.session != nil {
		t.Error("expected nil session when no token provided")
	}
	if client.Enabled() {
		t.Error("client without token should be disabled")
	}
	if client.channelID != "beta-channel" {
		t.Errorf("expected beta channel, got: %s", client.channelID)
	}
	if err := client.Close(); err != nil {
		t.Errorf("unexpected close error: %v", err)
	}
}

func TestNewDiscordClient_ProdChannel(t *testing.T) {
	cfg := &config.Config{
		IsProd: true,
		Discord: config.DiscordConfig{
			ProdChannelID: "prod-channel",
			BetaChannelID: "beta-channel",
		},
	}

	client := NewDiscordClient(nil, cfg)

	if client.channelID != "prod-channel" {
		t.Errorf("expected prod channel, got: %s", client.channelID)
	}
}

func TestSendWindowAlert_NoSession(t *testing.T) {
	client := &DiscordClient{logger: zap.NewNop()}

	// Should not panic
	client.SendWindowAlert(notifier.WindowAlert{PatternName: "Pachinko"})
}

func TestSendWindowAlert_PostsEmbed(t *testing.T) {
	sender := &mockSender{}
	client := &DiscordClient{logger: zap.NewNop(), sender: sender, channelID: "chan"}

	client.SendWindowAlert(notifier.WindowAlert{
		Kind:        notifier.AlertKindInWindow,
		PatternName: "Pachinko",
		Distance:    70,
		Window:      window.Window{Start: 61, End: 90},
	})

	if len(sender.embeds) != 1 {
		t.Fatalf("expected 1 embed, got %d", len(sender.embeds))
	}
	if sender.channelID != "chan" {
		t.Errorf("unexpected channel: %s", sender.channelID)
	}
	if sender.embeds[0].Color != colorInWindow {
		t.Errorf("unexpected color: %x", sender.embeds[0].Color)
	}
}

func TestSendWindowAlert_SendError(t *testing.T) {
	sender := &mockSender{err: errors.New("rate limited")}
	client := &DiscordClient{logger: zap.NewNop(), sender: sender, channelID: "chan"}

	// Errors are logged, not propagated
	client.SendWindowAlert(notifier.WindowAlert{Kind: notifier.AlertKindHit})
	if len(sender.embeds) != 1 {
		t.Error("send should still be attempted")
	}
}

func TestBuildWindowEmbed(t *testing.T) {
	ts := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		alert      notifier.WindowAlert
		color      int
		titleHas   string
		fieldName  string
		fieldValue string
	}{
		{
			name: "warming",
			alert: notifier.WindowAlert{
				Kind: notifier.AlertKindWarming, PatternName: "Crazy Time",
				Distance: 193, SpinsRemaining: 8, Window: window.Window{Start: 201, End: 230},
			},
			color:      colorWarming,
			titleHas:   "opens in 8 spins",
			fieldName:  "Opens In",
			fieldValue: "8 spins",
		},
		{
			name: "hit with top slot",
			alert: notifier.WindowAlert{
				Kind: notifier.AlertKindHit, PatternName: "Pachinko", Distance: 75,
				BonusMultiplier: 50, TopSlotMultiplier: 2, TopSlotMatched: true,
			},
			color:      colorHit,
			titleHas:   "landed after 75 spins",
			fieldName:  "Payout",
			fieldValue: "50x (top slot x2, 100x total)",
		},
		{
			name: "multiple windows",
			alert: notifier.WindowAlert{
				Kind: notifier.AlertKindInWindow, PatternName: "Pachinko", Distance: 125,
				Windows: []window.Window{{Start: 61, End: 90}, {Start: 121, End: 150}},
			},
			color:      colorInWindow,
			titleHas:   "betting window",
			fieldName:  "All Windows",
			fieldValue: "61-90, 121-150",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.alert.Timestamp = ts
			embed := buildWindowEmbed(tt.alert)

			if embed.Color != tt.color {
				t.Errorf("color = %x, want %x", embed.Color, tt.color)
			}
			if !strings.Contains(embed.Title, tt.titleHas) {
				t.Errorf("title %q missing %q", embed.Title, tt.titleHas)
			}
			if embed.Timestamp != ts.Format(time.RFC3339) {
				t.Errorf("unexpected timestamp: %s", embed.Timestamp)
			}

			found := false
			for _, f := range embed.Fields {
				if f.Name == tt.fieldName {
					found = true
					if f.Value != tt.fieldValue {
						t.Errorf("field %s = %q, want %q", f.Name, f.Value, tt.fieldValue)
					}
				}
			}
			if !found {
				t.Errorf("field %s missing", tt.fieldName)
			}
		})
	}
}
