package clients

import (
	"go.uber.org/zap"

	"spinwatch/clients/discord"
	"spinwatch/clients/notifier"
	"spinwatch/clients/telegram"
	"spinwatch/clients/telemetry"
	"spinwatch/config"
)

type Clients struct {
	Logger *zap.Logger

	Discord   *discord.DiscordClient
	Telegram  *telegram.TelegramClient
	Notifier  notifier.Notifier // Combined notifier for all channels
	Telemetry *telemetry.Client
}

func NewClients(logger *zap.Logger, cfg *config.Config) *Clients {
	if logger == nil {
		logger = zap.NewNop()
	}

	discordClient := discord.NewDiscordClient(logger.Named("discord"), cfg)
	telegramClient := telegram.NewTelegramClient(logger.Named("telegram"), cfg)

	return &Clients{
		Logger:    logger,
		Discord:   discordClient,
		Telegram:  telegramClient,
		Notifier:  notifier.NewMultiNotifier(discordClient, telegramClient),
		Telemetry: telemetry.NewClient(logger.Named("telemetry"), cfg),
	}
}
