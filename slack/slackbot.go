package crrslack

import (
	"context"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"
	"go.uber.org/zap"
)

type SlackBot struct {
	client       *slack.Client
	socketClient *socketmode.Client
	eventHandler *Handler
	logger       *zap.Logger
}

func NewSlackBot(appToken, botToken string, logger *zap.Logger) *SlackBot {
	if logger == nil {
		logger = zap.NewNop()
	}

	client := slack.New(
		botToken,
		slack.OptionAppLevelToken(appToken),
	)

	socketClient := socketmode.New(
		client,
		socketmode.OptionDebug(logger.Core().Enabled(zap.DebugLevel)),
		socketmode.OptionLog(zap.NewStdLog(logger.Named("socketmode"))),
	)

	return &SlackBot{
		client:       client,
		socketClient: socketClient,
		eventHandler: NewHandler(logger),
		logger:       logger,
	}
}

// Start serves slash commands until ctx is cancelled or the connection fails.
func (sb *SlackBot) Start(ctx context.Context) error {
	go func() {
		for evt := range sb.socketClient.Events {
			switch evt.Type {
			case socketmode.EventTypeConnected:
				sb.logger.Info("connected to slack")
			case socketmode.EventTypeSlashCommand:
				if err := sb.eventHandler.Handle(&evt, sb.socketClient); err != nil {
					sb.logger.Error("slash command failed", zap.Error(err))
				}
			}
		}
	}()

	return sb.socketClient.RunContext(ctx)
}
