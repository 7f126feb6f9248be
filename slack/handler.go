package crrslack

import (
	"github.com/pkg/errors"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"
	"go.uber.org/zap"
)

// poster is the part of the Slack client the command handlers reply through.
type poster interface {
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
}

type Handler struct {
	helpHandler *HelpHandler
	crrHandler  *CRRHandler
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{
		helpHandler: NewHelpHandler(),
		crrHandler:  NewCRRHandler(logger),
	}
}

func (h *Handler) Handle(evt *socketmode.Event, client *socketmode.Client) error {
	data, ok := evt.Data.(slack.SlashCommand)
	if !ok {
		return errors.Errorf("unexpected slash command payload %T", evt.Data)
	}

	// slack expects the ack within three seconds, before any pricing
	client.Ack(*evt.Request)

	switch data.Command {
	case "/help":
		return h.helpHandler.HandleCommand(data, client)
	case "/crr":
		return h.crrHandler.HandleCommand(data, client)
	}
	return nil
}
