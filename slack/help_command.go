package crrslack

import "github.com/slack-go/slack"

const helpText = "Available commands:\n" +
	"/help - Show this help message\n" +
	"/crr " + crrUsage + " - Price an option on a CRR binomial lattice"

type HelpHandler struct{}

func NewHelpHandler() *HelpHandler {
	return &HelpHandler{}
}

func (h *HelpHandler) HandleCommand(data slack.SlashCommand, client poster) error {
	_, _, err := client.PostMessage(data.ChannelID,
		slack.MsgOptionText(helpText, false))
	return err
}
