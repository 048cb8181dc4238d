package bot

import (
	"github.com/slack-go/slack"
)

// ChatAPI abstracts the subset of slack.Client methods used by the bot.
// This allows tests to substitute a mock implementation without a live
// Slack connection.
type ChatAPI interface {
	AuthTest() (response *slack.AuthTestResponse, err error)

	// Messaging
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
	UpdateMessage(channelID, timestamp string, options ...slack.MsgOption) (string, string, string, error)
	DeleteMessage(channelID, timestamp string) (string, string, error)

	// Reactions
	AddReaction(name string, item slack.ItemRef) error
	RemoveReaction(name string, item slack.ItemRef) error
}
