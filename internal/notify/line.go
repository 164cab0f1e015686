package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// LineNotifier pushes a text message per event to a single LINE user or group.
type LineNotifier struct {
	bot *messaging_api.MessagingApiAPI
	to  string
}

// DefaultPushTimeout bounds a single LINE push.
const DefaultPushTimeout = 5 * time.Second

// NewLineNotifier creates a notifier whose pushes give up after timeout
// (DefaultPushTimeout when zero).
func NewLineNotifier(channelToken, to string, timeout time.Duration, opts ...messaging_api.MessagingApiAPIOption) (*LineNotifier, error) {
	if timeout <= 0 {
		timeout = DefaultPushTimeout
	}
	// the generated client's WithContext mutates shared state, so the
	// bound lives on the http.Client instead
	opts = append([]messaging_api.MessagingApiAPIOption{
		messaging_api.WithHTTPClient(&http.Client{Timeout: timeout}),
	}, opts...)
	bot, err := messaging_api.NewMessagingApiAPI(channelToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LINE bot client: %w", err)
	}
	return &LineNotifier{bot: bot, to: to}, nil
}

func (n *LineNotifier) Notify(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	message := &messaging_api.TextMessage{
		Text: FormatEvent(ev),
	}

	_, err := n.bot.PushMessage(
		&messaging_api.PushMessageRequest{
			To:       n.to,
			Messages: []messaging_api.MessageInterface{message},
		},
		"",
	)
	if err != nil {
		return fmt.Errorf("failed to push LINE message: %w", err)
	}
	return nil
}

// FormatEvent renders the message text for an event.
func FormatEvent(ev Event) string {
	switch ev.Action {
	case ActionCreated:
		return fmt.Sprintf("✅ Added task「%s」", ev.Task.Title)
	case ActionCompleted:
		return fmt.Sprintf("🎉 Completed task「%s」", ev.Task.Title)
	case ActionReopened:
		return fmt.Sprintf("↩️ Reopened task「%s」", ev.Task.Title)
	case ActionDeleted:
		return fmt.Sprintf("🗑️ Deleted task「%s」", ev.Task.Title)
	default:
		return fmt.Sprintf("Task「%s」 %s", ev.Task.Title, ev.Action)
	}
}
