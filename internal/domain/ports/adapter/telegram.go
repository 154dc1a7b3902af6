package adapter

import "context"

// Button is one inline keyboard button. Data buttons echo their payload back
// as a callback; URL buttons open a link.
type Button struct {
	Text string
	Data string
	URL  string
}

// ReplyMarkup is an inline keyboard layout, row-major.
type ReplyMarkup struct {
	Buttons [][]Button
}

// Action is one outbound directive emitted by the conversation engine. The
// engine only produces intents; the Telegram adapter executes them.
type Action interface {
	isAction()
}

// SendMessage delivers a new message to a chat.
type SendMessage struct {
	ChatID      int64
	Text        string
	ReplyMarkup *ReplyMarkup
}

// EditMessage rewrites an existing message in place. A nil ReplyMarkup
// removes any inline keyboard, which makes the edited message terminal.
type EditMessage struct {
	ChatID      int64
	MessageID   int
	Text        string
	ReplyMarkup *ReplyMarkup
}

func (SendMessage) isAction() {}
func (EditMessage) isAction() {}

// BotAdapter is the outbound port to the chat platform. Delivery failures are
// the adapter's concern; state transitions never roll back on them.
type BotAdapter interface {
	Send(ctx context.Context, msg SendMessage) error
	Edit(ctx context.Context, msg EditMessage) error
}
