package conversation

import "context"

// Command names as typed by the user, without the leading slash.
const (
	CmdStart          = "start"
	CmdMenu           = "menu"
	CmdUsage          = "usage"
	CmdAbout          = "about"
	CmdRandomQuestion = "random_question"
	CmdCancel         = "cancel"
)

// Format tells the gateway how to render Message.Text.
type Format int

const (
	FormatPlain Format = iota
	// FormatMarkdown is the Telegram legacy Markdown subset (*bold*, _italic_, [link](url)).
	FormatMarkdown
	// FormatBold and FormatItalic style the whole text; no escaping is needed.
	FormatBold
	FormatItalic
)

// Message is one outbound message. Keyboard lists reply buttons, one per row.
type Message struct {
	ChatID         int64
	Text           string
	Format         Format
	Keyboard       []string
	DisablePreview bool
}

// Gateway delivers outbound messages to the user.
type Gateway interface {
	Send(ctx context.Context, msg Message) error
}

// Event is one inbound message. Command is set (without "/") for bot commands,
// otherwise Text carries the free text.
type Event struct {
	Identity int64
	Command  string
	Text     string
}

const (
	menuText = "💻"

	usageText = `*/random_question* - random question

*/about* - information about the bot and the author

*/usage* - show this message.`

	aboutText = `*About the bot*
The bot is written in *Go*.
It uses an internal questions database to pick the questions it sends.
If you're curious about how a chatbot like this is put together, you can find the code [here](https://github.com/).`

	answerAcceptedText = "Amazing"
	answerFailedText   = "Answer failed to check."
	noQuestionsText    = "No questions are available right now, please try again later."
)

// menuKeyboard is the reply keyboard attached to every menu-style reply.
var menuKeyboard = []string{"/" + CmdRandomQuestion, "/" + CmdAbout, "/" + CmdUsage}

func menuMessage(chatID int64, text string) Message {
	return Message{
		ChatID:         chatID,
		Text:           text,
		Format:         FormatMarkdown,
		Keyboard:       append([]string(nil), menuKeyboard...),
		DisablePreview: true,
	}
}

func textMessage(chatID int64, text string) Message {
	return Message{ChatID: chatID, Text: text, Format: FormatMarkdown}
}
