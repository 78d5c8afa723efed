package service

import (
	"strings"

	"github.com/pechorka/book-reader/internal/session"
)

// Input is one message of a user as delivered by a gateway.
type Input struct {
	UserID int64
	Lang   string // IETF language code of the user, may be empty
	Name   string // display name, used in the greeting
	Text   string
}

// Reply is what the gateway sends back: text plus the commands to offer as
// quick replies. Mode, Book and Page describe the session after the command.
type Reply struct {
	Text     string
	Commands []string
	Mode     session.Mode
	Book     string
	Page     int
	// Err is the failure the reply reports, if any. It is already rendered
	// into Text and is exposed for logging only.
	Err error
}

const (
	cmdStart = "start"
	cmdReset = "reset"
	cmdOpen  = "open"
	cmdNext  = "next"
	cmdPrev  = "prev"
	cmdPage  = "page"
	cmdHelp  = "help"
)

// BotCommand describes a command for gateway menus.
type BotCommand struct {
	Command       string
	DescriptionID string
}

// BotCommands lists commands in the order they are shown to users.
var BotCommands = []BotCommand{
	{Command: cmdStart, DescriptionID: cmdStartDescriptionMsgId},
	{Command: cmdOpen, DescriptionID: cmdOpenDescriptionMsgId},
	{Command: cmdNext, DescriptionID: cmdNextDescriptionMsgId},
	{Command: cmdPrev, DescriptionID: cmdPrevDescriptionMsgId},
	{Command: cmdPage, DescriptionID: cmdPageDescriptionMsgId},
	{Command: cmdHelp, DescriptionID: cmdHelpDescriptionMsgId},
}

type command struct {
	Name      string // lower case, without slash and bot mention
	Args      string
	IsCommand bool
	Text      string
}

// parseCommand splits "/next@reader_bot 2" into name and arguments.
// Anything not starting with a slash, leading blanks aside, is free text.
func parseCommand(text string) command {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return command{Text: text}
	}
	token, args, _ := strings.Cut(trimmed, " ")
	name, _, _ := strings.Cut(strings.TrimPrefix(token, "/"), "@")
	return command{
		Name:      strings.ToLower(name),
		Args:      strings.TrimSpace(args),
		IsCommand: true,
		Text:      text,
	}
}

func slashed(name string) string {
	return "/" + name
}
