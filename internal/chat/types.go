package chat

import "strings"

// SystemName is the sender shown on command replies
const SystemName = "System"

// Message is one chat line as sent to clients
type Message struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Reply is the outcome of handling a chat line
type Reply struct {
	Message Message
	// Private replies go only to the sender, the rest to every client.
	Private bool
}

// CommandType for routing
type CommandType int

const (
	CmdNone CommandType = iota // Plain text, not a command
	CmdHelp
	CmdScore
	CmdUnknown
)

// SupportedCommands maps command strings to types
var SupportedCommands = map[string]CommandType{
	// Help variants
	"help":     CmdHelp,
	"ajuda":    CmdHelp,
	"commands": CmdHelp,

	// Score variants
	"score":  CmdScore,
	"placar": CmdScore,
}

// Emoticons are replaced in every message before routing
var Emoticons = strings.NewReplacer(
	":)", "😊",
	":(", "☹️",
)

// ParseCommand returns the command type of a line. Lines that do not start
// with a slash are CmdNone.
func ParseCommand(text string) CommandType {
	if !strings.HasPrefix(text, "/") {
		return CmdNone
	}
	word := strings.Fields(strings.TrimPrefix(text, "/"))
	if len(word) == 0 {
		return CmdUnknown
	}
	if t, ok := SupportedCommands[strings.ToLower(word[0])]; ok {
		return t
	}
	return CmdUnknown
}
