package chat

import (
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/WanessaDiniztech/Haxball/internal/config"
	"github.com/WanessaDiniztech/Haxball/internal/game"
	"github.com/WanessaDiniztech/Haxball/internal/metrics"
)

// HelpText lists the available commands
const HelpText = "Commands: /help, /score"

// ScoreSource provides the latest published match state
type ScoreSource interface {
	Snapshot() *game.Snapshot
}

// Handler formats chat lines and answers slash commands
type Handler struct {
	scores      ScoreSource
	rateLimiter *RateLimiter
	maxLen      int
}

// NewHandler creates a new chat handler
func NewHandler(scores ScoreSource, cfg config.ChatConfig, maxLen int) *Handler {
	return &Handler{
		scores:      scores,
		rateLimiter: NewRateLimiter(cfg),
		maxLen:      maxLen,
	}
}

// Handle processes one line from a joined sender. It returns false when the
// line is dropped (blank or rate limited).
func (h *Handler) Handle(senderID, senderName, text string) (Reply, bool) {
	text = Format(text, h.maxLen)
	if strings.TrimSpace(text) == "" {
		return Reply{}, false
	}

	if !h.rateLimiter.Allow(senderID) {
		log.Printf("🚫 Chat rate limited: %s", senderName)
		metrics.RecordChat("rate_limited")
		return Reply{}, false
	}

	switch ParseCommand(text) {
	case CmdHelp:
		metrics.RecordChat("command")
		return h.system(HelpText), true
	case CmdScore:
		metrics.RecordChat("command")
		score := h.scores.Snapshot().Score
		return h.system(fmt.Sprintf("Score: %d x %d", score.Blue, score.Red)), true
	}

	metrics.RecordChat("broadcast")
	return Reply{Message: Message{Name: senderName, Message: text}}, true
}

// Forget releases per-sender state
func (h *Handler) Forget(senderID string) {
	h.rateLimiter.Forget(senderID)
}

func (h *Handler) system(text string) Reply {
	return Reply{Message: Message{Name: SystemName, Message: text}, Private: true}
}

// Format replaces emoticons and caps the line at maxLen runes.
// maxLen <= 0 means no cap.
func Format(text string, maxLen int) string {
	text = Emoticons.Replace(text)
	if maxLen > 0 && utf8.RuneCountInString(text) > maxLen {
		text = string([]rune(text)[:maxLen])
	}
	return text
}
