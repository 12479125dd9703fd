// Package transport describes the chat transport as seen by the bot core:
// a way to send text to a chat and the shape of an inbound update.
package transport

import "context"

// Sender delivers a text message to a chat.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

// Update is one inbound chat message, already stripped of transport details.
type Update struct {
	CallerID int64
	Handle   string
	ChatID   int64
	Text     string
	// Command is the bot command without the leading slash, if any.
	Command string
	// VoiceFileID is set for voice messages.
	VoiceFileID string
	VoiceMIME   string
}

// IsVoice reports whether the update carries a voice note.
func (u Update) IsVoice() bool {
	return u.VoiceFileID != ""
}
