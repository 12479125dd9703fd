package bot

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/gembot/internal/bot/assistant"
	"github.com/dmitrijs2005/gembot/internal/bot/models"
	"github.com/dmitrijs2005/gembot/internal/bot/session"
	"github.com/dmitrijs2005/gembot/internal/bot/transport"
	"github.com/dmitrijs2005/gembot/internal/logging"
)

const (
	greeting      = "Hi! Send me a message or a voice note and I will do my best to help."
	resetReply    = "Conversation history cleared."
	failureReply  = "Sorry, something went wrong. Please try again."
	voiceLogEntry = "[Voice Message]"
)

// Authorizer decides whether a caller may use the bot.
type Authorizer interface {
	IsAuthorized(ctx context.Context, callerID int64, handle string) bool
}

// Assistant produces model replies.
type Assistant interface {
	Reply(ctx context.Context, history []session.Turn, prompt string) (*assistant.Reply, error)
	ReplyAudio(ctx context.Context, history []session.Turn, audio []byte, mime string) (*assistant.Reply, error)
}

// Chat is the transport surface the handler needs beyond plain sending.
type Chat interface {
	transport.Sender
	Typing(ctx context.Context, chatID int64) error
	Download(ctx context.Context, fileID string) ([]byte, error)
}

// Recorder persists conversation lines.
type Recorder interface {
	Record(ctx context.Context, m *models.ChatMessage) error
}

// Handler processes one inbound update end to end.
type Handler struct {
	auth      Authorizer
	assistant Assistant
	chat      Chat
	log       Recorder
	sessions  *session.Store
	logger    logging.Logger
}

func NewHandler(auth Authorizer, a Assistant, chat Chat, rec Recorder, sessions *session.Store, l logging.Logger) *Handler {
	return &Handler{
		auth:      auth,
		assistant: a,
		chat:      chat,
		log:       rec,
		sessions:  sessions,
		logger:    l.With("module", "handler"),
	}
}

// Handle gates the update on the allow-list and answers it. Unauthorized
// callers get no reply.
func (h *Handler) Handle(ctx context.Context, u transport.Update) {
	log := h.logger.With("update_id", uuid.NewString(), "user_id", u.CallerID)

	if !h.auth.IsAuthorized(ctx, u.CallerID, u.Handle) {
		return
	}

	var err error
	switch {
	case u.Command == "start":
		err = h.chat.SendText(ctx, u.ChatID, greeting)
	case u.Command == "reset":
		h.sessions.Reset(u.CallerID)
		err = h.chat.SendText(ctx, u.ChatID, resetReply)
	case u.IsVoice():
		err = h.handleVoice(ctx, log, u)
	case u.Text != "":
		err = h.handleText(ctx, log, u)
	default:
		return
	}

	if err != nil {
		log.Error(ctx, "failed to handle update", "error", err)
		if ctx.Err() == nil {
			if serr := h.chat.SendText(ctx, u.ChatID, failureReply); serr != nil {
				log.Warn(ctx, "failed to send failure notice", "error", serr)
			}
		}
	}
}

func (h *Handler) handleText(ctx context.Context, log logging.Logger, u transport.Update) error {
	h.record(ctx, log, u, models.RoleUser, u.Text, models.MessageTypeText, models.Usage{})
	h.typing(ctx, log, u.ChatID)

	reply, err := h.assistant.Reply(ctx, h.sessions.History(u.CallerID), u.Text)
	if err != nil {
		return fmt.Errorf("assistant error: %w", err)
	}
	h.record(ctx, log, u, models.RoleModel, reply.Text, models.MessageTypeText, reply.Usage)

	h.sessions.Append(u.CallerID,
		session.Turn{Role: models.RoleUser, Text: u.Text},
		session.Turn{Role: models.RoleModel, Text: reply.Text},
	)
	return h.chat.SendText(ctx, u.ChatID, reply.Text)
}

func (h *Handler) handleVoice(ctx context.Context, log logging.Logger, u transport.Update) error {
	h.typing(ctx, log, u.ChatID)

	audio, err := h.chat.Download(ctx, u.VoiceFileID)
	if err != nil {
		return err
	}
	reply, err := h.assistant.ReplyAudio(ctx, h.sessions.History(u.CallerID), audio, u.VoiceMIME)
	if err != nil {
		return fmt.Errorf("assistant error: %w", err)
	}

	h.record(ctx, log, u, models.RoleUser, voiceLogEntry, models.MessageTypeVoice, models.Usage{})
	h.record(ctx, log, u, models.RoleModel, reply.Text, models.MessageTypeText, reply.Usage)
	return h.chat.SendText(ctx, u.ChatID, reply.Text)
}

// record logs a line to the chat log. Failures never block the reply.
func (h *Handler) record(ctx context.Context, log logging.Logger, u transport.Update, role models.Role, content, typ string, usage models.Usage) {
	err := h.log.Record(ctx, &models.ChatMessage{
		UserID:       u.CallerID,
		Username:     u.Handle,
		Role:         role,
		Content:      content,
		Type:         typ,
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
	})
	if err != nil {
		log.Error(ctx, "failed to record message", "role", string(role), "error", err)
	}
}

func (h *Handler) typing(ctx context.Context, log logging.Logger, chatID int64) {
	if err := h.chat.Typing(ctx, chatID); err != nil {
		log.Debug(ctx, "typing action failed", "error", err)
	}
}
