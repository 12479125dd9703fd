// Package telegram adapts the Telegram Bot API to the bot's transport types.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dmitrijs2005/gembot/internal/bot/transport"
	"github.com/dmitrijs2005/gembot/internal/logging"
	"github.com/dmitrijs2005/gembot/internal/netx"
)

const pollTimeoutSec = 60

// botAPI is the part of *tgbotapi.BotAPI the client uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Client struct {
	api    botAPI
	http   *http.Client
	logger logging.Logger
}

// New connects to the Bot API and verifies the token.
func New(token string, logger logging.Logger) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram init error: %w", err)
	}
	c := newClient(api, logger)
	c.logger.Info(context.Background(), "telegram bot authorized", "bot", api.Self.UserName)
	return c, nil
}

func newClient(api botAPI, logger logging.Logger) *Client {
	return &Client{
		api:    api,
		http:   &http.Client{Timeout: 60 * time.Second},
		logger: logger.With("module", "telegram"),
	}
}

// SendText sends text as Markdown and falls back to plain text when the
// API rejects the markup.
func (c *Client) SendText(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := c.api.Send(msg)
	if err == nil {
		return nil
	}
	c.logger.Warn(ctx, "markdown send failed, falling back to plain text", "chat_id", chatID, "error", err)

	msg.ParseMode = ""
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("send error: %w", err)
	}
	return nil
}

// Typing shows the "typing" chat action.
func (c *Client) Typing(ctx context.Context, chatID int64) error {
	if _, err := c.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		return fmt.Errorf("chat action error: %w", err)
	}
	return nil
}

// Download fetches a file the user sent, such as a voice note.
func (c *Client) Download(ctx context.Context, fileID string) ([]byte, error) {
	url, err := c.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("file url error: %w", err)
	}
	data, err := netx.Download(ctx, c.http, url)
	if err != nil {
		return nil, fmt.Errorf("file download error: %w", err)
	}
	return data, nil
}

// Updates long-polls the Bot API and emits message updates until ctx is
// cancelled. The returned channel is closed afterwards.
func (c *Client) Updates(ctx context.Context) <-chan transport.Update {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = pollTimeoutSec
	in := c.api.GetUpdatesChan(cfg)

	out := make(chan transport.Update)
	go func() {
		defer close(out)
		defer c.api.StopReceivingUpdates()
		for {
			select {
			case <-ctx.Done():
				return
			case u, ok := <-in:
				if !ok {
					return
				}
				tu, ok := convert(u)
				if !ok {
					continue
				}
				select {
				case out <- tu:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// convert keeps text and voice messages from users and drops the rest.
func convert(u tgbotapi.Update) (transport.Update, bool) {
	m := u.Message
	if m == nil || m.From == nil {
		return transport.Update{}, false
	}

	tu := transport.Update{
		CallerID: m.From.ID,
		Handle:   m.From.UserName,
		ChatID:   m.From.ID,
	}
	if m.Chat != nil {
		tu.ChatID = m.Chat.ID
	}

	switch {
	case m.Voice != nil:
		tu.VoiceFileID = m.Voice.FileID
		tu.VoiceMIME = m.Voice.MimeType
	case m.IsCommand():
		tu.Command = strings.ToLower(m.Command())
		tu.Text = m.CommandArguments()
	case m.Text != "":
		tu.Text = m.Text
	default:
		return transport.Update{}, false
	}
	return tu, true
}
