package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gembot/internal/logging"
)

type fakeAPI struct {
	sent     []tgbotapi.MessageConfig
	sendErrs []error
	requests []tgbotapi.Chattable
	fileURL  string
	updates  chan tgbotapi.Update
	stopped  bool
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	if len(f.sendErrs) > 0 {
		err := f.sendErrs[0]
		f.sendErrs = f.sendErrs[1:]
		return tgbotapi.Message{}, err
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetFileDirectURL(fileID string) (string, error) {
	if f.fileURL == "" {
		return "", errors.New("no file")
	}
	return f.fileURL, nil
}

func (f *fakeAPI) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() { f.stopped = true }

func TestSendText_Markdown(t *testing.T) {
	api := &fakeAPI{}
	c := newClient(api, logging.NewDiscard())

	require.NoError(t, c.SendText(context.Background(), 5, "*hi*"))
	require.Len(t, api.sent, 1)
	assert.Equal(t, tgbotapi.ModeMarkdown, api.sent[0].ParseMode)
	assert.Equal(t, int64(5), api.sent[0].ChatID)
}

func TestSendText_FallsBackToPlain(t *testing.T) {
	api := &fakeAPI{sendErrs: []error{errors.New("can't parse entities")}}
	c := newClient(api, logging.NewDiscard())

	require.NoError(t, c.SendText(context.Background(), 5, "a_b"))
	require.Len(t, api.sent, 2)
	assert.Equal(t, "", api.sent[1].ParseMode)
	assert.Equal(t, "a_b", api.sent[1].Text)
}

func TestSendText_BothFail(t *testing.T) {
	api := &fakeAPI{sendErrs: []error{errors.New("x"), errors.New("chat not found")}}
	c := newClient(api, logging.NewDiscard())

	err := c.SendText(context.Background(), 5, "hi")
	assert.ErrorContains(t, err, "chat not found")
}

func TestTyping(t *testing.T) {
	api := &fakeAPI{}
	c := newClient(api, logging.NewDiscard())

	require.NoError(t, c.Typing(context.Background(), 9))
	require.Len(t, api.requests, 1)
	action := api.requests[0].(tgbotapi.ChatActionConfig)
	assert.Equal(t, tgbotapi.ChatTyping, action.Action)
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OggS"))
	}))
	defer srv.Close()

	c := newClient(&fakeAPI{fileURL: srv.URL + "/voice.ogg"}, logging.NewDiscard())
	data, err := c.Download(context.Background(), "file-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("OggS"), data)

	c = newClient(&fakeAPI{}, logging.NewDiscard())
	_, err = c.Download(context.Background(), "file-1")
	assert.Error(t, err)
}

func TestConvert(t *testing.T) {
	from := &tgbotapi.User{ID: 42, UserName: "Carol"}
	chat := &tgbotapi.Chat{ID: 42}

	u, ok := convert(tgbotapi.Update{Message: &tgbotapi.Message{From: from, Chat: chat, Text: "hello"}})
	require.True(t, ok)
	assert.Equal(t, int64(42), u.CallerID)
	assert.Equal(t, "Carol", u.Handle)
	assert.Equal(t, "hello", u.Text)
	assert.False(t, u.IsVoice())

	u, ok = convert(tgbotapi.Update{Message: &tgbotapi.Message{
		From: from, Chat: chat, Text: "/Reset now",
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}},
	}})
	require.True(t, ok)
	assert.Equal(t, "reset", u.Command)
	assert.Equal(t, "now", u.Text)

	u, ok = convert(tgbotapi.Update{Message: &tgbotapi.Message{
		From: from, Chat: chat, Voice: &tgbotapi.Voice{FileID: "v1", MimeType: "audio/ogg"},
	}})
	require.True(t, ok)
	assert.True(t, u.IsVoice())
	assert.Equal(t, "audio/ogg", u.VoiceMIME)

	_, ok = convert(tgbotapi.Update{})
	assert.False(t, ok)
	_, ok = convert(tgbotapi.Update{Message: &tgbotapi.Message{From: from, Chat: chat}})
	assert.False(t, ok)
}

func TestUpdates_StopsOnCancel(t *testing.T) {
	api := &fakeAPI{updates: make(chan tgbotapi.Update, 2)}
	c := newClient(api, logging.NewDiscard())

	api.updates <- tgbotapi.Update{Message: &tgbotapi.Message{From: &tgbotapi.User{ID: 1}, Chat: &tgbotapi.Chat{ID: 1}, Text: "x"}}
	api.updates <- tgbotapi.Update{}

	ctx, cancel := context.WithCancel(context.Background())
	out := c.Updates(ctx)

	select {
	case u := <-out:
		assert.Equal(t, "x", u.Text)
	case <-time.After(time.Second):
		t.Fatal("no update")
	}

	cancel()
	for range out {
	}
	assert.True(t, api.stopped)
}
