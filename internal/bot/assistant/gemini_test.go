package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/dmitrijs2005/gembot/internal/bot/models"
	"github.com/dmitrijs2005/gembot/internal/bot/session"
)

type capture struct {
	model    string
	contents []*genai.Content
	cfg      *genai.GenerateContentConfig
}

func respond(c *capture, text string, in, out int32, err error) generateFunc {
	return func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		c.model, c.contents, c.cfg = model, contents, cfg
		if err != nil {
			return nil, err
		}
		return &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: genai.NewContentFromText(text, genai.RoleModel),
			}},
			UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
				PromptTokenCount:     in,
				CandidatesTokenCount: out,
			},
		}, nil
	}
}

func TestReply_SendsHistoryAndPrompt(t *testing.T) {
	c := &capture{}
	g := newGemini(respond(c, "hello back", 12, 4, nil), "", "")

	history := []session.Turn{
		{Role: models.RoleUser, Text: "hi"},
		{Role: models.RoleModel, Text: "hey"},
	}
	r, err := g.Reply(context.Background(), history, "how are you?")
	require.NoError(t, err)

	assert.Equal(t, "hello back", r.Text)
	assert.Equal(t, models.Usage{InputTokens: 12, OutputTokens: 4}, r.Usage)

	assert.Equal(t, DefaultModel, c.model)
	require.Len(t, c.contents, 3)
	assert.Equal(t, "user", c.contents[0].Role)
	assert.Equal(t, "model", c.contents[1].Role)
	assert.Equal(t, "how are you?", c.contents[2].Parts[0].Text)

	require.NotNil(t, c.cfg.SystemInstruction)
	assert.Equal(t, DefaultSystemInstruction, c.cfg.SystemInstruction.Parts[0].Text)
	require.Len(t, c.cfg.Tools, 1)
	assert.NotNil(t, c.cfg.Tools[0].GoogleSearch)
}

func TestReplyAudio_InlinesAudio(t *testing.T) {
	c := &capture{}
	g := newGemini(respond(c, "transcribed", 1, 1, nil), "gemini-x", "be brief")

	_, err := g.ReplyAudio(context.Background(), nil, []byte{1, 2, 3}, "")
	require.NoError(t, err)

	assert.Equal(t, "gemini-x", c.model)
	require.Len(t, c.contents, 1)
	parts := c.contents[0].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, voicePrompt, parts[0].Text)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "audio/ogg", parts[1].InlineData.MIMEType)
	assert.Equal(t, []byte{1, 2, 3}, parts[1].InlineData.Data)
}

func TestReply_Errors(t *testing.T) {
	g := newGemini(respond(&capture{}, "", 0, 0, errors.New("quota")), "", "")
	_, err := g.Reply(context.Background(), nil, "x")
	assert.ErrorContains(t, err, "quota")

	g = newGemini(respond(&capture{}, "", 0, 0, nil), "", "")
	_, err = g.Reply(context.Background(), nil, "x")
	assert.ErrorContains(t, err, "empty model response")
}
