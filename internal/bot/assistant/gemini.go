// Package assistant talks to the generative model.
package assistant

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/dmitrijs2005/gembot/internal/bot/models"
	"github.com/dmitrijs2005/gembot/internal/bot/session"
)

const (
	DefaultModel             = "gemini-3-flash-preview"
	DefaultSystemInstruction = "You are a helpful and smart AI assistant. Detect the user's language and respond in the same language. Be concise and accurate."

	voicePrompt = "Transcribe and answer this message"
)

// Reply is the model answer plus the tokens it cost.
type Reply struct {
	Text  string
	Usage models.Usage
}

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Gemini answers prompts with a Gemini model, grounded with Google Search.
type Gemini struct {
	model    string
	config   *genai.GenerateContentConfig
	generate generateFunc
}

// NewGemini creates a client for the Gemini API.
func NewGemini(ctx context.Context, apiKey, model, instruction string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai client error: %w", err)
	}
	return newGemini(client.Models.GenerateContent, model, instruction), nil
}

func newGemini(gen generateFunc, model, instruction string) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	if instruction == "" {
		instruction = DefaultSystemInstruction
	}
	return &Gemini{
		model:    model,
		generate: gen,
		config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(instruction, genai.RoleUser),
			Tools:             []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		},
	}
}

// Reply answers a text prompt in the context of history.
func (g *Gemini) Reply(ctx context.Context, history []session.Turn, prompt string) (*Reply, error) {
	contents := append(toContents(history), genai.NewContentFromText(prompt, genai.RoleUser))
	return g.send(ctx, contents)
}

// ReplyAudio asks the model to transcribe and answer a voice note.
func (g *Gemini) ReplyAudio(ctx context.Context, history []session.Turn, audio []byte, mime string) (*Reply, error) {
	if mime == "" {
		mime = "audio/ogg"
	}
	msg := genai.NewContentFromParts([]*genai.Part{
		genai.NewPartFromText(voicePrompt),
		genai.NewPartFromBytes(audio, mime),
	}, genai.RoleUser)
	return g.send(ctx, append(toContents(history), msg))
}

func (g *Gemini) send(ctx context.Context, contents []*genai.Content) (*Reply, error) {
	resp, err := g.generate(ctx, g.model, contents, g.config)
	if err != nil {
		return nil, fmt.Errorf("generate error: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return nil, errors.New("empty model response")
	}

	r := &Reply{Text: text}
	if u := resp.UsageMetadata; u != nil {
		r.Usage = models.Usage{
			InputTokens:  int64(u.PromptTokenCount),
			OutputTokens: int64(u.CandidatesTokenCount),
		}
	}
	return r, nil
}

func toContents(history []session.Turn) []*genai.Content {
	out := make([]*genai.Content, 0, len(history)+1)
	for _, t := range history {
		role := genai.Role(genai.RoleUser)
		if t.Role == models.RoleModel {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(t.Text, role))
	}
	return out
}
