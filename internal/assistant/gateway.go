package assistant

import (
	"context"
	"fmt"
	"log"
	"time"

	"google.golang.org/genai"

	"scholarchat/internal/model"
	"scholarchat/internal/search"
)

// Mode selects how the gateway builds its prompt. Exactly one mode is active
// per deployment.
type Mode string

const (
	// ModeSearch enriches the prompt with the top web search result and the
	// student's profile.
	ModeSearch Mode = "search"
	// ModeProfile uses the profile-aware prompts but never calls search.
	ModeProfile Mode = "profile"
	// ModePlain forwards the conversation to the model with only the generic
	// system role.
	ModePlain Mode = "plain"
)

// ParseMode maps a config string to a Mode, defaulting to ModeSearch.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeProfile:
		return ModeProfile
	case ModePlain:
		return ModePlain
	default:
		return ModeSearch
	}
}

// Model is the language model invocation boundary.
type Model interface {
	Generate(ctx context.Context, system string, contents []*genai.Content) (string, error)
}

// GeminiModel invokes the Gemini API through the genai client.
type GeminiModel struct {
	client *genai.Client
	model  string
}

// NewGeminiModel creates a model bound to a fixed low-cost model tier.
func NewGeminiModel(ctx context.Context, apiKey, modelName string) (*GeminiModel, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiModel{client: client, model: modelName}, nil
}

// Generate runs one completion and returns the response text.
func (m *GeminiModel) Generate(ctx context.Context, system string, contents []*genai.Content) (string, error) {
	resp, err := m.client.Models.GenerateContent(ctx, m.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}

// Gateway turns a user question, the student's stored profile, and an
// optional search result into a model prompt and returns formatted text.
// Upstream failures never escape it; callers always get displayable text.
type Gateway struct {
	mode    Mode
	model   Model
	search  *search.Client
	timeout time.Duration
}

// New creates a gateway. A nil model means no credentials were configured;
// on-topic questions then get a fixed unavailable reply instead of a crash.
func New(mode Mode, model Model, searchClient *search.Client, timeout time.Duration) *Gateway {
	return &Gateway{
		mode:    mode,
		model:   model,
		search:  searchClient,
		timeout: timeout,
	}
}

// Respond answers one chat turn. The keyword gate runs first in every mode,
// before any profile, search, or model access.
func (g *Gateway) Respond(ctx context.Context, student *model.Student, history []model.Turn, message string) string {
	if !OnTopic(message) {
		return RefusalMessage
	}
	if g.model == nil {
		return UnavailableMessage
	}

	contents := g.buildContents(ctx, student, history, message)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.model.Generate(ctx, systemInstruction, contents)
	if err != nil {
		log.Printf("assistant: %v", err)
		return FallbackMessage
	}
	if text == "" {
		return FallbackMessage
	}
	return text
}

func (g *Gateway) buildContents(ctx context.Context, student *model.Student, history []model.Turn, message string) []*genai.Content {
	if g.mode == ModePlain {
		contents := make([]*genai.Content, 0, len(history)+1)
		for _, turn := range history {
			role := genai.Role(genai.RoleUser)
			if turn.Speaker == model.SpeakerAssistant {
				role = genai.RoleModel
			}
			contents = append(contents, genai.NewContentFromText(turn.Text, role))
		}
		return append(contents, genai.NewContentFromText(message, genai.RoleUser))
	}

	var result *search.Result
	if g.mode == ModeSearch && g.search != nil {
		result = g.search.Top(ctx, search.ScholarshipQuery(message))
	}

	prompt := buildGenericPrompt(message)
	if result != nil && student != nil {
		prompt = buildResultPrompt(student, result)
	}
	return []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
}
