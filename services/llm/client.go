package llm

import (
	"fmt"

	"lernbegleiter/config"
	"lernbegleiter/models"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

const (
	openAIChatModel = "gpt-4.1-mini"
	kisskiChatModel = "gpt-oss-120b"
	analysisModel   = "gpt-4o-mini"
)

// Client bundles the chat-completion models behind the two provider
// settings plus the dedicated analysis model. A nil field means the
// corresponding credentials were not configured.
type Client struct {
	openAI   llms.Model
	kisski   llms.Model
	analysis llms.Model
}

func NewClient(cfg *config.Config) (*Client, error) {
	if !cfg.HasLLMCredentials() {
		return nil, fmt.Errorf("keine API-Schlüssel verfügbar: OPENAI_API_KEY oder GWDG_API_KEY konfigurieren")
	}

	client := &Client{}

	if cfg.OpenAIAPIKey != "" {
		baseOpts := []openai.Option{openai.WithToken(cfg.OpenAIAPIKey)}
		if cfg.OpenAIBaseURL != "" {
			baseOpts = append(baseOpts, openai.WithBaseURL(cfg.OpenAIBaseURL))
		}

		chat, err := openai.New(append(baseOpts, openai.WithModel(openAIChatModel))...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
		}
		client.openAI = chat

		analysis, err := openai.New(append(baseOpts, openai.WithModel(analysisModel))...)
		if err != nil {
			return nil, fmt.Errorf("failed to create analysis client: %w", err)
		}
		client.analysis = analysis
	}

	if cfg.GWDGAPIKey != "" {
		kisski, err := openai.New(
			openai.WithToken(cfg.GWDGAPIKey),
			openai.WithModel(kisskiChatModel),
			openai.WithBaseURL(cfg.GWDGBaseURL),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create GWDG client: %w", err)
		}
		client.kisski = kisski
	}

	return client, nil
}

func (c *Client) chatModel(settings models.ChatSettings) (llms.Model, string, error) {
	if settings.UseKissKI {
		if c.kisski == nil {
			return nil, "", fmt.Errorf("kein GWDG API-Schlüssel verfügbar")
		}
		return c.kisski, kisskiChatModel, nil
	}
	if c.openAI == nil {
		return nil, "", fmt.Errorf("kein OpenAI API-Schlüssel verfügbar")
	}
	return c.openAI, openAIChatModel, nil
}

func toMessageHistory(systemPrompt string, messages []models.Message) []llms.MessageContent {
	history := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, systemPrompt),
	}
	for _, msg := range messages {
		switch msg.Role {
		case models.RoleUser:
			history = append(history, llms.TextParts(schema.ChatMessageTypeHuman, msg.Content))
		case models.RoleAssistant:
			history = append(history, llms.TextParts(schema.ChatMessageTypeAI, msg.Content))
		case models.RoleSystem:
			history = append(history, llms.TextParts(schema.ChatMessageTypeSystem, msg.Content))
		}
	}
	return history
}
