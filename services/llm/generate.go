package llm

import (
	"context"
	"fmt"
	"log"

	"lernbegleiter/models"

	"github.com/tmc/langchaingo/llms"
)

const (
	chatTemperature = 0.7
	chatMaxTokens   = 1000
)

// GenerateChatResponse produces the tutor reply for the full conversation.
// The material block for the current suggestions is injected into the system
// prompt, so the model can only reference resources it was actually given.
func (c *Client) GenerateChatResponse(ctx context.Context, messages []models.Message, suggestions []models.WLOMetadata, settings models.ChatSettings) (*models.ChatResponse, error) {
	model, modelName, err := c.chatModel(settings)
	if err != nil {
		return nil, err
	}

	history := toMessageHistory(buildSystemPrompt(suggestions), messages)

	log.Printf("[INFO] Generating chat response with %s (%d messages, %d suggestions)", modelName, len(messages), len(suggestions))

	resp, err := model.GenerateContent(ctx, history,
		llms.WithTemperature(chatTemperature),
		llms.WithMaxTokens(chatMaxTokens),
	)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	response := &models.ChatResponse{
		Message:        resp.Choices[0].Content,
		WLOSuggestions: suggestions,
	}
	if settings.DebugMode {
		response.DebugInfo = &models.DebugInfo{
			Model:    modelName,
			WLOCount: len(suggestions),
		}
	}
	return response, nil
}
