package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"lernbegleiter/models"
	"lernbegleiter/services/wlo"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

const metadataTemperature = 0.1

// ExtractLearningMetadata infers topic, school subject and content type from
// the conversation context. Subject and content type are constrained to the
// closed vocabularies the search filters understand.
func (c *Client) ExtractLearningMetadata(ctx context.Context, text string, settings models.ChatSettings) (*models.LearningMetadata, error) {
	model, modelName, err := c.chatModel(settings)
	if err != nil {
		return nil, err
	}

	prompt := buildMetadataPrompt(text, wlo.SubjectLabels(), wlo.ContentTypeLabels())
	history := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, metadataSystemPrompt),
		llms.TextParts(schema.ChatMessageTypeHuman, prompt),
	}

	resp, err := model.GenerateContent(ctx, history,
		llms.WithTemperature(metadataTemperature),
		llms.WithJSONMode(),
	)
	if err != nil {
		return nil, fmt.Errorf("metadata extraction with %s failed: %w", modelName, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("metadata extraction returned no choices")
	}

	var metadata models.LearningMetadata
	if err := json.Unmarshal([]byte(resp.Choices[0].Content), &metadata); err != nil {
		return nil, fmt.Errorf("failed to parse metadata response: %w", err)
	}
	if metadata.Topic == "" {
		metadata.Topic = text
	}
	return &metadata, nil
}
