package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"lernbegleiter/models"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

const (
	analysisTemperature = 0.2
	analysisMaxTokens   = 800
	maxKeyTermsPerRound = 5
)

// AnalyzeLearningContent evaluates one user/tutor exchange against the
// current progress state and returns the structured delta. The analysis
// always runs on the dedicated OpenAI model, independent of the chat
// provider setting.
func (c *Client) AnalyzeLearningContent(ctx context.Context, state *models.ProgressState, userMessage, botMessage string) (*models.AnalysisResult, error) {
	if c.analysis == nil {
		return nil, fmt.Errorf("kein OpenAI API-Schlüssel für die Lernstandsanalyse verfügbar")
	}

	prompt, err := buildAnalysisPrompt(state, userMessage, botMessage)
	if err != nil {
		return nil, err
	}

	resp, err := c.analysis.GenerateContent(ctx,
		[]llms.MessageContent{llms.TextParts(schema.ChatMessageTypeHuman, prompt)},
		llms.WithTemperature(analysisTemperature),
		llms.WithMaxTokens(analysisMaxTokens),
		llms.WithJSONMode(),
	)
	if err != nil {
		return nil, fmt.Errorf("learning analysis failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("learning analysis returned no choices")
	}

	result, err := parseAnalysisResult(resp.Choices[0].Content)
	if err != nil {
		return nil, err
	}

	log.Printf("[INFO] Learning analysis done with %s (topicChange=%v, %d key terms)",
		analysisModel, result.TopicChange != nil, len(result.KeyTerms))
	return result, nil
}

func parseAnalysisResult(content string) (*models.AnalysisResult, error) {
	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}

	terms := make([]models.KeyTerm, 0, len(result.KeyTerms))
	for _, term := range result.KeyTerms {
		if strings.TrimSpace(term.Term) == "" {
			continue
		}
		terms = append(terms, term)
		if len(terms) == maxKeyTermsPerRound {
			break
		}
	}
	result.KeyTerms = terms

	return &result, nil
}
