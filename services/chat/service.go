package chat

import (
	"context"
	"fmt"
	"log"
	"time"

	"lernbegleiter/models"
	"lernbegleiter/store"

	"github.com/samber/lo"
)

// ErrorReply is appended to the transcript when response generation fails,
// so the conversation stays consistent for the client.
const ErrorReply = "Entschuldigung, es gab einen Fehler bei der Verarbeitung Ihrer Nachricht. Bitte versuchen Sie es erneut."

const (
	defaultAnalysisTimeout = 60 * time.Second
	maxDebugSamples        = 3
)

// SuggestionProvider finds learning resources for the current turn.
type SuggestionProvider interface {
	GetSuggestions(ctx context.Context, userText string, settings models.ChatSettings, previousBotMessage string) []models.WLOMetadata
}

// ResponseGenerator produces the tutor reply and the metadata used for
// debug output.
type ResponseGenerator interface {
	GenerateChatResponse(ctx context.Context, messages []models.Message, suggestions []models.WLOMetadata, settings models.ChatSettings) (*models.ChatResponse, error)
	ExtractLearningMetadata(ctx context.Context, text string, settings models.ChatSettings) (*models.LearningMetadata, error)
}

// ProgressAnalyzer evaluates one exchange against the progress state.
type ProgressAnalyzer interface {
	AnalyzeLearningContent(ctx context.Context, state *models.ProgressState, userMessage, botMessage string) (*models.AnalysisResult, error)
}

// Service orchestrates one conversation round: suggestions, reply
// generation, usage attribution and the background learning analysis.
type Service struct {
	sessions        store.SessionRepository
	wlo             SuggestionProvider
	generator       ResponseGenerator
	analyzer        ProgressAnalyzer
	analysisTimeout time.Duration
}

func NewService(sessions store.SessionRepository, wlo SuggestionProvider, generator ResponseGenerator, analyzer ProgressAnalyzer) *Service {
	return &Service{
		sessions:        sessions,
		wlo:             wlo,
		generator:       generator,
		analyzer:        analyzer,
		analysisTimeout: defaultAnalysisTimeout,
	}
}

// SubmitUserTurn runs the full round trip for one user message. The user
// turn is committed to the transcript before generation, so a failed round
// still leaves a consistent history with an apology reply.
func (s *Service) SubmitUserTurn(ctx context.Context, sessionID, text string) (*models.ChatResponse, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	settings := session.Settings()
	previousBotMessage := session.LastAssistantMessage()

	session.AppendMessage(models.Message{
		Role:      models.RoleUser,
		Content:   text,
		Timestamp: time.Now().UnixMilli(),
	})

	suggestions := s.wlo.GetSuggestions(ctx, text, settings, previousBotMessage)

	response, err := s.generator.GenerateChatResponse(ctx, session.Messages(), suggestions, settings)
	if err != nil {
		session.AppendMessage(models.Message{
			Role:      models.RoleAssistant,
			Content:   ErrorReply,
			Timestamp: time.Now().UnixMilli(),
		})
		return nil, fmt.Errorf("failed to generate response for session %s: %w", sessionID, err)
	}

	used := ExtractUsedMaterials(response.Message, suggestions)
	response.WLOSuggestions = used

	if settings.DebugMode && response.DebugInfo != nil {
		s.enrichDebugInfo(ctx, response.DebugInfo, text, settings, used)
	}

	session.AppendMessage(models.Message{
		Role:      models.RoleAssistant,
		Content:   response.Message,
		Timestamp: time.Now().UnixMilli(),
	})
	session.SetSuggestions(used)

	go s.runAnalysis(session, text, response.Message)

	return response, nil
}

// enrichDebugInfo re-runs the metadata extraction for display purposes and
// samples the first attributed materials. Failures end up in the debug
// payload instead of failing the round.
func (s *Service) enrichDebugInfo(ctx context.Context, debug *models.DebugInfo, text string, settings models.ChatSettings, used []models.WLOMetadata) {
	metadata, err := s.generator.ExtractLearningMetadata(ctx, text, settings)
	if err != nil {
		debug.Error = err.Error()
	} else {
		debug.Metadata = *metadata
	}

	samples := used
	if len(samples) > maxDebugSamples {
		samples = samples[:maxDebugSamples]
	}
	debug.WLOSamples = lo.Map(samples, func(material models.WLOMetadata, _ int) models.WLOSample {
		finalURL := material.WwwURL
		if finalURL == "" {
			finalURL = material.URL
		}
		sample := models.WLOSample{
			Title:  material.Title,
			WwwURL: material.WwwURL,
			URL:    material.URL,
			RefID:  material.RefID,
		}
		if finalURL != "" {
			sample.FinalURL = &finalURL
		}
		return sample
	})
	debug.WLOCount = len(used)
	debug.Timestamp = time.Now().Format(time.RFC3339)
}

// runAnalysis performs the background learning analysis for one exchange.
// At most one round per session is in flight; an exchange arriving while a
// round is still running is skipped.
func (s *Service) runAnalysis(session *store.Session, userMessage, botMessage string) {
	if !session.TryBeginAnalysis() {
		log.Printf("[INFO] Skipping learning analysis for session %s, previous round still running", session.ID)
		return
	}
	defer session.EndAnalysis()

	ctx, cancel := context.WithTimeout(context.Background(), s.analysisTimeout)
	defer cancel()

	result, err := s.analyzer.AnalyzeLearningContent(ctx, session.Tracker.State(), userMessage, botMessage)
	if err != nil {
		log.Printf("[ERROR] Learning analysis for session %s failed: %v", session.ID, err)
		return
	}

	session.Tracker.ApplyAnalysis(result, time.Now())
}
