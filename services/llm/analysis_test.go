package llm

import (
	"context"
	"strings"
	"testing"

	"lernbegleiter/models"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

// fakeModel returns a scripted reply and records the last call.
type fakeModel struct {
	reply       string
	err         error
	lastHistory []llms.MessageContent
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.lastHistory = messages
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: f.reply}},
	}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return f.reply, f.err
}

func TestParseAnalysisResult(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantErr   bool
		wantTerms int
	}{
		{
			name:      "valid result",
			content:   `{"topicChange":{"newMainTopic":"Photosynthese","isMainTopicChange":true},"keyTerms":[{"term":"Chlorophyll","wikipediaUrl":""}]}`,
			wantTerms: 1,
		},
		{
			name:    "malformed json",
			content: `{"topicChange":`,
			wantErr: true,
		},
		{
			name:    "plain text reply",
			content: `Hier ist meine Analyse...`,
			wantErr: true,
		},
		{
			name:      "empty terms dropped",
			content:   `{"keyTerms":[{"term":"","wikipediaUrl":""},{"term":" ","wikipediaUrl":""},{"term":"Osmose","wikipediaUrl":""}]}`,
			wantTerms: 1,
		},
		{
			name:      "terms truncated to five",
			content:   `{"keyTerms":[{"term":"a"},{"term":"b"},{"term":"c"},{"term":"d"},{"term":"e"},{"term":"f"},{"term":"g"}]}`,
			wantTerms: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseAnalysisResult(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(result.KeyTerms) != tt.wantTerms {
				t.Errorf("got %d key terms, want %d", len(result.KeyTerms), tt.wantTerms)
			}
		})
	}
}

func TestAnalyzeLearningContentWithoutModel(t *testing.T) {
	client := &Client{}
	_, err := client.AnalyzeLearningContent(context.Background(), &models.ProgressState{}, "frage", "antwort")
	if err == nil {
		t.Fatal("expected an error without an analysis model")
	}
}

func TestAnalyzeLearningContent(t *testing.T) {
	fake := &fakeModel{reply: `{"topicChange":{"newMainTopic":"Bruchrechnung","isMainTopicChange":true}}`}
	client := &Client{analysis: fake}

	result, err := client.AnalyzeLearningContent(context.Background(), &models.ProgressState{}, "Was sind Brüche?", "Fangen wir an.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TopicChange == nil || result.TopicChange.NewMainTopic != "Bruchrechnung" {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(fake.lastHistory) != 1 {
		t.Fatalf("got %d prompt messages, want 1", len(fake.lastHistory))
	}
}

func TestGenerateChatResponse(t *testing.T) {
	fake := &fakeModel{reply: "Hallo! Womit starten wir?"}
	client := &Client{openAI: fake}

	suggestions := []models.WLOMetadata{{Title: "Material A", RefID: "ref-1", WwwURL: "https://a"}}
	messages := []models.Message{{Role: models.RoleUser, Content: "Was ist Photosynthese?"}}

	response, err := client.GenerateChatResponse(context.Background(), messages, suggestions, models.ChatSettings{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response.Message != "Hallo! Womit starten wir?" {
		t.Errorf("Message = %q", response.Message)
	}
	if response.DebugInfo != nil {
		t.Error("DebugInfo must be nil when debug mode is off")
	}

	// System prompt leads the history and carries the material block.
	if len(fake.lastHistory) != 2 {
		t.Fatalf("got %d history entries, want 2", len(fake.lastHistory))
	}
	system := fake.lastHistory[0]
	if system.Role != schema.ChatMessageTypeSystem {
		t.Errorf("first history role = %q, want system", system.Role)
	}
	text, ok := system.Parts[0].(llms.TextContent)
	if !ok || !strings.Contains(text.Text, "Material 1") {
		t.Error("system prompt must contain the material block")
	}
}

func TestGenerateChatResponseDebugMode(t *testing.T) {
	fake := &fakeModel{reply: "Antwort"}
	client := &Client{openAI: fake}

	response, err := client.GenerateChatResponse(context.Background(), nil, nil, models.ChatSettings{DebugMode: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response.DebugInfo == nil {
		t.Fatal("DebugInfo must be set in debug mode")
	}
	if response.DebugInfo.Model != openAIChatModel {
		t.Errorf("DebugInfo.Model = %q, want %q", response.DebugInfo.Model, openAIChatModel)
	}
}

func TestGenerateChatResponseProviderSelection(t *testing.T) {
	openAI := &fakeModel{reply: "openai"}
	kisski := &fakeModel{reply: "kisski"}
	client := &Client{openAI: openAI, kisski: kisski}

	tests := []struct {
		name      string
		useKissKI bool
		expected  string
	}{
		{name: "default provider", useKissKI: false, expected: "openai"},
		{name: "kisski provider", useKissKI: true, expected: "kisski"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response, err := client.GenerateChatResponse(context.Background(), nil, nil, models.ChatSettings{UseKissKI: tt.useKissKI})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if response.Message != tt.expected {
				t.Errorf("Message = %q, want %q", response.Message, tt.expected)
			}
		})
	}
}

func TestGenerateChatResponseMissingProvider(t *testing.T) {
	client := &Client{openAI: &fakeModel{reply: "x"}}
	_, err := client.GenerateChatResponse(context.Background(), nil, nil, models.ChatSettings{UseKissKI: true})
	if err == nil {
		t.Fatal("expected an error when the selected provider is not configured")
	}
}
