package wlo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"lernbegleiter/models"
)

type fakeExtractor struct {
	metadata *models.LearningMetadata
	err      error
	lastText string
}

func (f *fakeExtractor) ExtractLearningMetadata(ctx context.Context, text string, settings models.ChatSettings) (*models.LearningMetadata, error) {
	f.lastText = text
	return f.metadata, f.err
}

func stringPtr(s string) *string { return &s }

func searchServer(t *testing.T, nodes []map[string]any, captured *searchRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if captured != nil {
			if err := json.NewDecoder(r.Body).Decode(captured); err != nil {
				t.Errorf("failed to decode search request: %v", err)
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"nodes": nodes})
	}))
}

func wloSettings() models.ChatSettings {
	return models.ChatSettings{EnableWLO: true}
}

func TestGetSuggestionsDisabled(t *testing.T) {
	service := NewService("http://unused.invalid", &fakeExtractor{})
	if got := service.GetSuggestions(context.Background(), "Frage", models.ChatSettings{EnableWLO: false}, ""); got != nil {
		t.Errorf("got %d suggestions with WLO disabled, want none", len(got))
	}
}

func TestGetSuggestionsNormalization(t *testing.T) {
	nodes := []map[string]any{
		{
			"ref": map[string]any{"id": "node-1"},
			"properties": map[string]any{
				"cclom:title":                        []any{"Photosynthese erklärt"},
				"cclom:location":                     []any{"https://example.org/photo"},
				"cclom:general_description":          []any{"Ein Video."},
				"ccm:taxonid_DISPLAYNAME":            []any{"Biologie"},
				"ccm:oeh_lrt_aggregated_DISPLAYNAME": []any{"Video"},
				"cclom:general_keyword":              []any{"Biologie", "Pflanzen"},
			},
		},
		{
			// No title and no explicit URL anywhere.
			"ref":        map[string]any{"id": "node-2"},
			"properties": map[string]any{},
		},
		{
			// No ref id and no URL: unusable, dropped.
			"ref":        map[string]any{"id": ""},
			"properties": map[string]any{},
		},
	}

	server := searchServer(t, nodes, nil)
	defer server.Close()

	extractor := &fakeExtractor{metadata: &models.LearningMetadata{Topic: "Photosynthese"}}
	service := NewService(server.URL, extractor)

	suggestions := service.GetSuggestions(context.Background(), "Was ist Photosynthese?", wloSettings(), "")
	if len(suggestions) != 2 {
		t.Fatalf("got %d suggestions, want 2", len(suggestions))
	}

	first := suggestions[0]
	if first.Title != "Photosynthese erklärt" || first.WwwURL != "https://example.org/photo" {
		t.Errorf("unexpected first suggestion: %+v", first)
	}
	if first.Subject != "Biologie" || first.ResourceType != "Video" {
		t.Errorf("display names not mapped: %+v", first)
	}
	if len(first.Keywords) != 2 {
		t.Errorf("got %d keywords, want 2", len(first.Keywords))
	}

	second := suggestions[1]
	if second.Title != "Untitled Resource" {
		t.Errorf("second.Title = %q, want fallback", second.Title)
	}
	if second.WwwURL != renderURLPrefix+"node-2" {
		t.Errorf("second.WwwURL = %q, want render fallback", second.WwwURL)
	}
	if second.ResourceType != "Lernressource" {
		t.Errorf("second.ResourceType = %q, want fallback", second.ResourceType)
	}
}

func TestGetSuggestionsTruncation(t *testing.T) {
	var nodes []map[string]any
	for i := 0; i < 15; i++ {
		nodes = append(nodes, map[string]any{
			"ref": map[string]any{"id": fmt.Sprintf("node-%d", i)},
			"properties": map[string]any{
				"cclom:title": []any{fmt.Sprintf("Material %d", i)},
			},
		})
	}

	server := searchServer(t, nodes, nil)
	defer server.Close()

	extractor := &fakeExtractor{metadata: &models.LearningMetadata{Topic: "Brüche"}}
	service := NewService(server.URL, extractor)

	suggestions := service.GetSuggestions(context.Background(), "Brüche", wloSettings(), "")
	if len(suggestions) != maxSuggestions {
		t.Errorf("got %d suggestions, want %d", len(suggestions), maxSuggestions)
	}
}

func TestGetSuggestionsSearchCriteria(t *testing.T) {
	var captured searchRequest
	server := searchServer(t, nil, &captured)
	defer server.Close()

	extractor := &fakeExtractor{metadata: &models.LearningMetadata{
		Topic:       "Photosynthese",
		Subject:     stringPtr("Biologie"),
		ContentType: stringPtr("Video"),
	}}
	service := NewService(server.URL, extractor)

	service.GetSuggestions(context.Background(), "Was ist Photosynthese?", wloSettings(), "Vorherige Antwort des Tutors.")

	if len(captured.Criteria) != 4 {
		t.Fatalf("got %d criteria, want 4: %+v", len(captured.Criteria), captured.Criteria)
	}
	if captured.Criteria[0].Property != "ngsearchword" || captured.Criteria[0].Values[0] != "Photosynthese" {
		t.Errorf("first criterion must be the free-text search: %+v", captured.Criteria[0])
	}

	byProperty := map[string]string{}
	for _, criterion := range captured.Criteria[1:] {
		byProperty[criterion.Property] = criterion.Values[0]
	}
	if byProperty["cclom:general_description"] != "Photosynthese" {
		t.Errorf("description criterion missing: %+v", byProperty)
	}
	if byProperty["virtual:taxonid"] != FachMapping["Biologie"] {
		t.Errorf("taxon criterion must use the renamed property: %+v", byProperty)
	}
	if byProperty["ccm:oeh_lrt_aggregated"] != InhaltstypMapping["Video"] {
		t.Errorf("content type criterion missing: %+v", byProperty)
	}
}

func TestGetSuggestionsUnknownLabelsSkipped(t *testing.T) {
	var captured searchRequest
	server := searchServer(t, nil, &captured)
	defer server.Close()

	extractor := &fakeExtractor{metadata: &models.LearningMetadata{
		Topic:       "Photosynthese",
		Subject:     stringPtr("Astrologie"),
		ContentType: stringPtr("Hologramm"),
	}}
	service := NewService(server.URL, extractor)

	service.GetSuggestions(context.Background(), "Frage", wloSettings(), "")

	for _, criterion := range captured.Criteria {
		if criterion.Property == "virtual:taxonid" || criterion.Property == "ccm:oeh_lrt_aggregated" {
			t.Errorf("unknown label must not produce a filter: %+v", criterion)
		}
	}
}

func TestGetSuggestionsExtractorFailure(t *testing.T) {
	service := NewService("http://unused.invalid", &fakeExtractor{err: fmt.Errorf("model down")})
	if got := service.GetSuggestions(context.Background(), "Frage", wloSettings(), ""); len(got) != 0 {
		t.Errorf("got %d suggestions despite extractor failure, want 0", len(got))
	}
}

func TestGetSuggestionsSearchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	extractor := &fakeExtractor{metadata: &models.LearningMetadata{Topic: "Brüche"}}
	service := NewService(server.URL, extractor)

	if got := service.GetSuggestions(context.Background(), "Frage", wloSettings(), ""); len(got) != 0 {
		t.Errorf("got %d suggestions despite search failure, want 0", len(got))
	}
}

func TestBuildContextText(t *testing.T) {
	tests := []struct {
		name     string
		userText string
		previous string
		expected string
	}{
		{
			name:     "no previous message",
			userText: "Was ist Photosynthese?",
			previous: "",
			expected: "Was ist Photosynthese?",
		},
		{
			name:     "html stripped from previous message",
			userText: "Und die Lichtreaktion?",
			previous: "<p>Die **Photosynthese** wandelt Licht um.</p>",
			expected: "Die **Photosynthese** wandelt Licht um. Und die Lichtreaktion?",
		},
		{
			name:     "recommendation block removed",
			userText: "Weiter bitte",
			previous: "Kurze Antwort<hr><b>Empfehlungen</b><ul><li>Material</li></ul>",
			expected: "Kurze Antwort Weiter bitte",
		},
		{
			name:     "previous collapses to empty",
			userText: "Neue Frage",
			previous: "<hr><ul><li>nur Material</li></ul>",
			expected: "Neue Frage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildContextText(tt.userText, tt.previous); got != tt.expected {
				t.Errorf("buildContextText() = %q, want %q", got, tt.expected)
			}
		})
	}
}
