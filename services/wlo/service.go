package wlo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"lernbegleiter/models"

	"github.com/samber/lo"
)

const (
	DefaultBaseURL = "https://redaktion.openeduhub.net/edu-sharing"

	searchPath       = "/rest/search/v1/queries/-home-/mds_oeh/ngsearch"
	renderURLPrefix  = "https://redaktion.openeduhub.net/edu-sharing/components/render/"
	previewURLFormat = "https://redaktion.openeduhub.net/edu-sharing/preview?nodeId=%s&storeProtocol=workspace&storeId=SpacesStore"

	maxSuggestions = 10
)

// MetadataExtractor infers topic/subject/content-type labels from the
// conversation context; implemented by the LLM client.
type MetadataExtractor interface {
	ExtractLearningMetadata(ctx context.Context, text string, settings models.ChatSettings) (*models.LearningMetadata, error)
}

type Service struct {
	baseURL   string
	client    *http.Client
	extractor MetadataExtractor
}

func NewService(baseURL string, extractor MetadataExtractor) *Service {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Service{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		client:    &http.Client{Timeout: 15 * time.Second},
		extractor: extractor,
	}
}

var (
	wloBlockPattern = regexp.MustCompile(`(?s)<hr>.*?</ul>`)
	htmlTagPattern  = regexp.MustCompile(`<[^>]*>`)
)

// buildContextText combines the new user turn with the previous tutor turn,
// stripped of the embedded recommendation block and all HTML markup.
func buildContextText(userText, previousBotMessage string) string {
	if previousBotMessage == "" {
		return userText
	}
	clean := wloBlockPattern.ReplaceAllString(previousBotMessage, "")
	clean = strings.TrimSpace(htmlTagPattern.ReplaceAllString(clean, ""))
	if clean == "" {
		return userText
	}
	return clean + " " + userText
}

// GetSuggestions runs the whole enrichment path: infer metadata, search,
// normalize. Recommendations are optional, so every failure degrades to an
// empty result instead of reaching the caller.
func (s *Service) GetSuggestions(ctx context.Context, userText string, settings models.ChatSettings, previousBotMessage string) []models.WLOMetadata {
	if !settings.EnableWLO {
		return nil
	}

	contextText := buildContextText(userText, previousBotMessage)

	metadata, err := s.extractor.ExtractLearningMetadata(ctx, contextText, settings)
	if err != nil {
		log.Printf("[ERROR] WLO metadata extraction failed: %v", err)
		return nil
	}

	params := buildSearchParams(metadata, userText, previousBotMessage != "")

	nodes, err := s.search(ctx, params)
	if err != nil {
		log.Printf("[ERROR] WLO search failed: %v", err)
		return nil
	}

	suggestions := lo.FilterMap(nodes, func(node wloNode, _ int) (models.WLOMetadata, bool) {
		normalized := normalizeNode(node)
		return normalized, normalized.WwwURL != ""
	})
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}

	log.Printf("[INFO] WLO search returned %d usable suggestions", len(suggestions))
	return suggestions
}

func buildSearchParams(metadata *models.LearningMetadata, userText string, hasContext bool) models.WLOSearchParams {
	topic := metadata.Topic
	if topic == "" {
		topic = userText
	}

	properties := []string{"cclom:title"}
	values := []string{topic}

	// With conversational context, also match the topic against resource
	// descriptions for better continuity across turns.
	if hasContext && metadata.Topic != "" {
		properties = append(properties, "cclom:general_description")
		values = append(values, metadata.Topic)
	}

	if metadata.Subject != nil {
		if taxonID, ok := FachMapping[*metadata.Subject]; ok {
			properties = append(properties, "ccm:taxonid")
			values = append(values, taxonID)
		}
	}

	if metadata.ContentType != nil {
		if typeID, ok := InhaltstypMapping[*metadata.ContentType]; ok {
			properties = append(properties, "ccm:oeh_lrt_aggregated")
			values = append(values, typeID)
		}
	}

	return models.WLOSearchParams{
		Properties: properties,
		Values:     values,
		MaxItems:   maxSuggestions,
	}
}

type searchCriterion struct {
	Property string   `json:"property"`
	Values   []string `json:"values"`
}

type searchRequest struct {
	Criteria []searchCriterion `json:"criteria"`
}

type wloNode struct {
	Ref struct {
		ID string `json:"id"`
	} `json:"ref"`
	Properties map[string][]any `json:"properties"`
}

type searchResponse struct {
	Nodes []wloNode `json:"nodes"`
}

// Provider-side property renames; the search endpoint expects the virtual
// names for some legacy properties.
var propertyRenames = map[string]string{
	"ccm:taxonid": "virtual:taxonid",
}

func (s *Service) search(ctx context.Context, params models.WLOSearchParams) ([]wloNode, error) {
	var criteria []searchCriterion

	// The free-text criterion always leads.
	for i, property := range params.Properties {
		if property == "cclom:title" && params.Values[i] != "" {
			criteria = append(criteria, searchCriterion{Property: "ngsearchword", Values: []string{params.Values[i]}})
			break
		}
	}
	for i, property := range params.Properties {
		if property == "cclom:title" || params.Values[i] == "" {
			continue
		}
		if renamed, ok := propertyRenames[property]; ok {
			property = renamed
		}
		criteria = append(criteria, searchCriterion{Property: property, Values: []string{params.Values[i]}})
	}

	maxItems := params.MaxItems
	if maxItems <= 0 {
		maxItems = maxSuggestions
	}
	propertyFilter := params.PropertyFilter
	if propertyFilter == "" {
		propertyFilter = "-all-"
	}

	query := url.Values{
		"contentType":    {"FILES"},
		"maxItems":       {strconv.Itoa(maxItems)},
		"skipCount":      {strconv.Itoa(params.SkipCount)},
		"propertyFilter": {propertyFilter},
	}

	body, err := json.Marshal(searchRequest{Criteria: criteria})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search criteria: %w", err)
	}

	endpoint := s.baseURL + searchPath + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("WLO API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("WLO API request failed: %s", resp.Status)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	var result searchResponse
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	return result.Nodes, nil
}

// normalizeNode maps a vendor property bag onto the uniform descriptor,
// applying a fallback chain per field.
func normalizeNode(node wloNode) models.WLOMetadata {
	refID := node.Ref.ID

	wwwURL := firstString(node.Properties, "cclom:location", "ccm:wwwurl")
	if wwwURL == "" && refID != "" {
		wwwURL = renderURLPrefix + refID
	}

	previewURL := ""
	if refID != "" {
		previewURL = fmt.Sprintf(previewURLFormat, refID)
	}

	title := firstString(node.Properties, "cclom:title", "cm:title", "cm:name")
	if title == "" {
		title = "Untitled Resource"
	}

	resourceType := firstString(node.Properties, "ccm:oeh_lrt_aggregated_DISPLAYNAME", "ccm:resourcetype_DISPLAYNAME")
	if resourceType == "" {
		if raw := firstString(node.Properties, "ccm:oeh_lrt_aggregated"); raw != "" {
			parts := strings.Split(raw, "/")
			resourceType = parts[len(parts)-1]
		}
	}
	if resourceType == "" {
		resourceType = "Lernressource"
	}

	return models.WLOMetadata{
		Title:              title,
		RefID:              refID,
		Description:        firstString(node.Properties, "cclom:general_description", "cm:description"),
		Subject:            firstString(node.Properties, "ccm:taxonid_DISPLAYNAME"),
		EducationalContext: stringList(node.Properties, "ccm:educationalcontext_DISPLAYNAME"),
		ResourceType:       resourceType,
		WwwURL:             wwwURL,
		PreviewURL:         previewURL,
		Keywords:           stringList(node.Properties, "cclom:general_keyword"),
	}
}

func firstString(properties map[string][]any, keys ...string) string {
	for _, key := range keys {
		values := properties[key]
		if len(values) == 0 {
			continue
		}
		if text, ok := values[0].(string); ok && text != "" {
			return text
		}
	}
	return ""
}

func stringList(properties map[string][]any, key string) []string {
	values := properties[key]
	result := make([]string, 0, len(values))
	for _, value := range values {
		if text, ok := value.(string); ok && text != "" {
			result = append(result, text)
		}
	}
	return result
}
