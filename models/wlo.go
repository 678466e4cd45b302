package models

// WLOMetadata is the normalized form of one WirLernenOnline search result.
// Identity is the RefID; instances are immutable once normalized.
type WLOMetadata struct {
	Title              string   `json:"title"`
	RefID              string   `json:"refId"`
	Description        string   `json:"description"`
	Subject            string   `json:"subject"`
	EducationalContext []string `json:"educationalContext"`
	ResourceType       string   `json:"resourceType"`
	WwwURL             string   `json:"wwwUrl,omitempty"`
	URL                string   `json:"url,omitempty"`
	PreviewURL         string   `json:"previewUrl,omitempty"`
	Keywords           []string `json:"keywords"`
}

type WLOSearchParams struct {
	Properties     []string
	Values         []string
	MaxItems       int
	SkipCount      int
	PropertyFilter string
}
