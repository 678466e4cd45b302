package models

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

type ChatSettings struct {
	UseKissKI bool `json:"useKissKI"`
	EnableWLO bool `json:"enableWLO"`
	DebugMode bool `json:"debugMode"`
}

func DefaultChatSettings() ChatSettings {
	return ChatSettings{
		UseKissKI: false,
		EnableWLO: true,
		DebugMode: false,
	}
}

type LearningMetadata struct {
	Topic       string  `json:"topic"`
	Subject     *string `json:"subject"`
	ContentType *string `json:"content_type"`
}

type WLOSample struct {
	Title    string  `json:"title"`
	WwwURL   string  `json:"wwwUrl,omitempty"`
	URL      string  `json:"url,omitempty"`
	RefID    string  `json:"refId"`
	FinalURL *string `json:"finalUrl"`
}

type DebugInfo struct {
	Model      string           `json:"model"`
	Metadata   LearningMetadata `json:"metadata"`
	WLOCount   int              `json:"wloCount"`
	WLOSamples []WLOSample      `json:"wloSamples,omitempty"`
	Timestamp  string           `json:"timestamp,omitempty"`
	Error      string           `json:"error,omitempty"`
}

type ChatResponse struct {
	Message        string        `json:"message"`
	WLOSuggestions []WLOMetadata `json:"wloSuggestions,omitempty"`
	DebugInfo      *DebugInfo    `json:"debugInfo,omitempty"`
}
