package models

// AnalysisResult is the structured reply expected from the learning-progress
// inference call. The jsonschema tags drive the response schema embedded in
// the analyzer prompt.
type AnalysisResult struct {
	TopicChange    *TopicChange    `json:"topicChange,omitempty" jsonschema:"description=Detected main-topic change for this exchange"`
	KeyTerms       []KeyTerm       `json:"keyTerms,omitempty" jsonschema:"description=Up to 5 central technical terms from this exchange,maxItems=5"`
	ProgressUpdate *ProgressUpdate `json:"progressUpdate,omitempty" jsonschema:"description=Mastery estimate and new successes or challenges"`
}

type TopicChange struct {
	NewMainTopic      string             `json:"newMainTopic" jsonschema:"description=Name of the main topic or null"`
	IsMainTopicChange bool               `json:"isMainTopicChange" jsonschema:"description=True only when the learner switched to a different top-level subject"`
	Subtopics         []LearningSubtopic `json:"subtopics,omitempty"`
}

type ProgressUpdate struct {
	CurrentTopicProgress int      `json:"currentTopicProgress,omitempty" jsonschema:"minimum=1,maximum=5"`
	NewSuccesses         []string `json:"newSuccesses,omitempty"`
	NewChallenges        []string `json:"newChallenges,omitempty"`
}

// ProgressState is the ist-stand serialized into the analyzer prompt: the
// snapshot reduced to what the model needs to reason about deltas.
type ProgressState struct {
	CurrentTopic string               `json:"currentTopic,omitempty"`
	Topics       []ProgressStateTopic `json:"topics"`
	KeyTerms     []string             `json:"keyTerms"`
	Successes    []string             `json:"successes"`
	Challenges   []string             `json:"challenges"`
}

type ProgressStateTopic struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Progress  int                `json:"progress"`
	Subtopics []LearningSubtopic `json:"subtopics"`
}
