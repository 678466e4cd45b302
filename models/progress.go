package models

// LearningProgress is the per-session snapshot of what the learner is
// studying. It is owned by the progress tracker; all writes go through the
// tracker's merge and tick operations.
type LearningProgress struct {
	CurrentTopic     string           `json:"currentTopic,omitempty"`
	Topics           []*LearningTopic `json:"topics"`
	Successes        []string         `json:"successes"`
	Challenges       []string         `json:"challenges"`
	KeyTerms         []KeyTerm        `json:"keyTerms"`
	SessionStartTime int64            `json:"sessionStartTime"`
}

type LearningTopic struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Progress  int                `json:"progress"`
	TimeSpent int                `json:"timeSpent"`
	Subtopics []LearningSubtopic `json:"subtopics"`
	StartTime int64              `json:"startTime,omitempty"`
}

type LearningSubtopic struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Progress       int    `json:"progress" jsonschema:"minimum=1,maximum=5"`
	SelfAssessment *int   `json:"selfAssessment,omitempty"`
}

type KeyTerm struct {
	Term         string `json:"term"`
	Definition   string `json:"definition,omitempty"`
	WikipediaURL string `json:"wikipediaUrl"`
}

func NewLearningProgress(nowMillis int64) *LearningProgress {
	return &LearningProgress{
		Topics:           []*LearningTopic{},
		Successes:        []string{},
		Challenges:       []string{},
		KeyTerms:         []KeyTerm{},
		SessionStartTime: nowMillis,
	}
}

func (p *LearningProgress) FindTopic(id string) *LearningTopic {
	for _, topic := range p.Topics {
		if topic.ID == id {
			return topic
		}
	}
	return nil
}

// Clone returns a deep copy, safe to hand to readers while the original
// keeps being mutated under the tracker lock.
func (p *LearningProgress) Clone() *LearningProgress {
	clone := &LearningProgress{
		CurrentTopic:     p.CurrentTopic,
		Topics:           make([]*LearningTopic, 0, len(p.Topics)),
		Successes:        append([]string{}, p.Successes...),
		Challenges:       append([]string{}, p.Challenges...),
		KeyTerms:         append([]KeyTerm{}, p.KeyTerms...),
		SessionStartTime: p.SessionStartTime,
	}
	for _, topic := range p.Topics {
		topicCopy := *topic
		topicCopy.Subtopics = make([]LearningSubtopic, len(topic.Subtopics))
		for i, subtopic := range topic.Subtopics {
			topicCopy.Subtopics[i] = subtopic
			if subtopic.SelfAssessment != nil {
				assessment := *subtopic.SelfAssessment
				topicCopy.Subtopics[i].SelfAssessment = &assessment
			}
		}
		clone.Topics = append(clone.Topics, &topicCopy)
	}
	return clone
}
