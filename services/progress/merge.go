package progress

import (
	"log"
	"regexp"
	"strings"
	"time"

	"lernbegleiter/models"

	"github.com/samber/lo"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// DeriveTopicID turns a topic name into its stable id: lowercased, with
// whitespace runs collapsed to a single hyphen. Repeated mentions of the
// same topic always merge into the same entry.
func DeriveTopicID(name string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

func clampProgress(value int) int {
	if value < 1 {
		return 1
	}
	if value > 5 {
		return 5
	}
	return value
}

// Merge applies one analysis round to the snapshot. It is deterministic in
// (snapshot, result, now) and must be called with exclusive access to the
// snapshot; it never touches shared state beyond its arguments.
func Merge(p *models.LearningProgress, result *models.AnalysisResult, now time.Time) {
	if result == nil {
		return
	}
	nowMillis := now.UnixMilli()

	if tc := result.TopicChange; tc != nil && tc.NewMainTopic != "" {
		topicID := DeriveTopicID(tc.NewMainTopic)
		topic := p.FindTopic(topicID)
		if topic == nil {
			topic = &models.LearningTopic{
				ID:        topicID,
				Name:      tc.NewMainTopic,
				Progress:  1,
				TimeSpent: 0,
				Subtopics: normalizeSubtopics(tc.Subtopics),
				StartTime: nowMillis,
			}
			p.Topics = append(p.Topics, topic)
			log.Printf("[INFO] New main topic discovered: %s", tc.NewMainTopic)
		}

		// Topic-scoped vocabulary: a verified main-topic change discards
		// the previous topic's key terms before this round's terms land.
		if tc.IsMainTopicChange && p.CurrentTopic != topicID {
			p.KeyTerms = []models.KeyTerm{}
			log.Printf("[INFO] Main topic changed to %s, key terms reset", topicID)
		}

		p.CurrentTopic = topicID
		topic.StartTime = nowMillis
	}

	for _, term := range result.KeyTerms {
		if term.Term == "" {
			continue
		}
		known := lo.SomeBy(p.KeyTerms, func(existing models.KeyTerm) bool {
			return existing.Term == term.Term
		})
		if !known {
			p.KeyTerms = append(p.KeyTerms, term)
		}
	}

	if update := result.ProgressUpdate; update != nil {
		if current := p.FindTopic(p.CurrentTopic); current != nil && update.CurrentTopicProgress != 0 {
			current.Progress = clampProgress(update.CurrentTopicProgress)
		}
		for _, success := range update.NewSuccesses {
			if success != "" && !lo.Contains(p.Successes, success) {
				p.Successes = append(p.Successes, success)
			}
		}
		for _, challenge := range update.NewChallenges {
			if challenge != "" && !lo.Contains(p.Challenges, challenge) {
				p.Challenges = append(p.Challenges, challenge)
			}
		}
	}
}

func normalizeSubtopics(subtopics []models.LearningSubtopic) []models.LearningSubtopic {
	normalized := make([]models.LearningSubtopic, 0, len(subtopics))
	for _, subtopic := range subtopics {
		if subtopic.Name == "" {
			continue
		}
		if subtopic.ID == "" {
			subtopic.ID = DeriveTopicID(subtopic.Name)
		}
		subtopic.Progress = clampProgress(subtopic.Progress)
		normalized = append(normalized, subtopic)
	}
	return normalized
}
