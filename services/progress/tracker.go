package progress

import (
	"sync"
	"time"

	"lernbegleiter/models"

	"github.com/samber/lo"
)

// Tracker owns a session's LearningProgress snapshot. The analyzer's merge
// and the periodic time tick both write through the tracker, so the two
// writers are serialized by a single mutex and a merge is always applied to
// the latest snapshot, never to a copy captured at round start.
type Tracker struct {
	mu       sync.Mutex
	progress *models.LearningProgress
	onChange func(*models.LearningProgress)
}

func NewTracker(now time.Time) *Tracker {
	return &Tracker{progress: models.NewLearningProgress(now.UnixMilli())}
}

// SetOnChange registers the observer callback. It is invoked with a deep
// copy of the snapshot after every mutation, outside the tracker lock.
func (t *Tracker) SetOnChange(fn func(*models.LearningProgress)) {
	t.mu.Lock()
	t.onChange = fn
	t.mu.Unlock()
}

// Snapshot returns a deep copy for readers.
func (t *Tracker) Snapshot() *models.LearningProgress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress.Clone()
}

// State reduces the snapshot to the ist-stand sent to the analysis call.
func (t *Tracker) State() *models.ProgressState {
	t.mu.Lock()
	defer t.mu.Unlock()

	topics := lo.Map(t.progress.Topics, func(topic *models.LearningTopic, _ int) models.ProgressStateTopic {
		return models.ProgressStateTopic{
			ID:        topic.ID,
			Name:      topic.Name,
			Progress:  topic.Progress,
			Subtopics: append([]models.LearningSubtopic{}, topic.Subtopics...),
		}
	})
	terms := lo.Map(t.progress.KeyTerms, func(term models.KeyTerm, _ int) string {
		return term.Term
	})

	return &models.ProgressState{
		CurrentTopic: t.progress.CurrentTopic,
		Topics:       topics,
		KeyTerms:     terms,
		Successes:    append([]string{}, t.progress.Successes...),
		Challenges:   append([]string{}, t.progress.Challenges...),
	}
}

// ApplyAnalysis merges one analysis round into the live snapshot.
func (t *Tracker) ApplyAnalysis(result *models.AnalysisResult, now time.Time) {
	t.mu.Lock()
	Merge(t.progress, result, now)
	snapshot, notify := t.progress.Clone(), t.onChange
	t.mu.Unlock()

	if notify != nil {
		notify(snapshot)
	}
}

// Tick refreshes the derived timeSpent of the current topic. Returns true
// when the value changed.
func (t *Tracker) Tick(now time.Time) bool {
	t.mu.Lock()
	current := t.progress.FindTopic(t.progress.CurrentTopic)
	if current == nil || current.StartTime == 0 {
		t.mu.Unlock()
		return false
	}
	minutes := int((now.UnixMilli() - current.StartTime) / 60000)
	if minutes == current.TimeSpent {
		t.mu.Unlock()
		return false
	}
	current.TimeSpent = minutes
	snapshot, notify := t.progress.Clone(), t.onChange
	t.mu.Unlock()

	if notify != nil {
		notify(snapshot)
	}
	return true
}
