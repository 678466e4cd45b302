package store

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"lernbegleiter/models"
	"lernbegleiter/services/progress"

	"github.com/google/uuid"
)

// Greeting opens every new session as the first assistant message.
const Greeting = "Hallo! Ich bin Ihr interaktiver Lernbegleiter. Stellen Sie mir eine Lernfrage und ich helfe Ihnen dabei, das Thema durch gezielte Fragen und Hinweise zu verstehen. Womit kann ich Ihnen heute helfen?"

var ErrSessionNotFound = errors.New("session not found")

// Session holds all per-conversation state: the transcript, the active
// settings, the last round's suggestions and the progress tracker. Event
// subscribers receive progress and suggestion updates as they happen.
type Session struct {
	ID      string
	Tracker *progress.Tracker

	mu           sync.Mutex
	messages     []models.Message
	settings     models.ChatSettings
	suggestions  []models.WLOMetadata
	subscribers  map[chan models.SessionEvent]struct{}
	analysisBusy atomic.Bool
}

func (s *Session) AppendMessage(msg models.Message) {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
}

func (s *Session) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Message{}, s.messages...)
}

// LastAssistantMessage returns the most recent tutor turn, or "" for a
// fresh conversation.
func (s *Session) LastAssistantMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Role == models.RoleAssistant {
			return s.messages[i].Content
		}
	}
	return ""
}

func (s *Session) Settings() models.ChatSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *Session) SetSettings(settings models.ChatSettings) {
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
}

func (s *Session) Suggestions() []models.WLOMetadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.WLOMetadata{}, s.suggestions...)
}

// SetSuggestions replaces the sidebar suggestions and notifies subscribers.
func (s *Session) SetSuggestions(suggestions []models.WLOMetadata) {
	if suggestions == nil {
		suggestions = []models.WLOMetadata{}
	}
	s.mu.Lock()
	s.suggestions = suggestions
	s.mu.Unlock()

	s.Publish(models.SessionEvent{
		Type:        models.EventTypeSuggestions,
		Suggestions: suggestions,
		Timestamp:   time.Now().UnixMilli(),
	})
}

// Subscribe registers an event channel. The channel is buffered; slow
// consumers drop events rather than blocking publishers.
func (s *Session) Subscribe() chan models.SessionEvent {
	ch := make(chan models.SessionEvent, 8)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *Session) Unsubscribe(ch chan models.SessionEvent) {
	s.mu.Lock()
	delete(s.subscribers, ch)
	s.mu.Unlock()
	close(ch)
}

func (s *Session) Publish(event models.SessionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// TryBeginAnalysis claims the single analysis slot for this session.
// Returns false when a previous round is still running.
func (s *Session) TryBeginAnalysis() bool {
	return s.analysisBusy.CompareAndSwap(false, true)
}

func (s *Session) EndAnalysis() {
	s.analysisBusy.Store(false)
}

type SessionRepository interface {
	Create(settings models.ChatSettings) *Session
	Get(id string) (*Session, error)
	All() []*Session
}

type InMemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewInMemorySessionRepository() *InMemorySessionRepository {
	return &InMemorySessionRepository{sessions: make(map[string]*Session)}
}

func (r *InMemorySessionRepository) Create(settings models.ChatSettings) *Session {
	now := time.Now()
	session := &Session{
		ID:      uuid.NewString(),
		Tracker: progress.NewTracker(now),
		messages: []models.Message{
			{Role: models.RoleAssistant, Content: Greeting, Timestamp: now.UnixMilli()},
		},
		settings:    settings,
		suggestions: []models.WLOMetadata{},
		subscribers: make(map[chan models.SessionEvent]struct{}),
	}
	session.Tracker.SetOnChange(func(snapshot *models.LearningProgress) {
		session.Publish(models.SessionEvent{
			Type:      models.EventTypeProgress,
			Progress:  snapshot,
			Timestamp: time.Now().UnixMilli(),
		})
	})

	r.mu.Lock()
	r.sessions[session.ID] = session
	r.mu.Unlock()

	log.Printf("[INFO] Created session %s", session.ID)
	return session
}

func (r *InMemorySessionRepository) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (r *InMemorySessionRepository) All() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

// StartTimeTracking refreshes the derived time-on-topic counters of all
// sessions on a fixed interval until ctx is cancelled.
func (r *InMemorySessionRepository) StartTimeTracking(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				for _, session := range r.All() {
					session.Tracker.Tick(now)
				}
			}
		}
	}()
}
