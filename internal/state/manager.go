package state

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const stateTTL = 72 * time.Hour

// Manager caches user profiles and conversation contexts in memory and
// persists them to Redis as JSON blobs with a TTL. All cache access is
// mutex-guarded; contexts may be touched from both the request path and the
// analysis workers.
type Manager struct {
	mu       sync.RWMutex
	profiles map[int64]*UserProfile
	contexts map[string]*ConversationContext
	redis    *redis.Client
	log      zerolog.Logger
}

func NewManager(client *redis.Client, log zerolog.Logger) *Manager {
	return &Manager{
		profiles: map[int64]*UserProfile{},
		contexts: map[string]*ConversationContext{},
		redis:    client,
		log:      log.With().Str("component", "state").Logger(),
	}
}

func profileKey(userID int64) string {
	return "state:profile:" + strconv.FormatInt(userID, 10)
}

func contextKey(sessionID string) string {
	return "state:context:" + sessionID
}

func (m *Manager) Profile(ctx context.Context, userID int64) *UserProfile {
	m.mu.RLock()
	profile, ok := m.profiles[userID]
	m.mu.RUnlock()
	if ok {
		return profile
	}

	profile = m.loadProfile(ctx, userID)
	if profile == nil {
		profile = NewUserProfile(userID)
	}

	m.mu.Lock()
	if existing, ok := m.profiles[userID]; ok {
		profile = existing
	} else {
		m.profiles[userID] = profile
	}
	m.mu.Unlock()
	return profile
}

func (m *Manager) Context(ctx context.Context, sessionID string, userID int64) *ConversationContext {
	m.mu.RLock()
	conv, ok := m.contexts[sessionID]
	m.mu.RUnlock()
	if ok {
		return conv
	}

	conv = m.loadContext(ctx, sessionID)
	if conv == nil {
		conv = NewConversationContext(sessionID, userID)
	}

	m.mu.Lock()
	if existing, ok := m.contexts[sessionID]; ok {
		conv = existing
	} else {
		m.contexts[sessionID] = conv
	}
	m.mu.Unlock()
	return conv
}

// ProcessMessage folds a user message and its analysis into the session
// context and the user profile, persists both, and returns the context
// snapshot for the response pipeline.
func (m *Manager) ProcessMessage(ctx context.Context, userID int64, sessionID, message string, sentiment *float64, emotions map[string]float64, topics []string) Snapshot {
	profile := m.Profile(ctx, userID)
	conv := m.Context(ctx, sessionID, userID)

	m.mu.Lock()
	conv.AddMessage("user", message, sentiment, emotions, topics)
	profile.Touch()
	for _, topic := range topics {
		profile.AddTopic(topic)
	}
	if len(emotions) > 0 {
		profile.UpdateEmotionalPatterns(emotions)
	}
	snapshot := conv.TakeSnapshot()
	m.mu.Unlock()

	m.saveProfile(ctx, profile)
	m.saveContext(ctx, conv)
	return snapshot
}

func (m *Manager) AddAssistantResponse(ctx context.Context, sessionID string, userID int64, response string) {
	conv := m.Context(ctx, sessionID, userID)
	m.mu.Lock()
	conv.AddMessage("assistant", response, nil, nil, nil)
	m.mu.Unlock()
	m.saveContext(ctx, conv)
}

func (m *Manager) RecordCrisisEvent(ctx context.Context, userID int64, sessionID, severity, topic string) {
	profile := m.Profile(ctx, userID)
	conv := m.Context(ctx, sessionID, userID)

	m.mu.Lock()
	profile.RecordCrisis(severity, topic)
	conv.AddMessage("system", "Crisis event detected: "+severity+" regarding "+topic, nil, nil, nil)
	m.mu.Unlock()

	m.saveProfile(ctx, profile)
	m.saveContext(ctx, conv)
}

func (m *Manager) Snapshot(ctx context.Context, sessionID string, userID int64) Snapshot {
	conv := m.Context(ctx, sessionID, userID)
	m.mu.Lock()
	defer m.mu.Unlock()
	return conv.TakeSnapshot()
}

func (m *Manager) UpdatePreferences(ctx context.Context, userID int64, prefs map[string]string) {
	profile := m.Profile(ctx, userID)
	m.mu.Lock()
	for key, value := range prefs {
		profile.Preferences[key] = value
	}
	m.mu.Unlock()
	m.saveProfile(ctx, profile)
}

func (m *Manager) ClearCache() {
	m.mu.Lock()
	m.profiles = map[int64]*UserProfile{}
	m.contexts = map[string]*ConversationContext{}
	m.mu.Unlock()
}

func (m *Manager) loadProfile(ctx context.Context, userID int64) *UserProfile {
	if m.redis == nil {
		return nil
	}
	raw, err := m.redis.Get(ctx, profileKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			m.log.Warn().Err(err).Int64("user_id", userID).Msg("load profile")
		}
		return nil
	}
	var profile UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		m.log.Warn().Err(err).Int64("user_id", userID).Msg("decode profile")
		return nil
	}
	if profile.Preferences == nil {
		profile.Preferences = map[string]string{}
	}
	if profile.CommonEmotions == nil {
		profile.CommonEmotions = map[string]*EmotionStats{}
	}
	return &profile
}

func (m *Manager) loadContext(ctx context.Context, sessionID string) *ConversationContext {
	if m.redis == nil {
		return nil
	}
	raw, err := m.redis.Get(ctx, contextKey(sessionID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			m.log.Warn().Err(err).Str("session_id", sessionID).Msg("load context")
		}
		return nil
	}
	var conv ConversationContext
	if err := json.Unmarshal(raw, &conv); err != nil {
		m.log.Warn().Err(err).Str("session_id", sessionID).Msg("decode context")
		return nil
	}
	if conv.Topics == nil {
		conv.Topics = map[string]*TopicStats{}
	}
	if conv.People == nil {
		conv.People = map[string]*MentionStats{}
	}
	if conv.Events == nil {
		conv.Events = map[string]*MentionStats{}
	}
	if conv.Concerns == nil {
		conv.Concerns = map[string]*MentionStats{}
	}
	return &conv
}

func (m *Manager) saveProfile(ctx context.Context, profile *UserProfile) {
	if m.redis == nil {
		return
	}
	m.mu.RLock()
	payload, err := json.Marshal(profile)
	m.mu.RUnlock()
	if err != nil {
		m.log.Warn().Err(err).Int64("user_id", profile.UserID).Msg("encode profile")
		return
	}
	if err := m.redis.Set(ctx, profileKey(profile.UserID), payload, stateTTL).Err(); err != nil {
		m.log.Warn().Err(err).Int64("user_id", profile.UserID).Msg("save profile")
	}
}

func (m *Manager) saveContext(ctx context.Context, conv *ConversationContext) {
	if m.redis == nil {
		return
	}
	m.mu.RLock()
	payload, err := json.Marshal(conv)
	m.mu.RUnlock()
	if err != nil {
		m.log.Warn().Err(err).Str("session_id", conv.SessionID).Msg("encode context")
		return
	}
	if err := m.redis.Set(ctx, contextKey(conv.SessionID), payload, stateTTL).Err(); err != nil {
		m.log.Warn().Err(err).Str("session_id", conv.SessionID).Msg("save context")
	}
}
