package escalation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mindwell/internal/sentiment"
	"mindwell/internal/state"
)

// Level is the escalation severity assigned to a message.
type Level int

const (
	LevelNone Level = iota
	LevelMild
	LevelModerate
	LevelSevere
	LevelEmergency
)

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelMild:
		return "mild"
	case LevelModerate:
		return "moderate"
	case LevelSevere:
		return "severe"
	case LevelEmergency:
		return "emergency"
	default:
		return "unknown"
	}
}

// Assessment is the result of evaluating one message against the crisis
// heuristics plus the conversation context.
type Assessment struct {
	Level              Level    `json:"level"`
	CrisisDetected     bool     `json:"crisis_detected"`
	Triggers           []string `json:"triggers"`
	ConcerningPatterns []string `json:"concerning_patterns"`
	Required           bool     `json:"escalation_required"`
	RecommendedAction  string   `json:"recommended_action"`
	Guidelines         string   `json:"response_guidelines"`
}

var crisisPatterns = map[string]*regexp.Regexp{
	"suicidal": regexp.MustCompile(`(?i)\b(kill myself|suicide|suicidal|end my life|take my life)\b|\bdon'?t want to (live|be alive|exist)\b|\bwant(ing)? to die\b|\bno (point|reason) (in|to) liv(e|ing)\b|\bbetter off (dead|without me)\b|\bcan'?t (go on|take (it|this) anymore)\b`),
	"self_harm": regexp.MustCompile(`(?i)\b(cut(ting)? myself|hurt(ing)? myself|harm(ing)? myself|burn(ing)? myself)\b|\bself[- ]harm\b`),
	"violence":  regexp.MustCompile(`(?i)\b(kill|hurt|harm|shoot)\b.{0,20}\b(someone|people|them|him|her)\b|\b(murder|attack|assault)\b`),
	"plan":      regexp.MustCompile(`(?i)\bplan(ning)? to\b.{0,30}\b(suicide|kill|end|take my life)\b|\b(wrote|writing|left)\b.{0,20}\b(note|letter|will)\b|\b(found|got|bought)\b.{0,20}\b(pills|gun|knife|rope)\b|\b(my|this is)\b.{0,20}\b(last|final|goodbye|farewell)\b`),
	"immediate": regexp.MustCompile(`(?i)\b(now|immediately|tonight|today)\b.{0,30}\b(die|suicide|kill|end it)\b|\bgoing to\b.{0,20}\b(do it|end it)\b|\b(last message|wanted you to know)\b.{0,30}\b(goodbye|farewell)\b`),
	"hopeless":  regexp.MustCompile(`(?i)\bno (hope|future)\b|\bnever get better\b|\bnothing (will|can|could) help\b|\b(tried everything|nothing works|beyond help)\b`),
	"previous":  regexp.MustCompile(`(?i)\b(tried|attempt(ed)?)\b.{0,30}\b((to )?(kill|harm) myself|suicide)\b`),
}

var concerningRegex = regexp.MustCompile(`(?i)\balone\b|\bisolat(ed|ion)\b|\bworthless\b|\btrapped\b|\bburden\b|\bnobody cares\b|\bempty\b|\bno point\b|\bpain(ful)?\b|\btoo much\b|\bcan'?t (take|handle|bear) it\b`)

// Categories that imply concrete intent jump straight to emergency.
var emergencyCategories = map[string]bool{"plan": true, "immediate": true}

type Manager struct {
	defaultRegion string
	handoffURL    string
	client        *http.Client
	log           zerolog.Logger

	mu      sync.Mutex
	active  map[string]*Handoff // handoff id -> handoff
	history map[int64][]HandoffSummary
}

type Handoff struct {
	ID          string         `json:"handoff_id"`
	UserID      int64          `json:"user_id"`
	SessionID   string         `json:"session_id"`
	Urgency     string         `json:"urgency"`
	Status      string         `json:"status"`
	Outcome     string         `json:"outcome,omitempty"`
	Notes       string         `json:"notes,omitempty"`
	Context     state.Snapshot `json:"context"`
	CreatedAt   time.Time      `json:"created_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

type HandoffSummary struct {
	ID        string    `json:"handoff_id"`
	Urgency   string    `json:"urgency"`
	Outcome   string    `json:"outcome,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewManager(defaultRegion, handoffURL string, log zerolog.Logger) *Manager {
	if defaultRegion == "" {
		defaultRegion = "US"
	}
	return &Manager{
		defaultRegion: defaultRegion,
		handoffURL:    handoffURL,
		client:        &http.Client{Timeout: 10 * time.Second},
		log:           log.With().Str("component", "escalation").Logger(),
		active:        map[string]*Handoff{},
		history:       map[int64][]HandoffSummary{},
	}
}

// Assess runs the crisis regexes and blends in sentiment, emotions, and
// conversation-context signals to produce a level. A direct crisis match is
// at least severe; plan or immediate-timing matches are emergency.
func (m *Manager) Assess(message string, analysis sentiment.Analysis, snapshot state.Snapshot) Assessment {
	result := Assessment{Level: LevelNone, Triggers: []string{}, ConcerningPatterns: []string{}}

	for _, category := range []string{"suicidal", "self_harm", "violence", "plan", "immediate", "hopeless", "previous"} {
		if crisisPatterns[category].MatchString(message) {
			result.CrisisDetected = true
			result.Triggers = append(result.Triggers, category)
			if emergencyCategories[category] {
				result.Level = LevelEmergency
			} else if result.Level < LevelSevere {
				result.Level = LevelSevere
			}
		}
	}

	if matches := concerningRegex.FindAllString(message, -1); len(matches) > 0 {
		result.ConcerningPatterns = matches
		if !result.CrisisDetected {
			if len(matches) >= 3 {
				result.Level = maxLevel(result.Level, LevelModerate)
			} else {
				result.Level = maxLevel(result.Level, LevelMild)
			}
		}
	}

	// Very negative sentiment raises the floor.
	if analysis.Score < 0.2 {
		result.Level = maxLevel(result.Level, LevelSevere)
	} else if analysis.Score < 0.3 {
		result.Level = maxLevel(result.Level, LevelMild)
	}

	for _, emotion := range analysis.Emotions {
		if emotion == "sadness" || emotion == "fear" {
			if analysis.Label == sentiment.LabelHighlyNegative {
				result.Level = maxLevel(result.Level, LevelSevere)
				result.Triggers = append(result.Triggers, "intense "+emotion)
			}
		}
	}

	if snapshot.EscalationRisk > 0.7 {
		result.Level = maxLevel(result.Level, LevelSevere)
		result.Triggers = append(result.Triggers, "conversation pattern escalation")
	} else if snapshot.EscalationRisk > 0.4 {
		result.Level = maxLevel(result.Level, LevelMild)
		result.Triggers = append(result.Triggers, "rising conversation risk")
	}

	if snapshot.RepeatedConcern {
		result.Level = maxLevel(result.Level, LevelSevere)
		result.Triggers = append(result.Triggers, "repeated concerning messages")
	}

	m.setRecommendedActions(&result)
	return result
}

func (m *Manager) setRecommendedActions(result *Assessment) {
	switch result.Level {
	case LevelNone:
		result.RecommendedAction = "continue"
		result.Guidelines = "Respond normally with empathy."
	case LevelMild:
		result.RecommendedAction = "monitor"
		result.Guidelines = "Acknowledge feelings and offer supportive response."
	case LevelModerate:
		result.RecommendedAction = "support"
		result.Required = true
		result.Guidelines = "Express concern, validate feelings, suggest resources."
	case LevelSevere:
		result.RecommendedAction = "resources"
		result.Required = true
		result.Guidelines = "Express concern directly, provide support resources, encourage professional help."
	case LevelEmergency:
		result.RecommendedAction = "crisis_protocol"
		result.Required = true
		result.Guidelines = "Initiate crisis protocol, provide direct crisis resources, offer human handoff."
	}
}

func maxLevel(a, b Level) Level {
	if a > b {
		return a
	}
	return b
}

// InitiateHandoff registers a human-handoff request and, when a callback URL
// is configured, posts it to the external staffing service.
func (m *Manager) InitiateHandoff(ctx context.Context, userID int64, sessionID string, snapshot state.Snapshot, urgency string) *Handoff {
	if urgency == "" {
		urgency = "standard"
	}
	handoff := &Handoff{
		ID:        uuid.NewString(),
		UserID:    userID,
		SessionID: sessionID,
		Urgency:   urgency,
		Status:    "pending",
		Context:   snapshot,
		CreatedAt: time.Now().UTC(),
	}

	// Post the webhook before the handoff becomes visible through
	// HandoffStatus, so the status field is settled by then.
	if m.handoffURL != "" {
		if err := m.postHandoff(ctx, handoff); err != nil {
			m.log.Error().Err(err).Str("handoff_id", handoff.ID).Msg("handoff webhook")
			handoff.Status = "failed"
		} else {
			handoff.Status = "requested"
		}
	}

	m.mu.Lock()
	m.active[handoff.ID] = handoff
	m.history[userID] = append(m.history[userID], HandoffSummary{
		ID:        handoff.ID,
		Urgency:   urgency,
		CreatedAt: handoff.CreatedAt,
	})
	m.mu.Unlock()

	return handoff
}

func (m *Manager) postHandoff(ctx context.Context, handoff *Handoff) error {
	payload, err := json.Marshal(handoff)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.handoffURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.New("handoff webhook returned " + resp.Status)
	}
	return nil
}

func (m *Manager) HandoffStatus(handoffID string) (*Handoff, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	handoff, ok := m.active[handoffID]
	return handoff, ok
}

// CompleteHandoff marks a handoff resolved and records the outcome in the
// user's escalation history.
func (m *Manager) CompleteHandoff(handoffID, outcome, notes string) (*Handoff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	handoff, ok := m.active[handoffID]
	if !ok {
		return nil, errors.New("handoff not found")
	}
	now := time.Now().UTC()
	handoff.Status = "completed"
	handoff.Outcome = outcome
	handoff.Notes = notes
	handoff.CompletedAt = &now

	for i := range m.history[handoff.UserID] {
		if m.history[handoff.UserID][i].ID == handoffID {
			m.history[handoff.UserID][i].Outcome = outcome
			break
		}
	}
	return handoff, nil
}

func (m *Manager) History(userID int64) []HandoffSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]HandoffSummary, len(m.history[userID]))
	copy(out, m.history[userID])
	return out
}
