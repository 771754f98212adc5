package state

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

const maxContextMessages = 20

// Message is one turn of a conversation, optionally annotated with analysis.
type Message struct {
	Role      string             `json:"role"`
	Content   string             `json:"content"`
	Timestamp time.Time          `json:"timestamp"`
	Sentiment *float64           `json:"sentiment,omitempty"`
	Emotions  map[string]float64 `json:"emotions,omitempty"`
	Topics    []string           `json:"topics,omitempty"`
}

type TopicStats struct {
	Count          int       `json:"count"`
	FirstMentioned time.Time `json:"first_mentioned"`
	LastMentioned  time.Time `json:"last_mentioned"`
}

type SentimentPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

type EmotionPoint struct {
	Timestamp time.Time          `json:"timestamp"`
	Values    map[string]float64 `json:"values"`
}

type MentionStats struct {
	Count          int       `json:"count"`
	FirstMentioned time.Time `json:"first_mentioned"`
	LastMentioned  time.Time `json:"last_mentioned"`
}

// Patterns holds the conversation-level flags the escalation assessment and
// the reply prompt both read.
type Patterns struct {
	Repetition          bool   `json:"repetition"`
	TopicSwitching      bool   `json:"topic_switching"`
	EmotionalEscalation bool   `json:"emotional_escalation"`
	EngagementLevel     string `json:"engagement_level"`
}

// ConversationContext is the bounded per-session record of messages, topic
// counts, sentiment/emotion history, and detected patterns.
type ConversationContext struct {
	SessionID        string                   `json:"session_id"`
	UserID           int64                    `json:"user_id"`
	CreatedAt        time.Time                `json:"created_at"`
	LastUpdated      time.Time                `json:"last_updated"`
	Messages         []Message                `json:"messages"`
	Topics           map[string]*TopicStats   `json:"topics"`
	SentimentHistory []SentimentPoint         `json:"sentiment_history"`
	EmotionHistory   []EmotionPoint           `json:"emotion_history"`
	Patterns         Patterns                 `json:"patterns"`
	People           map[string]*MentionStats `json:"people"`
	Events           map[string]*MentionStats `json:"events"`
	Concerns         map[string]*MentionStats `json:"concerns"`
	Summary          string                   `json:"summary"`
}

// Snapshot is the context view handed to the escalation manager and the
// response pipeline.
type Snapshot struct {
	Summary         string         `json:"summary"`
	Topics          map[string]int `json:"topics"`
	RecentMessages  []Message      `json:"recent_messages"`
	Patterns        Patterns       `json:"patterns"`
	People          map[string]int `json:"people"`
	Concerns        map[string]int `json:"concerns"`
	EscalationRisk  float64        `json:"escalation_risk"`
	RepeatedConcern bool           `json:"repeated_concern"`
}

var peoplePatterns = map[string]*regexp.Regexp{
	"mom":       regexp.MustCompile(`\b(mom|mother|mum|mama)\b`),
	"dad":       regexp.MustCompile(`\b(dad|father|papa)\b`),
	"partner":   regexp.MustCompile(`\b(husband|wife|boyfriend|girlfriend|partner|spouse)\b`),
	"friend":    regexp.MustCompile(`\b(friend|bestie|buddy)\b`),
	"therapist": regexp.MustCompile(`\b(therapist|counselor|psychologist|psychiatrist)\b`),
	"doctor":    regexp.MustCompile(`\b(doctor|physician|nurse|specialist)\b`),
	"boss":      regexp.MustCompile(`\b(boss|manager|supervisor)\b`),
	"colleague": regexp.MustCompile(`\b(colleague|coworker|workmate)\b`),
}

var eventPatterns = map[string]*regexp.Regexp{
	"job_change":          regexp.MustCompile(`\b(new job|fired|laid off|quit|started job|promotion|career change)\b`),
	"relationship_change": regexp.MustCompile(`\b(broke up|breakup|divorce|separated|new relationship|dating|married|engaged)\b`),
	"health_issue":        regexp.MustCompile(`\b(diagnosed|sick|ill|injury|hospital|surgery|condition|symptoms)\b`),
	"moving":              regexp.MustCompile(`\b(moved|moving|new home|new apartment|relocation|new city)\b`),
	"education":           regexp.MustCompile(`\b(school|college|university|class|course|degree|graduated|studying)\b`),
	"financial":           regexp.MustCompile(`\b(money|debt|bills|financial|afford|expensive|payment|salary|budget)\b`),
}

var concernPatterns = map[string]*regexp.Regexp{
	"sleep":      regexp.MustCompile(`\b(insomnia|sleep|cant sleep|trouble sleeping|nightmares)\b`),
	"anxiety":    regexp.MustCompile(`\b(anxiety|anxious|panic|worry|worried|stress|stressed)\b`),
	"depression": regexp.MustCompile(`\b(depression|depressed|hopeless|sad|down|blue|unhappy)\b`),
	"social":     regexp.MustCompile(`\b(lonely|alone|isolated|no friends|social anxiety)\b`),
	"work":       regexp.MustCompile(`\b(work stress|workload|job pressure|workplace|deadlines)\b`),
	"future":     regexp.MustCompile(`\b(future|planning|goals|purpose|meaning|direction)\b`),
}

var negativeEmotionNames = []string{"anger", "sadness", "anxiety", "fear", "disgust"}

func NewConversationContext(sessionID string, userID int64) *ConversationContext {
	now := time.Now().UTC()
	return &ConversationContext{
		SessionID:   sessionID,
		UserID:      userID,
		CreatedAt:   now,
		LastUpdated: now,
		Topics:      map[string]*TopicStats{},
		People:      map[string]*MentionStats{},
		Events:      map[string]*MentionStats{},
		Concerns:    map[string]*MentionStats{},
		Patterns:    Patterns{EngagementLevel: "normal"},
	}
}

// AddMessage appends a turn, updates topic/sentiment/emotion history, scans
// for important mentions, and re-runs pattern detection on user turns.
func (c *ConversationContext) AddMessage(role, content string, sentiment *float64, emotions map[string]float64, topics []string) {
	now := time.Now().UTC()
	c.LastUpdated = now

	msg := Message{Role: role, Content: content, Timestamp: now, Sentiment: sentiment, Emotions: emotions, Topics: topics}

	if sentiment != nil {
		c.SentimentHistory = append(c.SentimentHistory, SentimentPoint{Timestamp: now, Value: *sentiment})
	}
	if len(emotions) > 0 {
		c.EmotionHistory = append(c.EmotionHistory, EmotionPoint{Timestamp: now, Values: emotions})
	}
	for _, topic := range topics {
		stats, ok := c.Topics[topic]
		if !ok {
			stats = &TopicStats{FirstMentioned: now}
			c.Topics[topic] = stats
		}
		stats.Count++
		stats.LastMentioned = now
	}

	if role == "user" && content != "" {
		c.extractMentions(strings.ToLower(content))
	}

	c.Messages = append(c.Messages, msg)
	if len(c.Messages) > maxContextMessages {
		c.Messages = c.Messages[len(c.Messages)-maxContextMessages:]
	}

	if role == "user" {
		c.detectPatterns(topics)
	}
}

func (c *ConversationContext) extractMentions(lower string) {
	now := time.Now().UTC()
	scan := func(patterns map[string]*regexp.Regexp, dst map[string]*MentionStats) {
		for name, pattern := range patterns {
			if pattern.MatchString(lower) {
				stats, ok := dst[name]
				if !ok {
					stats = &MentionStats{FirstMentioned: now}
					dst[name] = stats
				}
				stats.Count++
				stats.LastMentioned = now
			}
		}
	}
	scan(peoplePatterns, c.People)
	scan(eventPatterns, c.Events)
	scan(concernPatterns, c.Concerns)
}

func (c *ConversationContext) detectPatterns(topics []string) {
	// Repetition: the last two user messages are identical or one contains
	// the other.
	userMessages := c.userMessages()
	if len(userMessages) >= 2 {
		last := strings.ToLower(userMessages[len(userMessages)-1].Content)
		prev := strings.ToLower(userMessages[len(userMessages)-2].Content)
		if last == prev || (len(last) > 5 && (strings.Contains(prev, last) || strings.Contains(last, prev))) {
			c.Patterns.Repetition = true
		}
	}

	// Topic switching: no overlap between the current topics and the topics
	// of the last few annotated messages.
	if len(topics) > 0 {
		recent := map[string]bool{}
		for i := len(c.Messages) - 2; i >= 0 && len(recent) < 3; i-- {
			for _, topic := range c.Messages[i].Topics {
				recent[topic] = true
			}
		}
		if len(recent) > 0 {
			overlap := false
			for _, topic := range topics {
				if recent[topic] {
					overlap = true
					break
				}
			}
			if !overlap {
				c.Patterns.TopicSwitching = true
			}
		}
	}

	// Emotional escalation: three strictly rising negative-emotion sums with
	// the latest above 0.5.
	if len(c.EmotionHistory) >= 3 {
		recent := c.EmotionHistory[len(c.EmotionHistory)-3:]
		intensities := make([]float64, 3)
		for i, point := range recent {
			for _, emotion := range negativeEmotionNames {
				intensities[i] += point.Values[emotion]
			}
		}
		if intensities[2] > intensities[1] && intensities[1] > intensities[0] && intensities[2] > 0.5 {
			c.Patterns.EmotionalEscalation = true
		}
	}

	// Engagement by average user message length over the last five turns.
	if len(c.Messages) >= 5 {
		words := 0
		count := 0
		for _, msg := range c.Messages[len(c.Messages)-5:] {
			if msg.Role != "user" {
				continue
			}
			words += len(strings.Fields(msg.Content))
			count++
		}
		if count > 0 {
			avg := float64(words) / float64(count)
			switch {
			case avg < 3:
				c.Patterns.EngagementLevel = "low"
			case avg > 15:
				c.Patterns.EngagementLevel = "high"
			default:
				c.Patterns.EngagementLevel = "normal"
			}
		}
	}
}

func (c *ConversationContext) userMessages() []Message {
	out := make([]Message, 0, len(c.Messages))
	for _, msg := range c.Messages {
		if msg.Role == "user" {
			out = append(out, msg)
		}
	}
	return out
}

// GenerateSummary refreshes and returns the one-line conversation summary.
func (c *ConversationContext) GenerateSummary() string {
	userCount := len(c.userMessages())

	topTopics := topCounts(topicCounts(c.Topics), 3)
	topPeople := topCounts(mentionCounts(c.People), 2)
	topConcerns := topCounts(mentionCounts(c.Concerns), 2)

	trend := "neutral"
	if len(c.SentimentHistory) >= 3 {
		recent := c.SentimentHistory[len(c.SentimentHistory)-3:]
		sum := 0.0
		for _, point := range recent {
			sum += point.Value
		}
		avg := sum / 3
		if avg < 0.3 {
			trend = "negative"
		} else if avg > 0.7 {
			trend = "positive"
		}
	}

	c.Summary = "Conversation with " + strconv.Itoa(userCount) + " user messages. " +
		"Main topics: " + joinOrNone(topTopics) + ". " +
		"Sentiment: " + trend + ". " +
		"Key people: " + joinOrNone(topPeople) + ". " +
		"Main concerns: " + joinOrNone(topConcerns) + "."
	return c.Summary
}

// TakeSnapshot prepares the context view used for escalation assessment and
// response generation. EscalationRisk blends the pattern flags into [0,1].
func (c *ConversationContext) TakeSnapshot() Snapshot {
	c.GenerateSummary()

	risk := 0.0
	if c.Patterns.EmotionalEscalation {
		risk += 0.5
	}
	if c.Patterns.Repetition {
		risk += 0.25
	}
	if c.Patterns.EngagementLevel == "low" {
		risk += 0.15
	}
	if risk > 1 {
		risk = 1
	}

	repeated := false
	for _, stats := range c.Concerns {
		if stats.Count >= 3 {
			repeated = true
			break
		}
	}

	recent := c.Messages
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}

	return Snapshot{
		Summary:         c.Summary,
		Topics:          topicCounts(c.Topics),
		RecentMessages:  recent,
		Patterns:        c.Patterns,
		People:          mentionCounts(c.People),
		Concerns:        mentionCounts(c.Concerns),
		EscalationRisk:  risk,
		RepeatedConcern: repeated,
	}
}

func topicCounts(topics map[string]*TopicStats) map[string]int {
	out := make(map[string]int, len(topics))
	for name, stats := range topics {
		out[name] = stats.Count
	}
	return out
}

func mentionCounts(mentions map[string]*MentionStats) map[string]int {
	out := make(map[string]int, len(mentions))
	for name, stats := range mentions {
		out[name] = stats.Count
	}
	return out
}

func topCounts(counts map[string]int, n int) []string {
	type pair struct {
		name  string
		count int
	}
	pairs := make([]pair, 0, len(counts))
	for name, count := range counts {
		pairs = append(pairs, pair{name, count})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].name < pairs[j].name
	})
	if len(pairs) > n {
		pairs = pairs[:n]
	}
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.name
	}
	return out
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}
