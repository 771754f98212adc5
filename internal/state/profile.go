package state

import "time"

// UserProfile accumulates long-lived per-user signals across sessions.
type UserProfile struct {
	UserID           int64                     `json:"user_id"`
	CreatedAt        time.Time                 `json:"created_at"`
	LastActive       time.Time                 `json:"last_active"`
	InteractionCount int                       `json:"interaction_count"`
	Preferences      map[string]string         `json:"preferences"`
	EmotionalTrend   string                    `json:"emotional_trend"`
	CommonEmotions   map[string]*EmotionStats  `json:"common_emotions"`
	TopicsOfInterest []string                  `json:"topics_of_interest"`
	CrisisHistory    []CrisisRecord            `json:"crisis_history"`
}

type EmotionStats struct {
	Count         int       `json:"count"`
	AvgIntensity  float64   `json:"avg_intensity"`
	FirstObserved time.Time `json:"first_observed"`
	LastObserved  time.Time `json:"last_observed"`
}

type CrisisRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Severity  string    `json:"severity"`
	Topic     string    `json:"topic"`
}

const maxTopicsOfInterest = 10

func NewUserProfile(userID int64) *UserProfile {
	now := time.Now().UTC()
	return &UserProfile{
		UserID:         userID,
		CreatedAt:      now,
		LastActive:     now,
		Preferences:    map[string]string{},
		EmotionalTrend: "neutral",
		CommonEmotions: map[string]*EmotionStats{},
	}
}

func (p *UserProfile) Touch() {
	p.LastActive = time.Now().UTC()
	p.InteractionCount++
}

// UpdateEmotionalPatterns folds new emotion intensities into the running
// per-emotion counts and recomputes the dominant trend. Intensities at or
// below 0.3 are considered noise.
func (p *UserProfile) UpdateEmotionalPatterns(emotions map[string]float64) {
	now := time.Now().UTC()
	for emotion, score := range emotions {
		if score <= 0.3 {
			continue
		}
		stats, ok := p.CommonEmotions[emotion]
		if !ok {
			stats = &EmotionStats{FirstObserved: now}
			p.CommonEmotions[emotion] = stats
		}
		stats.Count++
		stats.AvgIntensity = (stats.AvgIntensity*float64(stats.Count-1) + score) / float64(stats.Count)
		stats.LastObserved = now
	}

	best := ""
	bestCount := 0
	bestIntensity := 0.0
	for emotion, stats := range p.CommonEmotions {
		if stats.Count > bestCount || (stats.Count == bestCount && stats.AvgIntensity > bestIntensity) {
			best = emotion
			bestCount = stats.Count
			bestIntensity = stats.AvgIntensity
		}
	}
	if best != "" {
		p.EmotionalTrend = best
	}
}

func (p *UserProfile) AddTopic(topic string) {
	if topic == "" {
		return
	}
	for _, existing := range p.TopicsOfInterest {
		if existing == topic {
			return
		}
	}
	p.TopicsOfInterest = append(p.TopicsOfInterest, topic)
	if len(p.TopicsOfInterest) > maxTopicsOfInterest {
		p.TopicsOfInterest = p.TopicsOfInterest[:maxTopicsOfInterest]
	}
}

func (p *UserProfile) RecordCrisis(severity, topic string) {
	p.CrisisHistory = append(p.CrisisHistory, CrisisRecord{
		Timestamp: time.Now().UTC(),
		Severity:  severity,
		Topic:     topic,
	})
}
