package models

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Region       string    `json:"region"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type JournalEntry struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	MoodScore      *int      `json:"mood_score"`
	SentimentScore *float64  `json:"sentiment_score"`
	SentimentLabel *string   `json:"sentiment_label"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type MoodEntry struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	MoodScore      int       `json:"mood_score"`
	Notes          *string   `json:"notes"`
	Activities     *string   `json:"activities"`
	SentimentScore *float64  `json:"sentiment_score"`
	SentimentLabel *string   `json:"sentiment_label"`
	CreatedAt      time.Time `json:"created_at"`
}

type ChatMessage struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	SessionID      string    `json:"session_id"`
	Message        string    `json:"message"`
	Response       string    `json:"response"`
	SentimentScore *float64  `json:"sentiment_score"`
	SentimentLabel *string   `json:"sentiment_label"`
	EmotionsJSON   *string   `json:"emotions_json"`
	MetadataJSON   *string   `json:"metadata_json"`
	CreatedAt      time.Time `json:"created_at"`
}

type CrisisEvent struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	SessionID    string    `json:"session_id"`
	Level        int       `json:"level"`
	TriggersJSON *string   `json:"triggers_json"`
	HandoffID    *string   `json:"handoff_id"`
	CreatedAt    time.Time `json:"created_at"`
}

type Handoff struct {
	ID         string     `json:"id"`
	UserID     int64      `json:"user_id"`
	SessionID  string     `json:"session_id"`
	Urgency    string     `json:"urgency"`
	Status     string     `json:"status"`
	Outcome    *string    `json:"outcome"`
	Notes      *string    `json:"notes"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at"`
}

type WeeklyReport struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	ReportJSON  string    `json:"report_json"`
	CreatedAt   time.Time `json:"created_at"`
}

type UserActivity struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	ActivityType string    `json:"activity_type"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
}

type LLMProvider struct {
	ID              int64      `json:"id"`
	ProviderName    string     `json:"provider_name"`
	ModelName       string     `json:"model_name"`
	Temperature     float64    `json:"temperature"`
	MaxTokens       int        `json:"max_tokens"`
	CostPer1KInput  float64    `json:"cost_per_1k_input"`
	CostPer1KOutput float64    `json:"cost_per_1k_output"`
	IsActive        bool       `json:"is_active"`
	IsDefault       bool       `json:"is_default"`
	HealthStatus    *string    `json:"health_status"`
	LastHealthCheck *time.Time `json:"last_health_check"`
	CreatedAt       time.Time  `json:"created_at"`
}
