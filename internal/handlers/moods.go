package handlers

import (
	"context"
	"net/http"
	"time"

	"mindwell/internal/models"
)

type moodRequest struct {
	MoodScore  int     `json:"mood_score"`
	Notes      *string `json:"notes"`
	Activities *string `json:"activities"`
}

func (a *API) ListMoodEntries(w http.ResponseWriter, r *http.Request) {
	userID := a.userID(r)
	page, limit := parsePagination(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rows, err := a.Store.Pool.Query(ctx, `
		SELECT id, user_id, mood_score, notes, activities, sentiment_score, sentiment_label, created_at
		FROM mood_entries
		WHERE user_id=$1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, (page-1)*limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load mood entries")
		return
	}
	defer rows.Close()

	entries := make([]models.MoodEntry, 0, limit)
	for rows.Next() {
		var entry models.MoodEntry
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.MoodScore, &entry.Notes,
			&entry.Activities, &entry.SentimentScore, &entry.SentimentLabel, &entry.CreatedAt); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load mood entries")
			return
		}
		entries = append(entries, entry)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"page":    page,
		"limit":   limit,
	})
}

func (a *API) CreateMoodEntry(w http.ResponseWriter, r *http.Request) {
	userID := a.userID(r)

	var req moodRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.MoodScore < 1 || req.MoodScore > 10 {
		writeError(w, http.StatusBadRequest, "mood_score must be between 1 and 10")
		return
	}

	var sentimentScore *float64
	var sentimentLabel *string
	if req.Notes != nil && *req.Notes != "" {
		analysis := a.Sentiment.Analyze(*req.Notes)
		sentimentScore = &analysis.Score
		label := analysis.Label
		sentimentLabel = &label
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var entry models.MoodEntry
	err := a.Store.Pool.QueryRow(ctx, `
		INSERT INTO mood_entries (user_id, mood_score, notes, activities, sentiment_score, sentiment_label, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, user_id, mood_score, notes, activities, sentiment_score, sentiment_label, created_at`,
		userID, req.MoodScore, req.Notes, req.Activities, sentimentScore, sentimentLabel, time.Now().UTC()).Scan(
		&entry.ID, &entry.UserID, &entry.MoodScore, &entry.Notes,
		&entry.Activities, &entry.SentimentScore, &entry.SentimentLabel, &entry.CreatedAt)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create mood entry")
		return
	}

	a.logActivity(ctx, userID, "mood_logged", nil)
	writeJSON(w, http.StatusCreated, entry)
}
