package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"mindwell/internal/models"
)

type journalRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	MoodScore *int   `json:"mood_score"`
}

func (a *API) ListJournalEntries(w http.ResponseWriter, r *http.Request) {
	userID := a.userID(r)
	page, limit := parsePagination(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rows, err := a.Store.Pool.Query(ctx, `
		SELECT id, user_id, title, content, mood_score, sentiment_score, sentiment_label, created_at, updated_at
		FROM journal_entries
		WHERE user_id=$1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, (page-1)*limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load journal entries")
		return
	}
	defer rows.Close()

	entries := make([]models.JournalEntry, 0, limit)
	for rows.Next() {
		var entry models.JournalEntry
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Title, &entry.Content,
			&entry.MoodScore, &entry.SentimentScore, &entry.SentimentLabel,
			&entry.CreatedAt, &entry.UpdatedAt); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load journal entries")
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

func (a *API) CreateJournalEntry(w http.ResponseWriter, r *http.Request) {
	userID := a.userID(r)

	var req journalRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	if req.MoodScore != nil && (*req.MoodScore < 1 || *req.MoodScore > 10) {
		writeError(w, http.StatusBadRequest, "mood_score must be between 1 and 10")
		return
	}

	analysis := a.Sentiment.Analyze(req.Content)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	var entry models.JournalEntry
	err := a.Store.Pool.QueryRow(ctx, `
		INSERT INTO journal_entries (user_id, title, content, mood_score, sentiment_score, sentiment_label, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id, user_id, title, content, mood_score, sentiment_score, sentiment_label, created_at, updated_at`,
		userID, req.Title, req.Content, req.MoodScore, analysis.Score, analysis.Label, now).Scan(
		&entry.ID, &entry.UserID, &entry.Title, &entry.Content,
		&entry.MoodScore, &entry.SentimentScore, &entry.SentimentLabel,
		&entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create journal entry")
		return
	}

	a.logActivity(ctx, userID, "journal_created", nil)
	writeJSON(w, http.StatusCreated, entry)
}

func (a *API) GetJournalEntry(w http.ResponseWriter, r *http.Request, entryID int64) {
	userID := a.userID(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var entry models.JournalEntry
	err := a.Store.Pool.QueryRow(ctx, `
		SELECT id, user_id, title, content, mood_score, sentiment_score, sentiment_label, created_at, updated_at
		FROM journal_entries
		WHERE id=$1 AND user_id=$2`,
		entryID, userID).Scan(
		&entry.ID, &entry.UserID, &entry.Title, &entry.Content,
		&entry.MoodScore, &entry.SentimentScore, &entry.SentimentLabel,
		&entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		writeError(w, http.StatusNotFound, "journal entry not found")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (a *API) UpdateJournalEntry(w http.ResponseWriter, r *http.Request, entryID int64) {
	userID := a.userID(r)

	var req journalRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	if req.MoodScore != nil && (*req.MoodScore < 1 || *req.MoodScore > 10) {
		writeError(w, http.StatusBadRequest, "mood_score must be between 1 and 10")
		return
	}

	analysis := a.Sentiment.Analyze(req.Content)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var entry models.JournalEntry
	err := a.Store.Pool.QueryRow(ctx, `
		UPDATE journal_entries
		SET title=$1, content=$2, mood_score=$3, sentiment_score=$4, sentiment_label=$5, updated_at=$6
		WHERE id=$7 AND user_id=$8
		RETURNING id, user_id, title, content, mood_score, sentiment_score, sentiment_label, created_at, updated_at`,
		req.Title, req.Content, req.MoodScore, analysis.Score, analysis.Label, time.Now().UTC(), entryID, userID).Scan(
		&entry.ID, &entry.UserID, &entry.Title, &entry.Content,
		&entry.MoodScore, &entry.SentimentScore, &entry.SentimentLabel,
		&entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		writeError(w, http.StatusNotFound, "journal entry not found")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (a *API) DeleteJournalEntry(w http.ResponseWriter, r *http.Request, entryID int64) {
	userID := a.userID(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	tag, err := a.Store.Pool.Exec(ctx,
		`DELETE FROM journal_entries WHERE id=$1 AND user_id=$2`, entryID, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete journal entry")
		return
	}
	if tag.RowsAffected() == 0 {
		writeError(w, http.StatusNotFound, "journal entry not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
