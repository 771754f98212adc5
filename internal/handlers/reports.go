package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"mindwell/internal/insights"
)

func (a *API) WeeklyReport(w http.ResponseWriter, r *http.Request) {
	userID := a.userID(r)

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	periodEnd := time.Now().UTC()
	periodStart := periodEnd.AddDate(0, 0, -7)

	history, err := a.loadChatEntries(ctx, userID, periodStart)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load conversation history")
		return
	}

	report := a.Insights.WeeklyReport(userID, history)

	// Let the configured LLM write the narrative summary; the statistical
	// summary built by the insights analyzer stands when no provider answers.
	if len(history) > 0 {
		messages := make([]string, 0, len(history))
		for _, entry := range history {
			messages = append(messages, entry.Message)
		}
		if summary, err := a.LLM.SummarizeWithFallback(ctx, userID, messages); err == nil && summary != nil && summary.Summary != "" {
			report.Summary = summary.Summary
		}
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}
	if _, err := a.Store.Pool.Exec(ctx, `
		INSERT INTO weekly_reports (user_id, period_start, period_end, report_json, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		userID, periodStart, periodEnd, string(reportJSON), time.Now().UTC()); err != nil {
		a.Log.Error().Err(err).Int64("user_id", userID).Msg("failed to persist weekly report")
	}

	a.logActivity(ctx, userID, "weekly_report_generated", nil)
	writeJSON(w, http.StatusOK, report)
}

func (a *API) loadChatEntries(ctx context.Context, userID int64, since time.Time) ([]insights.Entry, error) {
	rows, err := a.Store.Pool.Query(ctx, `
		SELECT message, response, sentiment_score, sentiment_label, emotions_json, created_at
		FROM chat_messages
		WHERE user_id=$1 AND created_at >= $2
		ORDER BY created_at ASC`,
		userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []insights.Entry
	for rows.Next() {
		var entry insights.Entry
		var label *string
		var emotionsJSON *string
		if err := rows.Scan(&entry.Message, &entry.Response, &entry.Sentiment, &label, &emotionsJSON, &entry.Timestamp); err != nil {
			return nil, err
		}
		if label != nil {
			entry.Label = *label
		}
		if emotionsJSON != nil && *emotionsJSON != "" {
			_ = json.Unmarshal([]byte(*emotionsJSON), &entry.Emotions)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
