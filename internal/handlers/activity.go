package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"mindwell/internal/models"
)

// logActivity records an audit event. Failures are logged but never
// surfaced to the caller.
func (a *API) logActivity(ctx context.Context, userID int64, activityType string, details map[string]string) {
	if a.Store == nil {
		return
	}
	description := ""
	if len(details) > 0 {
		if raw, err := json.Marshal(details); err == nil {
			description = string(raw)
		}
	}
	_, err := a.Store.Pool.Exec(ctx,
		`INSERT INTO user_activities (user_id, activity_type, description, created_at) VALUES ($1, $2, $3, $4)`,
		userID, activityType, description, time.Now().UTC())
	if err != nil {
		a.Log.Warn().Err(err).Int64("user_id", userID).Str("activity", activityType).Msg("failed to record activity")
	}
}

func (a *API) ListActivity(w http.ResponseWriter, r *http.Request) {
	userID := a.userID(r)
	page, limit := parsePagination(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rows, err := a.Store.Pool.Query(ctx, `
		SELECT id, user_id, activity_type, description, created_at
		FROM user_activities
		WHERE user_id=$1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, (page-1)*limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load activity")
		return
	}
	defer rows.Close()

	activities := make([]models.UserActivity, 0, limit)
	for rows.Next() {
		var activity models.UserActivity
		if err := rows.Scan(&activity.ID, &activity.UserID, &activity.ActivityType, &activity.Description, &activity.CreatedAt); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load activity")
			return
		}
		activities = append(activities, activity)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"activities": activities,
		"page":       page,
		"limit":      limit,
	})
}
