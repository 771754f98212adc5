package handlers

import (
	"context"
	"net/http"
	"time"

	"mindwell/internal/models"
)

type completeHandoffRequest struct {
	Outcome string `json:"outcome"`
	Notes   string `json:"notes"`
}

func (a *API) EscalationHistory(w http.ResponseWriter, r *http.Request) {
	userID := a.userID(r)
	page, limit := parsePagination(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rows, err := a.Store.Pool.Query(ctx, `
		SELECT id, user_id, session_id, urgency, status, outcome, notes, created_at, resolved_at
		FROM handoffs
		WHERE user_id=$1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, (page-1)*limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load escalation history")
		return
	}
	defer rows.Close()

	handoffs := make([]models.Handoff, 0, limit)
	for rows.Next() {
		var handoff models.Handoff
		if err := rows.Scan(&handoff.ID, &handoff.UserID, &handoff.SessionID, &handoff.Urgency,
			&handoff.Status, &handoff.Outcome, &handoff.Notes, &handoff.CreatedAt, &handoff.ResolvedAt); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load escalation history")
			return
		}
		handoffs = append(handoffs, handoff)
	}

	// Recent handoffs may still be in flight and only known to the manager.
	writeJSON(w, http.StatusOK, map[string]any{
		"handoffs": handoffs,
		"active":   a.Escalation.History(userID),
		"page":     page,
		"limit":    limit,
	})
}

func (a *API) CompleteEscalation(w http.ResponseWriter, r *http.Request, handoffID string) {
	userID := a.userID(r)

	var req completeHandoffRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Outcome == "" {
		writeError(w, http.StatusBadRequest, "outcome is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	tag, err := a.Store.Pool.Exec(ctx, `
		UPDATE handoffs
		SET status='completed', outcome=$1, notes=$2, resolved_at=$3
		WHERE id=$4 AND user_id=$5`,
		req.Outcome, req.Notes, time.Now().UTC(), handoffID, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to complete handoff")
		return
	}
	if tag.RowsAffected() == 0 {
		writeError(w, http.StatusNotFound, "handoff not found")
		return
	}

	if handoff, err := a.Escalation.CompleteHandoff(handoffID, req.Outcome, req.Notes); err == nil {
		writeJSON(w, http.StatusOK, handoff)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"handoff_id": handoffID, "status": "completed"})
}
