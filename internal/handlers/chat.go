package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"mindwell/internal/escalation"
	"mindwell/internal/events"
	"mindwell/internal/insights"
	"mindwell/internal/llm"
	"mindwell/internal/models"
	"mindwell/internal/sentiment"
	"mindwell/internal/state"
	"mindwell/internal/validator"
)

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	Message    models.ChatMessage    `json:"message"`
	Escalation *escalationView       `json:"escalation,omitempty"`
	Resources  *escalation.Resources `json:"resources,omitempty"`
}

type escalationView struct {
	Level     string `json:"level"`
	HandoffID string `json:"handoff_id,omitempty"`
}

func (a *API) CreateChatSession(w http.ResponseWriter, r *http.Request) {
	userID := a.userID(r)
	sessionID := uuid.NewString()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	a.logActivity(ctx, userID, "chat_session_started", map[string]string{"session_id": sessionID})

	writeJSON(w, http.StatusCreated, map[string]string{"session_id": sessionID})
}

func (a *API) PostChatMessage(w http.ResponseWriter, r *http.Request) {
	userID := a.userID(r)

	var req chatRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	analysis := a.Sentiment.Analyze(req.Message)
	emotions := make(map[string]float64, len(analysis.Emotions))
	for _, emotion := range analysis.Emotions {
		emotions[emotion] = 0.5
	}
	topics := insights.ExtractTopics(req.Message)

	snapshot := a.State.ProcessMessage(ctx, userID, req.SessionID, req.Message, &analysis.Score, emotions, topics)
	assessment := a.Escalation.Assess(req.Message, analysis, snapshot)

	var response string
	var view *escalationView
	var resources *escalation.Resources

	if assessment.Level >= escalation.LevelSevere {
		response, view, resources = a.handleCrisis(ctx, userID, req.SessionID, assessment, snapshot)
	} else {
		response = a.generateReply(ctx, userID, req.Message, analysis, snapshot)
	}

	a.State.AddAssistantResponse(ctx, req.SessionID, userID, response)

	message, err := a.saveChatMessage(ctx, userID, req.SessionID, req.Message, response, analysis.Score, analysis.Label, emotions)
	if err != nil {
		a.Log.Error().Err(err).Int64("user_id", userID).Msg("failed to persist chat message")
		writeError(w, http.StatusInternalServerError, "failed to save message")
		return
	}

	a.queueDeepAnalysis(userID, message.ID, req.SessionID, req.Message)
	writeJSON(w, http.StatusOK, chatResponse{Message: message, Escalation: view, Resources: resources})
}

// handleCrisis records the crisis, starts a handoff, notifies downstream
// consumers, and replaces the AI reply with the escalation response.
func (a *API) handleCrisis(ctx context.Context, userID int64, sessionID string, assessment escalation.Assessment, snapshot state.Snapshot) (string, *escalationView, *escalation.Resources) {
	region := a.userRegion(ctx, userID)
	resources := a.Escalation.ResourcesFor(region)
	response := a.Escalation.Response(assessment, resources)

	topic := ""
	if len(assessment.Triggers) > 0 {
		topic = assessment.Triggers[0]
	}
	a.State.RecordCrisisEvent(ctx, userID, sessionID, assessment.Level.String(), topic)

	handoff := a.Escalation.InitiateHandoff(ctx, userID, sessionID, snapshot, assessment.Level.String())
	if handoff != nil {
		if _, err := a.Store.Pool.Exec(ctx, `
			INSERT INTO handoffs (id, user_id, session_id, urgency, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			handoff.ID, userID, sessionID, handoff.Urgency, handoff.Status, handoff.CreatedAt); err != nil {
			a.Log.Error().Err(err).Str("handoff_id", handoff.ID).Msg("failed to record handoff")
		}
	}

	triggersJSON, _ := json.Marshal(assessment.Triggers)
	var handoffID *string
	if handoff != nil {
		handoffID = &handoff.ID
	}
	if _, err := a.Store.Pool.Exec(ctx, `
		INSERT INTO crisis_events (user_id, session_id, level, triggers_json, handoff_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		userID, sessionID, int(assessment.Level), string(triggersJSON), handoffID, time.Now().UTC()); err != nil {
		a.Log.Error().Err(err).Int64("user_id", userID).Msg("failed to record crisis event")
	}

	event := events.CrisisEvent{
		UserID:    userID,
		SessionID: sessionID,
		Level:     assessment.Level.String(),
		Triggers:  assessment.Triggers,
		Timestamp: time.Now().UTC(),
	}
	if handoff != nil {
		event.HandoffID = handoff.ID
	}
	if err := a.Events.Publish(ctx, event); err != nil {
		a.Log.Error().Err(err).Int64("user_id", userID).Msg("failed to publish crisis event")
	}

	a.Hub.Broadcast(userID, map[string]any{
		"type":       "crisis.escalation",
		"session_id": sessionID,
		"level":      assessment.Level.String(),
	})

	view := &escalationView{Level: assessment.Level.String()}
	if handoff != nil {
		view.HandoffID = handoff.ID
	}
	return response, view, &resources
}

func (a *API) generateReply(ctx context.Context, userID int64, message string, analysis sentiment.Analysis, snapshot state.Snapshot) string {
	conversation := llm.ReplyContext{
		Summary:        snapshot.Summary,
		RecentMessages: recentLines(snapshot.RecentMessages, 6),
		Topics:         mapKeys(snapshot.Topics),
		Emotions:       analysis.Emotions,
		People:         mapKeys(snapshot.People),
	}

	reply, _, usedFallback, err := a.LLM.RespondWithFallback(ctx, userID, message, conversation)
	if err != nil || reply == "" {
		reply = a.Sentiment.Respond(analysis).Text
		usedFallback = true
	}

	profile := a.State.Profile(ctx, userID)
	result := a.Validator.Validate(reply, message, snapshot, profile.Preferences)
	if !result.Valid {
		improved := a.Validator.Improve(reply, result, message)
		a.Log.Debug().Int64("user_id", userID).Strs("issues", issueNames(result.Issues)).
			Bool("fallback", usedFallback).Msg("response rewritten by validator")
		reply = improved
	}
	return reply
}

func (a *API) saveChatMessage(ctx context.Context, userID int64, sessionID, message, response string, score float64, label string, emotions map[string]float64) (models.ChatMessage, error) {
	emotionsJSON, _ := json.Marshal(emotions)

	var saved models.ChatMessage
	err := a.Store.Pool.QueryRow(ctx, `
		INSERT INTO chat_messages (user_id, session_id, message, response, sentiment_score, sentiment_label, emotions_json, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, user_id, session_id, message, response, sentiment_score, sentiment_label, emotions_json, metadata_json, created_at`,
		userID, sessionID, message, response, score, label, string(emotionsJSON), time.Now().UTC()).Scan(
		&saved.ID, &saved.UserID, &saved.SessionID, &saved.Message, &saved.Response,
		&saved.SentimentScore, &saved.SentimentLabel, &saved.EmotionsJSON, &saved.MetadataJSON, &saved.CreatedAt)
	return saved, err
}

// queueDeepAnalysis hands the enqueue off to the session-keyed pool so the
// request returns without waiting on Redis, while messages from the same
// session keep their order.
func (a *API) queueDeepAnalysis(userID, messageID int64, sessionID, content string) {
	a.Pool.Dispatch(sessionID, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := a.Queue.Enqueue(ctx, llm.QueueMessage{
			UserID:    userID,
			MessageID: messageID,
			SessionID: sessionID,
			Content:   content,
			Feature:   "analyze",
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			a.Log.Error().Err(err).Int64("message_id", messageID).Msg("failed to enqueue analysis")
			return
		}
		a.WorkerScheduler.EnsureUser(context.Background(), userID)
	})
}

func (a *API) ChatHistory(w http.ResponseWriter, r *http.Request) {
	userID := a.userID(r)
	page, limit := parsePagination(r)
	sessionID := r.URL.Query().Get("session_id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	query := `
		SELECT id, user_id, session_id, message, response, sentiment_score, sentiment_label, emotions_json, metadata_json, created_at
		FROM chat_messages
		WHERE user_id=$1`
	args := []any{userID}
	if sessionID != "" {
		query += ` AND session_id=$2`
		args = append(args, sessionID)
	}
	query += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, (page-1)*limit)

	rows, err := a.Store.Pool.Query(ctx, query, args...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load chat history")
		return
	}
	defer rows.Close()

	messages := make([]models.ChatMessage, 0, limit)
	for rows.Next() {
		var msg models.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.UserID, &msg.SessionID, &msg.Message, &msg.Response,
			&msg.SentimentScore, &msg.SentimentLabel, &msg.EmotionsJSON, &msg.MetadataJSON, &msg.CreatedAt); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load chat history")
			return
		}
		messages = append(messages, msg)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"messages": messages,
		"page":     page,
		"limit":    limit,
	})
}

func recentLines(messages []state.Message, n int) []string {
	if len(messages) > n {
		messages = messages[len(messages)-n:]
	}
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		lines = append(lines, msg.Role+": "+msg.Content)
	}
	return lines
}

func mapKeys(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	return keys
}

func issueNames(issues []validator.Issue) []string {
	names := make([]string, 0, len(issues))
	for _, issue := range issues {
		names = append(names, string(issue))
	}
	return names
}
