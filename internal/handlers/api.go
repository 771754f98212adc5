package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"mindwell/internal/auth"
	"mindwell/internal/db"
	"mindwell/internal/escalation"
	"mindwell/internal/events"
	"mindwell/internal/insights"
	"mindwell/internal/llm"
	"mindwell/internal/realtime"
	"mindwell/internal/sentiment"
	"mindwell/internal/state"
	"mindwell/internal/validator"
	"mindwell/internal/workers"
)

type API struct {
	Store           *db.Store
	Auth            *auth.Service
	Hub             *realtime.Hub
	State           *state.Manager
	Sentiment       *sentiment.Analyzer
	Escalation      *escalation.Manager
	Validator       *validator.Validator
	Insights        *insights.Analyzer
	LLM             *llm.Service
	LLMStore        *llm.Store
	Queue           *llm.Queue
	WorkerScheduler *llm.WorkerScheduler
	HealthScheduler *llm.HealthScheduler
	Pool            *workers.Pool
	Events          *events.Publisher
	Log             zerolog.Logger
	DefaultRegion   string
}

func (a *API) userID(r *http.Request) int64 {
	if user, ok := auth.UserFromContext(r.Context()); ok {
		return user.ID
	}
	return 0
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func readJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func ParseID(pathPart string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(pathPart), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parsePagination(r *http.Request) (int, int) {
	page := 1
	limit := 20
	if value := r.URL.Query().Get("page"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if value := r.URL.Query().Get("limit"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	return page, limit
}
