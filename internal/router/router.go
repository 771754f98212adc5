package router

import (
	"net/http"
	"strconv"
	"strings"

	"mindwell/internal/auth"
	"mindwell/internal/handlers"
	"mindwell/internal/middleware"
	"mindwell/internal/realtime"
)

type Router struct {
	api     *handlers.API
	auth    *auth.Service
	limiter *middleware.RateLimiter
	origin  string
	hub     *realtime.Hub
}

func New(api *handlers.API, authService *auth.Service, limiter *middleware.RateLimiter, origin string, hub *realtime.Hub) *Router {
	return &Router{api: api, auth: authService, limiter: limiter, origin: origin, hub: hub}
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if middleware.HandleCORS(w, r, rt.origin) {
		return
	}
	middleware.SecurityHeaders(w)

	path := strings.TrimSuffix(r.URL.Path, "/")
	if path == "" {
		path = "/"
	}

	if requiresAuth(path) {
		user, err := middleware.Authenticate(r, rt.auth)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("{\"error\":\"unauthorized\"}"))
			return
		}
		if rt.limiter != nil {
			key := "user:" + strconv.FormatInt(user.ID, 10)
			if !rt.limiter.Allow(key) {
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte("{\"error\":\"rate limit exceeded\"}"))
				return
			}
		}
		if err := middleware.ValidateCSRF(r, user); err != nil {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("{\"error\":\"invalid csrf token\"}"))
			return
		}
		r = r.WithContext(auth.WithUser(r.Context(), user))
	} else if rt.limiter != nil {
		key := middleware.ClientKey(r)
		if !rt.limiter.Allow(key) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte("{\"error\":\"rate limit exceeded\"}"))
			return
		}
	}

	switch {
	case path == "/api/v1/auth/register":
		if r.Method == http.MethodPost {
			rt.api.Register(w, r)
			return
		}
	case path == "/api/v1/auth/login":
		if r.Method == http.MethodPost {
			rt.api.Login(w, r)
			return
		}
	case path == "/api/v1/auth/me":
		switch r.Method {
		case http.MethodGet:
			rt.api.Me(w, r)
			return
		case http.MethodPatch:
			rt.api.UpdatePreferences(w, r)
			return
		}
	case path == "/api/v1/journal":
		switch r.Method {
		case http.MethodGet:
			rt.api.ListJournalEntries(w, r)
			return
		case http.MethodPost:
			rt.api.CreateJournalEntry(w, r)
			return
		}
	case strings.HasPrefix(path, "/api/v1/journal/"):
		idPart := strings.TrimPrefix(path, "/api/v1/journal/")
		if id, ok := handlers.ParseID(idPart); ok {
			switch r.Method {
			case http.MethodGet:
				rt.api.GetJournalEntry(w, r, id)
				return
			case http.MethodPatch:
				rt.api.UpdateJournalEntry(w, r, id)
				return
			case http.MethodDelete:
				rt.api.DeleteJournalEntry(w, r, id)
				return
			}
		}
	case path == "/api/v1/moods":
		switch r.Method {
		case http.MethodGet:
			rt.api.ListMoodEntries(w, r)
			return
		case http.MethodPost:
			rt.api.CreateMoodEntry(w, r)
			return
		}
	case path == "/api/v1/chat/messages":
		if r.Method == http.MethodPost {
			rt.api.PostChatMessage(w, r)
			return
		}
	case path == "/api/v1/chat/history":
		if r.Method == http.MethodGet {
			rt.api.ChatHistory(w, r)
			return
		}
	case path == "/api/v1/chat/sessions":
		if r.Method == http.MethodPost {
			rt.api.CreateChatSession(w, r)
			return
		}
	case path == "/api/v1/reports/weekly":
		if r.Method == http.MethodGet {
			rt.api.WeeklyReport(w, r)
			return
		}
	case path == "/api/v1/resources":
		if r.Method == http.MethodGet {
			rt.api.CrisisResources(w, r)
			return
		}
	case path == "/api/v1/resources/qr":
		if r.Method == http.MethodGet {
			rt.api.CrisisResourcesQR(w, r)
			return
		}
	case path == "/api/v1/escalations/history":
		if r.Method == http.MethodGet {
			rt.api.EscalationHistory(w, r)
			return
		}
	case strings.HasPrefix(path, "/api/v1/escalations/"):
		segments := strings.Split(strings.TrimPrefix(path, "/api/v1/escalations/"), "/")
		if len(segments) == 2 && segments[1] == "complete" && segments[0] != "" {
			if r.Method == http.MethodPost {
				rt.api.CompleteEscalation(w, r, segments[0])
				return
			}
		}
	case path == "/api/v1/llm/providers":
		switch r.Method {
		case http.MethodGet:
			rt.api.ListLLMProviders(w, r)
			return
		case http.MethodPost:
			rt.api.CreateLLMProvider(w, r)
			return
		}
	case strings.HasPrefix(path, "/api/v1/llm/providers/"):
		segments := strings.Split(strings.TrimPrefix(path, "/api/v1/llm/providers/"), "/")
		if len(segments) == 2 && segments[1] == "health" {
			if r.Method == http.MethodPost {
				if id, ok := handlers.ParseID(segments[0]); ok {
					rt.api.TestLLMProvider(w, r, id)
					return
				}
			}
		}
		if len(segments) == 1 {
			if id, ok := handlers.ParseID(segments[0]); ok {
				switch r.Method {
				case http.MethodPatch:
					rt.api.UpdateLLMProvider(w, r, id)
					return
				case http.MethodDelete:
					rt.api.DeleteLLMProvider(w, r, id)
					return
				}
			}
		}
	case path == "/api/v1/activity":
		if r.Method == http.MethodGet {
			rt.api.ListActivity(w, r)
			return
		}
	case path == "/api/v1/ws":
		if r.Method == http.MethodGet && rt.hub != nil {
			user, err := middleware.Authenticate(r, rt.auth)
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte("{\"error\":\"unauthorized\"}"))
				return
			}
			realtime.ServeWS(w, r, rt.hub, user.ID)
			return
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte("{\"error\":\"not found\"}"))
}

func requiresAuth(path string) bool {
	switch path {
	case "/api/v1/auth/login", "/api/v1/auth/register":
		return false
	default:
		return strings.HasPrefix(path, "/api/v1/")
	}
}
