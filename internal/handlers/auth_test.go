package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"mindwell/internal/auth"
	"mindwell/internal/state"
	"mindwell/internal/validator"
)

func newPreferencesAPI() *API {
	return &API{
		State:     state.NewManager(nil, zerolog.Nop()),
		Validator: validator.New(),
		Log:       zerolog.Nop(),
	}
}

func authedRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := auth.WithUser(req.Context(), auth.User{ID: 7, Username: "sam"})
	return req.WithContext(ctx)
}

func TestUpdatePreferencesStoresProfile(t *testing.T) {
	api := newPreferencesAPI()

	req := authedRequest(http.MethodPatch, "/api/v1/auth/me", `{"preferences":{"communication_style":"formal","response_length":"short"}}`)
	rec := httptest.NewRecorder()
	api.UpdatePreferences(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Preferences map[string]string `json:"preferences"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Preferences["communication_style"] != "formal" || resp.Preferences["response_length"] != "short" {
		t.Fatalf("unexpected preferences: %v", resp.Preferences)
	}

	profile := api.State.Profile(context.Background(), 7)
	if profile.Preferences["communication_style"] != "formal" {
		t.Fatal("preferences not stored on the profile")
	}
}

func TestUpdatePreferencesRejectsEmpty(t *testing.T) {
	api := newPreferencesAPI()

	req := authedRequest(http.MethodPatch, "/api/v1/auth/me", `{"preferences":{}}`)
	rec := httptest.NewRecorder()
	api.UpdatePreferences(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rec.Code)
	}
}

func TestStoredPreferencesReachToneCheck(t *testing.T) {
	api := newPreferencesAPI()
	ctx := context.Background()

	api.State.UpdatePreferences(ctx, 7, map[string]string{"communication_style": "formal"})
	profile := api.State.Profile(ctx, 7)

	result := api.Validator.Validate(
		"That sounds stressful, but yeah, a meeting replaying in your head must be draining.",
		"I had a stressful meeting today and it keeps replaying in my head.",
		state.Snapshot{},
		profile.Preferences,
	)
	found := false
	for _, issue := range result.Issues {
		if issue == validator.IssueInsensitive {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected tone issue for informal reply, got %v", result.Issues)
	}
}
