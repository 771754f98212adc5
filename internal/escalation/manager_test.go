package escalation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"mindwell/internal/sentiment"
	"mindwell/internal/state"
)

func newTestManager() *Manager {
	return NewManager("US", "", zerolog.Nop())
}

func neutral() sentiment.Analysis {
	return sentiment.Analysis{Label: sentiment.LabelNeutral, Score: 0.5}
}

func TestAssessCrisisLanguage(t *testing.T) {
	m := newTestManager()
	result := m.Assess("I want to kill myself", neutral(), state.Snapshot{})
	if !result.CrisisDetected {
		t.Fatal("expected crisis detection")
	}
	if result.Level < LevelSevere {
		t.Fatalf("expected at least severe, got %s", result.Level)
	}
	if !result.Required {
		t.Fatal("expected escalation required")
	}
}

func TestAssessPlanIsEmergency(t *testing.T) {
	m := newTestManager()
	result := m.Assess("I'm planning to end it, I bought pills yesterday", neutral(), state.Snapshot{})
	if result.Level != LevelEmergency {
		t.Fatalf("expected emergency, got %s", result.Level)
	}
	if result.RecommendedAction != "crisis_protocol" {
		t.Fatalf("unexpected action %s", result.RecommendedAction)
	}
}

func TestAssessConcerningPatterns(t *testing.T) {
	m := newTestManager()
	result := m.Assess("I feel so alone and empty, like a burden to everyone", neutral(), state.Snapshot{})
	if result.CrisisDetected {
		t.Fatal("should not be a direct crisis")
	}
	if result.Level != LevelModerate {
		t.Fatalf("expected moderate for 3+ concerning matches, got %s", result.Level)
	}
}

func TestAssessLowSentimentFloor(t *testing.T) {
	m := newTestManager()
	analysis := sentiment.Analysis{Label: sentiment.LabelNegative, Score: 0.1}
	result := m.Assess("everything went wrong today", analysis, state.Snapshot{})
	if result.Level < LevelSevere {
		t.Fatalf("expected severe floor for very low sentiment, got %s", result.Level)
	}
	if !result.Required {
		t.Fatal("expected escalation required")
	}
}

func TestAssessModerateSentimentStaysMild(t *testing.T) {
	m := newTestManager()
	analysis := sentiment.Analysis{Label: sentiment.LabelNegative, Score: 0.25}
	result := m.Assess("rough day", analysis, state.Snapshot{})
	if result.Level != LevelMild {
		t.Fatalf("expected mild for score in [0.2,0.3), got %s", result.Level)
	}
}

func TestAssessContextRisk(t *testing.T) {
	m := newTestManager()
	result := m.Assess("fine", neutral(), state.Snapshot{EscalationRisk: 0.8})
	if result.Level < LevelSevere {
		t.Fatalf("expected severe for high context risk, got %s", result.Level)
	}
}

func TestAssessRepeatedConcern(t *testing.T) {
	m := newTestManager()
	result := m.Assess("it happened again", neutral(), state.Snapshot{RepeatedConcern: true})
	if result.Level < LevelSevere {
		t.Fatalf("expected severe for repeated concerning messages, got %s", result.Level)
	}
	if !containsTrigger(result.Triggers, "repeated concerning messages") {
		t.Fatalf("missing trigger: %v", result.Triggers)
	}
}

func TestAssessIntenseEmotion(t *testing.T) {
	m := newTestManager()
	analysis := sentiment.Analysis{
		Label:    sentiment.LabelHighlyNegative,
		Score:    0.35,
		Emotions: []string{"sadness"},
	}
	result := m.Assess("I just feel crushed", analysis, state.Snapshot{})
	if result.Level < LevelSevere {
		t.Fatalf("expected severe for intense sadness, got %s", result.Level)
	}
}

func containsTrigger(triggers []string, want string) bool {
	for _, trigger := range triggers {
		if trigger == want {
			return true
		}
	}
	return false
}

func TestAssessNeutralMessage(t *testing.T) {
	m := newTestManager()
	result := m.Assess("I went for a walk this morning", neutral(), state.Snapshot{})
	if result.Level != LevelNone {
		t.Fatalf("expected none, got %s", result.Level)
	}
	if result.Required {
		t.Fatal("no escalation expected")
	}
}

func TestSevereResponseIncludesHotline(t *testing.T) {
	m := newTestManager()
	assessment := Assessment{Level: LevelSevere}
	resources := m.ResourcesFor("US")
	response := m.Response(assessment, resources)
	if !strings.Contains(response, "988") {
		t.Fatalf("expected hotline number in response: %q", response)
	}
}

func TestResourcesFallback(t *testing.T) {
	m := newTestManager()
	resources := m.ResourcesFor("ZZ")
	if resources.Name != "Find A Helpline" {
		t.Fatalf("expected global fallback, got %s", resources.Name)
	}
	if m.ResourcesFor("").Name != regionResources["US"].Name {
		t.Fatal("expected default region when empty")
	}
}

func TestHandoffLifecycle(t *testing.T) {
	m := newTestManager()
	handoff := m.InitiateHandoff(context.Background(), 42, "session-1", state.Snapshot{}, "urgent")
	if handoff.Status != "pending" {
		t.Fatalf("expected pending without callback, got %s", handoff.Status)
	}

	got, ok := m.HandoffStatus(handoff.ID)
	if !ok || got.UserID != 42 {
		t.Fatal("handoff not tracked")
	}

	completed, err := m.CompleteHandoff(handoff.ID, "resolved", "user connected to counselor")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != "completed" || completed.Outcome != "resolved" {
		t.Fatalf("unexpected completion state: %+v", completed)
	}

	history := m.History(42)
	if len(history) != 1 || history[0].Outcome != "resolved" {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func TestHandoffWebhookSettlesStatusBeforeTracking(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	m := NewManager("US", server.URL, zerolog.Nop())
	handoff := m.InitiateHandoff(context.Background(), 7, "session-9", state.Snapshot{}, "urgent")
	if handoff.Status != "requested" {
		t.Fatalf("expected requested after webhook, got %s", handoff.Status)
	}
	got, ok := m.HandoffStatus(handoff.ID)
	if !ok || got.Status != "requested" {
		t.Fatalf("tracked handoff should never be observed mid-update, got %+v", got)
	}
}

func TestHandoffWebhookFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	m := NewManager("US", server.URL, zerolog.Nop())
	handoff := m.InitiateHandoff(context.Background(), 7, "session-9", state.Snapshot{}, "urgent")
	if handoff.Status != "failed" {
		t.Fatalf("expected failed after webhook error, got %s", handoff.Status)
	}
}

func TestCompleteUnknownHandoff(t *testing.T) {
	m := newTestManager()
	if _, err := m.CompleteHandoff("missing", "resolved", ""); err == nil {
		t.Fatal("expected error for unknown handoff")
	}
}
