package validator

import (
	"strings"
	"testing"

	"mindwell/internal/state"
)

func TestValidateAcceptsGoodResponse(t *testing.T) {
	v := New()
	user := "I've been feeling really anxious about my job lately"
	reply := "That sounds really stressful. Feeling anxious about your job can weigh on everything else. What part of work has been hardest for you lately?"

	result := v.Validate(reply, user, state.Snapshot{}, nil)
	if !result.Valid {
		t.Fatalf("expected valid, got issues %v", result.Issues)
	}
	if result.QualityScore < 0.9 {
		t.Fatalf("expected high quality score, got %v", result.QualityScore)
	}
}

func TestValidateFlagsShortResponse(t *testing.T) {
	v := New()
	result := v.Validate("Okay.", "I have been struggling with sleep all week", state.Snapshot{}, nil)
	if !hasIssue(result.Issues, IssueIncomplete) {
		t.Fatalf("expected incomplete issue, got %v", result.Issues)
	}
	if result.Valid {
		t.Fatal("expected invalid result")
	}
}

func TestValidateFlagsDismissive(t *testing.T) {
	v := New()
	reply := "You should just get over it, other people have it worse than you do anyway."
	result := v.Validate(reply, "I feel hopeless about everything in my life", state.Snapshot{}, nil)
	if !hasIssue(result.Issues, IssueDismissive) {
		t.Fatalf("expected dismissive issue, got %v", result.Issues)
	}

	improved := v.Improve(reply, result, "I feel hopeless about everything in my life")
	if dismissiveRegex.MatchString(improved) {
		t.Fatalf("improved reply still dismissive: %q", improved)
	}
}

func TestValidateFlagsRepetition(t *testing.T) {
	v := New()
	prev := "It sounds like work has been weighing on you. What would help you feel more in control this week?"
	snapshot := state.Snapshot{RecentMessages: []state.Message{{Role: "assistant", Content: prev}}}
	result := v.Validate(prev, "work is still stressful and I cannot focus on anything", snapshot, nil)
	if !hasIssue(result.Issues, IssueRepetitive) {
		t.Fatalf("expected repetitive issue, got %v", result.Issues)
	}
}

func TestValidateFlagsMissingEmpathy(t *testing.T) {
	v := New()
	reply := "There are many techniques available. Cognitive strategies work well for most situations encountered daily."
	result := v.Validate(reply, "my father passed away last month and I am devastated", state.Snapshot{}, nil)
	if !hasIssue(result.Issues, IssueInsensitive) {
		t.Fatalf("expected insensitive issue, got %v", result.Issues)
	}
}

func TestValidateHonorsTonePreference(t *testing.T) {
	v := New()
	reply := "Yeah that sounds rough, gonna be honest, it seems like a lot to carry around every day."
	prefs := map[string]string{"communication_style": "formal"}
	result := v.Validate(reply, "I have been feeling overwhelmed by my responsibilities lately", state.Snapshot{}, prefs)
	if !hasIssue(result.Issues, IssueInsensitive) {
		t.Fatalf("expected tone issue, got %v", result.Issues)
	}
}

func TestImproveAddsEmpathyOpener(t *testing.T) {
	v := New()
	reply := "There are several breathing exercises that reduce physical symptoms in most documented cases quickly."
	user := "everything has been so hard and difficult recently"
	result := v.Validate(reply, user, state.Snapshot{}, nil)
	if result.Valid {
		t.Skip("response passed validation, nothing to improve")
	}
	improved := v.Improve(reply, result, user)
	if !empathyRegex.MatchString(improved) {
		t.Fatalf("expected empathetic opener, got %q", improved)
	}
}

func TestImproveTrimsVerbose(t *testing.T) {
	v := New()
	sentence := "This is a fairly long sentence that keeps adding words to pad out the response body. "
	reply := strings.Repeat(sentence, 8)
	result := Result{Valid: false, Issues: []Issue{IssueVerbose, IssueInsensitive, IssueIrrelevant, IssueGeneric}}
	improved := v.Improve(reply, result, "I feel sad about things")
	if len(improved) >= len(reply) {
		t.Fatalf("expected trimmed reply, got %d chars vs %d", len(improved), len(reply))
	}
}

func TestSimilarity(t *testing.T) {
	a := "it sounds like you are having a hard time with work"
	if Similarity(a, a) != 1 {
		t.Fatal("identical strings should score 1")
	}
	if s := Similarity(a, "the weather is nice and sunny today outside"); s > 0.2 {
		t.Fatalf("unrelated strings scored %v", s)
	}
	if s := Similarity(a, "it sounds like you are having a hard time with school"); s < 0.6 {
		t.Fatalf("near-identical strings scored %v", s)
	}
}
