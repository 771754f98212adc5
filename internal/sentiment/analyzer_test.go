package sentiment

import "testing"

func TestAnalyzeNegative(t *testing.T) {
	analyzer := NewAnalyzer()
	result := analyzer.Analyze("I'm so sad and lonely, everything feels terrible")
	if result.Label != LabelNegative {
		t.Fatalf("expected negative, got %s", result.Label)
	}
	if result.Score > 0.4 {
		t.Fatalf("expected low score, got %f", result.Score)
	}
	if !contains(result.Emotions, "sadness") {
		t.Fatalf("expected sadness in %v", result.Emotions)
	}
}

func TestAnalyzePositive(t *testing.T) {
	analyzer := NewAnalyzer()
	result := analyzer.Analyze("I'm feeling great today, really happy and grateful")
	if result.Label != LabelPositive {
		t.Fatalf("expected positive, got %s", result.Label)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	analyzer := NewAnalyzer()
	result := analyzer.Analyze("   ")
	if result.Label != LabelNeutral || result.Score != 0.5 {
		t.Fatalf("expected neutral 0.5, got %s %f", result.Label, result.Score)
	}
}

func TestHighlyNegativeUpgrade(t *testing.T) {
	analyzer := NewAnalyzer()
	result := analyzer.Analyze("I feel hopeless and worthless, no one cares")
	if result.Label != LabelHighlyNegative {
		t.Fatalf("expected highly_negative, got %s", result.Label)
	}
}

func TestShortDistressSignal(t *testing.T) {
	analyzer := NewAnalyzer()
	result := analyzer.Analyze("i hate everything")
	if result.Label != LabelHighlyNegative {
		t.Fatalf("expected highly_negative for short distress message, got %s", result.Label)
	}
}

func TestRelationshipContext(t *testing.T) {
	analyzer := NewAnalyzer()
	result := analyzer.Analyze("my mom scolded me and I'm very angry at her")
	if result.Context != "relationship" {
		t.Fatalf("expected relationship context, got %q", result.Context)
	}
	if !contains(result.Emotions, "anger") {
		t.Fatalf("expected anger in %v", result.Emotions)
	}
}

func TestRespondCrisisLine(t *testing.T) {
	analyzer := NewAnalyzer()
	result := analyzer.Analyze("I can't take it anymore, I feel worthless and hopeless")
	reply := analyzer.Respond(result)
	if reply.AdditionalInfo == "" {
		t.Fatal("expected crisis resource line for highly_negative reply")
	}
}

func TestRespondVariety(t *testing.T) {
	analyzer := NewAnalyzer()
	seen := map[string]bool{}
	for i := 0; i < 4; i++ {
		result := analyzer.Analyze("I feel sad today")
		reply := analyzer.Respond(result)
		if reply.Text == "" {
			t.Fatal("empty reply")
		}
		seen[reply.Text] = true
	}
	if len(seen) < 2 {
		t.Fatal("expected varied replies for repeated input")
	}
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
