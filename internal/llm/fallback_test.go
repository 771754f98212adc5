package llm

import (
	"testing"

	"mindwell/internal/sentiment"
)

func TestFallbackAnalysisNegative(t *testing.T) {
	analyzer := sentiment.NewAnalyzer()
	result := fallbackAnalysis(analyzer, "I feel hopeless and worthless, I want to end it all")
	if result.Sentiment != sentiment.LabelHighlyNegative {
		t.Fatalf("sentiment = %q", result.Sentiment)
	}
	if result.Risk < 0.7 {
		t.Fatalf("risk = %v", result.Risk)
	}
	if result.Confidence != 0.3 {
		t.Fatalf("confidence = %v", result.Confidence)
	}
}

func TestFallbackAnalysisPositive(t *testing.T) {
	analyzer := sentiment.NewAnalyzer()
	result := fallbackAnalysis(analyzer, "I had a great day and feel happy about my progress")
	if result.Sentiment != sentiment.LabelPositive {
		t.Fatalf("sentiment = %q", result.Sentiment)
	}
	if result.Risk != 0 {
		t.Fatalf("risk = %v", result.Risk)
	}
	if result.Topics == nil {
		t.Fatal("topics should not be nil")
	}
}

func TestUsageCost(t *testing.T) {
	record := UsageRecord{InputTokens: 500, OutputTokens: 1000}
	cost := record.TotalCost(0.01, 0.02)
	if cost != 0.025 {
		t.Fatalf("cost = %v", cost)
	}
}
