package insights

import (
	"strings"
	"testing"
	"time"
)

func fixedAnalyzer(now time.Time) *Analyzer {
	return &Analyzer{now: func() time.Time { return now }}
}

func f(v float64) *float64 { return &v }

func TestExtractTopics(t *testing.T) {
	topics := ExtractTopics("my boss keeps piling on work and I cannot sleep at night")
	want := map[string]bool{"work": true, "sleep": true}
	if len(topics) != 2 {
		t.Fatalf("got topics %v", topics)
	}
	for _, topic := range topics {
		if !want[topic] {
			t.Fatalf("unexpected topic %q", topic)
		}
	}
}

func TestAnalyzeCountsTopicsAndEmotions(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	a := fixedAnalyzer(now)

	history := []Entry{
		{Message: "my job is stressing me out", Timestamp: now.Add(-48 * time.Hour), Sentiment: f(0.3), Emotions: map[string]float64{"anxiety": 0.8}},
		{Message: "work was awful again today", Timestamp: now.Add(-24 * time.Hour), Sentiment: f(0.2), Emotions: map[string]float64{"anxiety": 0.7}},
		{Message: "my boss yelled at me", Timestamp: now.Add(-2 * time.Hour), Sentiment: f(0.1), Emotions: map[string]float64{"sadness": 0.6}},
	}

	result := a.Analyze(history, 7)
	if result.MessageCount != 3 {
		t.Fatalf("message count = %d", result.MessageCount)
	}
	if len(result.Topics) == 0 || result.Topics[0].Topic != "work" || result.Topics[0].Count != 3 {
		t.Fatalf("topics = %v", result.Topics)
	}
	if len(result.Emotions) == 0 || result.Emotions[0].Emotion != "anxiety" {
		t.Fatalf("emotions = %v", result.Emotions)
	}
}

func TestAnalyzeIgnoresOldEntries(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	a := fixedAnalyzer(now)
	history := []Entry{{Message: "old message about work", Timestamp: now.AddDate(0, 0, -30)}}

	result := a.Analyze(history, 7)
	if result.MessageCount != 0 {
		t.Fatalf("expected no messages in window, got %d", result.MessageCount)
	}
	if result.Trend.Trend != trendInsufficient {
		t.Fatalf("trend = %q", result.Trend.Trend)
	}
}

func TestCalculateTrend(t *testing.T) {
	cases := []struct {
		name   string
		scores []float64
		want   string
	}{
		{"consistent positive", []float64{0.8, 0.82, 0.78, 0.81}, trendConsistentlyPositive},
		{"consistent negative", []float64{0.2, 0.22, 0.18, 0.21}, trendConsistentlyNegative},
		{"improving", []float64{0.1, 0.3, 0.5, 0.7, 0.9}, trendImproving},
		{"declining", []float64{0.9, 0.7, 0.5, 0.3, 0.1}, trendDeclining},
		{"fluctuating", []float64{0.2, 0.8, 0.2, 0.8, 0.2, 0.8}, trendFluctuating},
		{"insufficient", []float64{0.5}, trendInsufficient},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := calculateTrend(tc.scores)
			if got.Trend != tc.want {
				t.Fatalf("trend = %q, want %q", got.Trend, tc.want)
			}
		})
	}
}

func TestTrendRecentShift(t *testing.T) {
	got := calculateTrend([]float64{0.5, 0.52, 0.48, 0.51, 0.95})
	if !got.RecentShift {
		t.Fatal("expected recent shift to be detected")
	}
}

func TestIdentifyPatterns(t *testing.T) {
	now := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)
	history := []Entry{
		{Message: "why do I feel like this?", Timestamp: now.Add(-40 * time.Hour), Label: "negative"},
		{Message: "Why do I feel like this?", Timestamp: now.Add(-1 * time.Hour), Label: "negative"},
		{Message: "still awake thinking", Timestamp: now, Label: "negative"},
	}

	patterns := identifyPatterns(history)
	if len(patterns.RepeatedQuestions) != 1 {
		t.Fatalf("repeated questions = %v", patterns.RepeatedQuestions)
	}
	if len(patterns.ResponseGaps) != 1 {
		t.Fatalf("response gaps = %v", patterns.ResponseGaps)
	}
	if len(patterns.LateNight) != 2 {
		t.Fatalf("late night = %v", patterns.LateNight)
	}
}

func TestWeeklyReport(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	a := fixedAnalyzer(now)

	history := []Entry{
		{Message: "feeling anxious about money and bills", Timestamp: now.Add(-72 * time.Hour), Sentiment: f(0.3), Emotions: map[string]float64{"anxiety": 0.8}},
		{Message: "the anxiety will not let up", Timestamp: now.Add(-48 * time.Hour), Sentiment: f(0.25), Emotions: map[string]float64{"anxiety": 0.9}},
		{Message: "worried about debt again", Timestamp: now.Add(-24 * time.Hour), Sentiment: f(0.2), Emotions: map[string]float64{"anxiety": 0.85}},
	}

	report := a.WeeklyReport(42, history)
	if report.UserID != 42 {
		t.Fatalf("user id = %d", report.UserID)
	}
	if report.PeriodStart != "2025-03-03" || report.PeriodEnd != "2025-03-10" {
		t.Fatalf("period = %s..%s", report.PeriodStart, report.PeriodEnd)
	}
	if !strings.Contains(report.Summary, "3 messages") {
		t.Fatalf("summary = %q", report.Summary)
	}
	found := false
	for _, rec := range report.Recommendations {
		if rec.Type == "anxiety_management" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected anxiety recommendation, got %v", report.Recommendations)
	}
}

func TestWeeklyReportEmptyHistory(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	a := fixedAnalyzer(now)

	report := a.WeeklyReport(7, nil)
	if report.Summary != "No conversation data available for this period." {
		t.Fatalf("summary = %q", report.Summary)
	}
	if len(report.Recommendations) == 0 {
		t.Fatal("expected a default recommendation")
	}
	if report.MoodTrend.Trend != trendInsufficient {
		t.Fatalf("mood trend = %q", report.MoodTrend.Trend)
	}
}
