package llm

import (
	"mindwell/internal/insights"
	"mindwell/internal/sentiment"
)

// fallbackAnalysis produces a keyword-based result when no provider is
// reachable. Confidence is kept low so downstream consumers can tell it
// apart from a model verdict.
func fallbackAnalysis(analyzer *sentiment.Analyzer, message string) *AnalysisResult {
	analysis := analyzer.Analyze(message)

	emotions := map[string]float64{}
	for _, emotion := range analysis.Emotions {
		emotions[emotion] = 0.5
	}

	risk := 0.0
	switch analysis.Label {
	case sentiment.LabelHighlyNegative:
		risk = 0.8
	case sentiment.LabelNegative:
		risk = 0.3
	}

	topics := insights.ExtractTopics(message)
	if topics == nil {
		topics = []string{}
	}

	return &AnalysisResult{
		Sentiment:      analysis.Label,
		SentimentScore: analysis.Score,
		Emotions:       emotions,
		Topics:         topics,
		Risk:           risk,
		Confidence:     0.3,
	}
}
