package insights

import (
	"fmt"
	"strings"
	"time"
)

type MoodTrend struct {
	Trend       string  `json:"trend"`
	Average     float64 `json:"average"`
	Description string  `json:"description"`
}

type Recommendation struct {
	Type   string `json:"type"`
	Text   string `json:"text"`
	Action string `json:"action"`
}

type WeeklyReport struct {
	UserID          int64            `json:"user_id"`
	GeneratedAt     time.Time        `json:"generated_at"`
	PeriodStart     string           `json:"period_start"`
	PeriodEnd       string           `json:"period_end"`
	Summary         string           `json:"summary"`
	MoodTrend       MoodTrend        `json:"mood_trend"`
	TopTopics       []TopicCount     `json:"top_topics"`
	KeyInsights     []Insight        `json:"key_insights"`
	Recommendations []Recommendation `json:"recommendations"`
}

// WeeklyReport builds the seven-day report for a user from their history.
func (a *Analyzer) WeeklyReport(userID int64, history []Entry) WeeklyReport {
	analysis := a.Analyze(history, 7)
	now := a.now()

	report := WeeklyReport{
		UserID:      userID,
		GeneratedAt: now,
		PeriodStart: now.AddDate(0, 0, -7).Format("2006-01-02"),
		PeriodEnd:   now.Format("2006-01-02"),
		Summary:     buildSummary(analysis),
		MoodTrend:   formatMoodTrend(analysis.Trend),
	}

	if len(analysis.Topics) > 5 {
		report.TopTopics = analysis.Topics[:5]
	} else {
		report.TopTopics = analysis.Topics
	}
	if len(analysis.Insights) > 5 {
		report.KeyInsights = analysis.Insights[:5]
	} else {
		report.KeyInsights = analysis.Insights
	}
	report.Recommendations = buildRecommendations(analysis)

	return report
}

func buildSummary(analysis Analysis) string {
	if analysis.MessageCount == 0 {
		return "No conversation data available for this period."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Based on %d messages over the past week, ", analysis.MessageCount)

	if len(analysis.Topics) > 0 {
		fmt.Fprintf(&sb, "you primarily discussed %s. ", joinNames(topicNames(analysis.Topics, 3)))
	}
	if len(analysis.Emotions) > 0 {
		fmt.Fprintf(&sb, "You frequently expressed feelings of %s. ", joinNames(emotionNames(analysis.Emotions, 3)))
	}

	switch analysis.Trend.Trend {
	case trendImproving:
		sb.WriteString("Your overall mood appears to be improving.")
	case trendDeclining:
		sb.WriteString("Your overall mood has been declining.")
	case trendConsistentlyPositive:
		sb.WriteString("You've maintained a consistently positive outlook.")
	case trendConsistentlyNegative:
		sb.WriteString("You've expressed primarily negative feelings.")
	case trendFluctuating:
		sb.WriteString("Your mood has fluctuated considerably.")
	}

	return strings.TrimSpace(sb.String())
}

func formatMoodTrend(trend SentimentTrend) MoodTrend {
	out := MoodTrend{Trend: trend.Trend, Average: trend.Average}
	if out.Trend == "" {
		out.Trend = "undetermined"
	}
	switch out.Trend {
	case trendImproving:
		out.Description = "Your mood has been gradually improving"
	case trendDeclining:
		out.Description = "Your mood has been declining recently"
	case trendConsistentlyPositive:
		out.Description = "You've maintained a positive outlook"
	case trendConsistentlyNegative:
		out.Description = "You've experienced persistent negative feelings"
	case trendFluctuating:
		out.Description = "Your mood has had significant ups and downs"
	default:
		out.Description = "Not enough data to determine mood trend"
	}
	return out
}

func buildRecommendations(analysis Analysis) []Recommendation {
	var recs []Recommendation

	trend := analysis.Trend.Trend
	if trend == trendDeclining || trend == trendConsistentlyNegative {
		recs = append(recs,
			Recommendation{
				Type:   "mood_improvement",
				Text:   "Consider practicing daily gratitude exercises or mindfulness meditation to improve mood.",
				Action: "Try listing three things you're grateful for each morning for one week.",
			},
			Recommendation{
				Type:   "professional_support",
				Text:   "Your consistent mood patterns might benefit from professional support.",
				Action: "Would you like information about connecting with a therapist?",
			})
	}

	if topicCount(analysis.Topics, "anxiety") >= 2 {
		recs = append(recs, Recommendation{
			Type:   "anxiety_management",
			Text:   "You've mentioned anxiety frequently. Deep breathing exercises can help manage anxiety symptoms.",
			Action: "Try the 4-7-8 breathing technique when feeling anxious: inhale for 4 seconds, hold for 7, exhale for 8.",
		})
	}

	if len(analysis.Patterns.LateNight) > 0 {
		recs = append(recs, Recommendation{
			Type:   "sleep_hygiene",
			Text:   "Your late-night activity suggests possible sleep difficulties.",
			Action: "Consider establishing a regular sleep schedule and avoiding screens an hour before bedtime.",
		})
	}

	if topicCount(analysis.Topics, "social") > 0 {
		recs = append(recs, Recommendation{
			Type:   "social_connection",
			Text:   "Increasing social connections can significantly improve mood and wellbeing.",
			Action: "Consider reaching out to one friend or family member this week for a brief check-in.",
		})
	}

	if len(recs) == 0 {
		recs = append(recs, Recommendation{
			Type:   "general_wellbeing",
			Text:   "Regular physical activity is one of the most effective ways to maintain mental wellbeing.",
			Action: "Try incorporating a 10-minute walk into your daily routine.",
		})
	}

	return recs
}

func topicNames(topics []TopicCount, limit int) []string {
	var names []string
	for i, t := range topics {
		if i == limit {
			break
		}
		names = append(names, t.Topic)
	}
	return names
}

func emotionNames(emotions []EmotionCount, limit int) []string {
	var names []string
	for i, e := range emotions {
		if i == limit {
			break
		}
		names = append(names, e.Emotion)
	}
	return names
}

func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}
