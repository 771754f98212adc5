package insights

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Entry is one exchange from the chat history, with the stored analysis
// attached when available.
type Entry struct {
	Message   string             `json:"message"`
	Response  string             `json:"response"`
	Timestamp time.Time          `json:"timestamp"`
	Sentiment *float64           `json:"sentiment,omitempty"`
	Label     string             `json:"sentiment_label,omitempty"`
	Emotions  map[string]float64 `json:"emotions,omitempty"`
}

type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

type EmotionCount struct {
	Emotion string `json:"emotion"`
	Count   int    `json:"count"`
}

type SentimentTrend struct {
	Trend             string  `json:"trend"`
	Average           float64 `json:"average"`
	Volatility        float64 `json:"volatility"`
	RecentShift       bool    `json:"recent_shift"`
	ImprovementChance float64 `json:"improvement_chance"`
}

type ResponseGap struct {
	GapHours     float64 `json:"gap_hours"`
	LastResponse string  `json:"last_response"`
	Sentiment    string  `json:"sentiment"`
}

type LateNightMessage struct {
	Time      string `json:"time"`
	Date      string `json:"date"`
	Sentiment string `json:"sentiment"`
}

type BehaviorPatterns struct {
	RepeatedQuestions map[string]int     `json:"repeated_questions,omitempty"`
	ResponseGaps      []ResponseGap      `json:"response_gaps,omitempty"`
	LateNight         []LateNightMessage `json:"late_night_messages,omitempty"`
}

type Insight struct {
	Type     string `json:"type"`
	Priority int    `json:"priority"`
	Text     string `json:"text"`
}

type Analysis struct {
	MessageCount  int              `json:"message_count"`
	TimeframeDays int              `json:"timeframe_days"`
	AnalyzedAt    time.Time        `json:"analyzed_at"`
	Topics        []TopicCount     `json:"topics"`
	Emotions      []EmotionCount   `json:"emotions"`
	Trend         SentimentTrend   `json:"sentiment_trend"`
	Patterns      BehaviorPatterns `json:"patterns"`
	Insights      []Insight        `json:"insights"`
}

const (
	trendInsufficient         = "insufficient_data"
	trendConsistentlyPositive = "consistently_positive"
	trendConsistentlyNegative = "consistently_negative"
	trendConsistentlyNeutral  = "consistently_neutral"
	trendImproving            = "improving"
	trendDeclining            = "declining"
	trendFluctuating          = "fluctuating"
)

var topicKeywords = map[string][]string{
	"work":          {"job", "career", "boss", "coworker", "office", "workplace", "workload", "promotion", "fired"},
	"relationships": {"partner", "husband", "wife", "boyfriend", "girlfriend", "date", "relationship", "marriage", "divorce"},
	"family":        {"parent", "mother", "father", "sister", "brother", "child", "kid", "baby", "family", "son", "daughter"},
	"health":        {"health", "sick", "doctor", "hospital", "medication", "pain", "treatment", "diagnosis", "symptom"},
	"anxiety":       {"anxious", "worry", "panic", "stress", "tense", "nervous", "overwhelmed", "anxiety"},
	"depression":    {"depressed", "sad", "hopeless", "empty", "worthless", "tired", "depression", "unmotivated"},
	"sleep":         {"sleep", "insomnia", "nightmare", "tired", "exhausted", "fatigue", "rest", "bed"},
	"social":        {"friend", "social", "party", "gathering", "lonely", "alone", "isolated", "connection"},
	"finance":       {"money", "debt", "financial", "bill", "afford", "payment", "budget", "income", "expense"},
	"self_esteem":   {"confidence", "self-esteem", "worthless", "failure", "succeed", "inadequate", "proud"},
}

var topicOrder = []string{"work", "relationships", "family", "health", "anxiety", "depression", "sleep", "social", "finance", "self_esteem"}

var punctRegex = regexp.MustCompile(`[^\w\s]`)

// Analyzer derives topics, trends, and behavioral patterns from a user's
// chat history.
type Analyzer struct {
	now func() time.Time
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{now: time.Now}
}

// Analyze examines entries within the timeframe and builds a full analysis.
func (a *Analyzer) Analyze(history []Entry, timeframeDays int) Analysis {
	cutoff := a.now().AddDate(0, 0, -timeframeDays)
	recent := make([]Entry, 0, len(history))
	for _, entry := range history {
		if !entry.Timestamp.Before(cutoff) {
			recent = append(recent, entry)
		}
	}

	result := Analysis{
		MessageCount:  len(recent),
		TimeframeDays: timeframeDays,
		AnalyzedAt:    a.now(),
		Insights:      []Insight{},
	}
	if len(recent) == 0 {
		result.Trend = SentimentTrend{Trend: trendInsufficient}
		return result
	}

	topicCounts := map[string]int{}
	for _, entry := range recent {
		for _, topic := range ExtractTopics(entry.Message) {
			topicCounts[topic]++
		}
	}
	result.Topics = sortTopicCounts(topicCounts)

	emotionCounts := map[string]int{}
	for _, entry := range recent {
		name, intensity := dominantEmotion(entry.Emotions)
		if name != "" && intensity > 0.3 {
			emotionCounts[name]++
		}
	}
	result.Emotions = sortEmotionCounts(emotionCounts)

	scores := make([]float64, 0, len(recent))
	for _, entry := range recent {
		if entry.Sentiment != nil {
			scores = append(scores, *entry.Sentiment)
		}
	}
	result.Trend = calculateTrend(scores)
	result.Patterns = identifyPatterns(recent)

	result.Insights = append(result.Insights, topicInsights(result)...)
	result.Insights = append(result.Insights, emotionInsights(result)...)
	result.Insights = append(result.Insights, sentimentInsights(result)...)
	result.Insights = append(result.Insights, patternInsights(result)...)
	sort.SliceStable(result.Insights, func(i, j int) bool {
		return result.Insights[i].Priority < result.Insights[j].Priority
	})

	return result
}

// ExtractTopics returns the topic categories whose keywords appear in text.
func ExtractTopics(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, topic := range topicOrder {
		for _, keyword := range topicKeywords[topic] {
			if containsWord(lower, keyword) {
				found = append(found, topic)
				break
			}
		}
	}
	return found
}

func containsWord(text, word string) bool {
	idx := 0
	for {
		pos := strings.Index(text[idx:], word)
		if pos < 0 {
			return false
		}
		start := idx + pos
		end := start + len(word)
		beforeOK := start == 0 || !isWordChar(text[start-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func dominantEmotion(emotions map[string]float64) (string, float64) {
	best, bestVal := "", 0.0
	for name, val := range emotions {
		if val > bestVal || (val == bestVal && name < best) {
			best, bestVal = name, val
		}
	}
	return best, bestVal
}

func calculateTrend(scores []float64) SentimentTrend {
	if len(scores) < 2 {
		return SentimentTrend{Trend: trendInsufficient, Average: 0.5}
	}

	average := mean(scores)
	stdev := sampleStdev(scores, average)

	var trend string
	var slope float64
	if stdev < 0.15 {
		switch {
		case average > 0.6:
			trend = trendConsistentlyPositive
		case average < 0.4:
			trend = trendConsistentlyNegative
		default:
			trend = trendConsistentlyNeutral
		}
	} else {
		slope = regressionSlope(scores)
		switch {
		case math.Abs(slope) < 0.03:
			trend = trendFluctuating
		case slope > 0:
			trend = trendImproving
		default:
			trend = trendDeclining
		}
	}

	minScore, maxScore := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < minScore {
			minScore = s
		}
		if s > maxScore {
			maxScore = s
		}
	}
	volatility := 0.0
	if maxScore != minScore {
		volatility = stdev / (maxScore - minScore)
	}

	recentShift := false
	if len(scores) >= 3 {
		lastDiff := math.Abs(scores[len(scores)-1] - scores[len(scores)-2])
		total := 0.0
		for i := 1; i < len(scores); i++ {
			total += math.Abs(scores[i] - scores[i-1])
		}
		avgDiff := total / float64(len(scores)-1)
		if lastDiff > 2*avgDiff {
			recentShift = true
		}
	}

	return SentimentTrend{
		Trend:             trend,
		Average:           average,
		Volatility:        volatility,
		RecentShift:       recentShift,
		ImprovementChance: 0.5 + slope*5,
	}
}

func mean(scores []float64) float64 {
	total := 0.0
	for _, s := range scores {
		total += s
	}
	return total / float64(len(scores))
}

func sampleStdev(scores []float64, avg float64) float64 {
	if len(scores) < 2 {
		return 0
	}
	total := 0.0
	for _, s := range scores {
		total += (s - avg) * (s - avg)
	}
	return math.Sqrt(total / float64(len(scores)-1))
}

func regressionSlope(scores []float64) float64 {
	n := float64(len(scores))
	xMean := (n - 1) / 2
	yMean := mean(scores)
	num, den := 0.0, 0.0
	for i, score := range scores {
		dx := float64(i) - xMean
		num += dx * (score - yMean)
		den += dx * dx
	}
	if den == 0 {
		return 0
	}
	return num / den
}

func identifyPatterns(history []Entry) BehaviorPatterns {
	var patterns BehaviorPatterns

	questionCounts := map[string]int{}
	for _, entry := range history {
		trimmed := strings.TrimSpace(entry.Message)
		if strings.HasSuffix(trimmed, "?") {
			normalized := strings.TrimSpace(punctRegex.ReplaceAllString(strings.ToLower(trimmed), ""))
			questionCounts[normalized]++
		}
	}
	repeated := map[string]int{}
	for q, count := range questionCounts {
		if count > 1 {
			repeated[q] = count
		}
	}
	if len(repeated) > 0 {
		patterns.RepeatedQuestions = repeated
	}

	for i := 0; i+1 < len(history); i++ {
		gap := history[i+1].Timestamp.Sub(history[i].Timestamp).Hours()
		if gap > 12 {
			patterns.ResponseGaps = append(patterns.ResponseGaps, ResponseGap{
				GapHours:     gap,
				LastResponse: history[i].Response,
				Sentiment:    labelOrUnknown(history[i].Label),
			})
		}
	}

	for _, entry := range history {
		hour := entry.Timestamp.Hour()
		if hour >= 23 || hour <= 4 {
			patterns.LateNight = append(patterns.LateNight, LateNightMessage{
				Time:      entry.Timestamp.Format("15:04"),
				Date:      entry.Timestamp.Format("2006-01-02"),
				Sentiment: labelOrUnknown(entry.Label),
			})
		}
	}

	return patterns
}

func labelOrUnknown(label string) string {
	if label == "" {
		return "unknown"
	}
	return label
}

func topicInsights(analysis Analysis) []Insight {
	if len(analysis.Topics) == 0 {
		return nil
	}
	var insights []Insight

	top := analysis.Topics[0]
	if top.Count >= 3 {
		insights = append(insights, Insight{
			Type:     "topic_frequency",
			Priority: 1,
			Text:     fmt.Sprintf("You've discussed %s %d times in the past %d days.", top.Topic, top.Count, analysis.TimeframeDays),
		})
	}

	if len(analysis.Topics) >= 2 {
		insights = append(insights, Insight{
			Type:     "topic_combination",
			Priority: 3,
			Text: fmt.Sprintf("You frequently discuss both %s and %s, suggesting they might be connected for you.",
				analysis.Topics[0].Topic, analysis.Topics[1].Topic),
		})
	}

	for _, concern := range []string{"anxiety", "depression", "health"} {
		if count := topicCount(analysis.Topics, concern); count >= 2 {
			insights = append(insights, Insight{
				Type:     "concern_topic",
				Priority: 2,
				Text: fmt.Sprintf("Your conversations about %s appear %d times recently. Would you like to explore resources related to this?",
					concern, count),
			})
			break
		}
	}

	return insights
}

func emotionInsights(analysis Analysis) []Insight {
	if len(analysis.Emotions) == 0 {
		return nil
	}
	var insights []Insight

	dominant := analysis.Emotions[0]
	if dominant.Count >= 2 {
		insights = append(insights, Insight{
			Type:     "dominant_emotion",
			Priority: 2,
			Text:     fmt.Sprintf("The emotion of %s appears frequently in your conversations.", dominant.Emotion),
		})
	}

	if len(analysis.Emotions) >= 3 {
		insights = append(insights, Insight{
			Type:     "emotional_variety",
			Priority: 4,
			Text:     "You've expressed a healthy range of emotions in our conversations.",
		})
	} else if len(analysis.Emotions) == 1 {
		insights = append(insights, Insight{
			Type:     "emotional_fixation",
			Priority: 3,
			Text:     fmt.Sprintf("Your conversations have primarily expressed %s. It may help to explore other feelings too.", dominant.Emotion),
		})
	}

	for _, concern := range []string{"sadness", "anger", "fear"} {
		if count := emotionCount(analysis.Emotions, concern); count >= 2 {
			insights = append(insights, Insight{
				Type:     "concerning_emotion",
				Priority: 2,
				Text:     fmt.Sprintf("You've expressed %s multiple times recently. Would you like to discuss ways to manage this feeling?", concern),
			})
			break
		}
	}

	return insights
}

func sentimentInsights(analysis Analysis) []Insight {
	var insights []Insight
	switch analysis.Trend.Trend {
	case trendImproving:
		insights = append(insights, Insight{
			Type:     "sentiment_improvement",
			Priority: 1,
			Text:     "Your mood appears to be improving over our recent conversations. What positive changes have you noticed?",
		})
	case trendDeclining:
		insights = append(insights, Insight{
			Type:     "sentiment_decline",
			Priority: 1,
			Text:     "Your mood seems to have been declining in our recent conversations. Is there something specific that's been challenging?",
		})
	case trendConsistentlyNegative:
		insights = append(insights, Insight{
			Type:     "persistent_negative",
			Priority: 1,
			Text:     "You've been consistently expressing negative feelings. Would it be helpful to discuss strategies for improving your mood?",
		})
	case trendConsistentlyPositive:
		insights = append(insights, Insight{
			Type:     "persistent_positive",
			Priority: 3,
			Text:     "You've been maintaining a positive outlook in our conversations. What strategies have been working well for you?",
		})
	case trendFluctuating:
		insights = append(insights, Insight{
			Type:     "mood_fluctuation",
			Priority: 2,
			Text:     "Your mood seems to fluctuate significantly between conversations. Have you noticed particular triggers for these changes?",
		})
	}

	if analysis.Trend.RecentShift {
		insights = append(insights, Insight{
			Type:     "mood_shift",
			Priority: 1,
			Text:     "There's been a noticeable shift in your mood recently. Would you like to talk about what might have caused this change?",
		})
	}

	return insights
}

func patternInsights(analysis Analysis) []Insight {
	var insights []Insight
	if len(analysis.Patterns.RepeatedQuestions) > 0 {
		insights = append(insights, Insight{
			Type:     "repeated_questions",
			Priority: 2,
			Text:     "You've asked some questions multiple times. Is there a particular concern that hasn't been addressed fully?",
		})
	}
	if len(analysis.Patterns.ResponseGaps) >= 2 {
		insights = append(insights, Insight{
			Type:     "conversation_gaps",
			Priority: 4,
			Text:     "There have been some gaps in our conversation. Feel free to reach out anytime you need support.",
		})
	}
	if len(analysis.Patterns.LateNight) >= 2 {
		insights = append(insights, Insight{
			Type:     "late_night_activity",
			Priority: 3,
			Text:     "I've noticed you often message late at night. Have you been experiencing sleep difficulties?",
		})
	}
	return insights
}

func topicCount(topics []TopicCount, name string) int {
	for _, t := range topics {
		if t.Topic == name {
			return t.Count
		}
	}
	return 0
}

func emotionCount(emotions []EmotionCount, name string) int {
	for _, e := range emotions {
		if e.Emotion == name {
			return e.Count
		}
	}
	return 0
}

func sortTopicCounts(counts map[string]int) []TopicCount {
	out := make([]TopicCount, 0, len(counts))
	for topic, count := range counts {
		out = append(out, TopicCount{Topic: topic, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Topic < out[j].Topic
	})
	return out
}

func sortEmotionCounts(counts map[string]int) []EmotionCount {
	out := make([]EmotionCount, 0, len(counts))
	for emotion, count := range counts {
		out = append(out, EmotionCount{Emotion: emotion, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Emotion < out[j].Emotion
	})
	return out
}
