package sentiment

import (
	"math/rand"
	"strings"
	"sync"
)

// Label values produced by the analyzer, roughly ordered from best to worst.
const (
	LabelPositive       = "positive"
	LabelNeutral        = "neutral"
	LabelNegative       = "negative"
	LabelHighlyNegative = "highly_negative"
)

type Analysis struct {
	Text      string             `json:"text"`
	Label     string             `json:"label"`
	Score     float64            `json:"score"`
	Emotions  []string           `json:"emotions"`
	Context   string             `json:"context,omitempty"`
	AllScores map[string]float64 `json:"all_scores"`
}

var emotionKeywords = map[string][]string{
	"anger":          {"angry", "mad", "furious", "upset", "rage", "annoyed", "frustrat"},
	"sadness":        {"sad", "down", "depress", "unhappy", "miserable", "hurt", "lonely"},
	"anxiety":        {"anxious", "worry", "nervous", "stress", "tense", "overwhelm", "panic"},
	"fear":           {"afraid", "scared", "terrified", "frightened", "fear"},
	"confusion":      {"confus", "unsure", "uncertain", "lost", "perplex"},
	"disappointment": {"disappoint", "let down", "failed", "regret"},
}

var relationshipKeywords = []string{
	"mom", "mother", "dad", "father", "parent", "friend", "boyfriend",
	"girlfriend", "husband", "wife", "partner", "boss", "coworker", "colleague",
	"teacher", "classmate", "roommate", "neighbor", "family",
}

var positiveWords = []string{
	"happy", "glad", "great", "good", "wonderful", "excited", "grateful",
	"thankful", "proud", "better", "hopeful", "calm", "relaxed", "love",
}

var negativeWords = []string{
	"sad", "bad", "awful", "terrible", "angry", "hate", "miserable", "upset",
	"tired", "lonely", "hurt", "stress", "anxious", "worried", "depress",
	"hopeless", "worthless", "scared", "afraid", "cry",
}

var crisisKeywords = []string{
	"suicide", "kill myself", "want to die", "end my life", "don't want to live",
	"hopeless", "worthless", "unbearable", "can't take it anymore", "no reason to live",
	"never be happy", "better off dead", "hate myself", "no one cares", "give up",
}

// Analyzer assigns a sentiment label, a score in [0,1], and detected emotions
// to a message using weighted keyword tables. It also tracks recent analyses
// so template responses do not repeat.
type Analyzer struct {
	mu      sync.Mutex
	history []historyEntry
	maxLen  int
	rng     *rand.Rand
}

type historyEntry struct {
	analysis Analysis
	response string
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{maxLen: 5, rng: rand.New(rand.NewSource(rand.Int63()))}
}

func (a *Analyzer) Analyze(text string) Analysis {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Analysis{
			Text:      text,
			Label:     LabelNeutral,
			Score:     0.5,
			Emotions:  []string{},
			AllScores: map[string]float64{LabelNegative: 0, LabelNeutral: 1, LabelPositive: 0},
		}
	}

	lower := strings.ToLower(trimmed)
	posHits := countHits(lower, positiveWords)
	negHits := countHits(lower, negativeWords)

	// Exclamation-heavy negative text reads as more intense.
	if negHits > 0 && strings.Count(trimmed, "!") >= 2 {
		negHits++
	}

	total := posHits + negHits
	score := 0.5
	label := LabelNeutral
	if total > 0 {
		score = float64(posHits) / float64(total)
		switch {
		case score >= 0.6:
			label = LabelPositive
		case score <= 0.4:
			label = LabelNegative
		}
	}

	emotions := detectEmotions(lower)
	context := detectContext(lower)

	if label == LabelNegative && highlyNegative(trimmed, lower, score) {
		label = LabelHighlyNegative
		if score > 0.2 {
			score = 0.1
		}
	}

	analysis := Analysis{
		Text:     text,
		Label:    label,
		Score:    score,
		Emotions: emotions,
		Context:  context,
		AllScores: map[string]float64{
			LabelNegative: clamp01(1 - score),
			LabelNeutral:  neutralWeight(score),
			LabelPositive: clamp01(score),
		},
	}

	a.mu.Lock()
	a.history = append(a.history, historyEntry{analysis: analysis})
	if len(a.history) > a.maxLen {
		a.history = a.history[len(a.history)-a.maxLen:]
	}
	a.mu.Unlock()

	return analysis
}

func highlyNegative(text, lower string, score float64) bool {
	if score > 0.3 {
		return false
	}
	for _, keyword := range crisisKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	// Very short negative statements often signal distress.
	if len(strings.Fields(text)) < 5 {
		for _, word := range []string{"hate", "awful", "terrible", "miserable"} {
			if strings.Contains(lower, word) {
				return true
			}
		}
	}
	return false
}

func detectEmotions(lower string) []string {
	detected := []string{}
	for _, emotion := range emotionOrder {
		for _, pattern := range emotionKeywords[emotion] {
			if strings.Contains(lower, pattern) {
				detected = append(detected, emotion)
				break
			}
		}
	}
	return detected
}

// emotionOrder keeps detection output deterministic.
var emotionOrder = []string{"anger", "sadness", "anxiety", "fear", "confusion", "disappointment"}

func detectContext(lower string) string {
	for _, keyword := range relationshipKeywords {
		if containsWord(lower, keyword) {
			return "relationship"
		}
	}
	return ""
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

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}

func countHits(lower string, words []string) int {
	hits := 0
	for _, word := range words {
		if strings.Contains(lower, word) {
			hits++
		}
	}
	return hits
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func neutralWeight(score float64) float64 {
	d := score - 0.5
	if d < 0 {
		d = -d
	}
	return clamp01(1 - 2*d)
}
