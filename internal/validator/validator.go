package validator

import (
	"regexp"
	"strings"
	"sync"

	"mindwell/internal/state"
)

// Issue identifies a quality problem with a generated reply.
type Issue string

const (
	IssueGeneric    Issue = "generic"
	IssueRepetitive Issue = "repetitive"
	IssueIrrelevant Issue = "irrelevant"
	IssueInsensitive Issue = "insensitive"
	IssueDismissive Issue = "dismissive"
	IssueVerbose    Issue = "verbose"
	IssueIncomplete Issue = "incomplete"
)

type Result struct {
	Valid        bool     `json:"valid"`
	Issues       []Issue  `json:"issues"`
	Suggestions  []string `json:"suggestions"`
	QualityScore float64  `json:"quality_score"`
}

const (
	minResponseLength  = 20
	maxResponseLength  = 500
	maxSimilarityRatio = 0.85
	validThreshold     = 0.7
)

var empathyRegex = regexp.MustCompile(`(?i)understand|sorry to hear|that sounds|it seems like|you feel|you're feeling|must be|can be difficult|appreciate|thank you for|sharing|i'm here`)

var dismissiveRegex = regexp.MustCompile(`(?i)just.*get over it|it'?s not that bad|other people have it worse|you should just|stop thinking about|snap out of it|you'?re being dramatic|you'?re overreacting`)

var informalRegex = regexp.MustCompile(`(?i)\b(yeah|nah|cool|awesome|gonna|wanna|dunno)\b`)

var wordRegex = regexp.MustCompile(`\b\w{4,}\b`)

var genericResponses = []string{
	"I understand how you feel.",
	"That must be difficult.",
	"I'm here for you.",
	"Thanks for sharing.",
	"Let me know how I can help.",
	"I appreciate you telling me that.",
	"Tell me more about that.",
}

// Validator scores generated replies for empathy, relevance, repetition, and
// tone before they reach the user.
type Validator struct {
	mu      sync.Mutex
	history []string
	maxHist int
}

func New() *Validator {
	return &Validator{maxHist: 5}
}

// Validate returns the quality result for a reply. The score starts at 1.0
// and loses 0.1 per issue; replies below 0.7 are flagged invalid.
func (v *Validator) Validate(response, userMessage string, snapshot state.Snapshot, preferences map[string]string) Result {
	result := Result{Valid: true, Issues: []Issue{}, Suggestions: []string{}, QualityScore: 1.0}

	v.checkLength(response, &result)
	v.checkEmpathy(response, userMessage, &result)
	v.checkRepetition(response, snapshot, &result)
	v.checkRelevance(response, userMessage, &result)
	v.checkDismissive(response, &result)
	v.checkTone(response, preferences, &result)

	result.QualityScore -= float64(len(result.Issues)) * 0.1
	if result.QualityScore < 0 {
		result.QualityScore = 0
	}
	result.Valid = result.QualityScore >= validThreshold

	v.mu.Lock()
	v.history = append(v.history, response)
	if len(v.history) > v.maxHist {
		v.history = v.history[len(v.history)-v.maxHist:]
	}
	v.mu.Unlock()

	return result
}

func (v *Validator) checkLength(response string, result *Result) {
	if len(response) < minResponseLength {
		result.Issues = append(result.Issues, IssueIncomplete)
		result.Suggestions = append(result.Suggestions, "Response is too short. Add more detail or context.")
	}
	if len(response) > maxResponseLength {
		result.Issues = append(result.Issues, IssueVerbose)
		result.Suggestions = append(result.Suggestions, "Response is too long. Consider being more concise.")
	}
}

func (v *Validator) checkEmpathy(response, userMessage string, result *Result) {
	// Short messages and questions don't demand an empathetic framing.
	if len(userMessage) < 10 || strings.HasSuffix(strings.TrimSpace(userMessage), "?") {
		return
	}
	if !empathyRegex.MatchString(response) {
		result.Issues = append(result.Issues, IssueInsensitive)
		result.Suggestions = append(result.Suggestions, "Response lacks empathetic language. Acknowledge feelings first.")
	}
}

func (v *Validator) checkRepetition(response string, snapshot state.Snapshot, result *Result) {
	lower := strings.ToLower(response)
	for _, generic := range genericResponses {
		if strings.Contains(lower, strings.ToLower(generic)) {
			result.Issues = append(result.Issues, IssueGeneric)
			result.Suggestions = append(result.Suggestions, "Response contains generic phrasing. Personalize it.")
			break
		}
	}

	recent := make([]string, 0, 8)
	for _, msg := range snapshot.RecentMessages {
		if msg.Role == "assistant" {
			recent = append(recent, msg.Content)
		}
	}
	if len(recent) == 0 {
		v.mu.Lock()
		recent = append(recent, v.history...)
		v.mu.Unlock()
	}

	for _, prev := range recent {
		if Similarity(response, prev) > maxSimilarityRatio {
			result.Issues = append(result.Issues, IssueRepetitive)
			result.Suggestions = append(result.Suggestions, "Response is too similar to a recent message. Vary the phrasing.")
			break
		}
	}
}

func (v *Validator) checkRelevance(response, userMessage string, result *Result) {
	userWords := wordSet(userMessage)
	if len(userWords) < 3 {
		return
	}
	responseWords := wordSet(response)
	overlap := 0
	for word := range userWords {
		if responseWords[word] {
			overlap++
		}
	}
	need := len(userWords) / 3
	if need > 2 {
		need = 2
	}
	if overlap < need {
		result.Issues = append(result.Issues, IssueIrrelevant)
		result.Suggestions = append(result.Suggestions, "Response may not address the user's message. Reference what they said.")
	}
}

func (v *Validator) checkDismissive(response string, result *Result) {
	if dismissiveRegex.MatchString(response) {
		result.Issues = append(result.Issues, IssueDismissive)
		result.Suggestions = append(result.Suggestions, "Response contains dismissive language. Use supportive phrasing.")
	}
}

func (v *Validator) checkTone(response string, preferences map[string]string, result *Result) {
	if preferences == nil {
		return
	}
	if preferences["communication_style"] == "formal" && informalRegex.MatchString(response) {
		result.Issues = append(result.Issues, IssueInsensitive)
		result.Suggestions = append(result.Suggestions, "User prefers formal communication. Avoid informal language.")
	}
	if preferences["response_length"] == "short" && len(response) > 120 {
		result.Issues = append(result.Issues, IssueVerbose)
		result.Suggestions = append(result.Suggestions, "User prefers shorter responses. Be more concise.")
	}
}

func wordSet(text string) map[string]bool {
	out := map[string]bool{}
	for _, word := range wordRegex.FindAllString(strings.ToLower(text), -1) {
		out[word] = true
	}
	return out
}

// Similarity returns a ratio in [0,1] between two strings, computed over
// shared word bigrams.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 1
	}
	bigramsA := bigrams(a)
	bigramsB := bigrams(b)
	if len(bigramsA) == 0 || len(bigramsB) == 0 {
		return 0
	}
	shared := 0
	for gram := range bigramsA {
		if bigramsB[gram] {
			shared++
		}
	}
	return 2 * float64(shared) / float64(len(bigramsA)+len(bigramsB))
}

func bigrams(text string) map[string]bool {
	words := strings.Fields(text)
	out := map[string]bool{}
	for i := 0; i+1 < len(words); i++ {
		out[words[i]+" "+words[i+1]] = true
	}
	return out
}

// Improve rewrites a reply to address the issues found by Validate. Valid
// replies pass through unchanged.
func (v *Validator) Improve(response string, result Result, userMessage string) string {
	if result.Valid {
		return response
	}
	improved := response
	lowerUser := strings.ToLower(userMessage)

	if hasIssue(result.Issues, IssueDismissive) {
		return "I want to support you through this difficult time. Everyone's experience is unique, " +
			"and I'm here to listen without judgment. Would you like to talk more about what you're going through?"
	}

	if hasIssue(result.Issues, IssueIncomplete) {
		if !strings.Contains(improved, "I'm here for you") {
			improved += " I'm here for you and ready to listen whenever you want to talk more."
		}
	} else if hasIssue(result.Issues, IssueVerbose) {
		sentences := splitSentences(improved)
		if len(sentences) > 4 {
			improved = strings.Join(sentences[:4], " ")
		}
	}

	if hasIssue(result.Issues, IssueInsensitive) && !empathyRegex.MatchString(improved) {
		switch {
		case strings.Contains(lowerUser, "difficult") || strings.Contains(lowerUser, "hard"):
			improved = "That does sound difficult. " + improved
		case strings.Contains(lowerUser, "sad") || strings.Contains(lowerUser, "upset"):
			improved = "I'm sorry you're feeling this way. " + improved
		default:
			improved = "I appreciate you sharing that with me. " + improved
		}
	}

	if hasIssue(result.Issues, IssueGeneric) {
		for _, generic := range genericResponses {
			if strings.EqualFold(strings.TrimSpace(improved), generic) {
				words := wordRegex.FindAllString(lowerUser, 1)
				if len(words) > 0 {
					improved = "I hear that " + words[0] + " is important to you. Can you tell me more about how it's affecting you?"
				}
				break
			}
		}
	}

	return improved
}

func hasIssue(issues []Issue, target Issue) bool {
	for _, issue := range issues {
		if issue == target {
			return true
		}
	}
	return false
}

var sentenceEnd = regexp.MustCompile(`(?m)([.!?])\s+`)

func splitSentences(text string) []string {
	marked := sentenceEnd.ReplaceAllString(text, "$1\n")
	parts := strings.Split(marked, "\n")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
