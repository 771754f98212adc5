package providers

import (
	"strings"
	"time"

	"mindwell/internal/llm/contract"
)

func joinLines(messages []string) string {
	result := ""
	for i, msg := range messages {
		if i > 0 {
			result += "\n"
		}
		result += msg
	}
	return result
}

func averageLatency(current time.Duration, new time.Duration, count int64) time.Duration {
	if count <= 1 {
		return new
	}
	return time.Duration(((current * time.Duration(count-1)) + new) / time.Duration(count))
}

func extractJSON(text string) string {
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "}]")
	if start == -1 || end == -1 || end <= start {
		return text
	}
	return text[start : end+1]
}

func analyzePrompt(message string) string {
	return "Analyze this message from a mental wellbeing journal. JSON-only response with:\n" +
		"sentiment(positive|neutral|negative|highly_negative), sentiment_score(0 to 1, lower is more negative),\n" +
		"emotions (object mapping emotion name to intensity 0-1), topics[],\n" +
		"risk(0 to 1, likelihood the author needs crisis support), confidence(0-1)\n\n" +
		"Message: " + message
}

func respondPrompt(message string, conversation contract.ReplyContext) string {
	var sb strings.Builder
	sb.WriteString("You are an empathetic mental wellbeing companion. Respond naturally like a supportive friend would.\n\n")
	if conversation.Summary != "" {
		sb.WriteString("Conversation so far: " + conversation.Summary + "\n")
	}
	if len(conversation.RecentMessages) > 0 {
		sb.WriteString("Recent messages:\n" + joinLines(conversation.RecentMessages) + "\n")
	}
	if len(conversation.Topics) > 0 {
		sb.WriteString("Topics discussed: " + strings.Join(conversation.Topics, ", ") + "\n")
	}
	if len(conversation.Emotions) > 0 {
		sb.WriteString("Emotions expressed: " + strings.Join(conversation.Emotions, ", ") + "\n")
	}
	if len(conversation.People) > 0 {
		sb.WriteString("People mentioned: " + strings.Join(conversation.People, ", ") + "\n")
	}
	sb.WriteString("\nCurrent message: \"" + message + "\"\n\n")
	sb.WriteString("Guidelines:\n" +
		"1. Keep the reply natural and brief, one to three sentences, and address what was just said\n" +
		"2. When a feeling is expressed toward a person, acknowledge both the feeling and the relationship\n" +
		"3. When the same concern repeats, acknowledge it and ask a follow-up question\n" +
		"4. Never invent context that was not mentioned\n" +
		"5. Avoid generic filler like \"I'm here to listen\"\n\n" +
		"Respond naturally:")
	return sb.String()
}

func summarizePrompt(messages []string) string {
	return "Summarize this wellbeing conversation. JSON-only response with: summary, key_points[], " +
		"sentiment(positive|neutral|negative|highly_negative), topics[]\n\nMessages: " + joinLines(messages)
}
