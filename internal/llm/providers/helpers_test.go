package providers

import (
	"strings"
	"testing"

	"mindwell/internal/llm/contract"
)

func TestExtractJSON(t *testing.T) {
	input := "prefix {\"key\":\"value\"} suffix"
	output := extractJSON(input)
	if output != "{\"key\":\"value\"}" {
		t.Fatalf("unexpected output: %s", output)
	}

	input = "[\"a\",\"b\"]"
	output = extractJSON(input)
	if output != input {
		t.Fatalf("unexpected output for array")
	}
}

func TestRespondPromptIncludesContext(t *testing.T) {
	prompt := respondPrompt("I'm angry at my mom", contract.ReplyContext{
		Summary:  "User has been discussing family tension.",
		Topics:   []string{"family"},
		Emotions: []string{"anger"},
		People:   []string{"mom"},
	})
	for _, want := range []string{"family tension", "Topics discussed: family", "Emotions expressed: anger", "People mentioned: mom", "angry at my mom"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}
