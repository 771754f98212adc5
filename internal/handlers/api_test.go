package handlers

import (
	"net/http/httptest"
	"testing"

	"mindwell/internal/state"
)

func makeMessages(contents ...string) []state.Message {
	messages := make([]state.Message, 0, len(contents))
	for _, content := range contents {
		messages = append(messages, state.Message{Role: "user", Content: content})
	}
	return messages
}

func TestParseID(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"42", 42, true},
		{" 7 ", 7, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseID(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseID(%q) = (%d, %v), want (%d, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParsePagination(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/journal?page=3&limit=50", nil)
	page, limit := parsePagination(req)
	if page != 3 || limit != 50 {
		t.Fatalf("got page=%d limit=%d", page, limit)
	}

	req = httptest.NewRequest("GET", "/api/v1/journal?page=-1&limit=500", nil)
	page, limit = parsePagination(req)
	if page != 1 || limit != 20 {
		t.Fatalf("out-of-range values should fall back to defaults, got page=%d limit=%d", page, limit)
	}
}

func TestRecentLines(t *testing.T) {
	messages := makeMessages("a", "b", "c", "d", "e", "f", "g", "h")
	lines := recentLines(messages, 6)
	if len(lines) != 6 {
		t.Fatalf("got %d lines", len(lines))
	}
	if lines[0] != "user: c" || lines[5] != "user: h" {
		t.Fatalf("unexpected window: %v", lines)
	}
}
