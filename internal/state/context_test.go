package state

import (
	"testing"
)

func TestRepetitionDetected(t *testing.T) {
	conv := NewConversationContext("s1", 1)
	conv.AddMessage("user", "nobody listens to me", nil, nil, nil)
	conv.AddMessage("assistant", "I'm listening.", nil, nil, nil)
	conv.AddMessage("user", "nobody listens to me", nil, nil, nil)
	if !conv.Patterns.Repetition {
		t.Fatal("expected repetition flag")
	}
}

func TestTopicSwitchingDetected(t *testing.T) {
	conv := NewConversationContext("s1", 1)
	conv.AddMessage("user", "work is exhausting", nil, nil, []string{"work"})
	conv.AddMessage("user", "my boss again", nil, nil, []string{"work"})
	conv.AddMessage("user", "anyway, money is tight", nil, nil, []string{"finance"})
	if !conv.Patterns.TopicSwitching {
		t.Fatal("expected topic switching flag")
	}
}

func TestEmotionalEscalation(t *testing.T) {
	conv := NewConversationContext("s1", 1)
	conv.AddMessage("user", "a bit down", nil, map[string]float64{"sadness": 0.2}, nil)
	conv.AddMessage("user", "worse now", nil, map[string]float64{"sadness": 0.4}, nil)
	conv.AddMessage("user", "really bad", nil, map[string]float64{"sadness": 0.7}, nil)
	if !conv.Patterns.EmotionalEscalation {
		t.Fatal("expected emotional escalation flag")
	}
}

func TestEngagementLow(t *testing.T) {
	conv := NewConversationContext("s1", 1)
	for i := 0; i < 5; i++ {
		conv.AddMessage("user", "ok", nil, nil, nil)
	}
	if conv.Patterns.EngagementLevel != "low" {
		t.Fatalf("expected low engagement, got %s", conv.Patterns.EngagementLevel)
	}
}

func TestMessageHistoryBounded(t *testing.T) {
	conv := NewConversationContext("s1", 1)
	for i := 0; i < 30; i++ {
		conv.AddMessage("user", "message", nil, nil, nil)
	}
	if len(conv.Messages) != maxContextMessages {
		t.Fatalf("expected %d messages, got %d", maxContextMessages, len(conv.Messages))
	}
}

func TestSnapshotRisk(t *testing.T) {
	conv := NewConversationContext("s1", 1)
	conv.AddMessage("user", "sad", nil, map[string]float64{"sadness": 0.2}, nil)
	conv.AddMessage("user", "worse", nil, map[string]float64{"sadness": 0.4}, nil)
	conv.AddMessage("user", "awful", nil, map[string]float64{"sadness": 0.8}, nil)
	snap := conv.TakeSnapshot()
	if snap.EscalationRisk < 0.5 {
		t.Fatalf("expected risk >= 0.5 after escalation, got %f", snap.EscalationRisk)
	}
}

func TestConcernMentions(t *testing.T) {
	conv := NewConversationContext("s1", 1)
	conv.AddMessage("user", "i can't sleep, insomnia every night", nil, nil, nil)
	if conv.Concerns["sleep"] == nil || conv.Concerns["sleep"].Count == 0 {
		t.Fatal("expected sleep concern mention")
	}
}

func TestProfileEmotionalTrend(t *testing.T) {
	profile := NewUserProfile(1)
	profile.UpdateEmotionalPatterns(map[string]float64{"sadness": 0.8})
	profile.UpdateEmotionalPatterns(map[string]float64{"sadness": 0.6, "anger": 0.4})
	if profile.EmotionalTrend != "sadness" {
		t.Fatalf("expected sadness trend, got %s", profile.EmotionalTrend)
	}
	stats := profile.CommonEmotions["sadness"]
	if stats.Count != 2 {
		t.Fatalf("expected 2 observations, got %d", stats.Count)
	}
	if stats.AvgIntensity < 0.69 || stats.AvgIntensity > 0.71 {
		t.Fatalf("expected running average 0.7, got %f", stats.AvgIntensity)
	}
}

func TestProfileTopicsCapped(t *testing.T) {
	profile := NewUserProfile(1)
	topics := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"}
	for _, topic := range topics {
		profile.AddTopic(topic)
	}
	if len(profile.TopicsOfInterest) != maxTopicsOfInterest {
		t.Fatalf("expected cap of %d, got %d", maxTopicsOfInterest, len(profile.TopicsOfInterest))
	}
}
