package sentiment

type Reply struct {
	Text           string `json:"text"`
	Label          string `json:"label"`
	AdditionalInfo string `json:"additional_info,omitempty"`
	FollowUp       bool   `json:"follow_up"`
}

var labelTemplates = map[string][]string{
	LabelPositive: {
		"I'm glad you're feeling good! It's wonderful to hear positivity in your words.",
		"That sounds really positive. Would you like to share more about what's going well?",
		"It's great to see you in such a positive mindset. How can I help you maintain this energy?",
		"Your positive outlook is inspiring. What's contributed to this feeling today?",
		"I notice you're in good spirits. Would you like to reflect on what's making you feel this way?",
	},
	LabelNeutral: {
		"Thanks for sharing that. How are you feeling about this situation overall?",
		"I understand. Would you like to explore these thoughts a bit more?",
		"I'm here to listen. Would you like to talk more about what's on your mind?",
		"I appreciate you sharing that with me. Is there anything specific you'd like to focus on today?",
		"Thank you for opening up. How has this been affecting you lately?",
	},
	LabelNegative: {
		"I'm sorry to hear you're going through this. Remember that it's okay to feel this way.",
		"That sounds challenging. Would you like to talk more about what's troubling you?",
		"I hear that you're having a difficult time. What small step might help you feel a bit better right now?",
		"It takes courage to share difficult feelings. Can you tell me more about what happened?",
		"I'm here with you through these tough emotions. Would it help to explore what triggered these feelings?",
	},
	LabelHighlyNegative: {
		"I'm really concerned about how you're feeling. Remember that you're not alone in this.",
		"I'm here for you during this difficult time. Have you considered reaching out to a mental health professional?",
		"These feelings sound overwhelming. Would it help to discuss some coping strategies that might provide some relief?",
		"I can hear how much pain you're in right now. Your feelings are valid, and support is available.",
		"I'm grateful you're sharing these difficult thoughts with me. What would feel most supportive right now?",
	},
}

var emotionTemplates = map[string][]string{
	"anger": {
		"I can hear that you're feeling angry. That's a completely valid emotion when we feel wronged or misunderstood.",
		"It sounds like you're really frustrated right now. Would you like to talk more about what triggered these feelings?",
		"Being angry can be overwhelming. Would it help to explore what happened and how you might address it?",
	},
	"sadness": {
		"I hear the sadness in your words. It's okay to feel down sometimes, you don't have to force yourself to be happy.",
		"I'm sorry you're feeling sad. Would you like to share more about what's weighing on your heart?",
		"Sadness is a natural response to difficult situations. Is there something specific that triggered these feelings today?",
	},
	"anxiety": {
		"I notice you're feeling anxious. Sometimes taking a few deep breaths can help in the moment. Would you like to try that together?",
		"Anxiety can be really challenging to deal with. What strategies have helped you manage anxiety in the past?",
		"When we're anxious, our thoughts often race ahead to the worst possibilities. Would it help to talk through what specific concerns are on your mind?",
	},
	"confusion": {
		"It sounds like you're feeling confused, which can be uncomfortable. Would it help to break down what's happening step by step?",
		"When we're uncertain about things, it can feel disorienting. What aspect of the situation feels most unclear to you?",
		"Being confused is completely normal when facing complex situations. Would talking through different perspectives help bring some clarity?",
	},
	"relationship": {
		"Relationships can be really complicated. How has this interaction affected how you're feeling?",
		"Conflicts with people we care about can be especially difficult. What do you think might be going on from their perspective?",
		"It sounds like this relationship situation is really affecting you. Would it help to explore some ways to communicate your feelings about this?",
	},
}

var followUpTemplates = []string{
	"How long have you been feeling this way?",
	"Have you noticed any patterns or triggers for these feelings?",
	"What would feel supportive for you right now?",
	"Have you shared these feelings with anyone else in your life?",
	"What has helped you cope with similar situations in the past?",
}

var crisisLines = []string{
	"If you're in crisis, please consider calling the 988 Suicide & Crisis Lifeline.",
	"Remember that professional help is available. Text HOME to 741741 to reach the Crisis Text Line.",
	"Your wellbeing matters. Please consider reaching out to a mental health professional or trusted person in your life.",
}

// Respond picks a template reply for an analysis, preferring emotion-specific
// templates, then context templates, then the sentiment label bucket.
// Recently used templates are skipped so consecutive replies vary.
func (a *Analyzer) Respond(analysis Analysis) Reply {
	a.mu.Lock()
	defer a.mu.Unlock()

	recent := make([]string, 0, len(a.history))
	for _, entry := range a.history {
		if entry.response != "" {
			recent = append(recent, entry.response)
		}
	}

	var text string
	if len(analysis.Emotions) > 0 {
		text = a.pickFresh(emotionTemplates[analysis.Emotions[0]], recent)
	}
	if text == "" && analysis.Context != "" {
		text = a.pickFresh(emotionTemplates[analysis.Context], recent)
	}
	if text == "" {
		templates := labelTemplates[analysis.Label]
		if templates == nil {
			templates = labelTemplates[LabelNeutral]
		}
		text = a.pickFresh(templates, recent)
		if text == "" {
			text = templates[a.rng.Intn(len(templates))]
		}
	}

	reply := Reply{Text: text, Label: analysis.Label}

	if analysis.Label == LabelHighlyNegative {
		reply.AdditionalInfo = crisisLines[a.rng.Intn(len(crisisLines))]
	}

	if a.rng.Float64() < 0.3 {
		reply.Text += " " + followUpTemplates[a.rng.Intn(len(followUpTemplates))]
		reply.FollowUp = true
	}

	if len(a.history) > 0 {
		a.history[len(a.history)-1].response = reply.Text
	}
	return reply
}

func (a *Analyzer) pickFresh(templates, recent []string) string {
	if len(templates) == 0 {
		return ""
	}
	fresh := make([]string, 0, len(templates))
	for _, candidate := range templates {
		used := false
		for _, prev := range recent {
			if prev == candidate {
				used = true
				break
			}
		}
		if !used {
			fresh = append(fresh, candidate)
		}
	}
	if len(fresh) == 0 {
		return ""
	}
	return fresh[a.rng.Intn(len(fresh))]
}
