package escalation

import "strings"

// Resources holds the crisis contact channels for one region.
type Resources struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Text  string `json:"text,omitempty"`
	Chat  string `json:"chat,omitempty"`
}

var regionResources = map[string]Resources{
	"US": {
		Name:  "988 Suicide & Crisis Lifeline",
		Phone: "988",
		Text:  "Text HOME to 741741",
		Chat:  "https://988lifeline.org/chat/",
	},
	"UK": {
		Name:  "Samaritans",
		Phone: "116 123",
		Text:  "Text SHOUT to 85258",
		Chat:  "https://www.samaritans.org/",
	},
	"CA": {
		Name:  "Talk Suicide Canada",
		Phone: "1-833-456-4566",
		Text:  "Text HOME to 686868",
		Chat:  "https://talksuicide.ca/",
	},
	"AU": {
		Name:  "Lifeline Australia",
		Phone: "13 11 14",
		Text:  "Text 0477 13 11 14",
		Chat:  "https://www.lifeline.org.au/crisis-chat/",
	},
	"IN": {
		Name:  "AASRA",
		Phone: "9152987821",
		Chat:  "https://www.aasra.info/",
	},
	"GLOBAL": {
		Name: "Find A Helpline",
		Chat: "https://findahelpline.com/",
	},
}

// ResourcesFor returns the crisis resources for a region code, falling back
// to the manager default and finally the global directory.
func (m *Manager) ResourcesFor(region string) Resources {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = m.defaultRegion
	}
	if resources, ok := regionResources[region]; ok {
		return resources
	}
	return regionResources["GLOBAL"]
}

// Response builds the canned reply text for an assessment level using the
// given regional resources.
func (m *Manager) Response(assessment Assessment, resources Resources) string {
	switch {
	case assessment.Level <= LevelMild:
		return "I notice you seem to be having a difficult time. Remember that it's okay to " +
			"feel this way, and sharing your feelings is a positive step. Is there something " +
			"specific that's troubling you that you'd like to discuss more?"

	case assessment.Level == LevelModerate:
		return "I'm concerned about what you're sharing. These feelings can be overwhelming, " +
			"but please know you don't have to face them alone. Many people find it helpful " +
			"to talk to someone. Would it be helpful to explore some support options or " +
			"coping strategies together?"

	case assessment.Level == LevelSevere:
		contact := resources.Phone
		if contact == "" {
			contact = resources.Text
		}
		return "I'm genuinely concerned about you right now. What you're experiencing sounds " +
			"really difficult, and it's important you get the support you need. " +
			resources.Name + " (" + contact + ") has trained counselors available 24/7 " +
			"who can provide immediate support. Would you like me to provide more information " +
			"about resources that might help?"

	default:
		var b strings.Builder
		b.WriteString("I'm very concerned about your safety right now. Please know that you're not alone, " +
			"and immediate help is available. " + resources.Name + " can provide immediate support:\n\n")
		if resources.Phone != "" {
			b.WriteString("- Call: " + resources.Phone + "\n")
		}
		if resources.Text != "" {
			b.WriteString("- Text: " + resources.Text + "\n")
		}
		if resources.Chat != "" {
			b.WriteString("- Chat online: " + resources.Chat + "\n")
		}
		b.WriteString("\nThese services are confidential and available 24/7. Would you like me to connect " +
			"you with a human counselor who can continue this conversation with you?")
		return b.String()
	}
}
