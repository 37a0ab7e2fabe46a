package companion

import (
	"strings"

	"money-dog-go-be/models"
)

type moodRule struct {
	mood    models.Mood
	markers []string
}

// Checked in order; the first rule with a matching marker wins.
var moodRules = []moodRule{
	{mood: models.MoodExcited, markers: []string{"棒", "太好"}},
	{mood: models.MoodWorried, markers: []string{"担心", "哎呀"}},
}

// ClassifyMood picks the companion mood for a reply by looking for marker
// substrings. Replies without any marker are happy.
func ClassifyMood(text string) models.Mood {
	for _, rule := range moodRules {
		for _, marker := range rule.markers {
			if strings.Contains(text, marker) {
				return rule.mood
			}
		}
	}
	return models.MoodHappy
}
