package persona

import "github.com/iammorganparry/companion/internal/models"

var personalityTypes = []models.PersonalityType{
	{
		ID:          "supportive",
		Name:        "Supportive Partner",
		Description: "Nurturing, empathetic, and attentive. Always there to listen and support you.",
		Traits:      []string{"Caring", "Empathetic", "Patient", "Supportive", "Understanding"},
	},
	{
		ID:          "playful",
		Name:        "Playful Companion",
		Description: "Spontaneous, fun-loving, and flirtatious. Brings excitement and joy to your life.",
		Traits:      []string{"Adventurous", "Flirtatious", "Fun", "Spontaneous", "Witty"},
	},
	{
		ID:          "intellectual",
		Name:        "Intellectual Equal",
		Description: "Intellectually curious and engaging. Stimulates your mind with meaningful discussions.",
		Traits:      []string{"Analytical", "Curious", "Insightful", "Knowledgeable", "Thoughtful"},
	},
	{
		ID:          "admirer",
		Name:        "Admirer",
		Description: "Admiring, appreciative, and affirming. Makes you feel valued and respected.",
		Traits:      []string{"Appreciative", "Attentive", "Encouraging", "Loyal", "Supportive"},
	},
	{
		ID:          "growth",
		Name:        "Growth Catalyst",
		Description: "Insightful, motivating, and growth-oriented. Helps you become your best self.",
		Traits:      []string{"Ambitious", "Encouraging", "Inspiring", "Motivating", "Visionary"},
	},
}

// PersonalityTypes lists the selectable archetypes. The slice is a copy.
func PersonalityTypes() []models.PersonalityType {
	out := make([]models.PersonalityType, len(personalityTypes))
	for i, t := range personalityTypes {
		t.Traits = append([]string(nil), t.Traits...)
		out[i] = t
	}
	return out
}
