package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"empty", "", English},
		{"plain english", "How do I grow tomatoes", English},
		{"english with one spanish marker", "what is a good fertilizer for maize", English},
		{"spanish above threshold", "cómo se cultiva el maíz en la montaña", Spanish},
		{"luganda", "Oli otya, nsaba obuyambi", Luganda},
		{"swahili", "Habari, shamba langu lina shida", Swahili},
		{"runyankole", "Agandi, ninyenda obuyambi", Runyankole},
		{"acholi", "Apwoyo matek", Acholi},
		{"lango", "Ibedo nining", Acholi}, // "nining" is shared and Acholi is checked first
		{"lango only", "atye ki lobo", Lango},
		{"french", "Bonjour! je suis agriculteur", French},
		{"arabic", "مرحبا كيف الحال", Arabic},
		{"hindi", "नमस्ते मुझे मदद चाहिए", Hindi},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLanguage(tt.message))
		})
	}
}

func TestDetectLanguage_SpanishThresholdIsStrict(t *testing.T) {
	// 3 of 10 words is exactly 30%, which is not more than 30%.
	msg := "el la de one two three four five six seven"
	assert.Equal(t, English, DetectLanguage(msg))

	msg = "el la de y one two three four five six"
	assert.Equal(t, Spanish, DetectLanguage(msg))
}

func TestDetectLanguage_NoKeywordsMeansEnglish(t *testing.T) {
	for _, msg := range []string{
		"1234 5678",
		"???",
		"irrigation schedule for sorghum",
		"   ",
	} {
		assert.Equal(t, English, DetectLanguage(msg), msg)
	}
}

func TestDetectIntent(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"How do I fix tomato disease", IntentDisease},
		{"PEST on my beans", IntentDisease},
		{"best fertilizer for maize", IntentFertilizer},
		{"my soil is too acidic", IntentFertilizer},
		{"how much water do onions need", IntentIrrigation},
		{"will the weather change", IntentWeather},
		{"when to harvest cassava", IntentHarvest},
		{"hello there", IntentGeneral},
		{"", IntentGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectIntent(tt.message))
		})
	}
}

func TestDetectIntent_OnlyListedKeywords(t *testing.T) {
	for _, msg := range []string{
		"blight on my potatoes",
		"is urea or npk better",
		"what is the ph of my field",
		"frost forecast tonight",
		"low yield this year",
	} {
		assert.Equal(t, IntentGeneral, DetectIntent(msg), msg)
	}
}

func TestDetectIntent_Priority(t *testing.T) {
	// Every pair of keyword groups resolves to the higher-priority intent.
	assert.Equal(t, IntentDisease, DetectIntent("soil pest"))
	assert.Equal(t, IntentFertilizer, DetectIntent("water the compost"))
	assert.Equal(t, IntentIrrigation, DetectIntent("drought season"))
	assert.Equal(t, IntentWeather, DetectIntent("harvest temperature"))
	assert.Equal(t, IntentDisease, DetectIntent("harvest weather rain soil disease"))
}

func TestDetectIntent_TotalAndIdempotent(t *testing.T) {
	labels := map[string]bool{}
	for _, l := range Intents() {
		labels[l] = true
	}
	assert.Len(t, labels, 6)

	inputs := []string{"", "x", "Disease!", "ñandú", "مرحبا", "ready to pick", "\n\t"}
	for _, in := range inputs {
		first := DetectIntent(in)
		assert.True(t, labels[first], "unexpected label %q", first)
		assert.Equal(t, first, DetectIntent(in))
	}
}
