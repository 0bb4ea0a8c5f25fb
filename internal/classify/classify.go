// Package classify maps free text to a language code and an intent label
// using ordered keyword tables. The first matching entry wins.
package classify

import "strings"

// Intent labels
const (
	IntentDisease    = "disease"
	IntentFertilizer = "fertilizer"
	IntentIrrigation = "irrigation"
	IntentWeather    = "weather"
	IntentHarvest    = "harvest"
	IntentGeneral    = "general"
)

// Language codes
const (
	English    = "en"
	Spanish    = "es"
	Luganda    = "lg"
	Swahili    = "sw"
	Runyankole = "nyn"
	Acholi     = "ach"
	Lango      = "laj"
	French     = "fr"
	Arabic     = "ar"
	Hindi      = "hi"
)

// spanishThreshold is the share of words that must be Spanish markers.
const spanishThreshold = 0.3

var spanishWords = wordSet("el", "la", "de", "que", "y", "a", "en", "es", "se", "del", "para", "con")

type languageRule struct {
	code  string
	words map[string]struct{}
}

// Any single hit selects the language. Order matters: closely related
// languages share vocabulary, and the earlier one wins.
var languageRules = []languageRule{
	{Luganda, wordSet("oli", "otya", "gyebale", "nsaba", "webale", "kasooli", "lumonde", "ebirime", "nnyamba", "ssebo", "nnyabo", "bulungi")},
	{Swahili, wordSet("habari", "jambo", "shamba", "mbolea", "mvua", "mahindi", "asante", "tafadhali", "mkulima", "mazao", "ugonjwa", "nisaidie")},
	{Runyankole, wordSet("agandi", "oraire", "webare", "mpora", "ebihingwa", "omuhingi", "nyabura", "ninyenda")},
	{Acholi, wordSet("apwoyo", "itye", "kopango", "nining", "lapur", "kodi")},
	{Lango, wordSet("ibedo", "atye", "amito", "lobo", "kwac", "dako", "ipwoyo")},
	{French, wordSet("bonjour", "merci", "je", "suis", "aidez", "agriculteur", "engrais", "récolte", "maladie", "pluie", "oui", "s'il")},
	{Arabic, wordSet("مرحبا", "كيف", "شكرا", "مساعدة", "مزرعة", "سماد", "محصول", "مرض", "السلام")},
	{Hindi, wordSet("नमस्ते", "मुझे", "मदद", "धन्यवाद", "खेती", "फसल", "खाद", "बीमारी", "किसान")},
}

type intentRule struct {
	intent   string
	keywords []string
}

// The lists are matched against the lowercased message, so a mixed-case
// keyword would never fire; pH is left out for that reason.
var intentRules = []intentRule{
	{IntentDisease, []string{"disease", "pest", "illness", "sick", "damage"}},
	{IntentFertilizer, []string{"fertilizer", "nutrient", "soil", "compost"}},
	{IntentIrrigation, []string{"water", "irrigation", "rain", "drought"}},
	{IntentWeather, []string{"weather", "temperature", "climate", "season"}},
	{IntentHarvest, []string{"harvest", "mature", "ready", "pick", "crop"}},
}

// Intents lists every label DetectIntent can return, in priority order.
func Intents() []string {
	out := make([]string, 0, len(intentRules)+1)
	for _, r := range intentRules {
		out = append(out, r.intent)
	}
	return append(out, IntentGeneral)
}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// DetectLanguage returns a language code for message, "en" when nothing
// matches. It never fails.
func DetectLanguage(message string) (code string) {
	defer func() {
		if recover() != nil {
			code = English
		}
	}()

	words := strings.Fields(strings.ToLower(message))
	if len(words) == 0 {
		return English
	}

	spanish := 0
	for _, w := range words {
		if _, ok := spanishWords[w]; ok {
			spanish++
		}
	}
	if float64(spanish) > float64(len(words))*spanishThreshold {
		return Spanish
	}

	for _, rule := range languageRules {
		for _, w := range words {
			if _, ok := rule.words[trimPunct(w)]; ok {
				return rule.code
			}
		}
	}
	return English
}

// trimPunct strips leading and trailing ASCII punctuation so "bonjour!"
// matches "bonjour".
func trimPunct(w string) string {
	return strings.Trim(w, ".,!?;:\"()")
}

// DetectIntent returns the first intent whose keyword occurs as a substring
// of the lowercased message, or "general".
func DetectIntent(message string) string {
	text := strings.ToLower(message)
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.intent
			}
		}
	}
	return IntentGeneral
}
