package chatbot

import (
	"strings"

	"github.com/i474232898/weather-chatbot/internal/common"
)

// Entities is the result of intent extraction for one message. The flags are
// independent; Location is a canonical country name when IsCountry is set,
// otherwise a raw city mention.
type Entities struct {
	IsGreeting bool
	IsWeather  bool
	IsTime     bool
	IsCountry  bool
	Location   string
}

// Keyword sets are stored in normalized form so substring checks line up with
// the accent-stripped message text.
var (
	greetingKeywords = []string{"hola", "buenos dias", "buenas tardes", "buenas noches", "hey", "saludos"}
	weatherKeywords  = []string{"clima", "tiempo", "temperatura", "pronostico", "hace calor", "hace frio"}
	timeKeywords     = []string{"hora", "que horas son", "dime la hora"}

	// Tokens that commonly introduce a location: "en X", "de X", "a X".
	locationMarkers = map[string]struct{}{"en": {}, "de": {}, "a": {}}
)

// IntentExtractor derives Entities from raw message text using the country
// registry for location resolution. Stateless and safe for concurrent use.
type IntentExtractor struct {
	registry *CountryRegistry
}

func NewIntentExtractor(registry *CountryRegistry) *IntentExtractor {
	return &IntentExtractor{registry: registry}
}

// Extract normalizes the text, finds a location mention and sets the intent
// flags. Intent detection is substring-based on purpose: "tiempo" inside an
// unrelated word still counts, matching the historical behavior.
func (x *IntentExtractor) Extract(raw string) Entities {
	var ent Entities
	text := Normalize(raw)
	if strings.TrimSpace(text) == "" {
		return ent
	}
	tokens := strings.Fields(text)

	// Pass 1: token following a location marker.
	for i, tok := range tokens {
		if _, ok := locationMarkers[tok]; !ok || i+1 >= len(tokens) {
			continue
		}
		if c := x.registry.ResolveAlias(tokens[i+1]); c != nil {
			ent.IsCountry = true
			ent.Location = c.Name
			break
		}
	}

	// Pass 2: every token independently. Markers and stopwords are skipped:
	// "en" is a substring of "argentina" and "de" is an alias for Germany,
	// so scanning function words would hijack nearly every sentence.
	if ent.Location == "" {
		for _, tok := range tokens {
			if _, marker := locationMarkers[tok]; marker || isStopword(tok) {
				continue
			}
			if c := x.registry.ResolveAlias(tok); c != nil {
				ent.IsCountry = true
				ent.Location = c.Name
				break
			}
		}
	}

	// Pass 3: no country anywhere; take the first plausible token after a
	// marker as a raw city mention.
	if ent.Location == "" {
		for i, tok := range tokens {
			if _, ok := locationMarkers[tok]; !ok || i+1 >= len(tokens) {
				continue
			}
			candidate := strings.Trim(tokens[i+1], "?!¿¡.,;:")
			if candidate == "" || isStopword(candidate) {
				continue
			}
			ent.Location = candidate
			break
		}
	}

	ent.IsGreeting = common.HasAny(text, greetingKeywords...)
	ent.IsWeather = common.HasAny(text, weatherKeywords...)
	ent.IsTime = common.HasAny(text, timeKeywords...)
	return ent
}
