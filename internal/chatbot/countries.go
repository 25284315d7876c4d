package chatbot

import "strings"

// CountryRecord is the canonical entry for a country. Name is the normalized
// (lowercase, accent-stripped) key; Timezones is ordered, the first entry is
// the representative zone used for country-level resolution.
type CountryRecord struct {
	Name      string
	Capital   string
	ISOCode   string
	Timezones []string
}

// CountryRegistry resolves free-text country mentions to canonical records.
// It is immutable after construction and safe for concurrent use.
type CountryRegistry struct {
	countries []CountryRecord          // iteration order for substring/fuzzy matching
	byName    map[string]int           // canonical name -> index
	aliases   map[string]string        // alias -> canonical name
	special   map[string]string        // foreign city spelling -> pinned geocoding query
	fuzzy     float64                  // similarity threshold for the fuzzy matcher
}

// NewCountryRegistry builds the registry from the fixed seed data.
func NewCountryRegistry() *CountryRegistry {
	r := &CountryRegistry{
		byName:  make(map[string]int),
		aliases: countryAliases,
		special: specialCities,
		fuzzy:   0.8,
	}
	for _, c := range seedCountries {
		r.byName[c.Name] = len(r.countries)
		r.countries = append(r.countries, c)
	}
	return r
}

// ResolveAlias maps a free-text token to a country record, or nil when no
// matcher fires. Matchers run in order: exact alias, exact canonical,
// substring either direction, Levenshtein similarity. The input is normalized
// first, so matching is case- and accent-insensitive.
func (r *CountryRegistry) ResolveAlias(token string) *CountryRecord {
	tok := Normalize(strings.TrimSpace(token))
	if tok == "" {
		return nil
	}

	if canonical, ok := r.aliases[tok]; ok {
		tok = canonical
	}
	if i, ok := r.byName[tok]; ok {
		return &r.countries[i]
	}

	// Substring match, first canonical wins. Deliberately not anchored to
	// word boundaries; see ResolveAlias tests for the accepted misfires.
	for i := range r.countries {
		name := r.countries[i].Name
		if strings.Contains(name, tok) || strings.Contains(tok, name) {
			return &r.countries[i]
		}
	}

	for i := range r.countries {
		if WordsSimilar(tok, r.countries[i].Name, r.fuzzy) {
			return &r.countries[i]
		}
	}
	return nil
}

// Lookup returns the record for an exact canonical name.
func (r *CountryRegistry) Lookup(name string) *CountryRecord {
	if i, ok := r.byName[Normalize(name)]; ok {
		return &r.countries[i]
	}
	return nil
}

// SpecialCityQuery returns a pinned "City,CC" geocoding query for well-known
// foreign spellings ("london" -> "Londres,GB"), or "" when none applies.
func (r *CountryRegistry) SpecialCityQuery(city string) string {
	return r.special[Normalize(strings.TrimSpace(city))]
}

var seedCountries = []CountryRecord{
	{"chile", "Santiago", "CL", []string{"America/Santiago"}},
	{"argentina", "Buenos Aires", "AR", []string{"America/Argentina/Buenos_Aires"}},
	{"espana", "Madrid", "ES", []string{"Europe/Madrid"}},
	{"mexico", "Ciudad de México", "MX", []string{"America/Mexico_City", "America/Tijuana", "America/Cancun"}},
	{"colombia", "Bogotá", "CO", []string{"America/Bogota"}},
	{"peru", "Lima", "PE", []string{"America/Lima"}},
	{"venezuela", "Caracas", "VE", []string{"America/Caracas"}},
	{"ecuador", "Quito", "EC", []string{"America/Guayaquil"}},
	{"bolivia", "La Paz", "BO", []string{"America/La_Paz"}},
	{"paraguay", "Asunción", "PY", []string{"America/Asuncion"}},
	{"uruguay", "Montevideo", "UY", []string{"America/Montevideo"}},
	{"brasil", "Brasilia", "BR", []string{"America/Sao_Paulo", "America/Manaus", "America/Belem"}},
	{"estados unidos", "Washington", "US", []string{
		"America/New_York", "America/Chicago", "America/Denver",
		"America/Los_Angeles", "America/Anchorage", "Pacific/Honolulu",
	}},
	{"canada", "Ottawa", "CA", nil},
	{"francia", "París", "FR", []string{"Europe/Paris"}},
	{"italia", "Roma", "IT", []string{"Europe/Rome"}},
	{"alemania", "Berlín", "DE", []string{"Europe/Berlin"}},
	{"reino unido", "Londres", "GB", []string{"Europe/London"}},
	{"japon", "Tokio", "JP", nil},
	{"china", "Pekín", "CN", nil},
	{"rusia", "Moscú", "RU", []string{
		"Europe/Moscow", "Europe/Kaliningrad", "Europe/Samara",
		"Asia/Yekaterinburg", "Asia/Omsk", "Asia/Krasnoyarsk",
		"Asia/Irkutsk", "Asia/Yakutsk", "Asia/Vladivostok",
		"Asia/Magadan", "Asia/Kamchatka",
	}},
	{"portugal", "Lisboa", "PT", []string{"Europe/Lisbon"}},
}

// countryAliases maps abbreviations, foreign names and common misspellings to
// canonical names. Keys and values are in normalized form.
var countryAliases = map[string]string{
	// América
	"usa":                       "estados unidos",
	"estados unidos de america": "estados unidos",
	"eeuu":                      "estados unidos",
	"united states":             "estados unidos",
	"us":                        "estados unidos",
	"rd":                        "republica dominicana",
	"vzla":                      "venezuela",
	"arg":                       "argentina",
	"chi":                       "chile",
	"col":                       "colombia",
	"per":                       "peru",
	"uru":                       "uruguay",
	"par":                       "paraguay",
	"ecu":                       "ecuador",
	"bol":                       "bolivia",

	// Europa
	"uk":           "reino unido",
	"gran bretana": "reino unido",
	"england":      "reino unido",
	"fr":           "francia",
	"de":           "alemania",
	"it":           "italia",
	"pt":           "portugal",

	// Asia
	"jp": "japon",
	"cn": "china",
	"kr": "corea del sur",

	// Oceanía
	"au": "australia",
	"nz": "nueva zelanda",
}

// specialCities pins foreign-language city spellings to an unambiguous
// geocoding query.
var specialCities = map[string]string{
	"paris":      "París,FR",
	"berlin":     "Berlín,DE",
	"rome":       "Roma,IT",
	"tokyo":      "Tokio,JP",
	"sydney":     "Sídney,AU",
	"moscow":     "Moscú,RU",
	"beijing":    "Pekín,CN",
	"washington": "Washington,US",
	"new york":   "Nueva York,US",
	"london":     "Londres,GB",
	"madrid":     "Madrid,ES",
	"barcelona":  "Barcelona,ES",
}

// conditionTranslations maps upstream English condition text to Spanish. Used
// only when the weather API does not return a localized description.
var conditionTranslations = map[string]string{
	"clear":                "Despejado",
	"clouds":               "Nublado",
	"few clouds":           "Parcialmente nublado",
	"scattered clouds":     "Nubes dispersas",
	"broken clouds":        "Mayormente nublado",
	"overcast clouds":      "Muy nublado",
	"rain":                 "Lluvia",
	"light rain":           "Lluvia ligera",
	"moderate rain":        "Lluvia moderada",
	"heavy intensity rain": "Lluvia intensa",
	"thunderstorm":         "Tormenta",
	"snow":                 "Nieve",
	"mist":                 "Neblina",
	"fog":                  "Niebla",
	"haze":                 "Neblina",
	"drizzle":              "Llovizna",
}
