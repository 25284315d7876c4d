package chatbot

import (
	"strings"
	"unicode"
)

// accentReplacer applies the fixed substitution table used everywhere text is
// compared: á→a é→e í→i ó→o ú→u ü→u ñ→n à→a è→e ì→i ò→o ù→u. Nothing else is
// transliterated.
var accentReplacer = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u",
	"ü", "u", "ñ", "n", "à", "a", "è", "e", "ì", "i",
	"ò", "o", "ù", "u",
)

// spanishStopwords is a fixed Spanish stopword set applied by CleanTokens.
var spanishStopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"de", "la", "que", "el", "en", "y", "a", "los", "del", "se",
		"las", "por", "un", "para", "con", "no", "una", "su", "al", "lo",
		"como", "mas", "pero", "sus", "le", "ya", "o", "este", "si", "porque",
		"esta", "entre", "cuando", "muy", "sin", "sobre", "tambien", "me", "hasta", "hay",
		"donde", "quien", "desde", "todo", "nos", "durante", "todos", "uno", "les", "ni",
		"contra", "otros", "ese", "eso", "ante", "ellos", "e", "esto", "mi", "antes",
		"algunos", "unos", "yo", "otro", "otras", "otra", "tanto", "esa", "estos",
		"mucho", "quienes", "nada", "muchos", "cual", "poco", "ella", "estar", "estas", "algunas",
		"algo", "nosotros", "tu", "te", "ti", "usted", "ustedes", "es", "son", "era",
	} {
		spanishStopwords[w] = struct{}{}
	}
}

// Normalize lowercases the text and strips accent marks using the fixed
// substitution table. It is total: any input yields a (possibly empty) string.
func Normalize(text string) string {
	return accentReplacer.Replace(strings.ToLower(text))
}

// Tokenize splits normalized text on whitespace and punctuation boundaries.
func Tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || isPunct(r)
	})
}

// CleanTokens normalizes, tokenizes and drops stopwords and punctuation
// symbols. Empty input returns an empty slice.
func CleanTokens(text string) []string {
	tokens := Tokenize(Normalize(text))
	clean := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, stop := spanishStopwords[tok]; stop {
			continue
		}
		clean = append(clean, tok)
	}
	return clean
}

func isPunct(r rune) bool {
	return unicode.IsPunct(r) || r == '¿' || r == '¡'
}

func isStopword(tok string) bool {
	_, ok := spanishStopwords[tok]
	return ok
}

// WordsSimilar reports whether two words are similar under Levenshtein
// distance after normalization. similarity = 1 - distance/maxLen.
func WordsSimilar(a, b string, threshold float64) bool {
	if a == "" || b == "" {
		return false
	}
	na := Normalize(a)
	nb := Normalize(b)

	maxLen := len([]rune(na))
	if l := len([]rune(nb)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return false
	}

	dist := editDistance(na, nb)
	similarity := 1 - float64(dist)/float64(maxLen)
	return similarity >= threshold
}

func editDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
