package search

import (
	"strings"
	"unicode"
)

// Profile names the tokenization rules applied to documents and queries.
type Profile string

const (
	ProfileEnglish   Profile = "english"
	ProfileTurkish   Profile = "turkish"
	ProfileBilingual Profile = "bilingual_tr_en"
)

// ParseProfile maps a request string onto a known profile, defaulting to
// the bilingual one for anything unrecognized.
func ParseProfile(name string) Profile {
	switch Profile(strings.ToLower(strings.TrimSpace(name))) {
	case ProfileEnglish:
		return ProfileEnglish
	case ProfileTurkish:
		return ProfileTurkish
	default:
		return ProfileBilingual
	}
}

// Profiles lists every supported profile; the index maintains postings for
// each so any of them can serve a query.
func Profiles() []Profile {
	return []Profile{ProfileEnglish, ProfileTurkish, ProfileBilingual}
}

var englishStopwords = toSet([]string{
	"a", "an", "and", "are", "as", "at", "be", "but", "by", "for", "from",
	"has", "have", "he", "her", "his", "i", "in", "is", "it", "its", "my",
	"not", "of", "on", "or", "our", "she", "that", "the", "their", "they",
	"this", "to", "was", "we", "were", "will", "with", "you", "your",
})

var turkishStopwords = toSet([]string{
	"acaba", "ama", "ancak", "bir", "biz", "bu", "çok", "çünkü", "da",
	"daha", "de", "değil", "diye", "en", "gibi", "hem", "her", "hiç",
	"için", "ile", "ise", "kadar", "ki", "mi", "mu", "mü", "ne", "o",
	"sen", "siz", "şu", "ve", "veya", "ya", "yani",
})

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// lowerTurkish applies Turkish casing, where dotted and dotless i are
// distinct letters: 'İ' -> 'i' and 'I' -> 'ı'.
func lowerTurkish(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case 'İ':
			b.WriteRune('i')
		case 'I':
			b.WriteRune('ı')
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// stemEnglish strips a few common English suffixes. It is deliberately
// lighter than a full stemmer; matching recall matters more than
// linguistic accuracy here.
func stemEnglish(w string) string {
	switch {
	case strings.HasSuffix(w, "ies") && len(w) > 4:
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "ing") && len(w) > 5:
		return w[:len(w)-3]
	case strings.HasSuffix(w, "ed") && len(w) > 4:
		return w[:len(w)-2]
	case strings.HasSuffix(w, "es") && len(w) > 3:
		return w[:len(w)-2]
	case strings.HasSuffix(w, "s") && len(w) > 3:
		return w[:len(w)-1]
	}
	return w
}

// turkishSuffixes are common inflection endings, longest first so the
// greedy strip takes the most specific match.
var turkishSuffixes = []string{
	"lerin", "ların", "lere", "lara", "leri", "ları", "ler", "lar",
	"den", "dan", "ten", "tan", "nin", "nın", "nün", "nun",
	"de", "da", "te", "ta", "ye", "ya", "yi", "yı",
}

func stemTurkish(w string) string {
	for _, suffix := range turkishSuffixes {
		if strings.HasSuffix(w, suffix) && len(w)-len(suffix) >= 3 {
			return strings.TrimSuffix(w, suffix)
		}
	}
	return w
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// Tokenize normalizes text into index terms under the given profile.
// Stopwords vanish; the bilingual profile drops only words both languages
// consider noise, so "for" still matches a Turkish document mentioning it.
func Tokenize(profile Profile, text string) []string {
	var tokens []string
	for _, word := range splitWords(text) {
		var term string
		switch profile {
		case ProfileEnglish:
			term = strings.ToLower(word)
			if _, stop := englishStopwords[term]; stop {
				continue
			}
			term = stemEnglish(term)
		case ProfileTurkish:
			term = lowerTurkish(word)
			if _, stop := turkishStopwords[term]; stop {
				continue
			}
			term = stemTurkish(term)
		default:
			term = lowerTurkish(word)
			_, en := englishStopwords[term]
			_, tr := turkishStopwords[term]
			if en && tr {
				continue
			}
			term = stemTurkish(stemEnglish(term))
		}
		if term == "" {
			continue
		}
		tokens = append(tokens, term)
	}
	return tokens
}
