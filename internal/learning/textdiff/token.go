// Package textdiff aligns two lines of text token-by-token and produces a
// minimal edit script of equal/delete/insert runs. It is the lowest layer of
// the correction learning pipeline; everything above it consumes its runs.
package textdiff

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// apostrophes lists the apostrophe variants canonicalized to U+0027.
const apostrophes = "’‘ʼ´`"

// Tokenize splits a line into word tokens: maximal runs of letters and
// digits, allowing an internal apostrophe or hyphen. Pure punctuation and
// whitespace act as separators and are discarded.
func Tokenize(line string) []string {
	rs := []rune(line)
	var tokens []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	for i, r := range rs {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			cur.WriteRune(r)
		case isJoiner(r) && cur.Len() > 0 && i+1 < len(rs) && isWordRune(rs[i+1]):
			// Internal apostrophe or hyphen joins two word parts.
			cur.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isJoiner(r rune) bool {
	return r == '\'' || r == '-' || strings.ContainsRune(apostrophes, r)
}

// NormalizeToken case-folds a token and canonicalizes apostrophe variants,
// producing the form used for alignment and rule keys.
func NormalizeToken(tok string) string {
	folded := strings.Map(func(r rune) rune {
		if strings.ContainsRune(apostrophes, r) {
			return '\''
		}
		return unicode.ToLower(r)
	}, tok)
	return folded
}

// NormalizeTokens normalizes a token slice.
func NormalizeTokens(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = NormalizeToken(t)
	}
	return out
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripDiacritics removes combining marks after NFD decomposition, so
// "café" and "cafe" compare equal.
func StripDiacritics(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return out
}

// StripNonAlnum removes everything except letters and digits, so tokens
// differing only in embedded punctuation compare equal.
func StripNonAlnum(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
