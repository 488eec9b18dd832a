package extractor

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxCodeLen        = 20
	minCodeLen        = 2
	minLineCodeLen    = 3
	maxSynthCodeLen   = 10
	minNameLen        = 3
	placeholderCode   = "PROD001"
	synthWords        = 3
	synthCharsPerWord = 3
	synthDigits       = 3
)

var digitRunRe = regexp.MustCompile(`\d+`)

// looksLikeCode reports whether tok could be a supplier product code: 3 to 20
// characters, at least one digit, only letters, digits and - _ / . characters,
// and not ending in punctuation. Serial numbers such as "12." are rejected.
func looksLikeCode(tok string) bool {
	n := utf8.RuneCountInString(tok)
	if n < minLineCodeLen || n > maxCodeLen {
		return false
	}
	if last, _ := utf8.DecodeLastRuneInString(tok); !unicode.IsLetter(last) && !unicode.IsDigit(last) {
		return false
	}

	hasDigit := false
	for _, r := range tok {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLetter(r), r == '-', r == '_', r == '/', r == '.':
		default:
			return false
		}
	}
	return hasDigit
}

// synthesizeCode derives a stable code from a product name for suppliers that
// do not print one. "Widget Frobnicator 300" becomes "WIDFRO300300" truncated
// to "WIDFRO3003".
func synthesizeCode(name string) string {
	var b strings.Builder

	for i, word := range strings.Fields(name) {
		if i == synthWords {
			break
		}
		taken := 0
		for _, r := range word {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				continue
			}
			b.WriteRune(unicode.ToUpper(r))
			taken++
			if taken == synthCharsPerWord {
				break
			}
		}
	}

	if digits := digitRunRe.FindString(name); digits != "" {
		if len(digits) > synthDigits {
			digits = digits[:synthDigits]
		}
		b.WriteString(digits)
	}

	code := b.String()
	if code == "" {
		return placeholderCode
	}
	if runes := []rune(code); len(runes) > maxSynthCodeLen {
		code = string(runes[:maxSynthCodeLen])
	}
	return code
}

// cleanName collapses internal whitespace and trims separator noise left over
// from column splitting.
func cleanName(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, " -|:;,")
}

// validName reports whether a cleaned name is long enough to keep.
func validName(s string) bool {
	return utf8.RuneCountInString(s) >= minNameLen
}

// normalizeCode trims the code and synthesizes one from name when the
// supplier's value is too short to be useful.
func normalizeCode(code, name string) string {
	code = strings.TrimSpace(code)
	if utf8.RuneCountInString(code) < minCodeLen {
		return synthesizeCode(name)
	}
	return code
}
