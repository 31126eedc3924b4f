package search

import (
	"unicode"
)

type Token string

type Tokenizer struct {
	MaxTokens int
}

var DefaultTokenizer = &Tokenizer{MaxTokens: 128}

var commonIssues = map[rune]rune{
	'ö': 'o',
	'ä': 'a',
	'å': 'a',
	'é': 'e',
	'è': 'e',
	'ê': 'e',
	'ë': 'e',
	'ï': 'i',
	'î': 'i',
	'ô': 'o',
	'ü': 'u',
	'û': 'u',
	'ÿ': 'y',
	'ç': 'c',
	'ñ': 'n',
	'ß': 's',
	'æ': 'a',
	'ø': 'o',
}

// NormalizeWord lowercases, folds common diacritics and drops everything
// that is not a letter or digit.
func NormalizeWord(text string) Token {
	ret := make([]rune, 0, len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			l := unicode.ToLower(r)
			if replacement, ok := commonIssues[l]; ok {
				l = replacement
			}
			ret = append(ret, l)
		}
	}
	return Token(ret)
}

func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// SplitWords calls onWord for each word in text until it returns false.
func SplitWords(text string, onWord func(word string) bool) {
	start := -1
	for idx, chr := range text {
		if isSeparator(chr) {
			if start >= 0 {
				if !onWord(text[start:idx]) {
					return
				}
				start = -1
			}
			continue
		}
		if start < 0 {
			start = idx
		}
	}
	if start >= 0 {
		onWord(text[start:])
	}
}

// Tokenize returns the unique normalized tokens of text, at most MaxTokens.
func (t *Tokenizer) Tokenize(text string) []Token {
	ret := []Token{}
	found := map[Token]struct{}{}
	SplitWords(text, func(word string) bool {
		normalized := NormalizeWord(word)
		if len(normalized) == 0 {
			return true
		}
		if _, ok := found[normalized]; !ok {
			found[normalized] = struct{}{}
			ret = append(ret, normalized)
		}
		return t.MaxTokens <= 0 || len(ret) < t.MaxTokens
	})
	return ret
}
