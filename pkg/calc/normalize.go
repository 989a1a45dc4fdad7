package calc

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// namedKeys maps keyboard key names to tokens. Names are case-sensitive, the
// way browsers report them.
var namedKeys = map[string]Token{
	"Enter":     Equals(),
	"Backspace": Delete(),
	"Escape":    Clear(),
	"Delete":    Clear(),
}

// glyphs maps single-rune labels to tokens after NFKC folding.
var glyphs = map[rune]Token{
	'.': Point(),
	'=': Equals(),
	'+': Op(Add),
	'-': Op(Subtract),
	'*': Op(Multiply),
	'/': Op(Divide),
	'×': Op(Multiply),
	'✕': Op(Multiply),
	'÷': Op(Divide),
	'∕': Op(Divide),
	'−': Op(Subtract),
}

// Normalize maps a raw key name or button label to a canonical token.
// It reports false for anything that is not a calculator key (whitespace,
// modifier keys, unknown labels); callers forward nothing in that case.
func Normalize(raw string) (Token, bool) {
	if tok, ok := namedKeys[raw]; ok {
		return tok, true
	}

	folded := norm.NFKC.String(raw)
	if utf8.RuneCountInString(folded) != 1 {
		return Token{}, false
	}

	r, _ := utf8.DecodeRuneInString(folded)
	if r >= '0' && r <= '9' {
		return Digit(byte(r)), true
	}
	if tok, ok := glyphs[r]; ok {
		return tok, true
	}
	return Token{}, false
}

// SplitKeys breaks free-form input into raw keys. Whitespace separates
// fields; a field that is a named key ("Enter", "Escape") stays whole and any
// other field is split into single runes.
func SplitKeys(s string) []string {
	var keys []string
	for _, field := range strings.FieldsFunc(s, unicode.IsSpace) {
		if _, ok := namedKeys[field]; ok {
			keys = append(keys, field)
			continue
		}
		for _, r := range field {
			keys = append(keys, string(r))
		}
	}
	return keys
}
