package anchor

import (
	"math/big"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// lower applies Unicode lowercasing. A fresh Caser is used per call because
// cases.Caser is stateful.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// NormalizeID maps a symbol name to an anchor id: lowercase, every run of
// non-alphanumeric characters collapsed to one underscore, leading and
// trailing underscores trimmed. Returns "" when nothing alphanumeric remains.
//
// NormalizeID is idempotent.
func NormalizeID(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range lower(name) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// ParseAddress parses a hexadecimal address with an optional 0x/0X prefix.
// Signs, separators and empty digit strings are rejected. The result has
// arbitrary precision.
func ParseAddress(address string) (*big.Int, bool) {
	cleaned := strings.ToLower(strings.TrimSpace(address))
	cleaned = strings.TrimPrefix(cleaned, "0x")
	if cleaned == "" {
		return nil, false
	}
	for _, r := range cleaned {
		if !isHexDigit(r) {
			return nil, false
		}
	}
	value, ok := new(big.Int).SetString(cleaned, 16)
	if !ok {
		return nil, false
	}
	return value, true
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')
}

// NormalizeAddress renders a parseable address as "0x" + lowercase hex
// without leading zeros. Unparseable text is returned lowercased and trimmed.
func NormalizeAddress(address string) string {
	if value, ok := ParseAddress(address); ok {
		return "0x" + value.Text(16)
	}
	return strings.ToLower(strings.TrimSpace(address))
}
