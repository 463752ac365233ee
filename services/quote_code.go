package services

import (
	"strings"
	"time"
	"unicode"

	"github.com/pocketbase/pocketbase/tools/security"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultQuoteCodePrefix is used when no prefix is configured.
	DefaultQuoteCodePrefix = "COT"

	quoteCodeTimeLayout = "20060102150405"
	quoteCodeSuffixLen  = 4
	quoteCodeAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	initialsPerName     = 2
	initialsPad         = 'X'
)

// RandomSource returns n random characters for the collision-breaking suffix.
type RandomSource func(n int) string

// DefaultRandomSource draws the suffix from crypto/rand.
func DefaultRandomSource(n int) string {
	return security.RandomStringWithAlphabet(n, quoteCodeAlphabet)
}

// GenerateQuoteCode builds a quote number of the form
// PREFIX-YYYYMMDDHHMMSS-PPCC-SSSS, where PP and CC are the partner and
// client initials and SSSS is random. The timestamp is in UTC so codes sort
// by creation time.
//
// The code is only probably unique: the store's unique index is the real
// guard and callers retry with a fresh code on collision.
func GenerateQuoteCode(prefix, partnerName, clientName string, now time.Time, rnd RandomSource) string {
	if prefix == "" {
		prefix = DefaultQuoteCodePrefix
	}
	if rnd == nil {
		rnd = DefaultRandomSource
	}

	var b strings.Builder
	b.WriteString(strings.ToUpper(prefix))
	b.WriteByte('-')
	b.WriteString(now.UTC().Format(quoteCodeTimeLayout))
	b.WriteByte('-')
	b.WriteString(nameInitials(partnerName))
	b.WriteString(nameInitials(clientName))
	b.WriteByte('-')
	b.WriteString(normalizeSuffix(rnd(quoteCodeSuffixLen)))
	return b.String()
}

// QuoteCodeLength is the length of every code generated with prefix.
func QuoteCodeLength(prefix string) int {
	if prefix == "" {
		prefix = DefaultQuoteCodePrefix
	}
	return len(prefix) + 1 + len(quoteCodeTimeLayout) + 1 + 2*initialsPerName + 1 + quoteCodeSuffixLen
}

// nameInitials takes the first letter of each word, folded to ASCII and
// uppercased, keeping at most two and padding short names with X.
func nameInitials(name string) string {
	out := make([]byte, 0, initialsPerName)
	for _, word := range strings.Fields(foldToASCII(name)) {
		for _, r := range word {
			if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
				out = append(out, byte(unicode.ToUpper(r)))
				break
			}
		}
		if len(out) == initialsPerName {
			break
		}
	}
	for len(out) < initialsPerName {
		out = append(out, initialsPad)
	}
	return string(out)
}

// foldToASCII strips combining marks so "Álvaro Núñez" becomes "Alvaro Nunez".
func foldToASCII(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// normalizeSuffix uppercases the random part and replaces anything outside
// the code alphabet, keeping the length fixed.
func normalizeSuffix(s string) string {
	out := make([]byte, quoteCodeSuffixLen)
	upper := strings.ToUpper(s)
	for i := range out {
		c := byte('0')
		if i < len(upper) && strings.IndexByte(quoteCodeAlphabet, upper[i]) >= 0 {
			c = upper[i]
		}
		out[i] = c
	}
	return string(out)
}
