package naming

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Provisional designations: discovery year, half-month letter, order letter,
// optional cycle count. "1995 BM2", "2004es" and "2021_JB5" are all accepted.
var provisionalPattern = regexp.MustCompile(`^(1[89][0-9]{2}|20[0-9]{2})[ _-]?([A-Z])([A-Z])([0-9]*)$`)

// Pre-1925 designations carry an A prefix instead of a full year: "A899 OF".
var prewarPattern = regexp.MustCompile(`^A[0-9]{3}[ _-]?[A-Z]{2}$`)

// Palomar-Leiden and Trojan survey designations: "2040 P-L", "3138 T-1".
var surveyPattern = regexp.MustCompile(`^([0-9]{4})[ _-]?(P-L|T-1|T-2|T-3)$`)

// CollapseSpace normalizes a raw identifier for display and matching:
// NFKC form, underscores treated as spaces, internal whitespace runs
// collapsed to single spaces, surrounding whitespace trimmed.
func CollapseSpace(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}

// Reduce produces the lookup key for a name or designation. Keys are
// diacritic-folded and case- and separator-insensitive, so "G!kun||'homdima",
// "Ganymed" and "2004 ES" reduce to stable forms regardless of how the
// caller spelled them.
//
// The same reduction is applied on both sides: when indexing aliases and
// when resolving user input.
func Reduce(s string) string {
	s = norm.NFKD.String(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.Is(unicode.Mn, r):
			// Combining marks are dropped after NFKD decomposition.
		case r == ' ' || r == '\t' || r == '_' || r == '-' || r == '\'' || r == '`' || r == 0x2019:
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// CanonicalDesignation reports whether s is a provisional or survey
// designation and returns its canonical form ("2004 ES", "2040 P-L").
// Canonical form uses a single space and uppercase letters.
func CanonicalDesignation(s string) (string, bool) {
	u := strings.ToUpper(CollapseSpace(s))
	if m := surveyPattern.FindStringSubmatch(u); m != nil {
		return m[1] + " " + m[2], true
	}
	if m := provisionalPattern.FindStringSubmatch(u); m != nil {
		return m[1] + " " + m[2] + m[3] + m[4], true
	}
	if prewarPattern.MatchString(u) {
		year, rest := u[:4], strings.TrimLeft(u[4:], " _-")
		return year + " " + rest, true
	}
	return "", false
}
