// Package match provides text corroboration helpers used to confirm claimed
// facts (identifiers, company names, profile values) against OCR-extracted
// document text.
package match

import (
	"regexp"
	"strings"
	"time"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// ContainsFold reports whether haystack contains needle, case-insensitively.
// Empty needles never match.
func ContainsFold(haystack, needle string) bool {
	if haystack == "" || strings.TrimSpace(needle) == "" {
		return false
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// ContainsWord reports whether text contains word as a whole word:
// "oracle" matches in "at oracle hq" but not in "coracle".
func ContainsWord(text, word string) bool {
	if text == "" || strings.TrimSpace(word) == "" {
		return false
	}
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(strings.ToLower(word)) + `\b`)
	if err != nil {
		return false
	}
	return re.MatchString(strings.ToLower(text))
}

// NormalizeAlnum lowercases s and strips everything that is not a-z or 0-9.
// OCR frequently drops or mangles punctuation; comparing normalized forms
// tolerates "oracle com" and "oraclecom" for "oracle.com".
func NormalizeAlnum(s string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(s), "")
}

// Levenshtein computes the edit distance between a and b, counting an
// adjacent transposition as a single edit. OCR frequently swaps neighboring
// characters ("oracel" for "oracle"), and that must not cost two edits.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	n, m := len(ra), len(rb)
	if n == 0 {
		return m
	}
	if m == 0 {
		return n
	}
	prev2 := make([]int, m+1)
	prev := make([]int, m+1)
	curr := make([]int, m+1)
	for j := 0; j <= m; j++ {
		prev[j] = j
	}
	for i := 1; i <= n; i++ {
		curr[0] = i
		for j := 1; j <= m; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				curr[j] = min(curr[j], prev2[j-2]+1)
			}
		}
		prev2, prev, curr = prev, curr, prev2
	}
	return prev[m]
}

// Similarity returns a normalized similarity in [0,1]:
// 1 - levenshtein(a,b) / max(len(a),len(b)). Identical strings score 1.0.
func Similarity(a, b string) float64 {
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(Levenshtein(a, b))/float64(maxLen)
}

// BestSimilarity scores token against every word of at least 3 characters in
// text and returns the highest similarity. Exits early on a near-exact hit.
func BestSimilarity(token, text string) float64 {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" || text == "" {
		return 0
	}
	best := 0.0
	for _, w := range nonAlnum.Split(strings.ToLower(text), -1) {
		if len(w) < 3 {
			continue
		}
		if sim := Similarity(token, w); sim > best {
			best = sim
			if best >= 0.95 {
				break
			}
		}
	}
	return best
}

// commonPrefixes are mail-host labels that hide the registrable domain.
var commonPrefixes = []string{"www.", "mail.", "id."}

// DomainToken derives a company token from an email domain:
// "oracle.com" -> "oracle", "mail.google.com" -> "google",
// "company.co.in" -> "company" (compound public suffix, not "co").
func DomainToken(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	for _, p := range commonPrefixes {
		d = strings.TrimPrefix(d, p)
	}
	parts := strings.Split(d, ".")
	if len(parts) == 0 || parts[0] == "" && len(parts) == 1 {
		return ""
	}

	n := len(parts)
	last := parts[n-1]
	var secondLast string
	if n >= 2 {
		secondLast = parts[n-2]
	}

	ccTLD := last == "in" || last == "uk" || last == "au" || last == "za"
	registrarLike := secondLast == "co" || secondLast == "com" || secondLast == "net" || secondLast == "org"

	var candidate string
	switch {
	case n >= 3 && ccTLD && registrarLike:
		candidate = parts[n-3]
	case n >= 2:
		candidate = parts[n-2]
	default:
		candidate = parts[0]
	}
	return NormalizeAlnum(candidate)
}

// DateForms returns the textual renderings of a date that identity documents
// commonly carry: ISO, day-month-year dashed and slashed.
func DateForms(t time.Time) []string {
	return []string{
		t.Format("2006-01-02"),
		t.Format("02-01-2006"),
		t.Format("02/01/2006"),
	}
}
