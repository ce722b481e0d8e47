package similarity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"factkb/models"
)

// FingerprintLen is the number of hex characters kept from the content hash.
// Collisions at corpus scale (a few thousand entries) are negligible, and the
// near-duplicate check behind the fingerprint catches the rest.
const FingerprintLen = 12

// Near-duplicate thresholds. The OR-of-ANDs shape is intentional: a pair
// qualifies with a near-identical question and a moderately similar answer,
// or the reverse, but not with both axes only moderately similar.
const (
	strongThreshold = 0.8
	weakThreshold   = 0.6
)

// Normalize lowercases s, strips punctuation and collapses whitespace runs,
// producing a stable form for hashing and comparison.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			// Punctuation separates tokens rather than vanishing, so
			// "step-by-step" and "step by step" normalize identically.
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Fingerprint derives the dedup fingerprint for an entry from its normalized
// question and answer. Equal fingerprints mark exact-duplicate candidates.
func Fingerprint(e *models.KnowledgeEntry) string {
	norm := Normalize(e.Question + " " + e.Answer)
	sum := sha256.Sum256([]byte(norm))
	return hex.EncodeToString(sum[:])[:FingerprintLen]
}

// Ratio computes a token-level similarity between a and b in [0,1] using the
// longest common subsequence of normalized words: 2*LCS/(len(a)+len(b)).
// It is symmetric, returns 1 for identical strings (including two empties)
// and trends toward 0 as the texts diverge.
func Ratio(a, b string) float64 {
	ta := strings.Fields(Normalize(a))
	tb := strings.Fields(Normalize(b))
	if len(ta) == 0 && len(tb) == 0 {
		return 1.0
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0.0
	}
	lcs := lcsLength(ta, tb)
	return 2.0 * float64(lcs) / float64(len(ta)+len(tb))
}

// NearDuplicates reports whether two entries should be grouped for
// consolidation.
func NearDuplicates(a, b *models.KnowledgeEntry) bool {
	qSim := Ratio(a.Question, b.Question)
	// Cheap reject: if even the question similarity misses the weak
	// threshold, no rule can fire and the answer comparison is skipped.
	if qSim <= weakThreshold {
		return false
	}
	aSim := Ratio(a.Answer, b.Answer)
	if qSim > strongThreshold && aSim > weakThreshold {
		return true
	}
	return qSim > weakThreshold && aSim > strongThreshold
}

// WordJaccard computes the Jaccard overlap of the normalized word sets of a
// and b. Used for matching questions against known failed test questions.
func WordJaccard(a, b string) float64 {
	sa := wordSet(a)
	sb := wordSet(b)
	if len(sa) == 0 && len(sb) == 0 {
		return 1.0
	}
	if len(sa) == 0 || len(sb) == 0 {
		return 0.0
	}
	inter := 0
	for w := range sa {
		if _, ok := sb[w]; ok {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	return float64(inter) / float64(union)
}

// Keywords returns the stop-word-filtered word set of s. Short tokens
// (<= 2 characters) are discarded along with stop words.
func Keywords(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(Normalize(s)) {
		if len(w) <= 2 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

func wordSet(s string) map[string]struct{} {
	fields := strings.Fields(Normalize(s))
	out := make(map[string]struct{}, len(fields))
	for _, w := range fields {
		out[w] = struct{}{}
	}
	return out
}

// lcsLength computes the longest common subsequence length over tokens with
// a rolling two-row table.
func lcsLength(a, b []string) int {
	if len(b) > len(a) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "can": {}, "do": {}, "does": {}, "for": {},
	"from": {}, "get": {}, "has": {}, "have": {}, "how": {}, "i": {},
	"if": {}, "in": {}, "is": {}, "it": {}, "its": {}, "my": {}, "need": {},
	"of": {}, "on": {}, "or": {}, "that": {}, "the": {}, "their": {},
	"there": {}, "this": {}, "to": {}, "was": {}, "what": {}, "when": {},
	"where": {}, "which": {}, "who": {}, "will": {}, "with": {}, "you": {},
	"your": {},
}
