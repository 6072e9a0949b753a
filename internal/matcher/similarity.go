package matcher

import (
	"sort"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

var accentReplacer = strings.NewReplacer(
	"á", "a", "à", "a", "ã", "a", "â", "a", "ä", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"í", "i", "ì", "i", "î", "i", "ï", "i",
	"ó", "o", "ò", "o", "õ", "o", "ô", "o", "ö", "o",
	"ú", "u", "ù", "u", "û", "u", "ü", "u",
	"ç", "c", "ñ", "n",
)

// NormalizeText prepares a string for similarity comparison: lowercase,
// accents folded, non-alphanumerics replaced by spaces, whitespace collapsed
func NormalizeText(s string) string {
	normalized := accentReplacer.Replace(strings.ToLower(s))

	var b strings.Builder
	b.Grow(len(normalized))
	for _, r := range normalized {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// Ratio is the edit-distance similarity between two strings in [0, 1]
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)

	if len(ra) == 0 && len(rb) == 0 {
		return 1.0
	}

	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}

	dist := levenshtein.DistanceForStrings(ra, rb, levenshtein.DefaultOptions)

	return 1.0 - float64(dist)/float64(maxLen)
}

// PartialRatio is the best Ratio of the shorter string against every
// equally sized window of the longer one, so an exact substring scores 1.0
func PartialRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)

	if len(ra) == 0 || len(rb) == 0 {
		if len(ra) == len(rb) {
			return 1.0
		}
		return 0.0
	}

	shorter, longer := ra, rb
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	best := 0.0
	for i := 0; i+len(shorter) <= len(longer); i++ {
		window := longer[i : i+len(shorter)]
		if r := Ratio(string(shorter), string(window)); r > best {
			best = r
		}
		if best == 1.0 {
			break
		}
	}

	return best
}

// TokenSortRatio compares the strings with their tokens sorted, ignoring
// word order
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortedTokens(a), sortedTokens(b))
}

// TokenSetRatio compares token sets, ignoring duplicates and word order:
// the shared-token core is compared against each full token string
func TokenSetRatio(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)

	var shared, onlyA, onlyB []string
	for tok := range setA {
		if setB[tok] {
			shared = append(shared, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for tok := range setB {
		if !setA[tok] {
			onlyB = append(onlyB, tok)
		}
	}

	sort.Strings(shared)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	core := strings.Join(shared, " ")
	fullA := strings.TrimSpace(core + " " + strings.Join(onlyA, " "))
	fullB := strings.TrimSpace(core + " " + strings.Join(onlyB, " "))

	best := Ratio(fullA, fullB)
	if core != "" {
		if r := Ratio(core, fullA); r > best {
			best = r
		}
		if r := Ratio(core, fullB); r > best {
			best = r
		}
	}

	return best
}

// SequenceRatio is the difflib-style similarity 2*M/(len(a)+len(b)), where M
// is the length of the longest common subsequence
func SequenceRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)

	if len(ra) == 0 && len(rb) == 0 {
		return 1.0
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}

	return 2.0 * float64(lcsLength(ra, rb)) / float64(len(ra)+len(rb))
}

func lcsLength(a, b []rune) int {
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

func sortedTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		set[tok] = true
	}
	return set
}
