package resolve

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// text is a normalized string with its token forms precomputed.
type text struct {
	full   string
	n      int // rune count of full
	sorted string
	tokens []string // sorted, deduplicated
}

func prepare(s string) text {
	full := Normalize(s)
	if full == "" {
		return text{}
	}
	toks := strings.Fields(full)
	sort.Strings(toks)
	set := make([]string, 0, len(toks))
	for i, t := range toks {
		if i == 0 || t != toks[i-1] {
			set = append(set, t)
		}
	}
	return text{
		full:   full,
		n:      len([]rune(full)),
		sorted: strings.Join(toks, " "),
		tokens: set,
	}
}

// Normalize folds diacritics and case, replaces every non-alphanumeric rune
// with a space and collapses whitespace.
func Normalize(s string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s,
	)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Score rates how well a and b match on a 0..100 scale.
func Score(a, b string) int {
	return weighted(prepare(a), prepare(b))
}

// weighted blends whole-string, partial and token based ratios. Partial
// matching only kicks in when one string is much longer than the other, and
// is discounted the longer the gap gets.
func weighted(a, b text) int {
	if a.n == 0 || b.n == 0 {
		return 0
	}

	best := ratio(a.full, b.full)
	lenRatio := float64(max(a.n, b.n)) / float64(min(a.n, b.n))

	if lenRatio < 1.5 {
		best = math.Max(best, 0.95*ratio(a.sorted, b.sorted))
		best = math.Max(best, 0.95*tokenSetRatio(a, b, ratio))
		return int(math.Round(best))
	}

	scale := 0.9
	if lenRatio > 8 {
		scale = 0.6
	}
	best = math.Max(best, scale*partialRatio(a.full, b.full))
	best = math.Max(best, 0.95*scale*partialRatio(a.sorted, b.sorted))
	best = math.Max(best, 0.95*scale*tokenSetRatio(a, b, partialRatio))
	return int(math.Round(best))
}

// ratio is 100·(1 − distance/longest) over runes.
func ratio(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	if la == 0 || lb == 0 {
		return 0
	}
	d := levenshtein.ComputeDistance(a, b)
	return 100 * (1 - float64(d)/float64(max(la, lb)))
}

// partialRatio is the best ratio of the shorter string against every
// equal-length window of the longer one.
func partialRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	short := string(ra)
	var best float64
	for i := 0; i+len(ra) <= len(rb); i++ {
		r := ratio(short, string(rb[i:i+len(ra)]))
		if r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}

// tokenSetRatio compares the shared tokens against each side's remainder.
func tokenSetRatio(a, b text, cmp func(x, y string) float64) float64 {
	inter, diffA, diffB := splitTokens(a.tokens, b.tokens)

	t0 := strings.Join(inter, " ")
	t1 := strings.TrimSpace(t0 + " " + strings.Join(diffA, " "))
	t2 := strings.TrimSpace(t0 + " " + strings.Join(diffB, " "))

	best := cmp(t1, t2)
	if t0 != "" {
		best = math.Max(best, cmp(t0, t1))
		best = math.Max(best, cmp(t0, t2))
	}
	return best
}

// splitTokens walks two sorted token sets.
func splitTokens(a, b []string) (inter, onlyA, onlyB []string) {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			inter = append(inter, a[i])
			i++
			j++
		case a[i] < b[j]:
			onlyA = append(onlyA, a[i])
			i++
		default:
			onlyB = append(onlyB, b[j])
			j++
		}
	}
	onlyA = append(onlyA, a[i:]...)
	onlyB = append(onlyB, b[j:]...)
	return inter, onlyA, onlyB
}
