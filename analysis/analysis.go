// Package analysis scores email bodies for sentiment and extracts keywords.
//
// Sentiment follows the lexicon-and-rules approach popularised by VADER:
// word valences are adjusted for boosters, preceding negations, capitalised
// emphasis and exclamation marks, then normalised into pos/neg/neu
// proportions and a compound score in [-1, 1].
package analysis

import (
	"math"
	"strings"
	"unicode"

	"github.com/bassamadnan/triage/backend"
)

const (
	boostIncr     = 0.293
	boostDecr     = -0.293
	capsIncr      = 0.733
	negationScale = -0.74
	normAlpha     = 15.0

	// MaxKeywords bounds the keyword list kept per email.
	MaxKeywords = 20
)

// Result is the analysis of one body.
type Result struct {
	Sentiment backend.Sentiment
	Keywords  []string
}

// Analyze scores body and extracts its keywords.
func Analyze(body string) Result {
	return Result{
		Sentiment: Sentiment(body),
		Keywords:  Keywords(body, MaxKeywords),
	}
}

type token struct {
	raw   string
	lower string
}

func tokenize(text string) []token {
	fields := strings.Fields(text)
	out := make([]token, 0, len(fields))
	for _, f := range fields {
		w := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if w == "" {
			continue
		}
		out = append(out, token{raw: w, lower: strings.ToLower(strings.ReplaceAll(w, "'", ""))})
	}
	return out
}

func isUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

// Sentiment returns pos/neg/neu proportions and the compound score, each
// rounded to three decimals. An empty body scores all zeros.
func Sentiment(text string) backend.Sentiment {
	tokens := tokenize(text)

	// Caps emphasis only counts when the text is not shouting throughout.
	upper := 0
	for _, t := range tokens {
		if isUpper(t.raw) {
			upper++
		}
	}
	capsDiff := upper > 0 && upper < len(tokens)

	scores := make([]float64, 0, len(tokens))
	for i, t := range tokens {
		if _, ok := boosters[t.lower]; ok {
			scores = append(scores, 0)
			continue
		}
		v, ok := valence[t.lower]
		if !ok {
			scores = append(scores, 0)
			continue
		}
		if capsDiff && isUpper(t.raw) {
			v += math.Copysign(capsIncr, v)
		}
		for back := 1; back <= 3 && i-back >= 0; back++ {
			prev := tokens[i-back].lower
			if b, ok := boosters[prev]; ok {
				scale := b
				if back == 2 {
					scale *= 0.95
				} else if back == 3 {
					scale *= 0.9
				}
				v += math.Copysign(scale, v)
			}
			if negations[prev] {
				v *= negationScale
				break
			}
		}
		scores = append(scores, v)
	}

	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	if sum != 0 {
		bangs := min(strings.Count(text, "!"), 4)
		sum += math.Copysign(float64(bangs)*0.292, sum)
	}

	var posSum, negSum float64
	var neutral int
	for _, s := range scores {
		switch {
		case s > 0:
			posSum += s + 1
		case s < 0:
			negSum += s - 1
		default:
			neutral++
		}
	}

	pos, neg, neu, compound := 0.0, 0.0, 0.0, 0.0
	if total := posSum + math.Abs(negSum) + float64(neutral); total > 0 {
		pos = math.Abs(posSum / total)
		neg = math.Abs(negSum / total)
		neu = math.Abs(float64(neutral) / total)
	}
	if sum != 0 {
		compound = sum / math.Sqrt(sum*sum+normAlpha)
		compound = max(-1, min(1, compound))
	}

	return backend.Sentiment{
		Pos:      score(pos),
		Neg:      score(neg),
		Neu:      score(neu),
		Compound: score(compound),
	}
}

func score(v float64) *float64 {
	r := math.Round(v*1000) / 1000
	return &r
}

// Keywords returns up to limit tokens that are neither stop words nor pure
// punctuation, in order of first appearance, deduplicated case-insensitively.
// A limit <= 0 means no bound.
func Keywords(text string, limit int) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, t := range tokenize(text) {
		if stopWords[t.lower] || seen[t.lower] {
			continue
		}
		if len([]rune(t.lower)) < 2 && !unicode.IsDigit([]rune(t.lower)[0]) {
			continue
		}
		seen[t.lower] = true
		out = append(out, t.raw)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
