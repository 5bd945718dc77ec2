package caption

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultKeywordCount is how many ranked tokens make up a name phrase.
const DefaultKeywordCount = 3

// wordRe matches unicode word tokens.
var wordRe = regexp.MustCompile(`[\p{L}\p{N}]+`)

// titleCaser renders keywords for display. Captions are produced for
// Brazilian Portuguese content by default; title casing rules are
// shared across the Latin-script languages we support.
var titleCaser = cases.Title(language.BrazilianPortuguese)

// stopWords is the Portuguese stop-word set used for keyword ranking.
var stopWords = buildStopWords(
	"e de a o que do da em um para é com não uma os no se na por mais as dos " +
		"como mas foi ao ele das tem à seu sua ou ser quando muito há nos já está " +
		"eu também só pelo pela até isso ela entre era depois sem mesmo aos ter " +
		"seus quem nas me esse eles estão você tinha foram essa num nem suas meu " +
		"minha têm numa pelos elas havia seja qual será nós tenho lhe deles essas " +
		"esses pelas este fosse dele tu te vocês vos lhes meus minhas teu tua teus " +
		"tuas nosso nossa nossos nossas dela delas esta estes estas aquele aquela " +
		"aqueles aquelas isto aquilo")

func buildStopWords(list string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(list) {
		set[w] = struct{}{}
	}
	return set
}

// ExtractKeywords returns up to n keywords from text, ranked by
// frequency with ties broken by first occurrence, each title-cased
// for display. Deterministic and pure: the same input always yields
// the same output. The result is used for output file naming only and
// is never fed back into caption text.
func ExtractKeywords(text string, n int) []string {
	if n <= 0 {
		return nil
	}

	type count struct {
		token string
		freq  int
		first int
	}

	counts := make(map[string]*count)
	var order []*count
	for i, token := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if _, stop := stopWords[token]; stop {
			continue
		}
		if c, ok := counts[token]; ok {
			c.freq++
			continue
		}
		c := &count{token: token, freq: 1, first: i}
		counts[token] = c
		order = append(order, c)
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].freq != order[j].freq {
			return order[i].freq > order[j].freq
		}
		return order[i].first < order[j].first
	})

	if len(order) > n {
		order = order[:n]
	}
	keywords := make([]string, len(order))
	for i, c := range order {
		keywords[i] = titleCaser.String(c.token)
	}
	return keywords
}

// KeywordPhrase joins the top keywords with spaces, for use as a clip
// name. Returns "" when no keyword survives stop-word filtering.
func KeywordPhrase(text string, n int) string {
	return strings.Join(ExtractKeywords(text, n), " ")
}
