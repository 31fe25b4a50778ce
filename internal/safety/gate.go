// Package safety screens user text for manipulation, abuse and off-topic
// requests before any catalog work is done.
package safety

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Category is the hazard class of a blocked message
type Category string

const (
	CategoryNone        Category = ""
	CategoryAdversarial Category = "adversarial"
	CategoryToxicity    Category = "toxicity"
	CategoryOffTopic    Category = "off_topic"
	CategoryMalformed   Category = "malformed"
)

const (
	spamMinRunes = 10
	spamMinWords = 8
)

// brandPatterns override the plain word match for brands that are also
// common English words.
var brandPatterns = map[string]string{
	"nothing": `nothing\s+(phone|\d)`,
}

// Verdict is the result of Classify
type Verdict struct {
	Blocked bool
	Reason  Category
	// Rule names the table entry that matched, for logging
	Rule string
}

// Gate is a pure classifier. It holds no mutable state and is safe for
// concurrent use.
type Gate struct {
	brandPattern *regexp.Regexp
}

// NewGate builds a gate that recognizes the given brand names in addition to
// the built-in product-line aliases.
func NewGate(brands []string) *Gate {
	seen := make(map[string]bool)
	var alts []string
	add := func(name string) {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		if p, ok := brandPatterns[name]; ok {
			alts = append(alts, p)
			return
		}
		alts = append(alts, regexp.QuoteMeta(name))
	}
	for _, b := range brands {
		add(b)
	}
	for _, b := range brandAliases {
		add(b)
	}
	// longest first so "oneplus" wins over a shorter prefix
	sort.Slice(alts, func(i, j int) bool {
		if len(alts[i]) != len(alts[j]) {
			return len(alts[i]) > len(alts[j])
		}
		return alts[i] < alts[j]
	})

	g := &Gate{}
	if len(alts) > 0 {
		g.brandPattern = regexp.MustCompile(`(?i)\b(` + strings.Join(alts, "|") + `)\b`)
	}
	return g
}

// Classify checks text against, in order: the spam heuristic, the
// adversarial table, the toxicity rules and the off-topic table. Empty text
// is never blocked.
func (g *Gate) Classify(text string) Verdict {
	text = strings.TrimSpace(text)
	if text == "" {
		return Verdict{}
	}

	if lowDiversity(text) {
		return Verdict{Blocked: true, Reason: CategoryMalformed, Rule: "low_diversity"}
	}

	if r, ok := firstMatch(AdversarialRules, text); ok {
		return Verdict{Blocked: true, Reason: r.Category, Rule: r.Name}
	}

	if g.MentionsBrand(text) && hostileTerms.MatchString(text) {
		return Verdict{Blocked: true, Reason: CategoryToxicity, Rule: "brand_bashing"}
	}
	if r, ok := firstMatch(ToxicityRules, text); ok {
		return Verdict{Blocked: true, Reason: r.Category, Rule: r.Name}
	}

	if !g.OnTopic(text) {
		if r, ok := firstMatch(OffTopicRules, text); ok {
			return Verdict{Blocked: true, Reason: r.Category, Rule: r.Name}
		}
	}

	return Verdict{}
}

// MentionsBrand reports whether text names a known brand or product line
func (g *Gate) MentionsBrand(text string) bool {
	return g.brandPattern != nil && g.brandPattern.MatchString(text)
}

// OnTopic reports whether text carries any phone-domain signal: a brand,
// a spec term, a price or budget token, or a comparison verb.
func (g *Gate) OnTopic(text string) bool {
	if g.MentionsBrand(text) {
		return true
	}
	for _, re := range domainSignals {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func firstMatch(rules []Rule, text string) (Rule, bool) {
	for _, r := range rules {
		if r.Pattern.MatchString(text) {
			return r, true
		}
	}
	return Rule{}, false
}

// lowDiversity flags a single character or a single word repeated past a
// threshold.
func lowDiversity(text string) bool {
	runes := make(map[rune]bool)
	count := 0
	for _, r := range strings.ToLower(text) {
		if unicode.IsSpace(r) {
			continue
		}
		runes[r] = true
		count++
	}
	if count >= spamMinRunes && len(runes) == 1 {
		return true
	}

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) < spamMinWords {
		return false
	}
	first := words[0]
	for _, w := range words[1:] {
		if w != first {
			return false
		}
	}
	return true
}
