package intent

import (
	"regexp"
	"sort"
	"strings"

	"github.com/krishanki/PhonePixie/internal/models"
)

// DefaultConfidence is reported for every rule-based classification
const DefaultConfidence = 60

// ModelFinder looks up catalog models by name
type ModelFinder interface {
	FindModel(name string) (*models.Phone, bool)
}

var (
	capabilityPattern = regexp.MustCompile(`(?i)\b(what\s+can\s+you\s+do|who\s+are\s+you|what\s+are\s+you|how\s+can\s+you\s+help|what\s+do\s+you\s+do|your\s+capabilities|how\s+does\s+this\s+work)\b`)
	greetingPattern   = regexp.MustCompile(`(?i)^\s*(hi+|hello+|hey+|hiya|namaste|greetings|yo|good\s+(morning|afternoon|evening)|thanks|thank\s+you|help|test)(\s+(there|pixie|phonepixie|bot))?[\s!.?,]*$`)

	compareCue = regexp.MustCompile(`(?i)\b(compare|comparing|comparison\s+(of|between)|vs\.?|versus|differences?\s+between)\b`)
	sideSplit  = regexp.MustCompile(`(?i)\s*(?:\bvs\.?|\bversus\b|\band\b|\bwith\b|\bor\b|,|&|/)\s*`)
	sideNoise  = regexp.MustCompile(`(?i)^(?:\s*(?:compare|comparing|comparison|of|between|differences?|the|please|can\s+you|which\s+is\s+better)\b)*\s*|[\s?.!]+$`)

	subjectPattern = regexp.MustCompile(`(?i)^\s*(?:what\s+is|what's|whats|what\s+are|what\s+does|explain|define|meaning\s+of|tell\s+me\s+(?:more\s+)?about|details?\s+(?:of|about|on|for)|specs?\s+(?:of|for)|specifications\s+(?:of|for)|info(?:rmation)?\s+(?:on|about)|how\s+(?:does|do|is)|review\s+of)\s+(.+?)[\s?.!]*$`)
	subjectNoise   = regexp.MustCompile(`(?i)^(?:(?:the|a|an)\s+)?(?:(?:technical|full|key|detailed|main)\s+)?(?:features?|specs?|specifications?|details?|info(?:rmation)?)\s+(?:of|for|on|about)\s+|\s+(?:mean|means|work|works|do|does)$`)

	searchCue = regexp.MustCompile(`(?i)\b(best|top|recommend\w*|suggest\w*|looking\s+for|show\s+me|find|need\s+an?|want\s+an?|buy|good|cheap\w*|affordable|under|below|within|budget|phones|mobiles|options)\b`)
	deviceCue = regexp.MustCompile(`(?i)\b(phones?|mobiles?|smartphones?|handsets?|devices?)\b`)

	modelToken = regexp.MustCompile(`(?i)\b[a-z]{0,4}\d{1,4}[a-z]{0,4}\b`)
	unitToken  = regexp.MustCompile(`(?i)^\d+(g|gb|tb|hz|mp|mah|w|k|mm|nm|x|th|st|nd|rd)$`)
	seriesTok  = regexp.MustCompile(`(?i)\b(iphone|pixel|galaxy|redmi|narzo|nord|moto|poco|iqoo|note|pro\s+max)\b`)

	techTerms = regexp.MustCompile(`(?i)\b(ois|eis|optical\s+image\s+stabili[sz]ation|electronic\s+image\s+stabili[sz]ation|stabili[sz]ation|ir\s+blaster|infrared|refresh\s+rate|\d*\s?hz|processor|chipset|soc|cpu|gpu|ram|memory|storage|rom|5g|4g|lte|nfc|fast\s+charging|charging|battery|mah|megapixels?|\d*\s?mp|amoled|oled|lcd|display|screen|resolution|ppi|ip6[78]|water\s+resistance|aperture|sensor|zoom|telephoto|ultra[\s-]?wide|macro|hdr|dual\s+sim|esim|bluetooth|wi-?fi|usb[\s-]?c|snapdragon|dimensity|exynos|bionic|tensor|helio|cores?|octa[\s-]?core|gorilla\s+glass|camera|dslr)\b`)
)

// brandAliases map product-line names to the brand that sells them
var brandAliases = map[string]string{
	"iphone": "apple",
	"galaxy": "samsung",
	"pixel":  "google",
	"redmi":  "xiaomi",
	"poco":   "xiaomi",
	"moto":   "motorola",
	"nord":   "oneplus",
	"narzo":  "realme",
}

// ambiguousBrands are brand names that are also ordinary words
var ambiguousBrands = map[string]string{
	"nothing": `nothing\s+(phone|\d)`,
}

type brandRule struct {
	pattern *regexp.Regexp
	brand   string
}

// RuleClassifier is the deterministic keyword classifier. It is safe for
// concurrent use.
type RuleClassifier struct {
	brands []brandRule
	finder ModelFinder
}

// NewRuleClassifier builds a classifier over the catalog brand list. finder
// may be nil.
func NewRuleClassifier(brands []string, finder ModelFinder) *RuleClassifier {
	known := make(map[string]bool)
	for _, b := range brands {
		if b = strings.ToLower(strings.TrimSpace(b)); b != "" {
			known[b] = true
		}
	}

	r := &RuleClassifier{finder: finder}
	add := func(word, brand string) {
		pattern := `\b` + regexp.QuoteMeta(word) + `\b`
		if p, ok := ambiguousBrands[word]; ok {
			pattern = `\b` + p + `\b`
		}
		r.brands = append(r.brands, brandRule{regexp.MustCompile(`(?i)` + pattern), brand})
	}

	names := make([]string, 0, len(known))
	for b := range known {
		names = append(names, b)
	}
	sort.Strings(names)
	for _, b := range names {
		add(b, b)
	}

	aliases := make([]string, 0, len(brandAliases))
	for a := range brandAliases {
		aliases = append(aliases, a)
	}
	sort.Strings(aliases)
	for _, a := range aliases {
		// an exact brand beats an alias, and aliases only point at stocked brands
		if target := brandAliases[a]; !known[a] && (len(known) == 0 || known[target]) {
			add(a, target)
		}
	}
	return r
}

// Classify never fails; ambiguous input becomes a general intent.
func (r *RuleClassifier) Classify(text string) models.QueryIntent {
	text = strings.Join(strings.Fields(text), " ")
	intent := models.QueryIntent{
		Type:       models.IntentGeneral,
		Confidence: DefaultConfidence,
		Parameters: models.IntentParameters{Query: text},
		Source:     "rules",
	}
	if text == "" {
		return intent
	}

	params := &intent.Parameters
	params.Budget = ParseBudget(text)
	params.Brands = r.Brands(text)
	params.Features = ExtractFeatures(text)

	if AsksCapabilities(text) {
		return intent
	}

	if compareCue.MatchString(text) {
		intent.Type = r.classifyComparison(text, params)
		return intent
	}

	if m := subjectPattern.FindStringSubmatch(text); m != nil && !searchCue.MatchString(text) {
		subject := cleanSubject(m[1])
		model := r.modelLike(subject)
		tech := techTerms.MatchString(subject)
		switch {
		case model && tech:
			intent.Type = models.IntentExplain
			return intent
		case model:
			intent.Type = models.IntentDetails
			params.Models = []string{subject}
			return intent
		case tech:
			intent.Type = models.IntentExplain
			return intent
		}
	}

	// a bare model name such as "OnePlus 12R" or "samsung m35 price"
	if params.Budget == nil && !searchCue.MatchString(text) && hasModelNumber(text) {
		intent.Type = models.IntentDetails
		params.Models = []string{cleanSubject(text)}
		return intent
	}

	if params.Budget != nil || len(params.Brands) > 0 || len(params.Features) > 0 ||
		searchCue.MatchString(text) || deviceCue.MatchString(text) {
		intent.Type = models.IntentSearch
	}
	return intent
}

// classifyComparison splits "A vs B, C" into sides. Model-shaped sides make a
// compare and brands alone make a filtered search. Technical terms make an
// explanation; failing that, a device word or a feature makes a search.
func (r *RuleClassifier) classifyComparison(text string, params *models.IntentParameters) models.IntentType {
	var modelSides []string
	tech := false
	for _, side := range sideSplit.Split(text, -1) {
		side = strings.TrimSpace(sideNoise.ReplaceAllString(side, ""))
		if side == "" {
			continue
		}
		if r.modelLike(side) {
			modelSides = append(modelSides, side)
			continue
		}
		if techTerms.MatchString(side) {
			tech = true
		}
	}

	switch {
	case len(modelSides) > 0:
		params.Models = modelSides
		return models.IntentCompare
	case params.Budget != nil || len(params.Brands) > 0:
		return models.IntentSearch
	case tech:
		return models.IntentExplain
	case len(params.Features) > 0 || deviceCue.MatchString(text):
		return models.IntentSearch
	}
	return models.IntentGeneral
}

// Brands returns the canonical brands mentioned in text, in first-mention order
func (r *RuleClassifier) Brands(text string) []string {
	type hit struct {
		at    int
		brand string
	}
	var hits []hit
	for _, b := range r.brands {
		if loc := b.pattern.FindStringIndex(text); loc != nil {
			hits = append(hits, hit{loc[0], b.brand})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].at < hits[j].at })

	var out []string
	seen := make(map[string]bool)
	for _, h := range hits {
		if !seen[h.brand] {
			seen[h.brand] = true
			out = append(out, h.brand)
		}
	}
	return out
}

// modelLike reports whether s looks like a phone model name: an alphanumeric
// token that is not a unit ("m35", "8a", "13"), a series name, or an exact
// catalog model.
func (r *RuleClassifier) modelLike(s string) bool {
	if hasModelNumber(s) {
		return true
	}
	if seriesTok.MatchString(s) {
		return true
	}
	if r.finder != nil {
		if _, ok := r.finder.FindModel(s); ok {
			return true
		}
	}
	return false
}

// AsksCapabilities reports whether text is a greeting or a question about
// what the assistant can do
func AsksCapabilities(text string) bool {
	return capabilityPattern.MatchString(text) || greetingPattern.MatchString(text)
}

func hasModelNumber(s string) bool {
	for _, tok := range modelToken.FindAllString(s, -1) {
		if !unitToken.MatchString(tok) {
			return true
		}
	}
	return false
}

func cleanSubject(s string) string {
	s = strings.TrimSpace(s)
	for {
		next := strings.TrimSpace(subjectNoise.ReplaceAllString(s, ""))
		if next == s || next == "" {
			return s
		}
		s = next
	}
}
