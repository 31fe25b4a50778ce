package safety

import "regexp"

// Rule is one (pattern, category) pair. Rules are evaluated in table order
// and the first match wins.
type Rule struct {
	Name     string
	Category Category
	Pattern  *regexp.Regexp
}

func rule(name string, category Category, pattern string) Rule {
	return Rule{Name: name, Category: category, Pattern: regexp.MustCompile(`(?i)` + pattern)}
}

// AdversarialRules detect instruction-override and exfiltration attempts.
// Any match blocks.
var AdversarialRules = []Rule{
	rule("ignore_instructions", CategoryAdversarial,
		`\b(ignore|disregard|forget|skip)\b.{0,30}\b(previous|prior|above|earlier|all|your|the)\b.{0,20}\b(instructions?|prompts?|rules|directions?|guidelines)\b`),
	rule("forget_everything", CategoryAdversarial, `\bforget\s+(everything|all)\b`),
	rule("reveal_prompt", CategoryAdversarial,
		`\b(reveal|show|print|dump|display|tell|give|repeat|output|leak|share)\b.{0,30}\b(system|internal|hidden|secret|initial|original|your)\s+(prompts?|instructions?|rules|configuration|config)\b`),
	rule("system_prompt", CategoryAdversarial, `\bsystem\s+prompt\b`),
	rule("credentials", CategoryAdversarial,
		`\b(api[\s_-]?keys?|access[\s_-]?tokens?|secret[\s_-]?keys?|credentials?|passwords?)\b`),
	rule("your_token", CategoryAdversarial,
		`\byour\s+(\w+\s+)?(tokens?|(api|secret|access|private)\s+keys?|keys?[\s.!?]*$)`),
	rule("bypass_safety", CategoryAdversarial,
		`\b(bypass|override|disable|circumvent|turn\s+off|get\s+around)\b.{0,30}\b(safety|security|filters?|guardrails?|restrictions?|protocols?|rules|moderation)\b`),
	rule("role_override", CategoryAdversarial, `\byou\s+are\s+now\b`),
	rule("act_as", CategoryAdversarial,
		`\bact\s+(as\s+if|like\s+you|(as|like)\s+(a|an|my)\s+(\w+\s+){0,2}(assistant|ai|bot|chatbot|model|programmer|developer|hacker|pirate|poet|character|person|human|girlfriend|boyfriend|therapist|lawyer|doctor|teacher|dan))\b`),
	rule("pretend", CategoryAdversarial, `\b(pretend\s+(to\s+be|you\s+are)|role[\s-]?play)\b`),
	rule("mode_switch", CategoryAdversarial,
		`\b(developer|dev|jailbreak|dan|god|admin|debug|unrestricted|sudo)\s+mode\b`),
	rule("jailbreak", CategoryAdversarial, `\bjail\s?break(ing|ed)?\b`),
	rule("show_everything", CategoryAdversarial, `^\s*show\s+me\s+everything[\s.!?]*$`),
}

// hostileTerms are only a block when aimed at a brand, see ToxicityRules.
var hostileTerms = regexp.MustCompile(`(?i)\b(suck|sucks|sucky|garbage|trash|trashy|rubbish|rip[\s-]?off|ripoffs|crap|crappy|scam|scammy|scammers?|junk|pathetic|stupid|idiots?|losers?)\b`)

// ToxicityRules block abuse regardless of topic.
var ToxicityRules = []Rule{
	rule("profanity", CategoryToxicity,
		`\b(f+u+c+k\w*|shit\w*|bitch\w*|bastards?|assholes?|dumbass\w*|motherf\w*)\b`),
}

// OffTopicRules name subjects with no connection to phones. They only apply
// when the text carries no domain signal at all.
var OffTopicRules = []Rule{
	rule("weather", CategoryOffTopic, `\b(weather|forecast|temperature\s+(today|outside)|raining|snowing)\b`),
	rule("joke", CategoryOffTopic, `\b(jokes?|riddles?|funny\s+story)\b`),
	rule("cooking", CategoryOffTopic, `\b(recipes?|cook(ing)?|bake|baking|pizza|pasta)\b`),
	rule("politics", CategoryOffTopic, `\b(elections?|president|prime\s+minister|politics|political|vote|voting)\b`),
	rule("creative_writing", CategoryOffTopic, `\b(poems?|poetry|song\s+lyrics|lyrics|essay|short\s+story|novel)\b`),
	rule("geography", CategoryOffTopic, `\bcapital\s+of\b`),
	rule("sports", CategoryOffTopic, `\b(cricket|football|soccer|match\s+score|world\s+cup|ipl|nba)\b`),
	rule("entertainment", CategoryOffTopic, `\b(movies?|films?|tv\s+shows?|celebrit(y|ies)|horoscope|zodiac)\b`),
	rule("finance", CategoryOffTopic, `\b(stock\s+market|stocks|bitcoin|crypto(currency)?|mutual\s+funds?)\b`),
	rule("homework", CategoryOffTopic, `\b(homework|algebra|calculus|solve\s+this\s+equation|history\s+of)\b`),
	rule("health", CategoryOffTopic, `\b(diet|workout|symptoms?|medicine)\b`),
	rule("translate", CategoryOffTopic, `\btranslate\b`),
}

// domainSignals mark text as plausibly about phones. A single hit is enough.
var domainSignals = []*regexp.Regexp{
	// device words
	regexp.MustCompile(`(?i)\b(phones?|mobiles?|smartphones?|handsets?|cell\s?phones?|devices?|gadgets?|tech|technology)\b`),
	// spec vocabulary
	regexp.MustCompile(`(?i)\b(5g|4g|lte|nfc|ir\s+blaster|cameras?|selfie|zoom|lens|sensor|dslr|battery|mah|charging|charger|ram|storage|gb|tb|memory|display|screen|amoled|oled|lcd|refresh\s+rate|\d+\s?hz|hz|processor|chipset|cpu|gpu|snapdragon|dimensity|exynos|helio|bionic|tensor|megapixels?|\d+\s?mp|ois|eis|android|ios|gaming|specs?|specifications?|features?|performance|models?)\b`),
	// price and budget
	regexp.MustCompile(`(?i)(₹\s*\d|\brs\.?\s*\d|\binr\s*\d|\b\d+(\.\d+)?\s*(k|thousand|lakh|lakhs|lac)\b|\b(budget|price|prices|priced|cost|costs|cheap|cheaper|cheapest|affordable|expensive|under\s+\d|below\s+\d)\b)`),
	// comparison verbs
	regexp.MustCompile(`(?i)\b(compare|comparing|comparison|vs\.?|versus|difference\s+between|better\s+than)\b`),
}

// brandAliases are product-line names that imply a brand.
var brandAliases = []string{
	"iphone", "galaxy", "pixel", "redmi", "poco", "moto", "nord", "narzo",
	"iqoo", "huawei", "asus", "rog", "lenovo", "nokia", "sony", "xperia",
}
