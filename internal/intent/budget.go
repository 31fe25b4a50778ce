package intent

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	amountPattern = regexp.MustCompile(`(?i)(?:(₹|\brs\.?|\binr)\s*|\b)(\d[\d,]*(?:\.\d+)?)(?:\s*(k|thousand|lakhs?|lacs?)\b|\b)`)
	// a bare number only counts as a budget after one of these
	budgetCue = regexp.MustCompile(`(?i)\b(under|below|within|around|about|budget(\s+is|\s+of)?|less\s+than|upto|up\s+to|max(imum)?|price|cost|for|near|approx(imately)?|between|and|to)\s*$`)
	unitAfter = regexp.MustCompile(`(?i)^\s*(mah|hz|mp|gb|tb|w\b|watts?|inch|inches|"|mm|g\b|nits|fps|x\b|%|th\b|st\b|nd\b|rd\b)`)
	// "4k video" is a resolution
	resolutionAfter = regexp.MustCompile(`(?i)^\s*(video|recording|display|screen|resolution|hdr|tv)\b`)

	thousand = decimal.NewFromInt(1000)
	lakh     = decimal.NewFromInt(100000)
	// bare numbers below this are model numbers or specs, not rupees
	minBareBudget = decimal.NewFromInt(1000)
)

// ParseBudget extracts the largest rupee amount stated as a price ceiling.
// It understands "₹29,999", "rs 25000", "30k", "30 thousand" and
// "1.2 lakh". It returns nil when no positive amount is found.
func ParseBudget(text string) *float64 {
	var best decimal.Decimal
	found := false

	for _, m := range amountPattern.FindAllStringSubmatchIndex(text, -1) {
		currency := m[2] >= 0
		digits := text[m[4]:m[5]]
		suffix := ""
		if m[6] >= 0 {
			suffix = strings.ToLower(text[m[6]:m[7]])
		}

		amount, err := decimal.NewFromString(strings.ReplaceAll(digits, ",", ""))
		if err != nil || !amount.IsPositive() {
			continue
		}

		switch {
		case suffix == "k" && resolutionAfter.MatchString(text[m[1]:]):
			continue
		case suffix == "k" || suffix == "thousand":
			amount = amount.Mul(thousand)
		case strings.HasPrefix(suffix, "lakh") || strings.HasPrefix(suffix, "lac"):
			amount = amount.Mul(lakh)
		case currency:
		default:
			if unitAfter.MatchString(text[m[1]:]) {
				continue
			}
			if !budgetCue.MatchString(text[:m[0]]) || amount.LessThan(minBareBudget) {
				continue
			}
		}

		if !found || amount.GreaterThan(best) {
			best = amount
			found = true
		}
	}

	if !found {
		return nil
	}
	f, _ := best.Round(2).Float64()
	return &f
}
