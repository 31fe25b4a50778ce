package intent

import (
	"fmt"
	"regexp"
	"strconv"
)

type featureRule struct {
	pattern *regexp.Regexp
	feature string
}

// fixedFeatures map phrasing to a feature name understood by the query engine
var fixedFeatures = []featureRule{
	{regexp.MustCompile(`(?i)\b5g\b`), "5g"},
	{regexp.MustCompile(`(?i)\bnfc\b`), "nfc"},
	{regexp.MustCompile(`(?i)\b(ir\s+blaster|infrared)\b`), "ir blaster"},
	{regexp.MustCompile(`(?i)\b(fast|quick|turbo|rapid)\s+charg(ing|er|e)\b`), "fast charging"},
	{regexp.MustCompile(`(?i)\b(expandable\s+(storage|memory)|sd\s+card|micro\s?sd|memory\s+card)\b`), "expandable storage"},
	{regexp.MustCompile(`(?i)\bios\b`), "ios"},
	{regexp.MustCompile(`(?i)\bandroid\b`), "android"},
	{regexp.MustCompile(`(?i)\b(cameras?|photography|photos?|selfies?|zoom|portrait)\b`), "camera"},
	{regexp.MustCompile(`(?i)\b(battery|battery\s+life|long[\s-]lasting|backup)\b`), "battery"},
	{regexp.MustCompile(`(?i)\b(gaming|games?|gamer|pubg|bgmi)\b`), "gaming"},
	{regexp.MustCompile(`(?i)\b(performance|speed|smooth|powerful|processor|multitasking)\b`), "performance"},
	{regexp.MustCompile(`(?i)\b(display|screen|amoled|oled)\b`), "display"},
	{regexp.MustCompile(`(?i)\b(storage|space)\b`), "storage"},
	{regexp.MustCompile(`(?i)\b(compact|small|one[\s-]handed|lightweight)\b`), "compact"},
}

type numericRule struct {
	pattern *regexp.Regexp
	format  string
}

// numericFeatures carry a threshold, e.g. "120Hz" means refresh rate >= 120
var numericFeatures = []numericRule{
	{regexp.MustCompile(`(?i)\b(\d{2,3})\s?hz\b`), "%dhz"},
	{regexp.MustCompile(`(?i)\b(\d{1,3})\s?mp\b`), "%dmp"},
	{regexp.MustCompile(`(?i)\b(\d{1,2})\s?gb\s+(of\s+)?ram\b`), "%dgb ram"},
	{regexp.MustCompile(`(?i)\b(\d{4,5})\s?mah\b`), "%dmah"},
}

// ExtractFeatures lists the features named in text, without duplicates, in
// vocabulary order followed by numeric thresholds.
func ExtractFeatures(text string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(f string) {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}

	for _, r := range fixedFeatures {
		if r.pattern.MatchString(text) {
			add(r.feature)
		}
	}
	for _, r := range numericFeatures {
		for _, m := range r.pattern.FindAllStringSubmatch(text, -1) {
			n, err := strconv.Atoi(m[1])
			if err != nil || n <= 0 {
				continue
			}
			add(fmt.Sprintf(r.format, n))
		}
	}
	return out
}
