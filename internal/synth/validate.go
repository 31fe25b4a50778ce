package synth

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	errTooShort   = errors.New("generated text too short")
	errCount      = errors.New("generated text does not enumerate every candidate")
	errLowQuality = errors.New("generated text is apologetic or unsure")
	errSkipped    = errors.New("step skipped")
)

var (
	numberedItem = regexp.MustCompile(`(?m)^[ \t]*(?:[#>]+[ \t]*)?(?:\*\*|__)?[ \t]*(\d{1,2})[.)]`)
	apologetic   = regexp.MustCompile(`(?i)(having\s+trouble|can'?t\s+help|cannot\s+help|can\s+not\s+help|don'?t\s+know|not\s+sure\s+(what|how)|i'?m\s+sorry|i\s+apologi[sz]e|as\s+an\s+ai|unable\s+to\s+(help|answer|provide))`)
)

// minimumLengths are in runes
var minimumLengths = map[string]int{
	"search":  50,
	"compare": 100,
	"details": 100,
	"explain": 50,
	"general": 20,
}

func checkLength(kind, text string) error {
	if n := utf8.RuneCountInString(strings.TrimSpace(text)); n < minimumLengths[kind] {
		return fmt.Errorf("%w: %d < %d", errTooShort, n, minimumLengths[kind])
	}
	return nil
}

// checkEnumeration requires the numbered items in text to be exactly 1..n
func checkEnumeration(text string, n int) error {
	seen := make(map[int]bool)
	for _, m := range numberedItem.FindAllStringSubmatch(text, -1) {
		v, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		seen[v] = true
	}
	if len(seen) != n {
		return fmt.Errorf("%w: %d numbered items for %d candidates", errCount, len(seen), n)
	}
	for i := 1; i <= n; i++ {
		if !seen[i] {
			return fmt.Errorf("%w: item %d missing", errCount, i)
		}
	}
	return nil
}

func checkConfident(text string) error {
	if apologetic.MatchString(text) {
		return errLowQuality
	}
	return nil
}

func searchCheck(n int) func(string) error {
	return func(text string) error {
		if err := checkLength("search", text); err != nil {
			return err
		}
		return checkEnumeration(text, n)
	}
}

func lengthCheck(kind string) func(string) error {
	return func(text string) error {
		return checkLength(kind, text)
	}
}

func confidentCheck(kind string) func(string) error {
	return func(text string) error {
		if err := checkLength(kind, text); err != nil {
			return err
		}
		return checkConfident(text)
	}
}
