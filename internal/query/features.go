package query

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/krishanki/PhonePixie/internal/models"
)

// requirement is one interpreted feature. Hard requirements filter the
// catalog; soft ones only count toward the feature-match tie-break.
type requirement struct {
	name  string
	hard  bool
	match func(p *models.Phone) bool
}

type thresholdRule struct {
	pattern *regexp.Regexp
	name    string
	build   func(n int) func(p *models.Phone) bool
}

var thresholdRules = []thresholdRule{
	{regexp.MustCompile(`^(\d{2,3})\s*hz\b`), "refresh_rate", func(n int) func(*models.Phone) bool {
		return func(p *models.Phone) bool { return p.RefreshRate >= n }
	}},
	{regexp.MustCompile(`^(\d{1,3})\s*mp\b`), "rear_camera", func(n int) func(*models.Phone) bool {
		return func(p *models.Phone) bool { return p.PrimaryCameraRear >= float64(n) }
	}},
	{regexp.MustCompile(`^(\d{1,2})\s*gb\s+(of\s+)?ram\b`), "ram", func(n int) func(*models.Phone) bool {
		return func(p *models.Phone) bool { return p.RAMCapacity >= n }
	}},
	{regexp.MustCompile(`^(\d{2,4})\s*gb(\s+(of\s+)?(storage|rom|internal))?\b`), "storage", func(n int) func(*models.Phone) bool {
		return func(p *models.Phone) bool { return p.InternalMemory >= n }
	}},
	{regexp.MustCompile(`^(\d{4,5})\s*mah\b`), "battery", func(n int) func(*models.Phone) bool {
		return func(p *models.Phone) bool { return p.BatteryCapacity >= n }
	}},
	{regexp.MustCompile(`^(\d{2,3})\s*w\b`), "charging_watts", func(n int) func(*models.Phone) bool {
		return func(p *models.Phone) bool { return p.FastChargingAvailable && p.FastCharging >= n }
	}},
}

type flagRule struct {
	pattern *regexp.Regexp
	req     requirement
}

// flagRules are evaluated in order and the first match wins
var flagRules = []flagRule{
	{regexp.MustCompile(`\b5g\b`), requirement{name: "5g", hard: true, match: func(p *models.Phone) bool { return p.Has5G }}},
	{regexp.MustCompile(`\bnfc\b`), requirement{name: "nfc", hard: true, match: func(p *models.Phone) bool { return p.HasNFC }}},
	{regexp.MustCompile(`\b(ir\s*blaster|infrared|ir)\b`), requirement{name: "ir_blaster", hard: true, match: func(p *models.Phone) bool { return p.HasIRBlaster }}},
	{regexp.MustCompile(`\b(fast|quick|turbo|rapid)\s+charg`), requirement{name: "fast_charging", hard: true, match: func(p *models.Phone) bool { return p.FastChargingAvailable }}},
	{regexp.MustCompile(`\b(expandable|sd\s*card|micro\s?sd|memory\s+card)\b`), requirement{name: "expandable_storage", hard: true, match: func(p *models.Phone) bool { return p.ExtendedMemoryAvailable }}},
	{regexp.MustCompile(`\bios\b`), requirement{name: "ios", hard: true, match: osIs("ios")}},
	{regexp.MustCompile(`\bandroid\b`), requirement{name: "android", hard: true, match: osIs("android")}},

	{regexp.MustCompile(`\b(camera|photo|photography|selfie|zoom|portrait)`), requirement{name: "camera", match: func(p *models.Phone) bool { return p.PrimaryCameraRear >= 50 }}},
	{regexp.MustCompile(`\b(battery|long[\s-]lasting|backup)`), requirement{name: "battery", match: func(p *models.Phone) bool { return p.BatteryCapacity >= 5000 }}},
	{regexp.MustCompile(`\b(gaming|games?|gamer)\b`), requirement{name: "gaming", match: func(p *models.Phone) bool { return p.RefreshRate >= 120 && p.RAMCapacity >= 8 }}},
	{regexp.MustCompile(`\b(performance|speed|powerful|processor|multitasking)\b`), requirement{name: "performance", match: func(p *models.Phone) bool { return p.NumCores >= 8 && p.RAMCapacity >= 8 }}},
	{regexp.MustCompile(`\b(display|screen|amoled|oled|smooth)\b`), requirement{name: "display", match: func(p *models.Phone) bool { return p.RefreshRate >= 120 }}},
	{regexp.MustCompile(`\b(storage|space)\b`), requirement{name: "storage", match: func(p *models.Phone) bool { return p.InternalMemory >= 256 || p.ExtendedMemoryAvailable }}},
	{regexp.MustCompile(`\b(compact|small|one[\s-]handed|lightweight)\b`), requirement{name: "compact", match: func(p *models.Phone) bool { return p.ScreenSize > 0 && p.ScreenSize <= 6.3 }}},
}

func osIs(name string) func(*models.Phone) bool {
	return func(p *models.Phone) bool { return strings.Contains(strings.ToLower(p.OS), name) }
}

// parseFeature interprets one feature string. Unknown features are ignored.
func parseFeature(feature string) (requirement, bool) {
	f := strings.ToLower(strings.Join(strings.Fields(feature), " "))
	if f == "" {
		return requirement{}, false
	}

	for _, r := range thresholdRules {
		if m := r.pattern.FindStringSubmatch(f); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil || n <= 0 {
				return requirement{}, false
			}
			return requirement{name: r.name, hard: true, match: r.build(n)}, true
		}
	}
	for _, r := range flagRules {
		if r.pattern.MatchString(f) {
			return r.req, true
		}
	}
	return requirement{}, false
}

func parseFeatures(features []string) (hard, soft []requirement) {
	seen := make(map[string]bool)
	for _, f := range features {
		req, ok := parseFeature(f)
		if !ok {
			continue
		}
		key := req.name + "|" + strings.ToLower(strings.TrimSpace(f))
		if seen[key] {
			continue
		}
		seen[key] = true
		if req.hard {
			hard = append(hard, req)
		} else {
			soft = append(soft, req)
		}
	}
	return hard, soft
}
