// Package intent turns raw user text into a structured QueryIntent.
package intent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/krishanki/PhonePixie/internal/models"
	"github.com/krishanki/PhonePixie/internal/safety"
	"github.com/krishanki/PhonePixie/internal/services/ai"
	"github.com/sirupsen/logrus"
)

var (
	errSkipped      = errors.New("step skipped")
	errNoJSON       = errors.New("no JSON object in model output")
	errMissingField = errors.New("missing required field")
)

// TopicChecker reports whether text carries any phone-domain signal
type TopicChecker interface {
	OnTopic(text string) bool
}

type step struct {
	name string
	run  func(ctx context.Context, text string) (models.QueryIntent, error)
}

// Classifier runs an ordered list of fallible steps and returns the first
// success. The last step is the rule classifier, which never fails.
type Classifier struct {
	gen     ai.Generator
	rules   *RuleClassifier
	topic   TopicChecker
	timeout time.Duration
	logger  *logrus.Logger
	steps   []step
}

// NewClassifier creates a classifier. gen and topic may be nil; without a
// generator every message goes to the rule classifier.
func NewClassifier(gen ai.Generator, rules *RuleClassifier, topic TopicChecker, timeout time.Duration, logger *logrus.Logger) *Classifier {
	c := &Classifier{
		gen:     gen,
		rules:   rules,
		topic:   topic,
		timeout: timeout,
		logger:  logger,
	}
	c.steps = []step{
		{name: "model", run: c.classifyWithModel},
		{name: "rules", run: func(_ context.Context, text string) (models.QueryIntent, error) {
			return c.rules.Classify(text), nil
		}},
	}
	return c
}

// Classify never returns an error. A blocked verdict short-circuits to a
// refusal intent without any further work.
func (c *Classifier) Classify(ctx context.Context, text string, verdict safety.Verdict) models.QueryIntent {
	if verdict.Blocked {
		t := models.IntentAdversarial
		if verdict.Reason == safety.CategoryOffTopic {
			t = models.IntentIrrelevant
		}
		return models.QueryIntent{Type: t, Confidence: 100, Source: "safety"}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return c.rules.Classify(text)
	}

	for _, s := range c.steps {
		intent, err := s.run(ctx, text)
		if err == nil {
			return intent
		}
		if !errors.Is(err, errSkipped) {
			c.logger.WithError(err).WithField("step", s.name).Debug("Classification step failed")
		}
	}
	return c.rules.Classify(text)
}

func (c *Classifier) classifyWithModel(ctx context.Context, text string) (models.QueryIntent, error) {
	if c.gen == nil {
		return models.QueryIntent{}, errSkipped
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	raw, err := c.gen.Generate(ctx, fmt.Sprintf(classifyPrompt, strconv.Quote(text)), classifySystemPrompt)
	if err != nil {
		return models.QueryIntent{}, fmt.Errorf("classification call failed: %w", err)
	}

	intent, err := ParseIntent(raw)
	if err != nil {
		return models.QueryIntent{}, err
	}

	// a refusal from the model is only trusted for text with no domain signal
	if intent.Type.Refused() && c.topic != nil && c.topic.OnTopic(text) {
		return models.QueryIntent{}, fmt.Errorf("model refused on-topic text as %s", intent.Type)
	}

	return c.override(intent, c.rules.Classify(text)), nil
}

// override applies the deterministic rules on top of the model's answer:
// the explain/details split follows the model-name pattern, model brands are
// mapped to catalog brands, and missing budget or model names are filled from
// the rule classifier.
func (c *Classifier) override(intent, rules models.QueryIntent) models.QueryIntent {
	p := &intent.Parameters
	switch intent.Type {
	case models.IntentExplain, models.IntentDetails:
		if rules.Type == models.IntentExplain || rules.Type == models.IntentDetails {
			intent.Type = rules.Type
		}
	case models.IntentSearch:
		if rules.Type == models.IntentCompare {
			intent.Type = models.IntentCompare
		}
	}

	if p.Budget == nil {
		p.Budget = rules.Parameters.Budget
	}
	if mapped := c.rules.Brands(strings.Join(p.Brands, " ")); len(mapped) > 0 {
		p.Brands = mapped
	} else if len(rules.Parameters.Brands) > 0 || len(p.Brands) == 0 {
		p.Brands = rules.Parameters.Brands
	}
	if len(p.Features) == 0 {
		p.Features = rules.Parameters.Features
	}
	if (intent.Type == models.IntentCompare || intent.Type == models.IntentDetails) && len(p.Models) == 0 {
		p.Models = rules.Parameters.Models
	}
	if intent.Type.Refused() {
		intent.Parameters = models.IntentParameters{}
	} else if p.Query == "" {
		p.Query = rules.Parameters.Query
	}
	return intent
}

// rawIntent mirrors the JSON the model is asked for. Pointers tell a
// missing field from a zero value.
type rawIntent struct {
	Type       *string          `json:"type"`
	Confidence *json.Number     `json:"confidence"`
	Parameters *json.RawMessage `json:"parameters"`
}

type rawParameters struct {
	Budget   json.RawMessage `json:"budget"`
	Brands   []string        `json:"brands"`
	Features []string        `json:"features"`
	Models   []string        `json:"models"`
	Query    *string         `json:"query"`
}

// ParseIntent validates model output against the QueryIntent schema.
// Markdown code fences and surrounding prose are tolerated; a missing type
// or confidence, an unknown type, or malformed parameters are errors.
func ParseIntent(raw string) (models.QueryIntent, error) {
	body := extractJSON(raw)
	if body == "" {
		return models.QueryIntent{}, errNoJSON
	}

	var r rawIntent
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&r); err != nil {
		return models.QueryIntent{}, fmt.Errorf("invalid intent JSON: %w", err)
	}
	if r.Type == nil || r.Confidence == nil {
		return models.QueryIntent{}, errMissingField
	}

	t := models.IntentType(strings.ToLower(strings.TrimSpace(*r.Type)))
	if !t.Valid() {
		return models.QueryIntent{}, fmt.Errorf("unknown intent type %q", *r.Type)
	}

	conf, err := r.Confidence.Float64()
	if err != nil || math.IsNaN(conf) {
		return models.QueryIntent{}, fmt.Errorf("invalid confidence %q", r.Confidence.String())
	}
	conf = math.Max(0, math.Min(100, conf))

	intent := models.QueryIntent{Type: t, Confidence: int(math.Round(conf)), Source: "model"}
	if r.Parameters == nil || string(*r.Parameters) == "null" {
		return intent, nil
	}

	var p rawParameters
	if err := json.Unmarshal(*r.Parameters, &p); err != nil {
		return models.QueryIntent{}, fmt.Errorf("invalid intent parameters: %w", err)
	}
	intent.Parameters = models.IntentParameters{
		Budget:   parseBudgetField(p.Budget),
		Brands:   cleanList(p.Brands, true),
		Features: cleanList(p.Features, true),
		Models:   cleanList(p.Models, false),
	}
	if p.Query != nil {
		intent.Parameters.Query = strings.TrimSpace(*p.Query)
	}
	return intent, nil
}

// parseBudgetField accepts a JSON number or a numeric string; anything else,
// and any non-positive amount, means no budget.
func parseBudgetField(raw json.RawMessage) *float64 {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var str string
		if json.Unmarshal(raw, &str) != nil {
			return nil
		}
		return ParseBudget("under " + str)
	}
	if f <= 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil
	}
	return &f
}

func cleanList(in []string, lower bool) []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range in {
		s = strings.TrimSpace(s)
		if lower {
			s = strings.ToLower(s)
		}
		if s == "" || seen[strings.ToLower(s)] {
			continue
		}
		seen[strings.ToLower(s)] = true
		out = append(out, s)
	}
	return out
}

// extractJSON strips code fences and returns the outermost {...} span
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}
