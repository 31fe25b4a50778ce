// Package synth turns an intent and its candidates into the reply text.
// Generated text is validated before use; anything that fails validation is
// replaced by a deterministic rendering of the same sections.
package synth

import (
	"context"
	"errors"
	"strings"

	"github.com/krishanki/PhonePixie/internal/i18n"
	"github.com/krishanki/PhonePixie/internal/intent"
	"github.com/krishanki/PhonePixie/internal/middleware"
	"github.com/krishanki/PhonePixie/internal/models"
	"github.com/krishanki/PhonePixie/internal/services/ai"
	"github.com/sirupsen/logrus"
)

// Reply sources
const (
	SourceModel    = "model"
	SourceFallback = "fallback"
	SourceTable    = "table"
	SourceFixed    = "fixed"
)

// Texts resolves fixed message texts
type Texts interface {
	Message(messageID string, data map[string]interface{}) string
}

// Input is everything the synthesizer needs for one reply
type Input struct {
	Intent     models.QueryIntent
	Text       string
	Candidates models.CandidateSet
	// Unresolved holds requested model names that matched no catalog entry
	Unresolved []string
	History    []models.ConversationTurn
}

// Reply always has a non-empty Message. Phones is the candidate set that was
// passed in, unchanged, and only for search, compare and details.
type Reply struct {
	Message string
	Type    models.IntentType
	Phones  []*models.Phone
	Source  string
}

// Options configures the synthesizer
type Options struct {
	MaxHistory int
}

type attempt struct {
	name string
	run  func(ctx context.Context) (string, error)
}

// Synthesizer is safe for concurrent use
type Synthesizer struct {
	gen     ai.Generator
	texts   Texts
	metrics *middleware.Metrics
	logger  *logrus.Logger
	opts    Options
}

// NewSynthesizer creates a synthesizer. gen and metrics may be nil; without
// a generator every reply comes from the fallback renderers.
func NewSynthesizer(gen ai.Generator, texts Texts, metrics *middleware.Metrics, logger *logrus.Logger, opts Options) *Synthesizer {
	if opts.MaxHistory < 0 {
		opts.MaxHistory = 0
	}
	return &Synthesizer{
		gen:     gen,
		texts:   texts,
		metrics: metrics,
		logger:  logger,
		opts:    opts,
	}
}

// Synthesize never fails. Refused intents are not handled here.
func (s *Synthesizer) Synthesize(ctx context.Context, in Input) Reply {
	var reply Reply
	switch in.Intent.Type {
	case models.IntentSearch:
		reply = s.search(ctx, in)
	case models.IntentCompare:
		reply = s.compare(ctx, in)
	case models.IntentDetails:
		reply = s.details(ctx, in)
	case models.IntentExplain:
		reply = s.explain(ctx, in)
	default:
		reply = s.general(ctx, in)
	}

	if strings.TrimSpace(reply.Message) == "" {
		reply.Message = s.texts.Message(i18n.MsgGeneralFallback, nil)
		reply.Source = SourceFixed
	}
	return reply
}

func (s *Synthesizer) search(ctx context.Context, in Input) Reply {
	phones := in.Candidates.Phones()
	params := in.Intent.Parameters
	if len(phones) == 0 {
		data := map[string]interface{}{}
		if params.Budget != nil {
			data["Budget"] = FormatPrice(*params.Budget)
		}
		return Reply{Message: s.texts.Message(i18n.MsgNoResults, data), Type: models.IntentSearch, Source: SourceFixed}
	}

	msg, src := s.first(ctx, models.IntentSearch,
		attempt{SourceModel, func(ctx context.Context) (string, error) {
			list, err := catalogJSON(phones)
			if err != nil {
				return "", err
			}
			budget := "any budget"
			if params.Budget != nil {
				budget = FormatPrice(*params.Budget)
			}
			prompt, err := renderPrompt("search.tmpl", searchData{
				Query:    quote(in.Text),
				Budget:   budget,
				Brands:   strings.Join(params.Brands, ", "),
				Features: strings.Join(params.Features, ", "),
				Count:    len(phones),
				Phones:   list,
			})
			if err != nil {
				return "", err
			}
			return s.generate(ctx, prompt, searchCheck(len(phones)))
		}},
		attempt{SourceFallback, func(context.Context) (string, error) {
			return renderSearch(phones, params.Budget), nil
		}},
	)
	return Reply{Message: msg, Type: models.IntentSearch, Phones: phones, Source: src}
}

func (s *Synthesizer) compare(ctx context.Context, in Input) Reply {
	phones := in.Candidates.Phones()
	missing := strings.Join(in.Unresolved, ", ")
	if len(phones) < 2 {
		return Reply{
			Message: s.texts.Message(i18n.MsgCompareNotFound, map[string]interface{}{"Missing": missing}),
			Type:    models.IntentCompare,
			Source:  SourceFixed,
		}
	}

	msg, src := s.first(ctx, models.IntentCompare,
		attempt{SourceModel, func(ctx context.Context) (string, error) {
			list, err := catalogJSON(phones)
			if err != nil {
				return "", err
			}
			prompt, err := renderPrompt("compare.tmpl", compareData{Query: quote(in.Text), Phones: list})
			if err != nil {
				return "", err
			}
			return s.generate(ctx, prompt, lengthCheck("compare"))
		}},
		attempt{SourceFallback, func(context.Context) (string, error) {
			return renderCompare(phones), nil
		}},
	)
	if missing != "" {
		msg = s.texts.Message(i18n.MsgComparePartial, map[string]interface{}{"Missing": missing}) + "\n\n" + msg
	}
	return Reply{Message: msg, Type: models.IntentCompare, Phones: phones, Source: src}
}

func (s *Synthesizer) details(ctx context.Context, in Input) Reply {
	phones := in.Candidates.Phones()
	if len(phones) == 0 {
		name := ""
		if len(in.Intent.Parameters.Models) > 0 {
			name = in.Intent.Parameters.Models[0]
		} else if len(in.Unresolved) > 0 {
			name = in.Unresolved[0]
		}
		return Reply{
			Message: s.texts.Message(i18n.MsgDetailsNotFound, map[string]interface{}{"Model": name}),
			Type:    models.IntentDetails,
			Source:  SourceFixed,
		}
	}

	phone := phones[0]
	msg, src := s.first(ctx, models.IntentDetails,
		attempt{SourceModel, func(ctx context.Context) (string, error) {
			data, err := catalogJSON(phone)
			if err != nil {
				return "", err
			}
			prompt, err := renderPrompt("details.tmpl", detailsData{Query: quote(in.Text), Phone: data})
			if err != nil {
				return "", err
			}
			return s.generate(ctx, prompt, lengthCheck("details"))
		}},
		attempt{SourceFallback, func(context.Context) (string, error) {
			return renderDetails(phone), nil
		}},
	)
	return Reply{Message: msg, Type: models.IntentDetails, Phones: phones, Source: src}
}

func (s *Synthesizer) explain(ctx context.Context, in Input) Reply {
	subject := in.Text
	if q := in.Intent.Parameters.Query; q != "" {
		subject = in.Text + " " + q
	}
	if e, ok := lookupExplanation(subject); ok {
		s.logger.WithField("term", e.term).Debug("Explanation served from table")
		return Reply{Message: e.text, Type: models.IntentExplain, Source: SourceTable}
	}

	msg, src := s.first(ctx, models.IntentExplain,
		attempt{SourceModel, func(ctx context.Context) (string, error) {
			prompt, err := renderPrompt("explain.tmpl", textData{Query: quote(in.Text)})
			if err != nil {
				return "", err
			}
			return s.generate(ctx, prompt, confidentCheck("explain"))
		}},
		attempt{SourceFallback, func(context.Context) (string, error) {
			return s.texts.Message(i18n.MsgExplainUnknown, nil), nil
		}},
	)
	return Reply{Message: msg, Type: models.IntentExplain, Source: src}
}

func (s *Synthesizer) general(ctx context.Context, in Input) Reply {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return Reply{Message: s.texts.Message(i18n.MsgClarification, nil), Type: models.IntentGeneral, Source: SourceFixed}
	}
	if intent.AsksCapabilities(text) {
		return Reply{Message: s.texts.Message(i18n.MsgCapabilities, nil), Type: models.IntentGeneral, Source: SourceFixed}
	}

	msg, src := s.first(ctx, models.IntentGeneral,
		attempt{SourceModel, func(ctx context.Context) (string, error) {
			prompt, err := renderPrompt("general.tmpl", textData{Query: quote(text), History: s.recent(in.History)})
			if err != nil {
				return "", err
			}
			return s.generate(ctx, prompt, confidentCheck("general"))
		}},
		attempt{SourceFallback, func(context.Context) (string, error) {
			return s.texts.Message(i18n.MsgGeneralFallback, nil), nil
		}},
	)
	return Reply{Message: msg, Type: models.IntentGeneral, Source: src}
}

// recent returns the last MaxHistory turns with text content
func (s *Synthesizer) recent(history []models.ConversationTurn) []models.ConversationTurn {
	var turns []models.ConversationTurn
	for _, t := range history {
		role := strings.ToLower(strings.TrimSpace(t.Role))
		content := strings.Join(strings.Fields(t.Content), " ")
		if content == "" || (role != "user" && role != "assistant") {
			continue
		}
		turns = append(turns, models.ConversationTurn{Role: role, Content: quote(content)})
	}
	if len(turns) > s.opts.MaxHistory {
		turns = turns[len(turns)-s.opts.MaxHistory:]
	}
	return turns
}

// first runs attempts in order and returns the first success. The last
// attempt is a fixed rendering and never fails.
func (s *Synthesizer) first(ctx context.Context, intentType models.IntentType, attempts ...attempt) (string, string) {
	for _, a := range attempts {
		text, err := a.run(ctx)
		if err == nil {
			return text, a.name
		}
		if errors.Is(err, errSkipped) {
			continue
		}
		reason := fallbackReason(err)
		s.metrics.RecordFallback(string(intentType), reason)
		s.logger.WithError(err).WithFields(logrus.Fields{
			"intent": intentType,
			"step":   a.name,
			"reason": reason,
		}).Warn("Generated reply rejected, falling back")
	}
	return "", ""
}

func (s *Synthesizer) generate(ctx context.Context, prompt string, check func(string) error) (string, error) {
	if s.gen == nil {
		return "", errSkipped
	}
	text, err := s.gen.Generate(ctx, prompt, systemPrompt)
	if err != nil {
		if errors.Is(err, ai.ErrNotConfigured) {
			return "", errSkipped
		}
		return "", err
	}
	text = strings.TrimSpace(text)
	if err := check(text); err != nil {
		return "", err
	}
	return text, nil
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ai.ErrThrottled):
		return "throttled"
	case errors.Is(err, ai.ErrEmptyResponse):
		return "empty"
	case errors.Is(err, errTooShort):
		return "too_short"
	case errors.Is(err, errCount):
		return "count_mismatch"
	case errors.Is(err, errLowQuality):
		return "low_quality"
	default:
		return "error"
	}
}
