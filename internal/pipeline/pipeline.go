// Package pipeline sequences one chat turn: safety gate, intent
// classification, catalog query and reply synthesis.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/krishanki/PhonePixie/internal/i18n"
	"github.com/krishanki/PhonePixie/internal/middleware"
	"github.com/krishanki/PhonePixie/internal/models"
	"github.com/krishanki/PhonePixie/internal/query"
	"github.com/krishanki/PhonePixie/internal/safety"
	"github.com/krishanki/PhonePixie/internal/synth"
	"github.com/krishanki/PhonePixie/pkg/logger"
	"github.com/sirupsen/logrus"
)

// ErrInternal marks a fault the caller must answer with the generic
// internal error payload
var ErrInternal = errors.New("internal fault")

// Gate screens raw text before anything else looks at it
type Gate interface {
	Classify(text string) safety.Verdict
}

// IntentClassifier maps text to a QueryIntent and never fails
type IntentClassifier interface {
	Classify(ctx context.Context, text string, verdict safety.Verdict) models.QueryIntent
}

// Engine answers catalog queries
type Engine interface {
	Query(params models.IntentParameters) (query.Result, error)
	Resolve(names []string) (models.CandidateSet, []string, error)
}

// Synthesizer writes the reply text for a non-refused intent
type Synthesizer interface {
	Synthesize(ctx context.Context, in synth.Input) synth.Reply
}

// Texts looks up fixed messages
type Texts interface {
	Message(messageID string, data map[string]interface{}) string
}

// Input is one validated chat request
type Input struct {
	Text          string
	ComparePhones []*models.Phone
	History       []models.ConversationTurn
	RequestID     string
	ClientKey     string
}

// Pipeline is the request orchestrator
type Pipeline struct {
	gate       Gate
	classifier IntentClassifier
	engine     Engine
	synth      Synthesizer
	texts      Texts
	metrics    *middleware.Metrics
	logger     *logrus.Logger
}

// New creates a pipeline. metrics may be nil.
func New(gate Gate, classifier IntentClassifier, engine Engine, synthesizer Synthesizer, texts Texts, metrics *middleware.Metrics, logger *logrus.Logger) *Pipeline {
	return &Pipeline{
		gate:       gate,
		classifier: classifier,
		engine:     engine,
		synth:      synthesizer,
		texts:      texts,
		metrics:    metrics,
		logger:     logger,
	}
}

// Run answers one chat turn. Refusals are successful responses; the only
// error is ErrInternal (wrapped), which carries nothing the client may see.
func (p *Pipeline) Run(ctx context.Context, in Input) (models.ChatResponse, error) {
	start := time.Now()
	log := logger.WithRequest(p.logger, in.RequestID, in.ClientKey)

	verdict := p.gate.Classify(in.Text)
	if verdict.Blocked {
		p.metrics.RecordSafetyBlock(string(verdict.Reason))
		p.metrics.RecordRequest("refused", time.Since(start))
		log.WithFields(logrus.Fields{
			"category": verdict.Reason,
			"rule":     verdict.Rule,
		}).Info("Message blocked by safety gate")
		return p.refusal(verdict.Reason), nil
	}

	intent := p.intent(ctx, in, verdict)
	p.metrics.RecordIntent(string(intent.Type), intent.Source)
	log = log.WithFields(logrus.Fields{
		"intent":     intent.Type,
		"confidence": intent.Confidence,
		"source":     intent.Source,
	})

	if intent.Type.Refused() {
		p.metrics.RecordRequest("refused", time.Since(start))
		log.Info("Message refused by classifier")
		category := safety.CategoryAdversarial
		if intent.Type == models.IntentIrrelevant {
			category = safety.CategoryOffTopic
		}
		return p.refusal(category), nil
	}

	sin := synth.Input{Intent: intent, Text: in.Text, History: in.History}
	var additional []*models.Phone
	if err := p.candidates(in, &sin, &additional); err != nil {
		p.metrics.RecordRequest("error", time.Since(start))
		log.WithError(err).Error("Catalog query failed")
		return models.ChatResponse{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	p.metrics.ObserveCandidates(string(intent.Type), sin.Candidates.Len())

	reply := p.synth.Synthesize(ctx, sin)
	resp := models.ChatResponse{
		Message: reply.Message,
		Type:    models.ResponseType(reply.Type),
		Phones:  reply.Phones,
	}
	if intent.Type == models.IntentSearch && len(reply.Phones) > 0 {
		resp.AdditionalPhones = additional
	}

	p.metrics.RecordRequest("ok", time.Since(start))
	log.WithFields(logrus.Fields{
		"reply_source": reply.Source,
		"phones":       len(resp.Phones),
		"duration_ms":  time.Since(start).Milliseconds(),
	}).Info("Chat turn answered")
	return resp, nil
}

// intent classifies the text. Phones picked by the client are compared
// directly without asking the classifier.
func (p *Pipeline) intent(ctx context.Context, in Input, verdict safety.Verdict) models.QueryIntent {
	if len(in.ComparePhones) > 0 {
		return models.QueryIntent{
			Type:       models.IntentCompare,
			Confidence: 100,
			Parameters: models.IntentParameters{Query: strings.TrimSpace(in.Text)},
			Source:     "client",
		}
	}
	return p.classifier.Classify(ctx, in.Text, verdict)
}

func (p *Pipeline) candidates(in Input, sin *synth.Input, additional *[]*models.Phone) error {
	params := sin.Intent.Parameters
	switch sin.Intent.Type {
	case models.IntentSearch:
		res, err := p.engine.Query(params)
		if err != nil {
			return err
		}
		sin.Candidates = res.Candidates
		*additional = res.Additional

	case models.IntentCompare:
		if len(in.ComparePhones) > 0 {
			sin.Candidates = models.NewCandidateSet(in.ComparePhones)
			return nil
		}
		set, unresolved, err := p.engine.Resolve(params.Models)
		if err != nil {
			return err
		}
		sin.Candidates = set
		sin.Unresolved = unresolved

	case models.IntentDetails:
		set, unresolved, err := p.engine.Resolve(params.Models)
		if err != nil {
			return err
		}
		if set.Len() > 1 {
			set.Candidates = set.Candidates[:1]
		}
		sin.Candidates = set
		sin.Unresolved = unresolved
	}
	return nil
}

func (p *Pipeline) refusal(category safety.Category) models.ChatResponse {
	id := i18n.MsgRefusalOffTopic
	switch category {
	case safety.CategoryAdversarial:
		id = i18n.MsgRefusalAdversarial
	case safety.CategoryToxicity:
		id = i18n.MsgRefusalToxicity
	case safety.CategoryMalformed:
		id = i18n.MsgRefusalMalformed
	}
	return models.ChatResponse{Message: p.texts.Message(id, nil), Type: models.ResponseRefusal}
}
