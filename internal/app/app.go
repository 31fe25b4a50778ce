// Package app builds the chat pipeline and its collaborators from
// configuration.
package app

import (
	"fmt"

	"github.com/krishanki/PhonePixie/internal/catalog"
	"github.com/krishanki/PhonePixie/internal/config"
	"github.com/krishanki/PhonePixie/internal/i18n"
	"github.com/krishanki/PhonePixie/internal/intent"
	"github.com/krishanki/PhonePixie/internal/middleware"
	"github.com/krishanki/PhonePixie/internal/pipeline"
	"github.com/krishanki/PhonePixie/internal/query"
	"github.com/krishanki/PhonePixie/internal/safety"
	"github.com/krishanki/PhonePixie/internal/services/ai"
	"github.com/krishanki/PhonePixie/internal/services/cache"
	"github.com/krishanki/PhonePixie/internal/synth"
	"github.com/sirupsen/logrus"
)

// App holds the long-lived components of one process
type App struct {
	Config   *config.Config
	Catalog  *catalog.Store
	Texts    *i18n.Localizer
	Pipeline *pipeline.Pipeline
}

// New loads the catalog and wires the pipeline. metrics may be nil.
func New(cfg *config.Config, metrics *middleware.Metrics, logger *logrus.Logger) (*App, error) {
	store, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	metrics.SetCatalogEntries(store.Len())
	logger.WithFields(logrus.Fields{
		"path":    cfg.Catalog.Path,
		"entries": store.Len(),
		"brands":  len(store.Brands()),
	}).Info("Catalog loaded")

	texts, err := i18n.NewLocalizer(&cfg.I18n)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize i18n: %w", err)
	}

	var gen ai.Generator
	if cfg.Generation.GenerationEnabled() {
		gen = ai.NewClient(cfg.Generation, cache.NewCache(&cfg.Cache, logger), metrics, logger)
	} else {
		logger.Warn("Generation endpoint not configured, replies use the built-in renderers")
	}

	gate := safety.NewGate(store.Brands())
	rules := intent.NewRuleClassifier(store.Brands(), store)
	classifier := intent.NewClassifier(gen, rules, gate, cfg.Generation.ClassifyTimeout, logger)
	engine := query.NewEngine(store, query.Options{
		CandidateCap:  cfg.Catalog.CandidateCap,
		AdditionalCap: cfg.Catalog.AdditionalCap,
		MaxCompare:    cfg.Catalog.MaxCompare,
	})
	synthesizer := synth.NewSynthesizer(gen, texts, metrics, logger, synth.Options{MaxHistory: cfg.Context.MaxHistory})

	return &App{
		Config:   cfg,
		Catalog:  store,
		Texts:    texts,
		Pipeline: pipeline.New(gate, classifier, engine, synthesizer, texts, metrics, logger),
	}, nil
}
