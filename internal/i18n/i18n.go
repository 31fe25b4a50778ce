package i18n

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/krishanki/PhonePixie/internal/config"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var locales embed.FS

// Localizer manages the fixed message bundle
type Localizer struct {
	bundle          *i18n.Bundle
	defaultLanguage string
	localizers      map[string]*i18n.Localizer
}

// NewLocalizer creates a new localizer from the embedded message files
func NewLocalizer(cfg *config.I18nConfig) (*Localizer, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	languages := cfg.Languages
	if len(languages) == 0 {
		languages = []string{"en"}
	}
	defaultLanguage := cfg.DefaultLanguage
	if defaultLanguage == "" {
		defaultLanguage = languages[0]
	}

	localizers := make(map[string]*i18n.Localizer)
	for _, lang := range languages {
		path := fmt.Sprintf("locales/%s.json", lang)
		buf, err := locales.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load language file %s: %w", lang, err)
		}
		if _, err := bundle.ParseMessageFileBytes(buf, path); err != nil {
			return nil, fmt.Errorf("failed to parse language file %s: %w", lang, err)
		}
		localizers[lang] = i18n.NewLocalizer(bundle, lang)
	}
	if _, ok := localizers[defaultLanguage]; !ok {
		return nil, fmt.Errorf("default language %s is not loaded", defaultLanguage)
	}

	return &Localizer{
		bundle:          bundle,
		defaultLanguage: defaultLanguage,
		localizers:      localizers,
	}, nil
}

// Get returns localized message
func (l *Localizer) Get(lang, messageID string, data map[string]interface{}) string {
	localizer, exists := l.localizers[lang]
	if !exists {
		localizer = l.localizers[l.defaultLanguage]
	}

	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		return messageID // Fallback to message ID
	}

	return msg
}

// Message returns a message in the default language
func (l *Localizer) Message(messageID string, data map[string]interface{}) string {
	return l.Get(l.defaultLanguage, messageID, data)
}

// Message IDs
const (
	MsgRefusalAdversarial = "refusal_adversarial"
	MsgRefusalOffTopic    = "refusal_off_topic"
	MsgRefusalToxicity    = "refusal_toxicity"
	MsgRefusalMalformed   = "refusal_malformed"
	MsgNoResults          = "no_results"
	MsgCompareNotFound    = "compare_not_found"
	MsgComparePartial     = "compare_partial"
	MsgDetailsNotFound    = "details_not_found"
	MsgExplainUnknown     = "explain_unknown"
	MsgClarification      = "clarification"
	MsgGeneralFallback    = "general_fallback"
	MsgCapabilities       = "capabilities"
	MsgRateLimitExceeded  = "rate_limit_exceeded"
	MsgInvalidRequest     = "invalid_request"
	MsgInternalError      = "internal_error"
)
