package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/krishanki/PhonePixie/internal/i18n"
	"github.com/krishanki/PhonePixie/internal/middleware"
	"github.com/krishanki/PhonePixie/internal/models"
	"github.com/krishanki/PhonePixie/internal/pipeline"
	"github.com/krishanki/PhonePixie/pkg/markdown"
	"github.com/sirupsen/logrus"
)

// Runner answers one chat turn
type Runner interface {
	Run(ctx context.Context, in pipeline.Input) (models.ChatResponse, error)
}

// Texts looks up fixed messages
type Texts interface {
	Message(messageID string, data map[string]interface{}) string
}

// ChatHandler serves POST /api/chat
type ChatHandler struct {
	runner       Runner
	texts        Texts
	maxBodyBytes int64
	logger       *logrus.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(runner Runner, texts Texts, maxBodyBytes int64, logger *logrus.Logger) *ChatHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = 1 << 20
	}
	return &ChatHandler{
		runner:       runner,
		texts:        texts,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.RequestIDFromContext(r.Context())

	req, reason := h.decode(w, r)
	if reason != "" {
		h.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"reason":     reason,
		}).Info("Rejected malformed chat request")
		h.writeError(w, http.StatusBadRequest, i18n.MsgInvalidRequest, map[string]interface{}{"Reason": reason})
		return
	}

	resp, err := h.runner.Run(r.Context(), pipeline.Input{
		Text:          *req.Message,
		ComparePhones: req.ComparePhones,
		History:       req.History,
		RequestID:     requestID,
		ClientKey:     middleware.ClientKey(r),
	})
	if err != nil {
		h.logger.WithError(err).WithField("request_id", requestID).Error("Chat turn failed")
		h.writeError(w, http.StatusInternalServerError, i18n.MsgInternalError, nil)
		return
	}

	if r.URL.Query().Get("format") == "html" {
		resp.HTML = markdown.ToHTML(resp.Message)
	}
	writeJSON(w, http.StatusOK, resp)
}

// decode returns the request or, for a malformed body, the reason it was
// rejected. An empty message is valid.
func (h *ChatHandler) decode(w http.ResponseWriter, r *http.Request) (*models.ChatRequest, string) {
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	defer body.Close()

	var req models.ChatRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		var sizeErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return nil, "request body is empty"
		case errors.As(err, &sizeErr):
			return nil, "request body is too large"
		case errors.As(err, &typeErr):
			return nil, "field " + typeErr.Field + " has the wrong type"
		default:
			return nil, "body is not valid JSON"
		}
	}
	if req.Message == nil {
		return nil, "message is required"
	}
	return &req, ""
}

func (h *ChatHandler) writeError(w http.ResponseWriter, status int, messageID string, data map[string]interface{}) {
	writeJSON(w, status, models.ChatResponse{
		Message: h.texts.Message(messageID, data),
		Type:    models.ResponseError,
	})
}

// RateLimited answers a request refused by the rate limiter
func RateLimited(texts Texts) func(w http.ResponseWriter, r *http.Request, d middleware.Decision) {
	return func(w http.ResponseWriter, r *http.Request, d middleware.Decision) {
		writeJSON(w, http.StatusTooManyRequests, models.ChatResponse{
			Message: texts.Message(i18n.MsgRateLimitExceeded, map[string]interface{}{"Seconds": d.RetryAfter(time.Now())}),
			Type:    models.ResponseError,
		})
	}
}

// InternalError answers a request whose handler panicked
func InternalError(texts Texts) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, models.ChatResponse{
			Message: texts.Message(i18n.MsgInternalError, nil),
			Type:    models.ResponseError,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
