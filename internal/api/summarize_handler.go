package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/taskdeck/taskdeck-api/internal/api/shared"
)

// defaultSummarySentences is how many leading sentences the stub keeps when
// the request does not say otherwise.
const defaultSummarySentences = 2

// SummarizeHandler handles the stub text summarization endpoint.
// It truncates the input to its first sentences rather than calling a
// language model; the endpoint exists so clients can integrate against the
// final contract before a real summarizer lands.
type SummarizeHandler struct {
	validator *validator.Validate
	logger    *slog.Logger
}

// NewSummarizeHandler creates a new SummarizeHandler.
func NewSummarizeHandler(log *slog.Logger) *SummarizeHandler {
	if log == nil {
		log = slog.Default()
	}

	return &SummarizeHandler{
		validator: validator.New(),
		logger:    log.With(slog.String("component", "summarize_handler")),
	}
}

// Summarize handles POST /api/summarize.
func (h *SummarizeHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req SummarizeRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	maxSentences := req.MaxSentences
	if maxSentences == 0 {
		maxSentences = defaultSummarySentences
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SummarizeResponse{
		Summary: firstSentences(req.Text, maxSentences),
	})
}

// firstSentences returns the first n sentences of text, where a sentence
// ends at '.', '!' or '?'. Text with fewer terminators is returned whole.
func firstSentences(text string, n int) string {
	text = strings.TrimSpace(text)
	count := 0
	for i, r := range text {
		switch r {
		case '.', '!', '?':
			count++
			if count == n {
				return strings.TrimSpace(text[:i+1])
			}
		}
	}
	return text
}
