package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/abhisek/skilltrack/internal/coach"
	"github.com/abhisek/skilltrack/internal/llm"
	"github.com/abhisek/skilltrack/internal/proofs"
	"github.com/abhisek/skilltrack/internal/roadmap"
)

type apiError struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

func abortError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, errorEnvelope{Error: apiError{Message: msg, Code: code}})
}

// fail maps err onto a status and error envelope. Unknown errors are
// logged and reported as 500 without detail.
func (s *Server) fail(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorEnvelope{Error: apiError{
			Message: "validation failed",
			Code:    "validation_error",
			Fields:  s.validation.fields(verrs),
		}})
		return
	}

	status, code := classify(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "path", c.FullPath(), "error", err)
		abortError(c, status, code, "internal server error")
		return
	}
	abortError(c, status, code, err.Error())
}

func classify(err error) (int, string) {
	var (
		unavailable *llm.ErrProviderUnavailable
		rateLimited *llm.ErrRateLimit
	)
	switch {
	case errors.Is(err, errBadBody):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, roadmap.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, roadmap.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, roadmap.ErrInvalidState), errors.Is(err, coach.ErrEmptyRoadmap):
		return http.StatusUnprocessableEntity, "invalid_state"
	case errors.Is(err, roadmap.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, roadmap.ErrNotEnrolled):
		return http.StatusForbidden, "not_enrolled"
	case errors.Is(err, proofs.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, proofs.ErrNotImage), errors.Is(err, proofs.ErrEmpty):
		return http.StatusBadRequest, "invalid_proof"
	case errors.As(err, &rateLimited):
		return http.StatusTooManyRequests, "llm_rate_limited"
	case errors.As(err, &unavailable), errors.Is(err, llm.ErrNotConfigured):
		return http.StatusServiceUnavailable, "llm_unavailable"
	case errors.Is(err, llm.ErrRefused):
		return http.StatusUnprocessableEntity, "llm_refused"
	}
	var invalid *llm.ErrInvalidResponse
	var truncated *llm.ErrMaxTokensExceeded
	if errors.As(err, &invalid) || errors.As(err, &truncated) {
		return http.StatusBadGateway, "llm_bad_response"
	}
	return http.StatusInternalServerError, "internal"
}
