package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taicc-readiness/internal/llm"
	"taicc-readiness/internal/report"
	"taicc-readiness/internal/scoring"
	"taicc-readiness/internal/service"
	"taicc-readiness/internal/session"
	"taicc-readiness/utilities"
)

const remediation = "Text generation is not configured. Set GEMINI_API_KEY and restart the service."

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, session.ErrPaymentPending):
		return http.StatusPaymentRequired
	case errors.Is(err, service.ErrUnknownSelection),
		errors.Is(err, service.ErrUnknownQuestion),
		errors.Is(err, service.ErrUnknownChoice),
		errors.Is(err, service.ErrIncompleteAnswers),
		errors.Is(err, session.ErrInvalidScore),
		errors.Is(err, scoring.ErrNoAnswers),
		errors.Is(err, scoring.ErrScoreInvalid):
		return http.StatusBadRequest
	case errors.Is(err, report.ErrGeneration),
		errors.Is(err, service.ErrPaymentGateway):
		return http.StatusBadGateway
	case errors.Is(err, llm.ErrTextGenerationUnavailable),
		errors.Is(err, service.ErrResultsUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		utilities.Error("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(code, gin.H{"error": "internal error"})
		return
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

// RequireReady answers 503 while text generation is unavailable.
func RequireReady(svc service.AssessmentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Ready(); err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "remediation": remediation})
			return
		}
		c.Next()
	}
}
