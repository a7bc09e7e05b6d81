package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/shortcraft-backend/internal/domain/pipeline"
	"github.com/yungbote/shortcraft-backend/internal/platform/apierr"
)

// QuotaBody is the flat body clients read plan usage from on a 429.
type QuotaBody struct {
	Error     string               `json:"error"`
	Code      string               `json:"code"`
	Plan      string               `json:"plan"`
	Limits    pipeline.QuotaLimits `json:"limits"`
	Usage     pipeline.QuotaUsage  `json:"usage"`
	Remaining pipeline.QuotaUsage  `json:"remaining"`
}

var statusByCode = map[pipeline.ErrorCode]int{
	pipeline.CodeUnauthorized:      http.StatusUnauthorized,
	pipeline.CodeNotFound:          http.StatusNotFound,
	pipeline.CodeValidation:        http.StatusBadRequest,
	pipeline.CodeMissingDependency: http.StatusConflict,
	pipeline.CodeQuotaExceeded:     http.StatusTooManyRequests,
	pipeline.CodeMalformedOutput:   http.StatusBadGateway,
	pipeline.CodeGenerationFailure: http.StatusBadGateway,
	pipeline.CodeConflict:          http.StatusConflict,
	pipeline.CodeInternal:          http.StatusInternalServerError,
}

var wireCode = map[pipeline.ErrorCode]string{
	pipeline.CodeUnauthorized:      "UNAUTHORIZED",
	pipeline.CodeNotFound:          "NOT_FOUND",
	pipeline.CodeValidation:        "VALIDATION",
	pipeline.CodeMissingDependency: "MISSING_DEPENDENCY",
	pipeline.CodeQuotaExceeded:     "QUOTA_EXCEEDED",
	pipeline.CodeMalformedOutput:   "MALFORMED_GENERATION_OUTPUT",
	pipeline.CodeGenerationFailure: "GENERATION_SERVICE_FAILURE",
	pipeline.CodeConflict:          "CONFLICT",
	pipeline.CodeInternal:          "INTERNAL",
}

// StatusFor maps a pipeline error code to its HTTP status.
func StatusFor(code pipeline.ErrorCode) int {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// RespondDomainError writes err using its pipeline code, or the status of an
// apierr.Error. Internal errors never leak their cause.
func RespondDomainError(c *gin.Context, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		RespondError(c, ae.Status, ae.Code, ae.Err)
		return
	}
	pe, ok := pipeline.AsError(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, ErrorEnvelope{Error: APIError{Message: "internal error", Code: wireCode[pipeline.CodeInternal]}})
		return
	}
	status := StatusFor(pe.Code)
	code := wireCode[pe.Code]
	if code == "" {
		code = wireCode[pipeline.CodeInternal]
	}

	if pe.Code == pipeline.CodeQuotaExceeded && pe.Quota != nil {
		c.JSON(status, QuotaBody{
			Error:     pe.Message,
			Code:      code,
			Plan:      pe.Quota.Plan,
			Limits:    pe.Quota.Limits,
			Usage:     pe.Quota.Usage,
			Remaining: pe.Quota.Remaining,
		})
		return
	}

	msg := pe.Message
	if pe.Code == pipeline.CodeInternal || msg == "" {
		msg = "internal error"
		if pe.Code != pipeline.CodeInternal {
			msg = pe.Error()
		}
	}
	c.JSON(status, ErrorEnvelope{Error: APIError{
		Message: msg,
		Code:    code,
		Stage:   string(pe.Stage),
		Raw:     pe.Raw,
	}})
}
