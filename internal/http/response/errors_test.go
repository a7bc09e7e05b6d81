package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/shortcraft-backend/internal/domain/pipeline"
	"github.com/yungbote/shortcraft-backend/internal/platform/apierr"
)

func render(t *testing.T, err error) (int, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	RespondDomainError(c, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestQuotaErrorUsesFlatBody(t *testing.T) {
	status, body := render(t, pipeline.QuotaExceeded("generate_editing_script", pipeline.QuotaDetails{
		Plan:      "FREE",
		Limits:    pipeline.QuotaLimits{PerDay: 2, PerWeek: 5},
		Usage:     pipeline.QuotaUsage{Today: 2, Week: 2},
		Remaining: pipeline.QuotaUsage{Today: 0, Week: 3},
	}))
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "QUOTA_EXCEEDED", body["code"])
	assert.Equal(t, "FREE", body["plan"])
	assert.Contains(t, body, "limits")
	assert.Contains(t, body, "remaining")
}

func TestMissingDependencyNamesStage(t *testing.T) {
	status, body := render(t, fmt.Errorf("wrapped: %w", pipeline.MissingDependency("generate_storyboard", pipeline.StageHooks)))
	assert.Equal(t, http.StatusConflict, status)
	e := body["error"].(map[string]any)
	assert.Equal(t, "MISSING_DEPENDENCY", e["code"])
	assert.Equal(t, "hooks", e["stage"])
}

func TestMalformedCarriesRawExcerpt(t *testing.T) {
	status, body := render(t, pipeline.MalformedOutput("generate_hooks", "not json at all", errors.New("decode")))
	assert.Equal(t, http.StatusBadGateway, status)
	e := body["error"].(map[string]any)
	assert.Equal(t, "MALFORMED_GENERATION_OUTPUT", e["code"])
	assert.Equal(t, "not json at all", e["raw"])
}

func TestInternalAndUnknownErrorsAreMasked(t *testing.T) {
	status, body := render(t, pipeline.Wrap(pipeline.CodeInternal, "op", errors.New("dial tcp 10.0.0.3:5432")))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal error", body["error"].(map[string]any)["message"])

	status, body = render(t, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL", body["error"].(map[string]any)["code"])
}

func TestAPIErrorKeepsItsStatus(t *testing.T) {
	status, body := render(t, apierr.BadRequest("INVALID_PROJECT_ID", errors.New("invalid UUID length: 3")))
	assert.Equal(t, http.StatusBadRequest, status)
	e := body["error"].(map[string]any)
	assert.Equal(t, "INVALID_PROJECT_ID", e["code"])
	assert.Equal(t, "invalid UUID length: 3", e["message"])
}
