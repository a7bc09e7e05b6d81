package openai

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/yungbote/shortcraft-backend/internal/observability"
	"github.com/yungbote/shortcraft-backend/internal/platform/envutil"
	"github.com/yungbote/shortcraft-backend/internal/platform/logger"
)

const (
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 60 * time.Second
)

type GenerateRequest struct {
	// Stage selects the per-stage model override and labels telemetry.
	Stage       string
	System      string
	User        string
	Temperature float64
}

// Client is the text-generation service: prompt in, raw text out. Calls are
// never retried.
type Client interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

type Config struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	// StageModels overrides the model per stage ("hooks" -> "gpt-4o").
	StageModels map[string]string
	Timeout     time.Duration
	// RPS <= 0 disables throttling.
	RPS   float64
	Burst int
}

// ConfigFromEnv reads OPENAI_* variables. Per-stage models come from
// OPENAI_MODEL_<STAGE>, e.g. OPENAI_MODEL_EDITING_SCRIPT.
func ConfigFromEnv(stages []string) Config {
	cfg := Config{
		APIKey:       envutil.String("OPENAI_API_KEY", ""),
		BaseURL:      envutil.String("OPENAI_BASE_URL", ""),
		DefaultModel: envutil.String("OPENAI_MODEL", DefaultModel),
		StageModels:  map[string]string{},
		Timeout:      envutil.Seconds("OPENAI_TIMEOUT_SECONDS", DefaultTimeout),
		RPS:          envutil.Float("OPENAI_RPS", 0),
		Burst:        envutil.Int("OPENAI_BURST", 1),
	}
	for _, s := range stages {
		key := "OPENAI_MODEL_" + strings.ToUpper(strings.ReplaceAll(s, "-", "_"))
		if m := envutil.String(key, ""); m != "" {
			cfg.StageModels[s] = m
		}
	}
	return cfg
}

func (c Config) ModelFor(stage string) string {
	if m := strings.TrimSpace(c.StageModels[stage]); m != "" {
		return m
	}
	if m := strings.TrimSpace(c.DefaultModel); m != "" {
		return m
	}
	return DefaultModel
}

type client struct {
	log     *logger.Logger
	cfg     Config
	api     sdk.Client
	limiter *rate.Limiter
}

func NewClient(cfg Config, log *logger.Logger) (Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}

	limit := rate.Inf
	burst := cfg.Burst
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
		if burst <= 0 {
			burst = 1
		}
	}

	return &client{
		log:     log.With("service", "OpenAIClient"),
		cfg:     cfg,
		api:     sdk.NewClient(opts...),
		limiter: rate.NewLimiter(limit, burst),
	}, nil
}

func (c *client) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	model := c.cfg.ModelFor(req.Stage)
	ctx, span := observability.Tracer().Start(ctx, "openai.chat_completion",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("llm.stage", req.Stage),
			attribute.String("llm.model", model),
			attribute.Float64("llm.temperature", req.Temperature),
		),
	)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rate limit wait")
		return "", fmt.Errorf("openai: rate limit wait: %w", err)
	}

	start := time.Now()
	resp, err := c.api.Chat.Completions.New(ctx, sdk.ChatCompletionNewParams{
		Model: sdk.ChatModel(model),
		Messages: []sdk.ChatCompletionMessageParamUnion{
			sdk.SystemMessage(req.System),
			sdk.UserMessage(req.User),
		},
		Temperature: sdk.Float(req.Temperature),
	})
	dur := time.Since(start)
	if err != nil {
		status := statusOf(err)
		observability.Current().ObserveLLMRequest(req.Stage, model, status, dur, 0, 0)
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
		c.log.Warn("generation call failed",
			"stage", req.Stage,
			"model", model,
			"status", status,
			"duration_ms", dur.Milliseconds(),
			"error", err,
		)
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}

	observability.Current().ObserveLLMRequest(req.Stage, model, "200", dur, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	span.SetAttributes(
		attribute.Int64("llm.input_tokens", resp.Usage.PromptTokens),
		attribute.Int64("llm.output_tokens", resp.Usage.CompletionTokens),
	)
	if len(resp.Choices) == 0 {
		span.SetStatus(codes.Error, "no choices")
		return "", fmt.Errorf("openai: response had no choices")
	}
	c.log.Debug("generation call done",
		"stage", req.Stage,
		"model", model,
		"duration_ms", dur.Milliseconds(),
		"output_tokens", resp.Usage.CompletionTokens,
	)
	return resp.Choices[0].Message.Content, nil
}

func statusOf(err error) string {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return strconv.Itoa(apiErr.StatusCode)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	return "error"
}
