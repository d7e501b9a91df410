// File: completion/openai.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Text completion provider backed by the OpenAI legacy completions endpoint.

package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/momentics/ncrelay/api"
)

const (
	DefaultBaseURL   = "https://api.openai.com/v1"
	DefaultModel     = "gpt-3.5-turbo-instruct"
	DefaultAPIKeyEnv = "OPENAI_API_KEY"
	DefaultTimeout   = 30 * time.Second
)

// Config describes how to reach the provider.
type Config struct {
	BaseURL    string        `yaml:"base_url"`
	Model      string        `yaml:"model"`
	APIKeyEnv  string        `yaml:"api_key_env"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// DefaultConfig returns the stock provider settings.
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		Model:     DefaultModel,
		APIKeyEnv: DefaultAPIKeyEnv,
		Timeout:   DefaultTimeout,
	}
}

// Client implements api.Completer.
type Client struct {
	api     openai.Client
	model   string
	timeout time.Duration
	hasKey  bool
	log     *zap.Logger
}

// Option customizes a Client.
type Option func(*clientOptions)

type clientOptions struct {
	log        *zap.Logger
	httpClient *http.Client
	apiKey     string
}

// WithLogger sets the client logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *clientOptions) { o.log = l }
}

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

// WithAPIKey sets the credential directly instead of reading cfg.APIKeyEnv.
func WithAPIKey(key string) Option {
	return func(o *clientOptions) { o.apiKey = key }
}

// New builds a client. A missing credential is not an error here: the relay
// can serve notices without it, and each completion call reports it instead.
func New(cfg Config, opts ...Option) *Client {
	o := clientOptions{log: zap.NewNop()}
	for _, fn := range opts {
		fn(&o)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = DefaultAPIKeyEnv
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	key := o.apiKey
	if key == "" {
		key = strings.TrimSpace(os.Getenv(cfg.APIKeyEnv))
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if o.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(o.httpClient))
	}
	if key == "" {
		o.log.Warn("completion credential not set", zap.String("env", cfg.APIKeyEnv))
	}
	return &Client{
		api:     openai.NewClient(reqOpts...),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		hasKey:  key != "",
		log:     o.log,
	}
}

// Complete sends prompt with params and returns the first choice's text.
func (c *Client) Complete(ctx context.Context, prompt string, params api.Params) (string, error) {
	if !c.hasKey {
		return "", api.NewCompletionError(api.CompletionCredential, api.ErrCompletionCredential)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.CompletionNewParams{
		Model:            openai.CompletionNewParamsModel(c.model),
		Prompt:           openai.CompletionNewParamsPromptUnion{OfString: openai.String(prompt)},
		MaxTokens:        openai.Int(int64(params.MaxTokens)),
		Temperature:      openai.Float(params.Temperature),
		TopP:             openai.Float(params.TopP),
		FrequencyPenalty: openai.Float(params.FrequencyPenalty),
		PresencePenalty:  openai.Float(params.PresencePenalty),
	}

	start := time.Now()
	resp, err := c.api.Completions.New(ctx, req)
	if err != nil {
		return "", c.classify(ctx, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", api.NewCompletionError(api.CompletionMissingField,
			fmt.Errorf("%w: choices", api.ErrCompletionMissingField))
	}
	c.log.Debug("completion done",
		zap.String("model", c.model),
		zap.Duration("took", time.Since(start)),
		zap.Int("choices", len(resp.Choices)))
	return resp.Choices[0].Text, nil
}

func (c *Client) classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return api.NewCompletionError(api.CompletionTimeout, err)
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		c.log.Warn("completion rejected", zap.Int("status", apiErr.StatusCode), zap.Error(err))
	}
	return api.NewCompletionError(api.CompletionNetwork, err)
}
