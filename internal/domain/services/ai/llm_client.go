package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"phonetracer/internal/config"
	"phonetracer/internal/domain/models"
	"phonetracer/internal/metrics"
	"phonetracer/pkg/logger"
)

var (
	// ErrGeneratorDisabled is returned when no provider is configured
	ErrGeneratorDisabled = errors.New("text generator is not configured")
	// ErrGeneratorUnavailable is returned while the provider is in the error state
	ErrGeneratorUnavailable = errors.New("text generator is unavailable")
	// ErrEmptyCompletion is returned when the model produced no text
	ErrEmptyCompletion = errors.New("text generator returned no text")
	// ErrRateLimited is returned when the local call budget is exhausted
	ErrRateLimited = errors.New("text generator rate limit exceeded")
)

// GenerationRequest is a single prompt for the text generator
type GenerationRequest struct {
	System    string
	Prompt    string
	History   []models.ChatTurn
	MaxTokens int
}

// TextGenerator produces free text for a prompt. Any error means
// "no text available"; callers fall back to rule-based output.
type TextGenerator interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
	ModelName() string
}

// StatusReporter exposes the generator lifecycle state
type StatusReporter interface {
	Status() models.LLMStatus
}

// Provider names accepted in configuration
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderLocal  = "local"
)

const (
	defaultOllamaURL = "http://localhost:11434/v1"
	defaultLocalURL  = "http://localhost:8080/v1"
	defaultTimeout   = 60 * time.Second
)

// LLMProvider is an OpenAI-compatible text generator that connects lazily
// on first use. Its state is queryable at any time, including while a
// connection attempt is in progress.
type LLMProvider struct {
	cfg     config.LLMConfig
	logger  *logger.Logger
	limiter *rate.Limiter
	now     func() time.Time

	loadMu sync.Mutex // serialises initialisation

	mu       sync.RWMutex // guards the fields below
	state    models.LLMState
	client   *openai.Client
	lastErr  error
	failedAt time.Time
	loadedAt time.Time
}

// NewLLMProvider creates a provider from configuration. Nothing is contacted
// until Load or Generate is called.
func NewLLMProvider(cfg config.LLMConfig, log *logger.Logger) *LLMProvider {
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Model == "" {
		switch cfg.Provider {
		case ProviderOllama:
			cfg.Model = "llama3.2"
		case ProviderLocal:
			cfg.Model = "local-model"
		default:
			cfg.Model = openai.GPT4oMini
		}
	}
	if cfg.BaseURL == "" {
		switch cfg.Provider {
		case ProviderOllama:
			cfg.BaseURL = defaultOllamaURL
		case ProviderLocal:
			cfg.BaseURL = defaultLocalURL
		}
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	p := &LLMProvider{
		cfg:     cfg,
		logger:  log.WithComponent("llm-provider"),
		limiter: rate.NewLimiter(limit, burst),
		now:     time.Now,
		state:   models.LLMStateUnloaded,
	}
	if p.disabled() {
		p.state = models.LLMStateDisabled
	}
	return p
}

func (p *LLMProvider) disabled() bool {
	switch p.cfg.Provider {
	case "", "none", "disabled":
		return true
	}
	return false
}

// ModelName returns the configured model identifier
func (p *LLMProvider) ModelName() string {
	return p.cfg.Model
}

// Status returns a snapshot of the provider state
func (p *LLMProvider) Status() models.LLMStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()

	st := models.LLMStatus{State: p.state}
	if p.state == models.LLMStateDisabled {
		return st
	}
	st.Provider = p.cfg.Provider
	st.ModelName = p.cfg.Model
	if p.lastErr != nil && p.state == models.LLMStateError {
		st.Error = p.lastErr.Error()
	}
	if !p.loadedAt.IsZero() {
		t := p.loadedAt
		st.LoadedAt = &t
	}
	return st
}

// Load initialises the client. It is safe to call concurrently and is a
// no-op once the provider is ready. After a failure, new attempts are
// refused until RetryAfter has elapsed.
func (p *LLMProvider) Load(ctx context.Context) error {
	_, err := p.load(ctx)
	return err
}

func (p *LLMProvider) load(ctx context.Context) (*openai.Client, error) {
	if p.disabled() {
		return nil, ErrGeneratorDisabled
	}

	p.mu.RLock()
	if p.state == models.LLMStateReady {
		c := p.client
		p.mu.RUnlock()
		return c, nil
	}
	p.mu.RUnlock()

	p.loadMu.Lock()
	defer p.loadMu.Unlock()

	p.mu.RLock()
	state, client, lastErr, failedAt := p.state, p.client, p.lastErr, p.failedAt
	p.mu.RUnlock()

	switch state {
	case models.LLMStateReady:
		return client, nil
	case models.LLMStateError:
		if p.now().Sub(failedAt) < p.cfg.RetryAfter {
			return nil, fmt.Errorf("%w: %v", ErrGeneratorUnavailable, lastErr)
		}
	}

	p.setState(models.LLMStateLoading, nil)
	p.logger.Info().
		Str("provider", p.cfg.Provider).
		Str("model", p.cfg.Model).
		Msg("loading text generator")

	clientConfig := openai.DefaultConfig(p.cfg.APIKey)
	if p.cfg.BaseURL != "" {
		clientConfig.BaseURL = p.cfg.BaseURL
	}
	client = openai.NewClientWithConfig(clientConfig)

	if p.cfg.VerifyOnLoad {
		vctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
		_, err := client.ListModels(vctx)
		cancel()
		if err != nil {
			p.setState(models.LLMStateError, err)
			p.logger.Warn().Err(err).Msg("text generator unavailable, using rule-based fallback")
			return nil, fmt.Errorf("%w: %v", ErrGeneratorUnavailable, err)
		}
	}

	p.mu.Lock()
	p.client = client
	p.state = models.LLMStateReady
	p.lastErr = nil
	p.loadedAt = p.now().UTC()
	p.mu.Unlock()

	p.logger.Info().Str("model", p.cfg.Model).Msg("text generator ready")
	return client, nil
}

func (p *LLMProvider) setState(state models.LLMState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = state
	p.lastErr = err
	if state == models.LLMStateError {
		p.failedAt = p.now()
	}
}

// Generate runs a chat completion. The provider is loaded on first use.
func (p *LLMProvider) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	client, err := p.load(ctx)
	if err != nil {
		return "", err
	}

	if !p.limiter.Allow() {
		return "", ErrRateLimited
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model:       p.cfg.Model,
		Messages:    buildMessages(req),
		MaxTokens:   req.MaxTokens,
		Temperature: float32(p.cfg.Temperature),
		TopP:        float32(p.cfg.TopP),
	}

	start := time.Now()
	resp, err := client.CreateChatCompletion(ctx, chatReq)
	metrics.ObserveGeneration(time.Since(start))
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

func buildMessages(req GenerationRequest) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, turn := range req.History {
		content := strings.TrimSpace(turn.Content)
		if content == "" {
			continue
		}
		switch strings.ToLower(turn.Role) {
		case openai.ChatMessageRoleUser:
			messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: content})
		case openai.ChatMessageRoleAssistant:
			messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content})
		}
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})
	return messages
}
