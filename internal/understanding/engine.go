package understanding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/invopop/jsonschema"

	"SponsorFinder/internal/domain"
	"SponsorFinder/internal/ports"
)

var (
	// ErrProviderDisabled means no reasoning credential was configured.
	ErrProviderDisabled = errors.New("reasoning provider disabled")
	// ErrMalformedResponse means the provider answered with unusable content.
	ErrMalformedResponse = errors.New("malformed reasoning response")
)

// Path tells which route produced an understanding.
type Path string

const (
	PathProvider Path = "provider"
	PathFallback Path = "fallback"
	PathCached   Path = "cached"
)

// Result is the tagged outcome of Understand. Err is set only on PathFallback and
// explains why the provider was not used.
type Result struct {
	Understanding domain.EpisodeUnderstanding
	Path          Path
	Err           error
}

// Options tunes the provider request.
type Options struct {
	ShowName      string
	Timeout       time.Duration
	ContentBudget int
	MaxTokens     int
	Temperature   float64
}

const (
	defaultShowName      = "LINUX Unplugged"
	defaultTimeout       = 60 * time.Second
	defaultContentBudget = 6000
	defaultMaxTokens     = 1500
	defaultTemperature   = 0.2
)

// Engine turns episodes into understandings. It never fails: provider problems
// fall back to the deterministic heuristic.
type Engine struct {
	client ports.ReasoningClient
	opts   Options
	schema any
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]domain.EpisodeUnderstanding
}

// NewEngine wires an optional reasoning client; a nil client selects the heuristic for every episode.
func NewEngine(client ports.ReasoningClient, opts Options, log *slog.Logger) *Engine {
	if opts.ShowName == "" {
		opts.ShowName = defaultShowName
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.ContentBudget <= 0 {
		opts.ContentBudget = defaultContentBudget
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.Temperature < 0 {
		opts.Temperature = defaultTemperature
	}

	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	return &Engine{
		client: client,
		opts:   opts,
		schema: reflector.Reflect(&payload{}),
		logger: log,
		cache:  map[string]domain.EpisodeUnderstanding{},
	}
}

// Understand returns the cached understanding for the episode guid, or derives one.
func (e *Engine) Understand(ctx context.Context, episode domain.Episode) Result {
	if cached, ok := e.cached(episode.GUID); ok {
		return Result{Understanding: cached, Path: PathCached}
	}

	result := e.derive(ctx, episode)
	if result.Path == PathFallback {
		e.warn("using heuristic understanding", "episode", episode.GUID, "reason", result.Err)
	} else {
		e.debug("provider understanding ready", "episode", episode.GUID, "model", e.client.Model(), "themes", len(result.Understanding.CoreThemes))
	}

	e.mu.Lock()
	e.cache[episode.GUID] = result.Understanding
	e.mu.Unlock()

	return result
}

func (e *Engine) derive(ctx context.Context, episode domain.Episode) Result {
	if e.client == nil {
		return e.fallback(episode, ErrProviderDisabled)
	}

	callCtx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	content, err := e.client.Complete(callCtx, ports.ReasoningRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   buildPrompt(e.opts.ShowName, episode, e.opts.ContentBudget),
		SchemaName:   "episode_understanding",
		Schema:       e.schema,
		MaxTokens:    e.opts.MaxTokens,
		Temperature:  e.opts.Temperature,
	})
	if err != nil {
		return e.fallback(episode, fmt.Errorf("reasoning call: %w", err))
	}

	understanding, err := parsePayload(episode.GUID, content)
	if err != nil {
		return e.fallback(episode, fmt.Errorf("%w: %v", ErrMalformedResponse, err))
	}

	return Result{Understanding: understanding, Path: PathProvider}
}

func (e *Engine) fallback(episode domain.Episode, reason error) Result {
	return Result{
		Understanding: Heuristic(episode, e.opts.ShowName),
		Path:          PathFallback,
		Err:           reason,
	}
}

func (e *Engine) cached(guid string) (domain.EpisodeUnderstanding, bool) {
	if guid == "" {
		return domain.EpisodeUnderstanding{}, false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	u, ok := e.cache[guid]
	return u, ok
}

func (e *Engine) warn(msg string, args ...interface{}) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}

func (e *Engine) debug(msg string, args ...interface{}) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
