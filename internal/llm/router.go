package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"mindwell/internal/sentiment"
)

type Router struct {
	factory  *Factory
	cache    *cache
	db       ProviderStore
	keywords *sentiment.Analyzer
}

type ProviderStore interface {
	ListProviders(ctx context.Context, userID int64) ([]ProviderConfig, error)
	GetDefaultProvider(ctx context.Context, userID int64) (*ProviderConfig, error)
	GetProviderByID(ctx context.Context, userID int64, providerID int64) (*ProviderConfig, error)
}

type cachedProvider struct {
	provider Provider
	expires  time.Time
}

type cache struct {
	mu    sync.Mutex
	items map[string]cachedProvider
	ttl   time.Duration
}

func newCache(ttl time.Duration) *cache {
	return &cache{items: map[string]cachedProvider{}, ttl: ttl}
}

func (c *cache) get(key string) (Provider, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[key]
	if !ok || time.Now().After(item.expires) {
		delete(c.items, key)
		return nil, false
	}
	return item.provider, true
}

func (c *cache) set(key string, provider Provider) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = cachedProvider{provider: provider, expires: time.Now().Add(c.ttl)}
}

func (c *cache) invalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
}

func NewRouter(factory *Factory, store ProviderStore, keywords *sentiment.Analyzer) *Router {
	return &Router{factory: factory, cache: newCache(5 * time.Minute), db: store, keywords: keywords}
}

func (r *Router) GetProvider(ctx context.Context, userID, providerID int64) (Provider, error) {
	key := cacheKey(userID, providerID)
	if provider, ok := r.cache.get(key); ok {
		return provider, nil
	}
	config, err := r.db.GetProviderByID(ctx, userID, providerID)
	if err != nil || config == nil {
		return nil, errors.New("provider not found")
	}
	provider := r.factory.CreateProvider(config)
	if provider == nil {
		return nil, errors.New("provider not supported")
	}
	r.cache.set(key, provider)
	return provider, nil
}

func (r *Router) GetDefaultProvider(ctx context.Context, userID int64) (Provider, error) {
	key := cacheKey(userID, 0)
	if provider, ok := r.cache.get(key); ok {
		return provider, nil
	}
	config, err := r.db.GetDefaultProvider(ctx, userID)
	if err != nil || config == nil {
		return nil, errors.New("default provider not found")
	}
	provider := r.factory.CreateProvider(config)
	if provider == nil {
		return nil, errors.New("provider not supported")
	}
	r.cache.set(key, provider)
	return provider, nil
}

// AnalyzeWithFallback tries the user's active providers in order and falls
// back to keyword analysis when all of them fail.
func (r *Router) AnalyzeWithFallback(ctx context.Context, userID int64, message string) (*AnalysisResult, Provider, int64, error) {
	configs, err := r.db.ListProviders(ctx, userID)
	if err != nil {
		return fallbackAnalysis(r.keywords, message), nil, 0, err
	}
	for _, cfg := range configs {
		provider := r.factory.CreateProvider(&cfg)
		if provider == nil {
			continue
		}
		result, err := provider.Analyze(ctx, message)
		if err == nil {
			return result, provider, cfg.ID, nil
		}
	}
	return fallbackAnalysis(r.keywords, message), nil, 0, errors.New("all providers failed")
}

// RespondWithFallback tries providers in order for a reply and falls back to
// the template responder when none answers.
func (r *Router) RespondWithFallback(ctx context.Context, userID int64, message string, conversation ReplyContext) (string, Provider, int64, error) {
	configs, err := r.db.ListProviders(ctx, userID)
	if err == nil {
		for _, cfg := range configs {
			provider := r.factory.CreateProvider(&cfg)
			if provider == nil {
				continue
			}
			reply, err := provider.Respond(ctx, message, conversation)
			if err == nil {
				return reply, provider, cfg.ID, nil
			}
		}
	}
	analysis := r.keywords.Analyze(message)
	return r.keywords.Respond(analysis).Text, nil, 0, nil
}

// SummarizeWithFallback tries providers in order for a summary. Unlike the
// respond path there is no keyword fallback: callers keep their own summary
// when every provider fails.
func (r *Router) SummarizeWithFallback(ctx context.Context, userID int64, messages []string) (*SummaryResult, Provider, int64, error) {
	configs, err := r.db.ListProviders(ctx, userID)
	if err != nil {
		return nil, nil, 0, err
	}
	for _, cfg := range configs {
		provider := r.factory.CreateProvider(&cfg)
		if provider == nil {
			continue
		}
		result, err := provider.Summarize(ctx, messages)
		if err == nil {
			return result, provider, cfg.ID, nil
		}
	}
	return nil, nil, 0, errors.New("all providers failed")
}

// InvalidateCache drops all cached provider instances for a user. Called
// after provider credentials or settings change.
func (r *Router) InvalidateCache(userID int64) {
	r.cache.invalidatePrefix(fmt.Sprintf("%d:", userID))
}

func cacheKey(userID, providerID int64) string {
	return fmt.Sprintf("%d:%d", userID, providerID)
}
