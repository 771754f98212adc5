package llm

import (
	"context"
	"errors"
	"testing"

	"mindwell/internal/sentiment"
)

type stubProviderStore struct {
	configs []ProviderConfig
	err     error
}

func (s *stubProviderStore) ListProviders(ctx context.Context, userID int64) ([]ProviderConfig, error) {
	return s.configs, s.err
}

func (s *stubProviderStore) GetDefaultProvider(ctx context.Context, userID int64) (*ProviderConfig, error) {
	if len(s.configs) == 0 {
		return nil, errors.New("no default")
	}
	return &s.configs[0], s.err
}

func (s *stubProviderStore) GetProviderByID(ctx context.Context, userID int64, providerID int64) (*ProviderConfig, error) {
	for i := range s.configs {
		if s.configs[i].ID == providerID {
			return &s.configs[i], nil
		}
	}
	return nil, errors.New("not found")
}

func newStubRouter(store ProviderStore) *Router {
	return NewRouter(NewFactory(), store, sentiment.NewAnalyzer())
}

func TestSummarizeWithFallbackStoreError(t *testing.T) {
	router := newStubRouter(&stubProviderStore{err: errors.New("db down")})
	result, provider, providerID, err := router.SummarizeWithFallback(context.Background(), 1, []string{"hello"})
	if err == nil {
		t.Fatal("expected error")
	}
	if result != nil || provider != nil || providerID != 0 {
		t.Fatalf("expected empty result, got %+v provider=%v id=%d", result, provider, providerID)
	}
}

func TestSummarizeWithFallbackNoUsableProvider(t *testing.T) {
	store := &stubProviderStore{configs: []ProviderConfig{{ID: 3, ProviderName: "unsupported"}}}
	router := newStubRouter(store)
	result, _, _, err := router.SummarizeWithFallback(context.Background(), 1, []string{"hello"})
	if err == nil || result != nil {
		t.Fatalf("expected failure with no usable provider, got result=%v err=%v", result, err)
	}
}

func TestRespondWithFallbackUsesKeywordResponder(t *testing.T) {
	router := newStubRouter(&stubProviderStore{err: errors.New("db down")})
	reply, provider, providerID, err := router.RespondWithFallback(context.Background(), 1, "I feel sad today", ReplyContext{})
	if err != nil {
		t.Fatalf("fallback should not error: %v", err)
	}
	if provider != nil || providerID != 0 {
		t.Fatal("expected no provider on fallback")
	}
	if reply == "" {
		t.Fatal("expected a template reply")
	}
}
