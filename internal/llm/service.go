package llm

import (
	"context"
	"errors"
	"time"
)

type Service struct {
	Router *Router
	Store  *Store
}

type usageAware interface {
	LastUsageRecord() UsageRecord
}

func NewService(router *Router, store *Store) *Service {
	return &Service{Router: router, Store: store}
}

func (s *Service) Analyze(ctx context.Context, userID, providerID int64, message string, messageID *int64) (*AnalysisResult, error) {
	provider, err := s.Router.GetProvider(ctx, userID, providerID)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	result, err := provider.Analyze(ctx, message)
	record := usageFromProvider(provider, start, err, "analyze")
	_ = s.Store.InsertUsage(ctx, userID, providerID, messageID, record, provider.GetConfig().CostPer1KInput, provider.GetConfig().CostPer1KOutput)
	return result, err
}

func (s *Service) AnalyzeWithFallback(ctx context.Context, userID int64, message string, messageID *int64) (*AnalysisResult, error) {
	result, provider, providerID, err := s.Router.AnalyzeWithFallback(ctx, userID, message)
	if provider != nil {
		record := usageFromProvider(provider, time.Now(), err, "analyze")
		_ = s.Store.InsertUsage(ctx, userID, providerID, messageID, record, provider.GetConfig().CostPer1KInput, provider.GetConfig().CostPer1KOutput)
	}
	if err != nil && result != nil {
		return result, nil
	}
	return result, err
}

// RespondWithFallback returns a reply for the message, the id of the provider
// that produced it, and whether the keyword fallback was used.
func (s *Service) RespondWithFallback(ctx context.Context, userID int64, message string, conversation ReplyContext) (string, int64, bool, error) {
	start := time.Now()
	reply, provider, providerID, err := s.Router.RespondWithFallback(ctx, userID, message, conversation)
	if provider != nil {
		record := usageFromProvider(provider, start, err, "respond")
		_ = s.Store.InsertUsage(ctx, userID, providerID, nil, record, provider.GetConfig().CostPer1KInput, provider.GetConfig().CostPer1KOutput)
	}
	return reply, providerID, provider == nil, err
}

func (s *Service) Summarize(ctx context.Context, userID, providerID int64, messages []string) (*SummaryResult, error) {
	provider, err := s.Router.GetProvider(ctx, userID, providerID)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	result, err := provider.Summarize(ctx, messages)
	record := usageFromProvider(provider, start, err, "summarize")
	_ = s.Store.InsertUsage(ctx, userID, providerID, nil, record, provider.GetConfig().CostPer1KInput, provider.GetConfig().CostPer1KOutput)
	return result, err
}

// SummarizeWithFallback tries the user's providers in order and reports
// whether any of them produced a summary.
func (s *Service) SummarizeWithFallback(ctx context.Context, userID int64, messages []string) (*SummaryResult, error) {
	start := time.Now()
	result, provider, providerID, err := s.Router.SummarizeWithFallback(ctx, userID, messages)
	if provider != nil {
		record := usageFromProvider(provider, start, err, "summarize")
		_ = s.Store.InsertUsage(ctx, userID, providerID, nil, record, provider.GetConfig().CostPer1KInput, provider.GetConfig().CostPer1KOutput)
	}
	return result, err
}

func usageFromProvider(provider Provider, start time.Time, err error, feature string) UsageRecord {
	if aware, ok := provider.(usageAware); ok {
		record := aware.LastUsageRecord()
		record.Feature = feature
		if err != nil {
			record.Success = false
			record.ErrorMessage = err.Error()
		}
		if record.InputTokens == 0 && record.OutputTokens == 0 {
			record.Latency = time.Since(start)
		}
		return record
	}
	latency := time.Since(start)
	return UsageRecord{Latency: latency, Success: err == nil, ErrorMessage: errorString(err), Feature: feature}
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (s *Service) HealthCheck(ctx context.Context, userID, providerID int64) (*HealthCheckResult, error) {
	provider, err := s.Router.GetProvider(ctx, userID, providerID)
	if err != nil {
		return nil, err
	}
	result, err := provider.HealthCheck(ctx)
	if err != nil {
		return result, err
	}
	if result == nil {
		return nil, errors.New("no health result")
	}
	return result, nil
}
