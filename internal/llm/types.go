package llm

import "mindwell/internal/llm/contract"

type Provider = contract.Provider

type ProviderConfig = contract.ProviderConfig

type ReplyContext = contract.ReplyContext

type AnalysisResult = contract.AnalysisResult

type SummaryResult = contract.SummaryResult

type HealthCheckResult = contract.HealthCheckResult

type UsageStats = contract.UsageStats

type UsageRecord = contract.UsageRecord
