package providers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	cohere "github.com/cohere-ai/cohere-go"

	"mindwell/internal/llm/contract"
)

type CohereProvider struct {
	client     *cohere.Client
	config     *contract.ProviderConfig
	retrier    Retrier
	lastUsage  contract.UsageStats
	lastRecord contract.UsageRecord
}

func NewCohereProvider(config *contract.ProviderConfig) *CohereProvider {
	client, _ := cohere.CreateClient(config.APIKey)
	return &CohereProvider{
		client:  client,
		config:  config,
		retrier: Retrier{Attempts: 3, Delay: 400 * time.Millisecond},
	}
}

func (c *CohereProvider) Name() string { return "cohere" }

func (c *CohereProvider) GetConfig() *contract.ProviderConfig { return c.config }

func (c *CohereProvider) GetUsage(ctx context.Context) (*contract.UsageStats, error) {
	return &c.lastUsage, nil
}

func (c *CohereProvider) generate(ctx context.Context, feature, prompt string) (string, error) {
	if c.client == nil {
		return "", errors.New("cohere client not initialized")
	}
	var response *cohere.GenerateResponse
	ctx, cancel := context.WithTimeout(ctx, 45*time.Second)
	defer cancel()

	err := c.retrier.Do(ctx, func() error {
		start := time.Now()
		maxTokens := uint(c.config.MaxTokens)
		temperature := c.config.Temperature
		result, err := c.client.Generate(cohere.GenerateOptions{
			Model:       c.config.ModelName,
			Prompt:      prompt,
			MaxTokens:   &maxTokens,
			Temperature: &temperature,
		})
		if err != nil {
			return err
		}
		response = result
		c.captureUsage(feature, start)
		return nil
	})
	if err != nil {
		return "", err
	}
	if response == nil || len(response.Generations) == 0 {
		return "", errors.New("empty response")
	}
	return response.Generations[0].Text, nil
}

func (c *CohereProvider) Analyze(ctx context.Context, message string) (*contract.AnalysisResult, error) {
	content, err := c.generate(ctx, "analyze", analyzePrompt(message))
	if err != nil {
		return nil, err
	}
	var parsed contract.AnalysisResult
	if err := json.Unmarshal([]byte(extractJSON(content)), &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

func (c *CohereProvider) Respond(ctx context.Context, message string, conversation contract.ReplyContext) (string, error) {
	content, err := c.generate(ctx, "respond", respondPrompt(message, conversation))
	if err != nil {
		return "", err
	}
	reply := strings.TrimSpace(content)
	if len(reply) < 5 {
		return "", errors.New("generated response too short")
	}
	return reply, nil
}

func (c *CohereProvider) Summarize(ctx context.Context, messages []string) (*contract.SummaryResult, error) {
	content, err := c.generate(ctx, "summarize", summarizePrompt(messages))
	if err != nil {
		return nil, err
	}
	var parsed contract.SummaryResult
	if err := json.Unmarshal([]byte(extractJSON(content)), &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

func (c *CohereProvider) HealthCheck(ctx context.Context) (*contract.HealthCheckResult, error) {
	if c.client == nil {
		return &contract.HealthCheckResult{
			Status:        "error",
			Latency:       0,
			EstimatedCost: 0,
			ErrorMessage:  "cohere client not initialized",
			Timestamp:     time.Now().UTC(),
		}, errors.New("cohere client not initialized")
	}
	prompt := "Respond with: OK"
	ctx, cancel := context.WithTimeout(ctx, 45*time.Second)
	defer cancel()

	start := time.Now()
	maxTokens := uint(10)
	temperature := 0.0
	_, err := c.client.Generate(cohere.GenerateOptions{
		Model:       c.config.ModelName,
		Prompt:      prompt,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	})
	latency := time.Since(start)
	status := "ok"
	msg := ""
	if err != nil {
		status = "error"
		msg = err.Error()
	}
	return &contract.HealthCheckResult{
		Status:        status,
		Latency:       latency,
		EstimatedCost: 0,
		ErrorMessage:  msg,
		Timestamp:     time.Now().UTC(),
	}, err
}

func (c *CohereProvider) captureUsage(feature string, start time.Time) {
	latency := time.Since(start)
	record := contract.UsageRecord{
		Latency: latency,
		Success: true,
		Feature: feature,
	}
	c.lastRecord = record
	c.lastUsage.TotalRequests++
	c.lastUsage.SuccessfulRequests++
	c.lastUsage.TotalCost += record.TotalCost(c.config.CostPer1KInput, c.config.CostPer1KOutput)
	c.lastUsage.AverageLatency = averageLatency(c.lastUsage.AverageLatency, latency, c.lastUsage.SuccessfulRequests)
}

func (c *CohereProvider) LastUsageRecord() contract.UsageRecord {
	return c.lastRecord
}
