package providers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"mindwell/internal/llm/contract"
)

type OpenAIProvider struct {
	client     openai.Client
	config     *contract.ProviderConfig
	retrier    Retrier
	lastUsage  contract.UsageStats
	lastRecord contract.UsageRecord
}

func NewOpenAIProvider(config *contract.ProviderConfig) *OpenAIProvider {
	client := openai.NewClient(option.WithAPIKey(config.APIKey))
	return &OpenAIProvider{
		client:  client,
		config:  config,
		retrier: Retrier{Attempts: 3, Delay: 400 * time.Millisecond},
	}
}

func (o *OpenAIProvider) Name() string { return "openai" }

func (o *OpenAIProvider) GetConfig() *contract.ProviderConfig { return o.config }

func (o *OpenAIProvider) GetUsage(ctx context.Context) (*contract.UsageStats, error) {
	return &o.lastUsage, nil
}

func (o *OpenAIProvider) completeJSON(ctx context.Context, feature, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	start := time.Now()
	var resp *openai.ChatCompletion
	err := o.retrier.Do(ctx, func() error {
		format := shared.NewResponseFormatJSONObjectParam()
		result, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:       shared.ChatModel(o.config.ModelName),
			Temperature: openai.Float(o.config.Temperature),
			MaxTokens:   openai.Int(int64(o.config.MaxTokens)),
			ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONObject: &format,
			},
			Messages: []openai.ChatCompletionMessageParamUnion{
				userMessage(prompt),
			},
		})
		if err != nil {
			return err
		}
		resp = result
		return nil
	})
	if err != nil {
		return "", err
	}
	o.captureUsage(feature, start, resp.Usage)
	if len(resp.Choices) == 0 {
		return "", errors.New("empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAIProvider) Analyze(ctx context.Context, message string) (*contract.AnalysisResult, error) {
	content, err := o.completeJSON(ctx, "analyze", analyzePrompt(message))
	if err != nil {
		return nil, err
	}
	var parsed contract.AnalysisResult
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

func (o *OpenAIProvider) Respond(ctx context.Context, message string, conversation contract.ReplyContext) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	start := time.Now()
	var resp *openai.ChatCompletion
	err := o.retrier.Do(ctx, func() error {
		result, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:       shared.ChatModel(o.config.ModelName),
			Temperature: openai.Float(o.config.Temperature),
			MaxTokens:   openai.Int(int64(o.config.MaxTokens)),
			Messages: []openai.ChatCompletionMessageParamUnion{
				userMessage(respondPrompt(message, conversation)),
			},
		})
		if err != nil {
			return err
		}
		resp = result
		return nil
	})
	if err != nil {
		return "", err
	}
	o.captureUsage("respond", start, resp.Usage)
	if len(resp.Choices) == 0 {
		return "", errors.New("empty response")
	}
	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if len(reply) < 5 {
		return "", errors.New("generated response too short")
	}
	return reply, nil
}

func (o *OpenAIProvider) Summarize(ctx context.Context, messages []string) (*contract.SummaryResult, error) {
	content, err := o.completeJSON(ctx, "summarize", summarizePrompt(messages))
	if err != nil {
		return nil, err
	}
	var parsed contract.SummaryResult
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

func (o *OpenAIProvider) HealthCheck(ctx context.Context) (*contract.HealthCheckResult, error) {
	prompt := "Respond with: OK"
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	start := time.Now()
	_, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(o.config.ModelName),
		Temperature: openai.Float(0),
		Messages: []openai.ChatCompletionMessageParamUnion{
			userMessage(prompt),
		},
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

func (o *OpenAIProvider) captureUsage(feature string, start time.Time, usage openai.CompletionUsage) {
	latency := time.Since(start)
	record := contract.UsageRecord{
		InputTokens:  int(usage.PromptTokens),
		OutputTokens: int(usage.CompletionTokens),
		TotalTokens:  int(usage.TotalTokens),
		Latency:      latency,
		Success:      true,
		Feature:      feature,
	}
	o.lastRecord = record
	o.lastUsage.TotalRequests++
	o.lastUsage.SuccessfulRequests++
	o.lastUsage.TotalCost += record.TotalCost(o.config.CostPer1KInput, o.config.CostPer1KOutput)
	o.lastUsage.AverageLatency = averageLatency(o.lastUsage.AverageLatency, latency, o.lastUsage.SuccessfulRequests)
}

func (o *OpenAIProvider) LastUsageRecord() contract.UsageRecord {
	return o.lastRecord
}

func userMessage(content string) openai.ChatCompletionMessageParamUnion {
	return openai.ChatCompletionMessageParamUnion{
		OfUser: &openai.ChatCompletionUserMessageParam{
			Content: openai.ChatCompletionUserMessageParamContentUnion{
				OfString: openai.String(content),
			},
		},
	}
}
