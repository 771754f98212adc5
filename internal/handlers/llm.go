package handlers

import (
	"context"
	"net/http"
	"time"

	"mindwell/internal/crypto"
	"mindwell/internal/models"
)

type providerRequest struct {
	ProviderName         string   `json:"provider_name"`
	APIKey               string   `json:"api_key"`
	ModelName            string   `json:"model_name"`
	Temperature          *float64 `json:"temperature"`
	MaxTokens            *int     `json:"max_tokens"`
	CostPer1KInput       *float64 `json:"cost_per_1k_input"`
	CostPer1KOutput      *float64 `json:"cost_per_1k_output"`
	MaxRequestsPerMinute *int     `json:"max_requests_per_minute"`
	IsDefault            *bool    `json:"is_default"`
}

type providerDefaults struct {
	ModelName            string
	Temperature          float64
	MaxTokens            int
	CostPer1KInput       float64
	CostPer1KOutput      float64
	MaxRequestsPerMinute int
}

var defaultProviderConfig = map[string]providerDefaults{
	"claude": {
		ModelName:            "claude-3-opus-20240229",
		Temperature:          0.2,
		MaxTokens:            1024,
		CostPer1KInput:       0.003,
		CostPer1KOutput:      0.015,
		MaxRequestsPerMinute: 60,
	},
	"openai": {
		ModelName:            "gpt-4-turbo",
		Temperature:          0.2,
		MaxTokens:            1024,
		CostPer1KInput:       0.01,
		CostPer1KOutput:      0.03,
		MaxRequestsPerMinute: 60,
	},
	"cohere": {
		ModelName:            "command-r-plus",
		Temperature:          0.2,
		MaxTokens:            1024,
		CostPer1KInput:       0.0003,
		CostPer1KOutput:      0.0003,
		MaxRequestsPerMinute: 60,
	},
}

const providerSelect = `id, provider_name, model_name, temperature, max_tokens, cost_per_1k_input, cost_per_1k_output, is_active, is_default, health_status, last_health_check, created_at`

func scanProvider(row interface{ Scan(...any) error }, p *models.LLMProvider) error {
	return row.Scan(&p.ID, &p.ProviderName, &p.ModelName, &p.Temperature, &p.MaxTokens,
		&p.CostPer1KInput, &p.CostPer1KOutput, &p.IsActive, &p.IsDefault,
		&p.HealthStatus, &p.LastHealthCheck, &p.CreatedAt)
}

func (a *API) ListLLMProviders(w http.ResponseWriter, r *http.Request) {
	userID := a.userID(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rows, err := a.Store.Pool.Query(ctx, `
		SELECT `+providerSelect+`
		FROM llm_providers
		WHERE user_id=$1
		ORDER BY is_default DESC, id ASC`, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load providers")
		return
	}
	defer rows.Close()

	providers := make([]models.LLMProvider, 0, 4)
	for rows.Next() {
		var provider models.LLMProvider
		if err := scanProvider(rows, &provider); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load providers")
			return
		}
		providers = append(providers, provider)
	}
	writeJSON(w, http.StatusOK, map[string]any{"providers": providers})
}

func (a *API) CreateLLMProvider(w http.ResponseWriter, r *http.Request) {
	userID := a.userID(r)

	var req providerRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.ProviderName == "" || req.APIKey == "" {
		writeError(w, http.StatusBadRequest, "provider_name and api_key are required")
		return
	}
	defaults, ok := defaultProviderConfig[req.ProviderName]
	if !ok {
		writeError(w, http.StatusBadRequest, "unsupported provider")
		return
	}

	modelName := defaults.ModelName
	if req.ModelName != "" {
		modelName = req.ModelName
	}
	temperature := defaults.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := defaults.MaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}
	costIn := defaults.CostPer1KInput
	if req.CostPer1KInput != nil {
		costIn = *req.CostPer1KInput
	}
	costOut := defaults.CostPer1KOutput
	if req.CostPer1KOutput != nil {
		costOut = *req.CostPer1KOutput
	}
	rateLimit := defaults.MaxRequestsPerMinute
	if req.MaxRequestsPerMinute != nil {
		rateLimit = *req.MaxRequestsPerMinute
	}
	isDefault := req.IsDefault != nil && *req.IsDefault

	encryptedKey, err := crypto.Encrypt(a.LLMStore.MasterKey, req.APIKey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store API key")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if isDefault {
		if _, err := a.Store.Pool.Exec(ctx,
			`UPDATE llm_providers SET is_default=FALSE WHERE user_id=$1`, userID); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to update default provider")
			return
		}
	}

	var provider models.LLMProvider
	row := a.Store.Pool.QueryRow(ctx, `
		INSERT INTO llm_providers (user_id, provider_name, api_key, model_name, temperature, max_tokens, cost_per_1k_input, cost_per_1k_output, max_requests_per_minute, is_active, is_default, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,TRUE,$10,$11)
		RETURNING `+providerSelect,
		userID, req.ProviderName, encryptedKey, modelName, temperature, maxTokens,
		costIn, costOut, rateLimit, isDefault, time.Now().UTC())
	if err := scanProvider(row, &provider); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create provider")
		return
	}

	a.HealthScheduler.EnsureUser(context.Background(), userID)
	a.logActivity(ctx, userID, "llm_provider_created", map[string]string{"provider": req.ProviderName})
	writeJSON(w, http.StatusCreated, map[string]any{
		"provider": provider,
		"api_key":  "****",
	})
}

func (a *API) UpdateLLMProvider(w http.ResponseWriter, r *http.Request, providerID int64) {
	userID := a.userID(r)

	var req providerRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var encryptedKey *string
	if req.APIKey != "" {
		key, err := crypto.Encrypt(a.LLMStore.MasterKey, req.APIKey)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to store API key")
			return
		}
		encryptedKey = &key
	}

	if req.IsDefault != nil && *req.IsDefault {
		if _, err := a.Store.Pool.Exec(ctx,
			`UPDATE llm_providers SET is_default=FALSE WHERE user_id=$1 AND id<>$2`, userID, providerID); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to update default provider")
			return
		}
	}

	var modelName *string
	if req.ModelName != "" {
		modelName = &req.ModelName
	}

	var provider models.LLMProvider
	row := a.Store.Pool.QueryRow(ctx, `
		UPDATE llm_providers
		SET api_key=COALESCE($1, api_key),
			model_name=COALESCE($2, model_name),
			temperature=COALESCE($3, temperature),
			max_tokens=COALESCE($4, max_tokens),
			cost_per_1k_input=COALESCE($5, cost_per_1k_input),
			cost_per_1k_output=COALESCE($6, cost_per_1k_output),
			max_requests_per_minute=COALESCE($7, max_requests_per_minute),
			is_default=COALESCE($8, is_default)
		WHERE id=$9 AND user_id=$10
		RETURNING `+providerSelect,
		encryptedKey, modelName, req.Temperature, req.MaxTokens,
		req.CostPer1KInput, req.CostPer1KOutput, req.MaxRequestsPerMinute, req.IsDefault,
		providerID, userID)
	if err := scanProvider(row, &provider); err != nil {
		writeError(w, http.StatusNotFound, "provider not found")
		return
	}

	a.LLM.Router.InvalidateCache(userID)
	writeJSON(w, http.StatusOK, map[string]any{
		"provider": provider,
		"api_key":  "****",
	})
}

func (a *API) DeleteLLMProvider(w http.ResponseWriter, r *http.Request, providerID int64) {
	userID := a.userID(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	tag, err := a.Store.Pool.Exec(ctx,
		`UPDATE llm_providers SET is_active=FALSE, is_default=FALSE WHERE id=$1 AND user_id=$2`,
		providerID, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete provider")
		return
	}
	if tag.RowsAffected() == 0 {
		writeError(w, http.StatusNotFound, "provider not found")
		return
	}

	a.LLM.Router.InvalidateCache(userID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (a *API) TestLLMProvider(w http.ResponseWriter, r *http.Request, providerID int64) {
	userID := a.userID(r)

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := a.LLM.HealthCheck(ctx, userID, providerID)
	if err != nil {
		msg := err.Error()
		_ = a.LLMStore.InsertHealth(ctx, userID, providerID, "error", 0, &msg)
		writeError(w, http.StatusBadGateway, "health check failed: "+msg)
		return
	}
	status := "ok"
	if result.Latency > 3*time.Second {
		status = "slow"
	}
	_ = a.LLMStore.InsertHealth(ctx, userID, providerID, status, result.Latency, nil)
	writeJSON(w, http.StatusOK, result)
}
