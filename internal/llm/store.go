package llm

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"mindwell/internal/crypto"
	"mindwell/internal/db"
)

type Store struct {
	DB        *db.Store
	MasterKey string
}

func NewStore(store *db.Store, masterKey string) *Store {
	return &Store{DB: store, MasterKey: masterKey}
}

const providerColumns = `id, provider_name, api_key, model_name, temperature, max_tokens, cost_per_1k_input, cost_per_1k_output, max_requests_per_minute`

func (s *Store) scanConfig(row interface{ Scan(...any) error }, cfg *ProviderConfig) error {
	if err := row.Scan(&cfg.ID, &cfg.ProviderName, &cfg.APIKey, &cfg.ModelName, &cfg.Temperature, &cfg.MaxTokens, &cfg.CostPer1KInput, &cfg.CostPer1KOutput, &cfg.MaxRequestsPerMinute); err != nil {
		return err
	}
	if decrypted, err := crypto.Decrypt(s.MasterKey, cfg.APIKey); err == nil {
		cfg.APIKey = decrypted
	}
	return nil
}

func (s *Store) ListProviders(ctx context.Context, userID int64) ([]ProviderConfig, error) {
	var configs []ProviderConfig
	err := s.DB.WithConn(ctx, func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+providerColumns+`
			FROM llm_providers
			WHERE user_id=$1 AND is_active=TRUE
			ORDER BY is_default DESC, id ASC`, userID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var cfg ProviderConfig
			if err := s.scanConfig(rows, &cfg); err != nil {
				return err
			}
			configs = append(configs, cfg)
		}
		return rows.Err()
	})
	return configs, err
}

func (s *Store) GetDefaultProvider(ctx context.Context, userID int64) (*ProviderConfig, error) {
	var cfg ProviderConfig
	err := s.DB.WithConn(ctx, func(conn *pgxpool.Conn) error {
		row := conn.QueryRow(ctx, `
			SELECT `+providerColumns+`
			FROM llm_providers
			WHERE user_id=$1 AND is_default=TRUE AND is_active=TRUE
			LIMIT 1`, userID)
		return s.scanConfig(row, &cfg)
	})
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *Store) GetProviderByID(ctx context.Context, userID int64, providerID int64) (*ProviderConfig, error) {
	var cfg ProviderConfig
	err := s.DB.WithConn(ctx, func(conn *pgxpool.Conn) error {
		row := conn.QueryRow(ctx, `
			SELECT `+providerColumns+`
			FROM llm_providers
			WHERE user_id=$1 AND id=$2`, userID, providerID)
		return s.scanConfig(row, &cfg)
	})
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *Store) InsertUsage(ctx context.Context, userID, providerID int64, messageID *int64, record UsageRecord, costIn, costOut float64) error {
	return s.DB.WithConn(ctx, func(conn *pgxpool.Conn) error {
		_, err := conn.Exec(ctx, `
			INSERT INTO llm_usage_logs (user_id, provider_id, message_id, input_tokens, output_tokens, total_tokens, input_cost, output_cost, total_cost, response_time_ms, success, error_message, feature_used, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
			userID, providerID, messageID, record.InputTokens, record.OutputTokens, record.TotalTokens,
			record.InputCost(costIn), record.OutputCost(costOut), record.TotalCost(costIn, costOut), record.Latency.Milliseconds(), record.Success, record.ErrorMessage, record.Feature, time.Now().UTC())
		return err
	})
}

func (s *Store) InsertHealth(ctx context.Context, userID, providerID int64, status string, latency time.Duration, errorMessage *string) error {
	return s.DB.WithConn(ctx, func(conn *pgxpool.Conn) error {
		now := time.Now().UTC()
		_, err := conn.Exec(ctx, `
			INSERT INTO llm_provider_health (provider_id, user_id, check_time, status, latency_ms, error_message, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			providerID, userID, now, status, latency.Milliseconds(), errorMessage, now)
		if err != nil {
			return err
		}
		_, err = conn.Exec(ctx, `
			UPDATE llm_providers
			SET health_status=$1, last_health_check=$2
			WHERE id=$3 AND user_id=$4`, status, now, providerID, userID)
		return err
	})
}

func (s *Store) RecentHealthFailures(ctx context.Context, userID, providerID int64) (int, error) {
	failures := 0
	err := s.DB.WithConn(ctx, func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT status FROM llm_provider_health
			WHERE provider_id=$1 AND user_id=$2
			ORDER BY check_time DESC
			LIMIT 3`, providerID, userID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var status string
			if err := rows.Scan(&status); err != nil {
				return err
			}
			if status != "ok" {
				failures++
			}
		}
		return rows.Err()
	})
	return failures, err
}

func (s *Store) ListProviderIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := s.DB.WithConn(ctx, func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, `SELECT id FROM llm_providers WHERE user_id=$1 AND is_active=TRUE`, userID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return rows.Err()
	})
	return ids, err
}

func (s *Store) SetProviderHealth(ctx context.Context, userID, providerID int64, status string) error {
	return s.DB.WithConn(ctx, func(conn *pgxpool.Conn) error {
		_, err := conn.Exec(ctx, `
			UPDATE llm_providers
			SET health_status=$1, last_health_check=$2
			WHERE id=$3 AND user_id=$4`, status, time.Now().UTC(), providerID, userID)
		return err
	})
}
