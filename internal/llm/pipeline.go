package llm

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"mindwell/internal/db"
)

// StoreAnalysis writes a completed analysis back onto the chat message and
// records a crisis event when the model judged the risk high.
func StoreAnalysis(ctx context.Context, store *db.Store, userID, messageID int64, result *AnalysisResult) error {
	return store.WithConn(ctx, func(conn *pgxpool.Conn) error {
		var existing *string
		_ = conn.QueryRow(ctx, `
			SELECT metadata_json FROM chat_messages WHERE id=$1 AND user_id=$2`, messageID, userID).Scan(&existing)

		payload := map[string]any{}
		if existing != nil && *existing != "" {
			_ = json.Unmarshal([]byte(*existing), &payload)
		}
		payload["analysis"] = result

		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		emotions, err := json.Marshal(result.Emotions)
		if err != nil {
			return err
		}

		_, err = conn.Exec(ctx, `
			UPDATE chat_messages
			SET metadata_json=$1, sentiment_score=$2, sentiment_label=$3, emotions_json=$4
			WHERE id=$5 AND user_id=$6`,
			string(encoded), result.SentimentScore, result.Sentiment, string(emotions), messageID, userID)
		if err != nil {
			return err
		}

		if result.Risk >= 0.7 {
			var sessionID string
			if err := conn.QueryRow(ctx, `
				SELECT session_id FROM chat_messages WHERE id=$1 AND user_id=$2`, messageID, userID).Scan(&sessionID); err != nil {
				return err
			}
			triggers, _ := json.Marshal(result.Topics)
			triggersJSON := string(triggers)
			_, err = conn.Exec(ctx, `
				INSERT INTO crisis_events (user_id, session_id, level, triggers_json, created_at)
				VALUES ($1, $2, $3, $4, $5)`,
				userID, sessionID, 2, triggersJSON, time.Now().UTC())
			if err != nil {
				return err
			}
		}
		return nil
	})
}
