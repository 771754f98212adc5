package llm

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"

	"mindwell/internal/db"
	"mindwell/internal/realtime"
)

// Queue holds chat messages awaiting deep analysis, one Redis list per user.
type Queue struct {
	client *redis.Client
}

type QueueMessage struct {
	UserID    int64     `json:"user_id"`
	MessageID int64     `json:"message_id"`
	SessionID string    `json:"session_id"`
	Content   string    `json:"content"`
	Feature   string    `json:"feature"`
	CreatedAt time.Time `json:"created_at"`
}

func NewQueue(client *redis.Client) *Queue {
	return &Queue{client: client}
}

func (q *Queue) Enqueue(ctx context.Context, message QueueMessage) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, queueKey(message.UserID), payload).Err()
}

func (q *Queue) DequeueBatch(ctx context.Context, userID int64, batchSize int) ([][]byte, error) {
	key := queueKey(userID)
	var items [][]byte
	for i := 0; i < batchSize; i++ {
		item, err := q.client.RPop(ctx, key).Bytes()
		if err == redis.Nil {
			break
		}
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}
	return items, nil
}

func queueKey(userID int64) string {
	return "llm:queue:" + strconv.FormatInt(userID, 10)
}

type Worker struct {
	Queue     *Queue
	Service   *Service
	DB        *db.Store
	Hub       *realtime.Hub
	BatchSize int
}

func (w *Worker) Start(ctx context.Context, userID int64) {
	batch := w.BatchSize
	if batch <= 0 {
		batch = 100
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		items, err := w.Queue.DequeueBatch(ctx, userID, batch)
		if err != nil {
			time.Sleep(2 * time.Second)
			continue
		}
		if len(items) == 0 {
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, raw := range items {
			var msg QueueMessage
			if err := json.Unmarshal(raw, &msg); err != nil {
				continue
			}
			ctxTimeout, cancel := context.WithTimeout(ctx, 2*time.Minute)
			result, err := w.Service.AnalyzeWithFallback(ctxTimeout, msg.UserID, msg.Content, &msg.MessageID)
			cancel()
			if err == nil {
				_ = StoreAnalysis(ctx, w.DB, msg.UserID, msg.MessageID, result)
				if w.Hub != nil {
					w.Hub.Broadcast(msg.UserID, map[string]any{
						"type":       "chat.analysis",
						"message_id": msg.MessageID,
						"session_id": msg.SessionID,
						"risk":       result.Risk,
					})
				}
			}
		}
	}
}
