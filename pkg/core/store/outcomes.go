package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"supplysight/pkg/core/pipeline"
)

// OutcomeRepo archives batch outcomes so operators can query historical
// upload results. One JSONB row per batch.
//
// Schema assumption (managed by migrations elsewhere):
//
//	CREATE TABLE IF NOT EXISTS ingestion_batches (
//	  batch_id UUID PRIMARY KEY,
//	  user_id TEXT NOT NULL,
//	  status TEXT NOT NULL,
//	  outcome_json JSONB NOT NULL,
//	  created_at TIMESTAMPTZ NOT NULL
//	);
type OutcomeRepo struct{}

func NewOutcomeRepo() *OutcomeRepo {
	return &OutcomeRepo{}
}

var _ pipeline.OutcomeLog = (*OutcomeRepo)(nil)

// SaveBatch upserts the finished batch report.
func (r *OutcomeRepo) SaveBatch(ctx context.Context, outcome *pipeline.BatchOutcome) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	data, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}

	query := `
		INSERT INTO ingestion_batches (batch_id, user_id, status, outcome_json, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (batch_id)
		DO UPDATE SET
			status = EXCLUDED.status,
			outcome_json = EXCLUDED.outcome_json;
	`
	_, err = pool.Exec(ctx, query, outcome.BatchID, outcome.UserID, string(outcome.Status), data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save batch outcome: %w", err)
	}
	return nil
}

// ListRecent returns a user's most recent batch reports, newest first.
func (r *OutcomeRepo) ListRecent(ctx context.Context, userID string, limit int) ([]pipeline.BatchOutcome, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT outcome_json FROM ingestion_batches
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var out []pipeline.BatchOutcome
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan batch row: %w", err)
		}
		var outcome pipeline.BatchOutcome
		if err := json.Unmarshal(data, &outcome); err != nil {
			return nil, fmt.Errorf("unmarshal batch: %w", err)
		}
		out = append(out, outcome)
	}
	return out, rows.Err()
}
