package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/srm-sim/internal/campaign"
)

// ErrNotFound is returned when no campaign has the requested id
var ErrNotFound = errors.New("campaign not found")

// Repository persists finished campaign summaries.
// ⭐ SSOT: 캠페인 결과 저장/조회는 여기서만 (세션 상태는 저장하지 않음)
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new archive repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const schemaDDL = `
	CREATE SCHEMA IF NOT EXISTS srm;

	CREATE TABLE IF NOT EXISTS srm.campaigns (
		campaign_id       TEXT PRIMARY KEY,
		started_at        TIMESTAMPTZ NOT NULL,
		duration_ms       BIGINT NOT NULL,
		pay_policy        TEXT NOT NULL,
		base_seed         BIGINT NOT NULL,
		max_days          INTEGER NOT NULL,
		run_count         INTEGER NOT NULL,
		mean_total_cost   DOUBLE PRECISION NOT NULL,
		stddev_total_cost DOUBLE PRECISION NOT NULL,
		mean_fill_rate    DOUBLE PRECISION NOT NULL,
		summary           JSONB NOT NULL,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_campaigns_started_at ON srm.campaigns (started_at DESC);
`

// EnsureSchema creates the archive tables when missing
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to ensure archive schema: %w", err)
	}
	return nil
}

// SaveCampaign stores a summary. Saving the same id twice replaces the row.
func (r *Repository) SaveCampaign(ctx context.Context, s *campaign.Summary) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode campaign %s: %w", s.ID, err)
	}

	query := `
		INSERT INTO srm.campaigns (
			campaign_id, started_at, duration_ms, pay_policy, base_seed, max_days,
			run_count, mean_total_cost, stddev_total_cost, mean_fill_rate, summary
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (campaign_id) DO UPDATE SET
			summary = EXCLUDED.summary,
			duration_ms = EXCLUDED.duration_ms
	`

	_, err = r.pool.Exec(ctx, query,
		s.ID, s.StartedAt, s.Duration.Milliseconds(), string(s.PayPolicy), s.BaseSeed, s.MaxDays,
		len(s.Runs), s.MeanTotalCost, s.StdDevTotalCost, s.MeanFillRate, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to save campaign: %w", err)
	}

	return nil
}

// GetCampaign loads the full summary of one campaign
func (r *Repository) GetCampaign(ctx context.Context, id string) (*campaign.Summary, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx, `SELECT summary FROM srm.campaigns WHERE campaign_id = $1`, id).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("campaign %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}

	var s campaign.Summary
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("failed to decode campaign %s: %w", id, err)
	}
	return &s, nil
}

// Entry is one row of the campaign listing (no per-run detail)
type Entry struct {
	ID              string             `json:"id"`
	StartedAt       time.Time          `json:"started_at"`
	Duration        time.Duration      `json:"duration"`
	PayPolicy       campaign.PayPolicy `json:"pay_policy"`
	BaseSeed        int64              `json:"base_seed"`
	MaxDays         int                `json:"max_days"`
	Runs            int                `json:"runs"`
	MeanTotalCost   float64            `json:"mean_total_cost"`
	StdDevTotalCost float64            `json:"stddev_total_cost"`
	MeanFillRate    float64            `json:"mean_fill_rate"`
}

// ListCampaigns returns the most recent campaigns, newest first
func (r *Repository) ListCampaigns(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT campaign_id, started_at, duration_ms, pay_policy, base_seed, max_days,
		       run_count, mean_total_cost, stddev_total_cost, mean_fill_rate
		FROM srm.campaigns
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query campaigns: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var (
			e          Entry
			durationMS int64
			policy     string
		)
		if err := rows.Scan(
			&e.ID, &e.StartedAt, &durationMS, &policy, &e.BaseSeed, &e.MaxDays,
			&e.Runs, &e.MeanTotalCost, &e.StdDevTotalCost, &e.MeanFillRate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		e.Duration = time.Duration(durationMS) * time.Millisecond
		e.PayPolicy = campaign.PayPolicy(policy)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return entries, nil
}
