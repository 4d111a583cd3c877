package archive

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/srm-sim/internal/campaign"
	"github.com/wonny/srm-sim/pkg/config"
	"github.com/wonny/srm-sim/pkg/database"
)

func setupRepository(t *testing.T) *Repository {
	t.Helper()
	if testing.Short() || os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	db, err := database.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	repo := NewRepository(db.Pool)
	require.NoError(t, repo.EnsureSchema(context.Background()))
	return repo
}

func smallCampaign(t *testing.T) *campaign.Summary {
	t.Helper()
	cfg := campaign.DefaultConfig()
	cfg.ID = uuid.NewString()
	cfg.Runs = 2
	cfg.Workers = 2
	cfg.Session.MaxDays = 5

	s, err := campaign.NewRunner(nil, nil).Run(context.Background(), cfg)
	require.NoError(t, err)
	return s
}

func TestRepository_SaveAndGet(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	s := smallCampaign(t)

	require.NoError(t, repo.SaveCampaign(ctx, s))
	require.NoError(t, repo.SaveCampaign(ctx, s), "saving twice replaces the row")

	got, err := repo.GetCampaign(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Len(t, got.Runs, 2)
	assert.InDelta(t, s.MeanTotalCost, got.MeanTotalCost, 1e-9)

	entries, err := repo.ListCampaigns(ctx, 50)
	require.NoError(t, err)
	found := false
	for _, e := range entries {
		if e.ID == s.ID {
			found = true
			assert.Equal(t, 2, e.Runs)
			assert.Equal(t, s.PayPolicy, e.PayPolicy)
			assert.Equal(t, s.Duration.Truncate(time.Millisecond), e.Duration)
		}
	}
	assert.True(t, found)
}

func TestRepository_GetMissing(t *testing.T) {
	repo := setupRepository(t)

	_, err := repo.GetCampaign(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}
