package campaign

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/srm-sim/pkg/logger"
)

func smallConfig(policy PayPolicy) Config {
	cfg := DefaultConfig()
	cfg.Runs = 4
	cfg.Workers = 2
	cfg.BaseSeed = 100
	cfg.PayPolicy = policy
	return cfg
}

func TestRunIsReproducible(t *testing.T) {
	runner := NewRunner(logger.Nop(), nil)

	a, err := runner.Run(context.Background(), smallConfig(PayOnDue))
	require.NoError(t, err)
	b, err := runner.Run(context.Background(), smallConfig(PayOnDue))
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.Runs, b.Runs)
	assert.Equal(t, a.MeanTotalCost, b.MeanTotalCost)
	assert.Equal(t, a.StdDevTotalCost, b.StdDevTotalCost)
}

func TestRunResults(t *testing.T) {
	summary, err := NewRunner(logger.Nop(), nil).Run(context.Background(), smallConfig(PayEarly))
	require.NoError(t, err)

	require.Len(t, summary.Runs, 4)
	for i, run := range summary.Runs {
		assert.Equal(t, i, run.Run)
		assert.Equal(t, int64(100+i), run.Seed)
		assert.Equal(t, 31, run.Final.Day)
		assert.GreaterOrEqual(t, run.Final.Inventory, 0)
		assert.Equal(t, run.OrdersPlaced, run.InvoicesPaid)
		assert.Len(t, run.Suppliers, 4)
	}
	assert.Greater(t, summary.MeanTotalCost, 0.0)
	assert.Equal(t, 30, summary.MaxDays)
	assert.Equal(t, TailConfidence, summary.Tail.Confidence)
	assert.GreaterOrEqual(t, summary.Tail.CostAtRisk, summary.MeanTotalCost-summary.StdDevTotalCost*2)
	assert.GreaterOrEqual(t, summary.Tail.Shortfall, summary.Tail.CostAtRisk)
}

func TestPayNeverLeavesCashUntouchedBySpend(t *testing.T) {
	summary, err := NewRunner(logger.Nop(), nil).Run(context.Background(), smallConfig(PayNever))
	require.NoError(t, err)

	for _, run := range summary.Runs {
		assert.Zero(t, run.InvoicesPaid)
		k := run.Final
		penalties := k.ReworkCost + k.StockoutPenalty + k.StorageCost
		assert.InDelta(t, 50000-penalties, k.Cash, 1e-6)
	}
}

func TestRunValidation(t *testing.T) {
	runner := NewRunner(logger.Nop(), nil)

	cfg := smallConfig(PayOnDue)
	cfg.Runs = 0
	_, err := runner.Run(context.Background(), cfg)
	assert.Error(t, err)

	cfg = smallConfig("sometimes")
	_, err = runner.Run(context.Background(), cfg)
	assert.Error(t, err)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(logger.Nop(), nil).Run(ctx, smallConfig(PayOnDue))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMeanStdDev(t *testing.T) {
	mean, sd := meanStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.Equal(t, 5.0, mean)
	assert.Equal(t, 2.0, sd)

	mean, sd = meanStdDev(nil)
	assert.Zero(t, mean)
	assert.Zero(t, sd)
}

func TestParsePayPolicy(t *testing.T) {
	p, err := ParsePayPolicy("early")
	require.NoError(t, err)
	assert.Equal(t, PayEarly, p)

	_, err = ParsePayPolicy("later")
	assert.Error(t, err)
}

func TestPlayMatchesCampaignRun(t *testing.T) {
	cfg := smallConfig(PayOnDue)
	runner := NewRunner(logger.Nop(), nil)

	summary, err := runner.Run(context.Background(), cfg)
	require.NoError(t, err)

	s, res, err := runner.Play(context.Background(), cfg, 1)
	require.NoError(t, err)
	assert.True(t, s.GameOver())
	assert.Equal(t, summary.Runs[1].Seed, res.Seed)
	assert.Equal(t, summary.Runs[1].Final, res.Final)
	assert.Len(t, s.ExportTransactions(), res.Deliveries)
}
