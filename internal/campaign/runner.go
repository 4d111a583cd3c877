package campaign

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/srm-sim/internal/contracts"
	"github.com/wonny/srm-sim/internal/engine"
	"github.com/wonny/srm-sim/pkg/logger"
)

// strategySalt keeps the bot's own choices off the session's random stream
const strategySalt = 7919

// Runner plays batches of independent bot sessions
// ⭐ SSOT: 자동 플레이 캠페인 실행은 여기서만
type Runner struct {
	logger   *logger.Logger
	recorder contracts.Recorder
}

// NewRunner creates a campaign runner. Both arguments may be nil.
func NewRunner(log *logger.Logger, recorder contracts.Recorder) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	if recorder == nil {
		recorder = contracts.NopRecorder{}
	}
	return &Runner{logger: log, recorder: recorder}
}

// Run plays cfg.Runs sessions in parallel. Each session owns its whole state;
// nothing is shared between runs.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Summary, error) {
	if cfg.Runs < 1 {
		return nil, fmt.Errorf("campaign: runs must be at least 1")
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if _, err := ParsePayPolicy(string(cfg.PayPolicy)); err != nil {
		return nil, fmt.Errorf("campaign: %w", err)
	}
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}

	log := r.logger.WithField("campaign", cfg.ID)
	log.WithFields(map[string]interface{}{
		"runs":       cfg.Runs,
		"workers":    cfg.Workers,
		"pay_policy": cfg.PayPolicy,
		"base_seed":  cfg.BaseSeed,
	}).Info("Starting campaign")

	started := time.Now()
	results := make([]RunResult, cfg.Runs)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	for i := 0; i < cfg.Runs; i++ {
		i := i
		g.Go(func() error {
			_, res, err := r.Play(gctx, cfg, i)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			results[i] = *res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.WithError(err).Warn("Campaign aborted")
		return nil, err
	}

	summary := summarize(cfg, results)
	summary.StartedAt = started
	summary.Duration = time.Since(started)

	log.WithFields(map[string]interface{}{
		"duration":        summary.Duration.Seconds(),
		"mean_total_cost": fmt.Sprintf("%.2f", summary.MeanTotalCost),
		"stddev":          fmt.Sprintf("%.2f", summary.StdDevTotalCost),
		"mean_fill_rate":  fmt.Sprintf("%.1f%%", summary.MeanFillRate),
	}).Info("Campaign completed")

	return summary, nil
}

// Play runs one full session with the reorder-point bot and returns the
// finished session with its result. Run i of a campaign is Play(ctx, cfg, i).
func (r *Runner) Play(ctx context.Context, cfg Config, run int) (*engine.Session, *RunResult, error) {
	seed := cfg.BaseSeed + int64(run)

	opts := []engine.Option{engine.WithSeed(seed), engine.WithRecorder(r.recorder)}
	if cfg.Suppliers != nil {
		opts = append(opts, engine.WithSuppliers(cfg.Suppliers))
	}

	s, err := engine.NewSession(cfg.Session, opts...)
	if err != nil {
		return nil, nil, err
	}

	bot := rand.New(rand.NewSource(seed*strategySalt + 1))
	res := &RunResult{Run: run, Seed: seed}
	peakCash := s.KPIs().Cash

	for !s.GameOver() {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		r.reorder(s, cfg, bot, res)
		if err := pay(s, cfg.PayPolicy, res); err != nil {
			return nil, nil, err
		}

		report, err := s.AdvanceTurn()
		if err != nil {
			return nil, nil, err
		}

		cash := report.KPIs.Cash
		if cash > peakCash {
			peakCash = cash
		}
		if dd := peakCash - cash; dd > res.MaxCashDrawdown {
			res.MaxCashDrawdown = dd
		}
	}

	res.Final = s.KPIs()
	for _, d := range s.Deliveries() {
		res.Deliveries++
		if !d.IsOnTime() {
			res.LateDeliveries++
		}
	}
	for _, sup := range s.Suppliers() {
		stats, err := s.SupplierView(sup.ID)
		if err != nil {
			return nil, nil, err
		}
		res.Suppliers = append(res.Suppliers, stats)
	}

	return s, res, nil
}

// reorder places one committed order from a random eligible supplier when
// stock runs below the reorder point
func (r *Runner) reorder(s *engine.Session, cfg Config, bot *rand.Rand, res *RunResult) {
	if s.KPIs().Inventory >= cfg.ReorderPoint {
		return
	}

	var eligible []contracts.Supplier
	for _, sup := range s.Suppliers() {
		if !sup.Blocked {
			eligible = append(eligible, sup)
		}
	}
	if len(eligible) == 0 {
		return
	}

	sup := eligible[bot.Intn(len(eligible))]
	qty := cfg.ReorderQty
	if sup.MinOrderQty > qty {
		qty = sup.MinOrderQty
	}

	if _, err := s.PlaceOrder(sup.ID, qty, true); err != nil {
		res.OrdersRejected++
		return
	}
	res.OrdersPlaced++
}

func pay(s *engine.Session, policy PayPolicy, res *RunResult) error {
	if policy == PayNever {
		return nil
	}

	for _, inv := range s.Invoices() {
		if inv.IsPaid() {
			continue
		}
		if policy == PayOnDue && inv.DueDay > s.Day() {
			continue
		}
		if err := s.PayInvoice(inv.ID); err != nil && !errors.Is(err, contracts.ErrAlreadyPaid) {
			return err
		}
		res.InvoicesPaid++
	}
	return nil
}

func summarize(cfg Config, runs []RunResult) *Summary {
	summary := &Summary{
		ID:        cfg.ID,
		PayPolicy: cfg.PayPolicy,
		BaseSeed:  cfg.BaseSeed,
		MaxDays:   cfg.Session.MaxDays,
		Runs:      runs,
	}

	costs := make([]float64, len(runs))
	var cash, stockout, fill float64
	for i, run := range runs {
		costs[i] = run.TotalCost()
		cash += run.Final.Cash
		stockout += run.Final.StockoutPenalty
		fill += run.Final.FillRate
		if run.MaxCashDrawdown > summary.WorstDrawdown {
			summary.WorstDrawdown = run.MaxCashDrawdown
		}
	}

	n := float64(len(runs))
	summary.MeanTotalCost, summary.StdDevTotalCost = meanStdDev(costs)
	summary.MeanFinalCash = cash / n
	summary.MeanStockout = stockout / n
	summary.MeanFillRate = fill / n
	summary.Tail = CalculateTailCost(costs, TailConfidence)

	return summary
}

// meanStdDev returns the mean and population standard deviation
func meanStdDev(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))

	return mean, math.Sqrt(variance)
}
