package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wonny/srm-sim/internal/archive"
	"github.com/wonny/srm-sim/internal/campaign"
	"github.com/wonny/srm-sim/pkg/database"
	"github.com/wonny/srm-sim/pkg/redis"
)

// simulateCmd represents the simulate command
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "봇 캠페인 실행 (재주문점 전략)",
	Long: `재주문점 봇으로 여러 세션을 병렬 실행하고 비용 통계를 출력합니다.

봇 전략:
- 재고 < reorder-point 이면 차단되지 않은 공급사 중 무작위로
  max(최소주문량, reorder-qty) 만큼 확정 발주
- 대금 지급: early (즉시) / on_due (만기일) / never

Example:
  go run ./cmd/srm simulate --runs 100
  go run ./cmd/srm simulate --runs 50 --policy never --seed 7
  go run ./cmd/srm simulate --runs 20 --archive`,
	RunE: runSimulate,
}

var (
	simRuns         int
	simSeed         int64
	simWorkers      int
	simPolicy       string
	simReorderPoint int
	simReorderQty   int
	simDays         int
	simArchive      bool
	simJSON         bool
)

func init() {
	rootCmd.AddCommand(simulateCmd)

	defaults := campaign.DefaultConfig()

	// Flags
	simulateCmd.Flags().IntVar(&simRuns, "runs", defaults.Runs, "number of sessions")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", defaults.BaseSeed, "base seed (run i uses seed+i)")
	simulateCmd.Flags().IntVar(&simWorkers, "workers", 0, "parallel sessions (0 = SIM_CAMPAIGN_WORKERS)")
	simulateCmd.Flags().StringVar(&simPolicy, "policy", string(defaults.PayPolicy), "invoice policy: early|on_due|never")
	simulateCmd.Flags().IntVar(&simReorderPoint, "reorder-point", defaults.ReorderPoint, "reorder when inventory drops below")
	simulateCmd.Flags().IntVar(&simReorderQty, "reorder-qty", defaults.ReorderQty, "order quantity (raised to supplier minimum)")
	simulateCmd.Flags().IntVar(&simDays, "days", 0, "game length (0 = scenario/env default)")
	simulateCmd.Flags().BoolVar(&simArchive, "archive", false, "save the summary to Postgres (DATABASE_URL)")
	simulateCmd.Flags().BoolVar(&simJSON, "json", false, "print the summary as JSON")
}

// campaignConfig builds the bot configuration from env and flags
func campaignConfig(env *simEnv) (campaign.Config, error) {
	policy, err := campaign.ParsePayPolicy(simPolicy)
	if err != nil {
		return campaign.Config{}, err
	}

	cfg := campaign.DefaultConfig()
	cfg.Runs = simRuns
	cfg.BaseSeed = simSeed
	cfg.Workers = env.cfg.Sim.CampaignWorkers
	if simWorkers > 0 {
		cfg.Workers = simWorkers
	}
	cfg.PayPolicy = policy
	cfg.ReorderPoint = simReorderPoint
	cfg.ReorderQty = simReorderQty
	cfg.Session = env.session
	if simDays > 0 {
		cfg.Session.MaxDays = simDays
	}
	cfg.Suppliers = env.suppliers()
	return cfg, nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	env, err := loadSimEnv()
	if err != nil {
		return err
	}

	cfg, err := campaignConfig(env)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := waitForLaunchSlot(ctx, env); err != nil {
		return err
	}

	summary, err := campaign.NewRunner(env.log, nil).Run(ctx, cfg)
	if err != nil {
		return fmt.Errorf("campaign: %w", err)
	}

	if simArchive {
		if err := archiveSummary(ctx, env, summary); err != nil {
			return err
		}
	}

	if simJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	printSummary(summary)
	return nil
}

// waitForLaunchSlot shares the API's campaign budget when Redis is enabled
func waitForLaunchSlot(ctx context.Context, env *simEnv) error {
	client, err := redis.New(env.cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer client.Close()
	if !client.Enabled() {
		return nil
	}

	host, _ := os.Hostname()
	limit := redis.CampaignRateLimit.ForClient("cli:" + host)
	env.log.Debugf("Waiting for a campaign slot (%d per %s)", limit.Limit, limit.Window)

	if err := redis.NewRateLimiter(client, "srm").Wait(ctx, limit); err != nil {
		return fmt.Errorf("wait for campaign slot: %w", err)
	}
	return nil
}

func archiveSummary(ctx context.Context, env *simEnv, summary *campaign.Summary) error {
	db, err := database.New(ctx, env.cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	repo := archive.NewRepository(db.Pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := repo.SaveCampaign(ctx, summary); err != nil {
		return err
	}

	env.log.WithField("campaign", summary.ID).Info("Campaign archived")
	return nil
}

func printSummary(s *campaign.Summary) {
	w := os.Stdout
	printHeader(w, fmt.Sprintf("Campaign %s", s.ID))
	fmt.Fprintf(w, "  Runs      : %d (seeds %d..%d)\n", len(s.Runs), s.BaseSeed, s.BaseSeed+int64(len(s.Runs))-1)
	fmt.Fprintf(w, "  Policy    : %s\n", s.PayPolicy)
	fmt.Fprintf(w, "  Days      : %d\n", s.MaxDays)
	fmt.Fprintf(w, "  Duration  : %s\n", s.Duration)
	fmt.Fprintln(w, singleLine)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSEED\tTOTAL COST\tCASH\tSTOCKOUT\tFILL\tPOs\tPAID\tLATE\tDRAWDOWN")
	for _, r := range s.Runs {
		fmt.Fprintf(tw, "%d\t%d\t$%.2f\t$%.2f\t$%.2f\t%.1f%%\t%d\t%d\t%d/%d\t$%.2f\n",
			r.Run, r.Seed, r.TotalCost(), r.Final.Cash, r.Final.StockoutPenalty, r.Final.FillRate,
			r.OrdersPlaced, r.InvoicesPaid, r.LateDeliveries, r.Deliveries, r.MaxCashDrawdown)
	}
	tw.Flush()

	fmt.Fprintln(w, singleLine)
	fmt.Fprintf(w, "  Total cost     : $%.2f ± %.2f\n", s.MeanTotalCost, s.StdDevTotalCost)
	fmt.Fprintf(w, "  Final cash     : $%.2f\n", s.MeanFinalCash)
	fmt.Fprintf(w, "  Stockout       : $%.2f\n", s.MeanStockout)
	fmt.Fprintf(w, "  Fill rate      : %.1f%%\n", s.MeanFillRate)
	fmt.Fprintf(w, "  Worst drawdown : $%.2f\n", s.WorstDrawdown)
	fmt.Fprintf(w, "  Cost @ %.0f%%     : $%.2f (shortfall $%.2f)\n",
		s.Tail.Confidence*100, s.Tail.CostAtRisk, s.Tail.Shortfall)
	fmt.Fprintln(w, doubleLine)
}
