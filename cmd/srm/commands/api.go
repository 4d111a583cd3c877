package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/srm-sim/internal/api"
	"github.com/wonny/srm-sim/internal/api/handlers"
	"github.com/wonny/srm-sim/internal/archive"
	"github.com/wonny/srm-sim/internal/campaign"
	"github.com/wonny/srm-sim/internal/contracts"
	"github.com/wonny/srm-sim/internal/engine"
	"github.com/wonny/srm-sim/internal/metrics"
	"github.com/wonny/srm-sim/internal/realtime"
	"github.com/wonny/srm-sim/internal/scheduler"
	"github.com/wonny/srm-sim/internal/scheduler/jobs"
	"github.com/wonny/srm-sim/internal/sessions"
	"github.com/wonny/srm-sim/pkg/database"
	"github.com/wonny/srm-sim/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API + WebSocket 서버를 시작합니다.

세션은 메모리에만 존재하며 SIM_SESSION_TTL 동안 사용되지 않으면 정리됩니다.
DATABASE_URL이 있으면 캠페인 결과를 Postgres에 보관하고,
REDIS_ENABLED=true 이면 캠페인 요약을 Redis에 캐시합니다.

Endpoints:
  GET    /health                                  - Health check
  GET    /metrics                                 - Prometheus metrics
  POST   /api/sessions                            - 세션 생성 {"seed": 42}
  GET    /api/sessions/{id}                       - 대시보드
  DELETE /api/sessions/{id}                       - 세션 종료
  GET    /api/sessions/{id}/suppliers             - 구매 데스크
  GET    /api/sessions/{id}/suppliers/{supplier}  - 공급사 성적표
  POST   /api/sessions/{id}/orders                - 발주
  POST   /api/sessions/{id}/orders/commit         - 임시 발주 확정
  DELETE /api/sessions/{id}/orders/drafts         - 임시 발주 취소
  POST   /api/sessions/{id}/invoices/{inv}/pay    - 대금 지급
  POST   /api/sessions/{id}/advance               - 다음 날
  GET    /api/sessions/{id}/history               - KPI 이력
  GET    /api/sessions/{id}/deliveries            - 입고 내역
  GET    /api/sessions/{id}/transactions.csv      - 입고 내역 CSV
  GET    /api/sessions/{id}/stream                - 턴 리포트 WebSocket
  POST   /api/campaigns                           - 봇 캠페인 실행
  GET    /api/campaigns                           - 보관된 캠페인 목록
  GET    /api/campaigns/{id}                      - 캠페인 결과
  GET    /api/jobs                                - 스케줄 작업 통계
  GET    /api/jobs/{name}/history                 - 작업 실행 이력
  POST   /api/jobs/{name}/run                     - 작업 즉시 실행 (?wait=true)

Example:
  go run ./cmd/srm api
  go run ./cmd/srm api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== SRM Simulator API Server ===")

	// 1. Load config, logger, scenario
	env, err := loadSimEnv()
	if err != nil {
		return err
	}
	cfg, log := env.cfg, env.log

	if apiPort != "" {
		cfg.Port = apiPort
	}

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Metrics
	var recorder *metrics.Recorder
	var engineRecorder contracts.Recorder = contracts.NopRecorder{}
	if cfg.MetricsEnabled {
		recorder = metrics.NewRecorder()
		engineRecorder = recorder
	}

	// 3. Session store + stream hub
	hub := realtime.NewHub(log)
	opts := append(env.options(), engine.WithRecorder(engineRecorder))
	store := sessions.NewStore(env.session, sessions.Limits{
		RatePerSec: cfg.Sim.APIRatePerSec,
		Burst:      cfg.Sim.APIBurst,
	}, opts...)
	store.OnEvict(hub.CloseSession)
	if recorder != nil {
		store.SetObserver(recorder)
	}

	// 4. Optional Postgres archive
	var campaignArchive handlers.CampaignArchive
	var dbHealth api.DBHealth
	db, err := database.New(ctx, cfg)
	switch {
	case errors.Is(err, database.ErrNotConfigured):
		log.Info("DATABASE_URL not set, campaign archive disabled")
	case err != nil:
		return fmt.Errorf("connect to database: %w", err)
	default:
		defer db.Close()
		repo := archive.NewRepository(db.Pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		campaignArchive = repo
		dbHealth = db
		log.Info("Connected to database")
	}

	// 5. Optional Redis cache
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	// 6. Idle session reaper
	sched := scheduler.New(log)
	sched.SetRetry(cfg.Sim.JobRetries, cfg.Sim.JobRetryDelay)
	if err := sched.AddJob(jobs.NewSessionReaperJob(store, cfg.Sim.SessionTTL, cfg.Sim.ReaperSchedule, log)); err != nil {
		return err
	}
	log.Infof("Sessions idle for %s are reaped on %q", cfg.Sim.SessionTTL, cfg.Sim.ReaperSchedule)

	// 7. Handlers
	defaults := campaign.DefaultConfig()
	defaults.Workers = cfg.Sim.CampaignWorkers
	defaults.Session = env.session
	defaults.Suppliers = env.suppliers()

	router := api.NewRouter(api.Handlers{
		Sessions:  handlers.NewSessionHandler(store, hub, log),
		Campaigns: handlers.NewCampaignHandler(campaign.NewRunner(log, engineRecorder), defaults, campaignArchive, redisClient, log),
		Jobs:      handlers.NewJobHandler(sched, log),
		Metrics:   recorder,
		DB:        dbHealth,
	}, log)

	sched.Start()
	defer sched.Stop()

	// 8. Server with graceful shutdown
	server := api.New(cfg, log, router)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	select {
	case err := <-errCh:
		log.Errorf("API server exited: %v", err)
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
