package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/aristath/car-engine/internal/catalog"
	"github.com/aristath/car-engine/internal/clients/etherscan"
	"github.com/aristath/car-engine/internal/clients/llama"
	"github.com/aristath/car-engine/internal/collector"
	"github.com/aristath/car-engine/internal/config"
	"github.com/aristath/car-engine/internal/planner"
	"github.com/aristath/car-engine/internal/risk"
	"github.com/aristath/car-engine/internal/scheduler"
	"github.com/aristath/car-engine/internal/store"
	"github.com/aristath/car-engine/pkg/logger"
)

func main() {
	log := logger.New(logger.Config{Level: "info", Pretty: true})
	log.Info().Msg("starting CAR engine")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	log = logger.New(logger.Config{Level: cfg.LogLevel, Pretty: true})

	s, err := store.New(cfg.DSN(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to store")
	}
	defer s.Close()

	loader := catalog.NewLoader(s, cfg.ProtocolsDir, cfg.TokensDir, log)
	if err := loader.Load(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("initial catalog load failed")
	}

	plan := planner.NewPlanner(s, loader, log)
	if err := plan.InitializeSnapshots(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("snapshot initialization failed")
	}

	etherscanClient := etherscan.NewClient(cfg.EtherscanToken, log)
	llamaClient := llama.NewClient(log)

	tokenIndex := func(address string) bool {
		tok, err := s.GetToken(context.Background(), address)
		return err == nil && tok.ID != ""
	}
	transferCollector := collector.NewTransferCollector(s, etherscanClient, tokenIndex, log)

	resolveAddress := func(tokenID string) (string, bool) {
		tok, err := s.GetToken(context.Background(), tokenID)
		if err != nil {
			return "", false
		}
		return tok.ID, true
	}
	priceCollector := collector.NewPriceCollector(s, llamaClient, resolveAddress, log)

	engine := risk.NewEngine(s, log)

	sched := scheduler.New(log)
	sched.Start()
	defer sched.Stop()

	if err := registerJobs(sched, plan, transferCollector, priceCollector, engine, cfg.TransferCollectorConcurrency, cfg.PriceCollectorPageWorkers, cfg.PriceCollectorPageSize, log); err != nil {
		log.Fatal().Err(err).Msg("failed to register jobs")
	}

	log.Info().Msg("CAR engine started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
}

// registerJobs wires the scheduler's periodic driver (spec.md §4.8):
// heartbeat every 60s, collect_prices and collect_transfers every 1s
// with bounded concurrency, update_snapshots daily at 00:00 UTC,
// calculate_car daily at 01:00 UTC.
func registerJobs(
	sched *scheduler.Scheduler,
	plan *planner.Planner,
	transferCollector *collector.TransferCollector,
	priceCollector *collector.PriceCollector,
	engine *risk.Engine,
	transferConcurrency, pricePageWorkers, pricePageSize int,
	log zerolog.Logger,
) error {
	if err := sched.AddJob("0 * * * * *", scheduler.NewHeartbeatJob(log)); err != nil {
		return err
	}

	if err := sched.AddConcurrentJob("* * * * * *", scheduler.NewCollectTransfersJob(transferCollector, log), transferConcurrency); err != nil {
		return err
	}

	for i := 0; i < pricePageWorkers; i++ {
		offset := i * pricePageSize
		job := scheduler.NewCollectPricesJob(priceCollector, offset, log)
		if err := sched.AddJob("* * * * * *", job); err != nil {
			return err
		}
	}

	if err := sched.AddJob("0 0 0 * * *", scheduler.NewUpdateSnapshotsJob(plan, log)); err != nil {
		return err
	}

	if err := sched.AddJob("0 0 1 * * *", scheduler.NewCalculateCarJob(engine, log)); err != nil {
		return err
	}

	return nil
}
