package scheduler

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/aristath/car-engine/internal/collector"
	"github.com/aristath/car-engine/internal/planner"
	"github.com/aristath/car-engine/internal/risk"
)

// HeartbeatJob logs a liveness line every tick (spec.md §4.8).
type HeartbeatJob struct {
	log zerolog.Logger
}

// NewHeartbeatJob builds a HeartbeatJob.
func NewHeartbeatJob(log zerolog.Logger) *HeartbeatJob {
	return &HeartbeatJob{log: log.With().Str("job", "heartbeat").Logger()}
}

func (j *HeartbeatJob) Name() string { return "heartbeat" }

func (j *HeartbeatJob) Run() error {
	j.log.Debug().Msg("alive")
	return nil
}

// CollectTransfersJob drains one pending TransferSnapshot per Run
// (spec.md §4.5); the Scheduler fires it every 1s and allows up to 8
// concurrent instances.
type CollectTransfersJob struct {
	collector *collector.TransferCollector
	log       zerolog.Logger
}

// NewCollectTransfersJob builds a CollectTransfersJob.
func NewCollectTransfersJob(c *collector.TransferCollector, log zerolog.Logger) *CollectTransfersJob {
	return &CollectTransfersJob{collector: c, log: log.With().Str("job", "collect_transfers").Logger()}
}

func (j *CollectTransfersJob) Name() string { return "collect_transfers" }

func (j *CollectTransfersJob) Run() error {
	_, err := j.collector.RunOnce(context.Background())
	return err
}

// CollectPricesJob drains one page of the price backlog per Run
// (spec.md §4.6); the Scheduler fires it every 1s and allows up to 8
// concurrent instances across distinct offsets.
type CollectPricesJob struct {
	collector *collector.PriceCollector
	offset    int
	log       zerolog.Logger
}

// NewCollectPricesJob builds a CollectPricesJob bound to a fixed page
// offset — callers register one instance per desired page-worker.
func NewCollectPricesJob(c *collector.PriceCollector, offset int, log zerolog.Logger) *CollectPricesJob {
	return &CollectPricesJob{collector: c, offset: offset, log: log.With().Str("job", "collect_prices").Int("offset", offset).Logger()}
}

func (j *CollectPricesJob) Name() string { return "collect_prices" }

func (j *CollectPricesJob) Run() error {
	_, err := j.collector.RunPage(context.Background(), j.offset)
	return err
}

// UpdateSnapshotsJob re-runs the Catalog Loader and materialises
// missing snapshots once a day (spec.md §4.4, §4.8).
type UpdateSnapshotsJob struct {
	planner *planner.Planner
	log     zerolog.Logger
}

// NewUpdateSnapshotsJob builds an UpdateSnapshotsJob.
func NewUpdateSnapshotsJob(p *planner.Planner, log zerolog.Logger) *UpdateSnapshotsJob {
	return &UpdateSnapshotsJob{planner: p, log: log.With().Str("job", "update_snapshots").Logger()}
}

func (j *UpdateSnapshotsJob) Name() string { return "update_snapshots" }

func (j *UpdateSnapshotsJob) Run() error {
	return j.planner.UpdateSnapshots(context.Background())
}

// CalculateCarJob runs the Risk Engine across every protocol once a
// day (spec.md §4.7.6, §4.8).
type CalculateCarJob struct {
	engine *risk.Engine
	log    zerolog.Logger
}

// NewCalculateCarJob builds a CalculateCarJob.
func NewCalculateCarJob(e *risk.Engine, log zerolog.Logger) *CalculateCarJob {
	return &CalculateCarJob{engine: e, log: log.With().Str("job", "calculate_car").Logger()}
}

func (j *CalculateCarJob) Name() string { return "calculate_car" }

func (j *CalculateCarJob) Run() error {
	return j.engine.RunNow(context.Background())
}
