package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/brickfolio/brickfolio/internal/cache"
	"github.com/brickfolio/brickfolio/internal/modules/products"
	"github.com/brickfolio/brickfolio/internal/valuation"
)

// RevalueJob recomputes value metrics for every tracked product, appends them
// to the metrics history and refreshes the cache. It always computes fresh,
// never through the cache, so the history reflects the latest snapshots.
type RevalueJob struct {
	log      zerolog.Logger
	cfg      valuation.Config
	products *products.Repository
	cache    cache.MetricsCache

	running atomic.Bool
}

// NewRevalueJob creates a new revaluation job
func NewRevalueJob(cfg valuation.Config, repo *products.Repository,
	metricsCache cache.MetricsCache, log zerolog.Logger) *RevalueJob {
	return &RevalueJob{
		log:      log.With().Str("job", "revalue").Logger(),
		cfg:      cfg,
		products: repo,
		cache:    metricsCache,
	}
}

// Name returns the job name
func (j *RevalueJob) Name() string {
	return "revalue"
}

// Run executes one full revaluation pass.
func (j *RevalueJob) Run() error {
	// Skip, don't queue, when a previous pass is still going
	if !j.running.CompareAndSwap(false, true) {
		j.log.Warn().Msg("Revaluation already running, skipping")
		return nil
	}
	defer j.running.Store(false)

	start := time.Now()
	list, err := j.products.List()
	if err != nil {
		return err
	}

	var valued, skipped, failed int
	for _, p := range list {
		snap, err := j.products.GetSnapshot(p.ID)
		if err != nil {
			failed++
			j.log.Error().Err(err).Str("product_id", p.ID).Msg("Failed to load snapshot")
			continue
		}
		if snap == nil {
			skipped++
			continue
		}

		in := valuation.InputsFromSnapshot(p, *snap)
		if err := in.Validate(); err != nil {
			failed++
			j.log.Warn().Err(err).Str("product_id", p.ID).Msg("Snapshot failed validation")
			continue
		}

		m := valuation.ComputeValueMetrics(j.cfg, snap.CurrentPrice, in)
		if err := j.products.RecordMetrics(p.ID, m.CurrentPrice, m.IntrinsicValue,
			m.TargetPrice, m.MarginOfSafety, m.ExpectedROI, m.Rating.Label, m.Bubble); err != nil {
			failed++
			j.log.Error().Err(err).Str("product_id", p.ID).Msg("Failed to record metrics")
			continue
		}
		if err := j.cache.Set(context.Background(), p.ID, m); err != nil {
			j.log.Warn().Err(err).Str("product_id", p.ID).Msg("Failed to refresh cache")
		}
		valued++
	}

	j.log.Info().
		Int("valued", valued).
		Int("skipped", skipped).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("Revaluation pass completed")

	return nil
}
