package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/brickfolio/brickfolio/internal/database"
)

// MaintenanceJob keeps the catalog database healthy: integrity check plus a
// WAL checkpoint so the log never grows unbounded on a long-running process.
type MaintenanceJob struct {
	log zerolog.Logger
	db  *database.DB
}

// NewMaintenanceJob creates a new maintenance job
func NewMaintenanceJob(db *database.DB, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		log: log.With().Str("job", "maintenance").Logger(),
		db:  db,
	}
}

// Name returns the job name
func (j *MaintenanceJob) Name() string {
	return "maintenance"
}

// Run executes the maintenance pass
func (j *MaintenanceJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := j.db.HealthCheck(ctx); err != nil {
		j.log.Error().Err(err).Str("database", j.db.Name()).Msg("Integrity check failed")
		return err
	}

	if err := j.db.WALCheckpoint("TRUNCATE"); err != nil {
		j.log.Warn().Err(err).Str("database", j.db.Name()).Msg("WAL checkpoint failed")
		return err
	}

	j.log.Debug().Str("database", j.db.Name()).Msg("Maintenance pass completed")
	return nil
}
