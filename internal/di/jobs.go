package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tzagara/curvecast/internal/database"
	"github.com/tzagara/curvecast/internal/scheduler"
)

// Job schedules. Sweeps run often so matured forecasts pay out promptly;
// snapshots and checkpoints are housekeeping.
const (
	settlementSweepSchedule     = "@every 5m"
	performanceSnapshotSchedule = "@every 1h"
	walCheckpointSchedule       = "@every 6h"
)

// RegisterJobs creates the background jobs and registers them on a scheduler
func RegisterJobs(container *Container, sched *scheduler.Scheduler, log zerolog.Logger) error {
	jobs := []struct {
		schedule string
		job      scheduler.Job
	}{
		{settlementSweepSchedule, scheduler.NewSettlementSweepJob(container.SettlementService, log)},
		{performanceSnapshotSchedule, scheduler.NewPerformanceSnapshotJob(container.PerformanceService, log)},
		{walCheckpointSchedule, scheduler.NewWALCheckpointJob(
			[]*database.DB{container.EngineDB, container.HistoryDB}, log)},
	}

	for _, j := range jobs {
		if err := sched.AddJob(j.schedule, j.job); err != nil {
			return fmt.Errorf("failed to register job %s: %w", j.job.Name(), err)
		}
	}
	return nil
}
