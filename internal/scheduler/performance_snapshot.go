package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/tzagara/curvecast/internal/modules/performance"
)

// PerformanceSnapshotJob writes one performance rollup per user into the
// history database.
type PerformanceSnapshotJob struct {
	performance *performance.Service
	log         zerolog.Logger
}

// NewPerformanceSnapshotJob creates a new performance snapshot job
func NewPerformanceSnapshotJob(service *performance.Service, log zerolog.Logger) *PerformanceSnapshotJob {
	return &PerformanceSnapshotJob{
		performance: service,
		log:         log.With().Str("job", "performance_snapshot").Logger(),
	}
}

// Name returns the job name
func (j *PerformanceSnapshotJob) Name() string {
	return "performance_snapshot"
}

// Run writes the snapshots
func (j *PerformanceSnapshotJob) Run() error {
	written, err := j.performance.SnapshotAll()
	if err != nil {
		return err
	}

	j.log.Info().Int("written", written).Msg("Performance snapshots finished")
	return nil
}
