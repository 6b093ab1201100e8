package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tzagara/curvecast/internal/modules/settlement"
)

// SettlementSweepJob settles every active forecast against the live feed so
// matured forecasts pay out without waiting for anyone to ask.
type SettlementSweepJob struct {
	settlement *settlement.Service
	timeout    time.Duration
	log        zerolog.Logger
}

// NewSettlementSweepJob creates a new settlement sweep job
func NewSettlementSweepJob(service *settlement.Service, log zerolog.Logger) *SettlementSweepJob {
	return &SettlementSweepJob{
		settlement: service,
		timeout:    5 * time.Minute,
		log:        log.With().Str("job", "settlement_sweep").Logger(),
	}
}

// Name returns the job name
func (j *SettlementSweepJob) Name() string {
	return "settlement_sweep"
}

// Run executes the sweep
func (j *SettlementSweepJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	examined, err := j.settlement.SweepActive(ctx)
	if err != nil {
		return err
	}

	j.log.Info().Int("examined", examined).Msg("Settlement sweep finished")
	return nil
}
