package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/tzagara/curvecast/internal/database"
)

// SystemHandlers serve operational endpoints: health, resource usage
type SystemHandlers struct {
	databases []*database.DB
	log       zerolog.Logger
}

// NewSystemHandlers creates new system handlers
func NewSystemHandlers(databases []*database.DB, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		databases: databases,
		log:       log.With().Str("handler", "system").Logger(),
	}
}

// HealthResponse is the body of the system health endpoint
type HealthResponse struct {
	Status    string            `json:"status"`
	Databases map[string]string `json:"databases"`
	CPU       float64           `json:"cpuPercent"`
	Memory    float64           `json:"memoryPercent"`
}

// HandleHealth reports database reachability and resource usage
// GET /api/system/health
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:    "ok",
		Databases: make(map[string]string, len(h.databases)),
	}

	for _, db := range h.databases {
		if err := db.HealthCheck(ctx); err != nil {
			h.log.Warn().Err(err).Str("database", db.Name()).Msg("Database health check failed")
			response.Databases[db.Name()] = "unreachable"
			response.Status = "degraded"
			continue
		}
		response.Databases[db.Name()] = "ok"
	}

	response.CPU, response.Memory = systemStats(h.log)

	status := http.StatusOK
	if response.Status != "ok" {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

// systemStats samples CPU and RAM usage percentages. The 100ms CPU window
// keeps the endpoint fast enough for frequent polling.
func systemStats(log zerolog.Logger) (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}
	return cpuAvg, memStat.UsedPercent
}
