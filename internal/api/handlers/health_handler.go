package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// HealthHandler serves the liveness endpoint with a host resource snapshot.
type HealthHandler struct {
	startedAt time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{startedAt: time.Now()}
}

// Get reports process uptime and host CPU/memory usage. Sampling failures are
// logged and reported as zero so liveness itself never flaps on them.
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	var cpuPercent, memPercent float64

	if percents, err := cpu.PercentWithContext(r.Context(), 0, false); err != nil {
		log.Warn().Err(err).Msg("Failed to sample CPU usage")
	} else if len(percents) > 0 {
		cpuPercent = percents[0]
	}

	if vm, err := mem.VirtualMemoryWithContext(r.Context()); err != nil {
		log.Warn().Err(err).Msg("Failed to sample memory usage")
	} else {
		memPercent = vm.UsedPercent
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"uptimeSeconds":  int64(time.Since(h.startedAt).Seconds()),
		"cpuPercent":     cpuPercent,
		"memUsedPercent": memPercent,
	})
}
