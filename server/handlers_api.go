package server

import (
	"net/http"
	"runtime"
	"time"
)

const serviceName = "circle-miniapp"

type healthMemory struct {
	Used     uint64 `json:"used"`
	Total    uint64 `json:"total"`
	External uint64 `json:"external"`
}

type healthResponse struct {
	Status    string       `json:"status"`
	Timestamp string       `json:"timestamp"`
	Service   string       `json:"service"`
	Version   string       `json:"version"`
	Uptime    float64      `json:"uptime"`
	Memory    healthMemory `json:"memory"`
}

// HealthHandler reports liveness of this process (GET /api/health). It does
// not call the backend; /debug does that.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)

		writeJSON(w, http.StatusOK, healthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Service:   serviceName,
			Version:   s.config.GetVersion(),
			Uptime:    time.Since(s.started).Seconds(),
			Memory: healthMemory{
				Used:     mem.HeapAlloc,
				Total:    mem.HeapSys,
				External: mem.Sys - mem.HeapSys,
			},
		})
	}
}
