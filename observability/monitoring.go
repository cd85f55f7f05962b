// Package observability aggregates relay counters and process self-stats.
package observability

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"sync/atomic"

	"github.com/shirou/gopsutil/process"
)

// RegistryCounts is the read-only view of the registry the stats endpoint
// needs. Kept local to avoid a dependency on the runtime package.
type RegistryCounts interface {
	Counts() (connections, participants int)
}

// Stats is the JSON shape served by the stats endpoint.
type Stats struct {
	Connections     int     `json:"connections"`
	Participants    int     `json:"participants"`
	MessagesRelayed uint64  `json:"messages_relayed"`
	EventsDropped   uint64  `json:"events_dropped"`
	AllocMemMb      uint64  `json:"alloc_mem_mb"`
	NumGC           uint32  `json:"num_gc"`
	RSSMb           uint64  `json:"rss_mb"`
	CPUPercent      float64 `json:"cpu_percent"`
}

// Monitor tracks relay throughput with atomic counters.
type Monitor struct {
	log             *slog.Logger
	messagesRelayed uint64
	eventsDropped   uint64
}

func NewMonitor(log *slog.Logger) *Monitor {
	return &Monitor{log: log}
}

func (m *Monitor) IncrMessagesRelayed() {
	atomic.AddUint64(&m.messagesRelayed, 1)
}

func (m *Monitor) IncrEventsDropped() {
	atomic.AddUint64(&m.eventsDropped, 1)
}

func (m *Monitor) MessagesRelayed() uint64 {
	return atomic.LoadUint64(&m.messagesRelayed)
}

func (m *Monitor) EventsDropped() uint64 {
	return atomic.LoadUint64(&m.eventsDropped)
}

// HealthHandler serves the liveness probe. Stateless on purpose: it reports
// healthy as long as the process accepts requests.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}
}

// StatsHandler serves relay counters plus process memory and CPU figures.
func (m *Monitor) StatsHandler(registry RegistryCounts) http.HandlerFunc {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		m.log.Warn("Process stats unavailable", "error", err)
		proc = nil
	}

	return func(w http.ResponseWriter, r *http.Request) {
		connections, participants := registry.Counts()

		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)

		stats := Stats{
			Connections:     connections,
			Participants:    participants,
			MessagesRelayed: m.MessagesRelayed(),
			EventsDropped:   m.EventsDropped(),
			AllocMemMb:      mem.Alloc / 1024 / 1024,
			NumGC:           mem.NumGC,
		}

		if proc != nil {
			if memInfo, err := proc.MemoryInfo(); err == nil {
				stats.RSSMb = memInfo.RSS / 1024 / 1024
			}
			if cpu, err := proc.CPUPercent(); err == nil {
				stats.CPUPercent = cpu
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(stats)
	}
}
