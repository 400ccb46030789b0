package usecase

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/semmidev/vigil/internal/adapter/sysinfo"
	"github.com/semmidev/vigil/internal/config"
	"github.com/semmidev/vigil/internal/domain"
)

// ContainerRuntime is the container engine boundary the monitor consumes.
type ContainerRuntime interface {
	ListContainers(ctx context.Context) ([]domain.ContainerSnapshot, error)
	Stats(ctx context.Context, containerID string) (*domain.RawContainerStats, error)
	DaemonInfo(ctx context.Context) (*domain.DaemonStatus, error)
}

// HostCollector is the host metrics boundary.
type HostCollector interface {
	Snapshot() (*sysinfo.Sample, error)
}

// Monitor polls the container runtime, attributes containers to declared
// applications and derives resource rates. Polls are served from a short
// freshness cache so bursts of callers share one runtime round-trip.
type Monitor struct {
	apps    []config.ApplicationConfig
	runtime ContainerRuntime
	host    HostCollector
	speeds  *SpeedCache
	ttl     time.Duration
	logger  Logger

	mu       sync.Mutex
	cached   []domain.ContainerSnapshot
	cachedAt time.Time
}

func NewMonitor(
	apps []config.ApplicationConfig,
	runtime ContainerRuntime,
	host HostCollector,
	ttl time.Duration,
	logger Logger,
) *Monitor {
	return &Monitor{
		apps:    apps,
		runtime: runtime,
		host:    host,
		speeds:  NewSpeedCache(),
		ttl:     ttl,
		logger:  logger,
	}
}

// Containers returns attributed, stats-enriched snapshots of every
// container. One container's stats failure degrades that snapshot to
// metadata only; it never fails the poll.
func (uc *Monitor) Containers(ctx context.Context) ([]domain.ContainerSnapshot, error) {
	uc.mu.Lock()
	if uc.cached != nil && time.Since(uc.cachedAt) < uc.ttl {
		snapshots := uc.cached
		uc.mu.Unlock()
		return snapshots, nil
	}
	uc.mu.Unlock()

	snapshots, err := uc.runtime.ListContainers(ctx)
	if err != nil {
		return nil, err
	}

	for i := range snapshots {
		snapshots[i].Application = uc.ResolveApplication(snapshots[i].Name)

		if snapshots[i].State != "running" {
			continue
		}

		raw, err := uc.runtime.Stats(ctx, snapshots[i].ID)
		if err != nil {
			uc.logger.Warnf("Stats unavailable for container %s: %v", snapshots[i].Name, err)
			continue
		}
		snapshots[i].Stats = uc.deriveStats(snapshots[i].ID, raw)
	}

	uc.mu.Lock()
	uc.cached = snapshots
	uc.cachedAt = time.Now()
	uc.mu.Unlock()

	return snapshots, nil
}

// ResolveApplication attributes a raw container name to a declared
// application. Exact matches against declared fragments and the database
// container win first; then a symmetric substring scan, roster order
// breaking ties. No match resolves to "unknown".
func (uc *Monitor) ResolveApplication(rawName string) string {
	name := strings.TrimPrefix(rawName, "/")
	if name == "" {
		return domain.UnknownApplication
	}

	for _, app := range uc.apps {
		for _, fragment := range app.Containers {
			if fragment == name {
				return app.Name
			}
		}
		if app.Database != nil && app.Database.Container == name {
			return app.Name
		}
	}

	for _, app := range uc.apps {
		for _, fragment := range app.Containers {
			if fragment == "" {
				continue
			}
			if strings.Contains(name, fragment) || strings.Contains(fragment, name) {
				return app.Name
			}
		}
		if app.Database != nil && app.Database.Container != "" &&
			strings.Contains(name, app.Database.Container) {
			return app.Name
		}
	}

	return domain.UnknownApplication
}

// Status groups container snapshots per application, roster order first,
// unattributed containers last.
func (uc *Monitor) Status(ctx context.Context) ([]domain.ApplicationStatus, error) {
	snapshots, err := uc.Containers(ctx)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]domain.ContainerSnapshot)
	for _, snapshot := range snapshots {
		grouped[snapshot.Application] = append(grouped[snapshot.Application], snapshot)
	}

	var statuses []domain.ApplicationStatus
	appendGroup := func(name string) {
		members := grouped[name]
		status := domain.ApplicationStatus{
			Name:       name,
			Total:      len(members),
			Containers: members,
		}
		for _, member := range members {
			if member.State == "running" {
				status.Running++
			}
		}
		statuses = append(statuses, status)
	}

	for _, app := range uc.apps {
		appendGroup(app.Name)
	}
	if len(grouped[domain.UnknownApplication]) > 0 {
		appendGroup(domain.UnknownApplication)
	}

	return statuses, nil
}

// Daemon reports runtime health, degrading to unavailable instead of
// failing.
func (uc *Monitor) Daemon(ctx context.Context) *domain.DaemonStatus {
	status, err := uc.runtime.DaemonInfo(ctx)
	if err != nil {
		uc.logger.Warnf("Docker daemon unavailable: %v", err)
		return &domain.DaemonStatus{Available: false}
	}
	return status
}

// Host renders the host-wide metrics view next to container data.
func (uc *Monitor) Host(ctx context.Context) (*domain.HostMetrics, error) {
	sample, err := uc.host.Snapshot()
	if err != nil {
		return nil, err
	}

	metrics := &domain.HostMetrics{
		Hostname:      sample.Hostname,
		Platform:      sample.Platform,
		Uptime:        sample.Uptime,
		CPUPercent:    round2(sample.CPUPercent),
		MemoryUsed:    sample.MemoryUsed,
		MemoryTotal:   sample.MemoryTotal,
		MemoryPercent: round2(sample.MemoryPercent),
		DiskUsed:      sample.DiskUsed,
		DiskTotal:     sample.DiskTotal,
		DiskPercent:   round2(sample.DiskPercent),
	}

	for _, iface := range sample.Interfaces {
		rx, tx := uc.speeds.Rate(iface.Name, iface.RxBytes, iface.TxBytes, sample.TakenAt)
		metrics.Interfaces = append(metrics.Interfaces, domain.InterfaceRate{
			Name:          iface.Name,
			RxBytesPerSec: round2(rx),
			TxBytesPerSec: round2(tx),
		})
	}

	return metrics, nil
}

// deriveStats turns a raw sample into boundary numbers. Per-interface rates
// are derived through the speed cache (keyed by container and interface so
// the ubiquitous eth0 never collides across containers) and summed into the
// container totals.
func (uc *Monitor) deriveStats(containerID string, raw *domain.RawContainerStats) *domain.ContainerStats {
	stats := &domain.ContainerStats{
		CPUPercent:    round2(raw.CPUPercent),
		MemoryUsage:   raw.MemoryUsage,
		MemoryLimit:   raw.MemoryLimit,
		MemoryPercent: round2(raw.MemoryPercent),
	}

	var rxTotal, txTotal float64
	for name, counters := range raw.Networks {
		key := containerID + "/" + name
		rx, tx := uc.speeds.Rate(key, counters.RxBytes, counters.TxBytes, raw.ReadAt)
		rxTotal += rx
		txTotal += tx
	}
	stats.RxBytesPerSec = round2(rxTotal)
	stats.TxBytesPerSec = round2(txTotal)

	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
