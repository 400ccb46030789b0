package domain

import (
	"context"
	"time"
)

// UnknownApplication is the resolved application name for containers that
// match no declared application.
const UnknownApplication = "unknown"

// ContainerSnapshot is one point-in-time view of a container, enriched with
// the owning application and derived resource rates. Snapshots are ephemeral;
// they live only in the monitor's freshness cache.
type ContainerSnapshot struct {
	ID          string
	Name        string
	Image       string
	State       string
	Status      string
	Application string
	CreatedAt   time.Time
	Ports       []PortBinding
	Mounts      []MountPoint

	// Stats may be nil when the runtime failed to deliver counters for
	// this container; the snapshot then degrades to metadata only.
	Stats *ContainerStats
}

// ContainerStats holds the derived instantaneous numbers for one container.
// Percentages and rates are rounded to two decimals at the boundary.
type ContainerStats struct {
	CPUPercent    float64
	MemoryUsage   uint64
	MemoryLimit   uint64
	MemoryPercent float64
	RxBytesPerSec float64
	TxBytesPerSec float64
}

// RawContainerStats is one runtime stats sample before rate derivation:
// percentages are already computed from the sample's own pre/post CPU
// counters, network counters are still cumulative.
type RawContainerStats struct {
	CPUPercent    float64
	MemoryUsage   uint64
	MemoryLimit   uint64
	MemoryPercent float64
	Networks      map[string]NetworkCounters
	ReadAt        time.Time
}

// NetworkCounters are cumulative byte counters for one interface.
type NetworkCounters struct {
	RxBytes uint64
	TxBytes uint64
}

// PortBinding is one published container port.
type PortBinding struct {
	HostIP        string
	HostPort      uint16
	ContainerPort uint16
	Protocol      string
}

// MountPoint is one container mount.
type MountPoint struct {
	Source      string
	Destination string
	ReadOnly    bool
}

// DaemonStatus summarizes container runtime health.
type DaemonStatus struct {
	Available         bool
	Version           string
	Containers        int
	ContainersRunning int
	Images            int
	StorageDriver     string
	OperatingSystem   string
}

// ApplicationStatus aggregates the snapshots owned by one application.
type ApplicationStatus struct {
	Name       string
	Running    int
	Total      int
	Containers []ContainerSnapshot
}

// HostMetrics is the host-wide view rendered next to container data.
type HostMetrics struct {
	Hostname      string
	Platform      string
	Uptime        time.Duration
	CPUPercent    float64
	MemoryUsed    uint64
	MemoryTotal   uint64
	MemoryPercent float64
	DiskUsed      uint64
	DiskTotal     uint64
	DiskPercent   float64
	Interfaces    []InterfaceRate
}

// InterfaceRate is the derived throughput of one host network interface.
type InterfaceRate struct {
	Name          string
	RxBytesPerSec float64
	TxBytesPerSec float64
}

// Notifier delivers operator-facing messages about backup outcomes.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	SendFile(ctx context.Context, path, caption string) error
}
