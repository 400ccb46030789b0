package docker

import "github.com/docker/docker/api/types/container"

// CPUPercent derives instantaneous CPU usage from the pre/post cumulative
// counters in one stats sample:
//
//	(cpuDelta / systemDelta) * onlineCPUs * 100
//
// A non-positive system delta (first sample, counter reset) yields 0 rather
// than a negative or NaN artifact.
func CPUPercent(stats *container.StatsResponse) float64 {
	cpuDelta := float64(stats.CPUStats.CPUUsage.TotalUsage) - float64(stats.PreCPUStats.CPUUsage.TotalUsage)
	systemDelta := float64(stats.CPUStats.SystemUsage) - float64(stats.PreCPUStats.SystemUsage)

	if systemDelta <= 0 || cpuDelta < 0 {
		return 0
	}

	onlineCPUs := float64(stats.CPUStats.OnlineCPUs)
	if onlineCPUs == 0 {
		onlineCPUs = float64(len(stats.CPUStats.CPUUsage.PercpuUsage))
	}

	return (cpuDelta / systemDelta) * onlineCPUs * 100
}

// MemoryPercent is usage over limit; a zero limit (unlimited cgroup) yields 0.
func MemoryPercent(usage, limit uint64) float64 {
	if limit == 0 {
		return 0
	}
	return float64(usage) / float64(limit) * 100
}
