package sysinfo

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
)

// Collector reads host-wide metrics. Network counters come back cumulative;
// the monitor derives rates through its sample cache.
type Collector struct {
	diskPath string
}

// Sample is one host reading with raw network counters.
type Sample struct {
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
	Interfaces    []InterfaceCounters
	TakenAt       time.Time
}

// InterfaceCounters are cumulative rx/tx bytes for one host interface.
type InterfaceCounters struct {
	Name    string
	RxBytes uint64
	TxBytes uint64
}

func NewCollector(diskPath string) *Collector {
	if diskPath == "" {
		diskPath = "/"
	}
	return &Collector{diskPath: diskPath}
}

// Snapshot gathers one host sample. Individual probes that fail degrade to
// zero values except CPU/memory, which the caller cannot render without.
func (c *Collector) Snapshot() (*Sample, error) {
	sample := &Sample{TakenAt: time.Now()}

	percentages, err := cpu.Percent(0, false)
	if err != nil {
		return nil, fmt.Errorf("failed to read cpu usage: %w", err)
	}
	if len(percentages) > 0 {
		sample.CPUPercent = percentages[0]
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to read memory usage: %w", err)
	}
	sample.MemoryUsed = vm.Used
	sample.MemoryTotal = vm.Total
	sample.MemoryPercent = vm.UsedPercent

	if usage, err := disk.Usage(c.diskPath); err == nil {
		sample.DiskUsed = usage.Used
		sample.DiskTotal = usage.Total
		sample.DiskPercent = usage.UsedPercent
	}

	if info, err := host.Info(); err == nil {
		sample.Hostname = info.Hostname
		sample.Platform = fmt.Sprintf("%s %s", info.Platform, info.PlatformVersion)
		sample.Uptime = time.Duration(info.Uptime) * time.Second
	}

	counters, err := net.IOCounters(true)
	if err == nil {
		for _, counter := range counters {
			sample.Interfaces = append(sample.Interfaces, InterfaceCounters{
				Name:    counter.Name,
				RxBytes: counter.BytesRecv,
				TxBytes: counter.BytesSent,
			})
		}
	}

	return sample, nil
}
