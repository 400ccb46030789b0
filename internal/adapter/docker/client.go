package docker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"

	"github.com/semmidev/vigil/internal/domain"
)

// Client wraps the Docker Engine API for container discovery and stats.
// Every method degrades per-container: a failing stats call never poisons
// the rest of a poll.
type Client struct {
	api *client.Client
}

// New connects to the Docker daemon. An empty host uses the standard
// DOCKER_HOST environment resolution.
func New(host string) (*Client, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}

	api, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	return &Client{api: api}, nil
}

// ListContainers returns metadata snapshots for all containers, any state.
// Application attribution and stats are filled in by the monitor.
func (c *Client) ListContainers(ctx context.Context) ([]domain.ContainerSnapshot, error) {
	containers, err := c.api.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	snapshots := make([]domain.ContainerSnapshot, 0, len(containers))
	for _, item := range containers {
		snapshots = append(snapshots, toSnapshot(item))
	}

	return snapshots, nil
}

// Stats fetches one resource-usage sample for a container. The daemon
// primes a previous CPU sample when streaming is off, so CPU percent can
// be derived from a single call.
func (c *Client) Stats(ctx context.Context, containerID string) (*domain.RawContainerStats, error) {
	resp, err := c.api.ContainerStats(ctx, containerID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stats for %s: %w", containerID, err)
	}
	defer resp.Body.Close()

	var stats container.StatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats for %s: %w", containerID, err)
	}

	raw := &domain.RawContainerStats{
		CPUPercent:    CPUPercent(&stats),
		MemoryUsage:   stats.MemoryStats.Usage,
		MemoryLimit:   stats.MemoryStats.Limit,
		MemoryPercent: MemoryPercent(stats.MemoryStats.Usage, stats.MemoryStats.Limit),
		Networks:      make(map[string]domain.NetworkCounters, len(stats.Networks)),
		ReadAt:        stats.Read,
	}
	for name, iface := range stats.Networks {
		raw.Networks[name] = domain.NetworkCounters{
			RxBytes: iface.RxBytes,
			TxBytes: iface.TxBytes,
		}
	}

	return raw, nil
}

// DaemonInfo reports runtime health and inventory counts.
func (c *Client) DaemonInfo(ctx context.Context) (*domain.DaemonStatus, error) {
	info, err := c.api.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch daemon info: %w", err)
	}

	return &domain.DaemonStatus{
		Available:         true,
		Version:           info.ServerVersion,
		Containers:        info.Containers,
		ContainersRunning: info.ContainersRunning,
		Images:            info.Images,
		StorageDriver:     info.Driver,
		OperatingSystem:   info.OperatingSystem,
	}, nil
}

func toSnapshot(item container.Summary) domain.ContainerSnapshot {
	name := ""
	if len(item.Names) > 0 {
		name = strings.TrimPrefix(item.Names[0], "/")
	}

	snapshot := domain.ContainerSnapshot{
		ID:        item.ID,
		Name:      name,
		Image:     item.Image,
		State:     item.State,
		Status:    item.Status,
		CreatedAt: time.Unix(item.Created, 0),
	}

	for _, port := range item.Ports {
		snapshot.Ports = append(snapshot.Ports, domain.PortBinding{
			HostIP:        port.IP,
			HostPort:      port.PublicPort,
			ContainerPort: port.PrivatePort,
			Protocol:      port.Type,
		})
	}

	for _, mount := range item.Mounts {
		snapshot.Mounts = append(snapshot.Mounts, domain.MountPoint{
			Source:      mount.Source,
			Destination: mount.Destination,
			ReadOnly:    !mount.RW,
		})
	}

	return snapshot
}
