package usecase

import (
	"sync"
	"time"
)

type speedSample struct {
	rxBytes uint64
	txBytes uint64
	at      time.Time
}

// SpeedCache derives byte rates from cumulative counters. The first
// observation of a key seeds the cache and yields rate 0; later samples
// report delta over elapsed seconds. A counter running backwards (reset)
// reseeds and yields 0. Growth is bounded by the interface count of the
// host and its containers.
type SpeedCache struct {
	mu   sync.Mutex
	last map[string]speedSample
}

func NewSpeedCache() *SpeedCache {
	return &SpeedCache{last: make(map[string]speedSample)}
}

// Rate returns rx/tx bytes per second for the given counter reading.
func (c *SpeedCache) Rate(key string, rxBytes, txBytes uint64, now time.Time) (float64, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev, seen := c.last[key]
	c.last[key] = speedSample{rxBytes: rxBytes, txBytes: txBytes, at: now}

	if !seen {
		return 0, 0
	}

	elapsed := now.Sub(prev.at).Seconds()
	if elapsed <= 0 || rxBytes < prev.rxBytes || txBytes < prev.txBytes {
		return 0, 0
	}

	rx := float64(rxBytes-prev.rxBytes) / elapsed
	tx := float64(txBytes-prev.txBytes) / elapsed
	return rx, tx
}
