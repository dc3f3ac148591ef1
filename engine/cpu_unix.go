//go:build unix

package engine

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// cpuSampler computes process CPU usage between successive samples.
type cpuSampler struct {
	mu       sync.Mutex
	lastWall time.Time
	lastCPU  time.Duration
}

func processCPU() time.Duration {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0
	}
	return time.Duration(ru.Utime.Nano() + ru.Stime.Nano())
}

func (c *cpuSampler) sample() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	now, cpu := time.Now(), processCPU()
	defer func() { c.lastWall, c.lastCPU = now, cpu }()
	if c.lastWall.IsZero() {
		return 0
	}
	wall := now.Sub(c.lastWall)
	if wall <= 0 {
		return 0
	}
	return 100 * float64(cpu-c.lastCPU) / float64(wall)
}
