// Package ratelimit provides per-client sliding window rate limiting for the
// HTTP API.
package ratelimit

import (
	"sync"
	"time"
)

const (
	// windowDuration is the fixed time window for rate accounting (always 1 minute)
	windowDuration = 60 * time.Second
	// cleanupInterval is how often we clean up expired entries
	cleanupInterval = 10 * time.Minute
	// idleTimeout is how long before we remove idle client entries
	idleTimeout = 10 * time.Minute
)

// Limiter provides per-client sliding window rate limiting.
type Limiter struct {
	limitPerMinute int                     // Maximum requests per client per minute
	entries        map[string]*clientEntry // Key: client address
	mutex          sync.RWMutex
	stopCleanup    chan struct{}
}

// clientEntry tracks request timestamps for a single client
type clientEntry struct {
	timestamps []time.Time // Sliding window of request timestamps
	lastSeen   time.Time   // When this client was last seen (for cleanup)
}

// New creates a new Limiter with the specified per-minute limit.
// The time window is fixed at 60 seconds (1 minute)
func New(limitPerMinute int) *Limiter {
	l := &Limiter{
		limitPerMinute: limitPerMinute,
		entries:        make(map[string]*clientEntry),
		stopCleanup:    make(chan struct{}),
	}

	// Start background cleanup goroutine
	go l.cleanup()

	return l
}

// Stop stops the background cleanup goroutine
func (l *Limiter) Stop() {
	close(l.stopCleanup)
}

// Allow reports whether a request from the given client should be processed,
// recording it against the client's window when it is.
func (l *Limiter) Allow(client string) bool {
	now := time.Now()

	l.mutex.Lock()
	defer l.mutex.Unlock()

	entry, exists := l.entries[client]
	if !exists {
		entry = &clientEntry{
			timestamps: make([]time.Time, 0, l.limitPerMinute+1),
		}
		l.entries[client] = entry
	}

	entry.lastSeen = now

	// Remove timestamps outside the window
	windowStart := now.Add(-windowDuration)
	validTimestamps := entry.timestamps[:0] // Reuse slice capacity
	for _, ts := range entry.timestamps {
		if ts.After(windowStart) {
			validTimestamps = append(validTimestamps, ts)
		}
	}
	entry.timestamps = validTimestamps

	if len(entry.timestamps) >= l.limitPerMinute {
		return false
	}

	entry.timestamps = append(entry.timestamps, now)
	return true
}

// cleanup removes idle client entries to prevent memory leaks
func (l *Limiter) cleanup() {
	// Run immediately on startup
	l.performCleanup()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.performCleanup()
		case <-l.stopCleanup:
			return
		}
	}
}

// performCleanup removes entries that have been idle for too long
func (l *Limiter) performCleanup() {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	cutoff := time.Now().Add(-idleTimeout)
	for client, entry := range l.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(l.entries, client)
		}
	}
}

// Size returns the number of tracked clients.
func (l *Limiter) Size() int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return len(l.entries)
}
