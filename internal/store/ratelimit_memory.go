package store

import (
	"context"
	"sync"
	"time"
)

// pruneEvery is how many records pass between sweeps of idle keys.
const pruneEvery = 1024

// RateLimitMemoryStore keeps request timestamps per key in process memory.
type RateLimitMemoryStore struct {
	mu        sync.Mutex
	requests  map[string][]time.Time
	maxWindow time.Duration
	records   int
}

// NewRateLimitMemoryStore creates a new in-memory rate limit store.
func NewRateLimitMemoryStore() *RateLimitMemoryStore {
	return &RateLimitMemoryStore{
		requests: make(map[string][]time.Time),
	}
}

func (s *RateLimitMemoryStore) Record(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-window)

	timestamps := s.requests[key]
	valid := make([]time.Time, 0, len(timestamps)+1)

	for _, ts := range timestamps {
		if ts.After(cutoff) {
			valid = append(valid, ts)
		}
	}

	valid = append(valid, now)
	s.requests[key] = valid

	s.maxWindow = max(s.maxWindow, window)
	s.records++

	if s.records%pruneEvery == 0 {
		s.prune(s.maxWindow)
	}

	return int64(len(valid)), nil
}

// Len returns the number of tracked keys.
func (s *RateLimitMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.requests)
}

// prune drops keys with no request newer than window. Callers hold mu.
func (s *RateLimitMemoryStore) prune(window time.Duration) {
	cutoff := time.Now().Add(-window)

	for key, timestamps := range s.requests {
		if len(timestamps) == 0 || !timestamps[len(timestamps)-1].After(cutoff) {
			delete(s.requests, key)
		}
	}
}
