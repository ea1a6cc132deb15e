// Package common provides stage timing shared by the pipeline and its debug
// traces.
package common

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// StageTimings accumulates named stage durations for one request. Safe for
// concurrent use; stages recorded more than once accumulate.
type StageTimings struct {
	mu      sync.Mutex
	order   []string
	elapsed map[string]time.Duration
}

// NewStageTimings returns an empty recorder.
func NewStageTimings() *StageTimings {
	return &StageTimings{elapsed: make(map[string]time.Duration)}
}

// Start begins timing a stage and returns the stop function that records it.
func (s *StageTimings) Start(stage string) func() {
	begin := time.Now()
	return func() {
		s.Record(stage, time.Since(begin))
	}
}

// Record adds d to the stage's accumulated duration.
func (s *StageTimings) Record(stage string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.elapsed[stage]; !ok {
		s.order = append(s.order, stage)
	}
	s.elapsed[stage] += d
}

// Get returns the accumulated duration for a stage, zero if never recorded.
func (s *StageTimings) Get(stage string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed[stage]
}

// Total returns the sum over all stages.
func (s *StageTimings) Total() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total time.Duration
	for _, d := range s.elapsed {
		total += d
	}
	return total
}

// Map returns a copy of the recorded durations keyed by stage name.
func (s *StageTimings) Map() map[string]time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]time.Duration, len(s.elapsed))
	for k, v := range s.elapsed {
		out[k] = v
	}
	return out
}

// String lists stages in the order they were first recorded.
func (s *StageTimings) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	parts := make([]string, 0, len(s.order))
	for _, stage := range s.order {
		parts = append(parts, fmt.Sprintf("%s: %v", stage, s.elapsed[stage]))
	}
	return strings.Join(parts, ", ")
}

// Sorted returns stage names ordered by descending duration, useful when
// logging the slowest stages first.
func (s *StageTimings) Sorted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.order))
	copy(names, s.order)
	sort.SliceStable(names, func(i, j int) bool {
		return s.elapsed[names[i]] > s.elapsed[names[j]]
	})
	return names
}
