package storage

import (
	"context"
	"sort"
	"sync"

	"chromatin/internal/model"
)

type seriesKey struct {
	runID string
	name  string
}

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]model.RunRecord
	curves      map[seriesKey][]model.CurvePoint
	traces      map[seriesKey][]model.TraceSample
	deltas      map[seriesKey]model.DistributionRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]model.RunRecord)
	s.curves = make(map[seriesKey][]model.CurvePoint)
	s.traces = make(map[seriesKey][]model.TraceSample)
	s.deltas = make(map[seriesKey]model.DistributionRecord)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, record model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[record.ID] = record
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.runs[id]
	return record, ok, nil
}

// ListRuns returns all saved runs, newest first. Runs with equal
// timestamps order by ID.
func (s *MemoryStore) ListRuns(_ context.Context) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]model.RunRecord, 0, len(s.runs))
	for _, record := range s.runs {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAtUTC != records[j].CreatedAtUTC {
			return records[i].CreatedAtUTC > records[j].CreatedAtUTC
		}
		return records[i].ID < records[j].ID
	})
	return records, nil
}

func (s *MemoryStore) DeleteRun(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.runs, id)
	for key := range s.curves {
		if key.runID == id {
			delete(s.curves, key)
		}
	}
	for key := range s.traces {
		if key.runID == id {
			delete(s.traces, key)
		}
	}
	for key := range s.deltas {
		if key.runID == id {
			delete(s.deltas, key)
		}
	}
	return nil
}

func (s *MemoryStore) SaveCurve(_ context.Context, runID, variant string, points []model.CurvePoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.CurvePoint, len(points))
	copy(copied, points)
	s.curves[seriesKey{runID: runID, name: variant}] = copied
	return nil
}

func (s *MemoryStore) GetCurve(_ context.Context, runID, variant string) ([]model.CurvePoint, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	points, ok := s.curves[seriesKey{runID: runID, name: variant}]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.CurvePoint, len(points))
	copy(copied, points)
	return copied, true, nil
}

func (s *MemoryStore) SaveTrace(_ context.Context, runID, label string, samples []model.TraceSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.TraceSample, len(samples))
	copy(copied, samples)
	s.traces[seriesKey{runID: runID, name: label}] = copied
	return nil
}

func (s *MemoryStore) GetTrace(_ context.Context, runID, label string) ([]model.TraceSample, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	samples, ok := s.traces[seriesKey{runID: runID, name: label}]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.TraceSample, len(samples))
	copy(copied, samples)
	return copied, true, nil
}

func (s *MemoryStore) SaveDistribution(_ context.Context, record model.DistributionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deltas[seriesKey{runID: record.RunID, name: record.Variant}] = record
	return nil
}

func (s *MemoryStore) GetDistribution(_ context.Context, runID, variant string) (model.DistributionRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.deltas[seriesKey{runID: runID, name: variant}]
	return record, ok, nil
}
