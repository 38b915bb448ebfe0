package batch

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aware-eas/alertsim/sim"
)

// RunRecord is the persisted, engine-opaque shape of one run (spec
// §6.4). NewRunRecord leaves FullResults nil; it holds the complete
// RunResult only when a caller sets it after construction.
type RunRecord struct {
	ID             string            `json:"id"`
	Scenario       string            `json:"scenario"`
	Policy         sim.PolicyName    `json:"policy"`
	Seed           string            `json:"seed"`
	Timestamp      time.Time         `json:"timestamp"`
	Metrics        sim.FinalMetrics  `json:"metrics"`
	SamplesCount   int               `json:"samplesCount"`
	FullResults    *sim.RunResult    `json:"fullResults,omitempty"`
	BatchID        string            `json:"batchId,omitempty"`
	SeedMode       SeedMode          `json:"seedMode,omitempty"`
	ReplicateIndex int               `json:"replicateIndex,omitempty"`
	Replicates     int               `json:"replicates,omitempty"`
}

// NewRunRecord builds a RunRecord summarizing result under id, run
// under the given policy (RunResult itself carries no policy field —
// the orchestrator knows it from the RunOptions cell that produced
// result).
func NewRunRecord(id string, result sim.RunResult, policy sim.PolicyName, timestamp time.Time) RunRecord {
	return RunRecord{
		ID:           id,
		Scenario:     result.Scenario,
		Policy:       policy,
		Seed:         result.Seed,
		Timestamp:    timestamp,
		Metrics:      result.Metrics,
		SamplesCount: len(result.Timeline),
	}
}

// Sink is the opaque persistence seam the engine and orchestrator never
// look inside of (spec §1 "treat as an opaque sink"). Put with an
// already-present id overwrites the prior record.
type Sink interface {
	Put(ctx context.Context, record RunRecord) error
	Get(ctx context.Context, id string) (RunRecord, bool, error)
}

// MemorySink is an in-process Sink backed by a map, safe for concurrent
// use by parallel batch runs (spec §5: "runs are pure functions ...
// implementations MAY parallelize at the run granularity").
type MemorySink struct {
	mu      sync.RWMutex
	records map[string]RunRecord
}

// NewMemorySink constructs an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{records: make(map[string]RunRecord)}
}

func (s *MemorySink) Put(_ context.Context, record RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = record
	return nil
}

func (s *MemorySink) Get(_ context.Context, id string) (RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	return rec, ok, nil
}

// All returns every stored record, in no particular order.
func (s *MemorySink) All() []RunRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RunRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	return out
}

// RedisSink persists run records as JSON strings under a "alertsim:run:"
// key prefix, exercising the orchestrator's external-sink seam against a
// real datastore rather than only in-process memory.
type RedisSink struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisSink constructs a RedisSink wrapping an already-connected
// client. ttl of 0 means records never expire.
func NewRedisSink(client *redis.Client, prefix string, ttl time.Duration) *RedisSink {
	if prefix == "" {
		prefix = "alertsim:run:"
	}
	return &RedisSink{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisSink) key(id string) string {
	return s.prefix + id
}

func (s *RedisSink) Put(ctx context.Context, record RunRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(record.ID), payload, s.ttl).Err()
}

func (s *RedisSink) Get(ctx context.Context, id string) (RunRecord, bool, error) {
	payload, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err == redis.Nil {
		return RunRecord{}, false, nil
	}
	if err != nil {
		return RunRecord{}, false, err
	}
	var rec RunRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return RunRecord{}, false, err
	}
	return rec, true, nil
}
