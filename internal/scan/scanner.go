// Package scan evaluates ranges of seeds in parallel: every seed in the
// range is autoplayed under a fixed policy and the ones whose metric
// matches a target predicate are collected.
package scan

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MJE43/replay2048-go/internal/autoplay"
	"github.com/MJE43/replay2048-go/internal/version"
)

// Metric selects which autoplay outcome a scan compares against its
// target.
type Metric string

const (
	MetricScore   Metric = "score"
	MetricMaxTile Metric = "max_tile"
	MetricMoves   Metric = "moves"
)

// TargetOp represents comparison operations for scanning.
type TargetOp string

const (
	OpEqual        TargetOp = "eq"
	OpGreater      TargetOp = "gt"
	OpGreaterEqual TargetOp = "ge"
	OpLess         TargetOp = "lt"
	OpLessEqual    TargetOp = "le"
	OpBetween      TargetOp = "between"
	OpOutside      TargetOp = "outside"
)

// DefaultMaxMoves caps autoplay length when a request does not set one.
const DefaultMaxMoves = 1000

// ScanRequest describes a scan operation. Every metric is integral, so
// targets are exact; there is no float tolerance.
type ScanRequest struct {
	SeedStart  uint32   `json:"seed_start"`
	SeedEnd    uint32   `json:"seed_end"`
	Policy     string   `json:"policy,omitempty"`
	MaxMoves   int      `json:"max_moves,omitempty"`
	Metric     Metric   `json:"metric"`
	TargetOp   TargetOp `json:"target_op"`
	TargetVal  int64    `json:"target_val"`
	TargetVal2 int64    `json:"target_val2,omitempty"` // for "between" and "outside"
	Limit      int      `json:"limit,omitempty"`
	TimeoutMs  int      `json:"timeout_ms,omitempty"`
}

// Hit is a single matching seed with the full outcome alongside the
// compared metric.
type Hit struct {
	Seed    uint32 `json:"seed"`
	Metric  int64  `json:"metric"`
	Score   int    `json:"score"`
	MaxTile int    `json:"max_tile"`
	Moves   int    `json:"moves"`
}

// Summary contains aggregate statistics over the collected hits.
type Summary struct {
	TotalEvaluated uint64  `json:"total_evaluated"`
	HitsFound      int     `json:"hits_found"`
	MinMetric      int64   `json:"min_metric"`
	MaxMetric      int64   `json:"max_metric"`
	MeanMetric     float64 `json:"mean_metric"`
	TimedOut       bool    `json:"timed_out,omitempty"`
}

// ScanResult contains the complete scan results.
type ScanResult struct {
	Hits          []Hit       `json:"hits"`
	Summary       Summary     `json:"summary"`
	EngineVersion string      `json:"engine_version"`
	Echo          ScanRequest `json:"echo"`
}

// ScanJob is a contiguous batch of seeds for one worker. Bounds are
// widened to uint64 so a range ending at the uint32 maximum cannot wrap.
type ScanJob struct {
	SeedStart uint64
	SeedEnd   uint64
}

// TargetEvaluator checks metrics against the target condition. Between
// and outside treat both bounds as inclusive.
type TargetEvaluator struct {
	op   TargetOp
	val1 int64
	val2 int64
}

// NewTargetEvaluator creates a new target evaluator.
func NewTargetEvaluator(op TargetOp, val1, val2 int64) *TargetEvaluator {
	return &TargetEvaluator{op: op, val1: val1, val2: val2}
}

// Matches checks if a metric matches the target criteria.
func (te *TargetEvaluator) Matches(metric int64) bool {
	switch te.op {
	case OpEqual:
		return metric == te.val1
	case OpGreater:
		return metric > te.val1
	case OpGreaterEqual:
		return metric >= te.val1
	case OpLess:
		return metric < te.val1
	case OpLessEqual:
		return metric <= te.val1
	case OpBetween:
		return metric >= te.val1 && metric <= te.val2
	case OpOutside:
		return metric < te.val1 || metric > te.val2
	default:
		return false
	}
}

// metricValue extracts the requested metric from an autoplay result.
func metricValue(m Metric, r autoplay.Result) int64 {
	switch m {
	case MetricMaxTile:
		return int64(r.MaxTile)
	case MetricMoves:
		return int64(r.Moves)
	default:
		return int64(r.Score)
	}
}

// ValidMetric reports whether m names a known metric.
func ValidMetric(m Metric) bool {
	switch m {
	case MetricScore, MetricMaxTile, MetricMoves:
		return true
	}
	return false
}

// Scanner performs parallel scanning across seed ranges.
type Scanner struct {
	workerCount int
}

// NewScanner creates a scanner with one worker per CPU.
func NewScanner() *Scanner {
	return &Scanner{workerCount: runtime.GOMAXPROCS(0)}
}

// scanWorker processes seed batches and sends hits to the result channel.
type scanWorker struct {
	id        int
	jobs      <-chan ScanJob
	hits      chan<- Hit
	policy    autoplay.Policy
	maxMoves  int
	metric    Metric
	evaluator *TargetEvaluator
	evaluated *uint64 // atomic counter
}

// Scan evaluates every seed in [SeedStart, SeedEnd] and collects matches.
func (s *Scanner) Scan(ctx context.Context, req ScanRequest) (*ScanResult, error) {
	if req.SeedEnd < req.SeedStart {
		return nil, fmt.Errorf("%w: %d..%d", ErrInvalidRange, req.SeedStart, req.SeedEnd)
	}

	policyStr := req.Policy
	if policyStr == "" {
		policyStr = autoplay.DefaultPolicy().String()
	}
	policy, err := autoplay.ParsePolicy(policyStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}

	if req.Metric == "" {
		req.Metric = MetricScore
	}
	if !ValidMetric(req.Metric) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMetric, req.Metric)
	}

	maxMoves := req.MaxMoves
	if maxMoves <= 0 {
		maxMoves = DefaultMaxMoves
	}

	if req.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	evaluator := NewTargetEvaluator(req.TargetOp, req.TargetVal, req.TargetVal2)

	jobs := make(chan ScanJob, s.workerCount*2)
	hits := make(chan Hit, 1000)

	var totalEvaluated uint64
	var wg sync.WaitGroup

	for i := 0; i < s.workerCount; i++ {
		worker := &scanWorker{
			id:        i,
			jobs:      jobs,
			hits:      hits,
			policy:    policy,
			maxMoves:  maxMoves,
			metric:    req.Metric,
			evaluator: evaluator,
			evaluated: &totalEvaluated,
		}

		wg.Add(1)
		go worker.run(ctx, &wg)
	}

	go generateJobs(ctx, jobs, uint64(req.SeedStart), uint64(req.SeedEnd))

	collector := &resultCollector{
		hits:      hits,
		limit:     req.Limit,
		evaluated: &totalEvaluated,
	}

	result := collector.collect(ctx, &wg)
	result.EngineVersion = version.Engine
	result.Echo = req

	return result, nil
}

func (w *scanWorker) run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case job, ok := <-w.jobs:
			if !ok {
				return
			}
			w.processJob(ctx, job)
		case <-ctx.Done():
			return
		}
	}
}

func (w *scanWorker) processJob(ctx context.Context, job ScanJob) {
	for seed := job.SeedStart; seed <= job.SeedEnd; seed++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		result := autoplay.Run(uint32(seed), w.policy, w.maxMoves)
		atomic.AddUint64(w.evaluated, 1)

		metric := metricValue(w.metric, result)
		if !w.evaluator.Matches(metric) {
			continue
		}

		hit := Hit{
			Seed:    uint32(seed),
			Metric:  metric,
			Score:   result.Score,
			MaxTile: result.MaxTile,
			Moves:   result.Moves,
		}
		select {
		case w.hits <- hit:
		case <-ctx.Done():
			return
		default:
			// Channel is full; keep evaluating rather than blocking the
			// worker on a slow collector.
		}
	}
}

// generateJobs slices the seed range into batches.
func generateJobs(ctx context.Context, jobs chan<- ScanJob, start, end uint64) {
	defer close(jobs)

	const batchSize = 256 // each seed is a full playthrough, keep batches small

	for current := start; current <= end; {
		batchEnd := current + batchSize - 1
		if batchEnd > end {
			batchEnd = end
		}

		job := ScanJob{SeedStart: current, SeedEnd: batchEnd}

		select {
		case jobs <- job:
			current = batchEnd + 1
		case <-ctx.Done():
			return
		}
	}
}

// resultCollector aggregates hits and computes summary statistics.
type resultCollector struct {
	hits      <-chan Hit
	limit     int
	evaluated *uint64
}

func (rc *resultCollector) collect(ctx context.Context, wg *sync.WaitGroup) *ScanResult {
	initialCap := 1000
	if rc.limit > 0 && rc.limit < initialCap {
		initialCap = rc.limit
	}

	collected := make([]Hit, 0, initialCap)
	var timedOut bool
	limitReached := false

	keep := func(hit Hit) {
		if limitReached {
			return
		}
		collected = append(collected, hit)
		if rc.limit > 0 && len(collected) >= rc.limit {
			limitReached = true
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	collecting := true
	for collecting {
		select {
		case hit, ok := <-rc.hits:
			if !ok {
				collecting = false
				break
			}
			// Past the limit, keep draining so workers never block.
			keep(hit)

		case <-ctx.Done():
			timedOut = true
			collecting = false

		case <-done:
			// Workers are finished; drain whatever is buffered.
			for collecting {
				select {
				case hit, ok := <-rc.hits:
					if !ok {
						collecting = false
						break
					}
					keep(hit)
				default:
					collecting = false
				}
			}
		}
	}

	if ctx.Err() != nil {
		timedOut = true
	}

	summary := summarize(collected, atomic.LoadUint64(rc.evaluated), timedOut)
	return &ScanResult{Hits: collected, Summary: summary}
}

func summarize(hits []Hit, totalEvaluated uint64, timedOut bool) Summary {
	summary := Summary{
		TotalEvaluated: totalEvaluated,
		HitsFound:      len(hits),
		TimedOut:       timedOut,
	}

	if len(hits) == 0 {
		return summary
	}

	min := hits[0].Metric
	max := hits[0].Metric
	var sum int64
	for _, hit := range hits {
		if hit.Metric < min {
			min = hit.Metric
		}
		if hit.Metric > max {
			max = hit.Metric
		}
		sum += hit.Metric
	}

	summary.MinMetric = min
	summary.MaxMetric = max
	summary.MeanMetric = float64(sum) / float64(len(hits))
	return summary
}
