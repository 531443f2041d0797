// Package batch recomputes and persists elasticity for every distinct
// entity across both price types: load transactions once, enumerate
// entities, estimate per (entity, price type), and replace the three
// result tables.
package batch

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"elasticity-lab/internal/domain"
	"elasticity-lab/internal/regression"
	"elasticity-lab/internal/sampling"
	"elasticity-lab/internal/storage"
)

// Orchestrator coordinates one full recomputation run.
// Flow: load -> enumerate -> estimate -> persist, per aggregation level.
type Orchestrator struct {
	transactionStore storage.TransactionStore
	productStore     storage.ElasticityStore
	customerStore    storage.ElasticityStore
	pairStore        storage.ElasticityStore

	weekly   bool
	workers  int
	verbose  bool
	now      func() time.Time
	onEntity func()
}

// Options for creating Orchestrator.
type Options struct {
	// Required stores
	TransactionStore storage.TransactionStore
	ProductStore     storage.ElasticityStore
	CustomerStore    storage.ElasticityStore
	PairStore        storage.ElasticityStore

	// Weekly aggregates transactions into ISO-week buckets before fitting.
	Weekly bool

	// Workers bounds the per-entity fan-out; <= 1 runs sequentially.
	// Entities are independent, so the result set is identical either way.
	Workers int

	Verbose bool

	// OnEntity is called after each entity finishes, for progress display.
	OnEntity func()

	// Now overrides the clock for deterministic ComputedAt in tests.
	Now func() time.Time
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Orchestrator{
		transactionStore: opts.TransactionStore,
		productStore:     opts.ProductStore,
		customerStore:    opts.CustomerStore,
		pairStore:        opts.PairStore,
		weekly:           opts.Weekly,
		workers:          opts.Workers,
		verbose:          opts.Verbose,
		now:              now,
		onEntity:         opts.OnEntity,
	}
}

// RunResult contains results from one batch run.
type RunResult struct {
	TransactionsScanned int
	ProductRows         int
	CustomerRows        int
	PairRows            int
	NullRows            int // rows persisted without a usable estimate
}

// EntityCount returns the number of entities a run over txs will process,
// for sizing progress display before Run starts.
func EntityCount(txs []*domain.Transaction) int {
	return len(sampling.DistinctProducts(txs)) +
		len(sampling.DistinctCustomers(txs)) +
		len(sampling.DistinctPairs(txs))
}

// Run executes the full recomputation. Estimation failures for single
// entities become null rows and never abort the run; only store failures
// are fatal.
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}

	o.log("loading transactions...")
	txs, err := o.transactionStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load transactions: %v", storage.ErrStoreUnavailable, err)
	}
	result.TransactionsScanned = len(txs)
	o.log("  loaded %d transactions", len(txs))

	computedAt := o.now().UnixMilli()

	o.log("computing product elasticities...")
	productRows, err := o.runLevel(ctx, productJobs(txs), computedAt)
	if err != nil {
		return nil, err
	}
	if err := o.productStore.ReplaceAll(ctx, productRows); err != nil {
		return nil, fmt.Errorf("%w: persist product elasticities: %v", storage.ErrStoreUnavailable, err)
	}
	result.ProductRows = len(productRows)

	o.log("computing customer elasticities...")
	customerRows, err := o.runLevel(ctx, customerJobs(txs), computedAt)
	if err != nil {
		return nil, err
	}
	if err := o.customerStore.ReplaceAll(ctx, customerRows); err != nil {
		return nil, fmt.Errorf("%w: persist customer elasticities: %v", storage.ErrStoreUnavailable, err)
	}
	result.CustomerRows = len(customerRows)

	o.log("computing customer-product elasticities...")
	pairRows, err := o.runLevel(ctx, pairJobs(txs), computedAt)
	if err != nil {
		return nil, err
	}
	if err := o.pairStore.ReplaceAll(ctx, pairRows); err != nil {
		return nil, fmt.Errorf("%w: persist customer-product elasticities: %v", storage.ErrStoreUnavailable, err)
	}
	result.PairRows = len(pairRows)

	for _, rows := range [][]*domain.EntityElasticity{productRows, customerRows, pairRows} {
		for _, r := range rows {
			if r.Elasticity == nil {
				result.NullRows++
			}
		}
	}

	o.log("batch completed: %d product, %d customer, %d pair rows (%d null)",
		result.ProductRows, result.CustomerRows, result.PairRows, result.NullRows)

	return result, nil
}

// entityJob is one entity's worth of work: its key and its transactions.
type entityJob struct {
	level      string
	productID  *int64
	customerID *int64
	txs        []*domain.Transaction
}

func productJobs(txs []*domain.Transaction) []entityJob {
	groups := sampling.ByProduct(txs)
	jobs := make([]entityJob, 0, len(groups))
	for _, id := range sampling.DistinctProducts(txs) {
		pid := id
		jobs = append(jobs, entityJob{level: domain.LevelProduct, productID: &pid, txs: groups[id]})
	}
	return jobs
}

func customerJobs(txs []*domain.Transaction) []entityJob {
	groups := sampling.ByCustomer(txs)
	jobs := make([]entityJob, 0, len(groups))
	for _, id := range sampling.DistinctCustomers(txs) {
		cid := id
		jobs = append(jobs, entityJob{level: domain.LevelCustomer, customerID: &cid, txs: groups[id]})
	}
	return jobs
}

func pairJobs(txs []*domain.Transaction) []entityJob {
	groups := sampling.ByPair(txs)
	jobs := make([]entityJob, 0, len(groups))
	for _, key := range sampling.DistinctPairs(txs) {
		k := key
		jobs = append(jobs, entityJob{
			level:      domain.LevelCustomerProduct,
			customerID: &k.CustomerID,
			productID:  &k.ProductID,
			txs:        groups[key],
		})
	}
	return jobs
}

// runLevel fans entity jobs out over the worker pool and collects one row
// per (entity, price type). Output is sorted for deterministic persistence.
func (o *Orchestrator) runLevel(ctx context.Context, jobs []entityJob, computedAt int64) ([]*domain.EntityElasticity, error) {
	workers := o.workers
	if workers < 1 {
		workers = 1
	}

	jobCh := make(chan entityJob)
	var (
		mu   sync.Mutex
		rows []*domain.EntityElasticity
		wg   sync.WaitGroup
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				entityRows := o.estimateEntity(job, computedAt)
				mu.Lock()
				rows = append(rows, entityRows...)
				mu.Unlock()
				if o.onEntity != nil {
					o.onEntity()
				}
			}
		}()
	}

	var ctxErr error
feed:
	for _, job := range jobs {
		select {
		case jobCh <- job:
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break feed
		}
	}
	close(jobCh)
	wg.Wait()

	if ctxErr != nil {
		return nil, ctxErr
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		ac, bc := idOrZero(a.CustomerID), idOrZero(b.CustomerID)
		if ac != bc {
			return ac < bc
		}
		ap, bp := idOrZero(a.ProductID), idOrZero(b.ProductID)
		if ap != bp {
			return ap < bp
		}
		return a.PriceType < b.PriceType
	})

	return rows, nil
}

// estimateEntity produces exactly one row per price type. Any estimator
// failure (insufficient data, degenerate price variance) records a null
// elasticity rather than skipping the row.
func (o *Orchestrator) estimateEntity(job entityJob, computedAt int64) []*domain.EntityElasticity {
	rows := make([]*domain.EntityElasticity, 0, 2)
	for _, priceType := range []string{domain.PriceTypeRegular, domain.PriceTypeSale} {
		var sample []domain.SamplePoint
		if o.weekly {
			sample = sampling.WeeklySample(job.txs, priceType)
		} else {
			sample = sampling.RawSample(job.txs, priceType)
		}

		row := &domain.EntityElasticity{
			Level:      job.level,
			ProductID:  job.productID,
			CustomerID: job.customerID,
			PriceType:  priceType,
			ComputedAt: computedAt,
		}

		slope, size, err := regression.FitSample(sample)
		row.SampleSize = size
		if err == nil {
			s := slope
			row.Elasticity = &s
		}
		rows = append(rows, row)
	}
	return rows
}

func (o *Orchestrator) log(format string, args ...any) {
	if o.verbose {
		log.Printf("[batch] "+format, args...)
	}
}

func idOrZero(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}
