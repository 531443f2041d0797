// Package main provides the elasticity query server:
// - Query API (on demand): per-product, per-customer, per-pair estimates
// - Batch (scheduled, optional): full recomputation of the result tables
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"elasticity-lab/internal/batch"
	"elasticity-lab/internal/domain"
	"elasticity-lab/internal/estimator"
	"elasticity-lab/internal/observability"
	"elasticity-lab/internal/regression"
	"elasticity-lab/internal/seed"
	"elasticity-lab/internal/storage"
	"elasticity-lab/internal/storage/memory"
	"elasticity-lab/internal/storage/migrations"
	mysqlstore "elasticity-lab/internal/storage/mysql"
	pgstore "elasticity-lab/internal/storage/postgres"
)

// Server holds the query API and optional batch scheduler.
type Server struct {
	estimator     *estimator.Estimator
	orchestrator  *batch.Orchestrator
	batchInterval time.Duration
	logger        *log.Logger

	mu           sync.Mutex
	started      time.Time
	lastBatchRun time.Time
	batchRunning bool
	batchRuns    int
}

func main() {
	loadEnvFile()

	addr := flag.String("addr", ":8080", "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	mysqlDSN := flag.String("mysql-dsn", os.Getenv("MYSQL_DSN"), "MySQL/MariaDB connection string for the transaction source (overrides PostgreSQL as source)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage with generated demo data")
	migrate := flag.Bool("migrate", false, "Run database migrations on startup")
	batchInterval := flag.Duration("batch-interval", 0, "Batch recomputation interval (0 disables the scheduler)")
	workers := flag.Int("workers", 4, "Number of concurrent batch estimation workers")
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for demo data)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	txStore, orch, cleanup, err := createComponents(ctx, *postgresDSN, *mysqlDSN, *useMemory, *migrate, *workers)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	server := &Server{
		estimator:     estimator.New(txStore),
		orchestrator:  orch,
		batchInterval: *batchInterval,
		logger:        logger,
		started:       time.Now(),
	}

	if *batchInterval > 0 {
		go server.runBatchScheduler(ctx)
	}

	httpServer := &http.Server{Addr: *addr, Handler: server.routes()}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	logger.Printf("Listening on %s", *addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("HTTP server error: %v", err)
	}
	logger.Println("Shutdown complete")
}

// createComponents selects stores and wires the optional batch orchestrator.
func createComponents(ctx context.Context, postgresDSN, mysqlDSN string, useMemory, migrate bool, workers int) (storage.TransactionStore, *batch.Orchestrator, func(), error) {
	if useMemory {
		txStore := memory.NewTransactionStore()
		if err := txStore.InsertBulk(ctx, seed.Generate(seed.DefaultConfig())); err != nil {
			return nil, nil, nil, fmt.Errorf("load demo data: %w", err)
		}
		orch := batch.New(batch.Options{
			TransactionStore: txStore,
			ProductStore:     memory.NewProductElasticityStore(),
			CustomerStore:    memory.NewCustomerElasticityStore(),
			PairStore:        memory.NewPairElasticityStore(),
			Workers:          workers,
		})
		return txStore, orch, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if migrate {
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("run postgres migrations: %w", err)
		}
	}

	var txStore storage.TransactionStore = pgstore.NewTransactionStore(pool)
	cleanup := func() { pool.Close() }

	if mysqlDSN != "" {
		db, err := mysqlstore.Open(mysqlDSN)
		if err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("connect to mysql: %w", err)
		}
		txStore = mysqlstore.NewTransactionStore(db)
		cleanup = func() {
			db.Close()
			pool.Close()
		}
	}

	orch := batch.New(batch.Options{
		TransactionStore: txStore,
		ProductStore:     pgstore.NewProductElasticityStore(pool),
		CustomerStore:    pgstore.NewCustomerElasticityStore(pool),
		PairStore:        pgstore.NewPairElasticityStore(pool),
		Workers:          workers,
	})
	return txStore, orch, cleanup, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/status", s.handleStatus)

	mux.HandleFunc("/elasticity/product", s.handleElasticity(domain.LevelProduct))
	mux.HandleFunc("/elasticity/customer", s.handleElasticity(domain.LevelCustomer))
	mux.HandleFunc("/elasticity/customer_product", s.handleElasticity(domain.LevelCustomerProduct))

	return mux
}

// ElasticityResponse is the JSON response for elasticity queries.
type ElasticityResponse struct {
	Level      string  `json:"level"`
	ProductID  *int64  `json:"product_id,omitempty"`
	CustomerID *int64  `json:"customer_id,omitempty"`
	PriceType  string  `json:"price_type"`
	Elasticity float64 `json:"elasticity"`
	SampleSize int     `json:"sample_size"`
}

// ErrorResponse is the JSON body for failed queries.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleElasticity builds the handler for one aggregation level. The
// level fixes which id parameters are required.
func (s *Server) handleElasticity(level string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		q := estimator.Query{
			PriceType: r.URL.Query().Get("price_type"),
			Weekly:    r.URL.Query().Get("weekly") == "true",
		}

		var parseErr error
		switch level {
		case domain.LevelProduct:
			q.ProductID, parseErr = idParam(r, "product_id")
		case domain.LevelCustomer:
			q.CustomerID, parseErr = idParam(r, "customer_id")
		case domain.LevelCustomerProduct:
			q.CustomerID, parseErr = idParam(r, "customer_id")
			if parseErr == nil {
				q.ProductID, parseErr = idParam(r, "product_id")
			}
		}
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, parseErr.Error())
			observability.RecordQuery(level, "bad_request", 0)
			return
		}

		start := time.Now()
		result, err := s.estimator.Estimate(r.Context(), q)
		elapsed := time.Since(start).Seconds()
		if err != nil {
			status, outcome := classifyError(err)
			writeError(w, status, err.Error())
			observability.RecordQuery(level, outcome, elapsed)
			return
		}
		observability.RecordQuery(level, "ok", elapsed)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ElasticityResponse{
			Level:      result.Level,
			ProductID:  result.ProductID,
			CustomerID: result.CustomerID,
			PriceType:  result.PriceType,
			Elasticity: result.Elasticity,
			SampleSize: result.SampleSize,
		})
	}
}

// classifyError maps estimation errors to HTTP status codes.
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, estimator.ErrInvalidQuery), errors.Is(err, estimator.ErrInvalidPriceType):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, estimator.ErrNoMatchingData):
		return http.StatusNotFound, "no_data"
	case errors.Is(err, regression.ErrInsufficientData), errors.Is(err, regression.ErrDegenerate):
		return http.StatusUnprocessableEntity, "not_estimable"
	case errors.Is(err, storage.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "store_error"
	default:
		return http.StatusInternalServerError, "error"
	}
}

func idParam(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, fmt.Errorf("missing required parameter %q", name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return &id, nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: msg})
}

// runBatchScheduler recomputes the result tables on an interval.
func (s *Server) runBatchScheduler(ctx context.Context) {
	s.logger.Printf("Starting batch scheduler (interval: %v)...", s.batchInterval)

	s.runBatch(ctx)

	ticker := time.NewTicker(s.batchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runBatch(ctx)
		}
	}
}

func (s *Server) runBatch(ctx context.Context) {
	s.mu.Lock()
	if s.batchRunning {
		s.mu.Unlock()
		s.logger.Println("Batch already running, skipping...")
		return
	}
	s.batchRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.batchRunning = false
		s.lastBatchRun = time.Now()
		s.batchRuns++
		s.mu.Unlock()
	}()

	s.logger.Println("Running batch...")
	start := time.Now()

	result, err := s.orchestrator.Run(ctx)
	if err != nil {
		s.logger.Printf("Batch error: %v", err)
		observability.RecordBatchRun("error", time.Since(start).Seconds())
		return
	}

	s.logger.Printf("Batch completed in %v: %d transactions, %d product rows, %d customer rows, %d pair rows",
		time.Since(start), result.TransactionsScanned, result.ProductRows, result.CustomerRows, result.PairRows)
	observability.RecordBatchRun("success", time.Since(start).Seconds())
	observability.RecordNullEstimates(result.NullRows)
	observability.DefaultMetrics.LastSuccessfulBatch.Set(float64(time.Now().Unix()))
}

// StatusResponse is the JSON response for the /status endpoint.
type StatusResponse struct {
	Status       string    `json:"status"`
	Uptime       string    `json:"uptime"`
	LastBatchRun time.Time `json:"last_batch_run,omitempty"`
	BatchRuns    int       `json:"batch_runs"`
	BatchRunning bool      `json:"batch_running"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := StatusResponse{
		Status:       "running",
		Uptime:       time.Since(s.started).String(),
		LastBatchRun: s.lastBatchRun,
		BatchRuns:    s.batchRuns,
		BatchRunning: s.batchRunning,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
