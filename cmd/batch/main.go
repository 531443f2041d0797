// Package main provides the batch recomputation entry point.
// Executes: load transactions → estimate per entity → replace result tables.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"

	"elasticity-lab/internal/batch"
	"elasticity-lab/internal/domain"
	"elasticity-lab/internal/observability"
	"elasticity-lab/internal/seed"
	"elasticity-lab/internal/storage"
	chstore "elasticity-lab/internal/storage/clickhouse"
	"elasticity-lab/internal/storage/memory"
	"elasticity-lab/internal/storage/migrations"
	mysqlstore "elasticity-lab/internal/storage/mysql"
	pgstore "elasticity-lab/internal/storage/postgres"
)

// resultStores holds the three elasticity stores of one backend.
type resultStores struct {
	product  storage.ElasticityStore
	customer storage.ElasticityStore
	pair     storage.ElasticityStore
}

func main() {
	loadEnvFile()

	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	mysqlDSN := flag.String("mysql-dsn", os.Getenv("MYSQL_DSN"), "MySQL/MariaDB connection string for the transaction source (overrides PostgreSQL as source)")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string for the reporting sink (optional)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage with generated demo data")
	migrate := flag.Bool("migrate", false, "Run database migrations before the batch")
	weekly := flag.Bool("weekly", false, "Aggregate transactions into ISO-week buckets before fitting")
	workers := flag.Int("workers", 4, "Number of concurrent estimation workers")
	progress := flag.Bool("progress", false, "Show a progress bar")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, cancelling batch...\n", sig)
		cancel()
	}()

	if !*useMemory && *postgresDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: --postgres-dsn is required (use --use-memory for demo data)")
		os.Exit(1)
	}

	txStore, results, cleanup, err := createStores(ctx, *postgresDSN, *mysqlDSN, *useMemory, *migrate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating stores: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	opts := batch.Options{
		TransactionStore: txStore,
		ProductStore:     results.product,
		CustomerStore:    results.customer,
		PairStore:        results.pair,
		Weekly:           *weekly,
		Workers:          *workers,
		Verbose:          *verbose,
	}

	if *progress {
		txs, err := txStore.GetAll(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error counting entities: %v\n", err)
			os.Exit(1)
		}
		bar := progressbar.Default(int64(batch.EntityCount(txs)))
		opts.OnEntity = func() { bar.Add(1) }
	}

	start := time.Now()
	result, err := batch.New(opts).Run(ctx)
	if err != nil {
		observability.RecordBatchRun("error", time.Since(start).Seconds())
		fmt.Fprintf(os.Stderr, "Batch error: %v\n", err)
		os.Exit(1)
	}
	observability.RecordBatchRun("success", time.Since(start).Seconds())
	observability.RecordRowsWritten(domain.LevelProduct, result.ProductRows)
	observability.RecordRowsWritten(domain.LevelCustomer, result.CustomerRows)
	observability.RecordRowsWritten(domain.LevelCustomerProduct, result.PairRows)
	observability.RecordNullEstimates(result.NullRows)

	fmt.Printf("Batch completed in %v:\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("  Transactions: %d\n", result.TransactionsScanned)
	fmt.Printf("  Product rows: %d\n", result.ProductRows)
	fmt.Printf("  Customer rows: %d\n", result.CustomerRows)
	fmt.Printf("  Pair rows: %d\n", result.PairRows)
	fmt.Printf("  Null estimates: %d\n", result.NullRows)

	// Mirror result tables into ClickHouse for BI tools.
	if *clickhouseDSN != "" {
		if err := mirrorToClickhouse(ctx, *clickhouseDSN, *migrate, results); err != nil {
			fmt.Fprintf(os.Stderr, "ClickHouse mirror error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Mirrored result tables to ClickHouse")
	}
}

// createStores selects the transaction source and result backend.
// MySQL can replace PostgreSQL as the transaction source; results always
// land in PostgreSQL (or memory).
func createStores(ctx context.Context, postgresDSN, mysqlDSN string, useMemory, migrate bool) (storage.TransactionStore, resultStores, func(), error) {
	if useMemory {
		txStore := memory.NewTransactionStore()
		if err := txStore.InsertBulk(ctx, seed.Generate(seed.DefaultConfig())); err != nil {
			return nil, resultStores{}, nil, fmt.Errorf("load demo data: %w", err)
		}
		results := resultStores{
			product:  memory.NewProductElasticityStore(),
			customer: memory.NewCustomerElasticityStore(),
			pair:     memory.NewPairElasticityStore(),
		}
		return txStore, results, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, resultStores{}, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if migrate {
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, resultStores{}, nil, fmt.Errorf("run postgres migrations: %w", err)
		}
	}

	var txStore storage.TransactionStore = pgstore.NewTransactionStore(pool)
	cleanup := func() { pool.Close() }

	if mysqlDSN != "" {
		db, err := mysqlstore.Open(mysqlDSN)
		if err != nil {
			pool.Close()
			return nil, resultStores{}, nil, fmt.Errorf("connect to mysql: %w", err)
		}
		txStore = mysqlstore.NewTransactionStore(db)
		cleanup = func() {
			db.Close()
			pool.Close()
		}
	}

	results := resultStores{
		product:  pgstore.NewProductElasticityStore(pool),
		customer: pgstore.NewCustomerElasticityStore(pool),
		pair:     pgstore.NewPairElasticityStore(pool),
	}
	return txStore, results, cleanup, nil
}

// mirrorToClickhouse copies the freshly computed result tables into the
// ClickHouse reporting sink.
func mirrorToClickhouse(ctx context.Context, dsn string, migrate bool, src resultStores) error {
	var conn *chstore.Conn
	var err error
	if migrate {
		conn, err = migrations.RunClickhouseMigrations(ctx, dsn)
	} else {
		conn, err = chstore.NewConn(ctx, dsn)
	}
	if err != nil {
		return fmt.Errorf("connect to clickhouse: %w", err)
	}
	defer conn.Close()

	sinks := []struct {
		src storage.ElasticityStore
		dst storage.ElasticityStore
	}{
		{src.product, chstore.NewProductElasticityStore(conn)},
		{src.customer, chstore.NewCustomerElasticityStore(conn)},
		{src.pair, chstore.NewPairElasticityStore(conn)},
	}
	for _, s := range sinks {
		rows, err := s.src.GetAll(ctx)
		if err != nil {
			return err
		}
		if err := s.dst.ReplaceAll(ctx, rows); err != nil {
			return err
		}
	}
	return nil
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
