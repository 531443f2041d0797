// Package main loads deterministic synthetic transactions into the
// transaction store, for local runs and demos.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"elasticity-lab/internal/seed"
	"elasticity-lab/internal/storage"
	"elasticity-lab/internal/storage/migrations"
	mysqlstore "elasticity-lab/internal/storage/mysql"
	pgstore "elasticity-lab/internal/storage/postgres"
)

func main() {
	loadEnvFile()

	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	mysqlDSN := flag.String("mysql-dsn", os.Getenv("MYSQL_DSN"), "MySQL/MariaDB connection string (overrides PostgreSQL)")
	migrate := flag.Bool("migrate", false, "Run database migrations before seeding")
	orders := flag.Int("orders", 1000, "Number of transactions to generate")
	products := flag.Int("products", 5, "Number of distinct products")
	customers := flag.Int("customers", 10, "Number of distinct customers")
	rngSeed := flag.Int64("seed", 42, "Random seed")
	flag.Parse()

	if *postgresDSN == "" && *mysqlDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: --postgres-dsn or --mysql-dsn is required")
		os.Exit(1)
	}

	ctx := context.Background()

	store, cleanup, err := createStore(ctx, *postgresDSN, *mysqlDSN, *migrate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating store: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	cfg := seed.DefaultConfig()
	cfg.Orders = *orders
	cfg.Products = *products
	cfg.Customers = *customers
	cfg.Seed = *rngSeed

	txs := seed.Generate(cfg)
	if err := store.InsertBulk(ctx, txs); err != nil {
		fmt.Fprintf(os.Stderr, "Error inserting transactions: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Inserted %d transactions (%d products, %d customers)\n",
		len(txs), cfg.Products, cfg.Customers)
}

func createStore(ctx context.Context, postgresDSN, mysqlDSN string, migrate bool) (storage.TransactionStore, func(), error) {
	if mysqlDSN != "" {
		db, err := mysqlstore.Open(mysqlDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to mysql: %w", err)
		}
		return mysqlstore.NewTransactionStore(db), func() { db.Close() }, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if migrate {
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
		}
	}
	return pgstore.NewTransactionStore(pool), func() { pool.Close() }, nil
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
