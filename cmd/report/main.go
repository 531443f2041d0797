// Package main renders the persisted elasticity tables as CSV files and
// a Markdown summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"elasticity-lab/internal/reporting"
	"elasticity-lab/internal/storage"
	chstore "elasticity-lab/internal/storage/clickhouse"
	pgstore "elasticity-lab/internal/storage/postgres"
)

func main() {
	loadEnvFile()

	outputDir := flag.String("output-dir", "output", "Output directory for generated files")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (overrides PostgreSQL as source)")
	flag.Parse()

	ctx := context.Background()

	if *postgresDSN == "" && *clickhouseDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: --postgres-dsn or --clickhouse-dsn is required")
		os.Exit(1)
	}

	productStore, customerStore, pairStore, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	report, err := reporting.NewGenerator(productStore, customerStore, pairStore).Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	files := map[string]string{
		"product_elasticities.csv":          reporting.RenderCSV(report.ProductRows),
		"customer_elasticities.csv":         reporting.RenderCSV(report.CustomerRows),
		"customer_product_elasticities.csv": reporting.RenderCSV(report.PairRows),
		"REPORT.md":                         reporting.RenderMarkdown(report),
	}
	for name, content := range files {
		path := filepath.Join(*outputDir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
			os.Exit(1)
		}
	}

	fmt.Println("Report generated successfully:")
	fmt.Printf("  - %s/REPORT.md\n", *outputDir)
	fmt.Printf("  - %s/product_elasticities.csv\n", *outputDir)
	fmt.Printf("  - %s/customer_elasticities.csv\n", *outputDir)
	fmt.Printf("  - %s/customer_product_elasticities.csv\n", *outputDir)
}

// createStores reads from ClickHouse when configured, PostgreSQL otherwise.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string) (
	storage.ElasticityStore,
	storage.ElasticityStore,
	storage.ElasticityStore,
	func(),
	error,
) {
	if clickhouseDSN != "" {
		conn, err := chstore.NewConn(ctx, clickhouseDSN)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		return chstore.NewProductElasticityStore(conn),
			chstore.NewCustomerElasticityStore(conn),
			chstore.NewPairElasticityStore(conn),
			func() { conn.Close() },
			nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return pgstore.NewProductElasticityStore(pool),
		pgstore.NewCustomerElasticityStore(pool),
		pgstore.NewPairElasticityStore(pool),
		func() { pool.Close() },
		nil
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
