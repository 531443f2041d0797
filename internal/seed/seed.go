package seed

import (
	"math"
	"math/rand"
	"time"

	"elasticity-lab/internal/domain"
)

// Config controls synthetic transaction generation.
type Config struct {
	Orders    int
	Products  int
	Customers int
	Retailers int
	Stores    int
	Seed      int64
	Start     time.Time
	End       time.Time
}

// DefaultConfig produces a small demo dataset: many
// orders over few products and customers, so each (customer, product)
// pair accumulates observations at varying prices.
func DefaultConfig() Config {
	end := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	return Config{
		Orders:    1000,
		Products:  5,
		Customers: 10,
		Retailers: 5,
		Stores:    20,
		Seed:      42,
		Start:     end.AddDate(-2, 0, 0),
		End:       end,
	}
}

// Generate produces cfg.Orders transactions with a planted demand curve:
// each product has a fixed negative price sensitivity, so a log-log fit
// over the generated data recovers a negative coefficient. Output is
// deterministic for a given Config.
func Generate(cfg Config) []*domain.Transaction {
	rng := rand.New(rand.NewSource(cfg.Seed))

	// Per-product demand parameters. Baseline log-quantity and a price
	// coefficient between -0.8 and -2.3.
	betas := make([]float64, cfg.Products)
	alphas := make([]float64, cfg.Products)
	for i := range betas {
		betas[i] = -0.8 - 1.5*rng.Float64()
		alphas[i] = 6.0 + 2.0*rng.Float64()
	}

	span := cfg.End.Sub(cfg.Start)
	txs := make([]*domain.Transaction, 0, cfg.Orders)
	for i := 0; i < cfg.Orders; i++ {
		productIdx := rng.Intn(cfg.Products)
		productID := int64(productIdx + 1)
		customerID := int64(rng.Intn(cfg.Customers) + 1)

		ts := cfg.Start.Add(time.Duration(rng.Int63n(int64(span))))

		regular := 10 + 490*rng.Float64()
		regular = math.Round(regular*100) / 100
		sale := regular
		if rng.Float64() < 0.5 {
			sale = math.Round(regular*(0.5+0.4*rng.Float64())*100) / 100
		}

		// Quantity follows the planted curve against the sale price (the
		// price the buyer actually pays), with multiplicative noise.
		noise := rng.NormFloat64() * 0.3
		q := math.Exp(alphas[productIdx] + betas[productIdx]*math.Log(sale) + noise)
		quantity := int64(math.Round(q))
		if quantity < 1 {
			quantity = 1
		}

		txs = append(txs, &domain.Transaction{
			RetailerID:   int64(rng.Intn(cfg.Retailers) + 1),
			StoreID:      int64(rng.Intn(cfg.Stores) + 1),
			CustomerID:   customerID,
			ProductID:    productID,
			Timestamp:    ts.UnixMilli(),
			Quantity:     quantity,
			RegularPrice: regular,
			SalePrice:    sale,
		})
	}
	return txs
}
