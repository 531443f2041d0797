package sampling

import (
	"sort"
	"time"

	"elasticity-lab/internal/domain"
)

// RawSample builds one (quantity, price) point per transaction for the
// chosen price type, in input order. No validity filtering happens here;
// regression.FilterSample runs on the result.
func RawSample(txs []*domain.Transaction, priceType string) []domain.SamplePoint {
	sample := make([]domain.SamplePoint, 0, len(txs))
	for _, tx := range txs {
		sample = append(sample, domain.SamplePoint{
			Quantity: float64(tx.Quantity),
			Price:    domain.PriceForType(tx, priceType),
		})
	}
	return sample
}

// WeeklySample aggregates transactions into one point per ISO week:
// summed quantity and mean price. Points are ordered by (year, week) so
// repeated runs over the same rows produce identical samples. Validity
// filtering runs on the aggregated values, not the raw ones.
func WeeklySample(txs []*domain.Transaction, priceType string) []domain.SamplePoint {
	buckets := WeeklyBuckets(txs, priceType)
	sample := make([]domain.SamplePoint, 0, len(buckets))
	for _, b := range buckets {
		sample = append(sample, domain.SamplePoint{Quantity: b.Quantity, Price: b.Price})
	}
	return sample
}

// WeeklyBuckets groups transactions by ISO week (UTC) and aggregates
// sum(quantity) and mean(price) per week, sorted by (year, week).
func WeeklyBuckets(txs []*domain.Transaction, priceType string) []domain.WeekBucket {
	type accum struct {
		quantity float64
		priceSum float64
		count    int
	}
	type weekKey struct {
		year int
		week int
	}

	acc := make(map[weekKey]*accum)
	for _, tx := range txs {
		year, week := ISOWeek(tx.Timestamp)
		k := weekKey{year: year, week: week}
		a, ok := acc[k]
		if !ok {
			a = &accum{}
			acc[k] = a
		}
		a.quantity += float64(tx.Quantity)
		a.priceSum += domain.PriceForType(tx, priceType)
		a.count++
	}

	buckets := make([]domain.WeekBucket, 0, len(acc))
	for k, a := range acc {
		buckets = append(buckets, domain.WeekBucket{
			Year:     k.year,
			Week:     k.week,
			Quantity: a.quantity,
			Price:    a.priceSum / float64(a.count),
		})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Year != buckets[j].Year {
			return buckets[i].Year < buckets[j].Year
		}
		return buckets[i].Week < buckets[j].Week
	})
	return buckets
}

// ISOWeek returns the ISO 8601 week-numbering year and week for a Unix
// millisecond timestamp, evaluated in UTC. Deterministic from the
// timestamp alone.
func ISOWeek(tsMillis int64) (year, week int) {
	return time.UnixMilli(tsMillis).UTC().ISOWeek()
}
