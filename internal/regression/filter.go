package regression

import "elasticity-lab/internal/domain"

// FilterSample returns the subsequence of sample where quantity > 0 and
// price > 0, in input order. Non-positive values are invalid for the log
// transform. The function is pure and idempotent.
func FilterSample(sample []domain.SamplePoint) []domain.SamplePoint {
	filtered := make([]domain.SamplePoint, 0, len(sample))
	for _, p := range sample {
		if p.Quantity > 0 && p.Price > 0 {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
