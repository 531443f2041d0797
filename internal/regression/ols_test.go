package regression

import (
	"errors"
	"math"
	"testing"

	"elasticity-lab/internal/domain"
)

func TestElasticity_TwoPointLine(t *testing.T) {
	// ln(10/5) / ln(100/200) = -1.0 exactly
	sample := []domain.SamplePoint{
		{Quantity: 10, Price: 100},
		{Quantity: 5, Price: 200},
	}

	slope, err := Elasticity(sample)
	if err != nil {
		t.Fatalf("Elasticity failed: %v", err)
	}

	if math.Abs(slope-(-1.0)) > 1e-12 {
		t.Errorf("expected slope -1.0, got %v", slope)
	}
}

func TestElasticity_RecoversPowerLaw(t *testing.T) {
	// quantity = C * price^k with no noise: slope must equal k.
	const c = 500.0
	const k = -1.7

	var sample []domain.SamplePoint
	for _, price := range []float64{1.5, 2.0, 3.25, 5.0, 8.0, 13.0, 21.5} {
		sample = append(sample, domain.SamplePoint{
			Quantity: c * math.Pow(price, k),
			Price:    price,
		})
	}

	slope, err := Elasticity(sample)
	if err != nil {
		t.Fatalf("Elasticity failed: %v", err)
	}

	if math.Abs(slope-k) > 1e-9 {
		t.Errorf("expected slope %v, got %v (diff %g)", k, slope, math.Abs(slope-k))
	}
}

func TestElasticity_PositiveSlopePreserved(t *testing.T) {
	// Upward-sloping data must come back with its sign intact.
	sample := []domain.SamplePoint{
		{Quantity: 5, Price: 100},
		{Quantity: 10, Price: 200},
	}

	slope, err := Elasticity(sample)
	if err != nil {
		t.Fatalf("Elasticity failed: %v", err)
	}

	if slope <= 0 {
		t.Errorf("expected positive slope, got %v", slope)
	}
}

func TestElasticity_InsufficientData(t *testing.T) {
	cases := [][]domain.SamplePoint{
		nil,
		{},
		{{Quantity: 10, Price: 100}},
	}

	for _, sample := range cases {
		_, err := Elasticity(sample)
		if !errors.Is(err, ErrInsufficientData) {
			t.Errorf("sample of size %d: expected ErrInsufficientData, got %v", len(sample), err)
		}
	}
}

func TestElasticity_ConstantPrice(t *testing.T) {
	sample := []domain.SamplePoint{
		{Quantity: 10, Price: 100},
		{Quantity: 5, Price: 100},
		{Quantity: 7, Price: 100},
	}

	slope, err := Elasticity(sample)
	if !errors.Is(err, ErrDegenerate) {
		t.Fatalf("expected ErrDegenerate, got %v (slope=%v)", err, slope)
	}
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		t.Errorf("degenerate fit leaked non-finite slope %v", slope)
	}
}

func TestFilterSample_RemovesInvalidRows(t *testing.T) {
	sample := []domain.SamplePoint{
		{Quantity: 10, Price: 100},
		{Quantity: 0, Price: 50},
		{Quantity: -3, Price: 80},
		{Quantity: 4, Price: 0},
		{Quantity: 4, Price: -2},
		{Quantity: 5, Price: 200},
	}

	filtered := FilterSample(sample)

	if len(filtered) != 2 {
		t.Fatalf("expected 2 valid points, got %d", len(filtered))
	}
	// Order preserved.
	if filtered[0].Price != 100 || filtered[1].Price != 200 {
		t.Errorf("filter did not preserve input order: %+v", filtered)
	}
}

func TestFilterSample_Idempotent(t *testing.T) {
	sample := []domain.SamplePoint{
		{Quantity: 10, Price: 100},
		{Quantity: 0, Price: 50},
		{Quantity: 5, Price: 200},
	}

	once := FilterSample(sample)
	twice := FilterSample(once)

	if len(once) != len(twice) {
		t.Fatalf("filter not idempotent: %d vs %d points", len(once), len(twice))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Errorf("point %d changed on second filter: %+v vs %+v", i, once[i], twice[i])
		}
	}
}

func TestFitSample_FiltersBeforeFitting(t *testing.T) {
	// Two valid points plus garbage rows: fit succeeds on the valid pair.
	sample := []domain.SamplePoint{
		{Quantity: 0, Price: 100},
		{Quantity: 10, Price: 100},
		{Quantity: 5, Price: 200},
		{Quantity: -1, Price: 300},
	}

	slope, size, err := FitSample(sample)
	if err != nil {
		t.Fatalf("FitSample failed: %v", err)
	}
	if size != 2 {
		t.Errorf("expected sample size 2, got %d", size)
	}
	if math.Abs(slope-(-1.0)) > 1e-12 {
		t.Errorf("expected slope -1.0, got %v", slope)
	}
}

func TestFitSample_OneValidPoint(t *testing.T) {
	sample := []domain.SamplePoint{
		{Quantity: 0, Price: 100},
		{Quantity: 10, Price: 100},
	}

	_, size, err := FitSample(sample)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	if size != 1 {
		t.Errorf("expected 1 valid point, got %d", size)
	}
}
