// Package regression fits the log-log demand model
// ln(quantity) = alpha + beta*ln(price) by ordinary least squares.
// The slope beta is the price elasticity of demand.
package regression

import (
	"errors"
	"math"

	"elasticity-lab/internal/domain"
)

// ErrInsufficientData is returned when fewer than 2 valid points remain
// after filtering. This is an expected, frequent outcome (new products,
// one-time customers), not a crash condition.
var ErrInsufficientData = errors.New("not enough valid data points to estimate elasticity (need >= 2)")

// ErrDegenerate is returned when every price in the sample is identical:
// with zero variance in ln(price) the OLS slope is undefined.
var ErrDegenerate = errors.New("price shows no variation, elasticity slope is undefined")

// Elasticity computes the OLS slope of ln(quantity) on ln(price) with an
// intercept term. The sample must already be filtered: every point needs
// quantity > 0 and price > 0 (see FilterSample).
//
// The returned coefficient is signed; for ordinary goods it is expected
// to be negative. For a noise-free power-law sample the true exponent is
// recovered to floating-point precision.
func Elasticity(sample []domain.SamplePoint) (float64, error) {
	n := len(sample)
	if n < 2 {
		return 0, ErrInsufficientData
	}

	logQ := make([]float64, n)
	logP := make([]float64, n)
	for i, p := range sample {
		logQ[i] = math.Log(p.Quantity)
		logP[i] = math.Log(p.Price)
	}

	meanP := mean(logP)
	meanQ := mean(logQ)

	// Centered sums: slope = Sxy / Sxx.
	var sxx, sxy float64
	for i := 0; i < n; i++ {
		dp := logP[i] - meanP
		sxx += dp * dp
		sxy += dp * (logQ[i] - meanQ)
	}

	if sxx == 0 {
		return 0, ErrDegenerate
	}

	slope := sxy / sxx
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return 0, ErrDegenerate
	}
	return slope, nil
}

// FitSample filters raw points and estimates the elasticity in one step.
// Returns the signed slope and the number of valid points that fed the fit.
func FitSample(sample []domain.SamplePoint) (float64, int, error) {
	filtered := FilterSample(sample)
	slope, err := Elasticity(filtered)
	if err != nil {
		return 0, len(filtered), err
	}
	return slope, len(filtered), nil
}

// mean calculates the arithmetic mean of values.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
