package ml

import (
	"fmt"
	"math"
)

// StandardScaler centers each feature on its training mean and scales it to unit variance.
type StandardScaler struct {
	Means   []float64
	Stddevs []float64
}

func (s *StandardScaler) Fit(x [][]float64) error {
	if len(x) == 0 {
		return fmt.Errorf("scaler: no samples")
	}
	numFeatures := len(x[0])
	s.Means = make([]float64, numFeatures)
	s.Stddevs = make([]float64, numFeatures)

	for _, row := range x {
		if len(row) != numFeatures {
			return fmt.Errorf("scaler: expected %d features, got %d", numFeatures, len(row))
		}
		for j, v := range row {
			s.Means[j] += v
		}
	}
	for j := range s.Means {
		s.Means[j] /= float64(len(x))
	}

	for _, row := range x {
		for j, v := range row {
			d := v - s.Means[j]
			s.Stddevs[j] += d * d
		}
	}
	for j := range s.Stddevs {
		s.Stddevs[j] = math.Sqrt(s.Stddevs[j] / float64(len(x)))
		// constant columns pass through centered
		if s.Stddevs[j] < 1e-12 {
			s.Stddevs[j] = 1.0
		}
	}
	return nil
}

func (s *StandardScaler) Transform(features []float64) ([]float64, error) {
	if len(features) != len(s.Means) {
		return nil, fmt.Errorf("scaler: expected %d features, got %d", len(s.Means), len(features))
	}
	scaled := make([]float64, len(features))
	for j, v := range features {
		scaled[j] = (v - s.Means[j]) / s.Stddevs[j]
	}
	return scaled, nil
}

func (s *StandardScaler) TransformAll(x [][]float64) ([][]float64, error) {
	scaled := make([][]float64, len(x))
	for i, row := range x {
		r, err := s.Transform(row)
		if err != nil {
			return nil, err
		}
		scaled[i] = r
	}
	return scaled, nil
}
