package ml

import (
	"fmt"
	"math"

	"gitlab.com/aoterocom/MarketForge/indicators"
	"gitlab.com/aoterocom/MarketForge/models"
)

const (
	MinTrainingRows = 50
	TestFraction    = 0.2
)

// Example is one training row: the features of a candle and whether the next close was higher.
type Example struct {
	Features FeatureVector
	Label    int
}

// BuildExamples labels every row that has a successor. The last row is dropped.
func BuildExamples(frame indicators.Frame) ([]Example, error) {
	if frame.Len() < 2 {
		return nil, nil
	}
	examples := make([]Example, 0, frame.Len()-1)
	for i := 0; i < frame.Len()-1; i++ {
		features, err := ExtractFeatures(frame.Rows[i])
		if err != nil {
			return nil, err
		}
		label := 0
		if frame.Rows[i+1].Close > frame.Rows[i].Close {
			label = 1
		}
		examples = append(examples, Example{Features: features, Label: label})
	}
	return examples, nil
}

// ChronologicalSplit keeps time order: the most recent ceil(fraction*n) examples are the test set.
func ChronologicalSplit(examples []Example, fraction float64) (train []Example, test []Example, err error) {
	nTest := int(math.Ceil(fraction * float64(len(examples))))
	if nTest >= len(examples) || nTest < 0 {
		return nil, nil, fmt.Errorf("%w: cannot split %d examples", models.ErrInsufficientHistory, len(examples))
	}
	cut := len(examples) - nTest
	return examples[:cut], examples[cut:], nil
}

func matrix(examples []Example) ([][]float64, []int) {
	x := make([][]float64, len(examples))
	y := make([]int, len(examples))
	for i, example := range examples {
		x[i] = example.Features.Values()
		y[i] = example.Label
	}
	return x, y
}
