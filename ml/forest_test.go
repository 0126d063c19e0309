package ml

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

// separable returns n samples whose label is the sign of the first column; the second is noise.
func separable(n int, seed int64) ([][]float64, []int) {
	rnd := rand.New(rand.NewSource(seed))
	x := make([][]float64, n)
	y := make([]int, n)
	for i := range x {
		signal := rnd.Float64()*2 - 1
		x[i] = []float64{signal, rnd.NormFloat64()}
		if signal > 0 {
			y[i] = 1
		}
	}
	return x, y
}

var smallForest = ForestConfig{Trees: 15, MaxDepth: 5, MinSamplesSplit: 2, Seed: 42}

func TestRandomForestSeparable(t *testing.T) {
	x, y := separable(200, 1)
	forest := NewRandomForest(smallForest)
	assert.NoError(t, forest.Fit(x, y))
	assert.Len(t, forest.Trees, smallForest.Trees)

	up, err := forest.PredictProba([]float64{0.9, 0})
	assert.NoError(t, err)
	down, err := forest.PredictProba([]float64{-0.9, 0})
	assert.NoError(t, err)

	assert.Greater(t, up, 0.7)
	assert.Less(t, down, 0.3)
}

func TestRandomForestDeterministic(t *testing.T) {
	x, y := separable(120, 2)
	first := NewRandomForest(smallForest)
	second := NewRandomForest(smallForest)
	assert.NoError(t, first.Fit(x, y))
	assert.NoError(t, second.Fit(x, y))

	for _, probe := range [][]float64{{0.1, 1}, {-0.3, -2}, {0.02, 0.5}} {
		p1, _ := first.PredictProba(probe)
		p2, _ := second.PredictProba(probe)
		assert.Equal(t, p1, p2)
	}
}

func TestRandomForestErrors(t *testing.T) {
	forest := NewRandomForest(smallForest)
	_, err := forest.PredictProba([]float64{1, 2})
	assert.Error(t, err)

	assert.Error(t, forest.Fit(nil, nil))
	assert.Error(t, forest.Fit([][]float64{{1}, {2}}, []int{1}))

	x, y := separable(40, 3)
	assert.NoError(t, forest.Fit(x, y))
	_, err = forest.PredictProba([]float64{1})
	assert.Error(t, err)
}

func TestStandardScaler(t *testing.T) {
	scaler := &StandardScaler{}
	assert.NoError(t, scaler.Fit([][]float64{{1, 5}, {3, 5}, {5, 5}}))

	assert.InDeltaSlice(t, []float64{3, 5}, scaler.Means, 1e-12)
	scaled, err := scaler.Transform([]float64{5, 7})
	assert.NoError(t, err)
	assert.InDelta(t, 1.224744871, scaled[0], 1e-9)
	// constant column is only centered
	assert.InDelta(t, 2.0, scaled[1], 1e-12)

	_, err = scaler.Transform([]float64{1})
	assert.Error(t, err)
}

func TestNeuralClassifier(t *testing.T) {
	x, y := separable(80, 4)
	network := NewNeuralClassifier(NeuralConfig{Hidden: 4, Epochs: 150, LearningRate: 0.3, Momentum: 0.4})
	assert.NoError(t, network.Fit(x, y))

	up, err := network.PredictProba([]float64{0.9, 0})
	assert.NoError(t, err)
	down, err := network.PredictProba([]float64{-0.9, 0})
	assert.NoError(t, err)
	assert.True(t, up >= 0 && up <= 1)
	assert.True(t, down >= 0 && down <= 1)
	assert.Greater(t, up, down)

	_, err = network.PredictProba([]float64{1, 2, 3})
	assert.Error(t, err)
}
