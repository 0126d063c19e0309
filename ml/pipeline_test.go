package ml

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/aoterocom/MarketForge/models"
)

func TestPipelineEncodeDecode(t *testing.T) {
	key := models.NewModelKey("BTC/USDT", "1d")
	for _, kind := range []string{KindForest, KindNeural} {
		pipeline, err := NewPipeline(key, kind, smallForest, NeuralConfig{Hidden: 3, Epochs: 20, LearningRate: 0.3, Momentum: 0.4})
		assert.NoError(t, err)

		x, y := separable(60, 5)
		assert.NoError(t, pipeline.Fit(x, y), kind)

		payload, err := pipeline.Encode()
		assert.NoError(t, err)
		decoded, err := DecodePipeline(payload)
		assert.NoError(t, err)
		assert.Equal(t, key, decoded.Key)
		assert.Equal(t, kind, decoded.Kind)

		probe := []float64{0.4, -0.2}
		expected, err := pipeline.PredictProba(probe)
		assert.NoError(t, err)
		actual, err := decoded.PredictProba(probe)
		assert.NoError(t, err)
		assert.InDelta(t, expected, actual, 1e-12, kind)
	}
}

func TestPipelineScore(t *testing.T) {
	pipeline, err := NewPipeline(models.NewModelKey("ETH/USDT", "1d"), KindForest, smallForest, DefaultNeuralConfig())
	assert.NoError(t, err)

	x, y := separable(150, 6)
	assert.NoError(t, pipeline.Fit(x[:120], y[:120]))
	accuracy, err := pipeline.Score(x[120:], y[120:])
	assert.NoError(t, err)
	assert.Greater(t, accuracy, 0.8)

	accuracy, err = pipeline.Score(nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, accuracy)
}

func TestPipelineErrors(t *testing.T) {
	_, err := NewPipeline(models.NewModelKey("BTC/USDT", "1d"), "svm", smallForest, DefaultNeuralConfig())
	assert.Error(t, err)

	_, err = DecodePipeline([]byte("not a model"))
	assert.True(t, errors.Is(err, models.ErrModelUnavailable))

	unfitted := &Pipeline{Key: models.NewModelKey("BTC/USDT", "1d"), Kind: KindForest}
	_, err = unfitted.PredictProba([]float64{1, 2})
	assert.True(t, errors.Is(err, models.ErrModelUnavailable))
}
