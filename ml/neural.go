package ml

import (
	"fmt"
	"sync"

	"github.com/goml/gobrain"
	"gitlab.com/aoterocom/MarketForge/helpers"
)

type NeuralConfig struct {
	Hidden       int
	Epochs       int
	LearningRate float64
	Momentum     float64
}

func DefaultNeuralConfig() NeuralConfig {
	return NeuralConfig{
		Hidden:       12,
		Epochs:       200,
		LearningRate: 0.3,
		Momentum:     0.4,
	}
}

// NeuralClassifier is a single-hidden-layer feed-forward network with one sigmoid output.
type NeuralClassifier struct {
	Config  NeuralConfig
	Network *gobrain.FeedForward

	// Update writes activations into the network
	mu sync.Mutex
}

func NewNeuralClassifier(config NeuralConfig) *NeuralClassifier {
	return &NeuralClassifier{Config: config}
}

func (nc *NeuralClassifier) Fit(x [][]float64, y []int) error {
	if len(x) == 0 || len(x) != len(y) {
		return fmt.Errorf("neural: %d samples for %d labels", len(x), len(y))
	}
	if nc.Config.Hidden <= 0 || nc.Config.Epochs <= 0 {
		return fmt.Errorf("neural: invalid config %+v", nc.Config)
	}

	patterns := make([][][]float64, len(x))
	for i := range x {
		patterns[i] = [][]float64{x[i], {float64(y[i])}}
	}

	network := &gobrain.FeedForward{}
	network.Init(len(x[0]), nc.Config.Hidden, 1)
	trainingErrors := network.Train(patterns, nc.Config.Epochs, nc.Config.LearningRate, nc.Config.Momentum, false)
	if len(trainingErrors) > 0 {
		helpers.Logger.Debugf("neural: final training error %.6f", trainingErrors[len(trainingErrors)-1])
	}

	nc.mu.Lock()
	nc.Network = network
	nc.mu.Unlock()
	return nil
}

func (nc *NeuralClassifier) PredictProba(features []float64) (float64, error) {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	if nc.Network == nil {
		return 0, fmt.Errorf("neural: not fitted")
	}
	// NInputs counts the bias unit
	if len(features) != nc.Network.NInputs-1 {
		return 0, fmt.Errorf("neural: expected %d features, got %d", nc.Network.NInputs-1, len(features))
	}
	output := nc.Network.Update(features)
	return helpers.Clamp(output[0], 0, 1), nil
}
