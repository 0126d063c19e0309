package ml

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"time"

	"gitlab.com/aoterocom/MarketForge/models"
)

const (
	KindForest = "forest"
	KindNeural = "neural"
)

// Pipeline is the persisted model: a fitted scaler and classifier bound to one key.
// Exactly one of Forest and Network is set, according to Kind.
type Pipeline struct {
	Key       models.ModelKey
	Kind      string
	Scaler    *StandardScaler
	Forest    *RandomForest
	Network   *NeuralClassifier
	TrainedAt time.Time
	Accuracy  float64
	Samples   int
}

func NewPipeline(key models.ModelKey, kind string, forestConfig ForestConfig, neuralConfig NeuralConfig) (*Pipeline, error) {
	pipeline := &Pipeline{
		Key:    key,
		Kind:   kind,
		Scaler: &StandardScaler{},
	}
	switch kind {
	case KindForest:
		pipeline.Forest = NewRandomForest(forestConfig)
	case KindNeural:
		pipeline.Network = NewNeuralClassifier(neuralConfig)
	default:
		return nil, fmt.Errorf("%s is not a known model kind", kind)
	}
	return pipeline, nil
}

func (p *Pipeline) classifier() (Classifier, error) {
	switch {
	case p.Kind == KindForest && p.Forest != nil:
		return p.Forest, nil
	case p.Kind == KindNeural && p.Network != nil:
		return p.Network, nil
	default:
		return nil, fmt.Errorf("%w: pipeline %s has no %s classifier", models.ErrModelUnavailable, p.Key, p.Kind)
	}
}

func (p *Pipeline) Fit(x [][]float64, y []int) error {
	classifier, err := p.classifier()
	if err != nil {
		return err
	}
	if err := p.Scaler.Fit(x); err != nil {
		return err
	}
	scaled, err := p.Scaler.TransformAll(x)
	if err != nil {
		return err
	}
	return classifier.Fit(scaled, y)
}

// PredictProba returns the probability in [0,1] that the next close is higher.
func (p *Pipeline) PredictProba(features []float64) (float64, error) {
	classifier, err := p.classifier()
	if err != nil {
		return 0, err
	}
	scaled, err := p.Scaler.Transform(features)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrComputation, err)
	}
	return classifier.PredictProba(scaled)
}

// Accuracy of thresholding PredictProba at 0.5 against y.
func (p *Pipeline) Score(x [][]float64, y []int) (float64, error) {
	if len(x) == 0 {
		return 0, nil
	}
	correct := 0
	for i := range x {
		probability, err := p.PredictProba(x[i])
		if err != nil {
			return 0, err
		}
		predicted := 0
		if probability >= 0.5 {
			predicted = 1
		}
		if predicted == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(x)), nil
}

func (p *Pipeline) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(p); err != nil {
		return nil, fmt.Errorf("error encoding model %s: %w", p.Key, err)
	}
	return buf.Bytes(), nil
}

func DecodePipeline(payload []byte) (*Pipeline, error) {
	var pipeline Pipeline
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&pipeline); err != nil {
		return nil, fmt.Errorf("%w: error decoding model: %v", models.ErrModelUnavailable, err)
	}
	if _, err := pipeline.classifier(); err != nil {
		return nil, err
	}
	if pipeline.Scaler == nil {
		return nil, fmt.Errorf("%w: model %s has no scaler", models.ErrModelUnavailable, pipeline.Key)
	}
	return &pipeline, nil
}
