package ml

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gitlab.com/aoterocom/MarketForge/helpers"
	"gitlab.com/aoterocom/MarketForge/indicators"
	"gitlab.com/aoterocom/MarketForge/interfaces"
	"gitlab.com/aoterocom/MarketForge/metrics"
	"gitlab.com/aoterocom/MarketForge/models"
)

type ManagerConfig struct {
	TTL          time.Duration
	HistoryLimit int
	PredictLimit int
	Kind         string
	Forest       ForestConfig
	Neural       NeuralConfig
}

func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		TTL:          24 * time.Hour,
		HistoryLimit: 3000,
		PredictLimit: 3000,
		Kind:         KindForest,
		Forest:       DefaultForestConfig(),
		Neural:       DefaultNeuralConfig(),
	}
}

// ModelManager trains, persists and serves one model per (symbol, timeframe).
// A stored model younger than the TTL is reused; otherwise it is retrained and replaced.
type ModelManager struct {
	marketData interfaces.MarketDataService
	store      interfaces.ModelStore
	config     ManagerConfig
	now        func() time.Time
	locks      sync.Map
	metrics    *metrics.Recorder
}

func NewModelManager(marketData interfaces.MarketDataService, store interfaces.ModelStore, config ManagerConfig) *ModelManager {
	return &ModelManager{
		marketData: marketData,
		store:      store,
		config:     config,
		now:        time.Now,
	}
}

func (m *ModelManager) SetClock(now func() time.Time) {
	m.now = now
}

func (m *ModelManager) SetMetrics(recorder *metrics.Recorder) {
	m.metrics = recorder
}

func (m *ModelManager) lock(key models.ModelKey) func() {
	mutex, _ := m.locks.LoadOrStore(key, &sync.Mutex{})
	mutex.(*sync.Mutex).Lock()
	return mutex.(*sync.Mutex).Unlock
}

// LoadOrTrain returns the stored model when it is fresh, and trains a new one otherwise.
func (m *ModelManager) LoadOrTrain(ctx context.Context, symbol string, timeframe string) (*Pipeline, error) {
	key := models.NewModelKey(symbol, timeframe)
	unlock := m.lock(key)
	defer unlock()

	pipeline, err := m.loadFresh(key)
	if err == nil {
		return pipeline, nil
	}
	if !errors.Is(err, models.ErrModelNotFound) {
		helpers.Logger.Infof("retraining %s: %v", key, err)
	}
	return m.train(ctx, key, m.config.HistoryLimit)
}

// Train fits a model over the last limit candles and replaces the stored one.
func (m *ModelManager) Train(ctx context.Context, symbol string, timeframe string, limit int) (*Pipeline, error) {
	key := models.NewModelKey(symbol, timeframe)
	unlock := m.lock(key)
	defer unlock()
	return m.train(ctx, key, limit)
}

func (m *ModelManager) loadFresh(key models.ModelKey) (*Pipeline, error) {
	age, err := m.store.Age(key)
	if err != nil {
		return nil, err
	}
	if age >= m.config.TTL {
		return nil, fmt.Errorf("%w: model %s is %s old", models.ErrModelUnavailable, key, age.Round(time.Second))
	}
	payload, err := m.store.Load(key)
	if err != nil {
		return nil, err
	}
	pipeline, err := DecodePipeline(payload)
	if err != nil {
		return nil, err
	}
	if pipeline.Key != key {
		return nil, fmt.Errorf("%w: stored model is for %s", models.ErrModelUnavailable, pipeline.Key)
	}
	return pipeline, nil
}

func (m *ModelManager) train(ctx context.Context, key models.ModelKey, limit int) (pipeline *Pipeline, err error) {
	helpers.Logger.Infof("Training model for %s (%s)...", key.Symbol, key.Timeframe)
	started := time.Now()
	defer func() {
		accuracy := 0.0
		if pipeline != nil {
			accuracy = pipeline.Accuracy
		}
		m.metrics.RecordTraining(key.Symbol, key.Timeframe, time.Since(started).Seconds(), accuracy, err)
	}()

	series, err := m.marketData.GetSeries(ctx, key.Symbol, key.Timeframe, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDataUnavailable, err)
	}
	if len(series.Candles) < MinTrainingRows {
		return nil, fmt.Errorf("%w: %d candles for %s", models.ErrInsufficientHistory, len(series.Candles), key)
	}

	frame, err := indicators.BuildFrame(series)
	if err != nil {
		return nil, err
	}
	examples, err := BuildExamples(frame)
	if err != nil {
		return nil, err
	}
	if len(examples) < MinTrainingRows {
		return nil, fmt.Errorf("%w: %d usable rows for %s after warm-up", models.ErrInsufficientHistory, len(examples), key)
	}

	trainSet, testSet, err := ChronologicalSplit(examples, TestFraction)
	if err != nil {
		return nil, err
	}

	pipeline, err = NewPipeline(key, m.config.Kind, m.config.Forest, m.config.Neural)
	if err != nil {
		return nil, err
	}
	x, y := matrix(trainSet)
	if err := pipeline.Fit(x, y); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrComputation, err)
	}

	testX, testY := matrix(testSet)
	accuracy, err := pipeline.Score(testX, testY)
	if err != nil {
		helpers.Logger.Warnf("error scoring model %s: %v", key, err)
	}
	pipeline.Accuracy = accuracy
	pipeline.Samples = len(trainSet)
	pipeline.TrainedAt = m.now()
	helpers.Logger.Infof("Model accuracy for %s (%s): %.2f%%", key.Symbol, key.Timeframe, helpers.Round(accuracy*100, 2))

	payload, err := pipeline.Encode()
	if err != nil {
		return nil, err
	}
	if err := m.store.Save(key, payload); err != nil {
		// the fitted model still answers this request
		helpers.Logger.Errorf("error saving model %s: %v", key, err)
	}
	return pipeline, nil
}

// PredictProbability is the model's probability (0-100) that the next close is higher.
// Any failure yields models.NeutralProbability.
func (m *ModelManager) PredictProbability(ctx context.Context, symbol string, timeframe string) float64 {
	probability, err := m.predict(ctx, symbol, timeframe)
	if err != nil {
		helpers.Logger.Warnf("neutral probability for %s (%s): [%s] %v", symbol, timeframe, models.ReasonOf(err), err)
		return models.NeutralProbability
	}
	return probability
}

func (m *ModelManager) predict(ctx context.Context, symbol string, timeframe string) (probability float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: prediction panicked: %v", models.ErrComputation, r)
		}
	}()

	pipeline, err := m.LoadOrTrain(ctx, symbol, timeframe)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrModelUnavailable, err)
	}

	series, err := m.marketData.GetSeries(ctx, symbol, timeframe, m.config.PredictLimit)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrDataUnavailable, err)
	}
	frame, err := indicators.BuildFrame(series)
	if err != nil {
		return 0, err
	}
	row, ok := frame.Last()
	if !ok {
		return 0, fmt.Errorf("%w: empty indicator frame for %s", models.ErrInsufficientHistory, symbol)
	}
	features, err := ExtractFeatures(row)
	if err != nil {
		return 0, err
	}
	p, err := pipeline.PredictProba(features.Values())
	if err != nil {
		return 0, err
	}
	return helpers.Clamp(p*100, 0, 100), nil
}
