package ml

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gitlab.com/aoterocom/MarketForge/database"
	"gitlab.com/aoterocom/MarketForge/models"
	"gitlab.com/aoterocom/MarketForge/providers/paper"
)

const (
	symbol    = "BTC/USDT"
	timeframe = "1d"
)

var epoch = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func testManager(candles int) (*ModelManager, *paper.PaperService, *database.MemoryModelStore, *time.Time) {
	paperService := paper.NewPaperService()
	paperService.SetCandles(symbol, timeframe, paper.RandomWalk(candles, epoch, 24*time.Hour, 30000, 0.0002, 0.02, 11))

	clock := epoch
	store := database.NewMemoryModelStore()
	store.SetClock(func() time.Time { return clock })

	config := DefaultManagerConfig()
	config.Forest = smallForest
	config.HistoryLimit = 600
	config.PredictLimit = 600

	manager := NewModelManager(paperService, store, config)
	manager.SetClock(func() time.Time { return clock })
	return manager, paperService, store, &clock
}

func TestLoadOrTrainReusesFreshModel(t *testing.T) {
	manager, paperService, store, clock := testManager(400)
	ctx := context.Background()

	first, err := manager.LoadOrTrain(ctx, symbol, timeframe)
	assert.NoError(t, err)
	assert.Equal(t, 1, store.Saves())
	assert.Greater(t, first.Samples, 0)
	assert.True(t, first.Accuracy >= 0 && first.Accuracy <= 1)

	requests := paperService.Requests()
	*clock = clock.Add(23 * time.Hour)
	second, err := manager.LoadOrTrain(ctx, symbol, timeframe)
	assert.NoError(t, err)

	assert.Equal(t, requests, paperService.Requests())
	assert.Equal(t, 1, store.Saves())
	assert.True(t, first.TrainedAt.Equal(second.TrainedAt))
}

func TestLoadOrTrainRetrainsStaleModel(t *testing.T) {
	manager, paperService, store, clock := testManager(400)
	ctx := context.Background()

	_, err := manager.LoadOrTrain(ctx, symbol, timeframe)
	assert.NoError(t, err)

	requests := paperService.Requests()
	*clock = clock.Add(24 * time.Hour)
	retrained, err := manager.LoadOrTrain(ctx, symbol, timeframe)
	assert.NoError(t, err)

	assert.Greater(t, paperService.Requests(), requests)
	assert.Equal(t, 2, store.Saves())
	assert.True(t, clock.Equal(retrained.TrainedAt))
}

func TestLoadOrTrainReplacesCorruptModel(t *testing.T) {
	manager, _, store, _ := testManager(400)
	assert.NoError(t, store.Save(models.NewModelKey(symbol, timeframe), []byte("garbage")))

	pipeline, err := manager.LoadOrTrain(context.Background(), symbol, timeframe)
	assert.NoError(t, err)
	assert.NotNil(t, pipeline)
	assert.Equal(t, 2, store.Saves())
}

func TestTrainInsufficientHistory(t *testing.T) {
	for _, candles := range []int{30, 240} {
		manager, _, store, _ := testManager(candles)

		_, err := manager.Train(context.Background(), symbol, timeframe, 600)
		assert.True(t, errors.Is(err, models.ErrInsufficientHistory), "%d candles: %v", candles, err)
		assert.Equal(t, 0, store.Saves())
	}
}

func TestPredictProbability(t *testing.T) {
	manager, _, _, _ := testManager(400)
	p := manager.PredictProbability(context.Background(), symbol, timeframe)
	assert.True(t, p >= 0 && p <= 100)

	short, _, _, _ := testManager(30)
	assert.Equal(t, models.NeutralProbability, short.PredictProbability(context.Background(), symbol, timeframe))

	assert.Equal(t, models.NeutralProbability, manager.PredictProbability(context.Background(), "DOGE/USDT", timeframe))
}

func TestNeuralModelLifecycle(t *testing.T) {
	manager, _, store, _ := testManager(400)
	manager.config.Kind = KindNeural
	manager.config.Neural = NeuralConfig{Hidden: 4, Epochs: 10, LearningRate: 0.3, Momentum: 0.4}

	pipeline, err := manager.LoadOrTrain(context.Background(), symbol, timeframe)
	assert.NoError(t, err)
	assert.Equal(t, KindNeural, pipeline.Kind)
	assert.Equal(t, 1, store.Saves())

	p := manager.PredictProbability(context.Background(), symbol, timeframe)
	assert.True(t, p >= 0 && p <= 100)
}
