package services

import (
	"context"
	"fmt"
	"math"

	"gitlab.com/aoterocom/MarketForge/helpers"
	"gitlab.com/aoterocom/MarketForge/indicators"
	"gitlab.com/aoterocom/MarketForge/interfaces"
	"gitlab.com/aoterocom/MarketForge/metrics"
	"gitlab.com/aoterocom/MarketForge/models"
	"gitlab.com/aoterocom/MarketForge/strategies"
)

const volatilityWindow = 20

// Predictor supplies the model probability (0-100) that the next close is higher.
type Predictor interface {
	PredictProbability(ctx context.Context, symbol string, timeframe string) float64
}

type SignalServiceConfig struct {
	Timeframe     string
	MLTimeframe   string
	AnalysisLimit int
}

// SignalService is the decision engine: it fuses the model probability with the
// technical score and never lets a failure escape to its caller.
type SignalService struct {
	marketData interfaces.MarketDataService
	predictor  Predictor
	strategy   strategies.HybridStrategy
	config     SignalServiceConfig
	metrics    *metrics.Recorder
}

func NewSignalService(marketData interfaces.MarketDataService, predictor Predictor,
	strategy strategies.HybridStrategy, config SignalServiceConfig) *SignalService {
	return &SignalService{
		marketData: marketData,
		predictor:  predictor,
		strategy:   strategy,
		config:     config,
	}
}

func (ss *SignalService) SetMetrics(recorder *metrics.Recorder) {
	ss.metrics = recorder
}

// Analyze returns a renderable signal for symbol. On failure the signal is WAIT with
// zero confidence and the error says why.
func (ss *SignalService) Analyze(ctx context.Context, symbol string) (result models.SignalResult) {
	result.Signal = models.NewWaitSignal(symbol, 0)

	defer func() {
		if r := recover(); r != nil {
			result = models.SignalResult{
				Signal: models.NewWaitSignal(symbol, result.Signal.Price),
				Err:    fmt.Errorf("%w: analysis panicked: %v", models.ErrComputation, r),
			}
		}
		if result.Err != nil {
			helpers.Logger.Errorf("Error analyzing %s: [%s] %v", symbol, result.Reason(), result.Err)
			ss.metrics.RecordFailure(string(result.Reason()))
		}
		ss.metrics.RecordSignal(symbol, string(result.Signal.Action), result.Signal.Confidence)
	}()

	probability := ss.predictor.PredictProbability(ctx, symbol, ss.config.MLTimeframe)
	mlScore := strategies.MLScore(probability)

	series, err := ss.marketData.GetSeries(ctx, symbol, ss.config.Timeframe, ss.config.AnalysisLimit)
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", models.ErrDataUnavailable, err)
		return result
	}
	if len(series.Candles) == 0 {
		result.Err = fmt.Errorf("%w: no candles for %s", models.ErrDataUnavailable, symbol)
		return result
	}

	frame, err := indicators.BuildFrame(series)
	if err != nil {
		result.Err = err
		return result
	}
	last, ok := frame.Last()
	if !ok {
		result.Err = fmt.Errorf("%w: %d candles for %s", models.ErrInsufficientHistory, len(series.Candles), symbol)
		return result
	}
	price := last.Close
	result.Signal.Price = price

	techScore := strategies.TechnicalScore(last)
	volatility := helpers.ReturnsVolatility(models.ClosePrices(series), volatilityWindow)
	volMultiplier := strategies.VolatilityMultiplier(volatility)

	display := ss.strategy.DisplayConfidence(mlScore, float64(techScore), volMultiplier)
	if math.IsNaN(display) || math.IsInf(display, 0) {
		result.Err = fmt.Errorf("%w: fused confidence is not finite", models.ErrComputation)
		return result
	}
	action, confidence := ss.strategy.Decide(display)

	helpers.Logger.Debugf("%s: ml=%.2f tech=%d vol=%.5f x%.1f display=%.2f -> %s",
		symbol, probability, techScore, volatility, volMultiplier, display, action)

	result.Signal = models.Signal{
		Symbol:     symbol,
		Action:     action,
		Confidence: helpers.Round(confidence, 2),
		Price:      price,
		Display:    display,
	}
	return result
}
