package strategies

import (
	"math"

	"gitlab.com/aoterocom/MarketForge/helpers"
	"gitlab.com/aoterocom/MarketForge/models"
)

const (
	calmVolatility    = 0.0015
	extremeVolatility = 0.01
	calmMultiplier    = 0.5
	extremeMultiplier = 0.8
)

// HybridStrategy fuses a model probability with the technical score.
// The weights are not required to sum to 1.
type HybridStrategy struct {
	MLWeight       float64
	StrategyWeight float64
	ThresholdBuy   float64
	ThresholdSell  float64
}

func NewHybridStrategy() HybridStrategy {
	return HybridStrategy{
		MLWeight:       0.5,
		StrategyWeight: 0.5,
		ThresholdBuy:   65,
		ThresholdSell:  35,
	}
}

// MLScore maps a probability in [0,100] to [-100,100].
func MLScore(probability float64) float64 {
	return (probability - models.NeutralProbability) * 2
}

// VolatilityMultiplier damps the fused score in very calm and very volatile markets.
func VolatilityMultiplier(volatility float64) float64 {
	switch {
	case volatility < calmVolatility:
		return calmMultiplier
	case volatility > extremeVolatility:
		return extremeMultiplier
	default:
		return 1.0
	}
}

// DisplayConfidence is the fused score mapped onto [0,100] around 50. Weights summing
// above 1 can push it out of range, so it is clamped.
func (s HybridStrategy) DisplayConfidence(mlScore float64, techScore float64, volMultiplier float64) float64 {
	hybrid := (mlScore*s.MLWeight + techScore*s.StrategyWeight) * volMultiplier
	return helpers.Clamp(hybrid/2+50, 0, 100)
}

// Decide maps a display confidence to an action and the confidence in that action.
// The buy and sell thresholds are inclusive.
func (s HybridStrategy) Decide(display float64) (models.Action, float64) {
	switch {
	case display >= s.ThresholdBuy:
		return models.BUY, display
	case display <= s.ThresholdSell:
		return models.SELL, 100 - display
	default:
		return models.WAIT, math.Abs(display-50) * 2
	}
}
