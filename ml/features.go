package ml

import (
	"fmt"
	"math"

	"gitlab.com/aoterocom/MarketForge/indicators"
	"gitlab.com/aoterocom/MarketForge/models"
)

// FeatureNames fixes the column order the classifier is trained on.
var FeatureNames = []string{
	"ema_diff",
	"price_dist_ema20",
	"price_dist_sma200",
	"rsi",
	"macd_diff",
	"bb_width",
	"atr_ratio",
	"adx_ratio",
}

// FeatureVector holds dimensionless ratios of one indicator row.
type FeatureVector map[string]float64

// Values returns the features in FeatureNames order.
func (fv FeatureVector) Values() []float64 {
	values := make([]float64, len(FeatureNames))
	for i, name := range FeatureNames {
		values[i] = fv[name]
	}
	return values
}

// ExtractFeatures is shared by training and prediction; both must go through it.
func ExtractFeatures(row indicators.Row) (FeatureVector, error) {
	price := row.Close
	if price == 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return nil, fmt.Errorf("%w: invalid close price %v at %s", models.ErrComputation, price, row.Time)
	}

	features := FeatureVector{
		"ema_diff":          (row.EMA20 - row.EMA50) / price,
		"price_dist_ema20":  (price - row.EMA20) / price,
		"price_dist_sma200": (price - row.SMA200) / price,
		"rsi":               row.RSI / 100.0,
		"macd_diff":         (row.MACD - row.MACDSignal) / price,
		"bb_width":          (row.BBHigh - row.BBLow) / price,
		"atr_ratio":         row.ATR / price,
		"adx_ratio":         row.ADX / 100.0,
	}
	for name, value := range features {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return nil, fmt.Errorf("%w: feature %s is not finite", models.ErrComputation, name)
		}
	}
	return features, nil
}
