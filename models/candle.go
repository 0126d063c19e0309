package models

import (
	"time"

	"github.com/sdcoffey/big"
	"github.com/sdcoffey/techan"
)

// Candle is one OHLCV observation, oldest-first within a series.
type Candle struct {
	Time   time.Time `json:"time" yaml:"time"`
	Open   float64   `json:"open" yaml:"open"`
	High   float64   `json:"high" yaml:"high"`
	Low    float64   `json:"low" yaml:"low"`
	Close  float64   `json:"close" yaml:"close"`
	Volume float64   `json:"volume" yaml:"volume"`
}

// NewTimeSeries converts candles into a techan series with the given candle period.
// Candles that overlap the previous one are ignored by techan.
func NewTimeSeries(candles []Candle, period time.Duration) *techan.TimeSeries {
	series := techan.NewTimeSeries()
	for _, c := range candles {
		candle := techan.NewCandle(techan.NewTimePeriod(c.Time, period))
		candle.OpenPrice = big.NewDecimal(c.Open)
		candle.ClosePrice = big.NewDecimal(c.Close)
		candle.MaxPrice = big.NewDecimal(c.High)
		candle.MinPrice = big.NewDecimal(c.Low)
		candle.Volume = big.NewDecimal(c.Volume)
		series.AddCandle(candle)
	}
	return series
}

// ClosePrices returns the close of every candle in the series.
func ClosePrices(series *techan.TimeSeries) []float64 {
	closes := make([]float64, 0, len(series.Candles))
	for _, candle := range series.Candles {
		closes = append(closes, candle.ClosePrice.Float())
	}
	return closes
}
