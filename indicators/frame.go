package indicators

import (
	"fmt"
	"math"
	"time"

	"github.com/sdcoffey/techan"
	"gitlab.com/aoterocom/MarketForge/models"
)

const (
	EMAFastWindow    = 20
	EMASlowWindow    = 50
	SMALongWindow    = 200
	RSIWindow        = 14
	MACDShortWindow  = 12
	MACDLongWindow   = 26
	MACDSignalWindow = 9
	ADXWindow        = 14
	BollingerWindow  = 20
	BollingerSigma   = 2.0
	ATRWindow        = 14
)

// WarmUp is the number of leading candles without a value for every indicator.
const WarmUp = SMALongWindow - 1

// Row is one candle plus the indicators derived up to and including it.
type Row struct {
	Time       time.Time
	Open       float64
	High       float64
	Low        float64
	Close      float64
	Volume     float64
	EMA20      float64
	EMA50      float64
	SMA200     float64
	RSI        float64
	MACD       float64
	MACDSignal float64
	ADX        float64
	BBHigh     float64
	BBLow      float64
	ATR        float64
}

type Frame struct {
	Rows []Row
}

func (f Frame) Len() int {
	return len(f.Rows)
}

func (f Frame) Empty() bool {
	return len(f.Rows) == 0
}

func (f Frame) Last() (Row, bool) {
	if f.Empty() {
		return Row{}, false
	}
	return f.Rows[len(f.Rows)-1], true
}

// Closes returns the close column.
func (f Frame) Closes() []float64 {
	closes := make([]float64, len(f.Rows))
	for i, row := range f.Rows {
		closes[i] = row.Close
	}
	return closes
}

// BuildFrame derives the indicator table for series. Rows inside the warm-up of the
// longest window are dropped, so a series shorter than SMALongWindow yields an empty
// frame and no error.
func BuildFrame(series *techan.TimeSeries) (frame Frame, err error) {
	if series == nil || len(series.Candles) <= WarmUp {
		return Frame{}, nil
	}

	defer recoverComputation(&frame, &err)

	closePrices := techan.NewClosePriceIndicator(series)
	short := newShortIndicators(closePrices)
	sma200 := techan.NewSimpleMovingAverage(closePrices, SMALongWindow)
	adx := NewAverageDirectionalIndexIndicator(series, ADXWindow)
	bbHigh := techan.NewBollingerUpperBandIndicator(closePrices, BollingerWindow, BollingerSigma)
	bbLow := techan.NewBollingerLowerBandIndicator(closePrices, BollingerWindow, BollingerSigma)
	atr := techan.NewAverageTrueRangeIndicator(series, ATRWindow)

	frame.Rows = make([]Row, 0, len(series.Candles)-WarmUp)

	// techan caches recursive indicators; walking forward keeps recursion shallow.
	for i, candle := range series.Candles {
		row := short.row(i, candle)
		if i < WarmUp {
			continue
		}
		row.SMA200 = sma200.Calculate(i).Float()
		row.ADX = adx.Calculate(i).Float()
		row.BBHigh = bbHigh.Calculate(i).Float()
		row.BBLow = bbLow.Calculate(i).Float()
		row.ATR = atr.Calculate(i).Float()

		if !row.finite() {
			return Frame{}, fmt.Errorf("%w: non-finite indicator at %s", models.ErrComputation, row.Time)
		}
		frame.Rows = append(frame.Rows, row)
	}

	return frame, nil
}

// BuildEntryFrame keeps one row per candle, with only the short indicators (EMA20,
// EMA50, RSI, MACD and its signal) filled in. Row i is candle i. Leading rows carry
// whatever the indicators yield before their window is full.
func BuildEntryFrame(series *techan.TimeSeries) (frame Frame, err error) {
	if series == nil || len(series.Candles) == 0 {
		return Frame{}, nil
	}

	defer recoverComputation(&frame, &err)

	short := newShortIndicators(techan.NewClosePriceIndicator(series))
	frame.Rows = make([]Row, 0, len(series.Candles))
	for i, candle := range series.Candles {
		frame.Rows = append(frame.Rows, short.row(i, candle))
	}
	return frame, nil
}

func recoverComputation(frame *Frame, err *error) {
	if r := recover(); r != nil {
		*frame = Frame{}
		*err = fmt.Errorf("%w: indicator calculation: %v", models.ErrComputation, r)
	}
}

type shortIndicators struct {
	ema20, ema50, rsi, macd, macdSignal techan.Indicator
}

func newShortIndicators(closePrices techan.Indicator) shortIndicators {
	macd := techan.NewMACDIndicator(closePrices, MACDShortWindow, MACDLongWindow)
	return shortIndicators{
		ema20:      techan.NewEMAIndicator(closePrices, EMAFastWindow),
		ema50:      techan.NewEMAIndicator(closePrices, EMASlowWindow),
		rsi:        techan.NewRelativeStrengthIndexIndicator(closePrices, RSIWindow),
		macd:       macd,
		macdSignal: techan.NewEMAIndicator(macd, MACDSignalWindow),
	}
}

func (s shortIndicators) row(i int, candle *techan.Candle) Row {
	return Row{
		Time:       candle.Period.Start,
		Open:       candle.OpenPrice.Float(),
		High:       candle.MaxPrice.Float(),
		Low:        candle.MinPrice.Float(),
		Close:      candle.ClosePrice.Float(),
		Volume:     candle.Volume.Float(),
		EMA20:      s.ema20.Calculate(i).Float(),
		EMA50:      s.ema50.Calculate(i).Float(),
		RSI:        s.rsi.Calculate(i).Float(),
		MACD:       s.macd.Calculate(i).Float(),
		MACDSignal: s.macdSignal.Calculate(i).Float(),
	}
}

func (r Row) finite() bool {
	for _, v := range []float64{r.Close, r.EMA20, r.EMA50, r.SMA200, r.RSI, r.MACD,
		r.MACDSignal, r.ADX, r.BBHigh, r.BBLow, r.ATR} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
