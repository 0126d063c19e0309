package indicators

import (
	"math"
	"sync"

	"github.com/sdcoffey/big"
	"github.com/sdcoffey/techan"
)

type averageDirectionalIndexIndicator struct {
	series *techan.TimeSeries
	window int
	once   sync.Once
	values []float64
}

// NewAverageDirectionalIndexIndicator returns Wilder's ADX over window periods.
// Values before index 2*window-1 are zero.
func NewAverageDirectionalIndexIndicator(series *techan.TimeSeries, window int) techan.Indicator {
	return &averageDirectionalIndexIndicator{
		series: series,
		window: window,
	}
}

func (adx *averageDirectionalIndexIndicator) Calculate(index int) big.Decimal {
	adx.once.Do(adx.compute)
	if index < 0 || index >= len(adx.values) {
		return big.ZERO
	}
	return big.NewDecimal(adx.values[index])
}

func (adx *averageDirectionalIndexIndicator) compute() {
	candles := adx.series.Candles
	n := adx.window
	adx.values = make([]float64, len(candles))
	if n <= 0 || len(candles) < 2*n {
		return
	}

	var smoothedTR, smoothedPlusDM, smoothedMinusDM float64
	dx := make([]float64, len(candles))

	for i := 1; i < len(candles); i++ {
		high := candles[i].MaxPrice.Float()
		low := candles[i].MinPrice.Float()
		prevHigh := candles[i-1].MaxPrice.Float()
		prevLow := candles[i-1].MinPrice.Float()
		prevClose := candles[i-1].ClosePrice.Float()

		upMove := high - prevHigh
		downMove := prevLow - low
		plusDM, minusDM := 0.0, 0.0
		if upMove > downMove && upMove > 0 {
			plusDM = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM = downMove
		}
		trueRange := math.Max(high-low, math.Max(math.Abs(high-prevClose), math.Abs(low-prevClose)))

		if i <= n {
			smoothedTR += trueRange
			smoothedPlusDM += plusDM
			smoothedMinusDM += minusDM
			if i < n {
				continue
			}
		} else {
			smoothedTR = smoothedTR - smoothedTR/float64(n) + trueRange
			smoothedPlusDM = smoothedPlusDM - smoothedPlusDM/float64(n) + plusDM
			smoothedMinusDM = smoothedMinusDM - smoothedMinusDM/float64(n) + minusDM
		}

		if smoothedTR == 0 {
			continue
		}
		plusDI := 100 * smoothedPlusDM / smoothedTR
		minusDI := 100 * smoothedMinusDM / smoothedTR
		if plusDI+minusDI == 0 {
			continue
		}
		dx[i] = 100 * math.Abs(plusDI-minusDI) / (plusDI + minusDI)
	}

	first := 2*n - 1
	seed := 0.0
	for i := n; i <= first; i++ {
		seed += dx[i]
	}
	adx.values[first] = seed / float64(n)
	for i := first + 1; i < len(candles); i++ {
		adx.values[i] = (adx.values[i-1]*float64(n-1) + dx[i]) / float64(n)
	}
}
