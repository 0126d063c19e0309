package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStdDev(t *testing.T) {
	numbers := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, 2.13809, StdDev(numbers, Mean(numbers)), 1e-5)
	assert.Equal(t, 0.0, StdDev([]float64{3}, 3))
	assert.Equal(t, 0.0, StdDev(nil, 0))
}

func TestReturnsVolatility(t *testing.T) {
	assert.Equal(t, []float64{0.1, -0.5}, roundAll(Returns([]float64{10, 11, 5.5})))
	assert.Len(t, Returns([]float64{0, 1, 2}), 1)

	flat := []float64{100, 100, 100, 100}
	assert.Equal(t, 0.0, ReturnsVolatility(flat, 20))

	// only the last n returns count
	prices := []float64{100, 200, 100, 101, 102.01, 103.0301}
	assert.InDelta(t, 0.0, ReturnsVolatility(prices, 3), 1e-9)
	assert.Greater(t, ReturnsVolatility(prices, 5), 0.5)
}

func roundAll(values []float64) []float64 {
	rounded := make([]float64, len(values))
	for i, v := range values {
		rounded[i] = Round(v, 6)
	}
	return rounded
}

func TestRoundAndClamp(t *testing.T) {
	assert.Equal(t, 66.67, Round(200.0/3, 2))
	assert.Equal(t, 0.0, Clamp(-3, 0, 100))
	assert.Equal(t, 100.0, Clamp(140, 0, 100))
	assert.Equal(t, 42.5, Clamp(42.5, 0, 100))
}

func TestIntervalDuration(t *testing.T) {
	tests := []struct {
		interval string
		expected time.Duration
	}{
		{"15m", 15 * time.Minute},
		{"1h", time.Hour},
		{"4h", 4 * time.Hour},
		{"1d", 24 * time.Hour},
		{"1w", 7 * 24 * time.Hour},
	}
	for _, tt := range tests {
		d, err := IntervalDuration(tt.interval)
		assert.NoError(t, err, tt.interval)
		assert.Equal(t, tt.expected, d, tt.interval)
	}

	_, err := IntervalDuration("soon")
	assert.Error(t, err)
}

func TestExchangeSymbol(t *testing.T) {
	assert.Equal(t, "BTCUSDT", ExchangeSymbol("BTC/USDT"))
	assert.Equal(t, "ETHUSDT", ExchangeSymbol("eth/usdt"))
	assert.Equal(t, "SOLUSDT", ExchangeSymbol("SOLUSDT"))
}
