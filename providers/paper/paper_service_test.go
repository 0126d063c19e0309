package paper

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSeriesLimitsToMostRecent(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := RandomWalk(10, start, time.Hour, 100, 0, 0.01, 1)

	paperService := NewPaperService()
	paperService.SetCandles("BTC/USDT", "1h", candles)

	series, err := paperService.GetSeries(context.Background(), "btc/usdt", "1h", 4)
	require.NoError(t, err)
	require.Len(t, series.Candles, 4)
	assert.InDelta(t, candles[9].Close, series.LastCandle().ClosePrice.Float(), 1e-9)
	assert.Equal(t, 1, paperService.Requests())
}

func TestGetSeriesUnknownSymbolIsEmpty(t *testing.T) {
	series, err := NewPaperService().GetSeries(context.Background(), "XRP/USDT", "1h", 10)
	require.NoError(t, err)
	assert.Empty(t, series.Candles)
}

func TestGetSeriesCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewPaperService().GetSeries(ctx, "BTC/USDT", "1h", 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewPaperServiceFromFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "candles.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"ETH/USDT": {"4h": [
		{"time": "2024-01-01T00:00:00Z", "open": 10, "high": 12, "low": 9, "close": 11, "volume": 5},
		{"time": "2024-01-01T04:00:00Z", "open": 11, "high": 13, "low": 10, "close": 12, "volume": 6}
	]}}`), 0o644))

	yamlPath := filepath.Join(dir, "candles.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`ETH/USDT:
  4h:
    - {time: 2024-01-01T00:00:00Z, open: 10, high: 12, low: 9, close: 11, volume: 5}
    - {time: 2024-01-01T04:00:00Z, open: 11, high: 13, low: 10, close: 12, volume: 6}
`), 0o644))

	for _, path := range []string{jsonPath, yamlPath} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			paperService, err := NewPaperServiceFromFile(path)
			require.NoError(t, err)

			series, err := paperService.GetSeries(context.Background(), "ETH/USDT", "4h", 0)
			require.NoError(t, err)
			require.Len(t, series.Candles, 2)
			assert.InDelta(t, 12.0, series.LastCandle().ClosePrice.Float(), 1e-9)
		})
	}
}

func TestNewPaperServiceFromFileErrors(t *testing.T) {
	_, err := NewPaperServiceFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("- [unbalanced"), 0o644))
	_, err = NewPaperServiceFromFile(bad)
	assert.Error(t, err)
}

func TestRandomWalkIsDeterministic(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := RandomWalk(20, start, time.Hour, 100, 0.001, 0.02, 7)
	b := RandomWalk(20, start, time.Hour, 100, 0.001, 0.02, 7)
	assert.Equal(t, a, b)
	for i, candle := range a {
		assert.GreaterOrEqual(t, candle.High, candle.Low)
		assert.True(t, candle.Time.Equal(start.Add(time.Duration(i)*time.Hour)))
	}
}
