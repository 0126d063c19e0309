package paper

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sdcoffey/techan"
	"gitlab.com/aoterocom/MarketForge/helpers"
	"gitlab.com/aoterocom/MarketForge/models"
	"gopkg.in/yaml.v3"
)

// PaperService serves candles from memory. It backs offline runs and tests.
type PaperService struct {
	mu       sync.RWMutex
	candles  map[string][]models.Candle
	requests int
}

func NewPaperService() *PaperService {
	return &PaperService{candles: make(map[string][]models.Candle)}
}

// NewPaperServiceFromFile loads an object of the form {"BTC/USDT": {"1h": [candles...]}}.
// Files ending in .yaml or .yml are read as YAML, anything else as JSON.
func NewPaperServiceFromFile(path string) (*PaperService, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var content map[string]map[string][]models.Candle
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &content)
	default:
		err = json.Unmarshal(data, &content)
	}
	if err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}

	paperService := NewPaperService()
	for symbol, intervals := range content {
		for interval, candles := range intervals {
			paperService.SetCandles(symbol, interval, candles)
		}
	}
	return paperService, nil
}

func (paperService *PaperService) SetCandles(symbol string, interval string, candles []models.Candle) {
	paperService.mu.Lock()
	defer paperService.mu.Unlock()
	paperService.candles[seriesKey(symbol, interval)] = candles
}

// Requests counts GetSeries calls.
func (paperService *PaperService) Requests() int {
	paperService.mu.RLock()
	defer paperService.mu.RUnlock()
	return paperService.requests
}

func (paperService *PaperService) GetSeries(ctx context.Context, symbol string, interval string, limit int) (*techan.TimeSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	period, err := helpers.IntervalDuration(interval)
	if err != nil {
		return nil, err
	}

	paperService.mu.Lock()
	paperService.requests++
	candles := paperService.candles[seriesKey(symbol, interval)]
	paperService.mu.Unlock()

	if limit > 0 && len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	return models.NewTimeSeries(candles, period), nil
}

func seriesKey(symbol string, interval string) string {
	return helpers.ExchangeSymbol(symbol) + "@" + interval
}

// RandomWalk generates n contiguous candles starting at start, where each close moves
// by drift plus noise of relative size volatility. The same seed gives the same walk.
func RandomWalk(n int, start time.Time, period time.Duration, price, drift, volatility float64, seed int64) []models.Candle {
	rnd := rand.New(rand.NewSource(seed))
	candles := make([]models.Candle, 0, n)
	for i := 0; i < n; i++ {
		open := price
		change := drift + volatility*rnd.NormFloat64()
		price = open * (1 + change)
		if price <= 0 {
			price = open
		}
		high := math.Max(open, price) * (1 + volatility*rnd.Float64()/2)
		low := math.Min(open, price) * (1 - volatility*rnd.Float64()/2)
		candles = append(candles, models.Candle{
			Time:   start.Add(time.Duration(i) * period),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  price,
			Volume: 1000 + 100*rnd.Float64(),
		})
	}
	return candles
}
