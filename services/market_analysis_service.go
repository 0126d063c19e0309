package services

import (
	"context"
	"sync"
	"time"

	"gitlab.com/aoterocom/MarketForge/helpers"
	"gitlab.com/aoterocom/MarketForge/metrics"
	"gitlab.com/aoterocom/MarketForge/models"
)

// Analyzer produces the signal for one symbol.
type Analyzer interface {
	Analyze(ctx context.Context, symbol string) models.SignalResult
}

// MarketAnalysisService runs the analyzer over a symbol list and derives the market bias.
type MarketAnalysisService struct {
	analyzer Analyzer
	workers  int
	metrics  *metrics.Recorder
}

func NewMarketAnalysisService(analyzer Analyzer, workers int) *MarketAnalysisService {
	if workers < 1 {
		workers = 1
	}
	return &MarketAnalysisService{
		analyzer: analyzer,
		workers:  workers,
	}
}

func (mas *MarketAnalysisService) SetMetrics(recorder *metrics.Recorder) {
	mas.metrics = recorder
}

// Scan analyzes symbols concurrently; entries keep the order of symbols.
func (mas *MarketAnalysisService) Scan(ctx context.Context, symbols []string) models.ScanResult {
	started := time.Now()
	entries := make([]models.ScanEntry, len(symbols))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < mas.workers && w < len(symbols); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				result := mas.analyzer.Analyze(ctx, symbols[i])
				entries[i] = NewScanEntry(result.Signal)
			}
		}()
	}
	for i := range symbols {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	bias := MarketBias(entries)
	mas.metrics.RecordScan(time.Since(started).Seconds())
	helpers.Logger.Infof("scanned %d symbols: %s market", len(symbols), bias)
	return models.ScanResult{Entries: entries, Bias: bias}
}

// NewScanEntry derives the bull and bear probabilities shown for a signal. WAIT leans
// a quarter of its confidence toward the side its fused score was on.
func NewScanEntry(signal models.Signal) models.ScanEntry {
	var bull float64
	switch signal.Action {
	case models.BUY:
		bull = signal.Confidence
	case models.SELL:
		bull = 100 - signal.Confidence
	default:
		if signal.Display >= 50 {
			bull = 50 + signal.Confidence/4
		} else {
			bull = 50 - signal.Confidence/4
		}
	}
	bull = helpers.Round(bull, 2)
	return models.ScanEntry{
		Signal:   signal,
		BullProb: bull,
		BearProb: helpers.Round(100-bull, 2),
	}
}

func MarketBias(entries []models.ScanEntry) models.Bias {
	bull, bear := 0, 0
	for _, entry := range entries {
		switch entry.Signal.Action {
		case models.BUY:
			bull++
		case models.SELL:
			bear++
		}
	}
	switch {
	case bull > bear:
		return models.Bullish
	case bear > bull:
		return models.Bearish
	default:
		return models.Sideways
	}
}
