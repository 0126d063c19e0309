package services

import (
	"context"
	"fmt"

	"gitlab.com/aoterocom/MarketForge/helpers"
	"gitlab.com/aoterocom/MarketForge/indicators"
	"gitlab.com/aoterocom/MarketForge/interfaces"
	"gitlab.com/aoterocom/MarketForge/models"
	"gitlab.com/aoterocom/MarketForge/models/analytics"
	"gitlab.com/aoterocom/MarketForge/strategies"
)

// BacktestWarmUp is the first candle replayed.
const BacktestWarmUp = 50

// BacktestService measures how often the rule-based entry filter is followed by a
// higher close. It does not use the model.
type BacktestService struct {
	marketData interfaces.MarketDataService
	timeframe  string
	limit      int
}

func NewBacktestService(marketData interfaces.MarketDataService, timeframe string, limit int) *BacktestService {
	return &BacktestService{
		marketData: marketData,
		timeframe:  timeframe,
		limit:      limit,
	}
}

func (bs *BacktestService) Backtest(ctx context.Context, symbol string) (analytics.BacktestReport, error) {
	series, err := bs.marketData.GetSeries(ctx, symbol, bs.timeframe, bs.limit)
	if err != nil {
		return analytics.BacktestReport{Symbol: symbol}, fmt.Errorf("%w: %v", models.ErrDataUnavailable, err)
	}
	frame, err := indicators.BuildEntryFrame(series)
	if err != nil {
		return analytics.BacktestReport{Symbol: symbol}, err
	}

	report := Replay(symbol, frame)
	helpers.Logger.Infof("backtest %s (%s): %d trades, %d wins, %d losses, %.2f%% winrate",
		symbol, bs.timeframe, report.Trades, report.Wins, report.Losses, report.WinRate)
	return report, nil
}

// Replay walks an entry frame (one row per candle) from BacktestWarmUp to the second
// to last row, entering on every strong entry and scoring it against the next close.
func Replay(symbol string, frame indicators.Frame) analytics.BacktestReport {
	report := analytics.BacktestReport{Symbol: symbol}

	for i := BacktestWarmUp; i < frame.Len()-1; i++ {
		row := frame.Rows[i]
		if !strategies.IsStrongEntry(row) {
			continue
		}
		report.Trades++
		if frame.Rows[i+1].Close > row.Close {
			report.Wins++
		} else {
			report.Losses++
		}
	}

	if report.Trades > 0 {
		report.WinRate = helpers.Round(float64(report.Wins)/float64(report.Trades)*100, 2)
	}
	return report
}
