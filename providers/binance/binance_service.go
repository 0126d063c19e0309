package binance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/cenkalti/backoff/v4"
	"github.com/sdcoffey/big"
	"github.com/sdcoffey/techan"
	"gitlab.com/aoterocom/MarketForge/helpers"
	"golang.org/x/time/rate"
)

// Binance serves at most this many klines per request.
const maxKlinesPerRequest = 1000

const (
	requestsPerSecond = 5
	maxRetryTime      = 30 * time.Second
)

type BinanceService struct {
	binanceClient *binance.Client
	limiter       *rate.Limiter
	maxRetryTime  time.Duration
}

func NewBinanceService(apiKey string, apiSecret string) *BinanceService {
	return &BinanceService{
		binanceClient: binance.NewClient(apiKey, apiSecret),
		limiter:       rate.NewLimiter(rate.Every(time.Second/requestsPerSecond), requestsPerSecond),
		maxRetryTime:  maxRetryTime,
	}
}

// klines fetches one page, waiting on the rate limiter and retrying transient failures
// with exponential backoff. Exchange rejections of the request itself are not retried.
func (binanceService *BinanceService) klines(ctx context.Context, pair string, interval string, limit int, startTime time.Time) ([]*binance.Kline, error) {
	var klines []*binance.Kline
	operation := func() error {
		if err := binanceService.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		var err error
		klines, err = binanceService.binanceClient.NewKlinesService().Symbol(pair).
			Interval(interval).Limit(limit).StartTime(startTime.UnixMilli()).Do(ctx)
		if err == nil {
			return nil
		}
		var apiErr *common.APIError
		if errors.As(err, &apiErr) {
			return backoff.Permanent(err)
		}
		helpers.Logger.Warnf("retrying klines for %s: %v", pair, err)
		return err
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.MaxElapsedTime = binanceService.maxRetryTime
	if err := backoff.Retry(operation, backoff.WithContext(strategy, ctx)); err != nil {
		return nil, err
	}
	return klines, nil
}

// GetSeries pages through klines until limit candles are collected or the exchange runs out.
func (binanceService *BinanceService) GetSeries(ctx context.Context, symbol string, interval string, limit int) (*techan.TimeSeries, error) {
	if limit <= 0 {
		limit = maxKlinesPerRequest
	}
	period, err := helpers.IntervalDuration(interval)
	if err != nil {
		return nil, err
	}
	pair := helpers.ExchangeSymbol(symbol)

	var resultKlines []*binance.Kline
	startTime := time.Now().Add(-period * time.Duration(limit))
	for remaining := limit; remaining > 0; {
		batch := remaining
		if batch > maxKlinesPerRequest {
			batch = maxKlinesPerRequest
		}
		klines, err := binanceService.klines(ctx, pair, interval, batch, startTime)
		if err != nil {
			return nil, fmt.Errorf("error getting klines for %s: %w", pair, err)
		}
		if len(klines) == 0 {
			break
		}

		resultKlines = append(resultKlines, klines...)
		remaining -= len(klines)
		startTime = time.UnixMilli(klines[len(klines)-1].OpenTime).Add(period)
		if len(klines) < batch {
			break
		}
	}

	if len(resultKlines) > limit {
		resultKlines = resultKlines[len(resultKlines)-limit:]
	}

	timeSeries := techan.NewTimeSeries()
	for _, k := range resultKlines {
		candle := techan.NewCandle(techan.NewTimePeriod(time.UnixMilli(k.OpenTime), period))
		candle.OpenPrice = big.NewFromString(k.Open)
		candle.ClosePrice = big.NewFromString(k.Close)
		candle.MaxPrice = big.NewFromString(k.High)
		candle.MinPrice = big.NewFromString(k.Low)
		candle.TradeCount = uint(k.TradeNum)
		candle.Volume = big.NewFromString(k.Volume)
		timeSeries.AddCandle(candle)
	}

	helpers.Logger.Debugf("fetched %d %s candles for %s", len(timeSeries.Candles), interval, pair)
	return timeSeries, nil
}
