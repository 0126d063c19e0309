package interfaces

import (
	"context"

	"github.com/sdcoffey/techan"
)

// MarketDataService fetches up to limit candles, oldest first. It may return fewer.
type MarketDataService interface {
	GetSeries(ctx context.Context, symbol string, interval string, limit int) (*techan.TimeSeries, error)
}
