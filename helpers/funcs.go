package helpers

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/xhit/go-str2duration/v2"
)

func StdDev(numbers []float64, mean float64) float64 {
	if len(numbers) < 2 {
		return 0
	}
	total := 0.0
	for _, number := range numbers {
		total += math.Pow(number-mean, 2)
	}
	variance := total / float64(len(numbers)-1)
	return math.Sqrt(variance)
}

func Sum(numbers []float64) (total float64) {
	for _, x := range numbers {
		total += x
	}
	return total
}

func Mean(numbers []float64) float64 {
	if len(numbers) == 0 {
		return 0
	}
	return Sum(numbers) / float64(len(numbers))
}

// Returns gives the period-over-period relative change of prices.
// Pairs with a zero base are skipped.
func Returns(prices []float64) []float64 {
	var returns []float64
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		returns = append(returns, prices[i]/prices[i-1]-1)
	}
	return returns
}

// ReturnsVolatility is the sample standard deviation of the last n returns of prices.
func ReturnsVolatility(prices []float64, n int) float64 {
	returns := Returns(prices)
	if len(returns) > n {
		returns = returns[len(returns)-n:]
	}
	return StdDev(returns, Mean(returns))
}

func Round(value float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(value*pow) / pow
}

func Clamp(value, low, high float64) float64 {
	return math.Max(low, math.Min(high, value))
}

// IntervalDuration converts an exchange interval ("15m", "4h", "1d", "1w") to a duration.
func IntervalDuration(interval string) (time.Duration, error) {
	d, err := str2duration.ParseDuration(interval)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: %w", interval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid interval %q: must be positive", interval)
	}
	return d, nil
}

// ExchangeSymbol strips the pair separator: "BTC/USDT" -> "BTCUSDT".
func ExchangeSymbol(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(symbol, "/", ""))
}
