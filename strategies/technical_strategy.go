package strategies

import (
	"gitlab.com/aoterocom/MarketForge/indicators"
)

const (
	trendWeight         = 30
	momentumWeight      = 20
	macdWeight          = 20
	longTermTrendWeight = 20
	trendStrengthWeight = 10

	rsiBullishLevel = 60.0
	rsiBearishLevel = 40.0
	adxStrongLevel  = 25.0

	MaxTechnicalScore = trendWeight + momentumWeight + macdWeight + longTermTrendWeight + trendStrengthWeight
)

// TechnicalScore is a signed weighted vote over the indicators of row, in
// [-MaxTechnicalScore, MaxTechnicalScore].
func TechnicalScore(row indicators.Row) int {
	score := 0

	if row.EMA20 > row.EMA50 {
		score += trendWeight
	} else {
		score -= trendWeight
	}

	if row.RSI > rsiBullishLevel {
		score += momentumWeight
	} else if row.RSI < rsiBearishLevel {
		score -= momentumWeight
	}

	if row.MACD > row.MACDSignal {
		score += macdWeight
	} else {
		score -= macdWeight
	}

	if row.Close > row.SMA200 {
		score += longTermTrendWeight
	} else {
		score -= longTermTrendWeight
	}

	if row.ADX > adxStrongLevel {
		switch {
		case row.EMA20 > row.EMA50:
			score += trendStrengthWeight
		case row.EMA20 < row.EMA50:
			score -= trendStrengthWeight
		}
	}

	return score
}

// LastTechnicalScore scores the last row of frame, 0 when the frame is empty.
func LastTechnicalScore(frame indicators.Frame) int {
	row, ok := frame.Last()
	if !ok {
		return 0
	}
	return TechnicalScore(row)
}

// StrongEntryVotes is the minimum EntryVotes for a backtested entry.
const StrongEntryVotes = 3

// EntryVotes counts the bullish conditions of the backtest entry filter:
// EMA20 > EMA50, close > EMA20, RSI > 50 and MACD > 0.
func EntryVotes(row indicators.Row) int {
	votes := 0
	if row.EMA20 > row.EMA50 {
		votes++
	}
	if row.Close > row.EMA20 {
		votes++
	}
	if row.RSI > 50 {
		votes++
	}
	if row.MACD > 0 {
		votes++
	}
	return votes
}

func IsStrongEntry(row indicators.Row) bool {
	return EntryVotes(row) >= StrongEntryVotes
}
