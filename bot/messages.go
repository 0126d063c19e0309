package bot

import (
	"fmt"
	"strings"

	"gitlab.com/aoterocom/MarketForge/models"
	"gitlab.com/aoterocom/MarketForge/models/analytics"
)

const (
	startMessage         = "🚀 MarketForge\n\nType BTC / ETH / SOL\nUse /scan for full market scan\nUse /stats for strategy stats"
	helpMessage          = "Type BTC / ETH / SOL\nor use /scan"
	notAuthorizedMessage = "❌ Not authorized"
	pendingMessage       = "⏳ Access pending"
	approveUsageMessage  = "Usage: /approve <chat_id>"
)

var shortcuts = map[string]string{
	"BTC": "BTC/USDT",
	"ETH": "ETH/USDT",
	"SOL": "SOL/USDT",
}

// SymbolFromText maps a shortcut such as "eth" to its trading symbol.
func SymbolFromText(text string) (string, bool) {
	symbol, ok := shortcuts[strings.ToUpper(strings.TrimSpace(text))]
	return symbol, ok
}

func FormatSignal(signal models.Signal) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 %s Signal\n", signal.Symbol))
	sb.WriteString("━━━━━━━━━━━━━━\n")
	sb.WriteString(fmt.Sprintf("Action: %s\n", signal.Action))
	sb.WriteString(fmt.Sprintf("Confidence: %.1f%%\n", signal.Confidence))
	sb.WriteString(fmt.Sprintf("💰 Price: %s\n", formatPrice(signal.Price)))
	return sb.String()
}

func FormatScan(result models.ScanResult, timeframe string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 MARKET SCAN (%s)\n\n", strings.ToUpper(timeframe)))
	for _, entry := range result.Entries {
		sb.WriteString(fmt.Sprintf("%s | %s\n", entry.Signal.Symbol, entry.Signal.Action))
		sb.WriteString(fmt.Sprintf("📈 Bull: %.2f%%\n", entry.BullProb))
		sb.WriteString(fmt.Sprintf("📉 Bear: %.2f%%\n", entry.BearProb))
		sb.WriteString(fmt.Sprintf("💰 Price: %s\n\n", formatPrice(entry.Signal.Price)))
	}
	sb.WriteString(fmt.Sprintf("%s market", result.Bias))
	return sb.String()
}

// StatsLine is one symbol's backtest outcome for /stats.
type StatsLine struct {
	Report analytics.BacktestReport
	Err    error
}

func FormatStats(lines []StatsLine, timeframe string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 STRATEGY STATS (%s)\n\n", strings.ToUpper(timeframe)))
	for _, line := range lines {
		if line.Err != nil {
			sb.WriteString(fmt.Sprintf("%s | unavailable (%s)\n", line.Report.Symbol, models.ReasonOf(line.Err)))
			continue
		}
		sb.WriteString(fmt.Sprintf("%s | Trades: %d | Wins: %d | Losses: %d | Winrate: %.2f%%\n",
			line.Report.Symbol, line.Report.Trades, line.Report.Wins, line.Report.Losses, line.Report.WinRate))
	}
	return sb.String()
}

func formatPrice(price float64) string {
	if price >= 1 {
		return fmt.Sprintf("%.2f", price)
	}
	return fmt.Sprintf("%.8f", price)
}
