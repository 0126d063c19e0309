package bot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/aoterocom/MarketForge/models"
	"gitlab.com/aoterocom/MarketForge/models/analytics"
)

const adminID = int64(1001)

type analyzerStub struct{}

func (analyzerStub) Analyze(ctx context.Context, symbol string) models.SignalResult {
	return models.SignalResult{Signal: models.Signal{Symbol: symbol, Action: models.BUY, Confidence: 71.3, Price: 64250.5, Display: 71.3}}
}

type scannerStub struct{}

func (scannerStub) Scan(ctx context.Context, symbols []string) models.ScanResult {
	entries := make([]models.ScanEntry, len(symbols))
	for i, symbol := range symbols {
		entries[i] = models.ScanEntry{Signal: models.NewWaitSignal(symbol, 1.5), BullProb: 50, BearProb: 50}
	}
	return models.ScanResult{Entries: entries, Bias: models.Sideways}
}

type backtesterStub struct{}

func (backtesterStub) Backtest(ctx context.Context, symbol string) (analytics.BacktestReport, error) {
	if symbol == "SOL/USDT" {
		return analytics.BacktestReport{}, errors.New("exchange down")
	}
	return analytics.BacktestReport{Symbol: symbol, Trades: 4, Wins: 3, Losses: 1, WinRate: 75}, nil
}

func newHandlers() *Handlers {
	return &Handlers{
		Approvals:         NewApprovalStore(adminID),
		Analyzer:          analyzerStub{},
		Scanner:           scannerStub{},
		Backtester:        backtesterStub{},
		Symbols:           []string{"BTC/USDT", "SOL/USDT"},
		ScanTimeframe:     "1h",
		BacktestTimeframe: "4h",
	}
}

func TestApprovalStore(t *testing.T) {
	store := NewApprovalStore(adminID)
	assert.True(t, store.IsAdmin(adminID))
	assert.True(t, store.IsApproved(adminID))
	assert.False(t, store.IsApproved(42))

	store.Approve(42)
	assert.True(t, store.IsApproved(42))
	assert.False(t, store.IsAdmin(42))
	assert.Equal(t, 2, store.Count())
}

func TestApproveCommand(t *testing.T) {
	h := newHandlers()

	assert.Equal(t, notAuthorizedMessage, h.Approve(42, "42"))
	assert.False(t, h.Approvals.IsApproved(42))

	assert.Equal(t, approveUsageMessage, h.Approve(adminID, ""))
	assert.Equal(t, approveUsageMessage, h.Approve(adminID, "someone"))

	assert.Equal(t, "✅ Approved 42", h.Approve(adminID, " 42 "))
	assert.True(t, h.Approvals.IsApproved(42))
}

func TestPendingChats(t *testing.T) {
	h := newHandlers()
	ctx := context.Background()

	assert.Equal(t, pendingMessage, h.Scan(ctx, 7))
	assert.Equal(t, pendingMessage, h.Stats(ctx, 7))
	assert.Equal(t, pendingMessage, h.Text(ctx, 7, "BTC"))
	assert.Equal(t, startMessage, h.Start())
}

func TestTextShortcuts(t *testing.T) {
	h := newHandlers()
	ctx := context.Background()

	reply := h.Text(ctx, adminID, "btc")
	assert.Contains(t, reply, "📊 BTC/USDT Signal")
	assert.Contains(t, reply, "Action: BUY")
	assert.Contains(t, reply, "Confidence: 71.3%")
	assert.Contains(t, reply, "💰 Price: 64250.50")

	assert.Equal(t, helpMessage, h.Text(ctx, adminID, "DOGE"))

	symbol, ok := SymbolFromText(" sol ")
	assert.True(t, ok)
	assert.Equal(t, "SOL/USDT", symbol)
}

func TestScanAndStatsReplies(t *testing.T) {
	h := newHandlers()
	ctx := context.Background()

	scan := h.Scan(ctx, adminID)
	assert.True(t, strings.HasPrefix(scan, "📊 MARKET SCAN (1H)"))
	assert.Contains(t, scan, "BTC/USDT | WAIT")
	assert.Contains(t, scan, "📈 Bull: 50.00%")
	assert.Contains(t, scan, "💰 Price: 1.50")
	assert.True(t, strings.HasSuffix(scan, "Sideways market"))

	stats := h.Stats(ctx, adminID)
	assert.True(t, strings.HasPrefix(stats, "📊 STRATEGY STATS (4H)"))
	assert.Contains(t, stats, "BTC/USDT | Trades: 4 | Wins: 3 | Losses: 1 | Winrate: 75.00%")
	assert.Contains(t, stats, "SOL/USDT | unavailable (Unknown)")
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "0.00001234", formatPrice(0.00001234))
	assert.Equal(t, "1.00", formatPrice(1))
}
