package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gitlab.com/aoterocom/MarketForge/helpers"
	"gitlab.com/aoterocom/MarketForge/models"
	"gitlab.com/aoterocom/MarketForge/models/analytics"
	tb "gopkg.in/tucnak/telebot.v2"
)

type Analyzer interface {
	Analyze(ctx context.Context, symbol string) models.SignalResult
}

type Scanner interface {
	Scan(ctx context.Context, symbols []string) models.ScanResult
}

type Backtester interface {
	Backtest(ctx context.Context, symbol string) (analytics.BacktestReport, error)
}

// Handlers turns chat requests into reply text. It holds no telegram state.
type Handlers struct {
	Approvals         *ApprovalStore
	Analyzer          Analyzer
	Scanner           Scanner
	Backtester        Backtester
	Symbols           []string
	ScanTimeframe     string
	BacktestTimeframe string
}

func (h *Handlers) Start() string {
	return startMessage
}

func (h *Handlers) Approve(chatID int64, payload string) string {
	if !h.Approvals.IsAdmin(chatID) {
		return notAuthorizedMessage
	}
	fields := strings.Fields(payload)
	if len(fields) == 0 {
		return approveUsageMessage
	}
	target, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return approveUsageMessage
	}
	h.Approvals.Approve(target)
	helpers.Logger.Infof("chat %d approved", target)
	return fmt.Sprintf("✅ Approved %d", target)
}

func (h *Handlers) Scan(ctx context.Context, chatID int64) string {
	if !h.Approvals.IsApproved(chatID) {
		return pendingMessage
	}
	return FormatScan(h.Scanner.Scan(ctx, h.Symbols), h.ScanTimeframe)
}

func (h *Handlers) Stats(ctx context.Context, chatID int64) string {
	if !h.Approvals.IsApproved(chatID) {
		return pendingMessage
	}
	lines := make([]StatsLine, 0, len(h.Symbols))
	for _, symbol := range h.Symbols {
		report, err := h.Backtester.Backtest(ctx, symbol)
		if err != nil {
			helpers.Logger.Errorf("stats for %s: %v", symbol, err)
		}
		report.Symbol = symbol
		lines = append(lines, StatsLine{Report: report, Err: err})
	}
	return FormatStats(lines, h.BacktestTimeframe)
}

func (h *Handlers) Text(ctx context.Context, chatID int64, text string) string {
	if !h.Approvals.IsApproved(chatID) {
		return pendingMessage
	}
	symbol, ok := SymbolFromText(text)
	if !ok {
		return helpMessage
	}
	return FormatSignal(h.Analyzer.Analyze(ctx, symbol).Signal)
}

type TelegramBot struct {
	bot      *tb.Bot
	handlers *Handlers
}

func NewTelegramBot(token string, handlers *Handlers) (*TelegramBot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram: BOT_TOKEN is not set")
	}
	b, err := tb.NewBot(tb.Settings{
		Token:  token,
		Poller: &tb.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, err
	}

	telegramBot := &TelegramBot{bot: b, handlers: handlers}
	telegramBot.register()
	return telegramBot, nil
}

func (t *TelegramBot) register() {
	ctx := context.Background()

	t.bot.Handle("/start", func(m *tb.Message) {
		t.reply(m, t.handlers.Start())
	})
	t.bot.Handle("/approve", func(m *tb.Message) {
		t.reply(m, t.handlers.Approve(m.Chat.ID, m.Payload))
	})
	t.bot.Handle("/scan", func(m *tb.Message) {
		t.reply(m, t.handlers.Scan(ctx, m.Chat.ID))
	})
	t.bot.Handle("/stats", func(m *tb.Message) {
		t.reply(m, t.handlers.Stats(ctx, m.Chat.ID))
	})
	t.bot.Handle(tb.OnText, func(m *tb.Message) {
		t.reply(m, t.handlers.Text(ctx, m.Chat.ID, m.Text))
	})
}

func (t *TelegramBot) reply(m *tb.Message, text string) {
	if _, err := t.bot.Send(m.Chat, text); err != nil {
		helpers.Logger.Errorf("telegram: error replying to chat %d: %v", m.Chat.ID, err)
	}
}

// Start polls for updates until Stop is called.
func (t *TelegramBot) Start() {
	helpers.Logger.Infoln("🖖🏻 Telegram bot started")
	t.bot.Start()
}

func (t *TelegramBot) Stop() {
	t.bot.Stop()
}
