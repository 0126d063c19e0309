package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"gitlab.com/aoterocom/MarketForge/api"
	"gitlab.com/aoterocom/MarketForge/bot"
	"gitlab.com/aoterocom/MarketForge/config"
	"gitlab.com/aoterocom/MarketForge/database"
	"gitlab.com/aoterocom/MarketForge/helpers"
	"gitlab.com/aoterocom/MarketForge/interfaces"
	"gitlab.com/aoterocom/MarketForge/metrics"
	"gitlab.com/aoterocom/MarketForge/ml"
	"gitlab.com/aoterocom/MarketForge/providers/binance"
	"gitlab.com/aoterocom/MarketForge/providers/paper"
	"gitlab.com/aoterocom/MarketForge/services"
	"gitlab.com/aoterocom/MarketForge/strategies"
	"gitlab.com/aoterocom/MarketForge/ui"
)

// engine holds the services shared by every command.
type engine struct {
	config     config.Config
	metrics    *metrics.Recorder
	manager    *ml.ModelManager
	signals    *services.SignalService
	scanner    *services.MarketAnalysisService
	backtester *services.BacktestService
}

func newEngine(c *cli.Context) (*engine, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if err := helpers.ConfigureLogger(cfg.LogFile, cfg.LogLevel); err != nil {
		return nil, err
	}

	var marketData interfaces.MarketDataService
	if offline := c.String("offline"); offline != "" {
		paperService, err := paper.NewPaperServiceFromFile(offline)
		if err != nil {
			return nil, err
		}
		marketData = paperService
	} else {
		marketData = binance.NewBinanceService(cfg.BinanceAPIKey, cfg.BinanceAPISecret)
	}

	store, err := newModelStore(cfg)
	if err != nil {
		return nil, err
	}

	recorder := metrics.New()

	managerConfig := ml.DefaultManagerConfig()
	managerConfig.TTL = cfg.ModelTTL
	managerConfig.Kind = cfg.ModelKind
	managerConfig.HistoryLimit = cfg.HistoryLimit
	manager := ml.NewModelManager(marketData, store, managerConfig)
	manager.SetMetrics(recorder)

	strategy := strategies.HybridStrategy{
		MLWeight:       cfg.MLWeight,
		StrategyWeight: cfg.StrategyWeight,
		ThresholdBuy:   cfg.ThresholdBuy,
		ThresholdSell:  cfg.ThresholdSell,
	}
	signals := services.NewSignalService(marketData, manager, strategy, services.SignalServiceConfig{
		Timeframe:     cfg.Timeframe,
		MLTimeframe:   cfg.MLTimeframe,
		AnalysisLimit: cfg.AnalysisLimit,
	})
	signals.SetMetrics(recorder)
	scanner := services.NewMarketAnalysisService(signals, cfg.ScanWorkers)
	scanner.SetMetrics(recorder)

	return &engine{
		config:     cfg,
		metrics:    recorder,
		manager:    manager,
		signals:    signals,
		scanner:    scanner,
		backtester: services.NewBacktestService(marketData, cfg.BacktestTimeframe, cfg.BacktestLimit),
	}, nil
}

func newModelStore(cfg config.Config) (interfaces.ModelStore, error) {
	switch cfg.ModelStore {
	case config.StoreMySQL:
		dbService, err := database.NewDBService(cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPassword)
		if err != nil {
			return nil, err
		}
		return dbService, nil
	case config.StoreRedis:
		redisStore, err := database.NewRedisModelStore(database.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return redisStore, nil
	case config.StorePostgres:
		pgStore, err := database.NewPostgresModelStore(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return pgStore, nil
	case config.StoreMemory:
		return database.NewMemoryModelStore(), nil
	default:
		fileStore, err := database.NewFileModelStore(cfg.ModelDir)
		if err != nil {
			return nil, err
		}
		return fileStore, nil
	}
}

// symbolsArg returns the command arguments as symbols, or fallback when there are none.
func symbolsArg(c *cli.Context, fallback []string) []string {
	if c.NArg() == 0 {
		return fallback
	}
	symbols := make([]string, 0, c.NArg())
	for _, arg := range c.Args().Slice() {
		symbols = append(symbols, strings.ToUpper(arg))
	}
	return symbols
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func analyzeAction(c *cli.Context) error {
	rt, err := newEngine(c)
	if err != nil {
		return err
	}
	for _, symbol := range symbolsArg(c, rt.config.Symbols) {
		result := rt.signals.Analyze(c.Context, symbol)
		fmt.Println(bot.FormatSignal(result.Signal))
		if result.Err != nil {
			fmt.Printf("(%s)\n\n", result.Reason())
		}
	}
	return nil
}

func scanAction(c *cli.Context) error {
	rt, err := newEngine(c)
	if err != nil {
		return err
	}
	result := rt.scanner.Scan(c.Context, symbolsArg(c, rt.config.Symbols))
	fmt.Println(bot.FormatScan(result, rt.config.Timeframe))
	return nil
}

func backtestAction(c *cli.Context) error {
	rt, err := newEngine(c)
	if err != nil {
		return err
	}
	var lines []bot.StatsLine
	for _, symbol := range symbolsArg(c, rt.config.Symbols) {
		report, err := rt.backtester.Backtest(c.Context, symbol)
		report.Symbol = symbol
		lines = append(lines, bot.StatsLine{Report: report, Err: err})
	}
	fmt.Print(bot.FormatStats(lines, rt.config.BacktestTimeframe))
	return nil
}

func trainAction(c *cli.Context) error {
	rt, err := newEngine(c)
	if err != nil {
		return err
	}
	if c.NArg() == 0 {
		return cli.Exit("usage: train SYMBOL [SYMBOL...]", 1)
	}
	timeframe := c.String("timeframe")
	if timeframe == "" {
		timeframe = rt.config.MLTimeframe
	}
	limit := c.Int("limit")
	if limit <= 0 {
		limit = rt.config.HistoryLimit
	}
	for _, symbol := range symbolsArg(c, nil) {
		pipeline, err := rt.manager.Train(c.Context, symbol, timeframe, limit)
		if err != nil {
			return fmt.Errorf("error training %s: %w", symbol, err)
		}
		fmt.Printf("%s (%s): %s model, %d samples, accuracy %.2f%%\n",
			symbol, timeframe, pipeline.Kind, pipeline.Samples, helpers.Round(pipeline.Accuracy*100, 2))
	}
	return nil
}

func botAction(c *cli.Context) error {
	rt, err := newEngine(c)
	if err != nil {
		return err
	}
	handlers := &bot.Handlers{
		Approvals:         bot.NewApprovalStore(rt.config.AdminID),
		Analyzer:          rt.signals,
		Scanner:           rt.scanner,
		Backtester:        rt.backtester,
		Symbols:           rt.config.Symbols,
		ScanTimeframe:     rt.config.Timeframe,
		BacktestTimeframe: rt.config.BacktestTimeframe,
	}
	telegramBot, err := bot.NewTelegramBot(rt.config.BotToken, handlers)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()
	go func() {
		<-ctx.Done()
		helpers.Logger.Infoln("Stopping telegram bot")
		telegramBot.Stop()
	}()
	telegramBot.Start()
	return nil
}

func serveAction(c *cli.Context) error {
	rt, err := newEngine(c)
	if err != nil {
		return err
	}
	addr := c.String("addr")
	if addr == "" {
		addr = rt.config.APIAddr
	}
	ctx, stop := signalContext()
	defer stop()
	return api.NewServer(rt.signals, rt.scanner, rt.backtester, rt.config.Symbols, rt.metrics).Run(ctx, addr)
}

func dashboardAction(c *cli.Context) error {
	rt, err := newEngine(c)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()
	ui.NewDashboard(rt.scanner, symbolsArg(c, rt.config.Symbols), c.Duration("refresh")).Run(ctx)
	return nil
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "marketforge",
		Usage: "hybrid ML and technical trading signals",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: config.DefaultEnvFile,
				Usage: "env file to load before reading the environment",
			},
			&cli.StringFlag{
				Name:  "offline",
				Usage: "serve candles from a JSON or YAML file instead of Binance",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Usage:     "print the signal for each symbol",
				ArgsUsage: "[SYMBOL...]",
				Action:    analyzeAction,
			},
			{
				Name:      "scan",
				Usage:     "scan symbols and report the market bias",
				ArgsUsage: "[SYMBOL...]",
				Action:    scanAction,
			},
			{
				Name:      "backtest",
				Usage:     "replay the entry filter over recent history",
				ArgsUsage: "[SYMBOL...]",
				Action:    backtestAction,
			},
			{
				Name:      "train",
				Usage:     "train and store a model regardless of its age",
				ArgsUsage: "SYMBOL...",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "timeframe", Usage: "candle interval (default ML_TIMEFRAME)"},
					&cli.IntFlag{Name: "limit", Usage: "candles to train on (default HISTORY_LIMIT)"},
				},
				Action: trainAction,
			},
			{
				Name:   "bot",
				Usage:  "run the telegram bot",
				Action: botAction,
			},
			{
				Name:  "serve",
				Usage: "serve signals, scans, backtests and metrics over HTTP",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Usage: "listen address (default API_ADDR)"},
				},
				Action: serveAction,
			},
			{
				Name:      "dashboard",
				Usage:     "show a refreshing scan in the terminal",
				ArgsUsage: "[SYMBOL...]",
				Flags: []cli.Flag{
					&cli.DurationFlag{Name: "refresh", Value: time.Minute, Usage: "time between scans"},
				},
				Action: dashboardAction,
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		helpers.Logger.Errorln(err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
