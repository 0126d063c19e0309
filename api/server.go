package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gitlab.com/aoterocom/MarketForge/helpers"
	"gitlab.com/aoterocom/MarketForge/metrics"
	"gitlab.com/aoterocom/MarketForge/models"
	"gitlab.com/aoterocom/MarketForge/models/analytics"
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

type SignalRequest struct {
	Symbol string `query:"symbol" validate:"required,max=20"`
}

type ScanRequest struct {
	Symbols string `query:"symbols" validate:"max=512"`
}

// ScanSymbols is the parsed symbols list of a ScanRequest. At most 20 per request,
// since every symbol may cost a training fetch.
type ScanSymbols struct {
	Symbols []string `validate:"min=1,max=20,dive,max=20"`
}

type BacktestRequest struct {
	Symbol string `query:"symbol" validate:"required,max=20"`
}

// SignalResponse is a signal plus the failure class that forced it to WAIT, if any.
type SignalResponse struct {
	models.Signal
	Reason models.Reason `json:"reason,omitempty"`
}

// Server exposes signals, scans and backtests over HTTP, plus /metrics.
type Server struct {
	echo       *echo.Echo
	analyzer   Analyzer
	scanner    Scanner
	backtester Backtester
	symbols    []string
}

func NewServer(analyzer Analyzer, scanner Scanner, backtester Backtester, symbols []string, recorder *metrics.Recorder) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(recoverMiddleware())
	e.Use(loggingMiddleware())

	s := &Server{
		echo:       e,
		analyzer:   analyzer,
		scanner:    scanner,
		backtester: backtester,
		symbols:    symbols,
	}

	e.GET("/health", s.Health)
	g := e.Group("/api")
	g.GET("/signal", s.Signal)
	g.GET("/scan", s.Scan)
	g.GET("/backtest", s.Backtest)
	if recorder != nil {
		e.GET("/metrics", echo.WrapHandler(recorder.Handler()))
	}
	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		helpers.Logger.Infof("api: listening on %s", addr)
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	helpers.Logger.Infoln("api: stopped")
	return nil
}

func (s *Server) Health(c echo.Context) error {
	return successResponse(c, map[string]string{"status": "ok"})
}

func (s *Server) Signal(c echo.Context) error {
	req := &SignalRequest{}
	if errs := bindRequest(c, req); errs != nil {
		return badRequestResponse(c, errs)
	}
	result := s.analyzer.Analyze(c.Request().Context(), strings.ToUpper(req.Symbol))
	return successResponse(c, SignalResponse{Signal: result.Signal, Reason: result.Reason()})
}

func (s *Server) Scan(c echo.Context) error {
	req := &ScanRequest{}
	if errs := bindRequest(c, req); errs != nil {
		return badRequestResponse(c, errs)
	}
	symbols := s.symbols
	if req.Symbols != "" {
		parsed := ScanSymbols{}
		for _, symbol := range strings.Split(req.Symbols, ",") {
			if symbol = strings.TrimSpace(symbol); symbol != "" {
				parsed.Symbols = append(parsed.Symbols, strings.ToUpper(symbol))
			}
		}
		if err := validate.StructCtx(c.Request().Context(), parsed); err != nil {
			return badRequestResponse(c, toValidationErrors(err))
		}
		symbols = parsed.Symbols
	}
	return successResponse(c, s.scanner.Scan(c.Request().Context(), symbols))
}

func (s *Server) Backtest(c echo.Context) error {
	req := &BacktestRequest{}
	if errs := bindRequest(c, req); errs != nil {
		return badRequestResponse(c, errs)
	}
	symbol := strings.ToUpper(req.Symbol)
	report, err := s.backtester.Backtest(c.Request().Context(), symbol)
	if err != nil {
		helpers.Logger.Errorf("api: backtest %s: %v", symbol, err)
		return errorResponse(c, err)
	}
	report.Symbol = symbol
	return successResponse(c, report)
}
