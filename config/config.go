package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/xhit/go-str2duration/v2"
)

const DefaultEnvFile = "conf.env"

const (
	StoreFile     = "file"
	StoreMySQL    = "mysql"
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

var validate = validator.New()

// Config is read once at startup and never modified afterwards.
type Config struct {
	Symbols           []string `default:"[\"BTC/USDT\",\"ETH/USDT\",\"SOL/USDT\"]" validate:"min=1"`
	Timeframe         string   `default:"1h" validate:"required"`
	MLTimeframe       string   `default:"1d" validate:"required"`
	BacktestTimeframe string   `default:"4h" validate:"required"`

	MLWeight       float64 `default:"0.5" validate:"gte=0"`
	StrategyWeight float64 `default:"0.5" validate:"gte=0"`
	ThresholdBuy   float64 `default:"65" validate:"lte=100"`
	ThresholdSell  float64 `default:"35" validate:"gte=0,ltfield=ThresholdBuy"`

	ModelTTL     time.Duration `default:"24h" validate:"gt=0"`
	ModelKind    string        `default:"forest" validate:"oneof=forest neural"`
	ModelStore   string        `default:"file" validate:"oneof=file mysql memory redis postgres"`
	ModelDir     string        `default:"models_store"`
	HistoryLimit int           `default:"3000" validate:"gt=0"`

	AnalysisLimit int `default:"500" validate:"gt=0"`
	BacktestLimit int `default:"3000" validate:"gt=0"`
	ScanWorkers   int `default:"4" validate:"gt=0"`

	BinanceAPIKey    string
	BinanceAPISecret string

	BotToken string
	AdminID  int64

	DBHost     string `default:"localhost"`
	DBPort     string `default:"3306"`
	DBName     string `default:"marketforge"`
	DBUser     string
	DBPassword string

	RedisAddr     string `default:"localhost:6379" validate:"required_if=ModelStore redis"`
	RedisPassword string
	RedisDB       int `validate:"gte=0"`

	PostgresDSN string `validate:"required_if=ModelStore postgres"`

	APIAddr string `default:":8080"`

	LogFile  string
	LogLevel string `default:"info" validate:"oneof=trace debug info warn warning error fatal panic"`
}

// Load reads envFile (silently skipped when it does not exist) into the environment
// and builds the configuration from it.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("error loading %s: %w", envFile, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from a lookup function. Unset keys keep their
// struct defaults.
func FromEnv(getenv func(string) string) (Config, error) {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return Config{}, err
	}

	r := reader{getenv: getenv}
	r.list("SYMBOLS", &cfg.Symbols)
	r.str("TIMEFRAME", &cfg.Timeframe)
	r.str("ML_TIMEFRAME", &cfg.MLTimeframe)
	r.str("BACKTEST_TIMEFRAME", &cfg.BacktestTimeframe)

	r.float("ML_WEIGHT", &cfg.MLWeight)
	r.float("STRATEGY_WEIGHT", &cfg.StrategyWeight)
	r.float("THRESHOLD_BUY", &cfg.ThresholdBuy)
	r.float("THRESHOLD_SELL", &cfg.ThresholdSell)

	r.duration("MODEL_TTL", &cfg.ModelTTL)
	r.str("MODEL_KIND", &cfg.ModelKind)
	r.str("MODEL_STORE", &cfg.ModelStore)
	r.str("MODEL_DIR", &cfg.ModelDir)
	r.int("HISTORY_LIMIT", &cfg.HistoryLimit)

	r.int("ANALYSIS_LIMIT", &cfg.AnalysisLimit)
	r.int("BACKTEST_LIMIT", &cfg.BacktestLimit)
	r.int("SCAN_WORKERS", &cfg.ScanWorkers)

	r.str("BINANCE_API_KEY", &cfg.BinanceAPIKey)
	r.str("BINANCE_API_SECRET", &cfg.BinanceAPISecret)

	r.str("BOT_TOKEN", &cfg.BotToken)
	r.int64("ADMIN_ID", &cfg.AdminID)

	r.str("DB_HOST", &cfg.DBHost)
	r.str("DB_PORT", &cfg.DBPort)
	r.str("DB_NAME", &cfg.DBName)
	r.str("DB_USER", &cfg.DBUser)
	r.str("DB_PASSWORD", &cfg.DBPassword)

	r.str("REDIS_ADDR", &cfg.RedisAddr)
	r.str("REDIS_PASSWORD", &cfg.RedisPassword)
	r.int("REDIS_DB", &cfg.RedisDB)

	r.str("PG_DSN", &cfg.PostgresDSN)

	r.str("API_ADDR", &cfg.APIAddr)

	r.str("LOG_FILE", &cfg.LogFile)
	r.str("LOG_LEVEL", &cfg.LogLevel)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if r.err != nil {
		return Config{}, r.err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	fe := validationErrors[0]
	switch fe.Tag() {
	case "oneof":
		return fmt.Errorf("%s must be one of: %s (got %v)", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	case "ltfield":
		return fmt.Errorf("ThresholdSell (%.2f) must be below ThresholdBuy (%.2f)", c.ThresholdSell, c.ThresholdBuy)
	case "required_if":
		return fmt.Errorf("%s is required when ModelStore is %s", fe.Field(), c.ModelStore)
	default:
		return fmt.Errorf("invalid %s: failed %s%s", fe.Field(), fe.Tag(), paramSuffix(fe.Param()))
	}
}

func paramSuffix(param string) string {
	if param == "" {
		return ""
	}
	return "=" + param
}

// reader keeps the first parse error so FromEnv can read every key in one pass.
type reader struct {
	getenv func(string) string
	err    error
}

func (r *reader) raw(key string) (string, bool) {
	value := strings.TrimSpace(r.getenv(key))
	return value, value != ""
}

func (r *reader) fail(key string, value string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
}

func (r *reader) str(key string, dst *string) {
	if value, ok := r.raw(key); ok {
		*dst = value
	}
}

func (r *reader) list(key string, dst *[]string) {
	value, ok := r.raw(key)
	if !ok {
		return
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, strings.ToUpper(item))
		}
	}
	*dst = items
}

func (r *reader) float(key string, dst *float64) {
	value, ok := r.raw(key)
	if !ok {
		return
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		r.fail(key, value, err)
		return
	}
	*dst = parsed
}

func (r *reader) int(key string, dst *int) {
	value, ok := r.raw(key)
	if !ok {
		return
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		r.fail(key, value, err)
		return
	}
	*dst = parsed
}

func (r *reader) int64(key string, dst *int64) {
	value, ok := r.raw(key)
	if !ok {
		return
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		r.fail(key, value, err)
		return
	}
	*dst = parsed
}

func (r *reader) duration(key string, dst *time.Duration) {
	value, ok := r.raw(key)
	if !ok {
		return
	}
	parsed, err := str2duration.ParseDuration(value)
	if err != nil {
		r.fail(key, value, err)
		return
	}
	*dst = parsed
}
