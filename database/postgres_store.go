package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"gitlab.com/aoterocom/MarketForge/models"
)

const createTrainedModelsTable = `CREATE TABLE IF NOT EXISTS trained_models (
	symbol       VARCHAR(50) NOT NULL,
	timeframe    VARCHAR(10) NOT NULL,
	payload      BYTEA       NOT NULL,
	persisted_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (symbol, timeframe)
)`

// PostgresModelStore is a model store over database/sql with the lib/pq driver.
type PostgresModelStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresModelStore(dsn string) (*PostgresModelStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to postgres: %w", err)
	}
	if _, err := db.Exec(createTrainedModelsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating trained_models: %w", err)
	}
	return &PostgresModelStore{db: db, now: time.Now}, nil
}

func (ps *PostgresModelStore) Save(key models.ModelKey, payload []byte) error {
	_, err := ps.db.Exec(`INSERT INTO trained_models (symbol, timeframe, payload, persisted_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (symbol, timeframe) DO UPDATE SET payload = EXCLUDED.payload, persisted_at = EXCLUDED.persisted_at`,
		key.Symbol, key.Timeframe, payload, ps.now())
	if err != nil {
		return fmt.Errorf("error saving model %s: %w", key, err)
	}
	return nil
}

func (ps *PostgresModelStore) Load(key models.ModelKey) ([]byte, error) {
	var payload []byte
	err := ps.db.QueryRow(`SELECT payload FROM trained_models WHERE symbol = $1 AND timeframe = $2`,
		key.Symbol, key.Timeframe).Scan(&payload)
	if err != nil {
		return nil, ps.wrap(key, err)
	}
	return payload, nil
}

func (ps *PostgresModelStore) Age(key models.ModelKey) (time.Duration, error) {
	var persistedAt time.Time
	err := ps.db.QueryRow(`SELECT persisted_at FROM trained_models WHERE symbol = $1 AND timeframe = $2`,
		key.Symbol, key.Timeframe).Scan(&persistedAt)
	if err != nil {
		return 0, ps.wrap(key, err)
	}
	return ps.now().Sub(persistedAt), nil
}

func (ps *PostgresModelStore) Close() error {
	return ps.db.Close()
}

func (ps *PostgresModelStore) wrap(key models.ModelKey, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", models.ErrModelNotFound, key)
	}
	return fmt.Errorf("%w: %v", models.ErrModelUnavailable, err)
}
