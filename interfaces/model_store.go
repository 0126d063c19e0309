package interfaces

import (
	"time"

	"gitlab.com/aoterocom/MarketForge/models"
)

// ModelStore persists encoded models keyed by (symbol, timeframe).
// Load and Age return models.ErrModelNotFound for an absent key.
type ModelStore interface {
	Save(key models.ModelKey, payload []byte) error
	Load(key models.ModelKey) ([]byte, error)
	Age(key models.ModelKey) (time.Duration, error)
}
