package database

import (
	"time"

	"gorm.io/gorm"
)

// TrainedModel is one persisted model per (symbol, timeframe); retraining overwrites it.
type TrainedModel struct {
	gorm.Model
	Symbol      string    `json:"symbol" gorm:"uniqueIndex:idx_symbol_timeframe;size:50"`
	Timeframe   string    `json:"timeframe" gorm:"uniqueIndex:idx_symbol_timeframe;size:10"`
	Payload     []byte    `json:"-" gorm:"type:longblob"`
	PersistedAt time.Time `json:"persistedAt"`
}
