package database

import (
	"errors"
	"fmt"
	"time"

	database "gitlab.com/aoterocom/MarketForge/database/models"
	"gitlab.com/aoterocom/MarketForge/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// DBService is a MySQL backed model store.
type DBService struct {
	DB  *gorm.DB
	now func() time.Time
}

func NewDBService(dbHost string, dbPort string, dbName string, dbUser string, dbPass string) (*DBService, error) {
	dsn := dbUser + ":" + dbPass + "@tcp(" + dbHost + ":" + dbPort + ")/" + dbName + "?charset=utf8mb4&parseTime=True&loc=Local"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	return NewDBServiceFromDB(db)
}

// NewDBServiceFromDB migrates the model table on an already opened connection.
func NewDBServiceFromDB(db *gorm.DB) (*DBService, error) {
	dbs := &DBService{
		DB:  db,
		now: time.Now,
	}
	if err := dbs.DB.AutoMigrate(&database.TrainedModel{}); err != nil {
		return nil, err
	}
	return dbs, nil
}

func (dbs *DBService) Save(key models.ModelKey, payload []byte) error {
	record := database.TrainedModel{
		Symbol:      key.Symbol,
		Timeframe:   key.Timeframe,
		Payload:     payload,
		PersistedAt: dbs.now(),
	}

	// Replace the previous model for the key on conflict
	result := dbs.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "timeframe"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "persisted_at", "updated_at"}),
	}).Create(&record)
	if result.Error != nil {
		return fmt.Errorf("error saving model %s: %w", key, result.Error)
	}
	return nil
}

func (dbs *DBService) Load(key models.ModelKey) ([]byte, error) {
	record, err := dbs.find(key)
	if err != nil {
		return nil, err
	}
	return record.Payload, nil
}

func (dbs *DBService) Age(key models.ModelKey) (time.Duration, error) {
	record, err := dbs.find(key)
	if err != nil {
		return 0, err
	}
	return dbs.now().Sub(record.PersistedAt), nil
}

func (dbs *DBService) find(key models.ModelKey) (*database.TrainedModel, error) {
	var record database.TrainedModel
	err := dbs.DB.Where("symbol = ? AND timeframe = ?", key.Symbol, key.Timeframe).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", models.ErrModelNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrModelUnavailable, err)
	}
	return &record, nil
}
