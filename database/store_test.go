package database

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/aoterocom/MarketForge/interfaces"
	"gitlab.com/aoterocom/MarketForge/models"
)

func testStore(t *testing.T, store interfaces.ModelStore) {
	key := models.NewModelKey("BTC/USDT", "1d")

	_, err := store.Load(key)
	assert.True(t, errors.Is(err, models.ErrModelNotFound))
	_, err = store.Age(key)
	assert.True(t, errors.Is(err, models.ErrModelNotFound))

	assert.NoError(t, store.Save(key, []byte("first")))
	payload, err := store.Load(key)
	assert.NoError(t, err)
	assert.Equal(t, []byte("first"), payload)

	assert.NoError(t, store.Save(key, []byte("second")))
	payload, err = store.Load(key)
	assert.NoError(t, err)
	assert.Equal(t, []byte("second"), payload)

	_, err = store.Load(models.NewModelKey("BTC/USDT", "4h"))
	assert.True(t, errors.Is(err, models.ErrModelNotFound))
}

func TestMemoryModelStore(t *testing.T) {
	store := NewMemoryModelStore()
	testStore(t, store)

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return clock })
	key := models.NewModelKey("ETH/USDT", "1d")
	assert.NoError(t, store.Save(key, []byte("model")))

	clock = clock.Add(25 * time.Hour)
	age, err := store.Age(key)
	assert.NoError(t, err)
	assert.Equal(t, 25*time.Hour, age)
	assert.Equal(t, 3, store.Saves())
}

func TestFileModelStore(t *testing.T) {
	store, err := NewFileModelStore(t.TempDir())
	assert.NoError(t, err)
	testStore(t, store)

	key := models.NewModelKey("BTC/USDT", "1d")
	assert.Equal(t, "BTC_USDT_1d.gob", store.path(key)[len(store.dir)+1:])

	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	age, err := store.Age(key)
	assert.NoError(t, err)
	assert.InDelta(t, (2 * time.Hour).Seconds(), age.Seconds(), 60)
}

// The redis and postgres stores run against real servers only when one is configured.

func TestRedisModelStore(t *testing.T) {
	addr := os.Getenv("MARKETFORGE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("MARKETFORGE_TEST_REDIS_ADDR not set")
	}
	store, err := NewRedisModelStore(RedisConfig{Addr: addr, DB: 15})
	require.NoError(t, err)
	defer store.Close()
	assert.NoError(t, store.cli.FlushDB(context.Background()).Err())
	testStore(t, store)

	key := models.NewModelKey("BTC/USDT", "1d")
	store.now = func() time.Time { return time.Now().Add(3 * time.Hour) }
	age, err := store.Age(key)
	assert.NoError(t, err)
	assert.InDelta(t, (3 * time.Hour).Seconds(), age.Seconds(), 60)
}

func TestPostgresModelStore(t *testing.T) {
	dsn := os.Getenv("MARKETFORGE_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("MARKETFORGE_TEST_PG_DSN not set")
	}
	store, err := NewPostgresModelStore(dsn)
	require.NoError(t, err)
	defer store.Close()
	_, err = store.db.Exec(`DELETE FROM trained_models`)
	assert.NoError(t, err)
	testStore(t, store)
}

func TestUnreachableStoresFail(t *testing.T) {
	_, err := NewRedisModelStore(RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)

	_, err = NewPostgresModelStore("postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1")
	assert.Error(t, err)
}

func TestFileModelStoreKeepsLookalikeSymbolsApart(t *testing.T) {
	store, err := NewFileModelStore(t.TempDir())
	require.NoError(t, err)

	slash := models.NewModelKey("BTC/USDT", "1d")
	underscore := models.NewModelKey("BTC_USDT", "1d")
	require.NoError(t, store.Save(slash, []byte("slash")))
	require.NoError(t, store.Save(underscore, []byte("underscore")))

	payload, err := store.Load(slash)
	assert.NoError(t, err)
	assert.Equal(t, []byte("slash"), payload)
	payload, err = store.Load(underscore)
	assert.NoError(t, err)
	assert.Equal(t, []byte("underscore"), payload)
}
