package ui

import (
	"testing"

	"github.com/gizak/termui/v3"
	"github.com/stretchr/testify/assert"
	"gitlab.com/aoterocom/MarketForge/models"
)

func TestTableRows(t *testing.T) {
	result := models.ScanResult{
		Entries: []models.ScanEntry{
			{Signal: models.Signal{Symbol: "BTC/USDT", Action: models.BUY, Confidence: 70, Price: 64000}, BullProb: 70, BearProb: 30},
			{Signal: models.Signal{Symbol: "ETH/USDT", Action: models.WAIT, Confidence: 12.5, Price: 3100.25}, BullProb: 53.13, BearProb: 46.87},
		},
		Bias: models.Bullish,
	}

	rows := TableRows(result)
	assert.Len(t, rows, 3)
	assert.Equal(t, []string{"Symbol", "Action", "Confidence", "Bull", "Bear", "Price"}, rows[0])
	assert.Equal(t, []string{"BTC/USDT", "BUY", "70.0%", "70.00%", "30.00%", "64000"}, rows[1])
	assert.Equal(t, []string{"ETH/USDT", "WAIT", "12.5%", "53.13%", "46.87%", "3100.25"}, rows[2])

	assert.Len(t, TableRows(models.ScanResult{}), 1)
}

func TestColors(t *testing.T) {
	assert.Equal(t, termui.ColorGreen, actionColor(models.BUY))
	assert.Equal(t, termui.ColorRed, actionColor(models.SELL))
	assert.Equal(t, termui.ColorWhite, actionColor(models.WAIT))
	assert.Equal(t, "yellow", biasColorName(models.Sideways))
}
