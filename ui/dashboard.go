package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
	"gitlab.com/aoterocom/MarketForge/helpers"
	"gitlab.com/aoterocom/MarketForge/models"
)

type Scanner interface {
	Scan(ctx context.Context, symbols []string) models.ScanResult
}

// Dashboard renders a periodically refreshed market scan in the terminal.
type Dashboard struct {
	scanner  Scanner
	symbols  []string
	interval time.Duration
	lastScan time.Time
	result   models.ScanResult
}

func NewDashboard(scanner Scanner, symbols []string, interval time.Duration) *Dashboard {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Dashboard{
		scanner:  scanner,
		symbols:  symbols,
		interval: interval,
	}
}

func (d *Dashboard) Run(ctx context.Context) {
	if err := termui.Init(); err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("failed to initialize termui: %v", err))
		return
	}
	defer termui.Close()

	d.refresh(ctx)
	d.render()

	uiEvents := termui.PollEvents()
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case e := <-uiEvents:
			switch e.ID {
			case "q", "<C-c>":
				helpers.Logger.Infoln("Exited by keyboard interrupt")
				return
			case "r":
				d.refresh(ctx)
				d.render()
			case "<Resize>":
				d.render()
			}
		case <-ticker.C:
			d.refresh(ctx)
			d.render()
		case <-ctx.Done():
			return
		}
	}
}

func (d *Dashboard) refresh(ctx context.Context) {
	d.result = d.scanner.Scan(ctx, d.symbols)
	d.lastScan = time.Now()
}

func (d *Dashboard) render() {
	width, height := termui.TerminalDimensions()

	table := widgets.NewTable()
	table.Title = "Market Scan"
	table.Rows = TableRows(d.result)
	table.TextStyle = termui.NewStyle(termui.ColorWhite)
	table.RowSeparator = false
	table.FillRow = true
	table.RowStyles[0] = termui.NewStyle(termui.ColorYellow, termui.ColorClear, termui.ModifierBold)
	for i, entry := range d.result.Entries {
		table.RowStyles[i+1] = termui.NewStyle(actionColor(entry.Signal.Action))
	}
	tableHeight := len(table.Rows) + 2
	if tableHeight > height-3 {
		tableHeight = height - 3
	}
	table.SetRect(0, 0, width, tableHeight)

	status := widgets.NewParagraph()
	status.Title = "Status"
	status.Text = fmt.Sprintf("[%s market](fg:%s)  last scan %s  (r: refresh, q: quit)",
		d.result.Bias, biasColorName(d.result.Bias), d.lastScan.Format("15:04:05"))
	status.SetRect(0, tableHeight, width, tableHeight+3)

	termui.Clear()
	termui.Render(table, status)
}

// TableRows lays out a scan as a header row followed by one row per symbol.
func TableRows(result models.ScanResult) [][]string {
	rows := [][]string{{"Symbol", "Action", "Confidence", "Bull", "Bear", "Price"}}
	for _, entry := range result.Entries {
		rows = append(rows, []string{
			entry.Signal.Symbol,
			string(entry.Signal.Action),
			fmt.Sprintf("%.1f%%", entry.Signal.Confidence),
			fmt.Sprintf("%.2f%%", entry.BullProb),
			fmt.Sprintf("%.2f%%", entry.BearProb),
			fmt.Sprintf("%.8g", entry.Signal.Price),
		})
	}
	return rows
}

func actionColor(action models.Action) termui.Color {
	switch action {
	case models.BUY:
		return termui.ColorGreen
	case models.SELL:
		return termui.ColorRed
	default:
		return termui.ColorWhite
	}
}

func biasColorName(bias models.Bias) string {
	switch bias {
	case models.Bullish:
		return "green"
	case models.Bearish:
		return "red"
	default:
		return "yellow"
	}
}
