package models

import "strings"

// ModelKey identifies the one model trained for a symbol on a timeframe.
type ModelKey struct {
	Symbol    string
	Timeframe string
}

func NewModelKey(symbol, timeframe string) ModelKey {
	return ModelKey{Symbol: symbol, Timeframe: timeframe}
}

// "/" becomes "_", so a literal "_" (and the escape character) must be escaped to
// keep distinct keys apart.
var keyEscaper = strings.NewReplacer("%", "%25", "_", "%5F", "/", "_")

// String is a file-name safe form, "BTC/USDT" on "1d" -> "BTC_USDT_1d". Distinct keys
// never share a string: "BTC_USDT" on "1d" -> "BTC%5FUSDT_1d".
func (k ModelKey) String() string {
	return keyEscaper.Replace(k.Symbol) + "_" + keyEscaper.Replace(k.Timeframe)
}
