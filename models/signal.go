package models

type Action string

const (
	BUY  Action = "BUY"
	SELL Action = "SELL"
	WAIT Action = "WAIT"
)

type Bias string

const (
	Bullish  Bias = "Bullish"
	Bearish  Bias = "Bearish"
	Sideways Bias = "Sideways"
)

// Signal is the decision for one symbol. Confidence is in [0,100].
// Display is the fused confidence before it was mapped to an action.
type Signal struct {
	Symbol     string  `json:"symbol"`
	Action     Action  `json:"action"`
	Confidence float64 `json:"confidence"`
	Price      float64 `json:"price"`
	Display    float64 `json:"display"`
}

func NewWaitSignal(symbol string, price float64) Signal {
	return Signal{Symbol: symbol, Action: WAIT, Confidence: 0, Price: price, Display: 50}
}

// SignalResult carries a signal that is always safe to render, plus the failure that
// forced it to the neutral default, if any.
type SignalResult struct {
	Signal Signal
	Err    error
}

func (r SignalResult) Reason() Reason {
	return ReasonOf(r.Err)
}

type ScanEntry struct {
	Signal   Signal  `json:"signal"`
	BullProb float64 `json:"bullProb"`
	BearProb float64 `json:"bearProb"`
}

type ScanResult struct {
	Entries []ScanEntry `json:"entries"`
	Bias    Bias        `json:"bias"`
}

// NeutralProbability is the model probability used when no model can answer.
const NeutralProbability = 50.0
