package ledger

// Volume is the flow of one symbol across a series of transfers.
type Volume struct {
	Symbol   string  `json:"symbol"`
	Debited  float64 `json:"debited"`
	Credited float64 `json:"credited"`
	Swaps    int     `json:"swaps"`
}

func (v Volume) Net() float64 { return v.Credited - v.Debited }
