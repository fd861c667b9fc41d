package request

// RecordCapitalRequest is the payload for a deposit or withdrawal against
// total capital.
type RecordCapitalRequest struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
}
