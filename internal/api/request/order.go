package request

// ExecuteOrderRequest is the payload for executing a buy, sell or dividend
// order against a category.
type ExecuteOrderRequest struct {
	CategoryID   string  `json:"categoryId"`
	Action       string  `json:"action"`
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Shares       float64 `json:"shares"`
	Price        float64 `json:"price"`
	ExchangeRate float64 `json:"exchangeRate"`
	TotalAmount  float64 `json:"totalAmount"`
	Fee          float64 `json:"fee"`
	Tax          float64 `json:"tax"`
	AssetID      string  `json:"assetId,omitempty"`
}
