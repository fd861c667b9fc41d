package request

// SetAllocationRequest is the payload for replacing a category's target
// percentage of total capital.
type SetAllocationRequest struct {
	Percent float64 `json:"percent"`
}
