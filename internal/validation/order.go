package validation

import (
	"fmt"
	"strings"

	"github.com/twinvest/portfolio-ledger-backend/internal/api/request"
)

// ValidOrderAction contains the allowed order action values.
var ValidOrderAction = map[string]bool{
	"BUY": true, "SELL": true, "DIVIDEND": true,
}

// ValidateExecuteOrder validates an order execution request.
//
// Required fields:
//   - categoryId: Must be a valid UUID
//   - action: Must be one of: BUY, SELL, DIVIDEND
//   - symbol: Must be non-empty
//   - shares: Must be positive
//   - price: Must be non-negative
//   - exchangeRate: Must be positive
//
// Fee and tax are optional but must be non-negative when given. The
// optional assetId must be a valid UUID when given.
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateExecuteOrder(req request.ExecuteOrderRequest) error {
	if err := ValidateUUID(req.CategoryID); err != nil {
		return err
	}

	errors := make(map[string]string)

	if strings.TrimSpace(req.Action) == "" {
		errors["action"] = "action is required"
	} else if !ValidOrderAction[req.Action] {
		errors["action"] = fmt.Sprintf("invalid action: %s", req.Action)
	}

	if strings.TrimSpace(req.Symbol) == "" {
		errors["symbol"] = "symbol is required"
	}

	if req.Shares <= 0 {
		errors["shares"] = "shares must be positive"
	}

	if req.Price < 0 {
		errors["price"] = "price cannot be negative"
	}

	if req.ExchangeRate <= 0 {
		errors["exchangeRate"] = "exchangeRate must be positive"
	}

	if req.Fee < 0 {
		errors["fee"] = "fee cannot be negative"
	}

	if req.Tax < 0 {
		errors["tax"] = "tax cannot be negative"
	}

	if req.AssetID != "" {
		if err := ValidateUUID(req.AssetID); err != nil {
			errors["assetId"] = err.Error()
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidCapitalType contains the allowed capital log entry types.
var ValidCapitalType = map[string]bool{
	"DEPOSIT": true, "WITHDRAW": true,
}

// ValidateRecordCapital validates a capital deposit/withdrawal request.
func ValidateRecordCapital(req request.RecordCapitalRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Type) == "" {
		errors["type"] = "type is required"
	} else if !ValidCapitalType[req.Type] {
		errors["type"] = fmt.Sprintf("invalid type: %s", req.Type)
	}

	if req.Amount < 0 {
		errors["amount"] = "amount cannot be negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateSetAllocation validates an allocation update request.
func ValidateSetAllocation(req request.SetAllocationRequest) error {
	if req.Percent < 0 || req.Percent > 100 {
		return &Error{Fields: map[string]string{
			"percent": "percent must be between 0 and 100",
		}}
	}
	return nil
}
