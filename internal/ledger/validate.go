package ledger

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validate turns an untrusted request payload into a normalized Request or
// fails with a ValidationError describing exactly one problem. It has no
// side effects and is safe for concurrent use.
func Validate(data map[string]any) (Request, error) {
	for _, field := range []string{"customer_id", "amount", "transaction_type"} {
		if _, ok := data[field]; !ok {
			return Request{}, &ValidationError{Reason: fmt.Sprintf("missing required field: %s", field)}
		}
	}

	customerID, err := stringField(data["customer_id"])
	if err != nil {
		return Request{}, &ValidationError{Reason: "customer_id must be a string"}
	}

	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return Request{}, &ValidationError{Reason: "customer_id cannot be empty"}
	}

	amount, err := amountField(data["amount"])
	if err != nil || amount.Sign() <= 0 {
		return Request{}, &ValidationError{Reason: "amount must be a valid positive number"}
	}

	kindStr, err := stringField(data["transaction_type"])
	if err != nil {
		return Request{}, &ValidationError{Reason: "transaction_type must be a string"}
	}

	kind := Kind(strings.ToLower(strings.TrimSpace(kindStr)))
	if kind != KindDebit && kind != KindCredit {
		return Request{}, &ValidationError{
			Reason: fmt.Sprintf("transaction_type must be one of: %s, %s", KindDebit, KindCredit),
		}
	}

	return Request{CustomerID: customerID, Amount: amount, Kind: kind}, nil
}

func stringField(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case json.Number:
		return s.String(), nil
	default:
		return "", fmt.Errorf("not a string: %T", v)
	}
}

func amountField(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case json.Number:
		return decimal.NewFromString(n.String())
	case string:
		return decimal.NewFromString(strings.TrimSpace(n))
	case float64:
		return decimal.NewFromFloat(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	default:
		return decimal.Zero, fmt.Errorf("not a number: %T", v)
	}
}
