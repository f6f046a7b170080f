package ledger

import "errors"

// Business rejections. Both roll the whole unit of work back and map to a
// client error at the transport boundary.
var (
	ErrCustomerNotFound  = errors.New("customer does not exist")
	ErrInsufficientFunds = errors.New("insufficient balance")
)

// ValidationError reports exactly one problem with a request payload.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// IsRejection reports whether err is a client-caused failure (malformed
// input or business rule) rather than an infrastructure error.
func IsRejection(err error) bool {
	var vErr *ValidationError

	return errors.As(err, &vErr) ||
		errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrInsufficientFunds)
}
