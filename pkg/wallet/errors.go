package wallet

import (
	"errors"
	"fmt"
)

// Provider error codes from EIP-1193 and EIP-1474.
const (
	CodeUserRejected      = 4001
	CodeUnauthorized      = 4100
	CodeUnsupportedMethod = 4200
	CodeDisconnected      = 4900
	CodeInvalidParams     = -32602
)

// ProviderError is an error reported by the wallet with a provider error
// code. It satisfies the go-ethereum rpc.Error interface so errors coming
// from a JSON-RPC node and from a local wallet can be inspected the same way.
type ProviderError struct {
	Code    int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

// ErrorCode returns the provider error code.
func (e *ProviderError) ErrorCode() int {
	return e.Code
}

// Rejected returns the error a wallet reports when the user declines a
// request.
func Rejected(format string, args ...any) *ProviderError {
	return &ProviderError{
		Code:    CodeUserRejected,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsRejected reports whether err carries the user rejected provider code.
func IsRejected(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Code == CodeUserRejected
}
