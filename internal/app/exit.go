package app

import (
	"errors"

	"randpost/internal/config"
	"randpost/internal/counts"
	"randpost/internal/picker"
	"randpost/internal/storage"
	"randpost/internal/transport"
	"randpost/internal/weight"
)

// Process exit codes. 0 is returned only when the post succeeded.
const (
	ExitOK            = 0
	ExitUnknown       = 1
	ExitConfiguration = 2
	ExitStorage       = 3
	ExitPool          = 4
	ExitDelivery      = 5
)

// Classify maps an error to its exit code and a short class label used as
// the prefix of the message printed on stderr.
func Classify(err error) (int, string) {
	switch {
	case err == nil:
		return ExitOK, ""
	case errors.Is(err, config.ErrInvalid), errors.Is(err, weight.ErrConfiguration):
		return ExitConfiguration, "configuration error"
	case errors.Is(err, storage.ErrStorage):
		return ExitStorage, "storage error"
	case errors.Is(err, picker.ErrEmptyPool), errors.Is(err, weight.ErrEmptyPool):
		return ExitPool, "empty pool"
	case errors.Is(err, counts.ErrUnknownMessage), errors.Is(err, picker.ErrInvalidWeight):
		return ExitPool, "unknown message"
	case errors.Is(err, transport.ErrDelivery):
		return ExitDelivery, "delivery error"
	default:
		return ExitUnknown, "error"
	}
}
