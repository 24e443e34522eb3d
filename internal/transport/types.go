// Package transport delivers one chosen message to the outside world.
package transport

import (
	"context"
	"errors"

	"randpost/internal/message"
)

// ErrDelivery marks a failed send attempt (network, timeout, non-success
// response). Callers never retry; the next scheduled invocation does.
var ErrDelivery = errors.New("delivery failed")

// Post is one outbound message plus optional poster overrides.
type Post struct {
	ID        string
	Message   message.Message
	Username  string
	AvatarURL string
}

// Sender performs a single send attempt.
type Sender interface {
	// Name identifies the transport in logs and post history.
	Name() string
	Send(ctx context.Context, p Post) error
}
