package app

import (
	"context"
	"fmt"
	"time"

	"randpost/internal/config"
	"randpost/internal/counts"
	"randpost/internal/message"
	"randpost/internal/storage"
	"randpost/internal/transport"
	logx "randpost/pkg/logx"
)

// PostedButUnsavedError is returned when the message went out but the new
// count could not be persisted. The post is not retracted.
type PostedButUnsavedError struct {
	MessageID string
	Err       error
}

func (e *PostedButUnsavedError) Error() string {
	return fmt.Sprintf("message %q was posted but its count was not saved: %v", e.MessageID, e.Err)
}

func (e *PostedButUnsavedError) Unwrap() error { return e.Err }

// Dispatcher sends the chosen message once and advances its count only
// after a confirmed delivery.
type Dispatcher struct {
	sender transport.Sender
	store  storage.Store
	user   config.UserConfig
	log    logx.Logger
	now    func() time.Time
}

// Dispatch returns rec unchanged when the send fails, and the incremented
// record otherwise (also when saving it failed).
func (d *Dispatcher) Dispatch(ctx context.Context, rec counts.Record, id string, msg message.Message) (counts.Record, error) {
	post := transport.Post{
		ID:        id,
		Message:   msg,
		Username:  d.user.Name,
		AvatarURL: d.user.IconURL,
	}

	if err := d.sender.Send(ctx, post); err != nil {
		d.log.Error("post failed", logx.String("message_id", id), logx.Err(err))
		return rec, err
	}

	next, err := counts.Increment(rec, id)
	if err != nil {
		return rec, err
	}
	d.log.Info("message posted", logx.String("message_id", id), logx.Int64("count", next[id]))

	if err := d.store.Save(ctx, next); err != nil {
		d.log.Error("count not saved after successful post", logx.String("message_id", id), logx.Err(err))
		return next, &PostedButUnsavedError{MessageID: id, Err: err}
	}

	now := time.Now
	if d.now != nil {
		now = d.now
	}
	entry := storage.HistoryEntry{At: now(), MessageID: id, Transport: d.sender.Name(), Count: next[id]}
	if err := d.store.AppendHistory(ctx, entry); err != nil {
		d.log.Warn("post history not recorded", logx.String("message_id", id), logx.Err(err))
	}
	return next, nil
}
