package notify

import (
	"context"

	"go.uber.org/multierr"
)

// Notifier is a best-effort alert mirror. Failures are logged by callers,
// never acted on: the alert row in the store is the source of truth.
type Notifier interface {
	Send(ctx context.Context, title, text string) error
}

type Multi []Notifier

func (m Multi) Send(ctx context.Context, title, text string) error {
	var errs error
	for _, n := range m {
		if n == nil {
			continue
		}
		errs = multierr.Append(errs, n.Send(ctx, title, text))
	}
	return errs
}
