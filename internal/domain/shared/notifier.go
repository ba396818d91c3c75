package shared

import "context"

// Notifier fans a successful mutation out to downstream consumers.
// Implementations must not block on downstream delivery and never fail the caller.
type Notifier interface {
	Notify(ctx context.Context, kind Kind, op Operation, payload any)
}
